package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	PicturesDir string
	InputFile   string
	DBPath      string
	OutputDir   string

	ImageExt     string
	InvalidChars string
	Placeholder  string

	LogFile     string
	ErrorReport string

	ExifToolBin string
	ExifVerify  bool

	WatchIntervalSec int
	WatchAutoExport  bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	picturesDir := getEnv("PICTURES_DIR", cwd)

	cfg := Config{
		PicturesDir: picturesDir,
		InputFile:   getEnv("INPUT_FILE", filepath.Join(picturesDir, "pictures.md")),
		DBPath:      getEnv("DB_PATH", filepath.Join(picturesDir, "data", "picorg.db")),
		OutputDir:   getEnv("OUTPUT_DIR", filepath.Join(picturesDir, "out")),

		ImageExt:     getEnv("IMAGE_EXT", ".jpg"),
		InvalidChars: getEnv("INVALID_CHARS", `<>:"/\|?*`),
		Placeholder:  getEnv("PLACEHOLDER", "_"),

		LogFile:     getEnv("LOG_FILE", filepath.Join(picturesDir, "picture_organization.log")),
		ErrorReport: getEnv("ERROR_REPORT", filepath.Join(picturesDir, "picture_errors.txt")),

		ExifToolBin: getEnv("EXIFTOOL_BIN", "exiftool"),
		ExifVerify:  getEnvBool("EXIF_VERIFY", false),

		WatchIntervalSec: getEnvInt("WATCH_INTERVAL_SEC", 30),
		WatchAutoExport:  getEnvBool("WATCH_AUTO_EXPORT", false),
	}

	if !strings.HasPrefix(cfg.ImageExt, ".") {
		cfg.ImageExt = "." + cfg.ImageExt
	}
	if cfg.Placeholder == "" {
		cfg.Placeholder = "_"
	}

	return cfg, nil
}

func (c Config) PlaceholderRune() rune {
	return []rune(c.Placeholder)[0]
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
