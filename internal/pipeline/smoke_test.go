package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"picorg/internal"
	"picorg/internal/config"
	"picorg/internal/exif"
	"picorg/internal/storage"
)

type recordStamper struct {
	reqs []exif.Request
}

func (r *recordStamper) Stamp(req exif.Request) error {
	r.reqs = append(r.reqs, req)
	return nil
}

func testConfig(dir string) config.Config {
	return config.Config{
		PicturesDir:  dir,
		DBPath:       filepath.Join(dir, "data", "picorg.db"),
		OutputDir:    filepath.Join(dir, "out"),
		ImageExt:     ".jpg",
		InvalidChars: `<>:"/\|?*`,
		Placeholder:  "_",
		ErrorReport:  filepath.Join(dir, "picture_errors.txt"),
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSmokeOrganizeRun(t *testing.T) {
	tmp := t.TempDir()
	cfg := testConfig(tmp)

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	writeFile(t, filepath.Join(tmp, "1.jpg"), "jpeg-1")
	writeFile(t, filepath.Join(tmp, "2.jpg"), "jpeg-2")

	md := "| Current File Name | Suggested File Name | Area | Date | Tags |\n" +
		"|---|---|---|---|---|\n" +
		"| 01 | beach-sunset | Vacation/2024 | 2024-06-01 | sunset;beach;ocean |\n" +
		"| 2 | city lights | Trips | | |\n" +
		"| 3 | ghost | Trips | | |\n" +
		"| | no-name | Trips | | |\n" +
		"| short-row |\n"
	inputPath := filepath.Join(tmp, "pictures.md")
	writeFile(t, inputPath, md)

	stamper := &recordStamper{}
	svc := NewOrganizerService(db, cfg, stamper)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC) }

	result, err := svc.OrganizeFile(inputPath, internal.SourceMarkdown)
	if err != nil {
		t.Fatal(err)
	}

	if result.Total != 4 {
		t.Fatalf("total=%d", result.Total)
	}
	if result.Succeeded != 2 || result.Errors != 2 {
		t.Fatalf("ok=%d errors=%d", result.Succeeded, result.Errors)
	}

	moved := filepath.Join(tmp, "Vacation_2024", "beach-sunset.jpg")
	if _, err := os.Stat(moved); err != nil {
		t.Fatalf("moved file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "1.jpg")); !os.IsNotExist(err) {
		t.Fatalf("source still present: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "Trips", "city lights.jpg")); err != nil {
		t.Fatalf("second moved file missing: %v", err)
	}

	if len(stamper.reqs) != 1 {
		t.Fatalf("stamp calls=%d", len(stamper.reqs))
	}
	req := stamper.reqs[0]
	if req.Date == nil || *req.Date != "2024-06-01" {
		t.Fatalf("stamp date=%v", req.Date)
	}
	if req.Tags == nil || *req.Tags != "sunset,beach,ocean" {
		t.Fatalf("stamp tags=%v", req.Tags)
	}

	report, err := os.ReadFile(cfg.ErrorReport)
	if err != nil {
		t.Fatalf("error report missing: %v", err)
	}
	if !strings.Contains(string(report), "3.jpg - file not found") {
		t.Fatalf("report content:\n%s", report)
	}

	outcomes, err := db.GetRunOutcomes(int(result.RunID))
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) != 4 {
		t.Fatalf("stored outcomes=%d", len(outcomes))
	}

	out := filepath.Join(cfg.OutputDir, "result.xlsx")
	if err := ExportOutcomesToXLSX(outcomes, out); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatal(err)
	}
}

func TestSmokeDestinationCollision(t *testing.T) {
	tmp := t.TempDir()
	cfg := testConfig(tmp)

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	writeFile(t, filepath.Join(tmp, "5.jpg"), "jpeg-5")
	if err := os.MkdirAll(filepath.Join(tmp, "Trips"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(tmp, "Trips", "taken.jpg"), "existing")

	md := "| Current File Name | Suggested File Name | Area |\n" +
		"|---|---|---|\n" +
		"| 5 | taken | Trips |\n"
	inputPath := filepath.Join(tmp, "pictures.md")
	writeFile(t, inputPath, md)

	svc := NewOrganizerService(db, cfg, &recordStamper{})
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC) }

	result, err := svc.OrganizeFile(inputPath, internal.SourceMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if result.Succeeded != 1 {
		t.Fatalf("ok=%d", result.Succeeded)
	}

	renamed := filepath.Join(tmp, "Trips", "taken_20240601123045.jpg")
	if _, err := os.Stat(renamed); err != nil {
		t.Fatalf("unique-name move missing: %v", err)
	}
	existing, err := os.ReadFile(filepath.Join(tmp, "Trips", "taken.jpg"))
	if err != nil || string(existing) != "existing" {
		t.Fatalf("existing file clobbered: %q %v", existing, err)
	}
}

func TestSmokeDryRun(t *testing.T) {
	tmp := t.TempDir()
	cfg := testConfig(tmp)

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	writeFile(t, filepath.Join(tmp, "9.jpg"), "jpeg-9")
	md := "| Current File Name | Suggested File Name | Area |\n" +
		"|---|---|---|\n" +
		"| 9 | nine | Trips |\n"
	inputPath := filepath.Join(tmp, "pictures.md")
	writeFile(t, inputPath, md)

	stamper := &recordStamper{}
	svc := NewOrganizerService(db, cfg, stamper)
	svc.SetDryRun(true)

	result, err := svc.OrganizeFile(inputPath, internal.SourceMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if result.Succeeded != 1 {
		t.Fatalf("ok=%d", result.Succeeded)
	}
	if _, err := os.Stat(filepath.Join(tmp, "9.jpg")); err != nil {
		t.Fatalf("dry run moved the file: %v", err)
	}
	if len(stamper.reqs) != 0 {
		t.Fatalf("dry run stamped: %d", len(stamper.reqs))
	}
	if _, err := os.Stat(filepath.Join(tmp, "Trips")); !os.IsNotExist(err) {
		t.Fatalf("dry run created folder: %v", err)
	}
}

type failStamper struct{}

func (failStamper) Stamp(exif.Request) error {
	return errors.New("exiftool blew up")
}

func TestStampFailureStillMoves(t *testing.T) {
	tmp := t.TempDir()
	cfg := testConfig(tmp)

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	writeFile(t, filepath.Join(tmp, "4.jpg"), "jpeg-4")
	md := "| Current File Name | Suggested File Name | Area | Date |\n" +
		"|---|---|---|---|\n" +
		"| 4 | four | Trips | 2024-06-01 |\n"
	inputPath := filepath.Join(tmp, "pictures.md")
	writeFile(t, inputPath, md)

	svc := NewOrganizerService(db, cfg, failStamper{})
	result, err := svc.OrganizeFile(inputPath, internal.SourceMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if result.Succeeded != 1 || result.Errors != 0 {
		t.Fatalf("ok=%d errors=%d", result.Succeeded, result.Errors)
	}
	if _, err := os.Stat(filepath.Join(tmp, "Trips", "four.jpg")); err != nil {
		t.Fatalf("file not moved after stamp failure: %v", err)
	}
}

func TestUniqueName(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC)
	if got := uniqueName("taken.jpg", now); got != "taken_20240601123045.jpg" {
		t.Fatalf("got %q", got)
	}
}
