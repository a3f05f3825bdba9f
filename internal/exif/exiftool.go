package exif

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request asks for capture-date and/or keyword metadata to be written into
// the named file in place. Tags are already comma-separated.
type Request struct {
	Path string
	Date *string
	Tags *string
}

func (r Request) Empty() bool {
	return r.Date == nil && r.Tags == nil
}

// Stamper writes metadata into a file in place. It must not corrupt the
// file on failure.
type Stamper interface {
	Stamp(req Request) error
}

// Tool shells out to ExifTool. ExifTool edits in place but leaves a
// "<file>_original" backup behind, which is removed after a successful
// edit.
type Tool struct {
	bin string
}

func NewTool(bin string) *Tool {
	if strings.TrimSpace(bin) == "" {
		bin = "exiftool"
	}
	return &Tool{bin: bin}
}

// CheckAvailable probes the binary before any row is processed.
func (t *Tool) CheckAvailable() error {
	cmd := exec.Command(t.bin, "-ver")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("exiftool not available (%s): %w: %s", t.bin, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (t *Tool) Stamp(req Request) error {
	args := buildArgs(req)
	if len(args) == 1 {
		return nil
	}

	cmd := exec.Command(t.bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("exiftool failed for %s: %w: %s", req.Path, err, strings.TrimSpace(string(out)))
	}

	removeBackup(req.Path)
	return nil
}

func buildArgs(req Request) []string {
	args := []string{}
	if req.Date != nil {
		args = append(args, "-DateTimeOriginal="+*req.Date)
	}
	if req.Tags != nil {
		args = append(args, "-Keywords="+*req.Tags)
	}
	return append(args, req.Path)
}

func removeBackup(path string) {
	backup := path + "_original"
	if _, err := os.Stat(backup); err == nil {
		_ = os.Remove(backup)
	}
}
