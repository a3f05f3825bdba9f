package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"picorg/internal/config"
	"picorg/internal/exif"
	"picorg/internal/pipeline"
	"picorg/internal/storage"
)

// Service polls for the directive file and runs the organizer whenever it
// shows up. The processed file is renamed aside so a cycle never runs the
// same directives twice.
type Service struct {
	db      *storage.DB
	cfg     config.Config
	stamper exif.Stamper
}

func NewService(db *storage.DB, cfg config.Config, stamper exif.Stamper) *Service {
	return &Service{db: db, cfg: cfg, stamper: stamper}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(); err != nil {
			fmt.Printf("watch cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.WatchIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle() error {
	input := s.cfg.InputFile
	if _, err := os.Stat(input); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	organizer := pipeline.NewOrganizerService(s.db, s.cfg, s.stamper)
	result, err := organizer.OrganizeFile(input, pipeline.DetectSourceType(input))
	if err != nil {
		// Park the bad file so the next cycle does not retry it forever.
		_ = archive(input, "failed")
		return err
	}

	if err := archive(input, "processed"); err != nil {
		return err
	}

	if s.cfg.WatchAutoExport && result.RunID > 0 {
		out := filepath.Join(s.cfg.OutputDir, "watch", fmt.Sprintf("run_%d.xlsx", result.RunID))
		if err := pipeline.ExportOutcomesToXLSX(result.Outcomes, out); err != nil {
			return err
		}
	}

	fmt.Printf("watch cycle done rows=%d ok=%d errors=%d\n", result.Total, result.Succeeded, result.Errors)
	return nil
}

func archive(path, status string) error {
	stamp := time.Now().Format("20060102150405")
	return os.Rename(path, fmt.Sprintf("%s.%s-%s", path, status, stamp))
}
