package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"picorg/internal"
	"picorg/internal/config"
	"picorg/internal/exif"
	"picorg/internal/storage"
)

// OrganizerService drives one run: extract the directive table, normalize
// each row, stamp metadata, move the file. Rows are processed sequentially
// in source order; one row's failure never affects another's.
type OrganizerService struct {
	db      *storage.DB
	cfg     config.Config
	stamper exif.Stamper
	fs      FileOps
	now     func() time.Time
	dryRun  bool
}

func NewOrganizerService(db *storage.DB, cfg config.Config, stamper exif.Stamper) *OrganizerService {
	return &OrganizerService{
		db:      db,
		cfg:     cfg,
		stamper: stamper,
		fs:      osFileOps{},
		now:     time.Now,
	}
}

func (s *OrganizerService) SetDryRun(dryRun bool) {
	s.dryRun = dryRun
}

type RunResult struct {
	RunID     int64
	TraceID   string
	Total     int
	Succeeded int
	Errors    int
	ErrorList []string
	Outcomes  []internal.RowOutcome
}

// OrganizeFile runs the whole pipeline for one input document. A missing
// input file, a missing table, or missing required columns abort here,
// before any side effect.
func (s *OrganizerService) OrganizeFile(path string, source internal.TableSource) (RunResult, error) {
	table, err := ExtractFromFile(path, source)
	if err != nil {
		return RunResult{}, err
	}
	return s.Organize(table, source, path)
}

func (s *OrganizerService) Organize(table internal.DirectiveTable, source internal.TableSource, inputRef string) (RunResult, error) {
	result := RunResult{TraceID: traceID(), Total: len(table.Rows)}
	normalizer := NewNormalizer(s.cfg.ImageExt, s.cfg.InvalidChars, s.cfg.PlaceholderRune())

	fmt.Printf("Found %d files to process\n", result.Total)

	for i, row := range table.Rows {
		directive, err := normalizer.Normalize(row, table.Indexes)
		if err != nil {
			log.Printf("warning: %v", err)
			outcome := internal.RowOutcome{
				LineNo:     row.LineNo,
				SourceName: strings.TrimSpace(cellAt(row.Cells, table.Indexes.CurrentFileName)),
				Status:     internal.RowFailed,
				Detail:     err.Error(),
			}
			result.record(outcome)
			continue
		}

		outcome := s.processRow(i+1, result.Total, directive)
		result.record(outcome)
	}

	s.persist(&result, source, inputRef)
	s.summarize(result)

	return result, nil
}

func (r *RunResult) record(outcome internal.RowOutcome) {
	r.Outcomes = append(r.Outcomes, outcome)
	if outcome.Status == internal.RowMoved {
		r.Succeeded++
		return
	}
	r.Errors++
	name := outcome.SourceName
	if name == "" {
		name = fmt.Sprintf("row %d", outcome.LineNo)
	}
	r.ErrorList = append(r.ErrorList, fmt.Sprintf("%s - %s", name, outcome.Detail))
}

func (s *OrganizerService) processRow(seq, total int, d internal.NormalizedDirective) (outcome internal.RowOutcome) {
	outcome = internal.RowOutcome{LineNo: d.LineNo, SourceName: d.SourceFileName}

	// Anything unanticipated while handling a single row degrades to a
	// row failure; the run continues with the next row.
	defer func() {
		if r := recover(); r != nil {
			outcome.Status = internal.RowFailed
			outcome.Detail = fmt.Sprintf("unexpected: %v", r)
			log.Printf("error processing row %d: %v", d.LineNo, r)
		}
	}()

	sourcePath := filepath.Join(s.cfg.PicturesDir, d.SourceFileName)
	areaDir := filepath.Join(s.cfg.PicturesDir, d.AreaFolderName)
	destName := d.DestinationFileName
	destPath := filepath.Join(areaDir, destName)

	fmt.Printf("Processing file %d/%d: %s -> %s/%s\n", seq, total, d.SourceFileName, d.AreaFolderName, destName)

	if !s.fs.IsFile(sourcePath) {
		log.Printf("source file not found: %s", sourcePath)
		outcome.Status = internal.RowFailed
		outcome.Detail = "file not found"
		return outcome
	}

	if s.dryRun {
		log.Printf("[dry-run] would move %s -> %s", sourcePath, destPath)
		outcome.Status = internal.RowMoved
		outcome.DestPath = destPath
		outcome.Detail = "dry-run"
		return outcome
	}

	if err := s.fs.MkdirAll(areaDir); err != nil {
		log.Printf("failed to create folder %s: %v", areaDir, err)
		outcome.Status = internal.RowFailed
		outcome.Detail = fmt.Sprintf("failed to create folder: %s", d.AreaFolderName)
		return outcome
	}

	if s.fs.Exists(destPath) {
		destName = uniqueName(destName, s.now())
		destPath = filepath.Join(areaDir, destName)
		log.Printf("warning: destination already exists, using unique name: %s", destName)
	}

	if d.Date != nil || d.Tags != nil {
		req := exif.Request{Path: sourcePath, Date: d.Date, Tags: d.Tags}
		if err := s.stamper.Stamp(req); err != nil {
			// Stamping is best effort: the row still moves.
			log.Printf("warning: metadata stamping failed for %s: %v", d.SourceFileName, err)
		} else if s.cfg.ExifVerify && d.Date != nil {
			if stamped, err := exif.ReadCaptureDate(sourcePath); err != nil {
				log.Printf("warning: could not read back capture date from %s: %v", d.SourceFileName, err)
			} else {
				log.Printf("stamped capture date on %s: %s", d.SourceFileName, stamped)
			}
		}
	}

	if err := s.fs.Move(sourcePath, destPath); err != nil {
		log.Printf("failed to move file: %v", err)
		outcome.Status = internal.RowFailed
		outcome.Detail = fmt.Sprintf("failed to move file: %v", err)
		return outcome
	}

	fmt.Printf("Successfully processed: %s -> %s/%s\n", d.SourceFileName, d.AreaFolderName, destName)
	outcome.Status = internal.RowMoved
	outcome.DestPath = destPath
	return outcome
}

func (s *OrganizerService) persist(result *RunResult, source internal.TableSource, inputRef string) {
	if s.db == nil || s.dryRun {
		return
	}

	counts := map[string]int{
		"total":     result.Total,
		"succeeded": result.Succeeded,
		"errors":    result.Errors,
	}
	runID, err := s.db.InsertRun(result.TraceID, string(source), inputRef, counts)
	if err != nil {
		log.Printf("warning: failed to record run: %v", err)
		return
	}
	result.RunID = runID

	for _, outcome := range result.Outcomes {
		if err := s.db.InsertOutcome(runID, outcome); err != nil {
			log.Printf("warning: failed to record outcome for row %d: %v", outcome.LineNo, err)
		}
	}
	_ = s.db.SetMetadata("last_run_trace", result.TraceID)
}

func (s *OrganizerService) summarize(result RunResult) {
	fmt.Printf("\nPicture organization complete!\n")
	fmt.Printf("Successfully processed: %d files\n", result.Succeeded)
	fmt.Printf("Errors: %d files\n", result.Errors)

	if result.Errors == 0 {
		return
	}

	fmt.Println("\nFiles with errors:")
	for _, line := range result.ErrorList {
		fmt.Printf("- %s\n", line)
	}

	if s.dryRun {
		return
	}
	if err := WriteErrorReport(s.cfg.ErrorReport, result.ErrorList, s.now()); err != nil {
		log.Printf("warning: failed to write error report: %v", err)
		return
	}
	fmt.Printf("\nDetailed error list saved to %q\n", s.cfg.ErrorReport)
}

// uniqueName inserts a second-resolution timestamp before the extension to
// avoid clobbering an existing destination.
func uniqueName(name string, now time.Time) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%s%s", base, now.Format("20060102150405"), ext)
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
