package pipeline

import (
	"fmt"
	"strings"

	"picorg/internal"
	"picorg/internal/util"
)

// Normalizer turns a raw table row into a NormalizedDirective. The image
// extension, invalid-character set, and placeholder are injected so tests
// can vary them.
type Normalizer struct {
	ext         string
	invalid     string
	placeholder rune
}

func NewNormalizer(ext, invalid string, placeholder rune) *Normalizer {
	return &Normalizer{ext: ext, invalid: invalid, placeholder: placeholder}
}

// SkipError marks a row disqualified by a missing required field. Counted
// as a row error by the orchestrator, never fatal to the run.
type SkipError struct {
	LineNo int
	Reason string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("row %d skipped: %s", e.LineNo, e.Reason)
}

func (n *Normalizer) Normalize(row internal.RawRow, idx internal.ColumnIndexes) (internal.NormalizedDirective, error) {
	current := strings.TrimSpace(cellAt(row.Cells, idx.CurrentFileName))
	suggested := strings.TrimSpace(cellAt(row.Cells, idx.SuggestedFileName))
	area := strings.TrimSpace(cellAt(row.Cells, idx.Area))

	if current == "" || suggested == "" || area == "" {
		return internal.NormalizedDirective{}, &SkipError{LineNo: row.LineNo, Reason: "missing critical values"}
	}

	suggested = util.SanitizeName(suggested, n.invalid, n.placeholder)
	area = util.SanitizeName(area, n.invalid, n.placeholder)

	// Source name always gets the configured extension appended to the
	// normalized numeric base, whatever extension the raw value carried.
	source := util.NormalizeBase(current) + n.ext

	if !strings.HasSuffix(strings.ToLower(suggested), strings.ToLower(n.ext)) {
		suggested += n.ext
	}

	directive := internal.NormalizedDirective{
		LineNo:              row.LineNo,
		RawCurrentFileName:  current,
		SourceFileName:      source,
		DestinationFileName: suggested,
		AreaFolderName:      area,
	}

	if idx.Date >= 0 && idx.Date < len(row.Cells) {
		if date := strings.TrimSpace(row.Cells[idx.Date]); date != "" {
			directive.Date = &date
		}
	}
	if idx.Tags >= 0 && idx.Tags < len(row.Cells) {
		if tags := strings.TrimSpace(row.Cells[idx.Tags]); tags != "" {
			tags = strings.ReplaceAll(tags, ";", ",")
			directive.Tags = &tags
		}
	}

	return directive, nil
}

func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}
