package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"picorg/internal"
	"picorg/internal/util"
)

// ErrTableNotFound is returned when the input contains no block shaped
// like a directive table. Fatal to the whole run.
var ErrTableNotFound = errors.New("no directive table found")

const (
	keyCurrentFileName   = "currentfilename"
	keySuggestedFileName = "suggestedfilename"
	keyArea              = "area"
	keyDate              = "date"
	keyTags              = "tags"
)

var requiredKeys = []string{keyCurrentFileName, keySuggestedFileName, keyArea}

// MissingColumnsError reports required columns absent from the table
// header. Similar lists existing canonical keys that contain a missing key
// as a substring, as a diagnostic hint only.
type MissingColumnsError struct {
	Missing []string
	Similar map[string][]string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("required columns not found: %s", strings.Join(e.Missing, ", "))
}

var reSeparator = regexp.MustCompile(`^\s*[|:\-\s]+\s*$`)

// ExtractFromMarkdown locates the first markdown-style pipe table in text:
// a header line, a dash separator line, and one or more body lines.
func ExtractFromMarkdown(text string) (internal.DirectiveTable, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	for i := 0; i+2 < len(lines); i++ {
		header := splitCells(lines[i])
		if len(header) == 0 {
			continue
		}
		sep := lines[i+1]
		if !reSeparator.MatchString(sep) || !strings.Contains(sep, "-") {
			continue
		}

		body := make([][]string, 0)
		for j := i + 2; j < len(lines); j++ {
			cells := splitCells(lines[j])
			if len(cells) == 0 {
				break
			}
			body = append(body, cells)
		}
		if len(body) == 0 {
			continue
		}

		return buildTable(internal.SourceMarkdown, header, body)
	}

	return internal.DirectiveTable{}, ErrTableNotFound
}

// ExtractFromHTML reads the directive table from the first <table> element
// that has a header row and at least one body row.
func ExtractFromHTML(html string) (internal.DirectiveTable, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return internal.DirectiveTable{}, err
	}

	var header []string
	var body [][]string
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return true
		}

		header = header[:0]
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			header = append(header, util.NormalizeSpaces(cell.Text()))
		})

		body = body[:0]
		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, util.NormalizeSpaces(cell.Text()))
			})
			if len(cells) > 0 {
				body = append(body, cells)
			}
		})
		return len(body) == 0
	})

	if len(header) == 0 || len(body) == 0 {
		return internal.DirectiveTable{}, ErrTableNotFound
	}
	return buildTable(internal.SourceHTML, header, body)
}

// ExtractFromXLSX reads the directive table from the first sheet that has
// a header row and at least one body row.
func ExtractFromXLSX(blob []byte) (internal.DirectiveTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		return internal.DirectiveTable{}, err
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}

		var header []string
		body := [][]string{}
		for _, row := range rows {
			cells := trimCells(row)
			if len(cells) == 0 {
				continue
			}
			if header == nil {
				header = cells
				continue
			}
			body = append(body, cells)
		}
		if header == nil || len(body) == 0 {
			continue
		}
		return buildTable(internal.SourceXLSX, header, body)
	}

	return internal.DirectiveTable{}, ErrTableNotFound
}

// ExtractFromPDF pulls the plain-text layer of every page and looks for a
// pipe table inside it.
func ExtractFromPDF(blob []byte) (internal.DirectiveTable, error) {
	r, err := pdf.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return internal.DirectiveTable{}, err
	}

	var text strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}

	table, err := ExtractFromMarkdown(text.String())
	if err != nil {
		return internal.DirectiveTable{}, err
	}
	for i := range table.Rows {
		table.Rows[i].Source = internal.SourcePDF
	}
	return table, nil
}

// buildTable canonicalizes the header, resolves required and optional
// column indexes, and keeps only body rows with enough cells to cover
// every required column.
func buildTable(source internal.TableSource, header []string, body [][]string) (internal.DirectiveTable, error) {
	columns := make([]string, 0, len(header))
	labels := make(map[string]string, len(header))
	for _, label := range header {
		// Empty interior cells stay as empty keys so column indexes keep
		// lining up with row cells.
		key := util.CanonicalKey(label)
		columns = append(columns, key)
		if _, seen := labels[key]; key != "" && !seen {
			labels[key] = strings.TrimSpace(label)
		}
	}

	idx, err := resolveColumns(columns)
	if err != nil {
		return internal.DirectiveTable{}, err
	}

	table := internal.DirectiveTable{
		Columns: columns,
		Labels:  labels,
		Indexes: idx,
	}

	minCells := idx.MaxRequired() + 1
	for i, cells := range body {
		if len(cells) < minCells {
			log.Printf("warning: skipping row %d with insufficient cells: %v", i+1, cells)
			continue
		}
		table.Rows = append(table.Rows, internal.RawRow{
			LineNo: i + 1,
			Source: source,
			Cells:  cells,
		})
	}

	return table, nil
}

func resolveColumns(columns []string) (internal.ColumnIndexes, error) {
	find := func(key string) int {
		for i, c := range columns {
			if c == key {
				return i
			}
		}
		return -1
	}

	idx := internal.ColumnIndexes{
		CurrentFileName:   find(keyCurrentFileName),
		SuggestedFileName: find(keySuggestedFileName),
		Area:              find(keyArea),
		Date:              find(keyDate),
		Tags:              find(keyTags),
	}

	missing := []string{}
	similar := map[string][]string{}
	for _, key := range requiredKeys {
		if find(key) >= 0 {
			continue
		}
		missing = append(missing, key)
		for _, c := range columns {
			if strings.Contains(c, key) {
				similar[key] = append(similar[key], c)
			}
		}
	}
	if len(missing) > 0 {
		return idx, &MissingColumnsError{Missing: missing, Similar: similar}
	}

	return idx, nil
}

// splitCells splits a pipe-delimited line into trimmed cells, discarding
// the empty leading/trailing segments produced by boundary pipes.
func splitCells(line string) []string {
	if !strings.Contains(line, "|") {
		return nil
	}
	parts := strings.Split(line, "|")
	start, end := 0, len(parts)
	if start < end && strings.TrimSpace(parts[start]) == "" {
		start++
	}
	if start < end && strings.TrimSpace(parts[end-1]) == "" {
		end--
	}
	out := make([]string, 0, end-start)
	for _, p := range parts[start:end] {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func trimCells(row []string) []string {
	out := make([]string, len(row))
	empty := true
	for i, c := range row {
		out[i] = strings.TrimSpace(c)
		if out[i] != "" {
			empty = false
		}
	}
	if empty {
		return nil
	}
	return out
}
