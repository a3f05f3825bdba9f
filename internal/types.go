package internal

type TableSource string

const (
	SourceMarkdown TableSource = "markdown"
	SourceHTML     TableSource = "html"
	SourceXLSX     TableSource = "xlsx"
	SourcePDF      TableSource = "pdf"
)

// ColumnIndexes holds the resolved cell positions of the recognized
// directive columns. Optional columns are -1 when absent from the header.
type ColumnIndexes struct {
	CurrentFileName   int
	SuggestedFileName int
	Area              int
	Date              int
	Tags              int
}

func (c ColumnIndexes) MaxRequired() int {
	max := c.CurrentFileName
	if c.SuggestedFileName > max {
		max = c.SuggestedFileName
	}
	if c.Area > max {
		max = c.Area
	}
	return max
}

type RawRow struct {
	LineNo int
	Source TableSource
	Cells  []string
}

// DirectiveTable is the parsed directive table: canonical column keys in
// header order, the original header labels kept for diagnostics, and the
// retained body rows in source order.
type DirectiveTable struct {
	Columns []string
	Labels  map[string]string
	Indexes ColumnIndexes
	Rows    []RawRow
}

// NormalizedDirective is one row after field extraction and filename
// normalization, ready for the relocation step.
type NormalizedDirective struct {
	LineNo              int
	RawCurrentFileName  string
	SourceFileName      string
	DestinationFileName string
	AreaFolderName      string
	Date                *string
	Tags                *string
}

type RowStatus string

const (
	RowMoved  RowStatus = "MOVED"
	RowFailed RowStatus = "FAILED"
)

type RowOutcome struct {
	LineNo     int
	SourceName string
	DestPath   string
	Status     RowStatus
	Detail     string
}

type RunRecord struct {
	ID         int
	TraceID    string
	Source     string
	InputRef   string
	CountsJSON string
	CreatedAt  string
}
