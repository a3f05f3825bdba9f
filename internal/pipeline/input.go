package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"picorg/internal"
)

// DetectSourceType picks the table format from the input file extension.
// Anything unrecognized is treated as markdown/plain text.
func DetectSourceType(path string) internal.TableSource {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return internal.SourceHTML
	case ".xlsx", ".xls":
		return internal.SourceXLSX
	case ".pdf":
		return internal.SourcePDF
	default:
		return internal.SourceMarkdown
	}
}

func ExtractFromFile(path string, source internal.TableSource) (internal.DirectiveTable, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return internal.DirectiveTable{}, fmt.Errorf("input file: %w", err)
	}

	switch source {
	case internal.SourceMarkdown:
		return ExtractFromMarkdown(string(blob))
	case internal.SourceHTML:
		return ExtractFromHTML(string(blob))
	case internal.SourceXLSX:
		return ExtractFromXLSX(blob)
	case internal.SourcePDF:
		return ExtractFromPDF(blob)
	default:
		return internal.DirectiveTable{}, fmt.Errorf("unsupported input type: %s", source)
	}
}
