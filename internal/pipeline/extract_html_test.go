package pipeline

import (
	"errors"
	"testing"
)

func TestExtractFromHTML(t *testing.T) {
	html := `<table>
<tr><th>Current File Name</th><th>Suggested File Name</th><th>Area</th><th>Tags</th></tr>
<tr><td>1</td><td>beach-sunset</td><td>Vacation</td><td>sunset;beach</td></tr>
<tr><td>2</td><td>city lights</td><td>Trips</td><td></td></tr>
</table>`
	table, err := ExtractFromHTML(html)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows=%d", len(table.Rows))
	}
	if table.Rows[0].Cells[1] != "beach-sunset" {
		t.Fatalf("cells bad: %+v", table.Rows[0])
	}
	if table.Indexes.Tags != 3 || table.Indexes.Date != -1 {
		t.Fatalf("indexes=%+v", table.Indexes)
	}
}

func TestExtractFromHTMLNoTable(t *testing.T) {
	_, err := ExtractFromHTML(`<p>no tables here</p>`)
	if !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("err=%v", err)
	}
}
