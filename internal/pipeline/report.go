package pipeline

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// WriteErrorReport persists one line per failed row so the list survives
// the terminal session.
func WriteErrorReport(path string, errorList []string, now time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Picture organization errors - %s\n\n", now.Format("2006-01-02 15:04:05"))
	for _, line := range errorList {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
