package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/repo-preflight/internal/checks"
)

// WriteCompact writes a one-line summary followed by one line per non-pass
// result.
func WriteCompact(w io.Writer, r *Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "repo-preflight %s fail=%d warn=%d pass=%d exit=%d\n",
		r.Verdict(), r.Summary.Fail, r.Summary.Warn, r.Summary.Pass, r.ExitCode)
	for _, res := range r.Results {
		if res.Status == checks.StatusPass {
			continue
		}
		fmt.Fprintf(&b, "%s %s: %s\n", strings.ToUpper(string(res.Status)), res.ID, res.Message)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
