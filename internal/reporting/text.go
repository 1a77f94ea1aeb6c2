// internal/reporting/text.go
package reporting

import (
	"fmt"
	"io"
	"time"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
)

var statusLabel = map[schemas.ScenarioStatus]string{
	schemas.StatusPassed:  "PASS",
	schemas.StatusFailed:  "FAIL",
	schemas.StatusSkipped: "SKIP",
}

func renderText(w io.Writer, report *schemas.RunReport, toolVersion string) error {
	ew := &errWriter{w: w}
	ew.printf("%s %s run %s against %s\n", ToolName, toolVersion, report.RunID, report.BaseURL)

	for _, res := range report.Results {
		ew.printf("%s  %-28s %s\n", statusLabel[res.Status], res.FullName(), res.Duration.Round(time.Millisecond))
		switch res.Status {
		case schemas.StatusFailed:
			if res.FailedStep != "" {
				ew.printf("      step:    %s\n", res.FailedStep)
			}
			ew.printf("      failure: %s\n", res.Failure)
			ew.printf("      message: %s\n", res.Message)
			if d := res.Diagnostics; d != nil {
				if d.URL != "" {
					ew.printf("      url:     %s\n", d.URL)
				}
				if d.ScreenshotPath != "" {
					ew.printf("      screen:  %s\n", d.ScreenshotPath)
				}
				if d.DOMPath != "" {
					ew.printf("      dom:     %s\n", d.DOMPath)
				}
				for _, c := range d.Console {
					if c.Type == "error" || c.Type == "exception" {
						ew.printf("      console: %s\n", c.Text)
					}
				}
			}
		case schemas.StatusSkipped:
			ew.printf("      reason:  %s\n", res.Message)
		}
	}

	passed, failed, skipped := report.Counts()
	ew.printf("\n%d scenarios: %d passed, %d failed, %d skipped in %s\n",
		len(report.Results), passed, failed, skipped,
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	return ew.err
}

// errWriter keeps the first write error so rendering code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
