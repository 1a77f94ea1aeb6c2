// api/schemas/results.go
package schemas

import "time"

// ScenarioStatus is the outcome recorded for one scenario.
type ScenarioStatus string

const (
	StatusPassed  ScenarioStatus = "passed"
	StatusFailed  ScenarioStatus = "failed"
	StatusSkipped ScenarioStatus = "skipped"
)

// Diagnostics holds what was captured from a page when its scenario failed.
type Diagnostics struct {
	ScreenshotPath string         `json:"screenshot_path,omitempty"`
	DOMPath        string         `json:"dom_path,omitempty"`
	URL            string         `json:"url,omitempty"`
	Title          string         `json:"title,omitempty"`
	Headings       []string       `json:"headings,omitempty"`
	Alerts         []string       `json:"alerts,omitempty"`
	Console        []ConsoleEntry `json:"console,omitempty"`
}

// ConsoleEntry is one console message, log entry or uncaught exception
// reported by a page.
type ConsoleEntry struct {
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ScenarioResult is the record a scenario reports back to the registry.
type ScenarioResult struct {
	Group       string         `json:"group"`
	Name        string         `json:"name"`
	Status      ScenarioStatus `json:"status"`
	StartedAt   time.Time      `json:"started_at"`
	Duration    time.Duration  `json:"duration_ns"`
	PageID      string         `json:"page_id,omitempty"`
	FailedStep  string         `json:"failed_step,omitempty"`
	Failure     FailureKind    `json:"failure,omitempty"`
	Message     string         `json:"message,omitempty"`
	Diagnostics *Diagnostics   `json:"diagnostics,omitempty"`
}

// FullName is the "group/name" form used in logs and reports.
func (r ScenarioResult) FullName() string {
	return r.Group + "/" + r.Name
}

// RunReport aggregates every scenario result of one harness run.
type RunReport struct {
	RunID      string           `json:"run_id"`
	BaseURL    string           `json:"base_url"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Results    []ScenarioResult `json:"results"`
}

// Counts returns the number of passed, failed and skipped scenarios.
func (r *RunReport) Counts() (passed, failed, skipped int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return passed, failed, skipped
}

// Succeeded is true when every scenario passed.
func (r *RunReport) Succeeded() bool {
	_, failed, skipped := r.Counts()
	return failed == 0 && skipped == 0
}
