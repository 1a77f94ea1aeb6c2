// internal/reporting/json.go
package reporting

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonReport struct {
	Tool    string `json:"tool"`
	Version string `json:"version"`
	*schemas.RunReport
	Summary jsonSummary `json:"summary"`
}

type jsonSummary struct {
	Total     int  `json:"total"`
	Passed    int  `json:"passed"`
	Failed    int  `json:"failed"`
	Skipped   int  `json:"skipped"`
	Succeeded bool `json:"succeeded"`
}

func renderJSON(w io.Writer, report *schemas.RunReport, toolVersion string) error {
	passed, failed, skipped := report.Counts()
	out := jsonReport{
		Tool:      ToolName,
		Version:   toolVersion,
		RunReport: report,
		Summary: jsonSummary{
			Total:     len(report.Results),
			Passed:    passed,
			Failed:    failed,
			Skipped:   skipped,
			Succeeded: report.Succeeded(),
		},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
