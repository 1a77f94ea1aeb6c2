// internal/reporting/junit.go
package reporting

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
)

// renderJUnit writes one testsuite per scenario group, in the order the
// groups first appear in the report.
func renderJUnit(w io.Writer, report *schemas.RunReport, toolVersion string) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("testsuites")
	root.CreateAttr("name", ToolName)
	passed, failed, skipped := report.Counts()
	setCounts(root, passed+failed+skipped, failed, skipped, report.FinishedAt.Sub(report.StartedAt))

	var order []string
	byGroup := make(map[string][]schemas.ScenarioResult)
	for _, res := range report.Results {
		if _, ok := byGroup[res.Group]; !ok {
			order = append(order, res.Group)
		}
		byGroup[res.Group] = append(byGroup[res.Group], res)
	}

	for _, group := range order {
		results := byGroup[group]
		suite := root.CreateElement("testsuite")
		suite.CreateAttr("name", group)
		suite.CreateAttr("timestamp", results[0].StartedAt.UTC().Format(time.RFC3339))

		props := suite.CreateElement("properties")
		addProperty(props, "run_id", report.RunID)
		addProperty(props, "base_url", report.BaseURL)
		addProperty(props, "tool_version", toolVersion)

		var f, s int
		var total time.Duration
		for _, res := range results {
			total += res.Duration
			switch res.Status {
			case schemas.StatusFailed:
				f++
			case schemas.StatusSkipped:
				s++
			}
			addTestCase(suite, res)
		}
		setCounts(suite, len(results), f, s, total)
	}

	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}

func setCounts(el *etree.Element, tests, failures, skipped int, d time.Duration) {
	el.CreateAttr("tests", strconv.Itoa(tests))
	el.CreateAttr("failures", strconv.Itoa(failures))
	el.CreateAttr("errors", "0")
	el.CreateAttr("skipped", strconv.Itoa(skipped))
	el.CreateAttr("time", seconds(d))
}

func addTestCase(suite *etree.Element, res schemas.ScenarioResult) {
	tc := suite.CreateElement("testcase")
	tc.CreateAttr("classname", res.Group)
	tc.CreateAttr("name", res.Name)
	tc.CreateAttr("time", seconds(res.Duration))

	switch res.Status {
	case schemas.StatusFailed:
		failure := tc.CreateElement("failure")
		failure.CreateAttr("type", string(res.Failure))
		failure.CreateAttr("message", res.Message)
		failure.SetText(failureDetail(res))
	case schemas.StatusSkipped:
		tc.CreateElement("skipped").CreateAttr("message", res.Message)
	}
	if res.PageID != "" {
		tc.CreateElement("system-out").SetText("page_id=" + res.PageID)
	}
}

func failureDetail(res schemas.ScenarioResult) string {
	var b strings.Builder
	if res.FailedStep != "" {
		fmt.Fprintf(&b, "step: %s\n", res.FailedStep)
	}
	fmt.Fprintf(&b, "%s\n", res.Message)
	if d := res.Diagnostics; d != nil {
		if d.URL != "" {
			fmt.Fprintf(&b, "url: %s\n", d.URL)
		}
		if d.ScreenshotPath != "" {
			fmt.Fprintf(&b, "screenshot: %s\n", d.ScreenshotPath)
		}
		if d.DOMPath != "" {
			fmt.Fprintf(&b, "dom: %s\n", d.DOMPath)
		}
		for _, h := range d.Headings {
			fmt.Fprintf(&b, "heading: %s\n", h)
		}
		for _, a := range d.Alerts {
			fmt.Fprintf(&b, "alert: %s\n", a)
		}
		for _, c := range d.Console {
			fmt.Fprintf(&b, "console [%s] %s\n", c.Type, c.Text)
		}
	}
	return b.String()
}

func addProperty(props *etree.Element, name, value string) {
	p := props.CreateElement("property")
	p.CreateAttr("name", name)
	p.CreateAttr("value", value)
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
