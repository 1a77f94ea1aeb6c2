// internal/reporting/reporter_test.go
package reporting_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
	"github.com/xkilldash9x/lispico-e2e/internal/reporting"
)

const testToolVersion = "v1.0.0-test"

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func sampleReport() *schemas.RunReport {
	start := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	return &schemas.RunReport{
		RunID:      "run-1",
		BaseURL:    "https://lispico.local.host",
		StartedAt:  start,
		FinishedAt: start.Add(42 * time.Second),
		Results: []schemas.ScenarioResult{
			{Group: "login", Name: "login", Status: schemas.StatusPassed, StartedAt: start, Duration: 1500 * time.Millisecond, PageID: "p1"},
			{Group: "members", Name: "list", Status: schemas.StatusPassed, StartedAt: start, Duration: 2 * time.Second, PageID: "p2"},
			{
				Group: "members", Name: "create", Status: schemas.StatusFailed, StartedAt: start,
				Duration: 30 * time.Second, PageID: "p3",
				FailedStep: "submit (enter)", Failure: schemas.FailureTimeout,
				Message: `create: step 19 (wait for navigation): timed out after 30s waiting for navigation after #3 complete (bound 30s)`,
				Diagnostics: &schemas.Diagnostics{
					URL:            "https://lispico.local.host/admin/members/create",
					ScreenshotPath: "/tmp/members_create-p3.png",
					Alerts:         []string{"Email is required"},
					Console: []schemas.ConsoleEntry{
						{Type: "log", Source: "console-api", Text: "validating", Timestamp: start},
						{Type: "error", Source: "network", Text: "Failed to load resource: 422", Timestamp: start},
					},
				},
			},
			{Group: "members", Name: "edit", Status: schemas.StatusSkipped, StartedAt: start, Message: `dependency "create" did not pass`},
		},
	}
}

func render(t *testing.T, format string) string {
	t.Helper()
	out := &bufferCloser{}
	r, err := reporting.NewWithWriter(format, out, testToolVersion)
	require.NoError(t, err)
	require.NoError(t, r.Write(sampleReport()))
	require.NoError(t, r.Close())
	assert.True(t, out.closed, "Close must close the writer")
	return out.String()
}

func TestNew_Stdout(t *testing.T) {
	for _, path := range []string{"", "stdout"} {
		r, err := reporting.New("text", path, testToolVersion)
		require.NoError(t, err)
		assert.NoError(t, r.Close(), "closing stdout is a no-op")
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	r, err := reporting.New("json", path, testToolVersion)
	require.NoError(t, err)
	require.NoError(t, r.Write(sampleReport()))
	require.NoError(t, r.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"run_id": "run-1"`)
}

func TestNew_Failures(t *testing.T) {
	_, err := reporting.New("sarif", "stdout", testToolVersion)
	assert.EqualError(t, err, "unsupported output format: sarif")

	path := filepath.Join(t.TempDir(), "never.xml")
	_, err = reporting.New("yaml", path, testToolVersion)
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no file is created for an unsupported format")

	_, err = reporting.New("json", filepath.Join(t.TempDir(), "missing", "dir", "r.json"), testToolVersion)
	assert.ErrorContains(t, err, "failed to create output file")
}

func TestWrite_Twice(t *testing.T) {
	r, err := reporting.NewWithWriter("text", &bufferCloser{}, testToolVersion)
	require.NoError(t, err)
	require.NoError(t, r.Write(sampleReport()))
	assert.ErrorContains(t, r.Write(sampleReport()), "already written")
	require.NoError(t, r.Close())
	assert.ErrorContains(t, r.Write(sampleReport()), "closed")
	assert.NoError(t, r.Close(), "Close is idempotent")
}

func TestTextReport(t *testing.T) {
	out := render(t, "text")
	lines := strings.Split(strings.TrimSpace(out), "\n")

	assert.Equal(t, "lispico-e2e v1.0.0-test run run-1 against https://lispico.local.host", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "PASS  login/login"))
	assert.Contains(t, out, "FAIL  members/create")
	assert.Contains(t, out, "      step:    submit (enter)\n")
	assert.Contains(t, out, "      failure: timeout\n")
	assert.Contains(t, out, "      screen:  /tmp/members_create-p3.png\n")
	assert.Contains(t, out, "      console: Failed to load resource: 422\n")
	assert.NotContains(t, out, "validating", "only errors are echoed")
	assert.Contains(t, out, "SKIP  members/edit")
	assert.Contains(t, out, `      reason:  dependency "create" did not pass`)
	assert.Equal(t, "4 scenarios: 2 passed, 1 failed, 1 skipped in 42s", lines[len(lines)-1])
}

func TestJSONReport(t *testing.T) {
	out := render(t, "json")

	var got struct {
		Tool    string                   `json:"tool"`
		Version string                   `json:"version"`
		RunID   string                   `json:"run_id"`
		Results []schemas.ScenarioResult `json:"results"`
		Summary struct {
			Total, Passed, Failed, Skipped int
			Succeeded                      bool
		} `json:"summary"`
	}
	require.NoError(t, jsoniter.Unmarshal([]byte(out), &got))

	assert.Equal(t, "lispico-e2e", got.Tool)
	assert.Equal(t, testToolVersion, got.Version)
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, 4, got.Summary.Total)
	assert.Equal(t, 1, got.Summary.Failed)
	assert.False(t, got.Summary.Succeeded)

	if diff := cmp.Diff(sampleReport().Results, got.Results); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestJUnitReport(t *testing.T) {
	out := render(t, "junit")

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(out))

	root := doc.SelectElement("testsuites")
	require.NotNil(t, root)
	assert.Equal(t, "4", root.SelectAttrValue("tests", ""))
	assert.Equal(t, "1", root.SelectAttrValue("failures", ""))
	assert.Equal(t, "1", root.SelectAttrValue("skipped", ""))
	assert.Equal(t, "42.000", root.SelectAttrValue("time", ""))

	suites := root.SelectElements("testsuite")
	require.Len(t, suites, 2)
	assert.Equal(t, "login", suites[0].SelectAttrValue("name", ""))

	members := suites[1]
	assert.Equal(t, "3", members.SelectAttrValue("tests", ""))
	assert.Equal(t, "32.000", members.SelectAttrValue("time", ""))
	runID := members.FindElement("./properties/property[@name='run_id']")
	require.NotNil(t, runID)
	assert.Equal(t, "run-1", runID.SelectAttrValue("value", ""))

	cases := members.SelectElements("testcase")
	require.Len(t, cases, 3)
	failure := cases[1].SelectElement("failure")
	require.NotNil(t, failure)
	assert.Equal(t, "timeout", failure.SelectAttrValue("type", ""))
	assert.Contains(t, failure.Text(), "step: submit (enter)")
	assert.Contains(t, failure.Text(), "alert: Email is required")
	assert.Contains(t, failure.Text(), "console [log] validating")
	assert.Nil(t, cases[0].SelectElement("failure"))
	assert.NotNil(t, cases[2].SelectElement("skipped"))
}
