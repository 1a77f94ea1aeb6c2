// internal/diagnostics/diagnostics_test.go
package diagnostics

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
	"github.com/xkilldash9x/lispico-e2e/internal/mocks"
)

const failedEditPage = `<!DOCTYPE html>
<html><head><title> Lispico
  Admin </title></head>
<body>
  <h1>Members - Edit</h1>
  <div class="alert alert-danger">Email  is required</div>
  <form><h4>   </h4></form>
</body></html>`

func TestSummarize(t *testing.T) {
	var diag schemas.Diagnostics
	require.NoError(t, Summarize(failedEditPage, &diag))

	assert.Equal(t, "Lispico Admin", diag.Title)
	assert.Equal(t, []string{"Members - Edit"}, diag.Headings, "blank headings are dropped")
	assert.Equal(t, []string{"Email is required"}, diag.Alerts)
}

func TestFileStem(t *testing.T) {
	assert.Equal(t, "members_create", fileStem("members/create"))
	assert.Equal(t, "login_rejected", fileStem("login_rejected"))
	assert.Equal(t, "a_b_c", fileStem("a b:c"))
}

func TestCapture_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	page := mocks.NewMockPage("p-1")
	page.On("Location", mock.Anything).Return("http://stub/admin/members", nil)
	// Every chromedp action fails; the capture still reports the URL.
	page.On("Run", mock.Anything, mock.Anything).Return(errors.New("target closed"))

	c := NewCapturer(dir, zaptest.NewLogger(t))
	diag, err := c.Capture(page, "members/edit")
	require.Error(t, err)
	require.NotNil(t, diag)
	assert.Equal(t, "http://stub/admin/members", diag.URL)
	assert.Empty(t, diag.ScreenshotPath)
	assert.Empty(t, diag.DOMPath)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCapture_UsesItsOwnDeadline(t *testing.T) {
	page := mocks.NewMockPage("p-2")
	page.On("Location", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok && ctx.Err() == nil
	})).Return("about:blank", nil)
	page.On("Run", mock.Anything, mock.Anything).Return(errors.New("no page"))

	diag, _ := NewCapturer(t.TempDir(), zaptest.NewLogger(t)).Capture(page, "login")
	assert.Equal(t, "about:blank", diag.URL)
	page.AssertExpectations(t)
}

type recordingPage struct {
	*mocks.MockPage
	console []schemas.ConsoleEntry
}

func (p recordingPage) ConsoleEntries() []schemas.ConsoleEntry { return p.console }

func TestCapture_IncludesConsoleOutput(t *testing.T) {
	page := recordingPage{
		MockPage: mocks.NewMockPage("p-3"),
		console:  []schemas.ConsoleEntry{{Type: "exception", Source: "runtime", Text: "TypeError: x is undefined"}},
	}
	page.On("Location", mock.Anything).Return("http://stub/admin/members/create", nil)
	page.On("Run", mock.Anything, mock.Anything).Return(errors.New("target closed"))

	diag, err := NewCapturer(t.TempDir(), zaptest.NewLogger(t)).Capture(page, "members/create")
	require.Error(t, err)
	require.Len(t, diag.Console, 1)
	assert.Equal(t, "TypeError: x is undefined", diag.Console[0].Text)
}
