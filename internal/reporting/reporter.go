// internal/reporting/reporter.go
package reporting

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
	"github.com/xkilldash9x/lispico-e2e/internal/observability"
)

// ToolName identifies the harness in machine-readable reports.
const ToolName = "lispico-e2e"

// Reporter writes a run report to an output.
type Reporter interface {
	// Write records the report. It may be called once per run.
	Write(report *schemas.RunReport) error
	// Close renders the report and closes the underlying output.
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// New creates a reporter for format writing to outputPath. An empty path or
// "stdout" writes to standard output.
func New(format, outputPath, toolVersion string) (Reporter, error) {
	if !supported(format) {
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	var writer io.WriteCloser
	if outputPath == "" || outputPath == "stdout" {
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}
	return NewWithWriter(format, writer, toolVersion)
}

// NewWithWriter creates a reporter that takes ownership of writer.
func NewWithWriter(format string, writer io.WriteCloser, toolVersion string) (Reporter, error) {
	var render renderFunc
	switch format {
	case "text":
		render = renderText
	case "json":
		render = renderJSON
	case "junit":
		render = renderJUnit
	default:
		writer.Close()
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return &reporter{
		format:      format,
		writer:      writer,
		toolVersion: toolVersion,
		render:      render,
		logger:      observability.GetLogger().Named("reporter"),
	}, nil
}

func supported(format string) bool {
	switch format {
	case "text", "json", "junit":
		return true
	}
	return false
}

type renderFunc func(w io.Writer, report *schemas.RunReport, toolVersion string) error

// reporter buffers the report until Close so a partially written output
// never looks complete.
type reporter struct {
	format      string
	writer      io.WriteCloser
	toolVersion string
	render      renderFunc
	logger      *zap.Logger

	mu     sync.Mutex
	report *schemas.RunReport
	closed bool
}

func (r *reporter) Write(report *schemas.RunReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("reporter is closed")
	}
	if r.report != nil {
		return fmt.Errorf("report for run %s already written", r.report.RunID)
	}
	r.report = report
	return nil
}

func (r *reporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	var renderErr error
	if r.report != nil {
		renderErr = r.render(r.writer, r.report, r.toolVersion)
	}
	// Always attempt to close the writer, regardless of rendering success.
	closeErr := r.writer.Close()

	if renderErr != nil {
		r.logger.Error("Failed to render report", zap.String("format", r.format), zap.Error(renderErr))
		return fmt.Errorf("failed to render %s report: %w", r.format, renderErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}
	if r.report != nil {
		r.logger.Debug("Report written", zap.String("format", r.format), zap.Int("results", len(r.report.Results)))
	}
	return nil
}
