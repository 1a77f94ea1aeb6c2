// internal/diagnostics/diagnostics.go

// Package diagnostics captures what a page looked like when its scenario
// failed: a screenshot, the serialized DOM and a short summary of the
// document's title, headings and alert messages.
package diagnostics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
)

const (
	artifactCollectionTimeout = 10 * time.Second
	screenshotQuality         = 100 // 100 selects PNG encoding
)

// consoleSource is implemented by pages that record their console output.
type consoleSource interface {
	ConsoleEntries() []schemas.ConsoleEntry
}

// Capturer writes failure artifacts under dir.
type Capturer struct {
	dir    string
	logger *zap.Logger
}

// NewCapturer returns a Capturer writing into dir, which is created on first use.
func NewCapturer(dir string, logger *zap.Logger) *Capturer {
	return &Capturer{dir: dir, logger: logger.Named("diagnostics")}
}

// Capture collects artifacts from page for the scenario called name. It uses
// its own deadline so it still works after the scenario's context expired.
// Partial results are returned together with the first error.
func (c *Capturer) Capture(page schemas.PageContext, name string) (*schemas.Diagnostics, error) {
	ctx, cancel := context.WithTimeout(context.Background(), artifactCollectionTimeout)
	defer cancel()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create diagnostics dir: %w", err)
	}
	base := filepath.Join(c.dir, fileStem(name)+"-"+page.ID())
	diag := &schemas.Diagnostics{}

	if url, err := page.Location(ctx); err == nil {
		diag.URL = url
	}
	if src, ok := page.(consoleSource); ok {
		diag.Console = src.ConsoleEntries()
	}

	var (
		wg              sync.WaitGroup
		shot            []byte
		dom             string
		shotErr, domErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		shotErr = page.Run(ctx, chromedp.FullScreenshot(&shot, screenshotQuality))
	}()
	go func() {
		defer wg.Done()
		domErr = page.Run(ctx, chromedp.OuterHTML("html", &dom, chromedp.ByQuery))
	}()
	wg.Wait()

	var errs []error
	if shotErr == nil {
		path := base + ".png"
		if err := os.WriteFile(path, shot, 0o644); err != nil {
			errs = append(errs, err)
		} else {
			diag.ScreenshotPath = path
		}
	} else {
		errs = append(errs, fmt.Errorf("screenshot: %w", shotErr))
	}

	if domErr == nil {
		path := base + ".html"
		if err := os.WriteFile(path, []byte(dom), 0o644); err != nil {
			errs = append(errs, err)
		} else {
			diag.DOMPath = path
		}
		if err := Summarize(dom, diag); err != nil {
			errs = append(errs, err)
		}
	} else {
		errs = append(errs, fmt.Errorf("dom: %w", domErr))
	}

	c.logger.Debug("Captured failure artifacts.",
		zap.String("scenario", name),
		zap.String("page_id", page.ID()),
		zap.String("screenshot", diag.ScreenshotPath),
		zap.String("dom", diag.DOMPath),
		zap.Int("console_entries", len(diag.Console)))

	if len(errs) > 0 {
		return diag, errs[0]
	}
	return diag, nil
}

// Summarize fills the title, headings and alerts of diag from an HTML document.
func Summarize(html string, diag *schemas.Diagnostics) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("failed to parse DOM snapshot: %w", err)
	}
	diag.Title = collapse(doc.Find("title").First().Text())
	diag.Headings = texts(doc.Find("h1, h2, h3, h4"))
	diag.Alerts = texts(doc.Find(".alert, .invalid-feedback, #successMessage"))
	return nil
}

func texts(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if t := collapse(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// fileStem maps a scenario name such as "members/create" to a safe file name.
func fileStem(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
