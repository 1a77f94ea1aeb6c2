// internal/browser/page.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/inspector"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
)

// Page is one isolated browser tab handed out by the Manager. It implements
// schemas.PageContext.
type Page struct {
	id         string
	ctx        context.Context
	cancel     context.CancelFunc
	logger     *zap.Logger
	navTimeout time.Duration

	navigations  atomic.Uint64
	acceptDialog atomic.Bool
	console      consoleLog

	closeOnce sync.Once
	closeErr  error
	onClose   func(id string)
}

var _ schemas.PageContext = (*Page)(nil)

func newPage(id string, ctx context.Context, cancel context.CancelFunc, navTimeout time.Duration, logger *zap.Logger, onClose func(string)) *Page {
	p := &Page{
		id:         id,
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger.With(zap.String("page_id", id)),
		navTimeout: navTimeout,
		onClose:    onClose,
	}
	chromedp.ListenTarget(ctx, p.handleEvent)
	return p
}

// handleEvent runs on the chromedp event loop and must not block on CDP calls.
func (p *Page) handleEvent(ev interface{}) {
	if p.console.handle(ev) {
		return
	}
	switch e := ev.(type) {
	case *page.EventLoadEventFired:
		n := p.navigations.Add(1)
		p.logger.Debug("Load event fired.", zap.Uint64("navigation", n))
	case *page.EventNavigatedWithinDocument:
		n := p.navigations.Add(1)
		p.logger.Debug("Same-document navigation.", zap.String("url", e.URL), zap.Uint64("navigation", n))
	case *page.EventJavascriptDialogOpening:
		accept := p.acceptDialog.Swap(false)
		if accept {
			p.logger.Debug("Accepting armed dialog.", zap.String("type", string(e.Type)), zap.String("message", e.Message))
		} else {
			p.logger.Warn("Dismissing unexpected dialog.", zap.String("type", string(e.Type)), zap.String("message", e.Message))
		}
		go func() {
			if err := chromedp.Run(p.ctx, page.HandleJavaScriptDialog(accept)); err != nil && p.ctx.Err() == nil {
				p.logger.Warn("Failed to handle dialog.", zap.Error(err))
			}
		}()
	case *inspector.EventTargetCrashed:
		p.logger.Error("Page crashed.")
	}
}

func (p *Page) ID() string { return p.id }

// ConsoleEntries returns the console output recorded so far, oldest first.
func (p *Page) ConsoleEntries() []schemas.ConsoleEntry { return p.console.snapshot() }

// NavigationCount returns the number of completed navigations seen so far.
func (p *Page) NavigationCount() uint64 { return p.navigations.Load() }

// AcceptNextDialog arms the page to accept the next dialog that opens.
func (p *Page) AcceptNextDialog() { p.acceptDialog.Store(true) }

// Navigate loads url and waits for the load event, bounded by the configured
// navigation timeout. A negative timeout leaves only ctx as the bound.
func (p *Page) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := ctx, context.CancelFunc(func() {})
	if p.navTimeout > 0 {
		navCtx, cancel = context.WithTimeout(ctx, p.navTimeout)
	}
	defer cancel()

	p.logger.Debug("Navigating.", zap.String("url", url))
	if err := p.Run(navCtx, chromedp.Navigate(url)); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return err
		}
		return &schemas.NavigationError{URL: url, Err: err}
	}
	return nil
}

func (p *Page) Evaluate(ctx context.Context, expression string, res any) error {
	return p.Run(ctx, chromedp.Evaluate(expression, res))
}

func (p *Page) Location(ctx context.Context) (string, error) {
	var loc string
	if err := p.Run(ctx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

// Run executes actions against this page's target, canceled when either the
// page closes or ctx is done.
func (p *Page) Run(ctx context.Context, actions ...chromedp.Action) error {
	if p.ctx.Err() != nil {
		return fmt.Errorf("page %s is closed", p.id)
	}
	runCtx, cancel := CombineContext(p.ctx, ctx)
	defer cancel()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		// Surface the caller's deadline rather than the derived cancellation.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// Close closes the tab and its browser context. It is safe to call more than once.
func (p *Page) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		done := make(chan error, 1)
		go func() { done <- chromedp.Cancel(p.ctx) }()
		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				p.closeErr = fmt.Errorf("failed to close page %s: %w", p.id, err)
			}
		case <-ctx.Done():
			p.closeErr = ctx.Err()
		}
		p.cancel()
		if p.onClose != nil {
			p.onClose(p.id)
		}
		p.logger.Debug("Page closed.")
	})
	return p.closeErr
}
