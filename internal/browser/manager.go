// internal/browser/manager.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
	"github.com/xkilldash9x/lispico-e2e/internal/config"
)

// ErrManagerClosed is returned by Acquire after Shutdown.
var ErrManagerClosed = errors.New("browser manager is shut down")

const (
	defaultLaunchTimeout = 60 * time.Second
	shutdownGracePeriod  = 15 * time.Second
)

// Manager owns the single browser process of a run and hands out isolated
// pages. Every page gets its own browser context, so cookies and storage are
// never shared between pages unless an AuthState is applied explicitly.
type Manager struct {
	logger     *zap.Logger
	browserCfg config.BrowserConfig
	navTimeout time.Duration

	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	pages  map[string]*Page
	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool

	initOnce sync.Once
	initErr  error
}

// NewManager creates a manager. The browser is launched by Start, or lazily by
// the first Acquire.
func NewManager(cfg config.Interface, logger *zap.Logger) *Manager {
	navTimeout := cfg.Wait().NavigationTimeout
	if cfg.Wait().Unbounded {
		navTimeout = -1
	}
	m := &Manager{
		logger:     logger.Named("browser_manager"),
		browserCfg: cfg.Browser(),
		navTimeout: navTimeout,
		pages:      make(map[string]*Page),
	}
	m.logger.Debug("Browser manager created (launch deferred).")
	return m
}

// Start launches the browser process. The process lives until Shutdown; ctx
// only bounds the launch itself.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return ErrManagerClosed
	}

	m.initOnce.Do(func() {
		m.initErr = m.launch(ctx)
	})
	return m.initErr
}

func (m *Manager) launch(ctx context.Context) error {
	m.logger.Info("Launching browser.", zap.Bool("headless", m.browserCfg.Headless))

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), DefaultAllocatorOptions(m.browserCfg)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(m.logger.Sugar().Debugf),
		chromedp.WithErrorf(m.logger.Sugar().Warnf),
	)

	timeout := m.browserCfg.LaunchTimeout
	if timeout <= 0 {
		timeout = defaultLaunchTimeout
	}
	launchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// The first Run allocates the browser and binds its lifetime to browserCtx,
	// so it must not receive launchCtx directly.
	if err := runWithin(launchCtx, func() error { return chromedp.Run(browserCtx) }); err != nil {
		browserCancel()
		allocCancel()
		return &schemas.NavigationError{Err: fmt.Errorf("failed to launch browser: %w", err)}
	}

	// Shutdown may have run while the browser was starting; it saw no
	// process to stop, so this one must not outlive the manager.
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = chromedp.Cancel(browserCtx)
		browserCancel()
		allocCancel()
		return ErrManagerClosed
	}
	m.allocCtx, m.allocCancel = allocCtx, allocCancel
	m.browserCtx, m.browserCancel = browserCtx, browserCancel
	m.mu.Unlock()

	m.logger.Info("Browser launched.")
	return nil
}

// Acquire opens a new page in a fresh browser context.
func (m *Manager) Acquire(ctx context.Context) (schemas.PageContext, error) {
	if err := m.Start(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	m.wg.Add(1)
	m.mu.Unlock()

	id := uuid.NewString()
	tabCtx, tabCancel := chromedp.NewContext(m.browserCtx, chromedp.WithNewBrowserContext())
	if err := runWithin(ctx, func() error { return chromedp.Run(tabCtx) }); err != nil {
		tabCancel()
		m.wg.Done()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	p := newPage(id, tabCtx, tabCancel, m.navTimeout, m.logger, m.release)

	m.mu.Lock()
	m.pages[id] = p
	m.mu.Unlock()

	m.logger.Debug("Page acquired.", zap.String("page_id", id))
	return p, nil
}

func (m *Manager) release(id string) {
	m.mu.Lock()
	if _, ok := m.pages[id]; ok {
		delete(m.pages, id)
		m.wg.Done()
	}
	m.mu.Unlock()
}

// OpenPages returns the number of pages not yet closed.
func (m *Manager) OpenPages() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pages)
}

// Shutdown closes every open page and then the browser process. Later
// Acquire calls fail with ErrManagerClosed.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	pages := make([]*Page, 0, len(m.pages))
	for _, p := range m.pages {
		pages = append(pages, p)
	}
	browserCtx, browserCancel, allocCancel := m.browserCtx, m.browserCancel, m.allocCancel
	m.mu.Unlock()

	m.logger.Info("Shutting down browser manager.", zap.Int("open_pages", len(pages)))

	var errs []error
	for _, p := range pages {
		if err := p.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	waitDone := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-ctx.Done():
		m.logger.Warn("Timed out waiting for pages to close.")
	case <-time.After(shutdownGracePeriod):
		m.logger.Warn("Grace period elapsed waiting for pages to close.")
	}

	if browserCtx != nil {
		if err := chromedp.Cancel(browserCtx); err != nil && !errors.Is(err, context.Canceled) {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
		browserCancel()
		allocCancel()
	}

	m.logger.Info("Browser manager shut down.")
	return errors.Join(errs...)
}
