// internal/browsertest/browsertest.go

// Package browsertest provides the fixture shared by tests that drive a real
// browser against the stub panel. Tests skip when no Chrome binary is found
// or when -short is set.
package browsertest

import (
	"context"
	"net/http/httptest"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/semaphore"

	"github.com/xkilldash9x/lispico-e2e/internal/browser"
	"github.com/xkilldash9x/lispico-e2e/internal/config"
	"github.com/xkilldash9x/lispico-e2e/internal/panelstub"
)

const (
	// Email and Password are the stub panel's credentials.
	Email    = "root@fullspeed.co.jp"
	Password = "fullspeed"

	maxConcurrentBrowsers = 2
	defaultTestTimeout    = 120 * time.Second
	cleanupGracePeriod    = 5 * time.Second
	shutdownTimeout       = 15 * time.Second
)

var (
	processSemaphore     *semaphore.Weighted
	processSemaphoreOnce sync.Once
)

func getProcessSemaphore() *semaphore.Weighted {
	processSemaphoreOnce.Do(func() {
		n := int64(runtime.GOMAXPROCS(0))
		if n > maxConcurrentBrowsers {
			n = maxConcurrentBrowsers
		}
		if n < 1 {
			n = 1
		}
		processSemaphore = semaphore.NewWeighted(n)
	})
	return processSemaphore
}

var chromeCandidates = []string{
	"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell", "chrome",
}

// ChromePath returns the Chrome binary to use, or "" when none is installed.
// LISPICO_CHROME overrides the lookup.
func ChromePath() string {
	if p := os.Getenv("LISPICO_CHROME"); p != "" {
		return p
	}
	for _, name := range chromeCandidates {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}

// Fixture is a running stub panel plus a started browser manager.
type Fixture struct {
	Config  *config.Config
	Manager *browser.Manager
	Stub    *panelstub.Server
	BaseURL string
	Logger  *zap.Logger
	// Ctx ends shortly before the test deadline.
	Ctx context.Context
}

// New starts a stub panel and a browser manager for t, and registers their
// teardown. configure may adjust the configuration before the manager starts.
func New(t *testing.T, configure ...func(*config.Config)) *Fixture {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	chrome := ChromePath()
	if chrome == "" {
		t.Skip("skipping browser test: no Chrome binary found (set LISPICO_CHROME)")
	}

	logger := zaptest.NewLogger(t).With(zap.String("test", t.Name()))

	deadline, ok := t.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultTestTimeout)
	}
	ctx, cancel := context.WithDeadline(context.Background(), deadline.Add(-cleanupGracePeriod))
	t.Cleanup(cancel)

	sem := getProcessSemaphore()
	if err := sem.Acquire(ctx, 1); err != nil {
		t.Fatalf("failed to acquire browser slot: %v", err)
	}
	t.Cleanup(func() { sem.Release(1) })

	stub := panelstub.New(panelstub.Options{Email: Email, Password: Password}, logger)
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)

	cfg := config.NewDefaultConfig()
	cfg.SetTargetBaseURL(srv.URL)
	cfg.TargetCfg.Email = Email
	cfg.TargetCfg.Password = Password
	cfg.BrowserCfg.ExecPath = chrome
	cfg.BrowserCfg.DisableCache = true
	cfg.WaitCfg.PollInterval = 50 * time.Millisecond
	cfg.WaitCfg.DefaultTimeout = 20 * time.Second
	cfg.WaitCfg.NavigationTimeout = 30 * time.Second
	cfg.DiagnosticsCfg.Dir = t.TempDir()
	for _, fn := range configure {
		fn(cfg)
	}

	mgr := browser.NewManager(cfg, logger)
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("failed to start browser: %v", err)
	}
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mgr.Shutdown(shutdownCtx); err != nil {
			t.Logf("browser shutdown: %v", err)
		}
	})

	return &Fixture{
		Config:  cfg,
		Manager: mgr,
		Stub:    stub,
		BaseURL: srv.URL,
		Logger:  logger,
		Ctx:     ctx,
	}
}
