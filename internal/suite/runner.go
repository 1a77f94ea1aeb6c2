// internal/suite/runner.go
package suite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
	"github.com/xkilldash9x/lispico-e2e/internal/browser"
	"github.com/xkilldash9x/lispico-e2e/internal/config"
	"github.com/xkilldash9x/lispico-e2e/internal/diagnostics"
	"github.com/xkilldash9x/lispico-e2e/internal/scenario"
)

// SessionProvider hands out isolated pages from one browser session.
type SessionProvider interface {
	Start(ctx context.Context) error
	Acquire(ctx context.Context) (schemas.PageContext, error)
	Shutdown(ctx context.Context) error
}

const (
	defaultScenarioTimeout = 5 * time.Minute
	defaultLoginTimeout    = 60 * time.Second
	pageCloseTimeout       = 10 * time.Second
	shutdownTimeout        = 30 * time.Second
)

// Options configures a Runner.
type Options struct {
	BaseURL string
	Auth    config.AuthStrategy
	// Login authenticates a page. It runs once for the shared strategy and
	// in front of every authenticated sequence for per_sequence.
	Login           scenario.Sequence
	ParallelGroups  bool
	ScenarioTimeout time.Duration
	LoginTimeout    time.Duration
	// Diagnostics captures artifacts for failed scenarios. Nil disables it.
	Diagnostics *diagnostics.Capturer
}

// OptionsFromConfig derives runner options from the harness configuration.
func OptionsFromConfig(cfg config.Interface, login scenario.Sequence, logger *zap.Logger) Options {
	opts := Options{
		BaseURL:         cfg.Target().BaseURL,
		Auth:            cfg.Auth().Strategy,
		Login:           login,
		ParallelGroups:  cfg.Suite().ParallelGroups,
		ScenarioTimeout: cfg.Suite().ScenarioTimeout,
		LoginTimeout:    cfg.Suite().LoginTimeout,
	}
	if d := cfg.Diagnostics(); d.Enabled && d.Dir != "" {
		opts.Diagnostics = diagnostics.NewCapturer(d.Dir, logger)
	}
	return opts
}

// Runner executes a registry against a session provider.
type Runner struct {
	provider SessionProvider
	registry *Registry
	opts     Options
	logger   *zap.Logger
}

// NewRunner creates a Runner.
func NewRunner(provider SessionProvider, registry *Registry, opts Options, logger *zap.Logger) *Runner {
	if opts.ScenarioTimeout <= 0 {
		opts.ScenarioTimeout = defaultScenarioTimeout
	}
	if opts.LoginTimeout <= 0 {
		opts.LoginTimeout = defaultLoginTimeout
	}
	if opts.Auth == "" {
		opts.Auth = config.AuthShared
	}
	return &Runner{
		provider: provider,
		registry: registry,
		opts:     opts,
		logger:   logger.Named("suite"),
	}
}

// authApplier installs authenticated state into a fresh page.
type authApplier interface {
	Apply(ctx context.Context, page schemas.PageContext) error
}

// Run starts the session, executes every group and tears the session down.
// Scenario failures are recorded in the report and never returned as an
// error; an error means the run itself could not be carried out.
func (r *Runner) Run(ctx context.Context) (*schemas.RunReport, error) {
	report := &schemas.RunReport{
		RunID:     uuid.New().String(),
		BaseURL:   r.opts.BaseURL,
		StartedAt: time.Now(),
	}
	log := r.logger.With(zap.String("run_id", report.RunID))
	log.Info("Starting suite run.",
		zap.Int("groups", len(r.registry.Groups())),
		zap.Int("scenarios", r.registry.Len()),
		zap.String("auth", string(r.opts.Auth)),
		zap.Bool("parallel_groups", r.opts.ParallelGroups))

	if err := r.provider.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}
	defer func() {
		// The run context may already be gone; teardown gets its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := r.provider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Browser session did not shut down cleanly.", zap.Error(err))
		}
	}()

	var auth authApplier
	var authErr *schemas.ScenarioResult
	if r.opts.Auth == config.AuthShared && r.needsAuth() {
		var res schemas.ScenarioResult
		auth, res = r.authenticate(ctx, log)
		if res.Status == schemas.StatusFailed {
			authErr = &res
			report.Results = append(report.Results, res)
		}
	}

	groups := r.registry.Groups()
	results := make([][]schemas.ScenarioResult, len(groups))
	runGroup := func(i int) {
		results[i] = r.runGroup(ctx, groups[i], auth, authErr, log)
	}

	if r.opts.ParallelGroups {
		var g errgroup.Group
		for i := range groups {
			i := i
			g.Go(func() error {
				runGroup(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range groups {
			runGroup(i)
		}
	}

	for _, rs := range results {
		report.Results = append(report.Results, rs...)
	}
	report.FinishedAt = time.Now()

	passed, failed, skipped := report.Counts()
	log.Info("Suite run finished.",
		zap.Int("passed", passed),
		zap.Int("failed", failed),
		zap.Int("skipped", skipped),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)))
	return report, nil
}

func (r *Runner) needsAuth() bool {
	for _, g := range r.registry.Groups() {
		for _, e := range g.Entries {
			if !e.Unauthenticated {
				return true
			}
		}
	}
	return false
}

// authenticate runs the login sequence once on its own page and snapshots
// the resulting cookies.
func (r *Runner) authenticate(ctx context.Context, log *zap.Logger) (_ authApplier, res schemas.ScenarioResult) {
	res = schemas.ScenarioResult{Group: "setup", Name: r.opts.Login.Name, StartedAt: time.Now()}
	defer func() { res.Duration = time.Since(res.StartedAt) }()
	page, err := r.provider.Acquire(ctx)
	if err != nil {
		r.fail(&res, nil, err)
		return nil, res
	}
	res.PageID = page.ID()
	defer r.closePage(page, log)

	loginCtx, cancel := context.WithTimeout(ctx, r.opts.LoginTimeout)
	defer cancel()

	if err := r.opts.Login.Run(loginCtx, page, log); err != nil {
		r.fail(&res, page, err)
		log.Error("Shared login failed; authenticated scenarios will be skipped.", zap.Error(err))
		return nil, res
	}
	state, err := browser.CaptureAuthState(loginCtx, page)
	if err != nil {
		r.fail(&res, page, err)
		return nil, res
	}
	log.Info("Captured shared auth state.", zap.Strings("cookies", state.Names()))
	res.Status = schemas.StatusPassed
	return state, res
}

func (r *Runner) runGroup(ctx context.Context, g Group, auth authApplier, authErr *schemas.ScenarioResult, log *zap.Logger) []schemas.ScenarioResult {
	log = log.With(zap.String("group", g.Name))
	results := make([]schemas.ScenarioResult, 0, len(g.Entries))
	status := make(map[string]schemas.ScenarioStatus, len(g.Entries))

	for _, e := range g.Entries {
		var res schemas.ScenarioResult
		switch {
		case authErr != nil && !e.Unauthenticated:
			res = skipped(g.Name, e.Name, fmt.Sprintf("shared login failed: %s", authErr.Message))
		case blockedBy(e, status) != "":
			res = skipped(g.Name, e.Name, fmt.Sprintf("dependency %q did not pass", blockedBy(e, status)))
		default:
			res = r.runEntry(ctx, g.Name, e, auth, log)
		}
		status[e.Name] = res.Status
		results = append(results, res)
		r.logResult(log, res)
	}
	return results
}

func blockedBy(e Entry, status map[string]schemas.ScenarioStatus) string {
	for _, dep := range e.DependsOn {
		if status[dep] != schemas.StatusPassed {
			return dep
		}
	}
	return ""
}

func skipped(group, name, msg string) schemas.ScenarioResult {
	return schemas.ScenarioResult{
		Group:     group,
		Name:      name,
		Status:    schemas.StatusSkipped,
		StartedAt: time.Now(),
		Message:   msg,
	}
}

// runEntry executes one scenario on a page of its own.
func (r *Runner) runEntry(ctx context.Context, group string, e Entry, auth authApplier, log *zap.Logger) (res schemas.ScenarioResult) {
	res = schemas.ScenarioResult{Group: group, Name: e.Name, StartedAt: time.Now()}
	defer func() { res.Duration = time.Since(res.StartedAt) }()

	timeout := r.opts.ScenarioTimeout
	seq := e.Sequence
	if e.Unauthenticated {
		timeout = r.opts.LoginTimeout
	} else if r.opts.Auth == config.AuthPerSequence {
		seq = seq.Prepend(r.opts.Login)
		timeout += r.opts.LoginTimeout
	}

	scenarioCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page, err := r.provider.Acquire(scenarioCtx)
	if err != nil {
		r.fail(&res, nil, err)
		return res
	}
	res.PageID = page.ID()
	defer r.closePage(page, log)

	if auth != nil && !e.Unauthenticated {
		if err := auth.Apply(scenarioCtx, page); err != nil {
			r.fail(&res, page, err)
			return res
		}
	}

	if err := seq.Run(scenarioCtx, page, log); err != nil {
		r.fail(&res, page, err)
		return res
	}
	res.Status = schemas.StatusPassed
	return res
}

// fail records err on res and captures diagnostics from page when one exists.
func (r *Runner) fail(res *schemas.ScenarioResult, page schemas.PageContext, err error) {
	res.Status = schemas.StatusFailed
	res.Failure = schemas.Classify(err)
	res.Message = err.Error()
	var se *scenario.StepError
	if errors.As(err, &se) {
		res.FailedStep = se.Step
	}
	if page == nil || r.opts.Diagnostics == nil {
		return
	}
	diag, derr := r.opts.Diagnostics.Capture(page, res.FullName())
	if derr != nil {
		r.logger.Warn("Failure diagnostics incomplete.",
			zap.String("scenario", res.FullName()),
			zap.Error(derr))
	}
	res.Diagnostics = diag
}

func (r *Runner) closePage(page schemas.PageContext, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), pageCloseTimeout)
	defer cancel()
	if err := page.Close(ctx); err != nil {
		log.Debug("Page did not close cleanly.", zap.String("page_id", page.ID()), zap.Error(err))
	}
}

func (r *Runner) logResult(log *zap.Logger, res schemas.ScenarioResult) {
	fields := []zap.Field{
		zap.String("scenario", res.FullName()),
		zap.String("status", string(res.Status)),
		zap.Duration("duration", res.Duration),
	}
	switch res.Status {
	case schemas.StatusPassed:
		log.Info("Scenario passed.", fields...)
	case schemas.StatusSkipped:
		log.Warn("Scenario skipped.", append(fields, zap.String("reason", res.Message))...)
	default:
		log.Error("Scenario failed.", append(fields,
			zap.String("failure", string(res.Failure)),
			zap.String("step", res.FailedStep),
			zap.String("message", res.Message))...)
	}
}
