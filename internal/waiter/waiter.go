// internal/waiter/waiter.go
package waiter

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
	"github.com/xkilldash9x/lispico-e2e/internal/config"
)

const (
	// Default selects the waiter's configured default timeout.
	Default time.Duration = 0
	// Unbounded waits until the condition holds or ctx ends.
	Unbounded time.Duration = -1
)

// Waiter polls page conditions at a fixed interval.
type Waiter struct {
	logger         *zap.Logger
	pollInterval   time.Duration
	defaultTimeout time.Duration
}

// New creates a waiter from cfg.
func New(cfg config.WaitConfig, logger *zap.Logger) *Waiter {
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}
	return &Waiter{
		logger:         logger.Named("waiter"),
		pollInterval:   poll,
		defaultTimeout: cfg.EffectiveWaitTimeout(),
	}
}

// DefaultTimeout returns the timeout applied when WaitFor is given Default.
func (w *Waiter) DefaultTimeout() time.Duration { return w.defaultTimeout }

// WaitFor blocks until cond holds on page. The condition is checked once
// immediately, so an already satisfied condition returns without sleeping.
// It returns a *schemas.TimeoutError when timeout elapses first, and ctx's
// error when ctx ends first. Every evaluation runs under the wait's deadline,
// so the timeout error is returned as soon as the bound elapses.
func (w *Waiter) WaitFor(ctx context.Context, page schemas.PageContext, cond Condition, timeout time.Duration) error {
	if timeout == Default {
		timeout = w.defaultTimeout
	}

	waitCtx := ctx
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		w.logger.Warn("Waiting without a timeout.",
			zap.String("condition", cond.Describe()),
			zap.String("page_id", page.ID()))
	}
	defer cancel()

	start := time.Now()
	limiter := rate.NewLimiter(rate.Every(w.pollInterval), 1)
	limiter.Allow() // the immediate first check uses the initial token
	var lastErr error
	polls := 0

	for {
		polls++
		ok, err := cond.Satisfied(waitCtx, page)
		if ok {
			w.logger.Debug("Condition satisfied.",
				zap.String("condition", cond.Describe()),
				zap.Int("polls", polls),
				zap.Duration("elapsed", time.Since(start)))
			return nil
		}
		if err != nil && waitCtx.Err() == nil {
			// Evaluations fail transiently while a document is being replaced.
			lastErr = err
		}

		reservation := limiter.Reserve()
		timer := time.NewTimer(reservation.Delay())
		select {
		case <-timer.C:
			continue
		case <-waitCtx.Done():
			timer.Stop()
			reservation.Cancel()
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return w.timeoutError(cond, timeout, start, lastErr)
	}
}

func (w *Waiter) timeoutError(cond Condition, timeout time.Duration, start time.Time, lastErr error) error {
	elapsed := time.Since(start)
	fields := []zap.Field{
		zap.String("condition", cond.Describe()),
		zap.Duration("timeout", timeout),
		zap.Duration("elapsed", elapsed),
	}
	if lastErr != nil {
		fields = append(fields, zap.NamedError("last_error", lastErr))
	}
	w.logger.Debug("Condition timed out.", fields...)
	return &schemas.TimeoutError{Condition: cond.Describe(), Timeout: timeout, Elapsed: elapsed}
}

// IsTimeout reports whether err is a waiter timeout.
func IsTimeout(err error) bool {
	var te *schemas.TimeoutError
	return errors.As(err, &te)
}
