// internal/browser/context_utils.go
package browser

import "context"

// CombineContext returns a context derived from primary that is also canceled
// when secondary is done. Values, including the chromedp target, come from
// primary; secondary typically carries the caller's deadline.
func CombineContext(primary, secondary context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(primary)
	go func() {
		select {
		case <-secondary.Done():
			cancel()
		case <-combined.Done():
		}
	}()
	return combined, cancel
}

// runWithin runs fn in its own goroutine and returns early when ctx is done.
// fn must not hold ctx; it is used for the first chromedp.Run on a context,
// which binds the browser or tab lifetime to whatever context it receives.
func runWithin(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
