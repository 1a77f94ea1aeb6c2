// internal/browser/context_utils_test.go
package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

type ctxKey string

func TestCombineContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("inherits values from primary", func(t *testing.T) {
		primary := context.WithValue(context.Background(), ctxKey("k"), "v")
		combined, cancel := CombineContext(primary, context.Background())
		defer cancel()
		assert.Equal(t, "v", combined.Value(ctxKey("k")))
	})

	t.Run("canceled by secondary", func(t *testing.T) {
		secondary, cancelSecondary := context.WithCancel(context.Background())
		combined, cancel := CombineContext(context.Background(), secondary)
		defer cancel()

		cancelSecondary()
		select {
		case <-combined.Done():
		case <-time.After(time.Second):
			t.Fatal("combined context was not canceled by secondary")
		}
	})

	t.Run("canceled by primary", func(t *testing.T) {
		primary, cancelPrimary := context.WithCancel(context.Background())
		combined, cancel := CombineContext(primary, context.Background())
		defer cancel()

		cancelPrimary()
		<-combined.Done()
		assert.ErrorIs(t, combined.Err(), context.Canceled)
	})
}

func TestRunWithin(t *testing.T) {
	t.Run("returns the function result", func(t *testing.T) {
		want := errors.New("boom")
		err := runWithin(context.Background(), func() error { return want })
		assert.ErrorIs(t, err, want)
	})

	t.Run("returns when context ends first", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		release := make(chan struct{})
		defer close(release)

		err := runWithin(ctx, func() error {
			<-release
			return nil
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
