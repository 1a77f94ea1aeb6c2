// internal/scenario/builder.go
package scenario

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
	"github.com/xkilldash9x/lispico-e2e/internal/checkpoint"
	"github.com/xkilldash9x/lispico-e2e/internal/fixtures"
	"github.com/xkilldash9x/lispico-e2e/internal/form"
	"github.com/xkilldash9x/lispico-e2e/internal/waiter"
)

// Builder composes the canonical sequences for a panel at baseURL.
type Builder struct {
	baseURL    string
	catalog    *fixtures.Catalog
	waiter     *waiter.Waiter
	navTimeout time.Duration
}

// NewBuilder creates a Builder. navTimeout bounds waits that follow a
// submission or trigger; waiter.Unbounded is allowed.
func NewBuilder(baseURL string, catalog *fixtures.Catalog, w *waiter.Waiter, navTimeout time.Duration) *Builder {
	return &Builder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		catalog:    catalog,
		waiter:     w,
		navTimeout: navTimeout,
	}
}

// URL resolves a panel path against the base URL.
func (b *Builder) URL(path string) string {
	return b.baseURL + path
}

// navMark carries a navigation count from the step that triggers a
// navigation to the step that waits for it. Counts are kept per page, so one
// sequence value can run on several pages at once, as a prepended login does
// when groups run concurrently.
type navMark struct {
	mu     sync.Mutex
	counts map[string]uint64
}

func newNavMark() *navMark { return &navMark{counts: make(map[string]uint64)} }

func (m *navMark) take(page schemas.PageContext) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[page.ID()] = page.NavigationCount()
}

// consume returns the count taken on page and forgets it.
func (m *navMark) consume(page schemas.PageContext) (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.counts[page.ID()]
	delete(m.counts, page.ID())
	return n, ok
}

// -- step constructors --

func (b *Builder) navigate(path string) Step {
	url := b.URL(path)
	return Step{
		Name: "navigate to " + path,
		Do: func(ctx context.Context, page schemas.PageContext) error {
			return page.Navigate(ctx, url)
		},
	}
}

func (b *Builder) waitFor(cond waiter.Condition, timeout time.Duration) Step {
	return Step{
		Name: "wait for " + cond.Describe(),
		Do: func(ctx context.Context, page schemas.PageContext) error {
			return b.waiter.WaitFor(ctx, page, cond, timeout)
		},
	}
}

func (b *Builder) waitForNavigation(mark *navMark) Step {
	return Step{
		Name: "wait for navigation",
		Do: func(ctx context.Context, page schemas.PageContext) error {
			n, ok := mark.consume(page)
			if !ok {
				return fmt.Errorf("no navigation was started on page %s", page.ID())
			}
			return b.waiter.WaitFor(ctx, page, waiter.NavigationComplete(n), b.navTimeout)
		},
	}
}

func expectText(selector, literal string) Step {
	return Step{
		Name: fmt.Sprintf("expect %s to read %q", selector, literal),
		Do: func(ctx context.Context, page schemas.PageContext) error {
			return checkpoint.ExpectText(ctx, page, selector, literal)
		},
	}
}

func (b *Builder) expectSuccess() Step {
	sel, re := b.catalog.Success.Selector, b.catalog.SuccessPattern()
	return Step{
		Name: fmt.Sprintf("expect %s to match /%s/", sel, re),
		Do: func(ctx context.Context, page schemas.PageContext) error {
			return checkpoint.ExpectTextMatch(ctx, page, sel, re)
		},
	}
}

func (b *Builder) expectURL(path string) Step {
	url := b.URL(path)
	return Step{
		Name: "expect url " + path,
		Do: func(ctx context.Context, page schemas.PageContext) error {
			return checkpoint.ExpectURL(ctx, page, url)
		},
	}
}

func (b *Builder) expectNotURL(path string) Step {
	url := b.URL(path)
	return Step{
		Name: "expect url is not " + path,
		Do: func(ctx context.Context, page schemas.PageContext) error {
			return checkpoint.ExpectNotURL(ctx, page, url)
		},
	}
}

func expectPresent(selector string) Step {
	return Step{
		Name: "expect " + selector + " present",
		Do: func(ctx context.Context, page schemas.PageContext) error {
			return checkpoint.ExpectPresent(ctx, page, selector)
		},
	}
}

func setField(f schemas.Field) Step {
	return Step{
		Name: fmt.Sprintf("set %s (%s)", f.ID, strategyName(f.Strategy)),
		Do: func(ctx context.Context, page schemas.PageContext) error {
			return form.SetField(ctx, page, f.Selector(), f.Value, f.Strategy)
		},
	}
}

func strategyName(s schemas.FieldStrategy) string {
	if s == "" {
		return string(schemas.StrategyTyped)
	}
	return string(s)
}

func submit(mark *navMark, strategy form.SubmitStrategy) Step {
	return Step{
		Name: "submit (" + strategy.String() + ")",
		Do: func(ctx context.Context, page schemas.PageContext) error {
			mark.take(page)
			return form.Submit(ctx, page, strategy)
		},
	}
}

func trigger(mark *navMark, selector string) Step {
	return Step{
		Name: "trigger " + selector,
		Do: func(ctx context.Context, page schemas.PageContext) error {
			if mark != nil {
				mark.take(page)
			}
			return form.Trigger(ctx, page, selector)
		},
	}
}

func click(mark *navMark, selector string) Step {
	return Step{
		Name: "click " + selector,
		Do: func(ctx context.Context, page schemas.PageContext) error {
			mark.take(page)
			return form.Click(ctx, page, selector)
		},
	}
}

func acceptNextDialog() Step {
	return Step{
		Name: "arm dialog acceptance",
		Do: func(_ context.Context, page schemas.PageContext) error {
			form.AcceptNextDialog(page)
			return nil
		},
	}
}
