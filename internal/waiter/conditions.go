// internal/waiter/conditions.go
package waiter

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
	"github.com/xkilldash9x/lispico-e2e/internal/jsexpr"
)

// Condition is a page state the waiter polls for. Satisfied must not block
// beyond ctx; an error means the state could not be read right now and the
// waiter keeps polling.
type Condition interface {
	Describe() string
	Satisfied(ctx context.Context, page schemas.PageContext) (bool, error)
}

type selectorExists struct{ selector string }

// SelectorExists is satisfied once an element matching selector is in the DOM.
func SelectorExists(selector string) Condition { return selectorExists{selector} }

func (c selectorExists) Describe() string { return fmt.Sprintf("selector %q exists", c.selector) }

func (c selectorExists) Satisfied(ctx context.Context, page schemas.PageContext) (bool, error) {
	var ok bool
	if err := page.Evaluate(ctx, jsexpr.Exists(c.selector), &ok); err != nil {
		return false, err
	}
	return ok, nil
}

type selectorVisible struct{ selector string }

// SelectorVisible is satisfied once the first element matching selector is
// rendered with a non-empty box.
func SelectorVisible(selector string) Condition { return selectorVisible{selector} }

func (c selectorVisible) Describe() string { return fmt.Sprintf("selector %q visible", c.selector) }

func (c selectorVisible) Satisfied(ctx context.Context, page schemas.PageContext) (bool, error) {
	var ok bool
	if err := page.Evaluate(ctx, jsexpr.Visible(c.selector), &ok); err != nil {
		return false, err
	}
	return ok, nil
}

type navigationComplete struct{ mark uint64 }

// NavigationComplete is satisfied once the page has completed a navigation
// after mark was taken from page.NavigationCount and the new document is
// fully loaded. Taking the mark before triggering the navigation means a
// navigation that finishes before the wait starts is still observed.
func NavigationComplete(mark uint64) Condition { return navigationComplete{mark} }

func (c navigationComplete) Describe() string {
	return fmt.Sprintf("navigation after #%d complete", c.mark)
}

func (c navigationComplete) Satisfied(ctx context.Context, page schemas.PageContext) (bool, error) {
	if page.NavigationCount() <= c.mark {
		return false, nil
	}
	var state string
	if err := page.Evaluate(ctx, jsexpr.ReadyState, &state); err != nil {
		return false, err
	}
	return state == "complete", nil
}

type urlEquals struct{ url string }

// URLEquals is satisfied once the page's current URL is exactly url.
func URLEquals(url string) Condition { return urlEquals{url} }

func (c urlEquals) Describe() string { return fmt.Sprintf("url equals %q", c.url) }

func (c urlEquals) Satisfied(ctx context.Context, page schemas.PageContext) (bool, error) {
	loc, err := page.Location(ctx)
	if err != nil {
		return false, err
	}
	return loc == c.url, nil
}
