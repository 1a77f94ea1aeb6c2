// internal/form/form.go

// Package form populates and submits the panel's forms on a page. It never
// waits: callers wait for presence first and follow submissions with a
// navigation wait.
package form

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
	"github.com/xkilldash9x/lispico-e2e/internal/jsexpr"
)

// SetField sets the value of the single element matching selector using
// strategy. An empty strategy means StrategyTyped.
func SetField(ctx context.Context, page schemas.PageContext, selector, value string, strategy schemas.FieldStrategy) error {
	switch strategy {
	case "", schemas.StrategyTyped:
		return typeInto(ctx, page, selector, value)
	case schemas.StrategyAssign:
		return assign(ctx, page, selector, value)
	case schemas.StrategySelect:
		return SelectOption(ctx, page, selector, value)
	default:
		return fmt.Errorf("unknown field strategy %q for %s", strategy, selector)
	}
}

func typeInto(ctx context.Context, page schemas.PageContext, selector, value string) error {
	if err := requireElement(ctx, page, selector, "type"); err != nil {
		return err
	}
	return page.Run(ctx, chromedp.SendKeys(selector, value, chromedp.ByQuery))
}

func assign(ctx context.Context, page schemas.PageContext, selector, value string) error {
	var found bool
	if err := page.Evaluate(ctx, jsexpr.Assign(selector, value), &found); err != nil {
		return fmt.Errorf("assign %s: %w", selector, err)
	}
	if !found {
		return &schemas.ElementNotFoundError{Selector: selector, Action: "assign"}
	}
	return nil
}

// SelectOption sets the dropdown matching selector to the option whose value
// is optionValue.
func SelectOption(ctx context.Context, page schemas.PageContext, selector, optionValue string) error {
	var outcome string
	if err := page.Evaluate(ctx, jsexpr.SelectOption(selector, optionValue), &outcome); err != nil {
		return fmt.Errorf("select %s: %w", selector, err)
	}
	switch outcome {
	case "ok":
		return nil
	case "no-option":
		return &schemas.ElementNotFoundError{
			Selector: fmt.Sprintf("%s option[value=%q]", selector, optionValue),
			Action:   "select",
		}
	default:
		return &schemas.ElementNotFoundError{Selector: selector, Action: "select"}
	}
}

// Click performs a real mouse click on the element matching selector.
func Click(ctx context.Context, page schemas.PageContext, selector string) error {
	if err := requireElement(ctx, page, selector, "click"); err != nil {
		return err
	}
	return page.Run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

// Trigger dispatches a DOM click on the first element matching selector.
// Use it for anchors without an href, which cannot be clicked reliably.
func Trigger(ctx context.Context, page schemas.PageContext, selector string) error {
	var found bool
	if err := page.Evaluate(ctx, jsexpr.Click(selector), &found); err != nil {
		return fmt.Errorf("trigger %s: %w", selector, err)
	}
	if !found {
		return &schemas.ElementNotFoundError{Selector: selector, Action: "trigger"}
	}
	return nil
}

// AcceptNextDialog arms page to accept the next native dialog. Call it
// before the action that raises the dialog.
func AcceptNextDialog(page schemas.PageContext) {
	page.AcceptNextDialog()
}

func requireElement(ctx context.Context, page schemas.PageContext, selector, action string) error {
	var n int
	if err := page.Evaluate(ctx, jsexpr.Count(selector), &n); err != nil {
		return fmt.Errorf("%s %s: %w", action, selector, err)
	}
	if n == 0 {
		return &schemas.ElementNotFoundError{Selector: selector, Action: action}
	}
	return nil
}

// SubmitStrategy is how a scenario submits a form.
type SubmitStrategy interface {
	fmt.Stringer
	submit(ctx context.Context, page schemas.PageContext) error
}

// SubmitEnter presses Enter on the focused field.
type SubmitEnter struct{}

func (SubmitEnter) String() string { return "enter" }

func (SubmitEnter) submit(ctx context.Context, page schemas.PageContext) error {
	return page.Run(ctx, chromedp.KeyEvent(kb.Enter))
}

// SubmitClick clicks an explicit submit control.
type SubmitClick struct {
	Selector string
}

func (s SubmitClick) String() string { return "click " + s.Selector }

func (s SubmitClick) submit(ctx context.Context, page schemas.PageContext) error {
	return Click(ctx, page, s.Selector)
}

// Submit submits the current form with strategy.
func Submit(ctx context.Context, page schemas.PageContext, strategy SubmitStrategy) error {
	if err := strategy.submit(ctx, page); err != nil {
		return fmt.Errorf("submit (%s): %w", strategy, err)
	}
	return nil
}
