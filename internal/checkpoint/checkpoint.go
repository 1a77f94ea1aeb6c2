// internal/checkpoint/checkpoint.go

// Package checkpoint compares observed page state with expected literals.
// Checkpoints only read; they never change the page.
package checkpoint

import (
	"context"
	"fmt"
	"regexp"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
	"github.com/xkilldash9x/lispico-e2e/internal/jsexpr"
)

// ReadText returns the rendered text of the first element matching selector.
func ReadText(ctx context.Context, page schemas.PageContext, selector string) (string, error) {
	var text *string
	if err := page.Evaluate(ctx, jsexpr.Text(selector), &text); err != nil {
		return "", fmt.Errorf("read text of %s: %w", selector, err)
	}
	if text == nil {
		return "", &schemas.ElementNotFoundError{Selector: selector, Action: "read text"}
	}
	return *text, nil
}

// ExpectText fails unless the text of the first element matching selector
// equals literal exactly.
func ExpectText(ctx context.Context, page schemas.PageContext, selector, literal string) error {
	actual, err := ReadText(ctx, page, selector)
	if err != nil {
		return err
	}
	if actual != literal {
		return &schemas.AssertionError{Check: "text", Selector: selector, Expected: literal, Actual: actual}
	}
	return nil
}

// ExpectTextMatch fails unless the text of the first element matching
// selector matches pattern.
func ExpectTextMatch(ctx context.Context, page schemas.PageContext, selector string, pattern *regexp.Regexp) error {
	actual, err := ReadText(ctx, page, selector)
	if err != nil {
		return err
	}
	if !pattern.MatchString(actual) {
		return &schemas.AssertionError{Check: "text match", Selector: selector, Expected: "/" + pattern.String() + "/", Actual: actual}
	}
	return nil
}

// ExpectURL fails unless the page's current URL equals literal.
func ExpectURL(ctx context.Context, page schemas.PageContext, literal string) error {
	actual, err := page.Location(ctx)
	if err != nil {
		return fmt.Errorf("read location: %w", err)
	}
	if actual != literal {
		return &schemas.AssertionError{Check: "url", Expected: literal, Actual: actual}
	}
	return nil
}

// ExpectNotURL fails when the page's current URL equals literal.
func ExpectNotURL(ctx context.Context, page schemas.PageContext, literal string) error {
	actual, err := page.Location(ctx)
	if err != nil {
		return fmt.Errorf("read location: %w", err)
	}
	if actual == literal {
		return &schemas.AssertionError{Check: "url differs", Expected: "not " + literal, Actual: actual}
	}
	return nil
}

// ExpectPresent fails unless at least one element matches selector now.
func ExpectPresent(ctx context.Context, page schemas.PageContext, selector string) error {
	var n int
	if err := page.Evaluate(ctx, jsexpr.Count(selector), &n); err != nil {
		return fmt.Errorf("count %s: %w", selector, err)
	}
	if n == 0 {
		return &schemas.AssertionError{Check: "present", Selector: selector, Expected: "at least one match", Actual: "no match"}
	}
	return nil
}
