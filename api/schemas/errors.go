// api/schemas/errors.go
package schemas

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// FailureKind classifies why a scenario failed. It is what reports carry.
type FailureKind string

const (
	FailureNone            FailureKind = ""
	FailureTimeout         FailureKind = "timeout"
	FailureElementNotFound FailureKind = "element_not_found"
	FailureAssertion       FailureKind = "assertion"
	FailureNavigation      FailureKind = "navigation"
	FailureCanceled        FailureKind = "canceled"
	FailureUnknown         FailureKind = "unknown"
)

// TimeoutError reports a wait condition that never held within its bound.
type TimeoutError struct {
	Condition string
	Timeout   time.Duration
	Elapsed   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for %s (bound %s)",
		e.Elapsed.Round(time.Millisecond), e.Condition, e.Timeout)
}

// ElementNotFoundError reports a selector with zero matches at interaction time.
type ElementNotFoundError struct {
	Selector string
	Action   string
}

func (e *ElementNotFoundError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("no element matches selector %q", e.Selector)
	}
	return fmt.Sprintf("%s: no element matches selector %q", e.Action, e.Selector)
}

// AssertionError carries the observed mismatch of a checkpoint.
type AssertionError struct {
	Check    string
	Selector string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	if e.Selector == "" {
		return fmt.Sprintf("%s: expected %q, got %q", e.Check, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s %q: expected %q, got %q", e.Check, e.Selector, e.Expected, e.Actual)
}

// NavigationError reports a failure of the browser session itself
// (launch failure, TLS or connection errors, crashed target).
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("browser session failure: %v", e.Err)
	}
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// Classify maps an error chain to the FailureKind reported for it.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	var (
		timeoutErr   *TimeoutError
		notFoundErr  *ElementNotFoundError
		assertionErr *AssertionError
		navErr       *NavigationError
	)
	switch {
	case errors.As(err, &timeoutErr):
		return FailureTimeout
	case errors.As(err, &notFoundErr):
		return FailureElementNotFound
	case errors.As(err, &assertionErr):
		return FailureAssertion
	case errors.As(err, &navErr):
		return FailureNavigation
	case errors.Is(err, context.DeadlineExceeded):
		// The scenario guard expired, usually during an unbounded wait.
		return FailureTimeout
	case errors.Is(err, context.Canceled):
		return FailureCanceled
	default:
		return FailureUnknown
	}
}
