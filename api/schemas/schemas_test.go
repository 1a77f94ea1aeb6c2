package schemas_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
)

// -- Error Taxonomy --

func TestClassify(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		err  error
		want schemas.FailureKind
	}{
		{"nil", nil, schemas.FailureNone},
		{"timeout", &schemas.TimeoutError{Condition: "c", Timeout: time.Second}, schemas.FailureTimeout},
		{"wrapped timeout", fmt.Errorf("step wait: %w", &schemas.TimeoutError{}), schemas.FailureTimeout},
		{"element not found", &schemas.ElementNotFoundError{Selector: "#x"}, schemas.FailureElementNotFound},
		{"assertion", fmt.Errorf("x: %w", &schemas.AssertionError{}), schemas.FailureAssertion},
		{"navigation", &schemas.NavigationError{URL: "u", Err: errors.New("net::ERR_CONNECTION_REFUSED")}, schemas.FailureNavigation},
		{"guard deadline", fmt.Errorf("wait: %w", context.DeadlineExceeded), schemas.FailureTimeout},
		{"canceled", context.Canceled, schemas.FailureCanceled},
		{"other", errors.New("boom"), schemas.FailureUnknown},
	}

	for _, tc := range testCases {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, schemas.Classify(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	te := &schemas.TimeoutError{Condition: `selector "h1" exists`, Timeout: 30 * time.Second, Elapsed: 30001 * time.Millisecond}
	assert.Equal(t, `timed out after 30.001s waiting for selector "h1" exists (bound 30s)`, te.Error())

	enf := &schemas.ElementNotFoundError{Selector: "#email", Action: "type"}
	assert.Equal(t, `type: no element matches selector "#email"`, enf.Error())
	assert.Equal(t, `no element matches selector "#email"`, (&schemas.ElementNotFoundError{Selector: "#email"}).Error())

	ae := &schemas.AssertionError{Check: "text", Selector: "h1", Expected: "Members", Actual: "Admin Users"}
	assert.Equal(t, `text "h1": expected "Members", got "Admin Users"`, ae.Error())

	cause := errors.New("net::ERR_CERT_AUTHORITY_INVALID")
	ne := &schemas.NavigationError{URL: "https://lispico.local.host/admin/login", Err: cause}
	assert.ErrorIs(t, ne, cause)
	assert.Contains(t, ne.Error(), "navigation to https://lispico.local.host/admin/login failed")
	assert.Contains(t, (&schemas.NavigationError{Err: cause}).Error(), "browser session failure")
}

// -- Selectors --

func TestIDSelector(t *testing.T) {
	t.Parallel()
	testCases := map[string]string{
		"email":                    "#email",
		"q[id]":                    `#q\[id\]`,
		"q[enable_direct_message]": `#q\[enable_direct_message\]`,
		"password_for_edit":        "#password_for_edit",
		"1abc":                     `#\31 abc`,
		"a.b:c":                    `#a\.b\:c`,
	}
	for id, want := range testCases {
		assert.Equal(t, want, schemas.IDSelector(id), id)
	}
}

// -- Fixtures --

func TestFixture(t *testing.T) {
	t.Parallel()
	f := schemas.Fixture{Fields: []schemas.Field{
		{ID: "last_name", Value: "Belo"},
		{ID: "login_enable", Value: "1", Strategy: schemas.StrategySelect},
	}}

	assigned := f.WithStrategy(schemas.StrategyAssign)
	assert.Equal(t, schemas.StrategyAssign, assigned.Fields[0].Strategy)
	assert.Equal(t, schemas.StrategySelect, assigned.Fields[1].Strategy)
	assert.Empty(t, f.Fields[0].Strategy, "WithStrategy must not mutate the receiver")

	v, ok := f.Value("last_name")
	require.True(t, ok)
	assert.Equal(t, "Belo", v)
	_, ok = f.Value("missing")
	assert.False(t, ok)

	assert.Equal(t, "#login_enable", f.Fields[1].Selector())
}

// -- Results --

func TestRunReport(t *testing.T) {
	t.Parallel()
	r := &schemas.RunReport{Results: []schemas.ScenarioResult{
		{Group: "login", Name: "login", Status: schemas.StatusPassed},
		{Group: "admin_users", Name: "create", Status: schemas.StatusFailed},
		{Group: "admin_users", Name: "edit", Status: schemas.StatusSkipped},
	}}

	passed, failed, skipped := r.Counts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, skipped)
	assert.False(t, r.Succeeded())
	assert.Equal(t, "admin_users/create", r.Results[1].FullName())

	ok := &schemas.RunReport{Results: []schemas.ScenarioResult{{Status: schemas.StatusPassed}}}
	assert.True(t, ok.Succeeded())
}
