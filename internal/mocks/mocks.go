// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"sync/atomic"

	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
)

// -- Page Mock --

// MockPage mocks schemas.PageContext. ID and NavigationCount are plain fields
// so tests can drive them without expectations.
type MockPage struct {
	mock.Mock
	PageID      string
	Navigations atomic.Uint64
}

var _ schemas.PageContext = (*MockPage)(nil)

// NewMockPage returns a MockPage with the given id.
func NewMockPage(id string) *MockPage {
	return &MockPage{PageID: id}
}

func (m *MockPage) ID() string {
	return m.PageID
}

func (m *MockPage) Navigate(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// Evaluate returns the first configured value by round-tripping it through
// JSON into res, the way chromedp decodes evaluation results.
func (m *MockPage) Evaluate(ctx context.Context, expression string, res any) error {
	args := m.Called(ctx, expression)
	if v := args.Get(0); v != nil && res != nil {
		raw, err := jsoniter.Marshal(v)
		if err != nil {
			return err
		}
		if err := jsoniter.Unmarshal(raw, res); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func (m *MockPage) Location(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPage) Run(ctx context.Context, actions ...chromedp.Action) error {
	args := m.Called(ctx, actions)
	return args.Error(0)
}

func (m *MockPage) NavigationCount() uint64 {
	return m.Navigations.Load()
}

func (m *MockPage) AcceptNextDialog() {
	m.Called()
}

func (m *MockPage) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// -- Session Provider Mock --

// MockSessionProvider mocks the browser manager as the suite sees it.
type MockSessionProvider struct {
	mock.Mock
}

func (m *MockSessionProvider) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Acquire returns the configured page. A func(context.Context) schemas.PageContext
// return value is called on every Acquire, so each call can get a new page.
func (m *MockSessionProvider) Acquire(ctx context.Context) (schemas.PageContext, error) {
	args := m.Called(ctx)
	var page schemas.PageContext
	switch v := args.Get(0).(type) {
	case func(context.Context) schemas.PageContext:
		page = v(ctx)
	case schemas.PageContext:
		page = v
	}
	return page, args.Error(1)
}

func (m *MockSessionProvider) Shutdown(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
