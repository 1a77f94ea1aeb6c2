// internal/form/form_test.go
package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
	"github.com/xkilldash9x/lispico-e2e/internal/jsexpr"
	"github.com/xkilldash9x/lispico-e2e/internal/mocks"
)

func TestSetField_Typed(t *testing.T) {
	ctx := context.Background()

	t.Run("types into a present field", func(t *testing.T) {
		page := mocks.NewMockPage("p1")
		page.On("Evaluate", mock.Anything, jsexpr.Count("#email")).Return(1, nil).Once()
		page.On("Run", mock.Anything, mock.Anything).Return(nil).Once()

		require.NoError(t, SetField(ctx, page, "#email", "root@fullspeed.co.jp", schemas.StrategyTyped))
		page.AssertExpectations(t)
	})

	t.Run("empty strategy means typed", func(t *testing.T) {
		page := mocks.NewMockPage("p1")
		page.On("Evaluate", mock.Anything, jsexpr.Count("#email")).Return(1, nil).Once()
		page.On("Run", mock.Anything, mock.Anything).Return(nil).Once()

		require.NoError(t, SetField(ctx, page, "#email", "x", ""))
		page.AssertExpectations(t)
	})

	t.Run("zero matches", func(t *testing.T) {
		page := mocks.NewMockPage("p1")
		page.On("Evaluate", mock.Anything, jsexpr.Count("#nope")).Return(0, nil).Once()

		err := SetField(ctx, page, "#nope", "x", schemas.StrategyTyped)
		var enf *schemas.ElementNotFoundError
		require.ErrorAs(t, err, &enf)
		assert.Equal(t, "#nope", enf.Selector)
		assert.Equal(t, "type", enf.Action)
		page.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	})
}

func TestSetField_Assign(t *testing.T) {
	ctx := context.Background()
	page := mocks.NewMockPage("p1")
	page.On("Evaluate", mock.Anything, jsexpr.Assign("#last_name", "Wayne")).Return(true, nil).Once()
	page.On("Evaluate", mock.Anything, jsexpr.Assign("#gone", "x")).Return(false, nil).Once()

	require.NoError(t, SetField(ctx, page, "#last_name", "Wayne", schemas.StrategyAssign))

	err := SetField(ctx, page, "#gone", "x", schemas.StrategyAssign)
	assert.Equal(t, schemas.FailureElementNotFound, schemas.Classify(err))
}

func TestSetField_UnknownStrategy(t *testing.T) {
	err := SetField(context.Background(), mocks.NewMockPage("p1"), "#a", "b", "paste")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field strategy "paste"`)
}

func TestSelectOption(t *testing.T) {
	ctx := context.Background()
	page := mocks.NewMockPage("p1")
	page.On("Evaluate", mock.Anything, jsexpr.SelectOption("#login_enable", "1")).Return("ok", nil).Once()
	page.On("Evaluate", mock.Anything, jsexpr.SelectOption("#login_enable", "9")).Return("no-option", nil).Once()
	page.On("Evaluate", mock.Anything, jsexpr.SelectOption("#missing", "1")).Return("missing", nil).Once()

	require.NoError(t, SelectOption(ctx, page, "#login_enable", "1"))

	var enf *schemas.ElementNotFoundError
	require.ErrorAs(t, SelectOption(ctx, page, "#login_enable", "9"), &enf)
	assert.Equal(t, `#login_enable option[value="9"]`, enf.Selector)

	require.ErrorAs(t, SelectOption(ctx, page, "#missing", "1"), &enf)
	assert.Equal(t, "#missing", enf.Selector)
}

func TestTrigger(t *testing.T) {
	ctx := context.Background()
	page := mocks.NewMockPage("p1")
	page.On("Evaluate", mock.Anything, jsexpr.Click("td a")).Return(true, nil).Once()
	page.On("Evaluate", mock.Anything, jsexpr.Click("td b")).Return(false, nil).Once()
	page.On("Evaluate", mock.Anything, jsexpr.Click("td c")).Return(nil, errors.New("target closed")).Once()

	require.NoError(t, Trigger(ctx, page, "td a"))

	var enf *schemas.ElementNotFoundError
	require.ErrorAs(t, Trigger(ctx, page, "td b"), &enf)
	assert.Equal(t, "trigger", enf.Action)

	err := Trigger(ctx, page, "td c")
	require.Error(t, err)
	assert.False(t, errors.As(err, &enf))
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("enter", func(t *testing.T) {
		page := mocks.NewMockPage("p1")
		page.On("Run", mock.Anything, mock.Anything).Return(nil).Once()
		require.NoError(t, Submit(ctx, page, SubmitEnter{}))
		page.AssertExpectations(t)
	})

	t.Run("click missing control", func(t *testing.T) {
		page := mocks.NewMockPage("p1")
		page.On("Evaluate", mock.Anything, jsexpr.Count(`button[type="submit"]`)).Return(0, nil).Once()
		err := Submit(ctx, page, SubmitClick{Selector: `button[type="submit"]`})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `submit (click button[type="submit"])`)
		assert.Equal(t, schemas.FailureElementNotFound, schemas.Classify(err))
	})
}

func TestAcceptNextDialog(t *testing.T) {
	page := mocks.NewMockPage("p1")
	page.On("AcceptNextDialog").Return().Once()
	AcceptNextDialog(page)
	page.AssertExpectations(t)
}
