// internal/scenario/sequences.go
package scenario

import (
	"github.com/xkilldash9x/lispico-e2e/api/schemas"
	"github.com/xkilldash9x/lispico-e2e/internal/fixtures"
	"github.com/xkilldash9x/lispico-e2e/internal/form"
	"github.com/xkilldash9x/lispico-e2e/internal/waiter"
)

// Login signs in with creds and expects to land on the dashboard.
func (b *Builder) Login(creds schemas.Credential) Sequence {
	steps := b.loginSteps(creds)
	steps = append(steps, b.expectURL(b.catalog.Login.LandingPath))
	return Sequence{Name: "login", Steps: steps}
}

// LoginRejected signs in with creds and expects not to reach the dashboard.
func (b *Builder) LoginRejected(creds schemas.Credential) Sequence {
	steps := b.loginSteps(creds)
	steps = append(steps, b.expectNotURL(b.catalog.Login.LandingPath))
	return Sequence{Name: "login_rejected", Steps: steps}
}

func (b *Builder) loginSteps(creds schemas.Credential) []Step {
	l := b.catalog.Login
	mark := newNavMark()
	return []Step{
		b.navigate(l.Path),
		b.waitFor(waiter.SelectorExists(l.HeadingSelector), waiter.Default),
		expectText(l.HeadingSelector, l.Heading),
		setField(schemas.Field{ID: l.EmailID, Value: creds.Email, Strategy: schemas.StrategyTyped}),
		setField(schemas.Field{ID: l.PasswordID, Value: creds.Password, Strategy: schemas.StrategyTyped}),
		submit(mark, form.SubmitEnter{}),
		b.waitForNavigation(mark),
	}
}

// ListView checks the index page heading and its search fields. It does not
// change anything, so running it repeatedly gives the same outcome.
func (b *Builder) ListView(res fixtures.Resource) Sequence {
	h := b.catalog.HeadingSelector
	steps := []Step{
		b.navigate(res.IndexPath),
		b.waitFor(waiter.SelectorExists(h), waiter.Default),
		expectText(h, res.ListHeading),
	}
	for _, sel := range res.SearchSelectors() {
		steps = append(steps, expectPresent(sel))
	}
	return Sequence{Name: "list", Steps: steps}
}

// Create fills the create form with typed input and expects the success marker.
func (b *Builder) Create(res fixtures.Resource) Sequence {
	h := b.catalog.HeadingSelector
	mark := newNavMark()
	steps := []Step{
		b.navigate(res.CreatePath),
		b.waitFor(waiter.SelectorExists(h), waiter.Default),
		expectText(h, res.CreateHeading),
	}
	for _, f := range res.Create.WithStrategy(schemas.StrategyTyped).Fields {
		steps = append(steps, setField(f))
	}
	steps = append(steps,
		submit(mark, form.SubmitEnter{}),
		b.waitForNavigation(mark),
		b.waitFor(waiter.SelectorVisible(b.catalog.Success.Selector), waiter.Default),
		b.expectSuccess(),
	)
	return Sequence{Name: "create", Steps: steps}
}

// Edit opens the first row, overwrites its pre-filled fields by assignment and
// saves through the submit button.
func (b *Builder) Edit(res fixtures.Resource) Sequence {
	h := b.catalog.HeadingSelector
	openMark, saveMark := newNavMark(), newNavMark()
	steps := []Step{
		b.navigate(res.IndexPath),
		b.waitFor(waiter.SelectorExists(h), waiter.Default),
		b.waitFor(waiter.SelectorExists(b.catalog.EditTrigger), waiter.Default),
		trigger(openMark, b.catalog.EditTrigger),
		b.waitForNavigation(openMark),
		b.waitFor(waiter.SelectorExists(h), waiter.Default),
		expectText(h, res.EditHeading),
	}
	for _, f := range res.Edit.WithStrategy(schemas.StrategyAssign).Fields {
		steps = append(steps, setField(f))
	}
	steps = append(steps,
		submit(saveMark, form.SubmitClick{Selector: b.catalog.EditSubmit}),
		b.waitForNavigation(saveMark),
		b.waitFor(waiter.SelectorVisible(b.catalog.Success.Selector), waiter.Default),
		b.expectSuccess(),
	)
	return Sequence{Name: "edit", Steps: steps}
}

// Delete removes the first row through its confirmation modal and native
// confirm dialog, and expects to be back on the index.
func (b *Builder) Delete(res fixtures.Resource) Sequence {
	h := b.catalog.HeadingSelector
	mark := newNavMark()
	return Sequence{Name: "delete", Steps: []Step{
		b.navigate(res.IndexPath),
		b.waitFor(waiter.SelectorExists(h), waiter.Default),
		expectText(h, res.ListHeading),
		// The dialog opens asynchronously from the click, so the handler is armed first.
		acceptNextDialog(),
		b.waitFor(waiter.SelectorExists(b.catalog.DeleteTrigger), waiter.Default),
		trigger(nil, b.catalog.DeleteTrigger),
		b.waitFor(waiter.SelectorVisible(b.catalog.DeleteConfirm), waiter.Default),
		click(mark, b.catalog.DeleteConfirm),
		b.waitForNavigation(mark),
		b.expectURL(res.IndexPath),
	}}
}
