package pages

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/builder-e2e/internal/browser"
	"github.com/kuitang/builder-e2e/internal/errs"
)

const (
	loadingIndicator = "text=Loading section..."
	promptInputCSS   = "textarea#mainTaskInput.flex.rounded-md.font-brockmann"

	submitEnabledJS = `() => {
		const button = document.querySelector('button:has(img[alt="Submit"])');
		return !!button && !button.disabled;
	}`
)

// Dashboard covers the signed-in working screen: the task composer and the
// model picker.
type Dashboard struct {
	base
}

// Selection reports the outcome of SelectLLM.
type Selection struct {
	Model Model
	// Paywalled is set when the upgrade modal appeared and was dismissed.
	// The selection is not asserted in that case.
	Paywalled bool
}

// NewDashboard binds a Dashboard page object to page.
func NewDashboard(page playwright.Page, timeouts ...Timeouts) *Dashboard {
	return &Dashboard{base: newBase(page, timeouts)}
}

func (d *Dashboard) promptInput() playwright.Locator {
	return d.page.Locator(promptInputCSS).First()
}

// WaitForDashboardLoad waits for the loading indicator to go away. An
// indicator that never rendered counts as loaded.
func (d *Dashboard) WaitForDashboardLoad() error {
	err := d.page.Locator(loadingIndicator).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: playwright.Float(browser.Millis(d.timeouts.Dashboard)),
	})
	return errs.Action("load dashboard", err)
}

// ClickCreateNewTask waits for the dashboard and focuses the prompt input.
func (d *Dashboard) ClickCreateNewTask() error {
	if err := d.WaitForDashboardLoad(); err != nil {
		return errs.Action("click create new task", err)
	}
	return errs.Action("click create new task", d.visibleThenClick(d.promptInput()))
}

// EnterPrompt fills the prompt input.
func (d *Dashboard) EnterPrompt(prompt string) error {
	input := d.promptInput()
	if err := d.expectVisible(input); err != nil {
		return errs.Action("enter prompt", err)
	}
	return errs.Action("enter prompt", input.Fill(prompt))
}

// SubmitPrompt waits for the submit button to become enabled, then clicks it.
// It never clicks while the button is disabled.
func (d *Dashboard) SubmitPrompt() error {
	submit := d.button("Submit")
	if err := d.expectVisible(submit); err != nil {
		return errs.Action("submit prompt", err)
	}
	if _, err := d.page.WaitForFunction(submitEnabledJS, nil, playwright.PageWaitForFunctionOptions{
		Timeout: playwright.Float(browser.Millis(d.timeouts.Action)),
	}); err != nil {
		return errs.Action("submit prompt", err)
	}
	return errs.Action("submit prompt", submit.Click())
}

// SelectLLM opens the model picker and chooses id. When the account cannot
// use the model the upgrade modal is dismissed and the selection is left
// unasserted.
func (d *Dashboard) SelectLLM(id ModelID) (Selection, error) {
	model := id.Model()
	action := "select LLM " + id.String()

	option, err := optionLocator(d.page, id)
	if err != nil {
		return Selection{}, errs.Wrap(errs.Internal, "Failed to "+action, err)
	}

	if err := d.visibleThenClick(d.button(modelButtonName).First()); err != nil {
		return Selection{}, errs.Action(action, fmt.Errorf("open model picker: %w", err))
	}
	if err := d.visibleThenClick(option); err != nil {
		return Selection{}, errs.Action(action, fmt.Errorf("choose option: %w", err))
	}

	paywalled, err := d.dismissPaywall()
	if err != nil {
		return Selection{}, errs.Action(action, err)
	}
	if paywalled {
		return Selection{Model: model, Paywalled: true}, nil
	}

	selected := d.button(regexp.MustCompile(regexp.QuoteMeta(model.Name))).First()
	if err := d.expectVisible(selected); err != nil {
		return Selection{}, errs.Action(action, fmt.Errorf("confirm selection: %w", err))
	}
	return Selection{Model: model}, nil
}

// dismissPaywall closes the upgrade modal if it shows up within the probe
// window. A probe timeout means no modal.
func (d *Dashboard) dismissPaywall() (bool, error) {
	err := d.heading("Choose your plan").WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(browser.Millis(d.timeouts.PaywallProbe)),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("probe upgrade modal: %w", err)
	}
	if err := d.button("Close modal").Click(); err != nil {
		return false, fmt.Errorf("close upgrade modal: %w", err)
	}
	return true, nil
}

// VerifyPlanResponse asserts the composer kept the prompt and the planning
// view offered Keep Building.
func (d *Dashboard) VerifyPlanResponse(prompt string) error {
	if err := d.expect().Locator(d.promptInput()).ToHaveValue(prompt); err != nil {
		return errs.Action("verify plan response", err)
	}
	keepBuilding := d.button("Keep Building")
	if err := keepBuilding.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(browser.Millis(d.timeouts.Dashboard)),
	}); err != nil {
		return errs.Action("verify plan response", err)
	}
	return errs.Action("verify plan response", d.expectVisible(d.heading("Start building with")))
}
