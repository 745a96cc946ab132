// Package pages holds page objects for the builder web application. Each
// object owns one Playwright page and exposes intention-revealing actions and
// verification helpers. Every failure is returned as an *errs.Error naming the
// attempted action.
package pages

import (
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/builder-e2e/internal/browser"
	"github.com/kuitang/builder-e2e/internal/config"
)

// DefaultPaywallProbe bounds how long SelectLLM looks for the upgrade modal
// after clicking a model option.
const DefaultPaywallProbe = 1500 * time.Millisecond

// Timeouts bounds every wait a page object performs.
type Timeouts struct {
	Action       time.Duration // element visibility and enabled waits
	Dashboard    time.Duration // loading indicator disappearance
	PaywallProbe time.Duration
}

// TimeoutsFromConfig derives page timeouts from the suite configuration.
func TimeoutsFromConfig(cfg *config.Config) Timeouts {
	return Timeouts{
		Action:    cfg.ActionTimeout,
		Dashboard: cfg.DashboardTimeout,
	}.withDefaults()
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Action <= 0 {
		t.Action = config.DefaultActionTimeout
	}
	if t.Dashboard <= 0 {
		t.Dashboard = config.DefaultDashboardTimeout
	}
	if t.PaywallProbe <= 0 {
		t.PaywallProbe = DefaultPaywallProbe
	}
	return t
}

type base struct {
	page     playwright.Page
	timeouts Timeouts
}

func newBase(page playwright.Page, timeouts []Timeouts) base {
	var t Timeouts
	if len(timeouts) > 0 {
		t = timeouts[0]
	}
	return base{page: page, timeouts: t.withDefaults()}
}

func (b base) expect() playwright.PlaywrightAssertions {
	return playwright.NewPlaywrightAssertions(browser.Millis(b.timeouts.Action))
}

func (b base) expectVisible(l playwright.Locator) error {
	return l.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(browser.Millis(b.timeouts.Action)),
	})
}

func (b base) expectEnabled(l playwright.Locator) error {
	return b.expect().Locator(l).ToBeEnabled()
}

// visibleThenClick waits for l to be visible and clicks it.
func (b base) visibleThenClick(l playwright.Locator) error {
	if err := b.expectVisible(l); err != nil {
		return err
	}
	return l.Click()
}

func (b base) button(name any) playwright.Locator {
	return b.page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: name})
}

func (b base) exactButton(name string) playwright.Locator {
	return b.page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{
		Name:  name,
		Exact: playwright.Bool(true),
	})
}

func (b base) heading(name string) playwright.Locator {
	return b.page.GetByRole(*playwright.AriaRoleHeading, playwright.PageGetByRoleOptions{Name: name})
}

func (b base) link(name string) playwright.Locator {
	return b.page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{Name: name})
}

// verifyAll asserts every locator is visible, stopping at the first failure.
func (b base) verifyAll(locators ...playwright.Locator) error {
	for _, l := range locators {
		if err := b.expectVisible(l); err != nil {
			return err
		}
	}
	return nil
}
