package pages

import (
	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/builder-e2e/internal/errs"
)

// Gift covers the referral gift menu in the toolbar.
type Gift struct {
	base
}

// NewGift binds a Gift page object to page.
func NewGift(page playwright.Page, timeouts ...Timeouts) *Gift {
	return &Gift{base: newBase(page, timeouts)}
}

func (g *Gift) giftMenu() playwright.Locator {
	return g.page.Locator(".relative.px-4")
}

// ClickGiftIcon opens the gift menu.
func (g *Gift) ClickGiftIcon() error {
	return errs.Action("click Gift icon", g.visibleThenClick(g.button("Gift Icon")))
}

// VerifyAndClickGiftMenu asserts the gift menu is visible and enabled, then
// clicks it.
func (g *Gift) VerifyAndClickGiftMenu() error {
	menu := g.giftMenu()
	if err := g.expectVisible(menu); err != nil {
		return errs.Action("verify or click gift menu", err)
	}
	if err := g.expectEnabled(menu); err != nil {
		return errs.Action("verify or click gift menu", err)
	}
	return errs.Action("verify or click gift menu", menu.Click())
}
