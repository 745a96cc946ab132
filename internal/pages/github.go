package pages

import (
	"regexp"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/builder-e2e/internal/browser"
	"github.com/kuitang/builder-e2e/internal/errs"
)

var creditsURL = regexp.MustCompile(`(?i).*credits|pricing.*`)

// GitHub covers the GitHub connect panel and the Buy Credits entry point.
type GitHub struct {
	base
}

// NewGitHub binds a GitHub page object to page.
func NewGitHub(page playwright.Page, timeouts ...Timeouts) *GitHub {
	return &GitHub{base: newBase(page, timeouts)}
}

// ClickGitHubIcon opens the GitHub panel.
func (g *GitHub) ClickGitHubIcon() error {
	return errs.Action("click GitHub icon", g.visibleThenClick(g.exactButton("GitHub")))
}

// VerifyConnectToGitHubButton asserts the connect button is visible.
func (g *GitHub) VerifyConnectToGitHubButton() error {
	return errs.Action("verify Connect to Github button", g.expectVisible(g.button("Connect to Github")))
}

// VerifyRepositoryOptions asserts both repository visibility options are shown.
func (g *GitHub) VerifyRepositoryOptions() error {
	return errs.Action("verify repository options", g.verifyAll(
		g.page.GetByText("Private Repository"),
		g.page.GetByText("Public Repository"),
	))
}

// VerifyAndClickBuyCredits clicks Buy Credits and asserts the page moved to a
// credits or pricing URL.
func (g *GitHub) VerifyAndClickBuyCredits() error {
	if err := g.visibleThenClick(g.button("Buy Credits")); err != nil {
		return errs.Action("verify or click Buy Credits button", err)
	}
	err := g.page.WaitForURL(creditsURL, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(browser.Millis(g.timeouts.Action)),
	})
	return errs.Action("verify or click Buy Credits button", err)
}
