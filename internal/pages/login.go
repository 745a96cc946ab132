package pages

import (
	"regexp"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/builder-e2e/internal/browser"
	"github.com/kuitang/builder-e2e/internal/config"
	"github.com/kuitang/builder-e2e/internal/errs"
)

var (
	emailLoginName = regexp.MustCompile(`(?i)Log in with Email`)
	emailField     = regexp.MustCompile(`(?i)Enter your email`)
	passwordField  = regexp.MustCompile(`(?i)Enter your password`)
	loginName      = regexp.MustCompile(`(?i)Log In`)
)

// Login covers the signed-out landing screen, the email login modal and the
// signed-in landing elements.
type Login struct {
	base
}

// NewLogin binds a Login page object to page.
func NewLogin(page playwright.Page, timeouts ...Timeouts) *Login {
	return &Login{base: newBase(page, timeouts)}
}

func (l *Login) signInButton() playwright.Locator {
	return l.page.GetByText("Sign in")
}

func (l *Login) emailLoginButton() playwright.Locator {
	return l.button(emailLoginName)
}

func (l *Login) emailInput() playwright.Locator {
	return l.page.GetByPlaceholder(emailField)
}

func (l *Login) passwordInput() playwright.Locator {
	return l.page.GetByPlaceholder(passwordField)
}

func (l *Login) loginButton() playwright.Locator {
	return l.button(loginName)
}

// OpenEmailLogin clicks the sign-in trigger and then the email option.
func (l *Login) OpenEmailLogin() error {
	if err := l.signInButton().Click(); err != nil {
		return errs.Action("open email login", err)
	}
	if err := l.emailLoginButton().Click(); err != nil {
		return errs.Action("open email login", err)
	}
	return nil
}

// Login fills the email form and submits it.
func (l *Login) Login(email, password string) error {
	if err := l.emailInput().Fill(email); err != nil {
		return errs.Describe("Login failed", err)
	}
	if err := l.passwordInput().Fill(password); err != nil {
		return errs.Describe("Login failed", err)
	}
	if err := l.loginButton().Click(); err != nil {
		return errs.Describe("Login failed", err)
	}
	return nil
}

// LoginWithCredentials logs in with the credentials carried by cfg.
func (l *Login) LoginWithCredentials(cfg *config.Config) error {
	if cfg == nil {
		return errs.New(errs.MissingConfig, "Login with environment credentials failed: no configuration")
	}
	if err := l.Login(cfg.UserEmail, cfg.UserPassword); err != nil {
		return errs.Describe("Login with environment credentials failed", err)
	}
	return nil
}

// IsSignedOut reports whether the sign-in trigger is currently visible. It
// does not wait.
func (l *Login) IsSignedOut() (bool, error) {
	visible, err := l.signInButton().IsVisible()
	if err != nil {
		return false, errs.Action("check sign-in state", err)
	}
	return visible, nil
}

// VerifyNavigationElements asserts the Home navigation entry is visible.
func (l *Login) VerifyNavigationElements() error {
	home := l.page.GetByRole(*playwright.AriaRoleParagraph).Filter(playwright.LocatorFilterOptions{
		HasText: "Home",
	})
	return errs.Action("verify navigation elements", l.verifyAll(home))
}

// VerifyQuickActionLinks asserts the four starter prompt links are visible.
func (l *Login) VerifyQuickActionLinks() error {
	return errs.Action("verify quick action links", l.verifyAll(
		l.link("Clone Netflix"),
		l.link("Mood Tracker"),
		l.link("Smart Course"),
		l.link("Surprise Me"),
	))
}

// VerifyAIElements asserts the build textbox, the active model and the
// showcase entry are visible.
func (l *Login) VerifyAIElements() error {
	buildInput := l.page.GetByRole(*playwright.AriaRoleTextbox, playwright.PageGetByRoleOptions{
		Name: "Build me a be",
	})
	return errs.Action("verify AI elements", l.verifyAll(
		buildInput,
		l.page.GetByText(Claude45Sonnet.Model().Name),
		l.page.GetByText("Explore showcases"),
	))
}

// VerifyToolbarButtons asserts the Gift, Buy Credits, Public and Attach
// buttons are visible.
func (l *Login) VerifyToolbarButtons() error {
	return errs.Action("verify toolbar buttons", l.verifyAll(
		l.button("Gift Icon"),
		l.button("right arrow Buy Credits"),
		l.button("Public"),
		l.button("Attach"),
	))
}

// VerifyHeadings asserts the dashboard heading and sub-heading are visible.
func (l *Login) VerifyHeadings() error {
	return errs.Action("verify headings", l.verifyAll(
		l.heading("Where ideas become reality"),
		l.page.GetByText("Build fully functional apps and websites through simple conversations"),
	))
}

// WaitForSignedIn waits for the sign-in trigger to disappear, which is how
// the landing page shows an authenticated session.
func (l *Login) WaitForSignedIn() error {
	return l.WaitForSignedInWithin(l.timeouts.Action)
}

// WaitForSignedInWithin is WaitForSignedIn with an explicit bound, for
// callers such as the one-time bootstrap that allow a slower login.
func (l *Login) WaitForSignedInWithin(timeout time.Duration) error {
	err := l.signInButton().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: playwright.Float(browser.Millis(timeout)),
	})
	return errs.Action("confirm sign-in", err)
}
