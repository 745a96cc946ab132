package pages

import (
	"strings"
	"testing"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/builder-e2e/internal/browser/browsertest"
	"github.com/kuitang/builder-e2e/internal/config"
	"github.com/kuitang/builder-e2e/internal/errs"
	"github.com/kuitang/builder-e2e/internal/mockapp"
)

func TestLogin_EmailFlowShowsSignedInLanding(t *testing.T) {
	page := browsertest.NewPage(t, "")
	srv := mockapp.NewTestServer(t, mockapp.Options{})
	gotoApp(t, page, srv.URL)

	login := NewLogin(page)
	signedOut, err := login.IsSignedOut()
	if err != nil {
		t.Fatalf("IsSignedOut: %v", err)
	}
	if !signedOut {
		t.Fatal("expected the sign-in trigger on the landing page")
	}

	if err := login.OpenEmailLogin(); err != nil {
		t.Fatalf("OpenEmailLogin: %v", err)
	}
	email, password := srv.Credentials()
	if err := login.LoginWithCredentials(&config.Config{UserEmail: email, UserPassword: password}); err != nil {
		t.Fatalf("LoginWithCredentials: %v", err)
	}

	checks := []struct {
		name string
		fn   func() error
	}{
		{"toolbar", login.VerifyToolbarButtons},
		{"navigation", login.VerifyNavigationElements},
		{"quick links", login.VerifyQuickActionLinks},
		{"AI elements", login.VerifyAIElements},
		{"headings", login.VerifyHeadings},
	}
	for _, check := range checks {
		if err := check.fn(); err != nil {
			t.Errorf("%s: %v", check.name, err)
		}
	}

	if srv.Logins() != 1 {
		t.Errorf("expected 1 login, got %d", srv.Logins())
	}
	signedOut, err = login.IsSignedOut()
	if err != nil {
		t.Fatalf("IsSignedOut: %v", err)
	}
	if signedOut {
		t.Error("sign-in trigger still visible after login")
	}
}

func TestLogin_WrongPasswordStaysOnLanding(t *testing.T) {
	page := browsertest.NewPage(t, "")
	srv := mockapp.NewTestServer(t, mockapp.Options{})
	gotoApp(t, page, srv.URL)

	login := NewLogin(page, fast)
	if err := login.OpenEmailLogin(); err != nil {
		t.Fatalf("OpenEmailLogin: %v", err)
	}
	email, _ := srv.Credentials()
	if err := login.Login(email, "not-the-password"); err != nil {
		t.Fatalf("Login should submit even with bad credentials: %v", err)
	}

	alert := page.GetByRole(*playwright.AriaRoleAlert)
	if err := alert.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(browsertest.MaxTimeoutMS),
	}); err != nil {
		t.Fatalf("expected an error alert: %v", err)
	}
	if srv.Logins() != 0 {
		t.Errorf("expected no logins, got %d", srv.Logins())
	}

	err := login.VerifyToolbarButtons()
	requireCode(t, err, errs.ElementTimeout)
	if !strings.HasPrefix(err.Error(), "Failed to verify toolbar buttons: ") {
		t.Errorf("unexpected error text: %q", err.Error())
	}
}

func TestLogin_MissingSignInTriggerTimesOut(t *testing.T) {
	page := browsertest.NewPage(t, "")
	srv := mockapp.NewTestServer(t, mockapp.Options{HideSignIn: true})
	gotoApp(t, page, srv.URL)
	page.SetDefaultTimeout(float64(fast.Action.Milliseconds()))

	err := NewLogin(page, fast).OpenEmailLogin()
	requireCode(t, err, errs.ElementTimeout)
	if got := errs.MessageOf(err); got != "Failed to open email login" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestLogin_LoginWithCredentialsRequiresConfig(t *testing.T) {
	t.Parallel()
	err := NewLogin(nil).LoginWithCredentials(nil)
	requireCode(t, err, errs.MissingConfig)
}
