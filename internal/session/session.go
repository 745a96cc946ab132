// Package session performs the one-time interactive login that precedes a
// suite run and persists the authenticated browser state for every test to
// reuse.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/builder-e2e/internal/browser"
	"github.com/kuitang/builder-e2e/internal/config"
	"github.com/kuitang/builder-e2e/internal/errs"
	"github.com/kuitang/builder-e2e/internal/logutil"
	"github.com/kuitang/builder-e2e/internal/obs"
	"github.com/kuitang/builder-e2e/internal/pages"
	"github.com/kuitang/builder-e2e/internal/urlutil"
)

// Browser is the part of a launched browser the bootstrap needs.
type Browser interface {
	NewContext(options ...playwright.BrowserNewContextOptions) (playwright.BrowserContext, error)
	Close(options ...playwright.BrowserCloseOptions) error
}

// Launcher starts a browser for the bootstrap. The bootstrap owns the result
// and closes it on every path.
type Launcher func(ctx context.Context) (Browser, error)

// PlaywrightLauncher launches a real browser through internal/browser.
func PlaywrightLauncher(opts browser.Options) Launcher {
	return func(ctx context.Context) (Browser, error) {
		d, err := browser.Start(ctx, opts)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

// Options describes one bootstrap run.
type Options struct {
	BaseURL          string
	Email            string
	Password         string
	StorageStatePath string
	SetupTimeout     time.Duration // navigation, network idle and sign-in confirmation
	Pages            pages.Timeouts
}

// OptionsFromConfig derives bootstrap options from the suite configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BaseURL:          cfg.BaseURL,
		Email:            cfg.UserEmail,
		Password:         cfg.UserPassword,
		StorageStatePath: cfg.StorageStatePath,
		SetupTimeout:     cfg.SetupTimeout,
		Pages:            pages.TimeoutsFromConfig(cfg),
	}
}

// Bootstrap logs in through the email flow and writes the resulting storage
// state to opts.StorageStatePath. The browser is closed whether or not the
// login succeeds. Failures are coded errs.Setup and read
// "Global setup failed: <cause>".
func Bootstrap(ctx context.Context, opts Options, launch Launcher) (err error) {
	if opts.SetupTimeout <= 0 {
		opts.SetupTimeout = config.DefaultSetupTimeout
	}
	if opts.StorageStatePath == "" {
		return errs.New(errs.Setup, "Global setup failed: no storage state path")
	}
	log := obs.From(ctx).With("pkg", "session")
	start := time.Now()

	defer func() {
		if err != nil {
			log.Error("bootstrap_failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
			err = errs.Wrap(errs.Setup, "Global setup failed", err)
		}
	}()

	b, err := launch(ctx)
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if cerr := b.Close(); cerr != nil {
			if err == nil {
				err = fmt.Errorf("close browser: %w", cerr)
				return
			}
			log.Warn("browser_close_failed", "error", cerr)
		}
	}()

	bctx, err := b.NewContext()
	if err != nil {
		return err
	}
	page, err := bctx.NewPage()
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}

	baseURL := opts.BaseURL
	log.Info("bootstrap_started", "base_url", logutil.RedactURL(baseURL))

	setupMS := playwright.Float(browser.Millis(opts.SetupTimeout))
	if _, err := page.Goto(baseURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   setupMS,
	}); err != nil {
		return errs.Wrap(errs.Navigation, "Failed to open "+baseURL, err)
	}
	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: setupMS,
	}); err != nil {
		return errs.Wrap(errs.Navigation, "Failed to reach network idle", err)
	}

	login := pages.NewLogin(page, opts.Pages)
	if err := login.OpenEmailLogin(); err != nil {
		return err
	}
	if err := login.Login(opts.Email, opts.Password); err != nil {
		return err
	}
	if err := page.WaitForURL("**/*", playwright.PageWaitForURLOptions{Timeout: setupMS}); err != nil {
		return errs.Wrap(errs.Navigation, "Failed to settle after login", err)
	}
	if err := login.WaitForSignedInWithin(opts.SetupTimeout); err != nil {
		return err
	}
	if landed := page.URL(); !urlutil.SameOrigin(landed, baseURL) {
		log.Warn("login_left_origin", "url", logutil.RedactURL(landed))
	}

	if err := saveStorageState(bctx, opts.StorageStatePath); err != nil {
		return err
	}
	log.Info("bootstrap_completed",
		"storage_state", opts.StorageStatePath,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// saveStorageState writes the context's storage state next to path and
// renames it into place, so readers never observe a partial file.
func saveStorageState(bctx playwright.BrowserContext, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create storage state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("reserve storage state file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("reserve storage state file: %w", err)
	}

	if _, err := bctx.StorageState(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write storage state: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("persist storage state: %w", err)
	}
	return nil
}

// Exists reports whether a storage state file is present at path.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return !info.IsDir(), nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
