// Package browser owns the Playwright driver and browser lifecycle.
// Every context and page it hands out carries the suite's bounded default
// timeouts, so page objects never wait unbounded.
package browser

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/builder-e2e/internal/config"
	"github.com/kuitang/builder-e2e/internal/obs"
)

// Options selects and tunes the browser.
type Options struct {
	Browser           string // chromium, firefox or webkit
	Headless          bool
	ActionTimeout     time.Duration
	NavigationTimeout time.Duration
}

// OptionsFromConfig derives browser options from the suite configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Browser:           cfg.Browser,
		Headless:          cfg.Headless,
		ActionTimeout:     cfg.ActionTimeout,
		NavigationTimeout: cfg.SetupTimeout,
	}
}

func (o Options) withDefaults() Options {
	if o.Browser == "" {
		o.Browser = "chromium"
	}
	if o.ActionTimeout <= 0 {
		o.ActionTimeout = config.DefaultActionTimeout
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = config.DefaultSetupTimeout
	}
	return o
}

// Millis converts a duration to the float milliseconds Playwright expects.
func Millis(d time.Duration) float64 {
	return float64(d.Milliseconds())
}

// Driver is a running Playwright driver with one launched browser.
type Driver struct {
	opts    Options
	pw      *playwright.Playwright
	browser playwright.Browser

	closeOnce sync.Once
	closeErr  error
}

// Start runs the Playwright driver and launches the configured browser.
func Start(ctx context.Context, opts Options) (*Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	log := obs.From(ctx).With("pkg", "browser")

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch opts.Browser {
	case "chromium":
		browserType = pw.Chromium
	case "firefox":
		browserType = pw.Firefox
	case "webkit":
		browserType = pw.WebKit
	default:
		_ = pw.Stop()
		return nil, fmt.Errorf("unsupported browser %q", opts.Browser)
	}

	b, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch %s: %w", opts.Browser, err)
	}

	log.Info("browser_started", "browser", opts.Browser, "headless", opts.Headless, "version", b.Version())
	return &Driver{opts: opts, pw: pw, browser: b}, nil
}

// NewContext creates an isolated browser context with default timeouts applied.
func (d *Driver) NewContext(options ...playwright.BrowserNewContextOptions) (playwright.BrowserContext, error) {
	bctx, err := d.browser.NewContext(options...)
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}
	bctx.SetDefaultTimeout(Millis(d.opts.ActionTimeout))
	bctx.SetDefaultNavigationTimeout(Millis(d.opts.NavigationTimeout))
	return bctx, nil
}

// NewSessionContext creates a context that starts from a persisted storage
// state. An empty path yields a fresh, signed-out context.
func (d *Driver) NewSessionContext(storageStatePath string) (playwright.BrowserContext, error) {
	if storageStatePath == "" {
		return d.NewContext()
	}
	if _, err := os.Stat(storageStatePath); err != nil {
		return nil, fmt.Errorf("storage state %s unavailable: %w", storageStatePath, err)
	}
	return d.NewContext(playwright.BrowserNewContextOptions{
		StorageStatePath: playwright.String(storageStatePath),
	})
}

// NewPage opens a page in a fresh context built from storageStatePath.
// Closing the returned context releases the page too.
func (d *Driver) NewPage(storageStatePath string) (playwright.BrowserContext, playwright.Page, error) {
	bctx, err := d.NewSessionContext(storageStatePath)
	if err != nil {
		return nil, nil, err
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, nil, fmt.Errorf("could not create page: %w", err)
	}
	return bctx, page, nil
}

// Close closes the browser and stops the driver. It is safe to call twice.
func (d *Driver) Close(options ...playwright.BrowserCloseOptions) error {
	d.closeOnce.Do(func() {
		if d.browser != nil {
			if err := d.browser.Close(options...); err != nil {
				d.closeErr = fmt.Errorf("could not close browser: %w", err)
			}
		}
		if d.pw != nil {
			if err := d.pw.Stop(); err != nil && d.closeErr == nil {
				d.closeErr = fmt.Errorf("could not stop playwright: %w", err)
			}
		}
	})
	return d.closeErr
}

// Connected reports whether the browser is still running.
func (d *Driver) Connected() bool {
	return d.browser != nil && d.browser.IsConnected()
}
