// Package browsertest shares one Playwright browser across the tests of a
// package. Tests skip when Playwright or its browsers are not installed.
package browsertest

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/builder-e2e/internal/browser"
)

const (
	// Tests never wait longer than this for any single element or navigation.
	MaxTimeout   = 5 * time.Second
	MaxTimeoutMS = 5000
)

var (
	sharedMu sync.Mutex
	shared   *browser.Driver
)

// Driver returns the package-wide driver, launching it on first use.
func Driver(t testing.TB) *browser.Driver {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared != nil && shared.Connected() {
		return shared
	}

	d, err := browser.Start(context.Background(), browser.Options{
		Browser:           "chromium",
		Headless:          os.Getenv("HEADLESS") != "false",
		ActionTimeout:     MaxTimeout,
		NavigationTimeout: MaxTimeout,
	})
	if err != nil {
		t.Skip("Playwright not available:", err)
	}
	shared = d
	return shared
}

// NewPage opens a page in a fresh context. The context is closed when the
// test ends.
func NewPage(t testing.TB, storageStatePath string) playwright.Page {
	t.Helper()
	d := Driver(t)
	bctx, page, err := d.NewPage(storageStatePath)
	if err != nil {
		t.Fatalf("could not open page: %v", err)
	}
	t.Cleanup(func() {
		_ = bctx.Close()
	})
	return page
}

// Stop closes the shared driver. Call it from TestMain after m.Run.
func Stop() {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared != nil {
		_ = shared.Close()
		shared = nil
	}
}
