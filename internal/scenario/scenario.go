// Package scenario declares the suite's test scripts as data and runs them.
// A Case sequences page-object calls; the Runner gives each case its own
// browser context, captures a screenshot on success or failure and decorates
// failures with the case's description.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/builder-e2e/internal/artifacts"
	"github.com/kuitang/builder-e2e/internal/config"
	"github.com/kuitang/builder-e2e/internal/errs"
	"github.com/kuitang/builder-e2e/internal/obs"
	"github.com/kuitang/builder-e2e/internal/pages"
)

// ErrSkipped is returned by Runner.Run for cases that carry a skip reason.
var ErrSkipped = errors.New("scenario skipped")

// Env is what a running case can touch.
type Env struct {
	Config   *config.Config
	Page     playwright.Page
	Timeouts pages.Timeouts
}

// Case is one scenario.
type Case struct {
	ID       string
	Name     string
	Artifact string // screenshot base name, without extension
	Failure  string // prefix for the returned error
	Skip     string // non-empty skips the case with this reason
	// FreshSession runs the case in a signed-out context instead of the
	// stored session.
	FreshSession bool
	Run          func(ctx context.Context, env *Env) error
}

// Title is the case's display name, "ID: Name".
func (c Case) Title() string {
	return c.ID + ": " + c.Name
}

// ContextOpener creates browser contexts. An empty storage state path yields
// a signed-out context. *browser.Driver implements it.
type ContextOpener interface {
	NewSessionContext(storageStatePath string) (playwright.BrowserContext, error)
}

// Runner executes cases against one browser.
type Runner struct {
	cfg      *config.Config
	contexts ContextOpener
	timeouts pages.Timeouts
}

// NewRunner builds a runner. Page timeouts come from cfg unless overridden.
func NewRunner(cfg *config.Config, contexts ContextOpener, timeouts ...pages.Timeouts) *Runner {
	t := pages.TimeoutsFromConfig(cfg)
	if len(timeouts) > 0 {
		t = timeouts[0]
	}
	return &Runner{cfg: cfg, contexts: contexts, timeouts: t}
}

// Run opens a context for c, runs it on a new page and closes the context.
func (r *Runner) Run(ctx context.Context, c Case) error {
	if c.Skip != "" {
		return ErrSkipped
	}
	statePath := r.cfg.StorageStatePath
	if c.FreshSession {
		statePath = ""
	}
	bctx, err := r.contexts.NewSessionContext(statePath)
	if err != nil {
		return errs.Wrap(errs.Scenario, c.Failure, err)
	}
	defer bctx.Close()

	page, err := bctx.NewPage()
	if err != nil {
		return errs.Wrap(errs.Scenario, c.Failure, fmt.Errorf("open page: %w", err))
	}
	return r.RunOnPage(ctx, c, page)
}

// RunOnPage runs c on page. On success it writes <results>/<artifact>.png.
// On failure it writes <results>/<artifact>-failure.png first and returns
// "<Failure>: <cause>".
func (r *Runner) RunOnPage(ctx context.Context, c Case, page playwright.Page) error {
	ctx = obs.WithCaseID(ctx, c.ID)
	log := obs.From(ctx).With("pkg", "scenario")
	start := time.Now()
	log.Info("case_started", "name", c.Name)

	env := &Env{Config: r.cfg, Page: page, Timeouts: r.timeouts}
	if err := c.Run(ctx, env); err != nil {
		shot := artifacts.Path(r.cfg.ResultsDir, c.Artifact, true)
		if cerr := artifacts.Capture(page, shot); cerr != nil {
			log.Warn("failure_screenshot_failed", "error", cerr)
		}
		log.Error("case_failed",
			"error", err,
			"action", errs.MessageOf(err),
			"code", errs.CodeOf(err),
			"screenshot", shot,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return errs.Wrap(errs.Scenario, c.Failure, err)
	}

	shot := artifacts.Path(r.cfg.ResultsDir, c.Artifact, false)
	if err := artifacts.Capture(page, shot); err != nil {
		return errs.Wrap(errs.Scenario, c.Failure, err)
	}
	log.Info("case_passed", "screenshot", shot, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// ensureLoggedIn opens the base URL and, when the sign-in trigger shows,
// logs in with the configured credentials.
func ensureLoggedIn(env *Env) error {
	if _, err := env.Page.Goto(env.Config.BaseURL); err != nil {
		return errs.Wrap(errs.Navigation, "Failed to open "+env.Config.BaseURL, err)
	}
	login := pages.NewLogin(env.Page, env.Timeouts)
	signedOut, err := login.IsSignedOut()
	if err != nil || !signedOut {
		return err
	}
	if err := login.OpenEmailLogin(); err != nil {
		return err
	}
	if err := login.LoginWithCredentials(env.Config); err != nil {
		return err
	}
	if err := env.Page.WaitForURL("**/*"); err != nil {
		return errs.Wrap(errs.Navigation, "Failed to settle after login", err)
	}
	return nil
}
