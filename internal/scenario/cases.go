package scenario

import (
	"context"
	"fmt"

	"github.com/kuitang/builder-e2e/internal/artifacts"
	"github.com/kuitang/builder-e2e/internal/errs"
	"github.com/kuitang/builder-e2e/internal/pages"
)

// Prompts are the task-creation inputs, in case order.
var Prompts = []string{
	"Build a simple todo app with user auth and PostgreSQL backend.",
	"Create an e-commerce website with shopping cart and payment integration.",
	"Develop a blog platform with markdown support and comments section.",
	"Build a real-time chat application with websocket support.",
	"Create a project management tool with task tracking and team collaboration.",
}

// All returns every case in suite order.
func All() []Case {
	var all []Case
	all = append(all, Login()...)
	all = append(all, TaskCreation()...)
	all = append(all, LLMSelection()...)
	all = append(all, GitHubIntegration()...)
	all = append(all, Gift()...)
	return all
}

// TaskCreation returns TC-002.1 through TC-002.5, one per prompt.
func TaskCreation() []Case {
	cases := make([]Case, 0, len(Prompts))
	for i, prompt := range Prompts {
		n := i + 1
		cases = append(cases, Case{
			ID:       fmt.Sprintf("TC-002.%d", n),
			Name:     "Create a new task with prompt: " + preview(prompt, 30) + "...",
			Artifact: fmt.Sprintf("TC-002-%d-task-creation", n),
			Failure:  "Task creation test failed",
			Run: func(_ context.Context, env *Env) error {
				if err := ensureLoggedIn(env); err != nil {
					return err
				}
				dash := pages.NewDashboard(env.Page, env.Timeouts)
				if err := dash.ClickCreateNewTask(); err != nil {
					return err
				}
				if err := dash.EnterPrompt(prompt); err != nil {
					return err
				}
				return dash.SubmitPrompt()
			},
		})
	}
	return cases
}

// LLMSelection returns one TC-003 case per model. Models that need a paid
// plan are skipped.
func LLMSelection() []Case {
	models := pages.Models()
	cases := make([]Case, 0, len(models))
	for _, m := range models {
		c := Case{
			ID:       fmt.Sprintf("TC-003.%d", int(m.ID)),
			Name:     "Select " + m.Name,
			Artifact: fmt.Sprintf("TC-003-%d-llm-selection-%s", int(m.ID), artifacts.Slug(m.Name)),
			Failure:  "LLM selection test failed",
			Run: func(_ context.Context, env *Env) error {
				if err := ensureLoggedIn(env); err != nil {
					return err
				}
				dash := pages.NewDashboard(env.Page, env.Timeouts)
				if err := dash.WaitForDashboardLoad(); err != nil {
					return err
				}
				_, err := dash.SelectLLM(m.ID)
				return err
			},
		}
		if m.RequiresPro {
			c.Skip = m.Name + " requires a paid plan"
		}
		cases = append(cases, c)
	}
	return cases
}

// GitHubIntegration returns TC-004 and TC-005.
func GitHubIntegration() []Case {
	return []Case{
		{
			ID:       "TC-004",
			Name:     "Verify GitHub integration buttons and repository options",
			Artifact: "TC-004-github-integration",
			Failure:  "GitHub integration test failed",
			Run: func(_ context.Context, env *Env) error {
				if err := ensureLoggedIn(env); err != nil {
					return err
				}
				gh := pages.NewGitHub(env.Page, env.Timeouts)
				if err := gh.ClickGitHubIcon(); err != nil {
					return err
				}
				if err := gh.VerifyConnectToGitHubButton(); err != nil {
					return err
				}
				return gh.VerifyRepositoryOptions()
			},
		},
		{
			ID:       "TC-005",
			Name:     "Verify Buy Credits button functionality",
			Artifact: "TC-005-buy-credits",
			Failure:  "Buy Credits button test failed",
			Run: func(_ context.Context, env *Env) error {
				if err := ensureLoggedIn(env); err != nil {
					return err
				}
				return pages.NewGitHub(env.Page, env.Timeouts).VerifyAndClickBuyCredits()
			},
		},
	}
}

// Login returns the stored-session and fresh-credential login cases.
func Login() []Case {
	return []Case{
		{
			ID:       "LOGIN-1",
			Name:     "Login with stored credentials",
			Artifact: "LOGIN-1-stored-credentials",
			Failure:  "Login test failed",
			Run: func(_ context.Context, env *Env) error {
				if err := ensureLoggedIn(env); err != nil {
					return err
				}
				return pages.NewLogin(env.Page, env.Timeouts).VerifyToolbarButtons()
			},
		},
		{
			ID:           "LOGIN-2",
			Name:         "Login with fresh credentials",
			Artifact:     "LOGIN-2-fresh-credentials",
			Failure:      "Login test failed",
			FreshSession: true,
			Run: func(_ context.Context, env *Env) error {
				if _, err := env.Page.Goto(env.Config.BaseURL); err != nil {
					return errs.Wrap(errs.Navigation, "Failed to open "+env.Config.BaseURL, err)
				}
				login := pages.NewLogin(env.Page, env.Timeouts)
				if err := login.OpenEmailLogin(); err != nil {
					return err
				}
				if err := login.Login(env.Config.UserEmail, env.Config.UserPassword); err != nil {
					return err
				}
				if err := login.WaitForSignedIn(); err != nil {
					return err
				}
				return login.VerifyHeadings()
			},
		},
	}
}

// Gift returns the two gift menu cases.
func Gift() []Case {
	run := func(_ context.Context, env *Env) error {
		if err := ensureLoggedIn(env); err != nil {
			return err
		}
		gift := pages.NewGift(env.Page, env.Timeouts)
		if err := gift.ClickGiftIcon(); err != nil {
			return err
		}
		return gift.VerifyAndClickGiftMenu()
	}
	return []Case{
		{
			ID:       "GIFT-1",
			Name:     "Click gift icon and verify dropdown menu",
			Artifact: "GIFT-1-gift-menu",
			Failure:  "Gift functionality test failed",
			Run:      run,
		},
		{
			ID:       "GIFT-2",
			Name:     "Verify gift menu interaction after login",
			Artifact: "GIFT-2-gift-menu-after-login",
			Failure:  "Gift functionality test failed",
			Run:      run,
		},
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
