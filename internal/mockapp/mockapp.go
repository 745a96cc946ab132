// Package mockapp serves a small HTML replica of the target application's
// landing, login, dashboard and pricing screens. Package tests drive it with
// Playwright so page objects can be exercised without the live site.
//
// The replica keeps the live markup that locators depend on: accessible
// names, placeholders, the #mainTaskInput textarea, the image-labelled submit
// button, the model menu structure and the upgrade modal.
package mockapp

import (
	"crypto/rand"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kuitang/builder-e2e/internal/logutil"
	"github.com/kuitang/builder-e2e/internal/obs"
)

//go:embed templates/*.html
var templateFS embed.FS

// SessionCookieName is the cookie set after a successful email login.
const SessionCookieName = "builder_session"

const (
	defaultLoadingDelay      = 300 * time.Millisecond
	defaultSubmitEnableDelay = 250 * time.Millisecond
	defaultModel             = "Claude 4.5 Sonnet"
)

// Model is one entry of the replica's model menu.
type Model struct {
	Name    string `json:"name"`
	Context string `json:"context"`
	Pro     bool   `json:"pro"`
}

// Catalog mirrors the live model menu.
var Catalog = []Model{
	{Name: "Claude 4.5 Sonnet", Context: "200k Context"},
	{Name: "Claude 4.5 Sonnet - 1M", Context: "1 Million Context", Pro: true},
	{Name: "GPT-5 (Beta)", Context: "OpenAI newest model", Pro: true},
	{Name: "Claude 4.0 Sonnet", Context: "Anthropic older Model"},
}

// Options tunes the replica's behavior.
type Options struct {
	Email    string
	Password string

	Pro                bool          // account may select pro-tier models
	LoadingDelay       time.Duration // how long "Loading section..." stays up
	StuckLoading       bool          // loading indicator never goes away
	SubmitEnableDelay  time.Duration // delay before Submit enables after typing
	SubmitNeverEnables bool
	HideSignIn         bool          // landing page renders without the sign-in trigger
	LoginDelay         time.Duration // server-side delay before answering a login
}

// App is the replica server state.
type App struct {
	opts      Options
	templates map[string]*template.Template

	mu       sync.Mutex
	sessions map[string]bool
	logins   int
	tasks    []Task
}

// Task is one prompt received from the dashboard composer.
type Task struct {
	Prompt   string `json:"prompt"`
	Disabled bool   `json:"disabled"`
}

// New builds the replica. Credentials default to qa@example.com / password123.
func New(opts Options) (*App, error) {
	if opts.Email == "" {
		opts.Email = "qa@example.com"
	}
	if opts.Password == "" {
		opts.Password = "password123"
	}
	if opts.LoadingDelay <= 0 {
		opts.LoadingDelay = defaultLoadingDelay
	}
	if opts.SubmitEnableDelay <= 0 {
		opts.SubmitEnableDelay = defaultSubmitEnableDelay
	}

	templates := make(map[string]*template.Template)
	for _, page := range []string{"landing.html", "dashboard.html", "pricing.html"} {
		tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		templates[page] = tmpl
	}

	return &App{
		opts:      opts,
		templates: templates,
		sessions:  make(map[string]bool),
	}, nil
}

// Handler returns the replica's routes wrapped in request logging.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", a.handleHome)
	mux.HandleFunc("POST /login", a.handleLogin)
	mux.HandleFunc("GET /pricing", a.handlePricing)
	mux.HandleFunc("POST /api/tasks", a.handleCreateTask)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	})
	return logRequests(mux)
}

// Credentials returns the email and password the replica accepts.
func (a *App) Credentials() (email, password string) {
	return a.opts.Email, a.opts.Password
}

// Logins returns the number of successful logins.
func (a *App) Logins() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.logins
}

// Tasks returns the prompts submitted so far.
func (a *App) Tasks() []Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Task, len(a.tasks))
	copy(out, a.tasks)
	return out
}

func (a *App) signedIn(r *http.Request) bool {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessions[c.Value]
}

type scriptConfig struct {
	LoadingDelayMS      int64   `json:"loadingDelayMS"`
	StuckLoading        bool    `json:"stuckLoading"`
	SubmitEnableDelayMS int64   `json:"submitEnableDelayMS"`
	SubmitNeverEnables  bool    `json:"submitNeverEnables"`
	Pro                 bool    `json:"pro"`
	Models              []Model `json:"models"`
}

func (a *App) handleHome(w http.ResponseWriter, r *http.Request) {
	if !a.signedIn(r) {
		a.render(w, http.StatusOK, "landing.html", map[string]any{
			"Title":      "Welcome",
			"ShowSignIn": !a.opts.HideSignIn,
		})
		return
	}
	a.render(w, http.StatusOK, "dashboard.html", map[string]any{
		"Title":       "Home",
		"ShowLoading": true,
		"Model":       defaultModel,
		"Script": scriptConfig{
			LoadingDelayMS:      a.opts.LoadingDelay.Milliseconds(),
			StuckLoading:        a.opts.StuckLoading,
			SubmitEnableDelayMS: a.opts.SubmitEnableDelay.Milliseconds(),
			SubmitNeverEnables:  a.opts.SubmitNeverEnables,
			Pro:                 a.opts.Pro,
			Models:              Catalog,
		},
	})
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if a.opts.LoginDelay > 0 {
		select {
		case <-time.After(a.opts.LoginDelay):
		case <-r.Context().Done():
			return
		}
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	if !strings.EqualFold(email, a.opts.Email) || password != a.opts.Password {
		obs.From(r.Context()).With("pkg", "mockapp").Info("login_rejected",
			"form", logutil.FormatFieldsForLog(map[string]string{"email": email, "password": password}))
		a.render(w, http.StatusUnauthorized, "landing.html", map[string]any{
			"Title":      "Welcome",
			"ShowSignIn": !a.opts.HideSignIn,
			"Error":      "Invalid email or password",
		})
		return
	}

	token := newSessionToken()
	a.mu.Lock()
	a.sessions[token] = true
	a.logins++
	a.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handlePricing(w http.ResponseWriter, r *http.Request) {
	a.render(w, http.StatusOK, "pricing.html", map[string]any{"Title": "Pricing"})
}

func (a *App) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	if !a.signedIn(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var task Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	a.mu.Lock()
	a.tasks = append(a.tasks, task)
	a.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write([]byte(`{"status":"planning"}`))
}

func (a *App) render(w http.ResponseWriter, status int, page string, data map[string]any) {
	tmpl, ok := a.templates[page]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		obs.Pkg("mockapp").Error("render_failed", "page", page, "error", err)
	}
}

func newSessionToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("failed to generate session token: %v", err))
	}
	return hex.EncodeToString(buf)
}
