package pages

import (
	"fmt"
	"regexp"

	"github.com/playwright-community/playwright-go"
)

// ModelID identifies one entry of the model picker.
type ModelID int

const (
	Claude45Sonnet ModelID = iota + 1
	Claude45Sonnet1M
	GPT5Beta
	Claude40Sonnet
)

// Model is the static fixture record for one selectable model.
type Model struct {
	ID          ModelID
	Key         string // stable short identifier used in case IDs
	Name        string // display name in the picker
	Context     string // context-size label under the name
	RequiresPro bool
}

var models = []Model{
	{ID: Claude45Sonnet, Key: "claude-4.5-sonnet", Name: "Claude 4.5 Sonnet", Context: "200k Context"},
	{ID: Claude45Sonnet1M, Key: "claude-4.5-sonnet-1m", Name: "Claude 4.5 Sonnet - 1M", Context: "1 Million Context", RequiresPro: true},
	{ID: GPT5Beta, Key: "gpt-5-beta", Name: "GPT-5 (Beta)", Context: "OpenAI newest model", RequiresPro: true},
	{ID: Claude40Sonnet, Key: "claude-4.0-sonnet", Name: "Claude 4.0 Sonnet", Context: "Anthropic older Model"},
}

// Models returns the model fixture table in picker order.
func Models() []Model {
	out := make([]Model, len(models))
	copy(out, models)
	return out
}

// Model returns the fixture record for id. Unknown IDs yield the zero Model.
func (id ModelID) Model() Model {
	for _, m := range models {
		if m.ID == id {
			return m
		}
	}
	return Model{}
}

// Valid reports whether id names a known model.
func (id ModelID) Valid() bool {
	return id.Model().ID != 0
}

func (id ModelID) String() string {
	if m := id.Model(); m.ID != 0 {
		return m.Name
	}
	return fmt.Sprintf("ModelID(%d)", int(id))
}

var (
	modelButtonName    = regexp.MustCompile(`Claude.*Sonnet|GPT-5.*Beta`)
	gpt5OptionText     = regexp.MustCompile(`^GPT-5 \(Beta\)OpenAI newest model$`)
	claude40OptionText = regexp.MustCompile(`^Claude 4\.0 SonnetAnthropic older Model$`)
)

// optionLocator resolves the picker entry for id. The live picker renders
// each entry with a different structure, so each model has its own strategy.
func optionLocator(page playwright.Page, id ModelID) (playwright.Locator, error) {
	switch id {
	case Claude45Sonnet:
		return page.GetByText(id.Model().Name, playwright.PageGetByTextOptions{
			Exact: playwright.Bool(true),
		}).Last(), nil
	case Claude45Sonnet1M:
		// The innermost div holding the name; outer matches span the whole menu.
		return page.Locator("div").Filter(playwright.LocatorFilterOptions{
			HasText: id.Model().Name,
		}).Last(), nil
	case GPT5Beta:
		return page.Locator("div").Filter(playwright.LocatorFilterOptions{
			HasText: gpt5OptionText,
		}).First(), nil
	case Claude40Sonnet:
		return page.Locator("div").Filter(playwright.LocatorFilterOptions{
			HasText: claude40OptionText,
		}).Nth(1), nil
	}
	return nil, fmt.Errorf("unknown model %s", id)
}
