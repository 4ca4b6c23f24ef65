// Package settings serves the reader preference pages (700s). Preferences live with the client;
// these pages echo what the client sent so it can confirm its state.
package settings

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"teletext/internal/adapter/layout"
	"teletext/internal/domain"
)

const Name = "settings"

const (
	indexPage   = 700
	paramsPage  = 701
	displayPage = 702
)

// Input modes a client can switch to.
const (
	InputNumeric = "numeric"
	InputText    = "text"
)

type option struct {
	Key     string
	Label   string
	Choices []string
}

var displayOptions = []option{
	{Key: "theme", Label: "Theme", Choices: []string{"classic", "dark", "amber"}},
	{Key: "scanlines", Label: "Scan lines", Choices: []string{"on", "off"}},
	{Key: "reveal", Label: "Reveal hidden", Choices: []string{"off", "on"}},
	{Key: "mode", Label: "Input mode", Choices: []string{InputNumeric, InputText}},
}

type Adapter struct{}

func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Name() string {
	return Name
}

// CacheTTL disables caching; every page reflects the request's own parameters.
func (a *Adapter) CacheTTL(domain.PageID) time.Duration {
	return 0
}

func (a *Adapter) GetPage(_ context.Context, id domain.PageID, params map[string]string) (*domain.Page, error) {
	if id.HasSub() {
		return nil, domain.NewAdapterError(domain.CodeNotFound, Name, id, "settings pages have no sub-pages", nil)
	}
	mode, err := inputMode(id, params)
	if err != nil {
		return nil, err
	}

	var b *layout.Builder
	switch id.Number {
	case indexPage:
		b = layout.NewBuilder(id, "SETTINGS", "Settings").
			Pair("Current parameters", "701").
			Pair("Display options", "702").
			Link("Parameters", "701", domain.LinkColorGreen).
			Link("Display", "702", domain.LinkColorYellow)
	case paramsPage:
		b = a.params(id, params)
	case displayPage:
		b = a.display(id, params)
	default:
		page := domain.ComingSoonPage(id)
		page.Meta[domain.MetaSource] = Name
		return page, nil
	}
	return b.Meta(domain.MetaInputMode, mode).
		Link("Index", "100", domain.LinkColorRed).
		Build(), nil
}

func (a *Adapter) params(id domain.PageID, params map[string]string) *layout.Builder {
	b := layout.NewBuilder(id, "SETTINGS", "Parameters")
	if len(params) == 0 {
		return b.Line("No parameters were sent.").Link("Settings", "700", domain.LinkColorGreen)
	}
	for _, k := range slices.Sorted(maps.Keys(params)) {
		b.Pair(k, params[k])
	}
	return b.Meta("params", len(params)).Link("Settings", "700", domain.LinkColorGreen)
}

func (a *Adapter) display(id domain.PageID, params map[string]string) *layout.Builder {
	b := layout.NewBuilder(id, "SETTINGS", "Display")
	for _, opt := range displayOptions {
		current := params[opt.Key]
		if !slices.Contains(opt.Choices, current) {
			current = opt.Choices[0]
		}
		b.Pair(opt.Label, strings.ToUpper(current))
		b.Line("  ?" + opt.Key + "=" + strings.Join(opt.Choices, "|"))
	}
	return b.Link("Settings", "700", domain.LinkColorGreen)
}

func inputMode(id domain.PageID, params map[string]string) (string, error) {
	switch mode := strings.ToLower(strings.TrimSpace(params["mode"])); mode {
	case "":
		return InputNumeric, nil
	case InputNumeric, InputText:
		return mode, nil
	default:
		return "", domain.NewAdapterError(domain.CodeValidation, Name, id, "unknown input mode "+mode, nil)
	}
}
