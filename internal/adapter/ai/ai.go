// Package ai generates magazine 5 pages from an Ollama-compatible generate endpoint.
package ai

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"teletext/internal/adapter/layout"
	"teletext/internal/adapter/upstream"
	"teletext/internal/domain"
)

const (
	Name = "ai"

	DefaultTTL   = 30 * time.Minute
	DefaultModel = "gemma3:4b"

	indexPage = 500

	// keep the model loaded between page requests
	keepAlive = "10m"

	screenInstruction = "Answer in plain text without markdown, in at most 120 words, " +
		"for a 40 column teletext screen."
)

// Prompt binds a page to a standing prompt.
type Prompt struct {
	Page   int
	Title  string
	Prompt string
}

type Config struct {
	BaseURL     string
	Model       string
	Prompts     []Prompt
	Temperature float64
	MaxTokens   int
	TTL         time.Duration
}

type generateRequest struct {
	Model     string         `json:"model"`
	Prompt    string         `json:"prompt"`
	Stream    bool           `json:"stream"`
	KeepAlive string         `json:"keep_alive,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type Adapter struct {
	client  *upstream.Client
	cfg     Config
	prompts map[int]Prompt
	order   []int
}

func New(cfg Config, client *upstream.Client) *Adapter {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	a := &Adapter{client: client, cfg: cfg, prompts: make(map[int]Prompt, len(cfg.Prompts))}
	for _, p := range cfg.Prompts {
		a.prompts[p.Page] = p
		a.order = append(a.order, p.Page)
	}
	sort.Ints(a.order)
	return a
}

func (a *Adapter) Name() string {
	return Name
}

func (a *Adapter) CacheTTL(domain.PageID) time.Duration {
	return a.cfg.TTL
}

// CacheParams keeps the free-form question.
func (a *Adapter) CacheParams(params map[string]string) map[string]string {
	if q := strings.TrimSpace(params["q"]); q != "" {
		return map[string]string{"q": q}
	}
	return nil
}

func (a *Adapter) GetPage(ctx context.Context, id domain.PageID, params map[string]string) (*domain.Page, error) {
	if id.HasSub() {
		return nil, domain.NewAdapterError(domain.CodeNotFound, Name, id, "ai pages have no sub-pages", nil)
	}

	question := strings.TrimSpace(params["q"])
	title := "Ask"
	var prompt string
	switch p, ok := a.prompts[id.Number]; {
	case ok:
		title = p.Title
		prompt = p.Prompt
		if question != "" {
			prompt += "\n\nFollow-up question: " + question
		}
	case id.Number == indexPage && question == "":
		return a.index(id), nil
	case id.Number == indexPage:
		prompt = question
	default:
		page := domain.ComingSoonPage(id)
		page.Meta[domain.MetaSource] = Name
		return page, nil
	}
	if len(prompt) > 2000 {
		return nil, domain.NewAdapterError(domain.CodeValidation, Name, id, "prompt too long", nil)
	}

	text, err := a.generate(ctx, id, prompt)
	if err != nil {
		return nil, err
	}

	b := layout.NewBuilder(id, "AI", title)
	if question != "" {
		b.Lines(layout.Wrap("Q: "+question, layout.Width)...).Blank()
	}
	b.Text(text)
	return b.Link("AI index", strconv.Itoa(indexPage), domain.LinkColorRed).
		Link("Index", "100", domain.LinkColorGreen).
		Meta(domain.MetaAIGenerated, true).
		Meta("model", a.cfg.Model).
		Build(), nil
}

func (a *Adapter) generate(ctx context.Context, id domain.PageID, prompt string) (string, error) {
	req := generateRequest{
		Model:     a.cfg.Model,
		Prompt:    screenInstruction + "\n\n" + prompt,
		Stream:    false,
		KeepAlive: keepAlive,
		Options:   map[string]any{"temperature": a.cfg.Temperature},
	}
	if a.cfg.MaxTokens > 0 {
		req.Options["num_predict"] = a.cfg.MaxTokens
	}

	var resp generateResponse
	if err := a.client.PostJSON(ctx, id, a.cfg.BaseURL+"/api/generate", req, &resp); err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Response)
	if text == "" {
		return "", domain.NewAdapterError(domain.CodeContentUnavailable, Name, id, "empty generation", nil)
	}
	return text, nil
}

func (a *Adapter) index(id domain.PageID) *domain.Page {
	b := layout.NewBuilder(id, "AI", "Ask the machine")
	for _, p := range a.order {
		pr := a.prompts[p]
		b.Pair(pr.Title, strconv.Itoa(p))
		b.Link(pr.Title, strconv.Itoa(p), "")
	}
	b.Blank().Text("Add ?q=your+question to any AI page to ask something of your own.")
	return b.Link("Index", "100", domain.LinkColorRed).Build()
}
