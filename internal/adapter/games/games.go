// Package games serves the local, deterministic games magazine (600s).
package games

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"

	"teletext/internal/adapter/layout"
	"teletext/internal/domain"
)

const Name = "games"

const (
	indexPage = 600
	quizPage  = 601
	guessPage = 602
	luckyPage = 603

	guessMax   = 100
	luckyCount = 6
	luckyMax   = 49
)

type question struct {
	Text    string
	Choices [4]string
	Answer  int
}

var quiz = []question{
	{Text: "Which planet is closest to the Sun?", Choices: [4]string{"Venus", "Mercury", "Mars", "Earth"}, Answer: 1},
	{Text: "How many columns does a teletext row have?", Choices: [4]string{"32", "40", "64", "80"}, Answer: 1},
	{Text: "What is the chemical symbol for gold?", Choices: [4]string{"Ag", "Gd", "Au", "Go"}, Answer: 2},
	{Text: "Which ocean is the largest?", Choices: [4]string{"Atlantic", "Indian", "Arctic", "Pacific"}, Answer: 3},
	{Text: "How many sides does a hexagon have?", Choices: [4]string{"Six", "Five", "Eight", "Seven"}, Answer: 0},
}

var choiceLetters = [4]string{"A", "B", "C", "D"}

// Adapter derives daily puzzles from the injected clock, so every reader sees the same numbers
// on the same UTC day.
type Adapter struct {
	now func() time.Time
}

func New(now func() time.Time) *Adapter {
	if now == nil {
		now = time.Now
	}
	return &Adapter{now: now}
}

func (a *Adapter) Name() string {
	return Name
}

// CacheTTL disables caching: answers depend on the reader's parameters and the day.
func (a *Adapter) CacheTTL(domain.PageID) time.Duration {
	return 0
}

func (a *Adapter) GetPage(_ context.Context, id domain.PageID, params map[string]string) (*domain.Page, error) {
	if id.HasSub() && id.Number != quizPage {
		return nil, domain.NewAdapterError(domain.CodeNotFound, Name, id, "no sub-pages", nil)
	}
	switch id.Number {
	case indexPage:
		return a.index(id), nil
	case quizPage:
		return a.quiz(id, params["answer"])
	case guessPage:
		return a.guess(id, params["guess"]), nil
	case luckyPage:
		return a.lucky(id), nil
	}
	page := domain.ComingSoonPage(id)
	page.Meta[domain.MetaSource] = Name
	return page, nil
}

func (a *Adapter) index(id domain.PageID) *domain.Page {
	return layout.NewBuilder(id, "GAMES", "Games").
		Pair("Quiz", "601").
		Pair("Guess the number", "602").
		Pair("Lucky numbers", "603").
		Link("Quiz", "601", domain.LinkColorGreen).
		Link("Guess", "602", domain.LinkColorYellow).
		Link("Lucky", "603", domain.LinkColorCyan).
		Link("Index", "100", domain.LinkColorRed).
		Build()
}

func (a *Adapter) quiz(id domain.PageID, answer string) (*domain.Page, error) {
	n := 1
	if id.HasSub() {
		v, err := strconv.Atoi(id.Sub)
		if err != nil || v < 1 || v > len(quiz) {
			return nil, domain.NewAdapterError(domain.CodeNotFound, Name, id, "no such question", err)
		}
		n = v
	}
	q := quiz[n-1]

	b := layout.NewBuilder(id, "GAMES", fmt.Sprintf("Quiz %d/%d", n, len(quiz)))
	b.Text(q.Text).Blank()
	for i, c := range q.Choices {
		b.Line(choiceLetters[i] + "  " + c)
	}
	b.Blank()

	answer = strings.ToUpper(strings.TrimSpace(answer))
	switch idx := slices.Index(choiceLetters[:], answer); {
	case answer == "":
		b.Line("Answer with ?answer=A to D")
	case idx < 0:
		b.Line("Choose A, B, C or D")
	case idx == q.Answer:
		b.Line("Correct!").Meta("correct", true)
	default:
		b.Line("Wrong, it was " + choiceLetters[q.Answer] + " " + q.Choices[q.Answer]).Meta("correct", false)
	}

	if n < len(quiz) {
		b.Link("Next", fmt.Sprintf("%d-%d", quizPage, n+1), domain.LinkColorGreen)
	}
	return b.Link("Games", "600", domain.LinkColorRed).Build(), nil
}

func (a *Adapter) guess(id domain.PageID, raw string) *domain.Page {
	target := a.target()
	b := layout.NewBuilder(id, "GAMES", "Guess the number")
	b.Text(fmt.Sprintf("I am thinking of a number from 1 to %d. Guess with ?guess=N.", guessMax)).Blank()

	raw = strings.TrimSpace(raw)
	if raw != "" {
		g, err := strconv.Atoi(raw)
		switch {
		case err != nil || g < 1 || g > guessMax:
			b.Line(fmt.Sprintf("Enter a number from 1 to %d", guessMax))
		case g < target:
			b.Line(fmt.Sprintf("%d is too low", g))
		case g > target:
			b.Line(fmt.Sprintf("%d is too high", g))
		default:
			b.Line(fmt.Sprintf("%d is right! New number tomorrow.", g)).Meta("solved", true)
		}
	}
	return b.Meta(domain.MetaInputMode, "numeric").
		Link("Games", "600", domain.LinkColorRed).
		Build()
}

func (a *Adapter) lucky(id domain.PageID) *domain.Page {
	nums := a.luckyNumbers()
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%2d", n)
	}
	return layout.NewBuilder(id, "GAMES", "Lucky numbers").
		Line("Today's numbers").
		Blank().
		Line(layout.Center(strings.Join(parts, "  "))).
		Blank().
		Line(a.day()).
		Link("Games", "600", domain.LinkColorRed).
		Build()
}

func (a *Adapter) day() string {
	return a.now().UTC().Format(time.DateOnly)
}

func (a *Adapter) seed(salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(salt + ":" + a.day()))
	return h.Sum64()
}

func (a *Adapter) target() int {
	return int(a.seed("guess")%guessMax) + 1
}

// luckyNumbers draws distinct numbers from 1..luckyMax, sorted ascending.
func (a *Adapter) luckyNumbers() []int {
	s := a.seed("lucky")
	r := rand.New(rand.NewPCG(s, s>>1))
	nums := r.Perm(luckyMax)[:luckyCount]
	for i := range nums {
		nums[i]++
	}
	slices.Sort(nums)
	return nums
}
