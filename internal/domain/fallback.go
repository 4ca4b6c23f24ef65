package domain

import (
	"strings"
	"unicode/utf8"
)

// Fallback pages keep the client's render path uniform: every request renders something.

// NotFoundPage is served for malformed, out-of-range or unknown page ids. rawID is echoed verbatim.
func NotFoundPage(rawID string) *Page {
	return fallbackPage(rawID, "Page not found", []string{
		"PAGE " + strings.ToUpper(rawID) + " NOT FOUND",
		"",
		"The page you requested does not exist.",
		"Try the index on page 100.",
	}, "not_found")
}

// ComingSoonPage is served for valid ids that no adapter produces yet.
func ComingSoonPage(id PageID) *Page {
	return fallbackPage(id.String(), "Coming soon", []string{
		"PAGE " + id.String(),
		"",
		"COMING SOON",
		"",
		"This section is not available yet.",
	}, "coming_soon")
}

// ErrorPage is served when an adapter failed after retries.
func ErrorPage(rawID string, err error) *Page {
	reason := "The service is temporarily unavailable."
	switch {
	case err == nil:
	case isErr(err, ErrPageNotFound):
		return NotFoundPage(rawID)
	case isErr(err, ErrValidation):
		reason = "The content could not be displayed."
	}
	p := fallbackPage(rawID, "Service error", []string{
		"PAGE " + rawID,
		"",
		"SERVICE ERROR",
		"",
		reason,
		"Please try again shortly.",
	}, "error")
	return p
}

func fallbackPage(id, title string, body []string, kind string) *Page {
	rows := make([]string, 0, PageRows)
	rows = append(rows, headerRow(id), "")
	for _, line := range body {
		rows = append(rows, centerRow(line))
	}
	for len(rows) < PageRows-1 {
		rows = append(rows, "")
	}
	rows = append(rows, "100 Index  101 Help")

	return &Page{
		ID:    id,
		Title: title,
		Rows:  NormalizeRows(rows),
		Links: []Link{
			{Label: "Index", TargetPage: "100", Color: LinkColorRed},
			{Label: "Help", TargetPage: "101", Color: LinkColorGreen},
		},
		Meta: map[string]any{MetaFallback: kind, MetaSource: "system"},
	}
}

func headerRow(id string) string {
	left := "P" + id
	right := "TELETEXT"
	gap := PageCols - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func centerRow(s string) string {
	n := utf8.RuneCountInString(s)
	if n >= PageCols {
		return s
	}
	return strings.Repeat(" ", (PageCols-n)/2) + s
}
