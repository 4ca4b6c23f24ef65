package domain

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Routing range accepted by the parser. Content exists for 100-899; 9xx routes to the default adapter.
const (
	MinPageNumber = 100
	MaxPageNumber = 999
)

// PageID is a validated page identifier: a three-digit number and an optional opaque sub-page token.
type PageID struct {
	Number int
	Sub    string
}

// ParsePageID validates and normalizes a raw page request such as "203" or "203-3".
// The sub-page token is kept verbatim for the adapter to interpret.
func ParsePageID(raw string) (PageID, error) {
	s := strings.TrimSpace(raw)
	numPart, sub, hasSub := strings.Cut(s, "-")

	if len(numPart) != 3 {
		return PageID{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, raw)
	}
	for _, r := range numPart {
		if r < '0' || r > '9' {
			return PageID{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, raw)
		}
	}
	n, err := strconv.Atoi(numPart)
	if err != nil || n < MinPageNumber || n > MaxPageNumber {
		return PageID{}, fmt.Errorf("%w: %q out of range", ErrInvalidIdentifier, raw)
	}

	if hasSub {
		if sub == "" || strings.IndexFunc(sub, unicode.IsSpace) >= 0 {
			return PageID{}, fmt.Errorf("%w: bad sub-page in %q", ErrInvalidIdentifier, raw)
		}
	}

	return PageID{Number: n, Sub: sub}, nil
}

// MustParsePageID is ParsePageID for static tables and tests.
func MustParsePageID(raw string) PageID {
	id, err := ParsePageID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// Magazine is the hundreds digit of the page number (1-9).
func (id PageID) Magazine() int {
	return id.Number / 100
}

// HasSub reports whether a sub-page token was given.
func (id PageID) HasSub() bool {
	return id.Sub != ""
}

// Base returns the id without its sub-page.
func (id PageID) Base() PageID {
	return PageID{Number: id.Number}
}

// String returns the canonical form, e.g. "203" or "203-3".
func (id PageID) String() string {
	if id.Sub == "" {
		return strconv.Itoa(id.Number)
	}
	return strconv.Itoa(id.Number) + "-" + id.Sub
}

// CacheKey combines the canonical id with the content-affecting parameters, sorted by name,
// so distinct parameterizations never share an entry.
func (id PageID) CacheKey(params map[string]string) string {
	if len(params) == 0 {
		return id.String()
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(id.String())
	for i, k := range keys {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}
