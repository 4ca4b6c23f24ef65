package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageID_AcceptsWholeRoutingRange(t *testing.T) {
	for n := MinPageNumber; n <= MaxPageNumber; n++ {
		id, err := ParsePageID(fmt.Sprintf("%d", n))
		require.NoError(t, err, "page %d", n)
		assert.Equal(t, n, id.Number)
		assert.Empty(t, id.Sub)
		assert.Equal(t, n/100, id.Magazine())
	}
}

func TestParsePageID_RejectsOtherIntegers(t *testing.T) {
	for _, n := range []int{-100, -1, 0, 1, 42, 99, 1000, 1234, 99999} {
		_, err := ParsePageID(fmt.Sprintf("%d", n))
		require.Error(t, err, "page %d", n)
		assert.True(t, errors.Is(err, ErrInvalidIdentifier))
	}
}

func TestParsePageID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    PageID
		wantErr bool
	}{
		{name: "sub-page", raw: "203-3", want: PageID{Number: 203, Sub: "3"}},
		{name: "non numeric sub-page kept verbatim", raw: "471-bbc2", want: PageID{Number: 471, Sub: "bbc2"}},
		{name: "sub-page with dash", raw: "203-3-b", want: PageID{Number: 203, Sub: "3-b"}},
		{name: "surrounding whitespace", raw: " 100 ", want: PageID{Number: 100}},
		{name: "leading zero", raw: "042", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "letters", raw: "abc", wantErr: true},
		{name: "plus sign", raw: "+10", wantErr: true},
		{name: "empty sub-page", raw: "203-", wantErr: true},
		{name: "sub-page with space", raw: "203-a b", wantErr: true},
		{name: "four digits", raw: "1000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePageID(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidIdentifier)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPageID_String(t *testing.T) {
	assert.Equal(t, "203", PageID{Number: 203}.String())
	assert.Equal(t, "203-3", PageID{Number: 203, Sub: "3"}.String())
	assert.Equal(t, "203", MustParsePageID("203-3").Base().String())
}

func TestPageID_CacheKey(t *testing.T) {
	id := MustParsePageID("471")

	assert.Equal(t, "471", id.CacheKey(nil))
	assert.Equal(t, "471?station=3", id.CacheKey(map[string]string{"station": "3"}))
	assert.Equal(t, "471?a=1&station=3", id.CacheKey(map[string]string{"station": "3", "a": "1"}))
	assert.NotEqual(t, id.CacheKey(map[string]string{"station": "3"}), id.CacheKey(map[string]string{"station": "4"}))
	assert.Equal(t, "203-3?q=a+b", MustParsePageID("203-3").CacheKey(map[string]string{"q": "a b"}))
}
