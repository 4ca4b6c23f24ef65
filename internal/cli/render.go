package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"teletext/internal/domain"
)

var border = "+" + strings.Repeat("-", domain.PageCols) + "+"

// printPage draws the grid inside a frame, followed by the page's links.
func printPage(w io.Writer, page *domain.Page) {
	fmt.Fprintln(w, border)
	for _, row := range page.Rows {
		if pad := domain.PageCols - utf8.RuneCountInString(row); pad > 0 {
			row += strings.Repeat(" ", pad)
		}
		fmt.Fprintf(w, "|%s|\n", row)
	}
	fmt.Fprintln(w, border)
	for _, l := range page.Links {
		color := string(l.Color)
		if color == "" {
			color = "-"
		}
		fmt.Fprintf(w, " %-8s %-6s %s\n", color, l.TargetPage, l.Label)
	}
}
