package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"teletext/internal/domain"
	"teletext/internal/navigation"
)

const defaultEntryWindow = 2 * time.Second

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Navigate pages by typing page numbers",
	Long: `Read page numbers from stdin and load each page once entry settles.

Digits accumulate until a complete page number is typed ("203" or "203-3"),
which loads immediately, or until the entry window passes without input.
An empty line commits what has been typed so far. Type q to quit.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().Duration("window", defaultEntryWindow, "quiet period before partial input is committed")
	browseCmd.Flags().String("start", "100", "page shown on start, empty for none")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	window, _ := cmd.Flags().GetDuration("window")
	start, _ := cmd.Flags().GetString("start")

	b := &browser{
		client: newPageClient(serverURL, timeout, maxAttempts, logger),
		out:    cmd.OutOrStdout(),
	}
	return b.run(cmd.Context(), cmd.InOrStdin(), window, start)
}

type browser struct {
	client *pageClient
	out    io.Writer
	input  string
}

func (b *browser) run(ctx context.Context, in io.Reader, window time.Duration, start string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	commits := make(chan string, 4)
	deb := navigation.NewDebouncer(
		navigation.WithWindow(window),
		navigation.WithOnCommit(func(v string) {
			select {
			case commits <- v:
			default:
			}
		}),
	)
	defer deb.Stop()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	if start != "" {
		b.show(ctx, start)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case v := <-commits:
			b.commit(ctx, deb, v)
		case line, ok := <-lines:
			if !ok {
				// Flush whatever was typed before input closed.
				deb.ForceUpdate()
				b.drain(ctx, deb, commits)
				return nil
			}
			if q := strings.TrimSpace(line); q == "q" || q == "quit" {
				return nil
			}
			b.feed(deb, line)
			b.drain(ctx, deb, commits)
		}
	}
}

func (b *browser) drain(ctx context.Context, deb *navigation.Debouncer, commits <-chan string) {
	for {
		select {
		case v := <-commits:
			b.commit(ctx, deb, v)
		default:
			return
		}
	}
}

func (b *browser) commit(ctx context.Context, deb *navigation.Debouncer, v string) {
	b.input = ""
	deb.ClearInput()
	b.show(ctx, v)
}

// feed appends the digits and sub-page separator of line to the pending entry.
func (b *browser) feed(deb *navigation.Debouncer, line string) {
	if strings.TrimSpace(line) == "" {
		deb.ForceUpdate()
		return
	}
	for _, r := range line {
		if (r >= '0' && r <= '9') || r == '-' {
			b.input += string(r)
			deb.UpdateInput(b.input)
		}
	}
	if _, err := domain.ParsePageID(b.input); err == nil {
		deb.ForceUpdate()
	}
}

func (b *browser) show(ctx context.Context, raw string) {
	id, err := domain.ParsePageID(raw)
	if err != nil {
		fmt.Fprintf(b.out, "not a page number: %q\n", raw)
		return
	}
	page, err := b.client.Fetch(ctx, id, nil)
	if err != nil {
		fmt.Fprintf(b.out, "page %s unavailable: %v\n", id, err)
		return
	}
	printPage(b.out, page)
}
