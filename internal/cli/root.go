// Package cli contains the pagectl commands.
package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const defaultServerURL = "http://localhost:9300"

var (
	serverURL   string
	verbose     bool
	timeout     time.Duration
	maxAttempts int
	logger      *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pagectl",
	Short: "Teletext page service client",
	Long: `pagectl fetches and browses pages from a running teletext server.

Example usage:
  pagectl get 100              # Print the home page
  pagectl get 203-3            # Print sub-page 3 of page 203
  pagectl get 501 -p q=tides   # Pass a page parameter
  pagectl route 430            # Show which adapter serves page 430
  pagectl browse               # Type page numbers, pages load as digits commit`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initLogger()
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL, "teletext server base URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")
	rootCmd.PersistentFlags().IntVar(&maxAttempts, "attempts", 3, "maximum attempts per page request")
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
