package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"teletext/internal/di"
	"teletext/internal/domain"
	"teletext/internal/infra/config"
)

var routeCmd = &cobra.Command{
	Use:   "route [page]",
	Short: "Show which adapter serves a page",
	Long: `Resolve a page number against the routing table built from the current
environment configuration. Without a page the whole table is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRoute,
}

func init() {
	rootCmd.AddCommand(routeCmd)
}

func runRoute(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	// Only the routing table is needed; never dial a remote cache or start the prefetcher.
	cfg.Cache.Backend = config.CacheBackendMemory
	cfg.Prefetch.Enabled = false

	components, err := di.NewApplicationComponents(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	if err != nil {
		return fmt.Errorf("building router: %w", err)
	}
	defer func() { _ = components.Close() }()

	w := cmd.OutOrStdout()
	if len(args) == 0 {
		for _, b := range components.Router.Table() {
			fmt.Fprintf(w, "%-9s %s\n", b.Range, b.Adapter)
		}
		return nil
	}

	id, err := domain.ParsePageID(args[0])
	if err != nil {
		return fmt.Errorf("invalid page %q: %w", args[0], err)
	}
	h := components.Router.Route(id)
	fmt.Fprintf(w, "page:     %s\n", id)
	fmt.Fprintf(w, "magazine: %d\n", h.Magazine)
	fmt.Fprintf(w, "adapter:  %s\n", h.Name)
	return nil
}
