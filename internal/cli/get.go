package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"teletext/internal/domain"
)

var getCmd = &cobra.Command{
	Use:   "get <page>",
	Short: "Fetch and print a page",
	Long: `Fetch a page from the server and print its 24x40 grid.

Transient failures (network errors, 5xx) are retried with exponential backoff.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringArrayP("param", "p", nil, "page parameter as key=value (repeatable)")
	getCmd.Flags().Bool("json", false, "print the raw page as JSON")
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := domain.ParsePageID(args[0])
	if err != nil {
		return fmt.Errorf("invalid page %q: %w", args[0], err)
	}
	rawParams, _ := cmd.Flags().GetStringArray("param")
	params, err := parseParams(rawParams)
	if err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	logger.Debug("fetching page", "server", serverURL, "page", id.String(), "params", len(params))

	client := newPageClient(serverURL, timeout, maxAttempts, logger)
	page, err := client.Fetch(cmd.Context(), id, params)
	if err != nil {
		return fmt.Errorf("fetching page %s: %w", id, err)
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	}
	printPage(cmd.OutOrStdout(), page)
	return nil
}
