package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pathfit/internal/cache"
	"github.com/ziadkadry99/pathfit/internal/history"
	"github.com/ziadkadry99/pathfit/internal/pathdata"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded fit runs, or show one run in detail",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := openCache(cfg)
		if err != nil {
			return err
		}
		defer database.Close()
		runs := history.NewStore(database)
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			run, err := runs.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("loading run %s: %w", args[0], err)
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		}

		limit, _ := cmd.Flags().GetInt("limit")
		list, err := runs.List(ctx, limit)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(out, "No runs recorded yet. Run `pathfit fit` first.")
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tFRAME\tFITTED\tCACHED\tFAILED")
		for _, r := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%sx%s\t%d\t%d\t%d\n",
				r.ID, r.StartedAt.Local().Format(time.DateTime), r.Status,
				pathdata.FormatNumber(r.Frame.Width), pathdata.FormatNumber(r.Frame.Height),
				r.Fitted, r.Cached, r.Failed)
		}
		return tw.Flush()
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or purge the rescale cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show rescale cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := openCache(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		stats, err := cache.NewStore(database).Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cache: %s\n  Entries: %d\n  Hits: %d\n  Bytes: %d\n",
			database.Path(), stats.Entries, stats.Hits, stats.Bytes)
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached results",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := openCache(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		olderThan, _ := cmd.Flags().GetDuration("older-than")
		n, err := cache.NewStore(database).Purge(cmd.Context(), olderThan)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached results\n", n)
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "number of runs to list (0 for all)")
	cachePurgeCmd.Flags().Duration("older-than", 0, "only remove entries unused for this long (default: all)")

	cacheCmd.AddCommand(cacheStatsCmd, cachePurgeCmd)
	rootCmd.AddCommand(historyCmd, cacheCmd)
}
