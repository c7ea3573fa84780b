package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pathfit/internal/cache"
	mcpserver "github.com/ziadkadry99/pathfit/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing path rescaling, SVG fitting and clip path tools to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var store *cache.Store
		if noCache, _ := cmd.Flags().GetBool("no-cache"); !noCache {
			database, err := openCache(cfg)
			if err != nil {
				// Tools still work without the cache.
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			} else {
				defer database.Close()
				store = cache.NewStore(database)
			}
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "pathfit MCP server started on stdio (cache=%t)\n", store != nil)

		srv := mcpserver.NewServer(store)
		return srv.Serve()
	},
}

func init() {
	serveCmd.Flags().Bool("no-cache", false, "do not cache rescaled paths")
	rootCmd.AddCommand(serveCmd)
}
