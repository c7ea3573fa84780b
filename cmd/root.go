package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pathfit",
	Short: "Rescale SVG path data into a target pixel frame",
	Long: `pathfit maps SVG path coordinates from the viewBox they were authored in
into a fixed pixel frame, so icons and clip paths can be dropped into layouts
of any size. It rewrites single paths, whole SVG documents and directory
trees, builds progress clip paths, and serves the rescaler over HTTP and MCP.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".pathfit.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
