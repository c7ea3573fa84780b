package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/pathfit/internal/svgdoc"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.svg>",
	Short: "Show the viewBox, size and path data of an SVG document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		info, err := svgdoc.Inspect(data)
		if err != nil {
			return fmt.Errorf("inspecting %s: %w", args[0], err)
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		out, err := yaml.Marshal(info)
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	inspectCmd.Flags().Bool("json", false, "print JSON instead of YAML")
	rootCmd.AddCommand(inspectCmd)
}
