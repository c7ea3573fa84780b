package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pathfit/internal/pathdata"
)

var rescaleCmd = &cobra.Command{
	Use:   "rescale [path-data]",
	Short: "Rescale one SVG path data string into the target frame",
	Long: `Rescales the given path data, or standard input when none is given, from
--view-box into the configured frame and prints the result.`,
	Example: `  pathfit rescale --view-box "0 0 24 24" --width 48 --height 48 "M 0 0 L 24 24"
  echo "m 1 1 h 2" | pathfit rescale --view-box "0 0 4 4"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRescale,
}

func init() {
	addFrameFlags(rescaleCmd)
	rescaleCmd.Flags().String("view-box", "", "source viewBox as \"minX minY width height\" (overrides config)")
	rootCmd.AddCommand(rescaleCmd)
}

func runRescale(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFrameFlags(cmd, cfg); err != nil {
		return err
	}
	vb, err := cfg.SourceViewBox()
	if err != nil {
		return err
	}
	if !vb.Valid() {
		return fmt.Errorf("a source viewBox is required: pass --view-box or set view_box in %s", cfgFile)
	}

	d, err := argOrStdin(args)
	if err != nil {
		return err
	}

	r := pathdata.NewRescaler(vb, cfg.Frame())
	if verbose {
		sx, sy := r.Scale()
		cmd.PrintErrf("Scale: %s x %s\n", pathdata.FormatNumber(sx), pathdata.FormatNumber(sy))
	}

	var out string
	if cfg.Strict {
		if out, err = r.RescaleStrict(d); err != nil {
			return err
		}
	} else {
		out = r.Rescale(d)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
