package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pathfit/internal/clippath"
	"github.com/ziadkadry99/pathfit/internal/pathdata"
)

var clipCmd = &cobra.Command{
	Use:   "clip",
	Short: "Build CSS clip paths for progress indicators",
}

var clipProgressCmd = &cobra.Command{
	Use:   "progress <angle>",
	Short: "Print the polygon() clip path of a clockwise progress sweep",
	Long: `Prints the CSS polygon() that reveals a square element as a pie swept
clockwise from 12 o'clock by <angle> degrees. With --score the argument is a
0-100 score instead. With --width and --height the polygon is also printed as
SVG path data in that frame.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", args[0])
		}
		if score, _ := cmd.Flags().GetBool("score"); score {
			v *= 3.6
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, clippath.Progress(v))

		w, _ := cmd.Flags().GetFloat64("width")
		h, _ := cmd.Flags().GetFloat64("height")
		if w > 0 && h > 0 {
			fmt.Fprintln(out, clippath.ProgressPath(v, pathdata.Frame{Width: w, Height: h}))
		}
		return nil
	},
}

var clipBarCmd = &cobra.Command{
	Use:   "bar <percent>",
	Short: "Print the polygon() clip path revealing the left percent of an element",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), clippath.Bar(v))
		return nil
	},
}

var clipCoverCmd = &cobra.Command{
	Use:   "cover <src-width> <src-height> <box-width> <box-height>",
	Short: "Print the size an image must be drawn at to cover a box",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		var n [4]float64
		for i, a := range args {
			v, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return fmt.Errorf("invalid number %q", a)
			}
			n[i] = v
		}
		w, h := clippath.Cover(n[0], n[1], n[2], n[3])
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", pathdata.FormatNumber(w), pathdata.FormatNumber(h))
		return nil
	},
}

func init() {
	clipProgressCmd.Flags().Bool("score", false, "treat the argument as a 0-100 score")
	clipProgressCmd.Flags().Float64("width", 0, "frame width for SVG path output")
	clipProgressCmd.Flags().Float64("height", 0, "frame height for SVG path output")

	clipCmd.AddCommand(clipProgressCmd, clipBarCmd, clipCoverCmd)
	rootCmd.AddCommand(clipCmd)
}
