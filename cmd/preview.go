package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pathfit/internal/pathdata"
	"github.com/ziadkadry99/pathfit/internal/raster"
	"github.com/ziadkadry99/pathfit/internal/svgdoc"
)

var previewCmd = &cobra.Command{
	Use:   "preview [path-data]",
	Short: "Render rescaled path data to a PNG mask",
	Long: `Rescales the given path data (or every path of --svg) into the target frame
and fills it into a PNG alpha mask the size of the frame bounds, to check what a
rescaled clip path covers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	addFrameFlags(previewCmd)
	previewCmd.Flags().String("view-box", "", "source viewBox of the path data (overrides config)")
	previewCmd.Flags().String("svg", "", "render every path of this SVG document instead")
	previewCmd.Flags().StringP("output", "o", "preview.png", "PNG file to write")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFrameFlags(cmd, cfg); err != nil {
		return err
	}
	frame := cfg.Frame()

	var paths []string
	if svgPath, _ := cmd.Flags().GetString("svg"); svgPath != "" {
		data, err := os.ReadFile(svgPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", svgPath, err)
		}
		info, err := svgdoc.Inspect(data)
		if err != nil {
			return fmt.Errorf("inspecting %s: %w", svgPath, err)
		}
		r := pathdata.NewRescaler(info.ViewBox, frame)
		for _, d := range info.Paths {
			paths = append(paths, r.Rescale(d))
		}
	} else {
		vb, err := cfg.SourceViewBox()
		if err != nil {
			return err
		}
		if !vb.Valid() {
			return fmt.Errorf("a source viewBox is required: pass --view-box or --svg")
		}
		d, err := argOrStdin(args)
		if err != nil {
			return err
		}
		paths = append(paths, pathdata.Rescale(d, vb, frame))
	}

	bounds := frame.Bounds()
	img, err := raster.RenderPaths(paths, int(math.Ceil(bounds.Width)), int(math.Ceil(bounds.Height)))
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}
	defer f.Close()
	if err := raster.WritePNG(f, img); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %dx%d preview to %s\n", img.Rect.Dx(), img.Rect.Dy(), output)
	return nil
}
