package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pathfit/internal/config"
	"github.com/ziadkadry99/pathfit/internal/db"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `pathfit init` to create a config file", err)
	}
	return cfg, nil
}

// addFrameFlags registers the target frame overrides shared by the fitting commands.
func addFrameFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("width", 0, "target frame width (overrides config)")
	cmd.Flags().Float64("height", 0, "target frame height (overrides config)")
	cmd.Flags().Float64("offset-x", 0, "horizontal offset of the frame (overrides config)")
	cmd.Flags().Float64("offset-y", 0, "vertical offset of the frame (overrides config)")
	cmd.Flags().Bool("strict", false, "fail on malformed path data instead of copying it through")
}

// applyFrameFlags copies explicitly set frame flags onto cfg and validates the result.
func applyFrameFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Width, _ = flags.GetFloat64("width")
	}
	if flags.Changed("height") {
		cfg.Height, _ = flags.GetFloat64("height")
	}
	if flags.Changed("offset-x") {
		cfg.OffsetX, _ = flags.GetFloat64("offset-x")
	}
	if flags.Changed("offset-y") {
		cfg.OffsetY, _ = flags.GetFloat64("offset-y")
	}
	if flags.Changed("strict") {
		cfg.Strict, _ = flags.GetBool("strict")
	}
	if flags.Lookup("view-box") != nil && flags.Changed("view-box") {
		cfg.ViewBox, _ = flags.GetString("view-box")
	}
	return cfg.Validate()
}

// openCache opens the SQLite database holding the rescale cache and run history.
func openCache(cfg *config.Config) (*db.DB, error) {
	if dir := filepath.Dir(cfg.CachePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}
	database, err := db.Open(cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", cfg.CachePath, err)
	}
	return database, nil
}

// argOrStdin returns args[0], or standard input when there is no argument or
// the argument is "-".
func argOrStdin(args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
