package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// assetDirs are directories that commonly hold SVG artwork, checked in order.
var assetDirs = []string{
	"icons",
	"assets",
	"static",
	"public",
	"src/assets",
}

// detectAssetDir returns the first well-known asset directory in the current
// directory, and the include glob to use for it.
func detectAssetDir() (dir string, include string) {
	for _, d := range assetDirs {
		if fi, err := os.Stat(d); err == nil && fi.IsDir() {
			return d, d + "/**/*.svg"
		}
	}
	return "", "**/*.svg"
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .pathfit.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to pathfit! Let's configure your project.")
	fmt.Println()

	assetDir, defaultInclude := detectAssetDir()
	if assetDir != "" {
		fmt.Printf("Found SVG asset directory: %s\n\n", assetDir)
	}

	defaults := DefaultConfig()

	// 1. Target frame.
	width, err := promptNumber("Target width in pixels", defaults.Width, true)
	if err != nil {
		return nil, fmt.Errorf("width: %w", err)
	}
	height, err := promptNumber("Target height in pixels", defaults.Height, true)
	if err != nil {
		return nil, fmt.Errorf("height: %w", err)
	}
	offsetX, err := promptNumber("Horizontal offset", 0, false)
	if err != nil {
		return nil, fmt.Errorf("offset x: %w", err)
	}
	offsetY, err := promptNumber("Vertical offset", 0, false)
	if err != nil {
		return nil, fmt.Errorf("offset y: %w", err)
	}

	// 2. Malformed input handling.
	modePrompt := promptui.Select{
		Label: "How should malformed path data be handled?",
		Items: []string{
			"lenient: copy unreadable parts through unchanged",
			"strict: fail the file",
		},
	}
	modeIdx, _, err := modePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("mode selection: %w", err)
	}

	// 3. Output directory.
	outputPrompt := promptui.Prompt{
		Label:   "Output directory for fitted SVGs",
		Default: defaults.OutputDir,
	}
	outputDir, err := outputPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}

	// 4. Include patterns.
	includePrompt := promptui.Prompt{
		Label:   "Include patterns (comma-separated globs)",
		Default: defaultInclude,
	}
	includeStr, err := includePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}

	// 5. Extra exclude patterns.
	excludePrompt := promptui.Prompt{
		Label:   "Extra exclude patterns (comma-separated, leave blank for defaults)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	exclude := append([]string(nil), DefaultExcludes...)
	exclude = append(exclude, splitAndTrim(excludeStr)...)

	cfg := defaults
	cfg.Width = width
	cfg.Height = height
	cfg.OffsetX = offsetX
	cfg.OffsetY = offsetY
	cfg.Strict = modeIdx == 1
	cfg.OutputDir = outputDir
	cfg.Include = splitAndTrim(includeStr)
	cfg.Exclude = exclude

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	configPath := ".pathfit.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

// promptNumber asks for a number, rejecting negative values and, when
// positive is set, zero.
func promptNumber(label string, def float64, positive bool) (float64, error) {
	p := promptui.Prompt{
		Label:    label,
		Default:  strconv.FormatFloat(def, 'f', -1, 64),
		Validate: numberValidator(positive),
	}
	s, err := p.Run()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func numberValidator(positive bool) promptui.ValidateFunc {
	return func(s string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("not a number")
		}
		if v < 0 || (positive && v == 0) {
			return fmt.Errorf("must be greater than zero")
		}
		return nil
	}
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
