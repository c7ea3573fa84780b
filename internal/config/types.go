package config

import (
	"fmt"

	"github.com/ziadkadry99/pathfit/internal/pathdata"
)

// Config is the top-level pathfit configuration, corresponding to .pathfit.yml.
type Config struct {
	Width          float64      `yaml:"width" koanf:"width"`
	Height         float64      `yaml:"height" koanf:"height"`
	OffsetX        float64      `yaml:"offset_x" koanf:"offset_x"`
	OffsetY        float64      `yaml:"offset_y" koanf:"offset_y"`
	ViewBox        string       `yaml:"view_box,omitempty" koanf:"view_box"`
	Include        []string     `yaml:"include" koanf:"include"`
	Exclude        []string     `yaml:"exclude" koanf:"exclude"`
	OutputDir      string       `yaml:"output_dir" koanf:"output_dir"`
	MaxConcurrency int          `yaml:"max_concurrency" koanf:"max_concurrency"`
	Strict         bool         `yaml:"strict" koanf:"strict"`
	CachePath      string       `yaml:"cache_path" koanf:"cache_path"`
	Server         ServerConfig `yaml:"server" koanf:"server"`
}

// ServerConfig holds settings for `pathfit server`.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// Frame returns the target frame described by the configuration.
func (c *Config) Frame() pathdata.Frame {
	return pathdata.Frame{
		Width:   c.Width,
		Height:  c.Height,
		OffsetX: c.OffsetX,
		OffsetY: c.OffsetY,
	}
}

// SourceViewBox returns the configured source space of bare path data files.
// The zero ViewBox is returned when none is set.
func (c *Config) SourceViewBox() (pathdata.ViewBox, error) {
	if c.ViewBox == "" {
		return pathdata.ViewBox{}, nil
	}
	vb, err := pathdata.ParseViewBox(c.ViewBox)
	if err != nil {
		return pathdata.ViewBox{}, fmt.Errorf("view_box: %w", err)
	}
	if !vb.Valid() {
		return pathdata.ViewBox{}, fmt.Errorf("view_box %q has no area", c.ViewBox)
	}
	return vb, nil
}
