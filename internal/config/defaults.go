package config

// DefaultExcludes are glob patterns skipped when discovering SVG files.
var DefaultExcludes = []string{
	"vendor/**",
	"node_modules/**",
	".git/**",
	"dist/**",
	"build/**",
	"*.min.svg",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Width:          100,
		Height:         100,
		Include:        []string{"**/*.svg"},
		Exclude:        DefaultExcludes,
		OutputDir:      "fitted",
		MaxConcurrency: 4,
		CachePath:      ".pathfit/cache.db",
		Server: ServerConfig{
			Port: 8080,
		},
	}
}
