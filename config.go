package enshrine

import "github.com/goccy/go-yaml"

// Config is the optional YAML configuration consumed by the command line
// tool.
type Config struct {
	// DefaultRef is the ref used when none is given on the command line.
	DefaultRef string `yaml:"default_ref"`
	// Boundary selects the [BoundaryPolicy]: "root" (default) or "strict".
	Boundary string `yaml:"boundary"`
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`
}

func ParseConfigYAML(file []byte) (*Config, error) {
	result := &Config{}

	if err := yaml.Unmarshal(file, result); err != nil {
		return nil, err
	}

	return result, nil
}
