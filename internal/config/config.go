package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultKnotsFile   = "_knots.jsn"
	DefaultSmoothWidth = 0.0
	DefaultDemoPixels  = 500
	DefaultDemoSeed    = 42
)

// Config holds the session settings for the interactive fitter.
type Config struct {
	KnotsFile   string  `yaml:"knots_file"`
	Autosave    bool    `yaml:"autosave"`
	SmoothWidth float64 `yaml:"smooth_width"`
	Redshift    float64 `yaml:"redshift"`
	Demo        Demo    `yaml:"demo"`
}

// Demo configures the synthetic spectrum used by the demo command.
type Demo struct {
	Pixels int   `yaml:"pixels"`
	Seed   int64 `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		KnotsFile:   DefaultKnotsFile,
		Autosave:    true,
		SmoothWidth: DefaultSmoothWidth,
		Demo: Demo{
			Pixels: DefaultDemoPixels,
			Seed:   DefaultDemoSeed,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
