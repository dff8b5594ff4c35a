package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/me/sourcewatch/pkg/model"
)

// File is the daemon's YAML configuration. Everything is optional; zero
// values fall back to built-in defaults at wiring time.
type File struct {
	Addr      string `yaml:"addr"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	DBPath    string `yaml:"db_path"`

	// MonitoredTypes extends the built-in monitored type table.
	MonitoredTypes []model.MonitoredTypeSpec `yaml:"monitored_types"`

	// FallbackControls overrides the ordered list of alternate control
	// names the attempter tries when the type's own control is absent.
	FallbackControls []string `yaml:"fallback_controls"`

	Simulation Simulation `yaml:"simulation"`
}

// Simulation configures the daemon's built-in fake host.
type Simulation struct {
	// Resources is how many capture resources of each monitored type to
	// create (0 means one of each built-in type).
	Resources int `yaml:"resources"`

	// StallEveryMs is the period of the simulation tick that freezes one
	// resource, round-robin. 0 disables stalling.
	StallEveryMs int `yaml:"stall_every_ms"`
}

// LoadFile reads and parses a YAML config file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &f, nil
}
