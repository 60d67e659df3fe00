package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/estuary/sql-baseline/baseline"
	"github.com/estuary/sql-baseline/go/common"
	"gopkg.in/yaml.v3"
)

// suite pairs a recorded statement log with the fixture it's verified against.
type suite struct {
	Name    string `yaml:"name" json:"name" jsonschema:"title=Name,description=Unique name of the suite." jsonschema_extras:"order=0"`
	Log     string `yaml:"log" json:"log" jsonschema:"title=Statement Log,description=Path of the JSON lines log of recorded statements." jsonschema_extras:"order=1"`
	Fixture string `yaml:"fixture" json:"fixture" jsonschema:"title=Fixture,description=Path of the baseline fixture the log must match." jsonschema_extras:"order=2"`
}

// config is the YAML document read by --config.
type config struct {
	Suites []suite `yaml:"suites" json:"suites" jsonschema:"title=Suites,description=Baseline suites to verify." jsonschema_extras:"order=0"`
	Flags  string  `yaml:"flags,omitempty" json:"flags,omitempty" jsonschema:"title=Feature Flags,description=Comma-separated feature flags. Prefix a flag with 'no_' to disable it." jsonschema_extras:"advanced=true,order=1"`
}

func (s suite) Validate() error {
	var requiredProperties = [][]string{
		{"name", s.Name},
		{"log", s.Log},
		{"fixture", s.Fixture},
	}
	for _, req := range requiredProperties {
		if req[1] == "" {
			return fmt.Errorf("missing '%s'", req[0])
		}
	}
	return nil
}

// Validate checks that the config is complete and its suite names are unique.
func (c config) Validate() error {
	if len(c.Suites) == 0 {
		return fmt.Errorf("missing 'suites'")
	}

	var seen = make(map[string]bool)
	for i, s := range c.Suites {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("suites[%d]: %w", i, err)
		} else if seen[s.Name] {
			return fmt.Errorf("suites[%d]: duplicate suite name %q", i, s.Name)
		}
		seen[s.Name] = true
	}

	if _, err := c.featureFlags(); err != nil {
		return fmt.Errorf("parsing 'flags': %w", err)
	}
	return nil
}

func (c config) featureFlags() (map[string]bool, error) {
	return common.ParseFeatureFlags(c.Flags, baseline.FeatureFlagDefaults)
}

// selected returns the suite called `name`, or all suites if `name` is empty.
func (c config) selected(name string) ([]suite, error) {
	if name == "" {
		return c.Suites, nil
	}
	for _, s := range c.Suites {
		if s.Name == name {
			return []suite{s}, nil
		}
	}
	return nil, fmt.Errorf("no suite named %q", name)
}

// loadConfig reads and validates the config at `path`. Relative log and
// fixture paths are resolved against the directory of the config.
func loadConfig(path string) (*config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg config
	var dec = yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	} else if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	var dir = filepath.Dir(path)
	for i := range cfg.Suites {
		cfg.Suites[i].Log = resolvePath(dir, cfg.Suites[i].Log)
		cfg.Suites[i].Fixture = resolvePath(dir, cfg.Suites[i].Fixture)
	}
	return &cfg, nil
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
