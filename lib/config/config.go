// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "PQOS_CONFIG"

// DefaultMaxCores is the default bound on cores, capabilities and
// events accepted from a snapshot file.
const DefaultMaxCores = 16384

// ErrNotConfigured is returned by [Load] when PQOS_CONFIG is unset.
var ErrNotConfigured = errors.New(EnvironmentVariable + " environment variable not set")

// Config is the master configuration for pqos.
type Config struct {
	// Paths configures where hardware information is read from.
	Paths PathsConfig `yaml:"paths"`

	// Snapshot configures snapshot input.
	Snapshot SnapshotConfig `yaml:"snapshot"`

	// Log configures diagnostic logging.
	Log LogConfig `yaml:"log"`

	// Output configures command output.
	Output OutputConfig `yaml:"output"`
}

// PathsConfig configures pseudo-filesystem mount points. Tests and
// offline analysis point these at a captured directory tree.
type PathsConfig struct {
	// Sysfs is the sysfs mount point.
	// Default: /sys
	Sysfs string `yaml:"sysfs"`

	// Procfs is the procfs mount point.
	// Default: /proc
	Procfs string `yaml:"procfs"`

	// Resctrl is the resctrl mount point.
	// Default: /sys/fs/resctrl
	Resctrl string `yaml:"resctrl"`
}

// SnapshotConfig configures reading topology and capabilities from a
// snapshot file instead of probing the running machine.
type SnapshotConfig struct {
	// Path is a snapshot file. Empty means probe live hardware.
	Path string `yaml:"path"`

	// MaxCores bounds the number of cores, capabilities and events a
	// snapshot may contain.
	// Default: 16384
	MaxCores int `yaml:"max_cores"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`
}

// OutputConfig configures command output.
type OutputConfig struct {
	// Format is text or json.
	// Default: text
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Sysfs:   "/sys",
			Procfs:  "/proc",
			Resctrl: "/sys/fs/resctrl",
		},
		Snapshot: SnapshotConfig{
			MaxCores: DefaultMaxCores,
		},
		Log: LogConfig{
			Level: "info",
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// Load loads configuration from the PQOS_CONFIG environment variable.
// Returns [ErrNotConfigured] if it is unset; callers that can run
// without a file fall back to [Default].
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%w; set it to the path of your pqos.yaml config file, or use --config flag",
			ErrNotConfigured)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Fields the
// file omits keep their [Default] values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Paths.Sysfs = expandVars(c.Paths.Sysfs, vars)
	vars["PQOS_SYSFS"] = c.Paths.Sysfs // Update for dependent paths.

	c.Paths.Procfs = expandVars(c.Paths.Procfs, vars)
	c.Paths.Resctrl = expandVars(c.Paths.Resctrl, vars)
	c.Snapshot.Path = expandVars(c.Snapshot.Path, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// LogLevels are the accepted values of log.level.
var LogLevels = []string{"debug", "info", "warn", "error"}

// OutputFormats are the accepted values of output.format.
var OutputFormats = []string{"text", "json"}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Snapshot.Path == "" {
		if c.Paths.Sysfs == "" {
			errs = append(errs, fmt.Errorf("paths.sysfs is required when snapshot.path is empty"))
		}
		if c.Paths.Resctrl == "" {
			errs = append(errs, fmt.Errorf("paths.resctrl is required when snapshot.path is empty"))
		}
	}

	if c.Snapshot.MaxCores <= 0 {
		errs = append(errs, fmt.Errorf("snapshot.max_cores must be positive, got %d", c.Snapshot.MaxCores))
	}

	if !slices.Contains(LogLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", LogLevels))
	}

	if !slices.Contains(OutputFormats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format must be one of: %v", OutputFormats))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
