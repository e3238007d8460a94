// Package config loads the CLI's persisted defaults: default concurrency,
// state directory, and bandwidth cap, read once at startup and merged
// under any flags the user actually passed, the way rclone layers a YAML
// config file underneath its cobra flags.
package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// Defaults holds the subset of orchestrator.Options worth persisting
// between CLI invocations.
type Defaults struct {
	StateDir           string `yaml:"state_dir"`
	MaxConcurrentFiles int    `yaml:"max_concurrent_files"`
	BandwidthLimit     int64  `yaml:"bandwidth_limit"`
	VerifyIntegrity    bool   `yaml:"verify_integrity"`
}

// Load reads path and returns its parsed Defaults. A missing file is not an
// error: it yields a zero-value Defaults so callers fall back to their own
// built-in defaults.
func Load(path string) (Defaults, error) {
	var d Defaults
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return d, err
	}
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Defaults{}, err
	}
	return d, nil
}

// Save writes d to path as YAML, creating or truncating the file.
func Save(path string, d Defaults) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
