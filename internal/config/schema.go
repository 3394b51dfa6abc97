// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for oddjob.
package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// DataDir overrides the directory used for persistent data.
	DataDir string `yaml:"data_dir,omitempty"`

	Log LogConfig `yaml:"log"`

	// Timeout is an optional hard wall-clock limit for one run of the host.
	// When it elapses, cancellation is requested. Zero means no limit.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Watch restarts the host when the configuration file changes.
	Watch bool `yaml:"watch,omitempty"`

	// Gateway, when present, adds a gateway.http job configured with this
	// node.
	Gateway *yaml.Node `yaml:"gateway,omitempty"`

	History   HistoryConfig   `yaml:"history"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	Jobs []JobConfig `yaml:"jobs"`
}

// LogConfig selects the process log handler.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text, json
}

// HistoryConfig controls the SQLite run history.
type HistoryConfig struct {
	Disabled bool `yaml:"disabled,omitempty"`

	// Path of the database file. Defaults to <data_dir>/history.db.
	Path string `yaml:"path,omitempty"`

	// Retention is how long runs are kept by job.history_prune.
	Retention time.Duration `yaml:"retention,omitempty"`
}

// TelemetryConfig controls OpenTelemetry trace export. An empty Endpoint
// disables export.
type TelemetryConfig struct {
	Endpoint    string  `yaml:"endpoint,omitempty"`
	Insecure    bool    `yaml:"insecure,omitempty"`
	ServiceName string  `yaml:"service_name,omitempty"`
	SampleRatio float64 `yaml:"sample_ratio,omitempty"`
}

// JobConfig is one entry of the jobs list.
type JobConfig struct {
	Name string `yaml:"name"`

	// Kind is a registered job kind ID, e.g. "job.command".
	Kind string `yaml:"kind"`

	// Schedule makes the job recurring. See schedule.Parse for the syntax.
	Schedule string `yaml:"schedule,omitempty"`

	// Config is handed to the kind's Configure method.
	Config yaml.Node `yaml:"config,omitempty"`
}
