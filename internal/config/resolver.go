package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flemzord/oddjob/internal/core"
)

const (
	appName  = "oddjob"
	fileName = "oddjob.yaml"
)

// JobSpecs converts the jobs list into core job specs, keeping their order.
// A gateway block is appended as a "gateway" job of kind gateway.http.
func JobSpecs(cfg *Config) []core.JobSpec {
	specs := make([]core.JobSpec, 0, len(cfg.Jobs)+1)
	for i := range cfg.Jobs {
		j := &cfg.Jobs[i]
		spec := core.JobSpec{Name: j.Name, Kind: j.Kind, Schedule: j.Schedule}
		if !j.Config.IsZero() {
			spec.Config = &j.Config
		}
		specs = append(specs, spec)
	}
	if cfg.Gateway != nil {
		specs = append(specs, core.JobSpec{Name: "gateway", Kind: GatewayKind, Config: cfg.Gateway})
	}
	return specs
}

// GatewayKind is the kind used for the top-level gateway block.
const GatewayKind = "gateway.http"

// SearchPaths lists where the configuration file is looked up, in order:
// $XDG_CONFIG_HOME/oddjob/oddjob.yaml (or ~/.config/oddjob/oddjob.yaml),
// then ./oddjob.yaml.
func SearchPaths() []string {
	var candidates []string
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, appName, fileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", appName, fileName))
	}
	return append(candidates, fileName)
}

// ResolvePath returns explicit when set, otherwise the first existing file
// from SearchPaths.
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	candidates := SearchPaths()
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("config: no configuration file found (searched: %v)", candidates)
}

// DataDir returns the directory for persistent data: cfg.DataDir when set,
// else $XDG_DATA_HOME/oddjob, else ~/.local/share/oddjob.
func DataDir(cfg *Config) string {
	if cfg != nil && cfg.DataDir != "" {
		return cfg.DataDir
	}
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".local", "share", appName)
}

// HistoryPath returns the run history database path.
func HistoryPath(cfg *Config) string {
	if cfg.History.Path != "" {
		return cfg.History.Path
	}
	return filepath.Join(DataDir(cfg), "history.db")
}
