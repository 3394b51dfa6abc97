package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/flemzord/oddjob/internal/core"
	"github.com/flemzord/oddjob/internal/schedule"
)

var (
	validLevels  = []string{"", "debug", "info", "warn", "error"}
	validFormats = []string{"", "text", "json"}
)

// Validate checks the structural validity of a Config: version, log
// settings, durations and every job entry. Kind-specific configuration is
// checked later, when each kind is provisioned. All problems are reported
// together.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if !slices.Contains(validLevels, cfg.Log.Level) {
		errs = append(errs, fmt.Errorf("config: log.level %q is not one of debug, info, warn, error", cfg.Log.Level))
	}
	if !slices.Contains(validFormats, cfg.Log.Format) {
		errs = append(errs, fmt.Errorf("config: log.format %q is not one of text, json", cfg.Log.Format))
	}

	if cfg.Timeout < 0 {
		errs = append(errs, fmt.Errorf("config: timeout must not be negative, got %s", cfg.Timeout))
	}
	if cfg.History.Retention < 0 {
		errs = append(errs, fmt.Errorf("config: history.retention must not be negative, got %s", cfg.History.Retention))
	}
	if r := cfg.Telemetry.SampleRatio; r < 0 || r > 1 {
		errs = append(errs, fmt.Errorf("config: telemetry.sample_ratio must be within 0-1, got %g", r))
	}

	if len(cfg.Jobs) == 0 && cfg.Gateway == nil {
		errs = append(errs, errors.New("config: at least one job must be configured"))
	}

	errs = append(errs, validateJobs(cfg)...)

	return errors.Join(errs...)
}

func validateJobs(cfg *Config) []error {
	var errs []error
	seen := make(map[string]int, len(cfg.Jobs))
	if cfg.Gateway != nil {
		seen["gateway"] = -1
	}

	for i, j := range cfg.Jobs {
		where := fmt.Sprintf("config: jobs[%d]", i)
		if j.Name != "" {
			where = fmt.Sprintf("config: job %q", j.Name)
		}

		switch prev, dup := seen[j.Name]; {
		case j.Name == "":
			errs = append(errs, fmt.Errorf("%s: name is required", where))
		case dup && prev < 0:
			errs = append(errs, fmt.Errorf("%s: name is reserved for the gateway block", where))
		case dup:
			errs = append(errs, fmt.Errorf("%s: name already used by jobs[%d]", where, prev))
		default:
			seen[j.Name] = i
		}

		if j.Kind == "" {
			errs = append(errs, fmt.Errorf("%s: kind is required", where))
		} else if _, ok := core.GetModule(j.Kind); !ok {
			errs = append(errs, fmt.Errorf("%s: unknown kind %q", where, j.Kind))
		}

		if j.Schedule != "" {
			if _, err := schedule.Parse(j.Schedule); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", where, err))
			}
		}
	}

	if cfg.Gateway != nil {
		if _, ok := core.GetModule(GatewayKind); !ok {
			errs = append(errs, fmt.Errorf("config: gateway: kind %q is not available", GatewayKind))
		}
	}
	return errs
}
