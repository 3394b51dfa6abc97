package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/oddjob/internal/config"
	"github.com/flemzord/oddjob/internal/core"
	"github.com/flemzord/oddjob/internal/schedule"
)

// initAnswers collects the choices made in the init form.
type initAnswers struct {
	LogLevel string
	History  bool
	Gateway  bool
	Bind     string
	JobName  string
	Kind     string
	Schedule string
	Message  string
	Command  string
	URL      string
}

func defaultAnswers() initAnswers {
	return initAnswers{
		LogLevel: "info",
		History:  true,
		Bind:     "127.0.0.1:8080",
		JobName:  "hello",
		Kind:     "job.message",
		Schedule: "every minute",
		Message:  "Thats it",
	}
}

func initCmd() *cobra.Command {
	var (
		output   string
		force    bool
		defaults bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				if _, err := os.Stat(output); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", output)
				}
			}

			answers := defaultAnswers()
			if !defaults {
				if err := initForm(&answers).Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return nil
					}
					return err
				}
			}

			raw, err := renderConfig(answers)
			if err != nil {
				return err
			}
			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if err := os.WriteFile(output, raw, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "oddjob.yaml", "Where to write the configuration")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "Skip the prompts and write the defaults")
	return cmd
}

func initForm(a *initAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&a.LogLevel),
			huh.NewConfirm().
				Title("Record run history?").
				Value(&a.History),
			huh.NewConfirm().
				Title("Enable the HTTP gateway?").
				Value(&a.Gateway),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Gateway listen address").
				Value(&a.Bind).
				Validate(required("address")),
		).WithHideFunc(func() bool { return !a.Gateway }),
		huh.NewGroup(
			huh.NewInput().
				Title("Job name").
				Value(&a.JobName).
				Validate(required("job name")),
			huh.NewSelect[string]().
				Title("Job kind").
				Options(huh.NewOptions(jobKinds()...)...).
				Value(&a.Kind),
			huh.NewInput().
				Title("Schedule").
				Description("Leave empty to run the job once at start.").
				Value(&a.Schedule).
				Validate(validSchedule),
		),
		huh.NewGroup(
			huh.NewInput().Title("Message").Value(&a.Message),
		).WithHideFunc(func() bool { return a.Kind != "job.message" }),
		huh.NewGroup(
			huh.NewInput().Title("Command line").Value(&a.Command).Validate(required("command")),
		).WithHideFunc(func() bool { return a.Kind != "job.command" }),
		huh.NewGroup(
			huh.NewInput().Title("URL to check").Value(&a.URL).Validate(required("url")),
		).WithHideFunc(func() bool { return a.Kind != "job.http_check" }),
	)
}

func jobKinds() []string {
	var ids []string
	for _, info := range core.GetModulesByNamespace("job") {
		ids = append(ids, string(info.ID))
	}
	return ids
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

func validSchedule(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := schedule.Parse(s)
	return err
}

type initDoc struct {
	Version string         `yaml:"version"`
	Log     map[string]any `yaml:"log"`
	Gateway map[string]any `yaml:"gateway,omitempty"`
	History map[string]any `yaml:"history,omitempty"`
	Jobs    []initJob      `yaml:"jobs"`
}

type initJob struct {
	Name     string         `yaml:"name"`
	Kind     string         `yaml:"kind"`
	Schedule string         `yaml:"schedule,omitempty"`
	Config   map[string]any `yaml:"config,omitempty"`
}

// renderConfig turns the answers into YAML and checks that the result
// loads and validates.
func renderConfig(a initAnswers) ([]byte, error) {
	doc := initDoc{
		Version: "1",
		Log:     map[string]any{"level": a.LogLevel, "format": "text"},
	}
	if a.Gateway {
		doc.Gateway = map[string]any{"bind": a.Bind}
	}
	if !a.History {
		doc.History = map[string]any{"disabled": true}
	}

	j := initJob{Name: a.JobName, Kind: a.Kind, Schedule: strings.TrimSpace(a.Schedule)}
	switch a.Kind {
	case "job.message":
		if a.Message != "" {
			j.Config = map[string]any{"message": a.Message}
		}
	case "job.command":
		args, err := shellquote.Split(a.Command)
		if err != nil {
			return nil, fmt.Errorf("init: command line: %w", err)
		}
		j.Config = map[string]any{"command": args}
	case "job.http_check":
		j.Config = map[string]any{"url": a.URL}
	}
	doc.Jobs = []initJob{j}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("init: encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("init: encoding config: %w", err)
	}

	cfg, err := config.Parse(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("init: generated config does not load: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("init: generated config is invalid: %w", err)
	}
	return buf.Bytes(), nil
}
