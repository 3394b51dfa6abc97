// Package httpcheck provides the job.http_check kind: one HTTP request per
// run, faulting when the response status is not the expected one.
package httpcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/oddjob/internal/core"
)

func init() {
	core.RegisterModule(&Module{})
}

var (
	_ core.JobModule    = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "oddjob-http-check"
)

// ErrUnexpectedStatus is wrapped when the response status does not match.
var ErrUnexpectedStatus = errors.New("http_check: unexpected status")

// Config holds the job.http_check settings.
type Config struct {
	URL            string            `yaml:"url"`
	Method         string            `yaml:"method"`
	ExpectedStatus int               `yaml:"expected_status"`
	Headers        map[string]string `yaml:"headers"`
	Timeout        time.Duration     `yaml:"timeout"`
}

// Module performs the configured request.
type Module struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:      "job.http_check",
		Summary: "Requests a URL and fails on an unexpected status code.",
		New:     func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("http_check: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	if m.config.Method == "" {
		m.config.Method = http.MethodGet
	}
	if m.config.ExpectedStatus == 0 {
		m.config.ExpectedStatus = http.StatusOK
	}
	if m.config.Timeout == 0 {
		m.config.Timeout = defaultTimeout
	}
	m.client = &http.Client{Timeout: m.config.Timeout}
	m.logger = ctx.Logger
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if m.config.URL == "" {
		return errors.New("http_check: url is required")
	}
	u, err := url.Parse(m.config.URL)
	if err != nil {
		return fmt.Errorf("http_check: invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("http_check: unsupported scheme %q", u.Scheme)
	}
	if m.config.ExpectedStatus < 100 || m.config.ExpectedStatus > 599 {
		return fmt.Errorf("http_check: invalid expected_status %d", m.config.ExpectedStatus)
	}
	if m.config.Timeout < 0 {
		return errors.New("http_check: timeout must not be negative")
	}
	return nil
}

// Run implements job.Job.
func (m *Module) Run(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, m.config.Method, m.config.URL, nil)
	if err != nil {
		return fmt.Errorf("http_check: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range m.config.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := m.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("http_check: %s %s: %w", m.config.Method, m.config.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	m.logger.Debug("http_check: response",
		"url", m.config.URL,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode != m.config.ExpectedStatus {
		return fmt.Errorf("%w: got %d, want %d", ErrUnexpectedStatus, resp.StatusCode, m.config.ExpectedStatus)
	}
	return nil
}
