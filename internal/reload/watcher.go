// Package reload restarts the job host when its configuration file changes.
//
// The Watcher listens for file system notifications on the file's directory
// and also polls, so editors that replace the file and file systems without
// notifications are both covered. It runs as an ordinary job inside the
// host and shares the host's cancellation. The Handler validates the new
// file and, when it is usable, requests cancellation so the caller can
// rebuild.
package reload

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultPollInterval = 5 * time.Second

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// ConfigPath is the path to the configuration file to watch.
	ConfigPath string

	// PollInterval is how often to check for file changes.
	// Defaults to 5 seconds if zero.
	PollInterval time.Duration
}

func (c WatcherConfig) pollIntervalOrDefault() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return defaultPollInterval
}

// EventType describes the type of file change event.
type EventType string

const (
	// EventModified indicates the config file was modified.
	EventModified EventType = "modified"
	// EventRemoved indicates the config file disappeared.
	EventRemoved EventType = "removed"
)

// Event represents a file change notification.
type Event struct {
	Type       EventType
	ConfigPath string
}

type fileStamp struct {
	modTime time.Time
	size    int64
	exists  bool
}

func stat(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size(), exists: true}
}

// Watcher polls a configuration file and reports changes to a callback.
// It implements job.Job and never faults: it returns nil once cancelled.
type Watcher struct {
	cfg      WatcherConfig
	onChange func(Event)
}

// NewWatcher creates a watcher calling onChange on every detected change.
func NewWatcher(cfg WatcherConfig, onChange func(Event)) *Watcher {
	if onChange == nil {
		onChange = func(Event) {}
	}
	return &Watcher{cfg: cfg, onChange: onChange}
}

// Name identifies the watcher in host status and logs.
func (w *Watcher) Name() string { return "config-watcher" }

// Run watches until ctx is cancelled. The stamp taken on entry is the
// baseline, so a file rewritten before Run starts is not reported.
func (w *Watcher) Run(ctx context.Context) error {
	target := filepath.Clean(w.cfg.ConfigPath)
	last := stat(target)

	var (
		fsEvents <-chan fsnotify.Event
		fsErrors <-chan error
	)
	if fw, err := fsnotify.NewWatcher(); err == nil {
		defer func() { _ = fw.Close() }()
		if err := fw.Add(filepath.Dir(target)); err == nil {
			fsEvents, fsErrors = fw.Events, fw.Errors
		}
	}

	ticker := time.NewTicker(w.cfg.pollIntervalOrDefault())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case ev, ok := <-fsEvents:
			if !ok {
				fsEvents = nil
				continue
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
		case _, ok := <-fsErrors:
			if !ok {
				fsErrors = nil
			}
			continue
		}

		cur := stat(target)
		switch {
		case cur == last:
			continue
		case !cur.exists:
			w.onChange(Event{Type: EventRemoved, ConfigPath: w.cfg.ConfigPath})
		default:
			w.onChange(Event{Type: EventModified, ConfigPath: w.cfg.ConfigPath})
		}
		last = cur
	}
}
