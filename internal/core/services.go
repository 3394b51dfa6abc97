package core

// Well-known service names published on the AppContext by the process
// entry point and looked up by job kinds.
const (
	// ServiceHost exposes the running host; the value has a
	// Status() host.Snapshot method. It is published after the host is
	// built, so kinds must resolve it lazily.
	ServiceHost = "host"

	// ServiceMetrics is the *metrics.Metrics observer.
	ServiceMetrics = "metrics"

	// ServiceHistory is the *history.Store, absent when history is disabled.
	ServiceHistory = "history"

	// ServiceEvents is the *gateway.Hub broadcasting job events.
	ServiceEvents = "events"

	// ServiceRetention is the configured history retention (time.Duration).
	ServiceRetention = "history.retention"
)
