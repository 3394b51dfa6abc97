// Package core provides the job kind system for oddjob. A job kind is a
// module registered from init() under a dotted ID ("job.command",
// "gateway.http"); configuration entries name a kind and get a provisioned
// instance of it.
package core

import (
	"strings"

	"github.com/flemzord/oddjob/internal/job"
)

// ModuleID is the dotted identifier of a job kind. The part before the
// first dot is its namespace.
type ModuleID string

// Namespace returns the part of the ID before the first dot.
func (id ModuleID) Namespace() string {
	ns, _, _ := strings.Cut(string(id), ".")
	return ns
}

// Name returns the part of the ID after the first dot.
func (id ModuleID) Name() string {
	_, name, found := strings.Cut(string(id), ".")
	if !found {
		return string(id)
	}
	return name
}

// ModuleInfo describes a registered job kind.
type ModuleInfo struct {
	ID ModuleID

	// Summary is a one-line description shown by "oddjob kinds".
	Summary string

	// New returns a fresh, unconfigured instance.
	New func() Module
}

// Module is implemented by every job kind. Instances must also implement
// job.Job to be hosted.
type Module interface {
	ModuleInfo() ModuleInfo
}

// JobModule is a module that can be hosted.
type JobModule interface {
	Module
	job.Job
}
