package core

import "gopkg.in/yaml.v3"

// Configurable is implemented by kinds that accept YAML configuration.
// Configure is called right after New with the entry's "config" node, and
// only when that node is present.
type Configurable interface {
	Configure(node *yaml.Node) error
}

// Provisioner is implemented by kinds that need shared resources. It runs
// after Configure and is where defaults are applied and services looked up.
type Provisioner interface {
	Provision(ctx *AppContext) error
}

// Validator is implemented by kinds that can check their configuration.
// Called after Provision. Validate must not have side effects.
type Validator interface {
	Validate() error
}
