package core

import (
	"context"

	"gopkg.in/yaml.v3"
)

// trackingModule is a test job kind that records lifecycle calls.
type trackingModule struct {
	id           ModuleID
	onProvision  func(*AppContext)
	onValidate   func()
	onClose      func()
	provisionErr error
	validateErr  error
	message      string
}

func (m *trackingModule) ModuleInfo() ModuleInfo {
	proto := *m
	return ModuleInfo{
		ID:      m.id,
		Summary: "test kind",
		New: func() Module {
			cp := proto
			return &cp
		},
	}
}

func (m *trackingModule) Configure(node *yaml.Node) error {
	var cfg struct {
		Message string `yaml:"message"`
	}
	if err := node.Decode(&cfg); err != nil {
		return err
	}
	m.message = cfg.Message
	return nil
}

func (m *trackingModule) Provision(ctx *AppContext) error {
	if m.onProvision != nil {
		m.onProvision(ctx)
	}
	return m.provisionErr
}

func (m *trackingModule) Validate() error {
	if m.onValidate != nil {
		m.onValidate()
	}
	return m.validateErr
}

func (m *trackingModule) Run(context.Context) error { return nil }

func (m *trackingModule) Close() error {
	if m.onClose != nil {
		m.onClose()
	}
	return nil
}

// notAJob registers fine but cannot be hosted.
type notAJob struct{}

func (notAJob) ModuleInfo() ModuleInfo {
	return ModuleInfo{ID: "test.notajob", New: func() Module { return notAJob{} }}
}

func yamlNode(t interface{ Fatal(...any) }, src string) *yaml.Node {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatal(err)
	}
	return doc.Content[0]
}
