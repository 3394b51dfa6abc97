package core

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
)

func TestAppContext_ForJob(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx := NewAppContext(logger, "/data")
	child := ctx.ForJob("nightly", "job.command")
	child.Logger.Info("hello")

	out := buf.String()
	if !bytes.Contains(buf.Bytes(), []byte("job=nightly")) || !bytes.Contains(buf.Bytes(), []byte("kind=job.command")) {
		t.Errorf("expected job and kind attributes, got: %s", out)
	}
	if child.DataDir != "/data" {
		t.Errorf("DataDir = %q", child.DataDir)
	}
}

func TestAppContext_Services(t *testing.T) {
	ctx := NewAppContext(nil, "")
	child := ctx.ForJob("x", "job.x")

	ctx.RegisterService("answer", 42)

	v, ok := ServiceAs[int](child, "answer")
	if !ok || v != 42 {
		t.Errorf("ServiceAs = %v, %v, want 42, true", v, ok)
	}
	if _, ok := ServiceAs[string](child, "answer"); ok {
		t.Error("ServiceAs with wrong type should fail")
	}
	if _, ok := child.Service("missing"); ok {
		t.Error("missing service should not be found")
	}
}

func TestAppContext_LoadModule(t *testing.T) {
	t.Cleanup(resetRegistry)

	provisioned, validated := false, false
	var provisionedFor *AppContext
	RegisterModule(&trackingModule{
		id: "test.loadmod",
		onProvision: func(ctx *AppContext) {
			provisioned = true
			provisionedFor = ctx
		},
		onValidate: func() { validated = true },
	})

	ctx := NewAppContext(nil, "/data")
	mod, err := ctx.LoadModule("test.loadmod", "hello", yamlNode(t, "message: hi"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !provisioned || !validated {
		t.Errorf("provisioned=%v validated=%v, want both", provisioned, validated)
	}
	if provisionedFor == ctx {
		t.Error("Provision should receive a job-scoped context")
	}
	if got := mod.(*trackingModule).message; got != "hi" {
		t.Errorf("message = %q, want hi", got)
	}
}

func TestAppContext_LoadModule_NilNodeSkipsConfigure(t *testing.T) {
	t.Cleanup(resetRegistry)

	RegisterModule(&trackingModule{id: "test.nocfg", message: "default"})

	mod, err := NewAppContext(nil, "").LoadModule("test.nocfg", "x", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mod.(*trackingModule).message; got != "default" {
		t.Errorf("message = %q, want default", got)
	}
}

func TestAppContext_LoadModule_Errors(t *testing.T) {
	t.Cleanup(resetRegistry)

	closed := 0
	RegisterModule(&trackingModule{id: "test.provfail", provisionErr: errors.New("provision boom")})
	RegisterModule(&trackingModule{
		id:          "test.valfail",
		validateErr: errors.New("validate boom"),
		onClose:     func() { closed++ },
	})
	RegisterModule(notAJob{})

	ctx := NewAppContext(nil, "")
	for _, id := range []string{"does.not.exist", "test.provfail", "test.valfail", "test.notajob"} {
		if _, err := ctx.LoadModule(id, "x", nil); err == nil {
			t.Errorf("LoadModule(%s): expected error", id)
		}
	}
	if _, err := ctx.LoadModule("test.provfail", "x", yamlNode(t, "[1, 2]")); err == nil {
		t.Error("expected configure error on a sequence node")
	}
	if closed != 1 {
		t.Errorf("instance failing validation closed %d times, want 1", closed)
	}
}

func TestAppContext_Factory(t *testing.T) {
	t.Cleanup(resetRegistry)

	made, closed := 0, 0
	RegisterModule(&trackingModule{
		id:          "test.factory",
		onProvision: func(*AppContext) { made++ },
		onClose:     func() { closed++ },
	})

	ctx := NewAppContext(nil, "")
	factory, err := ctx.Factory("test.factory", "f", yamlNode(t, "message: hi"))
	if err != nil {
		t.Fatalf("Factory: %v", err)
	}
	if made != 1 || closed != 1 {
		t.Errorf("probe: made=%d closed=%d, want 1, 1", made, closed)
	}

	a, err := factory()
	if err != nil {
		t.Fatal(err)
	}
	b, err := factory()
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("factory should return fresh instances")
	}
	if made != 3 {
		t.Errorf("made = %d, want 3", made)
	}
}

func TestAppContext_Factory_ValidatesEagerly(t *testing.T) {
	t.Cleanup(resetRegistry)

	RegisterModule(&trackingModule{id: "test.bad", validateErr: errors.New("bad config")})

	if _, err := NewAppContext(nil, "").Factory("test.bad", "x", nil); err == nil {
		t.Fatal("expected eager validation error")
	}
}
