package testing

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/filestore/am"
	"github.com/teranos/filestore/provider"
	"github.com/teranos/filestore/session"
	"github.com/teranos/filestore/store"
)

// Env is a started registry over fresh stores plus an open session.
type Env struct {
	Registry *provider.Registry
	Stores   *store.Stores
	Session  *session.Session
}

// NewEnv registers factories on a new registry, starts it and opens a session.
// Automatically registers cleanup via t.Cleanup().
func NewEnv(t *testing.T, factories ...provider.Factory) *Env {
	t.Helper()

	log := TestLogger(t)
	stores := store.NewStores(log)
	reg := provider.NewRegistry(&am.Config{}, stores, log)

	for _, f := range factories {
		if err := reg.Register(f); err != nil {
			t.Fatalf("Failed to register factory %s: %v", f.ID(), err)
		}
	}
	if err := reg.Start(); err != nil {
		t.Fatalf("Failed to start registry: %v", err)
	}

	s := reg.NewSession(context.Background())
	t.Cleanup(func() {
		s.Close()
		reg.Close()
	})

	return &Env{Registry: reg, Stores: stores, Session: s}
}

// NewSession opens a session closed at test cleanup.
func NewSession(t *testing.T) *session.Session {
	t.Helper()
	s := session.New(context.Background(), TestLogger(t))
	t.Cleanup(func() { s.Close() })
	return s
}

// TestLogger returns a logger writing through t.Log.
func TestLogger(t *testing.T) *zap.SugaredLogger {
	return zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel)).Sugar()
}
