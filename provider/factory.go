// Package provider wires provider factories to the shared stores.
//
// A Factory is registered once per process. The Registry assigns it a
// factory id, runs Init with the loaded config, and once every factory is
// registered runs PostInit so factories can look each other up. Typed
// factories expose Create(*session.Session), which goes through
// session.CreateIfAbsent so each session holds at most one provider
// instance per factory.
package provider

import (
	"github.com/teranos/filestore/am"
)

// Factory is the lifecycle contract every provider factory implements.
// Embed Base to satisfy it.
type Factory interface {
	// ID names the factory, e.g. "events".
	ID() string
	// FactoryID is the process-unique id assigned at registration.
	FactoryID() int64

	Init(cfg *am.Config) error
	PostInit(r *Registry) error
	Close() error

	assign(id int64)
}

// Base supplies the factory identity and no-op lifecycle hooks.
type Base struct {
	factoryID int64
}

// FactoryID returns the id assigned when the factory was registered, or 0 before.
func (b *Base) FactoryID() int64 { return b.factoryID }

func (b *Base) assign(id int64) { b.factoryID = id }

// Init does nothing.
func (b *Base) Init(*am.Config) error { return nil }

// PostInit does nothing.
func (b *Base) PostInit(*Registry) error { return nil }

// Close does nothing.
func (b *Base) Close() error { return nil }
