package chassis

import (
	"fmt"

	"github.com/nerrad567/sdi-core/internal/cfgtree"
	"github.com/nerrad567/sdi-core/internal/media"
	"github.com/nerrad567/sdi-core/internal/sysfs"
)

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry owns every entity of the chassis and the collaborators used to
// reach their hardware.
//
// The entity list is built once by MustRegister and is read-only
// afterwards.
type Registry struct {
	entities []*Entity
	io       sysfs.IO
	acc      *media.Accessor
	i2cAddr  uint8
	logger   Logger
}

// Option configures a Registry at construction.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithTransport attaches a transceiver register transport.
func WithTransport(t media.Transport) Option {
	return func(r *Registry) { r.SetTransport(t) }
}

// WithI2CAddr overrides the two-wire address used for module memory.
func WithI2CAddr(addr uint8) Option {
	return func(r *Registry) {
		r.i2cAddr = addr
		if r.acc != nil {
			r.acc = r.acc.WithI2CAddr(addr)
		}
	}
}

// MustRegister builds a registry from the entity list and device settings
// trees. It panics with a *sdierr.ConfigError when either document is
// structurally unusable.
func MustRegister(entities, settings *cfgtree.Node, io sysfs.IO, opts ...Option) *Registry {
	r := &Registry{
		io:      io,
		i2cAddr: media.CableI2CAddr,
		logger:  noopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}

	r.registerAll(entities, settings)
	r.logger.Info("chassis registered", "entities", len(r.entities))
	return r
}

// Load reads the entity list and device settings documents and registers
// them. Unreadable documents are returned as errors; structural defects
// panic as in MustRegister.
func Load(entityPath, settingsPath string, io sysfs.IO, opts ...Option) (*Registry, error) {
	entities, err := cfgtree.Load(entityPath)
	if err != nil {
		return nil, fmt.Errorf("loading entity list: %w", err)
	}
	settings, err := cfgtree.Load(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("loading device settings: %w", err)
	}
	return MustRegister(entities, settings, io, opts...), nil
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetTransport attaches or, with nil, detaches the transceiver transport.
func (r *Registry) SetTransport(t media.Transport) {
	if t == nil {
		r.acc = nil
		return
	}
	r.acc = media.NewAccessor(t).WithI2CAddr(r.i2cAddr)
}

// IO returns the sysfs collaborator.
func (r *Registry) IO() sysfs.IO {
	return r.io
}

// Entities returns every entity in registration order.
func (r *Registry) Entities() []*Entity {
	out := make([]*Entity, len(r.entities))
	copy(out, r.entities)
	return out
}

// ForEach calls fn for every entity in registration order.
func (r *Registry) ForEach(fn func(*Entity)) {
	for _, e := range r.entities {
		fn(e)
	}
}

// Find returns the entity with the given type and instance, or nil.
func (r *Registry) Find(t EntityType, instance int) *Entity {
	for _, e := range r.entities {
		if e.Type == t && e.Instance == instance {
			return e
		}
	}
	return nil
}

// Lookup returns the entity with the given alias, or nil.
func (r *Registry) Lookup(name string) *Entity {
	for _, e := range r.entities {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Count returns the number of entities of type t.
func (r *Registry) Count(t EntityType) int {
	n := 0
	for _, e := range r.entities {
		if e.Type == t {
			n++
		}
	}
	return n
}
