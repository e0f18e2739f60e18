package source

import (
	"context"
	"fmt"

	"pitchflow/internal/dataset"
)

type Adapter interface {
	Configure(any) error
	Load(context.Context) (*dataset.Frame, error)
	Close() error
}

// Factory builds an Adapter.
type Factory func() Adapter

var registry = map[string]Factory{}

// Register is called from each driver's init().
func Register(name string, f Factory) {
	registry[name] = f
}

// NewAdapter returns a driver by name ("csv", ...).
func NewAdapter(name string) (Adapter, error) {
	if f, ok := registry[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("source: unsupported driver %q", name)
}
