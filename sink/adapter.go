package sink

import (
	"fmt"

	"pitchflow/internal/dataset"
)

const (
	Train = "train"
	Test  = "test"
)

// Partition is one named slice of the processed dataset.
type Partition struct {
	Name  string
	Frame *dataset.Frame
}

// Adapter is the common behaviour every sink exposes.
type Adapter interface {
	Configure(any) error  // driver-specific config => struct
	Push(Partition) error // consume one partition
	Close() error         // idempotent
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q", name)
}
