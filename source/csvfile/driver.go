package csvfile

import (
	"context"
	"fmt"

	"pitchflow/internal/dataset"
	"pitchflow/internal/logging"
	"pitchflow/source"
)

type Config struct {
	Path string
}

type driver struct {
	cfg Config
}

func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("csv-source: expected Config, got %T", raw)
	}
	if c.Path == "" {
		return fmt.Errorf("csv-source: empty path")
	}
	d.cfg = c
	return nil
}

func (d *driver) Load(ctx context.Context) (*dataset.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := dataset.ReadCSV(d.cfg.Path)
	if err != nil {
		return nil, err
	}
	logging.L().Info("csv-source: loaded", "path", d.cfg.Path, "rows", f.Len(), "columns", len(f.Header))
	return f, nil
}

func (d *driver) Close() error { return nil }

func init() {
	source.Register("csv", func() source.Adapter { return &driver{} })
}
