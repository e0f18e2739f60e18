package csvfile

import (
	"fmt"

	"pitchflow/internal/dataset"
	"pitchflow/internal/logging"
	"pitchflow/sink"
)

// Config maps partition names to output files.
type Config struct {
	Paths map[string]string
}

type driver struct {
	cfg Config
}

func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("csv-sink: expected Config, got %T", raw)
	}
	d.cfg = c
	return nil
}

func (d *driver) Push(p sink.Partition) error {
	path, ok := d.cfg.Paths[p.Name]
	if !ok {
		return fmt.Errorf("csv-sink: no path for partition %q", p.Name)
	}
	if err := dataset.WriteCSV(path, p.Frame); err != nil {
		return err
	}
	logging.L().Info("csv-sink: wrote partition", "partition", p.Name, "path", path, "rows", p.Frame.Len())
	return nil
}

func (d *driver) Close() error { return nil }

func init() {
	sink.Register("csv", func() sink.Adapter { return &driver{} })
}
