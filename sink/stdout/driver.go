package stdout

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"pitchflow/sink"
)

type Config struct {
	PrintRows bool
	MaxRows   int       // 0 = all rows when PrintRows is set
	Out       io.Writer // defaults to os.Stdout
}

type driver struct {
	cfg Config
}

var seq uint64

func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("stdout-sink: expected Config, got %T", raw)
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	d.cfg = c
	return nil
}

func (d *driver) Push(p sink.Partition) error {
	f := p.Frame
	fmt.Fprintf(d.cfg.Out, "[sink %06d] %s: %d rows x %d columns\n",
		atomic.AddUint64(&seq, 1), p.Name, f.Len(), len(f.Header))
	if !d.cfg.PrintRows {
		return nil
	}
	fmt.Fprintln(d.cfg.Out, strings.Join(f.Header, "\t"))
	n := f.Len()
	if d.cfg.MaxRows > 0 && d.cfg.MaxRows < n {
		n = d.cfg.MaxRows
	}
	for _, r := range f.Rows[:n] {
		fmt.Fprintln(d.cfg.Out, strings.Join(r, "\t"))
	}
	return nil
}

func (d *driver) Close() error { return nil }

func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}
