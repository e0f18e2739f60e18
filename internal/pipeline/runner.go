package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"pitchflow/internal/dataset"
	"pitchflow/internal/features"
	"pitchflow/internal/logging"
	"pitchflow/internal/preprocess"
	"pitchflow/internal/spec"
	"pitchflow/internal/split"
	"pitchflow/internal/telemetry"
	"pitchflow/sink"
	"pitchflow/source"
)

type namedSink struct {
	name string
	s    sink.Adapter
}

// Runner executes one preprocessing pass: load, derive, encode and select,
// split, then hand each partition to every sink.
type Runner struct {
	params spec.Features
	source source.Adapter
	sinks  []namedSink
}

func NewRunner(params spec.Features) *Runner { return &Runner{params: params} }

func (r *Runner) SetSource(s source.Adapter)          { r.source = s }
func (r *Runner) AddSink(name string, s sink.Adapter) { r.sinks = append(r.sinks, namedSink{name, s}) }

// Output is what a run produced.
type Output struct {
	Train    *dataset.Frame
	Test     *dataset.Frame
	Pipeline *preprocess.Pipeline
	Report   Report
}

func (r *Runner) Run(ctx context.Context) (*Output, error) {
	if r.source == nil {
		return nil, errors.New("runner: no source configured")
	}
	log := logging.L().With("data_path", r.params.DataPath)

	data, err := r.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	telemetry.RowsProcessed.Add(float64(data.Len()))

	if err := features.Derive(data); err != nil {
		return nil, fmt.Errorf("derive: %w", err)
	}
	y, err := data.Column(features.ResultCol)
	if err != nil {
		return nil, err
	}
	data.Drop(features.ResultCol)

	pipe := preprocess.New(r.params.Chi2Percentile, r.params.Remainder)
	proc, err := pipe.FitTransform(data, y)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	if err := proc.AddColumn(features.ResultCol, y); err != nil {
		return nil, err
	}
	log.Info("prepare: pipeline fitted",
		"categorical", len(pipe.Categorical), "selected", len(pipe.Selector.Selected()),
		"columns", len(proc.Header))

	rng, seed := split.NewRand(r.params.RandomState)
	trainIdx, testIdx, err := split.Indices(proc.Len(), r.params.TestSize, rng)
	if err != nil {
		return nil, err
	}
	out := &Output{
		Train:    withIndex(proc, trainIdx),
		Test:     withIndex(proc, testIdx),
		Pipeline: pipe,
	}

	for _, p := range []sink.Partition{{Name: sink.Train, Frame: out.Train}, {Name: sink.Test, Frame: out.Test}} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, ns := range r.sinks {
			if err := ns.s.Push(p); err != nil {
				return nil, fmt.Errorf("sink %s: %w", ns.name, err)
			}
			telemetry.RowsWritten.WithLabelValues(ns.name, p.Name).Add(float64(p.Frame.Len()))
		}
	}

	if err := pipe.Save(r.params.PipelinePath); err != nil {
		return nil, fmt.Errorf("save pipeline: %w", err)
	}
	out.Report = newReport(r.params, seed, data.Len(), out, pipe)
	if r.params.ReportPath != "" {
		if err := out.Report.Write(r.params.ReportPath); err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
	}
	log.Info("prepare: done", "train", out.Train.Len(), "test", out.Test.Len(), "seed", seed)
	return out, nil
}

func (r *Runner) Close() error {
	var errs []error
	if r.source != nil {
		errs = append(errs, r.source.Close())
	}
	for _, ns := range r.sinks {
		errs = append(errs, ns.s.Close())
	}
	return errors.Join(errs...)
}

// withIndex takes rows idx of f and prepends an unnamed column holding the
// original row number.
func withIndex(f *dataset.Frame, idx []int) *dataset.Frame {
	part := f.Take(idx)
	part.Header = slices.Concat([]string{""}, part.Header)
	for k, i := range idx {
		part.Rows[k] = slices.Concat([]string{strconv.Itoa(i)}, part.Rows[k])
	}
	return part
}
