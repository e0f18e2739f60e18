package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pitchflow/internal/logging"
	"pitchflow/internal/telemetry"
)

const (
	StartStep = "start"
	EndStep   = "end"
)

var ErrInvalidGraph = errors.New("flow: invalid graph")

type Step[S any] struct {
	Name string
	// Run is set on every step except joins.
	Run func(ctx context.Context, s *S) error
	// Join is set on steps that close a fan-out.
	Join func(ctx context.Context, s *S, in Inputs[S]) error
	Next []string
}

// Inputs are the branch results delivered to a join, in the order the
// branches were declared on the fan-out step.
type Inputs[S any] struct {
	names  []string
	states []S
}

func (in Inputs[S]) Len() int   { return len(in.states) }
func (in Inputs[S]) At(i int) S { return in.states[i] }

// Get returns the result of the branch opened by step name.
func (in Inputs[S]) Get(name string) (S, bool) {
	for i, n := range in.names {
		if n == name {
			return in.states[i], true
		}
	}
	var zero S
	return zero, false
}

func (in Inputs[S]) States() []S { return append([]S(nil), in.states...) }

type Record struct {
	Step     string
	Started  time.Time
	Duration time.Duration
	Err      error
}

type Result[S any] struct {
	RunID uuid.UUID
	Flow  string
	State S
	Steps []Record
}

type Flow[S any] struct {
	Name string
	// MaxParallel bounds concurrently running branches; 0 means no limit.
	MaxParallel int
	// Clone copies the state for each branch. Plain assignment is used when
	// nil, which is enough for states without slices, maps or pointers.
	Clone func(S) S

	steps  map[string]*Step[S]
	joinOf map[string]string
}

func New[S any](name string, steps ...Step[S]) (*Flow[S], error) {
	f := &Flow[S]{Name: name, steps: make(map[string]*Step[S], len(steps)), joinOf: map[string]string{}}
	for i := range steps {
		st := &steps[i]
		if _, dup := f.steps[st.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate step %q", ErrInvalidGraph, st.Name)
		}
		f.steps[st.Name] = st
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Flow[S]) validate() error {
	for _, n := range []string{StartStep, EndStep} {
		if _, ok := f.steps[n]; !ok {
			return fmt.Errorf("%w: missing %q step", ErrInvalidGraph, n)
		}
	}
	for name, st := range f.steps {
		if (st.Run == nil) == (st.Join == nil) {
			return fmt.Errorf("%w: step %q needs exactly one of Run or Join", ErrInvalidGraph, name)
		}
		if name == EndStep && len(st.Next) > 0 {
			return fmt.Errorf("%w: %q must not have successors", ErrInvalidGraph, EndStep)
		}
		if name != EndStep && len(st.Next) == 0 {
			return fmt.Errorf("%w: step %q has no successor", ErrInvalidGraph, name)
		}
		for _, n := range st.Next {
			if _, ok := f.steps[n]; !ok {
				return fmt.Errorf("%w: step %q points at unknown step %q", ErrInvalidGraph, name, n)
			}
		}
	}
	joins := map[string]bool{}
	for name, st := range f.steps {
		if len(st.Next) < 2 {
			continue
		}
		j, err := f.joinFor(name, 0)
		if err != nil {
			return err
		}
		joins[j] = true
	}
	for name, st := range f.steps {
		if st.Join != nil && !joins[name] {
			return fmt.Errorf("%w: join %q closes no fan-out", ErrInvalidGraph, name)
		}
	}
	return f.walkMain()
}

// walkMain follows the top-level path from start and requires it to reach
// end without looping.
func (f *Flow[S]) walkMain() error {
	name := StartStep
	for hops := 0; hops <= len(f.steps); hops++ {
		st := f.steps[name]
		if st.Join != nil {
			return fmt.Errorf("%w: join %q reached outside a fan-out", ErrInvalidGraph, name)
		}
		for len(st.Next) > 1 {
			st = f.steps[f.joinOf[st.Name]]
		}
		if st.Name == EndStep {
			return nil
		}
		name = st.Next[0]
	}
	return fmt.Errorf("%w: cycle on the path from %q", ErrInvalidGraph, StartStep)
}

// joinFor finds the join every branch of split converges on.
func (f *Flow[S]) joinFor(split string, depth int) (string, error) {
	if j, ok := f.joinOf[split]; ok {
		return j, nil
	}
	var join string
	for _, b := range f.steps[split].Next {
		j, err := f.converge(b, depth)
		if err != nil {
			return "", fmt.Errorf("branch %q of %q: %w", b, split, err)
		}
		if join == "" {
			join = j
		} else if j != join {
			return "", fmt.Errorf("%w: branches of %q join at both %q and %q", ErrInvalidGraph, split, join, j)
		}
	}
	f.joinOf[split] = join
	return join, nil
}

// converge walks a branch forward, stepping over nested fan-outs, until it
// reaches a join.
func (f *Flow[S]) converge(name string, depth int) (string, error) {
	for hops := 0; ; hops++ {
		if hops > len(f.steps) || depth > len(f.steps) {
			return "", fmt.Errorf("%w: cycle through %q", ErrInvalidGraph, name)
		}
		st := f.steps[name]
		if st.Join != nil {
			return name, nil
		}
		switch len(st.Next) {
		case 0:
			return "", fmt.Errorf("%w: branch reaches %q without a join", ErrInvalidGraph, name)
		case 1:
			name = st.Next[0]
		default:
			j, err := f.joinFor(name, depth+1)
			if err != nil {
				return "", err
			}
			js := f.steps[j]
			if len(js.Next) != 1 {
				return "", fmt.Errorf("%w: nested join %q must have one successor", ErrInvalidGraph, j)
			}
			name = js.Next[0]
		}
	}
}

type run struct {
	id uuid.UUID
	mu sync.Mutex
	rs []Record
}

func (r *run) record(rec Record) {
	r.mu.Lock()
	r.rs = append(r.rs, rec)
	r.mu.Unlock()
}

// Run executes the flow from "start" with the given initial state.
func (f *Flow[S]) Run(ctx context.Context, initial S) (*Result[S], error) {
	r := &run{id: uuid.New()}
	log := logging.L().With("flow", f.Name, "run", r.id.String())
	log.Info("flow: run started")

	state, err := f.exec(ctx, r, StartStep, "", initial)
	res := &Result[S]{RunID: r.id, Flow: f.Name, State: state, Steps: r.rs}
	if err != nil {
		log.Error("flow: run failed", "err", err)
		return res, err
	}
	log.Info("flow: run finished", "steps", len(r.rs))
	return res, nil
}

// exec runs steps from name until it reaches stop (not run) or the end.
func (f *Flow[S]) exec(ctx context.Context, r *run, name, stop string, state S) (S, error) {
	for {
		if name == stop {
			return state, nil
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}
		st := f.steps[name]
		if st.Join != nil {
			return state, fmt.Errorf("%w: join %q reached outside a fan-out", ErrInvalidGraph, name)
		}
		if err := f.do(ctx, r, st.Name, func(ctx context.Context) error { return st.Run(ctx, &state) }); err != nil {
			return state, err
		}

		for {
			if len(st.Next) == 0 {
				return state, nil
			}
			if len(st.Next) == 1 {
				name = st.Next[0]
				break
			}
			join := f.steps[f.joinOf[st.Name]]
			in, err := f.fanOut(ctx, r, st.Next, join.Name, state)
			if err != nil {
				return state, err
			}
			var next S
			if err := f.do(ctx, r, join.Name, func(ctx context.Context) error { return join.Join(ctx, &next, in) }); err != nil {
				return state, err
			}
			state, st = next, join
		}
	}
}

func (f *Flow[S]) fanOut(ctx context.Context, r *run, branches []string, join string, state S) (Inputs[S], error) {
	g, gctx := errgroup.WithContext(ctx)
	if f.MaxParallel > 0 {
		g.SetLimit(f.MaxParallel)
	}
	states := make([]S, len(branches))
	for i, b := range branches {
		bs := f.copyState(state)
		g.Go(func() error {
			out, err := f.exec(gctx, r, b, join, bs)
			if err != nil {
				return err
			}
			states[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Inputs[S]{}, err
	}
	return Inputs[S]{names: append([]string(nil), branches...), states: states}, nil
}

func (f *Flow[S]) copyState(s S) S {
	if f.Clone != nil {
		return f.Clone(s)
	}
	return s
}

func (f *Flow[S]) do(ctx context.Context, r *run, step string, fn func(context.Context) error) error {
	start := time.Now()
	logging.L().Debug("flow: step started", "flow", f.Name, "run", r.id.String(), "step", step)

	err := fn(ctx)
	rec := Record{Step: step, Started: start, Duration: time.Since(start), Err: err}
	r.record(rec)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	telemetry.StepsRun.WithLabelValues(f.Name, step, outcome).Inc()
	if err != nil {
		return fmt.Errorf("step %s: %w", step, err)
	}
	logging.L().Debug("flow: step finished", "flow", f.Name, "run", r.id.String(), "step", step, "took", rec.Duration)
	return nil
}
