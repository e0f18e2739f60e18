// Package counterbranch is the fixed branch/join example: two branches bump
// a counter by different amounts and the join keeps the larger one.
package counterbranch

import (
	"context"
	"fmt"
	"io"

	"pitchflow/internal/flow"
)

const Name = "CounterBranchFlow"

type State struct {
	Creature string
	Count    int
}

func Start(_ context.Context, s *State) error {
	s.Creature = "dog"
	s.Count = 0
	return nil
}

func AddOne(_ context.Context, s *State) error {
	s.Count += 1
	return nil
}

func AddTwo(_ context.Context, s *State) error {
	s.Count += 2
	return nil
}

// Join keeps the largest count and the first branch's creature; the
// branches are not checked for agreement.
func Join(out io.Writer) func(context.Context, *State, flow.Inputs[State]) error {
	return func(_ context.Context, s *State, in flow.Inputs[State]) error {
		for _, b := range in.States() {
			s.Count = max(s.Count, b.Count)
		}
		one, _ := in.Get("add_one")
		two, _ := in.Get("add_two")
		fmt.Fprintf(out, "Count from add_one - %d\n", one.Count)
		fmt.Fprintf(out, "Count from add_two - %d\n", two.Count)

		s.Creature = in.At(0).Creature
		return nil
	}
}

func End(out io.Writer) func(context.Context, *State) error {
	return func(_ context.Context, s *State) error {
		fmt.Fprintf(out, "The creature is %s\n", s.Creature)
		fmt.Fprintf(out, "The final count is %d\n", s.Count)
		return nil
	}
}

// New builds the flow; join and end report to out.
func New(out io.Writer) (*flow.Flow[State], error) {
	return flow.New(Name,
		flow.Step[State]{Name: flow.StartStep, Run: Start, Next: []string{"add_one", "add_two"}},
		flow.Step[State]{Name: "add_one", Run: AddOne, Next: []string{"join"}},
		flow.Step[State]{Name: "add_two", Run: AddTwo, Next: []string{"join"}},
		flow.Step[State]{Name: "join", Join: Join(out), Next: []string{flow.EndStep}},
		flow.Step[State]{Name: flow.EndStep, Run: End(out)},
	)
}

// Run builds and executes the flow.
func Run(ctx context.Context, out io.Writer) (*flow.Result[State], error) {
	f, err := New(out)
	if err != nil {
		return nil, err
	}
	return f.Run(ctx, State{})
}
