package flow

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type tally struct {
	N    int
	Seen []string
}

func add(n int) func(context.Context, *tally) error {
	return func(_ context.Context, s *tally) error {
		s.N += n
		return nil
	}
}

func sumJoin(_ context.Context, s *tally, in Inputs[tally]) error {
	for _, st := range in.States() {
		s.N += st.N
	}
	return nil
}

func TestRun_Linear(t *testing.T) {
	f, err := New("linear",
		Step[tally]{Name: "start", Run: add(1), Next: []string{"mid"}},
		Step[tally]{Name: "mid", Run: add(10), Next: []string{"end"}},
		Step[tally]{Name: "end", Run: add(100)},
	)
	require.NoError(t, err)

	res, err := f.Run(context.Background(), tally{})
	require.NoError(t, err)
	assert.Equal(t, 111, res.State.N)
	assert.Equal(t, "linear", res.Flow)
	assert.Len(t, res.Steps, 3)
	assert.NotEqual(t, uuid.Nil, res.RunID)
}

func TestRun_FanOutInputsInDeclaredOrder(t *testing.T) {
	var got []int
	f, err := New("fan",
		Step[tally]{Name: "start", Run: add(1), Next: []string{"slow", "fast"}},
		Step[tally]{Name: "slow", Run: func(ctx context.Context, s *tally) error {
			time.Sleep(20 * time.Millisecond)
			s.N += 1
			return nil
		}, Next: []string{"join"}},
		Step[tally]{Name: "fast", Run: add(2), Next: []string{"join"}},
		Step[tally]{Name: "join", Join: func(_ context.Context, s *tally, in Inputs[tally]) error {
			for i := 0; i < in.Len(); i++ {
				got = append(got, in.At(i).N)
			}
			fast, ok := in.Get("fast")
			require.True(t, ok)
			s.N = fast.N
			return nil
		}, Next: []string{"end"}},
		Step[tally]{Name: "end", Run: add(0)},
	)
	require.NoError(t, err)

	res, err := f.Run(context.Background(), tally{})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, got)
	assert.Equal(t, 3, res.State.N)
	assert.Len(t, res.Steps, 5)
}

func TestRun_NestedFanOut(t *testing.T) {
	f, err := New("nested",
		Step[tally]{Name: "start", Run: add(1), Next: []string{"a", "b"}},
		Step[tally]{Name: "a", Run: add(1), Next: []string{"a1", "a2"}},
		Step[tally]{Name: "a1", Run: add(1), Next: []string{"ajoin"}},
		Step[tally]{Name: "a2", Run: add(2), Next: []string{"ajoin"}},
		Step[tally]{Name: "ajoin", Join: sumJoin, Next: []string{"join"}},
		Step[tally]{Name: "b", Run: add(5), Next: []string{"join"}},
		Step[tally]{Name: "join", Join: sumJoin, Next: []string{"end"}},
		Step[tally]{Name: "end", Run: add(0)},
	)
	require.NoError(t, err)

	res, err := f.Run(context.Background(), tally{})
	require.NoError(t, err)
	// a1: 1+1+1=3, a2: 1+1+2=4 -> ajoin 7; b: 6 -> join 13
	assert.Equal(t, 13, res.State.N)
}

func TestRun_BranchesAreIsolated(t *testing.T) {
	appendName := func(name string) func(context.Context, *tally) error {
		return func(_ context.Context, s *tally) error {
			s.Seen = append(s.Seen, name)
			return nil
		}
	}
	f, err := New("isolated",
		Step[tally]{Name: "start", Run: func(_ context.Context, s *tally) error {
			s.Seen = make([]string, 0, 8)
			return nil
		}, Next: []string{"l", "r"}},
		Step[tally]{Name: "l", Run: appendName("l"), Next: []string{"join"}},
		Step[tally]{Name: "r", Run: appendName("r"), Next: []string{"join"}},
		Step[tally]{Name: "join", Join: func(_ context.Context, s *tally, in Inputs[tally]) error {
			l, _ := in.Get("l")
			r, _ := in.Get("r")
			s.Seen = append(slices.Clone(l.Seen), r.Seen...)
			return nil
		}, Next: []string{"end"}},
		Step[tally]{Name: "end", Run: add(0)},
	)
	require.NoError(t, err)
	f.Clone = func(s tally) tally {
		s.Seen = slices.Clone(s.Seen)
		return s
	}

	res, err := f.Run(context.Background(), tally{})
	require.NoError(t, err)
	assert.Equal(t, []string{"l", "r"}, res.State.Seen)
}

func TestRun_MaxParallel(t *testing.T) {
	var inflight, peak int32
	work := func(_ context.Context, s *tally) error {
		n := atomic.AddInt32(&inflight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inflight, -1)
		return nil
	}
	steps := []Step[tally]{{Name: "start", Run: add(0), Next: []string{"b1", "b2", "b3", "b4"}}}
	for _, b := range []string{"b1", "b2", "b3", "b4"} {
		steps = append(steps, Step[tally]{Name: b, Run: work, Next: []string{"join"}})
	}
	steps = append(steps,
		Step[tally]{Name: "join", Join: sumJoin, Next: []string{"end"}},
		Step[tally]{Name: "end", Run: add(0)},
	)
	f, err := New("limited", steps...)
	require.NoError(t, err)
	f.MaxParallel = 1

	_, err = f.Run(context.Background(), tally{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&peak))
}

func TestRun_StepErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	var endRan bool
	f, err := New("failing",
		Step[tally]{Name: "start", Run: add(0), Next: []string{"ok", "bad"}},
		Step[tally]{Name: "ok", Run: add(1), Next: []string{"join"}},
		Step[tally]{Name: "bad", Run: func(context.Context, *tally) error { return boom }, Next: []string{"join"}},
		Step[tally]{Name: "join", Join: sumJoin, Next: []string{"end"}},
		Step[tally]{Name: "end", Run: func(context.Context, *tally) error { endRan = true; return nil }},
	)
	require.NoError(t, err)

	_, err = f.Run(context.Background(), tally{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Contains(t, err.Error(), "step bad")
	assert.False(t, endRan)
}

func TestRun_ContextCancelled(t *testing.T) {
	f, err := New("cancel",
		Step[tally]{Name: "start", Run: add(1), Next: []string{"end"}},
		Step[tally]{Name: "end", Run: add(1)},
	)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Run(ctx, tally{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNew_InvalidGraphs(t *testing.T) {
	noop := add(0)
	cases := map[string][]Step[tally]{
		"missing end": {
			{Name: "start", Run: noop, Next: []string{"start"}},
		},
		"unknown successor": {
			{Name: "start", Run: noop, Next: []string{"nowhere"}},
			{Name: "end", Run: noop},
		},
		"duplicate": {
			{Name: "start", Run: noop, Next: []string{"end"}},
			{Name: "start", Run: noop, Next: []string{"end"}},
			{Name: "end", Run: noop},
		},
		"end with successor": {
			{Name: "start", Run: noop, Next: []string{"end"}},
			{Name: "end", Run: noop, Next: []string{"start"}},
		},
		"run and join": {
			{Name: "start", Run: noop, Join: sumJoin, Next: []string{"end"}},
			{Name: "end", Run: noop},
		},
		"branch without join": {
			{Name: "start", Run: noop, Next: []string{"a", "end"}},
			{Name: "a", Run: noop, Next: []string{"end"}},
			{Name: "end", Run: noop},
		},
		"branches join apart": {
			{Name: "start", Run: noop, Next: []string{"a", "b"}},
			{Name: "a", Run: noop, Next: []string{"j1"}},
			{Name: "b", Run: noop, Next: []string{"j2"}},
			{Name: "j1", Join: sumJoin, Next: []string{"end"}},
			{Name: "j2", Join: sumJoin, Next: []string{"end"}},
			{Name: "end", Run: noop},
		},
		"orphan join": {
			{Name: "start", Run: noop, Next: []string{"j"}},
			{Name: "j", Join: sumJoin, Next: []string{"end"}},
			{Name: "end", Run: noop},
		},
		"cycle": {
			{Name: "start", Run: noop, Next: []string{"a"}},
			{Name: "a", Run: noop, Next: []string{"start"}},
			{Name: "end", Run: noop},
		},
	}
	for name, steps := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New("bad", steps...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidGraph), "got %v", err)
		})
	}
}
