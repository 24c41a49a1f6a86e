package jobshop

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoByTwo: J0 = (m0,3)(m1,2), J1 = (m1,2)(m0,4).
func twoByTwo(t *testing.T) *Problem {
	t.Helper()
	p, err := NewProblem(2, [][]Step{
		{{Machine: 0, Duration: 3}, {Machine: 1, Duration: 2}},
		{{Machine: 1, Duration: 2}, {Machine: 0, Duration: 4}},
	})
	require.NoError(t, err)
	return p
}

// randomProblem строит задачу, в которой каждая работа проходит все станки в случайном порядке.
func randomProblem(t *testing.T, rng *rand.Rand, jobs, machines int) *Problem {
	t.Helper()
	routes := make([][]Step, jobs)
	for j := range routes {
		order := rng.Perm(machines)
		for _, m := range order {
			routes[j] = append(routes[j], Step{Machine: m, Duration: 1 + rng.Intn(20)})
		}
	}
	p, err := NewProblem(machines, routes)
	require.NoError(t, err)
	return p
}

func taskIDs(q []Task) [][2]int {
	out := make([][2]int, len(q))
	for i, tk := range q {
		out[i] = [2]int{tk.Job, tk.Op.Index}
	}
	return out
}

func TestNewProblem_Validates(t *testing.T) {
	_, err := NewProblem(2, [][]Step{{{Machine: 2, Duration: 1}}})
	require.ErrorIs(t, err, ErrInvalidProblem)

	_, err = NewProblem(2, [][]Step{{{Machine: 0, Duration: -1}}})
	require.ErrorIs(t, err, ErrInvalidProblem)

	_, err = NewProblem(0, [][]Step{{{Machine: 0, Duration: 1}}})
	require.ErrorIs(t, err, ErrInvalidProblem)

	_, err = NewProblem(1, nil)
	require.ErrorIs(t, err, ErrInvalidProblem)
}

func TestProblem_Counts(t *testing.T) {
	p := twoByTwo(t)
	assert.Equal(t, 2, p.NumJobs())
	assert.Equal(t, 4, p.NumOps())
	assert.Equal(t, 11, p.TotalDuration())
	assert.Equal(t, 1, p.Jobs[1].Ops[1].Index)
}

func TestGenerateSequential_Queues(t *testing.T) {
	p := twoByTwo(t)
	s := GenerateSequential(p)

	require.Equal(t, 2, s.Machines())
	assert.Equal(t, [][2]int{{0, 0}, {1, 1}}, taskIDs(s.Queue(0)))
	assert.Equal(t, [][2]int{{0, 1}, {1, 0}}, taskIDs(s.Queue(1)))
	require.NoError(t, s.Validate(p))
}

func TestBuild_SequentialTwoByTwo(t *testing.T) {
	p := twoByTwo(t)
	pl := Build(p, GenerateSequential(p))

	require.True(t, pl.Feasible)
	// m1: J0.1 ждёт окончания J0.0 (3), затем J1.0 с 5; J1.1 на m0 ждёт J1.0 (7).
	assert.Equal(t, []Slot{
		{Start: 0, Task: Task{Job: 0, Op: p.Jobs[0].Ops[0]}},
		{Start: 7, Task: Task{Job: 1, Op: p.Jobs[1].Ops[1]}},
	}, pl.Machines[0])
	assert.Equal(t, []Slot{
		{Start: 3, Task: Task{Job: 0, Op: p.Jobs[0].Ops[1]}},
		{Start: 5, Task: Task{Job: 1, Op: p.Jobs[1].Ops[0]}},
	}, pl.Machines[1])
	assert.Equal(t, 11, pl.Makespan())
	assert.Equal(t, 2, pl.Passes)
	require.NoError(t, pl.Validate(p))
}

func TestBuild_ReorderedTwoByTwo(t *testing.T) {
	p := twoByTwo(t)
	s := GenerateSequential(p).MustApply(Move{Machine: 1, From: 0, To: 1})

	pl := Build(p, s)
	require.True(t, pl.Feasible)

	starts := func(row []Slot) []int {
		out := make([]int, len(row))
		for i, sl := range row {
			out[i] = sl.Start
		}
		return out
	}
	assert.Equal(t, []int{0, 3}, starts(pl.Machines[0]))
	assert.Equal(t, []int{0, 3}, starts(pl.Machines[1]))
	assert.Equal(t, 7, pl.Makespan())
	require.NoError(t, pl.Validate(p))
}

func TestBuild_DetectsDeadlock(t *testing.T) {
	p := twoByTwo(t)
	// m0: [J1.1, J0.0], m1: [J0.1, J1.0] — каждая голова очереди ждёт другую.
	s := GenerateSequential(p).MustApply(Move{Machine: 0, From: 0, To: 1})

	pl := Build(p, s)
	assert.False(t, pl.Feasible)
	assert.Nil(t, pl.Machines)
	assert.Equal(t, 0, pl.Passes)
	assert.Error(t, pl.Validate(p))

	e, err := NewEvaluator(p)
	require.NoError(t, err)
	assert.Equal(t, p.TotalDuration(), e.Cost(pl))
}

func TestBuild_EmptyMachineContributesZero(t *testing.T) {
	p, err := NewProblem(3, [][]Step{{{Machine: 0, Duration: 2}, {Machine: 2, Duration: 5}}})
	require.NoError(t, err)

	e, err := NewEvaluator(p)
	require.NoError(t, err)
	s := GenerateSequential(p)
	assert.Equal(t, 0, s.Len(1))
	assert.Equal(t, 7, e.Evaluate(s))
}

func TestBuild_PassesBoundedByOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		p := randomProblem(t, rng, 2+rng.Intn(5), 2+rng.Intn(4))
		s := GenerateRandom(p, rng)
		for step := 0; step < 30; step++ {
			moves := NeighborhoodFar.Moves(s)
			s = s.MustApply(moves[rng.Intn(len(moves))])
			pl := Build(p, s)
			assert.LessOrEqual(t, pl.Passes, p.NumOps())
			if pl.Feasible {
				require.NoError(t, pl.Validate(p))
			}
		}
	}
}

func TestBuild_PassesExcludeFinalScan(t *testing.T) {
	// Станок 0 опрашивается раньше станка 1, но работа начинается на станке 1:
	// первый проход назначает одну операцию, второй — вторую, третий пуст.
	p, err := NewProblem(2, [][]Step{{{Machine: 1, Duration: 3}, {Machine: 0, Duration: 2}}})
	require.NoError(t, err)

	pl := Build(p, GenerateSequential(p))
	require.True(t, pl.Feasible)
	assert.Equal(t, 2, pl.Passes)
	assert.Equal(t, p.NumOps(), pl.Passes)
	assert.Equal(t, 5, pl.Makespan())
}

func TestGenerateRandom_FeasibleAndComplete(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := randomProblem(t, rng, 6, 4)

	for i := 0; i < 25; i++ {
		s := GenerateRandom(p, rng)
		require.NoError(t, s.Validate(p))
		pl := Build(p, s)
		require.True(t, pl.Feasible)
		require.NoError(t, pl.Validate(p))
	}
}

func TestApply_IsRelocation(t *testing.T) {
	p, err := NewProblem(1, [][]Step{
		{{Machine: 0, Duration: 1}},
		{{Machine: 0, Duration: 2}},
		{{Machine: 0, Duration: 3}},
		{{Machine: 0, Duration: 4}},
	})
	require.NoError(t, err)
	s := GenerateSequential(p)

	jobs := func(q []Task) []int {
		out := make([]int, len(q))
		for i, tk := range q {
			out[i] = tk.Job
		}
		return out
	}

	assert.Equal(t, []int{1, 2, 0, 3}, jobs(s.MustApply(Move{Machine: 0, From: 0, To: 2}).Queue(0)))
	assert.Equal(t, []int{0, 3, 1, 2}, jobs(s.MustApply(Move{Machine: 0, From: 3, To: 1}).Queue(0)))
	assert.Equal(t, []int{1, 0, 2, 3}, jobs(s.MustApply(Move{Machine: 0, From: 0, To: 1}).Queue(0)))
	assert.Equal(t, []int{0, 1, 2, 3}, jobs(s.Queue(0)), "parent must stay untouched")
}

func TestApply_RejectsOutOfRange(t *testing.T) {
	p := twoByTwo(t)
	s := GenerateSequential(p)

	_, err := s.Apply(Move{Machine: 2, From: 0, To: 1})
	assert.Error(t, err)
	_, err = s.Apply(Move{Machine: 0, From: 0, To: 2})
	assert.Error(t, err)
	assert.Panics(t, func() { s.MustApply(Move{Machine: 0, From: -1, To: 0}) })
}

func TestApply_ConservesOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p := randomProblem(t, rng, 4, 3)
	s := GenerateRandom(p, rng)
	before := s.Fingerprint()

	for _, mv := range NeighborhoodFar.Moves(s) {
		next := s.MustApply(mv)
		require.NoError(t, next.Validate(p))
		for m := 0; m < s.Machines(); m++ {
			if m != mv.Machine {
				assert.Equal(t, s.Queue(m), next.Queue(m))
			}
		}
	}
	assert.Equal(t, before, s.Fingerprint())
}

func TestSolutionValidate_DetectsBrokenQueues(t *testing.T) {
	p := twoByTwo(t)
	q0 := GenerateSequential(p).Queue(0)
	q1 := GenerateSequential(p).Queue(1)

	dup := NewSolution([][]Task{append(q0, q0[0]), q1})
	assert.Error(t, dup.Validate(p))

	missing := NewSolution([][]Task{q0[:1], q1})
	assert.Error(t, missing.Validate(p))

	swapped := NewSolution([][]Task{q1, q0})
	assert.Error(t, swapped.Validate(p))
}

func TestNeighborhood_MoveCounts(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	p := randomProblem(t, rng, 5, 3)
	s := GenerateSequential(p)

	near, far := 0, 0
	for m := 0; m < s.Machines(); m++ {
		k := s.Len(m)
		near += k - 1
		far += k * (k - 1)
	}
	assert.Len(t, NeighborhoodNear.Moves(s), near)
	assert.Len(t, NeighborhoodFar.Moves(s), far)

	for _, mv := range NeighborhoodNear.Moves(s) {
		assert.Equal(t, mv.From+1, mv.To)
	}
	for _, mv := range NeighborhoodFar.Moves(s) {
		assert.NotEqual(t, mv.From, mv.To)
	}
}

func TestNeighborhood_Validate(t *testing.T) {
	assert.NoError(t, NeighborhoodNear.Validate())
	assert.NoError(t, NeighborhoodFar.Validate())
	assert.Error(t, Neighborhood("swap").Validate())
}

func TestInitialMethod_Generate(t *testing.T) {
	p := twoByTwo(t)

	s, err := InitialSequential.Generate(p, nil)
	require.NoError(t, err)
	assert.Equal(t, GenerateSequential(p).Fingerprint(), s.Fingerprint())

	s, err = InitialRandom.Generate(p, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.NoError(t, s.Validate(p))

	_, err = InitialRandom.Generate(p, nil)
	assert.Error(t, err)
	_, err = InitialMethod("greedy").Generate(p, nil)
	assert.Error(t, err)
}

func TestEvaluator_LessOrdering(t *testing.T) {
	p := twoByTwo(t)
	e, err := NewEvaluator(p)
	require.NoError(t, err)
	inf := e.Infeasible

	for _, v := range []int{0, 3, 7, inf} {
		assert.False(t, e.Less(v, v), "Less must be irreflexive for %d", v)
	}
	for _, v := range []int{0, 3, 7, 10} {
		assert.True(t, e.Less(v, inf))
		assert.False(t, e.Less(inf, v))
	}
	assert.True(t, e.Less(3, 7))
	assert.False(t, e.Less(7, 3))
}

func TestFingerprint_DistinguishesOrderings(t *testing.T) {
	p := twoByTwo(t)
	s := GenerateSequential(p)
	moved := s.MustApply(Move{Machine: 1, From: 0, To: 1})

	assert.NotEqual(t, s.Fingerprint(), moved.Fingerprint())
	assert.Equal(t, s.Fingerprint(), moved.MustApply(Move{Machine: 1, From: 1, To: 0}).Fingerprint())
	assert.Len(t, s.Fingerprint(), 64)
}
