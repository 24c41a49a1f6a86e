package ts

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobShop/internal/jobshop"
)

func problem(t *testing.T) *jobshop.Problem {
	t.Helper()
	rng := rand.New(rand.NewSource(17))
	routes := make([][]jobshop.Step, 5)
	for j := range routes {
		for _, m := range rng.Perm(3) {
			routes[j] = append(routes[j], jobshop.Step{Machine: m, Duration: 1 + rng.Intn(25)})
		}
	}
	p, err := jobshop.NewProblem(3, routes)
	require.NoError(t, err)
	return p
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.IterationsPerOp = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.TabuTenure = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Neighborhood = "insert"
	assert.Error(t, cfg.Validate())
}

func TestSolve_ImprovesOnInitial(t *testing.T) {
	p := problem(t)
	cfg := DefaultConfig()
	cfg.Iterations = 300

	s, err := New(cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	res, err := s.Solve(context.Background(), p)
	require.NoError(t, err)

	initial := jobshop.Build(p, jobshop.GenerateSequential(p)).Makespan()
	assert.LessOrEqual(t, res.Makespan, initial)
	assert.True(t, res.Feasible)
	assert.Equal(t, 300, res.Iterations)
	assert.Equal(t, 1+300*cfg.NeighborsPerIter, res.Evaluations)
	require.NoError(t, res.Plan.Validate(p))
}

func TestSolve_Cancelled(t *testing.T) {
	p := problem(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := New(DefaultConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	res, err := s.Solve(ctx, p)
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.Equal(t, jobshop.GenerateSequential(p).Fingerprint(), res.Solution.Fingerprint())
}

func TestTabuList_Expiry(t *testing.T) {
	tl := newTabuList(8)
	task := jobshop.Task{Job: 2, Op: jobshop.Operation{Machine: 1, Duration: 3, Index: 1}}
	k := moveKey(task, 3, 0)

	tl.Add(k, 5)
	assert.True(t, tl.IsTabu(k, 4))
	assert.False(t, tl.IsTabu(k, 5))
	assert.False(t, tl.IsTabu(moveKey(task, 0, 3), 1))

	// Ключ вытесняется после полного оборота кольца.
	for i := 0; i < 8; i++ {
		tl.Add(moveKey(task, i, i+1), 100)
	}
	assert.False(t, tl.IsTabu(k, 0))
}
