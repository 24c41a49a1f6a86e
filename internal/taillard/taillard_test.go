package taillard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMatrices_TA01(t *testing.T) {
	mx, err := GenerateMatrices(840612802, 398197754, 15, 15)
	require.NoError(t, err)
	require.Len(t, mx.Durations, 15)

	assert.Equal(t, []int{94, 66, 10, 53, 26, 15, 65, 82, 10, 27, 93, 92, 96, 70, 83}, mx.Durations[0])
	assert.Equal(t, []int{7, 13, 5, 8, 4, 3, 11, 12, 9, 15, 10, 14, 6, 1, 2}, mx.Machines[0])
	assert.Equal(t, []int{57, 16, 42, 34, 37, 26, 68, 73, 5, 8, 12, 87, 83, 20, 97}, mx.Durations[14])
	assert.Equal(t, []int{11, 9, 13, 7, 5, 2, 14, 15, 12, 1, 8, 4, 3, 10, 6}, mx.Machines[14])
}

func TestGenerateMatrices_Small(t *testing.T) {
	mx, err := GenerateMatrices(1, 2, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 14, 75}, {46, 53, 22}, {5, 68, 68}}, mx.Durations)
	assert.Equal(t, [][]int{{1, 2, 3}, {3, 2, 1}, {1, 2, 3}}, mx.Machines)

	mx, err = GenerateMatrices(12345, 67890, 4, 3)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{10, 83, 94}, {4, 2, 6}, {76, 58, 91}, {78, 33, 20}}, mx.Durations)
	assert.Equal(t, [][]int{{2, 1, 3}, {3, 1, 2}, {3, 2, 1}, {1, 3, 2}}, mx.Machines)
}

func TestGenerate_Problem(t *testing.T) {
	p, err := Generate(840612802, 398197754, 15, 15)
	require.NoError(t, err)
	assert.Equal(t, 15, p.Machines)
	assert.Equal(t, 15, p.NumJobs())
	assert.Equal(t, 225, p.NumOps())

	// Станки в задаче нумеруются с нуля.
	first := p.Jobs[0].Ops[0]
	assert.Equal(t, 6, first.Machine)
	assert.Equal(t, 94, first.Duration)

	// Каждая работа проходит каждый станок ровно один раз.
	for _, job := range p.Jobs {
		seen := make(map[int]bool)
		for _, op := range job.Ops {
			seen[op.Machine] = true
		}
		assert.Len(t, seen, 15)
	}
}

func TestGenerate_Errors(t *testing.T) {
	_, err := Generate(0, 1, 3, 3)
	assert.Error(t, err)
	_, err = Generate(1, modulus, 3, 3)
	assert.Error(t, err)
	_, err = Generate(1, 2, 0, 3)
	assert.Error(t, err)
}

func TestCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`instances:
  tiny: {time_seed: 1, machine_seed: 2, jobs: 3, machines: 3}
  ta01:
    time_seed: 840612802
    machine_seed: 398197754
    jobs: 15
    machines: 15
`), 0o644))

	cat, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ta01", "tiny"}, cat.Names())

	p, err := cat.Problem("tiny")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Jobs[0].Ops[0].Duration)
	assert.Equal(t, 2, p.Jobs[1].Ops[0].Machine)

	_, err = cat.Problem("ta99")
	assert.Error(t, err)
}

func TestParseCatalog_Errors(t *testing.T) {
	for name, in := range map[string]string{
		"empty":       "instances: {}\n",
		"unknown key": "instances:\n  a: {time_seed: 1, machine_seed: 2, jobs: 3, machines: 3, extra: 1}\n",
		"zero size":   "instances:\n  a: {time_seed: 1, machine_seed: 2, jobs: 0, machines: 3}\n",
	} {
		_, err := ParseCatalog([]byte(in))
		assert.Error(t, err, name)
	}
}
