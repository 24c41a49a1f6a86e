package bench

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"

	"jobShop/internal/opt"
	"jobShop/internal/sa"
	"jobShop/internal/ts"
)

// Фабрики

func randForSeed(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func NewSAFactory(cfg sa.Config, hook sa.Hook) func(seed int64) (opt.Optimizer, error) {
	return func(seed int64) (opt.Optimizer, error) {
		solver, err := sa.New(cfg, randForSeed(seed))
		if err != nil {
			return nil, err
		}
		solver.Hook = hook
		return solver, nil
	}
}

func NewTSFactory(cfg ts.Config) func(seed int64) (opt.Optimizer, error) {
	return func(seed int64) (opt.Optimizer, error) {
		solver, err := ts.New(cfg, randForSeed(seed))
		if err != nil {
			return nil, err
		}
		return solver, nil
	}
}

// Select выбирает алгоритмы по именам без учёта регистра, сохраняя порядок.
func Select(available map[string]Algorithm, names []string) ([]Algorithm, error) {
	selected := make([]Algorithm, 0, len(names))
	for _, n := range names {
		a, ok := available[strings.ToUpper(strings.TrimSpace(n))]
		if !ok {
			return nil, fmt.Errorf("unknown algorithm %q; available: %v", n, keys(available))
		}
		selected = append(selected, a)
	}
	return selected, nil
}

func keys(m map[string]Algorithm) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
