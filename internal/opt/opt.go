package opt

import (
	"context"
	"time"

	"jobShop/internal/jobshop"
)

type Optimizer interface {
	Solve(ctx context.Context, prob *jobshop.Problem) (Result, error)
}

// Result — лучшее найденное решение и статистика запуска.
type Result struct {
	Solution    *jobshop.Solution
	Plan        *jobshop.Plan
	Makespan    int
	Feasible    bool
	Evaluations int
	Iterations  int
	Duration    time.Duration
	// Stopped — поиск прерван через context до естественного завершения.
	Stopped bool
	Meta    map[string]any
}
