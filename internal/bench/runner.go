package bench

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jobShop/internal/jobshop"
	"jobShop/internal/opt"
)

type Algorithm struct {
	Name    string
	Factory func(seed int64) (opt.Optimizer, error)
}

// Case — именованный экземпляр задачи.
type Case struct {
	Name    string
	Problem *jobshop.Problem
}

// Run — итог одного запуска алгоритма.
type Run struct {
	Algo     string
	Instance string
	Seed     int64
	Result   opt.Result
}

type Record struct {
	Algo     string
	Instance string
	Jobs     int
	Machines int
	Runs     int

	TimeBestMs float64
	TimeMeanMs float64
	TimeStdMs  float64

	MakespanBest int
	MakespanMean float64
	MakespanStd  float64

	// Infeasible — число запусков, не нашедших допустимого расписания.
	Infeasible int
	// Distinct — число различных лучших решений (по отпечатку).
	Distinct int
	Stopped  int
}

type Runner struct {
	Runs          int
	BaseSeed      int64
	PerRunTimeout time.Duration // 0 = no timeout

	// OnRun вызывается после каждого успешного запуска.
	OnRun  func(Run) error
	Logger *slog.Logger
}

func (r Runner) RunCase(ctx context.Context, c Case, algo Algorithm) (Record, error) {
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}
	if r.Runs <= 0 {
		return Record{}, fmt.Errorf("runs must be > 0 (got %d)", r.Runs)
	}

	makespans := make([]int, 0, r.Runs)
	timesMs := make([]float64, 0, r.Runs)
	fingerprints := make(map[string]struct{}, r.Runs)
	rec := Record{
		Algo:     algo.Name,
		Instance: c.Name,
		Jobs:     c.Problem.NumJobs(),
		Machines: c.Problem.Machines,
		Runs:     r.Runs,
	}

	for i := 0; i < r.Runs; i++ {
		if err := ctx.Err(); err != nil {
			return Record{}, fmt.Errorf("run %d: %w", i, err)
		}
		runSeed := r.BaseSeed + int64(i)

		op, err := algo.Factory(runSeed)
		if err != nil {
			return Record{}, fmt.Errorf("run %d: build %s: %w", i, algo.Name, err)
		}

		runCtx := ctx
		cancel := func() {}
		if r.PerRunTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, r.PerRunTimeout)
		}
		start := time.Now()
		res, err := op.Solve(runCtx, c.Problem)
		dur := time.Since(start)
		cancel()

		if err != nil {
			return Record{}, fmt.Errorf("run %d: solve error: %w", i, err)
		}
		if err := res.Solution.Validate(c.Problem); err != nil {
			return Record{}, fmt.Errorf("run %d: invalid solution: %w", i, err)
		}

		if !res.Feasible {
			rec.Infeasible++
		}
		if res.Stopped {
			rec.Stopped++
		}
		fingerprints[res.Solution.Fingerprint()] = struct{}{}
		makespans = append(makespans, res.Makespan)
		timesMs = append(timesMs, float64(dur.Microseconds())/1000.0)

		log.Debug("run finished",
			"algo", algo.Name,
			"instance", c.Name,
			"seed", runSeed,
			"makespan", res.Makespan,
			"feasible", res.Feasible,
			"stopped", res.Stopped,
			"evaluations", res.Evaluations,
			"duration", dur,
		)

		if r.OnRun != nil {
			if err := r.OnRun(Run{Algo: algo.Name, Instance: c.Name, Seed: runSeed, Result: res}); err != nil {
				return Record{}, fmt.Errorf("run %d: %w", i, err)
			}
		}
	}

	msStats := Calc(makespans)
	tStats := Calc(timesMs)

	rec.TimeBestMs = tStats.Best
	rec.TimeMeanMs = tStats.Mean
	rec.TimeStdMs = tStats.Std

	rec.MakespanBest = msStats.Best
	rec.MakespanMean = msStats.Mean
	rec.MakespanStd = msStats.Std

	rec.Distinct = len(fingerprints)
	return rec, nil
}
