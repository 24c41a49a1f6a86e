package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"jobShop/internal/gantt"
	"jobShop/internal/jobshop"
	"jobShop/internal/opt"
	"jobShop/internal/sa"
	"jobShop/internal/store"
	"jobShop/internal/ts"
)

type SolveOptions struct {
	*RootOptions
	problemFlags

	Algo     string
	Seed     int64
	Timeout  time.Duration
	Database string

	Gantt bool
	Width int
	Color bool

	Iterations   int
	CoolingRatio float64
	Initial      string
	Neighborhood string
}

func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "solve [problem-file]",
		Short: "Find a schedule for one problem",
		Long: `Solve one job-shop problem and print the best schedule found.

The problem is read from a file ("<jobs> <machines>" header, then one line of
"machine duration" pairs per job) or generated from a seed catalog.
Interrupting the command stops the search and prints the best schedule so far.

Example:
  jobshop solve ft06.txt --gantt
  jobshop solve --catalog seeds.yaml --instance ta01 --seed 7 --db runs.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runSolve(cmd, opts, path)
		},
	}

	opts.problemFlags.register(cmd)
	cmd.Flags().StringVar(&opts.Algo, "algo", "sa", "optimizer (sa|ts)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "random seed")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "stop the search after this long; 0 = no limit")
	cmd.Flags().StringVar(&opts.Database, "db", "", "save the run to this SQLite database")
	cmd.Flags().BoolVar(&opts.Gantt, "gantt", false, "print a Gantt chart of the best schedule")
	cmd.Flags().IntVar(&opts.Width, "width", 80, "maximum Gantt row width in cells")
	cmd.Flags().BoolVar(&opts.Color, "color", false, "colour Gantt rows when the terminal supports it")

	cmd.Flags().IntVar(&opts.Iterations, "iterations", 0, "iterations per temperature level (sa) or in total (ts)")
	cmd.Flags().Float64Var(&opts.CoolingRatio, "cooling-ratio", 0, "cooling ratio (sa)")
	cmd.Flags().StringVar(&opts.Initial, "initial", "", "initial solution (sequential|random)")
	cmd.Flags().StringVar(&opts.Neighborhood, "neighborhood", "", "neighbourhood (near|far)")

	return cmd
}

func runSolve(cmd *cobra.Command, opts *SolveOptions, path string) error {
	log := opts.Logger

	name, prob, err := opts.load(path)
	if err != nil {
		return err
	}
	log.Info("problem loaded", "instance", name, "jobs", prob.NumJobs(), "machines", prob.Machines, "operations", prob.NumOps())

	optimizer, err := opts.optimizer(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	res, err := optimizer.Solve(ctx, prob)
	if err != nil {
		return WrapExitError(ExitFailure, "solve failed", err)
	}
	if res.Stopped {
		log.Warn("search stopped early, reporting best schedule so far", "iterations", res.Iterations)
	}
	log.Info("search finished",
		"makespan", res.Makespan,
		"feasible", res.Feasible,
		"evaluations", res.Evaluations,
		"duration", res.Duration,
	)

	out := cmd.OutOrStdout()
	printResult(out, name, strings.ToUpper(opts.Algo), opts.Seed, res)

	if opts.Gantt {
		if err := gantt.Render(out, res.Plan, gantt.Options{Width: opts.Width, Color: opts.Color, Legend: true}); err != nil {
			return WrapExitError(ExitFailure, "failed to render gantt chart", err)
		}
	}

	if opts.Database != "" {
		id, err := saveRun(ctx, opts.Database, name, strings.ToUpper(opts.Algo), opts.Seed, res)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "saved run: %s\n", id)
	}
	return nil
}

// optimizer собирает оптимизатор из файла конфигурации и флагов командной строки.
func (opts *SolveOptions) optimizer(cmd *cobra.Command) (opt.Optimizer, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	changed := cmd.Flags().Changed
	rng := rand.New(rand.NewSource(opts.Seed))

	switch strings.ToLower(opts.Algo) {
	case "sa":
		c := cfg.Anneal
		if changed("iterations") {
			c.Iterations = opts.Iterations
		}
		if changed("cooling-ratio") {
			c.CoolingRatio = opts.CoolingRatio
		}
		if changed("initial") {
			c.InitialMethod = jobshop.InitialMethod(opts.Initial)
		}
		if changed("neighborhood") {
			c.Neighborhood = jobshop.Neighborhood(opts.Neighborhood)
		}
		solver, err := sa.New(c, rng)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid annealing configuration", err)
		}
		solver.Hook = progressLogger(opts.Logger)
		opts.Logger.Debug("annealing", "levels", c.Levels(), "iterations_per_level", c.Iterations)
		return solver, nil
	case "ts":
		c := cfg.Tabu
		if changed("iterations") {
			c.Iterations = opts.Iterations
		}
		if changed("initial") {
			c.InitialMethod = jobshop.InitialMethod(opts.Initial)
		}
		if changed("neighborhood") {
			c.Neighborhood = jobshop.Neighborhood(opts.Neighborhood)
		}
		solver, err := ts.New(c, rng)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid tabu search configuration", err)
		}
		return solver, nil
	default:
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown algorithm %q: must be sa or ts", opts.Algo))
	}
}

// progressLogger пишет в debug-лог состояние отжига после каждого уровня
// температуры, включая изменение рекорда относительно первого уровня.
func progressLogger(log *slog.Logger) sa.Hook {
	first := -1
	return func(p sa.Progress) {
		if first < 0 {
			first = p.BestCost
		}
		delta := 0.0
		if first > 0 {
			delta = 100 * float64(p.BestCost-first) / float64(first)
		}
		log.Debug("temperature level",
			"level", p.Level,
			"temperature", p.Temperature,
			"current", p.CurrentCost,
			"best", p.BestCost,
			"delta_pct", delta,
			"accepted", p.Accepted,
			"evaluations", p.Evaluations,
		)
	}
}

func printResult(w io.Writer, name, algo string, seed int64, res opt.Result) {
	status := "feasible"
	if !res.Feasible {
		status = "infeasible"
	}
	fmt.Fprintf(w, "instance: %s\n", name)
	fmt.Fprintf(w, "algorithm: %s (seed %d)\n", algo, seed)
	fmt.Fprintf(w, "makespan: %d (%s)\n", res.Makespan, status)
	fmt.Fprintf(w, "evaluations: %d, iterations: %d, time: %s\n", res.Evaluations, res.Iterations, res.Duration.Round(time.Millisecond))
	if res.Stopped {
		fmt.Fprintln(w, "stopped: yes")
	}
	fmt.Fprintf(w, "fingerprint: %s\n", res.Solution.Fingerprint())
}

func saveRun(ctx context.Context, path, instance, algo string, seed int64, res opt.Result) (string, error) {
	st, err := store.Open(path)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	// Сохраняем даже после отмены поиска.
	id, err := st.SaveRun(context.WithoutCancel(ctx), instance, algo, seed, res)
	if err != nil {
		return "", WrapExitError(ExitFailure, "failed to save run", err)
	}
	return id, nil
}
