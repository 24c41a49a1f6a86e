package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"jobShop/internal/bench"
	"jobShop/internal/store"
	"jobShop/internal/taillard"
)

type BenchOptions struct {
	*RootOptions

	Catalog   string
	Instances []string
	Base      int
	Database  string
	Out       string
	Algos     []string
	Runs      int
	Seed      int64
}

func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BenchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bench [problem-file...]",
		Short: "Run optimizers repeatedly and collect statistics",
		Long: `Run every selected optimizer several times with consecutive seeds on each
problem and write makespan and time statistics to a CSV file.

Problems come from files given as arguments and from a seed catalog
(all instances, or the ones listed with --instances).

Example:
  jobshop bench --catalog seeds.yaml --instances ta01,ta02 --runs 5
  jobshop bench ft06.txt ft10.txt --algos sa --db runs.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "YAML seed catalog of generated instances")
	cmd.Flags().StringSliceVar(&opts.Instances, "instances", nil, "catalog instances to run (default: all)")
	cmd.Flags().IntVar(&opts.Base, "base", 0, "machine numbering base in problem files (0 or 1)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "save every run to this SQLite database")
	cmd.Flags().StringVar(&opts.Out, "out", "", "output CSV path (default from configuration)")
	cmd.Flags().StringSliceVar(&opts.Algos, "algos", nil, "optimizers to run: SA, TS (default from configuration)")
	cmd.Flags().IntVar(&opts.Runs, "runs", 0, "runs per optimizer and problem (default from configuration)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "seed of the first run (default from configuration)")

	return cmd
}

func runBench(cmd *cobra.Command, opts *BenchOptions, files []string) error {
	log := opts.Logger

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	changed := cmd.Flags().Changed
	if changed("out") {
		cfg.Bench.Out = opts.Out
	}
	if changed("algos") {
		cfg.Bench.Algos = opts.Algos
	}
	if changed("runs") {
		cfg.Bench.Runs = opts.Runs
	}
	if changed("seed") {
		cfg.Bench.BaseSeed = opts.Seed
	}
	if err := cfg.Bench.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid bench configuration", err)
	}

	cases, err := opts.cases(files)
	if err != nil {
		return err
	}

	available := map[string]bench.Algorithm{
		"SA": {Name: "SA", Factory: bench.NewSAFactory(cfg.Anneal, nil)},
		"TS": {Name: "TS", Factory: bench.NewTSFactory(cfg.Tabu)},
	}
	selected, err := bench.Select(available, cfg.Bench.Algos)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid algorithm list", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runner := bench.Runner{
		Runs:          cfg.Bench.Runs,
		BaseSeed:      cfg.Bench.BaseSeed,
		PerRunTimeout: cfg.Bench.PerRunTimeout,
		Logger:        log,
	}

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		runner.OnRun = saveRunHook(ctx, st)
	}

	out := cmd.OutOrStdout()
	var records []bench.Record
	for _, c := range cases {
		for _, a := range selected {
			log.Info("bench started", "algo", a.Name, "instance", c.Name, "jobs", c.Problem.NumJobs(), "machines", c.Problem.Machines, "runs", runner.Runs)

			rec, err := runner.RunCase(ctx, c, a)
			if err != nil {
				return WrapExitError(ExitFailure, fmt.Sprintf("bench %s on %s", a.Name, c.Name), err)
			}
			records = append(records, rec)

			fmt.Fprintf(out, "%-4s %-12s best=%d mean=%.2f std=%.2f distinct=%d infeasible=%d | time mean=%.2fms std=%.2fms\n",
				rec.Algo, rec.Instance,
				rec.MakespanBest, rec.MakespanMean, rec.MakespanStd,
				rec.Distinct, rec.Infeasible,
				rec.TimeMeanMs, rec.TimeStdMs,
			)
		}
	}

	if err := bench.SaveCSV(cfg.Bench.Out, records); err != nil {
		return WrapExitError(ExitFailure, "failed to write CSV", err)
	}
	fmt.Fprintf(out, "saved: %s\n", cfg.Bench.Out)
	return nil
}

// saveRunHook записывает каждый запуск в хранилище. Отмена ctx на запись
// не влияет: запуск, остановленный сигналом, тоже сохраняется.
func saveRunHook(ctx context.Context, st *store.Store) func(bench.Run) error {
	ctx = context.WithoutCancel(ctx)
	return func(r bench.Run) error {
		_, err := st.SaveRun(ctx, r.Instance, r.Algo, r.Seed, r.Result)
		return err
	}
}

func (opts *BenchOptions) cases(files []string) ([]bench.Case, error) {
	var cases []bench.Case
	for _, path := range files {
		pf := problemFlags{Base: opts.Base}
		name, p, err := pf.load(path)
		if err != nil {
			return nil, err
		}
		cases = append(cases, bench.Case{Name: name, Problem: p})
	}

	if opts.Catalog != "" {
		cat, err := taillard.LoadCatalog(opts.Catalog)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load seed catalog", err)
		}
		names := opts.Instances
		if len(names) == 0 {
			names = cat.Names()
		}
		for _, name := range names {
			name = strings.TrimSpace(name)
			p, err := cat.Problem(name)
			if err != nil {
				return nil, WrapExitError(ExitCommandError, "failed to generate instance", err)
			}
			cases = append(cases, bench.Case{Name: name, Problem: p})
		}
	} else if len(opts.Instances) > 0 {
		return nil, NewExitError(ExitCommandError, "--instances requires --catalog")
	}

	if len(cases) == 0 {
		return nil, NewExitError(ExitCommandError, "no problems: pass problem files or --catalog")
	}
	return cases, nil
}
