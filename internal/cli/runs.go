package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"jobShop/internal/store"
)

type RunsOptions struct {
	*RootOptions

	Database string
	Instance string
	Limit    int
	Best     bool
}

func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List saved runs",
		Long: `List runs saved with --db, newest first, or show the best run of an instance.

Example:
  jobshop runs --db runs.db --instance ta01 --limit 10
  jobshop runs --db runs.db --instance ta01 --best`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Instance, "instance", "", "only runs of this instance")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs; 0 = all")
	cmd.Flags().BoolVar(&opts.Best, "best", false, "show only the best run of --instance")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRuns(cmd *cobra.Command, opts *RunsOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	var runs []store.Run
	if opts.Best {
		if opts.Instance == "" {
			return NewExitError(ExitCommandError, "--best requires --instance")
		}
		best, err := st.BestRun(ctx, opts.Instance)
		if errors.Is(err, store.ErrNotFound) {
			return WrapExitError(ExitFailure, "no runs", err)
		}
		if err != nil {
			return WrapExitError(ExitFailure, "failed to read runs", err)
		}
		runs = []store.Run{best}
	} else {
		runs, err = st.ListRuns(ctx, opts.Instance, opts.Limit)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to read runs", err)
		}
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tINSTANCE\tALGO\tSEED\tMAKESPAN\tFEASIBLE\tSTOPPED\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%t\t%t\t%s\n",
			r.ID, r.Instance, r.Algo, r.Seed, r.Makespan, r.Feasible, r.Stopped,
			r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		)
	}
	return tw.Flush()
}
