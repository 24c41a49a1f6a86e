package cli

import (
	"os"

	"github.com/spf13/cobra"

	"jobShop/internal/jobshop"
	"jobShop/internal/taillard"
)

type GenerateOptions struct {
	*RootOptions

	TimeSeed    int64
	MachineSeed int64
	Jobs        int
	Machines    int
	Catalog     string
	Instance    string
	Base        int
	Out         string
}

func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a Taillard benchmark instance",
		Long: `Generate a job-shop instance with Taillard's generator and write it in the
problem file format. The instance is given either by explicit seeds and size
or by name from a seed catalog.

Example:
  jobshop generate --time-seed 840612802 --machine-seed 398197754 --jobs 15 --machines 15
  jobshop generate --catalog seeds.yaml --instance ta01 --base 1 -o ta01.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().Int64Var(&opts.TimeSeed, "time-seed", 0, "seed of processing times")
	cmd.Flags().Int64Var(&opts.MachineSeed, "machine-seed", 0, "seed of machine orders")
	cmd.Flags().IntVar(&opts.Jobs, "jobs", 0, "number of jobs")
	cmd.Flags().IntVar(&opts.Machines, "machines", 0, "number of machines")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "YAML seed catalog")
	cmd.Flags().StringVar(&opts.Instance, "instance", "", "instance name from the seed catalog")
	cmd.Flags().IntVar(&opts.Base, "base", 0, "machine numbering base in the output (0 or 1)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (default: stdout)")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions) error {
	var (
		p   *jobshop.Problem
		err error
	)
	if opts.Instance != "" {
		pf := problemFlags{Catalog: opts.Catalog, Instance: opts.Instance}
		if _, p, err = pf.load(""); err != nil {
			return err
		}
	} else {
		p, err = taillard.Generate(opts.TimeSeed, opts.MachineSeed, opts.Jobs, opts.Machines)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to generate instance", err)
		}
	}
	opts.Logger.Debug("instance generated", "jobs", p.NumJobs(), "machines", p.Machines, "total_duration", p.TotalDuration())

	if opts.Out == "" {
		if err := jobshop.FormatProblem(cmd.OutOrStdout(), p, opts.Base); err != nil {
			return WrapExitError(ExitFailure, "failed to write instance", err)
		}
		return nil
	}
	if err := writeProblemFile(opts.Out, p, opts.Base); err != nil {
		return err
	}
	opts.Logger.Info("instance written", "path", opts.Out)
	return nil
}

// writeProblemFile записывает задачу в path. Ошибка закрытия файла
// возвращается наравне с ошибкой записи.
func writeProblemFile(path string, p *jobshop.Problem, base int) error {
	f, err := os.Create(path)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to create output file", err)
	}
	if err := jobshop.FormatProblem(f, p, base); err != nil {
		f.Close()
		return WrapExitError(ExitFailure, "failed to write instance", err)
	}
	if err := f.Close(); err != nil {
		return WrapExitError(ExitFailure, "failed to close output file", err)
	}
	return nil
}
