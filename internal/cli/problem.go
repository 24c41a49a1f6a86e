package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"jobShop/internal/jobshop"
	"jobShop/internal/taillard"
)

// problemFlags задают источник задачи: файл или экземпляр из каталога сидов.
type problemFlags struct {
	Base     int
	Catalog  string
	Instance string
}

func (pf *problemFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&pf.Base, "base", 0, "machine numbering base in problem files (0 or 1)")
	cmd.Flags().StringVar(&pf.Catalog, "catalog", "", "YAML seed catalog of generated instances")
	cmd.Flags().StringVar(&pf.Instance, "instance", "", "instance name from the seed catalog")
}

// load возвращает имя и задачу: из файла path либо из каталога по --instance.
func (pf *problemFlags) load(path string) (string, *jobshop.Problem, error) {
	if pf.Instance != "" {
		if path != "" {
			return "", nil, NewExitError(ExitCommandError, "pass either a problem file or --instance, not both")
		}
		if pf.Catalog == "" {
			return "", nil, NewExitError(ExitCommandError, "--instance requires --catalog")
		}
		cat, err := taillard.LoadCatalog(pf.Catalog)
		if err != nil {
			return "", nil, WrapExitError(ExitCommandError, "failed to load seed catalog", err)
		}
		p, err := cat.Problem(pf.Instance)
		if err != nil {
			return "", nil, WrapExitError(ExitCommandError, "failed to generate instance", err)
		}
		return pf.Instance, p, nil
	}
	if path == "" {
		return "", nil, NewExitError(ExitCommandError, "problem file or --instance is required")
	}
	p, err := jobshop.LoadProblem(path, pf.Base)
	if err != nil {
		return "", nil, WrapExitError(ExitCommandError, "failed to load problem", err)
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), p, nil
}
