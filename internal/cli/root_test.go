package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobShop/internal/jobshop"
	"jobShop/internal/store"
)

// execute запускает корневую команду с аргументами и возвращает stdout и stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "jobshop", cmd.Use)
	assert.Contains(t, cmd.Long, "simulated annealing")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"solve", "bench", "generate", "runs"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("log-format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	cfg := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, cfg)
	assert.Equal(t, "c", cfg.Shorthand)
}

func TestInvalidLogFormat(t *testing.T) {
	_, _, err := execute(t, "generate", "--log-format", "xml", "--time-seed", "1", "--machine-seed", "2", "--jobs", "2", "--machines", "2")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	inner := errors.New("inner")
	err := WrapExitError(ExitCommandError, "outer", inner)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "outer: inner", err.Error())
	assert.Equal(t, "bare", NewExitError(ExitFailure, "bare").Error())
	assert.Equal(t, "inner", WrapExitError(ExitFailure, "", inner).Error())
}

func TestGetExitCode_DomainErrors(t *testing.T) {
	malformed := fmt.Errorf("twobytwo.txt: %w", jobshop.ErrMalformed)
	assert.Equal(t, ExitCommandError, GetExitCode(malformed))
	// Ошибка входных данных важнее кода, указанного при обёртке.
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitFailure, "solve failed", malformed)))

	_, err := jobshop.NewProblem(0, nil)
	require.ErrorIs(t, err, jobshop.ErrInvalidProblem)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	interrupted := WrapExitError(ExitFailure, "bench SA on ta01", fmt.Errorf("run 3: %w", context.Canceled))
	assert.Equal(t, ExitInterrupted, GetExitCode(interrupted))

	assert.Equal(t, ExitFailure, GetExitCode(WrapExitError(ExitFailure, "no runs", store.ErrNotFound)))
}
