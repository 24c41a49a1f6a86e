package cli

import (
	"context"
	"errors"

	"jobShop/internal/jobshop"
)

// Коды завершения процесса.
const (
	ExitSuccess      = 0
	ExitFailure      = 1   // поиск, хранилище или запись результатов
	ExitCommandError = 2   // флаги, файл задачи, каталог сидов, конфигурация
	ExitInterrupted  = 130 // прервано сигналом
)

// ExitError связывает ошибку команды с кодом завершения.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	switch {
	case e.Err == nil:
		return e.Message
	case e.Message == "":
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// inputErrors — ошибки входных данных задачи. Команда с такой ошибкой
// завершается с ExitCommandError, какой бы код ни был указан при обёртке.
var inputErrors = []error{
	jobshop.ErrMalformed,
	jobshop.ErrInvalidProblem,
}

// GetExitCode выбирает код завершения: прерывание, затем ошибки входных
// данных, затем код из ExitError; остальное — ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	for _, target := range inputErrors {
		if errors.Is(err, target) {
			return ExitCommandError
		}
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
