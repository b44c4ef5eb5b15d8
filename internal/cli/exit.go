package cli

import (
	"errors"

	"github.com/rshade/dexter/internal/form"
	"github.com/rshade/dexter/internal/pokeapi"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitNotFound   = 2
	ExitValidation = 3
)

// ExitError carries an explicit exit code out of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if pokeapi.IsNotFound(err) {
		return ExitNotFound
	}
	var verrs form.ValidationErrors
	if errors.As(err, &verrs) {
		return ExitValidation
	}
	return ExitFailure
}

// UserMessage is the text printed for err: the bare not-found message rather
// than its wrapping chain.
func UserMessage(err error) string {
	if pokeapi.IsNotFound(err) {
		return pokeapi.ErrNotFound.Error()
	}
	return err.Error()
}
