package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	codeValidation     = "ASAR_COMMAND_INVALID"
	codeCanceled       = "ASAR_COMMAND_CANCELED"
	codeTimeout        = "ASAR_COMMAND_TIMEOUT"
	codeContext        = "ASAR_COMMAND_CONTEXT"
	codeExecuteFailure = "ASAR_COMMAND_FAILED"
)

func wrapValidationError(err error) error {
	return wrap(err, goerrors.CategoryValidation, "command validation failed", codeValidation)
}

func wrapContextError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return wrap(err, goerrors.CategoryCommand, "command execution cancelled", codeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded", codeTimeout)
	default:
		return wrap(err, goerrors.CategoryCommand, "command context error", codeContext)
	}
}

func wrapExecuteError(err error) error {
	return wrap(err, goerrors.CategoryCommand, "command execution failed", codeExecuteFailure)
}

// wrap leaves already categorised errors alone.
func wrap(err error, category goerrors.Category, message, code string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, category, message).WithTextCode(code)
}
