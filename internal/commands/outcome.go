package commands

import (
	"context"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-treesync/pkg/interfaces"
)

type outcome string

const (
	outcomeSuccess      outcome = "success"
	outcomeFailed       outcome = "failed"
	outcomeContextError outcome = "context_error"
)

func classify(err error) outcome {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return outcomeContextError
	default:
		return outcomeFailed
	}
}

func (o outcome) log(logger interfaces.Logger, elapsed time.Duration, err error) {
	args := []any{"duration_ms", elapsed.Milliseconds()}
	switch o {
	case outcomeSuccess:
		logger.Info("command.execute.success", args...)
	case outcomeContextError:
		logger.Error("command.execute.context_error", append(args, "error", err)...)
	default:
		logger.Error("command.execute.failed", append(args, "error", err)...)
	}
}

// Errors already carrying a go-errors category pass through untouched.
func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode("COMMAND_VALIDATION_FAILED")
}

func wrapRunError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode("COMMAND_CONTEXT_CANCELED")
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode("COMMAND_CONTEXT_TIMEOUT")
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
			WithTextCode("COMMAND_EXECUTION_FAILED")
	}
}
