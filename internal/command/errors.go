package command

import "errors"

// Domain errors for the command package.
var (
	// ErrUnknownCommand is returned when the command name is not in the set.
	ErrUnknownCommand = errors.New("command: unknown command")

	// ErrMissingArgument is returned when a command that takes an argument
	// is dispatched without one.
	ErrMissingArgument = errors.New("command: missing argument")

	// ErrUnexpectedArgument is returned when an argument is supplied to a
	// command that takes none.
	ErrUnexpectedArgument = errors.New("command: unexpected argument")

	// ErrInvalidArgument is returned when the argument fails validation.
	ErrInvalidArgument = errors.New("command: invalid argument")
)
