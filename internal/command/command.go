package command

import (
	"context"
	"fmt"
	"strings"
)

// Command is a program invocation described as an argument list.
type Command struct {
	// Name is the program to run, looked up in PATH when it has no separator.
	Name string

	// Args are passed to the program verbatim.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string
}

// String renders the command as space separated text.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	parts = append(parts, c.Args...)
	return strings.Join(parts, " ")
}

// Runner executes commands.
type Runner interface {
	// Run starts the command and waits for it. A non-zero exit status is
	// reported as *ExitError.
	Run(ctx context.Context, cmd Command) error
}

// ExitError reports a command that finished with a non-zero exit status or
// was terminated by a signal.
type ExitError struct {
	Command string
	Code    int

	// Signal names the terminating signal. Code is then the negated signal
	// number.
	Signal string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Signal != "" {
		return fmt.Sprintf("command failed with return code %d (%s): %s", e.Code, e.Signal, e.Command)
	}
	return fmt.Sprintf("command failed with return code %d: %s", e.Code, e.Command)
}
