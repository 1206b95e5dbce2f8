package cli

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"

	"github.com/bopkit/bopprep/internal/command"
	"github.com/bopkit/bopprep/internal/config"
	"github.com/bopkit/bopprep/internal/logging"
)

// Exit codes.
const (
	ExitFailure   = 1
	ExitUsage     = 2
	ExitCancelled = 130
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Env carries the process environment a command runs against.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer

	// Runner executes external programs. Nil means a passthrough ExecRunner.
	Runner command.Runner
}

func (e Env) runner() command.Runner {
	if e.Runner != nil {
		return e.Runner
	}
	return command.NewExecRunner()
}

// commonFlags are shared by every command.
type commonFlags struct {
	config    *string
	logLevel  *string
	logFormat *string
}

func registerCommon(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config:    fs.String("config", config.DefaultPath, "Path to the HCL settings file."),
		logLevel:  fs.String("log-level", "", "Logging level: debug, info, warn or error (overrides config)."),
		logFormat: fs.String("log-format", "", "Log output format: text or json (overrides config)."),
	}
}

// load reads the settings file and applies the logging overrides.
func (c commonFlags) load() (*config.Settings, error) {
	settings, err := config.Load(*c.config)
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	if *c.logLevel != "" {
		settings.Log.Level = *c.logLevel
	}
	if *c.logFormat != "" {
		settings.Log.Format = *c.logFormat
	}
	return settings, nil
}

func newLogger(settings *config.Settings, w io.Writer) *slog.Logger {
	return logging.WithRunID(logging.New(settings.Log.Level, settings.Log.Format, w))
}

// parse runs fs.Parse and converts its errors. The boolean reports a
// request for help.
func parse(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return true, nil
		}
		return false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	if fs.NArg() > 0 {
		return false, &ExitError{Code: ExitUsage, Message: "unexpected arguments: " + fs.Arg(0)}
	}
	return false, nil
}

// failure wraps err for the caller, distinguishing cancellation.
func failure(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return &ExitError{Code: ExitCancelled, Message: "cancelled"}
	}
	return &ExitError{Code: ExitFailure, Message: err.Error()}
}
