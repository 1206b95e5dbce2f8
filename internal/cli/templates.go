package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/bopkit/bopprep/internal/download"
	ioutils "github.com/bopkit/bopprep/internal/io"
	"github.com/bopkit/bopprep/internal/logging"
)

// Templates implements bop-templates: fetch the rendered template archive
// and install it under <machine.root_dir>/datasets/templates.
func Templates(ctx context.Context, args []string, env Env) error {
	fs := flag.NewFlagSet("bop-templates", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() {
		fmt.Fprint(env.Stderr, `
bop-templates - Download and install the rendered templates.

The install root is machine.root_dir from the settings file.

Usage:
  bop-templates [options]

Options:
`)
		fs.PrintDefaults()
	}

	root := fs.String("root", "", "Machine root directory (overrides machine.root_dir).")
	initConfig := fs.Bool("init-config", false, "Write a default settings file to --config and exit.")
	common := registerCommon(fs)

	help, err := parse(fs, args)
	if err != nil || help {
		return err
	}

	settings, err := common.load()
	if err != nil {
		return err
	}
	if *root != "" {
		settings.Machine.RootDir = *root
	}

	if *initConfig {
		if ioutils.Exists(*common.config) {
			return &ExitError{Code: ExitUsage, Message: *common.config + " already exists"}
		}
		if err := settings.Save(*common.config); err != nil {
			return &ExitError{Code: ExitFailure, Message: err.Error()}
		}
		fmt.Fprintf(env.Stdout, "Wrote %s\n", *common.config)
		return nil
	}

	if err := settings.ValidateTemplates(); err != nil {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	if err := settings.RequireRoot(); err != nil {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	logger := newLogger(settings, env.Stderr)
	ctx = logging.WithLogger(ctx, logger)

	manager := download.NewManagerFromSettings(settings, env.runner(), logging.ProgressLogger(logger))
	status, err := manager.Run(ctx)
	if err != nil {
		return failure(ctx, err)
	}
	if status != download.StatusInstalled {
		return &ExitError{Code: ExitFailure, Message: "templates not installed: " + status.String()}
	}
	return nil
}
