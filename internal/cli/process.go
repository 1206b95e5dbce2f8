package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/bopkit/bopprep/internal/convert"
	"github.com/bopkit/bopprep/internal/logging"
	"github.com/bopkit/bopprep/internal/model"
)

// Process implements bop-process: convert a BOP dataset from scenewise to
// imagewise layout and then to WebDataset shards.
func Process(ctx context.Context, args []string, env Env) error {
	fs := flag.NewFlagSet("bop-process", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() {
		fmt.Fprint(env.Stderr, `
bop-process - Convert a BOP-format dataset to WebDataset shards.

Usage:
  bop-process --local_dir DIR --dataset_name NAME [options]

Options:
`)
		fs.PrintDefaults()
	}

	localDir := fs.String("local_dir", "", "Path to the BOP-format dataset directory (required).")
	datasetName := fs.String("dataset_name", "", "Name of the dataset, e.g. 'ycbv' (required).")
	nprocs := fs.Int("nprocs", model.DefaultNprocs, "Number of processes for conversion.")
	python := fs.String("python", "", "Python interpreter running the converters (overrides config).")
	workdir := fs.String("workdir", "", "Directory the converters run in (overrides config).")
	dryRun := fs.Bool("dry-run", false, "Print the conversion commands without running them.")
	common := registerCommon(fs)

	help, err := parse(fs, args)
	if err != nil || help {
		return err
	}

	if *localDir == "" || *datasetName == "" {
		fs.Usage()
		return &ExitError{Code: ExitUsage, Message: "--local_dir and --dataset_name are required"}
	}

	settings, err := common.load()
	if err != nil {
		return err
	}
	if *python != "" {
		settings.Python = *python
	}
	if *workdir != "" {
		settings.Workdir = *workdir
	}
	// An explicit flag wins over the settings file.
	nprocsSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "nprocs" {
			nprocsSet = true
		}
	})
	if nprocsSet {
		settings.Nprocs = *nprocs
	}
	if err := settings.ValidateProcess(); err != nil {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	ds, err := model.NewDataset(*localDir, *datasetName, settings.Nprocs)
	if err != nil {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	logger := newLogger(settings, env.Stderr).With("dataset", ds.Name)
	ctx = logging.WithLogger(ctx, logger)

	processor := convert.NewProcessor(ds, convert.OptionsFromSettings(settings), env.runner(), logging.ProgressLogger(logger))

	if *dryRun {
		for _, cmd := range processor.Plan() {
			fmt.Fprintln(env.Stdout, cmd.String())
		}
		return nil
	}

	logger.Info("processing dataset", "root", ds.Root, "split", ds.Split, "nprocs", ds.Nprocs)
	if err := processor.Run(ctx); err != nil {
		return failure(ctx, err)
	}
	return nil
}
