package convert

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/bopkit/bopprep/internal/command"
	"github.com/bopkit/bopprep/internal/config"
	ioutils "github.com/bopkit/bopprep/internal/io"
	"github.com/bopkit/bopprep/internal/model"
)

// Converter module names, run with "python -m".
const (
	ImagewiseModule  = "src.scripts.convert_scenewise_to_imagewise"
	WebDatasetModule = "src.scripts.convert_imagewise_to_webdataset"
)

// Options selects how the converters are invoked.
type Options struct {
	// Python is the interpreter used to run the converter modules.
	Python string

	// Workdir is the directory the converters run in; the modules must be
	// importable from it.
	Workdir string

	ImagewiseModule  string
	WebDatasetModule string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Python:           "python",
		ImagewiseModule:  ImagewiseModule,
		WebDatasetModule: WebDatasetModule,
	}
}

// OptionsFromSettings builds Options from loaded settings.
func OptionsFromSettings(s *config.Settings) Options {
	opts := DefaultOptions()
	if s.Python != "" {
		opts.Python = s.Python
	}
	opts.Workdir = s.Workdir
	return opts
}

// Processor converts one dataset.
type Processor struct {
	dataset *model.Dataset
	opts    Options
	runner  command.Runner

	stepsDone int32

	onProgress model.ProgressFunc
}

// NewProcessor creates a Processor. Empty module names in opts fall back to
// the defaults.
func NewProcessor(ds *model.Dataset, opts Options, runner command.Runner, onProgress model.ProgressFunc) *Processor {
	if opts.Python == "" {
		opts.Python = "python"
	}
	if opts.ImagewiseModule == "" {
		opts.ImagewiseModule = ImagewiseModule
	}
	if opts.WebDatasetModule == "" {
		opts.WebDatasetModule = WebDatasetModule
	}
	return &Processor{
		dataset:    ds,
		opts:       opts,
		runner:     runner,
		onProgress: onProgress,
	}
}

// Plan returns the scenewise to imagewise command followed by the imagewise
// to WebDataset command.
func (p *Processor) Plan() []command.Command {
	return []command.Command{p.imagewiseCommand(), p.webDatasetCommand()}
}

func (p *Processor) imagewiseCommand() command.Command {
	ds := p.dataset
	return command.Command{
		Name: p.opts.Python,
		Args: []string{
			"-m", p.opts.ImagewiseModule,
			"--input", ds.SplitDir,
			"--output", ds.ImagewiseDir,
			"--nprocs", strconv.Itoa(ds.Nprocs),
		},
		Dir: p.opts.Workdir,
	}
}

func (p *Processor) webDatasetCommand() command.Command {
	ds := p.dataset
	args := []string{
		"-m", p.opts.WebDatasetModule,
		"--input", ds.ImagewiseDir,
		"--output", ds.SplitDir,
	}
	if model.WebDatasetTakesNprocs(ds.Name) {
		args = append(args, "--nprocs", strconv.Itoa(ds.Nprocs))
	}
	return command.Command{Name: p.opts.Python, Args: args, Dir: p.opts.Workdir}
}

// Run prepares the directories and runs both conversions in order.
func (p *Processor) Run(ctx context.Context) error {
	ds := p.dataset

	for _, dir := range []string{ds.Root, ds.TmpDir, ds.ImagewiseDir} {
		if err := ioutils.EnsureDir(dir); err != nil {
			p.onProgress.Emit(model.LevelError, err.Error())
			return err
		}
	}
	p.onProgress.Emit(model.LevelVerbose, fmt.Sprintf("Dataset %s uses split %s", ds.Name, ds.Split))

	if err := p.runStep(ctx, p.imagewiseCommand()); err != nil {
		return err
	}

	if !model.WebDatasetTakesNprocs(ds.Name) {
		p.onProgress.Emit(model.LevelWarning, fmt.Sprintf("WebDataset conversion of %s runs without --nprocs", ds.Name))
	}
	if err := p.runStep(ctx, p.webDatasetCommand()); err != nil {
		return err
	}

	p.onProgress.Emit(model.LevelSuccess, fmt.Sprintf("Processing complete. WebDataset output is in: %s", ds.SplitDir))
	return nil
}

func (p *Processor) runStep(ctx context.Context, cmd command.Command) error {
	p.onProgress.Emit(model.LevelInfo, fmt.Sprintf("Running: %s", cmd))
	if err := p.runner.Run(ctx, cmd); err != nil {
		p.onProgress.Emit(model.LevelError, err.Error())
		return err
	}
	atomic.AddInt32(&p.stepsDone, 1)
	return nil
}

// Progress returns the number of finished conversion steps and the total.
func (p *Processor) Progress() (done, total int32) {
	return atomic.LoadInt32(&p.stepsDone), 2
}

// Dataset returns the dataset being processed.
func (p *Processor) Dataset() *model.Dataset {
	return p.dataset
}
