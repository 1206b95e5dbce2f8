package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ioutils "github.com/bopkit/bopprep/internal/io"
	"github.com/bopkit/bopprep/internal/model"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// DefaultPath is where the command line tools look for settings.
const DefaultPath = "configs/machine.hcl"

// Fetcher and extractor names accepted in the templates block.
const (
	FetcherWget     = "wget"
	FetcherHTTP     = "http"
	ExtractorUnzip  = "unzip"
	ExtractorNative = "zip"
)

// Settings holds all configuration options.
type Settings struct {
	Machine MachineSettings `hcl:"machine,block"`

	// Converter settings
	Python  string `hcl:"python"`
	Workdir string `hcl:"workdir"`
	Nprocs  int    `hcl:"nprocs"`

	Templates TemplateSettings `hcl:"templates,block"`
	Log       LogSettings      `hcl:"log,block"`
}

// MachineSettings describes the host the tools run on.
type MachineSettings struct {
	// RootDir is the base directory datasets and templates live under.
	RootDir string `hcl:"root_dir"`
}

// TemplateSettings controls the template downloader.
type TemplateSettings struct {
	URL           string `hcl:"url"`
	Fetcher       string `hcl:"fetcher"`   // wget, http
	Extractor     string `hcl:"extractor"` // unzip, zip
	RemoveArchive bool   `hcl:"remove_archive"`
	MaxRetries    int    `hcl:"max_retries"`
}

// LogSettings selects the slog handler.
type LogSettings struct {
	Level  string `hcl:"level"`  // debug, info, warn, error
	Format string `hcl:"format"` // text, json
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		Python:  "python",
		Workdir: "",
		Nprocs:  model.DefaultNprocs,

		Templates: TemplateSettings{
			URL:        model.DefaultTemplatesURL,
			Fetcher:    FetcherWget,
			Extractor:  ExtractorUnzip,
			MaxRetries: 1,
		},

		Log: LogSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

// fileSettings mirrors Settings with every field optional, so a file only
// overrides what it sets.
type fileSettings struct {
	Machine   *fileMachine   `hcl:"machine,block"`
	Python    *string        `hcl:"python,optional"`
	Workdir   *string        `hcl:"workdir,optional"`
	Nprocs    *int           `hcl:"nprocs,optional"`
	Templates *fileTemplates `hcl:"templates,block"`
	Log       *fileLog       `hcl:"log,block"`
}

type fileMachine struct {
	RootDir *string `hcl:"root_dir,optional"`
}

type fileTemplates struct {
	URL           *string `hcl:"url,optional"`
	Fetcher       *string `hcl:"fetcher,optional"`
	Extractor     *string `hcl:"extractor,optional"`
	RemoveArchive *bool   `hcl:"remove_archive,optional"`
	MaxRetries    *int    `hcl:"max_retries,optional"`
}

type fileLog struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

// Load reads settings from an HCL file.
//
// A missing file yields the defaults. Expressions may reference environment
// variables as env.NAME, e.g. root_dir = "${env.HOME}/gigapose".
func Load(path string) (*Settings, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}
	return Parse(filepath.Base(path), src)
}

// Parse decodes source over the defaults. A filename ending in .json selects
// HCL's JSON syntax; any other name is read as native HCL. The filename also
// labels diagnostics.
func Parse(filename string, src []byte) (*Settings, error) {
	parser := hclparse.NewParser()
	var file *hcl.File
	var diags hcl.Diagnostics
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		file, diags = parser.ParseJSON(src, filename)
	} else {
		file, diags = parser.ParseHCL(src, filename)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %w", filename, diags)
	}

	var f fileSettings
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &f); diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %w", filename, diags)
	}

	settings := DefaultSettings()
	f.applyTo(settings)
	return settings, nil
}

func (f *fileSettings) applyTo(s *Settings) {
	if f.Machine != nil {
		setString(&s.Machine.RootDir, f.Machine.RootDir)
	}
	setString(&s.Python, f.Python)
	setString(&s.Workdir, f.Workdir)
	if f.Nprocs != nil {
		s.Nprocs = *f.Nprocs
	}
	if t := f.Templates; t != nil {
		setString(&s.Templates.URL, t.URL)
		setString(&s.Templates.Fetcher, t.Fetcher)
		setString(&s.Templates.Extractor, t.Extractor)
		if t.RemoveArchive != nil {
			s.Templates.RemoveArchive = *t.RemoveArchive
		}
		if t.MaxRetries != nil {
			s.Templates.MaxRetries = *t.MaxRetries
		}
	}
	if l := f.Log; l != nil {
		setString(&s.Log.Level, l.Level)
		setString(&s.Log.Format, l.Format)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// evalContext exposes the process environment as the env object.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" || !hclIdentifier(name) {
			continue
		}
		vars[name] = cty.StringVal(value)
	}

	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}

// hclIdentifier reports whether name can be used after "env." in an expression.
func hclIdentifier(name string) bool {
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return false
		}
	}
	return true
}

// Save writes settings to an HCL file.
func (s *Settings) Save(path string) error {
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	f := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(s, f.Body())

	return os.WriteFile(path, f.Bytes(), 0644)
}

// Validate checks every setting.
func (s *Settings) Validate() error {
	errs := append(s.processErrors(), s.templateErrors()...)
	return errors.Join(append(errs, s.Log.validate()...)...)
}

// ValidateProcess checks the settings the dataset processor uses.
func (s *Settings) ValidateProcess() error {
	return errors.Join(append(s.processErrors(), s.Log.validate()...)...)
}

// ValidateTemplates checks the settings the template downloader uses.
func (s *Settings) ValidateTemplates() error {
	return errors.Join(append(s.templateErrors(), s.Log.validate()...)...)
}

func (s *Settings) processErrors() []error {
	var errs []error
	if s.Nprocs <= 0 {
		errs = append(errs, fmt.Errorf("nprocs must be positive, got %d", s.Nprocs))
	}
	if s.Python == "" {
		errs = append(errs, errors.New("python must not be empty"))
	}
	return errs
}

func (s *Settings) templateErrors() []error {
	var errs []error
	switch s.Templates.Fetcher {
	case FetcherWget, FetcherHTTP:
	default:
		errs = append(errs, fmt.Errorf("templates.fetcher must be %q or %q, got %q", FetcherWget, FetcherHTTP, s.Templates.Fetcher))
	}
	switch s.Templates.Extractor {
	case ExtractorUnzip, ExtractorNative:
	default:
		errs = append(errs, fmt.Errorf("templates.extractor must be %q or %q, got %q", ExtractorUnzip, ExtractorNative, s.Templates.Extractor))
	}
	if s.Templates.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("templates.max_retries must be at least 1, got %d", s.Templates.MaxRetries))
	}
	return errs
}

func (l LogSettings) validate() []error {
	var errs []error
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", l.Level))
	}
	switch l.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", l.Format))
	}
	return errs
}

// RequireRoot returns an error when no machine root directory is configured.
func (s *Settings) RequireRoot() error {
	if s.Machine.RootDir == "" {
		return errors.New("machine.root_dir is not set")
	}
	return nil
}

// TemplateBundle builds the template layout from the configured root and URL.
func (s *Settings) TemplateBundle() *model.TemplateBundle {
	return model.NewTemplateBundle(s.Machine.RootDir, s.Templates.URL)
}
