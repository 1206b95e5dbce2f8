package download

import (
	"context"
	"fmt"
	"os"

	"github.com/bopkit/bopprep/internal/command"
	"github.com/bopkit/bopprep/internal/config"
	ioutils "github.com/bopkit/bopprep/internal/io"
	"github.com/bopkit/bopprep/internal/model"
)

// Status is the outcome of a template download run.
type Status int

const (
	// StatusInstalled means the templates were moved into place.
	StatusInstalled Status = iota
	// StatusMissingArchive means no archive existed after fetching.
	StatusMissingArchive
	// StatusMissingExtracted means the archive did not unpack to a templates folder.
	StatusMissingExtracted
)

// String returns a short description of the status.
func (s Status) String() string {
	switch s {
	case StatusInstalled:
		return "installed"
	case StatusMissingArchive:
		return "missing archive"
	case StatusMissingExtracted:
		return "missing extracted templates"
	}
	return "unknown"
}

// Manager installs the template archive under a machine root.
type Manager struct {
	bundle        *model.TemplateBundle
	fetcher       Fetcher
	extractor     Extractor
	removeArchive bool

	onProgress model.ProgressFunc
}

// NewManager creates a Manager with an explicit fetcher and extractor.
func NewManager(bundle *model.TemplateBundle, fetcher Fetcher, extractor Extractor, onProgress model.ProgressFunc) *Manager {
	return &Manager{
		bundle:     bundle,
		fetcher:    fetcher,
		extractor:  extractor,
		onProgress: onProgress,
	}
}

// NewManagerFromSettings picks the fetcher and extractor named in settings.
// Command based ones run through runner.
func NewManagerFromSettings(settings *config.Settings, runner command.Runner, onProgress model.ProgressFunc) *Manager {
	var fetcher Fetcher
	switch settings.Templates.Fetcher {
	case config.FetcherHTTP:
		fetcher = NewHTTPFetcher(settings.Templates.MaxRetries, onProgress)
	default:
		fetcher = &CommandFetcher{Runner: runner}
	}

	var extractor Extractor
	switch settings.Templates.Extractor {
	case config.ExtractorNative:
		extractor = ZipExtractor{}
	default:
		extractor = &CommandExtractor{Runner: runner}
	}

	m := NewManager(settings.TemplateBundle(), fetcher, extractor, onProgress)
	m.removeArchive = settings.Templates.RemoveArchive
	return m
}

// Bundle returns the paths the manager works with.
func (m *Manager) Bundle() *model.TemplateBundle {
	return m.bundle
}

// Run fetches, extracts and installs the templates.
//
// Fetch and extraction failures are only reported: what matters is whether
// the expected path exists afterwards. A missing path is reported as an
// error event and ends the run early with a non-installed Status and a nil
// error. The returned error is reserved for file system failures.
func (m *Manager) Run(ctx context.Context) (Status, error) {
	b := m.bundle

	if err := ioutils.EnsureDir(b.TmpDir); err != nil {
		m.onProgress.Emit(model.LevelError, err.Error())
		return StatusMissingArchive, err
	}

	m.onProgress.Emit(model.LevelInfo, fmt.Sprintf("Fetching %s to %s", b.URL, b.ArchivePath))
	if err := m.fetcher.Fetch(ctx, b.URL, b.ArchivePath); err != nil {
		if ctx.Err() != nil {
			return StatusMissingArchive, ctx.Err()
		}
		m.onProgress.Emit(model.LevelWarning, fmt.Sprintf("Fetch reported an error: %v", err))
	}

	if !ioutils.Exists(b.ArchivePath) {
		m.onProgress.Emit(model.LevelError, fmt.Sprintf("Failed to download %s. Exiting.", b.ArchivePath))
		return StatusMissingArchive, nil
	}

	m.onProgress.Emit(model.LevelInfo, fmt.Sprintf("Extracting %s to %s", b.ArchivePath, b.TmpDir))
	if err := m.extractor.Extract(ctx, b.ArchivePath, b.TmpDir); err != nil {
		if ctx.Err() != nil {
			return StatusMissingExtracted, ctx.Err()
		}
		m.onProgress.Emit(model.LevelWarning, fmt.Sprintf("Extraction reported an error: %v", err))
	}

	if !ioutils.Exists(b.ExtractedDir) {
		m.onProgress.Emit(model.LevelError, fmt.Sprintf(
			"The directory %s was not found after extracting. Please check the structure of the archive.", b.ExtractedDir))
		return StatusMissingExtracted, nil
	}

	if err := ioutils.Move(b.ExtractedDir, b.TemplatesDir); err != nil {
		m.onProgress.Emit(model.LevelError, err.Error())
		return StatusMissingExtracted, err
	}

	if m.removeArchive {
		if err := os.Remove(b.ArchivePath); err != nil {
			m.onProgress.Emit(model.LevelWarning, fmt.Sprintf("Could not remove %s: %v", b.ArchivePath, err))
		}
	}

	m.onProgress.Emit(model.LevelSuccess, fmt.Sprintf("Templates successfully moved to %s", b.TemplatesDir))
	return StatusInstalled, nil
}
