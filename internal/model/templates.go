package model

import "path/filepath"

// DefaultTemplatesURL is where the pre-rendered templates archive is published.
const DefaultTemplatesURL = "https://huggingface.co/datasets/nv-nguyen/gigaPose/resolve/main/templates.zip"

// TemplateBundle holds the paths used while installing the templates archive.
type TemplateBundle struct {
	// URL is the remote archive location.
	URL string

	// Root is the machine root directory.
	Root string

	// TmpDir is the scratch directory the archive is fetched and extracted into.
	TmpDir string

	// ArchivePath is the local archive file inside TmpDir.
	ArchivePath string

	// ExtractedDir is the folder the archive is expected to unpack to.
	ExtractedDir string

	// TemplatesDir is the final install location.
	TemplatesDir string
}

// NewTemplateBundle computes the template layout under root.
func NewTemplateBundle(root, url string) *TemplateBundle {
	tmpDir := filepath.Join(root, "datasets", "tmp")
	return &TemplateBundle{
		URL:          url,
		Root:         root,
		TmpDir:       tmpDir,
		ArchivePath:  filepath.Join(tmpDir, "templates.zip"),
		ExtractedDir: filepath.Join(tmpDir, "templates"),
		TemplatesDir: filepath.Join(root, "datasets", "templates"),
	}
}
