package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bopkit/bopprep/internal/command"
	ioutils "github.com/bopkit/bopprep/internal/io"
	"github.com/klauspost/compress/zip"
)

// Extractor unpacks an archive into a directory.
type Extractor interface {
	Extract(ctx context.Context, archive, destDir string) error
}

// CommandExtractor extracts with "unzip <archive> -d <destDir>".
type CommandExtractor struct {
	Runner command.Runner

	// Program defaults to unzip.
	Program string
}

// Extract runs the extraction command.
func (e *CommandExtractor) Extract(ctx context.Context, archive, destDir string) error {
	program := e.Program
	if program == "" {
		program = "unzip"
	}
	return e.Runner.Run(ctx, command.Command{
		Name: program,
		Args: []string{archive, "-d", destDir},
	})
}

// ZipExtractor extracts in process.
type ZipExtractor struct{}

// Extract writes every entry of archive below destDir. Entries whose path
// would land outside destDir are rejected.
func (ZipExtractor) Extract(ctx context.Context, archive, destDir string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("open %s: %w", archive, err)
	}
	defer r.Close()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return err
	}

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes %s", f.Name, destDir)
		}

		if f.FileInfo().IsDir() {
			if err := ioutils.EnsureDir(target); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return fmt.Errorf("extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := ioutils.EnsureDir(filepath.Dir(target)); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	_, err = io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	return err
}
