package ioutils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned, so calling it
// repeatedly on the same tree is safe.
//
// Example:
//
//	err := EnsureDir("/data/bop/ycbv/tmp")
//	// Creates /data, /data/bop, /data/bop/ycbv and /data/bop/ycbv/tmp if needed
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path names an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Move renames src to dst after making sure the parent of dst exists.
//
// The rename is a single os.Rename call, so src and dst must live on the
// same file system. An existing non-empty dst is an error.
func Move(src, dst string) error {
	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("move %s: destination %s already exists", src, dst)
		}
		return fmt.Errorf("move %s to %s: %w", src, dst, err)
	}
	return nil
}
