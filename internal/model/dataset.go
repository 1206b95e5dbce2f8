package model

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Split directory names used by BOP datasets.
const (
	SplitTest           = "test"
	SplitTestPrimesense = "test_primesense"
)

// DefaultNprocs is the process count handed to the converters when none is given.
const DefaultNprocs = 10

// primesenseDatasets keep their test images under the primesense split.
var primesenseDatasets = map[string]bool{
	"tless": true,
	"hb":    true,
}

// webDatasetNprocsDatasets are the only datasets whose WebDataset conversion
// receives --nprocs. The reason for the asymmetry is unknown and downstream
// tooling may rely on it, so keep the list as is.
var webDatasetNprocsDatasets = map[string]bool{
	"tless": true,
	"ycbv":  true,
	"tudl":  true,
	"itodd": true,
}

// SplitFor returns the split directory name for a dataset.
func SplitFor(name string) string {
	if primesenseDatasets[name] {
		return SplitTestPrimesense
	}
	return SplitTest
}

// WebDatasetTakesNprocs reports whether the imagewise to WebDataset
// conversion of the named dataset is given a process count.
func WebDatasetTakesNprocs(name string) bool {
	return webDatasetNprocsDatasets[name]
}

// Dataset represents a BOP-format dataset on disk.
//
// All paths are computed by NewDataset:
//
//	<Root>/<Split>                          SplitDir, read by step one and rewritten by step two
//	<Root>/tmp                              TmpDir
//	<Root>/tmp/<Name>_image_wise/<Split>    ImagewiseDir, staging between the steps
type Dataset struct {
	// Name identifies the dataset, e.g. "tless" or "ycbv".
	Name string

	// Root is the absolute base directory of the dataset.
	Root string

	// Split is the resolved split name.
	Split string

	// Nprocs is the process count passed to the converters.
	Nprocs int

	SplitDir     string
	TmpDir       string
	ImagewiseDir string
}

// NewDataset validates its arguments and computes the dataset layout.
func NewDataset(root, name string, nprocs int) (*Dataset, error) {
	if root == "" {
		return nil, errors.New("dataset root is required")
	}
	if name == "" {
		return nil, errors.New("dataset name is required")
	}
	if nprocs <= 0 {
		return nil, fmt.Errorf("nprocs must be positive, got %d", nprocs)
	}

	// Converters may run in another working directory, so every path handed
	// to them is absolute.
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve dataset root: %w", err)
	}

	split := SplitFor(name)
	tmpDir := filepath.Join(root, "tmp")

	return &Dataset{
		Name:         name,
		Root:         root,
		Split:        split,
		Nprocs:       nprocs,
		SplitDir:     filepath.Join(root, split),
		TmpDir:       tmpDir,
		ImagewiseDir: filepath.Join(tmpDir, name+"_image_wise", split),
	}, nil
}
