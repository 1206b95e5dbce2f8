// Package ioutils provides file system helpers shared by the dataset
// processor and the template downloader.
//
// # Directories
//
//	// Idempotent, safe to call on an existing tree
//	err := ioutils.EnsureDir("/data/bop/ycbv/tmp")
//
// # Checks
//
//	if !ioutils.Exists(archivePath) {
//	    // report and stop
//	}
//
// # Moving Into Place
//
//	// Creates the parent of dst, then renames
//	err := ioutils.Move("/data/datasets/tmp/templates", "/data/datasets/templates")
package ioutils
