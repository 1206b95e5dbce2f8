// Package model defines the core data structures used throughout
// bopprep.
//
// # Dataset
//
// Dataset describes one BOP-format dataset instance on disk and the
// directories the conversion pipeline reads and writes:
//
//	ds, err := model.NewDataset("/data/bop/ycbv", "ycbv", 10)
//	fmt.Println(ds.Split)        // "test"
//	fmt.Println(ds.SplitDir)     // /data/bop/ycbv/test
//	fmt.Println(ds.ImagewiseDir) // /data/bop/ycbv/tmp/ycbv_image_wise/test
//
// # Template Bundle
//
// TemplateBundle holds the paths touched while installing the rendered
// template archive under a machine root:
//
//	b := model.NewTemplateBundle("/data", model.DefaultTemplatesURL)
//	fmt.Println(b.ArchivePath)  // /data/datasets/tmp/templates.zip
//	fmt.Println(b.TemplatesDir) // /data/datasets/templates
//
// # Progress
//
// ProgressEvent is the message type every long running operation reports
// through its callback. Front ends decide how to render each level.
package model
