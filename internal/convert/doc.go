// Package convert prepares a BOP dataset for training by running the two
// external conversion steps.
//
// # Processor
//
// The Processor drives the whole pipeline:
//
//  1. Create the dataset root and its tmp directory
//  2. Resolve the split (test or test_primesense)
//  3. Create the imagewise staging directory
//  4. Convert the split from scenewise to imagewise layout
//  5. Convert the imagewise layout to WebDataset shards in the split directory
//
// Any step failing stops the run. Nothing is retried or rolled back.
//
// # Basic Usage
//
//	ds, _ := model.NewDataset("/data/bop/ycbv", "ycbv", 10)
//	p := convert.NewProcessor(ds, convert.DefaultOptions(), command.NewExecRunner(), func(e model.ProgressEvent) {
//	    fmt.Println(e.Message)
//	})
//	if err := p.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Plan returns the two commands without running them.
package convert
