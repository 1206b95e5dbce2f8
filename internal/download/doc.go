// Package download installs the pre-rendered template archive.
//
// # Manager
//
// The Manager runs the whole installation:
//
//  1. Create <root>/datasets/tmp
//  2. Fetch templates.zip into it
//  3. Check the archive exists, otherwise report and stop
//  4. Extract the archive into the same directory
//  5. Check <root>/datasets/tmp/templates exists, otherwise report and stop
//  6. Move it to <root>/datasets/templates
//
// # Basic Usage
//
//	manager := download.NewManagerFromSettings(settings, command.NewExecRunner(), func(event model.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	status, err := manager.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if status != download.StatusInstalled {
//	    // the reason was reported as an error event
//	}
//
// # Fetchers and Extractors
//
// CommandFetcher and CommandExtractor shell out to wget and unzip.
// HTTPFetcher and ZipExtractor do the same work in process; HTTPFetcher
// retries failed attempts with exponential backoff.
//
// Fetch and extraction errors never stop a run by themselves. Only the
// existence checks that follow them do.
package download
