// Package http provides the HTTP client used to fetch dataset archives.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Streaming file downloads with progress tracking
//   - File size retrieval via HEAD requests
//
// # Basic Usage
//
//	client := http.NewClient()
//
//	size, err := client.GetFileSize(ctx, archiveURL)
//
//	err = client.DownloadFile(ctx, archiveURL, "/data/datasets/tmp/templates.zip", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
