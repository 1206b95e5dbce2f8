package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Client wraps HTTP operations used to fetch dataset archives.
//
// Client provides:
//   - A bopprep User-Agent header
//   - File size retrieval via HEAD requests
//   - Streaming file download with progress tracking
//
// Example usage:
//
//	client := NewClient()
//
//	err := client.DownloadFile(ctx, archiveURL, "/data/datasets/tmp/templates.zip", func(written, total int64) {
//	    fmt.Printf("%d / %d bytes\n", written, total)
//	})
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client.
//
// Template archives are several gigabytes, so there is no overall request
// timeout; only connection setup and response headers are bounded.
// Cancel the context to abort a transfer.
func NewClient() *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = 60 * time.Second

	return &Client{
		httpClient: &http.Client{Transport: transport},
		userAgent:  "bopprep",
	}
}

// NewClientWith wraps an existing http.Client, e.g. one from httptest.
func NewClientWith(c *http.Client) *Client {
	return &Client{httpClient: c, userAgent: "bopprep"}
}

// ProgressWriter wraps a writer to track download progress.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	// It is -1 when the server did not announce a length.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// GetFileSize returns the size of a file at the given URL via HEAD request.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 200 OK
//   - The server doesn't return a Content-Length header
func (c *Client) GetFileSize(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("no Content-Length header for %s", url)
	}

	return resp.ContentLength, nil
}

// DownloadFile downloads a file to the specified path with optional progress callback.
//
// The body is streamed to destPath+".part" and renamed to destPath once
// complete, so destPath only ever exists holding a full download. A short
// body compared to Content-Length is an error.
//
// Parameters:
//   - ctx: Context for cancellation
//   - url: URL to download from
//   - destPath: Local file path to save to
//   - onProgress: Optional callback called with (bytesWritten, totalBytes)
//     Pass nil to disable progress tracking
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	partPath := destPath + ".part"
	file, err := os.Create(partPath)
	if err != nil {
		return err
	}

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	written, err := io.Copy(writer, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err == nil && resp.ContentLength >= 0 && written != resp.ContentLength {
		err = fmt.Errorf("short download: got %d of %d bytes", written, resp.ContentLength)
	}
	if err != nil {
		os.Remove(partPath)
		return err
	}

	return os.Rename(partPath, destPath)
}
