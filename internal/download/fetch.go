package download

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/bopkit/bopprep/internal/command"
	"github.com/bopkit/bopprep/internal/http"
	"github.com/bopkit/bopprep/internal/model"
)

// Fetcher retrieves a remote archive into a local file.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// CommandFetcher fetches with "wget -O <dest> <url>".
type CommandFetcher struct {
	Runner command.Runner

	// Program defaults to wget.
	Program string
}

// Fetch runs the fetch command.
func (f *CommandFetcher) Fetch(ctx context.Context, url, dest string) error {
	program := f.Program
	if program == "" {
		program = "wget"
	}
	return f.Runner.Run(ctx, command.Command{
		Name: program,
		Args: []string{"-O", dest, url},
	})
}

// HTTPFetcher downloads natively, retrying failed attempts with
// exponential backoff.
type HTTPFetcher struct {
	Client *http.Client

	// MaxRetries is the total number of attempts; values below 1 mean one.
	MaxRetries     int
	RetryCooldown  float64 // seconds
	RetryExponent  float64
	OnProgress     model.ProgressFunc
	ReportInterval int64 // bytes between verbose progress events
}

// NewHTTPFetcher creates an HTTPFetcher with the default client.
func NewHTTPFetcher(maxRetries int, onProgress model.ProgressFunc) *HTTPFetcher {
	return &HTTPFetcher{
		Client:         http.NewClient(),
		MaxRetries:     maxRetries,
		RetryCooldown:  0.2,
		RetryExponent:  4.0,
		OnProgress:     onProgress,
		ReportInterval: 256 << 20,
	}
}

// Fetch downloads url to dest.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dest string) error {
	attempts := f.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	if size, err := f.Client.GetFileSize(ctx, url); err == nil {
		f.OnProgress.Emit(model.LevelVerbose, fmt.Sprintf("Archive size: %.2f MB", float64(size)/1024/1024))
	}

	var err error
	for tries := 0; tries < attempts; tries++ {
		var nextReport int64 = f.ReportInterval
		err = f.Client.DownloadFile(ctx, url, dest, func(written, total int64) {
			if f.ReportInterval <= 0 || written < nextReport {
				return
			}
			nextReport += f.ReportInterval
			f.OnProgress.Emit(model.LevelVerbose, fmt.Sprintf("Downloaded %.2f MB", float64(written)/1024/1024))
		})
		if err == nil || ctx.Err() != nil {
			break
		}
		if tries+1 < attempts {
			f.OnProgress.Emit(model.LevelWarning, fmt.Sprintf("Retry %d/%d for %s: %v", tries+1, attempts, url, err))
			f.waitForRetry(ctx, tries)
		}
	}
	return err
}

func (f *HTTPFetcher) waitForRetry(ctx context.Context, tries int) {
	cooldown := f.RetryCooldown * math.Pow(f.RetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}
