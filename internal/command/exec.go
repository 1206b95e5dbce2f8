package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bopkit/bopprep/internal/logging"
)

// Stream identifies the child output a line was read from.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

// String returns "stdout" or "stderr".
func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// ExecRunner runs commands as child processes.
type ExecRunner struct {
	// OnOutput receives each line the child writes. When nil, output is
	// copied to the parent's stdout and stderr.
	OnOutput func(stream Stream, line string)
}

// NewExecRunner creates an ExecRunner that passes child output through.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run starts cmd, pumps its output and waits for it to exit.
//
// Cancelling ctx kills the child. A non-zero exit status yields *ExitError
// carrying the command text and the status; any other failure is wrapped
// with the command text.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	logger := logging.FromContext(ctx).With("command", cmd.String())
	if cmd.Dir != "" {
		logger = logger.With("dir", cmd.Dir)
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	stdout, err := c.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%s: stdout pipe: %w", cmd, err)
	}
	stderr, err := c.StderrPipe()
	if err != nil {
		return fmt.Errorf("%s: stderr pipe: %w", cmd, err)
	}

	if err := c.Start(); err != nil {
		return fmt.Errorf("start %s: %w", cmd, err)
	}
	start := time.Now()
	logger.Debug("command started", "pid", c.Process.Pid)

	// Pipes must be drained before Wait closes them.
	var g errgroup.Group
	g.Go(func() error { return r.pump(stdout, Stdout) })
	g.Go(func() error { return r.pump(stderr, Stderr) })
	pumpErr := g.Wait()

	err = c.Wait()
	logger.Debug("command finished", "elapsed", time.Since(start).Round(time.Millisecond))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			return &ExitError{Command: cmd.String(), Code: exitErr.ExitCode()}
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", cmd, ctx.Err())
		}
		if exitErr != nil {
			if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
				return &ExitError{Command: cmd.String(), Code: -int(ws.Signal()), Signal: ws.Signal().String()}
			}
		}
		return fmt.Errorf("%s: %w", cmd, err)
	}
	if pumpErr != nil {
		return fmt.Errorf("%s: reading output: %w", cmd, pumpErr)
	}
	return nil
}

func (r *ExecRunner) pump(src io.Reader, stream Stream) error {
	if r.OnOutput == nil {
		dst := io.Writer(os.Stdout)
		if stream == Stderr {
			dst = os.Stderr
		}
		_, err := io.Copy(dst, src)
		return err
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		r.OnOutput(stream, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		// Keep draining so the child never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, src)
		return err
	}
	return nil
}
