package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bopkit/bopprep/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.Process(ctx, os.Args[1:], cli.Env{Stdout: os.Stdout, Stderr: os.Stderr})
	if err == nil {
		return
	}

	stop()
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", exitErr.Message)
		os.Exit(exitErr.Code)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
