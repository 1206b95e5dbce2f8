package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bopkit/bopprep/internal/config"
	"github.com/bopkit/bopprep/internal/tui"
)

func main() {
	configFlag := flag.String("config", config.DefaultPath, "Path to the HCL settings file")
	flag.Parse()

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
