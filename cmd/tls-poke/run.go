// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/H0llyW00dzZ/tls-poke/src/cli"
	"github.com/H0llyW00dzZ/tls-poke/src/logger"
	verpkg "github.com/H0llyW00dzZ/tls-poke/src/version"
)

var version string // set by ldflags or defaults to imported version

func init() {
	if version == "" {
		version = verpkg.Version
	}
}

const (
	exitOK          = 0
	exitError       = 1
	exitProbeFailed = 2
	exitSignal      = 130 // Standard exit code for SIGINT
)

// exitCode maps the CLI result to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, cli.ErrProbeFailed):
		return exitProbeFailed
	case errors.Is(err, context.Canceled):
		return exitSignal
	default:
		return exitError
	}
}

func main() {
	// Create CLI logger
	log := logger.NewCLILogger()

	// Set up signal handling using signal.NotifyContext for cleaner cancellation
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Channel to signal completion
	done := make(chan error, 1)

	// Run the CLI in a separate goroutine
	go func() {
		done <- cli.Execute(ctx, version, log)
	}()

	// Wait for either completion or context cancellation
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, cli.ErrProbeFailed) {
			log.Printf("Error: %v", err)
		}
		os.Exit(exitCode(err))
	case <-ctx.Done():
		log.Println("Operation cancelled by signal. Exiting...")
		// Give the CLI a moment to clean up
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
		os.Exit(exitSignal)
	}
}
