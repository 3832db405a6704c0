// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/H0llyW00dzZ/tls-poke/src/cli"
	verpkg "github.com/H0llyW00dzZ/tls-poke/src/version"
	"github.com/stretchr/testify/assert"
)

func TestVersionInit(t *testing.T) {
	assert.NotEmpty(t, version, "version should not be empty after init")

	if version != verpkg.Version {
		// If they differ, it means version was set by ldflags, which is also valid
		t.Logf("version set by ldflags: %s (package version: %s)", version, verpkg.Version)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "Success", err: nil, expected: exitOK},
		{name: "Probe failed", err: fmt.Errorf("%w: example.com:443 (expiring)", cli.ErrProbeFailed), expected: exitProbeFailed},
		{name: "Cancelled", err: fmt.Errorf("run: %w", context.Canceled), expected: exitSignal},
		{name: "Config error", err: cli.ErrInvalidConfig, expected: exitError},
		{name: "Argument error", err: errors.New("accepts between 1 and 2 arg(s), received 0"), expected: exitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, exitCode(tt.err))
		})
	}
}
