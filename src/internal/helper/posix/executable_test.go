// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecutableName(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{name: "Relative path", args: []string{"./tls-poke"}, expected: "tls-poke"},
		{name: "Absolute path", args: []string{"/usr/local/bin/tls-poke"}, expected: "tls-poke"},
		{name: "Windows path", args: []string{`C:\tools\tls-poke.exe`}, expected: "tls-poke"},
		{name: "Just filename", args: []string{"poke"}, expected: "poke"},
		{name: "Only separators", args: []string{"///"}, expected: DefaultExecutableName},
		{name: "Empty args", args: []string{}, expected: DefaultExecutableName},
		{name: "Empty first arg", args: []string{""}, expected: DefaultExecutableName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, executableName(tt.args))
		})
	}
}

func TestGetExecutableName(t *testing.T) {
	assert.NotEmpty(t, GetExecutableName())
}
