// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultExecutableName is used when os.Args[0] is not available.
const DefaultExecutableName = "tls-poke"

// GetExecutableName returns the executable name without extension, cross-platform compatible.
// It is used for the cobra usage line so help text matches the binary the operator ran.
func GetExecutableName() string { return executableName(os.Args) }

func executableName(args []string) string {
	if len(args) == 0 || args[0] == "" {
		return DefaultExecutableName
	}

	// Handle Windows paths on Unix and vice versa.
	parts := strings.FieldsFunc(args[0], func(r rune) bool {
		return r == '/' || r == '\\' || r == filepath.Separator
	})
	if len(parts) == 0 {
		return DefaultExecutableName
	}

	return strings.TrimSuffix(parts[len(parts)-1], ".exe")
}
