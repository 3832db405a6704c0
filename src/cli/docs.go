// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for tls-poke.
// It implements a Cobra-based CLI that probes a TLS endpoint, evaluates the
// presented certificate chain, inspects certificate bundles offline and
// probes every target listed in a configuration file. Reports are available
// as log lines, JSON, an ASCII tree or a markdown table, and the retrieved
// chain can be saved as PEM or DER.
//
// Configuration is read from a JSON or YAML file given with --config or the
// TLS_POKE_CONFIG_FILE environment variable. It is validated against an
// embedded JSON schema, and command-line flags override file values.
package cli
