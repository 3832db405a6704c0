// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x509certs "github.com/H0llyW00dzZ/tls-poke/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/tls-poke/src/internal/x509/certtest"
	"github.com/H0llyW00dzZ/tls-poke/src/poke"
)

const testVersion = "1.3.3.7-testing"

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Defaults without a file",
			testFunc: func(t *testing.T) {
				cfg, err := loadConfig("")
				require.NoError(t, err)
				assert.Equal(t, defaultConfig(), cfg)

				opts, err := cfg.options(testVersion)
				require.NoError(t, err)
				assert.Equal(t, 30*time.Second, opts.Timeout)
				assert.Equal(t, poke.DrainAvailable, opts.Drain)
				assert.Equal(t, 3, opts.WarnMonths)
				assert.Nil(t, opts.RootCAs)
			},
		},
		{
			name: "YAML file",
			testFunc: func(t *testing.T) {
				path := writeConfig(t, "poke.yaml", `
warnMonths: 2
timeout: "0"
drain: response
drainWindow: 250ms
parallel: true
location: UTC
targets:
  - host: example.com
  - host: example.org
    port: 8443
`)
				cfg, err := loadConfig(path)
				require.NoError(t, err)
				assert.Equal(t, 2, cfg.WarnMonths)

				opts, err := cfg.options(testVersion)
				require.NoError(t, err)
				assert.Zero(t, opts.Timeout)
				assert.Equal(t, poke.DrainResponse, opts.Drain)
				assert.Equal(t, 250*time.Millisecond, opts.DrainWindow)
				assert.True(t, opts.Parallel)
				assert.Equal(t, time.UTC, opts.Location)

				assert.Equal(t, []poke.Target{
					{Host: "example.com", Port: 443},
					{Host: "example.org", Port: 8443},
				}, cfg.targets())
			},
		},
		{
			name: "JSON file from environment",
			testFunc: func(t *testing.T) {
				t.Setenv(ConfigFileEnv, writeConfig(t, "poke.json", `{"warnMonths": 6, "logFormat": "json"}`))

				cfg, err := loadConfig("")
				require.NoError(t, err)
				assert.Equal(t, 6, cfg.WarnMonths)
				assert.Equal(t, "json", cfg.LogFormat)
				assert.Equal(t, "30s", cfg.Timeout)
			},
		},
		{
			name: "Empty YAML file keeps defaults",
			testFunc: func(t *testing.T) {
				cfg, err := loadConfig(writeConfig(t, "empty.yml", ""))
				require.NoError(t, err)
				assert.Equal(t, defaultConfig(), cfg)
			},
		},
		{
			name: "Root CA file",
			testFunc: func(t *testing.T) {
				root := certtest.Valid(t, "Config Root", time.Now().AddDate(1, 0, 0))
				caFile := writeConfig(t, "ca.pem", string(x509certs.New().EncodePEM(root.Cert)))

				cfg := defaultConfig()
				cfg.RootCAFile = caFile
				opts, err := cfg.options(testVersion)
				require.NoError(t, err)
				require.NotNil(t, opts.RootCAs)
				assert.True(t, opts.RootCAs.Equal(certtest.Pool(root)))
			},
		},
		{
			name: "Missing file",
			testFunc: func(t *testing.T) {
				_, err := loadConfig(filepath.Join(t.TempDir(), "missing.json"))
				assert.ErrorIs(t, err, os.ErrNotExist)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "Unknown key", file: "c.json", content: `{"warnMonth": 3}`},
		{name: "Zero warn months", file: "c.json", content: `{"warnMonths": 0}`},
		{name: "Unknown drain mode", file: "c.yaml", content: "drain: forever\n"},
		{name: "Malformed duration", file: "c.yaml", content: "timeout: soon\n"},
		{name: "Target without host", file: "c.yaml", content: "targets:\n  - port: 443\n"},
		{name: "Target port out of range", file: "c.json", content: `{"targets": [{"host": "a", "port": 70000}]}`},
		{name: "Wrong type", file: "c.json", content: `{"parallel": "yes"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.file, tt.content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	t.Run("Malformed JSON", func(t *testing.T) {
		_, err := loadConfig(writeConfig(t, "c.json", `{`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse JSON config file")
	})

	t.Run("Unknown location", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Location = "Nowhere/Special"
		_, err := cfg.options(testVersion)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestDetectConfigFormat(t *testing.T) {
	assert.Equal(t, configFormatYAML, detectConfigFormat("a.YML"))
	assert.Equal(t, configFormatYAML, detectConfigFormat("a.yaml"))
	assert.Equal(t, configFormatJSON, detectConfigFormat("a.json"))
	assert.Equal(t, configFormatJSON, detectConfigFormat("noext"))
}
