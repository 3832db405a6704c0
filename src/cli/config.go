// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"crypto/x509"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	x509certs "github.com/H0llyW00dzZ/tls-poke/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/tls-poke/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-poke/src/internal/x509/expiry"
	"github.com/H0llyW00dzZ/tls-poke/src/poke"
)

// ConfigFileEnv names the environment variable holding the default config path.
const ConfigFileEnv = "TLS_POKE_CONFIG_FILE"

//go:embed config_schema.json
var configSchema string

// ErrInvalidConfig indicates a configuration file that does not match the schema
// or holds values that cannot be used.
var ErrInvalidConfig = errors.New("cli: invalid configuration")

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// TargetConfig is one entry of the batch target list.
type TargetConfig struct {
	Host string `json:"host" yaml:"host"`
	// Port defaults to 443 when zero.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`
}

// Config represents the tls-poke configuration file.
//
// Durations use Go syntax, e.g. "30s" or "1m30s". A timeout of "0"
// disables the probe timeout.
type Config struct {
	WarnMonths  int            `json:"warnMonths" yaml:"warnMonths"`
	Timeout     string         `json:"timeout" yaml:"timeout"`
	Drain       string         `json:"drain" yaml:"drain"`
	DrainWindow string         `json:"drainWindow" yaml:"drainWindow"`
	Parallel    bool           `json:"parallel" yaml:"parallel"`
	LogFormat   string         `json:"logFormat" yaml:"logFormat"`
	Location    string         `json:"location,omitempty" yaml:"location,omitempty"`
	UserAgent   string         `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	RootCAFile  string         `json:"rootCAFile,omitempty" yaml:"rootCAFile,omitempty"`
	Retries     int            `json:"retries,omitempty" yaml:"retries,omitempty"`
	Rate        float64        `json:"rate,omitempty" yaml:"rate,omitempty"`
	MetricsFile string         `json:"metricsFile,omitempty" yaml:"metricsFile,omitempty"`
	Targets     []TargetConfig `json:"targets,omitempty" yaml:"targets,omitempty"`
}

// defaultConfig returns the configuration used when no file is given.
func defaultConfig() *Config {
	return &Config{
		WarnMonths:  expiry.DefaultWarnMonths,
		Timeout:     x509chain.DefaultTimeout.String(),
		Drain:       poke.DrainAvailable.String(),
		DrainWindow: "0s",
		LogFormat:   "text",
	}
}

// detectConfigFormat determines the configuration file format based on file extension.
func detectConfigFormat(configPath string) configFormat {
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// unmarshalConfig unmarshals data into v based on the specified format.
func unmarshalConfig(data []byte, v any, format configFormat) error {
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// validateConfig checks the generic document against the embedded schema.
func validateConfig(doc any) error {
	if doc == nil {
		// An empty file is a valid, empty configuration.
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
}

// loadConfig loads configuration from a JSON or YAML file or applies defaults.
//
// Configuration Priority:
//  1. Default values are set
//  2. [ConfigFileEnv] is checked if configPath is empty
//  3. Config file values override defaults (if a path is known)
//
// Command-line flags are applied on top by the caller.
func loadConfig(configPath string) (*Config, error) {
	config := defaultConfig()

	if configPath == "" {
		configPath = os.Getenv(ConfigFileEnv)
	}
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	format := detectConfigFormat(configPath)

	var doc any
	if err := unmarshalConfig(data, &doc, format); err != nil {
		return nil, err
	}
	if err := validateConfig(doc); err != nil {
		return nil, err
	}
	if err := unmarshalConfig(data, config, format); err != nil {
		return nil, err
	}

	return config, nil
}

// options converts c into probe options.
func (c *Config) options(version string) (poke.Options, error) {
	opts := poke.DefaultOptions()
	opts.Version = version
	opts.WarnMonths = c.WarnMonths
	opts.Parallel = c.Parallel
	opts.UserAgent = c.UserAgent
	opts.Retries = c.Retries
	opts.Rate = c.Rate

	var err error
	if opts.Timeout, err = parseDuration("timeout", c.Timeout); err != nil {
		return opts, err
	}
	if opts.DrainWindow, err = parseDuration("drainWindow", c.DrainWindow); err != nil {
		return opts, err
	}
	if opts.Drain, err = poke.ParseDrainMode(c.Drain); err != nil {
		return opts, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.Location != "" {
		if opts.Location, err = time.LoadLocation(c.Location); err != nil {
			return opts, fmt.Errorf("%w: location: %w", ErrInvalidConfig, err)
		}
	}

	if c.RootCAFile != "" {
		if opts.RootCAs, err = loadRootCAs(c.RootCAFile); err != nil {
			return opts, err
		}
	}

	return opts, nil
}

// targets converts the batch target list.
func (c *Config) targets() []poke.Target {
	targets := make([]poke.Target, 0, len(c.Targets))
	for _, t := range c.Targets {
		port := t.Port
		if port == 0 {
			port = poke.DefaultPort
		}
		targets = append(targets, poke.Target{Host: t.Host, Port: port})
	}
	return targets
}

func parseDuration(name, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, name)
	}
	return d, nil
}

// loadRootCAs reads a certificate bundle to replace the platform roots of
// the handshake probe.
func loadRootCAs(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read root CA file: %w", err)
	}

	certs, err := x509certs.New().DecodeBundle(data)
	if err != nil {
		return nil, fmt.Errorf("%w: root CA file %s: %w", ErrInvalidConfig, path, err)
	}

	pool := x509.NewCertPool()
	for _, cert := range certs {
		pool.AddCert(cert)
	}
	return pool, nil
}
