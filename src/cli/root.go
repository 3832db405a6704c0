// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-poke/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/tls-poke/src/logger"
	"github.com/H0llyW00dzZ/tls-poke/src/poke"
)

var (
	// ErrProbeFailed indicates that a run completed and its combined result is false.
	ErrProbeFailed = errors.New("cli: probe result is false")
	// ErrNoTargets indicates a batch run without configured targets.
	ErrNoTargets = errors.New("cli: no targets configured")
	// ErrInvalidLogFormat indicates an unknown --log-format value.
	ErrInvalidLogFormat = errors.New("cli: invalid log format")
)

// flags holds the command-line state of one command tree.
type flags struct {
	configFile  string
	warnMonths  int
	timeout     time.Duration
	drain       string
	drainWindow time.Duration
	parallel    bool
	logFormat   string
	retries     int
	rate        float64
	metricsFile string

	jsonOutput bool
	table      bool
	tree       bool
	saveChain  string
	derFormat  bool
}

// app carries what the commands share.
type app struct {
	version string
	log     logger.Logger
	flags   flags
}

// Execute runs the root command with os.Args, honoring ctx for cancellation.
//
// It returns [ErrProbeFailed] when the probe ran and the combined result is
// false, and any other error for argument or configuration problems.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	return NewCommand(version, log).ExecuteContext(ctx)
}

// NewCommand builds the root command and its subcommands.
func NewCommand(version string, log logger.Logger) *cobra.Command {
	if log == nil {
		log = logger.NewCLILogger()
	}
	a := &app{version: version, log: log}
	exeName := posix.GetExecutableName()

	rootCmd := &cobra.Command{
		Use:   exeName + " HOST [PORT]",
		Short: "Probe a TLS endpoint and check its certificate chain for expiry",
		Long: `Connects to HOST:PORT (default port 443) twice:

  1. A verified TLS connection that writes one byte and drains the response.
  2. An HTTPS request that accepts any chain and checks every certificate
     for its validity window and an expiration warning window.

The combined result is true only when both succeed.`,
		Example: fmt.Sprintf(`  %[1]s example.com
  %[1]s example.com 8443 --warn-months 1 --tree
  %[1]s inspect bundle.pem
  %[1]s batch --config targets.yaml`, exeName),
		Version:       version,
		Args:          cobra.RangeArgs(1, 2),
		SilenceErrors: true,
		RunE:          a.runProbe,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.flags.configFile, "config", "c", "", "configuration file (JSON or YAML), defaults to $"+ConfigFileEnv)
	pf.IntVarP(&a.flags.warnMonths, "warn-months", "w", 0, "expiration warning window in calendar months (default 3)")
	pf.DurationVarP(&a.flags.timeout, "timeout", "t", 0, "per-probe timeout, 0 disables it (default 30s)")
	pf.StringVar(&a.flags.drain, "drain", "", "response drain mode: available or response (default available)")
	pf.DurationVar(&a.flags.drainWindow, "drain-window", 0, "grace period for draining the handshake response")
	pf.BoolVar(&a.flags.parallel, "parallel", false, "run the handshake probe and the certificate evaluator concurrently")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "log format: text or json (default text)")
	pf.IntVar(&a.flags.retries, "retries", 0, "extra connection attempts after a connection failure")
	pf.StringVar(&a.flags.metricsFile, "metrics-file", "", "write results to FILE in the Prometheus text format")
	pf.BoolVarP(&a.flags.jsonOutput, "json", "j", false, "print a JSON report")
	pf.BoolVar(&a.flags.table, "table", false, "print the certificate chain as a markdown table")
	pf.BoolVar(&a.flags.tree, "tree", false, "print the certificate chain as an ASCII tree")

	rootCmd.Flags().StringVarP(&a.flags.saveChain, "save-chain", "o", "", "write the retrieved chain to FILE")
	rootCmd.Flags().BoolVarP(&a.flags.derFormat, "der", "d", false, "write the saved chain in DER format instead of PEM")

	rootCmd.AddCommand(a.inspectCommand(), a.batchCommand())

	return rootCmd
}

// settings resolves the configuration file and the flags into probe options
// and a logger writing to the command's output.
func (a *app) settings(cmd *cobra.Command) (*Config, poke.Options, logger.Logger, error) {
	cfg, err := loadConfig(a.flags.configFile)
	if err != nil {
		return nil, poke.Options{}, nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("warn-months") {
		cfg.WarnMonths = a.flags.warnMonths
	}
	if fs.Changed("timeout") {
		cfg.Timeout = a.flags.timeout.String()
	}
	if fs.Changed("drain") {
		cfg.Drain = a.flags.drain
	}
	if fs.Changed("drain-window") {
		cfg.DrainWindow = a.flags.drainWindow.String()
	}
	if fs.Changed("parallel") {
		cfg.Parallel = a.flags.parallel
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = a.flags.logFormat
	}
	if fs.Changed("retries") {
		cfg.Retries = a.flags.retries
	}
	if fs.Changed("rate") {
		cfg.Rate = a.flags.rate
	}
	if fs.Changed("metrics-file") {
		cfg.MetricsFile = a.flags.metricsFile
	}

	opts, err := cfg.options(a.version)
	if err != nil {
		return nil, poke.Options{}, nil, err
	}

	// Keep stdout clean for the JSON report.
	logOut := cmd.OutOrStdout()
	if a.flags.jsonOutput {
		logOut = cmd.ErrOrStderr()
	}

	log, err := a.logger(cfg.LogFormat, logOut)
	if err != nil {
		return nil, poke.Options{}, nil, err
	}

	return cfg, opts, log, nil
}

func (a *app) logger(format string, w io.Writer) (logger.Logger, error) {
	switch format {
	case "", "text":
		a.log.SetOutput(w)
		return a.log, nil
	case "json":
		return logger.NewJSONLogger(w, false), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidLogFormat, format)
	}
}

// runProbe probes the single target given on the command line.
func (a *app) runProbe(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, opts, log, err := a.settings(cmd)
	if err != nil {
		return err
	}

	portArg := ""
	if len(args) == 2 {
		portArg = args[1]
	}
	target := poke.NewTarget(args[0], portArg, log)

	res := poke.New(opts, log).Run(cmd.Context(), target)

	if err := a.report(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if err := a.saveChain(log, res.Certificates); err != nil {
		return err
	}
	if err := writeMetrics(cfg.MetricsFile, log, res); err != nil {
		return err
	}

	if !res.OK() {
		return fmt.Errorf("%w: %s (%s)", ErrProbeFailed, target, res.Kind())
	}
	return nil
}
