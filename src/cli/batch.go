// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-poke/src/poke"
)

func (a *app) batchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Probe every target listed in the configuration file",
		Args:  cobra.NoArgs,
		RunE:  a.runBatch,
	}
	cmd.Flags().Float64Var(&a.flags.rate, "rate", 0, "maximum targets probed per second, 0 for no limit")
	return cmd
}

// runBatch probes the configured targets in order and fails when any of
// them fails.
func (a *app) runBatch(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	cfg, opts, log, err := a.settings(cmd)
	if err != nil {
		return err
	}

	targets := cfg.targets()
	if len(targets) == 0 {
		return ErrNoTargets
	}

	results := poke.New(opts, log).RunAll(cmd.Context(), targets)

	var failed int
	for _, res := range results {
		if err := a.report(cmd.OutOrStdout(), res); err != nil {
			return err
		}
		if !res.OK() {
			failed++
		}
	}

	if err := writeMetrics(cfg.MetricsFile, log, results...); err != nil {
		return err
	}

	if err := cmd.Context().Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d targets failed", ErrProbeFailed, failed, len(targets))
	}
	return nil
}
