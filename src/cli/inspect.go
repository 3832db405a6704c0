// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	x509certs "github.com/H0llyW00dzZ/tls-poke/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/tls-poke/src/poke"
)

func (a *app) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Evaluate a PEM, DER or PKCS#7 certificate bundle without connecting",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runInspect,
	}
}

// runInspect decodes the bundle in args[0] and applies the expiry policy.
func (a *app) runInspect(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	_, opts, log, err := a.settings(cmd)
	if err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading input file: %w", err)
	}

	certs, err := x509certs.New().DecodeBundle(data)
	if err != nil {
		return fmt.Errorf("error decoding certificates in %s: %w", path, err)
	}

	report := poke.New(opts, log).EvaluateBundle(path, certs)
	log.Info("bundle result", "file", path, "certificates", len(certs), "result", report.OK)

	if a.flags.jsonOutput {
		if err := writeJSON(cmd.OutOrStdout(), certificateSummary(report)); err != nil {
			return err
		}
	} else if err := a.renderChain(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if !report.OK {
		return fmt.Errorf("%w: %s (%s)", ErrProbeFailed, path, report.Kind)
	}
	return nil
}
