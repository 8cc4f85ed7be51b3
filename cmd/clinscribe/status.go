// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clinscribe/clinscribe/internal/provider"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show provider cooldown status of a running server",
		RunE:  runStatus,
	}

	cmd.Flags().String("address", "127.0.0.1:8754", "server address to check")
	cmd.Flags().Bool("reset", false, "clear all provider cooldowns")

	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("address")
	out := cmd.OutOrStdout()
	client := newAPIClient(addr)

	if reset, _ := cmd.Flags().GetBool("reset"); reset {
		var body struct {
			Status string `json:"status"`
		}
		if err := client.postJSON("/api/v1/providers/reset", &body); err != nil {
			return statusErr(cmd, addr, err)
		}
		_, _ = fmt.Fprintf(out, "Cooldowns: %s\n", body.Status)
		return nil
	}

	var body struct {
		Configured bool                      `json:"configured"`
		Providers  []provider.CooldownStatus `json:"providers"`
	}
	if err := client.getJSON("/api/v1/providers/status", &body); err != nil {
		return statusErr(cmd, addr, err)
	}

	if !body.Configured {
		_, _ = fmt.Fprintln(out, "No providers configured (deterministic fallbacks only).")
		return nil
	}

	for _, p := range body.Providers {
		state := "available"
		if p.InCooldown {
			state = fmt.Sprintf("cooling down until %s", p.CooldownUntil.Format("15:04:05"))
		}
		_, _ = fmt.Fprintf(out, "%-12s %s\n", p.Provider, state)
	}
	return nil
}

// statusErr reports a non-running server as information, not a failure.
func statusErr(cmd *cobra.Command, addr string, err error) error {
	if errors.Is(err, ErrServerNotRunning) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Server at %s is not running (connection refused)\n", addr)
		return nil
	}
	return err
}
