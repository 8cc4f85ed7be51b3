// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clinscribe/clinscribe/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the ClinScribe HTTP API",
		Long:  "Load configuration, wire providers, and serve the inference API until interrupted.",
		RunE:  runServe,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Listen = listen
	}

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if orch := svc.Orchestrator(); orch != nil {
			if cerr := orch.Close(); cerr != nil {
				slog.Warn("closing providers", "error", cerr)
			}
		}
	}()

	srv, err := server.New(server.Config{
		ListenAddr:  cfg.Listen,
		CORSOrigins: cfg.CORSOrigins,
	}, svc)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting clinscribe", "listen", cfg.Listen, "providers_configured", cfg.Configured())

	return srv.Start(ctx)
}
