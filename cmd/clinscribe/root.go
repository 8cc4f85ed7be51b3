// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/clinscribe/clinscribe/internal/config"
	"github.com/clinscribe/clinscribe/internal/secrets"
)

// serviceName is the keyring service name under which ClinScribe stores
// secrets.
const serviceName = "clinscribe"

// secretStoreFactory creates a secrets.Store. It is a package-level variable
// so tests can substitute a mock implementation.
var secretStoreFactory = func() secrets.Store {
	return secrets.NewKeyringStore()
}

// NewRootCmd creates the root clinscribe command with all subcommands
// registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "clinscribe",
		Short:         "ClinScribe — clinical-text inference client",
		Long:          "ClinScribe turns encounter text into SOAP notes, ICD-10 suggestions, clarity rewrites and referral content, with deterministic fallbacks when no LLM provider is reachable.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd)
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newServeCmd(),
		newSoapCmd(),
		newParseCmd(),
		newCodesCmd(),
		newClarityCmd(),
		newReferralCmd(),
		newStatusCmd(),
		newSecretCmd(),
		newVersionCmd(),
	)

	return root
}

// setupLogging installs the default slog handler. Logs go to stderr so
// command output on stdout stays machine-readable.
func setupLogging(cmd *cobra.Command) {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig resolves the config file (flag, then the default location,
// bootstrapping a commented default on first run) and loads it with
// keyring URI resolution.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if def, err := config.DefaultConfigPath(); err == nil {
			if _, statErr := os.Stat(def); statErr == nil {
				path = def
			} else if written := config.BootstrapConfig(); written != "" {
				path = written
			}
		}
	}

	config.WarnInsecurePermissions(path)

	return config.Load(path, secretStoreFactory())
}
