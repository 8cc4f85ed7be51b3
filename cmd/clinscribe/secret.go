// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cserr "github.com/clinscribe/clinscribe/pkg/errors"
)

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage API keys stored in the OS keyring",
		Long:  "Store and delete provider API keys under the clinscribe service in the operating system keyring. Reference them from config as keyring://clinscribe/<name>.",
	}

	cmd.AddCommand(
		newSecretSetCmd(),
		newSecretDeleteCmd(),
	)

	return cmd
}

func newSecretSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name>",
		Short: "Store a secret read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE:  runSecretSet,
	}
}

func newSecretDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a secret by name",
		Args:  cobra.ExactArgs(1),
		RunE:  runSecretDelete,
	}
}

func runSecretSet(cmd *cobra.Command, args []string) error {
	name := args[0]

	value, err := readInput(cmd, nil)
	if err != nil {
		return err
	}
	value = strings.TrimSpace(value)

	store := secretStoreFactory()
	if err := store.Store(serviceName, name, value); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored secret: keyring://%s/%s\n", serviceName, name)
	return nil
}

func runSecretDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	store := secretStoreFactory()

	if err := store.Delete(serviceName, name); err != nil {
		if cserr.HasCode(err, cserr.CodeSecretNotFound) {
			return cserr.Errorf(cserr.CodeSecretNotFound, "secret %q not found", name)
		}
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted secret: %s\n", name)
	return nil
}
