// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clinscribe/clinscribe/internal/inference"
	"github.com/clinscribe/clinscribe/internal/note"
	cserr "github.com/clinscribe/clinscribe/pkg/errors"
)

func newSoapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "soap [file]",
		Short: "Generate a SOAP note from encounter text",
		Long:  "Read encounter text from a file (or stdin) and print the generated SOAP note as JSON.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSoap,
	}

	cmd.Flags().String("source", string(note.SourceFreeText), "input kind: transcript or free_text")

	return cmd
}

func runSoap(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	sourceFlag, _ := cmd.Flags().GetString("source")
	source := note.SourceKind(sourceFlag)
	if source != note.SourceTranscript && source != note.SourceFreeText {
		return cserr.Errorf(cserr.CodeCLIInputInvalid, "unknown source %q: expected transcript or free_text", sourceFlag)
	}

	svc, cleanup, err := oneShotService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return printJSON(cmd, svc.GenerateSOAP(cmd.Context(), text, source))
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Split an existing note into SOAP sections",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			svc, cleanup, err := oneShotService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return printJSON(cmd, svc.ParseSingleNoteToSOAP(cmd.Context(), text))
		},
	}
}

func newClarityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clarity [file]",
		Short: "Rewrite clinical text for clarity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			svc, cleanup, err := oneShotService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			_, err = fmt.Fprintln(cmd.OutOrStdout(), svc.RewriteForClarity(cmd.Context(), text))
			return err
		},
	}
}

func newCodesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codes [file]",
		Short: "Suggest ICD-10 diagnosis codes for clinical text",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCodes,
	}

	cmd.Flags().Int("max", 0, "cap on returned suggestions (0 uses the configured default)")

	return cmd
}

func runCodes(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	max, _ := cmd.Flags().GetInt("max")

	svc, cleanup, err := oneShotService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return printJSON(cmd, svc.SuggestDiagnosisCodes(cmd.Context(), text, max))
}

func newReferralCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "referral [file]",
		Short: "Draft referral letter content from a note",
		Long:  "Read a note from a file (or stdin). Labeled SOAP sections are used directly; unlabeled text is carried as free text.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			fields := note.Fields{RawText: text}
			if soap, ok := note.SplitLabeledSOAP(text); ok {
				fields = note.Fields{
					Subjective: soap.Subjective,
					Objective:  soap.Objective,
					Assessment: soap.Assessment,
					Plan:       soap.Plan,
				}
			}

			svc, cleanup, err := oneShotService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return printJSON(cmd, svc.GenerateReferralContent(cmd.Context(), fields))
		},
	}
}

// readInput returns the trimmed contents of the file argument, or stdin
// when no argument (or "-") is given.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	var (
		data []byte
		err  error
	)

	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return "", cserr.Wrapf(err, cserr.CodeCLIInputInvalid, "reading %s", args[0])
		}
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", cserr.Wrap(err, cserr.CodeCLIInputInvalid, "reading stdin")
		}
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", cserr.New(cserr.CodeCLIInputInvalid, "input text is empty")
	}
	return text, nil
}

// oneShotService loads config and builds the facade for a single command
// invocation. cleanup closes any wired providers.
func oneShotService(cmd *cobra.Command) (svc *inference.Service, cleanup func(), err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	s, err := buildService(cfg)
	if err != nil {
		return nil, nil, err
	}

	cleanup = func() {
		if orch := s.Orchestrator(); orch != nil {
			_ = orch.Close()
		}
	}
	return s, cleanup, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
