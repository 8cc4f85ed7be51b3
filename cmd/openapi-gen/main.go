// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/clinscribe/clinscribe/internal/inference"
	"github.com/clinscribe/clinscribe/internal/server"
	cserr "github.com/clinscribe/clinscribe/pkg/errors"
)

func main() {
	spec, err := generateSpec()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	outPath := "api/openapi/spec.json"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, spec, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing spec: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OpenAPI spec written to %s\n", outPath)
}

// generateSpec creates a server with all routes registered and extracts the
// OpenAPI spec that huma generates from the Go type annotations.
func generateSpec() ([]byte, error) {
	// A no-credential facade registers every route; handlers are never
	// invoked during spec generation.
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := inference.NewService(nil, nil, 0, log)

	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"}, svc)
	if err != nil {
		return nil, cserr.Wrap(err, cserr.CodeCLISetupFailure, "creating server")
	}

	return json.MarshalIndent(srv.API().OpenAPI(), "", "  ")
}
