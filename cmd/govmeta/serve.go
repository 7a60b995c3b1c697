// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/govmeta/internal/server"
	"github.com/pdiddy/govmeta/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve extraction over HTTP",
	Long: `Serve starts an HTTP service exposing:

  POST /v1/extract          extract a JSON-LD payload from the request body
  GET  /v1/fetch?source=    fetch and extract a source
  GET  /v1/documents/{id}   read an indexed record (with --with-store)
  GET  /healthz             liveness
  GET  /metrics             Prometheus metrics

Extraction failures are returned as JSON with the failing stage and, for
extraction errors, the kind, field and path.`,
	RunE: runServe,
}

func init() {
	addFetchFlags(serveCmd.Flags())
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Duration("request-timeout", 0, "per-request timeout (default from config)")
	serveCmd.Flags().Bool("with-store", false, "serve indexed records from the store")
	serveCmd.Flags().String("store-dir", "store", "base directory for the store (contains index/)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, fetchFlags); err != nil {
		return err
	}
	if err := bindFlags(cmd, map[string]string{
		"addr":      "server.addr",
		"store-dir": "store.store_dir",
	}); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("request-timeout") {
		cfg.Server.RequestTimeout, _ = cmd.Flags().GetDuration("request-timeout")
	}

	opts := []server.Option{server.WithLogger(log.With("component", "server"))}
	if withStore, _ := cmd.Flags().GetBool("with-store"); withStore {
		s, err := store.NewStore(cfg.Store)
		if err != nil {
			return err
		}
		defer s.Close()
		opts = append(opts, server.WithRecords(s))
	}

	ctx, cancel := signalContext()
	defer cancel()

	return server.New(cfg.Server, newFetchClient(cfg.Fetch), opts...).ListenAndServe(ctx)
}
