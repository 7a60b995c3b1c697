// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/govmeta/internal/fetch"
)

var showCmd = &cobra.Command{
	Use:   "show <source>",
	Short: "Fetch one document and print the extracted result",
	Long: `Show retrieves a single source (URL, ipfs:// CID or local file), extracts
it, and prints the document as YAML or JSON along with its blake2b-256
hash. Nothing is written to disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	addFetchFlags(showCmd.Flags())
	showCmd.Flags().String("format", "yaml", "output format: yaml or json")
	showCmd.Flags().String("expect-hash", "", "hex blake2b-256 digest the payload must match")

	rootCmd.AddCommand(showCmd)
}

// showOutput is what show prints: provenance plus the document.
type showOutput struct {
	Source      string `json:"source" yaml:"source"`
	ResolvedURL string `json:"resolved_url" yaml:"resolved_url"`
	Hash        string `json:"hash" yaml:"hash"`
	Document    any    `json:"document" yaml:"document"`
}

func runShow(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, fetchFlags); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if format != "yaml" && format != "json" {
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	var opts []fetch.FetchOption
	if expect, _ := cmd.Flags().GetString("expect-hash"); expect != "" {
		opts = append(opts, fetch.ExpectHash(expect))
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := newFetchClient(cfg.Fetch).Fetch(ctx, args[0], opts...)
	if err != nil {
		return err
	}

	out := showOutput{
		Source:      res.Source,
		ResolvedURL: res.ResolvedURL,
		Hash:        res.Hash,
		Document:    res.Document,
	}
	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(out)
}
