// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/govmeta/internal/fetch"
	"github.com/pdiddy/govmeta/internal/store"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [sources...]",
	Short: "Retrieve metadata documents and archive them locally",
	Long: `Fetch retrieves governance metadata from HTTP(S) URLs, ipfs:// CIDs or
local files, validates it, and archives the raw payload under
documents/raw/ with a metadata record under documents/metadata/.

Sources already archived are skipped. Use --from-file to read sources from
a file (one per line, # comments allowed) and --index to add fetched
records to the store.`,
	RunE: runFetch,
}

func init() {
	addFetchFlags(fetchCmd.Flags())
	fetchCmd.Flags().String("documents-dir", "documents", "base directory for fetched documents (contains raw/, metadata/)")
	fetchCmd.Flags().Duration("delay", 0, "delay between consecutive fetches (default from config)")
	fetchCmd.Flags().String("from-file", "", "read sources from a file, one per line")
	fetchCmd.Flags().String("expect-hash", "", "hex blake2b-256 digest the payload must match (single source only)")
	fetchCmd.Flags().Bool("index", false, "add fetched records to the store")
	fetchCmd.Flags().String("store-dir", "store", "base directory for the store (contains index/)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, fetchFlags); err != nil {
		return err
	}
	if err := bindFlags(cmd, map[string]string{
		"documents-dir": "fetch.documents_dir",
		"store-dir":     "store.store_dir",
	}); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("delay") {
		cfg.Fetch.DownloadDelay, _ = cmd.Flags().GetDuration("delay")
	}

	sources := args
	if path, _ := cmd.Flags().GetString("from-file"); path != "" {
		fromFile, err := readSourceFile(path)
		if err != nil {
			return err
		}
		sources = append(sources, fromFile...)
	}
	if len(sources) == 0 {
		return fmt.Errorf("at least one source required: provide sources as arguments or use --from-file")
	}

	ctx, cancel := signalContext()
	defer cancel()

	client := newFetchClient(cfg.Fetch)

	var result fetch.BatchResult
	if expect, _ := cmd.Flags().GetString("expect-hash"); expect != "" {
		if len(sources) != 1 {
			return fmt.Errorf("--expect-hash requires exactly one source, got %d", len(sources))
		}
		rec, skipped, err := fetch.Archive(ctx, client, sources[0], os.Stdout, fetch.ExpectHash(expect))
		if err != nil {
			return err
		}
		if skipped {
			result.Skipped++
		} else {
			result.Fetched++
		}
		result.Records = append(result.Records, rec)
	} else {
		result = fetch.FetchBatch(ctx, client, sources, os.Stdout)
	}

	if index, _ := cmd.Flags().GetBool("index"); index && len(result.Records) > 0 {
		s, err := store.NewStore(cfg.Store)
		if err != nil {
			return err
		}
		defer s.Close()
		indexed := 0
		for _, rec := range result.Records {
			if err := s.Put(ctx, rec); err != nil {
				fmt.Printf("failed:  indexing %s (%v)\n", rec.ID, err)
				result.Failed++
				continue
			}
			indexed++
		}
		fmt.Printf("indexed %d record(s)\n", indexed)
	}

	if result.HasFailures() {
		return fmt.Errorf("%d source(s) failed", result.Failed)
	}
	return nil
}

// readSourceFile reads one source per line, skipping blank lines and
// # comments.
func readSourceFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source file: %w", err)
	}
	defer f.Close()

	var sources []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sources = append(sources, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading source file: %w", err)
	}
	return sources, nil
}
