// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/govmeta/internal/store"
	"github.com/pdiddy/govmeta/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the document index (ingest, retrieve, export, get)",
	Long: `Store manages a local SQLite index of fetched governance metadata.
Use subcommands to ingest archived records, query them, export them or
print a single record.`,
}

// --- ingest subcommand ---

var storeIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index archived metadata records",
	Long: `Ingest reads the records written by fetch from documents/metadata/,
indexes them in a SQLite database with FTS5 over comments and reference
labels, and writes an export file. Unchanged records are skipped on
subsequent runs.`,
	RunE: runStoreIngest,
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
	cfg, err := storeConfig(cmd)
	if err != nil {
		return err
	}
	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()

	summary, err := s.Ingest(ctx, filepath.Join(cfg.Fetch.DocumentsDir, "metadata"), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d record(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var storeRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the index with full-text search and filters",
	Long: `Retrieve searches the index using FTS5 full-text search over comments
and reference labels, structured filters (author, reference type), or a
combination of both.`,
	RunE: runStoreRetrieve,
}

func runStoreRetrieve(cmd *cobra.Command, args []string) error {
	cfg, err := storeConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := queryOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --author, or --reference-type")
	}

	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []store.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-24s  %-24s  %-50s\n", "Rank", "ID", "Authors", "Comment")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 108))

	for i, r := range results {
		fmt.Fprintf(os.Stdout, "%-4d  %-24s  %-24s  %-50s\n",
			i+1, truncate(r.ID, 24), truncate(strings.Join(r.Authors, ", "), 24), truncate(oneLine(r.Comment), 50))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export the index to YAML or JSON",
	Long: `Export writes the full index (or a filtered subset) to
store/index/export.yaml or export.json. Supports the same filter flags as
retrieve for partial exports.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	cfg, err := storeConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := queryOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")

	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = s.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = s.ExportJSON(cmd.Context(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

// --- get subcommand ---

var storeGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print one indexed record",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreGet,
}

func runStoreGet(cmd *cobra.Command, args []string) error {
	cfg, err := storeConfig(cmd)
	if err != nil {
		return err
	}
	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	data, err := yaml.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

// --- shared helpers ---

func storeConfig(cmd *cobra.Command) (types.Config, error) {
	keys := map[string]string{
		"store-dir":   "store.store_dir",
		"max-results": "store.max_results",
	}
	if cmd.Flags().Lookup("documents-dir") != nil {
		keys["documents-dir"] = "fetch.documents_dir"
	}
	if err := bindFlags(cmd, keys); err != nil {
		return types.Config{}, err
	}
	return loadConfig()
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) (store.QueryOptions, error) {
	author, _ := cmd.Flags().GetString("author")
	refType, _ := cmd.Flags().GetString("reference-type")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	opts := store.QueryOptions{
		Text:          strings.Join(args, " "),
		Author:        author,
		ReferenceType: types.ReferenceType(refType),
		MaxResults:    maxResults,
	}
	if refType != "" && !opts.ReferenceType.Valid() {
		return opts, fmt.Errorf("unknown reference type %q: use %s or %s",
			refType, types.ReferenceGovernanceMetadata, types.ReferenceOther)
	}
	return opts, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func init() {
	storeCmd.PersistentFlags().String("store-dir", "store", "base directory for the store (contains index/)")
	storeCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	storeIngestCmd.Flags().String("documents-dir", "documents", "base directory for fetched documents (contains metadata/)")

	for _, c := range []*cobra.Command{storeRetrieveCmd, storeExportCmd} {
		c.Flags().String("author", "", "filter by author name (case-insensitive)")
		c.Flags().String("reference-type", "", "filter by reference type: GovernanceMetadata, Other")
	}
	storeRetrieveCmd.Flags().Bool("json", false, "output results as JSON")
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	storeGetCmd.Flags().Bool("json", false, "output the record as JSON")

	storeCmd.AddCommand(storeIngestCmd, storeRetrieveCmd, storeExportCmd, storeGetCmd)
	rootCmd.AddCommand(storeCmd)
}
