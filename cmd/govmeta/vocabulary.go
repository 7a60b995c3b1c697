// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	semvocab "github.com/c360studio/semstreams/vocabulary"
	"github.com/spf13/cobra"

	"github.com/pdiddy/govmeta/internal/vocabulary"
)

var vocabularyCmd = &cobra.Command{
	Use:   "vocabulary",
	Short: "List the fields extraction binds and their IRIs",
	Long: `Vocabulary prints every semantic field the extractor reads, with the
path key used in error reports, the registered predicate and the expanded
IRI it matches.`,
	RunE: runVocabulary,
}

func init() {
	vocabularyCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(vocabularyCmd)
}

type vocabularyEntry struct {
	Name        string `json:"name"`
	Key         string `json:"key"`
	Predicate   string `json:"predicate"`
	IRI         string `json:"iri"`
	DataType    string `json:"data_type"`
	Description string `json:"description"`
}

func runVocabulary(cmd *cobra.Command, args []string) error {
	var entries []vocabularyEntry
	for _, f := range vocabulary.Fields() {
		e := vocabularyEntry{
			Name:        f.Name,
			Key:         f.Key,
			Predicate:   f.Predicate,
			IRI:         f.IRI,
			DataType:    f.DataType,
			Description: f.Description,
		}
		// Prefer what the predicate registry holds.
		if meta := semvocab.GetPredicateMetadata(f.Predicate); meta != nil {
			if meta.StandardIRI != "" {
				e.IRI = meta.StandardIRI
			}
			if meta.Description != "" {
				e.Description = meta.Description
			}
		}
		entries = append(entries, e)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	fmt.Fprintf(os.Stdout, "%-30s  %-16s  %-6s  %s\n", "Field", "Key", "Type", "IRI")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 120))
	for _, e := range entries {
		fmt.Fprintf(os.Stdout, "%-30s  %-16s  %-6s  %s\n", e.Name, e.Key, e.DataType, e.IRI)
	}
	return nil
}
