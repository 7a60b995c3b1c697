// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/govmeta/pkg/types"
)

// QueryOptions holds parameters for document queries.
type QueryOptions struct {
	// Text is the FTS5 full-text search string over comments and reference
	// labels.
	Text string

	// Author filters by author name, case-insensitively.
	Author string

	// ReferenceType keeps documents with at least one reference of this
	// type.
	ReferenceType types.ReferenceType

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Text == "" && q.Author == "" && q.ReferenceType == ""
}

// QueryResult summarizes a matching document.
type QueryResult struct {
	ID            string   `json:"id" yaml:"id"`
	Source        string   `json:"source" yaml:"source"`
	Hash          string   `json:"hash" yaml:"hash"`
	HashAlgorithm string   `json:"hash_algorithm" yaml:"hash_algorithm"`
	Comment       string   `json:"comment" yaml:"comment"`
	Authors       []string `json:"authors" yaml:"authors"`
}

// Retrieve queries the index with optional full-text search and structured
// filters. Full-text results are ranked by relevance; structured-only
// results are sorted by ID.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Text != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT d.id, d.source, d.hash, d.hash_algorithm, d.comment
			FROM documents_fts
			JOIN documents d ON d.rowid = documents_fts.rowid
			WHERE documents_fts MATCH ?`)
		args = append(args, opts.Text)
	} else {
		qb.WriteString(
			`SELECT d.id, d.source, d.hash, d.hash_algorithm, d.comment
			FROM documents d
			WHERE 1=1`)
	}

	if opts.Author != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM authors a WHERE a.document_id = d.id AND a.name = ? COLLATE NOCASE)`)
		args = append(args, opts.Author)
	}

	if opts.ReferenceType != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM refs r WHERE r.document_id = d.id AND r.type = ?)`)
		args = append(args, string(opts.ReferenceType))
	}

	if useFTS {
		qb.WriteString(` ORDER BY documents_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY d.id`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}

	var results []QueryResult
	for rows.Next() {
		var qr QueryResult
		if err := rows.Scan(&qr.ID, &qr.Source, &qr.Hash, &qr.HashAlgorithm, &qr.Comment); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, qr)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range results {
		authors, err := s.authors(ctx, results[i].ID)
		if err != nil {
			return nil, err
		}
		results[i].Authors = make([]string, len(authors))
		for j, a := range authors {
			results[i].Authors[j] = a.Name
		}
	}

	return results, nil
}
