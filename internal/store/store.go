// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists extracted governance metadata documents in SQLite
// and builds a full-text index over their comments and reference labels.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/govmeta/internal/fetch"
	"github.com/pdiddy/govmeta/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "govmeta.db"
)

// ErrNotFound is returned by Get for an unknown document ID.
var ErrNotFound = errors.New("document not found")

// Store manages the document index SQLite database.
type Store struct {
	db         *sql.DB
	storeDir   string
	maxResults int
}

// NewStore opens or creates the database at storeDir/index/govmeta.db and
// creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.StoreDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		storeDir:   cfg.StoreDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			source TEXT,
			resolved_url TEXT,
			hash TEXT,
			raw_path TEXT,
			fetched_at TEXT,
			hash_algorithm TEXT NOT NULL,
			comment TEXT,
			labels TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS authors (
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			algorithm TEXT NOT NULL,
			public_key TEXT NOT NULL,
			signature TEXT NOT NULL,
			PRIMARY KEY (document_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS refs (
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			type TEXT NOT NULL,
			label TEXT NOT NULL,
			uri TEXT NOT NULL,
			PRIMARY KEY (document_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS updates (
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			uri TEXT NOT NULL,
			PRIMARY KEY (document_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_authors_name ON authors(name COLLATE NOCASE)`,
		`CREATE INDEX IF NOT EXISTS idx_refs_type ON refs(type)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			file TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='documents_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE documents_fts USING fts5(comment, labels, content=documents, content_rowid=rowid)`,
			`CREATE TRIGGER documents_ai AFTER INSERT ON documents BEGIN
				INSERT INTO documents_fts(rowid, comment, labels) VALUES (new.rowid, new.comment, new.labels);
			END`,
			`CREATE TRIGGER documents_ad AFTER DELETE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, comment, labels) VALUES('delete', old.rowid, old.comment, old.labels);
			END`,
			`CREATE TRIGGER documents_au AFTER UPDATE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, comment, labels) VALUES('delete', old.rowid, old.comment, old.labels);
				INSERT INTO documents_fts(rowid, comment, labels) VALUES (new.rowid, new.comment, new.labels);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Put inserts or replaces a record. The record must carry a document.
func (s *Store) Put(ctx context.Context, rec *types.Record) error {
	if rec == nil || rec.ID == "" {
		return errors.New("record has no id")
	}
	if rec.Document == nil {
		return fmt.Errorf("record %s has no document", rec.ID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := putTx(ctx, tx, rec); err != nil {
		return err
	}
	return tx.Commit()
}

func putTx(ctx context.Context, tx *sql.Tx, rec *types.Record) error {
	doc := rec.Document

	// Delete first so the FTS delete trigger and cascades run.
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, rec.ID); err != nil {
		return fmt.Errorf("deleting old document: %w", err)
	}

	fetchedAt := ""
	if !rec.FetchedAt.IsZero() {
		fetchedAt = rec.FetchedAt.UTC().Format(time.RFC3339Nano)
	}
	labels := make([]string, len(doc.Body.References))
	for i, r := range doc.Body.References {
		labels[i] = r.Label
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO documents (id, source, resolved_url, hash, raw_path, fetched_at, hash_algorithm, comment, labels)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Source, rec.ResolvedURL, rec.Hash, rec.RawPath, fetchedAt,
		doc.HashAlgorithm, doc.Body.Comment, strings.Join(labels, "\n"),
	)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	for i, a := range doc.Authors {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO authors (document_id, position, name, algorithm, public_key, signature)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			rec.ID, i, a.Name, a.Witness.Algorithm, a.Witness.PublicKey, a.Witness.Signature,
		)
		if err != nil {
			return fmt.Errorf("inserting author %d: %w", i, err)
		}
	}

	for i, r := range doc.Body.References {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO refs (document_id, position, type, label, uri) VALUES (?, ?, ?, ?, ?)`,
			rec.ID, i, string(r.Type), r.Label, r.URI.String(),
		)
		if err != nil {
			return fmt.Errorf("inserting reference %d: %w", i, err)
		}
	}

	for i, u := range doc.Body.ExternalUpdates {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO updates (document_id, position, title, uri) VALUES (?, ?, ?, ?)`,
			rec.ID, i, u.Title, u.URI.String(),
		)
		if err != nil {
			return fmt.Errorf("inserting update %d: %w", i, err)
		}
	}
	return nil
}

// Get returns the stored record for id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*types.Record, error) {
	var (
		rec       = &types.Record{ID: id}
		doc       = &types.Document{}
		fetchedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT source, resolved_url, hash, raw_path, fetched_at, hash_algorithm, comment
		 FROM documents WHERE id = ?`, id,
	).Scan(&rec.Source, &rec.ResolvedURL, &rec.Hash, &rec.RawPath, &fetchedAt, &doc.HashAlgorithm, &doc.Body.Comment)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("looking up document: %w", err)
	}
	if fetchedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, fetchedAt); err == nil {
			rec.FetchedAt = t
		}
	}

	if doc.Authors, err = s.authors(ctx, id); err != nil {
		return nil, err
	}
	if doc.Body.References, err = s.references(ctx, id); err != nil {
		return nil, err
	}
	if doc.Body.ExternalUpdates, err = s.updates(ctx, id); err != nil {
		return nil, err
	}

	rec.Document = doc
	return rec, nil
}

func (s *Store) authors(ctx context.Context, id string) ([]types.Author, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, algorithm, public_key, signature FROM authors
		 WHERE document_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying authors: %w", err)
	}
	defer rows.Close()

	authors := []types.Author{}
	for rows.Next() {
		var a types.Author
		if err := rows.Scan(&a.Name, &a.Witness.Algorithm, &a.Witness.PublicKey, &a.Witness.Signature); err != nil {
			return nil, fmt.Errorf("scanning author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

func (s *Store) references(ctx context.Context, id string) ([]types.Reference, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type, label, uri FROM refs WHERE document_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying references: %w", err)
	}
	defer rows.Close()

	refs := []types.Reference{}
	for rows.Next() {
		var r types.Reference
		var refType, uri string
		if err := rows.Scan(&refType, &r.Label, &uri); err != nil {
			return nil, fmt.Errorf("scanning reference: %w", err)
		}
		r.Type = types.ReferenceType(refType)
		r.URI = types.IRI(uri)
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

func (s *Store) updates(ctx context.Context, id string) ([]types.Update, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, uri FROM updates WHERE document_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying updates: %w", err)
	}
	defer rows.Close()

	updates := []types.Update{}
	for rows.Next() {
		var u types.Update
		var uri string
		if err := rows.Scan(&u.Title, &uri); err != nil {
			return nil, fmt.Errorf("scanning update: %w", err)
		}
		u.URI = types.IRI(uri)
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

// Delete removes a document and its indexing status. Deleting an unknown
// ID is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM indexing_status WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("deleting indexing status: %w", err)
	}
	return tx.Commit()
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of records processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads YAML records from metadataDir and indexes them. Files whose
// modification time matches the last indexing run are skipped. After any
// change it writes export.yaml.
func (s *Store) Ingest(ctx context.Context, metadataDir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(metadataDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading metadata directory %s: %w", metadataDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		file := entry.Name()
		id := strings.TrimSuffix(file, ".yaml")

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE file = ?`, file,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", id)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		rec, err := readRecord(filepath.Join(metadataDir, file))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}
		if rec.ID == "" {
			rec.ID = id
		}

		if err := s.ingestRecord(ctx, rec, file, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d authors)\n", id, len(rec.Document.Authors))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d authors)\n", id, len(rec.Document.Authors))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if _, err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

// ingestRecord indexes rec and records the mod time of the file it was read
// from. Status is keyed by file so records whose ID differs from their file
// name are still skipped when unchanged.
func (s *Store) ingestRecord(ctx context.Context, rec *types.Record, file, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := putTx(ctx, tx, rec); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (file, document_id, file_mod_time) VALUES (?, ?, ?)
		 ON CONFLICT(file) DO UPDATE SET document_id=excluded.document_id, file_mod_time=excluded.file_mod_time`,
		file, rec.ID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

func readRecord(path string) (*types.Record, error) {
	rec, err := fetch.ReadRecord(path)
	if err != nil {
		return nil, err
	}
	if rec.Document == nil {
		return nil, errors.New("record has no document")
	}
	return rec, nil
}
