// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/govmeta/pkg/types"
)

const (
	rawDir      = "raw"
	metadataDir = "metadata"
)

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Fetched int
	Skipped int
	Failed  int
	Records []*types.Record
}

// Total returns the number of sources processed.
func (r BatchResult) Total() int {
	return r.Fetched + r.Skipped + r.Failed
}

// HasFailures reports whether any source failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// RawPath returns where the payload for slug is archived under dir.
func RawPath(dir, slug string) string {
	return filepath.Join(dir, rawDir, slug+".jsonld")
}

// MetadataPath returns where the record for slug is archived under dir.
func MetadataPath(dir, slug string) string {
	return filepath.Join(dir, metadataDir, slug+".yaml")
}

// Archive fetches source and writes the raw payload and a YAML record under
// the client's DocumentsDir. If the raw payload already exists the fetch is
// skipped: an expected hash is checked against the archived bytes and the
// existing record is returned, rebuilt from the payload when it is missing
// or unreadable.
func Archive(ctx context.Context, c *Client, source string, w io.Writer, opts ...FetchOption) (rec *types.Record, skipped bool, err error) {
	dir := c.cfg.DocumentsDir
	slug := Slug(source)
	rawPath := RawPath(dir, slug)
	metaPath := MetadataPath(dir, slug)

	if info, err := os.Stat(rawPath); err == nil {
		var fo fetchOptions
		for _, opt := range opts {
			opt(&fo)
		}
		r, err := c.archived(ctx, source, slug, info.ModTime(), fo)
		if err != nil {
			return nil, false, err
		}
		fmt.Fprintf(w, "skipped: %s (already exists)\n", slug)
		return r, true, nil
	}

	res, err := c.Fetch(ctx, source, opts...)
	if err != nil {
		return nil, false, err
	}

	for _, d := range []string{filepath.Join(dir, rawDir), filepath.Join(dir, metadataDir)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, false, fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	fmt.Fprintf(w, "fetched: %s (%d authors, %d references)\n",
		slug, len(res.Document.Authors), len(res.Document.Body.References))

	if err := writeAtomic(rawPath, res.Payload); err != nil {
		return nil, false, fmt.Errorf("writing payload for %s: %w", slug, err)
	}

	rec = &types.Record{
		ID:          slug,
		Source:      source,
		ResolvedURL: res.ResolvedURL,
		Hash:        res.Hash,
		RawPath:     rawPath,
		FetchedAt:   time.Now().UTC(),
		Document:    res.Document,
	}
	if err := WriteRecord(rec, metaPath); err != nil {
		return nil, false, fmt.Errorf("writing metadata for %s: %w", slug, err)
	}
	return rec, false, nil
}

// FetchBatch archives multiple sources, printing per-item status and a
// summary. It continues after individual failures and waits DownloadDelay
// between consecutive fetches.
func FetchBatch(ctx context.Context, c *Client, sources []string, w io.Writer) BatchResult {
	var result BatchResult
	for i, src := range sources {
		if i > 0 && c.cfg.DownloadDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(c.cfg.DownloadDelay):
			}
		}
		if ctx.Err() != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", src, ctx.Err())
			result.Failed++
			continue
		}

		rec, wasSkipped, err := Archive(ctx, c, src, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", src, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Fetched++
		}
		result.Records = append(result.Records, rec)
	}
	fmt.Fprintf(w, "\nBatch summary: %d fetched, %d skipped, %d failed (total: %d)\n",
		result.Fetched, result.Skipped, result.Failed, result.Total())
	return result
}

// archived returns the record for an already archived source.
func (c *Client) archived(ctx context.Context, source, slug string, fetchedAt time.Time, fo fetchOptions) (*types.Record, error) {
	dir := c.cfg.DocumentsDir
	rawPath := RawPath(dir, slug)
	metaPath := MetadataPath(dir, slug)

	payload, err := os.ReadFile(rawPath)
	if err != nil {
		return nil, &Error{Stage: StageRetrieve, Source: source, Err: err}
	}
	hash := Hash(payload)
	if fo.expectHash != "" {
		if err := checkHash(hash, fo.expectHash); err != nil {
			return nil, &Error{Stage: StageHash, Source: source, Err: err}
		}
	}

	rec, err := ReadRecord(metaPath)
	if err == nil && rec.Document == nil {
		err = errors.New("record has no document")
	}
	if err == nil {
		if !sameSource(rec.Source, source) {
			return nil, fmt.Errorf("%s is already archived for %s", slug, rec.Source)
		}
		return rec, nil
	}

	c.log.Warn("rebuilding archived record", "path", metaPath, "error", err)
	doc, err := c.decode(ctx, payload, source)
	if err != nil {
		var fe *Error
		if errors.As(err, &fe) {
			fe.Source = source
		}
		return nil, err
	}
	rec = &types.Record{
		ID:        slug,
		Source:    source,
		Hash:      hash,
		RawPath:   rawPath,
		FetchedAt: fetchedAt.UTC(),
		Document:  doc,
	}
	if err := os.MkdirAll(filepath.Dir(metaPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", filepath.Dir(metaPath), err)
	}
	if err := WriteRecord(rec, metaPath); err != nil {
		return nil, fmt.Errorf("writing metadata for %s: %w", slug, err)
	}
	return rec, nil
}

// sameSource reports whether two sources classify to the same anchor.
func sameSource(a, b string) bool {
	ta, na := Classify(a)
	tb, nb := Classify(b)
	return ta == tb && na == nb
}

// WriteRecord writes a record as YAML.
func WriteRecord(rec *types.Record, path string) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	return writeAtomic(path, data)
}

// ReadRecord reads a YAML record.
func ReadRecord(path string) (*types.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec types.Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &rec, nil
}

// writeAtomic writes data to a temp file in the destination directory and
// renames it into place.
func writeAtomic(destPath string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
