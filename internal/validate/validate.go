// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate checks local metadata files against the extraction rules
// and optionally re-checks them as they change on disk.
package validate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pdiddy/govmeta/internal/extract"
	"github.com/pdiddy/govmeta/pkg/types"
)

// Loader extracts a document from a local path.
type Loader interface {
	Load(ctx context.Context, source string) (*types.Document, error)
}

// Summary counts the outcome of a validation run.
type Summary struct {
	Valid   int
	Invalid int
}

// Total returns the number of files checked.
func (s Summary) Total() int { return s.Valid + s.Invalid }

// Expand resolves each pattern to files. Plain paths are kept as given and
// must exist; patterns containing glob characters are matched with **
// support and may match nothing. The result is sorted and deduplicated.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, pattern := range patterns {
		if !containsGlob(pattern) {
			info, err := os.Stat(pattern)
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", pattern, err)
			}
			if info.IsDir() {
				return nil, fmt.Errorf("%s is a directory; use a glob such as %s", pattern, filepath.Join(pattern, "**", "*.jsonld"))
			}
			add(pattern)
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		for _, m := range matches {
			add(m)
		}
	}

	sort.Strings(files)
	return files, nil
}

// Match reports whether path is selected by any of the patterns.
func Match(patterns []string, path string) bool {
	path = filepath.Clean(path)
	for _, pattern := range patterns {
		if !containsGlob(pattern) {
			if filepath.Clean(pattern) == path {
				return true
			}
			continue
		}
		if ok, _ := doublestar.PathMatch(filepath.Clean(pattern), path); ok {
			return true
		}
	}
	return false
}

// Files validates each file and writes one status line per file followed by
// a summary line.
func Files(ctx context.Context, l Loader, files []string, w io.Writer) Summary {
	var s Summary
	for _, f := range files {
		if File(ctx, l, f, w) {
			s.Valid++
		} else {
			s.Invalid++
		}
	}
	fmt.Fprintf(w, "\n%d valid, %d invalid (total: %d)\n", s.Valid, s.Invalid, s.Total())
	return s
}

// File validates one file and writes its status line. It returns true when
// the document extracts cleanly.
func File(ctx context.Context, l Loader, path string, w io.Writer) bool {
	doc, err := l.Load(ctx, path)
	if err != nil {
		fmt.Fprintf(w, "invalid: %s: %s\n", path, describe(err))
		return false
	}
	fmt.Fprintf(w, "ok:      %s (%d authors, %d references)\n", path, len(doc.Authors), len(doc.Body.References))
	return true
}

// describe prefixes extraction failures with their kind.
func describe(err error) string {
	var ee *extract.Error
	if errors.As(err, &ee) {
		return string(ee.Kind) + ": " + ee.Error()
	}
	return err.Error()
}

func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
