// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/govmeta/internal/fetch"
	"github.com/pdiddy/govmeta/pkg/types"
)

const missingHash = `{"@context": {"@vocab": "https://example.com/vocab#"}, "title": "draft"}`

func example(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("../jsonld/testdata/cip100-example.jsonld")
	require.NoError(t, err)
	return data
}

func write(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func loader() *fetch.Client {
	return fetch.NewClient(types.DefaultConfig().Fetch)
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jsonld")
	b := filepath.Join(dir, "sub", "deep", "b.jsonld")
	write(t, a, nil)
	write(t, b, nil)
	write(t, filepath.Join(dir, "notes.txt"), nil)

	t.Run("double star", func(t *testing.T) {
		got, err := Expand([]string{filepath.Join(dir, "**", "*.jsonld")})
		require.NoError(t, err)
		assert.Equal(t, []string{a, b}, got)
	})

	t.Run("plain path and dedup", func(t *testing.T) {
		got, err := Expand([]string{a, filepath.Join(dir, "*.jsonld"), a})
		require.NoError(t, err)
		assert.Equal(t, []string{a}, got)
	})

	t.Run("glob matching nothing", func(t *testing.T) {
		got, err := Expand([]string{filepath.Join(dir, "*.yaml")})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("missing plain path", func(t *testing.T) {
		_, err := Expand([]string{filepath.Join(dir, "absent.jsonld")})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := Expand([]string{dir})
		assert.ErrorContains(t, err, "is a directory")
	})
}

func TestMatch(t *testing.T) {
	patterns := []string{"/data/**/*.jsonld", "/other/meta.json"}

	assert.True(t, Match(patterns, "/data/a.jsonld"))
	assert.True(t, Match(patterns, "/data/x/y/b.jsonld"))
	assert.True(t, Match(patterns, "/other/meta.json"))
	assert.False(t, Match(patterns, "/data/a.json"))
	assert.False(t, Match(patterns, "/other/meta2.json"))
}

func TestWatchRoots(t *testing.T) {
	got := watchRoots([]string{
		"/data/**/*.jsonld",
		"/data/drafts/*.jsonld",
		"/other/meta.json",
		"*.jsonld",
	})
	assert.Equal(t, []string{".", "/data", "/data/drafts", "/other"}, got)
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.jsonld")
	bad := filepath.Join(dir, "bad.jsonld")
	broken := filepath.Join(dir, "broken.jsonld")
	write(t, good, example(t))
	write(t, bad, []byte(missingHash))
	write(t, broken, []byte(`{"hashAlgorithm":`))

	var out bytes.Buffer
	s := Files(context.Background(), loader(), []string{bad, broken, good}, &out)

	assert.Equal(t, Summary{Valid: 1, Invalid: 2}, s)
	assert.Equal(t, 3, s.Total())
	assert.Contains(t, out.String(), "ok:      "+good+" (1 authors, 1 references)")
	assert.Contains(t, out.String(), "invalid: "+bad+": MissingField: missing field \"hash algorithm\"")
	assert.Contains(t, out.String(), "invalid: "+broken+": parse ")
	assert.Contains(t, out.String(), "1 valid, 2 invalid (total: 3)")
}

func TestWatcher_RevalidatesOnChange(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "drafts", "proposal.jsonld")
	write(t, target, []byte(missingHash))

	var out syncBuffer
	w, err := NewWatcher([]string{filepath.Join(dir, "**", "*.jsonld")}, loader(), &out, nil, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Keep rewriting until the watcher has picked the change up; the first
	// writes may land before the watches are registered.
	payload := example(t)
	require.Eventually(t, func() bool {
		write(t, target, payload)
		return bytes.Contains([]byte(out.String()), []byte("ok:      "+target))
	}, 5*time.Second, 50*time.Millisecond)

	// Files outside the patterns are ignored.
	write(t, filepath.Join(dir, "drafts", "notes.txt"), []byte("x"))
	time.Sleep(100 * time.Millisecond)
	assert.NotContains(t, out.String(), "notes.txt")

	cancel()
	assert.NoError(t, <-done)
}
