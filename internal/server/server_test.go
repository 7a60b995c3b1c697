// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/govmeta/internal/fetch"
	"github.com/pdiddy/govmeta/internal/logger"
	"github.com/pdiddy/govmeta/internal/store"
	"github.com/pdiddy/govmeta/pkg/types"
)

const examplePath = "../jsonld/testdata/cip100-example.jsonld"

func readExample(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(examplePath)
	require.NoError(t, err)
	return string(data)
}

// fakeRecords is an in-memory Records.
type fakeRecords map[string]*types.Record

func (f fakeRecords) Get(_ context.Context, id string) (*types.Record, error) {
	rec, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return rec, nil
}

// upstream serves metadata payloads by path.
func upstream(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	cfg := types.DefaultConfig()
	cfg.Fetch.MaxRetries = 1
	cfg.Fetch.MaxBodyBytes = 64 << 10
	s := New(cfg.Server, fetch.NewClient(cfg.Fetch), opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealthz_RequestID(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	var body map[string]string
	decodeBody(t, resp, &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	_, err = uuid.Parse(resp.Header.Get(RequestIDHeader))
	assert.NoError(t, err, "generated request id should be a UUID")

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "caller-supplied")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "caller-supplied", resp.Header.Get(RequestIDHeader))
}

func TestExtract_OK(t *testing.T) {
	s, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/v1/extract?base="+url.QueryEscape("https://example.com/meta.jsonld"),
		"application/ld+json", strings.NewReader(readExample(t)))
	require.NoError(t, err)
	var doc types.Document
	decodeBody(t, resp, &doc)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "blake2b-256", doc.HashAlgorithm)
	require.Len(t, doc.Authors, 1)
	assert.Equal(t, "Pi Lanningham", doc.Authors[0].Name)
	assert.Equal(t, types.IRI("https://314pool.com"), doc.Body.ExternalUpdates[0].URI)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.extractions.WithLabelValues("ok", "")))
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantStatus int
		wantStage  string
		wantKind   string
		wantField  string
		wantPath   string
	}{
		{
			name:       "missing hash algorithm",
			payload:    `{"@context": {"@vocab": "https://example.com/vocab#"}, "title": "x"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantStage:  "extract",
			wantKind:   "MissingField",
			wantField:  "hash algorithm",
			wantPath:   "hash_algorithm",
		},
		{
			name:       "invalid json",
			payload:    `{"hashAlgorithm":`,
			wantStatus: http.StatusUnprocessableEntity,
			wantStage:  "parse",
		},
		{
			name:       "empty document",
			payload:    `[]`,
			wantStatus: http.StatusUnprocessableEntity,
			wantStage:  "root",
		},
		{
			name:       "remote context",
			payload:    `{"@context": "https://contexts.example.com/c.jsonld"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantStage:  "expand",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ts := newTestServer(t)
			resp, err := http.Post(ts.URL+"/v1/extract", "application/ld+json", strings.NewReader(tt.payload))
			require.NoError(t, err)
			var body errorBody
			decodeBody(t, resp, &body)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantStage, body.Stage)
			assert.Equal(t, tt.wantKind, body.Kind)
			assert.Equal(t, tt.wantField, body.Field)
			if tt.wantPath != "" {
				assert.Equal(t, tt.wantPath, body.Path)
			}
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestExtract_MetricsByKind(t *testing.T) {
	s, ts := newTestServer(t)
	payload := `{"@context": {"@vocab": "https://example.com/vocab#"}, "title": "x"}`

	for i := 0; i < 2; i++ {
		resp, err := http.Post(ts.URL+"/v1/extract", "application/json", strings.NewReader(payload))
		require.NoError(t, err)
		resp.Body.Close()
	}
	resp, err := http.Post(ts.URL+"/v1/extract", "application/json", strings.NewReader("nope"))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.extractions.WithLabelValues("error", "MissingField")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.extractions.WithLabelValues("error", "parse")))

	metrics, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	text, err := io.ReadAll(metrics.Body)
	require.NoError(t, err)
	assert.Contains(t, string(text), `govmeta_extractions_total{kind="MissingField",result="error"} 2`)
	assert.Contains(t, string(text), "govmeta_extraction_duration_seconds_bucket")
}

func TestExtract_BodyTooLarge(t *testing.T) {
	_, ts := newTestServer(t)
	big := `{"comment": "` + strings.Repeat("x", 70<<10) + `"}`

	resp, err := http.Post(ts.URL+"/v1/extract", "application/json", strings.NewReader(big))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestFetch(t *testing.T) {
	meta := upstream(t, map[string]string{"/drep.jsonld": readExample(t)})
	_, ts := newTestServer(t)

	t.Run("ok", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/v1/fetch?source=" + url.QueryEscape(meta.URL+"/drep.jsonld"))
		require.NoError(t, err)
		var body fetchResponse
		decodeBody(t, resp, &body)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, fetch.Hash([]byte(readExample(t))), body.Hash)
		assert.Equal(t, meta.URL+"/drep.jsonld", body.ResolvedURL)
		require.NotNil(t, body.Document)
		assert.Len(t, body.Document.Authors, 1)
	})

	t.Run("hash mismatch", func(t *testing.T) {
		q := url.Values{
			"source":      {meta.URL + "/drep.jsonld"},
			"expect_hash": {strings.Repeat("00", 32)},
		}
		resp, err := http.Get(ts.URL + "/v1/fetch?" + q.Encode())
		require.NoError(t, err)
		var body errorBody
		decodeBody(t, resp, &body)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "hash", body.Stage)
	})

	t.Run("missing source", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/v1/fetch")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unsupported source", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/v1/fetch?source=" + url.QueryEscape("ftp://example.com/x"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("upstream not found", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/v1/fetch?source=" + url.QueryEscape(meta.URL+"/absent.jsonld"))
		require.NoError(t, err)
		var body errorBody
		decodeBody(t, resp, &body)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, "retrieve", body.Stage)
	})
}

func TestFetch_RejectsLocalFiles(t *testing.T) {
	_, ts := newTestServer(t)
	private := filepath.Join(t.TempDir(), "private.jsonld")
	require.NoError(t, os.WriteFile(private, []byte(readExample(t)), 0o600))

	for _, source := range []string{
		private,
		"file://" + filepath.ToSlash(private),
		"/nonexistent/file",
	} {
		t.Run(source, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/v1/fetch?source=" + url.QueryEscape(source))
			require.NoError(t, err)
			defer resp.Body.Close()
			text, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotContains(t, string(text), "Pi Lanningham")
			assert.NotContains(t, string(text), "no such file")
		})
	}
}

func TestRequestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	cfg := types.DefaultConfig()
	s := New(cfg.Server, fetch.NewClient(cfg.Fetch), WithLogger(logger.NewWithWriter(&buf, "info")))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, buf.String(), "successful requests log at debug")

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/fetch", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, buf.String(), "level=INFO")
	assert.Contains(t, buf.String(), "path=/v1/fetch")
	assert.Contains(t, buf.String(), "status=400")

	assert.Equal(t, slog.LevelDebug, requestLevel(http.StatusOK))
	assert.Equal(t, slog.LevelInfo, requestLevel(http.StatusNotFound))
	assert.Equal(t, slog.LevelWarn, requestLevel(http.StatusBadGateway))
}

func TestDocuments(t *testing.T) {
	records := fakeRecords{
		"alice": {
			ID:     "alice",
			Source: "https://example.com/alice.jsonld",
			Document: &types.Document{
				HashAlgorithm: "blake2b-256",
				Authors:       []types.Author{},
				Body:          types.Body{References: []types.Reference{}, ExternalUpdates: []types.Update{}},
			},
		},
	}
	_, ts := newTestServer(t, WithRecords(records))

	resp, err := http.Get(ts.URL + "/v1/documents/alice")
	require.NoError(t, err)
	var rec types.Record
	decodeBody(t, resp, &rec)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://example.com/alice.jsonld", rec.Source)

	resp, err = http.Get(ts.URL + "/v1/documents/bob")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDocuments_DisabledWithoutRecords(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/documents/alice")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListenAndServe_ShutsDownOnCancel(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:0"
	s := New(cfg.Server, fetch.NewClient(cfg.Fetch))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
