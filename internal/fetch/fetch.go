// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves governance metadata documents from their anchors,
// expands them as JSON-LD and extracts the typed document.
package fetch

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/pdiddy/govmeta/internal/extract"
	"github.com/pdiddy/govmeta/internal/httputil"
	"github.com/pdiddy/govmeta/internal/jsonld"
	"github.com/pdiddy/govmeta/internal/logger"
	"github.com/pdiddy/govmeta/internal/secrets"
	"github.com/pdiddy/govmeta/pkg/types"
)

// Stage names the step of Fetch that failed.
type Stage string

const (
	StageRetrieve Stage = "retrieve"
	StageHash     Stage = "hash"
	StageParse    Stage = "parse"
	StageExpand   Stage = "expand"
	StageRoot     Stage = "root"
	StageExtract  Stage = "extract"
)

var (
	// ErrUnsupportedSource is returned for sources Classify cannot place.
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrBodyTooLarge is returned when a payload exceeds MaxBodyBytes.
	ErrBodyTooLarge = errors.New("payload exceeds size limit")

	// ErrHashMismatch is returned when the payload digest differs from the
	// expected anchor hash.
	ErrHashMismatch = errors.New("payload hash mismatch")
)

// Error reports a Fetch failure and the stage it happened in. Extraction
// failures wrap an *extract.Error, reachable with errors.As.
type Error struct {
	Stage  Stage
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// StageOf returns the stage of a fetch error, or "" if err is not one.
func StageOf(err error) Stage {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Stage
	}
	return ""
}

// StatusError is returned when an HTTP source answers with a non-200 status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// Result is a fetched and extracted document.
type Result struct {
	Source      string
	ResolvedURL string
	Payload     []byte
	// Hash is the hex blake2b-256 digest of Payload.
	Hash     string
	Document *types.Document
}

// Client retrieves metadata documents.
type Client struct {
	http    *http.Client
	cfg     types.FetchConfig
	secrets secrets.Secrets
	log     *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client built from the config timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSecrets supplies credentials sent to gateways and metadata hosts.
func WithSecrets(s secrets.Secrets) Option {
	return func(c *Client) { c.secrets = s }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a Client from cfg.
func NewClient(cfg types.FetchConfig, opts ...Option) *Client {
	c := &Client{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: cfg.Timeout}
	}
	if c.log == nil {
		c.log = logger.Discard()
	}
	if c.secrets == nil {
		c.secrets = secrets.Secrets{}
	}
	return c
}

// Config returns the client's configuration.
func (c *Client) Config() types.FetchConfig { return c.cfg }

type fetchOptions struct {
	expectHash string
}

// FetchOption adjusts a single Fetch call.
type FetchOption func(*fetchOptions)

// ExpectHash requires the payload's blake2b-256 digest to equal the given
// hex string, as published alongside an on-chain anchor.
func ExpectHash(hexDigest string) FetchOption {
	return func(o *fetchOptions) { o.expectHash = hexDigest }
}

// Fetch retrieves source, checks the anchor hash when one is expected,
// expands the payload and extracts the document.
func (c *Client) Fetch(ctx context.Context, source string, opts ...FetchOption) (*Result, error) {
	var fo fetchOptions
	for _, opt := range opts {
		opt(&fo)
	}

	st, normalized := Classify(source)
	if st == SourceUnknown {
		return nil, &Error{Stage: StageRetrieve, Source: source, Err: fmt.Errorf("%w: %q", ErrUnsupportedSource, source)}
	}

	payload, resolved, err := c.retrieve(ctx, st, normalized)
	if err != nil {
		return nil, &Error{Stage: StageRetrieve, Source: source, Err: err}
	}

	res := &Result{
		Source:      source,
		ResolvedURL: resolved,
		Payload:     payload,
		Hash:        Hash(payload),
	}

	if fo.expectHash != "" {
		if err := checkHash(res.Hash, fo.expectHash); err != nil {
			return nil, &Error{Stage: StageHash, Source: source, Err: err}
		}
	}

	doc, err := c.decode(ctx, payload, resolved)
	if err != nil {
		var fe *Error
		if errors.As(err, &fe) {
			fe.Source = source
		}
		return nil, err
	}
	res.Document = doc

	c.log.Debug("fetched document",
		"source", source,
		"resolved", resolved,
		"bytes", len(payload),
		"authors", len(doc.Authors))
	return res, nil
}

// Load retrieves and extracts source, returning just the document.
func (c *Client) Load(ctx context.Context, source string) (*types.Document, error) {
	res, err := c.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	return res.Document, nil
}

// Decode expands and extracts a payload that was obtained out of band.
// base resolves relative IRIs inside the payload.
func (c *Client) Decode(ctx context.Context, payload []byte, base string) (*types.Document, error) {
	return c.decode(ctx, payload, base)
}

func (c *Client) decode(ctx context.Context, payload []byte, base string) (*types.Document, error) {
	parsed, err := jsonld.Parse(payload)
	if err != nil {
		return nil, &Error{Stage: StageParse, Source: base, Err: err}
	}

	expanded, err := jsonld.Expand(ctx, parsed, base, jsonld.Options{
		AllowRemoteContexts: c.cfg.AllowRemoteContexts,
		HTTPClient:          c.http,
	})
	if err != nil {
		return nil, &Error{Stage: StageExpand, Source: base, Err: err}
	}

	root, err := jsonld.Root(expanded)
	if err != nil {
		return nil, &Error{Stage: StageRoot, Source: base, Err: err}
	}

	doc, err := extract.Document(root)
	if err != nil {
		return nil, &Error{Stage: StageExtract, Source: base, Err: err}
	}
	return doc, nil
}

// retrieve returns the payload bytes and the URL or IRI they came from.
func (c *Client) retrieve(ctx context.Context, st SourceType, normalized string) ([]byte, string, error) {
	switch st {
	case SourceHTTP:
		req, err := c.newRequest(ctx, normalized)
		if err != nil {
			return nil, "", err
		}
		if token := c.secrets.Get(secrets.MetadataBearerToken); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		payload, err := c.get(ctx, req)
		return payload, normalized, err

	case SourceIPFS:
		resolved := gatewayURL(c.cfg.IPFSGateway, normalized)
		req, err := c.newRequest(ctx, resolved)
		if err != nil {
			return nil, "", err
		}
		if id := c.secrets.Get(secrets.BlockfrostProjectID); id != "" {
			req.Header.Set("project_id", id)
		}
		payload, err := c.get(ctx, req)
		return payload, resolved, err

	case SourceFile:
		abs, err := filepath.Abs(normalized)
		if err != nil {
			return nil, "", fmt.Errorf("resolving path: %w", err)
		}
		f, err := os.Open(abs)
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		payload, err := c.readLimited(f)
		return payload, "file://" + filepath.ToSlash(abs), err
	}
	return nil, "", ErrUnsupportedSource
}

func (c *Client) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/ld+json, application/json;q=0.9")
	return req, nil
}

func (c *Client) get(ctx context.Context, req *http.Request) ([]byte, error) {
	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries, c.log)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: req.URL.String()}
	}
	return c.readLimited(resp.Body)
}

func (c *Client) readLimited(r io.Reader) ([]byte, error) {
	if c.cfg.MaxBodyBytes <= 0 {
		return io.ReadAll(r)
	}
	payload, err := io.ReadAll(io.LimitReader(r, c.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(payload)) > c.cfg.MaxBodyBytes {
		return nil, fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, c.cfg.MaxBodyBytes)
	}
	return payload, nil
}

// Hash returns the hex blake2b-256 digest of payload, the digest Cardano
// anchors commit to.
func Hash(payload []byte) string {
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func checkHash(got, want string) error {
	want = strings.ToLower(strings.TrimSpace(want))
	if b, err := hex.DecodeString(want); err != nil || len(b) != blake2b.Size256 {
		return fmt.Errorf("expected hash %q is not a 32-byte hex digest", want)
	}
	if got != want {
		return fmt.Errorf("%w: got %s, want %s", ErrHashMismatch, got, want)
	}
	return nil
}
