// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jsonld expands JSON-LD payloads and exposes expanded node objects
// through the graph.Node interface.
package jsonld

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/piprate/json-gold/ld"
)

var (
	// ErrNoObjects is returned when expansion yields no top-level objects.
	ErrNoObjects = errors.New("no objects in document")

	// ErrNotNode is returned when the first top-level object is a value or
	// list object rather than a node object.
	ErrNotNode = errors.New("object in document isn't a node")

	// ErrRemoteContext is returned when a payload references a remote
	// @context and remote contexts are not allowed.
	ErrRemoteContext = errors.New("remote contexts are disabled")
)

// Options controls expansion.
type Options struct {
	// AllowRemoteContexts lets expansion dereference remote @context IRIs
	// over HTTP. When false, only inline contexts are accepted.
	AllowRemoteContexts bool

	// HTTPClient is used for remote contexts. Nil means http.DefaultClient.
	HTTPClient *http.Client
}

// Parse decodes a JSON payload into the generic form expected by Expand.
func Parse(payload []byte) (any, error) {
	doc, err := ld.DocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("parsing JSON payload: %w", err)
	}
	return doc, nil
}

// Expand runs the JSON-LD expansion algorithm over a parsed document. base
// is the document's own IRI and resolves relative references.
//
// Expansion itself is not interruptible; ctx is checked before it starts
// and again before the result is returned.
func Expand(ctx context.Context, doc any, base string, opts Options) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	options := ld.NewJsonLdOptions(base)
	options.DocumentLoader = newLoader(opts)

	expanded, err := ld.NewJsonLdProcessor().Expand(doc, options)
	if err != nil {
		var ldErr *ld.JsonLdError
		if !opts.AllowRemoteContexts && errors.As(err, &ldErr) && ldErr.Code == ld.LoadingRemoteContextFailed {
			return nil, fmt.Errorf("expanding document: %w: %v", ErrRemoteContext, ldErr.Details)
		}
		return nil, fmt.Errorf("expanding document: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return expanded, nil
}

// ExpandBytes parses and expands a payload in one step.
func ExpandBytes(ctx context.Context, payload []byte, base string, opts Options) ([]any, error) {
	doc, err := Parse(payload)
	if err != nil {
		return nil, err
	}
	return Expand(ctx, doc, base, opts)
}

// Root returns the first top-level object of an expanded document as a
// node.
func Root(expanded []any) (*Node, error) {
	if len(expanded) == 0 {
		return nil, ErrNoObjects
	}
	n, ok := asNodeObject(expanded[0])
	if !ok {
		return nil, ErrNotNode
	}
	return n, nil
}

func newLoader(opts Options) ld.DocumentLoader {
	if !opts.AllowRemoteContexts {
		return offlineLoader{}
	}
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return ld.NewCachingDocumentLoader(ld.NewDefaultDocumentLoader(client))
}

// offlineLoader refuses every remote document.
type offlineLoader struct{}

func (offlineLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	return nil, ld.NewJsonLdError(ld.LoadingRemoteContextFailed, fmt.Errorf("%w: %s", ErrRemoteContext, u))
}
