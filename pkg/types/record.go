// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Record is the archived form of a fetched metadata document. It is written
// as YAML next to the raw payload and is the unit the store indexes.
type Record struct {
	// ID is the filesystem-safe slug derived from the source.
	ID string `json:"id" yaml:"id"`

	// Source is the anchor the document was fetched from, as given.
	Source string `json:"source" yaml:"source"`

	// ResolvedURL is the URL actually requested (gateway URL for IPFS).
	ResolvedURL string `json:"resolved_url,omitempty" yaml:"resolved_url,omitempty"`

	// Hash is the hex blake2b-256 digest of the raw payload bytes.
	Hash string `json:"hash" yaml:"hash"`

	// RawPath is the archived payload location.
	RawPath string `json:"raw_path,omitempty" yaml:"raw_path,omitempty"`

	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`

	Document *Document `json:"document,omitempty" yaml:"document,omitempty"`
}
