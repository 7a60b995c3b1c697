// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the CIP-100 governance metadata model and the
// configuration structs shared across stages.
package types

// ReferenceType classifies the document a Reference points at.
type ReferenceType string

const (
	// ReferenceGovernanceMetadata marks a reference to another CIP-100
	// governance metadata document.
	ReferenceGovernanceMetadata ReferenceType = "GovernanceMetadata"

	// ReferenceOther marks a reference to a document that should not be
	// assumed to follow CIP-100.
	ReferenceOther ReferenceType = "Other"
)

// ReferenceTypes lists every ReferenceType variant.
var ReferenceTypes = []ReferenceType{ReferenceGovernanceMetadata, ReferenceOther}

// Valid reports whether t is a known variant.
func (t ReferenceType) Valid() bool {
	return t == ReferenceGovernanceMetadata || t == ReferenceOther
}

// Witness is an author's attestation over the document. The fields are
// carried as published; signatures are not verified here.
type Witness struct {
	// Algorithm is the signing algorithm (e.g. "ed25519").
	Algorithm string `json:"algorithm" yaml:"algorithm"`

	// PublicKey is the key the signature was produced with.
	PublicKey string `json:"public_key" yaml:"public_key"`

	// Signature is the signature over the document.
	Signature string `json:"signature" yaml:"signature"`
}

// Author is a cosigner of the document. Name is self-reported.
type Author struct {
	Name    string  `json:"name" yaml:"name"`
	Witness Witness `json:"witness" yaml:"witness"`
}

// Reference points at another document that gives context to this one.
type Reference struct {
	Type  ReferenceType `json:"type" yaml:"type"`
	Label string        `json:"label" yaml:"label"`
	URI   IRI           `json:"uri" yaml:"uri"`
}

// Update is a place where updated information about the document may be
// found. Content behind it is unauthenticated.
type Update struct {
	Title string `json:"title" yaml:"title"`
	URI   IRI    `json:"uri" yaml:"uri"`
}

// Body is the commentary section of a governance metadata document.
type Body struct {
	// References lists referenced documents in source order.
	References []Reference `json:"references" yaml:"references"`

	// Comment is the free-form text of the document.
	Comment string `json:"comment" yaml:"comment"`

	// ExternalUpdates lists update feeds in source order.
	ExternalUpdates []Update `json:"external_updates" yaml:"external_updates"`
}

// Document is a CIP-100 governance metadata document.
type Document struct {
	// HashAlgorithm names the algorithm used to hash the document for
	// signing (e.g. "blake2b-256").
	HashAlgorithm string `json:"hash_algorithm" yaml:"hash_algorithm"`

	// Authors lists cosigning authors in source order.
	Authors []Author `json:"authors" yaml:"authors"`

	Body Body `json:"body" yaml:"body"`
}
