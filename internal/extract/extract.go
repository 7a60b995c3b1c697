// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract converts a graph node holding expanded CIP-100 governance
// metadata into a types.Document.
//
// Extraction is a single top-down walk. It stops at the first violated
// invariant and returns an *Error naming the field and its path from the
// document root; no partial document is ever returned. The package holds no
// mutable state, so concurrent calls on independent nodes need no locking.
package extract

import (
	"fmt"

	"github.com/pdiddy/govmeta/internal/graph"
	"github.com/pdiddy/govmeta/internal/vocabulary"
	"github.com/pdiddy/govmeta/pkg/types"
)

var (
	fieldHashAlgorithm    = vocabulary.MustLookup(vocabulary.NameHashAlgorithm)
	fieldAuthors          = vocabulary.MustLookup(vocabulary.NameAuthors)
	fieldBody             = vocabulary.MustLookup(vocabulary.NameBody)
	fieldReferences       = vocabulary.MustLookup(vocabulary.NameReferences)
	fieldComment          = vocabulary.MustLookup(vocabulary.NameComment)
	fieldExternalUpdates  = vocabulary.MustLookup(vocabulary.NameExternalUpdates)
	fieldUpdateTitle      = vocabulary.MustLookup(vocabulary.NameUpdateTitle)
	fieldUpdateURI        = vocabulary.MustLookup(vocabulary.NameUpdateURI)
	fieldReferenceType    = vocabulary.MustLookup(vocabulary.NameReferenceType)
	fieldReferenceLabel   = vocabulary.MustLookup(vocabulary.NameReferenceLabel)
	fieldReferenceURI     = vocabulary.MustLookup(vocabulary.NameReferenceURI)
	fieldAuthorName       = vocabulary.MustLookup(vocabulary.NameAuthorName)
	fieldAuthorWitness    = vocabulary.MustLookup(vocabulary.NameAuthorWitness)
	fieldWitnessAlgorithm = vocabulary.MustLookup(vocabulary.NameWitnessAlgorithm)
	fieldWitnessPublicKey = vocabulary.MustLookup(vocabulary.NameWitnessPublicKey)
	fieldWitnessSignature = vocabulary.MustLookup(vocabulary.NameWitnessSignature)
)

// Document extracts a governance metadata document from its root node.
func Document(root graph.Node) (*types.Document, error) {
	hashAlgorithm, err := requiredString(root, "", fieldHashAlgorithm)
	if err != nil {
		return nil, err
	}
	authors, err := repeated(root, "", fieldAuthors, author)
	if err != nil {
		return nil, err
	}
	b, err := nested(root, "", fieldBody, body)
	if err != nil {
		return nil, err
	}
	return &types.Document{
		HashAlgorithm: hashAlgorithm,
		Authors:       authors,
		Body:          b,
	}, nil
}

func author(n graph.Node, at string) (types.Author, error) {
	name, err := requiredString(n, at, fieldAuthorName)
	if err != nil {
		return types.Author{}, err
	}
	w, err := nested(n, at, fieldAuthorWitness, witness)
	if err != nil {
		return types.Author{}, err
	}
	return types.Author{Name: name, Witness: w}, nil
}

func witness(n graph.Node, at string) (types.Witness, error) {
	algorithm, err := requiredString(n, at, fieldWitnessAlgorithm)
	if err != nil {
		return types.Witness{}, err
	}
	publicKey, err := requiredString(n, at, fieldWitnessPublicKey)
	if err != nil {
		return types.Witness{}, err
	}
	signature, err := requiredString(n, at, fieldWitnessSignature)
	if err != nil {
		return types.Witness{}, err
	}
	return types.Witness{
		Algorithm: algorithm,
		PublicKey: publicKey,
		Signature: signature,
	}, nil
}

func body(n graph.Node, at string) (types.Body, error) {
	references, err := repeated(n, at, fieldReferences, reference)
	if err != nil {
		return types.Body{}, err
	}
	comment, err := requiredString(n, at, fieldComment)
	if err != nil {
		return types.Body{}, err
	}
	updates, err := repeated(n, at, fieldExternalUpdates, update)
	if err != nil {
		return types.Body{}, err
	}
	return types.Body{
		References:      references,
		Comment:         comment,
		ExternalUpdates: updates,
	}, nil
}

func reference(n graph.Node, at string) (types.Reference, error) {
	kind, err := referenceType(n, at)
	if err != nil {
		return types.Reference{}, err
	}
	label, err := requiredString(n, at, fieldReferenceLabel)
	if err != nil {
		return types.Reference{}, err
	}
	uri, err := requiredIRI(n, at, fieldReferenceURI)
	if err != nil {
		return types.Reference{}, err
	}
	return types.Reference{Type: kind, Label: label, URI: uri}, nil
}

func update(n graph.Node, at string) (types.Update, error) {
	title, err := requiredString(n, at, fieldUpdateTitle)
	if err != nil {
		return types.Update{}, err
	}
	uri, err := requiredIRI(n, at, fieldUpdateURI)
	if err != nil {
		return types.Update{}, err
	}
	return types.Update{Title: title, URI: uri}, nil
}

// ReferenceType classifies a reference node by its declared type tags. The
// node must declare exactly one tag, and it must be one of the two CIP-100
// reference classes.
func ReferenceType(n graph.Node) (types.ReferenceType, error) {
	return referenceType(n, "")
}

func referenceType(n graph.Node, at string) (types.ReferenceType, error) {
	path := join(at, fieldReferenceType.Key)
	tags := n.Types()
	if len(tags) != 1 {
		return "", invalidCardinality(fieldReferenceType.Name, path)
	}
	switch tags[0] {
	case vocabulary.GovernanceMetadataReference:
		return types.ReferenceGovernanceMetadata, nil
	case vocabulary.OtherReference:
		return types.ReferenceOther, nil
	default:
		return "", unknownEnumerationValue(fieldReferenceType.Name, path, tags[0])
	}
}

// requiredString returns the first value bound to f as a string.
func requiredString(n graph.Node, at string, f vocabulary.Field) (string, error) {
	path := join(at, f.Key)
	v, ok := n.First(f.IRI)
	if !ok {
		return "", missingField(f.Name, path)
	}
	s, ok := v.AsString()
	if !ok {
		return "", wrongType(f.Name, path)
	}
	return s, nil
}

func requiredIRI(n graph.Node, at string, f vocabulary.Field) (types.IRI, error) {
	raw, err := requiredString(n, at, f)
	if err != nil {
		return "", err
	}
	iri, err := types.ParseIRI(raw)
	if err != nil {
		return "", invalidIdentifier(f.Name, join(at, f.Key), raw, err)
	}
	return iri, nil
}

// nested extracts the first value bound to f as a child entity.
func nested[T any](n graph.Node, at string, f vocabulary.Field, convert func(graph.Node, string) (T, error)) (T, error) {
	var zero T
	path := join(at, f.Key)
	v, ok := n.First(f.IRI)
	if !ok {
		return zero, missingField(f.Name, path)
	}
	child, ok := v.AsNode()
	if !ok {
		return zero, wrongType(f.Name, path)
	}
	return convert(child, path)
}

// repeated extracts every value bound to f, in source order. The result is
// never nil.
func repeated[T any](n graph.Node, at string, f vocabulary.Field, convert func(graph.Node, string) (T, error)) ([]T, error) {
	values := n.All(f.IRI)
	base := join(at, f.Key)
	out := make([]T, 0, len(values))
	for i, v := range values {
		path := fmt.Sprintf("%s[%d]", base, i)
		child, ok := v.AsNode()
		if !ok {
			return nil, wrongType(f.Name, path)
		}
		item, err := convert(child, path)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func join(at, key string) string {
	if at == "" {
		return key
	}
	return at + "." + key
}
