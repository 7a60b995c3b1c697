// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"errors"
	"fmt"
)

// Kind is a stable category for programmatic error handling. Callers should
// branch on Kind rather than matching error strings.
type Kind string

const (
	// KindMissingField: a required predicate is not bound on the node.
	KindMissingField Kind = "MissingField"

	// KindWrongType: a value is bound but cannot be coerced to the expected
	// string or node.
	KindWrongType Kind = "WrongType"

	// KindInvalidCardinality: a field expected to hold exactly one value
	// holds zero or several (reference type tags).
	KindInvalidCardinality Kind = "InvalidCardinality"

	// KindUnknownEnumerationValue: a type tag matches no known variant.
	KindUnknownEnumerationValue Kind = "UnknownEnumerationValue"

	// KindInvalidIdentifier: a string meant as an IRI fails validation.
	KindInvalidIdentifier Kind = "InvalidIdentifier"
)

// Error reports the first invariant violation found during extraction.
//
// Field is the semantic field name (e.g. "author name"). Path locates the
// field from the document root (e.g. "authors[0].name"). Value holds the
// offending raw value for UnknownEnumerationValue and InvalidIdentifier.
type Error struct {
	Kind  Kind
	Field string
	Path  string
	Value string
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var msg string
	switch e.Kind {
	case KindMissingField:
		msg = fmt.Sprintf("missing field %q", e.Field)
	case KindWrongType:
		msg = fmt.Sprintf("field %q has the wrong type", e.Field)
	case KindInvalidCardinality:
		msg = fmt.Sprintf("field %q must have exactly one value", e.Field)
	case KindUnknownEnumerationValue:
		msg = fmt.Sprintf("unknown %s %q", e.Field, e.Value)
	case KindInvalidIdentifier:
		msg = fmt.Sprintf("field %q is not a valid IRI: %q", e.Field, e.Value)
	default:
		msg = fmt.Sprintf("%s: field %q", e.Kind, e.Field)
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// KindOf returns the Kind of a structured error, or "" if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}

func missingField(field, path string) error {
	return &Error{Kind: KindMissingField, Field: field, Path: path}
}

func wrongType(field, path string) error {
	return &Error{Kind: KindWrongType, Field: field, Path: path}
}

func invalidCardinality(field, path string) error {
	return &Error{Kind: KindInvalidCardinality, Field: field, Path: path}
}

func unknownEnumerationValue(field, path, value string) error {
	return &Error{Kind: KindUnknownEnumerationValue, Field: field, Path: path, Value: value}
}

func invalidIdentifier(field, path, raw string, cause error) error {
	return &Error{Kind: KindInvalidIdentifier, Field: field, Path: path, Value: raw, Cause: cause}
}
