// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph defines the read-only view of a predicate-keyed graph node
// that extraction is written against, plus a small in-memory implementation.
//
// A Node binds predicate IRIs to ordered lists of values and declares a set
// of type IRIs. A Value is either a scalar or a nested node; callers coerce
// it with AsString or AsNode and check the second result.
package graph

// Value is a single value bound to a predicate.
type Value interface {
	// AsString returns the value as a string if it is a scalar string.
	AsString() (string, bool)

	// AsNode returns the value as a nested node if it is one.
	AsNode() (Node, bool)
}

// Node is a graph node with predicate-keyed values and type tags.
type Node interface {
	// First returns the first value bound to predicate.
	First(predicate string) (Value, bool)

	// All returns every value bound to predicate in source order. The
	// result is empty, not nil-checked, when nothing is bound.
	All(predicate string) []Value

	// Types returns the node's declared type IRIs without duplicates.
	Types() []string
}
