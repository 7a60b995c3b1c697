// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import "fmt"

// MapNode is an in-memory Node. Build it with NewNode and Bind; once handed
// to a reader it must not be modified.
type MapNode struct {
	types    []string
	bindings map[string][]Value
}

// NewNode returns an empty node declaring the given types.
func NewNode(types ...string) *MapNode {
	n := &MapNode{bindings: map[string][]Value{}}
	return n.WithTypes(types...)
}

// WithTypes replaces the node's declared types. Duplicates are dropped,
// keeping the first occurrence.
func (n *MapNode) WithTypes(types ...string) *MapNode {
	n.types = Unique(types)
	return n
}

// Bind appends values to predicate, preserving order.
func (n *MapNode) Bind(predicate string, values ...Value) *MapNode {
	n.bindings[predicate] = append(n.bindings[predicate], values...)
	return n
}

// Unbind removes every value bound to predicate.
func (n *MapNode) Unbind(predicate string) *MapNode {
	delete(n.bindings, predicate)
	return n
}

// First implements Node.
func (n *MapNode) First(predicate string) (Value, bool) {
	vs := n.bindings[predicate]
	if len(vs) == 0 {
		return nil, false
	}
	return vs[0], true
}

// All implements Node.
func (n *MapNode) All(predicate string) []Value {
	vs := n.bindings[predicate]
	out := make([]Value, len(vs))
	copy(out, vs)
	return out
}

// Types implements Node.
func (n *MapNode) Types() []string {
	out := make([]string, len(n.types))
	copy(out, n.types)
	return out
}

// Predicates returns the number of bound predicates.
func (n *MapNode) Predicates() int {
	return len(n.bindings)
}

type stringValue string

func (s stringValue) AsString() (string, bool) { return string(s), true }
func (s stringValue) AsNode() (Node, bool)     { return nil, false }

// String returns a scalar string value.
func String(s string) Value { return stringValue(s) }

// literalValue is a non-string scalar (number, boolean).
type literalValue struct{ v any }

func (l literalValue) AsString() (string, bool) { return "", false }
func (l literalValue) AsNode() (Node, bool)     { return nil, false }
func (l literalValue) String() string           { return fmt.Sprint(l.v) }

// Number returns a numeric scalar value. It does not coerce to string.
func Number(f float64) Value { return literalValue{f} }

// Bool returns a boolean scalar value. It does not coerce to string.
func Bool(b bool) Value { return literalValue{b} }

type nodeValue struct{ n Node }

func (v nodeValue) AsString() (string, bool) { return "", false }
func (v nodeValue) AsNode() (Node, bool)     { return v.n, true }

// NodeValue wraps a node so it can be bound as a value.
func NodeValue(n Node) Value { return nodeValue{n} }

// Unique returns in without duplicates, keeping first occurrences in order.
func Unique(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
