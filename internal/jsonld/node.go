// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jsonld

import (
	"github.com/pdiddy/govmeta/internal/graph"
)

const (
	keywordID    = "@id"
	keywordType  = "@type"
	keywordValue = "@value"
	keywordList  = "@list"
)

// Node is a node object in expanded JSON-LD form.
type Node struct {
	obj map[string]any
}

var _ graph.Node = (*Node)(nil)

// ID returns the node's @id, or "" for a blank node without one.
func (n *Node) ID() string {
	id, _ := n.obj[keywordID].(string)
	return id
}

// First implements graph.Node.
func (n *Node) First(predicate string) (graph.Value, bool) {
	vs := n.All(predicate)
	if len(vs) == 0 {
		return nil, false
	}
	return vs[0], true
}

// All implements graph.Node. Members of @list objects are returned inline,
// in list order.
func (n *Node) All(predicate string) []graph.Value {
	raw, _ := n.obj[predicate].([]any)
	out := make([]graph.Value, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			if list, ok := m[keywordList].([]any); ok {
				for _, member := range list {
					out = append(out, value{member})
				}
				continue
			}
		}
		out = append(out, value{item})
	}
	return out
}

// Types implements graph.Node.
func (n *Node) Types() []string {
	raw, _ := n.obj[keywordType].([]any)
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		if s, ok := t.(string); ok {
			tags = append(tags, s)
		}
	}
	return graph.Unique(tags)
}

// value is one entry of an expanded property array.
type value struct {
	raw any
}

// AsString returns the @value of a value object when it is a string.
// Language-tagged and typed strings both qualify.
func (v value) AsString() (string, bool) {
	m, ok := v.raw.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := m[keywordValue].(string)
	return s, ok
}

// AsNode returns the entry as a node when it is a node object.
func (v value) AsNode() (graph.Node, bool) {
	n, ok := asNodeObject(v.raw)
	if !ok {
		return nil, false
	}
	return n, true
}

func asNodeObject(raw any) (*Node, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	if _, isValue := m[keywordValue]; isValue {
		return nil, false
	}
	if _, isList := m[keywordList]; isList {
		return nil, false
	}
	return &Node{obj: m}, true
}
