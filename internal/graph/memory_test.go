// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapNode_FirstAndAll(t *testing.T) {
	n := NewNode().
		Bind("p", String("a"), String("b")).
		Bind("p", String("c"))

	v, ok := n.First("p")
	require.True(t, ok)
	s, ok := v.AsString()
	require.True(t, ok)
	assert.Equal(t, "a", s)

	var got []string
	for _, v := range n.All("p") {
		s, _ := v.AsString()
		got = append(got, s)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)

	_, ok = n.First("missing")
	assert.False(t, ok)
	assert.Empty(t, n.All("missing"))
}

func TestMapNode_AllReturnsCopy(t *testing.T) {
	n := NewNode().Bind("p", String("a"))
	vs := n.All("p")
	vs[0] = String("mutated")

	v, _ := n.First("p")
	s, _ := v.AsString()
	assert.Equal(t, "a", s)
}

func TestMapNode_TypesDeduplicated(t *testing.T) {
	n := NewNode("x", "y", "x")
	assert.Equal(t, []string{"x", "y"}, n.Types())

	n.WithTypes()
	assert.Empty(t, n.Types())
}

func TestMapNode_Unbind(t *testing.T) {
	n := NewNode().Bind("p", String("a")).Bind("q", String("b"))
	assert.Equal(t, 2, n.Predicates())

	n.Unbind("p")
	_, ok := n.First("p")
	assert.False(t, ok)
	assert.Equal(t, 1, n.Predicates())
}

func TestValueCoercion(t *testing.T) {
	child := NewNode()
	tests := []struct {
		name     string
		value    Value
		wantStr  bool
		wantNode bool
	}{
		{"string", String("x"), true, false},
		{"number", Number(1.5), false, false},
		{"bool", Bool(true), false, false},
		{"node", NodeValue(child), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := tt.value.AsString()
			assert.Equal(t, tt.wantStr, ok)
			n, ok := tt.value.AsNode()
			assert.Equal(t, tt.wantNode, ok)
			if tt.wantNode {
				assert.Same(t, child, n)
			}
		})
	}
}
