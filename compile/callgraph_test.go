// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/graphc/ir"
)

func callNode(id, target string) ir.Node {
	raw := []byte(`{"id":"` + id + `","op":"call_func","func":"` + target + `"}`)
	var n ir.Node
	_ = n.UnmarshalJSON(raw)
	return n
}

func TestWalkCallGraphOrdersCalleesBeforeCallers(t *testing.T) {
	doc := &ir.Document{
		Functions: []ir.Function{
			{ID: "main", Kind: ir.FunctionCPU, Nodes: []ir.Node{callNode("n1", "helper")}},
			{ID: "helper", Kind: ir.FunctionCPU},
		},
	}

	graph, err := walkCallGraph(doc, "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"helper", "main"}, graph.order)
}

func TestWalkCallGraphDetectsRecursion(t *testing.T) {
	doc := &ir.Document{
		Functions: []ir.Function{
			{ID: "a", Kind: ir.FunctionCPU, Nodes: []ir.Node{callNode("n1", "b")}},
			{ID: "b", Kind: ir.FunctionCPU, Nodes: []ir.Node{callNode("n2", "a")}},
		},
	}

	_, err := walkCallGraph(doc, "a")
	require.Error(t, err)
	assert.True(t, IsRecursion(err))
}

func TestWalkCallGraphMissingFunction(t *testing.T) {
	doc := &ir.Document{Functions: []ir.Function{{ID: "main", Kind: ir.FunctionCPU}}}

	_, err := walkCallGraph(doc, "nonexistent")
	require.Error(t, err)
	ce, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrFunctionNotFound, ce.Kind)
}

func TestWalkCallGraphRecordsShaderRefsWithoutRecursingIntoThem(t *testing.T) {
	dispatchNode := []byte(`{"id":"n1","op":"cmd_dispatch","func":"shade","dispatch":[1,1,1]}`)
	var n ir.Node
	require.NoError(t, n.UnmarshalJSON(dispatchNode))

	doc := &ir.Document{
		Functions: []ir.Function{
			{ID: "main", Kind: ir.FunctionCPU, Nodes: []ir.Node{n}},
			{ID: "shade", Kind: ir.FunctionShader, Inputs: []ir.FunctionInput{{ID: "uv", Type: "float2"}}},
		},
	}

	graph, err := walkCallGraph(doc, "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, graph.order)
	require.Len(t, graph.shaders, 1)
	assert.Equal(t, "shade", graph.shaders[0].ID)
}
