// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/graphc/ir"
)

func mustNode(t *testing.T, raw string) ir.Node {
	t.Helper()
	var n ir.Node
	require.NoError(t, json.Unmarshal([]byte(raw), &n))
	return n
}

func TestInferLiteralAndVarGet(t *testing.T) {
	fn := &ir.Function{
		ID: "f",
		LocalVars: []ir.LocalVar{{ID: "v1", Type: "float3"}},
		Nodes: []ir.Node{
			mustNode(t, `{"id":"n1","op":"literal","val":1.0}`),
			mustNode(t, `{"id":"n2","op":"var_get","var":"v1"}`),
		},
	}
	doc := &ir.Document{Functions: []ir.Function{*fn}}
	idx := buildEdgeIndex(fn)
	inf := newInferencer(doc, fn, idx)

	assert.Equal(t, "float", inf.Infer("n1"))
	assert.Equal(t, "float3", inf.Infer("n2"))
}

func TestInferArithmeticWidensToVector(t *testing.T) {
	fn := &ir.Function{
		ID: "f",
		LocalVars: []ir.LocalVar{{ID: "v1", Type: "float3"}},
		Nodes: []ir.Node{
			mustNode(t, `{"id":"n1","op":"var_get","var":"v1"}`),
			mustNode(t, `{"id":"n2","op":"literal","val":2.0}`),
			mustNode(t, `{"id":"n3","op":"math_mul","a":"n1","b":"n2"}`),
		},
	}
	doc := &ir.Document{Functions: []ir.Function{*fn}}
	idx := buildEdgeIndex(fn)
	inf := newInferencer(doc, fn, idx)

	assert.Equal(t, "float3", inf.Infer("n3"))
}

func TestInferStructExtract(t *testing.T) {
	doc := &ir.Document{
		Structs: []ir.Struct{{ID: "particle", Members: []ir.StructMember{{Name: "pos", Type: "float3"}}}},
	}
	fn := &ir.Function{
		ID:     "f",
		Inputs: []ir.FunctionInput{{ID: "p", Type: "particle"}},
		Nodes: []ir.Node{
			mustNode(t, `{"id":"n1","op":"var_get","var":"p"}`),
			mustNode(t, `{"id":"n2","op":"struct_extract","struct":"n1","field":"pos"}`),
		},
	}
	doc.Functions = []ir.Function{*fn}
	idx := buildEdgeIndex(fn)
	inf := newInferencer(doc, fn, idx)

	assert.Equal(t, "float3", inf.Infer("n2"))
}

func TestInferCallResultType(t *testing.T) {
	doc := &ir.Document{
		Functions: []ir.Function{
			{ID: "helper", Outputs: []ir.FunctionOutput{{Type: "float"}}},
		},
	}
	fn := &ir.Function{
		ID: "f",
		Nodes: []ir.Node{
			mustNode(t, `{"id":"n1","op":"call_func","func":"helper"}`),
		},
	}
	idx := buildEdgeIndex(fn)
	inf := newInferencer(doc, fn, idx)

	assert.Equal(t, "float", inf.Infer("n1"))
}

func TestInferUnknownNodeReturnsUnknown(t *testing.T) {
	fn := &ir.Function{ID: "f"}
	idx := buildEdgeIndex(fn)
	inf := newInferencer(&ir.Document{}, fn, idx)
	assert.Equal(t, typeUnknown, inf.Infer("missing"))
}
