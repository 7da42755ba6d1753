// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/graphc/compile"
	"github.com/gogpu/graphc/ir"
)

// TestCompileResourceBindingAndShaderRefs exercises a document with a
// bound output buffer, a texture-typed global input, and a dispatched
// shader, diffing the structural parts of CompileResult
// (everything but the generated source text, which the other backend
// tests already assert on piecemeal).
func TestCompileResourceBindingAndShaderRefs(t *testing.T) {
	dispatch := mustUnmarshalNode(`{"id":"n1","op":"cmd_dispatch","func":"shade","dispatch":[8,8,1]}`)
	ret := mustUnmarshalNode(`{"id":"n2","op":"func_return"}`)

	main := ir.Function{
		ID:   "main",
		Kind: ir.FunctionCPU,
		Nodes: []ir.Node{dispatch, ret},
		Edges: []ir.Edge{
			{From: "n1", To: "n2", PortOut: ir.PortExecOut, Kind: ir.EdgeExecution},
		},
	}
	shade := ir.Function{
		ID:      "shade",
		Kind:    ir.FunctionShader,
		Inputs:  []ir.FunctionInput{{ID: "uv", Type: "float2"}},
		Outputs: []ir.FunctionOutput{{Type: "float4"}},
	}

	doc := &ir.Document{
		EntryPointID: "main",
		Resources: []ir.Resource{
			{ID: "buf_out", Kind: ir.ResourceBuffer, IsOutput: true},
		},
		Inputs: []ir.Input{
			{ID: "u_tex", Type: "texture2d"},
		},
		Functions: []ir.Function{main, shade},
	}

	result, err := compile.Compile(doc, "main", nil)
	require.NoError(t, err)

	wantResourceIDs := []string{"buf_out", "u_tex"}
	wantShaderRefs := []compile.ShaderRef{
		{FunctionID: "shade", Inputs: []ir.FunctionInput{{ID: "uv", Type: "float2"}}},
	}

	if diff := cmp.Diff(wantResourceIDs, result.ResourceIDs); diff != "" {
		t.Errorf("ResourceIDs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantShaderRefs, result.ShaderRefs, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("ShaderRefs mismatch (-want +got):\n%s", diff)
	}
}
