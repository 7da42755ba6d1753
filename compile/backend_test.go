// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/graphc/compile"
	"github.com/gogpu/graphc/ir"
)

func literalNode(id string, val float64) ir.Node {
	return mustUnmarshalNode(`{"id":"` + id + `","op":"literal","val":` + ftoa(val) + `}`)
}

func ftoa(v float64) string {
	if v == float64(int64(v)) {
		return itoaHelper(int64(v)) + ".0"
	}
	return itoaHelper(int64(v))
}

func itoaHelper(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

func mustUnmarshalNode(raw string) ir.Node {
	var n ir.Node
	if err := n.UnmarshalJSON([]byte(raw)); err != nil {
		panic(err)
	}
	return n
}

// TestCompileScalarAdd mirrors spec.md's scenario S1: two scalar literals
// summed and returned directly, with no local variables or control flow.
func TestCompileScalarAdd(t *testing.T) {
	fn := ir.Function{
		ID:      "main",
		Kind:    ir.FunctionCPU,
		Outputs: []ir.FunctionOutput{{Type: "float"}},
		Nodes: []ir.Node{
			literalNode("n_a", 1),
			literalNode("n_b", 2),
			mustUnmarshalNode(`{"id":"n_add","op":"math_add"}`),
			mustUnmarshalNode(`{"id":"n_ret","op":"func_return"}`),
		},
		Edges: []ir.Edge{
			{From: "n_a", To: "n_add", PortIn: "a", Kind: ir.EdgeData},
			{From: "n_b", To: "n_add", PortIn: "b", Kind: ir.EdgeData},
			{From: "n_add", To: "n_ret", PortIn: "val", Kind: ir.EdgeData},
		},
	}
	doc := &ir.Document{EntryPointID: "main", Functions: []ir.Function{fn}}

	result, err := compile.Compile(doc, "main", nil)
	require.NoError(t, err)

	assert.Contains(t, result.Code, "float func_main(HarnessContext *ctx)")
	assert.Contains(t, result.Code, "1.0f + 2.0f")
	assert.Contains(t, result.Code, "ctx_set_return_value(ctx,")
	assert.Empty(t, result.ResourceIDs)
	assert.Empty(t, result.ShaderRefs)
}

func TestCompileUnknownEntryPoint(t *testing.T) {
	doc := &ir.Document{EntryPointID: "main", Functions: []ir.Function{{ID: "main", Kind: ir.FunctionCPU}}}

	_, err := compile.Compile(doc, "does_not_exist", nil)
	require.Error(t, err)
}

func TestCompileRejectsRecursiveCallGraph(t *testing.T) {
	recurse := mustUnmarshalNode(`{"id":"n1","op":"call_func","func":"main"}`)
	fn := ir.Function{ID: "main", Kind: ir.FunctionCPU, Nodes: []ir.Node{recurse}}
	doc := &ir.Document{EntryPointID: "main", Functions: []ir.Function{fn}}

	_, err := compile.Compile(doc, "main", nil)
	require.Error(t, err)
	assert.True(t, compile.IsRecursion(err))
}

// TestCompileConditional mirrors spec.md scenario S3: a boolean literal
// drives a flow_branch assigning one of two values to a local variable.
func TestCompileConditional(t *testing.T) {
	fn := ir.Function{
		ID:        "main",
		Kind:      ir.FunctionCPU,
		Outputs:   []ir.FunctionOutput{{Type: "float"}},
		LocalVars: []ir.LocalVar{{ID: "result", Type: "float"}},
		Nodes: []ir.Node{
			mustUnmarshalNode(`{"id":"n_cond","op":"literal","val":true}`),
			mustUnmarshalNode(`{"id":"n_branch","op":"flow_branch"}`),
			mustUnmarshalNode(`{"id":"n_true","op":"var_set","var":"result","val":1.0}`),
			mustUnmarshalNode(`{"id":"n_false","op":"var_set","var":"result","val":0.0}`),
			mustUnmarshalNode(`{"id":"n_ret","op":"func_return","val":"result"}`),
		},
		Edges: []ir.Edge{
			{From: "n_cond", To: "n_branch", PortIn: "cond", Kind: ir.EdgeData},
			{From: "n_branch", To: "n_true", PortOut: ir.PortExecTrue, Kind: ir.EdgeExecution},
			{From: "n_branch", To: "n_false", PortOut: ir.PortExecFalse, Kind: ir.EdgeExecution},
			{From: "n_branch", To: "n_ret", PortOut: ir.PortExecOut, Kind: ir.EdgeExecution},
		},
	}
	doc := &ir.Document{EntryPointID: "main", Functions: []ir.Function{fn}}

	result, err := compile.Compile(doc, "main", nil)
	require.NoError(t, err)

	assert.Contains(t, result.Code, "if ((1.0f) != 0)")
	assert.Contains(t, result.Code, "v_result = 1.0f;")
	assert.Contains(t, result.Code, "v_result = 0.0f;")
}

// TestCompileLoop mirrors spec.md scenario S2: a flow_loop over [0, 4)
// binds its induction variable into the body, then falls through to the
// continuation wired under exec_completed rather than exec_out.
func TestCompileLoop(t *testing.T) {
	fn := ir.Function{
		ID:        "main",
		Kind:      ir.FunctionCPU,
		Outputs:   []ir.FunctionOutput{{Type: "float"}},
		LocalVars: []ir.LocalVar{{ID: "acc", Type: "float"}},
		Nodes: []ir.Node{
			mustUnmarshalNode(`{"id":"l","op":"flow_loop","start":0,"end":4}`),
			mustUnmarshalNode(`{"id":"n_idx","op":"loop_index","loop":"l"}`),
			mustUnmarshalNode(`{"id":"n_set","op":"var_set","var":"acc","val":"n_idx"}`),
			mustUnmarshalNode(`{"id":"n_ret","op":"func_return","val":"acc"}`),
		},
		Edges: []ir.Edge{
			{From: "l", To: "n_set", PortOut: ir.PortExecBody, Kind: ir.EdgeExecution},
			{From: "l", To: "n_ret", PortOut: ir.PortExecCompleted, Kind: ir.EdgeExecution},
		},
	}
	doc := &ir.Document{EntryPointID: "main", Functions: []ir.Function{fn}}

	result, err := compile.Compile(doc, "main", nil)
	require.NoError(t, err)

	assert.Contains(t, result.Code, "for (int32_t loop_l = 0; loop_l < (4); ++loop_l) {")
	assert.Contains(t, result.Code, "v_acc = (float)loop_l;")
	assert.Contains(t, result.Code, "return v_acc;")
}

// TestCompileDispatchArgs mirrors spec.md scenario S5: cmd_dispatch
// marshals its args into a flat float buffer ordered by the callee's
// declared inputs, flattening an aggregate argument into its components.
func TestCompileDispatchArgs(t *testing.T) {
	shader := ir.Function{
		ID:   "K",
		Kind: ir.FunctionShader,
		Inputs: []ir.FunctionInput{
			{ID: "u_v", Type: "float"},
			{ID: "u_m", Type: "float4"},
		},
	}
	main := ir.Function{
		ID:   "main",
		Kind: ir.FunctionCPU,
		Nodes: []ir.Node{
			mustUnmarshalNode(`{"id":"n_vec","op":"float4","x":1.0,"y":2.0,"z":3.0,"w":4.0}`),
			mustUnmarshalNode(`{"id":"n_dispatch","op":"cmd_dispatch","func":"K","dispatch":[1,1,1],"args":{"u_v":0.25,"u_m":"n_vec"}}`),
		},
		Edges: []ir.Edge{
			{From: "n_vec", To: "n_dispatch", PortIn: "u_m", Kind: ir.EdgeData},
		},
	}
	doc := &ir.Document{EntryPointID: "main", Functions: []ir.Function{shader, main}}

	result, err := compile.Compile(doc, "main", nil)
	require.NoError(t, err)

	assert.Contains(t, result.Code, `ctx_dispatch_shader(ctx, "func_K", 1, 1, 1, (float[]){0.25f, `+
		`(float[4]){1.0f, 2.0f, 3.0f, 4.0f}[0], (float[4]){1.0f, 2.0f, 3.0f, 4.0f}[1], `+
		`(float[4]){1.0f, 2.0f, 3.0f, 4.0f}[2], (float[4]){1.0f, 2.0f, 3.0f, 4.0f}[3]});`)
	require.Len(t, result.ShaderRefs, 1)
	assert.Equal(t, "K", result.ShaderRefs[0].FunctionID)
}
