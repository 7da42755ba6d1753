// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/graphc/ir"
)

func TestNodeUnmarshalKeepsAttributeBag(t *testing.T) {
	raw := []byte(`{"id":"n1","op":"math_add","a":"n2","b":1.5}`)

	var node ir.Node
	require.NoError(t, json.Unmarshal(raw, &node))

	assert.Equal(t, "n1", node.ID)
	assert.Equal(t, "math_add", node.Op)

	a, ok := node.Str("a")
	assert.True(t, ok)
	assert.Equal(t, "n2", a)

	b, ok := node.Num("b")
	assert.True(t, ok)
	assert.Equal(t, 1.5, b)
}

func TestNodeArgsMap(t *testing.T) {
	raw := []byte(`{"id":"n1","op":"call_func","func":"f1","args":{"x":"n2","y":3}}`)

	var node ir.Node
	require.NoError(t, json.Unmarshal(raw, &node))

	args, ok := node.Args()
	require.True(t, ok)
	assert.Len(t, args, 2)

	v, ok := node.ArgValue("x")
	require.True(t, ok)
	var s string
	require.NoError(t, json.Unmarshal(v, &s))
	assert.Equal(t, "n2", s)
}

func TestNodeOperandList(t *testing.T) {
	raw := []byte(`{"id":"n1","op":"cmd_dispatch","dispatch":["n2",4,8]}`)

	var node ir.Node
	require.NoError(t, json.Unmarshal(raw, &node))

	ops, ok := node.OperandList("dispatch")
	require.True(t, ok)
	require.Len(t, ops, 3)
	assert.True(t, ops[0].IsRef)
	assert.Equal(t, "n2", ops[0].NodeRef)
	assert.False(t, ops[1].IsRef)
	assert.Equal(t, float64(4), ops[1].Value)
}

func TestNodeMarshalRoundTrip(t *testing.T) {
	original := []byte(`{"a":"n2","id":"n1","op":"math_add"}`)

	var node ir.Node
	require.NoError(t, json.Unmarshal(original, &node))

	out, err := json.Marshal(node)
	require.NoError(t, err)

	var roundtripped ir.Node
	require.NoError(t, json.Unmarshal(out, &roundtripped))
	assert.Equal(t, node.ID, roundtripped.ID)
	assert.Equal(t, node.Op, roundtripped.Op)
	a, _ := roundtripped.Str("a")
	assert.Equal(t, "n2", a)
}
