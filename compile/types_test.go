// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/graphc/ir"
)

func newTestTypeMapper(doc *ir.Document) *typeMapper {
	return &typeMapper{names: newMangleNamer(), doc: doc}
}

func TestCExprScalarsAndVectors(t *testing.T) {
	tm := newTestTypeMapper(&ir.Document{})

	tests := []struct {
		in   string
		want string
	}{
		{"float", "float"},
		{"int", "int32_t"},
		{"uint", "uint32_t"},
		{"bool", "bool"},
		{"void", "void"},
		{"float2", "float"},
		{"float3", "float"},
		{"float4", "float"},
	}
	for _, tc := range tests {
		got, err := tm.CExpr(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestCExprUnknownType(t *testing.T) {
	tm := newTestTypeMapper(&ir.Document{})
	_, err := tm.CExpr("frobnicator")
	require.Error(t, err)
	ce, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrUnknownType, ce.Kind)
}

func TestDeclExprVectorsMatricesAndArrays(t *testing.T) {
	tm := newTestTypeMapper(&ir.Document{})

	tests := []struct {
		name    string
		typeStr string
		want    string
	}{
		{"v", "float3", "float v[3]"},
		{"m", "float4x4", "float m[16]"},
		{"arr", "array<float,4>", "float arr[4]"},
		{"x", "float", "float x"},
	}
	for _, tc := range tests {
		t.Run(tc.typeStr, func(t *testing.T) {
			got, err := tm.DeclExpr(tc.name, tc.typeStr)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCExprStructType(t *testing.T) {
	doc := &ir.Document{Structs: []ir.Struct{{ID: "particle", Members: []ir.StructMember{{Name: "pos", Type: "float3"}}}}}
	tm := newTestTypeMapper(doc)

	got, err := tm.CExpr("particle")
	require.NoError(t, err)
	assert.Equal(t, "S_particle", got)
}

func TestArrayLengthParsing(t *testing.T) {
	elem, n, ok := ArrayLength("array<float3,8>")
	require.True(t, ok)
	assert.Equal(t, "float3", elem)
	assert.Equal(t, 8, n)

	_, _, ok = ArrayLength("float3")
	assert.False(t, ok)
}

func TestVectorAndMatrixWidth(t *testing.T) {
	assert.Equal(t, 2, VectorWidth("float2"))
	assert.Equal(t, 3, VectorWidth("float3"))
	assert.Equal(t, 0, VectorWidth("float"))
	assert.Equal(t, 9, MatrixLength("float3x3"))
	assert.Equal(t, 16, MatrixLength("float4x4"))
}
