// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFloatAddsFractionalSuffix(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1.0f"},
		{0, "0.0f"},
		{-2, "-2.0f"},
		{1.5, "1.5f"},
	}
	for _, tc := range tests {
		got, err := formatFloat(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestFormatFloatRejectsNonFinite(t *testing.T) {
	_, err := formatFloat(math.NaN())
	require.Error(t, err)
	ce, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrUnsupportedLiteral, ce.Kind)

	_, err = formatFloat(math.Inf(1))
	require.Error(t, err)
}

func TestFormatBoolNumericAndBoolContexts(t *testing.T) {
	assert.Equal(t, "1.0f", formatBoolNumeric(true))
	assert.Equal(t, "0.0f", formatBoolNumeric(false))
	assert.Equal(t, "true", formatBool(true))
	assert.Equal(t, "false", formatBool(false))
}

func TestFormatFloatArray(t *testing.T) {
	got, err := formatFloatArray([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "{1.0f, 2.0f, 3.0f}", got)
}

func TestZeroValueByType(t *testing.T) {
	assert.Equal(t, "false", zeroValue("bool"))
	assert.Equal(t, "0", zeroValue("int"))
	assert.Equal(t, "0.0f", zeroValue("float"))
	assert.Equal(t, "{0}", zeroValue("float3"))
	assert.Equal(t, "{0}", zeroValue("float4x4"))
}
