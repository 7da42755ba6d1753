// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMangleNamerDisjointNamespaces(t *testing.T) {
	names := newMangleNamer()

	v := names.Name("x", NamespaceVariable)
	i := names.Name("x", NamespaceFunctionInput)
	f := names.Name("x", NamespaceFunction)
	s := names.Name("x", NamespaceStructType)
	n := names.Name("x", NamespaceNodeResult)

	assert.Equal(t, "v_x", v)
	assert.Equal(t, "i_x", i)
	assert.Equal(t, "func_x", f)
	assert.Equal(t, "S_x", s)
	assert.Equal(t, "n_x", n)
}

func TestMangleNamerStableAcrossCalls(t *testing.T) {
	names := newMangleNamer()
	first := names.Name("node.1", NamespaceNodeResult)
	second := names.Name("node.1", NamespaceNodeResult)
	assert.Equal(t, first, second)
}

func TestMangleNamerDisambiguatesNormalizationCollisions(t *testing.T) {
	names := newMangleNamer()
	a := names.Name("u.x", NamespaceVariable)
	b := names.Name("u_x", NamespaceVariable)

	assert.Equal(t, "v_u_x", a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, "v_u_x_1", b)
}

func TestNormalizeIdentReplacesInvalidRunes(t *testing.T) {
	assert.Equal(t, "a_b_c", normalizeIdent("a.b-c"))
	assert.Equal(t, UnnamedIdentifier, normalizeIdent(""))
}
