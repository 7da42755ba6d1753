// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNamespacePrefixesNeverCollideWithKeywords protects the invariant
// mangler.go documents: every mangled identifier carries a namespace
// prefix disjoint from the C99 reserved words and harness ABI names, so
// the mangler itself never needs a keyword-collision fallback.
func TestNamespacePrefixesNeverCollideWithKeywords(t *testing.T) {
	namespaces := []Namespace{
		NamespaceVariable, NamespaceFunctionInput, NamespaceFunction,
		NamespaceStructType, NamespaceStructField, NamespaceNodeResult,
		NamespaceLoopInduction,
	}
	for keyword := range reservedKeywords {
		for _, ns := range namespaces {
			assert.False(t, isKeyword(ns.prefix()+keyword),
				"namespace prefix %q must not reconstruct a bare keyword", ns.prefix())
		}
		assert.True(t, isKeyword(keyword))
	}
}
