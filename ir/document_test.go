// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gogpu/graphc/ir"
)

func TestDocumentResourceOrder(t *testing.T) {
	tests := []struct {
		name string
		doc  ir.Document
		want []string
	}{
		{
			name: "output resources before texture inputs before remaining resources",
			doc: ir.Document{
				Resources: []ir.Resource{
					{ID: "buf_scratch", Kind: ir.ResourceBuffer},
					{ID: "buf_out", Kind: ir.ResourceBuffer, IsOutput: true},
				},
				Inputs: []ir.Input{
					{ID: "u_time", Type: "float"},
					{ID: "u_tex", Type: "texture2d"},
				},
			},
			want: []string{"buf_out", "u_tex", "buf_scratch"},
		},
		{
			name: "no resources or texture inputs yields empty order",
			doc:  ir.Document{Inputs: []ir.Input{{ID: "u_time", Type: "float"}}},
			want: []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.doc.ResourceOrder()
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFunctionNodeByID(t *testing.T) {
	fn := ir.Function{Nodes: []ir.Node{}}
	_, ok := fn.NodeByID("missing")
	assert.False(t, ok)
}
