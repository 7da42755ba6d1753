// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile

import "github.com/gogpu/graphc/ir"

// samplerWrapCode and samplerFilterCode map the IR's string-valued
// sampler descriptors to the small integer codes the harness ABI's
// ctx_sample_texture expects as packed sampler state, per spec.md §6.
func samplerWrapCode(wrap string) int {
	switch wrap {
	case "repeat":
		return 0
	case "clamp":
		return 1
	case "mirror":
		return 2
	default:
		return 1
	}
}

func samplerFilterCode(filter string) int {
	switch filter {
	case "nearest":
		return 0
	case "linear":
		return 1
	default:
		return 1
	}
}

// textureFormatCode maps a resource's declared format string to the
// harness's packed format enum.
func textureFormatCode(format string) int {
	switch format {
	case "rgba8":
		return 1
	case "rgba16f":
		return 2
	case "rgba32f":
		return 3
	case "r8":
		return 4
	case "r16f":
		return 5
	case "r32f":
		return 6
	default:
		return 0
	}
}

// resourceDeclComment renders one line of the resource binding layout
// comment the Document Emitter writes above the forward declarations
// (emitResourceLayoutComment), documenting a resource's canonical
// binding index (spec.md §4.10) for a reader of the generated
// source — the compiled output has no other record of which index a
// given resource id was assigned.
func resourceDeclComment(slot int, res ir.Resource) string {
	kind := string(res.Kind)
	if res.IsOutput {
		kind += ", output"
	}
	return "// resources[" + itoa(slot) + "]: " + res.ID + " (" + kind + ")"
}
