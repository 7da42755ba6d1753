// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package compile implements the node-graph IR to C99 translation
// described in spec.md §4: identifier mangling, type mapping, literal
// formatting, call-graph resolution, type inference, expression and
// control-flow emission, and final document assembly. The package is
// pure and synchronous: Compile performs no I/O and holds no state
// across calls, so callers may invoke it concurrently on distinct
// Documents without additional synchronization (exercised by
// cmd/graphc's batch mode, see SPEC_FULL.md §2).
package compile

import (
	"fmt"
	"strings"

	"github.com/gogpu/graphc/ir"
)

// Options configures a single Compile call. The zero value is not meant
// to be used directly; call DefaultOptions.
type Options struct {
	// IncludeHarnessHeader controls whether the generated source #includes
	// the fixed harness ABI header (spec.md §6). Callers that supply their
	// own harness declarations set this false (cmd/graphc's
	// --no-harness-header flag).
	IncludeHarnessHeader bool
	// HarnessHeader is the include path emitted when IncludeHarnessHeader
	// is set.
	HarnessHeader string
}

// DefaultOptions returns the Options a standalone `graphc compile`
// invocation uses.
func DefaultOptions() Options {
	return Options{
		IncludeHarnessHeader: true,
		HarnessHeader:        "harness.h",
	}
}

// CompileResult is the output of a successful Compile call: the
// generated C99 source, the canonical resource binding order the
// harness must honor when binding resources.Resources to ctx->resources,
// and the set of shader functions reachable from the entry point via
// cmd_dispatch/cmd_draw (spec.md §4.5), for a caller that also needs to
// hand those off to a separate shader-text backend outside this
// package's scope.
type CompileResult struct {
	Code        string
	ResourceIDs []string
	ShaderRefs  []ShaderRef
}

// ShaderRef names one shader function reachable from the CPU call graph,
// without its body — graphc never compiles shader bodies to C (spec.md
// §1 Non-goals).
type ShaderRef struct {
	FunctionID string
	Inputs     []ir.FunctionInput
}

// Compile translates doc, starting from entryID, into C99 source text
// per spec.md §4. It returns a fully populated CompileResult or a
// *Error; there is no partial result on failure.
func Compile(doc *ir.Document, entryID string, opts *Options) (*CompileResult, error) {
	if opts == nil {
		o := DefaultOptions()
		opts = &o
	}

	entryFn, ok := doc.FunctionByID(entryID)
	if !ok {
		return nil, newError(ErrEntryNotFound, "entry function not found: "+entryID)
	}
	if entryFn.Kind == ir.FunctionShader {
		return nil, newError(ErrEntryNotFound, "entry point must be a cpu function, got shader: "+entryID)
	}

	graph, err := walkCallGraph(doc, entryID)
	if err != nil {
		return nil, err
	}

	names := newMangleNamer()
	types := &typeMapper{names: names, doc: doc}

	pregenerateStructNames(doc, names)

	var out strings.Builder
	out.WriteString("// Code generated by graphc. DO NOT EDIT.\n\n")
	if opts.IncludeHarnessHeader {
		out.WriteString(fmt.Sprintf("#include \"%s\"\n", opts.HarnessHeader))
	}
	out.WriteString("#include <stdint.h>\n#include <stdbool.h>\n#include <string.h>\n#include <math.h>\n\n")

	if err := emitStructDefs(doc, names, types, &out); err != nil {
		return nil, err
	}

	emitResourceLayoutComment(doc, &out)

	forwardDecls := make([]string, 0, len(graph.order))
	writers := make(map[string]*writer, len(graph.order))
	for _, fnID := range graph.order {
		fn, ok := doc.FunctionByID(fnID)
		if !ok {
			return nil, newError(ErrFunctionNotFound, "function not found: "+fnID)
		}
		w := newFunctionWriter(doc, opts, names, types, fn)
		writers[fnID] = w
		decl, err := w.ForwardDecl()
		if err != nil {
			return nil, err
		}
		forwardDecls = append(forwardDecls, decl)
	}
	for _, decl := range forwardDecls {
		out.WriteString(decl + "\n")
	}
	out.WriteString("\n")

	for _, fnID := range graph.order {
		w := writers[fnID]
		body, err := w.EmitFunction()
		if err != nil {
			return nil, err
		}
		out.WriteString(body)
		out.WriteString("\n")
	}

	if len(entryFn.Inputs) == 0 {
		entryName := names.Name(entryFn.ID, NamespaceFunction)
		out.WriteString("void graphc_entry(HarnessContext *ctx) {\n")
		out.WriteString("    " + entryName + "(ctx);\n")
		out.WriteString("}\n")
	}

	emitPluginAdapter(doc, entryFn, &out)

	shaderRefs := make([]ShaderRef, len(graph.shaders))
	for i, s := range graph.shaders {
		shaderRefs[i] = ShaderRef{FunctionID: s.ID, Inputs: s.Inputs}
	}

	return &CompileResult{
		Code:        out.String(),
		ResourceIDs: doc.ResourceOrder(),
		ShaderRefs:  shaderRefs,
	}, nil
}

// pregenerateStructNames assigns mangled names to every struct in the
// document up front (in document order), so that forward declarations
// and member access emitted before a struct's own definition line still
// resolve to a stable, final identifier. Struct fields are named the
// same way: up front, in member declaration order.
func pregenerateStructNames(doc *ir.Document, names *mangleNamer) {
	for i := range doc.Structs {
		st := &doc.Structs[i]
		names.Name(st.ID, NamespaceStructType)
		for _, m := range st.Members {
			names.Name(m.Name, NamespaceStructField)
		}
	}
}

// emitResourceLayoutComment documents the canonical resource binding
// order (spec.md §4.10) above the forward declarations, since the
// generated source has no other record of which ctx->resources index a
// given resource id was assigned.
func emitResourceLayoutComment(doc *ir.Document, out *strings.Builder) {
	order := doc.ResourceOrder()
	if len(order) == 0 {
		return
	}
	out.WriteString("// Resource binding layout:\n")
	for slot, id := range order {
		if res, ok := doc.ResourceByID(id); ok {
			out.WriteString(resourceDeclComment(slot, *res) + "\n")
			continue
		}
		out.WriteString("// resources[" + itoa(slot) + "]: " + id + " (texture input)\n")
	}
	out.WriteString("\n")
}

// emitStructDefs writes a C struct definition for every struct in the
// document, in declaration order, per spec.md §4.9.
func emitStructDefs(doc *ir.Document, names *mangleNamer, types *typeMapper, out *strings.Builder) error {
	for i := range doc.Structs {
		st := &doc.Structs[i]
		cname := names.Name(st.ID, NamespaceStructType)
		out.WriteString("typedef struct {\n")
		for _, m := range st.Members {
			decl, err := types.DeclExpr(names.Name(m.Name, NamespaceStructField), m.Type)
			if err != nil {
				return err
			}
			out.WriteString("    " + decl + ";\n")
		}
		out.WriteString("} " + cname + ";\n\n")
	}
	return nil
}

// emitPluginAdapter emits the Document Emitter's item 6 (spec.md §4.10):
// a block guarded by GRAPHC_ENABLE_PLUGIN_ADAPTER, the conventional
// symbol a host build defines to embed the generated source as a
// plug-in rather than a standalone program. graphc_register declares
// the entry function's parameter slots and the canonical resource
// order to the harness, flagging which slots are textures; a texture
// resource's initial dimensions aren't part of this IR's wire format,
// so they're registered as 0,0 and left to the harness's own resize
// path (cmd_resize_resource) to fill in. graphc_apply_inputs copies a
// host-supplied parameter buffer into the harness's named inputs.
func emitPluginAdapter(doc *ir.Document, entryFn *ir.Function, out *strings.Builder) {
	out.WriteString("#ifdef GRAPHC_ENABLE_PLUGIN_ADAPTER\n")

	out.WriteString("void graphc_register(HarnessContext *ctx) {\n")
	for i, in := range entryFn.Inputs {
		out.WriteString("    ctx_register_input_slot(ctx, " + itoa(i) + ", \"" + in.ID + "\");\n")
	}
	for slot, id := range doc.ResourceOrder() {
		isTexture := 0
		if res, ok := doc.ResourceByID(id); !ok || res.Kind == ir.ResourceTexture2D {
			isTexture = 1
		}
		out.WriteString("    ctx_register_resource(ctx, " + itoa(slot) + ", " + itoa(isTexture) + ", 0, 0);\n")
	}
	out.WriteString("}\n\n")

	out.WriteString("void graphc_apply_inputs(HarnessContext *ctx, const float *values) {\n")
	for i, in := range entryFn.Inputs {
		out.WriteString("    ctx_set_input(ctx, \"" + in.ID + "\", values[" + itoa(i) + "]);\n")
	}
	out.WriteString("}\n")

	out.WriteString("#endif\n")
}
