// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile

import (
	"encoding/json"
	"strings"

	"github.com/gogpu/graphc/ir"
)

// compileInline returns an expression string for nodeID, suitable for
// substitution into a surrounding expression (spec.md §4.7 "inline"
// mode). Pure nodes referenced more than once within the function are
// promoted to a named temporary the first time they are materialized;
// subsequent references return the temporary's identifier. This is the
// memoisation table described in spec.md §4.7 and §9.
func (w *writer) compileInline(nodeID string) (string, error) {
	if name, ok := w.memo[nodeID]; ok {
		return name, nil
	}

	node, ok := w.fn.NodeByID(nodeID)
	if !ok {
		return "", newNodeError(ErrUnknownVariable, "node not found: "+nodeID, w.fn.ID, nodeID)
	}

	class := ir.ClassOf(node.Op)
	pure := class == ir.ClassLiteral || class == ir.ClassConstructor ||
		class == ir.ClassAccessor || class == ir.ClassArithmetic ||
		class == ir.ClassLoad || class == ir.ClassCast

	if pure && w.idx.outRefCount(nodeID) > 1 {
		return w.materialize(node)
	}
	if !pure {
		// Side-effecting nodes that yield a value (call_func) must have
		// already been force-emitted by the control-flow walker when it
		// reached them in the execution chain; if we get here it means
		// a data edge references a call before its statement position,
		// which the IR's acyclic data / forest execution invariants
		// (spec.md §3) rule out for a well-formed document. Materialize
		// defensively rather than producing a forward reference.
		return w.materialize(node)
	}
	return w.buildExpr(node)
}

// materialize force-emits nodeID as a named local declaration
// (spec.md §4.7 "force-emit" mode) and returns its identifier.
func (w *writer) materialize(node *ir.Node) (string, error) {
	if name, ok := w.memo[node.ID]; ok {
		return name, nil
	}

	if node.Op == "array_construct" {
		if _, hasFill := node.Str("fill"); hasFill {
			return w.materializeArrayFill(node)
		}
	}

	expr, err := w.buildExpr(node)
	if err != nil {
		return "", err
	}

	name := w.names.Name(node.ID, NamespaceNodeResult)
	typeStr := w.infer.Infer(node.ID)
	decl, err := w.types.DeclExpr(name, typeStr)
	if err != nil {
		return "", err
	}
	w.writeLine(decl + " = " + expr + ";")
	w.memo[node.ID] = name
	return name, nil
}

// materializeArrayFill emits a declaration plus an explicit fill loop
// for array_construct nodes that carry a "fill" attribute instead of an
// explicit "values" list, per spec.md §4.7.
func (w *writer) materializeArrayFill(node *ir.Node) (string, error) {
	fillRef, _ := node.Str("fill")
	elemType := w.infer.Infer(fillRef)
	n := 0
	if ln, ok := node.Num("length"); ok {
		n = int(ln)
	}

	name := w.names.Name(node.ID, NamespaceNodeResult)
	declType, err := w.types.CExpr(elemType)
	if err != nil {
		return "", err
	}
	w.writeLine(declType + " " + name + "[" + itoa(n) + "];")

	idxVar := name + "_i"
	w.writeLine("for (int " + idxVar + " = 0; " + idxVar + " < " + itoa(n) + "; ++" + idxVar + ") {")
	w.pushIndent()
	fillExpr, err := w.compileInline(fillRef)
	if err != nil {
		return "", err
	}
	w.writeLine(name + "[" + idxVar + "] = " + fillExpr + ";")
	w.popIndent()
	w.writeLine("}")

	w.memo[node.ID] = name
	return name, nil
}

// resolveArg implements spec.md §4.7's resolve_arg algorithm: prefer a
// data edge into (node, key), then a raw attribute of the matching kind,
// then the zero value for expectedType.
func (w *writer) resolveArg(node *ir.Node, key, expectedType string) (string, error) {
	if from, ok := w.idx.DataEdgeInto(node.ID, key); ok {
		return w.compileInline(from)
	}

	for _, attrKey := range aliasesOf(key) {
		raw, ok := node.RawAttr(attrKey)
		if !ok {
			continue
		}
		return w.resolveRawAttr(node, attrKey, raw, expectedType)
	}

	if raw, ok := node.ArgValue(key); ok {
		return w.resolveRawAttr(node, key, raw, expectedType)
	}

	return zeroValue(expectedType), nil
}

func (w *writer) resolveRawAttr(node *ir.Node, key string, raw json.RawMessage, expectedType string) (string, error) {
	s, err := w.resolveRawValue(raw, expectedType)
	if err != nil && node != nil {
		return "", newNodeError(ErrUnknownOp, "unrecognized attribute shape for "+key, w.fn.ID, node.ID)
	}
	return s, err
}

// resolveRawValue resolves a raw JSON attribute value with no node/key
// context, used both for top-level node attributes (via resolveRawAttr)
// and for entries of a "values"/"args" map (struct_construct members,
// call_func arguments) where the surrounding map has no single owning key.
func (w *writer) resolveRawValue(raw json.RawMessage, expectedType string) (string, error) {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return w.resolveStringOperand(s, expectedType)
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		if expectedType == "bool" {
			return formatBool(f != 0), nil
		}
		if expectedType == "int" || expectedType == "i32" || expectedType == "uint" || expectedType == "u32" {
			return formatInt(int64(f)), nil
		}
		return formatFloat(f)
	}
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		if expectedType == "bool" {
			return formatBool(b), nil
		}
		return formatBoolNumeric(b), nil
	}
	var xs []float64
	if json.Unmarshal(raw, &xs) == nil {
		return formatFloatArray(xs)
	}
	return "", newError(ErrUnknownOp, "unrecognized attribute value shape")
}

// resolveStringOperand resolves a string attribute per spec.md §4.7
// step 2: local var, then function input, then global IR input (a
// harness read), then another node id.
func (w *writer) resolveStringOperand(s, expectedType string) (string, error) {
	if lv, ok := w.fn.LocalByID(s); ok {
		return w.names.Name(lv.ID, NamespaceVariable), nil
	}
	if in, ok := w.fn.InputByID(s); ok {
		return w.names.Name(in.ID, NamespaceFunctionInput), nil
	}
	if in, ok := w.doc.InputByID(s); ok {
		return w.readGlobalInput(in), nil
	}
	if _, ok := w.fn.NodeByID(s); ok {
		return w.compileInline(s)
	}
	return zeroValue(expectedType), nil
}

// readGlobalInput implements the name-flattening convention of
// spec.md §4.10: a scalar input "u_x" reads as get_input("u_x"); an
// aggregate input "u_y" reassembles from indexed reads "u_y_0", etc.
func (w *writer) readGlobalInput(in *ir.Input) string {
	if width := VectorWidth(in.Type); width > 0 {
		parts := make([]string, width)
		for i := 0; i < width; i++ {
			parts[i] = "ctx_get_input(ctx, \"" + in.ID + "_" + itoa(i) + "\")"
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	if n := MatrixLength(in.Type); n > 0 {
		parts := make([]string, n)
		for i := 0; i < n; i++ {
			parts[i] = "ctx_get_input(ctx, \"" + in.ID + "_" + itoa(i) + "\")"
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "ctx_get_input(ctx, \"" + in.ID + "\")"
}

// buildExpr builds a target expression string for a node by dispatching
// on its op, per the op-lowering table in spec.md §4.7.
func (w *writer) buildExpr(node *ir.Node) (string, error) {
	switch node.Op {
	case "literal":
		return w.lowerLiteral(node)
	case "float":
		v, _ := node.Num("val")
		return formatFloat(v)
	case "int":
		v, _ := node.Num("val")
		return formatInt(int64(v)), nil
	case "loop_index":
		loopID, _ := node.Str("loop")
		name := w.names.Name(loopID, NamespaceLoopInduction)
		return "(float)" + name, nil
	case "math_pi":
		return "3.14159265f", nil

	case "var_get":
		return w.lowerVarGet(node)

	case "float2", "float3", "float4":
		return w.lowerVecConstruct(node)
	case "float3x3":
		return w.lowerMatConstruct(node, 9)
	case "float4x4":
		return w.lowerMatConstruct(node, 16)
	case "quat":
		return w.lowerQuatConstruct(node)
	case "struct_construct":
		return w.lowerStructConstruct(node)
	case "array_construct":
		return w.lowerArrayConstruct(node)

	case "struct_extract":
		return w.lowerStructExtract(node)
	case "array_extract":
		return w.lowerArrayExtract(node)
	case "vec_swizzle":
		return w.lowerSwizzle(node)
	case "vec_get_element":
		return w.lowerVecGetElement(node)
	case "array_length":
		if ln, ok := node.Num("length"); ok {
			return formatInt(int64(ln)), nil
		}
		return "0", nil

	case "static_cast_float":
		return w.lowerCast(node, "float")
	case "static_cast_int":
		return w.lowerCast(node, "int32_t")
	case "static_cast_bool":
		return w.lowerCastBool(node)

	case "call_func":
		return w.lowerCallExpr(node)

	case "buffer_load":
		return w.lowerBufferLoad(node)
	case "texture_sample":
		return w.lowerTextureSample(node)
	case "resource_get_size":
		return w.lowerResourceGetSize(node)
	case "resource_get_format":
		return w.lowerResourceGetFormat(node)
	case "builtin_get":
		return w.lowerBuiltinGet(node)
	}

	if ir.ClassOf(node.Op) == ir.ClassArithmetic {
		return w.lowerArithmetic(node)
	}

	return "", newNodeError(ErrUnknownOp, "unrecognized op "+node.Op, w.fn.ID, node.ID)
}

func (w *writer) lowerLiteral(node *ir.Node) (string, error) {
	if b, ok := node.Bool("val"); ok {
		return formatBoolNumeric(b), nil
	}
	if b, ok := node.Bool("value"); ok {
		return formatBoolNumeric(b), nil
	}
	if v, ok := node.Num("val"); ok {
		return formatFloat(v)
	}
	if v, ok := node.Num("value"); ok {
		return formatFloat(v)
	}
	return "", newNodeError(ErrUnsupportedLiteral, "literal node has no val/value attribute", w.fn.ID, node.ID)
}

func (w *writer) lowerVarGet(node *ir.Node) (string, error) {
	varID, ok := node.Str("var")
	if !ok {
		return "", newNodeError(ErrUnknownVariable, "var_get missing var attribute", w.fn.ID, node.ID)
	}
	if lv, ok := w.fn.LocalByID(varID); ok {
		return w.names.Name(lv.ID, NamespaceVariable), nil
	}
	if in, ok := w.fn.InputByID(varID); ok {
		return w.names.Name(in.ID, NamespaceFunctionInput), nil
	}
	if in, ok := w.doc.InputByID(varID); ok {
		return w.readGlobalInput(in), nil
	}
	return "", newNodeError(ErrUnknownVariable, "unresolved variable "+varID, w.fn.ID, node.ID)
}
