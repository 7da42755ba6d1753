// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile

import "github.com/gogpu/graphc/ir"

// typeUnknown is returned when inference cannot determine a node's type;
// coercion against it degrades to identity, per spec.md §4.6.
const typeUnknown = "unknown"

// inferencer assigns each node in a function a result type, per
// spec.md §4.6. Its cache is per-function and discarded with the
// function's compile context (spec.md §5/§9: no global mutable state).
type inferencer struct {
	doc *ir.Document
	fn  *ir.Function
	idx *edgeIndex

	cache map[string]string
}

func newInferencer(doc *ir.Document, fn *ir.Function, idx *edgeIndex) *inferencer {
	return &inferencer{doc: doc, fn: fn, idx: idx, cache: make(map[string]string)}
}

// Infer returns the inferred type string for nodeID, memoising the result.
func (inf *inferencer) Infer(nodeID string) string {
	if t, ok := inf.cache[nodeID]; ok {
		return t
	}
	// Guard against accidental re-entrant cycles during inference itself
	// (data edges are acyclic per spec.md §3, but defend defensively).
	inf.cache[nodeID] = typeUnknown
	t := inf.infer(nodeID)
	inf.cache[nodeID] = t
	return t
}

func (inf *inferencer) infer(nodeID string) string {
	node, ok := inf.fn.NodeByID(nodeID)
	if !ok {
		return typeUnknown
	}

	switch node.Op {
	case "literal":
		if _, ok := node.Bool("val"); ok {
			return "bool"
		}
		if _, ok := node.Bool("value"); ok {
			return "bool"
		}
		if t, ok := node.Str("type"); ok {
			return t
		}
		return "float"
	case "float":
		return "float"
	case "int":
		return "int"
	case "loop_index", "math_pi":
		return "float"

	case "var_get":
		varID, _ := node.Str("var")
		return inf.typeOfVar(varID)

	case "float2", "float3", "float4":
		return node.Op
	case "float3x3", "float4x4":
		return node.Op
	case "quat":
		return "float4"
	case "struct_construct":
		t, _ := node.Str("type")
		return t
	case "array_construct":
		return inf.inferArrayConstruct(node)

	case "struct_extract":
		return inf.inferStructExtract(node)
	case "array_extract":
		return inf.inferArrayExtract(node)
	case "vec_swizzle":
		channels, _ := node.Str("channels")
		switch len(channels) {
		case 0, 1:
			return "float"
		default:
			return floatVecOfWidth(len(channels))
		}
	case "vec_get_element":
		return "float"
	case "array_length":
		return "int"

	case "static_cast_float":
		return "float"
	case "static_cast_int":
		return "int"
	case "static_cast_bool":
		return "bool"

	case "call_func":
		return inf.inferCall(node)

	case "buffer_load":
		return inf.inferBufferLoad(node)
	case "texture_sample":
		return "float4"
	case "resource_get_size":
		return "float2"
	case "resource_get_format":
		return "float"
	case "builtin_get":
		return "float"
	}

	if isArithmeticOp(node.Op) {
		return inf.inferArithmetic(node)
	}

	return typeUnknown
}

func isArithmeticOp(op string) bool {
	switch ir.ClassOf(op) {
	case ir.ClassArithmetic:
		return true
	default:
		return false
	}
}

func (inf *inferencer) typeOfVar(varID string) string {
	if varID == "" {
		return typeUnknown
	}
	if lv, ok := inf.fn.LocalByID(varID); ok {
		return lv.Type
	}
	if in, ok := inf.fn.InputByID(varID); ok {
		return in.Type
	}
	if in, ok := inf.doc.InputByID(varID); ok {
		return in.Type
	}
	return typeUnknown
}

func (inf *inferencer) inferArrayConstruct(node *ir.Node) string {
	elem := typeUnknown
	n := 0
	if values, ok := node.NumList("values"); ok {
		elem = "float"
		n = len(values)
	} else if refs, ok := node.StrList("values"); ok {
		n = len(refs)
		for _, ref := range refs {
			t := inf.Infer(ref)
			if t != typeUnknown {
				elem = t
				break
			}
		}
	} else if fillRef, ok := node.Str("fill"); ok {
		elem = inf.Infer(fillRef)
		if ln, ok := node.Num("length"); ok {
			n = int(ln)
		}
	} else if elemType, ok := node.Str("type"); ok {
		elem = elemType
		if ln, ok := node.Num("length"); ok {
			n = int(ln)
		}
	}
	if elem == typeUnknown {
		return typeUnknown
	}
	return "array<" + elem + "," + itoa(n) + ">"
}

func (inf *inferencer) inferStructExtract(node *ir.Node) string {
	structRef, ok := node.Str("struct")
	if !ok {
		return typeUnknown
	}
	field, ok := node.Str("field")
	if !ok {
		return typeUnknown
	}
	structType := inf.Infer(structRef)
	st, ok := inf.doc.StructByID(structType)
	if !ok {
		return typeUnknown
	}
	for _, m := range st.Members {
		if m.Name == field {
			return m.Type
		}
	}
	return typeUnknown
}

func (inf *inferencer) inferArrayExtract(node *ir.Node) string {
	arrRef, ok := node.Str("array")
	if !ok {
		return typeUnknown
	}
	arrType := inf.Infer(arrRef)
	if elem, _, ok := ArrayLength(arrType); ok {
		return elem
	}
	if VectorWidth(arrType) > 0 {
		return "float"
	}
	return typeUnknown
}

func (inf *inferencer) inferCall(node *ir.Node) string {
	funcID, ok := node.Str("func")
	if !ok {
		return "void"
	}
	fn, ok := inf.doc.FunctionByID(funcID)
	if !ok || len(fn.Outputs) == 0 {
		return "void"
	}
	return fn.Outputs[0].Type
}

func (inf *inferencer) inferBufferLoad(node *ir.Node) string {
	bufID, ok := node.Str("buffer")
	if !ok {
		return "float"
	}
	res, ok := inf.doc.ResourceByID(bufID)
	if !ok || res.DataType == "" {
		return "float"
	}
	return res.DataType
}

// inferArithmetic implements spec.md §4.6 rule 4: element-wise ops
// accept (T,T) or (T,scalar) with broadcasting; the wider of the two
// operand types wins (a struct comparing as unknown degrades to the
// other operand's type).
func (inf *inferencer) inferArithmetic(node *ir.Node) string {
	var operandKeys = []string{"a", "b", "value", "val", "t", "vec", "x"}
	best := typeUnknown
	for _, key := range operandKeys {
		ref, ok := inf.operandNodeRef(node, key)
		if !ok {
			continue
		}
		t := inf.Infer(ref)
		if t == typeUnknown {
			continue
		}
		if best == typeUnknown {
			best = t
			continue
		}
		best = widenType(best, t)
	}
	return best
}

func (inf *inferencer) operandNodeRef(node *ir.Node, key string) (string, bool) {
	if from, ok := inf.idx.DataEdgeInto(node.ID, key); ok {
		return from, true
	}
	if s, ok := node.Str(key); ok {
		if _, isNode := inf.fn.NodeByID(s); isNode {
			return s, true
		}
	}
	return "", false
}

// widenType returns the wider of two operand types under spec.md §4.6's
// implicit-coercion rule: vector beats scalar, float beats int.
func widenType(a, b string) string {
	if VectorWidth(a) > VectorWidth(b) {
		return a
	}
	if VectorWidth(b) > VectorWidth(a) {
		return b
	}
	if a == "float" || b == "float" {
		return "float"
	}
	return a
}

func floatVecOfWidth(n int) string {
	switch n {
	case 2:
		return "float2"
	case 3:
		return "float3"
	case 4:
		return "float4"
	default:
		return "float"
	}
}
