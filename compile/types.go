// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile

import (
	"strconv"
	"strings"

	"github.com/gogpu/graphc/ir"
)

// typeMapper translates IR type strings into C type expressions, per
// spec.md §4.2. It holds the document (to recognize struct-typed
// identifiers) and the document's mangleNamer (to name struct types);
// it keeps no other state.
type typeMapper struct {
	names *mangleNamer
	doc   *ir.Document
}

// CExpr returns the C type expression for an IR type string, e.g.
// "float", "float3", "array<float,4>", or a struct id.
func (tm *typeMapper) CExpr(typeStr string) (string, error) {
	switch typeStr {
	case "float":
		return "float", nil
	case "int", "i32":
		return "int32_t", nil
	case "uint", "u32":
		return "uint32_t", nil
	case "bool":
		return "bool", nil
	case "float2", "float3", "float4":
		return "float", nil // caller wraps in an array decl; see DeclExpr
	case "float3x3", "float4x4":
		return "float", nil
	case "void", "":
		return "void", nil
	}

	if base, _, ok := parseArrayType(typeStr); ok {
		return tm.CExpr(base)
	}

	if st, ok := tm.doc.StructByID(typeStr); ok {
		return tm.names.Name(st.ID, NamespaceStructType), nil
	}

	return "", newError(ErrUnknownType, "unrecognized type "+strconv.Quote(typeStr))
}

// VectorWidth returns the component count of a fixed-vector type, or 0
// if typeStr is not one of float2/float3/float4.
func VectorWidth(typeStr string) int {
	switch typeStr {
	case "float2":
		return 2
	case "float3":
		return 3
	case "float4":
		return 4
	default:
		return 0
	}
}

// MatrixLength returns the flat component count of a fixed-matrix type,
// or 0 if typeStr is not float3x3/float4x4 (9 and 16 respectively, per
// spec.md §4.2 — column-major is never assumed, only length matters).
func MatrixLength(typeStr string) int {
	switch typeStr {
	case "float3x3":
		return 9
	case "float4x4":
		return 16
	default:
		return 0
	}
}

// ArrayLength returns the element type and fixed length of an
// "array<T,N>" type string, or ok=false if typeStr is not array-shaped.
func ArrayLength(typeStr string) (elem string, n int, ok bool) {
	return parseArrayType(typeStr)
}

func parseArrayType(typeStr string) (elem string, n int, ok bool) {
	if !strings.HasPrefix(typeStr, "array<") || !strings.HasSuffix(typeStr, ">") {
		return "", 0, false
	}
	inner := typeStr[len("array<") : len(typeStr)-1]
	idx := strings.LastIndexByte(inner, ',')
	if idx < 0 {
		return "", 0, false
	}
	base := strings.TrimSpace(inner[:idx])
	nStr := strings.TrimSpace(inner[idx+1:])
	n64, err := strconv.Atoi(nStr)
	if err != nil || n64 < 0 {
		return "", 0, false
	}
	return base, n64, true
}

// DeclExpr returns a C declarator for a name of the given IR type,
// handling fixed vectors/matrices/arrays/structs as fixed-size arrays
// or struct values rather than pointers, per spec.md §4.2's contract
// that the mapper only commits to length, not layout.
//
// Examples: ("v", "float") -> "float v"
//           ("v", "float3") -> "float v[3]"
//           ("v", "array<float,4>") -> "float v[4]"
func (tm *typeMapper) DeclExpr(name, typeStr string) (string, error) {
	if w := VectorWidth(typeStr); w > 0 {
		return "float " + name + "[" + strconv.Itoa(w) + "]", nil
	}
	if l := MatrixLength(typeStr); l > 0 {
		return "float " + name + "[" + strconv.Itoa(l) + "]", nil
	}
	if base, n, ok := parseArrayType(typeStr); ok {
		elemDecl, err := tm.DeclExpr(name, base)
		if err != nil {
			return "", err
		}
		// elemDecl is "<ctype> name[...]?" — append another dimension.
		return elemDecl + "[" + strconv.Itoa(n) + "]", nil
	}
	ctype, err := tm.CExpr(typeStr)
	if err != nil {
		return "", err
	}
	return ctype + " " + name, nil
}
