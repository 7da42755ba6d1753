// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile

import (
	"encoding/json"
	"strings"

	"github.com/gogpu/graphc/ir"
)

// lowerVecConstruct lowers float2/float3/float4 constructors to a C99
// compound literal, per spec.md §4.7 and §4.9.
func (w *writer) lowerVecConstruct(node *ir.Node) (string, error) {
	width := VectorWidth(node.Op)
	ctype, err := w.types.CExpr("float")
	if err != nil {
		return "", err
	}
	keys := []string{"x", "y", "z", "w"}[:width]
	parts := make([]string, width)
	for i, k := range keys {
		v, err := w.resolveArg(node, k, "float")
		if err != nil {
			return "", err
		}
		parts[i] = v
	}
	return "(" + ctype + "[" + itoa(width) + "]){" + strings.Join(parts, ", ") + "}", nil
}

// lowerMatConstruct lowers float3x3/float4x4 constructors to a flat C99
// compound literal of n components, reading "m0".."m(n-1)" per spec.md §4.9.
func (w *writer) lowerMatConstruct(node *ir.Node, n int) (string, error) {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		v, err := w.resolveArg(node, "m"+itoa(i), "float")
		if err != nil {
			return "", err
		}
		parts[i] = v
	}
	return "(float[" + itoa(n) + "]){" + strings.Join(parts, ", ") + "}", nil
}

// lowerQuatConstruct lowers a quat node to a float4 compound literal in
// (x, y, z, w) component order.
func (w *writer) lowerQuatConstruct(node *ir.Node) (string, error) {
	parts := make([]string, 4)
	for i, k := range []string{"x", "y", "z", "w"} {
		v, err := w.resolveArg(node, k, "float")
		if err != nil {
			return "", err
		}
		parts[i] = v
	}
	return "(float[4]){" + strings.Join(parts, ", ") + "}", nil
}

// lowerStructConstruct lowers a struct_construct node to a C99 designated
// initializer, iterating the struct's declared member order (not the
// "values" map's iteration order, which Go does not guarantee) so output
// is deterministic per spec.md §8.1.
func (w *writer) lowerStructConstruct(node *ir.Node) (string, error) {
	typeID, ok := node.Str("type")
	if !ok {
		return "", newNodeError(ErrUnknownStruct, "struct_construct missing type attribute", w.fn.ID, node.ID)
	}
	st, ok := w.doc.StructByID(typeID)
	if !ok {
		return "", newNodeError(ErrUnknownStruct, "unknown struct type "+typeID, w.fn.ID, node.ID)
	}
	cname := w.names.Name(st.ID, NamespaceStructType)

	values, _ := node.Map("values")
	parts := make([]string, 0, len(st.Members))
	for _, m := range st.Members {
		fieldName := w.names.Name(m.Name, NamespaceStructField)
		var valExpr string
		if raw, ok := values[m.Name]; ok {
			v, err := w.resolveRawValue(raw, m.Type)
			if err != nil {
				return "", newNodeError(ErrUnknownOp, "struct member "+m.Name+": "+err.Error(), w.fn.ID, node.ID)
			}
			valExpr = v
		} else {
			valExpr = zeroValue(m.Type)
		}
		parts = append(parts, "."+fieldName+" = "+valExpr)
	}
	return "(" + cname + "){" + strings.Join(parts, ", ") + "}", nil
}

// lowerArrayConstruct lowers an array_construct node with an explicit
// "values" list to a C99 compound literal; the "fill" variant is handled
// separately by materializeArrayFill since it requires a loop statement
// and cannot be expressed as a pure inline expression.
func (w *writer) lowerArrayConstruct(node *ir.Node) (string, error) {
	elemType := typeUnknown
	if arrType := w.infer.Infer(node.ID); arrType != typeUnknown {
		if e, _, ok := ArrayLength(arrType); ok {
			elemType = e
		}
	}
	ctype := "float"
	if elemType != typeUnknown {
		if c, err := w.types.CExpr(elemType); err == nil {
			ctype = c
		}
	}

	if values, ok := node.NumList("values"); ok {
		lit, err := formatFloatArray(values)
		if err != nil {
			return "", err
		}
		return "(" + ctype + "[" + itoa(len(values)) + "])" + lit, nil
	}
	if refs, ok := node.StrList("values"); ok {
		parts := make([]string, len(refs))
		for i, ref := range refs {
			v, err := w.compileInline(ref)
			if err != nil {
				return "", err
			}
			parts[i] = v
		}
		return "(" + ctype + "[" + itoa(len(refs)) + "]){" + strings.Join(parts, ", ") + "}", nil
	}
	return "", newNodeError(ErrUnknownOp, "array_construct missing values/fill", w.fn.ID, node.ID)
}

func (w *writer) lowerStructExtract(node *ir.Node) (string, error) {
	structRef, ok := node.Str("struct")
	if !ok {
		return "", newNodeError(ErrUnknownVariable, "struct_extract missing struct attribute", w.fn.ID, node.ID)
	}
	field, ok := node.Str("field")
	if !ok {
		return "", newNodeError(ErrUnknownStruct, "struct_extract missing field attribute", w.fn.ID, node.ID)
	}
	base, err := w.compileInline(structRef)
	if err != nil {
		return "", err
	}
	return base + "." + w.names.Name(field, NamespaceStructField), nil
}

func (w *writer) lowerArrayExtract(node *ir.Node) (string, error) {
	arrRef, ok := node.Str("array")
	if !ok {
		return "", newNodeError(ErrUnknownVariable, "array_extract missing array attribute", w.fn.ID, node.ID)
	}
	base, err := w.compileInline(arrRef)
	if err != nil {
		return "", err
	}
	idx, err := w.resolveArg(node, "index", "int")
	if err != nil {
		return "", err
	}
	return base + "[" + idx + "]", nil
}

var swizzleComponent = map[byte]int{'x': 0, 'y': 1, 'z': 2, 'w': 3, 'r': 0, 'g': 1, 'b': 2, 'a': 3}

func (w *writer) lowerSwizzle(node *ir.Node) (string, error) {
	vecRef, ok := node.Str("vec")
	if !ok {
		return "", newNodeError(ErrUnknownVariable, "vec_swizzle missing vec attribute", w.fn.ID, node.ID)
	}
	channels, ok := node.Str("channels")
	if !ok || len(channels) == 0 {
		return "", newNodeError(ErrUnknownOp, "vec_swizzle missing channels attribute", w.fn.ID, node.ID)
	}
	base, err := w.compileInline(vecRef)
	if err != nil {
		return "", err
	}
	if len(channels) == 1 {
		comp, ok := swizzleComponent[channels[0]]
		if !ok {
			return "", newNodeError(ErrUnknownOp, "unrecognized swizzle channel "+channels, w.fn.ID, node.ID)
		}
		return base + "[" + itoa(comp) + "]", nil
	}
	parts := make([]string, len(channels))
	for i := 0; i < len(channels); i++ {
		comp, ok := swizzleComponent[channels[i]]
		if !ok {
			return "", newNodeError(ErrUnknownOp, "unrecognized swizzle channel "+channels, w.fn.ID, node.ID)
		}
		parts[i] = base + "[" + itoa(comp) + "]"
	}
	return "(float[" + itoa(len(channels)) + "]){" + strings.Join(parts, ", ") + "}", nil
}

func (w *writer) lowerVecGetElement(node *ir.Node) (string, error) {
	vecRef, ok := node.Str("vec")
	if !ok {
		return "", newNodeError(ErrUnknownVariable, "vec_get_element missing vec attribute", w.fn.ID, node.ID)
	}
	base, err := w.compileInline(vecRef)
	if err != nil {
		return "", err
	}
	idx, err := w.resolveArg(node, "index", "int")
	if err != nil {
		return "", err
	}
	return base + "[" + idx + "]", nil
}

func (w *writer) lowerCast(node *ir.Node, ctype string) (string, error) {
	v, err := w.resolveArg(node, "val", typeUnknown)
	if err != nil {
		return "", err
	}
	return "(" + ctype + ")(" + v + ")", nil
}

func (w *writer) lowerCastBool(node *ir.Node) (string, error) {
	v, err := w.resolveArg(node, "val", typeUnknown)
	if err != nil {
		return "", err
	}
	return "((" + v + ") != 0)", nil
}

// lowerCallExpr lowers a call_func node used in value position: the
// callee has already been emitted (spec.md §4.5 emission order places
// callees before callers) as a C function taking its declared inputs by
// value and returning its declared output type directly.
func (w *writer) lowerCallExpr(node *ir.Node) (string, error) {
	funcID, ok := node.Str("func")
	if !ok {
		return "", newNodeError(ErrFunctionNotFound, "call_func missing func attribute", w.fn.ID, node.ID)
	}
	fn, ok := w.doc.FunctionByID(funcID)
	if !ok {
		return "", newNodeError(ErrFunctionNotFound, "unknown function "+funcID, w.fn.ID, node.ID)
	}
	callee := w.names.Name(fn.ID, NamespaceFunction)
	args := make([]string, 1, len(fn.Inputs)+1)
	args[0] = "ctx"
	for _, in := range fn.Inputs {
		v, err := w.resolveArg(node, in.ID, in.Type)
		if err != nil {
			return "", err
		}
		args = append(args, v)
	}
	return callee + "(" + strings.Join(args, ", ") + ")", nil
}

func (w *writer) lowerBufferLoad(node *ir.Node) (string, error) {
	bufID, ok := node.Str("buffer")
	if !ok {
		return "", newNodeError(ErrUnknownVariable, "buffer_load missing buffer attribute", w.fn.ID, node.ID)
	}
	idx, err := w.resolveArg(node, "index", "int")
	if err != nil {
		return "", err
	}
	slot := w.resourceSlot(bufID)
	return "((float*)ctx->resources[" + itoa(slot) + "]->data)[" + idx + "]", nil
}

func (w *writer) lowerTextureSample(node *ir.Node) (string, error) {
	texID, ok := node.Str("texture")
	if !ok {
		return "", newNodeError(ErrUnknownVariable, "texture_sample missing texture attribute", w.fn.ID, node.ID)
	}
	u, err := w.resolveArg(node, "u", "float")
	if err != nil {
		return "", err
	}
	v, err := w.resolveArg(node, "v", "float")
	if err != nil {
		return "", err
	}
	slot := w.resourceSlot(texID)
	wrapCode, filterCode := 0, 1
	if res, ok := w.doc.ResourceByID(texID); ok && res.Sampler != nil {
		wrapCode = samplerWrapCode(res.Sampler.Wrap)
		filterCode = samplerFilterCode(res.Sampler.Filter)
	}
	return "ctx_sample_texture(ctx, " + itoa(slot) + ", " + u + ", " + v + ", " + itoa(wrapCode) + ", " + itoa(filterCode) + ")", nil
}

func (w *writer) lowerResourceGetSize(node *ir.Node) (string, error) {
	resID, ok := node.Str("resource")
	if !ok {
		return "", newNodeError(ErrUnknownVariable, "resource_get_size missing resource attribute", w.fn.ID, node.ID)
	}
	slot := w.resourceSlot(resID)
	return "ctx_get_resource_size(ctx, " + itoa(slot) + ")", nil
}

func (w *writer) lowerResourceGetFormat(node *ir.Node) (string, error) {
	resID, ok := node.Str("resource")
	if !ok {
		return "", newNodeError(ErrUnknownVariable, "resource_get_format missing resource attribute", w.fn.ID, node.ID)
	}
	if res, ok := w.doc.ResourceByID(resID); ok {
		return itoa(textureFormatCode(res.Format)) + ".0f", nil
	}
	slot := w.resourceSlot(resID)
	return "ctx_get_resource_format(ctx, " + itoa(slot) + ")", nil
}

func (w *writer) lowerBuiltinGet(node *ir.Node) (string, error) {
	name, ok := node.Str("name")
	if !ok {
		return "", newNodeError(ErrUnsupportedBuiltin, "builtin_get missing name attribute", w.fn.ID, node.ID)
	}
	switch name {
	case "time":
		return "ctx_get_input(ctx, \"time\")", nil
	case "frame":
		return "ctx_get_input(ctx, \"frame\")", nil
	default:
		return "", newNodeError(ErrUnsupportedBuiltin, "unsupported builtin "+name, w.fn.ID, node.ID)
	}
}

// flattenDispatchArgs marshals a cmd_dispatch node's "args" map into a
// flat list of C float expressions, in callee.Inputs declaration order,
// per spec.md §4.8's cmd_dispatch rule. An input missing from args is
// zero-filled to its flattened width so the buffer's layout always
// matches the callee's declared inputs.
func (w *writer) flattenDispatchArgs(node *ir.Node, callee *ir.Function) ([]string, error) {
	args, _ := node.Args()
	out := make([]string, 0, len(callee.Inputs))
	for _, in := range callee.Inputs {
		raw, ok := args[in.ID]
		if !ok {
			out = append(out, w.zeroFlatten(in.Type)...)
			continue
		}
		parts, err := w.flattenArgValue(node, in.ID, raw, in.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, parts...)
	}
	return out, nil
}

// flattenArgValue resolves one dispatch argument and decomposes it into
// its flat scalar components. An inline numeric array literal is
// flattened directly; anything else (scalar, node reference) is
// resolved to an addressable base expression first and then decomposed.
func (w *writer) flattenArgValue(node *ir.Node, argName string, raw json.RawMessage, typeStr string) ([]string, error) {
	var xs []float64
	if json.Unmarshal(raw, &xs) == nil {
		return formatFloatComponents(xs)
	}
	base, err := w.resolveArg(node, argName, typeStr)
	if err != nil {
		return nil, err
	}
	return w.decomposeValue(base, typeStr)
}

// decomposeValue recursively decomposes an addressable expression of the
// given IR type into its flat scalar float expressions: vectors and
// matrices by index, structs by member in declaration order, fixed
// arrays by element (recursing on the element type). This IR's array
// type always carries a fixed length, so there is no length-prefixed
// dynamic-array case to emit.
func (w *writer) decomposeValue(base, typeStr string) ([]string, error) {
	if width := VectorWidth(typeStr); width > 0 {
		return indexComponents(base, width), nil
	}
	if n := MatrixLength(typeStr); n > 0 {
		return indexComponents(base, n), nil
	}
	if st, ok := w.doc.StructByID(typeStr); ok {
		var parts []string
		for _, m := range st.Members {
			field := base + "." + w.names.Name(m.Name, NamespaceStructField)
			sub, err := w.decomposeValue(field, m.Type)
			if err != nil {
				return nil, err
			}
			parts = append(parts, sub...)
		}
		return parts, nil
	}
	if elemType, n, ok := ArrayLength(typeStr); ok {
		var parts []string
		for i := 0; i < n; i++ {
			sub, err := w.decomposeValue(base+"["+itoa(i)+"]", elemType)
			if err != nil {
				return nil, err
			}
			parts = append(parts, sub...)
		}
		return parts, nil
	}
	return []string{base}, nil
}

func indexComponents(base string, n int) []string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = base + "[" + itoa(i) + "]"
	}
	return parts
}

func formatFloatComponents(xs []float64) ([]string, error) {
	parts := make([]string, len(xs))
	for i, x := range xs {
		s, err := formatFloat(x)
		if err != nil {
			return nil, err
		}
		parts[i] = s
	}
	return parts, nil
}

// zeroFlatten returns the zero-valued flattened component list for
// typeStr, matching the width decomposeValue would produce for a
// present value of the same type.
func (w *writer) zeroFlatten(typeStr string) []string {
	if width := VectorWidth(typeStr); width > 0 {
		return repeatZero(width)
	}
	if n := MatrixLength(typeStr); n > 0 {
		return repeatZero(n)
	}
	if st, ok := w.doc.StructByID(typeStr); ok {
		var parts []string
		for _, m := range st.Members {
			parts = append(parts, w.zeroFlatten(m.Type)...)
		}
		return parts
	}
	if elemType, n, ok := ArrayLength(typeStr); ok {
		var parts []string
		for i := 0; i < n; i++ {
			parts = append(parts, w.zeroFlatten(elemType)...)
		}
		return parts
	}
	return []string{"0.0f"}
}

func repeatZero(n int) []string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "0.0f"
	}
	return parts
}

// resourceSlot resolves a resource or texture-typed input id to its
// canonical binding index (ir.Document.ResourceOrder), per spec.md §4.10.
func (w *writer) resourceSlot(id string) int {
	order := w.doc.ResourceOrder()
	for i, rid := range order {
		if rid == id {
			return i
		}
	}
	return -1
}

// arithOp describes how to lower one arithmetic-classified op to C.
type arithOp struct {
	operands []string // attribute/edge keys, in operand order
	emit     func(args []string) string
}

// arithOpTable maps the arithmetic-classified ops graphc lowers to their
// C form; it covers only the entries listed here. Any other op that
// ir.ClassOf classifies as arithmetic (by its math_/vec_/quat_/mat_
// prefix) has no entry and is rejected by lowerArithmetic with
// ErrUnknownOp. mat_inverse is intentionally an identity passthrough
// (spec.md §9 Open Question: keep the source's existing contract).
var arithOpTable = map[string]arithOp{
	"math_add":   {[]string{"a", "b"}, func(a []string) string { return a[0] + " + " + a[1] }},
	"math_sub":   {[]string{"a", "b"}, func(a []string) string { return a[0] + " - " + a[1] }},
	"math_mul":   {[]string{"a", "b"}, func(a []string) string { return a[0] + " * " + a[1] }},
	"math_div":   {[]string{"a", "b"}, func(a []string) string { return a[0] + " / " + a[1] }},
	"math_neg":   {[]string{"val"}, func(a []string) string { return "-(" + a[0] + ")" }},
	"math_abs":   {[]string{"val"}, func(a []string) string { return "fabsf(" + a[0] + ")" }},
	"math_min":   {[]string{"a", "b"}, func(a []string) string { return "fminf(" + a[0] + ", " + a[1] + ")" }},
	"math_max":   {[]string{"a", "b"}, func(a []string) string { return "fmaxf(" + a[0] + ", " + a[1] + ")" }},
	"math_clamp": {[]string{"val", "min", "max"}, func(a []string) string { return "clamp_val(" + a[0] + ", " + a[1] + ", " + a[2] + ")" }},
	"math_lerp":  {[]string{"a", "b", "t"}, func(a []string) string { return a[0] + " + (" + a[1] + " - " + a[0] + ") * " + a[2] }},
	"math_sqrt":  {[]string{"val"}, func(a []string) string { return "sqrtf(" + a[0] + ")" }},
	"math_sin":   {[]string{"val"}, func(a []string) string { return "sinf(" + a[0] + ")" }},
	"math_cos":   {[]string{"val"}, func(a []string) string { return "cosf(" + a[0] + ")" }},
	"math_pow":   {[]string{"a", "b"}, func(a []string) string { return "powf(" + a[0] + ", " + a[1] + ")" }},
	"math_mod":   {[]string{"a", "b"}, func(a []string) string { return "fmodf(" + a[0] + ", " + a[1] + ")" }},
	"math_floor": {[]string{"val"}, func(a []string) string { return "floorf(" + a[0] + ")" }},
	"math_ceil":  {[]string{"val"}, func(a []string) string { return "ceilf(" + a[0] + ")" }},
	"math_eq":    {[]string{"a", "b"}, func(a []string) string { return "(" + a[0] + " == " + a[1] + ")" }},
	"math_neq":   {[]string{"a", "b"}, func(a []string) string { return "(" + a[0] + " != " + a[1] + ")" }},
	"math_lt":    {[]string{"a", "b"}, func(a []string) string { return "(" + a[0] + " < " + a[1] + ")" }},
	"math_lte":   {[]string{"a", "b"}, func(a []string) string { return "(" + a[0] + " <= " + a[1] + ")" }},
	"math_gt":    {[]string{"a", "b"}, func(a []string) string { return "(" + a[0] + " > " + a[1] + ")" }},
	"math_gte":   {[]string{"a", "b"}, func(a []string) string { return "(" + a[0] + " >= " + a[1] + ")" }},
	"math_and":   {[]string{"a", "b"}, func(a []string) string { return "(" + a[0] + " && " + a[1] + ")" }},
	"math_or":    {[]string{"a", "b"}, func(a []string) string { return "(" + a[0] + " || " + a[1] + ")" }},
	"math_not":   {[]string{"val"}, func(a []string) string { return "(!(" + a[0] + "))" }},
	"color_mix":  {[]string{"a", "b", "t"}, func(a []string) string { return a[0] + " + (" + a[1] + " - " + a[0] + ") * " + a[2] }},

	"vec_dot":       {[]string{"a", "b"}, func(a []string) string { return "vec_dot(" + a[0] + ", " + a[1] + ")" }},
	"vec_cross":     {[]string{"a", "b"}, func(a []string) string { return "vec_cross(" + a[0] + ", " + a[1] + ")" }},
	"vec_normalize": {[]string{"val"}, func(a []string) string { return "vec_normalize(" + a[0] + ")" }},
	"vec_length":    {[]string{"val"}, func(a []string) string { return "vec_length(" + a[0] + ")" }},

	"mat_mul":       {[]string{"a", "b"}, func(a []string) string { return "mat_mul(" + a[0] + ", " + a[1] + ")" }},
	"mat_transpose": {[]string{"val"}, func(a []string) string { return "mat_transpose(" + a[0] + ")" }},
	"mat_inverse":   {[]string{"val"}, func(a []string) string { return a[0] }},

	"quat_mul":        {[]string{"a", "b"}, func(a []string) string { return "quat_mul(" + a[0] + ", " + a[1] + ")" }},
	"quat_rotate_vec": {[]string{"q", "v"}, func(a []string) string { return "quat_rotate_vec(" + a[0] + ", " + a[1] + ")" }},
}

// lowerArithmetic looks up node.Op in arithOpTable and resolves its
// operands positionally. spec.md §9 mandates a hard ErrUnknownOp for any
// arithmetic-classified op with no table entry rather than falling back
// to the harness's generic applyUnary/applyBinary helpers.
func (w *writer) lowerArithmetic(node *ir.Node) (string, error) {
	spec, ok := arithOpTable[node.Op]
	if !ok {
		return "", newNodeError(ErrUnknownOp, "no lowering for arithmetic op "+node.Op, w.fn.ID, node.ID)
	}
	resultType := w.infer.Infer(node.ID)
	operandType := resultType
	if operandType == typeUnknown {
		operandType = "float"
	}
	args := make([]string, len(spec.operands))
	for i, key := range spec.operands {
		v, err := w.resolveArg(node, key, operandType)
		if err != nil {
			return "", err
		}
		args[i] = v
	}
	return spec.emit(args), nil
}
