// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile

import (
	"strings"

	"github.com/gogpu/graphc/ir"
)

// writer holds the per-function emission context shared by the
// Expression Compiler (expressions.go, lowering.go) and the Control-Flow
// Emitter (this file): name/type mappers, the function's edge index and
// type inferencer, the pure-node memoisation table, and an indenting
// string builder for the function body. One writer is created per
// emitted function by the Document Emitter (backend.go).
type writer struct {
	doc   *ir.Document
	opts  *Options
	names *mangleNamer
	types *typeMapper
	fn    *ir.Function
	idx   *edgeIndex
	infer *inferencer

	memo map[string]string

	out    strings.Builder
	indent int
}

func newFunctionWriter(doc *ir.Document, opts *Options, names *mangleNamer, types *typeMapper, fn *ir.Function) *writer {
	idx := buildEdgeIndex(fn)
	return &writer{
		doc:   doc,
		opts:  opts,
		names: names,
		types: types,
		fn:    fn,
		idx:   idx,
		infer: newInferencer(doc, fn, idx),
		memo:  make(map[string]string),
	}
}

func (w *writer) pushIndent() { w.indent++ }
func (w *writer) popIndent()  { w.indent-- }

func (w *writer) writeLine(line string) {
	w.out.WriteString(strings.Repeat("    ", w.indent))
	w.out.WriteString(line)
	w.out.WriteByte('\n')
}

func (w *writer) writeRaw(s string) {
	w.out.WriteString(s)
}

// emitBody walks every root statement chain of the function (a node that
// is executable and has no incoming execution edge, in declaration
// order) and emits the corresponding C statements, per spec.md §4.8.
func (w *writer) emitBody() error {
	visited := make(map[string]bool)
	for i := range w.fn.Nodes {
		node := &w.fn.Nodes[i]
		if w.idx.ExecutionIncoming(node.ID) {
			continue
		}
		class := ir.ClassOf(node.Op)
		if !ir.IsExecutable(class, w.hasOutgoingExec(node.ID)) {
			continue
		}
		if visited[node.ID] {
			continue
		}
		if err := w.walkChain(node.ID, visited); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) hasOutgoingExec(nodeID string) bool {
	if _, ok := w.idx.ExecEdgeOut(nodeID, ir.PortExecOut); ok {
		return true
	}
	if _, ok := w.idx.ExecEdgeOut(nodeID, ir.PortExecTrue); ok {
		return true
	}
	if _, ok := w.idx.ExecEdgeOut(nodeID, ir.PortExecBody); ok {
		return true
	}
	return false
}

// walkChain follows the execution-edge chain starting at nodeID until it
// runs out of exec_out wiring, emitting one statement per node. visited
// is forked (copied) at branch points so each arm explores independently
// but within-arm, and replaced with a fresh set when entering a loop
// body, since a loop body's nodes are re-executed and must not be
// treated as already visited by an earlier pass through the function.
func (w *writer) walkChain(nodeID string, visited map[string]bool) error {
	cur := nodeID
	for cur != "" {
		if visited[cur] {
			return nil
		}
		visited[cur] = true

		node, ok := w.fn.NodeByID(cur)
		if !ok {
			return newNodeError(ErrUnknownVariable, "node not found: "+cur, w.fn.ID, cur)
		}

		next, err := w.emitNode(node, visited)
		if err != nil {
			return err
		}
		cur = next
	}
	return nil
}

// emitNode emits the statement for one executable node and returns the
// id of the next node in its chain (the exec_out target), or "" if the
// node terminates its chain (func_return, or no outgoing exec edge).
func (w *writer) emitNode(node *ir.Node, visited map[string]bool) (string, error) {
	switch node.Op {
	case "var_set":
		return w.emitVarSet(node)
	case "array_set":
		return w.emitArraySet(node)
	case "buffer_store":
		return w.emitBufferStore(node)
	case "texture_store":
		return w.emitTextureStore(node)
	case "call_func":
		return w.emitCallStatement(node)
	case "flow_branch":
		return w.emitBranch(node, visited)
	case "flow_loop":
		return w.emitLoop(node, visited)
	case "func_return":
		return w.emitReturn(node)
	case "cmd_dispatch":
		return w.emitDispatch(node)
	case "cmd_draw":
		return w.emitDraw(node)
	case "cmd_resize_resource":
		return w.emitResizeResource(node)
	default:
		return "", newNodeError(ErrUnknownOp, "node is not executable: "+node.Op, w.fn.ID, node.ID)
	}
}

func (w *writer) nextExec(node *ir.Node) string {
	if to, ok := w.idx.ExecEdgeOut(node.ID, ir.PortExecOut); ok {
		return to
	}
	return ""
}

func (w *writer) emitVarSet(node *ir.Node) (string, error) {
	varID, ok := node.Str("var")
	if !ok {
		return "", newNodeError(ErrUnknownVariable, "var_set missing var attribute", w.fn.ID, node.ID)
	}
	varType := w.typeOfTarget(varID)
	val, err := w.resolveArg(node, "val", varType)
	if err != nil {
		return "", err
	}
	target, err := w.lvalueForVar(varID)
	if err != nil {
		return "", err
	}
	if w.isAggregateType(varType) {
		w.writeLine("memcpy(" + target + ", (" + w.aggregateCType(varType) + "[]){" + stripCompoundLiteralPrefix(val) + "}, sizeof(" + target + "));")
	} else {
		w.writeLine(target + " = " + val + ";")
	}
	return w.nextExec(node), nil
}

func (w *writer) emitArraySet(node *ir.Node) (string, error) {
	arrRef, ok := node.Str("array")
	if !ok {
		return "", newNodeError(ErrUnknownVariable, "array_set missing array attribute", w.fn.ID, node.ID)
	}
	base, err := w.compileInline(arrRef)
	if err != nil {
		return "", err
	}
	idx, err := w.resolveArg(node, "index", "int")
	if err != nil {
		return "", err
	}
	elemType := typeUnknown
	if arrType := w.infer.Infer(arrRef); arrType != typeUnknown {
		if e, _, ok := ArrayLength(arrType); ok {
			elemType = e
		}
	}
	val, err := w.resolveArg(node, "val", elemType)
	if err != nil {
		return "", err
	}
	w.writeLine(base + "[" + idx + "] = " + val + ";")
	return w.nextExec(node), nil
}

func (w *writer) emitBufferStore(node *ir.Node) (string, error) {
	bufID, ok := node.Str("buffer")
	if !ok {
		return "", newNodeError(ErrUnknownVariable, "buffer_store missing buffer attribute", w.fn.ID, node.ID)
	}
	idx, err := w.resolveArg(node, "index", "int")
	if err != nil {
		return "", err
	}
	val, err := w.resolveArg(node, "val", "float")
	if err != nil {
		return "", err
	}
	slot := w.resourceSlot(bufID)
	w.writeLine("((float*)ctx->resources[" + itoa(slot) + "]->data)[" + idx + "] = " + val + ";")
	return w.nextExec(node), nil
}

func (w *writer) emitTextureStore(node *ir.Node) (string, error) {
	texID, ok := node.Str("texture")
	if !ok {
		return "", newNodeError(ErrUnknownVariable, "texture_store missing texture attribute", w.fn.ID, node.ID)
	}
	u, err := w.resolveArg(node, "u", "int")
	if err != nil {
		return "", err
	}
	v, err := w.resolveArg(node, "v", "int")
	if err != nil {
		return "", err
	}
	val, err := w.resolveArg(node, "val", "float4")
	if err != nil {
		return "", err
	}
	slot := w.resourceSlot(texID)
	w.writeLine("ctx_store_texel(ctx, " + itoa(slot) + ", " + u + ", " + v + ", " + val + ");")
	return w.nextExec(node), nil
}

// emitCallStatement emits a call_func reached in statement position. A
// callee with a declared output is force-emitted as a named n_<id>
// declaration (memoised, so later data references reuse the name); a
// void callee is emitted as a bare call.
func (w *writer) emitCallStatement(node *ir.Node) (string, error) {
	if w.infer.Infer(node.ID) != "void" {
		if _, err := w.materialize(node); err != nil {
			return "", err
		}
		return w.nextExec(node), nil
	}
	expr, err := w.lowerCallExpr(node)
	if err != nil {
		return "", err
	}
	w.writeLine(expr + ";")
	return w.nextExec(node), nil
}

// emitBranch emits a C if/else for flow_branch, forking visited so the
// true and false arms are explored independently, per spec.md §4.8.
func (w *writer) emitBranch(node *ir.Node, visited map[string]bool) (string, error) {
	cond, err := w.branchCondition(node)
	if err != nil {
		return "", err
	}
	w.writeLine("if (" + cond + ") {")
	w.pushIndent()
	if trueTarget, ok := w.idx.ExecEdgeOut(node.ID, ir.PortExecTrue); ok {
		if err := w.walkChain(trueTarget, cloneVisited(visited)); err != nil {
			return "", err
		}
	}
	w.popIndent()
	if falseTarget, ok := w.idx.ExecEdgeOut(node.ID, ir.PortExecFalse); ok {
		w.writeLine("} else {")
		w.pushIndent()
		if err := w.walkChain(falseTarget, cloneVisited(visited)); err != nil {
			return "", err
		}
		w.popIndent()
		w.writeLine("}")
	} else {
		w.writeLine("}")
	}
	return w.nextExec(node), nil
}

// branchCondition resolves flow_branch's condition expression. A
// bool-typed condition is formatted numerically by the Literal
// Formatter (formatBoolNumeric), so the branch itself restores boolean
// semantics with an explicit "!= 0" comparison, per spec.md scenario S3
// ("if (1.0 != 0) ... else ...").
func (w *writer) branchCondition(node *ir.Node) (string, error) {
	cond, err := w.resolveArg(node, "cond", "bool")
	if err != nil {
		return "", err
	}
	if condRef, hasRef := w.idx.DataEdgeInto(node.ID, "cond"); hasRef {
		if w.infer.Infer(condRef) == "bool" {
			return "(" + cond + ") != 0", nil
		}
		return cond, nil
	}
	return cond, nil
}

// emitLoop emits a C for loop for flow_loop over [start, end), binding
// the loop's induction variable to the mangled loop-index identifier
// that loop_index nodes referencing this loop read from (see
// NamespaceLoopInduction). The body gets a fresh visited set since its
// nodes execute once per iteration in the emitted source, independent of
// any earlier pass through the function's other chains. Upon loop
// completion the continuation under exec_completed is walked in the
// parent scope (spec.md §4.8), not exec_out.
func (w *writer) emitLoop(node *ir.Node, visited map[string]bool) (string, error) {
	start, err := w.resolveArg(node, "start", "int")
	if err != nil {
		return "", err
	}
	end, err := w.resolveArg(node, "end", "int")
	if err != nil {
		return "", err
	}
	induction := w.names.Name(node.ID, NamespaceLoopInduction)
	w.writeLine("for (int32_t " + induction + " = " + start + "; " + induction + " < (" + end + "); ++" + induction + ") {")
	w.pushIndent()
	if bodyTarget, ok := w.idx.ExecEdgeOut(node.ID, ir.PortExecBody); ok {
		if err := w.walkChain(bodyTarget, make(map[string]bool)); err != nil {
			return "", err
		}
	}
	w.popIndent()
	w.writeLine("}")
	if completed, ok := w.idx.ExecEdgeOut(node.ID, ir.PortExecCompleted); ok {
		return completed, nil
	}
	return "", nil
}

// emitReturn emits the function's return statement. A void function
// emits a bare "return;"; a value-returning function publishes its
// result to the harness via ctx_set_return_value before returning, per
// spec.md §6's harness ABI.
func (w *writer) emitReturn(node *ir.Node) (string, error) {
	if len(w.fn.Outputs) == 0 {
		w.writeLine("return;")
		return "", nil
	}
	val, err := w.resolveArg(node, "val", w.fn.Outputs[0].Type)
	if err != nil {
		return "", err
	}
	w.writeLine("ctx_set_return_value(ctx, " + val + ");")
	w.writeLine("return " + val + ";")
	return "", nil
}

func (w *writer) emitDispatch(node *ir.Node) (string, error) {
	target, ok := node.Str("func")
	if !ok {
		return "", newNodeError(ErrFunctionNotFound, "cmd_dispatch missing func attribute", w.fn.ID, node.ID)
	}
	callee, ok := w.doc.FunctionByID(target)
	if !ok {
		return "", newNodeError(ErrFunctionNotFound, "unknown dispatch target "+target, w.fn.ID, node.ID)
	}
	dims, _ := node.OperandList("dispatch")
	dispatchArgs := make([]string, 0, 3)
	for _, d := range dims {
		if d.IsRef {
			v, err := w.compileInline(d.NodeRef)
			if err != nil {
				return "", err
			}
			dispatchArgs = append(dispatchArgs, v)
		} else {
			dispatchArgs = append(dispatchArgs, formatInt(int64(d.Value)))
		}
	}
	for len(dispatchArgs) < 3 {
		dispatchArgs = append(dispatchArgs, "1")
	}
	argBuf, err := w.flattenDispatchArgs(node, callee)
	if err != nil {
		return "", err
	}
	fname := w.names.Name(target, NamespaceFunction)
	call := "ctx_dispatch_shader(ctx, \"" + fname + "\", " + strings.Join(dispatchArgs, ", ")
	if len(argBuf) > 0 {
		call += ", (float[]){" + strings.Join(argBuf, ", ") + "}"
	}
	w.writeLine(call + ");")
	return w.nextExec(node), nil
}

func (w *writer) emitDraw(node *ir.Node) (string, error) {
	vertexFn, _ := node.Str("vertex")
	fragmentFn, _ := node.Str("fragment")
	w.writeLine("ctx_draw(ctx, \"" + w.names.Name(vertexFn, NamespaceFunction) + "\", \"" + w.names.Name(fragmentFn, NamespaceFunction) + "\");")
	return w.nextExec(node), nil
}

func (w *writer) emitResizeResource(node *ir.Node) (string, error) {
	resID, ok := node.Str("resource")
	if !ok {
		return "", newNodeError(ErrUnknownVariable, "cmd_resize_resource missing resource attribute", w.fn.ID, node.ID)
	}
	width, err := w.resolveArg(node, "width", "int")
	if err != nil {
		return "", err
	}
	height, err := w.resolveArg(node, "height", "int")
	if err != nil {
		return "", err
	}
	slot := w.resourceSlot(resID)
	w.writeLine("ctx_resize_resource(ctx, " + itoa(slot) + ", " + width + ", " + height + ");")
	return w.nextExec(node), nil
}

func cloneVisited(v map[string]bool) map[string]bool {
	out := make(map[string]bool, len(v))
	for k := range v {
		out[k] = true
	}
	return out
}

func (w *writer) typeOfTarget(varID string) string {
	if lv, ok := w.fn.LocalByID(varID); ok {
		return lv.Type
	}
	if in, ok := w.fn.InputByID(varID); ok {
		return in.Type
	}
	if in, ok := w.doc.InputByID(varID); ok {
		return in.Type
	}
	return typeUnknown
}

func (w *writer) lvalueForVar(varID string) (string, error) {
	if lv, ok := w.fn.LocalByID(varID); ok {
		return w.names.Name(lv.ID, NamespaceVariable), nil
	}
	if in, ok := w.fn.InputByID(varID); ok {
		return w.names.Name(in.ID, NamespaceFunctionInput), nil
	}
	return "", newNodeError(ErrUnknownVariable, "var_set target is not assignable: "+varID, w.fn.ID, "")
}

func (w *writer) isAggregateType(t string) bool {
	return VectorWidth(t) > 0 || MatrixLength(t) > 0
}

func (w *writer) aggregateCType(t string) string {
	c, err := w.types.CExpr(t)
	if err != nil {
		return "float"
	}
	return c
}

// stripCompoundLiteralPrefix removes a leading C99 cast-to-array-type
// prefix like "(float[3])" from a compound literal expression, since
// emitVarSet's memcpy already supplies the array type via its own cast.
func stripCompoundLiteralPrefix(expr string) string {
	if !strings.HasPrefix(expr, "(") {
		return expr
	}
	braceIdx := strings.IndexByte(expr, '{')
	if braceIdx < 0 {
		return expr
	}
	return expr[braceIdx:]
}
