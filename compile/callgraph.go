// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile

import "github.com/gogpu/graphc/ir"

// shaderRef records a shader function reached via cmd_dispatch/cmd_draw
// from the CPU call graph, without recursing into it for CPU emission.
type shaderRef struct {
	ID     string
	Inputs []ir.FunctionInput
}

// callGraph is the result of walking the CPU call graph from the entry
// function, per spec.md §4.5.
type callGraph struct {
	// required holds function ids in first-visit (insertion) order.
	required []string
	// order is the dependency-respecting emission order: callees before
	// callers, i.e. the reverse of required.
	order []string
	// shaders holds distinct shader functions referenced by dispatch/draw
	// commands reachable from the entry, in first-reference order.
	shaders []shaderRef
}

// walkCallGraph performs the depth-first traversal described in
// spec.md §4.5, starting at entryID.
func walkCallGraph(doc *ir.Document, entryID string) (*callGraph, error) {
	w := &callgraphWalker{
		doc:        doc,
		visitedSet: make(map[string]struct{}),
		onStack:    make(map[string]bool),
		shaderSeen: make(map[string]struct{}),
	}
	if err := w.visit(entryID, nil); err != nil {
		return nil, err
	}

	order := make([]string, len(w.required))
	for i, id := range w.required {
		order[len(order)-1-i] = id
	}

	return &callGraph{required: w.required, order: order, shaders: w.shaders}, nil
}

type callgraphWalker struct {
	doc        *ir.Document
	required   []string
	visitedSet map[string]struct{}
	onStack    map[string]bool
	stack      []string
	shaders    []shaderRef
	shaderSeen map[string]struct{}
}

func (w *callgraphWalker) visit(funcID string, path []string) error {
	if w.onStack[funcID] {
		full := append(append([]string{}, path...), funcID)
		return newRecursionError(full)
	}

	if _, done := w.visitedSet[funcID]; done {
		return nil
	}

	fn, ok := w.doc.FunctionByID(funcID)
	if !ok {
		return newError(ErrFunctionNotFound, "function not found: "+funcID)
	}

	w.onStack[funcID] = true
	w.stack = append(w.stack, funcID)
	nextPath := append(append([]string{}, path...), funcID)

	if fn.Kind != ir.FunctionShader {
		w.visitedSet[funcID] = struct{}{}
		w.required = append(w.required, funcID)

		for _, node := range fn.Nodes {
			switch node.Op {
			case "call_func":
				target, ok := node.Str("func")
				if !ok {
					return newNodeError(ErrFunctionNotFound, "call_func missing func attribute", funcID, node.ID)
				}
				if err := w.visit(target, nextPath); err != nil {
					return err
				}
			case "cmd_dispatch", "cmd_draw":
				if err := w.recordShaderRefs(node, funcID); err != nil {
					return err
				}
			}
		}
	}

	w.onStack[funcID] = false
	w.stack = w.stack[:len(w.stack)-1]
	return nil
}

func (w *callgraphWalker) recordShaderRefs(node ir.Node, callerID string) error {
	var targets []string
	switch node.Op {
	case "cmd_dispatch":
		if t, ok := node.Str("func"); ok {
			targets = append(targets, t)
		}
	case "cmd_draw":
		if t, ok := node.Str("vertex"); ok {
			targets = append(targets, t)
		}
		if t, ok := node.Str("fragment"); ok {
			targets = append(targets, t)
		}
	}
	for _, target := range targets {
		if _, seen := w.shaderSeen[target]; seen {
			continue
		}
		fn, ok := w.doc.FunctionByID(target)
		if !ok {
			return newNodeError(ErrFunctionNotFound, "dispatch target not found: "+target, callerID, node.ID)
		}
		w.shaderSeen[target] = struct{}{}
		w.shaders = append(w.shaders, shaderRef{ID: fn.ID, Inputs: fn.Inputs})
	}
	return nil
}
