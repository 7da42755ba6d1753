// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import "encoding/json"

// Node is a single vertex of a function's graph: an id, an op string,
// and an op-specific attribute bag.
//
// Per the source's schema-light style (see ir/doc.go), Node keeps the
// raw attribute bag alongside typed accessors for the attributes hot
// call sites actually need, rather than an exhaustive sum type per op —
// this mirrors the teacher's "tagged variants over inheritance, plus a
// generic fallback" structuring.
type Node struct {
	ID   string
	Op   string
	raw  map[string]json.RawMessage
}

// UnmarshalJSON decodes a Node, pulling out "id"/"op" and retaining every
// other key in the raw attribute bag untouched.
func (n *Node) UnmarshalJSON(data []byte) error {
	var bag map[string]json.RawMessage
	if err := json.Unmarshal(data, &bag); err != nil {
		return err
	}
	if v, ok := bag["id"]; ok {
		if err := json.Unmarshal(v, &n.ID); err != nil {
			return err
		}
		delete(bag, "id")
	}
	if v, ok := bag["op"]; ok {
		if err := json.Unmarshal(v, &n.Op); err != nil {
			return err
		}
		delete(bag, "op")
	}
	n.raw = bag
	return nil
}

// MarshalJSON re-assembles the node's attribute bag plus id/op.
func (n Node) MarshalJSON() ([]byte, error) {
	bag := make(map[string]json.RawMessage, len(n.raw)+2)
	for k, v := range n.raw {
		bag[k] = v
	}
	idBytes, err := json.Marshal(n.ID)
	if err != nil {
		return nil, err
	}
	opBytes, err := json.Marshal(n.Op)
	if err != nil {
		return nil, err
	}
	bag["id"] = idBytes
	bag["op"] = opBytes
	return json.Marshal(bag)
}

// Keys returns the attribute keys present on this node (excluding id/op),
// in no particular order — callers needing determinism must sort.
func (n *Node) Keys() []string {
	keys := make([]string, 0, len(n.raw))
	for k := range n.raw {
		keys = append(keys, k)
	}
	return keys
}

// Has reports whether the attribute key is present.
func (n *Node) Has(key string) bool {
	_, ok := n.raw[key]
	return ok
}

// RawAttr returns the raw JSON for an attribute key.
func (n *Node) RawAttr(key string) (json.RawMessage, bool) {
	v, ok := n.raw[key]
	return v, ok
}

// Str returns a string-valued attribute.
func (n *Node) Str(key string) (string, bool) {
	raw, ok := n.raw[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Num returns a numeric-valued attribute.
func (n *Node) Num(key string) (float64, bool) {
	raw, ok := n.raw[key]
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

// Bool returns a boolean-valued attribute.
func (n *Node) Bool(key string) (bool, bool) {
	raw, ok := n.raw[key]
	if !ok {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

// NumList returns a numeric-array attribute (e.g. array_construct's fixed
// numeric "values").
func (n *Node) NumList(key string) ([]float64, bool) {
	raw, ok := n.raw[key]
	if !ok {
		return nil, false
	}
	var xs []float64
	if err := json.Unmarshal(raw, &xs); err != nil {
		return nil, false
	}
	return xs, true
}

// StrList returns a string-array attribute (e.g. call_func's args order
// expressed as an explicit list rather than a map, when the IR does so).
func (n *Node) StrList(key string) ([]string, bool) {
	raw, ok := n.raw[key]
	if !ok {
		return nil, false
	}
	var xs []string
	if err := json.Unmarshal(raw, &xs); err != nil {
		return nil, false
	}
	return xs, true
}

// Operand is one element of a mixed numeric/node-reference list, such as
// cmd_dispatch's three dispatch dimensions (each may be a literal number
// or a reference to a node that computes it).
type Operand struct {
	NodeRef string // node id, if this operand refers to a node
	Value   float64
	IsRef   bool
}

// OperandList returns a mixed number/node-id-string array attribute,
// such as cmd_dispatch's "dispatch" triple.
func (n *Node) OperandList(key string) ([]Operand, bool) {
	raw, ok := n.raw[key]
	if !ok {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	out := make([]Operand, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, Operand{NodeRef: s, IsRef: true})
			continue
		}
		var f float64
		if err := json.Unmarshal(item, &f); err == nil {
			out = append(out, Operand{Value: f})
			continue
		}
		out = append(out, Operand{})
	}
	return out, true
}

// Map returns an object-valued attribute as a name -> raw JSON map, used
// for "args" (call_func/cmd_dispatch operand bindings) and "values"
// (struct_construct member bindings).
func (n *Node) Map(key string) (map[string]json.RawMessage, bool) {
	raw, ok := n.raw[key]
	if !ok {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return m, true
}

// Args returns the node's "args" attribute as a name -> raw JSON map,
// used by call_func and cmd_dispatch to bind named operands to a
// callee's declared inputs.
func (n *Node) Args() (map[string]json.RawMessage, bool) {
	return n.Map("args")
}

// ArgValue returns the raw JSON of one entry of Args (a node reference
// string or an inline literal), or ok=false if there is no such entry;
// telling the two apart is left to the caller.
func (n *Node) ArgValue(name string) (json.RawMessage, bool) {
	args, ok := n.Args()
	if !ok {
		return nil, false
	}
	v, ok := args[name]
	return v, ok
}
