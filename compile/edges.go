// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile

import "github.com/gogpu/graphc/ir"

// edgeIndex is built once per function (spec.md §4.4) and answers the
// lookups the Expression Compiler and Control-Flow Emitter need:
// data edges by (destination, port_in), execution edges by
// (source, port_out), and whether a node has any incoming execution
// edge at all.
type edgeIndex struct {
	dataInto map[string]map[string]string // to -> port_in -> from
	dataAll  map[string][]ir.Edge         // to -> all incoming data edges
	execOut  map[string]map[string]string // from -> port_out -> to
	execIn   map[string]bool              // to -> has incoming exec edge
}

// canonicalAlias normalizes the spec.md §9 val/value port-name
// conflation to a single canonical key at lookup time.
func canonicalAlias(port string) string {
	if port == "value" {
		return "val"
	}
	return port
}

func aliasesOf(port string) []string {
	if port == "val" {
		return []string{"val", "value"}
	}
	if port == "value" {
		return []string{"value", "val"}
	}
	return []string{port}
}

// buildEdgeIndex constructs the edge index for fn. If fn.Edges is
// non-empty it is used as-is (explicit edges); otherwise data edges are
// reconstructed from node attributes per spec.md §4.4's rules, and
// execution edges (stored only explicitly) are simply absent.
func buildEdgeIndex(fn *ir.Function) *edgeIndex {
	idx := &edgeIndex{
		dataInto: make(map[string]map[string]string),
		dataAll:  make(map[string][]ir.Edge),
		execOut:  make(map[string]map[string]string),
		execIn:   make(map[string]bool),
	}

	addData := func(e ir.Edge) {
		if idx.dataInto[e.To] == nil {
			idx.dataInto[e.To] = make(map[string]string)
		}
		idx.dataInto[e.To][canonicalAlias(e.PortIn)] = e.From
		idx.dataAll[e.To] = append(idx.dataAll[e.To], e)
	}
	addExec := func(e ir.Edge) {
		if idx.execOut[e.From] == nil {
			idx.execOut[e.From] = make(map[string]string)
		}
		idx.execOut[e.From][e.PortOut] = e.To
		idx.execIn[e.To] = true
	}

	if len(fn.Edges) > 0 {
		for _, e := range fn.Edges {
			if e.Kind == ir.EdgeExecution {
				addExec(e)
			} else {
				addData(e)
			}
		}
		return idx
	}

	ids := make(map[string]struct{}, len(fn.Nodes))
	for _, n := range fn.Nodes {
		ids[n.ID] = struct{}{}
	}

	for _, n := range fn.Nodes {
		node := n
		for _, key := range node.Keys() {
			if key == "args" {
				args, _ := node.Args()
				for argName, raw := range args {
					var s string
					if unmarshalStr(raw, &s) {
						if _, isNode := ids[s]; isNode {
							addData(ir.Edge{From: s, To: node.ID, PortIn: argName, Kind: ir.EdgeData})
						}
					}
				}
				continue
			}
			s, ok := node.Str(key)
			if !ok {
				continue
			}
			if _, isNode := ids[s]; isNode {
				addData(ir.Edge{From: s, To: node.ID, PortIn: key, Kind: ir.EdgeData})
			}
		}
	}

	return idx
}

func unmarshalStr(raw []byte, out *string) bool {
	// Minimal local helper kept separate from ir.Node.Str since raw
	// here already came out of a map[string]json.RawMessage of args.
	if len(raw) < 2 || raw[0] != '"' {
		return false
	}
	s := string(raw[1 : len(raw)-1])
	*out = s
	return true
}

// DataEdgeInto returns the source node id feeding port_in of node "to",
// applying the val/value alias, or ok=false if no such edge exists.
func (idx *edgeIndex) DataEdgeInto(to, portIn string) (string, bool) {
	m := idx.dataInto[to]
	if m == nil {
		return "", false
	}
	for _, alias := range aliasesOf(portIn) {
		if from, ok := m[canonicalAlias(alias)]; ok {
			return from, true
		}
	}
	return "", false
}

// AllDataEdgesInto returns every data edge whose destination is "to".
func (idx *edgeIndex) AllDataEdgesInto(to string) []ir.Edge {
	return idx.dataAll[to]
}

// ExecEdgeOut returns the execution target wired to port_out of "from".
func (idx *edgeIndex) ExecEdgeOut(from, portOut string) (string, bool) {
	m := idx.execOut[from]
	if m == nil {
		return "", false
	}
	to, ok := m[portOut]
	return to, ok
}

// ExecutionIncoming reports whether node has any incoming execution edge.
func (idx *edgeIndex) ExecutionIncoming(node string) bool {
	return idx.execIn[node]
}

// outRefCount counts how many distinct (node, port_in) destinations read
// a given source node via data edges — used by the Expression Compiler
// to decide when a pure node must be promoted to a named temporary
// (spec.md §4.7: referenced more than once within the function).
func (idx *edgeIndex) outRefCount(nodeID string) int {
	count := 0
	for _, edges := range idx.dataAll {
		for _, e := range edges {
			if e.From == nodeID {
				count++
			}
		}
	}
	return count
}
