// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

// Document is the top-level IR unit: the entry point, ordered inputs,
// ordered resources, struct definitions, and functions of a program.
//
// A Document is immutable as far as package compile is concerned: it is
// borrowed for the duration of a single Compile call and never mutated.
type Document struct {
	Meta         map[string]any `json:"meta,omitempty"`
	EntryPointID string         `json:"entry_point_id"`
	Inputs       []Input        `json:"inputs"`
	Resources    []Resource     `json:"resources"`
	Structs      []Struct       `json:"structs"`
	Functions    []Function     `json:"functions"`
}

// FunctionByID returns the function with the given id, or ok=false.
func (d *Document) FunctionByID(id string) (*Function, bool) {
	for i := range d.Functions {
		if d.Functions[i].ID == id {
			return &d.Functions[i], true
		}
	}
	return nil, false
}

// StructByID returns the struct definition with the given id, or ok=false.
func (d *Document) StructByID(id string) (*Struct, bool) {
	for i := range d.Structs {
		if d.Structs[i].ID == id {
			return &d.Structs[i], true
		}
	}
	return nil, false
}

// InputByID returns the global input with the given id, or ok=false.
func (d *Document) InputByID(id string) (*Input, bool) {
	for i := range d.Inputs {
		if d.Inputs[i].ID == id {
			return &d.Inputs[i], true
		}
	}
	return nil, false
}

// ResourceByID returns the resource with the given id, or ok=false.
func (d *Document) ResourceByID(id string) (*Resource, bool) {
	for i := range d.Resources {
		if d.Resources[i].ID == id {
			return &d.Resources[i], true
		}
	}
	return nil, false
}

// Input is a global, harness-supplied parameter. Texture-typed inputs
// participate in the canonical resource order (see Document.ResourceOrder);
// scalar/vector inputs are read through the harness at emission time.
type Input struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Default any            `json:"default,omitempty"`
	UI      map[string]any `json:"ui,omitempty"`
}

// ResourceKind enumerates the resource kinds a program can bind.
type ResourceKind string

const (
	ResourceTexture2D      ResourceKind = "texture2d"
	ResourceBuffer         ResourceKind = "buffer"
	ResourceAtomicCounter  ResourceKind = "atomic_counter"
)

// Sampler describes texture sampling behavior.
type Sampler struct {
	Wrap   string `json:"wrap,omitempty"`
	Filter string `json:"filter,omitempty"`
}

// Persistence describes cross-frame resource lifetime behavior.
type Persistence struct {
	ClearOnResize bool `json:"clearOnResize,omitempty"`
}

// Resource is an externally-bound buffer, texture, or atomic counter.
type Resource struct {
	ID          string       `json:"id"`
	Kind        ResourceKind `json:"type"`
	DataType    string       `json:"dataType,omitempty"`
	Format      string       `json:"format,omitempty"`
	Sampler     *Sampler     `json:"sampler,omitempty"`
	IsOutput    bool         `json:"isOutput,omitempty"`
	Persistence *Persistence `json:"persistence,omitempty"`
}

// Struct is a named aggregate type with no inheritance.
type Struct struct {
	ID      string         `json:"id"`
	Members []StructMember `json:"members"`
}

// StructMember is one field of a Struct.
type StructMember struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FunctionKind distinguishes CPU-emittable functions from shader functions.
type FunctionKind string

const (
	FunctionCPU    FunctionKind = "cpu"
	FunctionShader FunctionKind = "shader"
)

// FunctionInput is one parameter of a Function.
type FunctionInput struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// FunctionOutput is the (at most one) declared return of a Function.
type FunctionOutput struct {
	Type string `json:"type"`
}

// LocalVar is a function-local variable declaration.
type LocalVar struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	InitialValue any    `json:"initial_value,omitempty"`
}

// Function is a single CPU or shader function body as a node graph.
type Function struct {
	ID        string           `json:"id"`
	Kind      FunctionKind     `json:"type"`
	Inputs    []FunctionInput  `json:"inputs"`
	Outputs   []FunctionOutput `json:"outputs"`
	LocalVars []LocalVar       `json:"local_vars"`
	Nodes     []Node           `json:"nodes"`
	Edges     []Edge           `json:"edges,omitempty"`
}

// NodeByID returns the node with the given id within this function.
func (f *Function) NodeByID(id string) (*Node, bool) {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return &f.Nodes[i], true
		}
	}
	return nil, false
}

// LocalByID returns the local variable declaration with the given id.
func (f *Function) LocalByID(id string) (*LocalVar, bool) {
	for i := range f.LocalVars {
		if f.LocalVars[i].ID == id {
			return &f.LocalVars[i], true
		}
	}
	return nil, false
}

// InputByID returns the function parameter declaration with the given id.
func (f *Function) InputByID(id string) (*FunctionInput, bool) {
	for i := range f.Inputs {
		if f.Inputs[i].ID == id {
			return &f.Inputs[i], true
		}
	}
	return nil, false
}

// ResourceOrder computes the canonical binding order for this document:
// output-flagged resources first, then texture-typed inputs, then the
// remaining resources — each group in original IR order. This order is
// the contract the harness relies on for resource binding indices.
func (d *Document) ResourceOrder() []string {
	order := make([]string, 0, len(d.Resources)+len(d.Inputs))
	for _, r := range d.Resources {
		if r.IsOutput {
			order = append(order, r.ID)
		}
	}
	for _, in := range d.Inputs {
		if isTextureType(in.Type) {
			order = append(order, in.ID)
		}
	}
	for _, r := range d.Resources {
		if !r.IsOutput {
			order = append(order, r.ID)
		}
	}
	return order
}

func isTextureType(t string) bool {
	return t == "texture2d" || t == "texture" || t == "sampler2D"
}
