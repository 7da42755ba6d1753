// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package ir defines the intermediate representation consumed by graphc.
//
// The IR is a hybrid data-flow/control-flow graph: nodes carry typed
// ports and are wired together with data edges (pure value flow) and
// execution edges (side-effect ordering). It is intentionally
// schema-light — each Node keeps its raw attribute bag alongside typed
// accessors for the attributes callers actually need, rather than a
// fully-exhaustive sum type per op.
//
// The IR is read-only from the compiler's point of view: nothing in
// this package or in package compile mutates a Document, a Function,
// or a Node.
package ir
