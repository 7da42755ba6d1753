// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import "encoding/json"

// Decode parses a Document from its JSON wire representation. Decoding
// itself is outside the core compiler's scope (spec.md §1); this helper
// gives cmd/graphc one entry point for it rather than calling
// json.Unmarshal directly against the schema.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
