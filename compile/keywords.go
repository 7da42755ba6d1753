// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile

// reservedKeywords holds the C99 reserved words plus the harness-ABI
// helper names graphc's emitted code relies on (see spec.md §6). A
// mangled identifier that collides with one of these is never produced
// because every mangled identifier carries a namespace prefix (see
// mangler.go) that is disjoint from all of them.
var reservedKeywords = map[string]struct{}{
	"auto": {}, "break": {}, "case": {}, "char": {}, "const": {}, "continue": {},
	"default": {}, "do": {}, "double": {}, "else": {}, "enum": {}, "extern": {},
	"float": {}, "for": {}, "goto": {}, "if": {}, "inline": {}, "int": {},
	"long": {}, "register": {}, "restrict": {}, "return": {}, "short": {},
	"signed": {}, "sizeof": {}, "static": {}, "struct": {}, "switch": {},
	"typedef": {}, "union": {}, "unsigned": {}, "void": {}, "volatile": {}, "while": {},
	"_Bool": {}, "_Complex": {}, "_Imaginary": {},

	// harness ABI surface (spec.md §6) — never produced as a mangled
	// identifier, only referenced literally by the emitter.
	"ctx": {}, "main": {},
}

// UnnamedIdentifier is substituted when a raw id is empty.
const UnnamedIdentifier = "unnamed"

func isKeyword(name string) bool {
	_, ok := reservedKeywords[name]
	return ok
}
