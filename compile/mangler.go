// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile

import "strings"

// Namespace selects the mangling prefix for a raw IR id, per spec.md §4.1.
// Distinct namespaces can never collide because each owns a disjoint
// prefix.
type Namespace uint8

const (
	NamespaceVariable Namespace = iota
	NamespaceFunctionInput
	NamespaceFunction
	NamespaceStructType
	NamespaceStructField
	NamespaceNodeResult
	NamespaceLoopInduction
)

func (ns Namespace) prefix() string {
	switch ns {
	case NamespaceVariable:
		return "v_"
	case NamespaceFunctionInput:
		return "i_"
	case NamespaceFunction:
		return "func_"
	case NamespaceStructType:
		return "S_"
	case NamespaceStructField:
		return "f_"
	case NamespaceNodeResult:
		return "n_"
	case NamespaceLoopInduction:
		return "loop_"
	default:
		return "x_"
	}
}

// mangler is a pure, stateless string transform from (raw id, namespace)
// to a valid C identifier. It normalizes any character outside
// [A-Za-z0-9_] to '_', then prefixes by namespace.
//
// Because the prefix set is disjoint across namespaces and keywords never
// appear with one of these prefixes, the mangler needs no reserved-word
// bypass beyond the prefix itself — unlike the teacher's namer (which
// mangles into a single flat identifier space and therefore must track
// previously-used names), mangle() here is a pure function with no
// internal state: two calls with the same (id, namespace) always produce
// the same identifier, and the only per-invocation state a caller needs
// is for detecting raw-id collisions that normalization can introduce
// (see mangleNamer.Name below).
type mangler struct{}

// mangle normalizes rawID and prefixes it per ns. It is idempotent:
// mangling an already-mangled id in the same namespace returns it
// unchanged, since the prefix and the normalized body are both fixed
// points of the transform.
func (mangler) mangle(rawID string, ns Namespace) string {
	body := normalizeIdent(rawID)
	if strings.HasPrefix(body, ns.prefix()) {
		return body
	}
	return ns.prefix() + body
}

func normalizeIdent(s string) string {
	if s == "" {
		s = UnnamedIdentifier
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isIdentRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isIdentRune(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
}

// mangleNamer wraps mangler with per-document collision tracking: two
// distinct raw ids in the same namespace that normalize to the same
// body (e.g. "u.x" and "u_x") are disambiguated with a numeric suffix,
// preserving the mangler's injectivity contract on the ids that actually
// appear in a given compile. This mirrors the teacher's namer.call,
// scoped per namespace instead of one flat space.
type mangleNamer struct {
	mangler
	used map[Namespace]map[string]string // namespace -> rawID -> mangled
	seen map[Namespace]map[string]struct{} // namespace -> mangled -> used
}

func newMangleNamer() *mangleNamer {
	return &mangleNamer{
		used: make(map[Namespace]map[string]string),
		seen: make(map[Namespace]map[string]struct{}),
	}
}

// Name returns the mangled identifier for rawID in namespace ns,
// disambiguating collisions deterministically by raw-id first-seen order.
func (m *mangleNamer) Name(rawID string, ns Namespace) string {
	if m.used[ns] == nil {
		m.used[ns] = make(map[string]string)
		m.seen[ns] = make(map[string]struct{})
	}
	if existing, ok := m.used[ns][rawID]; ok {
		return existing
	}

	base := m.mangle(rawID, ns)
	candidate := base
	suffix := 0
	for {
		if _, taken := m.seen[ns][candidate]; !taken {
			break
		}
		suffix++
		candidate = base + "_" + itoa(suffix)
	}
	m.seen[ns][candidate] = struct{}{}
	m.used[ns][rawID] = candidate
	return candidate
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := [20]byte{}
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[i:])
}
