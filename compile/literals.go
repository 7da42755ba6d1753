// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile

import (
	"math"
	"strconv"
	"strings"
)

// formatFloat formats a float64 as a C float literal. Integral values
// always carry a fractional suffix so the target parses them as float
// rather than truncating in an integer context, per spec.md §4.3.
func formatFloat(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", newError(ErrUnsupportedLiteral, "non-finite literal "+strconv.FormatFloat(v, 'g', -1, 64))
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s + "f", nil
}

// formatInt formats an integer literal for an integer-typed context.
func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// formatBoolNumeric formats a boolean in a numeric (float) context, per
// spec.md §4.3: true -> "1.0f", false -> "0.0f".
func formatBoolNumeric(b bool) string {
	if b {
		return "1.0f"
	}
	return "0.0f"
}

// formatBool formats a boolean in a boolean context.
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatFloatArray formats a fixed-length numeric array literal as a C
// brace-init list, e.g. "{1.0f, 2.0f, 3.0f}".
func formatFloatArray(values []float64) (string, error) {
	parts := make([]string, len(values))
	for i, v := range values {
		s, err := formatFloat(v)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

// zeroValue returns the zero-value literal for a resolved argument when
// no edge, attribute, or variable binds it (spec.md §4.7 resolve_arg
// step 3).
func zeroValue(typeStr string) string {
	if VectorWidth(typeStr) > 0 || MatrixLength(typeStr) > 0 {
		return "{0}"
	}
	switch typeStr {
	case "bool":
		return "false"
	case "int", "i32", "uint", "u32":
		return "0"
	default:
		return "0.0f"
	}
}
