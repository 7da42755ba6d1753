// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compile

import "strings"

// EmitFunction renders one CPU function's full C99 definition: signature,
// local variable declarations, and body, per spec.md §4.9. The function
// always takes the harness context as its first parameter so that loads,
// stores, dispatches, and global input reads have access to it.
func (w *writer) EmitFunction() (string, error) {
	sig, err := w.signature()
	if err != nil {
		return "", err
	}
	w.writeRaw(sig + " {\n")
	w.pushIndent()

	if err := w.emitLocalDecls(); err != nil {
		return "", err
	}
	if err := w.emitBody(); err != nil {
		return "", err
	}

	w.popIndent()
	w.writeRaw("}\n")
	return w.out.String(), nil
}

// ForwardDecl renders the function's prototype for the forward-declaration
// block at the top of the document (spec.md §4.10), so that mutually or
// forward-referencing call_func nodes compile regardless of definition
// order.
func (w *writer) ForwardDecl() (string, error) {
	sig, err := w.signature()
	if err != nil {
		return "", err
	}
	return sig + ";", nil
}

func (w *writer) signature() (string, error) {
	retType := "void"
	if len(w.fn.Outputs) > 0 {
		ct, err := w.types.CExpr(w.fn.Outputs[0].Type)
		if err != nil {
			return "", err
		}
		retType = ct
	}

	name := w.names.Name(w.fn.ID, NamespaceFunction)

	params := []string{"HarnessContext *ctx"}
	for _, in := range w.fn.Inputs {
		decl, err := w.types.DeclExpr(w.names.Name(in.ID, NamespaceFunctionInput), in.Type)
		if err != nil {
			return "", err
		}
		params = append(params, decl)
	}

	return retType + " " + name + "(" + strings.Join(params, ", ") + ")", nil
}

func (w *writer) emitLocalDecls() error {
	for _, lv := range w.fn.LocalVars {
		name := w.names.Name(lv.ID, NamespaceVariable)
		decl, err := w.types.DeclExpr(name, lv.Type)
		if err != nil {
			return err
		}
		if lv.InitialValue == nil {
			w.writeLine(decl + " = " + zeroValue(lv.Type) + ";")
			continue
		}
		init, err := w.literalInitialValue(lv.InitialValue, lv.Type)
		if err != nil {
			return err
		}
		w.writeLine(decl + " = " + init + ";")
	}
	return nil
}

// literalInitialValue formats a LocalVar's decoded JSON "initial_value"
// (any of float64, bool, []any, or nil) as a C initializer expression.
func (w *writer) literalInitialValue(v any, typeStr string) (string, error) {
	switch val := v.(type) {
	case bool:
		if typeStr == "bool" {
			return formatBool(val), nil
		}
		return formatBoolNumeric(val), nil
	case float64:
		if typeStr == "int" || typeStr == "i32" || typeStr == "uint" || typeStr == "u32" {
			return formatInt(int64(val)), nil
		}
		return formatFloat(val)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			f, ok := item.(float64)
			if !ok {
				return "", newError(ErrUnsupportedLiteral, "non-numeric element in local var initializer")
			}
			s, err := formatFloat(f)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	default:
		return zeroValue(typeStr), nil
	}
}
