// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/bindmap/ir"
)

// writeBlock writes a block of statements.
func (w *Writer) writeBlock(block ir.Block) error {
	for i := range block {
		if err := w.writeStatement(block[i].Kind); err != nil {
			return err
		}
	}
	return nil
}

// writeStatement writes a single statement.
func (w *Writer) writeStatement(kind ir.StatementKind) error {
	switch s := kind.(type) {
	case ir.StmtEmit:
		// Expressions are inlined at their use sites.
		return nil

	case ir.StmtBlock:
		w.writeLine("{")
		w.pushIndent()
		if err := w.writeBlock(s.Block); err != nil {
			w.popIndent()
			return err
		}
		w.popIndent()
		w.writeLine("}")
		return nil

	case ir.StmtIf:
		return w.writeIfStatement(s)

	case ir.StmtReturn:
		return w.writeReturnStatement(s)

	case ir.StmtKill:
		w.writeLine("discard;")
		return nil

	case ir.StmtStore:
		return w.writeStoreStatement(s)

	case ir.StmtImageStore:
		return w.writeImageStoreStatement(s)

	case ir.StmtCall:
		return w.writeCallStatement(s)

	default:
		return NewError(ErrUnsupportedFeature, fmt.Sprintf("unsupported statement kind: %T", kind))
	}
}

// writeIfStatement writes an if statement.
func (w *Writer) writeIfStatement(s ir.StmtIf) error {
	w.writeIndent()
	w.out.WriteString("if (")
	if err := w.writeExpression(s.Condition); err != nil {
		return fmt.Errorf("if condition: %w", err)
	}
	w.out.WriteString(") {\n")

	w.pushIndent()
	if err := w.writeBlock(s.Accept); err != nil {
		w.popIndent()
		return fmt.Errorf("if accept block: %w", err)
	}
	w.popIndent()

	if len(s.Reject) > 0 {
		w.writeLine("} else {")
		w.pushIndent()
		if err := w.writeBlock(s.Reject); err != nil {
			w.popIndent()
			return fmt.Errorf("if reject block: %w", err)
		}
		w.popIndent()
	}

	w.writeLine("}")
	return nil
}

// writeReturnStatement writes a return statement. Entry point results carry
// their semantic on the signature, so the value is returned directly.
func (w *Writer) writeReturnStatement(s ir.StmtReturn) error {
	if s.Value == nil {
		w.writeLine("return;")
		return nil
	}

	w.writeIndent()
	w.out.WriteString("return ")
	if err := w.writeExpression(*s.Value); err != nil {
		return fmt.Errorf("return value: %w", err)
	}
	w.out.WriteString(";\n")
	return nil
}

// writeStoreStatement writes an assignment through a pointer.
func (w *Writer) writeStoreStatement(s ir.StmtStore) error {
	w.writeIndent()
	if err := w.writeExpression(s.Pointer); err != nil {
		return fmt.Errorf("store pointer: %w", err)
	}
	w.out.WriteString(" = ")
	if err := w.writeExpression(s.Value); err != nil {
		return fmt.Errorf("store value: %w", err)
	}
	w.out.WriteString(";\n")
	return nil
}

// writeImageStoreStatement writes a storage image store: image[coord] = value.
func (w *Writer) writeImageStoreStatement(s ir.StmtImageStore) error {
	inner, _ := w.expressionInner(s.Image)
	if img, ok := inner.(ir.ImageType); !ok || img.Class != ir.ImageClassStorage {
		return NewError(ErrInvalidModule, fmt.Sprintf("image store to expression %d, which is not a storage image", s.Image))
	}

	w.writeIndent()
	if err := w.writeExpression(s.Image); err != nil {
		return fmt.Errorf("image store image: %w", err)
	}
	w.out.WriteByte('[')
	if err := w.writeExpression(s.Coordinate); err != nil {
		return fmt.Errorf("image store coordinate: %w", err)
	}
	w.out.WriteString("] = ")
	if err := w.writeExpression(s.Value); err != nil {
		return fmt.Errorf("image store value: %w", err)
	}
	w.out.WriteString(";\n")
	return nil
}

// writeCallStatement writes a function call. A call with a result declares
// a temporary named after the result expression.
func (w *Writer) writeCallStatement(s ir.StmtCall) error {
	if int(s.Function) >= len(w.module.Functions) {
		return NewError(ErrInvalidModule, fmt.Sprintf("call to missing function %d", s.Function))
	}
	callee := &w.module.Functions[s.Function]
	funcName := w.names[nameKey{kind: nameKeyFunction, handle1: uint32(s.Function)}]

	w.writeIndent()
	var resultName string
	if s.Result != nil && callee.Result != nil {
		resultName = fmt.Sprintf("_e%d", *s.Result)
		typeName, arraySuffix := w.getTypeNameWithArraySuffix(callee.Result.Type)
		fmt.Fprintf(&w.out, "%s %s%s = ", typeName, resultName, arraySuffix)
	}

	w.out.WriteString(funcName)
	w.out.WriteByte('(')
	for i, arg := range s.Arguments {
		if i > 0 {
			w.out.WriteString(", ")
		}
		if err := w.writeExpression(arg); err != nil {
			return fmt.Errorf("call argument %d: %w", i, err)
		}
	}
	w.out.WriteString(");\n")

	if resultName != "" {
		w.namedExpressions[*s.Result] = resultName
	}
	return nil
}
