// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/bindmap/ir"
)

// writeBlock writes a block of statements.
func (w *Writer) writeBlock(block ir.Block) error {
	for _, stmt := range block {
		if err := w.writeStatementKind(stmt.Kind); err != nil {
			return err
		}
	}
	return nil
}

// writeStatementKind writes a statement based on its kind.
func (w *Writer) writeStatementKind(kind ir.StatementKind) error {
	switch k := kind.(type) {
	case ir.StmtEmit:
		// Expressions are inlined at their use sites.
		return nil

	case ir.StmtBlock:
		w.writeLine("{")
		w.pushIndent()
		if err := w.writeBlock(k.Block); err != nil {
			return err
		}
		w.popIndent()
		w.writeLine("}")
		return nil

	case ir.StmtIf:
		return w.writeIf(k)

	case ir.StmtReturn:
		return w.writeReturn(k)

	case ir.StmtKill:
		w.writeLine("discard;")
		return nil

	case ir.StmtStore:
		return w.writeStore(k)

	case ir.StmtImageStore:
		return w.writeImageStore(k)

	case ir.StmtCall:
		return w.writeCall(k)

	default:
		return fmt.Errorf("unsupported statement kind: %T", kind)
	}
}

// writeIf writes an if statement.
func (w *Writer) writeIf(ifStmt ir.StmtIf) error {
	condition, err := w.writeExpression(ifStmt.Condition)
	if err != nil {
		return err
	}

	w.writeLine("if (%s) {", condition)
	w.pushIndent()
	if err := w.writeBlock(ifStmt.Accept); err != nil {
		return err
	}
	w.popIndent()

	if len(ifStmt.Reject) > 0 {
		w.writeLine("} else {")
		w.pushIndent()
		if err := w.writeBlock(ifStmt.Reject); err != nil {
			return err
		}
		w.popIndent()
	}

	w.writeLine("}")
	return nil
}

// writeReturn writes a return statement.
// In entry points, return values are assigned to output variables instead.
func (w *Writer) writeReturn(ret ir.StmtReturn) error {
	if ret.Value == nil {
		w.writeLine("return;")
		return nil
	}

	value, err := w.writeExpression(*ret.Value)
	if err != nil {
		return err
	}

	if !w.inEntryPoint || w.entryPointResult == nil {
		w.writeLine("return %s;", value)
		return nil
	}

	output := "fragColor"
	if w.module.EntryPoints[w.epIndex].Stage == ir.StageVertex {
		output = "_vs_out"
	}
	if w.entryPointResult.Binding != nil {
		if b, ok := (*w.entryPointResult.Binding).(ir.BuiltinBinding); ok {
			output = glslBuiltIn(b.Builtin, true)
		}
	}
	w.writeLine("%s = %s;", output, value)
	w.writeLine("return;")
	return nil
}

// writeStore writes a store statement.
func (w *Writer) writeStore(store ir.StmtStore) error {
	pointer, err := w.writeExpression(store.Pointer)
	if err != nil {
		return err
	}
	value, err := w.writeExpression(store.Value)
	if err != nil {
		return err
	}
	// In GLSL, no explicit dereference needed for most cases
	w.writeLine("%s = %s;", pointer, value)
	return nil
}

// writeImageStore writes an image store statement.
func (w *Writer) writeImageStore(imgStore ir.StmtImageStore) error {
	global, err := w.resourceOrigin(imgStore.Image)
	if err != nil {
		return err
	}
	img, ok := w.imageType(global)
	if !ok || img.Class != ir.ImageClassStorage {
		return fmt.Errorf("image store to global %d, which is not a storage image", global)
	}
	image, err := w.writeGlobalVariable(ir.ExprGlobalVariable{Variable: global})
	if err != nil {
		return err
	}
	coordinate, err := w.writeExpression(imgStore.Coordinate)
	if err != nil {
		return err
	}
	value, err := w.writeExpression(imgStore.Value)
	if err != nil {
		return err
	}
	w.writeLine("imageStore(%s, %s(%s), %s);", image, imageCoordType(img), coordinate, value)
	return nil
}

// writeCall writes a function call statement. Texture and sampler
// arguments are dropped; the callee refers to the resources directly.
func (w *Writer) writeCall(call ir.StmtCall) error {
	if int(call.Function) >= len(w.module.Functions) {
		return fmt.Errorf("call to missing function %d", call.Function)
	}
	callee := &w.module.Functions[call.Function]
	funcName := w.names[nameKey{kind: nameKeyFunction, handle1: uint32(call.Function)}]

	argStrs := make([]string, 0, len(call.Arguments))
	for i, arg := range call.Arguments {
		if i < len(callee.Arguments) && w.isHandleType(callee.Arguments[i].Type) {
			continue
		}
		argStr, err := w.writeExpression(arg)
		if err != nil {
			return err
		}
		argStrs = append(argStrs, argStr)
	}

	callExpr := fmt.Sprintf("%s(%s)", funcName, strings.Join(argStrs, ", "))

	if call.Result == nil || callee.Result == nil {
		w.writeLine("%s;", callExpr)
		return nil
	}
	tempName := fmt.Sprintf("_fc%d", *call.Result)
	w.namedExpressions[*call.Result] = tempName
	w.writeLine("%s %s = %s;", w.getTypeName(callee.Result.Type), tempName, callExpr)
	return nil
}
