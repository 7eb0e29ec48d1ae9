// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/bindmap/ir"
)

// writeExpression writes an expression to the output buffer.
func (w *Writer) writeExpression(handle ir.ExpressionHandle) error {
	// Check if this expression was already named
	if name, ok := w.namedExpressions[handle]; ok {
		w.out.WriteString(name)
		return nil
	}

	if w.currentFunction == nil {
		return NewError(ErrInternalError, "no current function context")
	}
	if int(handle) >= len(w.currentFunction.Expressions) {
		return NewError(ErrInvalidModule, fmt.Sprintf("invalid expression handle: %d", handle))
	}

	return w.writeExpressionKind(w.currentFunction.Expressions[handle].Kind)
}

// writeExpressionKind writes the expression based on its kind.
//
//nolint:gocyclo,cyclop // Expression handling requires many cases
func (w *Writer) writeExpressionKind(kind ir.ExpressionKind) error {
	switch e := kind.(type) {
	case ir.Literal:
		return w.writeLiteralValue(e.Value)
	case ir.ExprZeroValue:
		// HLSL uses (type)0 for zero initialization
		fmt.Fprintf(&w.out, "(%s)0", w.getTypeName(e.Type))
		return nil
	case ir.ExprCompose:
		return w.writeComposeExpression(e)
	case ir.ExprAccess:
		return w.writeAccessExpression(e)
	case ir.ExprAccessIndex:
		return w.writeAccessIndexExpression(e)
	case ir.ExprSplat:
		return w.writeSplatExpression(e)
	case ir.ExprSwizzle:
		return w.writeSwizzleExpression(e)
	case ir.ExprFunctionArgument:
		return w.writeFunctionArgument(e)
	case ir.ExprGlobalVariable:
		name, ok := w.names[nameKey{kind: nameKeyGlobalVariable, handle1: uint32(e.Variable)}]
		if !ok {
			return NewError(ErrInvalidModule, fmt.Sprintf("global %d does not exist", e.Variable))
		}
		w.out.WriteString(name)
		return nil
	case ir.ExprLocalVariable:
		name, ok := w.names[nameKey{kind: nameKeyLocal, handle1: uint32(w.currentFuncHandle), handle2: e.Variable}]
		if !ok {
			return NewError(ErrInvalidModule, fmt.Sprintf("local %d does not exist", e.Variable))
		}
		w.out.WriteString(name)
		return nil
	case ir.ExprLoad:
		// Loads are implicit in HLSL
		return w.writeExpression(e.Pointer)
	case ir.ExprUnary:
		return w.writeUnaryExpression(e)
	case ir.ExprBinary:
		return w.writeBinaryExpression(e)
	case ir.ExprSelect:
		return w.writeSelectExpression(e)
	case ir.ExprImageSample:
		return w.writeImageSampleExpression(e)
	case ir.ExprImageLoad:
		return w.writeImageLoadExpression(e)
	case ir.ExprCallResult:
		return NewError(ErrInvalidModule, fmt.Sprintf("call result of function %d used before its call", e.Function))
	default:
		return NewError(ErrUnsupportedFeature, fmt.Sprintf("unsupported expression kind: %T", kind))
	}
}

// writeLiteralValue writes a literal value to HLSL.
func (w *Writer) writeLiteralValue(v ir.LiteralValue) error {
	switch val := v.(type) {
	case ir.LiteralBool:
		if bool(val) {
			w.out.WriteString("true")
		} else {
			w.out.WriteString("false")
		}

	case ir.LiteralI32:
		fmt.Fprintf(&w.out, "%d", int32(val))

	case ir.LiteralU32:
		fmt.Fprintf(&w.out, "%du", uint32(val))

	case ir.LiteralF32:
		w.out.WriteString(formatFloat32(float32(val)))

	default:
		return NewError(ErrUnsupportedType, fmt.Sprintf("unsupported literal type: %T", v))
	}
	return nil
}

// writeComposeExpression writes a composite construction (vector, matrix, array, struct).
func (w *Writer) writeComposeExpression(e ir.ExprCompose) error {
	inner, _ := w.resolveType(e.Type)
	_, isArray := inner.(ir.ArrayType)
	_, isStruct := inner.(ir.StructType)

	// HLSL arrays and structs use initializer lists, not constructors
	open, closing := "{", "}"
	if !isArray && !isStruct {
		w.out.WriteString(w.getTypeName(e.Type))
		open, closing = "(", ")"
	}

	w.out.WriteString(open)
	for i, comp := range e.Components {
		if i > 0 {
			w.out.WriteString(", ")
		}
		if err := w.writeExpression(comp); err != nil {
			return fmt.Errorf("compose component %d: %w", i, err)
		}
	}
	w.out.WriteString(closing)
	return nil
}

// writeSplatExpression writes a scalar broadcast to vector.
func (w *Writer) writeSplatExpression(e ir.ExprSplat) error {
	size := e.Size
	if size < 2 || size > 4 {
		size = 4
	}

	// HLSL scalars accept repeated swizzles: (value).xxxx
	w.out.WriteByte('(')
	if err := w.writeExpression(e.Value); err != nil {
		return fmt.Errorf("splat value: %w", err)
	}
	w.out.WriteString(").xxxx"[:size+2])
	return nil
}

// writeSwizzleExpression writes a vector swizzle operation.
func (w *Writer) writeSwizzleExpression(e ir.ExprSwizzle) error {
	if err := w.writeExpression(e.Vector); err != nil {
		return fmt.Errorf("swizzle vector: %w", err)
	}

	w.out.WriteByte('.')
	swizzleChars := [4]byte{'x', 'y', 'z', 'w'}
	for i := ir.VectorSize(0); i < e.Size && int(i) < len(e.Pattern); i++ {
		comp := e.Pattern[i]
		if comp > 3 {
			return NewError(ErrInvalidModule, fmt.Sprintf("invalid swizzle component: %d", comp))
		}
		w.out.WriteByte(swizzleChars[comp])
	}
	return nil
}

// writeAccessExpression writes array/vector/matrix access with computed index.
func (w *Writer) writeAccessExpression(e ir.ExprAccess) error {
	if err := w.writeExpression(e.Base); err != nil {
		return fmt.Errorf("access base: %w", err)
	}
	w.out.WriteByte('[')
	if err := w.writeExpression(e.Index); err != nil {
		return fmt.Errorf("access index: %w", err)
	}
	w.out.WriteByte(']')
	return nil
}

// writeAccessIndexExpression writes access with a constant index: a struct
// member, a vector component or an array element.
func (w *Writer) writeAccessIndexExpression(e ir.ExprAccessIndex) error {
	if err := w.writeExpression(e.Base); err != nil {
		return fmt.Errorf("access index base: %w", err)
	}

	if th, ok := w.expressionType(e.Base); ok {
		switch t := w.module.Types[th].Inner.(type) {
		case ir.StructType:
			if int(e.Index) < len(t.Members) {
				w.out.WriteByte('.')
				w.out.WriteString(w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(th), handle2: e.Index}])
				return nil
			}
		case ir.VectorType:
			if e.Index < 4 {
				w.out.WriteByte('.')
				w.out.WriteByte("xyzw"[e.Index])
				return nil
			}
		}
	}
	fmt.Fprintf(&w.out, "[%d]", e.Index)
	return nil
}

// writeFunctionArgument writes a function argument reference.
func (w *Writer) writeFunctionArgument(e ir.ExprFunctionArgument) error {
	name, ok := w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(w.currentFuncHandle), handle2: e.Index}]
	if !ok {
		return NewError(ErrInvalidModule, fmt.Sprintf("argument %d does not exist", e.Index))
	}
	w.out.WriteString(name)
	return nil
}

// writeUnaryExpression writes a unary operation.
func (w *Writer) writeUnaryExpression(e ir.ExprUnary) error {
	switch e.Op {
	case ir.UnaryNegate:
		w.out.WriteString("-(")
	case ir.UnaryLogicalNot:
		w.out.WriteString("!(")
	case ir.UnaryBitwiseNot:
		w.out.WriteString("~(")
	default:
		return NewError(ErrUnsupportedFeature, fmt.Sprintf("unsupported unary operator: %d", e.Op))
	}
	if err := w.writeExpression(e.Expr); err != nil {
		return fmt.Errorf("unary operand: %w", err)
	}
	w.out.WriteByte(')')
	return nil
}

// writeBinaryExpression writes a binary operation.
func (w *Writer) writeBinaryExpression(e ir.ExprBinary) error {
	if e.Op == ir.BinaryMultiply {
		// HLSL's * is component-wise on matrices; mul(right, left) gives the
		// column-major product.
		leftType, _ := w.expressionInner(e.Left)
		rightType, _ := w.expressionInner(e.Right)
		_, leftIsMatrix := leftType.(ir.MatrixType)
		_, rightIsMatrix := rightType.(ir.MatrixType)
		if leftIsMatrix || rightIsMatrix {
			w.out.WriteString("mul(")
			if err := w.writeExpression(e.Right); err != nil {
				return fmt.Errorf("binary right: %w", err)
			}
			w.out.WriteString(", ")
			if err := w.writeExpression(e.Left); err != nil {
				return fmt.Errorf("binary left: %w", err)
			}
			w.out.WriteString(")")
			return nil
		}
	}

	op := e.Op.Symbol()
	if op == "?" {
		return NewError(ErrUnsupportedFeature, fmt.Sprintf("unsupported binary operator: %d", e.Op))
	}

	w.out.WriteByte('(')
	if err := w.writeExpression(e.Left); err != nil {
		return fmt.Errorf("binary left: %w", err)
	}
	fmt.Fprintf(&w.out, " %s ", op)
	if err := w.writeExpression(e.Right); err != nil {
		return fmt.Errorf("binary right: %w", err)
	}
	w.out.WriteByte(')')
	return nil
}

// writeSelectExpression writes a ternary select operation.
func (w *Writer) writeSelectExpression(e ir.ExprSelect) error {
	w.out.WriteByte('(')
	if err := w.writeExpression(e.Condition); err != nil {
		return fmt.Errorf("select condition: %w", err)
	}
	w.out.WriteString(" ? ")
	if err := w.writeExpression(e.Accept); err != nil {
		return fmt.Errorf("select accept: %w", err)
	}
	w.out.WriteString(" : ")
	if err := w.writeExpression(e.Reject); err != nil {
		return fmt.Errorf("select reject: %w", err)
	}
	w.out.WriteByte(')')
	return nil
}

// writeImageSampleExpression writes texture.Sample*(sampler, coord, ...).
func (w *Writer) writeImageSampleExpression(e ir.ExprImageSample) error {
	if err := w.writeExpression(e.Image); err != nil {
		return fmt.Errorf("sample image: %w", err)
	}

	switch e.Level.(type) {
	case ir.SampleLevelExact, ir.SampleLevelZero:
		w.out.WriteString(".SampleLevel(")
	case ir.SampleLevelBias:
		w.out.WriteString(".SampleBias(")
	default:
		w.out.WriteString(".Sample(")
	}

	if err := w.writeExpression(e.Sampler); err != nil {
		return fmt.Errorf("sample sampler: %w", err)
	}
	w.out.WriteString(", ")
	if err := w.writeExpression(e.Coordinate); err != nil {
		return fmt.Errorf("sample coordinate: %w", err)
	}

	switch level := e.Level.(type) {
	case ir.SampleLevelExact:
		w.out.WriteString(", ")
		if err := w.writeExpression(level.Level); err != nil {
			return fmt.Errorf("sample level: %w", err)
		}
	case ir.SampleLevelBias:
		w.out.WriteString(", ")
		if err := w.writeExpression(level.Bias); err != nil {
			return fmt.Errorf("sample bias: %w", err)
		}
	case ir.SampleLevelZero:
		w.out.WriteString(", 0.0")
	}
	w.out.WriteByte(')')
	return nil
}

// writeImageLoadExpression writes a texel fetch. Sampled textures use
// Load with the mip level packed after the coordinate; storage images are
// indexed directly.
func (w *Writer) writeImageLoadExpression(e ir.ExprImageLoad) error {
	inner, _ := w.expressionInner(e.Image)
	img, ok := inner.(ir.ImageType)
	if !ok {
		return NewError(ErrInvalidModule, fmt.Sprintf("image load from expression %d, which is not an image", e.Image))
	}

	if err := w.writeExpression(e.Image); err != nil {
		return fmt.Errorf("load image: %w", err)
	}

	if img.Class == ir.ImageClassStorage {
		w.out.WriteByte('[')
		if err := w.writeExpression(e.Coordinate); err != nil {
			return fmt.Errorf("load coordinate: %w", err)
		}
		w.out.WriteByte(']')
		return nil
	}

	size := ImageCoordinateSize(img)
	if img.Dim == ir.DimCube || size+1 > 4 {
		return NewError(ErrUnsupportedFeature, "texel loads from cube textures are not supported")
	}
	if img.Multisampled {
		fmt.Fprintf(&w.out, ".Load(int%d(", size)
		if err := w.writeExpression(e.Coordinate); err != nil {
			return fmt.Errorf("load coordinate: %w", err)
		}
		w.out.WriteString("), ")
		if err := w.writeLoadLevel(e.Level); err != nil {
			return err
		}
		w.out.WriteByte(')')
		return nil
	}

	fmt.Fprintf(&w.out, ".Load(int%d(", size+1)
	if err := w.writeExpression(e.Coordinate); err != nil {
		return fmt.Errorf("load coordinate: %w", err)
	}
	w.out.WriteString(", ")
	if err := w.writeLoadLevel(e.Level); err != nil {
		return err
	}
	w.out.WriteString("))")
	return nil
}

// writeLoadLevel writes the mip level or sample index of a load, 0 if absent.
func (w *Writer) writeLoadLevel(level *ir.ExpressionHandle) error {
	if level == nil {
		w.out.WriteByte('0')
		return nil
	}
	if err := w.writeExpression(*level); err != nil {
		return fmt.Errorf("load level: %w", err)
	}
	return nil
}
