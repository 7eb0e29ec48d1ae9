// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/bindmap/binding"
	"github.com/gogpu/bindmap/ir"
)

// GLSL type name constants for repeated use.
const (
	glslTypeInt   = "int"
	glslTypeUint  = "uint"
	glslTypeFloat = "float"
)

// writeExpression writes an expression and returns its GLSL representation.
func (w *Writer) writeExpression(handle ir.ExpressionHandle) (string, error) {
	// Check if this expression was already named
	if name, ok := w.namedExpressions[handle]; ok {
		return name, nil
	}

	if w.currentFunction == nil {
		return "", fmt.Errorf("no current function context")
	}

	if int(handle) >= len(w.currentFunction.Expressions) {
		return "", fmt.Errorf("invalid expression handle: %d", handle)
	}

	expr := &w.currentFunction.Expressions[handle]
	return w.writeExpressionKind(expr.Kind)
}

// writeExpressionKind writes the expression based on its kind.
//
//nolint:gocyclo,cyclop // Expression handling requires many cases
func (w *Writer) writeExpressionKind(kind ir.ExpressionKind) (string, error) {
	switch k := kind.(type) {
	case ir.Literal:
		return w.writeLiteral(k)
	case ir.ExprZeroValue:
		return w.writeZeroValue(k)
	case ir.ExprCompose:
		return w.writeCompose(k)
	case ir.ExprAccess:
		return w.writeAccess(k)
	case ir.ExprAccessIndex:
		return w.writeAccessIndex(k)
	case ir.ExprSplat:
		return w.writeSplat(k)
	case ir.ExprSwizzle:
		return w.writeSwizzle(k)
	case ir.ExprFunctionArgument:
		return w.writeFunctionArgument(k)
	case ir.ExprGlobalVariable:
		return w.writeGlobalVariable(k)
	case ir.ExprLocalVariable:
		return w.writeLocalVariable(k)
	case ir.ExprLoad:
		// In GLSL, loading is implicit
		return w.writeExpression(k.Pointer)
	case ir.ExprUnary:
		return w.writeUnary(k)
	case ir.ExprBinary:
		return w.writeBinary(k)
	case ir.ExprSelect:
		return w.writeSelect(k)
	case ir.ExprImageSample:
		return w.writeImageSample(k)
	case ir.ExprImageLoad:
		return w.writeImageLoad(k)
	case ir.ExprCallResult:
		return "", fmt.Errorf("call result of function %d used before its call", k.Function)
	default:
		return "", fmt.Errorf("unsupported expression kind: %T", kind)
	}
}

// writeLiteral writes a literal expression.
func (w *Writer) writeLiteral(lit ir.Literal) (string, error) {
	switch v := lit.Value.(type) {
	case ir.LiteralBool:
		if v {
			return "true", nil
		}
		return "false", nil
	case ir.LiteralI32:
		return fmt.Sprintf("%d", int32(v)), nil
	case ir.LiteralU32:
		return fmt.Sprintf("%du", uint32(v)), nil
	case ir.LiteralF32:
		return formatFloat(float32(v)), nil
	default:
		return "", fmt.Errorf("unsupported literal: %T", lit.Value)
	}
}

// writeZeroValue writes a zero-initialized value.
func (w *Writer) writeZeroValue(z ir.ExprZeroValue) (string, error) {
	return fmt.Sprintf("%s(0)", w.getTypeName(z.Type)), nil
}

// writeCompose writes a composite construction expression.
func (w *Writer) writeCompose(c ir.ExprCompose) (string, error) {
	components := make([]string, 0, len(c.Components))
	for _, comp := range c.Components {
		compStr, err := w.writeExpression(comp)
		if err != nil {
			return "", err
		}
		components = append(components, compStr)
	}
	return fmt.Sprintf("%s(%s)", w.getTypeName(c.Type), strings.Join(components, ", ")), nil
}

// writeAccess writes an array access expression with dynamic index.
func (w *Writer) writeAccess(a ir.ExprAccess) (string, error) {
	base, err := w.writeExpression(a.Base)
	if err != nil {
		return "", err
	}
	index, err := w.writeExpression(a.Index)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s[%s]", base, index), nil
}

// writeAccessIndex writes a constant-index access expression.
func (w *Writer) writeAccessIndex(a ir.ExprAccessIndex) (string, error) {
	base, err := w.writeExpression(a.Base)
	if err != nil {
		return "", err
	}

	if th, ok := w.expressionType(a.Base); ok {
		if st, isStruct := w.module.Types[th].Inner.(ir.StructType); isStruct && int(a.Index) < len(st.Members) {
			member := w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(th), handle2: a.Index}]
			return fmt.Sprintf("%s.%s", base, member), nil
		}
	}
	return fmt.Sprintf("%s[%d]", base, a.Index), nil
}

// writeSplat writes a splat expression (scalar to vector).
func (w *Writer) writeSplat(s ir.ExprSplat) (string, error) {
	value, err := w.writeExpression(s.Value)
	if err != nil {
		return "", err
	}
	// In GLSL, vec constructors accept scalar and broadcast
	return fmt.Sprintf("vec%d(%s)", s.Size, value), nil
}

// writeSwizzle writes a swizzle expression.
func (w *Writer) writeSwizzle(s ir.ExprSwizzle) (string, error) {
	vector, err := w.writeExpression(s.Vector)
	if err != nil {
		return "", err
	}

	const components = "xyzw"
	var swizzle strings.Builder
	for i := ir.VectorSize(0); i < s.Size && int(i) < len(s.Pattern); i++ {
		if int(s.Pattern[i]) < len(components) {
			swizzle.WriteByte(components[s.Pattern[i]])
		}
	}
	return fmt.Sprintf("%s.%s", vector, swizzle.String()), nil
}

// writeFunctionArgument writes a function argument reference.
func (w *Writer) writeFunctionArgument(a ir.ExprFunctionArgument) (string, error) {
	if int(a.Index) >= len(w.currentFunction.Arguments) {
		return "", fmt.Errorf("argument %d does not exist", a.Index)
	}
	arg := &w.currentFunction.Arguments[a.Index]

	// In entry points, builtin arguments map to GLSL built-in variables.
	if w.inEntryPoint && arg.Binding != nil {
		if b, ok := (*arg.Binding).(ir.BuiltinBinding); ok {
			return glslBuiltIn(b.Builtin, false), nil
		}
	}

	key := nameKey{kind: nameKeyFunctionArgument, handle1: uint32(w.currentFuncHandle), handle2: a.Index}
	if global, ok := w.argGlobals[key]; ok {
		return w.writeGlobalVariable(ir.ExprGlobalVariable{Variable: global})
	}
	return w.names[key], nil
}

// writeGlobalVariable writes a global variable reference.
func (w *Writer) writeGlobalVariable(g ir.ExprGlobalVariable) (string, error) {
	name, ok := w.names[nameKey{kind: nameKeyGlobalVariable, handle1: uint32(g.Variable)}]
	if !ok {
		if name, fused := w.fetchName[g.Variable]; fused {
			return name, nil
		}
		return "", binding.NewError(binding.ErrUnsupportedCombination,
			fmt.Sprintf("global %d has no GLSL object outside a sample operation", g.Variable))
	}
	return name, nil
}

// writeLocalVariable writes a local variable reference.
func (w *Writer) writeLocalVariable(l ir.ExprLocalVariable) (string, error) {
	if name, ok := w.localNames[l.Variable]; ok {
		return name, nil
	}
	return fmt.Sprintf("local_%d", l.Variable), nil
}

// writeUnary writes a unary expression.
func (w *Writer) writeUnary(u ir.ExprUnary) (string, error) {
	operand, err := w.writeExpression(u.Expr)
	if err != nil {
		return "", err
	}

	switch u.Op {
	case ir.UnaryNegate:
		return fmt.Sprintf("-(%s)", operand), nil
	case ir.UnaryLogicalNot:
		return fmt.Sprintf("!(%s)", operand), nil
	case ir.UnaryBitwiseNot:
		return fmt.Sprintf("~(%s)", operand), nil
	default:
		return "", fmt.Errorf("unsupported unary operator: %v", u.Op)
	}
}

// writeBinary writes a binary expression.
func (w *Writer) writeBinary(b ir.ExprBinary) (string, error) {
	left, err := w.writeExpression(b.Left)
	if err != nil {
		return "", err
	}
	right, err := w.writeExpression(b.Right)
	if err != nil {
		return "", err
	}

	op := b.Op.Symbol()
	if op == "?" {
		return "", fmt.Errorf("unsupported binary operator: %v", b.Op)
	}
	return fmt.Sprintf("(%s %s %s)", left, op, right), nil
}

// writeSelect writes a select (ternary) expression.
func (w *Writer) writeSelect(s ir.ExprSelect) (string, error) {
	condition, err := w.writeExpression(s.Condition)
	if err != nil {
		return "", err
	}
	accept, err := w.writeExpression(s.Accept)
	if err != nil {
		return "", err
	}
	reject, err := w.writeExpression(s.Reject)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s ? %s : %s)", condition, accept, reject), nil
}

// writeImageSample writes an image sample through the combined sampler of
// the sampled (texture, sampler) pair.
func (w *Writer) writeImageSample(s ir.ExprImageSample) (string, error) {
	texture, err := w.resourceOrigin(s.Image)
	if err != nil {
		return "", err
	}
	sampler, err := w.resourceOrigin(s.Sampler)
	if err != nil {
		return "", err
	}
	combinedName, ok := w.combined[samplePair{texture: texture, sampler: sampler}]
	if !ok {
		return "", binding.NewError(binding.ErrTranslationInvariant,
			fmt.Sprintf("no combined sampler for texture %d sampled with sampler %d", texture, sampler))
	}
	coordinate, err := w.writeExpression(s.Coordinate)
	if err != nil {
		return "", err
	}

	switch level := s.Level.(type) {
	case ir.SampleLevelExact:
		levelExpr, err := w.writeExpression(level.Level)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("textureLod(%s, %s, %s)", combinedName, coordinate, levelExpr), nil
	case ir.SampleLevelBias:
		biasExpr, err := w.writeExpression(level.Bias)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("texture(%s, %s, %s)", combinedName, coordinate, biasExpr), nil
	case ir.SampleLevelZero:
		return fmt.Sprintf("textureLod(%s, %s, 0.0)", combinedName, coordinate), nil
	default:
		// SampleLevelAuto or nil - implicit LOD
		return fmt.Sprintf("texture(%s, %s)", combinedName, coordinate), nil
	}
}

// writeImageLoad writes a texel fetch or storage image load.
func (w *Writer) writeImageLoad(l ir.ExprImageLoad) (string, error) {
	texture, err := w.resourceOrigin(l.Image)
	if err != nil {
		return "", err
	}
	img, ok := w.imageType(texture)
	if !ok {
		return "", fmt.Errorf("image load from non-image global %d", texture)
	}
	coordinate, err := w.writeExpression(l.Coordinate)
	if err != nil {
		return "", err
	}
	coord := fmt.Sprintf("%s(%s)", imageCoordType(img), coordinate)

	if img.Class == ir.ImageClassStorage {
		name, err := w.writeGlobalVariable(ir.ExprGlobalVariable{Variable: texture})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("imageLoad(%s, %s)", name, coord), nil
	}

	level := "0"
	if l.Level != nil {
		level, err = w.writeExpression(*l.Level)
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("texelFetch(%s, %s, int(%s))", w.fetchName[texture], coord, level), nil
}

// resourceOrigin resolves a texture or sampler operand to its global,
// looking through loads and resolved helper arguments.
func (w *Writer) resourceOrigin(handle ir.ExpressionHandle) (ir.GlobalVariableHandle, error) {
	fn := w.currentFunction
	for depth := 0; depth <= len(fn.Expressions); depth++ {
		if int(handle) >= len(fn.Expressions) {
			break
		}
		switch k := fn.Expressions[handle].Kind.(type) {
		case ir.ExprGlobalVariable:
			return k.Variable, nil
		case ir.ExprLoad:
			handle = k.Pointer
		case ir.ExprFunctionArgument:
			key := nameKey{kind: nameKeyFunctionArgument, handle1: uint32(w.currentFuncHandle), handle2: k.Index}
			if global, ok := w.argGlobals[key]; ok {
				return global, nil
			}
			return 0, fmt.Errorf("argument %d of %q is not a resource", k.Index, fn.Name)
		default:
			return 0, fmt.Errorf("expression %d is not a resource reference", handle)
		}
	}
	return 0, fmt.Errorf("invalid resource expression %d", handle)
}

// expressionType returns the type handle an expression evaluates to, with
// pointers unwrapped, when it can be found without full type inference.
func (w *Writer) expressionType(handle ir.ExpressionHandle) (ir.TypeHandle, bool) {
	fn := w.currentFunction
	if int(handle) >= len(fn.Expressions) {
		return 0, false
	}
	var th ir.TypeHandle
	switch k := fn.Expressions[handle].Kind.(type) {
	case ir.ExprLocalVariable:
		if int(k.Variable) >= len(fn.LocalVars) {
			return 0, false
		}
		th = fn.LocalVars[k.Variable].Type
	case ir.ExprGlobalVariable:
		if int(k.Variable) >= len(w.module.GlobalVariables) {
			return 0, false
		}
		th = w.module.GlobalVariables[k.Variable].Type
	case ir.ExprFunctionArgument:
		if int(k.Index) >= len(fn.Arguments) {
			return 0, false
		}
		th = fn.Arguments[k.Index].Type
	case ir.ExprCompose:
		th = k.Type
	case ir.ExprZeroValue:
		th = k.Type
	case ir.ExprLoad:
		return w.expressionType(k.Pointer)
	case ir.ExprAccess:
		base, ok := w.expressionType(k.Base)
		if !ok {
			return 0, false
		}
		arr, isArray := w.module.Types[base].Inner.(ir.ArrayType)
		if !isArray {
			return 0, false
		}
		th = arr.Base
	case ir.ExprAccessIndex:
		base, ok := w.expressionType(k.Base)
		if !ok {
			return 0, false
		}
		switch t := w.module.Types[base].Inner.(type) {
		case ir.StructType:
			if int(k.Index) >= len(t.Members) {
				return 0, false
			}
			th = t.Members[k.Index].Type
		case ir.ArrayType:
			th = t.Base
		default:
			return 0, false
		}
	default:
		return 0, false
	}

	if int(th) >= len(w.module.Types) {
		return 0, false
	}
	if ptr, ok := w.module.Types[th].Inner.(ir.PointerType); ok {
		th = ptr.Base
	}
	return th, int(th) < len(w.module.Types)
}
