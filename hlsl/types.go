// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/bindmap/ir"
)

// writeTypes writes all struct type definitions.
// Non-struct types are written inline where needed.
func (w *Writer) writeTypes() {
	for handle := range w.module.Types {
		st, ok := w.module.Types[handle].Inner.(ir.StructType)
		if !ok {
			continue
		}
		w.writeStructDefinition(ir.TypeHandle(handle), st) //nolint:gosec // G115: handle is valid slice index
	}
}

// writeStructDefinition writes a struct type definition.
func (w *Writer) writeStructDefinition(handle ir.TypeHandle, st ir.StructType) {
	w.writeLine("struct %s {", w.typeNames[handle])
	w.pushIndent()

	for memberIdx, member := range st.Members {
		memberName := w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(handle), handle2: uint32(memberIdx)}] //nolint:gosec // G115: memberIdx is bounded by slice length
		memberType, arraySuffix := w.getTypeNameWithArraySuffix(member.Type)
		w.writeLine("%s %s%s;", memberType, memberName, arraySuffix)
	}

	w.popIndent()
	w.writeLine("};")
	w.writeLine("")
}

// getTypeName returns the HLSL type name for a type handle.
func (w *Writer) getTypeName(handle ir.TypeHandle) string {
	typeName, arraySuffix := w.getTypeNameWithArraySuffix(handle)
	return typeName + arraySuffix
}

// getTypeNameWithArraySuffix returns the base type name and array suffix separately.
// HLSL arrays are written as `type name[size]`, not `type[size] name`.
func (w *Writer) getTypeNameWithArraySuffix(handle ir.TypeHandle) (typeName, arraySuffix string) {
	if int(handle) >= len(w.module.Types) {
		return fmt.Sprintf("unknown_type_%d", handle), ""
	}

	switch inner := w.module.Types[handle].Inner.(type) {
	case ir.ScalarType:
		return ScalarToHLSL(inner), ""

	case ir.VectorType:
		return VectorToHLSL(inner), ""

	case ir.MatrixType:
		return MatrixToHLSL(inner), ""

	case ir.ArrayType:
		baseName, baseSuffix := w.getTypeNameWithArraySuffix(inner.Base)
		if inner.Size.Constant != nil {
			return baseName, baseSuffix + fmt.Sprintf("[%d]", *inner.Size.Constant)
		}
		return baseName, baseSuffix + "[]"

	case ir.StructType:
		if name, ok := w.typeNames[handle]; ok {
			return name, ""
		}
		return fmt.Sprintf("type_%d", handle), ""

	case ir.PointerType:
		// HLSL doesn't have explicit pointers, use the base type
		return w.getTypeNameWithArraySuffix(inner.Base)

	case ir.SamplerType:
		return SamplerToHLSL(inner.Comparison), ""

	case ir.ImageType:
		return ImageToHLSL(inner), ""

	default:
		return fmt.Sprintf("unknown_type_%T", inner), ""
	}
}

// resolveType returns the inner type of handle with pointers removed.
func (w *Writer) resolveType(handle ir.TypeHandle) (ir.TypeInner, bool) {
	for depth := 0; depth <= len(w.module.Types); depth++ {
		if int(handle) >= len(w.module.Types) {
			return nil, false
		}
		inner := w.module.Types[handle].Inner
		ptr, ok := inner.(ir.PointerType)
		if !ok {
			return inner, true
		}
		handle = ptr.Base
	}
	return nil, false
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
	case ir.ExprCallResult:
		if int(k.Function) >= len(w.module.Functions) || w.module.Functions[k.Function].Result == nil {
			return 0, false
		}
		th = w.module.Functions[k.Function].Result.Type
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

// expressionInner returns the resolved inner type of an expression.
func (w *Writer) expressionInner(handle ir.ExpressionHandle) (ir.TypeInner, bool) {
	th, ok := w.expressionType(handle)
	if !ok {
		return nil, false
	}
	return w.resolveType(th)
}

// formatFloat32 formats a float32 for HLSL output.
func formatFloat32(f float32) string {
	if math.IsInf(float64(f), 1) {
		return "1.#INF"
	}
	if math.IsInf(float64(f), -1) {
		return "-1.#INF"
	}
	if math.IsNaN(float64(f)) {
		return "0.0/0.0"
	}
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
