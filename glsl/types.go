// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/bindmap/ir"
)

// glslTypeSampler is the GLSL type name prefix for samplers.
const glslTypeSampler = "sampler"

// getTypeName returns the GLSL type name for a type handle.
// For arrays, this returns the full type including size (e.g., "vec2[3]").
// Use getBaseTypeName + getArraySuffix for variable declarations.
func (w *Writer) getTypeName(handle ir.TypeHandle) string {
	if int(handle) >= len(w.module.Types) {
		return fmt.Sprintf("type_%d", handle)
	}
	if _, ok := w.module.Types[handle].Inner.(ir.StructType); ok {
		return w.typeNames[handle]
	}
	return w.typeInnerToGLSL(w.module.Types[handle].Inner)
}

// getBaseTypeName returns the base GLSL type name, unwrapping arrays.
// For "array<vec2, 3>" returns "vec2". For non-arrays, same as getTypeName.
func (w *Writer) getBaseTypeName(handle ir.TypeHandle) string {
	if int(handle) >= len(w.module.Types) {
		return fmt.Sprintf("type_%d", handle)
	}
	switch t := w.module.Types[handle].Inner.(type) {
	case ir.ArrayType:
		return w.getBaseTypeName(t.Base)
	case ir.PointerType:
		return w.getBaseTypeName(t.Base)
	}
	return w.getTypeName(handle)
}

// getArraySuffix returns the array size suffix(es) for a type handle.
// For "array<vec2, 3>" returns "[3]". For non-arrays, returns "".
// Handles nested arrays: "array<array<float, 4>, 3>" returns "[3][4]".
func (w *Writer) getArraySuffix(handle ir.TypeHandle) string {
	if int(handle) >= len(w.module.Types) {
		return ""
	}
	switch t := w.module.Types[handle].Inner.(type) {
	case ir.ArrayType:
		if t.Size.Constant != nil {
			return fmt.Sprintf("[%d]", *t.Size.Constant) + w.getArraySuffix(t.Base)
		}
		return "[]" + w.getArraySuffix(t.Base)
	case ir.PointerType:
		return w.getArraySuffix(t.Base)
	}
	return ""
}

// typeInnerToGLSL returns the GLSL name for a TypeInner.
func (w *Writer) typeInnerToGLSL(inner ir.TypeInner) string {
	switch t := inner.(type) {
	case ir.ScalarType:
		return scalarToGLSL(t)
	case ir.VectorType:
		return vectorToGLSL(t)
	case ir.MatrixType:
		return matrixToGLSL(t)
	case ir.ArrayType:
		return w.arrayToGLSL(t)
	case ir.StructType:
		// Structs use their registered name
		for handle, regTyp := range w.module.Types {
			if st, ok := regTyp.Inner.(ir.StructType); ok && structsEqual(st, t) {
				return w.typeNames[ir.TypeHandle(handle)] //nolint:gosec // G115: handle is valid slice index
			}
		}
		return "struct_unknown"
	case ir.SamplerType:
		return glslTypeSampler
	case ir.ImageType:
		return w.imageToGLSL(t)
	case ir.PointerType:
		// GLSL doesn't have explicit pointers, return the pointee type
		return w.getTypeName(t.Base)
	default:
		return "unknown_type"
	}
}

// scalarToGLSL returns the GLSL name for a scalar type.
func scalarToGLSL(t ir.ScalarType) string {
	switch t.Kind {
	case ir.ScalarBool:
		return "bool"
	case ir.ScalarSint:
		return glslTypeInt
	case ir.ScalarUint:
		return glslTypeUint
	case ir.ScalarFloat:
		if t.Width == 8 {
			return "double"
		}
		return glslTypeFloat
	}
	return glslTypeInt
}

// vectorToGLSL returns the GLSL name for a vector type.
func vectorToGLSL(t ir.VectorType) string {
	size := t.Size
	if size < 2 || size > 4 {
		size = 4 // Clamp to valid range
	}

	switch t.Scalar.Kind {
	case ir.ScalarBool:
		return fmt.Sprintf("bvec%d", size)
	case ir.ScalarSint:
		return fmt.Sprintf("ivec%d", size)
	case ir.ScalarUint:
		return fmt.Sprintf("uvec%d", size)
	default:
		if t.Scalar.Width == 8 {
			return fmt.Sprintf("dvec%d", size)
		}
		return fmt.Sprintf("vec%d", size)
	}
}

// matrixToGLSL returns the GLSL name for a matrix type.
func matrixToGLSL(t ir.MatrixType) string {
	cols, rows := t.Columns, t.Rows
	if cols < 2 || cols > 4 {
		cols = 4
	}
	if rows < 2 || rows > 4 {
		rows = 4
	}

	prefix := "mat"
	if t.Scalar.Width == 8 {
		prefix = "dmat"
	}
	if cols == rows {
		return fmt.Sprintf("%s%d", prefix, cols)
	}
	return fmt.Sprintf("%s%dx%d", prefix, cols, rows)
}

// arrayToGLSL returns the GLSL name for an array type.
func (w *Writer) arrayToGLSL(t ir.ArrayType) string {
	baseType := w.getTypeName(t.Base)
	if t.Size.Constant != nil {
		return fmt.Sprintf("%s[%d]", baseType, *t.Size.Constant)
	}
	return fmt.Sprintf("%s[]", baseType)
}

// imageToGLSL returns the GLSL sampler or image type for an image type.
// Sampled and depth textures become sampler types because GLSL only has
// combined samplers.
func (w *Writer) imageToGLSL(t ir.ImageType) string {
	prefix := glslTypeSampler
	if t.Class == ir.ImageClassStorage {
		prefix = "image"
	}

	var suffix string
	switch t.Dim {
	case ir.Dim1D:
		suffix = "1D"
	case ir.Dim3D:
		return prefix + "3D"
	case ir.DimCube:
		suffix = "Cube"
	default:
		suffix = "2D"
		if t.Multisampled {
			suffix = "2DMS"
		}
	}
	if t.Arrayed {
		suffix += "Array"
	}
	if t.Class == ir.ImageClassDepth && !t.Multisampled {
		suffix += "Shadow"
	}
	return prefix + suffix
}

// imageCoordType returns the integer vector GLSL uses to address texels.
func imageCoordType(t ir.ImageType) string {
	n := 2
	switch t.Dim {
	case ir.Dim1D:
		n = 1
	case ir.Dim3D, ir.DimCube:
		n = 3
	}
	if t.Arrayed {
		n++
	}
	if n == 1 {
		return glslTypeInt
	}
	return fmt.Sprintf("ivec%d", n)
}

// isHandleType reports whether a type is a sampler or image.
func (w *Writer) isHandleType(handle ir.TypeHandle) bool {
	if int(handle) >= len(w.module.Types) {
		return false
	}
	inner := w.module.Types[handle].Inner
	if ptr, ok := inner.(ir.PointerType); ok && int(ptr.Base) < len(w.module.Types) {
		inner = w.module.Types[ptr.Base].Inner
	}
	switch inner.(type) {
	case ir.SamplerType, ir.ImageType:
		return true
	}
	return false
}

// imageType returns the image type of a global, if it is one.
func (w *Writer) imageType(handle ir.GlobalVariableHandle) (ir.ImageType, bool) {
	inner, ok := w.module.ResolveGlobalType(handle)
	if !ok {
		return ir.ImageType{}, false
	}
	img, ok := inner.(ir.ImageType)
	return img, ok
}

// structsEqual compares two struct types for equality.
func structsEqual(a, b ir.StructType) bool {
	if len(a.Members) != len(b.Members) {
		return false
	}
	for i := range a.Members {
		if a.Members[i].Name != b.Members[i].Name || a.Members[i].Type != b.Members[i].Type {
			return false
		}
	}
	return true
}
