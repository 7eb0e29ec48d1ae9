// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/bindmap/ir"
)

// HLSL type name constants.
const (
	hlslInt     = "int"
	hlslTexture = "Texture"
)

// ScalarToHLSL returns the HLSL type name for a scalar type.
// Ref: https://docs.microsoft.com/en-us/windows/win32/direct3dhlsl/dx-graphics-hlsl-scalar
func ScalarToHLSL(s ir.ScalarType) string {
	switch s.Kind {
	case ir.ScalarBool:
		return "bool"
	case ir.ScalarSint:
		if s.Width == 8 {
			return "int64_t"
		}
		return hlslInt
	case ir.ScalarUint:
		if s.Width == 8 {
			return "uint64_t"
		}
		return "uint"
	case ir.ScalarFloat:
		switch s.Width {
		case 2:
			return "half"
		case 8:
			return "double"
		default:
			return "float"
		}
	default:
		return hlslInt
	}
}

// VectorToHLSL returns the HLSL type name for a vector type.
// HLSL uses TypeN syntax (e.g., float4, int3).
func VectorToHLSL(v ir.VectorType) string {
	size := v.Size
	if size < 2 || size > 4 {
		size = 4
	}
	return fmt.Sprintf("%s%d", ScalarToHLSL(v.Scalar), size)
}

// MatrixToHLSL returns the HLSL type name for a matrix type.
// HLSL uses TypeRxC syntax (e.g., float4x4, half3x3).
func MatrixToHLSL(m ir.MatrixType) string {
	cols, rows := m.Columns, m.Rows
	if cols < 2 || cols > 4 {
		cols = 4
	}
	if rows < 2 || rows > 4 {
		rows = 4
	}
	return fmt.Sprintf("%s%dx%d", ScalarToHLSL(m.Scalar), cols, rows)
}

// BuiltInToSemantic returns the HLSL semantic for a built-in value.
// Ref: https://docs.microsoft.com/en-us/windows/win32/direct3dhlsl/dx-graphics-hlsl-semantics
func BuiltInToSemantic(b ir.BuiltinValue) string {
	switch b {
	case ir.BuiltinPosition:
		return "SV_Position"
	case ir.BuiltinVertexIndex:
		return "SV_VertexID"
	case ir.BuiltinInstanceIndex:
		return "SV_InstanceID"
	case ir.BuiltinFrontFacing:
		return "SV_IsFrontFace"
	case ir.BuiltinFragDepth:
		return "SV_Depth"
	case ir.BuiltinGlobalInvocationID:
		return "SV_DispatchThreadID"
	case ir.BuiltinLocalInvocationID:
		return "SV_GroupThreadID"
	case ir.BuiltinWorkGroupID:
		return "SV_GroupID"
	default:
		return "SV_Position"
	}
}

// ImageDimToHLSL returns the HLSL texture dimension suffix.
func ImageDimToHLSL(dim ir.ImageDimension, arrayed bool) string {
	var suffix string
	switch dim {
	case ir.Dim1D:
		suffix = "1D"
	case ir.Dim3D:
		suffix = "3D"
	case ir.DimCube:
		suffix = "Cube"
	default:
		suffix = "2D"
	}

	if arrayed && dim != ir.Dim3D { // 3D textures can't be arrays
		suffix += "Array"
	}
	return suffix
}

// ImageToHLSL returns the full HLSL texture object type, including the
// element template argument.
func ImageToHLSL(img ir.ImageType) string {
	prefix := hlslTexture
	if img.Class == ir.ImageClassStorage {
		prefix = "RW" + hlslTexture
	}

	var name string
	if img.Multisampled {
		name = prefix + ImageDimToHLSL(img.Dim, false) + "MS"
		if img.Arrayed {
			name += "Array"
		}
	} else {
		name = prefix + ImageDimToHLSL(img.Dim, img.Arrayed)
	}

	if img.Class == ir.ImageClassDepth {
		return name + "<float>"
	}
	return name + "<float4>"
}

// ImageCoordinateSize returns the number of integer components addressing
// a texel of img, including the array layer.
func ImageCoordinateSize(img ir.ImageType) int {
	n := 2
	switch img.Dim {
	case ir.Dim1D:
		n = 1
	case ir.Dim3D, ir.DimCube:
		n = 3
	}
	if img.Arrayed && img.Dim != ir.Dim3D {
		n++
	}
	return n
}

// SamplerToHLSL returns the HLSL sampler type name.
func SamplerToHLSL(comparison bool) string {
	if comparison {
		return "SamplerComparisonState"
	}
	return "SamplerState"
}

// ShaderStageToHLSL returns the HLSL profile prefix for a shader stage.
func ShaderStageToHLSL(stage ir.ShaderStage) string {
	switch stage {
	case ir.StageFragment:
		return "ps" // Pixel shader in HLSL terminology
	case ir.StageCompute:
		return "cs"
	default:
		return "vs"
	}
}
