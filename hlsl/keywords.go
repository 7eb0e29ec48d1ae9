// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "strings"

// UnnamedIdentifier is the default name for empty identifiers.
const UnnamedIdentifier = "_unnamed"

// reservedKeywords contains HLSL keywords, resource object types and the
// intrinsics generated code calls.
var reservedKeywords = func() map[string]struct{} {
	words := []string{
		// FXC keywords
		"AppendStructuredBuffer", "asm", "asm_fragment", "BlendState", "bool", "break", "Buffer",
		"ByteAddressBuffer", "case", "cbuffer", "centroid", "class", "column_major", "compile",
		"compile_fragment", "CompileShader", "const", "continue", "ComputeShader",
		"ConsumeStructuredBuffer", "default", "DepthStencilState", "DepthStencilView", "discard",
		"do", "double", "DomainShader", "dword", "else", "export", "extern", "false", "float", "for",
		"fxgroup", "GeometryShader", "groupshared", "half", "Hullshader", "if", "in", "inline",
		"inout", "InputPatch", "int", "interface", "line", "lineadj", "linear", "LineStream",
		"matrix", "min16float", "min10float", "min16int", "min12int", "min16uint", "namespace",
		"nointerpolation", "noperspective", "NULL", "out", "OutputPatch", "packoffset", "pass",
		"pixelfragment", "PixelShader", "point", "PointStream", "precise", "RasterizerState",
		"RenderTargetView", "return", "register", "row_major", "RWBuffer", "RWByteAddressBuffer",
		"RWStructuredBuffer", "RWTexture1D", "RWTexture1DArray", "RWTexture2D", "RWTexture2DArray",
		"RWTexture3D", "sample", "sampler", "SamplerState", "SamplerComparisonState", "shared",
		"snorm", "stateblock", "stateblock_state", "static", "string", "struct", "switch",
		"StructuredBuffer", "tbuffer", "technique", "technique10", "technique11", "texture",
		"Texture1D", "Texture1DArray", "Texture2D", "Texture2DArray", "Texture2DMS",
		"Texture2DMSArray", "Texture3D", "TextureCube", "TextureCubeArray", "true", "typedef",
		"triangle", "triangleadj", "TriangleStream", "uint", "uniform", "unorm", "unsigned",
		"vector", "vertexfragment", "VertexShader", "void", "volatile", "while",
		// DXC keywords
		"auto", "catch", "char", "const_cast", "delete", "dynamic_cast", "enum", "explicit",
		"friend", "goto", "long", "mutable", "new", "operator", "private", "protected", "public",
		"reinterpret_cast", "short", "signed", "sizeof", "static_cast", "template", "this",
		"throw", "try", "typename", "union", "using", "virtual",
		// Intrinsics used by the writer
		"mul", "asfloat", "asint", "asuint", "main",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// caseInsensitiveKeywords contains keywords that are case-insensitive in HLSL.
var caseInsensitiveKeywords = map[string]struct{}{
	"asm":         {},
	"decl":        {},
	"pass":        {},
	"technique":   {},
	"texture1d":   {},
	"texture2d":   {},
	"texture3d":   {},
	"texturecube": {},
}

// isTypeShorthand reports whether name is a scalar, vector or matrix type
// such as float, int3 or half4x4.
func isTypeShorthand(name string) bool {
	for _, base := range []string{"bool", "int", "uint", "dword", "half", "float", "double", "min16float", "min16int", "min16uint"} {
		rest, ok := strings.CutPrefix(name, base)
		if !ok {
			continue
		}
		switch {
		case rest == "":
			return true
		case len(rest) == 1 && rest[0] >= '1' && rest[0] <= '4':
			return true
		case len(rest) == 3 && rest[0] >= '1' && rest[0] <= '4' && rest[1] == 'x' && rest[2] >= '1' && rest[2] <= '4':
			return true
		}
	}
	return false
}

// IsReserved checks if a name is an HLSL reserved keyword.
func IsReserved(name string) bool {
	if _, ok := reservedKeywords[name]; ok {
		return true
	}
	return isTypeShorthand(name)
}

// IsCaseInsensitiveReserved checks if a name conflicts with case-insensitive keywords.
func IsCaseInsensitiveReserved(name string) bool {
	_, ok := caseInsensitiveKeywords[strings.ToLower(name)]
	return ok
}

// Escape returns a safe identifier name.
// If the name is reserved or empty, it's prefixed with underscore.
func Escape(name string) string {
	if name == "" {
		return UnnamedIdentifier
	}
	if IsReserved(name) || IsCaseInsensitiveReserved(name) {
		return "_" + name
	}
	return name
}
