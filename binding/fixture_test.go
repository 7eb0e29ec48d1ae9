// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package binding

import "github.com/gogpu/bindmap/ir"

// Type handles shared by test modules.
const (
	tyF32 ir.TypeHandle = iota
	tyVec4
	tyVec2
	tySampler
	tyTexture2D
	tyUniforms
	tyStorageImage
	tyRuntimeArray
)

func fixtureTypes() []ir.Type {
	f32 := ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}
	return []ir.Type{
		{Name: "f32", Inner: f32},
		{Name: "vec4f", Inner: ir.VectorType{Size: ir.Vec4, Scalar: f32}},
		{Name: "vec2f", Inner: ir.VectorType{Size: ir.Vec2, Scalar: f32}},
		{Inner: ir.SamplerType{}},
		{Inner: ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassSampled}},
		{Name: "Uniforms", Inner: ir.StructType{Members: []ir.StructMember{{Name: "color", Type: tyVec4}}, Span: 16}},
		{Inner: ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassStorage}},
		{Inner: ir.ArrayType{Base: tyF32, Stride: 4}},
	}
}

func uniformGlobal(name string, group, bind uint32) ir.GlobalVariable {
	return ir.GlobalVariable{Name: name, Space: ir.SpaceUniform, Binding: &ir.ResourceBinding{Group: group, Binding: bind}, Type: tyUniforms}
}

func storageGlobal(name string, group, bind uint32) ir.GlobalVariable {
	return ir.GlobalVariable{Name: name, Space: ir.SpaceStorage, Binding: &ir.ResourceBinding{Group: group, Binding: bind}, Type: tyRuntimeArray}
}

func textureGlobal(name string, group, bind uint32) ir.GlobalVariable {
	return ir.GlobalVariable{Name: name, Space: ir.SpaceHandle, Binding: &ir.ResourceBinding{Group: group, Binding: bind}, Type: tyTexture2D}
}

func samplerGlobal(name string, group, bind uint32) ir.GlobalVariable {
	return ir.GlobalVariable{Name: name, Space: ir.SpaceHandle, Binding: &ir.ResourceBinding{Group: group, Binding: bind}, Type: tySampler}
}

// fragmentModule builds a fragment entry point "fs_main" referencing the
// given globals and sampling each (texture, sampler) pair once.
func fragmentModule(globals []ir.GlobalVariable, used []ir.GlobalVariableHandle, samples [][2]ir.GlobalVariableHandle) *ir.Module {
	loc0 := ir.Binding(ir.LocationBinding{Location: 0})
	fn := ir.Function{
		Name:      "fs_main",
		Arguments: []ir.FunctionArgument{{Name: "uv", Type: tyVec2, Binding: &loc0}},
		Result:    &ir.FunctionResult{Type: tyVec4, Binding: &loc0},
	}
	exprOf := make(map[ir.GlobalVariableHandle]ir.ExpressionHandle)
	fn.Expressions = append(fn.Expressions, ir.Expression{Kind: ir.ExprFunctionArgument{Index: 0}})
	ref := func(h ir.GlobalVariableHandle) ir.ExpressionHandle {
		if e, ok := exprOf[h]; ok {
			return e
		}
		e := ir.ExpressionHandle(len(fn.Expressions))
		fn.Expressions = append(fn.Expressions, ir.Expression{Kind: ir.ExprGlobalVariable{Variable: h}})
		exprOf[h] = e
		return e
	}
	for _, h := range used {
		ref(h)
	}
	for _, s := range samples {
		ref(s[0])
		ref(s[1])
	}
	start := ir.ExpressionHandle(len(fn.Expressions))
	result := ir.ExpressionHandle(0)
	for _, s := range samples {
		img, smp := ref(s[0]), ref(s[1])
		result = ir.ExpressionHandle(len(fn.Expressions))
		fn.Expressions = append(fn.Expressions, ir.Expression{Kind: ir.ExprImageSample{
			Image: img, Sampler: smp, Coordinate: 0, Level: ir.SampleLevelAuto{},
		}})
	}
	if len(samples) == 0 {
		result = ir.ExpressionHandle(len(fn.Expressions))
		fn.Expressions = append(fn.Expressions, ir.Expression{Kind: ir.ExprZeroValue{Type: tyVec4}})
		start = result
	}
	fn.Body = ir.Block{
		{Kind: ir.StmtEmit{Range: ir.Range{Start: start, End: result + 1}}},
		{Kind: ir.StmtReturn{Value: &result}},
	}
	return &ir.Module{
		Types:           fixtureTypes(),
		GlobalVariables: globals,
		Functions:       []ir.Function{fn},
		EntryPoints:     []ir.EntryPoint{{Name: "fs_main", Stage: ir.StageFragment, Function: 0}},
	}
}

// scenarioModule uses group 0 {0: uniform, 1: texture, 2: sampler} and
// group 1 {0: uniform}.
func scenarioModule() *ir.Module {
	globals := []ir.GlobalVariable{
		uniformGlobal("u0", 0, 0),
		textureGlobal("tex", 0, 1),
		samplerGlobal("samp", 0, 2),
		uniformGlobal("u1", 1, 0),
	}
	return fragmentModule(globals, []ir.GlobalVariableHandle{0, 3}, [][2]ir.GlobalVariableHandle{{1, 2}})
}
