// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bindmap

import (
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/bindmap/ir"
)

const (
	tyF32 ir.TypeHandle = iota
	tyVec4
	tyVec2
	tySampler
	tyTexture2D
	tyUniforms
)

func resource(name string, space ir.AddressSpace, ty ir.TypeHandle, group, bind uint32) ir.GlobalVariable {
	return ir.GlobalVariable{Name: name, Space: space, Binding: &ir.ResourceBinding{Group: group, Binding: bind}, Type: ty}
}

func handle(h ir.ExpressionHandle) *ir.ExpressionHandle {
	return &h
}

// scenarioModule declares u0(0,0), tex(0,1), samp(0,2) and u1(1,0).
// vs_main offsets its position by u1.color; fs_main samples tex with samp,
// scales by u0.color and adds u1.color.
func scenarioModule() *ir.Module {
	f32 := ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}
	loc0 := ir.Binding(ir.LocationBinding{Location: 0})
	position := ir.Binding(ir.BuiltinBinding{Builtin: ir.BuiltinPosition})

	vs := ir.Function{
		Name:      "vs_main",
		Arguments: []ir.FunctionArgument{{Name: "pos", Type: tyVec4, Binding: &loc0}},
		Result:    &ir.FunctionResult{Type: tyVec4, Binding: &position},
		Expressions: []ir.Expression{
			{Kind: ir.ExprFunctionArgument{Index: 0}},
			{Kind: ir.ExprGlobalVariable{Variable: 3}},
			{Kind: ir.ExprAccessIndex{Base: 1, Index: 0}},
			{Kind: ir.ExprLoad{Pointer: 2}},
			{Kind: ir.ExprBinary{Op: ir.BinaryAdd, Left: 0, Right: 3}},
		},
		Body: []ir.Statement{
			{Kind: ir.StmtEmit{Range: ir.Range{Start: 1, End: 5}}},
			{Kind: ir.StmtReturn{Value: handle(4)}},
		},
	}

	fs := ir.Function{
		Name:      "fs_main",
		Arguments: []ir.FunctionArgument{{Name: "uv", Type: tyVec2, Binding: &loc0}},
		Result:    &ir.FunctionResult{Type: tyVec4, Binding: &loc0},
		Expressions: []ir.Expression{
			{Kind: ir.ExprFunctionArgument{Index: 0}},
			{Kind: ir.ExprGlobalVariable{Variable: 1}},
			{Kind: ir.ExprGlobalVariable{Variable: 2}},
			{Kind: ir.ExprImageSample{Image: 1, Sampler: 2, Coordinate: 0, Level: ir.SampleLevelAuto{}}},
			{Kind: ir.ExprGlobalVariable{Variable: 0}},
			{Kind: ir.ExprAccessIndex{Base: 4, Index: 0}},
			{Kind: ir.ExprLoad{Pointer: 5}},
			{Kind: ir.ExprGlobalVariable{Variable: 3}},
			{Kind: ir.ExprAccessIndex{Base: 7, Index: 0}},
			{Kind: ir.ExprLoad{Pointer: 8}},
			{Kind: ir.ExprBinary{Op: ir.BinaryMultiply, Left: 3, Right: 6}},
			{Kind: ir.ExprBinary{Op: ir.BinaryAdd, Left: 10, Right: 9}},
		},
		Body: []ir.Statement{
			{Kind: ir.StmtEmit{Range: ir.Range{Start: 1, End: 12}}},
			{Kind: ir.StmtReturn{Value: handle(11)}},
		},
	}

	return &ir.Module{
		Types: []ir.Type{
			{Name: "f32", Inner: f32},
			{Name: "vec4f", Inner: ir.VectorType{Size: ir.Vec4, Scalar: f32}},
			{Name: "vec2f", Inner: ir.VectorType{Size: ir.Vec2, Scalar: f32}},
			{Inner: ir.SamplerType{}},
			{Inner: ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassSampled}},
			{Name: "Uniforms", Inner: ir.StructType{Members: []ir.StructMember{{Name: "color", Type: tyVec4}}, Span: 16}},
		},
		GlobalVariables: []ir.GlobalVariable{
			resource("u0", ir.SpaceUniform, tyUniforms, 0, 0),
			resource("tex", ir.SpaceHandle, tyTexture2D, 0, 1),
			resource("samp", ir.SpaceHandle, tySampler, 0, 2),
			resource("u1", ir.SpaceUniform, tyUniforms, 1, 0),
		},
		Functions: []ir.Function{vs, fs},
		EntryPoints: []ir.EntryPoint{
			{Name: "vs_main", Stage: ir.StageVertex, Function: 0},
			{Name: "fs_main", Stage: ir.StageFragment, Function: 1},
		},
	}
}

// group0Entries describes group 0 of the scenario as WebGPU entries.
func group0Entries() []gputypes.BindGroupLayoutEntry {
	return []gputypes.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		},
		{
			Binding:    1,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		},
		{
			Binding:    2,
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		},
	}
}

func newDevice(t *testing.T, backend Backend) *Device {
	t.Helper()
	opts := DefaultOptions()
	opts.Backend = backend
	d, err := NewDevice(opts)
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	return d
}

// scenarioStages translates both entry points of the scenario.
func scenarioStages(t *testing.T, d *Device) (vs, fs *ShaderModule) {
	t.Helper()
	module := scenarioModule()
	vs, err := d.CreateShaderModule(module, "vs_main")
	if err != nil {
		t.Fatalf("CreateShaderModule(vs_main): %v", err)
	}
	fs, err = d.CreateShaderModule(module, "fs_main")
	if err != nil {
		t.Fatalf("CreateShaderModule(fs_main): %v", err)
	}
	return vs, fs
}

func mustContain(t *testing.T, source string, want ...string) {
	t.Helper()
	for _, s := range want {
		if !strings.Contains(source, s) {
			t.Errorf("output missing %q\n--- output ---\n%s", s, source)
		}
	}
}
