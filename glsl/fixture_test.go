// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"
	"testing"

	"github.com/gogpu/bindmap/binding"
	"github.com/gogpu/bindmap/ir"
)

const (
	tyF32 ir.TypeHandle = iota
	tyVec4
	tyVec2
	tySampler
	tyTexture2D
	tyUniforms
	tyStorageImage
	tyRuntimeArray
	tyVec2i
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
		{Name: "vec2i", Inner: ir.VectorType{Size: ir.Vec2, Scalar: ir.ScalarType{Kind: ir.ScalarSint, Width: 4}}},
	}
}

func resource(name string, space ir.AddressSpace, ty ir.TypeHandle, group, bind uint32) ir.GlobalVariable {
	return ir.GlobalVariable{Name: name, Space: space, Binding: &ir.ResourceBinding{Group: group, Binding: bind}, Type: ty}
}

// funcBuilder appends expressions to a function under construction.
type funcBuilder struct {
	fn ir.Function
}

func newFragmentFunc(name string) *funcBuilder {
	loc0 := ir.Binding(ir.LocationBinding{Location: 0})
	b := &funcBuilder{fn: ir.Function{
		Name:      name,
		Arguments: []ir.FunctionArgument{{Name: "uv", Type: tyVec2, Binding: &loc0}},
		Result:    &ir.FunctionResult{Type: tyVec4, Binding: &loc0},
	}}
	b.add(ir.ExprFunctionArgument{Index: 0})
	return b
}

func (b *funcBuilder) add(kind ir.ExpressionKind) ir.ExpressionHandle {
	h := ir.ExpressionHandle(len(b.fn.Expressions))
	b.fn.Expressions = append(b.fn.Expressions, ir.Expression{Kind: kind})
	return h
}

func (b *funcBuilder) global(h ir.GlobalVariableHandle) ir.ExpressionHandle {
	return b.add(ir.ExprGlobalVariable{Variable: h})
}

func (b *funcBuilder) member(global ir.GlobalVariableHandle, index uint32) ir.ExpressionHandle {
	base := b.global(global)
	access := b.add(ir.ExprAccessIndex{Base: base, Index: index})
	return b.add(ir.ExprLoad{Pointer: access})
}

func (b *funcBuilder) sample(texture, sampler ir.GlobalVariableHandle, coord ir.ExpressionHandle) ir.ExpressionHandle {
	tex := b.global(texture)
	smp := b.global(sampler)
	return b.add(ir.ExprImageSample{Image: tex, Sampler: smp, Coordinate: coord, Level: ir.SampleLevelAuto{}})
}

func (b *funcBuilder) ret(value ir.ExpressionHandle) ir.Function {
	b.fn.Body = append(b.fn.Body,
		ir.Statement{Kind: ir.StmtEmit{Range: ir.Range{Start: 1, End: ir.ExpressionHandle(len(b.fn.Expressions))}}},
		ir.Statement{Kind: ir.StmtReturn{Value: &value}},
	)
	return b.fn
}

func fragmentModule(globals []ir.GlobalVariable, functions ...ir.Function) *ir.Module {
	return &ir.Module{
		Types:           fixtureTypes(),
		GlobalVariables: globals,
		Functions:       functions,
		EntryPoints: []ir.EntryPoint{{
			Name:     "fs_main",
			Stage:    ir.StageFragment,
			Function: ir.FunctionHandle(len(functions) - 1),
		}},
	}
}

// scenarioModule samples tex(0,1) with samp(0,2), scales by u0(0,0).color
// and adds u1(1,0).color.
func scenarioModule() *ir.Module {
	globals := []ir.GlobalVariable{
		resource("u0", ir.SpaceUniform, tyUniforms, 0, 0),
		resource("tex", ir.SpaceHandle, tyTexture2D, 0, 1),
		resource("samp", ir.SpaceHandle, tySampler, 0, 2),
		resource("u1", ir.SpaceUniform, tyUniforms, 1, 0),
	}
	b := newFragmentFunc("fs_main")
	color := b.sample(1, 2, 0)
	scale := b.member(0, 0)
	bias := b.member(3, 0)
	product := b.add(ir.ExprBinary{Op: ir.BinaryMultiply, Left: color, Right: scale})
	sum := b.add(ir.ExprBinary{Op: ir.BinaryAdd, Left: product, Right: bias})
	return fragmentModule(globals, b.ret(sum))
}

// translate runs the flat-name binding passes and compiles the result.
func translate(t *testing.T, module *ir.Module, opts Options) (string, TranslationInfo) {
	t.Helper()
	source, info, err := translateErr(module, opts)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	return source, info
}

func translateErr(module *ir.Module, opts Options) (string, TranslationInfo, error) {
	table, err := binding.Extract(module, opts.EntryPoint, binding.DefaultLimits())
	if err != nil {
		return "", TranslationInfo{}, err
	}
	combined, err := binding.Synthesize(module, opts.EntryPoint, table, "bm")
	if err != nil {
		return "", TranslationInfo{}, err
	}
	plan, err := binding.NewNamePlan(table, "bm")
	if err != nil {
		return "", TranslationInfo{}, err
	}
	renamed, err := binding.Rewrite(module, table, plan)
	if err != nil {
		return "", TranslationInfo{}, err
	}
	opts.CombinedSamplers = combined
	return Compile(renamed, opts)
}

func mustContain(t *testing.T, source string, want ...string) {
	t.Helper()
	for _, s := range want {
		if !strings.Contains(source, s) {
			t.Errorf("output missing %q\n--- output ---\n%s", s, source)
		}
	}
}

func mustNotContain(t *testing.T, source string, unwanted ...string) {
	t.Helper()
	for _, s := range unwanted {
		if strings.Contains(source, s) {
			t.Errorf("output should not contain %q\n--- output ---\n%s", s, source)
		}
	}
}
