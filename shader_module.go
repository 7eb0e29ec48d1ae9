// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bindmap

import (
	"github.com/gogpu/bindmap/binding"
	"github.com/gogpu/bindmap/glsl"
	"github.com/gogpu/bindmap/hlsl"
	"github.com/gogpu/bindmap/ir"
)

// Plan is the renumbering applied to the bindings of a shader module:
// a *binding.NamePlan on BackendGL, a *binding.RegisterPlan on BackendD3D12.
type Plan interface {
	// Locations returns the planned locations in ascending order.
	Locations() []binding.Location
}

// ShaderModule is one entry point translated for a backend.
type ShaderModule struct {
	// EntryPoint is the name of the translated entry point.
	EntryPoint string

	// Stage is the pipeline stage of the entry point.
	Stage ir.ShaderStage

	// Source is the generated GLSL or HLSL.
	Source string

	// Bindings is the binding table extracted from the original module.
	Bindings *binding.Table

	// Combined lists the synthesized combined samplers. Always empty on
	// BackendD3D12.
	Combined []binding.CombinedSampler

	// Plan is the renaming or register numbering applied to Bindings.
	Plan Plan

	// GLSL is set on BackendGL.
	GLSL *glsl.TranslationInfo

	// HLSL is set on BackendD3D12.
	HLSL *hlsl.TranslationInfo
}

// Names returns the flat name plan, or nil on BackendD3D12.
func (m *ShaderModule) Names() *binding.NamePlan {
	p, _ := m.Plan.(*binding.NamePlan)
	return p
}

// Registers returns the register plan, or nil on BackendGL.
func (m *ShaderModule) Registers() *binding.RegisterPlan {
	p, _ := m.Plan.(*binding.RegisterPlan)
	return p
}
