// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bindmap

import (
	"fmt"

	"github.com/gogpu/bindmap/binding"
	"github.com/gogpu/bindmap/heap"
	"github.com/gogpu/bindmap/layout"
)

// PipelineLayout is the set of group layouts a pipeline binds, with the
// root parameter slots of their descriptor tables.
type PipelineLayout struct {
	backend Backend
	tables  *layout.PipelineLayout
}

// Backend returns the backend the layout was created for.
func (p *PipelineLayout) Backend() Backend {
	return p.backend
}

// Group returns the layout of a group, or nil for an empty group.
func (p *PipelineLayout) Group(group uint32) *layout.BindGroupLayout {
	return p.tables.Group(group)
}

// Tables returns the descriptor table assembly. Its root parameters
// describe the D3D12 root signature.
func (p *PipelineLayout) Tables() *layout.PipelineLayout {
	return p.tables
}

func (p *PipelineLayout) groups() []*layout.BindGroupLayout {
	out := make([]*layout.BindGroupLayout, p.tables.GroupCount())
	for g := range out {
		out[g] = p.tables.Group(uint32(g))
	}
	return out
}

// Pipeline is a set of translated stages checked against their layout.
type Pipeline struct {
	layout   *PipelineLayout
	stages   []*ShaderModule
	bindings *binding.Table
	flat     *layout.FlatPipelineLayout
}

// Layout returns the pipeline layout.
func (p *Pipeline) Layout() *PipelineLayout {
	return p.layout
}

// Stages returns the shader modules of the pipeline.
func (p *Pipeline) Stages() []*ShaderModule {
	return append([]*ShaderModule(nil), p.stages...)
}

// Bindings returns the union of the stages' binding tables.
func (p *Pipeline) Bindings() *binding.Table {
	return p.bindings
}

// Flat returns the GL block bindings and texture units, or nil on
// BackendD3D12.
func (p *Pipeline) Flat() *layout.FlatPipelineLayout {
	return p.flat
}

// TableBinding is a descriptor table handed to the command list: the root
// parameter slot and the heap index where the table starts.
type TableBinding struct {
	Slot uint32
	Heap binding.HeapKind
	Base uint32
}

// BindGroup makes bg resident in set and returns the tables to set for
// group, in slot order, along with the number of descriptors copied. bg
// must have been created from the layout of group.
func (p *Pipeline) BindGroup(set *heap.Set, group uint32, bg *heap.BindGroup) ([]TableBinding, int, error) {
	if p.layout.backend != BackendD3D12 {
		return nil, 0, binding.NewError(binding.ErrUnsupportedCombination,
			fmt.Sprintf("descriptor tables are not used on %s", p.layout.backend))
	}
	want := p.layout.Group(group)
	if want == nil || bg.Layout() != want {
		return nil, 0, binding.NewError(binding.ErrUnsupportedCombination,
			fmt.Sprintf("bind group was not created from the layout of group %d", group))
	}

	nonSamplerBase, samplerBase, copies, err := set.Bind(bg)
	if err != nil {
		return nil, copies, err
	}

	tables := p.layout.tables
	var out []TableBinding
	if slot, ok := tables.NonSamplerSlot(group); ok {
		out = append(out, TableBinding{Slot: slot, Heap: binding.HeapNonSampler, Base: nonSamplerBase})
	}
	if slot, ok := tables.SamplerSlot(group); ok {
		out = append(out, TableBinding{Slot: slot, Heap: binding.HeapSampler, Base: samplerBase})
	}
	Logger().Debug("bindmap: bind group set",
		"group", group,
		"tables", len(out),
		"copies", copies)
	return out, copies, nil
}
