// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package layout

import (
	"fmt"

	"github.com/gogpu/bindmap/binding"
)

// RootParameter is one descriptor table of a table-based pipeline layout.
type RootParameter struct {
	Group uint32
	Heap  binding.HeapKind

	// Ranges are copied from the group layout with BaseRegister shifted by
	// Group*MaxBindingsPerGroup.
	Ranges []DescriptorRange

	// Visibility is the union of the stages of the table's bindings.
	// Zero means all stages.
	Visibility binding.Stages
}

// DescriptorCount returns the number of descriptors in the table.
func (p RootParameter) DescriptorCount() uint32 {
	var n uint32
	for _, r := range p.Ranges {
		n += r.Count
	}
	return n
}

// PipelineLayout assigns every non-empty group table a root parameter slot.
//
// Groups are visited in index order. For each group the non-sampler table,
// if non-empty, takes the next slot, then the sampler table, if non-empty,
// takes the one after. Slots are never shared between groups. A
// PipelineLayout is immutable.
type PipelineLayout struct {
	limits         binding.Limits
	groups         []*BindGroupLayout
	nonSamplerSlot []int32
	samplerSlot    []int32
	parameters     []RootParameter
}

// NewPipelineLayout assembles groups, indexed by group number. A nil entry
// is an empty group.
func NewPipelineLayout(groups []*BindGroupLayout, limits binding.Limits) (*PipelineLayout, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	if uint32(len(groups)) > limits.MaxBindGroups {
		return nil, binding.NewError(binding.ErrCapability,
			fmt.Sprintf("%d bind groups exceed the maximum of %d", len(groups), limits.MaxBindGroups))
	}

	p := &PipelineLayout{
		limits:         limits,
		groups:         append([]*BindGroupLayout(nil), groups...),
		nonSamplerSlot: make([]int32, len(groups)),
		samplerSlot:    make([]int32, len(groups)),
	}

	var next int32
	for g, bgl := range groups {
		p.nonSamplerSlot[g] = -1
		p.samplerSlot[g] = -1
		if bgl == nil {
			continue
		}
		if bgl.Limits().MaxBindingsPerGroup != limits.MaxBindingsPerGroup {
			return nil, binding.NewError(binding.ErrTranslationInvariant,
				fmt.Sprintf("group %d was packed with %d bindings per group, pipeline uses %d",
					g, bgl.Limits().MaxBindingsPerGroup, limits.MaxBindingsPerGroup))
		}
		group := uint32(g)
		if bgl.NonSamplerTableSize() > 0 {
			p.nonSamplerSlot[g] = next
			next++
			p.parameters = append(p.parameters, p.rootParameter(group, bgl, binding.HeapNonSampler))
		}
		if bgl.SamplerTableSize() > 0 {
			p.samplerSlot[g] = next
			next++
			p.parameters = append(p.parameters, p.rootParameter(group, bgl, binding.HeapSampler))
		}
	}
	return p, nil
}

func (p *PipelineLayout) rootParameter(group uint32, bgl *BindGroupLayout, heap binding.HeapKind) RootParameter {
	shift := group * p.limits.MaxBindingsPerGroup
	ranges := bgl.Ranges(heap)
	for i := range ranges {
		ranges[i].BaseRegister += shift
	}
	return RootParameter{
		Group:      group,
		Heap:       heap,
		Ranges:     ranges,
		Visibility: bgl.Visibility(heap),
	}
}

// Limits returns the pipeline limits.
func (p *PipelineLayout) Limits() binding.Limits {
	return p.limits
}

// GroupCount returns the number of group entries, including empty ones.
func (p *PipelineLayout) GroupCount() uint32 {
	return uint32(len(p.groups))
}

// Group returns the layout bound at a group index, or nil.
func (p *PipelineLayout) Group(group uint32) *BindGroupLayout {
	if group >= uint32(len(p.groups)) {
		return nil
	}
	return p.groups[group]
}

// NonSamplerSlot returns the root parameter slot of a group's non-sampler table.
func (p *PipelineLayout) NonSamplerSlot(group uint32) (uint32, bool) {
	return slotAt(p.nonSamplerSlot, group)
}

// SamplerSlot returns the root parameter slot of a group's sampler table.
func (p *PipelineLayout) SamplerSlot(group uint32) (uint32, bool) {
	return slotAt(p.samplerSlot, group)
}

// Slot returns the root parameter slot of the table holding heap.
func (p *PipelineLayout) Slot(group uint32, heap binding.HeapKind) (uint32, bool) {
	if heap == binding.HeapSampler {
		return p.SamplerSlot(group)
	}
	return p.NonSamplerSlot(group)
}

func slotAt(slots []int32, group uint32) (uint32, bool) {
	if group >= uint32(len(slots)) || slots[group] < 0 {
		return 0, false
	}
	return uint32(slots[group]), true
}

// Parameters returns the root parameters in slot order.
func (p *PipelineLayout) Parameters() []RootParameter {
	out := make([]RootParameter, len(p.parameters))
	for i, rp := range p.parameters {
		rp.Ranges = append([]DescriptorRange(nil), rp.Ranges...)
		out[i] = rp
	}
	return out
}

// RegisterOf returns the shader register and kind of a used binding.
func (p *PipelineLayout) RegisterOf(loc binding.Location) (uint32, binding.Kind, bool) {
	bgl := p.Group(loc.Group)
	if bgl == nil {
		return 0, 0, false
	}
	info, ok := bgl.Lookup(loc.Binding)
	if !ok {
		return 0, 0, false
	}
	return binding.Register(loc, p.limits), info.Kind, true
}
