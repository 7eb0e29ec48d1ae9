// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package layout

import (
	"fmt"
	"sort"

	"github.com/gogpu/bindmap/binding"
)

// DescriptorRange is a run of descriptors of one kind that occupies
// consecutive table slots and consecutive shader registers.
type DescriptorRange struct {
	Kind binding.Kind

	// BaseRegister is the first register of the run. Inside a
	// BindGroupLayout it is the binding number; root parameters shift it by
	// group*MaxBindingsPerGroup.
	BaseRegister uint32

	// Count is the number of descriptors in the run.
	Count uint32

	// TableOffset is the slot of the first descriptor within its table.
	TableOffset uint32
}

// BindGroupLayout packs the used bindings of one group into a non-sampler
// descriptor table and a sampler table.
//
// Bindings are packed by kind in ascending binding order. The non-sampler
// table holds uniform buffers, then storage resources, then sampled
// textures; the sampler table holds samplers. A BindGroupLayout is immutable.
type BindGroupLayout struct {
	limits           binding.Limits
	bindingOffsets   []uint32
	hasOffset        []bool
	descriptorCounts [binding.KindCount]uint32
	ranges           [binding.KindCount][]DescriptorRange
	used             []binding.Info
	tableSize        [binding.HeapCount]uint32
}

// NewBindGroupLayout packs infos. Unused infos are ignored. Binding numbers
// must be unique and below limits.MaxBindingsPerGroup; the group recorded in
// each Location is not inspected.
func NewBindGroupLayout(infos []binding.Info, limits binding.Limits) (*BindGroupLayout, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}

	used := make([]binding.Info, 0, len(infos))
	seen := make(map[uint32]bool, len(infos))
	for _, info := range infos {
		if !info.Used {
			continue
		}
		b := info.Location.Binding
		if b >= limits.MaxBindingsPerGroup {
			return nil, binding.NewLocationError(binding.ErrCapability, info.Location,
				"binding %d exceeds the maximum of %d bindings per group", b, limits.MaxBindingsPerGroup)
		}
		if info.Kind >= binding.KindCount {
			return nil, binding.NewLocationError(binding.ErrUnsupportedCombination, info.Location,
				"unknown descriptor kind %s", info.Kind)
		}
		if k, ok := info.Resource.Kind(); ok && k != info.Kind {
			return nil, binding.NewLocationError(binding.ErrUnsupportedCombination, info.Location,
				"%s resource in a %s range", info.Resource, info.Kind)
		}
		if seen[b] {
			return nil, binding.NewLocationError(binding.ErrCapability, info.Location,
				"binding %d declared twice", b)
		}
		seen[b] = true
		used = append(used, info)
	}
	sort.Slice(used, func(i, j int) bool { return used[i].Location.Binding < used[j].Location.Binding })

	l := &BindGroupLayout{
		limits:         limits,
		bindingOffsets: make([]uint32, limits.MaxBindingsPerGroup),
		hasOffset:      make([]bool, limits.MaxBindingsPerGroup),
		used:           used,
	}

	for _, kind := range binding.Kinds {
		heap := kind.Heap()
		start := l.tableSize[heap]
		var index uint32
		for _, info := range used {
			if info.Kind != kind {
				continue
			}
			b := info.Location.Binding
			l.bindingOffsets[b] = start + index
			l.hasOffset[b] = true

			ranges := l.ranges[kind]
			if n := len(ranges); n > 0 && ranges[n-1].BaseRegister+ranges[n-1].Count == b {
				ranges[n-1].Count++
			} else {
				ranges = append(ranges, DescriptorRange{
					Kind:         kind,
					BaseRegister: b,
					Count:        1,
					TableOffset:  start + index,
				})
			}
			l.ranges[kind] = ranges
			index++
		}
		l.descriptorCounts[kind] = index
		l.tableSize[heap] += index
	}
	return l, nil
}

// Limits returns the limits the layout was packed with.
func (l *BindGroupLayout) Limits() binding.Limits {
	return l.limits
}

// BindingOffsets returns the table offset of every binding slot. Entries for
// unused bindings are zero and must not be read; see BindingOffset.
func (l *BindGroupLayout) BindingOffsets() []uint32 {
	return append([]uint32(nil), l.bindingOffsets...)
}

// BindingOffset returns the table offset of a used binding.
func (l *BindGroupLayout) BindingOffset(b uint32) (uint32, bool) {
	if b >= uint32(len(l.bindingOffsets)) || !l.hasOffset[b] {
		return 0, false
	}
	return l.bindingOffsets[b], true
}

// DescriptorCount returns the number of descriptors of one kind.
func (l *BindGroupLayout) DescriptorCount(kind binding.Kind) uint32 {
	if kind >= binding.KindCount {
		return 0
	}
	return l.descriptorCounts[kind]
}

// DescriptorCounts returns the per-kind descriptor counts.
func (l *BindGroupLayout) DescriptorCounts() [binding.KindCount]uint32 {
	return l.descriptorCounts
}

// NonSamplerTableSize returns the size of the uniform/storage/texture table.
func (l *BindGroupLayout) NonSamplerTableSize() uint32 {
	return l.tableSize[binding.HeapNonSampler]
}

// SamplerTableSize returns the size of the sampler table.
func (l *BindGroupLayout) SamplerTableSize() uint32 {
	return l.tableSize[binding.HeapSampler]
}

// TableSize returns the size of the table stored in heap.
func (l *BindGroupLayout) TableSize(heap binding.HeapKind) uint32 {
	if heap >= binding.HeapCount {
		return 0
	}
	return l.tableSize[heap]
}

// KindRanges returns the ranges of one kind in register order.
func (l *BindGroupLayout) KindRanges(kind binding.Kind) []DescriptorRange {
	if kind >= binding.KindCount {
		return nil
	}
	return append([]DescriptorRange(nil), l.ranges[kind]...)
}

// Ranges returns every range stored in heap, in table order.
func (l *BindGroupLayout) Ranges(heap binding.HeapKind) []DescriptorRange {
	var out []DescriptorRange
	for _, kind := range binding.Kinds {
		if kind.Heap() == heap {
			out = append(out, l.ranges[kind]...)
		}
	}
	return out
}

// Used returns the used infos in ascending binding order.
func (l *BindGroupLayout) Used() []binding.Info {
	return append([]binding.Info(nil), l.used...)
}

// Lookup returns the used info for a binding number.
func (l *BindGroupLayout) Lookup(b uint32) (binding.Info, bool) {
	for _, info := range l.used {
		if info.Location.Binding == b {
			return info, true
		}
	}
	return binding.Info{}, false
}

// Visibility returns the union of stages over the bindings stored in heap.
func (l *BindGroupLayout) Visibility(heap binding.HeapKind) binding.Stages {
	var s binding.Stages
	for _, info := range l.used {
		if info.Kind.Heap() == heap {
			s |= info.Stages
		}
	}
	return s
}

// String summarizes the layout for logs.
func (l *BindGroupLayout) String() string {
	return fmt.Sprintf("BindGroupLayout{cbv=%d uav=%d srv=%d sampler=%d}",
		l.descriptorCounts[binding.KindUniformBuffer],
		l.descriptorCounts[binding.KindStorageResource],
		l.descriptorCounts[binding.KindSampledTexture],
		l.descriptorCounts[binding.KindSampler])
}
