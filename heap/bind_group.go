// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package heap

import (
	"sort"

	"github.com/gogpu/bindmap/binding"
	"github.com/gogpu/bindmap/layout"
)

// Entry binds a descriptor to a binding number of a group.
type Entry struct {
	Binding    uint32
	Descriptor Descriptor
}

// BindGroup is a set of resources laid out by a BindGroupLayout, recorded
// into descriptor heaps at most once per heap epoch.
//
// A BindGroup is not safe for concurrent use.
type BindGroup struct {
	layout  *layout.BindGroupLayout
	entries []Entry

	nonSamplerOffset uint32
	samplerOffset    uint32
	epoch            uint64
	written          bool
}

// NewBindGroup checks that entries provide exactly one descriptor of the
// right kind for every binding the layout uses.
func NewBindGroup(l *layout.BindGroupLayout, entries []Entry) (*BindGroup, error) {
	if l == nil {
		return nil, binding.NewError(binding.ErrTranslationInvariant, "bind group has no layout")
	}
	seen := make(map[uint32]bool, len(entries))
	for _, e := range entries {
		loc := binding.Location{Binding: e.Binding}
		info, ok := l.Lookup(e.Binding)
		if !ok {
			return nil, binding.NewLocationError(binding.ErrUnsupportedCombination, loc,
				"resource %q has no slot in the layout", e.Descriptor.Resource)
		}
		if info.Kind != e.Descriptor.Kind {
			return nil, binding.NewLocationError(binding.ErrUnsupportedCombination, loc,
				"resource %q is a %s, layout expects a %s", e.Descriptor.Resource, e.Descriptor.Kind, info.Kind)
		}
		if seen[e.Binding] {
			return nil, binding.NewLocationError(binding.ErrUnsupportedCombination, loc,
				"binding supplied twice")
		}
		seen[e.Binding] = true
	}
	for _, info := range l.Used() {
		if !seen[info.Location.Binding] {
			return nil, binding.NewLocationError(binding.ErrUnsupportedCombination, info.Location,
				"no resource for %s binding", info.Kind)
		}
	}

	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Binding < sorted[j].Binding })
	return &BindGroup{layout: l, entries: sorted}, nil
}

// Layout returns the group layout.
func (g *BindGroup) Layout() *layout.BindGroupLayout {
	return g.layout
}

// Entries returns the resources in ascending binding order.
func (g *BindGroup) Entries() []Entry {
	return append([]Entry(nil), g.entries...)
}

// Record writes the group's descriptors at *nonSamplerOffset and
// *samplerOffset and advances both by the group's table sizes.
//
// If the group was already recorded at epoch, Record returns 0 and leaves
// the offsets alone; use NonSamplerOffset and SamplerOffset to find the
// earlier copy. Otherwise it returns the number of descriptors written. A
// write error is returned unchanged and the group stays in its previous
// state.
func (g *BindGroup) Record(w Writer, nonSamplerOffset, samplerOffset *uint32, epoch uint64) (int, error) {
	if g.written && g.epoch == epoch {
		return 0, nil
	}

	bases := [binding.HeapCount]uint32{
		binding.HeapNonSampler: *nonSamplerOffset,
		binding.HeapSampler:    *samplerOffset,
	}
	copies := 0
	for _, e := range g.entries {
		off, ok := g.layout.BindingOffset(e.Binding)
		if !ok {
			return copies, binding.NewLocationError(binding.ErrTranslationInvariant,
				binding.Location{Binding: e.Binding}, "binding has no table offset")
		}
		heap := e.Descriptor.Kind.Heap()
		if err := w.WriteDescriptor(heap, bases[heap]+off, e.Descriptor); err != nil {
			return copies, err
		}
		copies++
	}

	g.nonSamplerOffset = bases[binding.HeapNonSampler]
	g.samplerOffset = bases[binding.HeapSampler]
	g.epoch = epoch
	g.written = true
	*nonSamplerOffset += g.layout.NonSamplerTableSize()
	*samplerOffset += g.layout.SamplerTableSize()
	return copies, nil
}

// NonSamplerOffset returns the heap index of the group's non-sampler table
// from the last successful Record.
func (g *BindGroup) NonSamplerOffset() uint32 {
	return g.nonSamplerOffset
}

// SamplerOffset returns the heap index of the group's sampler table from
// the last successful Record.
func (g *BindGroup) SamplerOffset() uint32 {
	return g.samplerOffset
}

// Epoch returns the epoch of the last successful Record.
func (g *BindGroup) Epoch() uint64 {
	return g.epoch
}

// Written reports whether the group has been recorded at least once.
func (g *BindGroup) Written() bool {
	return g.written
}
