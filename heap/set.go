// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package heap

import (
	"fmt"

	"github.com/gogpu/bindmap/binding"
)

// Set pairs a non-sampler heap and a sampler heap with allocation cursors.
// One Set serves one encoding context.
//
// Set is not safe for concurrent use.
type Set struct {
	heaps  [binding.HeapCount]*Heap
	cursor [binding.HeapCount]uint32
	epoch  uint64
}

// NewSet creates a heap set with the given capacities.
func NewSet(nonSamplerCapacity, samplerCapacity uint32) (*Set, error) {
	s := &Set{epoch: nextEpoch()}
	caps := [binding.HeapCount]uint32{
		binding.HeapNonSampler: nonSamplerCapacity,
		binding.HeapSampler:    samplerCapacity,
	}
	for kind, c := range caps {
		h, err := NewHeap(binding.HeapKind(kind), c)
		if err != nil {
			return nil, err
		}
		s.heaps[kind] = h
	}
	return s, nil
}

// Heap returns the heap of a kind.
func (s *Set) Heap(kind binding.HeapKind) *Heap {
	if kind >= binding.HeapCount {
		return nil
	}
	return s.heaps[kind]
}

// Epoch identifies the current contents of the set.
func (s *Set) Epoch() uint64 {
	return s.epoch
}

// Cursor returns the next free index of a heap.
func (s *Set) Cursor(kind binding.HeapKind) uint32 {
	if kind >= binding.HeapCount {
		return 0
	}
	return s.cursor[kind]
}

// WriteDescriptor implements Writer.
func (s *Set) WriteDescriptor(kind binding.HeapKind, index uint32, d Descriptor) error {
	h := s.Heap(kind)
	if h == nil {
		return fmt.Errorf("heap: unknown heap kind %d", kind)
	}
	return h.Write(index, d)
}

// Bind makes g resident and returns the heap indices of its two tables and
// the number of descriptors copied. A group already resident in the
// current epoch is not copied again.
func (s *Set) Bind(g *BindGroup) (nonSamplerBase, samplerBase uint32, copies int, err error) {
	if g.Written() && g.Epoch() == s.epoch {
		return g.NonSamplerOffset(), g.SamplerOffset(), 0, nil
	}

	l := g.Layout()
	need := [binding.HeapCount]uint32{
		binding.HeapNonSampler: l.NonSamplerTableSize(),
		binding.HeapSampler:    l.SamplerTableSize(),
	}
	for kind, n := range need {
		free := s.heaps[kind].Capacity() - s.cursor[kind]
		if n > free {
			return 0, 0, 0, fmt.Errorf("%w: group needs %d %s descriptors, %d free",
				ErrHeapFull, n, binding.HeapKind(kind), free)
		}
	}

	copies, err = g.Record(s, &s.cursor[binding.HeapNonSampler], &s.cursor[binding.HeapSampler], s.epoch)
	if err != nil {
		return 0, 0, copies, err
	}
	return g.NonSamplerOffset(), g.SamplerOffset(), copies, nil
}

// Reset empties both heaps, rewinds the cursors and starts a new epoch.
// Every group must be bound again afterwards.
func (s *Set) Reset() {
	for kind := range s.heaps {
		s.heaps[kind].Reset()
		s.cursor[kind] = 0
	}
	s.epoch = nextEpoch()
}
