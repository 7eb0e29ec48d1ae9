// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package heap

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/bindmap/binding"
)

var (
	// ErrHeapFull is returned when a bind group's tables do not fit in the
	// space left in a heap.
	ErrHeapFull = errors.New("heap: descriptor heap full")

	// ErrOutOfRange is returned when a write targets a slot past the heap
	// capacity.
	ErrOutOfRange = errors.New("heap: descriptor index out of range")
)

// epochs hands out heap epochs. Epochs are unique across every heap of the
// process, so a bind group recorded into one heap is never mistaken for one
// recorded into another.
var epochs atomic.Uint64

func nextEpoch() uint64 {
	return epochs.Add(1)
}

// Descriptor is a CPU-side record of one resource view or sampler.
type Descriptor struct {
	Kind binding.Kind

	// Resource identifies the buffer, texture or sampler object.
	Resource string

	// Offset and Size select a buffer range. Unused for textures and samplers.
	Offset uint64
	Size   uint64
}

// Writer stores a descriptor at an absolute index of the heap of its kind.
type Writer interface {
	WriteDescriptor(heap binding.HeapKind, index uint32, d Descriptor) error
}

// Heap is a fixed-capacity shadow descriptor heap of one heap kind.
//
// Heap is not safe for concurrent use.
type Heap struct {
	kind   binding.HeapKind
	slots  []Descriptor
	filled []bool
	epoch  uint64
}

// NewHeap creates an empty heap holding capacity descriptors.
func NewHeap(kind binding.HeapKind, capacity uint32) (*Heap, error) {
	if kind >= binding.HeapCount {
		return nil, fmt.Errorf("heap: unknown heap kind %d", kind)
	}
	return &Heap{
		kind:   kind,
		slots:  make([]Descriptor, capacity),
		filled: make([]bool, capacity),
		epoch:  nextEpoch(),
	}, nil
}

// Kind returns the heap kind.
func (h *Heap) Kind() binding.HeapKind {
	return h.kind
}

// Capacity returns the number of descriptor slots.
func (h *Heap) Capacity() uint32 {
	return uint32(len(h.slots))
}

// Epoch identifies the current contents of the heap. It changes on Reset.
func (h *Heap) Epoch() uint64 {
	return h.epoch
}

// Write stores d at index.
func (h *Heap) Write(index uint32, d Descriptor) error {
	if index >= uint32(len(h.slots)) {
		return fmt.Errorf("%w: %d >= %d in %s heap", ErrOutOfRange, index, len(h.slots), h.kind)
	}
	if d.Kind >= binding.KindCount || d.Kind.Heap() != h.kind {
		return binding.NewError(binding.ErrTranslationInvariant,
			fmt.Sprintf("%s descriptor written to %s heap", d.Kind, h.kind))
	}
	h.slots[index] = d
	h.filled[index] = true
	return nil
}

// Read returns the descriptor at index, if one was written since the last
// Reset.
func (h *Heap) Read(index uint32) (Descriptor, bool) {
	if index >= uint32(len(h.slots)) || !h.filled[index] {
		return Descriptor{}, false
	}
	return h.slots[index], true
}

// Reset discards all descriptors and moves the heap to a new epoch.
func (h *Heap) Reset() {
	clear(h.slots)
	clear(h.filled)
	h.epoch = nextEpoch()
}
