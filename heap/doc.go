// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package heap materializes bind groups into descriptor heaps.
//
// Heaps are CPU shadows of the two shader-visible descriptor heaps of a
// table-based backend. Each heap carries an epoch that changes whenever it
// is reset. A BindGroup remembers the epoch it was last recorded at and
// skips the copy when asked to record again into the same epoch:
//
//	set, _ := heap.NewSet(1024, 64)
//	base, samplerBase, copies, err := set.Bind(group)
//
// Binding the same group twice before set.Reset copies nothing the second
// time and returns the same bases.
package heap
