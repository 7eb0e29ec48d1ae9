// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package binding

import "fmt"

// Location identifies one binding slot: @group(Group) @binding(Binding).
type Location struct {
	Group   uint32
	Binding uint32
}

// Compare orders locations by group, then binding.
// Returns -1, 0 or +1.
func Compare(a, b Location) int {
	switch {
	case a.Group < b.Group:
		return -1
	case a.Group > b.Group:
		return 1
	case a.Binding < b.Binding:
		return -1
	case a.Binding > b.Binding:
		return 1
	default:
		return 0
	}
}

// Less reports whether a sorts before b.
func (l Location) Less(b Location) bool {
	return Compare(l, b) < 0
}

// String returns the WGSL-style decoration pair.
func (l Location) String() string {
	return fmt.Sprintf("@group(%d) @binding(%d)", l.Group, l.Binding)
}
