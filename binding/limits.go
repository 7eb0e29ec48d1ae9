// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package binding

import "fmt"

// Default backend limits.
const (
	DefaultMaxBindGroups       = 4
	DefaultMaxBindingsPerGroup = 16
)

// MaxBindingSlots caps MaxBindGroups * MaxBindingsPerGroup. Tables and
// layouts are sized densely by the limits.
const MaxBindingSlots = 1 << 16

// Limits bounds the abstract binding space a backend can represent.
type Limits struct {
	// MaxBindGroups is the number of bind groups a pipeline may use.
	MaxBindGroups uint32

	// MaxBindingsPerGroup is the number of binding slots in one group.
	// Table backends also use it as the per-group register stride.
	MaxBindingsPerGroup uint32
}

// DefaultLimits returns 4 groups of 16 bindings.
func DefaultLimits() Limits {
	return Limits{
		MaxBindGroups:       DefaultMaxBindGroups,
		MaxBindingsPerGroup: DefaultMaxBindingsPerGroup,
	}
}

// Validate rejects limits that describe an empty binding space or more than
// MaxBindingSlots slots.
func (l Limits) Validate() error {
	if l.MaxBindGroups == 0 || l.MaxBindingsPerGroup == 0 {
		return NewError(ErrCapability, fmt.Sprintf("limits must be non-zero, got %d groups x %d bindings",
			l.MaxBindGroups, l.MaxBindingsPerGroup))
	}
	if uint64(l.MaxBindGroups)*uint64(l.MaxBindingsPerGroup) > MaxBindingSlots {
		return NewError(ErrCapability, fmt.Sprintf("limits %d x %d exceed %d binding slots",
			l.MaxBindGroups, l.MaxBindingsPerGroup, MaxBindingSlots))
	}
	return nil
}

// Contains reports whether loc lies inside the limits.
func (l Limits) Contains(loc Location) bool {
	return loc.Group < l.MaxBindGroups && loc.Binding < l.MaxBindingsPerGroup
}

// Check returns a capability error when loc lies outside the limits.
func (l Limits) Check(loc Location) error {
	if loc.Group >= l.MaxBindGroups {
		return NewLocationError(ErrCapability, loc, "group %d exceeds the maximum of %d bind groups",
			loc.Group, l.MaxBindGroups)
	}
	if loc.Binding >= l.MaxBindingsPerGroup {
		return NewLocationError(ErrCapability, loc, "binding %d exceeds the maximum of %d bindings per group",
			loc.Binding, l.MaxBindingsPerGroup)
	}
	return nil
}
