// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/bindmap/binding"
	"github.com/gogpu/bindmap/ir"
)

// RegisterType represents the HLSL register type.
type RegisterType uint8

const (
	// RegisterTypeB is for constant buffers (cbuffer).
	RegisterTypeB RegisterType = iota

	// RegisterTypeT is for textures and shader resource views.
	RegisterTypeT

	// RegisterTypeS is for samplers.
	RegisterTypeS

	// RegisterTypeU is for unordered access views (UAV).
	RegisterTypeU
)

// String returns the single-character register prefix.
func (rt RegisterType) String() string {
	switch rt {
	case RegisterTypeB:
		return "b"
	case RegisterTypeT:
		return "t"
	case RegisterTypeS:
		return "s"
	case RegisterTypeU:
		return "u"
	default:
		return "b"
	}
}

// RegisterTypeFor returns the register class a binding kind is declared in.
func RegisterTypeFor(kind binding.Kind) RegisterType {
	switch kind {
	case binding.KindStorageResource:
		return RegisterTypeU
	case binding.KindSampledTexture:
		return RegisterTypeT
	case binding.KindSampler:
		return RegisterTypeS
	default:
		return RegisterTypeB
	}
}

// BindTarget specifies the HLSL register binding for a resource.
// HLSL uses register(x#, space#) syntax for resource binding.
type BindTarget struct {
	// Type is the register class.
	Type RegisterType

	// Register is the register index within the space.
	Register uint32

	// Space is the register space (0-based). Shader Model 5.0 has no
	// spaces and only accepts 0.
	Space uint32
}

// String formats the target as an HLSL register clause using spaces.
func (bt BindTarget) String() string {
	return formatBinding(bt, true)
}

// NewBindingMap derives the register target of every used binding in table
// from its register plan. All targets live in space 0.
func NewBindingMap(table *binding.Table, plan *binding.RegisterPlan) (map[ir.GlobalVariableHandle]BindTarget, error) {
	m := make(map[ir.GlobalVariableHandle]BindTarget)
	for _, info := range table.Used() {
		reg, ok := plan.Register(info.Location)
		if !ok {
			return nil, WrapError(ErrMissingBinding, binding.NewLocationError(binding.ErrTranslationInvariant,
				info.Location, "no register planned"))
		}
		if _, dup := m[info.Global]; dup {
			return nil, NewError(ErrRegisterConflict, fmt.Sprintf("global %d appears at two locations", info.Global))
		}
		m[info.Global] = BindTarget{Type: RegisterTypeFor(info.Kind), Register: reg}
	}
	return m, nil
}
