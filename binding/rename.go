// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package binding

import (
	"fmt"

	"github.com/gogpu/bindmap/ir"
)

// BindingName returns the flat name <prefix>_binding_<group>_<binding>.
func BindingName(prefix string, loc Location) string {
	return fmt.Sprintf("%s_binding_%d_%d", prefix, loc.Group, loc.Binding)
}

// Register returns binding + group*MaxBindingsPerGroup.
func Register(loc Location, limits Limits) uint32 {
	return loc.Binding + loc.Group*limits.MaxBindingsPerGroup
}

// Renamer supplies the native name of a used binding.
type Renamer interface {
	Name(loc Location) (string, bool)
}

// NamePlan assigns flat names to the used bindings of a table.
type NamePlan struct {
	prefix string
	names  map[Location]string
	order  []Location
}

// NewNamePlan names every used binding in ascending location order.
func NewNamePlan(table *Table, prefix string) (*NamePlan, error) {
	if !isIdentifier(prefix) {
		return nil, NewError(ErrUnsupportedCombination, fmt.Sprintf("name prefix %q is not an identifier", prefix))
	}
	p := &NamePlan{prefix: prefix, names: make(map[Location]string)}
	owner := make(map[string]Location)
	for _, info := range table.Used() {
		name := BindingName(prefix, info.Location)
		if other, ok := owner[name]; ok {
			return nil, NewLocationError(ErrTranslationInvariant, info.Location,
				"name %q already assigned to %s", name, other)
		}
		owner[name] = info.Location
		p.names[info.Location] = name
		p.order = append(p.order, info.Location)
	}
	return p, nil
}

// Prefix returns the prefix used for generated names.
func (p *NamePlan) Prefix() string {
	return p.prefix
}

// Name returns the flat name of a used binding.
func (p *NamePlan) Name(loc Location) (string, bool) {
	name, ok := p.names[loc]
	return name, ok
}

// Locations returns the named locations in ascending order.
func (p *NamePlan) Locations() []Location {
	return append([]Location(nil), p.order...)
}

// RegisterPlan assigns flattened register numbers to the used bindings of a table.
type RegisterPlan struct {
	limits Limits
	regs   map[Location]uint32
	order  []Location
}

// NewRegisterPlan numbers every used binding in ascending location order.
func NewRegisterPlan(table *Table) (*RegisterPlan, error) {
	limits := table.Limits()
	p := &RegisterPlan{limits: limits, regs: make(map[Location]uint32)}
	owner := make(map[uint32]Location)
	for _, info := range table.Used() {
		reg := Register(info.Location, limits)
		if other, ok := owner[reg]; ok {
			return nil, NewLocationError(ErrTranslationInvariant, info.Location,
				"register %d already assigned to %s", reg, other)
		}
		owner[reg] = info.Location
		p.regs[info.Location] = reg
		p.order = append(p.order, info.Location)
	}
	return p, nil
}

// Register returns the register of a used binding.
func (p *RegisterPlan) Register(loc Location) (uint32, bool) {
	reg, ok := p.regs[loc]
	return reg, ok
}

// Locations returns the numbered locations in ascending order.
func (p *RegisterPlan) Locations() []Location {
	return append([]Location(nil), p.order...)
}

// Limits returns the limits the registers were derived from.
func (p *RegisterPlan) Limits() Limits {
	return p.limits
}

// Rewrite returns a copy of module with binding decorations stripped from
// every resource global. When renamer is non-nil, each used global takes the
// name it supplies. The input module is not modified.
func Rewrite(module *ir.Module, table *Table, renamer Renamer) (*ir.Module, error) {
	if module == nil || table == nil {
		return nil, NewError(ErrTranslationInvariant, "module and table are required")
	}
	out := module.Clone()

	if renamer != nil {
		for _, info := range table.Used() {
			if int(info.Global) >= len(out.GlobalVariables) {
				return nil, NewLocationError(ErrTranslationInvariant, info.Location,
					"global %d does not exist", info.Global)
			}
			name, ok := renamer.Name(info.Location)
			if !ok {
				return nil, NewLocationError(ErrTranslationInvariant, info.Location, "no name assigned")
			}
			out.GlobalVariables[info.Global].Name = name
		}
	}

	owner := make(map[string]int)
	for i := range out.GlobalVariables {
		gv := &out.GlobalVariables[i]
		gv.Binding = nil
		if gv.Name == "" {
			continue
		}
		if j, ok := owner[gv.Name]; ok {
			return nil, NewError(ErrTranslationInvariant,
				fmt.Sprintf("globals %d and %d both named %q after renaming", j, i, gv.Name))
		}
		owner[gv.Name] = i
	}
	return out, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
