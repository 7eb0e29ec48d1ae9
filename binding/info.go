// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package binding

import "github.com/gogpu/bindmap/ir"

// Info describes one declared binding slot.
type Info struct {
	Location Location
	Kind     Kind

	// Resource refines Kind. It must be ResourcePlain or a resource of Kind.
	Resource Resource

	// Used is false for slots declared but never reached from the entry
	// point. Downstream passes skip them.
	Used bool

	// Global is the declaring global variable in the source module.
	Global ir.GlobalVariableHandle

	// Stages lists the shader stages that use the binding.
	Stages Stages
}

// Table stores Infos densely by [group][binding] within Limits.
type Table struct {
	limits   Limits
	infos    []Info
	declared []bool
	byGlobal map[ir.GlobalVariableHandle]Location
}

// NewTable creates an empty table sized by limits.
func NewTable(limits Limits) (*Table, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	n := int(limits.MaxBindGroups) * int(limits.MaxBindingsPerGroup)
	return &Table{
		limits:   limits,
		infos:    make([]Info, n),
		declared: make([]bool, n),
		byGlobal: make(map[ir.GlobalVariableHandle]Location),
	}, nil
}

// Limits returns the limits the table was sized with.
func (t *Table) Limits() Limits {
	return t.limits
}

func (t *Table) index(loc Location) int {
	return int(loc.Group)*int(t.limits.MaxBindingsPerGroup) + int(loc.Binding)
}

// At returns the Info at loc and whether the slot is declared.
func (t *Table) At(loc Location) (Info, bool) {
	if !t.limits.Contains(loc) {
		return Info{}, false
	}
	i := t.index(loc)
	return t.infos[i], t.declared[i]
}

// Set stores info at info.Location, replacing any previous entry.
func (t *Table) Set(info Info) error {
	if err := t.limits.Check(info.Location); err != nil {
		return err
	}
	i := t.index(info.Location)
	if t.declared[i] {
		if prev := t.infos[i].Global; t.byGlobal[prev] == info.Location {
			delete(t.byGlobal, prev)
		}
	}
	t.infos[i] = info
	t.declared[i] = true
	t.byGlobal[info.Global] = info.Location
	return nil
}

// ByGlobal returns the Info declared by a global variable.
func (t *Table) ByGlobal(handle ir.GlobalVariableHandle) (Info, bool) {
	loc, ok := t.byGlobal[handle]
	if !ok {
		return Info{}, false
	}
	return t.At(loc)
}

// Declared returns every declared Info in ascending location order.
func (t *Table) Declared() []Info {
	var out []Info
	for i, ok := range t.declared {
		if ok {
			out = append(out, t.infos[i])
		}
	}
	return out
}

// Used returns every used Info in ascending location order.
func (t *Table) Used() []Info {
	var out []Info
	for i, ok := range t.declared {
		if ok && t.infos[i].Used {
			out = append(out, t.infos[i])
		}
	}
	return out
}

// Group returns the used Infos of one group in ascending binding order.
func (t *Table) Group(group uint32) []Info {
	if group >= t.limits.MaxBindGroups {
		return nil
	}
	var out []Info
	start := t.index(Location{Group: group})
	for i := start; i < start+int(t.limits.MaxBindingsPerGroup); i++ {
		if t.declared[i] && t.infos[i].Used {
			out = append(out, t.infos[i])
		}
	}
	return out
}

// GroupCount returns one past the highest group holding a used binding.
func (t *Table) GroupCount() uint32 {
	used := t.Used()
	if len(used) == 0 {
		return 0
	}
	return used[len(used)-1].Location.Group + 1
}
