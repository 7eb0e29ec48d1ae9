// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package binding

import (
	"fmt"

	"github.com/gogpu/bindmap/ir"
)

// Extract builds the binding table of one entry point.
//
// Every global with a resource binding is recorded; those reached from the
// entry point, directly or through calls, are marked Used. A location outside
// limits is a capability error even when unused, and two used globals at one
// location are rejected. The module is not modified.
func Extract(module *ir.Module, entryPoint string, limits Limits) (*Table, error) {
	if module == nil {
		return nil, NewError(ErrTranslationInvariant, "module is nil")
	}
	epIndex, err := module.EntryPointIndex(entryPoint)
	if err != nil {
		return nil, fmt.Errorf("binding: %w", err)
	}
	usage, err := ir.AnalyzeEntryPoint(module, epIndex)
	if err != nil {
		return nil, fmt.Errorf("binding: %w", err)
	}
	stage := module.EntryPoints[epIndex].Stage

	table, err := NewTable(limits)
	if err != nil {
		return nil, err
	}

	for i, gv := range module.GlobalVariables {
		if gv.Binding == nil {
			continue
		}
		handle := ir.GlobalVariableHandle(i)
		loc := Location{Group: gv.Binding.Group, Binding: gv.Binding.Binding}
		if err := limits.Check(loc); err != nil {
			return nil, err
		}
		kind, err := ClassifyGlobal(module, handle)
		if err != nil {
			return nil, err
		}

		info := Info{
			Location: loc,
			Kind:     kind,
			Resource: ClassifyResource(module, handle),
			Used:     usage.Uses(handle),
			Global:   handle,
		}
		if info.Used {
			info.Stages = StageBit(stage)
		}

		if prev, declared := table.At(loc); declared {
			switch {
			case prev.Used && info.Used:
				return nil, NewLocationError(ErrCapability, loc, "globals %q and %q both use this slot",
					module.GlobalVariables[prev.Global].Name, gv.Name)
			case prev.Used || !info.Used:
				continue
			}
		}
		if err := table.Set(info); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// MergeStages unions the tables of several pipeline stages.
//
// A location declared by more than one stage must agree on its kind; a
// disagreement is a capability error. Used flags and stages are OR-ed. The
// Global handle of a merged entry refers to the first table declaring it.
func MergeStages(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, NewError(ErrTranslationInvariant, "no stage tables to merge")
	}
	limits := tables[0].Limits()
	merged, err := NewTable(limits)
	if err != nil {
		return nil, err
	}

	for stageIdx, t := range tables {
		if t.Limits() != limits {
			return nil, NewError(ErrTranslationInvariant, fmt.Sprintf("stage %d uses limits %+v, want %+v",
				stageIdx, t.Limits(), limits))
		}
		for _, info := range t.Declared() {
			prev, declared := merged.At(info.Location)
			if !declared {
				if err := merged.Set(info); err != nil {
					return nil, err
				}
				continue
			}
			if prev.Kind != info.Kind {
				return nil, NewLocationError(ErrCapability, info.Location,
					"stages disagree on the resource kind: %s vs %s", prev.Kind, info.Kind)
			}
			prev.Used = prev.Used || info.Used
			prev.Stages |= info.Stages
			if err := merged.Set(prev); err != nil {
				return nil, err
			}
		}
	}
	return merged, nil
}
