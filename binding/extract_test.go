// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package binding

import (
	"testing"

	"github.com/gogpu/bindmap/ir"
)

func TestExtract_Scenario(t *testing.T) {
	table, err := Extract(scenarioModule(), "fs_main", DefaultLimits())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := []struct {
		loc  Location
		kind Kind
	}{
		{Location{0, 0}, KindUniformBuffer},
		{Location{0, 1}, KindSampledTexture},
		{Location{0, 2}, KindSampler},
		{Location{1, 0}, KindUniformBuffer},
	}
	used := table.Used()
	if len(used) != len(want) {
		t.Fatalf("len(Used()) = %d, want %d", len(used), len(want))
	}
	for i, w := range want {
		if used[i].Location != w.loc || used[i].Kind != w.kind {
			t.Errorf("Used()[%d] = %v %s, want %v %s", i, used[i].Location, used[i].Kind, w.loc, w.kind)
		}
		if !used[i].Stages.Has(ir.StageFragment) {
			t.Errorf("Used()[%d] missing fragment stage", i)
		}
	}
	if got := table.GroupCount(); got != 2 {
		t.Errorf("GroupCount() = %d, want 2", got)
	}
	if got := len(table.Group(0)); got != 3 {
		t.Errorf("len(Group(0)) = %d, want 3", got)
	}
}

func TestExtract_UnusedBinding(t *testing.T) {
	globals := []ir.GlobalVariable{
		uniformGlobal("u0", 0, 0),
		storageGlobal("data", 0, 3),
	}
	table, err := Extract(fragmentModule(globals, []ir.GlobalVariableHandle{0}, nil), "", DefaultLimits())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	info, declared := table.At(Location{0, 3})
	if !declared {
		t.Fatal("storage binding should be declared")
	}
	if info.Used {
		t.Error("storage binding is never referenced but marked used")
	}
	if info.Kind != KindStorageResource {
		t.Errorf("Kind = %s, want StorageResource", info.Kind)
	}
	if got := len(table.Used()); got != 1 {
		t.Errorf("len(Used()) = %d, want 1", got)
	}
	if got := len(table.Declared()); got != 2 {
		t.Errorf("len(Declared()) = %d, want 2", got)
	}
}

func TestExtract_Classification(t *testing.T) {
	globals := []ir.GlobalVariable{
		{Name: "img", Space: ir.SpaceHandle, Binding: &ir.ResourceBinding{Group: 0, Binding: 0}, Type: tyStorageImage},
		storageGlobal("buf", 0, 1),
		textureGlobal("tex", 0, 2),
		samplerGlobal("samp", 0, 3),
		uniformGlobal("u", 0, 4),
	}
	table, err := Extract(fragmentModule(globals, []ir.GlobalVariableHandle{0, 1, 2, 3, 4}, nil), "fs_main", DefaultLimits())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []Kind{KindStorageResource, KindStorageResource, KindSampledTexture, KindSampler, KindUniformBuffer}
	for b, k := range want {
		info, _ := table.At(Location{0, uint32(b)})
		if info.Kind != k {
			t.Errorf("binding %d: Kind = %s, want %s", b, info.Kind, k)
		}
	}
	wantResources := []Resource{ResourceStorageImage, ResourcePlain, ResourcePlain, ResourcePlain, ResourcePlain}
	for b, r := range wantResources {
		info, _ := table.At(Location{0, uint32(b)})
		if info.Resource != r {
			t.Errorf("binding %d: Resource = %s, want %s", b, info.Resource, r)
		}
	}
}

func TestClassifyResource_DepthAndComparison(t *testing.T) {
	module := fragmentModule([]ir.GlobalVariable{textureGlobal("shadow", 0, 0), samplerGlobal("cmp", 0, 1)}, nil, nil)
	module.Types = append(module.Types,
		ir.Type{Inner: ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassDepth}},
		ir.Type{Inner: ir.SamplerType{Comparison: true}},
	)
	module.GlobalVariables[0].Type = ir.TypeHandle(len(module.Types) - 2)
	module.GlobalVariables[1].Type = ir.TypeHandle(len(module.Types) - 1)

	if got := ClassifyResource(module, 0); got != ResourceDepthTexture {
		t.Errorf("ClassifyResource(depth) = %s, want DepthTexture", got)
	}
	if got := ClassifyResource(module, 1); got != ResourceComparisonSampler {
		t.Errorf("ClassifyResource(comparison) = %s, want ComparisonSampler", got)
	}
	if got := ClassifyResource(module, 7); got != ResourcePlain {
		t.Errorf("ClassifyResource(missing) = %s, want Plain", got)
	}
}

func TestExtract_Boundary(t *testing.T) {
	limits := DefaultLimits()
	tests := []struct {
		name   string
		global ir.GlobalVariable
	}{
		{"group at max", uniformGlobal("u", limits.MaxBindGroups, 0)},
		{"binding at max", uniformGlobal("u", 0, limits.MaxBindingsPerGroup)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			module := fragmentModule([]ir.GlobalVariable{tt.global}, []ir.GlobalVariableHandle{0}, nil)
			_, err := Extract(module, "fs_main", limits)
			if !IsCapability(err) {
				t.Fatalf("Extract error = %v, want capability error", err)
			}
		})
	}

	t.Run("last slot fits", func(t *testing.T) {
		g := uniformGlobal("u", limits.MaxBindGroups-1, limits.MaxBindingsPerGroup-1)
		module := fragmentModule([]ir.GlobalVariable{g}, []ir.GlobalVariableHandle{0}, nil)
		if _, err := Extract(module, "fs_main", limits); err != nil {
			t.Fatalf("Extract: %v", err)
		}
	})
}

func TestExtract_SharedSlot(t *testing.T) {
	globals := []ir.GlobalVariable{
		uniformGlobal("a", 0, 0),
		uniformGlobal("b", 0, 0),
	}

	t.Run("both used", func(t *testing.T) {
		_, err := Extract(fragmentModule(globals, []ir.GlobalVariableHandle{0, 1}, nil), "fs_main", DefaultLimits())
		if !IsCapability(err) {
			t.Fatalf("Extract error = %v, want capability error", err)
		}
	})

	t.Run("one used", func(t *testing.T) {
		table, err := Extract(fragmentModule(globals, []ir.GlobalVariableHandle{1}, nil), "fs_main", DefaultLimits())
		if err != nil {
			t.Fatalf("Extract: %v", err)
		}
		info, _ := table.At(Location{0, 0})
		if info.Global != 1 || !info.Used {
			t.Errorf("slot owner = global %d used=%v, want global 1 used", info.Global, info.Used)
		}
		if _, ok := table.ByGlobal(0); ok {
			t.Error("unused global should not own the slot")
		}
	})
}

func TestExtract_DoesNotMutate(t *testing.T) {
	module := scenarioModule()
	if _, err := Extract(module, "fs_main", DefaultLimits()); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for i, gv := range module.GlobalVariables {
		if gv.Binding == nil {
			t.Errorf("global %d lost its binding decoration", i)
		}
	}
}

func TestExtract_Errors(t *testing.T) {
	if _, err := Extract(nil, "", DefaultLimits()); !IsTranslationInvariant(err) {
		t.Errorf("nil module error = %v, want translation invariant", err)
	}
	if _, err := Extract(scenarioModule(), "missing", DefaultLimits()); err == nil {
		t.Error("expected error for missing entry point")
	}
	if _, err := Extract(scenarioModule(), "", Limits{}); !IsCapability(err) {
		t.Errorf("zero limits error = %v, want capability error", err)
	}

	bad := []ir.GlobalVariable{{Name: "p", Space: ir.SpacePrivate, Binding: &ir.ResourceBinding{}, Type: tyVec4}}
	if _, err := Extract(fragmentModule(bad, nil, nil), "", DefaultLimits()); !IsUnsupportedCombination(err) {
		t.Errorf("private binding error = %v, want unsupported combination", err)
	}
}

func TestMergeStages(t *testing.T) {
	vs := scenarioModule()
	vs.EntryPoints[0].Stage = ir.StageVertex
	vsTable, err := Extract(vs, "", DefaultLimits())
	if err != nil {
		t.Fatalf("Extract vertex: %v", err)
	}

	fsGlobals := []ir.GlobalVariable{
		uniformGlobal("u0", 0, 0),
		uniformGlobal("extra", 2, 5),
	}
	fsTable, err := Extract(fragmentModule(fsGlobals, []ir.GlobalVariableHandle{0, 1}, nil), "", DefaultLimits())
	if err != nil {
		t.Fatalf("Extract fragment: %v", err)
	}

	merged, err := MergeStages(vsTable, fsTable)
	if err != nil {
		t.Fatalf("MergeStages: %v", err)
	}
	if got := len(merged.Used()); got != 5 {
		t.Errorf("len(Used()) = %d, want 5", got)
	}
	info, _ := merged.At(Location{0, 0})
	if !info.Stages.Has(ir.StageVertex) || !info.Stages.Has(ir.StageFragment) {
		t.Errorf("shared binding stages = %b, want vertex|fragment", info.Stages)
	}
	info, _ = merged.At(Location{2, 5})
	if info.Stages.Has(ir.StageVertex) {
		t.Errorf("fragment-only binding has vertex stage")
	}
}

func TestMergeStages_KindConflict(t *testing.T) {
	a, err := Extract(fragmentModule([]ir.GlobalVariable{uniformGlobal("u", 0, 1)}, []ir.GlobalVariableHandle{0}, nil), "", DefaultLimits())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	b, err := Extract(fragmentModule([]ir.GlobalVariable{textureGlobal("t", 0, 1)}, []ir.GlobalVariableHandle{0}, nil), "", DefaultLimits())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if _, err := MergeStages(a, b); !IsCapability(err) {
		t.Fatalf("MergeStages error = %v, want capability error", err)
	}
	if _, err := MergeStages(); err == nil {
		t.Error("expected error for empty merge")
	}
}

func TestLocation_Compare(t *testing.T) {
	tests := []struct {
		a, b Location
		want int
	}{
		{Location{0, 0}, Location{0, 0}, 0},
		{Location{0, 5}, Location{1, 0}, -1},
		{Location{1, 0}, Location{0, 5}, 1},
		{Location{2, 1}, Location{2, 3}, -1},
	}
	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
	if got := (Location{1, 2}).String(); got != "@group(1) @binding(2)" {
		t.Errorf("String() = %q", got)
	}
}

func TestKind_Heap(t *testing.T) {
	for _, k := range Kinds {
		want := HeapNonSampler
		if k == KindSampler {
			want = HeapSampler
		}
		if got := k.Heap(); got != want {
			t.Errorf("%s.Heap() = %s, want %s", k, got, want)
		}
	}
}

func TestLimits_Validate(t *testing.T) {
	tests := []struct {
		name   string
		limits Limits
		ok     bool
	}{
		{"default", DefaultLimits(), true},
		{"at cap", Limits{MaxBindGroups: 16, MaxBindingsPerGroup: MaxBindingSlots / 16}, true},
		{"zero groups", Limits{MaxBindingsPerGroup: 16}, false},
		{"zero bindings", Limits{MaxBindGroups: 4}, false},
		{"over cap", Limits{MaxBindGroups: 65536, MaxBindingsPerGroup: 65535}, false},
		{"one past cap", Limits{MaxBindGroups: 1, MaxBindingsPerGroup: MaxBindingSlots + 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.limits.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !IsCapability(err) {
				t.Errorf("Validate() = %v, want capability error", err)
			}
			if !tt.ok {
				if _, err := NewTable(tt.limits); err == nil {
					t.Error("NewTable accepted invalid limits")
				}
			}
		})
	}
}
