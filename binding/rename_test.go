// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package binding

import (
	"strings"
	"testing"

	"github.com/gogpu/bindmap/ir"
)

func scenarioTable(t *testing.T) (*ir.Module, *Table) {
	t.Helper()
	module := scenarioModule()
	table, err := Extract(module, "fs_main", DefaultLimits())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return module, table
}

func TestNamePlan(t *testing.T) {
	_, table := scenarioTable(t)
	plan, err := NewNamePlan(table, "bm")
	if err != nil {
		t.Fatalf("NewNamePlan: %v", err)
	}
	want := map[Location]string{
		{0, 0}: "bm_binding_0_0",
		{0, 1}: "bm_binding_0_1",
		{0, 2}: "bm_binding_0_2",
		{1, 0}: "bm_binding_1_0",
	}
	for loc, name := range want {
		got, ok := plan.Name(loc)
		if !ok || got != name {
			t.Errorf("Name(%v) = %q, %v; want %q", loc, got, ok, name)
		}
	}
	locs := plan.Locations()
	for i := 1; i < len(locs); i++ {
		if !locs[i-1].Less(locs[i]) {
			t.Errorf("Locations() not ascending at %d: %v", i, locs)
		}
	}
}

func TestNamePlan_BadPrefix(t *testing.T) {
	_, table := scenarioTable(t)
	for _, prefix := range []string{"", "1bm", "b-m"} {
		if _, err := NewNamePlan(table, prefix); !IsUnsupportedCombination(err) {
			t.Errorf("NewNamePlan(%q) error = %v, want unsupported combination", prefix, err)
		}
	}
}

func TestRegisterPlan_Scenario(t *testing.T) {
	_, table := scenarioTable(t)
	plan, err := NewRegisterPlan(table)
	if err != nil {
		t.Fatalf("NewRegisterPlan: %v", err)
	}
	want := map[Location]uint32{
		{0, 0}: 0,
		{0, 1}: 1,
		{0, 2}: 2,
		{1, 0}: DefaultMaxBindingsPerGroup,
	}
	for loc, reg := range want {
		got, ok := plan.Register(loc)
		if !ok || got != reg {
			t.Errorf("Register(%v) = %d, %v; want %d", loc, got, ok, reg)
		}
	}
}

func TestRegister_Injective(t *testing.T) {
	limits := DefaultLimits()
	seen := make(map[uint32]Location)
	for g := uint32(0); g < limits.MaxBindGroups; g++ {
		for b := uint32(0); b < limits.MaxBindingsPerGroup; b++ {
			loc := Location{g, b}
			reg := Register(loc, limits)
			if other, dup := seen[reg]; dup {
				t.Fatalf("register %d shared by %v and %v", reg, other, loc)
			}
			seen[reg] = loc

			name := BindingName("bm", loc)
			for other := range seen {
				if other != reg && BindingName("bm", seen[other]) == name {
					t.Fatalf("name %q shared by %v and %v", name, seen[other], loc)
				}
			}
		}
	}
}

func TestRewrite(t *testing.T) {
	module, table := scenarioTable(t)
	plan, err := NewNamePlan(table, "bm")
	if err != nil {
		t.Fatalf("NewNamePlan: %v", err)
	}
	out, err := Rewrite(module, table, plan)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	wantNames := []string{"bm_binding_0_0", "bm_binding_0_1", "bm_binding_0_2", "bm_binding_1_0"}
	for i, gv := range out.GlobalVariables {
		if gv.Binding != nil {
			t.Errorf("global %d keeps its binding decoration", i)
		}
		if gv.Name != wantNames[i] {
			t.Errorf("global %d name = %q, want %q", i, gv.Name, wantNames[i])
		}
	}
	if module.GlobalVariables[0].Name != "u0" || module.GlobalVariables[0].Binding == nil {
		t.Error("Rewrite modified the input module")
	}
}

func TestRewrite_KeepNames(t *testing.T) {
	module, table := scenarioTable(t)
	out, err := Rewrite(module, table, nil)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if out.GlobalVariables[1].Name != "tex" {
		t.Errorf("name = %q, want tex", out.GlobalVariables[1].Name)
	}
}

func TestRewrite_Collision(t *testing.T) {
	globals := []ir.GlobalVariable{
		uniformGlobal("u0", 0, 0),
		{Name: "bm_binding_0_0", Space: ir.SpacePrivate, Type: tyVec4},
	}
	module := fragmentModule(globals, []ir.GlobalVariableHandle{0}, nil)
	table, err := Extract(module, "", DefaultLimits())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	plan, err := NewNamePlan(table, "bm")
	if err != nil {
		t.Fatalf("NewNamePlan: %v", err)
	}
	_, err = Rewrite(module, table, plan)
	if !IsTranslationInvariant(err) {
		t.Fatalf("Rewrite error = %v, want translation invariant", err)
	}
}

func TestError_Format(t *testing.T) {
	err := NewLocationError(ErrCapability, Location{4, 0}, "group %d too large", 4)
	got := err.Error()
	if !strings.Contains(got, "Capability") || !strings.Contains(got, "@group(4) @binding(0)") {
		t.Errorf("Error() = %q", got)
	}
	if got := ErrorKind(99).String(); got != "Unknown" {
		t.Errorf("ErrorKind(99).String() = %q", got)
	}
	if IsCapability(nil) {
		t.Error("IsCapability(nil) = true")
	}
}
