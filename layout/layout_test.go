// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package layout

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/bindmap/binding"
	"github.com/gogpu/bindmap/ir"
)

func info(group, b uint32, kind binding.Kind) binding.Info {
	return binding.Info{
		Location: binding.Location{Group: group, Binding: b},
		Kind:     kind,
		Used:     true,
		Stages:   binding.StageBit(ir.StageFragment),
	}
}

// scenarioGroups returns group 0 {0: uniform, 1: texture, 2: sampler} and
// group 1 {0: uniform}.
func scenarioGroups(t *testing.T) []*BindGroupLayout {
	t.Helper()
	limits := binding.DefaultLimits()
	g0, err := NewBindGroupLayout([]binding.Info{
		info(0, 0, binding.KindUniformBuffer),
		info(0, 1, binding.KindSampledTexture),
		info(0, 2, binding.KindSampler),
	}, limits)
	if err != nil {
		t.Fatalf("NewBindGroupLayout(0): %v", err)
	}
	g1, err := NewBindGroupLayout([]binding.Info{info(1, 0, binding.KindUniformBuffer)}, limits)
	if err != nil {
		t.Fatalf("NewBindGroupLayout(1): %v", err)
	}
	return []*BindGroupLayout{g0, g1}
}

func TestBindGroupLayout_Scenario(t *testing.T) {
	groups := scenarioGroups(t)
	g0, g1 := groups[0], groups[1]

	if got := g0.NonSamplerTableSize(); got != 2 {
		t.Errorf("g0 NonSamplerTableSize() = %d, want 2", got)
	}
	if got := g0.SamplerTableSize(); got != 1 {
		t.Errorf("g0 SamplerTableSize() = %d, want 1", got)
	}
	if got := g1.NonSamplerTableSize(); got != 1 {
		t.Errorf("g1 NonSamplerTableSize() = %d, want 1", got)
	}
	if got := g1.SamplerTableSize(); got != 0 {
		t.Errorf("g1 SamplerTableSize() = %d, want 0", got)
	}

	tests := []struct {
		b    uint32
		want uint32
	}{
		{0, 0}, // uniform first in the non-sampler table
		{1, 1}, // texture after the uniforms
		{2, 0}, // sampler heads its own table
	}
	for _, tt := range tests {
		got, ok := g0.BindingOffset(tt.b)
		if !ok || got != tt.want {
			t.Errorf("BindingOffset(%d) = %d, %v, want %d", tt.b, got, ok, tt.want)
		}
	}
}

func TestBindGroupLayout_PackingOrder(t *testing.T) {
	limits := binding.DefaultLimits()
	l, err := NewBindGroupLayout([]binding.Info{
		info(0, 5, binding.KindSampledTexture),
		info(0, 3, binding.KindStorageResource),
		info(0, 4, binding.KindSampledTexture),
		info(0, 1, binding.KindUniformBuffer),
		info(0, 0, binding.KindUniformBuffer),
		info(0, 7, binding.KindSampler),
		info(0, 6, binding.KindSampler),
	}, limits)
	if err != nil {
		t.Fatalf("NewBindGroupLayout: %v", err)
	}

	want := map[uint32]uint32{0: 0, 1: 1, 3: 2, 4: 3, 5: 4, 6: 0, 7: 1}
	for b, off := range want {
		got, ok := l.BindingOffset(b)
		if !ok || got != off {
			t.Errorf("BindingOffset(%d) = %d, %v, want %d", b, got, ok, off)
		}
	}
	if _, ok := l.BindingOffset(2); ok {
		t.Error("unused binding 2 should have no offset")
	}

	counts := l.DescriptorCounts()
	wantCounts := [binding.KindCount]uint32{2, 1, 2, 2}
	if counts != wantCounts {
		t.Errorf("DescriptorCounts() = %v, want %v", counts, wantCounts)
	}
	if got := l.NonSamplerTableSize(); got != 5 {
		t.Errorf("NonSamplerTableSize() = %d, want 5", got)
	}

	ranges := l.Ranges(binding.HeapNonSampler)
	wantRanges := []DescriptorRange{
		{Kind: binding.KindUniformBuffer, BaseRegister: 0, Count: 2, TableOffset: 0},
		{Kind: binding.KindStorageResource, BaseRegister: 3, Count: 1, TableOffset: 2},
		{Kind: binding.KindSampledTexture, BaseRegister: 4, Count: 2, TableOffset: 3},
	}
	if len(ranges) != len(wantRanges) {
		t.Fatalf("len(Ranges) = %d, want %d", len(ranges), len(wantRanges))
	}
	for i := range wantRanges {
		if ranges[i] != wantRanges[i] {
			t.Errorf("Ranges[%d] = %+v, want %+v", i, ranges[i], wantRanges[i])
		}
	}
}

func TestBindGroupLayout_Holes(t *testing.T) {
	l, err := NewBindGroupLayout([]binding.Info{
		info(0, 0, binding.KindUniformBuffer),
		info(0, 2, binding.KindUniformBuffer),
		info(0, 3, binding.KindUniformBuffer),
	}, binding.DefaultLimits())
	if err != nil {
		t.Fatalf("NewBindGroupLayout: %v", err)
	}
	ranges := l.KindRanges(binding.KindUniformBuffer)
	if len(ranges) != 2 {
		t.Fatalf("len(KindRanges) = %d, want 2", len(ranges))
	}
	if ranges[0].BaseRegister != 0 || ranges[0].Count != 1 || ranges[0].TableOffset != 0 {
		t.Errorf("ranges[0] = %+v", ranges[0])
	}
	if ranges[1].BaseRegister != 2 || ranges[1].Count != 2 || ranges[1].TableOffset != 1 {
		t.Errorf("ranges[1] = %+v", ranges[1])
	}
}

// Every used binding gets a distinct offset in its table and every offset
// below the table size is taken.
func TestBindGroupLayout_Complete(t *testing.T) {
	limits := binding.DefaultLimits()
	var infos []binding.Info
	for b := uint32(0); b < limits.MaxBindingsPerGroup; b++ {
		infos = append(infos, info(0, b, binding.Kinds[(b*7)%binding.KindCount]))
	}
	l, err := NewBindGroupLayout(infos, limits)
	if err != nil {
		t.Fatalf("NewBindGroupLayout: %v", err)
	}
	var taken [binding.HeapCount]map[uint32]bool
	for i := range taken {
		taken[i] = make(map[uint32]bool)
	}
	for _, inf := range infos {
		off, ok := l.BindingOffset(inf.Location.Binding)
		if !ok {
			t.Fatalf("binding %d has no offset", inf.Location.Binding)
		}
		heap := inf.Kind.Heap()
		if off >= l.TableSize(heap) {
			t.Errorf("binding %d offset %d outside table of %d", inf.Location.Binding, off, l.TableSize(heap))
		}
		if taken[heap][off] {
			t.Errorf("offset %d in %s table assigned twice", off, heap)
		}
		taken[heap][off] = true
	}
	for h := range taken {
		if uint32(len(taken[h])) != l.TableSize(binding.HeapKind(h)) {
			t.Errorf("%s table has %d assigned of %d", binding.HeapKind(h), len(taken[h]), l.TableSize(binding.HeapKind(h)))
		}
	}
}

func TestBindGroupLayout_Errors(t *testing.T) {
	limits := binding.DefaultLimits()
	tests := []struct {
		name  string
		infos []binding.Info
		check func(error) bool
	}{
		{
			name:  "binding out of range",
			infos: []binding.Info{info(0, limits.MaxBindingsPerGroup, binding.KindUniformBuffer)},
			check: binding.IsCapability,
		},
		{
			name:  "duplicate binding",
			infos: []binding.Info{info(0, 1, binding.KindUniformBuffer), info(0, 1, binding.KindSampler)},
			check: binding.IsCapability,
		},
		{
			name:  "unknown kind",
			infos: []binding.Info{info(0, 0, binding.Kind(9))},
			check: binding.IsUnsupportedCombination,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBindGroupLayout(tt.infos, limits)
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Errorf("unexpected error kind: %v", err)
			}
		})
	}
}

func TestBindGroupLayout_SkipsUnused(t *testing.T) {
	unused := info(0, 1, binding.KindUniformBuffer)
	unused.Used = false
	l, err := NewBindGroupLayout([]binding.Info{info(0, 0, binding.KindUniformBuffer), unused}, binding.DefaultLimits())
	if err != nil {
		t.Fatalf("NewBindGroupLayout: %v", err)
	}
	if got := l.NonSamplerTableSize(); got != 1 {
		t.Errorf("NonSamplerTableSize() = %d, want 1", got)
	}
}

func TestPipelineLayout_Scenario(t *testing.T) {
	limits := binding.DefaultLimits()
	p, err := NewPipelineLayout(scenarioGroups(t), limits)
	if err != nil {
		t.Fatalf("NewPipelineLayout: %v", err)
	}

	slot := func(get func(uint32) (uint32, bool), g uint32) int {
		s, ok := get(g)
		if !ok {
			return -1
		}
		return int(s)
	}
	if got := slot(p.NonSamplerSlot, 0); got != 0 {
		t.Errorf("NonSamplerSlot(0) = %d, want 0", got)
	}
	if got := slot(p.SamplerSlot, 0); got != 1 {
		t.Errorf("SamplerSlot(0) = %d, want 1", got)
	}
	if got := slot(p.NonSamplerSlot, 1); got != 2 {
		t.Errorf("NonSamplerSlot(1) = %d, want 2", got)
	}
	if got := slot(p.SamplerSlot, 1); got != -1 {
		t.Errorf("SamplerSlot(1) = %d, want none", got)
	}

	params := p.Parameters()
	if len(params) != 3 {
		t.Fatalf("len(Parameters()) = %d, want 3", len(params))
	}
	if params[2].Group != 1 || params[2].Ranges[0].BaseRegister != 16 {
		t.Errorf("group 1 root parameter = %+v, want base register 16", params[2])
	}

	regs := []struct {
		loc  binding.Location
		reg  uint32
		kind binding.Kind
	}{
		{binding.Location{0, 0}, 0, binding.KindUniformBuffer},
		{binding.Location{0, 1}, 1, binding.KindSampledTexture},
		{binding.Location{0, 2}, 2, binding.KindSampler},
		{binding.Location{1, 0}, 16, binding.KindUniformBuffer},
	}
	for _, r := range regs {
		reg, kind, ok := p.RegisterOf(r.loc)
		if !ok || reg != r.reg || kind != r.kind {
			t.Errorf("RegisterOf(%v) = %d %s %v, want %d %s", r.loc, reg, kind, ok, r.reg, r.kind)
		}
	}
	if _, _, ok := p.RegisterOf(binding.Location{1, 5}); ok {
		t.Error("RegisterOf an unused binding should fail")
	}
}

func TestPipelineLayout_EmptyGroups(t *testing.T) {
	limits := binding.DefaultLimits()
	samplerOnly, err := NewBindGroupLayout([]binding.Info{info(2, 0, binding.KindSampler)}, limits)
	if err != nil {
		t.Fatalf("NewBindGroupLayout: %v", err)
	}
	empty, err := NewBindGroupLayout(nil, limits)
	if err != nil {
		t.Fatalf("NewBindGroupLayout: %v", err)
	}
	p, err := NewPipelineLayout([]*BindGroupLayout{nil, empty, samplerOnly}, limits)
	if err != nil {
		t.Fatalf("NewPipelineLayout: %v", err)
	}
	if len(p.Parameters()) != 1 {
		t.Fatalf("len(Parameters()) = %d, want 1", len(p.Parameters()))
	}
	if s, ok := p.SamplerSlot(2); !ok || s != 0 {
		t.Errorf("SamplerSlot(2) = %d, %v, want 0", s, ok)
	}
	if _, ok := p.NonSamplerSlot(2); ok {
		t.Error("NonSamplerSlot(2) should not exist")
	}
	if p.Parameters()[0].Ranges[0].BaseRegister != 32 {
		t.Errorf("BaseRegister = %d, want 32", p.Parameters()[0].Ranges[0].BaseRegister)
	}
	if p.GroupCount() != 3 {
		t.Errorf("GroupCount() = %d, want 3", p.GroupCount())
	}
}

// Registers of root parameters from different groups never overlap.
func TestPipelineLayout_NoCrossGroupCollision(t *testing.T) {
	limits := binding.DefaultLimits()
	var groups []*BindGroupLayout
	for g := uint32(0); g < limits.MaxBindGroups; g++ {
		var infos []binding.Info
		for b := uint32(0); b < limits.MaxBindingsPerGroup; b++ {
			infos = append(infos, info(g, b, binding.Kinds[(b+g)%binding.KindCount]))
		}
		l, err := NewBindGroupLayout(infos, limits)
		if err != nil {
			t.Fatalf("NewBindGroupLayout(%d): %v", g, err)
		}
		groups = append(groups, l)
	}
	p, err := NewPipelineLayout(groups, limits)
	if err != nil {
		t.Fatalf("NewPipelineLayout: %v", err)
	}
	type key struct {
		heap binding.HeapKind
		reg  uint32
	}
	seen := make(map[key]uint32)
	for _, rp := range p.Parameters() {
		for _, r := range rp.Ranges {
			for i := uint32(0); i < r.Count; i++ {
				k := key{rp.Heap, r.BaseRegister + i}
				if g, dup := seen[k]; dup {
					t.Fatalf("register %d in %s used by groups %d and %d", k.reg, k.heap, g, rp.Group)
				}
				seen[k] = rp.Group
			}
		}
	}
	if len(seen) != int(limits.MaxBindGroups*limits.MaxBindingsPerGroup) {
		t.Errorf("registers assigned = %d, want %d", len(seen), limits.MaxBindGroups*limits.MaxBindingsPerGroup)
	}
}

func TestPipelineLayout_Errors(t *testing.T) {
	limits := binding.DefaultLimits()
	if _, err := NewPipelineLayout(make([]*BindGroupLayout, limits.MaxBindGroups+1), limits); !binding.IsCapability(err) {
		t.Errorf("too many groups: got %v, want capability error", err)
	}

	other := binding.Limits{MaxBindGroups: 4, MaxBindingsPerGroup: 8}
	g, err := NewBindGroupLayout([]binding.Info{info(0, 0, binding.KindUniformBuffer)}, other)
	if err != nil {
		t.Fatalf("NewBindGroupLayout: %v", err)
	}
	if _, err := NewPipelineLayout([]*BindGroupLayout{g}, limits); !binding.IsTranslationInvariant(err) {
		t.Errorf("limits mismatch: got %v, want translation invariant error", err)
	}
}

func TestFlatPipelineLayout(t *testing.T) {
	groups := scenarioGroups(t)
	texture := binding.Location{Group: 0, Binding: 1}
	sampler := binding.Location{Group: 0, Binding: 2}
	combined := []binding.CombinedSampler{{
		SamplerLocation: sampler,
		TextureLocation: texture,
		Name:            binding.CombinedSamplerName("bm", sampler, texture),
	}}
	f, err := NewFlatPipelineLayout(groups, combined, "bm")
	if err != nil {
		t.Fatalf("NewFlatPipelineLayout: %v", err)
	}

	if idx, kind, ok := f.BlockBinding(binding.Location{0, 0}); !ok || idx != 0 || kind != binding.KindUniformBuffer {
		t.Errorf("BlockBinding(0,0) = %d %s %v, want 0 UniformBuffer", idx, kind, ok)
	}
	if idx, _, ok := f.BlockBinding(binding.Location{1, 0}); !ok || idx != 1 {
		t.Errorf("BlockBinding(1,0) = %d %v, want 1", idx, ok)
	}
	if got := f.BlockName(binding.Location{1, 0}); got != "bm_binding_1_0" {
		t.Errorf("BlockName = %q, want bm_binding_1_0", got)
	}
	if u, ok := f.Unit("bm_combined_0_2_with_0_1"); !ok || u != 0 {
		t.Errorf("Unit = %d, %v, want 0", u, ok)
	}
	if got := len(f.Units()); got != 1 {
		t.Errorf("len(Units()) = %d, want 1", got)
	}
}

func TestFlatPipelineLayout_WrongKind(t *testing.T) {
	groups := scenarioGroups(t)
	bad := []binding.CombinedSampler{{
		SamplerLocation: binding.Location{0, 0},
		TextureLocation: binding.Location{0, 1},
		Name:            "bad",
	}}
	if _, err := NewFlatPipelineLayout(groups, bad, "bm"); !binding.IsUnsupportedCombination(err) {
		t.Errorf("got %v, want unsupported combination error", err)
	}
}

func TestEntriesToInfos(t *testing.T) {
	entries := []gputypes.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		},
		{
			Binding:    1,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		},
		{
			Binding:    2,
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		},
		{
			Binding:    3,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		},
	}
	infos, err := EntriesToInfos(0, entries, binding.DefaultLimits())
	if err != nil {
		t.Fatalf("EntriesToInfos: %v", err)
	}
	wantKinds := []binding.Kind{
		binding.KindUniformBuffer, binding.KindSampledTexture, binding.KindSampler, binding.KindStorageResource,
	}
	for i, k := range wantKinds {
		if infos[i].Kind != k {
			t.Errorf("infos[%d].Kind = %s, want %s", i, infos[i].Kind, k)
		}
	}
	if !infos[0].Stages.Has(ir.StageVertex) || !infos[0].Stages.Has(ir.StageFragment) {
		t.Errorf("infos[0].Stages = %b, want vertex|fragment", infos[0].Stages)
	}
	if infos[3].Stages.Has(ir.StageFragment) {
		t.Error("infos[3] should be compute only")
	}

	back := InfosToEntries(infos)
	if back[0].Buffer == nil || back[0].Buffer.Type != gputypes.BufferBindingTypeUniform {
		t.Errorf("back[0].Buffer = %+v", back[0].Buffer)
	}
	if back[2].Sampler == nil {
		t.Error("back[2] should be a sampler entry")
	}
	if back[0].Visibility&gputypes.ShaderStageVertex == 0 {
		t.Error("back[0] lost vertex visibility")
	}
}

func TestEntriesToInfos_ResourceShapes(t *testing.T) {
	entries := []gputypes.BindGroupLayoutEntry{
		{
			Binding:        0,
			Visibility:     gputypes.ShaderStageCompute,
			StorageTexture: &gputypes.StorageTextureBindingLayout{ViewDimension: gputypes.TextureViewDimension2D},
		},
		{
			Binding:    1,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		},
		{
			Binding:    2,
			Visibility: gputypes.ShaderStageFragment,
			Texture:    &gputypes.TextureBindingLayout{SampleType: gputypes.TextureSampleTypeDepth},
		},
		{
			Binding:    3,
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeComparison},
		},
	}
	infos, err := EntriesToInfos(0, entries, binding.DefaultLimits())
	if err != nil {
		t.Fatalf("EntriesToInfos: %v", err)
	}
	want := []struct {
		kind     binding.Kind
		resource binding.Resource
	}{
		{binding.KindStorageResource, binding.ResourceStorageImage},
		{binding.KindStorageResource, binding.ResourceReadOnlyStorage},
		{binding.KindSampledTexture, binding.ResourceDepthTexture},
		{binding.KindSampler, binding.ResourceComparisonSampler},
	}
	for i, w := range want {
		if infos[i].Kind != w.kind || infos[i].Resource != w.resource {
			t.Errorf("infos[%d] = %s %s, want %s %s", i, infos[i].Kind, infos[i].Resource, w.kind, w.resource)
		}
	}

	bgl, err := NewBindGroupLayout(infos, binding.DefaultLimits())
	if err != nil {
		t.Fatalf("NewBindGroupLayout: %v", err)
	}
	if got := bgl.DescriptorCount(binding.KindStorageResource); got != 2 {
		t.Errorf("storage descriptors = %d, want 2", got)
	}

	back := InfosToEntries(bgl.Used())
	if back[0].StorageTexture == nil || back[0].Buffer != nil {
		t.Errorf("back[0] = %+v, want a storage texture entry", back[0])
	}
	if back[1].Buffer == nil || back[1].Buffer.Type != gputypes.BufferBindingTypeReadOnlyStorage {
		t.Errorf("back[1].Buffer = %+v, want read-only storage", back[1].Buffer)
	}
	if back[2].Texture == nil || back[2].Texture.SampleType != gputypes.TextureSampleTypeDepth {
		t.Errorf("back[2].Texture = %+v, want depth", back[2].Texture)
	}
	if back[3].Sampler == nil || back[3].Sampler.Type != gputypes.SamplerBindingTypeComparison {
		t.Errorf("back[3].Sampler = %+v, want comparison", back[3].Sampler)
	}
}

func TestBindGroupLayout_ResourceKindMismatch(t *testing.T) {
	bad := info(0, 0, binding.KindUniformBuffer)
	bad.Resource = binding.ResourceStorageImage
	if _, err := NewBindGroupLayout([]binding.Info{bad}, binding.DefaultLimits()); !binding.IsUnsupportedCombination(err) {
		t.Errorf("got %v, want unsupported combination error", err)
	}
}

func TestFlatPipelineLayout_ImageUnits(t *testing.T) {
	image := info(0, 0, binding.KindStorageResource)
	image.Resource = binding.ResourceStorageImage
	buffer := info(0, 1, binding.KindStorageResource)
	second := info(0, 2, binding.KindStorageResource)
	second.Resource = binding.ResourceStorageImage
	g, err := NewBindGroupLayout([]binding.Info{image, buffer, second}, binding.DefaultLimits())
	if err != nil {
		t.Fatalf("NewBindGroupLayout: %v", err)
	}
	f, err := NewFlatPipelineLayout([]*BindGroupLayout{g}, nil, "bm")
	if err != nil {
		t.Fatalf("NewFlatPipelineLayout: %v", err)
	}

	if idx, kind, ok := f.BlockBinding(binding.Location{0, 1}); !ok || idx != 0 || kind != binding.KindStorageResource {
		t.Errorf("BlockBinding(0,1) = %d %s %v, want storage block 0", idx, kind, ok)
	}
	if _, _, ok := f.BlockBinding(binding.Location{0, 0}); ok {
		t.Error("storage image has a block binding")
	}
	for loc, want := range map[binding.Location]uint32{{0, 0}: 0, {0, 2}: 1} {
		if u, ok := f.ImageUnit(loc); !ok || u != want {
			t.Errorf("ImageUnit(%v) = %d, %v, want %d", loc, u, ok, want)
		}
	}
	if _, ok := f.ImageUnit(binding.Location{0, 1}); ok {
		t.Error("storage buffer has an image unit")
	}
}

func TestEntriesToInfos_Errors(t *testing.T) {
	limits := binding.DefaultLimits()
	if _, err := EntriesToInfos(0, []gputypes.BindGroupLayoutEntry{{Binding: 0}}, limits); !binding.IsUnsupportedCombination(err) {
		t.Errorf("empty entry: got %v, want unsupported combination error", err)
	}
	big := []gputypes.BindGroupLayoutEntry{{
		Binding: limits.MaxBindingsPerGroup,
		Buffer:  &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}}
	if _, err := EntriesToInfos(0, big, limits); !binding.IsCapability(err) {
		t.Errorf("out of range: got %v, want capability error", err)
	}
}
