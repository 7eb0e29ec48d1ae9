// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bindmap

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/bindmap/binding"
	"github.com/gogpu/bindmap/glsl"
	"github.com/gogpu/bindmap/heap"
	"github.com/gogpu/bindmap/hlsl"
	"github.com/gogpu/bindmap/ir"
	"github.com/gogpu/bindmap/layout"
)

// Device translates shaders and binding layouts for one backend.
//
// A Device holds only its options; every method is safe for concurrent use.
// The objects it returns are immutable except heap.BindGroup and heap.Set.
type Device struct {
	opts Options
}

// NewDevice creates a Device. Zero option fields take their defaults.
func NewDevice(opts Options) (*Device, error) {
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}
	Logger().Debug("bindmap: device created",
		"backend", opts.Backend,
		"groups", opts.Limits.MaxBindGroups,
		"bindingsPerGroup", opts.Limits.MaxBindingsPerGroup)
	return &Device{opts: opts}, nil
}

// Options returns the normalized device options.
func (d *Device) Options() Options {
	return d.opts
}

// Backend returns the device backend.
func (d *Device) Backend() Backend {
	return d.opts.Backend
}

// CreateShaderModule translates one entry point of module. An empty
// entryPoint selects the first one. The module is not modified.
func (d *Device) CreateShaderModule(module *ir.Module, entryPoint string) (*ShaderModule, error) {
	if module == nil {
		return nil, binding.NewError(binding.ErrTranslationInvariant, "module is nil")
	}
	if err := ir.Check(module); err != nil {
		return nil, fmt.Errorf("bindmap: %w", err)
	}
	epIndex, err := module.EntryPointIndex(entryPoint)
	if err != nil {
		return nil, fmt.Errorf("bindmap: %w", err)
	}
	ep := module.EntryPoints[epIndex]

	table, err := binding.Extract(module, ep.Name, d.opts.Limits)
	if err != nil {
		return nil, fmt.Errorf("bindmap: entry point %q: %w", ep.Name, err)
	}
	sm := &ShaderModule{EntryPoint: ep.Name, Stage: ep.Stage, Bindings: table}

	if d.opts.Backend.flatNames() {
		err = d.translateGL(module, sm)
	} else {
		err = d.translateD3D12(module, sm)
	}
	if err != nil {
		return nil, fmt.Errorf("bindmap: entry point %q: %w", ep.Name, err)
	}

	Logger().Debug("bindmap: shader module created",
		"entryPoint", ep.Name,
		"backend", d.opts.Backend,
		"used", len(table.Used()),
		"combined", len(sm.Combined))
	return sm, nil
}

func (d *Device) translateGL(module *ir.Module, sm *ShaderModule) error {
	combined, err := binding.Synthesize(module, sm.EntryPoint, sm.Bindings, d.opts.NamePrefix)
	if err != nil {
		return err
	}
	names, err := binding.NewNamePlan(sm.Bindings, d.opts.NamePrefix)
	if err != nil {
		return err
	}
	rewritten, err := binding.Rewrite(module, sm.Bindings, names)
	if err != nil {
		return err
	}

	opts := glsl.DefaultOptions()
	opts.LangVersion = d.opts.GLSLVersion
	opts.EntryPoint = sm.EntryPoint
	opts.CombinedSamplers = combined
	source, info, err := glsl.Compile(rewritten, opts)
	if err != nil {
		return err
	}

	sm.Source = source
	sm.Combined = combined
	sm.Plan = names
	sm.GLSL = &info
	return nil
}

func (d *Device) translateD3D12(module *ir.Module, sm *ShaderModule) error {
	registers, err := binding.NewRegisterPlan(sm.Bindings)
	if err != nil {
		return err
	}
	rewritten, err := binding.Rewrite(module, sm.Bindings, nil)
	if err != nil {
		return err
	}
	targets, err := hlsl.NewBindingMap(sm.Bindings, registers)
	if err != nil {
		return err
	}

	opts := &hlsl.Options{
		ShaderModel: d.opts.ShaderModel,
		BindingMap:  targets,
		EntryPoint:  sm.EntryPoint,
	}
	source, info, err := hlsl.Compile(rewritten, opts)
	if err != nil {
		return err
	}

	sm.Source = source
	sm.Plan = registers
	sm.HLSL = info
	return nil
}

// CreateBindGroupLayout packs WebGPU-style entries of one group.
func (d *Device) CreateBindGroupLayout(group uint32, entries []gputypes.BindGroupLayoutEntry) (*layout.BindGroupLayout, error) {
	infos, err := layout.EntriesToInfos(group, entries, d.opts.Limits)
	if err != nil {
		return nil, err
	}
	return d.CreateBindGroupLayoutFromInfos(infos)
}

// CreateBindGroupLayoutFromInfos packs the used infos of one group.
func (d *Device) CreateBindGroupLayoutFromInfos(infos []binding.Info) (*layout.BindGroupLayout, error) {
	bgl, err := layout.NewBindGroupLayout(infos, d.opts.Limits)
	if err != nil {
		return nil, err
	}
	Logger().Debug("bindmap: bind group layout created",
		"nonSamplerTable", bgl.NonSamplerTableSize(),
		"samplerTable", bgl.SamplerTableSize())
	return bgl, nil
}

// DeriveBindGroupLayouts packs one layout per group from the bindings the
// given stages use. Groups no stage uses get an empty layout.
func (d *Device) DeriveBindGroupLayouts(stages ...*ShaderModule) ([]*layout.BindGroupLayout, error) {
	merged, err := mergeStages(stages)
	if err != nil {
		return nil, err
	}
	groups := make([]*layout.BindGroupLayout, merged.GroupCount())
	for g := range groups {
		bgl, err := d.CreateBindGroupLayoutFromInfos(merged.Group(uint32(g)))
		if err != nil {
			return nil, err
		}
		groups[g] = bgl
	}
	return groups, nil
}

// CreatePipelineLayout assembles group layouts, indexed by group number.
// A nil entry is an empty group.
func (d *Device) CreatePipelineLayout(groups []*layout.BindGroupLayout) (*PipelineLayout, error) {
	tables, err := layout.NewPipelineLayout(groups, d.opts.Limits)
	if err != nil {
		return nil, err
	}
	if d.opts.Backend == BackendD3D12 {
		for _, p := range tables.Parameters() {
			Logger().Debug("bindmap: root parameter",
				"group", p.Group,
				"heap", p.Heap,
				"descriptors", p.DescriptorCount())
		}
	}
	return &PipelineLayout{backend: d.opts.Backend, tables: tables}, nil
}

// CreatePipeline checks that the bindings every stage uses are present in
// pl with the same kind and register, and on BackendGL assigns block
// bindings and texture units.
func (d *Device) CreatePipeline(pl *PipelineLayout, stages ...*ShaderModule) (*Pipeline, error) {
	if pl == nil {
		return nil, binding.NewError(binding.ErrTranslationInvariant, "pipeline has no layout")
	}
	if pl.backend != d.opts.Backend {
		return nil, binding.NewError(binding.ErrTranslationInvariant,
			fmt.Sprintf("pipeline layout was created for %s, device is %s", pl.backend, d.opts.Backend))
	}
	merged, err := mergeStages(stages)
	if err != nil {
		return nil, err
	}

	for _, info := range merged.Used() {
		bgl := pl.tables.Group(info.Location.Group)
		if bgl == nil {
			return nil, binding.NewLocationError(binding.ErrUnsupportedCombination, info.Location,
				"group is absent from the pipeline layout")
		}
		want, ok := bgl.Lookup(info.Location.Binding)
		if !ok {
			return nil, binding.NewLocationError(binding.ErrUnsupportedCombination, info.Location,
				"shader uses a binding the pipeline layout does not declare")
		}
		if want.Kind != info.Kind {
			return nil, binding.NewLocationError(binding.ErrUnsupportedCombination, info.Location,
				"shader declares a %s, pipeline layout a %s", info.Kind, want.Kind)
		}
		if isImage(info) != isImage(want) {
			return nil, binding.NewLocationError(binding.ErrUnsupportedCombination, info.Location,
				"shader declares a %s storage resource, pipeline layout a %s one", info.Resource, want.Resource)
		}
	}

	p := &Pipeline{layout: pl, stages: append([]*ShaderModule(nil), stages...), bindings: merged}
	if d.opts.Backend.flatNames() {
		var combined []binding.CombinedSampler
		for _, sm := range stages {
			combined = append(combined, sm.Combined...)
		}
		flat, err := layout.NewFlatPipelineLayout(pl.groups(), combined, d.opts.NamePrefix)
		if err != nil {
			return nil, err
		}
		p.flat = flat
		Logger().Debug("bindmap: pipeline created", "backend", d.opts.Backend, "layout", flat.String())
		return p, nil
	}

	for _, sm := range stages {
		registers := sm.Registers()
		if registers == nil {
			return nil, binding.NewError(binding.ErrTranslationInvariant,
				fmt.Sprintf("stage %q was not translated for %s", sm.EntryPoint, d.opts.Backend))
		}
		for _, loc := range registers.Locations() {
			got, _ := registers.Register(loc)
			native, _, ok := pl.tables.RegisterOf(loc)
			if !ok || got != native {
				return nil, binding.NewLocationError(binding.ErrTranslationInvariant, loc,
					"stage %q declares register %d, root signature expects %d", sm.EntryPoint, got, native)
			}
		}
	}
	Logger().Debug("bindmap: pipeline created",
		"backend", d.opts.Backend,
		"rootParameters", len(pl.tables.Parameters()))
	return p, nil
}

// CreateBindGroup pairs a group layout with one descriptor per used binding.
func (d *Device) CreateBindGroup(l *layout.BindGroupLayout, entries []heap.Entry) (*heap.BindGroup, error) {
	return heap.NewBindGroup(l, entries)
}

// CreateDescriptorHeaps creates the shader-visible heap pair of one
// encoding context.
func (d *Device) CreateDescriptorHeaps(nonSamplerCapacity, samplerCapacity uint32) (*heap.Set, error) {
	return heap.NewSet(nonSamplerCapacity, samplerCapacity)
}

func mergeStages(stages []*ShaderModule) (*binding.Table, error) {
	if len(stages) == 0 {
		return nil, binding.NewError(binding.ErrTranslationInvariant, "no shader stages")
	}
	tables := make([]*binding.Table, 0, len(stages))
	for i, sm := range stages {
		if sm == nil {
			return nil, binding.NewError(binding.ErrTranslationInvariant, fmt.Sprintf("stage %d is nil", i))
		}
		tables = append(tables, sm.Bindings)
	}
	return binding.MergeStages(tables...)
}

func isImage(info binding.Info) bool {
	return info.Resource == binding.ResourceStorageImage
}
