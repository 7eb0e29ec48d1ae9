// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/bindmap"
	"github.com/gogpu/bindmap/binding"
	"github.com/gogpu/bindmap/hlsl"
	"github.com/gogpu/bindmap/ir"
	"github.com/gogpu/bindmap/layout"
	"github.com/gogpu/bindmap/plan"
)

// report writes the packed layout of p for its backend.
func report(w io.Writer, p *plan.Pipeline) error {
	opts := p.Device.Options()
	fmt.Fprintf(w, "backend %s, %d groups x %d bindings\n",
		opts.Backend, opts.Limits.MaxBindGroups, opts.Limits.MaxBindingsPerGroup)

	for g, bgl := range p.Groups {
		if bgl == nil {
			continue
		}
		fmt.Fprintf(w, "\ngroup %d: non-sampler table %d, sampler table %d\n",
			g, bgl.NonSamplerTableSize(), bgl.SamplerTableSize())
		for _, info := range bgl.Used() {
			off, _ := bgl.BindingOffset(info.Location.Binding)
			fmt.Fprintf(w, "  binding %-2d %-15s offset %-2d %s\n",
				info.Location.Binding, info.Kind, off, stageList(info.Stages))
		}
	}

	if opts.Backend == bindmap.BackendD3D12 {
		return reportTables(w, p)
	}
	return reportFlat(w, p, opts.NamePrefix)
}

func reportTables(w io.Writer, p *plan.Pipeline) error {
	tables := p.Layout.Tables()
	fmt.Fprintf(w, "\nroot parameters:\n")
	for slot, param := range tables.Parameters() {
		fmt.Fprintf(w, "  slot %d: group %d %s table, %d descriptors, %s\n",
			slot, param.Group, param.Heap, param.DescriptorCount(), stageList(param.Visibility))
		for _, r := range param.Ranges {
			fmt.Fprintf(w, "    %s %s%d..%d at offset %d\n",
				r.Kind, hlsl.RegisterTypeFor(r.Kind), r.BaseRegister, r.BaseRegister+r.Count-1, r.TableOffset)
		}
	}

	fmt.Fprintf(w, "\nregisters:\n")
	for g, bgl := range p.Groups {
		if bgl == nil {
			continue
		}
		for _, info := range bgl.Used() {
			loc := binding.Location{Group: uint32(g), Binding: info.Location.Binding}
			reg, kind, ok := tables.RegisterOf(loc)
			if !ok {
				return fmt.Errorf("binding %s has no register", loc)
			}
			target := hlsl.BindTarget{Type: hlsl.RegisterTypeFor(kind), Register: reg}
			fmt.Fprintf(w, "  %s -> %s\n", loc, target)
		}
	}
	return nil
}

func reportFlat(w io.Writer, p *plan.Pipeline, prefix string) error {
	flat, err := layout.NewFlatPipelineLayout(p.Groups, nil, prefix)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nflat names:\n")
	for g, bgl := range p.Groups {
		if bgl == nil {
			continue
		}
		for _, info := range bgl.Used() {
			loc := binding.Location{Group: uint32(g), Binding: info.Location.Binding}
			name := binding.BindingName(prefix, loc)
			switch {
			case info.Resource == binding.ResourceStorageImage:
				unit, _ := flat.ImageUnit(loc)
				fmt.Fprintf(w, "  %s -> image unit %d\n", name, unit)
			case info.Kind == binding.KindUniformBuffer, info.Kind == binding.KindStorageResource:
				idx, kind, _ := flat.BlockBinding(loc)
				fmt.Fprintf(w, "  %s -> %s block %d\n", name, kind, idx)
			case info.Kind == binding.KindSampledTexture:
				unit, _ := flat.Unit(name)
				fmt.Fprintf(w, "  %s -> texture unit %d\n", name, unit)
			default:
				fmt.Fprintf(w, "  %s -> combined with the textures it samples\n", name)
			}
		}
	}
	return nil
}

func stageList(s binding.Stages) string {
	var names []string
	for _, stage := range []ir.ShaderStage{ir.StageVertex, ir.StageFragment, ir.StageCompute} {
		if s.Has(stage) {
			names = append(names, stageName(stage))
		}
	}
	if len(names) == 0 {
		return "all stages"
	}
	return strings.Join(names, "|")
}

func stageName(stage ir.ShaderStage) string {
	switch stage {
	case ir.StageVertex:
		return "vertex"
	case ir.StageFragment:
		return "fragment"
	default:
		return "compute"
	}
}
