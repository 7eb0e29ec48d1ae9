// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package layout

import (
	"fmt"
	"sort"

	"github.com/gogpu/bindmap/binding"
)

// FlatPipelineLayout assigns GL binding points to a flat-name pipeline.
//
// Uniform blocks, storage blocks and storage images each take consecutive
// indices across the pipeline in (group, binding) order; GL keeps image
// units apart from shader storage block bindings. Every combined sampler
// takes one texture unit in its sorted order; sampled textures read without
// a sampler take the units after them. Lone samplers take nothing.
type FlatPipelineLayout struct {
	prefix       string
	uniformBlock map[binding.Location]uint32
	storageBlock map[binding.Location]uint32
	imageUnit    map[binding.Location]uint32
	units        map[string]uint32
	unitOrder    []string
}

// NewFlatPipelineLayout numbers the bindings of groups and the combined
// samplers of every stage in the pipeline. Duplicate combined samplers from
// different stages share a unit.
func NewFlatPipelineLayout(groups []*BindGroupLayout, combined []binding.CombinedSampler, prefix string) (*FlatPipelineLayout, error) {
	f := &FlatPipelineLayout{
		prefix:       prefix,
		uniformBlock: make(map[binding.Location]uint32),
		storageBlock: make(map[binding.Location]uint32),
		imageUnit:    make(map[binding.Location]uint32),
		units:        make(map[string]uint32),
	}

	sorted := append([]binding.CombinedSampler(nil), combined...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := binding.Compare(sorted[i].SamplerLocation, sorted[j].SamplerLocation); c != 0 {
			return c < 0
		}
		return sorted[i].TextureLocation.Less(sorted[j].TextureLocation)
	})

	paired := make(map[binding.Location]bool)
	for _, c := range sorted {
		if err := f.checkCombined(groups, c); err != nil {
			return nil, err
		}
		paired[c.TextureLocation] = true
		if _, ok := f.units[c.Name]; ok {
			continue
		}
		f.units[c.Name] = uint32(len(f.unitOrder))
		f.unitOrder = append(f.unitOrder, c.Name)
	}

	var uniforms, storage, images uint32
	for g, bgl := range groups {
		if bgl == nil {
			continue
		}
		for _, info := range bgl.Used() {
			loc := binding.Location{Group: uint32(g), Binding: info.Location.Binding}
			switch info.Kind {
			case binding.KindUniformBuffer:
				f.uniformBlock[loc] = uniforms
				uniforms++
			case binding.KindStorageResource:
				if info.Resource == binding.ResourceStorageImage {
					f.imageUnit[loc] = images
					images++
					continue
				}
				f.storageBlock[loc] = storage
				storage++
			case binding.KindSampledTexture:
				if paired[loc] {
					continue
				}
				name := binding.BindingName(prefix, loc)
				f.units[name] = uint32(len(f.unitOrder))
				f.unitOrder = append(f.unitOrder, name)
			}
		}
	}
	return f, nil
}

func (f *FlatPipelineLayout) checkCombined(groups []*BindGroupLayout, c binding.CombinedSampler) error {
	check := func(loc binding.Location, want binding.Kind) error {
		if loc.Group >= uint32(len(groups)) || groups[loc.Group] == nil {
			return binding.NewLocationError(binding.ErrUnsupportedCombination, loc,
				"combined sampler %q refers to a group missing from the pipeline layout", c.Name)
		}
		info, ok := groups[loc.Group].Lookup(loc.Binding)
		if !ok || info.Kind != want {
			return binding.NewLocationError(binding.ErrUnsupportedCombination, loc,
				"combined sampler %q expects a %s binding", c.Name, want)
		}
		return nil
	}
	if err := check(c.SamplerLocation, binding.KindSampler); err != nil {
		return err
	}
	return check(c.TextureLocation, binding.KindSampledTexture)
}

// BlockBinding returns the uniform or storage block index of a buffer
// binding. Storage images have no block; see ImageUnit.
func (f *FlatPipelineLayout) BlockBinding(loc binding.Location) (uint32, binding.Kind, bool) {
	if idx, ok := f.uniformBlock[loc]; ok {
		return idx, binding.KindUniformBuffer, true
	}
	if idx, ok := f.storageBlock[loc]; ok {
		return idx, binding.KindStorageResource, true
	}
	return 0, 0, false
}

// ImageUnit returns the image unit of a storage image binding.
func (f *FlatPipelineLayout) ImageUnit(loc binding.Location) (uint32, bool) {
	u, ok := f.imageUnit[loc]
	return u, ok
}

// BlockName returns the GLSL block name of a buffer binding.
func (f *FlatPipelineLayout) BlockName(loc binding.Location) string {
	return binding.BindingName(f.prefix, loc)
}

// Unit returns the texture unit of a combined sampler or standalone texture name.
func (f *FlatPipelineLayout) Unit(name string) (uint32, bool) {
	u, ok := f.units[name]
	return u, ok
}

// Units returns the sampler uniform names in unit order.
func (f *FlatPipelineLayout) Units() []string {
	return append([]string(nil), f.unitOrder...)
}

// String summarizes the layout for logs.
func (f *FlatPipelineLayout) String() string {
	return fmt.Sprintf("FlatPipelineLayout{uniformBlocks=%d storageBlocks=%d images=%d units=%d}",
		len(f.uniformBlock), len(f.storageBlock), len(f.imageUnit), len(f.unitOrder))
}
