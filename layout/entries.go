// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package layout

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/bindmap/binding"
	"github.com/gogpu/bindmap/ir"
)

// EntriesToInfos converts WebGPU bind group layout entries into used
// binding infos for one group.
//
// Uniform buffers map to KindUniformBuffer, storage and read-only storage
// buffers and storage textures to KindStorageResource, textures to
// KindSampledTexture and samplers to KindSampler. Read-only storage, storage
// textures, depth textures and comparison samplers are kept in Info.Resource.
// An entry with none of these layouts is rejected.
func EntriesToInfos(group uint32, entries []gputypes.BindGroupLayoutEntry, limits binding.Limits) ([]binding.Info, error) {
	infos := make([]binding.Info, 0, len(entries))
	for _, e := range entries {
		loc := binding.Location{Group: group, Binding: e.Binding}
		if err := limits.Check(loc); err != nil {
			return nil, err
		}
		kind, resource, err := entryKind(loc, e)
		if err != nil {
			return nil, err
		}
		infos = append(infos, binding.Info{
			Location: loc,
			Kind:     kind,
			Resource: resource,
			Used:     true,
			Stages:   entryStages(e),
		})
	}
	return infos, nil
}

func entryKind(loc binding.Location, e gputypes.BindGroupLayoutEntry) (binding.Kind, binding.Resource, error) {
	switch {
	case e.Buffer != nil:
		switch e.Buffer.Type {
		case gputypes.BufferBindingTypeUniform:
			return binding.KindUniformBuffer, binding.ResourcePlain, nil
		case gputypes.BufferBindingTypeStorage:
			return binding.KindStorageResource, binding.ResourcePlain, nil
		case gputypes.BufferBindingTypeReadOnlyStorage:
			return binding.KindStorageResource, binding.ResourceReadOnlyStorage, nil
		}
		return 0, 0, binding.NewLocationError(binding.ErrUnsupportedCombination, loc,
			"buffer binding type %v has no descriptor range", e.Buffer.Type)
	case e.Sampler != nil:
		if e.Sampler.Type == gputypes.SamplerBindingTypeComparison {
			return binding.KindSampler, binding.ResourceComparisonSampler, nil
		}
		return binding.KindSampler, binding.ResourcePlain, nil
	case e.Texture != nil:
		if e.Texture.SampleType == gputypes.TextureSampleTypeDepth {
			return binding.KindSampledTexture, binding.ResourceDepthTexture, nil
		}
		return binding.KindSampledTexture, binding.ResourcePlain, nil
	case e.StorageTexture != nil:
		return binding.KindStorageResource, binding.ResourceStorageImage, nil
	default:
		return 0, 0, binding.NewLocationError(binding.ErrUnsupportedCombination, loc,
			"entry has no buffer, sampler, texture or storage texture layout")
	}
}

func entryStages(e gputypes.BindGroupLayoutEntry) binding.Stages {
	var s binding.Stages
	if e.Visibility&gputypes.ShaderStageVertex != 0 {
		s |= binding.StageBit(ir.StageVertex)
	}
	if e.Visibility&gputypes.ShaderStageFragment != 0 {
		s |= binding.StageBit(ir.StageFragment)
	}
	if e.Visibility&gputypes.ShaderStageCompute != 0 {
		s |= binding.StageBit(ir.StageCompute)
	}
	return s
}

// InfosToEntries converts packed infos back into WebGPU layout entries, as
// used when handing a translated layout to a WebGPU device.
func InfosToEntries(infos []binding.Info) []gputypes.BindGroupLayoutEntry {
	entries := make([]gputypes.BindGroupLayoutEntry, 0, len(infos))
	for _, info := range infos {
		e := gputypes.BindGroupLayoutEntry{Binding: info.Location.Binding}
		if info.Stages.Has(ir.StageVertex) {
			e.Visibility |= gputypes.ShaderStageVertex
		}
		if info.Stages.Has(ir.StageFragment) {
			e.Visibility |= gputypes.ShaderStageFragment
		}
		if info.Stages.Has(ir.StageCompute) {
			e.Visibility |= gputypes.ShaderStageCompute
		}
		switch info.Kind {
		case binding.KindUniformBuffer:
			e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
		case binding.KindStorageResource:
			switch info.Resource {
			case binding.ResourceStorageImage:
				e.StorageTexture = &gputypes.StorageTextureBindingLayout{
					ViewDimension: gputypes.TextureViewDimension2D,
				}
			case binding.ResourceReadOnlyStorage:
				e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}
			default:
				e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}
			}
		case binding.KindSampledTexture:
			sampleType := gputypes.TextureSampleTypeFloat
			if info.Resource == binding.ResourceDepthTexture {
				sampleType = gputypes.TextureSampleTypeDepth
			}
			e.Texture = &gputypes.TextureBindingLayout{
				SampleType:    sampleType,
				ViewDimension: gputypes.TextureViewDimension2D,
			}
		case binding.KindSampler:
			samplerType := gputypes.SamplerBindingTypeFiltering
			if info.Resource == binding.ResourceComparisonSampler {
				samplerType = gputypes.SamplerBindingTypeComparison
			}
			e.Sampler = &gputypes.SamplerBindingLayout{Type: samplerType}
		}
		entries = append(entries, e)
	}
	return entries
}
