// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package binding

import (
	"fmt"

	"github.com/gogpu/bindmap/ir"
)

// Kind classifies a binding by the native descriptor range it lives in.
type Kind uint8

const (
	// KindUniformBuffer is a constant/uniform buffer (CBV).
	KindUniformBuffer Kind = iota

	// KindStorageResource is a read-write buffer or storage image (UAV).
	KindStorageResource

	// KindSampledTexture is a read-only texture (SRV).
	KindSampledTexture

	// KindSampler is a sampler object.
	KindSampler
)

// KindCount is the number of descriptor range kinds.
const KindCount = 4

// Kinds lists every kind in table order.
var Kinds = [KindCount]Kind{KindUniformBuffer, KindStorageResource, KindSampledTexture, KindSampler}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUniformBuffer:
		return "UniformBuffer"
	case KindStorageResource:
		return "StorageResource"
	case KindSampledTexture:
		return "SampledTexture"
	case KindSampler:
		return "Sampler"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Resource refines a Kind with the resource shape a layout description
// names but a descriptor range does not distinguish.
type Resource uint8

const (
	// ResourcePlain is the kind's ordinary resource: a uniform or storage
	// buffer, a float texture or a filtering sampler.
	ResourcePlain Resource = iota

	// ResourceReadOnlyStorage is a storage buffer the shader only reads.
	ResourceReadOnlyStorage

	// ResourceStorageImage is a storage texture. Its kind is
	// KindStorageResource.
	ResourceStorageImage

	// ResourceDepthTexture is a depth texture.
	ResourceDepthTexture

	// ResourceComparisonSampler is a depth comparison sampler.
	ResourceComparisonSampler
)

// String returns the resource name.
func (r Resource) String() string {
	switch r {
	case ResourcePlain:
		return "Plain"
	case ResourceReadOnlyStorage:
		return "ReadOnlyStorage"
	case ResourceStorageImage:
		return "StorageImage"
	case ResourceDepthTexture:
		return "DepthTexture"
	case ResourceComparisonSampler:
		return "ComparisonSampler"
	default:
		return fmt.Sprintf("Resource(%d)", uint8(r))
	}
}

// Kind returns the range kind the resource belongs to, or false for
// ResourcePlain, which belongs to every kind.
func (r Resource) Kind() (Kind, bool) {
	switch r {
	case ResourceReadOnlyStorage, ResourceStorageImage:
		return KindStorageResource, true
	case ResourceDepthTexture:
		return KindSampledTexture, true
	case ResourceComparisonSampler:
		return KindSampler, true
	default:
		return 0, false
	}
}

// Heap returns the logical descriptor heap holding this kind.
func (k Kind) Heap() HeapKind {
	if k == KindSampler {
		return HeapSampler
	}
	return HeapNonSampler
}

// HeapKind selects one of the two logical descriptor heaps.
type HeapKind uint8

const (
	// HeapNonSampler holds uniform buffers, storage resources and sampled textures.
	HeapNonSampler HeapKind = iota

	// HeapSampler holds samplers only.
	HeapSampler
)

// HeapCount is the number of logical descriptor heaps.
const HeapCount = 2

// String returns the heap name.
func (h HeapKind) String() string {
	switch h {
	case HeapNonSampler:
		return "CbvUavSrv"
	case HeapSampler:
		return "Sampler"
	default:
		return fmt.Sprintf("Heap(%d)", uint8(h))
	}
}

// Stages is a bit set of shader stages.
type Stages uint8

// StageBit returns the bit for one stage.
func StageBit(stage ir.ShaderStage) Stages {
	return 1 << stage
}

// Has reports whether the stage bit is set.
func (s Stages) Has(stage ir.ShaderStage) bool {
	return s&StageBit(stage) != 0
}

// ClassifyGlobal returns the kind of a global variable from its address
// space and type.
func ClassifyGlobal(module *ir.Module, handle ir.GlobalVariableHandle) (Kind, error) {
	if int(handle) >= len(module.GlobalVariables) {
		return 0, NewError(ErrTranslationInvariant, fmt.Sprintf("global variable %d does not exist", handle))
	}
	gv := module.GlobalVariables[handle]
	switch gv.Space {
	case ir.SpaceUniform:
		return KindUniformBuffer, nil
	case ir.SpaceStorage:
		return KindStorageResource, nil
	case ir.SpaceHandle:
		inner, ok := module.ResolveGlobalType(handle)
		if !ok {
			return 0, NewError(ErrTranslationInvariant, fmt.Sprintf("global %q has an invalid type", gv.Name))
		}
		switch t := inner.(type) {
		case ir.SamplerType:
			return KindSampler, nil
		case ir.ImageType:
			if t.Class == ir.ImageClassStorage {
				return KindStorageResource, nil
			}
			return KindSampledTexture, nil
		}
		return 0, NewError(ErrUnsupportedCombination, fmt.Sprintf("global %q: handle type %T is not a resource", gv.Name, inner))
	default:
		return 0, NewError(ErrUnsupportedCombination, fmt.Sprintf("global %q: address space %d cannot carry a binding", gv.Name, gv.Space))
	}
}

// ClassifyResource returns the resource shape of a global already accepted
// by ClassifyGlobal.
func ClassifyResource(module *ir.Module, handle ir.GlobalVariableHandle) Resource {
	inner, ok := module.ResolveGlobalType(handle)
	if !ok || module.GlobalVariables[handle].Space != ir.SpaceHandle {
		return ResourcePlain
	}
	switch t := inner.(type) {
	case ir.SamplerType:
		if t.Comparison {
			return ResourceComparisonSampler
		}
	case ir.ImageType:
		switch t.Class {
		case ir.ImageClassStorage:
			return ResourceStorageImage
		case ir.ImageClassDepth:
			return ResourceDepthTexture
		}
	}
	return ResourcePlain
}
