// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/bindmap/ir"
)

// Options configures HLSL code generation.
//
// The module passed to Compile is expected to be the output of
// binding.Rewrite: resource globals keep their names and carry no binding
// decorations. BindingMap supplies the register of every resource global
// the entry point uses.
type Options struct {
	// ShaderModel specifies the target shader model.
	// Defaults to ShaderModel5_1.
	ShaderModel ShaderModel

	// BindingMap maps resource globals to HLSL register targets. A used
	// resource missing from the map fails with ErrMissingBinding.
	BindingMap map[ir.GlobalVariableHandle]BindTarget

	// EntryPoint specifies which entry point to compile.
	// If empty, the first entry point is used.
	EntryPoint string
}

// DefaultOptions returns sensible default options for HLSL generation.
func DefaultOptions() *Options {
	return &Options{
		ShaderModel: ShaderModel5_1,
		BindingMap:  make(map[ir.GlobalVariableHandle]BindTarget),
	}
}

// FeatureFlags indicates which HLSL features are used by the generated code.
type FeatureFlags uint32

const (
	// FeatureNone indicates no special features are used.
	FeatureNone FeatureFlags = 0

	// FeatureStorageBuffers indicates RWStructuredBuffer declarations.
	FeatureStorageBuffers FeatureFlags = 1 << (iota - 1)

	// FeatureStorageImages indicates RWTexture declarations.
	FeatureStorageImages

	// FeatureComparisonSamplers indicates SamplerComparisonState declarations.
	FeatureComparisonSamplers

	// FeatureComputeShader indicates a compute entry point.
	FeatureComputeShader
)

// Has returns true if the flags contain the specified feature.
func (f FeatureFlags) Has(feature FeatureFlags) bool {
	return f&feature != 0
}

// String returns a human-readable list of enabled features.
func (f FeatureFlags) String() string {
	var features []string
	if f.Has(FeatureStorageBuffers) {
		features = append(features, "StorageBuffers")
	}
	if f.Has(FeatureStorageImages) {
		features = append(features, "StorageImages")
	}
	if f.Has(FeatureComparisonSamplers) {
		features = append(features, "ComparisonSamplers")
	}
	if f.Has(FeatureComputeShader) {
		features = append(features, "ComputeShader")
	}
	if len(features) == 0 {
		return "none"
	}
	return strings.Join(features, ", ")
}

// ResourceDeclaration records one declared resource and its register.
type ResourceDeclaration struct {
	// Name is the HLSL identifier of the resource.
	Name string

	// Global is the resource global the declaration came from.
	Global ir.GlobalVariableHandle

	// Target is the register the resource is bound to.
	Target BindTarget
}

// TranslationInfo contains metadata about the HLSL translation.
type TranslationInfo struct {
	// EntryPointNames maps original entry point names to generated HLSL names.
	// HLSL requires "main" for the entry point in single-shader compilation.
	EntryPointNames map[string]string

	// UsedFeatures indicates which shader features are used.
	UsedFeatures FeatureFlags

	// RequiredShaderModel is the minimum shader model needed for this shader.
	RequiredShaderModel ShaderModel

	// RegisterBindings maps resource names to their HLSL register bindings.
	// Format: "resourceName" -> "register(t0, space0)"
	RegisterBindings map[string]string

	// Resources lists the declared resources in declaration order.
	Resources []ResourceDeclaration
}

// Compile generates HLSL source code from an IR module.
// Returns the HLSL source, translation info, or an error.
func Compile(module *ir.Module, options *Options) (string, *TranslationInfo, error) {
	if module == nil {
		return "", nil, NewError(ErrInternalError, "module is nil")
	}
	if err := ir.Check(module); err != nil {
		return "", nil, WrapError(ErrInvalidModule, err)
	}

	// Apply defaults for nil options
	if options == nil {
		options = DefaultOptions()
	}

	epIndex, err := module.EntryPointIndex(options.EntryPoint)
	if err != nil {
		return "", nil, WrapError(ErrEntryPointNotFound, err)
	}
	usage, err := ir.AnalyzeEntryPoint(module, epIndex)
	if err != nil {
		return "", nil, WrapError(ErrInvalidModule, err)
	}

	w := newWriter(module, options, epIndex, usage)
	if err := w.writeModule(); err != nil {
		return "", nil, fmt.Errorf("hlsl: %w", err)
	}

	info := &TranslationInfo{
		EntryPointNames:     w.entryPointNames,
		UsedFeatures:        w.usedFeatures,
		RequiredShaderModel: w.requiredShaderModel,
		RegisterBindings:    w.registerBindings,
		Resources:           w.resources,
	}

	return w.String(), info, nil
}
