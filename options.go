// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bindmap

import (
	"fmt"

	"github.com/gogpu/bindmap/binding"
	"github.com/gogpu/bindmap/glsl"
	"github.com/gogpu/bindmap/hlsl"
)

// DefaultNamePrefix prefixes every generated binding name.
const DefaultNamePrefix = "bm"

// Options configures a Device.
type Options struct {
	// Backend selects the binding model.
	Backend Backend

	// Limits bounds the bind groups and bindings a pipeline may use.
	// Zero limits are replaced by binding.DefaultLimits.
	Limits binding.Limits

	// NamePrefix prefixes flat binding and combined sampler names.
	// Empty means DefaultNamePrefix.
	NamePrefix string

	// GLSLVersion is the GLSL target of BackendGL.
	GLSLVersion glsl.Version

	// ShaderModel is the HLSL target of BackendD3D12.
	ShaderModel hlsl.ShaderModel
}

// DefaultOptions returns GL with 4 groups of 16 bindings, prefix "bm",
// GLSL 4.50 and SM 5.1.
func DefaultOptions() Options {
	return Options{
		Backend:     BackendGL,
		Limits:      binding.DefaultLimits(),
		NamePrefix:  DefaultNamePrefix,
		GLSLVersion: glsl.Version450,
		ShaderModel: hlsl.ShaderModel5_1,
	}
}

// normalized fills zero fields with defaults and rejects unusable values.
func (o Options) normalized() (Options, error) {
	if o.Limits == (binding.Limits{}) {
		o.Limits = binding.DefaultLimits()
	}
	if err := o.Limits.Validate(); err != nil {
		return o, err
	}
	if o.NamePrefix == "" {
		o.NamePrefix = DefaultNamePrefix
	}
	if o.GLSLVersion.Major == 0 {
		o.GLSLVersion = glsl.Version450
	}
	switch o.Backend {
	case BackendGL, BackendD3D12:
	default:
		return o, fmt.Errorf("bindmap: unknown backend %d", o.Backend)
	}
	return o, nil
}
