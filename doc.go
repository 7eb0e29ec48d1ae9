// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package bindmap translates WebGPU-style resource bindings to native
// binding models.
//
// A shader declares resources at (group, binding) locations. A Device
// rewrites them for its backend:
//   - BackendGL: bindings are renamed to <prefix>_binding_<g>_<b>, every
//     texture/sampler pair the entry point samples with becomes one combined
//     sampler, and GLSL is emitted without binding decorations
//   - BackendD3D12: bindings map to register binding + group*16, and every
//     group becomes a CBV/SRV/UAV table and a sampler table
//
// The packages underneath can be used directly:
//   - binding: extraction, combined samplers, renaming and register plans
//   - glsl, hlsl: source generation for the rewritten module
//   - layout: bind group layouts and pipeline layouts
//   - heap: descriptor heaps and bind group recording
//
// Example usage:
//
//	dev, err := bindmap.NewDevice(bindmap.Options{Backend: bindmap.BackendD3D12})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vs, err := dev.CreateShaderModule(module, "vs_main")
//	...
//	fs, err := dev.CreateShaderModule(module, "fs_main")
//	...
//	groups, err := dev.DeriveBindGroupLayouts(vs, fs)
//	...
//	pl, err := dev.CreatePipelineLayout(groups)
//	...
//	pipeline, err := dev.CreatePipeline(pl, vs, fs)
//
// Logging is disabled by default; see SetLogger.
package bindmap
