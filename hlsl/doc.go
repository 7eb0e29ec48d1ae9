// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlsl generates HLSL for the table-based binding model of D3D12.
//
// The writer expects a module already processed by binding.Rewrite (binding
// decorations stripped, names kept) together with a BindingMap giving the
// register of every resource global. NewBindingMap derives that map from a
// binding table and its register plan, where
//
//	register = binding + group*maxBindingsPerGroup
//
// and every resource lives in space 0.
//
// # Shader Model Support
//
//   - SM 5.0: register(x#) clauses without spaces
//   - SM 5.1+: register(x#, space#) clauses (default)
//
// # Usage
//
//	targets, err := hlsl.NewBindingMap(table, plan)
//	if err != nil {
//	    return err
//	}
//	options := hlsl.DefaultOptions()
//	options.BindingMap = targets
//
//	source, info, err := hlsl.Compile(rewritten, options)
//
// # Register Classes
//
//	cbuffer       : register(b#, space#)  // uniform buffers
//	Texture       : register(t#, space#)  // sampled textures
//	SamplerState  : register(s#, space#)  // samplers
//	RW resources  : register(u#, space#)  // storage buffers and images
//
// Textures and samplers stay separate objects; helper functions receive
// them as ordinary parameters.
package hlsl
