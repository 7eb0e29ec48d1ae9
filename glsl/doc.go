// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl generates GLSL for the flat-name binding model of OpenGL.
//
// The writer expects a module already processed by the binding package:
// resource globals renamed to <prefix>_binding_<group>_<binding> and their
// decorations stripped. It emits no layout(binding=) qualifiers; the
// application binds blocks and units by name at link time.
//
// Supported targets:
//
//   - GLSL ES 3.00: WebGL 2.0 (uniform blocks and combined samplers only)
//   - GLSL 3.30 Core: Desktop OpenGL 3.3+
//   - GLSL 4.20 Core: adds storage images
//   - GLSL ES 3.10, 4.30 Core: adds storage buffers and compute shaders
//
// # Basic Usage
//
//	source, info, err := glsl.Compile(renamed, glsl.Options{
//	    LangVersion:      glsl.Version450,
//	    CombinedSamplers: combined,
//	})
//
// # Texture/Sampler Handling
//
// The IR separates textures and samplers, but GLSL combines them. Every
// (texture, sampler) pair listed in Options.CombinedSamplers becomes one
// sampler uniform; lone samplers produce no declaration. Helper functions
// that take a texture or sampler lose that parameter, which only works when
// every call passes the same resource.
//
// # Reserved Words
//
// The backend escapes conflicting identifier names by prefixing them with
// an underscore. Generated binding names are never escaped; a clash is
// reported as an error.
package glsl
