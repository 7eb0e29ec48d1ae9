// Package ir defines the intermediate representation consumed by bindmap.
//
// The IR is designed to be:
//   - Shader-agnostic: Not tied to any specific shading language
//   - Small: Only what binding analysis and the writers need
//   - Read-only for analysis: translation clones before rewriting
//
// # Structure
//
// The IR is organized around a Module type that contains:
//   - Types: All type definitions used in the shader
//   - GlobalVariables: Module-scope variables (uniforms, storage, textures, samplers)
//   - Functions: All function definitions
//   - EntryPoints: Shader entry points with stage information
//
// # Usage Analysis
//
// AnalyzeEntryPoint reports which globals an entry point reaches and which
// image/sampler pairs it samples together, tracing handles passed through
// function arguments back to their globals.
//
// # References
//
// This IR design is inspired by:
//   - naga (Rust): https://github.com/gfx-rs/naga
//   - SPIR-V specification: https://www.khronos.org/registry/SPIR-V/
package ir
