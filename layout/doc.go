// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package layout packs bind group bindings into native descriptor tables
// and assembles pipeline layouts from them.
//
// A BindGroupLayout places each used binding at an offset inside one of two
// tables: the non-sampler table (uniform buffers, storage resources, sampled
// textures) and the sampler table. Each kind gets one range, or several
// consecutive ranges when its binding numbers have gaps, so that every
// descriptor lands on the register the shader declares.
//
// A PipelineLayout gives every non-empty table a root parameter slot and
// shifts register bases by group*MaxBindingsPerGroup. FlatPipelineLayout is
// the GL counterpart: block indices and texture units instead of tables.
package layout
