// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package binding extracts, pairs and renames the resource bindings of a
// shader module.
//
// The passes run in a fixed order on one entry point:
//
//	table, _ := binding.Extract(module, "fs_main", binding.DefaultLimits())
//	combined, _ := binding.Synthesize(module, "fs_main", table, "bm") // flat-name backends only
//	names, _ := binding.NewNamePlan(table, "bm")
//	rewritten, _ := binding.Rewrite(module, table, names)
//
// Synthesize reads the original @group/@binding decorations, so it must run
// before Rewrite strips them. Table backends use NewRegisterPlan instead of a
// NamePlan and pass a nil Renamer to Rewrite.
//
// Bindings are visited in ascending (group, binding) order everywhere, so the
// generated names, registers and combined sampler lists are deterministic.
package binding
