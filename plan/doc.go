// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package plan reads pipeline binding layouts from TOML.
//
// A plan names the backend and lists bind groups with their bindings:
//
//	backend = "d3d12"
//	shader_model = "5.1"
//
//	[[group]]
//	index = 0
//	  [[group.binding]]
//	  binding = 0
//	  type = "uniform"
//	  visibility = ["vertex", "fragment"]
//	  [[group.binding]]
//	  binding = 1
//	  type = "texture"
//
// Build turns a plan into a bindmap.Device, packed group layouts and a
// pipeline layout.
package plan
