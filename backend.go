// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bindmap

import (
	"fmt"
	"strings"
)

// Backend selects the native binding model a Device translates to.
type Backend uint8

const (
	// BackendGL is the flat-name model of OpenGL: GLSL output, bindings
	// renamed to <prefix>_binding_<g>_<b>, and a combined sampler for every
	// texture/sampler pair the shader samples with.
	BackendGL Backend = iota

	// BackendD3D12 is the table model of Direct3D 12: HLSL output with
	// register = binding + group*MaxBindingsPerGroup, and two descriptor
	// tables per bind group.
	BackendD3D12
)

// String returns the backend name.
func (b Backend) String() string {
	switch b {
	case BackendGL:
		return "gl"
	case BackendD3D12:
		return "d3d12"
	default:
		return fmt.Sprintf("Backend(%d)", uint8(b))
	}
}

// ParseBackend parses "gl"/"opengl" or "d3d12"/"dx12", case-insensitively.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gl", "opengl", "glsl":
		return BackendGL, nil
	case "d3d12", "dx12", "hlsl":
		return BackendD3D12, nil
	default:
		return 0, fmt.Errorf("bindmap: unknown backend %q", s)
	}
}

// flatNames reports whether the backend renames bindings instead of
// numbering registers.
func (b Backend) flatNames() bool {
	return b == BackendGL
}
