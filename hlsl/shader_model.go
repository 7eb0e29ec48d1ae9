// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/bindmap/ir"
)

// ShaderModel represents a DirectX Shader Model version.
// Shader Models define the feature set available for shader compilation.
type ShaderModel uint8

// Supported Shader Model versions.
const (
	// ShaderModel5_0 is the base SM5 version (DirectX 11).
	ShaderModel5_0 ShaderModel = iota

	// ShaderModel5_1 adds register spaces (default).
	ShaderModel5_1

	// ShaderModel6_0 introduces wave intrinsics and DXIL.
	ShaderModel6_0

	// ShaderModel6_1 through ShaderModel6_7 are the later DXC targets.
	ShaderModel6_1
	ShaderModel6_2
	ShaderModel6_3
	ShaderModel6_4
	ShaderModel6_5
	ShaderModel6_6
	ShaderModel6_7
)

// String returns a human-readable representation of the shader model.
// Example: "SM 5.1", "SM 6.0"
func (sm ShaderModel) String() string {
	major, minor := sm.version()
	return fmt.Sprintf("SM %d.%d", major, minor)
}

// ProfileSuffix returns the shader profile suffix for this model.
// Example: "5_1", "6_0"
// Used to construct profiles like "vs_5_1", "ps_6_0".
func (sm ShaderModel) ProfileSuffix() string {
	major, minor := sm.version()
	return fmt.Sprintf("%d_%d", major, minor)
}

// shaderModelVersions holds (major, minor) indexed by ShaderModel.
var shaderModelVersions = [...][2]uint8{
	{5, 0}, {5, 1},
	{6, 0}, {6, 1}, {6, 2}, {6, 3}, {6, 4}, {6, 5}, {6, 6}, {6, 7},
}

// version returns the major and minor version numbers.
// Unknown values report 5.1.
func (sm ShaderModel) version() (major, minor uint8) {
	if int(sm) >= len(shaderModelVersions) {
		return 5, 1
	}
	v := shaderModelVersions[sm]
	return v[0], v[1]
}

// Major returns the major version number.
func (sm ShaderModel) Major() uint8 {
	major, _ := sm.version()
	return major
}

// Minor returns the minor version number.
func (sm ShaderModel) Minor() uint8 {
	_, minor := sm.version()
	return minor
}

// SupportsDXIL returns true if this shader model uses DXIL output.
// Shader Model 6.0+ uses DXIL (DirectX Intermediate Language).
// Earlier models use DXBC (DirectX Bytecode).
func (sm ShaderModel) SupportsDXIL() bool {
	return sm >= ShaderModel6_0
}

// SupportsRegisterSpaces returns true if register clauses may name a space.
// Register spaces were introduced in Shader Model 5.1.
func (sm ShaderModel) SupportsRegisterSpaces() bool {
	return sm >= ShaderModel5_1
}

// Profile returns the compiler profile for a stage, e.g. "ps_5_1".
func (sm ShaderModel) Profile(stage ir.ShaderStage) string {
	return ShaderStageToHLSL(stage) + "_" + sm.ProfileSuffix()
}

// ParseShaderModel parses "5.1", "6_0" or "sm_6_6" style names.
func ParseShaderModel(s string) (ShaderModel, error) {
	v := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "sm")
	v = strings.TrimLeft(v, "_ ")
	v = strings.ReplaceAll(v, "_", ".")
	for i, mm := range shaderModelVersions {
		if v == fmt.Sprintf("%d.%d", mm[0], mm[1]) {
			return ShaderModel(i), nil //nolint:gosec // G115: i indexes a short table
		}
	}
	return 0, NewError(ErrUnsupportedFeature, fmt.Sprintf("unknown shader model %q", s))
}
