// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/bindmap/binding"
	"github.com/gogpu/bindmap/ir"
)

// Version represents a GLSL version.
type Version struct {
	Major uint8
	Minor uint8
	ES    bool // true for GLSL ES (OpenGL ES / WebGL)
}

// Common GLSL versions.
var (
	// Desktop OpenGL versions
	Version330 = Version{Major: 3, Minor: 30, ES: false} // OpenGL 3.3 Core
	Version410 = Version{Major: 4, Minor: 10, ES: false} // OpenGL 4.1
	Version420 = Version{Major: 4, Minor: 20, ES: false} // OpenGL 4.2 (image load/store)
	Version430 = Version{Major: 4, Minor: 30, ES: false} // OpenGL 4.3 (storage buffers)
	Version450 = Version{Major: 4, Minor: 50, ES: false} // OpenGL 4.5
	Version460 = Version{Major: 4, Minor: 60, ES: false} // OpenGL 4.6

	// OpenGL ES / WebGL versions
	VersionES300 = Version{Major: 3, Minor: 0, ES: true}  // ES 3.0 / WebGL 2.0
	VersionES310 = Version{Major: 3, Minor: 10, ES: true} // ES 3.1 (compute, storage buffers)
	VersionES320 = Version{Major: 3, Minor: 20, ES: true} // ES 3.2
)

// String returns the version as a GLSL version directive value.
func (v Version) String() string {
	if v.ES {
		return fmt.Sprintf("%d%02d es", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d%02d core", v.Major, v.Minor)
}

// VersionNumber returns just the numeric version (e.g., "330", "300").
func (v Version) VersionNumber() string {
	return fmt.Sprintf("%d%02d", v.Major, v.Minor)
}

// knownVersions lists the versions ParseVersion accepts.
var knownVersions = []Version{
	Version330, Version410, Version420, Version430, Version450, Version460,
	VersionES300, VersionES310, VersionES320,
}

// ParseVersion parses a version directive value such as "450", "450 core"
// or "300 es".
func ParseVersion(s string) (Version, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 || len(fields) > 2 {
		return Version{}, fmt.Errorf("glsl: invalid version %q", s)
	}
	es := false
	if len(fields) == 2 {
		switch fields[1] {
		case "es":
			es = true
		case "core":
		default:
			return Version{}, fmt.Errorf("glsl: invalid version profile %q", fields[1])
		}
	}
	for _, v := range knownVersions {
		if v.ES == es && v.VersionNumber() == fields[0] {
			return v, nil
		}
	}
	return Version{}, fmt.Errorf("glsl: unsupported version %q", s)
}

// atLeast reports whether v is at least the desktop version desktop, or
// the ES version es for ES targets. Versions are Major*100+Minor.
func (v Version) atLeast(desktop, es int) bool {
	n := int(v.Major)*100 + int(v.Minor)
	if v.ES {
		return n >= es
	}
	return n >= desktop
}

// SupportsCompute returns true if this version supports compute shaders.
func (v Version) SupportsCompute() bool {
	return v.atLeast(430, 310)
}

// SupportsStorageBuffers returns true if this version supports storage buffers.
func (v Version) SupportsStorageBuffers() bool {
	return v.atLeast(430, 310)
}

// SupportsImageLoadStore returns true if this version supports storage images.
func (v Version) SupportsImageLoadStore() bool {
	return v.atLeast(420, 310)
}

// Options configures GLSL code generation.
//
// The module passed to Compile is expected to be the output of
// binding.Rewrite with a binding.NamePlan: resource globals already carry
// their flat names and no binding decorations.
type Options struct {
	// LangVersion is the target GLSL version.
	// Defaults to Version450 if zero.
	LangVersion Version

	// EntryPoint specifies which entry point to compile.
	// If empty, the first entry point is compiled.
	EntryPoint string

	// CombinedSamplers lists the fused texture-sampler objects of the entry
	// point, as returned by binding.Synthesize on the original module.
	CombinedSamplers []binding.CombinedSampler

	// ForceHighPrecision forces highp precision for all float types (ES only).
	ForceHighPrecision bool
}

// DefaultOptions returns sensible default options for GLSL generation.
func DefaultOptions() Options {
	return Options{
		LangVersion:        Version450,
		ForceHighPrecision: true,
	}
}

// TranslationInfo contains metadata about the translation.
type TranslationInfo struct {
	// EntryPointNames maps original entry point names to generated GLSL names.
	EntryPointNames map[string]string

	// RequiredVersion is the minimum GLSL version needed for this shader.
	RequiredVersion Version

	// UniformBlocks lists the declared uniform block names in declaration order.
	UniformBlocks []string

	// StorageBlocks lists the declared shader storage block names.
	StorageBlocks []string

	// SamplerUniforms lists the declared sampler uniforms: combined samplers
	// first, then textures read without a sampler.
	SamplerUniforms []string

	// Images lists the declared storage image uniforms.
	Images []string
}

// Compile generates GLSL source code from an IR module.
// Returns the GLSL source as a string, translation info, or an error.
func Compile(module *ir.Module, options Options) (string, TranslationInfo, error) {
	if module == nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: module is nil")
	}
	if err := ir.Check(module); err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", err)
	}
	// Apply defaults for zero values
	if options.LangVersion.Major == 0 {
		options.LangVersion = Version450
	}

	epIndex, err := module.EntryPointIndex(options.EntryPoint)
	if err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", err)
	}
	usage, err := ir.AnalyzeEntryPoint(module, epIndex)
	if err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", err)
	}

	w := newWriter(module, &options, epIndex, usage)
	if err := w.writeModule(); err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", err)
	}

	info := TranslationInfo{
		EntryPointNames: w.entryPointNames,
		RequiredVersion: w.requiredVersion,
		UniformBlocks:   w.uniformBlocks,
		StorageBlocks:   w.storageBlocks,
		SamplerUniforms: w.samplerUniforms,
		Images:          w.images,
	}

	return w.String(), info, nil
}
