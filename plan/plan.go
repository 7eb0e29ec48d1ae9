// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/bindmap"
	"github.com/gogpu/bindmap/glsl"
	"github.com/gogpu/bindmap/hlsl"
	"github.com/gogpu/bindmap/layout"
)

// File is a pipeline binding plan as written in TOML.
type File struct {
	// Backend is "gl" or "d3d12". Empty means gl.
	Backend string `toml:"backend,omitempty"`

	// Prefix overrides the generated name prefix.
	Prefix string `toml:"prefix,omitempty"`

	// GLSLVersion is a version directive value such as "450 core" or "300 es".
	GLSLVersion string `toml:"glsl_version,omitempty"`

	// ShaderModel is an HLSL shader model such as "5.1".
	ShaderModel string `toml:"shader_model,omitempty"`

	Limits *Limits `toml:"limits,omitempty"`

	Groups []Group `toml:"group"`
}

// Limits overrides the device limits. Zero fields keep the defaults.
type Limits struct {
	MaxBindGroups       uint32 `toml:"max_bind_groups,omitempty"`
	MaxBindingsPerGroup uint32 `toml:"max_bindings_per_group,omitempty"`
}

// Group is one bind group.
type Group struct {
	Index    uint32    `toml:"index"`
	Bindings []Binding `toml:"binding"`
}

// Binding is one entry of a bind group.
type Binding struct {
	Binding uint32 `toml:"binding"`

	// Type is one of uniform, storage, read-only-storage, texture,
	// depth-texture, storage-texture, sampler or comparison-sampler.
	Type string `toml:"type"`

	// Visibility lists vertex, fragment and compute. Empty means all.
	Visibility []string `toml:"visibility,omitempty"`
}

// Read decodes a plan. Unknown keys are rejected.
func Read(r io.Reader) (*File, error) {
	var f File
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("plan: line %d column %d: %w", row, col, err)
		}
		return nil, fmt.Errorf("plan: %w", err)
	}
	return &f, nil
}

// Parse decodes a plan held in memory.
func Parse(data []byte) (*File, error) {
	return Read(bytes.NewReader(data))
}

// Load reads and decodes the plan at path.
func Load(path string) (*File, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	f, err := Read(fp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Marshal encodes the plan as TOML.
func (f *File) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	return buf.Bytes(), nil
}

// Options returns the device options the plan selects.
func (f *File) Options() (bindmap.Options, error) {
	opts := bindmap.DefaultOptions()
	if f.Backend != "" {
		b, err := bindmap.ParseBackend(f.Backend)
		if err != nil {
			return opts, fmt.Errorf("plan: %w", err)
		}
		opts.Backend = b
	}
	if f.Prefix != "" {
		opts.NamePrefix = f.Prefix
	}
	if f.GLSLVersion != "" {
		v, err := glsl.ParseVersion(f.GLSLVersion)
		if err != nil {
			return opts, fmt.Errorf("plan: %w", err)
		}
		opts.GLSLVersion = v
	}
	if f.ShaderModel != "" {
		sm, err := hlsl.ParseShaderModel(f.ShaderModel)
		if err != nil {
			return opts, fmt.Errorf("plan: %w", err)
		}
		opts.ShaderModel = sm
	}
	if f.Limits != nil {
		if f.Limits.MaxBindGroups != 0 {
			opts.Limits.MaxBindGroups = f.Limits.MaxBindGroups
		}
		if f.Limits.MaxBindingsPerGroup != 0 {
			opts.Limits.MaxBindingsPerGroup = f.Limits.MaxBindingsPerGroup
		}
	}
	return opts, nil
}

// Entries returns the WebGPU entries of every group, indexed by group
// number. Groups the plan omits are nil.
func (f *File) Entries() ([][]gputypes.BindGroupLayoutEntry, error) {
	var n uint32
	seen := make(map[uint32]bool, len(f.Groups))
	for _, g := range f.Groups {
		if seen[g.Index] {
			return nil, fmt.Errorf("plan: group %d declared twice", g.Index)
		}
		seen[g.Index] = true
		n = max(n, g.Index+1)
	}

	out := make([][]gputypes.BindGroupLayoutEntry, n)
	for _, g := range f.Groups {
		entries := make([]gputypes.BindGroupLayoutEntry, 0, len(g.Bindings))
		for _, b := range g.Bindings {
			e, err := b.entry()
			if err != nil {
				return nil, fmt.Errorf("plan: group %d binding %d: %w", g.Index, b.Binding, err)
			}
			entries = append(entries, e)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Binding < entries[j].Binding })
		out[g.Index] = entries
	}
	return out, nil
}

func (b Binding) entry() (gputypes.BindGroupLayoutEntry, error) {
	e := gputypes.BindGroupLayoutEntry{Binding: b.Binding}
	switch strings.ToLower(b.Type) {
	case "uniform":
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
	case "storage":
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}
	case "read-only-storage":
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}
	case "texture":
		e.Texture = &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	case "depth-texture":
		e.Texture = &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeDepth,
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	case "storage-texture":
		e.StorageTexture = &gputypes.StorageTextureBindingLayout{
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	case "sampler":
		e.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
	case "comparison-sampler":
		e.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeComparison}
	default:
		return e, fmt.Errorf("unknown binding type %q", b.Type)
	}

	if len(b.Visibility) == 0 {
		e.Visibility = gputypes.ShaderStageVertex | gputypes.ShaderStageFragment | gputypes.ShaderStageCompute
	}
	for _, stage := range b.Visibility {
		switch strings.ToLower(stage) {
		case "vertex":
			e.Visibility |= gputypes.ShaderStageVertex
		case "fragment":
			e.Visibility |= gputypes.ShaderStageFragment
		case "compute":
			e.Visibility |= gputypes.ShaderStageCompute
		default:
			return e, fmt.Errorf("unknown stage %q", stage)
		}
	}
	return e, nil
}

// Pipeline is a plan built on a device.
type Pipeline struct {
	Device *bindmap.Device
	Groups []*layout.BindGroupLayout
	Layout *bindmap.PipelineLayout
}

// Build creates the device, group layouts and pipeline layout of the plan.
func (f *File) Build() (*Pipeline, error) {
	opts, err := f.Options()
	if err != nil {
		return nil, err
	}
	dev, err := bindmap.NewDevice(opts)
	if err != nil {
		return nil, err
	}
	entries, err := f.Entries()
	if err != nil {
		return nil, err
	}

	groups := make([]*layout.BindGroupLayout, len(entries))
	for g, es := range entries {
		if es == nil {
			continue
		}
		bgl, err := dev.CreateBindGroupLayout(uint32(g), es)
		if err != nil {
			return nil, fmt.Errorf("plan: group %d: %w", g, err)
		}
		groups[g] = bgl
	}
	pl, err := dev.CreatePipelineLayout(groups)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	return &Pipeline{Device: dev, Groups: groups, Layout: pl}, nil
}

// FromLayouts describes group layouts as a plan, the inverse of Build.
func FromLayouts(opts bindmap.Options, groups []*layout.BindGroupLayout) *File {
	f := &File{
		Backend: opts.Backend.String(),
		Prefix:  opts.NamePrefix,
		Limits: &Limits{
			MaxBindGroups:       opts.Limits.MaxBindGroups,
			MaxBindingsPerGroup: opts.Limits.MaxBindingsPerGroup,
		},
	}
	for g, bgl := range groups {
		if bgl == nil {
			continue
		}
		group := Group{Index: uint32(g)}
		for _, e := range layout.InfosToEntries(bgl.Used()) {
			group.Bindings = append(group.Bindings, bindingOf(e))
		}
		f.Groups = append(f.Groups, group)
	}
	return f
}

func bindingOf(e gputypes.BindGroupLayoutEntry) Binding {
	b := Binding{Binding: e.Binding}
	switch {
	case e.Buffer != nil && e.Buffer.Type == gputypes.BufferBindingTypeUniform:
		b.Type = "uniform"
	case e.Buffer != nil && e.Buffer.Type == gputypes.BufferBindingTypeReadOnlyStorage:
		b.Type = "read-only-storage"
	case e.Buffer != nil:
		b.Type = "storage"
	case e.Sampler != nil && e.Sampler.Type == gputypes.SamplerBindingTypeComparison:
		b.Type = "comparison-sampler"
	case e.Sampler != nil:
		b.Type = "sampler"
	case e.Texture != nil && e.Texture.SampleType == gputypes.TextureSampleTypeDepth:
		b.Type = "depth-texture"
	case e.Texture != nil:
		b.Type = "texture"
	case e.StorageTexture != nil:
		b.Type = "storage-texture"
	}
	if e.Visibility&gputypes.ShaderStageVertex != 0 {
		b.Visibility = append(b.Visibility, "vertex")
	}
	if e.Visibility&gputypes.ShaderStageFragment != 0 {
		b.Visibility = append(b.Visibility, "fragment")
	}
	if e.Visibility&gputypes.ShaderStageCompute != 0 {
		b.Visibility = append(b.Visibility, "compute")
	}
	return b
}
