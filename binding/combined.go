// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package binding

import (
	"fmt"
	"sort"

	"github.com/gogpu/bindmap/ir"
)

// CombinedSampler is a texture and sampler pair fused into one object for
// backends without separate samplers.
type CombinedSampler struct {
	SamplerLocation Location
	TextureLocation Location

	Sampler ir.GlobalVariableHandle
	Texture ir.GlobalVariableHandle

	// Name is the generated identifier of the fused object.
	Name string
}

// CombinedSamplerName returns <prefix>_combined_<sg>_<sb>_with_<tg>_<tb>.
func CombinedSamplerName(prefix string, sampler, texture Location) string {
	return fmt.Sprintf("%s_combined_%d_%d_with_%d_%d",
		prefix, sampler.Group, sampler.Binding, texture.Group, texture.Binding)
}

// Synthesize returns one CombinedSampler per distinct (sampler, texture)
// pair the entry point samples together, ordered by sampler location then
// texture location.
//
// It reads the module's original binding decorations and must run before
// Rewrite strips them.
func Synthesize(module *ir.Module, entryPoint string, table *Table, prefix string) ([]CombinedSampler, error) {
	if module == nil || table == nil {
		return nil, NewError(ErrTranslationInvariant, "module and table are required")
	}
	epIndex, err := module.EntryPointIndex(entryPoint)
	if err != nil {
		return nil, fmt.Errorf("binding: %w", err)
	}
	usage, err := ir.AnalyzeEntryPoint(module, epIndex)
	if err != nil {
		return nil, fmt.Errorf("binding: %w", err)
	}

	combined := make([]CombinedSampler, 0, len(usage.SamplePairs))
	for _, pair := range usage.SamplePairs {
		samplerLoc, err := pairLocation(module, table, pair.Sampler, KindSampler)
		if err != nil {
			return nil, err
		}
		textureLoc, err := pairLocation(module, table, pair.Image, KindSampledTexture)
		if err != nil {
			return nil, err
		}
		combined = append(combined, CombinedSampler{
			SamplerLocation: samplerLoc,
			TextureLocation: textureLoc,
			Sampler:         pair.Sampler,
			Texture:         pair.Image,
			Name:            CombinedSamplerName(prefix, samplerLoc, textureLoc),
		})
	}

	sort.Slice(combined, func(i, j int) bool {
		if c := Compare(combined[i].SamplerLocation, combined[j].SamplerLocation); c != 0 {
			return c < 0
		}
		return combined[i].TextureLocation.Less(combined[j].TextureLocation)
	})

	seen := make(map[string]bool, len(combined))
	for _, c := range combined {
		if seen[c.Name] {
			return nil, NewLocationError(ErrTranslationInvariant, c.TextureLocation,
				"combined sampler name %q generated twice", c.Name)
		}
		seen[c.Name] = true
	}
	return combined, nil
}

func pairLocation(module *ir.Module, table *Table, handle ir.GlobalVariableHandle, want Kind) (Location, error) {
	if int(handle) >= len(module.GlobalVariables) {
		return Location{}, NewError(ErrTranslationInvariant, fmt.Sprintf("global %d does not exist", handle))
	}
	gv := module.GlobalVariables[handle]
	if gv.Binding == nil {
		return Location{}, NewError(ErrTranslationInvariant,
			fmt.Sprintf("global %q has no binding decoration; combined samplers must be synthesized before renaming", gv.Name))
	}
	loc := Location{Group: gv.Binding.Group, Binding: gv.Binding.Binding}
	info, declared := table.At(loc)
	if !declared || !info.Used || info.Global != handle {
		return Location{}, NewLocationError(ErrTranslationInvariant, loc,
			"global %q is sampled but missing from the binding table", gv.Name)
	}
	if info.Kind != want {
		return Location{}, NewLocationError(ErrUnsupportedCombination, loc,
			"global %q is sampled as %s but declared as %s", gv.Name, want, info.Kind)
	}
	return loc, nil
}

// CombinedFor returns the combined samplers that fuse the given texture.
func CombinedFor(combined []CombinedSampler, texture ir.GlobalVariableHandle) []CombinedSampler {
	var out []CombinedSampler
	for _, c := range combined {
		if c.Texture == texture {
			out = append(out, c)
		}
	}
	return out
}

// LookupCombined returns the combined sampler for one pair.
func LookupCombined(combined []CombinedSampler, texture, sampler ir.GlobalVariableHandle) (CombinedSampler, bool) {
	for _, c := range combined {
		if c.Texture == texture && c.Sampler == sampler {
			return c, true
		}
	}
	return CombinedSampler{}, false
}
