// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/bindmap/binding"
	"github.com/gogpu/bindmap/ir"
)

// registerKey identifies one register slot across all classes.
type registerKey struct {
	typ      RegisterType
	register uint32
	space    uint32
}

// formatBinding formats a register clause. Without spaces (SM 5.0) the
// space is omitted.
func formatBinding(target BindTarget, spaces bool) string {
	if !spaces {
		return fmt.Sprintf("register(%s%d)", target.Type, target.Register)
	}
	return fmt.Sprintf("register(%s%d, space%d)", target.Type, target.Register, target.Space)
}

// registerTypeForGlobal returns the register class a resource global must
// be declared in.
func (w *Writer) registerTypeForGlobal(global *ir.GlobalVariable) (RegisterType, error) {
	switch global.Space {
	case ir.SpaceUniform:
		return RegisterTypeB, nil
	case ir.SpaceStorage:
		return RegisterTypeU, nil
	case ir.SpaceHandle:
		inner, ok := w.resolveType(global.Type)
		if !ok {
			return 0, NewError(ErrInvalidModule, fmt.Sprintf("global %q has an invalid type", global.Name))
		}
		switch t := inner.(type) {
		case ir.SamplerType:
			return RegisterTypeS, nil
		case ir.ImageType:
			if t.Class == ir.ImageClassStorage {
				return RegisterTypeU, nil
			}
			return RegisterTypeT, nil
		}
		return 0, NewError(ErrUnsupportedType, fmt.Sprintf("global %q: %T is not a resource type", global.Name, inner))
	default:
		return 0, NewError(ErrInternalError, fmt.Sprintf("global %q is not a resource", global.Name))
	}
}

// writeGlobalVariables declares every resource the entry point uses, then
// module-scope variables.
func (w *Writer) writeGlobalVariables() error {
	spaces := w.options.ShaderModel.SupportsRegisterSpaces()
	owners := make(map[registerKey]string)

	wrote := false
	for _, handle := range w.usage.Globals {
		global := &w.module.GlobalVariables[handle]
		if !isResourceSpace(global.Space) {
			continue
		}
		name := w.names[nameKey{kind: nameKeyGlobalVariable, handle1: uint32(handle)}]

		target, ok := w.options.BindingMap[handle]
		if !ok {
			return NewError(ErrMissingBinding, fmt.Sprintf("resource %q has no register", global.Name))
		}
		want, err := w.registerTypeForGlobal(global)
		if err != nil {
			return err
		}
		if target.Type != want {
			return NewError(ErrRegisterConflict, fmt.Sprintf("resource %q needs a %s register, bound to %s",
				global.Name, want, formatBinding(target, true)))
		}
		if !spaces && target.Space != 0 {
			return NewError(ErrUnsupportedFeature, fmt.Sprintf("resource %q uses space%d, %s has no register spaces",
				global.Name, target.Space, w.options.ShaderModel))
		}
		if target.Space != 0 && w.requiredShaderModel < ShaderModel5_1 {
			w.requiredShaderModel = ShaderModel5_1
		}

		key := registerKey{typ: target.Type, register: target.Register, space: target.Space}
		if other, taken := owners[key]; taken {
			return WrapError(ErrRegisterConflict, binding.NewError(binding.ErrTranslationInvariant,
				fmt.Sprintf("%q and %q both bound to %s", other, name, formatBinding(target, true))))
		}
		owners[key] = name

		clause := formatBinding(target, spaces)
		if err := w.writeResource(name, global, clause); err != nil {
			return err
		}
		w.registerBindings[name] = clause
		w.resources = append(w.resources, ResourceDeclaration{Name: name, Global: handle, Target: target})
		wrote = true
	}
	if wrote {
		w.writeLine("")
	}

	wrote = false
	for handle, global := range w.module.GlobalVariables {
		if isResourceSpace(global.Space) {
			continue
		}
		name := w.names[nameKey{kind: nameKeyGlobalVariable, handle1: uint32(handle)}] //nolint:gosec // G115: handle is valid slice index
		typeName, arraySuffix := w.getTypeNameWithArraySuffix(global.Type)
		switch global.Space {
		case ir.SpaceWorkGroup:
			w.writeLine("groupshared %s %s%s;", typeName, name, arraySuffix)
		default:
			w.writeLine("static %s %s%s;", typeName, name, arraySuffix)
		}
		wrote = true
	}
	if wrote {
		w.writeLine("")
	}
	return nil
}

// writeResource writes one resource declaration with its register clause.
func (w *Writer) writeResource(name string, global *ir.GlobalVariable, clause string) error {
	switch global.Space {
	case ir.SpaceUniform:
		w.writeCBufferDeclaration(name, global.Type, clause)

	case ir.SpaceStorage:
		inner, _ := w.resolveType(global.Type)
		arr, ok := inner.(ir.ArrayType)
		if !ok || arr.Size.Constant != nil {
			return NewError(ErrUnsupportedType,
				fmt.Sprintf("storage buffer %q must be a runtime-sized array", global.Name))
		}
		w.writeLine("RWStructuredBuffer<%s> %s : %s;", w.getTypeName(arr.Base), name, clause)
		w.usedFeatures |= FeatureStorageBuffers

	case ir.SpaceHandle:
		inner, _ := w.resolveType(global.Type)
		switch t := inner.(type) {
		case ir.SamplerType:
			if t.Comparison {
				w.usedFeatures |= FeatureComparisonSamplers
			}
			w.writeLine("%s %s : %s;", SamplerToHLSL(t.Comparison), name, clause)
		case ir.ImageType:
			if t.Class == ir.ImageClassStorage {
				w.usedFeatures |= FeatureStorageImages
			}
			w.writeLine("%s %s : %s;", ImageToHLSL(t), name, clause)
		}
	}
	return nil
}

// writeCBufferDeclaration writes a cbuffer holding one member named after
// the resource.
func (w *Writer) writeCBufferDeclaration(name string, ty ir.TypeHandle, clause string) {
	typeName, arraySuffix := w.getTypeNameWithArraySuffix(ty)
	w.writeLine("cbuffer %s : %s {", w.namer.call(name+"_cbuffer"), clause)
	w.pushIndent()
	w.writeLine("%s %s%s;", typeName, name, arraySuffix)
	w.popIndent()
	w.writeLine("};")
}

// isResourceSpace reports whether globals in space are bound resources.
func isResourceSpace(space ir.AddressSpace) bool {
	return space == ir.SpaceUniform || space == ir.SpaceStorage || space == ir.SpaceHandle
}
