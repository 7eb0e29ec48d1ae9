// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/bindmap/binding"
	"github.com/gogpu/bindmap/ir"
)

// nameKey identifies an IR entity for name lookup.
type nameKey struct {
	kind    nameKeyKind
	handle1 uint32
	handle2 uint32
}

type nameKeyKind uint8

const (
	nameKeyType nameKeyKind = iota
	nameKeyStructMember
	nameKeyGlobalVariable
	nameKeyFunction
	nameKeyFunctionArgument
)

// samplePair identifies a texture global sampled with a sampler global.
type samplePair struct {
	texture ir.GlobalVariableHandle
	sampler ir.GlobalVariableHandle
}

// Writer generates GLSL source code from IR.
type Writer struct {
	module  *ir.Module
	options *Options

	// Output buffer
	out strings.Builder

	// Current indentation level
	indent int

	// Name management
	names map[nameKey]string
	namer *namer

	// Type tracking
	typeNames map[ir.TypeHandle]string

	// Entry point selection and the resources it reaches
	epIndex int
	usage   ir.EntryPointUsage

	// Combined samplers by (texture, sampler) and the name texelFetch reads
	// each sampled texture through.
	combined  map[samplePair]string
	fetchName map[ir.GlobalVariableHandle]string

	// Handle-typed helper arguments, resolved to the one global each receives.
	argGlobals map[nameKey]ir.GlobalVariableHandle

	// Function context (set during function writing)
	currentFunction   *ir.Function
	currentFuncHandle ir.FunctionHandle
	localNames        map[uint32]string
	namedExpressions  map[ir.ExpressionHandle]string

	// Entry point context
	inEntryPoint     bool
	entryPointResult *ir.FunctionResult

	// Output tracking
	entryPointNames map[string]string
	requiredVersion Version
	uniformBlocks   []string
	storageBlocks   []string
	samplerUniforms []string
	images          []string
}

// namer generates unique identifiers.
type namer struct {
	usedNames map[string]struct{}
	counter   uint32
}

func newNamer() *namer {
	return &namer{
		usedNames: make(map[string]struct{}),
	}
}

// call generates a unique name based on the given base.
func (n *namer) call(base string) string {
	// Escape reserved words
	escaped := escapeKeyword(base)

	// First try the base name directly
	if _, used := n.usedNames[escaped]; !used {
		n.usedNames[escaped] = struct{}{}
		return escaped
	}

	// Add numeric suffix
	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", escaped, n.counter)
		if _, used := n.usedNames[candidate]; !used {
			n.usedNames[candidate] = struct{}{}
			return candidate
		}
	}
}

// reserve claims a name verbatim. Generated binding names must reach the
// output unchanged, so a clash is an error rather than a suffix.
func (n *namer) reserve(name string) error {
	if _, used := n.usedNames[name]; used {
		return binding.NewError(binding.ErrTranslationInvariant,
			fmt.Sprintf("name %q declared twice", name))
	}
	if escapeKeyword(name) != name {
		return binding.NewError(binding.ErrUnsupportedCombination,
			fmt.Sprintf("name %q is reserved in GLSL", name))
	}
	n.usedNames[name] = struct{}{}
	return nil
}

// newWriter creates a new GLSL writer.
func newWriter(module *ir.Module, options *Options, epIndex int, usage ir.EntryPointUsage) *Writer {
	return &Writer{
		module:           module,
		options:          options,
		names:            make(map[nameKey]string),
		namer:            newNamer(),
		typeNames:        make(map[ir.TypeHandle]string),
		epIndex:          epIndex,
		usage:            usage,
		combined:         make(map[samplePair]string),
		fetchName:        make(map[ir.GlobalVariableHandle]string),
		argGlobals:       make(map[nameKey]ir.GlobalVariableHandle),
		entryPointNames:  make(map[string]string),
		namedExpressions: make(map[ir.ExpressionHandle]string),
		requiredVersion:  options.LangVersion,
	}
}

// String returns the generated GLSL source code.
func (w *Writer) String() string {
	return w.out.String()
}

// writeModule generates GLSL code for the selected entry point.
func (w *Writer) writeModule() error {
	// 1. Write version directive
	w.writeVersionDirective()

	// 2. Write precision qualifiers (ES only)
	w.writePrecisionQualifiers()

	// 3. Register all names; resource names first so they stay verbatim
	if err := w.registerResourceNames(); err != nil {
		return err
	}
	if err := w.registerNames(); err != nil {
		return err
	}

	// 4. Resolve handle arguments of helper functions
	if err := w.resolveHandleArguments(); err != nil {
		return err
	}

	// 5. Write type definitions (structs)
	w.writeTypes()

	// 6. Write resources and module-scope variables
	if err := w.writeGlobalVariables(); err != nil {
		return err
	}

	// 7. Write regular functions
	if err := w.writeFunctions(); err != nil {
		return err
	}

	// 8. Write the entry point
	ep := &w.module.EntryPoints[w.epIndex]
	return w.writeEntryPoint(ep)
}

// writeVersionDirective writes the #version directive.
func (w *Writer) writeVersionDirective() {
	w.writeLine("#version %s", w.options.LangVersion.String())
	w.writeLine("")
}

// writePrecisionQualifiers writes precision qualifiers for ES.
func (w *Writer) writePrecisionQualifiers() {
	if !w.options.LangVersion.ES {
		return
	}

	precision := "mediump"
	if w.options.ForceHighPrecision {
		precision = "highp"
	}
	w.writeLine("precision %s float;", precision)
	w.writeLine("precision highp int;")
	w.writeLine("precision %s sampler2D;", precision)
	w.writeLine("precision %s sampler3D;", precision)
	w.writeLine("precision %s samplerCube;", precision)
	w.writeLine("")
}

// registerResourceNames claims the combined sampler names and the names of
// every resource global the entry point uses.
func (w *Writer) registerResourceNames() error {
	for _, c := range w.options.CombinedSamplers {
		if !w.usage.Uses(c.Texture) || !w.usage.Uses(c.Sampler) {
			continue
		}
		tex, ok := w.imageType(c.Texture)
		if !ok || tex.Class == ir.ImageClassStorage {
			return binding.NewLocationError(binding.ErrUnsupportedCombination, c.TextureLocation,
				"combined sampler %q does not refer to a sampled texture", c.Name)
		}
		key := samplePair{texture: c.Texture, sampler: c.Sampler}
		if _, dup := w.combined[key]; dup {
			continue
		}
		if err := w.namer.reserve(c.Name); err != nil {
			return err
		}
		w.combined[key] = c.Name
		if _, ok := w.fetchName[c.Texture]; !ok {
			w.fetchName[c.Texture] = c.Name
		}
	}

	for _, handle := range w.usage.Globals {
		global := &w.module.GlobalVariables[handle]
		key := nameKey{kind: nameKeyGlobalVariable, handle1: uint32(handle)}
		switch global.Space {
		case ir.SpaceUniform, ir.SpaceStorage:
			if err := w.namer.reserve(global.Name); err != nil {
				return err
			}
			w.names[key] = w.namer.call(global.Name + "_data")
		case ir.SpaceHandle:
			inner, _ := w.module.ResolveGlobalType(handle)
			if _, isSampler := inner.(ir.SamplerType); isSampler {
				continue
			}
			if _, fused := w.fetchName[handle]; fused {
				continue
			}
			if err := w.namer.reserve(global.Name); err != nil {
				return err
			}
			w.names[key] = global.Name
			w.fetchName[handle] = global.Name
		}
	}
	return nil
}

// registerNames assigns unique names to types, private globals and functions.
func (w *Writer) registerNames() error {
	// Register type names
	for handle, typ := range w.module.Types {
		var baseName string
		if typ.Name != "" {
			baseName = typ.Name
		} else {
			baseName = fmt.Sprintf("type_%d", handle)
		}
		name := w.namer.call(baseName)
		w.names[nameKey{kind: nameKeyType, handle1: uint32(handle)}] = name //nolint:gosec // G115: handle is valid slice index
		w.typeNames[ir.TypeHandle(handle)] = name                           //nolint:gosec // G115: handle is valid slice index

		// Register struct member names
		if st, ok := typ.Inner.(ir.StructType); ok {
			for memberIdx, member := range st.Members {
				memberName := member.Name
				if memberName == "" {
					memberName = fmt.Sprintf("member_%d", memberIdx)
				}
				w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(handle), handle2: uint32(memberIdx)}] = escapeKeyword(memberName) //nolint:gosec // G115: handle is valid slice index
			}
		}
	}

	// Register module-scope variables that are not resources
	for handle, global := range w.module.GlobalVariables {
		if isResourceSpace(global.Space) {
			continue
		}
		baseName := global.Name
		if baseName == "" {
			baseName = fmt.Sprintf("global_%d", handle)
		}
		w.names[nameKey{kind: nameKeyGlobalVariable, handle1: uint32(handle)}] = w.namer.call(baseName) //nolint:gosec // G115: handle is valid slice index
	}

	// Register function names
	for handle := range w.module.Functions {
		fn := &w.module.Functions[handle]
		baseName := fn.Name
		if baseName == "" {
			baseName = fmt.Sprintf("function_%d", handle)
		}
		w.names[nameKey{kind: nameKeyFunction, handle1: uint32(handle)}] = w.namer.call(baseName) //nolint:gosec // G115: handle is valid slice index

		for argIdx, arg := range fn.Arguments {
			argName := arg.Name
			if argName == "" {
				argName = fmt.Sprintf("arg_%d", argIdx)
			}
			w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(handle), handle2: uint32(argIdx)}] = escapeKeyword(argName) //nolint:gosec // G115: handle is valid slice index
		}
	}

	// The entry point is always emitted as main
	ep := w.module.EntryPoints[w.epIndex]
	w.entryPointNames[ep.Name] = "main"
	return nil
}

// resolveHandleArguments maps each texture or sampler argument of a helper
// function to the single global every call site passes. GLSL cannot pass
// separate samplers, so such arguments are removed and their uses refer to
// the global directly.
func (w *Writer) resolveHandleArguments() error {
	epFunc := w.module.EntryPoints[w.epIndex].Function
	for handle := range w.module.Functions {
		fh := ir.FunctionHandle(handle) //nolint:gosec // G115: handle is valid slice index
		if fh == epFunc || !w.usage.Reaches(fh) {
			continue
		}
		fn := &w.module.Functions[handle]
		for argIdx, arg := range fn.Arguments {
			if !w.isHandleType(arg.Type) {
				continue
			}
			origins := w.usage.ArgumentOrigins(fh, argIdx)
			if len(origins) != 1 {
				return binding.NewError(binding.ErrUnsupportedCombination,
					fmt.Sprintf("argument %q of function %q is bound to %d resources, GLSL needs exactly one",
						arg.Name, fn.Name, len(origins)))
			}
			w.argGlobals[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(handle), handle2: uint32(argIdx)}] = origins[0] //nolint:gosec // G115: indices are valid slice indices
		}
	}
	return nil
}

// writeTypes writes struct type definitions.
func (w *Writer) writeTypes() {
	for handle, typ := range w.module.Types {
		st, ok := typ.Inner.(ir.StructType)
		if !ok {
			continue
		}

		typeName := w.typeNames[ir.TypeHandle(handle)] //nolint:gosec // G115: handle is valid slice index
		w.writeLine("struct %s {", typeName)
		w.pushIndent()

		for memberIdx, member := range st.Members {
			baseType := w.getBaseTypeName(member.Type)
			arraySuffix := w.getArraySuffix(member.Type)
			memberName := w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(handle), handle2: uint32(memberIdx)}] //nolint:gosec // G115: handle is valid slice index
			w.writeLine("%s %s%s;", baseType, memberName, arraySuffix)
		}

		w.popIndent()
		w.writeLine("};")
		w.writeLine("")
	}
}

// writeGlobalVariables writes uniform blocks, storage blocks, sampler and
// image uniforms, then module-scope variables.
func (w *Writer) writeGlobalVariables() error {
	wrote := false
	for _, handle := range w.usage.Globals {
		global := &w.module.GlobalVariables[handle]
		if !isResourceSpace(global.Space) {
			continue
		}
		if err := w.writeResource(handle, global); err != nil {
			return err
		}
		wrote = true
	}

	for _, c := range w.options.CombinedSamplers {
		name, ok := w.combined[samplePair{texture: c.Texture, sampler: c.Sampler}]
		if !ok || name != c.Name {
			continue
		}
		tex, _ := w.imageType(c.Texture)
		w.writeLine("uniform %s %s;", w.imageToGLSL(tex), name)
		w.samplerUniforms = append(w.samplerUniforms, name)
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
		baseType := w.getBaseTypeName(global.Type)
		arraySuffix := w.getArraySuffix(global.Type)
		switch global.Space {
		case ir.SpaceWorkGroup:
			w.writeLine("shared %s %s%s;", baseType, name, arraySuffix)
		default:
			w.writeLine("%s %s%s;", baseType, name, arraySuffix)
		}
		wrote = true
	}
	if wrote {
		w.writeLine("")
	}
	return nil
}

// writeResource declares one resource global under its flat name. Lone
// samplers and textures reached only through combined samplers declare
// nothing.
func (w *Writer) writeResource(handle ir.GlobalVariableHandle, global *ir.GlobalVariable) error {
	dataName := w.names[nameKey{kind: nameKeyGlobalVariable, handle1: uint32(handle)}]
	baseType := w.getBaseTypeName(global.Type)
	arraySuffix := w.getArraySuffix(global.Type)

	switch global.Space {
	case ir.SpaceUniform:
		w.writeLine("layout(std140) uniform %s {", global.Name)
		w.pushIndent()
		w.writeLine("%s %s%s;", baseType, dataName, arraySuffix)
		w.popIndent()
		w.writeLine("};")
		w.uniformBlocks = append(w.uniformBlocks, global.Name)

	case ir.SpaceStorage:
		if !w.options.LangVersion.SupportsStorageBuffers() {
			return binding.NewError(binding.ErrUnsupportedCombination,
				fmt.Sprintf("storage buffer %q needs GLSL 4.30 or ES 3.10, target is %s",
					global.Name, w.options.LangVersion.VersionNumber()))
		}
		w.writeLine("layout(std430) buffer %s {", global.Name)
		w.pushIndent()
		w.writeLine("%s %s%s;", baseType, dataName, arraySuffix)
		w.popIndent()
		w.writeLine("};")
		w.storageBlocks = append(w.storageBlocks, global.Name)

	case ir.SpaceHandle:
		img, ok := w.imageType(handle)
		if !ok {
			return nil // sampler: only reachable through a combined sampler
		}
		if img.Class == ir.ImageClassStorage {
			if !w.options.LangVersion.SupportsImageLoadStore() {
				return binding.NewError(binding.ErrUnsupportedCombination,
					fmt.Sprintf("storage image %q needs GLSL 4.20 or ES 3.10, target is %s",
						global.Name, w.options.LangVersion.VersionNumber()))
			}
			precision := ""
			if w.options.LangVersion.ES {
				precision = "highp "
			}
			w.writeLine("layout(rgba32f) uniform %s%s %s;", precision, w.imageToGLSL(img), global.Name)
			w.images = append(w.images, global.Name)
			return nil
		}
		if w.fetchName[handle] != global.Name {
			return nil
		}
		w.writeLine("uniform %s %s;", w.imageToGLSL(img), global.Name)
		w.samplerUniforms = append(w.samplerUniforms, global.Name)
	}
	return nil
}

// writeFunctions writes the helper functions the entry point reaches, in
// module order. Entry point functions are emitted by writeEntryPoint.
func (w *Writer) writeFunctions() error {
	epFunc := w.module.EntryPoints[w.epIndex].Function
	for handle := range w.module.Functions {
		fh := ir.FunctionHandle(handle) //nolint:gosec // G115: handle is valid slice index
		if fh == epFunc || !w.usage.Reaches(fh) {
			continue
		}
		if err := w.writeFunction(fh, &w.module.Functions[handle]); err != nil {
			return err
		}
	}
	return nil
}

// writeFunction writes a single function definition.
func (w *Writer) writeFunction(handle ir.FunctionHandle, fn *ir.Function) error {
	w.currentFunction = fn
	w.currentFuncHandle = handle
	w.localNames = make(map[uint32]string)
	w.namedExpressions = make(map[ir.ExpressionHandle]string)

	name := w.names[nameKey{kind: nameKeyFunction, handle1: uint32(handle)}]

	// Return type
	returnType := "void"
	if fn.Result != nil {
		returnType = w.getTypeName(fn.Result.Type)
	}

	// Arguments; textures and samplers are referenced as globals instead
	args := make([]string, 0, len(fn.Arguments))
	for argIdx, arg := range fn.Arguments {
		if w.isHandleType(arg.Type) {
			continue
		}
		argName := w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(handle), handle2: uint32(argIdx)}] //nolint:gosec // G115: argIdx is bounded by slice length
		args = append(args, fmt.Sprintf("%s %s%s", w.getBaseTypeName(arg.Type), argName, w.getArraySuffix(arg.Type)))
	}

	w.writeLine("%s %s(%s) {", returnType, name, strings.Join(args, ", "))
	w.pushIndent()

	if err := w.writeLocalVars(fn); err != nil {
		return err
	}

	if err := w.writeBlock(ir.Block(fn.Body)); err != nil {
		return err
	}

	w.popIndent()
	w.writeLine("}")
	w.writeLine("")

	w.currentFunction = nil
	return nil
}

// writeEntryPoint writes the selected entry point as main.
func (w *Writer) writeEntryPoint(ep *ir.EntryPoint) error {
	if int(ep.Function) >= len(w.module.Functions) {
		return fmt.Errorf("entry point %q: function %d does not exist", ep.Name, ep.Function)
	}
	fn := &w.module.Functions[ep.Function]
	w.currentFunction = fn
	w.currentFuncHandle = ep.Function
	w.localNames = make(map[uint32]string)
	w.namedExpressions = make(map[ir.ExpressionHandle]string)
	w.inEntryPoint = true
	w.entryPointResult = fn.Result

	// Write input/output declarations for vertex/fragment
	switch ep.Stage {
	case ir.StageVertex:
		w.writeStageIO(fn, "_vs_out")
	case ir.StageFragment:
		w.writeStageIO(fn, "fragColor")
	case ir.StageCompute:
		if err := w.writeComputeLayout(ep); err != nil {
			return err
		}
	}

	w.writeLine("void main() {")
	w.pushIndent()

	if err := w.writeLocalVars(fn); err != nil {
		return err
	}

	if err := w.writeBlock(ir.Block(fn.Body)); err != nil {
		return err
	}

	w.popIndent()
	w.writeLine("}")

	w.currentFunction = nil
	w.inEntryPoint = false
	w.entryPointResult = nil
	return nil
}

// writeStageIO writes location-bound inputs and the location-bound output.
// Builtins map to gl_* variables and need no declaration.
func (w *Writer) writeStageIO(fn *ir.Function, outputName string) {
	for _, arg := range fn.Arguments {
		if arg.Binding == nil {
			continue
		}
		if loc, ok := (*arg.Binding).(ir.LocationBinding); ok {
			baseType := w.getBaseTypeName(arg.Type)
			arraySuffix := w.getArraySuffix(arg.Type)
			w.writeLine("layout(location = %d) in %s %s%s;", loc.Location, baseType, escapeKeyword(arg.Name), arraySuffix)
		}
	}

	if fn.Result != nil {
		location := uint32(0)
		if fn.Result.Binding != nil {
			loc, ok := (*fn.Result.Binding).(ir.LocationBinding)
			if !ok {
				w.writeLine("")
				return
			}
			location = loc.Location
		}
		baseType := w.getBaseTypeName(fn.Result.Type)
		arraySuffix := w.getArraySuffix(fn.Result.Type)
		w.writeLine("layout(location = %d) out %s %s%s;", location, baseType, outputName, arraySuffix)
	}
	w.writeLine("")
}

// writeComputeLayout writes compute shader layout declaration.
func (w *Writer) writeComputeLayout(ep *ir.EntryPoint) error {
	if !w.options.LangVersion.SupportsCompute() {
		return binding.NewError(binding.ErrUnsupportedCombination,
			fmt.Sprintf("compute entry point %q needs GLSL 4.30 or ES 3.10", ep.Name))
	}

	size := ep.Workgroup
	for i := range size {
		if size[i] == 0 {
			size[i] = 1
		}
	}

	w.writeLine("layout(local_size_x = %d, local_size_y = %d, local_size_z = %d) in;", size[0], size[1], size[2])
	w.writeLine("")
	return nil
}

// writeLocalVars writes local variable declarations, including initializers if present.
func (w *Writer) writeLocalVars(fn *ir.Function) error {
	for localIdx, local := range fn.LocalVars {
		localName := w.namer.call(local.Name)
		w.localNames[uint32(localIdx)] = localName //nolint:gosec // G115: localIdx is valid slice index
		baseType := w.getBaseTypeName(local.Type)
		arraySuffix := w.getArraySuffix(local.Type)

		if local.Init != nil {
			initStr, err := w.writeExpression(*local.Init)
			if err != nil {
				return err
			}
			w.writeLine("%s %s%s = %s;", baseType, localName, arraySuffix, initStr)
		} else {
			w.writeLine("%s %s%s;", baseType, localName, arraySuffix)
		}
	}
	return nil
}

// Output helpers

// writeLine writes a line with indentation and newline.
//
//nolint:goprintffuncname
func (w *Writer) writeLine(format string, args ...any) {
	w.writeIndent()
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

// writeIndent writes the current indentation.
func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

// pushIndent increases indentation.
func (w *Writer) pushIndent() {
	w.indent++
}

// popIndent decreases indentation.
func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

// isResourceSpace reports whether globals in space are bound resources.
func isResourceSpace(space ir.AddressSpace) bool {
	return space == ir.SpaceUniform || space == ir.SpaceStorage || space == ir.SpaceHandle
}

// glslBuiltIn returns the GLSL built-in variable name for a builtin value.
func glslBuiltIn(builtin ir.BuiltinValue, isOutput bool) string {
	switch builtin {
	case ir.BuiltinPosition:
		if isOutput {
			return "gl_Position"
		}
		return "gl_FragCoord"
	case ir.BuiltinVertexIndex:
		return "uint(gl_VertexID)"
	case ir.BuiltinInstanceIndex:
		return "uint(gl_InstanceID)"
	case ir.BuiltinFrontFacing:
		return "gl_FrontFacing"
	case ir.BuiltinFragDepth:
		return "gl_FragDepth"
	case ir.BuiltinLocalInvocationID:
		return "gl_LocalInvocationID"
	case ir.BuiltinGlobalInvocationID:
		return "gl_GlobalInvocationID"
	case ir.BuiltinWorkGroupID:
		return "gl_WorkGroupID"
	default:
		return "gl_UNKNOWN"
	}
}

// formatFloat formats a float32 for GLSL output.
func formatFloat(f float32) string {
	s := fmt.Sprintf("%g", f)
	// Ensure it has a decimal point or exponent
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
