// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

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
	nameKeyLocal
)

// Writer generates HLSL source code from IR.
type Writer struct {
	module  *ir.Module
	options *Options

	// Output buffer
	out strings.Builder

	// Current indentation level
	indent int

	// Name management
	names     map[nameKey]string
	namer     *namer
	typeNames map[ir.TypeHandle]string

	// Entry point selection and the resources it reaches
	epIndex int
	usage   ir.EntryPointUsage

	// Function context (set during function writing)
	currentFunction   *ir.Function
	currentFuncHandle ir.FunctionHandle
	namedExpressions  map[ir.ExpressionHandle]string

	// Output tracking
	entryPointNames     map[string]string
	usedFeatures        FeatureFlags
	requiredShaderModel ShaderModel
	registerBindings    map[string]string
	resources           []ResourceDeclaration
}

// newWriter creates a new HLSL writer.
func newWriter(module *ir.Module, options *Options, epIndex int, usage ir.EntryPointUsage) *Writer {
	return &Writer{
		module:              module,
		options:             options,
		names:               make(map[nameKey]string),
		namer:               newNamer(),
		typeNames:           make(map[ir.TypeHandle]string),
		epIndex:             epIndex,
		usage:               usage,
		namedExpressions:    make(map[ir.ExpressionHandle]string),
		entryPointNames:     make(map[string]string),
		requiredShaderModel: ShaderModel5_0,
		registerBindings:    make(map[string]string),
	}
}

// String returns the generated HLSL source code.
func (w *Writer) String() string {
	return w.out.String()
}

// writeModule generates HLSL code for the selected entry point.
func (w *Writer) writeModule() error {
	// 1. Register all names
	w.registerNames()

	// 2. Write struct definitions
	w.writeTypes()

	// 3. Write resource declarations and module-scope variables
	if err := w.writeGlobalVariables(); err != nil {
		return err
	}

	// 4. Write regular functions
	if err := w.writeFunctions(); err != nil {
		return err
	}

	// 5. Write the entry point
	return w.writeEntryPoint(&w.module.EntryPoints[w.epIndex])
}

// registerNames assigns unique names to types, globals and functions.
func (w *Writer) registerNames() {
	for handle, typ := range w.module.Types {
		st, ok := typ.Inner.(ir.StructType)
		if !ok {
			continue
		}
		baseName := typ.Name
		if baseName == "" {
			baseName = fmt.Sprintf("type_%d", handle)
		}
		w.typeNames[ir.TypeHandle(handle)] = w.namer.call(baseName) //nolint:gosec // G115: handle is valid slice index

		for memberIdx, member := range st.Members {
			memberName := member.Name
			if memberName == "" {
				memberName = fmt.Sprintf("member_%d", memberIdx)
			}
			w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(handle), handle2: uint32(memberIdx)}] = Escape(memberName) //nolint:gosec // G115: indices are valid slice indices
		}
	}

	for handle, global := range w.module.GlobalVariables {
		baseName := global.Name
		if baseName == "" {
			baseName = fmt.Sprintf("global_%d", handle)
		}
		w.names[nameKey{kind: nameKeyGlobalVariable, handle1: uint32(handle)}] = w.namer.call(baseName) //nolint:gosec // G115: handle is valid slice index
	}

	epFunc := w.module.EntryPoints[w.epIndex].Function
	for handle := range w.module.Functions {
		fn := &w.module.Functions[handle]
		if ir.FunctionHandle(handle) != epFunc { //nolint:gosec // G115: handle is valid slice index
			baseName := fn.Name
			if baseName == "" {
				baseName = fmt.Sprintf("function_%d", handle)
			}
			w.names[nameKey{kind: nameKeyFunction, handle1: uint32(handle)}] = w.namer.call(baseName) //nolint:gosec // G115: handle is valid slice index
		}

		for argIdx, arg := range fn.Arguments {
			argName := arg.Name
			if argName == "" {
				argName = fmt.Sprintf("arg_%d", argIdx)
			}
			w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(handle), handle2: uint32(argIdx)}] = Escape(argName) //nolint:gosec // G115: indices are valid slice indices
		}
	}

	ep := w.module.EntryPoints[w.epIndex]
	w.names[nameKey{kind: nameKeyFunction, handle1: uint32(ep.Function)}] = "main"
	w.entryPointNames[ep.Name] = "main"
}

// writeFunctions writes the helper functions the entry point reaches, in
// module order.
func (w *Writer) writeFunctions() error {
	epFunc := w.module.EntryPoints[w.epIndex].Function
	for handle := range w.module.Functions {
		fh := ir.FunctionHandle(handle) //nolint:gosec // G115: handle is valid slice index
		if fh == epFunc || !w.usage.Reaches(fh) {
			continue
		}
		if err := w.writeFunction(fh, &w.module.Functions[handle]); err != nil {
			return fmt.Errorf("function %q: %w", w.module.Functions[handle].Name, err)
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
