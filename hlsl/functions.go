// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/bindmap/ir"
)

// writeFunction writes a helper function definition. Texture and sampler
// parameters are passed as HLSL objects.
func (w *Writer) writeFunction(handle ir.FunctionHandle, fn *ir.Function) error {
	w.beginFunction(handle, fn)
	defer w.endFunction()

	returnType := "void"
	if fn.Result != nil {
		returnType = w.getTypeName(fn.Result.Type)
	}

	args := make([]string, 0, len(fn.Arguments))
	for argIdx, arg := range fn.Arguments {
		argName := w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(handle), handle2: uint32(argIdx)}] //nolint:gosec // G115: argIdx is bounded by slice length
		typeName, arraySuffix := w.getTypeNameWithArraySuffix(arg.Type)
		args = append(args, fmt.Sprintf("%s %s%s", typeName, argName, arraySuffix))
	}

	name := w.names[nameKey{kind: nameKeyFunction, handle1: uint32(handle)}]
	w.writeLine("%s %s(%s) {", returnType, name, strings.Join(args, ", "))
	return w.writeFunctionBody(fn)
}

// writeEntryPoint writes the selected entry point as main, with semantics
// on its parameters and result.
func (w *Writer) writeEntryPoint(ep *ir.EntryPoint) error {
	if int(ep.Function) >= len(w.module.Functions) {
		return NewError(ErrInvalidModule, fmt.Sprintf("entry point %q: function %d does not exist", ep.Name, ep.Function))
	}
	fn := &w.module.Functions[ep.Function]
	w.beginFunction(ep.Function, fn)
	defer w.endFunction()

	if ep.Stage == ir.StageCompute {
		w.usedFeatures |= FeatureComputeShader
		w.writeComputeAttributes(ep)
	}

	args := make([]string, 0, len(fn.Arguments))
	for argIdx, arg := range fn.Arguments {
		argName := w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(ep.Function), handle2: uint32(argIdx)}] //nolint:gosec // G115: argIdx is bounded by slice length
		typeName, arraySuffix := w.getTypeNameWithArraySuffix(arg.Type)
		if arg.Binding == nil {
			return NewError(ErrInvalidModule, fmt.Sprintf("entry point argument %q has no binding", arg.Name))
		}
		semantic := w.getSemanticFromBinding(*arg.Binding, ep.Stage, false)
		args = append(args, fmt.Sprintf("%s %s%s : %s", typeName, argName, arraySuffix, semantic))
	}

	returnType := "void"
	var returnSemantic string
	if fn.Result != nil {
		returnType = w.getTypeName(fn.Result.Type)
		if fn.Result.Binding == nil {
			return NewError(ErrInvalidModule, fmt.Sprintf("entry point %q result has no binding", ep.Name))
		}
		returnSemantic = " : " + w.getSemanticFromBinding(*fn.Result.Binding, ep.Stage, true)
	}

	w.writeLine("%s main(%s)%s {", returnType, strings.Join(args, ", "), returnSemantic)
	return w.writeFunctionBody(fn)
}

// beginFunction sets up per-function state and names the locals.
func (w *Writer) beginFunction(handle ir.FunctionHandle, fn *ir.Function) {
	w.currentFunction = fn
	w.currentFuncHandle = handle
	w.namedExpressions = make(map[ir.ExpressionHandle]string)
	for localIdx, local := range fn.LocalVars {
		name := local.Name
		if name == "" {
			name = fmt.Sprintf("local_%d", localIdx)
		}
		w.names[nameKey{kind: nameKeyLocal, handle1: uint32(handle), handle2: uint32(localIdx)}] = w.namer.call(name) //nolint:gosec // G115: localIdx is valid slice index
	}
}

// endFunction clears per-function state.
func (w *Writer) endFunction() {
	w.currentFunction = nil
	w.namedExpressions = make(map[ir.ExpressionHandle]string)
}

// writeFunctionBody writes locals and statements, then closes the function.
func (w *Writer) writeFunctionBody(fn *ir.Function) error {
	w.pushIndent()
	if err := w.writeLocalVars(fn); err != nil {
		w.popIndent()
		return err
	}
	if err := w.writeBlock(fn.Body); err != nil {
		w.popIndent()
		return err
	}
	w.popIndent()
	w.writeLine("}")
	w.writeLine("")
	return nil
}

// writeLocalVars declares local variables. HLSL does not zero locals, so
// scalars, vectors and matrices without an initializer get (T)0.
func (w *Writer) writeLocalVars(fn *ir.Function) error {
	for localIdx, local := range fn.LocalVars {
		name := w.names[nameKey{kind: nameKeyLocal, handle1: uint32(w.currentFuncHandle), handle2: uint32(localIdx)}] //nolint:gosec // G115: localIdx is valid slice index
		typeName, arraySuffix := w.getTypeNameWithArraySuffix(local.Type)

		w.writeIndent()
		fmt.Fprintf(&w.out, "%s %s%s", typeName, name, arraySuffix)
		switch {
		case local.Init != nil:
			w.out.WriteString(" = ")
			if err := w.writeExpression(*local.Init); err != nil {
				return fmt.Errorf("local %q initializer: %w", local.Name, err)
			}
		case arraySuffix == "":
			fmt.Fprintf(&w.out, " = (%s)0", typeName)
		}
		w.out.WriteString(";\n")
	}
	return nil
}

// writeComputeAttributes writes [numthreads(x,y,z)] attribute for compute shaders.
func (w *Writer) writeComputeAttributes(ep *ir.EntryPoint) {
	size := ep.Workgroup
	for i := range size {
		if size[i] == 0 {
			size[i] = 1
		}
	}
	w.writeLine("[numthreads(%d, %d, %d)]", size[0], size[1], size[2])
}

// getSemanticFromBinding returns the HLSL semantic for an entry point
// parameter or result. Fragment outputs at @location(N) map to SV_TargetN,
// every other location to TEXCOORDN.
func (w *Writer) getSemanticFromBinding(b ir.Binding, stage ir.ShaderStage, output bool) string {
	switch binding := b.(type) {
	case ir.BuiltinBinding:
		return BuiltInToSemantic(binding.Builtin)
	case ir.LocationBinding:
		if output && stage == ir.StageFragment {
			return fmt.Sprintf("SV_Target%d", binding.Location)
		}
		return fmt.Sprintf("TEXCOORD%d", binding.Location)
	default:
		return "TEXCOORD0"
	}
}
