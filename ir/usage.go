package ir

import (
	"fmt"
	"sort"
)

// SamplePair records an image global sampled with a sampler global.
type SamplePair struct {
	Image   GlobalVariableHandle
	Sampler GlobalVariableHandle
}

// EntryPointUsage describes the global variables an entry point reaches.
type EntryPointUsage struct {
	// Globals lists every referenced global in ascending handle order.
	Globals []GlobalVariableHandle
	// SamplePairs lists distinct (image, sampler) combinations used by
	// ImageSample expressions, ordered by sampler then image handle.
	SamplePairs []SamplePair

	used    map[GlobalVariableHandle]bool
	reached map[FunctionHandle]bool
	args    map[FunctionHandle][]map[GlobalVariableHandle]bool
}

// Uses reports whether the entry point references the global.
func (u *EntryPointUsage) Uses(handle GlobalVariableHandle) bool {
	return u.used[handle]
}

// Reaches reports whether fn is the entry point function or is called from
// it, directly or indirectly.
func (u *EntryPointUsage) Reaches(fn FunctionHandle) bool {
	return u.reached[fn]
}

// ArgumentOrigins returns, in ascending order, the globals passed through the
// given argument of fn across every call site reached from the entry point.
func (u *EntryPointUsage) ArgumentOrigins(fn FunctionHandle, index int) []GlobalVariableHandle {
	perArg := u.args[fn]
	if index < 0 || index >= len(perArg) {
		return nil
	}
	out := make([]GlobalVariableHandle, 0, len(perArg[index]))
	for h := range perArg[index] {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type usageWalker struct {
	module  *Module
	used    map[GlobalVariableHandle]bool
	pairs   map[SamplePair]bool
	stack   map[FunctionHandle]bool
	reached map[FunctionHandle]bool
	args    map[FunctionHandle][]map[GlobalVariableHandle]bool
}

// AnalyzeEntryPoint walks the entry point's function and everything it calls.
// Image and sampler operands passed as function arguments are traced back to
// the globals supplied at each call site.
func AnalyzeEntryPoint(module *Module, index int) (EntryPointUsage, error) {
	if module == nil {
		return EntryPointUsage{}, fmt.Errorf("module is nil")
	}
	if index < 0 || index >= len(module.EntryPoints) {
		return EntryPointUsage{}, fmt.Errorf("entry point index %d out of range", index)
	}

	w := &usageWalker{
		module:  module,
		used:    make(map[GlobalVariableHandle]bool),
		pairs:   make(map[SamplePair]bool),
		stack:   make(map[FunctionHandle]bool),
		reached: make(map[FunctionHandle]bool),
		args:    make(map[FunctionHandle][]map[GlobalVariableHandle]bool),
	}
	if err := w.visit(module.EntryPoints[index].Function, nil); err != nil {
		return EntryPointUsage{}, err
	}

	usage := EntryPointUsage{used: w.used, reached: w.reached, args: w.args}
	for h := range w.used {
		usage.Globals = append(usage.Globals, h)
	}
	sort.Slice(usage.Globals, func(i, j int) bool { return usage.Globals[i] < usage.Globals[j] })

	for p := range w.pairs {
		usage.SamplePairs = append(usage.SamplePairs, p)
	}
	sort.Slice(usage.SamplePairs, func(i, j int) bool {
		a, b := usage.SamplePairs[i], usage.SamplePairs[j]
		if a.Sampler != b.Sampler {
			return a.Sampler < b.Sampler
		}
		return a.Image < b.Image
	})
	return usage, nil
}

// visit scans one function. args holds, per argument, the globals the
// caller passes through it.
func (w *usageWalker) visit(handle FunctionHandle, args [][]GlobalVariableHandle) error {
	if int(handle) >= len(w.module.Functions) {
		return fmt.Errorf("function %d does not exist", handle)
	}
	if w.stack[handle] {
		return fmt.Errorf("recursive call to function %q", w.module.Functions[handle].Name)
	}
	w.stack[handle] = true
	w.reached[handle] = true
	defer delete(w.stack, handle)

	fn := &w.module.Functions[handle]
	w.recordArguments(handle, len(fn.Arguments), args)
	for _, expr := range fn.Expressions {
		switch kind := expr.Kind.(type) {
		case ExprGlobalVariable:
			if int(kind.Variable) < len(w.module.GlobalVariables) {
				w.used[kind.Variable] = true
			}
		case ExprImageSample:
			images := w.origins(fn, args, kind.Image)
			samplers := w.origins(fn, args, kind.Sampler)
			for _, s := range samplers {
				for _, img := range images {
					w.pairs[SamplePair{Image: img, Sampler: s}] = true
				}
			}
		}
	}
	return w.visitBlock(fn, args, fn.Body)
}

func (w *usageWalker) visitBlock(fn *Function, args [][]GlobalVariableHandle, block Block) error {
	for _, stmt := range block {
		switch kind := stmt.Kind.(type) {
		case StmtBlock:
			if err := w.visitBlock(fn, args, kind.Block); err != nil {
				return err
			}
		case StmtIf:
			if err := w.visitBlock(fn, args, kind.Accept); err != nil {
				return err
			}
			if err := w.visitBlock(fn, args, kind.Reject); err != nil {
				return err
			}
		case StmtCall:
			calleeArgs := make([][]GlobalVariableHandle, len(kind.Arguments))
			for i, arg := range kind.Arguments {
				calleeArgs[i] = w.origins(fn, args, arg)
			}
			if err := w.visit(kind.Function, calleeArgs); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *usageWalker) recordArguments(handle FunctionHandle, count int, args [][]GlobalVariableHandle) {
	perArg := w.args[handle]
	if perArg == nil {
		perArg = make([]map[GlobalVariableHandle]bool, count)
		for i := range perArg {
			perArg[i] = make(map[GlobalVariableHandle]bool)
		}
		w.args[handle] = perArg
	}
	for i := 0; i < count && i < len(args); i++ {
		for _, h := range args[i] {
			perArg[i][h] = true
		}
	}
}

// origins returns the globals an expression may refer to, following loads,
// accesses and function arguments.
func (w *usageWalker) origins(fn *Function, args [][]GlobalVariableHandle, handle ExpressionHandle) []GlobalVariableHandle {
	for depth := 0; depth < len(fn.Expressions); depth++ {
		if int(handle) >= len(fn.Expressions) {
			return nil
		}
		switch kind := fn.Expressions[handle].Kind.(type) {
		case ExprGlobalVariable:
			if int(kind.Variable) >= len(w.module.GlobalVariables) {
				return nil
			}
			return []GlobalVariableHandle{kind.Variable}
		case ExprLoad:
			handle = kind.Pointer
		case ExprAccess:
			handle = kind.Base
		case ExprAccessIndex:
			handle = kind.Base
		case ExprFunctionArgument:
			if int(kind.Index) < len(args) {
				return args[kind.Index]
			}
			return nil
		default:
			return nil
		}
	}
	return nil
}
