package ir

import (
	"fmt"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Optional context
	Function   string
	Expression *ExpressionHandle
	Statement  int
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Function != "" {
		if e.Expression != nil {
			return fmt.Sprintf("in function %s, expression %d: %s", e.Function, *e.Expression, e.Message)
		}
		if e.Statement >= 0 {
			return fmt.Sprintf("in function %s, statement %d: %s", e.Function, e.Statement, e.Message)
		}
		return fmt.Sprintf("in function %s: %s", e.Function, e.Message)
	}
	return e.Message
}

// Validator validates IR modules.
type Validator struct {
	module   *Module
	errors   []ValidationError
	function *Function
	funcName string
}

// Validate checks the IR module for correctness.
// Returns validation errors if any, or nil if module is valid.
func Validate(module *Module) ([]ValidationError, error) {
	if module == nil {
		return nil, fmt.Errorf("module is nil")
	}

	v := &Validator{
		module: module,
		errors: make([]ValidationError, 0),
	}

	v.ValidateModule()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

// Check validates module and returns the first validation error, if any.
// Translation entry points call it before walking the module.
func Check(module *Module) error {
	validationErrors, err := Validate(module)
	if err != nil {
		return err
	}
	if len(validationErrors) > 0 {
		return fmt.Errorf("validation failed: %w", &validationErrors[0])
	}
	return nil
}

// ValidateModule validates the complete module.
func (v *Validator) ValidateModule() {
	v.validateTypes()
	v.validateGlobalVariables()
	v.validateFunctions()
	v.validateEntryPoints()
}

// validateTypes checks all type definitions.
func (v *Validator) validateTypes() {
	for i, typ := range v.module.Types {
		v.validateType(TypeHandle(i), &typ)
	}
}

// validateType validates a single type.
//
//nolint:gocognit,gocyclo,cyclop // Type validation requires checking many type variants
func (v *Validator) validateType(handle TypeHandle, typ *Type) {
	if typ.Inner == nil {
		v.addError(fmt.Sprintf("type %d has nil inner type", handle))
		return
	}

	switch inner := typ.Inner.(type) {
	case ScalarType:
		if !validWidth(inner.Width) {
			v.addError(fmt.Sprintf("type %d: scalar width must be 1, 2, 4, or 8 bytes, got %d", handle, inner.Width))
		}

	case VectorType:
		if !validSize(inner.Size) {
			v.addError(fmt.Sprintf("type %d: vector size must be 2, 3, or 4, got %d", handle, inner.Size))
		}
		if !validWidth(inner.Scalar.Width) {
			v.addError(fmt.Sprintf("type %d: vector scalar width must be 1, 2, 4, or 8 bytes, got %d", handle, inner.Scalar.Width))
		}

	case MatrixType:
		if !validSize(inner.Columns) {
			v.addError(fmt.Sprintf("type %d: matrix columns must be 2, 3, or 4, got %d", handle, inner.Columns))
		}
		if !validSize(inner.Rows) {
			v.addError(fmt.Sprintf("type %d: matrix rows must be 2, 3, or 4, got %d", handle, inner.Rows))
		}
		if inner.Scalar.Kind != ScalarFloat {
			v.addError(fmt.Sprintf("type %d: matrix scalar must be float, got %v", handle, inner.Scalar.Kind))
		}

	case ArrayType:
		if !v.isValidTypeHandle(inner.Base) {
			v.addError(fmt.Sprintf("type %d: array base type %d does not exist", handle, inner.Base))
		}
		if inner.Base == handle {
			v.addError(fmt.Sprintf("type %d: array has circular reference to itself", handle))
		}

	case StructType:
		memberNames := make(map[string]bool)
		for j, member := range inner.Members {
			if member.Name == "" {
				v.addError(fmt.Sprintf("type %d: struct member %d has empty name", handle, j))
			}
			if memberNames[member.Name] {
				v.addError(fmt.Sprintf("type %d: duplicate struct member name %q", handle, member.Name))
			}
			memberNames[member.Name] = true

			if !v.isValidTypeHandle(member.Type) {
				v.addError(fmt.Sprintf("type %d: struct member %q type %d does not exist", handle, member.Name, member.Type))
			}
			if member.Type == handle {
				v.addError(fmt.Sprintf("type %d: struct member %q has circular reference", handle, member.Name))
			}
		}

	case PointerType:
		if !v.isValidTypeHandle(inner.Base) {
			v.addError(fmt.Sprintf("type %d: pointer base type %d does not exist", handle, inner.Base))
		}

	case SamplerType, ImageType:
		// enum constraints only
	}
}

func validWidth(w uint8) bool {
	return w == 1 || w == 2 || w == 4 || w == 8
}

func validSize(s VectorSize) bool {
	return s == Vec2 || s == Vec3 || s == Vec4
}

// validateGlobalVariables checks all global variables.
// Duplicate @group/@binding pairs are reported here; the binding extractor
// only rejects them when both globals are reachable from one entry point.
func (v *Validator) validateGlobalVariables() {
	bindings := make(map[ResourceBinding]string)
	names := make(map[string]bool)

	for i, gv := range v.module.GlobalVariables {
		if gv.Name != "" {
			if names[gv.Name] {
				v.addError(fmt.Sprintf("duplicate global variable name %q", gv.Name))
			}
			names[gv.Name] = true
		}

		if !v.isValidTypeHandle(gv.Type) {
			v.addError(fmt.Sprintf("global variable %d (%s): type %d does not exist", i, gv.Name, gv.Type))
			continue
		}

		if gv.Binding == nil {
			continue
		}
		switch gv.Space {
		case SpaceUniform, SpaceStorage, SpaceHandle:
		default:
			v.addError(fmt.Sprintf("global variable %q: resource binding on non-resource address space %d", gv.Name, gv.Space))
		}
		if gv.Space == SpaceHandle {
			inner, _ := v.module.ResolveGlobalType(GlobalVariableHandle(i))
			switch inner.(type) {
			case SamplerType, ImageType:
			default:
				v.addError(fmt.Sprintf("global variable %q: handle space requires a sampler or image type", gv.Name))
			}
		}
		if prev, ok := bindings[*gv.Binding]; ok {
			v.addError(fmt.Sprintf("global variable %q: duplicate binding @group(%d) @binding(%d) (also %q)",
				gv.Name, gv.Binding.Group, gv.Binding.Binding, prev))
		} else {
			bindings[*gv.Binding] = gv.Name
		}
	}
}

// validateFunctions checks all functions.
func (v *Validator) validateFunctions() {
	names := make(map[string]bool)

	for i := range v.module.Functions {
		fn := &v.module.Functions[i]
		if fn.Name != "" {
			if names[fn.Name] {
				v.addError(fmt.Sprintf("duplicate function name %q", fn.Name))
			}
			names[fn.Name] = true
		}

		v.function = fn
		v.funcName = fn.Name
		v.validateFunction(fn)
	}
	v.function = nil
	v.funcName = ""
}

// validateFunction validates a single function.
func (v *Validator) validateFunction(fn *Function) {
	for i, arg := range fn.Arguments {
		if !v.isValidTypeHandle(arg.Type) {
			v.addErrorInFunction(fmt.Sprintf("argument %d (%s): type %d does not exist", i, arg.Name, arg.Type))
		}
	}

	if fn.Result != nil {
		if !v.isValidTypeHandle(fn.Result.Type) {
			v.addErrorInFunction(fmt.Sprintf("result type %d does not exist", fn.Result.Type))
		}
	}

	for i, lv := range fn.LocalVars {
		if !v.isValidTypeHandle(lv.Type) {
			v.addErrorInFunction(fmt.Sprintf("local variable %d (%s): type %d does not exist", i, lv.Name, lv.Type))
		}
		if lv.Init != nil && !v.isValidExpressionHandle(*lv.Init) {
			v.addErrorInFunction(fmt.Sprintf("local variable %q: init expression %d does not exist", lv.Name, *lv.Init))
		}
	}

	for i, expr := range fn.Expressions {
		v.validateExpression(ExpressionHandle(i), &expr)
	}

	v.validateBlock(fn.Body)
}

// validateExpression validates a single expression.
//
//nolint:gocognit,gocyclo,cyclop,funlen // Expression validation requires checking many expression variants
func (v *Validator) validateExpression(handle ExpressionHandle, expr *Expression) {
	if expr.Kind == nil {
		v.addErrorInExpression(handle, "expression has nil kind")
		return
	}

	check := func(what string, h ExpressionHandle) {
		if !v.isValidExpressionHandle(h) {
			v.addErrorInExpression(handle, fmt.Sprintf("%s expression %d does not exist", what, h))
		}
	}

	switch kind := expr.Kind.(type) {
	case Literal:

	case ExprZeroValue:
		if !v.isValidTypeHandle(kind.Type) {
			v.addErrorInExpression(handle, fmt.Sprintf("type %d does not exist", kind.Type))
		}

	case ExprCompose:
		if !v.isValidTypeHandle(kind.Type) {
			v.addErrorInExpression(handle, fmt.Sprintf("type %d does not exist", kind.Type))
		}
		for i, comp := range kind.Components {
			check(fmt.Sprintf("component %d:", i), comp)
		}

	case ExprAccess:
		check("base", kind.Base)
		check("index", kind.Index)

	case ExprAccessIndex:
		check("base", kind.Base)

	case ExprSplat:
		if !validSize(kind.Size) {
			v.addErrorInExpression(handle, fmt.Sprintf("splat size must be 2, 3, or 4, got %d", kind.Size))
		}
		check("value", kind.Value)

	case ExprSwizzle:
		if !validSize(kind.Size) {
			v.addErrorInExpression(handle, fmt.Sprintf("swizzle size must be 2, 3, or 4, got %d", kind.Size))
		}
		check("vector", kind.Vector)
		for i := 0; i < int(kind.Size) && i < len(kind.Pattern); i++ {
			if kind.Pattern[i] > SwizzleW {
				v.addErrorInExpression(handle, fmt.Sprintf("pattern[%d] invalid component %d", i, kind.Pattern[i]))
			}
		}

	case ExprFunctionArgument:
		if int(kind.Index) >= len(v.function.Arguments) {
			v.addErrorInExpression(handle, fmt.Sprintf("argument index %d out of range (function has %d args)",
				kind.Index, len(v.function.Arguments)))
		}

	case ExprGlobalVariable:
		if !v.isValidGlobalVariableHandle(kind.Variable) {
			v.addErrorInExpression(handle, fmt.Sprintf("global variable %d does not exist", kind.Variable))
		}

	case ExprLocalVariable:
		if int(kind.Variable) >= len(v.function.LocalVars) {
			v.addErrorInExpression(handle, fmt.Sprintf("local variable index %d out of range (function has %d vars)",
				kind.Variable, len(v.function.LocalVars)))
		}

	case ExprLoad:
		check("pointer", kind.Pointer)

	case ExprImageSample:
		check("image", kind.Image)
		check("sampler", kind.Sampler)
		check("coordinate", kind.Coordinate)
		switch level := kind.Level.(type) {
		case SampleLevelExact:
			check("level", level.Level)
		case SampleLevelBias:
			check("bias", level.Bias)
		}

	case ExprImageLoad:
		check("image", kind.Image)
		check("coordinate", kind.Coordinate)
		if kind.Level != nil {
			check("level", *kind.Level)
		}

	case ExprUnary:
		check("operand", kind.Expr)

	case ExprBinary:
		check("left", kind.Left)
		check("right", kind.Right)

	case ExprSelect:
		check("condition", kind.Condition)
		check("accept", kind.Accept)
		check("reject", kind.Reject)

	case ExprCallResult:
		if !v.isValidFunctionHandle(kind.Function) {
			v.addErrorInExpression(handle, fmt.Sprintf("function %d does not exist", kind.Function))
		}
	}
}

// validateBlock validates a block of statements.
func (v *Validator) validateBlock(block Block) {
	for i, stmt := range block {
		v.validateStatement(i, &stmt)
	}
}

// validateStatement validates a single statement.
//
//nolint:gocognit,gocyclo,cyclop // Statement validation requires checking many statement variants
func (v *Validator) validateStatement(index int, stmt *Statement) {
	if stmt.Kind == nil {
		v.addErrorInStatement(index, "statement has nil kind")
		return
	}

	check := func(what string, h ExpressionHandle) {
		if !v.isValidExpressionHandle(h) {
			v.addErrorInStatement(index, fmt.Sprintf("%s expression %d does not exist", what, h))
		}
	}

	switch kind := stmt.Kind.(type) {
	case StmtEmit:
		exprCount := ExpressionHandle(len(v.function.Expressions))
		if kind.Range.Start >= exprCount {
			v.addErrorInStatement(index, fmt.Sprintf("emit range start %d out of range", kind.Range.Start))
		}
		if kind.Range.End > exprCount {
			v.addErrorInStatement(index, fmt.Sprintf("emit range end %d out of range", kind.Range.End))
		}
		if kind.Range.Start >= kind.Range.End {
			v.addErrorInStatement(index, fmt.Sprintf("emit range start %d >= end %d", kind.Range.Start, kind.Range.End))
		}

	case StmtBlock:
		v.validateBlock(kind.Block)

	case StmtIf:
		check("condition", kind.Condition)
		v.validateBlock(kind.Accept)
		v.validateBlock(kind.Reject)

	case StmtReturn:
		if kind.Value != nil {
			check("return value", *kind.Value)
		}

	case StmtKill:

	case StmtStore:
		check("pointer", kind.Pointer)
		check("value", kind.Value)

	case StmtImageStore:
		check("image", kind.Image)
		check("coordinate", kind.Coordinate)
		check("value", kind.Value)

	case StmtCall:
		if !v.isValidFunctionHandle(kind.Function) {
			v.addErrorInStatement(index, fmt.Sprintf("function %d does not exist", kind.Function))
		} else if len(kind.Arguments) != len(v.module.Functions[kind.Function].Arguments) {
			v.addErrorInStatement(index, fmt.Sprintf("call passes %d arguments, function %d takes %d",
				len(kind.Arguments), kind.Function, len(v.module.Functions[kind.Function].Arguments)))
		}
		for i, arg := range kind.Arguments {
			check(fmt.Sprintf("argument %d", i), arg)
		}
		if kind.Result != nil {
			check("result", *kind.Result)
		}
	}
}

// validateEntryPoints checks all entry points.
func (v *Validator) validateEntryPoints() {
	names := make(map[string]bool)

	for i, ep := range v.module.EntryPoints {
		if ep.Name == "" {
			v.addError(fmt.Sprintf("entry point %d has empty name", i))
		}
		if names[ep.Name] {
			v.addError(fmt.Sprintf("duplicate entry point name %q", ep.Name))
		}
		names[ep.Name] = true

		if !v.isValidFunctionHandle(ep.Function) {
			v.addError(fmt.Sprintf("entry point %q: function %d does not exist", ep.Name, ep.Function))
			continue
		}

		fn := &v.module.Functions[ep.Function]

		switch ep.Stage {
		case StageVertex:
			if fn.Result == nil {
				v.addError(fmt.Sprintf("entry point %q (@vertex): must have a return value", ep.Name))
			} else if !v.hasPositionBuiltin(fn.Result) {
				v.addError(fmt.Sprintf("entry point %q (@vertex): must return @builtin(position)", ep.Name))
			}

		case StageCompute:
			if ep.Workgroup[0] == 0 || ep.Workgroup[1] == 0 || ep.Workgroup[2] == 0 {
				v.addError(fmt.Sprintf("entry point %q (@compute): workgroup size must be non-zero", ep.Name))
			}
		}
	}
}

// hasPositionBuiltin checks if the function result contains @builtin(position),
// either directly or as a struct member.
func (v *Validator) hasPositionBuiltin(result *FunctionResult) bool {
	if result.Binding != nil && isPositionBuiltin(*result.Binding) {
		return true
	}
	return v.structHasPositionBuiltin(result.Type)
}

func isPositionBuiltin(binding Binding) bool {
	b, ok := binding.(BuiltinBinding)
	return ok && b.Builtin == BuiltinPosition
}

func (v *Validator) structHasPositionBuiltin(typeHandle TypeHandle) bool {
	if int(typeHandle) >= len(v.module.Types) {
		return false
	}
	structType, ok := v.module.Types[typeHandle].Inner.(StructType)
	if !ok {
		return false
	}
	for _, member := range structType.Members {
		if member.Binding != nil && isPositionBuiltin(*member.Binding) {
			return true
		}
	}
	return false
}

// Helper methods for validation

func (v *Validator) isValidTypeHandle(handle TypeHandle) bool {
	return int(handle) < len(v.module.Types)
}

func (v *Validator) isValidGlobalVariableHandle(handle GlobalVariableHandle) bool {
	return int(handle) < len(v.module.GlobalVariables)
}

func (v *Validator) isValidFunctionHandle(handle FunctionHandle) bool {
	return int(handle) < len(v.module.Functions)
}

func (v *Validator) isValidExpressionHandle(handle ExpressionHandle) bool {
	if v.function == nil {
		return false
	}
	return int(handle) < len(v.function.Expressions)
}

func (v *Validator) addError(msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:   msg,
		Statement: -1,
	})
}

func (v *Validator) addErrorInFunction(msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:   msg,
		Function:  v.funcName,
		Statement: -1,
	})
}

func (v *Validator) addErrorInExpression(handle ExpressionHandle, msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:    msg,
		Function:   v.funcName,
		Expression: &handle,
		Statement:  -1,
	})
}

func (v *Validator) addErrorInStatement(index int, msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:   msg,
		Function:  v.funcName,
		Statement: index,
	})
}
