// Package ir defines the intermediate shader representation consumed by bindmap.
//
// The IR is a shader-agnostic representation that the binding layer analyzes
// and the glsl and hlsl writers translate to native shading languages.
package ir

import "fmt"

// Module represents a shader module in IR form.
type Module struct {
	// Types holds all type definitions
	Types []Type

	// GlobalVariables holds module-scope variables
	GlobalVariables []GlobalVariable

	// Functions holds all function definitions
	Functions []Function

	// EntryPoints holds shader entry points
	EntryPoints []EntryPoint
}

// EntryPoint represents a shader entry point.
type EntryPoint struct {
	Name      string
	Stage     ShaderStage
	Function  FunctionHandle
	Workgroup [3]uint32 // For compute shaders
}

// ShaderStage represents a shader stage.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
	StageCompute
)

// String returns the lowercase stage name.
func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
}

// Handle types for referencing IR objects
type (
	TypeHandle           uint32
	FunctionHandle       uint32
	GlobalVariableHandle uint32
	ExpressionHandle     uint32
)

// Type represents a type in the IR.
type Type struct {
	Name  string
	Inner TypeInner
}

// TypeInner represents the inner type kind.
type TypeInner interface {
	typeInner()
}

// ScalarType represents scalar types.
type ScalarType struct {
	Kind  ScalarKind
	Width uint8 // in bytes
}

func (ScalarType) typeInner() {}

// ScalarKind represents scalar type kinds.
type ScalarKind uint8

const (
	ScalarSint  ScalarKind = iota // Signed integer
	ScalarUint                    // Unsigned integer
	ScalarFloat                   // Floating point
	ScalarBool                    // Boolean
)

// VectorType represents vector types.
type VectorType struct {
	Size   VectorSize
	Scalar ScalarType
}

func (VectorType) typeInner() {}

// VectorSize represents vector sizes.
type VectorSize uint8

const (
	Vec2 VectorSize = 2
	Vec3 VectorSize = 3
	Vec4 VectorSize = 4
)

// MatrixType represents matrix types.
type MatrixType struct {
	Columns VectorSize
	Rows    VectorSize
	Scalar  ScalarType
}

func (MatrixType) typeInner() {}

// ArrayType represents array types.
type ArrayType struct {
	Base   TypeHandle
	Size   ArraySize
	Stride uint32
}

func (ArrayType) typeInner() {}

// ArraySize represents array size.
type ArraySize struct {
	Constant *uint32 // nil for runtime-sized arrays
}

// StructType represents struct types.
type StructType struct {
	Members []StructMember
	Span    uint32 // Size in bytes
}

func (StructType) typeInner() {}

// StructMember represents a struct member.
type StructMember struct {
	Name    string
	Type    TypeHandle
	Binding *Binding // @builtin(position), @location(0), etc.
	Offset  uint32
}

// PointerType represents pointer types.
type PointerType struct {
	Base  TypeHandle
	Space AddressSpace
}

func (PointerType) typeInner() {}

// AddressSpace represents memory address spaces.
type AddressSpace uint8

const (
	SpaceFunction AddressSpace = iota
	SpacePrivate
	SpaceWorkGroup
	SpaceUniform
	SpaceStorage
	SpacePushConstant
	SpaceHandle
)

// SamplerType represents sampler types.
type SamplerType struct {
	Comparison bool
}

func (SamplerType) typeInner() {}

// ImageType represents image/texture types.
type ImageType struct {
	Dim          ImageDimension
	Arrayed      bool
	Class        ImageClass
	Multisampled bool
}

func (ImageType) typeInner() {}

// ImageDimension represents image dimensions.
type ImageDimension uint8

const (
	Dim1D ImageDimension = iota
	Dim2D
	Dim3D
	DimCube
)

// ImageClass represents image classification.
type ImageClass uint8

const (
	ImageClassSampled ImageClass = iota
	ImageClassDepth
	ImageClassStorage
)

// GlobalVariable represents a global variable.
type GlobalVariable struct {
	Name    string
	Space   AddressSpace
	Binding *ResourceBinding
	Type    TypeHandle
}

// ResourceBinding represents a resource binding decoration: @group(G) @binding(B).
type ResourceBinding struct {
	Group   uint32
	Binding uint32
}

// Function represents a function definition.
type Function struct {
	Name        string
	Arguments   []FunctionArgument
	Result      *FunctionResult
	LocalVars   []LocalVariable
	Expressions []Expression
	Body        []Statement
}

// FunctionArgument represents a function argument.
type FunctionArgument struct {
	Name    string
	Type    TypeHandle
	Binding *Binding
}

// FunctionResult represents a function return type.
type FunctionResult struct {
	Type    TypeHandle
	Binding *Binding
}

// LocalVariable represents a function-local variable.
type LocalVariable struct {
	Name string
	Type TypeHandle
	Init *ExpressionHandle
}

// Binding represents shader bindings.
type Binding interface {
	binding()
}

// BuiltinBinding represents a built-in binding.
type BuiltinBinding struct {
	Builtin BuiltinValue
}

func (BuiltinBinding) binding() {}

// BuiltinValue represents built-in values.
type BuiltinValue uint8

const (
	BuiltinPosition BuiltinValue = iota
	BuiltinVertexIndex
	BuiltinInstanceIndex
	BuiltinFrontFacing
	BuiltinFragDepth
	BuiltinLocalInvocationID
	BuiltinGlobalInvocationID
	BuiltinWorkGroupID
)

// LocationBinding represents a location binding.
type LocationBinding struct {
	Location uint32
}

func (LocationBinding) binding() {}

// EntryPointIndex returns the index of the named entry point.
// An empty name selects the first entry point.
func (m *Module) EntryPointIndex(name string) (int, error) {
	if len(m.EntryPoints) == 0 {
		return -1, fmt.Errorf("module has no entry points")
	}
	if name == "" {
		return 0, nil
	}
	for i := range m.EntryPoints {
		if m.EntryPoints[i].Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("entry point %q not found", name)
}

// ResolveGlobalType returns the global's type with one level of pointer unwrapped.
func (m *Module) ResolveGlobalType(handle GlobalVariableHandle) (TypeInner, bool) {
	if int(handle) >= len(m.GlobalVariables) {
		return nil, false
	}
	th := m.GlobalVariables[handle].Type
	if int(th) >= len(m.Types) {
		return nil, false
	}
	inner := m.Types[th].Inner
	if ptr, ok := inner.(PointerType); ok {
		if int(ptr.Base) >= len(m.Types) {
			return nil, false
		}
		inner = m.Types[ptr.Base].Inner
	}
	return inner, true
}

// Clone returns a copy of the module whose global variable slice and binding
// decorations may be modified without affecting m. Types, functions and entry
// points are shared.
func (m *Module) Clone() *Module {
	globals := make([]GlobalVariable, len(m.GlobalVariables))
	for i, gv := range m.GlobalVariables {
		if gv.Binding != nil {
			b := *gv.Binding
			gv.Binding = &b
		}
		globals[i] = gv
	}
	return &Module{
		Types:           m.Types,
		GlobalVariables: globals,
		Functions:       m.Functions,
		EntryPoints:     m.EntryPoints,
	}
}
