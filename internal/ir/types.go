package ir

// Type identifies a value type in the IR type system.
type Type uint8

const (
	TypeInvalid Type = iota
	TypeF32          // 32-bit float scalar
	TypeU32          // unsigned 32-bit integer
	TypeBool         // comparison result
	TypeVec3         // 3-component float32 vector
	TypeQuat         // 4-component float32 quaternion
)

var typeNames = map[Type]string{
	TypeF32:  "f32",
	TypeU32:  "u32",
	TypeBool: "bool",
	TypeVec3: "vec3",
	TypeQuat: "quat",
}

// String returns the textual spelling of the type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "invalid"
}

// ParseType maps a textual type name to its Type.
// Returns TypeInvalid, false for unknown names.
func ParseType(s string) (Type, bool) {
	for t, name := range typeNames {
		if name == s {
			return t, true
		}
	}
	return TypeInvalid, false
}

// Elem selects a component of a vec3 or quat value.
type Elem uint8

const (
	ElemX Elem = iota
	ElemY
	ElemZ
	ElemW // quat only
)

var elemNames = [...]string{"x", "y", "z", "w"}

// String returns the component letter.
func (e Elem) String() string {
	if int(e) < len(elemNames) {
		return elemNames[e]
	}
	return "?"
}

// ParseElem maps a component letter to its Elem.
func ParseElem(s string) (Elem, bool) {
	for i, name := range elemNames {
		if name == s {
			return Elem(i), true
		}
	}
	return 0, false
}

// Module is a parsed IR program: named constants plus functions, in
// declaration order. A Module is immutable once handed to the engine.
type Module struct {
	Name   string
	Consts []Constant
	Funcs  []*Function
}

// Func returns the function with the given name, or nil.
func (m *Module) Func(name string) *Function {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Const returns the constant with the given name and whether it exists.
func (m *Module) Const(name string) (Constant, bool) {
	for _, c := range m.Consts {
		if c.Name == name {
			return c, true
		}
	}
	return Constant{}, false
}

// Constant is a module-level named scalar constant. Only f32 and u32
// constants are representable.
type Constant struct {
	Name string
	Type Type
	FVal float32 // valid when Type == TypeF32
	UVal uint32  // valid when Type == TypeU32
	Line int
}

// Function is a single linkable symbol within a module.
type Function struct {
	Name   string
	Params []Param
	Result Type
	Blocks []*Block
	Line   int
}

// Block returns the block with the given label, or nil.
func (f *Function) Block(label string) *Block {
	for _, b := range f.Blocks {
		if b.Label == label {
			return b
		}
	}
	return nil
}

// Entry returns the first block of the function, or nil for an empty body.
// Execution always starts at the first declared block.
func (f *Function) Entry() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// Param is a typed function parameter. Parameters occupy registers like any
// instruction result.
type Param struct {
	Name string
	Type Type
}

// Block is a labeled straight-line instruction sequence ending in a
// terminator.
type Block struct {
	Label  string
	Instrs []Instr
	Line   int
}

// Instr is a single IR instruction.
//
// Dest is the result register name (empty for terminators). Args holds
// register operand names in order. Literal payloads, callee symbols, element
// selectors and branch labels occupy the dedicated fields for the ops that
// use them. Line is the 1-based source line for diagnostics.
type Instr struct {
	Op   Op
	Dest string
	Args []string

	FVal   float32  // OpFConst
	UVal   uint32   // OpUConst
	Const  string   // OpLdc: module constant name
	Elem   Elem     // OpElem, OpQElem
	Callee string   // OpCall
	Labels []string // OpBr (1), OpCbr (2)

	Line int
}
