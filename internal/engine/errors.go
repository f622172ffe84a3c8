package engine

import (
	"errors"
	"fmt"
)

// Verification and registration error codes (V100-V199, R100-R199).
const (
	ErrDuplicateRegister = "V100" // register assigned more than once
	ErrUndefinedRegister = "V101" // register used before definition
	ErrTypeMismatch      = "V102" // operand or result type mismatch
	ErrMissingTerminator = "V103" // block does not end in a terminator
	ErrAfterTerminator   = "V104" // instruction after a terminator
	ErrUnknownLabel      = "V105" // branch to undeclared block
	ErrUnknownCallee     = "V106" // call to undeclared function
	ErrCallArity         = "V107" // call argument count mismatch
	ErrRecursion         = "V108" // call graph contains a cycle
	ErrBadComponent      = "V109" // elem component out of range for type
	ErrDuplicateParam    = "V110" // parameter name reused
	ErrUnknownConstant   = "V111" // ldc of undeclared constant
	ErrBlockCycle        = "V112" // control-flow graph contains a cycle

	ErrOverrideUnknown = "R100" // constant override names no declared constant
	ErrOverrideType    = "R101" // constant override on non-f32 constant
)

// Error is a verification or registration failure. The diagnostic carries
// the function and source line so the IR-producing side can locate the
// offending instruction.
type Error struct {
	Code string
	Func string // function name, empty for module-level failures
	Line int    // 1-based source line, 0 if not applicable
	Msg  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Func != "" && e.Line > 0:
		return fmt.Sprintf("[%s] @%s line %d: %s", e.Code, e.Func, e.Line, e.Msg)
	case e.Func != "":
		return fmt.Sprintf("[%s] @%s: %s", e.Code, e.Func, e.Msg)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Msg)
	}
}

// SymbolError is a resolution failure: the requested symbol does not exist
// in the module, or its signature does not match the requested binding.
type SymbolError struct {
	Symbol string
	Msg    string
}

// Error implements the error interface.
func (e *SymbolError) Error() string {
	return fmt.Sprintf("symbol @%s: %s", e.Symbol, e.Msg)
}

// IsSymbolError reports whether err is a resolution failure.
// Uses errors.As to handle wrapped errors.
func IsSymbolError(err error) bool {
	var se *SymbolError
	return errors.As(err, &se)
}
