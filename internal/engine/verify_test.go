package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mverlet/pairjit/internal/ir"
	"github.com/mverlet/pairjit/internal/parser"
)

// mustParse parses IR source that the test expects to be syntactically valid.
func mustParse(t *testing.T, src string) *ir.Module {
	t.Helper()
	m, err := parser.Parse(src)
	require.NoError(t, err, "test IR should parse")
	return m
}

// verifyErr runs registration and requires a structured failure with the
// given code.
func verifyErr(t *testing.T, src, code string) *Error {
	t.Helper()
	_, err := New(mustParse(t, src))
	require.Error(t, err)
	var ve *Error
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, code, ve.Code)
	return ve
}

func TestVerifyValidProgram(t *testing.T) {
	src := `
module "ok"
func @eval(%r: vec3, %ti: u32, %qi: quat, %tj: u32, %qj: quat) -> f32 {
entry:
  %r2 = dot %r, %r
  ret %r2
}
`
	e, err := New(mustParse(t, src))
	require.NoError(t, err)
	defer e.Close()
}

func TestVerifyDuplicateRegister(t *testing.T) {
	src := `
module "m"
func @f(%x: f32) -> f32 {
entry:
  %y = fadd %x, %x
  %y = fmul %x, %x
  ret %y
}
`
	ve := verifyErr(t, src, ErrDuplicateRegister)
	assert.Equal(t, "f", ve.Func)
	assert.Contains(t, ve.Msg, "%y")
}

func TestVerifyUndefinedRegister(t *testing.T) {
	src := `
module "m"
func @f(%x: f32) -> f32 {
entry:
  %y = fadd %x, %z
  ret %y
}
`
	verifyErr(t, src, ErrUndefinedRegister)
}

func TestVerifyTypeMismatch(t *testing.T) {
	src := `
module "m"
func @f(%x: f32, %v: vec3) -> f32 {
entry:
  %y = fadd %x, %v
  ret %y
}
`
	ve := verifyErr(t, src, ErrTypeMismatch)
	assert.Contains(t, ve.Msg, "fadd expects f32")
}

func TestVerifyRetTypeMismatch(t *testing.T) {
	src := `
module "m"
func @f(%v: vec3) -> f32 {
entry:
  ret %v
}
`
	verifyErr(t, src, ErrTypeMismatch)
}

func TestVerifyMissingTerminator(t *testing.T) {
	src := `
module "m"
func @f(%x: f32) -> f32 {
entry:
  %y = fadd %x, %x
}
`
	verifyErr(t, src, ErrMissingTerminator)
}

func TestVerifyInstrAfterTerminator(t *testing.T) {
	src := `
module "m"
func @f(%x: f32) -> f32 {
entry:
  ret %x
  %y = fadd %x, %x
  ret %y
}
`
	verifyErr(t, src, ErrAfterTerminator)
}

func TestVerifyUnknownLabel(t *testing.T) {
	src := `
module "m"
func @f(%x: f32) -> f32 {
entry:
  br elsewhere
}
`
	verifyErr(t, src, ErrUnknownLabel)
}

func TestVerifyUnknownCallee(t *testing.T) {
	src := `
module "m"
func @f(%x: f32) -> f32 {
entry:
  %y = call @missing(%x)
  ret %y
}
`
	verifyErr(t, src, ErrUnknownCallee)
}

func TestVerifyCallArity(t *testing.T) {
	src := `
module "m"
func @g(%a: f32, %b: f32) -> f32 {
entry:
  %s = fadd %a, %b
  ret %s
}
func @f(%x: f32) -> f32 {
entry:
  %y = call @g(%x)
  ret %y
}
`
	ve := verifyErr(t, src, ErrCallArity)
	assert.Contains(t, ve.Msg, "takes 2 arguments, got 1")
}

func TestVerifyCallArgType(t *testing.T) {
	src := `
module "m"
func @g(%a: f32) -> f32 {
entry:
  ret %a
}
func @f(%v: vec3) -> f32 {
entry:
  %y = call @g(%v)
  ret %y
}
`
	verifyErr(t, src, ErrTypeMismatch)
}

func TestVerifyRejectsDirectRecursion(t *testing.T) {
	src := `
module "m"
func @f(%x: f32) -> f32 {
entry:
  %y = call @f(%x)
  ret %y
}
`
	verifyErr(t, src, ErrRecursion)
}

func TestVerifyRejectsMutualRecursion(t *testing.T) {
	src := `
module "m"
func @a(%x: f32) -> f32 {
entry:
  %y = call @b(%x)
  ret %y
}
func @b(%x: f32) -> f32 {
entry:
  %y = call @a(%x)
  ret %y
}
`
	verifyErr(t, src, ErrRecursion)
}

func TestVerifyVecHasNoW(t *testing.T) {
	src := `
module "m"
func @f(%v: vec3) -> f32 {
entry:
  %x = elem %v, w
  ret %x
}
`
	verifyErr(t, src, ErrBadComponent)
}

func TestVerifyUnknownConstant(t *testing.T) {
	src := `
module "m"
func @f(%x: f32) -> f32 {
entry:
  %c = ldc sigma
  ret %c
}
`
	verifyErr(t, src, ErrUnknownConstant)
}

func TestVerifySelectArmsMustAgree(t *testing.T) {
	src := `
module "m"
func @f(%x: f32, %v: vec3, %c: u32) -> f32 {
entry:
  %z = u32 0
  %b = ieq %c, %z
  %y = select %b, %x, %v
  ret %y
}
`
	verifyErr(t, src, ErrTypeMismatch)
}

func TestConstantOverrideUnknown(t *testing.T) {
	src := `
module "m"
const eps: f32 = 1.0
func @f(%x: f32) -> f32 {
entry:
  ret %x
}
`
	_, err := New(mustParse(t, src), WithConstants(map[string]float32{"sigma": 2}))
	require.Error(t, err)
	var ve *Error
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ErrOverrideUnknown, ve.Code)
}

func TestConstantOverrideTypeMismatch(t *testing.T) {
	src := `
module "m"
const cut: u32 = 3
func @f(%x: f32) -> f32 {
entry:
  ret %x
}
`
	_, err := New(mustParse(t, src), WithConstants(map[string]float32{"cut": 2}))
	require.Error(t, err)
	var ve *Error
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ErrOverrideType, ve.Code)
}

func TestVerifyErrorReleasesTarget(t *testing.T) {
	before := TargetRefs()
	src := `
module "m"
func @f(%x: f32) -> f32 {
entry:
  %y = fadd %x, %nope
  ret %y
}
`
	_, err := New(mustParse(t, src))
	require.Error(t, err)
	assert.Equal(t, before, TargetRefs())
}

func TestVerifyBranchMaySkipDefinition(t *testing.T) {
	// %x is defined textually before its use, but only on the path
	// through "def". The path entry -> use would read an unset slot.
	src := `
module "m"
func @f(%take: bool, %a: f32) -> f32 {
entry:
  cbr %take, def, use
def:
  %x = fmul %a, %a
  br use
use:
  %y = fadd %x, %x
  ret %y
}
`
	ve := verifyErr(t, src, ErrUndefinedRegister)
	assert.Contains(t, ve.Msg, "%x")
	assert.Contains(t, ve.Msg, "every path")
}

func TestVerifyDefinitionBeforeBranchCoversBothArms(t *testing.T) {
	src := `
module "ok"
func @f(%take: bool, %a: f32) -> f32 {
entry:
  %x = fmul %a, %a
  cbr %take, lo, hi
lo:
  %y = fadd %x, %a
  ret %y
hi:
  %z = fsub %x, %a
  ret %z
}
`
	e, err := New(mustParse(t, src))
	require.NoError(t, err)
	defer e.Close()
}

func TestVerifyRejectsSelfLoop(t *testing.T) {
	src := `
module "m"
func @f(%again: bool, %a: f32) -> f32 {
entry:
  cbr %again, entry, done
done:
  ret %a
}
`
	ve := verifyErr(t, src, ErrBlockCycle)
	assert.Contains(t, ve.Msg, "entry")
}

func TestVerifyRejectsBlockCycle(t *testing.T) {
	src := `
module "m"
func @f(%again: bool, %a: f32) -> f32 {
entry:
  br spin
spin:
  cbr %again, spin, done
done:
  ret %a
}
`
	verifyErr(t, src, ErrBlockCycle)
}
