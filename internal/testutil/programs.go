// Package testutil provides canned IR programs and instrumentation helpers
// shared by tests across packages.
package testutil

import "sync"

// ZeroProgram is a valid program whose evaluator returns 0 for all inputs.
const ZeroProgram = `
module "zero"
func @eval(%r: vec3, %ti: u32, %qi: quat, %tj: u32, %qj: quat) -> f32 {
entry:
  %e = f32 0.0
  ret %e
}
`

// LJProgram is a Lennard-Jones potential with overridable eps and sigma.
const LJProgram = `
; 12-6 Lennard-Jones pair potential
module "lj"
const eps: f32 = 1.0
const sigma: f32 = 1.0
func @eval(%r: vec3, %ti: u32, %qi: quat, %tj: u32, %qj: quat) -> f32 {
entry:
  %d = norm %r
  %s = ldc sigma
  %x = fdiv %s, %d
  %six = f32 6.0
  %x6 = pow %x, %six
  %x12 = fmul %x6, %x6
  %att = fsub %x12, %x6
  %four = f32 4.0
  %e0 = ldc eps
  %k = fmul %four, %e0
  %e = fmul %k, %att
  ret %e
}
`

// HelperProgram routes the energy through a lazily-linked helper function.
const HelperProgram = `
module "helper"
func @square(%x: f32) -> f32 {
entry:
  %y = fmul %x, %x
  ret %y
}
func @eval(%r: vec3, %ti: u32, %qi: quat, %tj: u32, %qj: quat) -> f32 {
entry:
  %d = norm %r
  %e = call @square(%d)
  ret %e
}
`

// OrientationProgram depends on the first particle's orientation: it
// projects the rotated body z axis onto the normalized separation.
const OrientationProgram = `
module "aniso"
func @eval(%r: vec3, %ti: u32, %qi: quat, %tj: u32, %qj: quat) -> f32 {
entry:
  %rn = normalize %r
  %axis = rotate %qi, %rn
  %e = dot %axis, %rn
  ret %e
}
`

// SyntaxErrorProgram has an unterminated function declaration.
const SyntaxErrorProgram = `
module "broken"
func @eval(%r: vec3, %ti: u32, %qi: quat, %tj: u32, %qj: quat) -> f32 {
entry:
  %e = f32 0.0
  ret %e
`

// MissingSymbolProgram is valid IR that exports @potential instead of the
// agreed @eval entry point.
const MissingSymbolProgram = `
module "renamed"
func @potential(%r: vec3, %ti: u32, %qi: quat, %tj: u32, %qj: quat) -> f32 {
entry:
  %e = f32 0.0
  ret %e
}
`

// BadSignatureProgram exports @eval with the wrong parameter list.
const BadSignatureProgram = `
module "badsig"
func @eval(%x: f32) -> f32 {
entry:
  ret %x
}
`

// TypeErrorProgram is syntactically valid but adds a vector to a scalar,
// which verification rejects.
const TypeErrorProgram = `
module "illtyped"
func @eval(%r: vec3, %ti: u32, %qi: quat, %tj: u32, %qj: quat) -> f32 {
entry:
  %one = f32 1.0
  %e = fadd %r, %one
  ret %e
}
`

// CompileRecorder records backend materialization events. Pass Hook to
// engine.WithCompileHook or jit.WithCompileHook and assert on Symbols.
type CompileRecorder struct {
	mu      sync.Mutex
	symbols []string
}

// Hook is the CompileHook to install.
func (r *CompileRecorder) Hook(symbol string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.symbols = append(r.symbols, symbol)
}

// Symbols returns the materialized symbols in compile order.
func (r *CompileRecorder) Symbols() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.symbols...)
}

// Count returns the number of materializations observed.
func (r *CompileRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.symbols)
}
