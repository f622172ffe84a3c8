// Package ir defines the intermediate representation consumed by the
// compilation backend.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the IR the foundational
// layer with no circular dependencies.
//
// The IR is a typed, register-based program format: a module holds named
// constants and functions, a function holds labeled blocks, a block holds
// instructions. Registers are function-scoped and assigned exactly once.
// The textual grammar is parsed by internal/parser; verification and code
// generation live in internal/engine.
package ir
