// Package engine implements the lazily-compiling native backend.
//
// The engine owns a verified IR module and generates executable code for its
// functions on demand. Registration (engine.New) runs the verifier and
// allocates register slots but generates NO code. Code for a function is
// materialized exactly once, on the first Resolve of its symbol or on the
// first call instruction that reaches it, and is immutable afterwards.
//
// LIFECYCLE:
//
//	New       verify + register, no codegen
//	Resolve   materialize the named function, return a Symbol
//	Pair      bind a Symbol to the fixed pairwise-evaluator signature
//	Close     release the process-wide target; outstanding evaluators
//	          must not be invoked after Close
//
// THREAD MODEL:
//
// Resolution is a one-time happens-before event relative to invocation.
// Materialization is guarded per function (sync.Once), so concurrent calls
// that race on a not-yet-compiled callee are safe. Compiled code is
// immutable and frames are per-invocation, so a bound evaluator may be
// invoked concurrently from any number of goroutines.
//
// ERROR MODEL:
//
// All failures surface at registration or resolution time as values
// (*engine.Error, *engine.SymbolError). The bound evaluator itself is total:
// the verifier rejects anything that could fail at run time (type errors,
// undefined registers, unknown callees, recursion), and the arithmetic ops
// follow IEEE semantics (division by zero yields Inf, not a fault).
package engine
