// Package jit assembles the compile-link-resolve pipeline: IR text in,
// typed pairwise evaluator out.
//
// The Factory is the construction-time error boundary demanded by the hot
// path: the evaluator it hands out is a raw function value invoked per
// interacting pair, with no channel for signaling failure. Every failure
// mode (parse, verification, registration, symbol resolution, signature
// mismatch) is therefore fully resolved at construction and reported
// through the diagnostic slot instead of an error return or panic.
//
// Owners must check Err after construction and refuse to run the
// simulation if it is non-empty:
//
//	f := jit.New(irText)
//	defer f.Close()
//	if f.Err() != "" {
//		log.Fatal(f.Err())
//	}
//	eval := f.Eval() // non-nil exactly when Err() == ""
package jit

import (
	"log/slog"

	"github.com/mverlet/pairjit/internal/engine"
	"github.com/mverlet/pairjit/internal/ir"
	"github.com/mverlet/pairjit/internal/parser"
)

// EvalSymbol is the exported symbol the resolver looks up. The name is
// fixed by contract with the upstream IR generator; there is no discovery
// of alternate entry points.
const EvalSymbol = "eval"

// EvalFn is the evaluator's call signature. See engine.PairFunc for the
// ABI contract and thread-safety guarantees.
type EvalFn = engine.PairFunc

// State tracks construction progress. Ready and Failed are terminal: a new
// IR program requires a new Factory.
type State uint8

const (
	StateUninitialized State = iota
	StateLoading
	StateCompiling
	StateReady
	StateFailed
)

var stateNames = [...]string{"uninitialized", "loading", "compiling", "ready", "failed"}

// String returns the lowercase state name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// FailKind classifies which pipeline phase produced a diagnostic.
type FailKind uint8

const (
	FailNone FailKind = iota
	FailParse
	FailVerify
	FailResolve
)

var failKindNames = [...]string{"none", "parse", "verify", "resolve"}

func (k FailKind) String() string {
	if int(k) < len(failKindNames) {
		return failKindNames[k]
	}
	return "unknown"
}

// Option configures factory construction.
type Option func(*options)

type options struct {
	engineOpts []engine.Option
}

// WithConstants rebinds module-level f32 constants before compilation.
// Typically fed from a manifest's constants table.
func WithConstants(values map[string]float32) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, engine.WithConstants(values))
	}
}

// WithCompileHook observes backend code generation. Used by tests and by
// the CLI's verbose mode.
func WithCompileHook(h engine.CompileHook) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, engine.WithCompileHook(h))
	}
}

// Factory owns one compiled IR program and the engine behind it.
//
// The evaluator returned by Eval borrows engine-owned state: it remains
// valid only while the Factory is alive. Keep the Factory for as long as
// the evaluator may be invoked, then Close it.
type Factory struct {
	programHash string
	moduleName  string
	state       State
	errMsg      string
	failKind    FailKind

	eng  *engine.Engine
	eval EvalFn
}

// New runs the full pipeline on irText: parse, verify and register with a
// fresh engine, resolve EvalSymbol, bind the typed evaluator.
//
// New never returns an error; inspect Err on the returned Factory.
// Construction is synchronous and unbounded: compilation blocks the
// calling goroutine until it completes or fails.
func New(irText string, opts ...Option) *Factory {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	f := &Factory{
		state:       StateUninitialized,
		programHash: ir.ProgramHash(irText),
	}

	f.state = StateLoading
	mod, err := parser.Parse(irText)
	if err != nil {
		return f.fail(FailParse, parser.Render(err, irText))
	}
	f.moduleName = mod.Name

	f.state = StateCompiling
	eng, err := engine.New(mod, o.engineOpts...)
	if err != nil {
		return f.fail(FailVerify, err.Error())
	}

	sym, err := eng.Resolve(EvalSymbol)
	if err != nil {
		eng.Close()
		return f.fail(FailResolve, err.Error())
	}
	eval, err := sym.Pair()
	if err != nil {
		eng.Close()
		return f.fail(FailResolve, err.Error())
	}

	f.eng = eng
	f.eval = eval
	f.state = StateReady
	slog.Info("evaluator ready",
		"module", f.moduleName,
		"program_hash", shortHash(f.programHash),
	)
	return f
}

// fail records the diagnostic, overwriting any earlier one, and moves the
// factory to its terminal Failed state.
func (f *Factory) fail(kind FailKind, diag string) *Factory {
	f.errMsg = diag
	f.failKind = kind
	f.state = StateFailed
	slog.Error("evaluator construction failed",
		"module", f.moduleName,
		"program_hash", shortHash(f.programHash),
		"diagnostic", diag,
	)
	return f
}

// Eval returns the compiled evaluator, or nil if construction failed.
// Non-nil exactly when Err returns the empty string.
func (f *Factory) Eval() EvalFn { return f.eval }

// Err returns the most recent failure diagnostic. Empty means success.
func (f *Factory) Err() string { return f.errMsg }

// FailureKind reports which pipeline phase failed, or FailNone.
func (f *Factory) FailureKind() FailKind { return f.failKind }

// State returns the construction state.
func (f *Factory) State() State { return f.state }

// ProgramHash returns the content-addressed identity of the IR text.
func (f *Factory) ProgramHash() string { return f.programHash }

// ModuleName returns the module name from the IR, or "" if parsing never
// got that far.
func (f *Factory) ModuleName() string { return f.moduleName }

// Module returns the parsed module for inspection (listing, diagnostics),
// or nil if construction failed before registration.
func (f *Factory) Module() *ir.Module {
	if f.eng == nil {
		return nil
	}
	return f.eng.Module()
}

// Close releases the engine. The evaluator must not be invoked afterwards.
// Safe to call on a failed factory, and idempotent.
func (f *Factory) Close() {
	if f.eng != nil {
		f.eng.Close()
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
