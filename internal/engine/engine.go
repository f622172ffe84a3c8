package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mverlet/pairjit/internal/geom"
	"github.com/mverlet/pairjit/internal/ir"
)

// PairFunc is the fixed pairwise-evaluator signature: relative position of
// particle j with respect to particle i, the two type indices and the two
// orientations, producing the pair's energy contribution.
//
// A PairFunc is valid only while its owning Engine is alive. It is safe to
// invoke concurrently from multiple goroutines.
type PairFunc func(rij geom.Vec3, typeI uint32, qi geom.Quat, typeJ uint32, qj geom.Quat) float32

// pairParams is the parameter list a symbol must declare to bind as a
// PairFunc. This is the ABI contract with the IR-producing side.
var pairParams = []ir.Type{ir.TypeVec3, ir.TypeU32, ir.TypeQuat, ir.TypeU32, ir.TypeQuat}

// CompileHook observes function materialization at the backend boundary.
// It fires once per function, after code generation completes.
type CompileHook func(symbol string)

// Option configures engine construction.
type Option func(*config)

type config struct {
	overrides map[string]float32
	hook      CompileHook
}

// WithConstants rebinds module-level f32 constants at registration time.
// Every key must name a declared f32 constant; unknown names and type
// mismatches are registration errors.
func WithConstants(values map[string]float32) Option {
	return func(c *config) { c.overrides = values }
}

// WithCompileHook installs a materialization observer.
func WithCompileHook(h CompileHook) Option {
	return func(c *config) { c.hook = h }
}

// Engine owns a verified module and materializes its functions on demand.
//
// One Engine serves exactly one module: programs never share a symbol
// namespace, so symbol collisions across independently compiled programs
// are impossible.
type Engine struct {
	mod    *ir.Module
	infos  map[string]*funcInfo
	consts map[string]ir.Constant
	fns    []*function
	index  map[string]int
	hook   CompileHook

	closeOnce sync.Once
}

// function is one registered symbol. Materialization is guarded so racing
// callers compile at most once.
type function struct {
	name string
	info *funcInfo
	once sync.Once
	code *codeObj
}

// New verifies the module and registers it with the backend. No machine
// code is generated here; generation is deferred until a symbol is first
// resolved or called.
//
// The engine holds the process-wide target for its lifetime; callers must
// Close it when done.
func New(m *ir.Module, opts ...Option) (*Engine, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	AcquireTarget()
	ok := false
	defer func() {
		if !ok {
			ReleaseTarget()
		}
	}()

	infos, err := verifyModule(m)
	if err != nil {
		return nil, err
	}

	consts := make(map[string]ir.Constant, len(m.Consts))
	for _, c := range m.Consts {
		consts[c.Name] = c
	}
	for name, v := range cfg.overrides {
		c, declared := consts[name]
		if !declared {
			return nil, &Error{Code: ErrOverrideUnknown,
				Msg: fmt.Sprintf("constant override %q names no declared constant", name)}
		}
		if c.Type != ir.TypeF32 {
			return nil, &Error{Code: ErrOverrideType,
				Msg: fmt.Sprintf("constant %q is %s, only f32 constants may be overridden", name, c.Type)}
		}
		c.FVal = v
		consts[name] = c
	}

	e := &Engine{
		mod:    m,
		infos:  infos,
		consts: consts,
		index:  make(map[string]int, len(m.Funcs)),
		hook:   cfg.hook,
	}
	for i, f := range m.Funcs {
		e.fns = append(e.fns, &function{name: f.Name, info: infos[f.Name]})
		e.index[f.Name] = i
	}

	slog.Debug("module registered",
		"module", m.Name,
		"functions", len(m.Funcs),
		"constants", len(consts),
	)
	ok = true
	return e, nil
}

// Close releases the engine's hold on the process-wide target. Evaluators
// bound from this engine must not be invoked after Close. Idempotent.
func (e *Engine) Close() {
	e.closeOnce.Do(ReleaseTarget)
}

// Module returns the registered module.
func (e *Engine) Module() *ir.Module { return e.mod }

// Constant returns the registration-time value of an f32 constant, after
// overrides. Used for diagnostics.
func (e *Engine) Constant(name string) (float32, bool) {
	c, ok := e.consts[name]
	if !ok || c.Type != ir.TypeF32 {
		return 0, false
	}
	return c.FVal, true
}

// materialize generates code for fn exactly once and returns it. Safe for
// concurrent use; losers of the race block until the winner finishes, so
// materialization happens-before every use of the code.
func (e *Engine) materialize(fn *function) *codeObj {
	fn.once.Do(func() {
		fn.code = e.compile(fn)
		slog.Debug("function materialized",
			"symbol", fn.name,
			"instructions", len(fn.code.ops),
		)
		if e.hook != nil {
			e.hook(fn.name)
		}
	})
	return fn.code
}

// Symbol is a resolved, materialized function. It borrows from the Engine:
// it is valid only while the engine is alive.
type Symbol struct {
	eng *Engine
	fn  *function
}

// Resolve looks the symbol up and triggers on-demand compilation if it has
// not been materialized yet. Functions reached only through call
// instructions remain uncompiled until first executed.
func (e *Engine) Resolve(name string) (*Symbol, error) {
	i, ok := e.index[name]
	if !ok {
		return nil, &SymbolError{Symbol: name, Msg: "symbol not found in module"}
	}
	fn := e.fns[i]
	e.materialize(fn)
	return &Symbol{eng: e, fn: fn}, nil
}

// Name returns the symbol's exported name.
func (s *Symbol) Name() string { return s.fn.name }

// Signature returns the symbol's declared parameter and result types.
func (s *Symbol) Signature() ([]ir.Type, ir.Type) {
	decl := s.fn.info.decl
	params := make([]ir.Type, len(decl.Params))
	for i, p := range decl.Params {
		params[i] = p.Type
	}
	return params, decl.Result
}

// Pair binds the symbol as a pairwise evaluator. The declared signature
// must match PairFunc exactly; the check replaces the unchecked
// pointer cast a native backend would perform, and a mismatch is a
// resolution failure, not a runtime one.
func (s *Symbol) Pair() (PairFunc, error) {
	params, result := s.Signature()
	if !signatureMatches(params, result) {
		return nil, &SymbolError{Symbol: s.fn.name, Msg: fmt.Sprintf(
			"signature mismatch: have %s, want (vec3, u32, quat, u32, quat) -> f32",
			formatSignature(params, result))}
	}

	// Parameter slots, in declaration order. With the signature fixed the
	// banks are known; only the indices come from the layout.
	slots := s.fn.info.slots
	decl := s.fn.info.decl
	rs := slots[decl.Params[0].Name].idx
	tis := slots[decl.Params[1].Name].idx
	qis := slots[decl.Params[2].Name].idx
	tjs := slots[decl.Params[3].Name].idx
	qjs := slots[decl.Params[4].Name].idx

	eng := s.eng
	code := s.fn.code
	return func(rij geom.Vec3, typeI uint32, qi geom.Quat, typeJ uint32, qj geom.Quat) float32 {
		fr := code.getFrame()
		fr.v[rs] = rij
		fr.u[tis] = typeI
		fr.q[qis] = qi
		fr.u[tjs] = typeJ
		fr.q[qjs] = qj
		out := eng.run(code, fr)
		code.frames.Put(fr)
		return out.f
	}, nil
}

func signatureMatches(params []ir.Type, result ir.Type) bool {
	if result != ir.TypeF32 || len(params) != len(pairParams) {
		return false
	}
	for i, t := range params {
		if t != pairParams[i] {
			return false
		}
	}
	return true
}

func formatSignature(params []ir.Type, result ir.Type) string {
	names := make([]string, len(params))
	for i, t := range params {
		names[i] = t.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(names, ", "), result)
}
