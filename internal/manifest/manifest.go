// Package manifest loads and validates potential manifests.
//
// A manifest is the simulation-facing contract wrapped around an IR
// program: the particle type table (name to index), named-constant
// overrides fed into compilation, and the entry symbol. Manifests are CUE
// files validated against the embedded schema before any field is read.
package manifest

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// schema is what every manifest must satisfy. Kept in CUE rather than Go
// so the IR-producing side can validate against the identical definition.
const schema = `
#Manifest: {
	entry: string
	types: [...#ParticleType]
	constants: [string]: number
}

#ParticleType: {
	name: string & !=""
}
`

// DefaultEntry is the entry symbol assumed when a manifest omits one.
const DefaultEntry = "eval"

// Manifest is a validated potential manifest.
type Manifest struct {
	Entry     string
	Types     []ParticleType
	Constants map[string]float32
}

// ParticleType maps a particle type name to the index the evaluator
// receives. Indices follow declaration order.
type ParticleType struct {
	Name  string
	Index uint32
}

// TypeIndex returns the index for a type name.
func (m *Manifest) TypeIndex(name string) (uint32, bool) {
	for _, t := range m.Types {
		if t.Name == name {
			return t.Index, true
		}
	}
	return 0, false
}

// ParseError is a manifest validation failure with CUE position info.
type ParseError struct {
	Field   string
	Message string
	Pos     token.Pos
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("manifest %s: %s: %s", e.Pos, e.Field, e.Message)
	}
	return fmt.Sprintf("manifest: %s: %s", e.Field, e.Message)
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(string(data), path)
}

// Parse validates manifest source and extracts the typed manifest.
// filename is used in positions only.
func Parse(src, filename string) (*Manifest, error) {
	ctx := cuecontext.New()

	sv := ctx.CompileString(schema)
	if err := sv.Err(); err != nil {
		// The embedded schema is a compile-time fixture; failing to parse
		// it is a bug, not user error.
		return nil, fmt.Errorf("internal: manifest schema invalid: %w", err)
	}

	v := ctx.CompileString(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	mv := v.LookupPath(cue.ParsePath("manifest"))
	if !mv.Exists() {
		return nil, &ParseError{Field: "manifest", Message: "top-level 'manifest' struct is required", Pos: v.Pos()}
	}

	unified := mv.Unify(sv.LookupPath(cue.ParsePath("#Manifest")))
	if err := unified.Validate(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &Manifest{Entry: DefaultEntry, Constants: map[string]float32{}}

	if ev := mv.LookupPath(cue.ParsePath("entry")); ev.Exists() {
		entry, err := ev.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if entry == "" {
			return nil, &ParseError{Field: "entry", Message: "entry symbol must be non-empty", Pos: ev.Pos()}
		}
		m.Entry = entry
	}

	if tv := mv.LookupPath(cue.ParsePath("types")); tv.Exists() {
		iter, err := tv.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		seen := map[string]bool{}
		for iter.Next() {
			nameVal := iter.Value().LookupPath(cue.ParsePath("name"))
			name, err := nameVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			if seen[name] {
				return nil, &ParseError{Field: "types", Message: fmt.Sprintf("duplicate particle type %q", name), Pos: nameVal.Pos()}
			}
			seen[name] = true
			m.Types = append(m.Types, ParticleType{Name: name, Index: uint32(len(m.Types))})
		}
	}

	if cv := mv.LookupPath(cue.ParsePath("constants")); cv.Exists() {
		iter, err := cv.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			f, err := iter.Value().Float64()
			if err != nil {
				return nil, formatCUEError(err)
			}
			m.Constants[iter.Selector().Unquoted()] = float32(f)
		}
	}

	return m, nil
}

// formatCUEError extracts position info from a CUE error list.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors; report the first with position.
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &ParseError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
