// Package resolve implements the three-pass resolver: constructor pass,
// declare pass, resolve pass.
package resolve

import (
	"github.com/funvibe/nomlc/internal/checkconfig"
	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/ident"
	"github.com/funvibe/nomlc/internal/tree"
)

// Namekind tags a value-namespace binding as an ordinary value or a data
// constructor, so spine discrimination can tell `f x` (value
// applied to argument) from `Cons x xs` (constructor destructuring)
// without re-deriving the constructor table at every pattern.
type Namekind uint8

const (
	NameValue Namekind = iota
	NamePattern
)

type valueBinding struct {
	Name ident.Name
	Kind Namekind
}

// Scope holds the two namespaces (values, types) live at one lexical
// level.
type Scope struct {
	Name   ident.ScopeName
	Values map[ident.Ident]valueBinding
	Types  map[ident.Ident]ident.Name
}

func newScope(name ident.ScopeName) *Scope {
	return &Scope{Name: name, Values: make(map[ident.Ident]valueBinding), Types: make(map[ident.Ident]ident.Name)}
}

// Prelude seeds the top-level scope's two namespaces before resolution
// starts, so builtins minted elsewhere (check.RegisterBuiltins' Bool is a
// type, True/False are values) resolve like any ordinary top-level name
// instead of needing resolver-side special-casing.
type Prelude struct {
	Values map[ident.Ident]ident.Name
	Types  map[ident.Ident]ident.Name
}

// Resolver carries the mutable scope stack and the tables built by the
// constructor pass; it never mutates the parsed input tree, only produces
// a fresh resolved one.
type Resolver struct {
	Names  *ident.Names
	Errors *diag.Errors
	Source ident.SourceId
	Config checkconfig.Config

	affii map[ident.Name]tree.Affix

	// valueOwner/typeOwner map a top-level-minted Name back to the item
	// that defines it (a let's bound names, or a data item's own type
	// name and its constructors), for dependency-graph construction.
	valueOwner map[ident.Name]tree.ItemId
	typeOwner  map[ident.Name]tree.ItemId

	// letPatterns stashes the declare pass's already-bound pattern for a
	// non-function PILet item, so the resolve pass reuses it instead of
	// re-declaring (and re-warning on) the same names.
	letPatterns map[tree.ItemId]*tree.ResolvedPattern

	scopes  []*Scope
	anonCtr uint32
}

// NewResolver constructs a resolver for one source, with an empty
// top-level scope already pushed and seeded with prelude (may be the zero
// Prelude{}).
func NewResolver(names *ident.Names, errs *diag.Errors, src ident.SourceId, cfg checkconfig.Config, prelude Prelude) *Resolver {
	r := &Resolver{
		Names:       names,
		Errors:      errs,
		Source:      src,
		Config:      cfg,
		affii:       make(map[ident.Name]tree.Affix),
		valueOwner:  make(map[ident.Name]tree.ItemId),
		typeOwner:   make(map[ident.Name]tree.ItemId),
		letPatterns: make(map[tree.ItemId]*tree.ResolvedPattern),
	}
	top := newScope(ident.TopLevel(src))
	for id, name := range prelude.Values {
		top.Values[id] = valueBinding{Name: name, Kind: NameValue}
	}
	for id, name := range prelude.Types {
		top.Types[id] = name
	}
	r.scopes = append(r.scopes, top)
	return r
}

// redefineSeverity is SeverityWarning unless Config.StrictRedefine asks for
// a hard error; otherwise it's a warning.
func (r *Resolver) redefineSeverity() diag.Severity {
	if r.Config.StrictRedefine {
		return diag.SeverityError
	}
	return diag.SeverityWarning
}

func (r *Resolver) top() *Scope { return r.scopes[len(r.scopes)-1] }

// scope pushes a fresh empty scope (rooted at parentName if given,
// otherwise a fresh Anonymous), runs body, and pops it.
func (r *Resolver) scope(parentName *ident.Name, body func()) {
	r.pushScope(parentName)
	body()
	r.popScope()
}

// pushScope/popScope are the unpaired primitives scope() is built on,
// needed where two sequential resolve calls (e.g. a let's bound
// expression and its body) must share one still-open scope.
func (r *Resolver) pushScope(parentName *ident.Name) {
	var sn ident.ScopeName
	if parentName != nil {
		sn = ident.ItemScope(*parentName)
	} else {
		sn = ident.Anonymous(r.anonCtr)
		r.anonCtr++
	}
	r.scopes = append(r.scopes, newScope(sn))
}

func (r *Resolver) popScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// defineValue binds id to a fresh Name of the given kind in the current
// (top of stack) scope, emitting a redefinition diagnostic if id is
// already bound at this exact level — the new name is inserted regardless
// so later references still resolve.
func (r *Resolver) defineValue(id ident.Ident, kind Namekind, span tree.Span) ident.Name {
	cur := r.top()
	name := r.Names.Name(cur.Name, id)

	if prev, ok := cur.Values[id]; ok {
		// A value binding may shadow a same-spelled constructor without
		// diagnostic (two-namespace discipline); only a
		// same-kind-at-same-level redefinition is illegal.
		if !(prev.Kind == NamePattern && kind == NameValue) {
			r.Errors.Record(diag.PhaseResolver, diag.CodeRedefinedValue, r.redefineSeverity(), span, r.Names.GetIdent(id))
		}
	}

	cur.Values[id] = valueBinding{Name: name, Kind: kind}
	return name
}

// defineConstructor is defineValue specialized for the constructor pass:
// constructors are always minted in the top-level scope regardless of
// where the enclosing data item sits.
func (r *Resolver) defineConstructor(id ident.Ident, span tree.Span) ident.Name {
	top := r.scopes[0]
	name := r.Names.Name(top.Name, id)
	if _, ok := top.Values[id]; ok {
		r.Errors.Record(diag.PhaseResolver, diag.CodeRedefinedValue, r.redefineSeverity(), span, r.Names.GetIdent(id))
	}
	top.Values[id] = valueBinding{Name: name, Kind: NamePattern}
	return name
}

func (r *Resolver) defineType(id ident.Ident, span tree.Span) ident.Name {
	cur := r.top()
	name := r.Names.Name(cur.Name, id)
	if _, ok := cur.Types[id]; ok {
		r.Errors.Record(diag.PhaseResolver, diag.CodeRedefinedType, r.redefineSeverity(), span, r.Names.GetIdent(id))
	}
	cur.Types[id] = name
	return name
}

// lookupValue walks the scope stack from the top down.
func (r *Resolver) lookupValue(id ident.Ident) (valueBinding, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if v, ok := r.scopes[i].Values[id]; ok {
			return v, true
		}
	}
	return valueBinding{}, false
}

func (r *Resolver) lookupType(id ident.Ident) (ident.Name, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if v, ok := r.scopes[i].Types[id]; ok {
			return v, true
		}
	}
	return 0, false
}

// isConstructor reports whether id is already known as a data constructor
// in the top-level scope — the question spine discrimination needs to
// answer.
func (r *Resolver) isConstructor(id ident.Ident) (ident.Name, bool) {
	top := r.scopes[0]
	v, ok := top.Values[id]
	if !ok || v.Kind != NamePattern {
		return 0, false
	}
	return v.Name, true
}
