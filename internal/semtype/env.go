package semtype

import "github.com/funvibe/nomlc/internal/ident"

// Env is the checker's name -> scheme environment. It is a flat map keyed
// by the globally unique Name the resolver minted, rather than a scope
// stack: name uniqueness is already guaranteed upstream, so checking never
// needs to shadow/pop, only insert and later overwrite with a generalized
// scheme.
type Env struct {
	schemes map[ident.Name]Scheme
}

// NewEnv returns an empty environment.
func NewEnv() *Env { return &Env{schemes: make(map[ident.Name]Scheme)} }

// Insert binds name to scheme, overwriting any previous binding. Used both
// for the initial mono pre-binding and its later generalized overwrite.
func (e *Env) Insert(name ident.Name, scheme Scheme) { e.schemes[name] = scheme }

// Overwrite is Insert under the name callers use for the
// post-generalization rebind; semantically identical to Insert.
func (e *Env) Overwrite(name ident.Name, scheme Scheme) { e.Insert(name, scheme) }

// Lookup returns the scheme bound to name, or ok=false if name is unbound
// in this environment (distinct from an unknown-name resolver error: by
// the time the checker runs, every Name it sees was already resolved).
func (e *Env) Lookup(name ident.Name) (Scheme, bool) {
	s, ok := e.schemes[name]
	return s, ok
}
