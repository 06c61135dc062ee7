// Package check implements a level-based Hindley-Milner solver and an
// item-clustered inference driver: two disjoint substitution maps for
// type- and row-kinded variables, a shared Level cell per variable,
// scoped-label row unification, minimization and generalization.
package check

import (
	"github.com/funvibe/nomlc/internal/checkconfig"
	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/semtype"
)

// Solver owns the two substitution maps, the fresh-variable counter, and
// the current generalization level. It is the only mutable state in the
// checker; everything else (trees, schemes once generalized) is immutable.
type Solver struct {
	subst    map[uint64]semtype.Type
	rowSubst map[uint64]semtype.Row
	counter  uint64
	level    int

	// maxRowRewriteSteps bounds rewriteRow's recursion per UnifyRow call
	// (checkconfig.Config.MaxRowRewriteSteps), a defense against a
	// malformed row that never reaches Empty or a shared tail.
	maxRowRewriteSteps int
	rowRewriteSteps    int

	// Trace, if set, receives one line per unify/row-rewrite step. Wired
	// to log.Printf by a host that sets checkconfig.TraceUnification;
	// nil by default, since the core itself does no I/O.
	Trace func(string, ...any)
}

// NewSolver returns a solver at level 0 with empty substitutions, tuned by
// cfg's MaxRowRewriteSteps.
func NewSolver(cfg checkconfig.Config) *Solver {
	max := cfg.MaxRowRewriteSteps
	if max == 0 {
		max = checkconfig.Default().MaxRowRewriteSteps
	}
	return &Solver{
		subst:              make(map[uint64]semtype.Type),
		rowSubst:           make(map[uint64]semtype.Row),
		maxRowRewriteSteps: max,
	}
}

func (s *Solver) trace(format string, args ...any) {
	if s.Trace != nil {
		s.Trace(format, args...)
	}
}

// Enter pushes a new generalization scope.
func (s *Solver) Enter() { s.level++ }

// Exit pops the current generalization scope.
func (s *Solver) Exit() { s.level-- }

// Level returns the current level.
func (s *Solver) Level() int { return s.level }

func (s *Solver) nextId() uint64 {
	s.counter++
	return s.counter
}

// Fresh mints a fresh type-kinded unification variable at the current
// level.
func (s *Solver) Fresh() semtype.Type {
	lvl := semtype.NewLevel(s.level)
	return semtype.TVar{Var: semtype.TypeVar{Id: s.nextId(), Kind: semtype.KindType}, Level: lvl}
}

// FreshRow mints a fresh row-kinded unification variable at the current
// level (spec's fresh_record).
func (s *Solver) FreshRow() semtype.Row {
	lvl := semtype.NewLevel(s.level)
	return semtype.RVar{Var: semtype.TypeVar{Id: s.nextId(), Kind: semtype.KindRow}, Level: lvl}
}

// Apply walks ty following substitutions recursively and returns the
// resolved structure. Because the IR is immutable, this always rebuilds;
// there is no mutation of the input.
func (s *Solver) Apply(ty semtype.Type) semtype.Type {
	switch t := ty.(type) {
	case semtype.TVar:
		if sub, ok := s.subst[t.Var.Id]; ok {
			return s.Apply(sub)
		}
		return t
	case semtype.TApply:
		return semtype.TApply{Fn: s.Apply(t.Fn), Arg: s.Apply(t.Arg)}
	case semtype.TRecord:
		return semtype.TRecord{Row: s.ApplyRow(t.Row)}
	case semtype.TVariant:
		return semtype.TVariant{Row: s.ApplyRow(t.Row)}
	default:
		return ty
	}
}

// ApplyRow is Apply specialized to Row.
func (s *Solver) ApplyRow(row semtype.Row) semtype.Row {
	switch r := row.(type) {
	case semtype.RVar:
		if sub, ok := s.rowSubst[r.Var.Id]; ok {
			return s.ApplyRow(sub)
		}
		return r
	case semtype.RExtend:
		return semtype.RExtend{Label: r.Label, Field: s.Apply(r.Field), Rest: s.ApplyRow(r.Rest)}
	default:
		return row
	}
}

// set binds v to ty after an occurs check and level propagation (spec
// §4.4.3). Apart from propagateInvalid's error marking, it is the only
// place the type substitution map is written.
func (s *Solver) set(errs *diag.Errors, span diag.Span, v semtype.TypeVar, lvl *semtype.Level, ty semtype.Type) semtype.Type {
	if w, ok := ty.(semtype.TVar); ok {
		w.Level.SetMin(lvl.Int())
	}
	if s.occurs(errs, span, v, lvl, ty) {
		id := errs.Record(diag.PhaseChecker, diag.CodeInfiniteType, diag.SeverityError, span,
			varLabel(v), ty.String())
		errTy := semtype.TInvalid{Err: id}
		s.subst[v.Id] = errTy
		return errTy
	}
	s.subst[v.Id] = ty
	return ty
}

func (s *Solver) setRow(errs *diag.Errors, span diag.Span, v semtype.TypeVar, lvl *semtype.Level, row semtype.Row) semtype.Row {
	if w, ok := row.(semtype.RVar); ok {
		w.Level.SetMin(lvl.Int())
	}
	if s.occursRow(errs, span, v, lvl, row) {
		id := errs.Record(diag.PhaseChecker, diag.CodeInfiniteType, diag.SeverityError, span,
			varLabel(v), row.String())
		errRow := semtype.RInvalid{Err: id}
		s.rowSubst[v.Id] = errRow
		return errRow
	}
	s.rowSubst[v.Id] = row
	return row
}

func varLabel(v semtype.TypeVar) string {
	if v.Kind == semtype.KindRow {
		return "row variable"
	}
	return "type variable"
}

// occurs reports whether v appears free (after following substitutions)
// in ty, and propagates v's level into every variable it walks through —
// the occurs traversal doubles as the level-lowering pass so that
// variables nested deep inside a would-be-cyclic type still get their
// level lowered even when the occurs check ultimately fails.
func (s *Solver) occurs(errs *diag.Errors, span diag.Span, v semtype.TypeVar, lvl *semtype.Level, ty semtype.Type) bool {
	switch t := ty.(type) {
	case semtype.TVar:
		if sub, ok := s.subst[t.Var.Id]; ok {
			return s.occurs(errs, span, v, lvl, sub)
		}
		t.Level.SetMin(lvl.Int())
		return t.Var.Id == v.Id
	case semtype.TApply:
		return s.occurs(errs, span, v, lvl, t.Fn) || s.occurs(errs, span, v, lvl, t.Arg)
	case semtype.TRecord:
		return s.occursRow(errs, span, v, lvl, t.Row)
	case semtype.TVariant:
		return s.occursRow(errs, span, v, lvl, t.Row)
	default:
		return false
	}
}

func (s *Solver) occursRow(errs *diag.Errors, span diag.Span, v semtype.TypeVar, lvl *semtype.Level, row semtype.Row) bool {
	switch r := row.(type) {
	case semtype.RVar:
		if sub, ok := s.rowSubst[r.Var.Id]; ok {
			return s.occursRow(errs, span, v, lvl, sub)
		}
		r.Level.SetMin(lvl.Int())
		return r.Var.Id == v.Id
	case semtype.RExtend:
		return s.occurs(errs, span, v, lvl, r.Field) || s.occursRow(errs, span, v, lvl, r.Rest)
	default:
		return false
	}
}

// Instantiate replaces every Param in scheme's type with a fresh variable
// at the current level, one fresh variable per distinct Generic (so two
// occurrences of the same quantified variable stay unified).
func (s *Solver) Instantiate(scheme semtype.Scheme) semtype.Type {
	subst := make(map[semtype.GenericKey]freshVar, len(scheme.Params))
	for _, p := range scheme.Params {
		subst[p.Key()] = s.freshFor(p.Kind)
	}
	return s.instTy(subst, scheme.Ty)
}

// InstantiateTracked is Instantiate plus the set of row-variable ids
// minted for this call's row-kinded generics, so pattern inference can
// keep them open across a subsequent Minimize: a polymorphic
// constructor's own row parameter is a genuine degree of freedom the
// pattern doesn't pin down, not a leftover to close.
func (s *Solver) InstantiateTracked(scheme semtype.Scheme) (semtype.Type, map[uint64]struct{}) {
	subst := make(map[semtype.GenericKey]freshVar, len(scheme.Params))
	opened := make(map[uint64]struct{})
	for _, p := range scheme.Params {
		f := s.freshFor(p.Kind)
		subst[p.Key()] = f
		if p.Kind == semtype.KindRow {
			opened[f.row.(semtype.RVar).Var.Id] = struct{}{}
		}
	}
	return s.instTy(subst, scheme.Ty), opened
}

type freshVar struct {
	ty  semtype.Type
	row semtype.Row
}

func (s *Solver) freshFor(kind semtype.VarKind) freshVar {
	if kind == semtype.KindRow {
		return freshVar{row: s.FreshRow()}
	}
	return freshVar{ty: s.Fresh()}
}

func (s *Solver) instTy(subst map[semtype.GenericKey]freshVar, ty semtype.Type) semtype.Type {
	switch t := ty.(type) {
	case semtype.TParam:
		if f, ok := subst[t.Generic.Key()]; ok {
			return f.ty
		}
		return t
	case semtype.TApply:
		return semtype.TApply{Fn: s.instTy(subst, t.Fn), Arg: s.instTy(subst, t.Arg)}
	case semtype.TRecord:
		return semtype.TRecord{Row: s.instRow(subst, t.Row)}
	case semtype.TVariant:
		return semtype.TVariant{Row: s.instRow(subst, t.Row)}
	default:
		return ty
	}
}

func (s *Solver) instRow(subst map[semtype.GenericKey]freshVar, row semtype.Row) semtype.Row {
	switch r := row.(type) {
	case semtype.RParam:
		if f, ok := subst[r.Generic.Key()]; ok {
			return f.row
		}
		return r
	case semtype.RExtend:
		return semtype.RExtend{Label: r.Label, Field: s.instTy(subst, r.Field), Rest: s.instRow(subst, r.Rest)}
	default:
		return row
	}
}

// Generalize walks ty (after Apply), turning every unbound variable whose
// level exceeds the solver's current level into a Generic::Implicit, and
// prepends explicit to the resulting parameter list.
func (s *Solver) Generalize(explicit []semtype.Generic, ty semtype.Type) semtype.Scheme {
	g := &generalizer{solver: s, seen: make(map[uint64]semtype.Generic)}
	gty := g.ty(ty)

	params := make([]semtype.Generic, 0, len(explicit)+len(g.order))
	params = append(params, explicit...)
	params = append(params, g.order...)

	return semtype.Scheme{Params: params, Ty: gty}
}

type generalizer struct {
	solver *Solver
	seen   map[uint64]semtype.Generic
	order  []semtype.Generic
}

func (g *generalizer) ty(ty semtype.Type) semtype.Type {
	ty = g.solver.Apply(ty)
	switch t := ty.(type) {
	case semtype.TVar:
		if !t.Level.CanGeneralize(g.solver.level) {
			return t
		}
		gen, ok := g.seen[t.Var.Id]
		if !ok {
			gen = semtype.ImplicitGeneric(t.Var)
			g.seen[t.Var.Id] = gen
			g.order = append(g.order, gen)
		}
		return semtype.TParam{Generic: gen}
	case semtype.TApply:
		return semtype.TApply{Fn: g.ty(t.Fn), Arg: g.ty(t.Arg)}
	case semtype.TRecord:
		return semtype.TRecord{Row: g.row(t.Row)}
	case semtype.TVariant:
		return semtype.TVariant{Row: g.row(t.Row)}
	default:
		return ty
	}
}

func (g *generalizer) row(row semtype.Row) semtype.Row {
	row = g.solver.ApplyRow(row)
	switch r := row.(type) {
	case semtype.RVar:
		if !r.Level.CanGeneralize(g.solver.level) {
			return r
		}
		gen, ok := g.seen[r.Var.Id]
		if !ok {
			gen = semtype.ImplicitGeneric(r.Var)
			g.seen[r.Var.Id] = gen
			g.order = append(g.order, gen)
		}
		return semtype.RParam{Generic: gen}
	case semtype.RExtend:
		return semtype.RExtend{Label: r.Label, Field: g.ty(r.Field), Rest: g.row(r.Rest)}
	default:
		return row
	}
}

// Minimize closes every row variable reachable from ty that is not in
// keep and not yet substituted, by substituting it with Empty (spec
// §4.4.6). Idempotent: a second Minimize with the same keep set is a
// no-op because every closeable row var is already substituted.
func (s *Solver) Minimize(keep map[uint64]struct{}, ty semtype.Type) {
	m := &minimizer{solver: s, keep: keep}
	m.ty(ty)
}

type minimizer struct {
	solver *Solver
	keep   map[uint64]struct{}
}

func (m *minimizer) ty(ty semtype.Type) {
	switch t := ty.(type) {
	case semtype.TVar:
		if sub, ok := m.solver.subst[t.Var.Id]; ok {
			m.ty(sub)
		}
	case semtype.TApply:
		m.ty(t.Fn)
		m.ty(t.Arg)
	case semtype.TRecord:
		m.row(t.Row)
	case semtype.TVariant:
		m.row(t.Row)
	}
}

func (m *minimizer) row(row semtype.Row) {
	switch r := row.(type) {
	case semtype.RVar:
		if sub, ok := m.solver.rowSubst[r.Var.Id]; ok {
			m.row(sub)
			return
		}
		if _, ok := m.keep[r.Var.Id]; !ok {
			m.solver.rowSubst[r.Var.Id] = semtype.REmpty{}
		}
	case semtype.RExtend:
		m.ty(r.Field)
		m.row(r.Rest)
	}
}
