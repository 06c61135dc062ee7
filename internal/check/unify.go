package check

import (
	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/semtype"
)

// Unify structurally unifies lhs and rhs at span, recording at most one
// diagnostic per mismatch and making Invalid a transparent identity so a
// single upstream error never cascades into a chain of new diagnostics.
func (s *Solver) Unify(errs *diag.Errors, span diag.Span, lhs, rhs semtype.Type) {
	lhs = s.Apply(lhs)
	rhs = s.Apply(rhs)
	s.trace("unify %s ~ %s", lhs, rhs)

	if l, ok := lhs.(semtype.TInvalid); ok {
		s.propagateInvalid(rhs, l.Err)
		return
	}
	if r, ok := rhs.(semtype.TInvalid); ok {
		s.propagateInvalid(lhs, r.Err)
		return
	}

	if l, ok := lhs.(semtype.TVar); ok {
		s.unifyVar(errs, span, l, rhs)
		return
	}
	if r, ok := rhs.(semtype.TVar); ok {
		s.unifyVar(errs, span, r, lhs)
		return
	}

	switch l := lhs.(type) {
	case semtype.TUnit:
		if _, ok := rhs.(semtype.TUnit); ok {
			return
		}
	case semtype.TInteger:
		if _, ok := rhs.(semtype.TInteger); ok {
			return
		}
	case semtype.TArrow:
		if _, ok := rhs.(semtype.TArrow); ok {
			return
		}
	case semtype.TNamed:
		if r, ok := rhs.(semtype.TNamed); ok && r.Name == l.Name {
			return
		}
	case semtype.TParam:
		if r, ok := rhs.(semtype.TParam); ok && r.Generic.Key() == l.Generic.Key() {
			return
		}
	case semtype.TApply:
		if r, ok := rhs.(semtype.TApply); ok {
			s.Unify(errs, span, l.Fn, r.Fn)
			s.Unify(errs, span, l.Arg, r.Arg)
			return
		}
	case semtype.TRecord:
		if r, ok := rhs.(semtype.TRecord); ok {
			s.UnifyRow(errs, span, l.Row, r.Row)
			return
		}
	case semtype.TVariant:
		if r, ok := rhs.(semtype.TVariant); ok {
			s.UnifyRow(errs, span, l.Row, r.Row)
			return
		}
	}

	errs.Record(diag.PhaseChecker, diag.CodeInequalTypes, diag.SeverityError, span, lhs.String(), rhs.String())
}

func (s *Solver) unifyVar(errs *diag.Errors, span diag.Span, v semtype.TVar, other semtype.Type) {
	if sub, ok := s.subst[v.Var.Id]; ok {
		s.Unify(errs, span, sub, other)
		return
	}
	if w, ok := other.(semtype.TVar); ok && w.Var.Id == v.Var.Id {
		return
	}
	s.set(errs, span, v.Var, v.Level, other)
}

// propagateInvalid pushes an error into every yet-unresolved variable
// reachable from ty so later unifications against those variables also
// see Invalid and don't re-raise the same diagnostic.
func (s *Solver) propagateInvalid(ty semtype.Type, err diag.ErrorId) {
	switch t := ty.(type) {
	case semtype.TVar:
		if sub, ok := s.subst[t.Var.Id]; ok {
			s.propagateInvalid(sub, err)
			return
		}
		s.subst[t.Var.Id] = semtype.TInvalid{Err: err}
	case semtype.TApply:
		s.propagateInvalid(t.Fn, err)
		s.propagateInvalid(t.Arg, err)
	case semtype.TRecord:
		s.propagateInvalidRow(t.Row, err)
	case semtype.TVariant:
		s.propagateInvalidRow(t.Row, err)
	}
}

func (s *Solver) propagateInvalidRow(row semtype.Row, err diag.ErrorId) {
	switch r := row.(type) {
	case semtype.RVar:
		if sub, ok := s.rowSubst[r.Var.Id]; ok {
			s.propagateInvalidRow(sub, err)
			return
		}
		s.rowSubst[r.Var.Id] = semtype.RInvalid{Err: err}
	case semtype.RExtend:
		s.propagateInvalid(r.Field, err)
		s.propagateInvalidRow(r.Rest, err)
	}
}
