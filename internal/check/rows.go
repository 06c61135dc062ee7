package check

import (
	"fmt"

	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/ident"
	"github.com/funvibe/nomlc/internal/semtype"
)

// rowTail is the result of walking a row's Extend spine down to its
// terminal variable, if it has one open.
type rowTail struct {
	Var semtype.TypeVar
	Ok  bool
}

// tailOf walks row, following substitutions and peeling Extend cells,
// until it reaches a non-Extend terminal. If that terminal is an
// unresolved row variable, it is returned as the row's open tail.
func (s *Solver) tailOf(row semtype.Row) rowTail {
	row = s.ApplyRow(row)
	for {
		switch r := row.(type) {
		case semtype.RExtend:
			row = s.ApplyRow(r.Rest)
		case semtype.RVar:
			return rowTail{Var: r.Var, Ok: true}
		default:
			return rowTail{}
		}
	}
}

// UnifyRow unifies two rows under scoped-label discipline:
// records compare fields label-by-label via rewriting rather than by
// fixed shape, so {x: Int | r} unifies against any row that contains an
// x field, wherever it sits.
func (s *Solver) UnifyRow(errs *diag.Errors, span diag.Span, lhs, rhs semtype.Row) {
	s.rowRewriteSteps = 0
	s.unifyRow(errs, span, lhs, rhs)
}

func (s *Solver) unifyRow(errs *diag.Errors, span diag.Span, lhs, rhs semtype.Row) {
	lhs = s.ApplyRow(lhs)
	rhs = s.ApplyRow(rhs)
	s.trace("unify row %s ~ %s", lhs, rhs)

	if l, ok := lhs.(semtype.RInvalid); ok {
		s.propagateInvalidRow(rhs, l.Err)
		return
	}
	if r, ok := rhs.(semtype.RInvalid); ok {
		s.propagateInvalidRow(lhs, r.Err)
		return
	}

	// RVar is dispatched before RExtend: a bare row variable unifies
	// against anything (including an RExtend) via a single whole-row
	// occurs check in unifyRowVar/setRow. Routing Extend-vs-Var through
	// unifyExtend's label-by-label rewriteRow instead would let a row
	// variable that is its own row's tail get rewritten one layer at a
	// time forever, since each rewrite step introduces a fresh variable
	// and so never re-triggers the occurs check or the rewrite-step bound.
	if l, ok := lhs.(semtype.RVar); ok {
		s.unifyRowVar(errs, span, l, rhs)
		return
	}
	if r, ok := rhs.(semtype.RVar); ok {
		s.unifyRowVar(errs, span, r, lhs)
		return
	}

	if l, ok := lhs.(semtype.RExtend); ok {
		s.unifyExtend(errs, span, l, rhs)
		return
	}
	if r, ok := rhs.(semtype.RExtend); ok {
		s.unifyExtend(errs, span, r, lhs)
		return
	}

	if _, ok := lhs.(semtype.REmpty); ok {
		if _, ok2 := rhs.(semtype.REmpty); ok2 {
			return
		}
	}
	if l, ok := lhs.(semtype.RParam); ok {
		if r, ok2 := rhs.(semtype.RParam); ok2 && l.Generic.Key() == r.Generic.Key() {
			return
		}
	}

	errs.Record(diag.PhaseChecker, diag.CodeIncompatibleRecordTys, diag.SeverityError, span)
}

func (s *Solver) unifyRowVar(errs *diag.Errors, span diag.Span, v semtype.RVar, other semtype.Row) {
	if sub, ok := s.rowSubst[v.Var.Id]; ok {
		s.UnifyRow(errs, span, sub, other)
		return
	}
	if w, ok := other.(semtype.RVar); ok && w.Var.Id == v.Var.Id {
		return
	}
	s.setRow(errs, span, v.Var, v.Level, other)
}

// unifyExtend unifies { label: field | rest } (lhs's head field) against
// other by rewriting other so that label appears at its head.
func (s *Solver) unifyExtend(errs *diag.Errors, span diag.Span, lhs semtype.RExtend, other semtype.Row) {
	tail := s.tailOf(lhs.Rest)
	t2, rest2, ok := s.rewriteRow(errs, span, other, lhs.Label, tail)
	if !ok {
		return
	}
	s.Unify(errs, span, lhs.Field, t2)
	s.UnifyRow(errs, span, lhs.Rest, rest2)
}

// rewriteRow rewrites row so that label appears at its head, returning
// (field, rest) with label removed, or ok=false if row cannot legally
// contain label. otherTail is the open tail
// variable of the row label is being pulled out *for*, used to detect the
// "distinct prefix, shared tail" error that makes scoped labels sound.
func (s *Solver) rewriteRow(errs *diag.Errors, span diag.Span, row semtype.Row, label ident.Label, otherTail rowTail) (semtype.Type, semtype.Row, bool) {
	s.rowRewriteSteps++
	if s.rowRewriteSteps > s.maxRowRewriteSteps {
		id := errs.Record(diag.PhaseChecker, diag.CodeIncompatibleRecordTys, diag.SeverityError, span)
		return semtype.TInvalid{Err: id}, semtype.RInvalid{Err: id}, false
	}

	row = s.ApplyRow(row)

	switch r := row.(type) {
	case semtype.REmpty:
		id := errs.Record(diag.PhaseChecker, diag.CodeNoSuchLabel, diag.SeverityError, span, labelText(label))
		return semtype.TInvalid{Err: id}, semtype.RInvalid{Err: id}, false

	case semtype.RInvalid:
		return semtype.TInvalid{Err: r.Err}, r, false

	case semtype.RParam:
		id := errs.Record(diag.PhaseChecker, diag.CodeNoSuchLabel, diag.SeverityError, span, labelText(label))
		return semtype.TInvalid{Err: id}, semtype.RInvalid{Err: id}, false

	case semtype.RVar:
		// unifyRow dispatches RVar before RExtend, so a bare row
		// variable never reaches rewriteRow as its top-level row: it is
		// always unified via unifyRowVar/setRow instead, which performs
		// one whole-row occurs check rather than this function's
		// per-label deferral.
		panic(fmt.Sprintf("rewriteRow: unexpected bare row variable %v", r))

	case semtype.RExtend:
		if r.Label == label {
			return r.Field, r.Rest, true
		}

		restApplied := s.ApplyRow(r.Rest)
		if tailVar, isVar := restApplied.(semtype.RVar); isVar {
			if otherTail.Ok && tailVar.Var.Id == otherTail.Var.Id {
				id := errs.Record(diag.PhaseChecker, diag.CodeIncompatibleRecordTys, diag.SeverityError, span)
				s.setRow(errs, span, tailVar.Var, tailVar.Level, semtype.RInvalid{Err: id})
				return semtype.TInvalid{Err: id}, semtype.RInvalid{Err: id}, false
			}

			freshT := s.Fresh()
			freshRest := s.FreshRow()
			s.setRow(errs, span, tailVar.Var, tailVar.Level, semtype.RExtend{Label: label, Field: freshT, Rest: freshRest})
			return freshT, semtype.RExtend{Label: r.Label, Field: r.Field, Rest: freshRest}, true
		}

		t, rest, ok := s.rewriteRow(errs, span, restApplied, label, otherTail)
		if !ok {
			return t, rest, false
		}
		return t, semtype.RExtend{Label: r.Label, Field: r.Field, Rest: rest}, true

	default:
		id := errs.Record(diag.PhaseChecker, diag.CodeNoSuchLabel, diag.SeverityError, span, labelText(label))
		return semtype.TInvalid{Err: id}, semtype.RInvalid{Err: id}, false
	}
}

var labelNamer *ident.Names

// SetLabelNamer wires the interner used to render labels in diagnostics.
func SetLabelNamer(n *ident.Names) { labelNamer = n }

func labelText(l ident.Label) string {
	if labelNamer != nil {
		return labelNamer.GetIdent(l)
	}
	return "?"
}
