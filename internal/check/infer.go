package check

import (
	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/ident"
	"github.com/funvibe/nomlc/internal/semtype"
	"github.com/funvibe/nomlc/internal/tree"
)

// infer is the expression-inference judgment: every ResolvedExprNode
// variant dispatches to its rule, producing an InferredExpr that carries
// the node's own Type plus every inferred subterm, not only the ones
// that feed later unification.
func (c *Checker) infer(e *tree.ResolvedExpr) *tree.InferredExpr {
	switch n := e.Node.(type) {
	case tree.REInvalid:
		return c.leaf(e, n, semtype.TInvalid{Err: n.Err})

	case tree.REVar:
		scheme, ok := c.Env.Lookup(n.Name)
		if !ok {
			id := c.Errors.Record(diag.PhaseChecker, diag.CodeUnknownName, diag.SeverityError, e.Span, c.Names.NameText(n.Name))
			return c.leaf(e, n, semtype.TInvalid{Err: id})
		}
		return c.leaf(e, n, c.Solver.Instantiate(scheme))

	case tree.REHole:
		ty := c.Solver.Fresh()
		c.holes = append(c.holes, holeSite{span: e.Span, ty: ty})
		return c.leaf(e, n, ty)

	case tree.REUnit:
		return c.leaf(e, n, semtype.TUnit{})

	case tree.RENumber:
		return c.leaf(e, n, semtype.TInteger{})

	case tree.REAnno:
		inner := c.infer(n.Expr)
		annoTy := c.annoType(n.Type)
		c.Solver.Unify(c.Errors, e.Span, inner.Type, annoTy)
		return &tree.InferredExpr{Node: n, Span: e.Span, Type: c.Solver.Apply(annoTy),
			Children: tree.InferredChildren{Expr1: inner}}

	case tree.REGroup:
		inner := c.infer(n.Expr)
		return &tree.InferredExpr{Node: n, Span: e.Span, Type: inner.Type, Children: tree.InferredChildren{Expr1: inner}}

	case tree.REIf:
		cond := c.infer(n.Cond)
		c.Solver.Unify(c.Errors, cond.Span, cond.Type, semtype.TNamed{Name: c.boolName})
		thenE := c.infer(n.Then)
		elseE := c.infer(n.Else)
		c.Solver.Unify(c.Errors, e.Span, thenE.Type, elseE.Type)
		return &tree.InferredExpr{Node: n, Span: e.Span, Type: c.Solver.Apply(thenE.Type),
			Children: tree.InferredChildren{Expr1: cond, Expr2: thenE, Expr3: elseE}}

	case tree.REField:
		inner := c.infer(n.Expr)
		t := c.Solver.Fresh()
		r := c.Solver.FreshRow()
		c.Solver.Unify(c.Errors, e.Span, inner.Type, semtype.TRecord{Row: semtype.RExtend{Label: n.Label, Field: t, Rest: r}})
		return &tree.InferredExpr{Node: n, Span: e.Span, Type: c.Solver.Apply(t), Children: tree.InferredChildren{Expr1: inner}}

	case tree.RERecord:
		var extendInf *tree.InferredExpr
		var row semtype.Row = semtype.REmpty{}
		if n.Extend != nil {
			extendInf = c.infer(n.Extend)
			row = c.Solver.FreshRow()
			c.Solver.Unify(c.Errors, e.Span, extendInf.Type, semtype.TRecord{Row: row})
		}
		fields := make([]tree.InferredRecordField, len(n.Fields))
		for i := len(n.Fields) - 1; i >= 0; i-- {
			f := n.Fields[i]
			val := c.infer(f.Value)
			fields[i] = tree.InferredRecordField{Label: f.Label, Value: val}
			row = semtype.RExtend{Label: f.Label, Field: val.Type, Rest: row}
		}
		return &tree.InferredExpr{Node: n, Span: e.Span, Type: semtype.TRecord{Row: row},
			Children: tree.InferredChildren{Fields: fields, Extend: extendInf}}

	case tree.RERestrict:
		inner := c.infer(n.Expr)
		t := c.Solver.Fresh()
		r := c.Solver.FreshRow()
		c.Solver.Unify(c.Errors, e.Span, inner.Type, semtype.TRecord{Row: semtype.RExtend{Label: n.Label, Field: t, Rest: r}})
		return &tree.InferredExpr{Node: n, Span: e.Span, Type: semtype.TRecord{Row: c.Solver.ApplyRow(r)},
			Children: tree.InferredChildren{Expr1: inner}}

	case tree.REVariant:
		t := c.Solver.Fresh()
		r := c.Solver.FreshRow()
		ty := semtype.Function(t, semtype.TVariant{Row: semtype.RExtend{Label: n.Label, Field: t, Rest: r}})
		return c.leaf(e, n, ty)

	case tree.REApply:
		fn := c.infer(n.Fn)
		arg := c.infer(n.Arg)
		u := c.Solver.Fresh()
		c.Solver.Unify(c.Errors, e.Span, fn.Type, semtype.Function(arg.Type, u))
		return &tree.InferredExpr{Node: n, Span: e.Span, Type: c.Solver.Apply(u),
			Children: tree.InferredChildren{Expr1: fn, Expr2: arg}}

	case tree.RELambda:
		// Every arm's pattern is inferred and unified into in, and in is
		// minimized, before any arm's body is inferred: a row variable a
		// body's field access opens (e.g. `r => r.x`) must stay open for
		// generalization, not get swept up by minimizing the parameter
		// pattern's own row variables. Multi-arm lambdas need every pattern
		// merged into in first; the minimize-before-bodies ordering then
		// holds for all arms at once.
		in := c.Solver.Fresh()
		out := c.Solver.Fresh()
		keep := map[uint64]struct{}{}
		pats := make([]*tree.InferredPattern, len(n.Arms))
		for i, a := range n.Arms {
			pat := c.inferPattern(a.Pattern, keep)
			c.Solver.Unify(c.Errors, pat.Span, in, pat.Type)
			pats[i] = pat
		}
		c.Solver.Minimize(keep, in)

		arms := make([]tree.InferredArm, len(n.Arms))
		for i, a := range n.Arms {
			body := c.infer(a.Body)
			c.Solver.Unify(c.Errors, body.Span, out, body.Type)
			arms[i] = tree.InferredArm{Pattern: pats[i], Body: body}
		}
		ty := semtype.Function(c.Solver.Apply(in), c.Solver.Apply(out))
		return &tree.InferredExpr{Node: n, Span: e.Span, Type: ty, Children: tree.InferredChildren{Arms: arms}}

	case tree.RELet:
		return c.inferLet(e, n)

	case tree.RECase:
		scrut := c.infer(n.Scrutinee)
		patTy := c.Solver.Fresh()
		resultTy := c.Solver.Fresh()
		keep := map[uint64]struct{}{}
		arms := make([]tree.InferredArm, len(n.Arms))
		for i, a := range n.Arms {
			pat := c.inferPattern(a.Pattern, keep)
			body := c.infer(a.Body)
			c.Solver.Unify(c.Errors, pat.Span, patTy, pat.Type)
			c.Solver.Unify(c.Errors, body.Span, resultTy, body.Type)
			arms[i] = tree.InferredArm{Pattern: pat, Body: body}
		}
		c.Solver.Minimize(keep, patTy)
		c.Solver.Unify(c.Errors, e.Span, scrut.Type, patTy)
		return &tree.InferredExpr{Node: n, Span: e.Span, Type: c.Solver.Apply(resultTy),
			Children: tree.InferredChildren{Expr1: scrut, Arms: arms}}

	default:
		return c.leaf(e, n, semtype.TUnit{})
	}
}

// inferLet infers a let binding: the pattern is inferred (and
// its bound names land in Env) before the bound expression, so a
// recursive binding's own name is already visible to it — the resolver
// already arranged for Bound to reference Pattern's names only when the
// binding is a function spine (RELet.Recursive), so this ordering is safe
// for both shapes.
func (c *Checker) inferLet(e *tree.ResolvedExpr, n tree.RELet) *tree.InferredExpr {
	c.Solver.Enter()

	keep := map[uint64]struct{}{}
	pat := c.inferPattern(n.Pattern, keep)
	c.Solver.Minimize(keep, pat.Type)

	bound := c.infer(n.Bound)
	c.Solver.Unify(c.Errors, e.Span, pat.Type, bound.Type)

	c.Solver.Exit()

	final := c.Solver.Apply(pat.Type)
	scheme := c.Solver.Generalize(nil, final)
	for _, name := range n.GenScope {
		c.Env.Overwrite(name, scheme)
	}

	body := c.infer(n.Body)
	return &tree.InferredExpr{Node: n, Span: e.Span, Type: body.Type,
		Children: tree.InferredChildren{Pattern: pat, Expr1: bound, Expr2: body}}
}

// inferPattern mirrors expression inference but produces a pattern
// decorated with its type. keep accumulates the row-variable ids opened
// while instantiating a polymorphic constructor's row-kinded generics,
// so the caller's Minimize call leaves them open instead of closing
// them.
func (c *Checker) inferPattern(p *tree.ResolvedPattern, keep map[uint64]struct{}) *tree.InferredPattern {
	switch n := p.Node.(type) {
	case tree.RPInvalid:
		return c.leafPat(p, n, semtype.TInvalid{Err: n.Err})

	case tree.RPWildcard:
		return c.leafPat(p, n, c.Solver.Fresh())

	case tree.RPUnit:
		return c.leafPat(p, n, semtype.TUnit{})

	case tree.RPBind:
		ty := c.Solver.Fresh()
		c.Env.Insert(n.Name, semtype.Mono(ty))
		return c.leafPat(p, n, ty)

	case tree.RPCtor:
		scheme, ok := c.Env.Lookup(n.Name)
		if !ok {
			id := c.Errors.Record(diag.PhaseChecker, diag.CodeUnknownName, diag.SeverityError, p.Span, c.Names.NameText(n.Name))
			return c.leafPat(p, n, semtype.TInvalid{Err: id})
		}
		ty, opened := c.Solver.InstantiateTracked(scheme)
		for id := range opened {
			keep[id] = struct{}{}
		}
		return c.leafPat(p, n, ty)

	case tree.RPAnno:
		inner := c.inferPattern(n.Pattern, keep)
		annoTy := c.annoType(n.Type)
		c.Solver.Unify(c.Errors, p.Span, inner.Type, annoTy)
		return &tree.InferredPattern{Node: n, Span: p.Span, Type: c.Solver.Apply(annoTy),
			Sub: tree.InferredPatternChildren{Pattern1: inner}}

	case tree.RPGroup:
		inner := c.inferPattern(n.Pattern, keep)
		return &tree.InferredPattern{Node: n, Span: p.Span, Type: inner.Type, Sub: tree.InferredPatternChildren{Pattern1: inner}}

	case tree.RPApply:
		fn := c.inferPattern(n.Fn, keep)
		arg := c.inferPattern(n.Arg, keep)
		result := c.Solver.Fresh()
		c.Solver.Unify(c.Errors, p.Span, fn.Type, semtype.Function(arg.Type, result))
		return &tree.InferredPattern{Node: n, Span: p.Span, Type: c.Solver.Apply(result),
			Sub: tree.InferredPatternChildren{Pattern1: fn, Pattern2: arg}}

	case tree.RPOr:
		left := c.inferPattern(n.Left, keep)
		right := c.inferPattern(n.Right, keep)
		c.Solver.Unify(c.Errors, p.Span, left.Type, right.Type)

		leftVars, rightVars := map[ident.Name]semtype.Type{}, map[ident.Name]semtype.Type{}
		boundPatternVars(left, leftVars)
		boundPatternVars(right, rightVars)
		for name, lt := range leftVars {
			if rt, ok := rightVars[name]; ok {
				c.Solver.Unify(c.Errors, p.Span, lt, rt)
			}
		}

		return &tree.InferredPattern{Node: n, Span: p.Span, Type: c.Solver.Apply(left.Type),
			Sub: tree.InferredPatternChildren{Pattern1: left, Pattern2: right}}

	case tree.RPAnd:
		left := c.inferPattern(n.Left, keep)
		right := c.inferPattern(n.Right, keep)
		c.Solver.Unify(c.Errors, p.Span, left.Type, right.Type)
		return &tree.InferredPattern{Node: n, Span: p.Span, Type: c.Solver.Apply(left.Type),
			Sub: tree.InferredPatternChildren{Pattern1: left, Pattern2: right}}

	default:
		return c.leafPat(p, n, semtype.TUnit{})
	}
}

// boundPatternVars collects the type each RPBind leaf under ip was
// inferred at, keyed by its Name; used to unify an or-pattern's two
// branches' same-named bindings (they are independently-minted fresh
// variables until unified here).
func boundPatternVars(ip *tree.InferredPattern, out map[ident.Name]semtype.Type) {
	switch n := ip.Node.(type) {
	case tree.RPBind:
		out[n.Name] = ip.Type
	case tree.RPAnno:
		boundPatternVars(ip.Sub.Pattern1, out)
	case tree.RPGroup:
		boundPatternVars(ip.Sub.Pattern1, out)
	case tree.RPApply:
		boundPatternVars(ip.Sub.Pattern1, out)
		boundPatternVars(ip.Sub.Pattern2, out)
	case tree.RPOr:
		boundPatternVars(ip.Sub.Pattern1, out)
	case tree.RPAnd:
		boundPatternVars(ip.Sub.Pattern1, out)
		boundPatternVars(ip.Sub.Pattern2, out)
	}
}

func (c *Checker) leaf(e *tree.ResolvedExpr, node tree.ResolvedExprNode, ty semtype.Type) *tree.InferredExpr {
	return &tree.InferredExpr{Node: node, Span: e.Span, Type: ty}
}

func (c *Checker) leafPat(p *tree.ResolvedPattern, node tree.ResolvedPatternNode, ty semtype.Type) *tree.InferredPattern {
	return &tree.InferredPattern{Node: node, Span: p.Span, Type: ty}
}
