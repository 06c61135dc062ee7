package resolve

import (
	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/ident"
	"github.com/funvibe/nomlc/internal/tree"
)

// resolveExpr dispatches on every surface expression variant, rewriting
// Var into Var(Name) via scope lookup and recursing into subterms (spec
// §4.3.1 step 3).
func (r *Resolver) resolveExpr(e *tree.ParsedExpr) *tree.ResolvedExpr {
	switch n := e.Node.(type) {
	case tree.PEInvalid:
		return &tree.ResolvedExpr{Span: e.Span, Node: tree.REInvalid{Err: n.Err}}

	case tree.PEVar:
		if v, ok := r.lookupValue(n.Name); ok {
			return &tree.ResolvedExpr{Span: e.Span, Node: tree.REVar{Name: v.Name}}
		}
		id := r.Errors.Record(diag.PhaseResolver, diag.CodeUnknownName, diag.SeverityError, e.Span, r.Names.GetIdent(n.Name))
		return &tree.ResolvedExpr{Span: e.Span, Node: tree.REInvalid{Err: id}}

	case tree.PEHole:
		return &tree.ResolvedExpr{Span: e.Span, Node: tree.REHole{}}

	case tree.PEUnit:
		return &tree.ResolvedExpr{Span: e.Span, Node: tree.REUnit{}}

	case tree.PENumber:
		return &tree.ResolvedExpr{Span: e.Span, Node: tree.RENumber{Value: n.Value}}

	case tree.PEAnno:
		expr := r.resolveExpr(n.Expr)
		typ := r.resolveType(n.Type)
		return &tree.ResolvedExpr{Span: e.Span, Node: tree.REAnno{Expr: expr, Type: typ}}

	case tree.PEGroup:
		return &tree.ResolvedExpr{Span: e.Span, Node: tree.REGroup{Expr: r.resolveExpr(n.Expr)}}

	case tree.PEIf:
		return &tree.ResolvedExpr{Span: e.Span, Node: tree.REIf{
			Cond: r.resolveExpr(n.Cond), Then: r.resolveExpr(n.Then), Else: r.resolveExpr(n.Else),
		}}

	case tree.PEField:
		return &tree.ResolvedExpr{Span: e.Span, Node: tree.REField{
			Expr: r.resolveExpr(n.Expr), Label: n.Label, LabelSpan: n.LabelSpan,
		}}

	case tree.PERecord:
		fields := make([]tree.ResolvedRecordField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = tree.ResolvedRecordField{Label: f.Label, LabelSpan: f.LabelSpan, Value: r.resolveExpr(f.Value)}
		}
		var extend *tree.ResolvedExpr
		if n.Extend != nil {
			extend = r.resolveExpr(n.Extend)
		}
		return &tree.ResolvedExpr{Span: e.Span, Node: tree.RERecord{Fields: fields, Extend: extend}}

	case tree.PERestrict:
		return &tree.ResolvedExpr{Span: e.Span, Node: tree.RERestrict{Expr: r.resolveExpr(n.Expr), Label: n.Label}}

	case tree.PEApply:
		return r.applyRun(n.Terms, e.Span)

	case tree.PELambda:
		arms := make([]tree.ResolvedArm, len(n.Arms))
		for i, a := range n.Arms {
			r.pushScope(nil)
			pat := r.declarePattern(a.Pattern, nil)
			body := r.resolveExpr(a.Body)
			r.popScope()
			arms[i] = tree.ResolvedArm{Pattern: pat, Body: body}
		}
		return &tree.ResolvedExpr{Span: e.Span, Node: tree.RELambda{Arms: arms}}

	case tree.PELet:
		return r.resolveLetExpr(e.Span, n)

	case tree.PEVariant:
		return &tree.ResolvedExpr{Span: e.Span, Node: tree.REVariant{Label: n.Label}}

	case tree.PECase:
		scrutinee := r.resolveExpr(n.Scrutinee)
		arms := make([]tree.ResolvedArm, len(n.Arms))
		for i, a := range n.Arms {
			r.pushScope(nil)
			pat := r.declarePattern(a.Pattern, nil)
			body := r.resolveExpr(a.Body)
			r.popScope()
			arms[i] = tree.ResolvedArm{Pattern: pat, Body: body}
		}
		return &tree.ResolvedExpr{Span: e.Span, Node: tree.RECase{Scrutinee: scrutinee, Arms: arms}}

	default:
		return &tree.ResolvedExpr{Span: e.Span, Node: tree.REUnit{}}
	}
}

func (r *Resolver) resolveLetExpr(span tree.Span, n tree.PELet) *tree.ResolvedExpr {
	sp := r.functionSpine(n.Pattern)

	r.pushScope(nil)

	var resolvedPattern *tree.ResolvedPattern
	var bound *tree.ResolvedExpr
	var genScope []ident.Name
	recursive := sp.IsFunc

	if sp.IsFunc {
		headIdent := sp.Head.Node.(tree.PPIdent).Name
		headName := r.defineValue(headIdent, NameValue, sp.Head.Span)
		resolvedPattern = &tree.ResolvedPattern{Span: sp.Head.Span, Node: tree.RPBind{Name: headName}}
		genScope = []ident.Name{headName}

		r.pushScope(nil)
		params := make([]*tree.ResolvedPattern, len(sp.Params))
		for i, pp := range sp.Params {
			params[i] = r.declarePattern(pp, nil)
		}
		innerBody := r.resolveExpr(n.Bound)
		if sp.Return != nil {
			rt := r.resolveType(sp.Return)
			innerBody = &tree.ResolvedExpr{Span: innerBody.Span, Node: tree.REAnno{Expr: innerBody, Type: rt}}
		}
		r.popScope()
		bound = wrapLambda(params, innerBody)
	} else {
		// Resolve the bound expression before the pattern's own names
		// are declared, so it sees only the outer scope (no local
		// recursion for a non-function spine).
		bound = r.resolveExpr(n.Bound)
		resolvedPattern = r.declarePattern(n.Pattern, nil)
		genScope = boundNames(resolvedPattern)
	}

	body := r.resolveExpr(n.Body)
	r.popScope()

	return &tree.ResolvedExpr{Span: span, Node: tree.RELet{
		Pattern: resolvedPattern, Bound: bound, Body: body, GenScope: genScope, Recursive: recursive,
	}}
}

// wrapLambda curries f x y = body into f = \x -> \y -> body.
func wrapLambda(params []*tree.ResolvedPattern, body *tree.ResolvedExpr) *tree.ResolvedExpr {
	if len(params) == 0 {
		return body
	}
	inner := wrapLambda(params[1:], body)
	return &tree.ResolvedExpr{Span: body.Span, Node: tree.RELambda{
		Arms: []tree.ResolvedArm{{Pattern: params[0], Body: inner}},
	}}
}

// boundNames collects the Names a resolved pattern binds, in traversal
// order, mirroring namesOf but over the already-resolved shape.
func boundNames(p *tree.ResolvedPattern) []ident.Name {
	var out []ident.Name
	var walk func(p *tree.ResolvedPattern)
	walk = func(p *tree.ResolvedPattern) {
		switch n := p.Node.(type) {
		case tree.RPBind:
			out = append(out, n.Name)
		case tree.RPAnno:
			walk(n.Pattern)
		case tree.RPGroup:
			walk(n.Pattern)
		case tree.RPApply:
			walk(n.Fn)
			walk(n.Arg)
		case tree.RPOr:
			walk(n.Left)
		case tree.RPAnd:
			walk(n.Left)
			walk(n.Right)
		}
	}
	walk(p)
	return out
}

// applyRun reassociates a flat juxtaposition run using each resolved
// term's recorded affix: scan left-to-right tracking at most one pending
// infix, fold everything else by left-associative application.
func (r *Resolver) applyRun(terms []*tree.ParsedExpr, runSpan tree.Span) *tree.ResolvedExpr {
	type pendingInfix struct {
		lhs  []*tree.ResolvedExpr
		op   *tree.ResolvedExpr
		name ident.Name
	}

	var infix *pendingInfix
	var exprs []*tree.ResolvedExpr

	for _, term := range terms {
		resolved := r.resolveExpr(term)

		name, isVar := asVarName(resolved)
		affix := tree.AffixNone
		if isVar {
			affix = r.affii[name]
		}

		switch {
		case isVar && affix == tree.AffixPostfix:
			if len(exprs) > 0 {
				prev := exprs[len(exprs)-1]
				exprs = exprs[:len(exprs)-1]
				span := resolved.Span.Union(prev.Span)
				exprs = append(exprs, &tree.ResolvedExpr{Span: span, Node: tree.REApply{Fn: resolved, Arg: prev}})
			} else {
				id := r.Errors.Record(diag.PhaseResolver, diag.CodePostfixFunction, diag.SeverityError, resolved.Span, r.Names.NameText(name))
				exprs = append(exprs, &tree.ResolvedExpr{Span: resolved.Span, Node: tree.REInvalid{Err: id}})
			}

		case isVar && affix == tree.AffixInfix:
			if infix != nil {
				id := r.Errors.RecordWithLabels(diag.PhaseResolver, diag.CodeAmbiguousInfixOperators, diag.SeverityError, resolved.Span,
					[]diag.Label{{Span: infix.op.Span, Note: "first infix operator"}})
				exprs = append(exprs, &tree.ResolvedExpr{Span: resolved.Span, Node: tree.REInvalid{Err: id}})
			} else if len(exprs) == 0 {
				id := r.Errors.Record(diag.PhaseResolver, diag.CodeInfixFunction, diag.SeverityError, resolved.Span, r.Names.NameText(name))
				exprs = append(exprs, &tree.ResolvedExpr{Span: resolved.Span, Node: tree.REInvalid{Err: id}})
			} else {
				infix = &pendingInfix{lhs: exprs, op: resolved, name: name}
				exprs = nil
			}

		default:
			exprs = append(exprs, resolved)
		}
	}

	if infix != nil {
		lhs := r.prefixes(infix.lhs[0], infix.lhs[1:])

		var rhs *tree.ResolvedExpr
		if len(exprs) == 0 {
			id := r.Errors.Record(diag.PhaseResolver, diag.CodeInfixFunction, diag.SeverityError, infix.op.Span, r.Names.NameText(infix.name))
			rhs = &tree.ResolvedExpr{Span: infix.op.Span, Node: tree.REInvalid{Err: id}}
		} else {
			rhs = r.prefixes(exprs[0], exprs[1:])
		}

		fnSpan := lhs.Span.Union(infix.op.Span)
		fn := &tree.ResolvedExpr{Span: fnSpan, Node: tree.REApply{Fn: infix.op, Arg: lhs}}
		span := fn.Span.Union(rhs.Span)
		return &tree.ResolvedExpr{Span: span, Node: tree.REApply{Fn: fn, Arg: rhs}}
	}

	if len(exprs) == 0 {
		return &tree.ResolvedExpr{Span: runSpan, Node: tree.REUnit{}}
	}
	return r.prefixes(exprs[0], exprs[1:])
}

func (r *Resolver) prefixes(fn *tree.ResolvedExpr, args []*tree.ResolvedExpr) *tree.ResolvedExpr {
	for _, arg := range args {
		span := fn.Span.Union(arg.Span)
		fn = &tree.ResolvedExpr{Span: span, Node: tree.REApply{Fn: fn, Arg: arg}}
	}
	return fn
}

func asVarName(e *tree.ResolvedExpr) (ident.Name, bool) {
	if v, ok := e.Node.(tree.REVar); ok {
		return v.Name, true
	}
	return 0, false
}
