package resolve

import (
	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/ident"
	"github.com/funvibe/nomlc/internal/tree"
)

// namesOf is the pure traversal checked against gen_scope: every
// identifier a pattern binds, independent of any name minting. An
// identifier that names a known constructor binds nothing and is skipped.
func (r *Resolver) namesOf(p *tree.ParsedPattern) []ident.Ident {
	var out []ident.Ident
	var walk func(p *tree.ParsedPattern)
	walk = func(p *tree.ParsedPattern) {
		switch n := p.Node.(type) {
		case tree.PPIdent:
			if _, isCtor := r.isConstructor(n.Name); !isCtor {
				out = append(out, n.Name)
			}
		case tree.PPAnno:
			walk(n.Pattern)
		case tree.PPGroup:
			walk(n.Pattern)
		case tree.PPApply:
			walk(n.Fn)
			walk(n.Arg)
		case tree.PPOr:
			walk(n.Left)
		case tree.PPAnd:
			walk(n.Left)
			walk(n.Right)
		}
	}
	walk(p)
	return out
}

func identSet(ids []ident.Ident) map[ident.Ident]struct{} {
	m := make(map[ident.Ident]struct{}, len(ids))
	for _, i := range ids {
		m[i] = struct{}{}
	}
	return m
}

// declarePattern walks p, defining every bound identifier in the current
// scope (value namespace) unless it names an already-known constructor,
// in which case it resolves to that Constructor instead. known forces
// identifiers already declared on the other side of an Or pattern to
// reuse the same Name rather than minting a fresh one.
func (r *Resolver) declarePattern(p *tree.ParsedPattern, known map[ident.Ident]ident.Name) *tree.ResolvedPattern {
	switch n := p.Node.(type) {
	case tree.PPInvalid:
		return &tree.ResolvedPattern{Span: p.Span, Node: tree.RPInvalid{Err: n.Err}}

	case tree.PPWildcard:
		return &tree.ResolvedPattern{Span: p.Span, Node: tree.RPWildcard{}}

	case tree.PPUnit:
		return &tree.ResolvedPattern{Span: p.Span, Node: tree.RPUnit{}}

	case tree.PPIdent:
		if ctorName, ok := r.isConstructor(n.Name); ok {
			return &tree.ResolvedPattern{Span: p.Span, Node: tree.RPCtor{Name: ctorName}}
		}
		var name ident.Name
		if known != nil {
			if shared, ok := known[n.Name]; ok {
				r.top().Values[n.Name] = valueBinding{Name: shared, Kind: NameValue}
				name = shared
			} else {
				name = r.defineValue(n.Name, NameValue, p.Span)
			}
		} else {
			name = r.defineValue(n.Name, NameValue, p.Span)
		}
		return &tree.ResolvedPattern{Span: p.Span, Node: tree.RPBind{Name: name}}

	case tree.PPAnno:
		pat := r.declarePattern(n.Pattern, known)
		ty := r.resolveType(n.Type)
		return &tree.ResolvedPattern{Span: p.Span, Node: tree.RPAnno{Pattern: pat, Type: ty}}

	case tree.PPGroup:
		pat := r.declarePattern(n.Pattern, known)
		return &tree.ResolvedPattern{Span: p.Span, Node: tree.RPGroup{Pattern: pat}}

	case tree.PPApply:
		fn := r.declarePattern(n.Fn, known)
		arg := r.declarePattern(n.Arg, known)
		return &tree.ResolvedPattern{Span: p.Span, Node: tree.RPApply{Fn: fn, Arg: arg}}

	case tree.PPOr:
		left := r.declarePattern(n.Left, nil)
		leftNames := identSet(r.namesOf(n.Left))

		bridge := make(map[ident.Ident]ident.Name, len(leftNames))
		for id := range leftNames {
			if v, ok := r.top().Values[id]; ok {
				bridge[id] = v.Name
			}
		}

		right := r.declarePattern(n.Right, bridge)
		rightNames := identSet(r.namesOf(n.Right))

		if !sameIdentSet(leftNames, rightNames) {
			r.Errors.Record(diag.PhaseResolver, diag.CodeOrPatternsDisagree, diag.SeverityError, p.Span)
		}

		return &tree.ResolvedPattern{Span: p.Span, Node: tree.RPOr{Left: left, Right: right}}

	case tree.PPAnd:
		// Both sides bind into the same scope through the ordinary
		// defineValue path (no Or-style bridging), so a name bound on
		// both sides is caught by the usual redefined-value diagnostic,
		// giving disjointness for free.
		left := r.declarePattern(n.Left, known)
		right := r.declarePattern(n.Right, known)
		return &tree.ResolvedPattern{Span: p.Span, Node: tree.RPAnd{Left: left, Right: right}}

	default:
		return &tree.ResolvedPattern{Span: p.Span, Node: tree.RPWildcard{}}
	}
}

func sameIdentSet(a, b map[ident.Ident]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// spine is the function-definition shape of a pattern (glossary: "Spine").
type spine struct {
	IsFunc bool
	Head   *tree.ParsedPattern   // the bound function name (IsFunc) or the whole pattern
	Params []*tree.ParsedPattern // argument patterns, outermost first
	Return *tree.ParsedType      // optional return-type annotation
}

// functionSpine recognizes `f x y : t` as a function spine (head not a
// constructor) versus `Cons x xs` as a destructuring pattern (head is a
// constructor).
func (r *Resolver) functionSpine(p *tree.ParsedPattern) spine {
	// Peel off at most one trailing return-type annotation that sits
	// outside the application chain, e.g. `(f x : t)`.
	var retAnno *tree.ParsedType
	if anno, ok := p.Node.(tree.PPAnno); ok {
		p = anno.Pattern
		retAnno = anno.Type
	}

	var params []*tree.ParsedPattern
	cur := p
	for {
		app, ok := cur.Node.(tree.PPApply)
		if !ok {
			break
		}
		params = append([]*tree.ParsedPattern{app.Arg}, params...)
		cur = app.Fn
	}

	if inner, ok := cur.Node.(tree.PPAnno); ok && retAnno != nil {
		r.Errors.Record(diag.PhaseResolver, diag.CodeMultipleReturnTypeAnnos, diag.SeverityError, p.Span)
		cur = inner.Pattern
	}

	if len(params) == 0 {
		return spine{IsFunc: false, Head: p, Return: retAnno}
	}

	if id, ok := cur.Node.(tree.PPIdent); ok {
		if _, isCtor := r.isConstructor(id.Name); !isCtor {
			return spine{IsFunc: true, Head: cur, Params: params, Return: retAnno}
		}
	}

	// Head is a constructor (or not a bare identifier): the whole
	// application is a destructuring pattern, not a function spine.
	return spine{IsFunc: false, Head: p, Return: retAnno}
}
