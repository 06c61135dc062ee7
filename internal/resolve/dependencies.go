package resolve

import (
	"github.com/funvibe/nomlc/internal/ident"
	"github.com/funvibe/nomlc/internal/tree"
)

// itemDeps collects every other item this one directly mentions by name,
// via value references in its body or type references in its constructor
// signatures, feeding the dependency graph that drives SCC clustering.
func (r *Resolver) itemDeps(self tree.ItemId, it *tree.Item) map[tree.ItemId]struct{} {
	deps := map[tree.ItemId]struct{}{}
	note := func(owners map[ident.Name]tree.ItemId, name ident.Name) {
		if owner, ok := owners[name]; ok && owner != self {
			deps[owner] = struct{}{}
		}
	}

	switch n := it.Node.(type) {
	case tree.ItemLet:
		if n.Body != nil {
			r.walkExprDeps(n.Body, note)
		}
	case tree.ItemData:
		for _, ctor := range n.Ctors {
			for _, p := range ctor.Params {
				r.walkTypeDeps(p, note)
			}
		}
	}
	return deps
}

type noteFunc = func(owners map[ident.Name]tree.ItemId, name ident.Name)

func (r *Resolver) walkExprDeps(e *tree.ResolvedExpr, note noteFunc) {
	if e == nil {
		return
	}
	switch n := e.Node.(type) {
	case tree.REVar:
		note(r.valueOwner, n.Name)
	case tree.REAnno:
		r.walkExprDeps(n.Expr, note)
		r.walkTypeDeps(n.Type, note)
	case tree.REGroup:
		r.walkExprDeps(n.Expr, note)
	case tree.REIf:
		r.walkExprDeps(n.Cond, note)
		r.walkExprDeps(n.Then, note)
		r.walkExprDeps(n.Else, note)
	case tree.REField:
		r.walkExprDeps(n.Expr, note)
	case tree.RERecord:
		for _, f := range n.Fields {
			r.walkExprDeps(f.Value, note)
		}
		r.walkExprDeps(n.Extend, note)
	case tree.RERestrict:
		r.walkExprDeps(n.Expr, note)
	case tree.REApply:
		r.walkExprDeps(n.Fn, note)
		r.walkExprDeps(n.Arg, note)
	case tree.RELambda:
		for _, a := range n.Arms {
			r.walkPatternDeps(a.Pattern, note)
			r.walkExprDeps(a.Body, note)
		}
	case tree.RELet:
		r.walkPatternDeps(n.Pattern, note)
		r.walkExprDeps(n.Bound, note)
		r.walkExprDeps(n.Body, note)
	case tree.RECase:
		r.walkExprDeps(n.Scrutinee, note)
		for _, a := range n.Arms {
			r.walkPatternDeps(a.Pattern, note)
			r.walkExprDeps(a.Body, note)
		}
	}
}

func (r *Resolver) walkPatternDeps(p *tree.ResolvedPattern, note noteFunc) {
	if p == nil {
		return
	}
	switch n := p.Node.(type) {
	case tree.RPCtor:
		note(r.valueOwner, n.Name)
	case tree.RPAnno:
		r.walkPatternDeps(n.Pattern, note)
		r.walkTypeDeps(n.Type, note)
	case tree.RPGroup:
		r.walkPatternDeps(n.Pattern, note)
	case tree.RPApply:
		r.walkPatternDeps(n.Fn, note)
		r.walkPatternDeps(n.Arg, note)
	case tree.RPOr:
		r.walkPatternDeps(n.Left, note)
		r.walkPatternDeps(n.Right, note)
	case tree.RPAnd:
		r.walkPatternDeps(n.Left, note)
		r.walkPatternDeps(n.Right, note)
	}
}

func (r *Resolver) walkTypeDeps(t *tree.ResolvedType, note noteFunc) {
	if t == nil {
		return
	}
	switch n := t.Node.(type) {
	case tree.RTNamed:
		note(r.typeOwner, n.Name)
	case tree.RTFunction:
		r.walkTypeDeps(n.Param, note)
		r.walkTypeDeps(n.Result, note)
	case tree.RTRecord:
		for _, f := range n.Fields {
			r.walkTypeDeps(f.Type, note)
		}
	case tree.RTApply:
		r.walkTypeDeps(n.Fn, note)
		r.walkTypeDeps(n.Arg, note)
	case tree.RTGroup:
		r.walkTypeDeps(n.Type, note)
	}
}
