package resolve

import (
	"github.com/funvibe/nomlc/internal/checkconfig"
	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/ident"
	"github.com/funvibe/nomlc/internal/topology"
	"github.com/funvibe/nomlc/internal/tree"
)

// Run resolves one source's items end to end: constructor pass, declare
// pass, resolve pass, dependency graph, SCC clustering. The returned
// clusters are in topological order, leaves (no outgoing dependencies
// within this source) first, ready for the checker to infer one cluster
// at a time.
func Run(names *ident.Names, errs *diag.Errors, src ident.SourceId, items []tree.ParsedItem, cfg checkconfig.Config, prelude Prelude) [][]tree.Item {
	r := NewResolver(names, errs, src, cfg, prelude)

	// Pass 1: constructor pass. Every data constructor gets a Name and its
	// recorded Affix before anything else, so isConstructor/functionSpine
	// give the right answer no matter where in the file a use appears
	// relative to its data declaration.
	for i := range items {
		if d, ok := items[i].Node.(tree.PIData); ok {
			id := tree.ItemId(i)
			for _, c := range d.Ctors {
				name := r.defineConstructor(c.Name, c.Span)
				r.affii[name] = c.Affix
				r.valueOwner[name] = id
			}
		}
	}

	// Pass 2: declare pass. Binds every item's own top-level name(s)
	// without resolving bodies, so forward and mutually recursive
	// references between items resolve regardless of declaration order.
	for i := range items {
		r.declareItem(tree.ItemId(i), &items[i])
	}

	// Pass 3: resolve pass.
	resolved := make([]tree.Item, len(items))
	for i := range items {
		resolved[i] = r.resolveItem(tree.ItemId(i), &items[i])
	}

	// Dependency graph + SCC clustering.
	vertices := make([]tree.ItemId, len(resolved))
	graph := make(map[tree.ItemId]map[tree.ItemId]struct{}, len(resolved))
	for i := range resolved {
		id := tree.ItemId(i)
		vertices[i] = id
		graph[id] = r.itemDeps(id, &resolved[i])
	}

	comps := topology.Find(vertices, graph)

	byId := make(map[tree.ItemId]tree.Item, len(resolved))
	for i := range resolved {
		byId[tree.ItemId(i)] = resolved[i]
	}

	clusters := make([][]tree.Item, len(comps))
	for i, comp := range comps {
		cluster := make([]tree.Item, 0, len(comp))
		// Iterate vertices (declaration order) rather than the unordered
		// component set, so cluster member order is reproducible.
		for _, id := range vertices {
			if _, ok := comp[id]; ok {
				cluster = append(cluster, byId[id])
			}
		}
		clusters[i] = cluster
	}
	return clusters
}

// declareItem is the declare pass (pass 2): bind an item's own name(s) in
// the top-level scope, without resolving its body/constructors yet.
func (r *Resolver) declareItem(id tree.ItemId, item *tree.ParsedItem) {
	switch n := item.Node.(type) {
	case tree.PILet:
		sp := r.functionSpine(n.Pattern)
		if sp.IsFunc {
			headIdent := sp.Head.Node.(tree.PPIdent).Name
			name := r.defineValue(headIdent, NameValue, sp.Head.Span)
			r.valueOwner[name] = id
		} else {
			pat := r.declarePattern(n.Pattern, nil)
			r.letPatterns[id] = pat
			for _, name := range boundNames(pat) {
				r.valueOwner[name] = id
			}
		}

	case tree.PIData:
		name := r.defineType(n.Name, item.Span)
		r.typeOwner[name] = id
	}
}

// resolveItem is the resolve pass (pass 3): fully resolve one item's body
// (and, for data items, its constructor signatures), reusing the Names
// pass 2 already bound.
func (r *Resolver) resolveItem(id tree.ItemId, item *tree.ParsedItem) tree.Item {
	switch n := item.Node.(type) {
	case tree.PILet:
		return r.resolveLetItem(id, item.Span, n)
	case tree.PIData:
		return r.resolveDataItem(id, item.Span, n)
	default:
		errId := r.Errors.Record(diag.PhaseResolver, diag.CodeSyntaxError, diag.SeverityError, item.Span, "unknown item")
		return tree.Item{Id: id, Span: item.Span, Node: tree.ItemInvalid{Err: errId}}
	}
}

func (r *Resolver) resolveLetItem(id tree.ItemId, span tree.Span, n tree.PILet) tree.Item {
	sp := r.functionSpine(n.Pattern)

	if sp.IsFunc {
		headIdent := sp.Head.Node.(tree.PPIdent).Name
		headBinding, _ := r.lookupValue(headIdent)

		r.pushScope(&headBinding.Name)
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

		body := wrapLambda(params, innerBody)
		return tree.Item{Id: id, Span: span, Node: tree.ItemLet{Names: []ident.Name{headBinding.Name}, Body: body}}
	}

	pat := r.letPatterns[id]
	body := r.resolveExpr(n.Bound)
	return tree.Item{Id: id, Span: span, Node: tree.ItemLet{Names: boundNames(pat), Body: body}}
}

func (r *Resolver) resolveDataItem(id tree.ItemId, span tree.Span, n tree.PIData) tree.Item {
	if n.KindAnnotated {
		r.Errors.Record(diag.PhaseResolver, diag.CodeKindAnnotationsUnsup, diag.SeverityError, span)
	}
	if n.HasWhere {
		r.Errors.Record(diag.PhaseResolver, diag.CodeKindAnnotationsUnsup, diag.SeverityError, span)
	}

	typeName, _ := r.lookupType(n.Name)

	r.pushScope(&typeName)
	params := make([]ident.Name, len(n.Params))
	for i, p := range n.Params {
		params[i] = r.defineType(p, span)
	}

	ctors := make([]tree.ResolvedCtor, len(n.Ctors))
	for i, c := range n.Ctors {
		ctorName, _ := r.isConstructor(c.Name)
		paramTypes := make([]*tree.ResolvedType, len(c.Params))
		for j, pt := range c.Params {
			paramTypes[j] = r.resolveTypeInData(pt)
		}
		ctors[i] = tree.ResolvedCtor{Name: ctorName, Affix: c.Affix, Params: paramTypes, Span: c.Span}
	}
	r.popScope()

	return tree.Item{Id: id, Span: span, Node: tree.ItemData{Name: typeName, Params: params, Ctors: ctors}}
}
