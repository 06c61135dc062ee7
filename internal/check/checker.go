package check

import (
	"github.com/funvibe/nomlc/internal/checkconfig"
	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/ident"
	"github.com/funvibe/nomlc/internal/semtype"
	"github.com/funvibe/nomlc/internal/tree"
)

// Checker is the top-level entry point: one Env, one Solver, one Errors
// collection, threaded through cluster-at-a-time inference.
type Checker struct {
	Env    *semtype.Env
	Solver *Solver
	Errors *diag.Errors
	Names  *ident.Names

	holes []holeSite

	// boolName backs If/then/else: its condition unifies against a nominal
	// two-constructor Bool (True, False) rather than desugaring through a
	// bare variant row.
	boolName ident.Name
}

type holeSite struct {
	span diag.Span
	ty   semtype.Type
}

// Builtins is the fixed set of names the resolver and the checker must
// agree on: minted once per Compile (RegisterBuiltins) so a `True`/`False`
// literal in source resolves to the exact Name the checker's Env was
// seeded with, rather than each side inventing its own.
type Builtins struct {
	Bool, True, False ident.Name
}

// RegisterBuiltins mints Bool/True/False under a synthetic <builtin>
// source. The caller threads the result into both resolve.Run (as the
// value-namespace prelude) and NewChecker.
func RegisterBuiltins(names *ident.Names) Builtins {
	src := names.AddSource("<builtin>")
	top := ident.TopLevel(src)
	return Builtins{
		Bool:  names.Name(top, names.Intern("Bool")),
		True:  names.Name(top, names.Intern("True")),
		False: names.Name(top, names.Intern("False")),
	}
}

// NewChecker wires the namer into semtype/check's package-level String()
// hooks (so diagnostics and golden output render source spellings, not
// raw integers) and seeds builtins into Env.
func NewChecker(names *ident.Names, errs *diag.Errors, cfg checkconfig.Config, builtins Builtins) *Checker {
	semtype.SetNamer(names)
	SetLabelNamer(names)

	c := &Checker{
		Env:      semtype.NewEnv(),
		Solver:   NewSolver(cfg),
		Errors:   errs,
		Names:    names,
		boolName: builtins.Bool,
	}
	boolTy := semtype.TNamed{Name: builtins.Bool}
	c.Env.Insert(builtins.True, semtype.Mono(boolTy))
	c.Env.Insert(builtins.False, semtype.Mono(boolTy))
	return c
}

// Holes renders every `_` hole encountered during inference into its
// final, generalized scheme, for a host to surface as inlay hints — safe
// to call once all clusters have finished checking, when every
// substitution that will ever apply has already been recorded.
func (c *Checker) Holes() []tree.HoleInfo {
	out := make([]tree.HoleInfo, len(c.holes))
	for i, h := range c.holes {
		out[i] = tree.HoleInfo{Span: h.span, Scheme: c.Solver.Generalize(nil, c.Solver.Apply(h.ty))}
	}
	return out
}

// CheckItems runs inference cluster by cluster, in the topological order
// resolve.Run produced, and returns every item fully typed, grouped the same
// way.
func (c *Checker) CheckItems(clusters [][]tree.Item) [][]tree.InferredItem {
	out := make([][]tree.InferredItem, len(clusters))
	for i, cluster := range clusters {
		out[i] = c.checkCluster(cluster)
	}
	return out
}

func (c *Checker) checkCluster(cluster []tree.Item) []tree.InferredItem {
	c.Solver.Enter()

	preBound := make(map[tree.ItemId]semtype.Type)
	for _, item := range cluster {
		if n, ok := item.Node.(tree.ItemLet); ok {
			fresh := c.Solver.Fresh()
			preBound[item.Id] = fresh
			for _, name := range n.Names {
				c.Env.Insert(name, semtype.Mono(fresh))
			}
		}
	}

	bodies := make(map[tree.ItemId]*tree.InferredExpr)
	for _, item := range cluster {
		if n, ok := item.Node.(tree.ItemLet); ok {
			body := c.infer(n.Body)
			c.Solver.Unify(c.Errors, item.Span, preBound[item.Id], body.Type)
			bodies[item.Id] = body
		}
	}

	c.Solver.Exit()

	schemes := make(map[tree.ItemId]semtype.Scheme)
	for _, item := range cluster {
		if _, ok := item.Node.(tree.ItemLet); ok {
			final := c.Solver.Apply(preBound[item.Id])
			scheme := c.Solver.Generalize(nil, final)
			schemes[item.Id] = scheme
			for _, name := range item.Node.(tree.ItemLet).Names {
				c.Env.Overwrite(name, scheme)
			}
		}
	}

	results := make([]tree.InferredItem, 0, len(cluster))
	for _, item := range cluster {
		switch item.Node.(type) {
		case tree.ItemData:
			results = append(results, c.checkDataItem(item))
		case tree.ItemLet:
			results = append(results, tree.InferredItem{
				Id: item.Id, Span: item.Span, Node: item.Node,
				Body: bodies[item.Id], Scheme: schemes[item.Id],
			})
		default:
			results = append(results, tree.InferredItem{Id: item.Id, Span: item.Span, Node: item.Node})
		}
	}
	return results
}

func (c *Checker) checkDataItem(item tree.Item) tree.InferredItem {
	n := item.Node.(tree.ItemData)

	params := make(map[ident.Name]semtype.Generic, len(n.Params))
	generics := make([]semtype.Generic, len(n.Params))
	var result semtype.Type = semtype.TNamed{Name: n.Name}
	for i, p := range n.Params {
		g := semtype.TickedGeneric(p, semtype.KindType)
		params[p] = g
		generics[i] = g
		result = semtype.TApply{Fn: result, Arg: semtype.TParam{Generic: g}}
	}

	for _, ctor := range n.Ctors {
		ty := result
		for i := len(ctor.Params) - 1; i >= 0; i-- {
			ty = semtype.Function(c.ctorParamType(ctor.Params[i], params), ty)
		}
		c.Env.Insert(ctor.Name, semtype.Scheme{Params: generics, Ty: ty})
	}

	return tree.InferredItem{Id: item.Id, Span: item.Span, Node: n}
}

// convertType lowers a surface ResolvedType into a semantic Type, routing
// each Universal occurrence through universal. Surface record types have
// no open-tail syntax, so RTRecord always lowers to a row closed with
// Empty.
func (c *Checker) convertType(rt *tree.ResolvedType, universal func(ident.Name) semtype.Type) semtype.Type {
	switch n := rt.Node.(type) {
	case tree.RTInvalid:
		return semtype.TInvalid{Err: n.Err}
	case tree.RTWildcard:
		return c.Solver.Fresh()
	case tree.RTNamed:
		return semtype.TNamed{Name: n.Name}
	case tree.RTUniversal:
		return universal(n.Name)
	case tree.RTFunction:
		return semtype.Function(c.convertType(n.Param, universal), c.convertType(n.Result, universal))
	case tree.RTRecord:
		var row semtype.Row = semtype.REmpty{}
		for i := len(n.Fields) - 1; i >= 0; i-- {
			f := n.Fields[i]
			row = semtype.RExtend{Label: f.Label, Field: c.convertType(f.Type, universal), Rest: row}
		}
		return semtype.TRecord{Row: row}
	case tree.RTApply:
		return semtype.TApply{Fn: c.convertType(n.Fn, universal), Arg: c.convertType(n.Arg, universal)}
	case tree.RTGroup:
		return c.convertType(n.Type, universal)
	default:
		return c.Solver.Fresh()
	}
}

// annoType lowers a type annotation occurring in expression/pattern
// position: each distinct Universal Name gets one fresh unification
// variable, shared across repeated occurrences within this one
// annotation, but not otherwise rigid (this module's annotations
// constrain inference, they do not introduce rank-2 polymorphism).
func (c *Checker) annoType(rt *tree.ResolvedType) semtype.Type {
	cache := make(map[ident.Name]semtype.Type)
	return c.convertType(rt, func(n ident.Name) semtype.Type {
		if t, ok := cache[n]; ok {
			return t
		}
		t := c.Solver.Fresh()
		cache[n] = t
		return t
	})
}

// ctorParamType lowers a data constructor's declared parameter type,
// where every Universal must be one of the data item's own explicit
// params and lowers to that Generic's TParam directly (a true scheme
// parameter, not a fresh unification variable) — resolveTypeInData has
// already rejected any other Universal upstream.
func (c *Checker) ctorParamType(rt *tree.ResolvedType, params map[ident.Name]semtype.Generic) semtype.Type {
	return c.convertType(rt, func(n ident.Name) semtype.Type {
		if g, ok := params[n]; ok {
			return semtype.TParam{Generic: g}
		}
		return semtype.TInvalid{}
	})
}
