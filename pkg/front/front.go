// Package front is the module's public entry point: it wires the
// resolver and the checker together into the one Compile call a host
// embeds, one function with an explicit stage order returning a
// populated program value.
package front

import (
	"log"

	"github.com/funvibe/nomlc/internal/check"
	"github.com/funvibe/nomlc/internal/checkconfig"
	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/ident"
	"github.com/funvibe/nomlc/internal/resolve"
	"github.com/funvibe/nomlc/internal/tree"
)

// Source is one named, parsed input file. Parsing itself sits upstream
// of this module's scope; a host owns the lexer/parser and hands this package
// their output.
type Source struct {
	Display string
	Items   []tree.ParsedItem
}

// Compile resolves and type-checks every source under the given Names
// interner, into one shared Errors collection. names is supplied by the
// caller rather than created here:
// the upstream lexer/parser that produced each Source's ParsedItem tree
// must have interned every identifier into this same instance, since an
// Ident only means anything relative to the Names that minted it. Each
// source's items are resolved (and clustered) by a resolver of their own,
// so a name defined in one source is not in scope in another; all
// clusters across all sources then feed one checker, in source order.
func Compile(names *ident.Names, cfg checkconfig.Config, sources []Source) *tree.Program {
	errs := diag.NewErrors()

	builtins := check.RegisterBuiltins(names)
	prelude := resolve.Prelude{
		Values: map[ident.Ident]ident.Name{
			names.Intern("True"):  builtins.True,
			names.Intern("False"): builtins.False,
		},
		Types: map[ident.Ident]ident.Name{
			names.Intern("Bool"): builtins.Bool,
		},
	}

	var clusters [][]tree.Item
	for _, src := range sources {
		srcId := names.AddSource(src.Display)
		clusters = append(clusters, resolve.Run(names, errs, srcId, src.Items, cfg, prelude)...)
	}

	checker := check.NewChecker(names, errs, cfg, builtins)
	if cfg.TraceUnification {
		checker.Solver.Trace = log.Printf
	}

	itemClusters := checker.CheckItems(clusters)

	defs := make(map[ident.Name]diag.Span)
	for _, cluster := range itemClusters {
		for _, it := range cluster {
			switch n := it.Node.(type) {
			case tree.ItemLet:
				for _, name := range n.Names {
					defs[name] = it.Span
				}
			case tree.ItemData:
				defs[n.Name] = it.Span
				for _, ctor := range n.Ctors {
					defs[ctor.Name] = ctor.Span
				}
			}
		}
	}

	return &tree.Program{
		Clusters: itemClusters,
		Defs:     defs,
		Holes:    checker.Holes(),
		Errors:   errs,
	}
}
