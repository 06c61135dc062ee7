package resolve

import (
	"testing"

	"github.com/funvibe/nomlc/internal/checkconfig"
	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/tree"
	"github.com/stretchr/testify/require"
)

func TestDeclarePatternOrRequiresSameNames(t *testing.T) {
	e := newTestEnv(t)
	r := NewResolver(e.names, e.errs, e.src, checkconfig.Default(), Prelude{})

	or := &tree.ParsedPattern{Span: e.sp(), Node: tree.PPOr{
		Left:  e.identPat("x"),
		Right: e.identPat("y"),
	}}
	r.declarePattern(or, nil)
	require.Equal(t, 1, e.errs.NumErrors())
	require.Equal(t, diag.CodeOrPatternsDisagree, e.errs.Drain()[0].Code)
}

func TestDeclarePatternOrSameNamesShareOneName(t *testing.T) {
	e := newTestEnv(t)
	r := NewResolver(e.names, e.errs, e.src, checkconfig.Default(), Prelude{})
	r.defineConstructor(e.names.Intern("Some"), e.sp())
	r.defineConstructor(e.names.Intern("Other"), e.sp())

	or := &tree.ParsedPattern{Span: e.sp(), Node: tree.PPOr{
		Left:  e.applyPat(e.identPat("Some"), e.identPat("x")),
		Right: e.applyPat(e.identPat("Other"), e.identPat("x")),
	}}
	resolved := r.declarePattern(or, nil)
	require.Equal(t, 0, e.errs.NumErrors())

	node := resolved.Node.(tree.RPOr)
	left := node.Left.Node.(tree.RPApply).Arg.Node.(tree.RPBind).Name
	right := node.Right.Node.(tree.RPApply).Arg.Node.(tree.RPBind).Name
	require.Equal(t, left, right, "both branches' `x` must share one Name")
}

func TestDeclarePatternAndDisjointNamesOk(t *testing.T) {
	e := newTestEnv(t)
	r := NewResolver(e.names, e.errs, e.src, checkconfig.Default(), Prelude{})

	and := &tree.ParsedPattern{Span: e.sp(), Node: tree.PPAnd{
		Left:  e.identPat("x"),
		Right: e.identPat("y"),
	}}
	r.declarePattern(and, nil)
	require.Equal(t, 0, e.errs.NumErrors())
	require.Equal(t, 0, e.errs.NumWarnings())
}

// TestDeclarePatternAndOverlappingNamesConflict documents how an And(p,q)
// pattern's disjointness requirement is enforced: both branches bind into
// the same scope via the ordinary defineValue path (no Or-style
// bridging), so a shared name between them surfaces through the same
// redefined-value diagnostic an ordinary duplicate let would — a
// dedicated disjointness check would just be this same logic rebuilt.
func TestDeclarePatternAndOverlappingNamesConflict(t *testing.T) {
	e := newTestEnv(t)
	r := NewResolver(e.names, e.errs, e.src, checkconfig.Default(), Prelude{})

	and := &tree.ParsedPattern{Span: e.sp(), Node: tree.PPAnd{
		Left:  e.identPat("x"),
		Right: e.identPat("x"),
	}}
	r.declarePattern(and, nil)
	require.Equal(t, 1, e.errs.NumWarnings())
	require.Equal(t, diag.CodeRedefinedValue, e.errs.Drain()[0].Code)
}
