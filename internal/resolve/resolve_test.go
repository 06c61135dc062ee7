package resolve

import (
	"testing"

	"github.com/funvibe/nomlc/internal/checkconfig"
	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/ident"
	"github.com/funvibe/nomlc/internal/tree"
	"github.com/stretchr/testify/require"
)

// testEnv bundles the shared interner/errors/source every fixture needs,
// and the handful of builder helpers resolve_test's cases are made of.
type testEnv struct {
	names *ident.Names
	errs  *diag.Errors
	src   ident.SourceId
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	names := ident.NewNames()
	errs := diag.NewErrors()
	src := names.AddSource(t.Name())
	return &testEnv{names: names, errs: errs, src: src}
}

func (e *testEnv) sp() tree.Span { return tree.Span{Source: e.src} }

func (e *testEnv) varExpr(name string) *tree.ParsedExpr {
	return &tree.ParsedExpr{Span: e.sp(), Node: tree.PEVar{Name: e.names.Intern(name)}}
}

func (e *testEnv) number(v int64) *tree.ParsedExpr {
	return &tree.ParsedExpr{Span: e.sp(), Node: tree.PENumber{Value: v}}
}

func (e *testEnv) apply(terms ...*tree.ParsedExpr) *tree.ParsedExpr {
	return &tree.ParsedExpr{Span: e.sp(), Node: tree.PEApply{Terms: terms}}
}

func (e *testEnv) identPat(name string) *tree.ParsedPattern {
	return &tree.ParsedPattern{Span: e.sp(), Node: tree.PPIdent{Name: e.names.Intern(name)}}
}

func (e *testEnv) applyPat(fn, arg *tree.ParsedPattern) *tree.ParsedPattern {
	return &tree.ParsedPattern{Span: e.sp(), Node: tree.PPApply{Fn: fn, Arg: arg}}
}

func (e *testEnv) letItem(pat *tree.ParsedPattern, bound *tree.ParsedExpr) tree.ParsedItem {
	return tree.ParsedItem{Span: e.sp(), Node: tree.PILet{Pattern: pat, Bound: bound}}
}

func TestRunSimpleIdentityIsOneCluster(t *testing.T) {
	e := newTestEnv(t)
	// let id x = x
	item := e.letItem(e.applyPat(e.identPat("id"), e.identPat("x")), e.varExpr("x"))

	clusters := Run(e.names, e.errs, e.src, []tree.ParsedItem{item}, checkconfig.Default(), Prelude{})
	require.Equal(t, 0, e.errs.NumErrors())
	require.Len(t, clusters, 1)
	require.Len(t, clusters[0], 1)

	let, ok := clusters[0][0].Node.(tree.ItemLet)
	require.True(t, ok)
	require.Len(t, let.Names, 1)
	require.Equal(t, "id", e.names.NameText(let.Names[0]))
}

func TestRunMutualRecursionIsOneCluster(t *testing.T) {
	e := newTestEnv(t)
	// let isEven n = isOdd n
	// let isOdd n = isEven n
	isEven := e.letItem(
		e.applyPat(e.identPat("isEven"), e.identPat("n")),
		e.apply(e.varExpr("isOdd"), e.varExpr("n")),
	)
	isOdd := e.letItem(
		e.applyPat(e.identPat("isOdd"), e.identPat("n")),
		e.apply(e.varExpr("isEven"), e.varExpr("n")),
	)

	clusters := Run(e.names, e.errs, e.src, []tree.ParsedItem{isEven, isOdd}, checkconfig.Default(), Prelude{})
	require.Equal(t, 0, e.errs.NumErrors())
	require.Len(t, clusters, 1, "mutually recursive items must land in the same SCC cluster")
	require.Len(t, clusters[0], 2)
}

func TestRunIndependentItemsAreSeparateClusters(t *testing.T) {
	e := newTestEnv(t)
	a := e.letItem(e.identPat("a"), e.number(1))
	b := e.letItem(e.identPat("b"), e.number(2))

	clusters := Run(e.names, e.errs, e.src, []tree.ParsedItem{a, b}, checkconfig.Default(), Prelude{})
	require.Equal(t, 0, e.errs.NumErrors())
	require.Len(t, clusters, 2)
}

func TestRunUnknownNameIsDiagnosed(t *testing.T) {
	e := newTestEnv(t)
	item := e.letItem(e.identPat("a"), e.varExpr("undefined"))

	Run(e.names, e.errs, e.src, []tree.ParsedItem{item}, checkconfig.Default(), Prelude{})
	require.Equal(t, 1, e.errs.NumErrors())
	require.Equal(t, diag.CodeUnknownName, e.errs.Drain()[0].Code)
}

func TestRunRedefinitionWarnsByDefaultAndErrorsWhenStrict(t *testing.T) {
	e := newTestEnv(t)
	items := []tree.ParsedItem{
		e.letItem(e.identPat("x"), e.number(1)),
		e.letItem(e.identPat("x"), e.number(2)),
	}

	Run(e.names, e.errs, e.src, items, checkconfig.Default(), Prelude{})
	require.Equal(t, 0, e.errs.NumErrors())
	require.Equal(t, 1, e.errs.NumWarnings())
	e.errs.Drain()

	e2 := newTestEnv(t)
	items2 := []tree.ParsedItem{
		e2.letItem(e2.identPat("x"), e2.number(1)),
		e2.letItem(e2.identPat("x"), e2.number(2)),
	}
	strict := checkconfig.Default()
	strict.StrictRedefine = true
	Run(e2.names, e2.errs, e2.src, items2, strict, Prelude{})
	require.Equal(t, 1, e2.errs.NumErrors())
}

func TestRunAmbiguousInfixOperators(t *testing.T) {
	e := newTestEnv(t)
	plus := e.names.Intern("+")

	// A data declaration registers `+` as an infix constructor so the
	// constructor pass's Affix table has an entry for it.
	data := tree.ParsedItem{Span: e.sp(), Node: tree.PIData{
		Name: e.names.Intern("Pair"),
		Ctors: []tree.ParsedCtor{
			{Name: plus, Affix: tree.AffixInfix, Span: e.sp()},
		},
	}}

	// a + 1 + 2 : two infix `+` occurrences in one run is ambiguous.
	run := e.apply(e.varExpr("a"), &tree.ParsedExpr{Span: e.sp(), Node: tree.PEVar{Name: plus}}, e.number(1),
		&tree.ParsedExpr{Span: e.sp(), Node: tree.PEVar{Name: plus}}, e.number(2))
	letA := e.letItem(e.applyPat(e.identPat("f"), e.identPat("a")), run)

	Run(e.names, e.errs, e.src, []tree.ParsedItem{data, letA}, checkconfig.Default(), Prelude{})
	errs := e.errs.Drain()
	require.NotEmpty(t, errs)

	found := false
	for _, d := range errs {
		if d.Code == diag.CodeAmbiguousInfixOperators {
			found = true
		}
	}
	require.True(t, found)
}
