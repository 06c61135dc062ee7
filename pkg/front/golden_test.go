package front_test

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/funvibe/nomlc/internal/checkconfig"
	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/ident"
	"github.com/funvibe/nomlc/internal/semtype"
	"github.com/funvibe/nomlc/internal/tree"
	"github.com/funvibe/nomlc/pkg/front"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
)

// These fixtures are concrete end-to-end scenarios encoded against
// front.Compile (the public resolver+checker entry point). No parser
// lives in this module's scope, so each archive's "-- source --" section
// documents the scenario in surface syntax for a human reader, while the
// Go side builds the equivalent ParsedItem tree directly with the same
// builders internal/resolve's own tests use. The "-- type --"/"-- error --"
// section is the oracle the rendered result is checked against.

// env bundles one scenario's interner/errors/source plus the handful of
// AST builder helpers every fixture is made of, mirroring
// internal/resolve/resolve_test.go's testEnv.
type env struct {
	names *ident.Names
	src   ident.SourceId
}

func newEnv(t *testing.T) *env {
	t.Helper()
	names := ident.NewNames()
	src := names.AddSource(t.Name())
	return &env{names: names, src: src}
}

func (e *env) sp() tree.Span { return tree.Span{Source: e.src} }

func (e *env) varExpr(name string) *tree.ParsedExpr {
	return &tree.ParsedExpr{Span: e.sp(), Node: tree.PEVar{Name: e.names.Intern(name)}}
}

func (e *env) number(v int64) *tree.ParsedExpr {
	return &tree.ParsedExpr{Span: e.sp(), Node: tree.PENumber{Value: v}}
}

func (e *env) apply(terms ...*tree.ParsedExpr) *tree.ParsedExpr {
	return &tree.ParsedExpr{Span: e.sp(), Node: tree.PEApply{Terms: terms}}
}

func (e *env) field(expr *tree.ParsedExpr, label string) *tree.ParsedExpr {
	return &tree.ParsedExpr{Span: e.sp(), Node: tree.PEField{Expr: expr, Label: e.names.MakeLabel(label)}}
}

func (e *env) restrict(expr *tree.ParsedExpr, label string) *tree.ParsedExpr {
	return &tree.ParsedExpr{Span: e.sp(), Node: tree.PERestrict{Expr: expr, Label: e.names.MakeLabel(label)}}
}

type recordField struct {
	label string
	value *tree.ParsedExpr
}

func (e *env) recordExpr(extend *tree.ParsedExpr, fields ...recordField) *tree.ParsedExpr {
	fs := make([]tree.ParsedRecordField, len(fields))
	for i, f := range fields {
		fs[i] = tree.ParsedRecordField{Label: e.names.MakeLabel(f.label), Value: f.value}
	}
	return &tree.ParsedExpr{Span: e.sp(), Node: tree.PERecord{Fields: fs, Extend: extend}}
}

func (e *env) arm(pat *tree.ParsedPattern, body *tree.ParsedExpr) tree.ParsedArm {
	return tree.ParsedArm{Pattern: pat, Body: body}
}

func (e *env) lambda(arms ...tree.ParsedArm) *tree.ParsedExpr {
	return &tree.ParsedExpr{Span: e.sp(), Node: tree.PELambda{Arms: arms}}
}

func (e *env) caseExpr(scrutinee *tree.ParsedExpr, arms ...tree.ParsedArm) *tree.ParsedExpr {
	return &tree.ParsedExpr{Span: e.sp(), Node: tree.PECase{Scrutinee: scrutinee, Arms: arms}}
}

func (e *env) identPat(name string) *tree.ParsedPattern {
	return &tree.ParsedPattern{Span: e.sp(), Node: tree.PPIdent{Name: e.names.Intern(name)}}
}

func (e *env) applyPat(fn, arg *tree.ParsedPattern) *tree.ParsedPattern {
	return &tree.ParsedPattern{Span: e.sp(), Node: tree.PPApply{Fn: fn, Arg: arg}}
}

func (e *env) letItem(pat *tree.ParsedPattern, bound *tree.ParsedExpr) tree.ParsedItem {
	return tree.ParsedItem{Span: e.sp(), Node: tree.PILet{Pattern: pat, Bound: bound}}
}

// compile runs the item list through the public entry point, under this
// env's own interner, against a fixed default config with TestMode
// enabled for stable variable rendering.
func (e *env) compile(t *testing.T, items ...tree.ParsedItem) *tree.Program {
	t.Helper()
	checkconfig.TestMode = true
	t.Cleanup(func() { checkconfig.TestMode = false })
	return front.Compile(e.names, checkconfig.Default(), []front.Source{{Display: t.Name(), Items: items}})
}

// schemeOf finds the generalized scheme front.Compile produced for the
// top-level let bound to name.
func schemeOf(t *testing.T, e *env, prog *tree.Program, name string) semtype.Scheme {
	t.Helper()
	for _, cluster := range prog.Clusters {
		for _, item := range cluster {
			let, ok := item.Node.(tree.ItemLet)
			if !ok {
				continue
			}
			for _, n := range let.Names {
				if e.names.NameText(n) == name {
					return item.Scheme
				}
			}
		}
	}
	t.Fatalf("no top-level let named %q in program output", name)
	return semtype.Scheme{}
}

var varToken = regexp.MustCompile(`[tρ][0-9]+`)

// canonicalize replaces each distinct rendered unification-variable token
// with a single letter in first-appearance (left-to-right) order, so a
// comparison is robust to the solver's exact internal variable ids while
// still pinning down the type's structure: exact TVar/RVar ids cannot be
// hand-predicted, the shape can.
func canonicalize(s string) string {
	next := byte('a')
	seen := make(map[string]byte)
	return varToken.ReplaceAllStringFunc(s, func(tok string) string {
		c, ok := seen[tok]
		if !ok {
			c = next
			seen[tok] = c
			next++
		}
		return string(c)
	})
}

func loadFixture(t *testing.T, name string) *txtar.Archive {
	t.Helper()
	path := filepath.Join("..", "..", "internal", "check", "testdata", name)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return txtar.Parse(data)
}

func fixtureFile(a *txtar.Archive, name string) (string, bool) {
	for _, f := range a.Files {
		if f.Name == name {
			return strings.TrimSpace(string(f.Data)), true
		}
	}
	return "", false
}

func TestGoldenIdentity(t *testing.T) {
	a := loadFixture(t, "identity.txtar")
	wantTy, _ := fixtureFile(a, "type")

	e := newEnv(t)
	item := e.letItem(e.applyPat(e.identPat("id"), e.identPat("x")), e.varExpr("x"))
	prog := e.compile(t, item)

	require.Equal(t, 0, prog.Errors.NumErrors())
	scheme := schemeOf(t, e, prog, "id")
	require.Equal(t, wantTy, canonicalize(scheme.String()))
}

func TestGoldenConst(t *testing.T) {
	a := loadFixture(t, "const.txtar")
	wantTy, _ := fixtureFile(a, "type")

	e := newEnv(t)
	item := e.letItem(
		e.applyPat(e.applyPat(e.identPat("const"), e.identPat("x")), e.identPat("y")),
		e.varExpr("x"),
	)
	prog := e.compile(t, item)

	require.Equal(t, 0, prog.Errors.NumErrors())
	scheme := schemeOf(t, e, prog, "const")
	require.Equal(t, wantTy, canonicalize(scheme.String()))
}

func TestGoldenFieldAccess(t *testing.T) {
	a := loadFixture(t, "field_access.txtar")
	wantTy, _ := fixtureFile(a, "type")

	e := newEnv(t)
	item := e.letItem(
		e.applyPat(e.identPat("f"), e.identPat("r")),
		e.field(e.varExpr("r"), "x"),
	)
	prog := e.compile(t, item)

	require.Equal(t, 0, prog.Errors.NumErrors())
	scheme := schemeOf(t, e, prog, "f")
	require.Equal(t, wantTy, canonicalize(scheme.String()))
}

func TestGoldenRecordUpdate(t *testing.T) {
	a := loadFixture(t, "record_update.txtar")
	wantTy, _ := fixtureFile(a, "type")

	e := newEnv(t)
	item := e.letItem(
		e.applyPat(e.identPat("g"), e.identPat("r")),
		e.recordExpr(e.restrict(e.varExpr("r"), "x"), recordField{"x", e.number(5)}),
	)
	prog := e.compile(t, item)

	require.Equal(t, 0, prog.Errors.NumErrors())
	scheme := schemeOf(t, e, prog, "g")
	require.Equal(t, wantTy, canonicalize(scheme.String()))
}

func TestGoldenIncompatibleBranches(t *testing.T) {
	a := loadFixture(t, "incompatible_branches.txtar")
	wantErr, _ := fixtureFile(a, "error")

	e := newEnv(t)
	item := e.letItem(
		e.applyPat(e.identPat("h"), e.identPat("r")),
		e.caseExpr(e.number(0),
			e.arm(e.identPat("a"), e.recordExpr(e.varExpr("r"), recordField{"x", e.number(2)})),
			e.arm(e.identPat("b"), e.recordExpr(e.varExpr("r"), recordField{"y", e.number(2)})),
		),
	)
	prog := e.compile(t, item)

	require.Equal(t, 1, prog.Errors.NumErrors(), "exactly one diagnostic")
	errs := prog.Errors.Drain()
	require.Equal(t, diag.CodeIncompatibleRecordTys, errs[0].Code)
	require.Equal(t, wantErr, errs[0].Title)
}

func TestGoldenRecordWithMethod(t *testing.T) {
	a := loadFixture(t, "record_with_method.txtar")
	wantTy, _ := fixtureFile(a, "type")

	e := newEnv(t)
	item := e.letItem(
		e.identPat("rec1"),
		e.recordExpr(nil,
			recordField{"x", e.number(1)},
			recordField{"y", e.lambda(e.arm(e.identPat("f"), e.apply(e.varExpr("f"), e.number(0))))},
		),
	)
	prog := e.compile(t, item)

	require.Equal(t, 0, prog.Errors.NumErrors())
	scheme := schemeOf(t, e, prog, "rec1")
	require.Equal(t, wantTy, canonicalize(scheme.String()))
}
