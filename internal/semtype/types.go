// Package semtype defines the semantic type IR the checker infers into:
// Type, Row, TypeVar, Level, Scheme and Generic, plus their String()
// rendering: a single Type interface implemented by small structs, each
// with its own String(), generalized to row-polymorphic records/variants
// and to level-based unification variables instead of plain named type
// variables.
package semtype

import (
	"fmt"
	"strings"

	"github.com/funvibe/nomlc/internal/checkconfig"
	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/ident"
)

// VarKind distinguishes type-kinded from row-kinded unification variables.
// The two kinds share one counter (see Solver.nextId) but must never be
// mapped into each other's substitution.
type VarKind uint8

const (
	KindType VarKind = iota
	KindRow
)

// TypeVar is (counter, kind): a unification variable identity. Two
// TypeVars with the same Id but different Kind never occur — Id is unique
// across both kinds.
type TypeVar struct {
	Id   uint64
	Kind VarKind
}

// Level is a shared cell tracking how deep in the generalization-scope
// stack a variable was created. It is shared by reference (not copied by
// value) so that unifying two variables fuses their levels: SetMin lowers the
// pointed-to integer, and every Var/Row sharing this *Level observes the
// lowered value immediately.
type Level struct {
	n *int
}

// NewLevel creates a fresh cell pinned at n.
func NewLevel(n int) *Level { v := n; return &Level{n: &v} }

// Int reads the current value.
func (l *Level) Int() int { return *l.n }

// SetMin lowers the cell to min(current, n); this is the level-propagation
// step invoked whenever a variable at this level is unified with something
// from an enclosing (lower-numbered) scope.
func (l *Level) SetMin(n int) {
	if n < *l.n {
		*l.n = n
	}
}

// CanGeneralize reports whether a variable at this level was created
// inside a scope that has since been exited relative to cur — i.e. whether
// it is eligible for generalization at the current (lower) level.
func (l *Level) CanGeneralize(cur int) bool { return l.Int() > cur }

// Generic is one parameter of a Scheme: either a variable the checker
// generalized itself (Implicit) or an explicit 'a universal declared in
// source (Ticked), keyed by the Name the resolver minted for it. Ticked
// discriminates the two cases; Implicit/TickedName are valid only when
// Ticked is false/true respectively. Kind is carried on both forms since
// instantiation needs it to know whether a Param substitutes a fresh type
// var or a fresh row var, independent of which form minted it.
type Generic struct {
	Ticked     bool
	Kind       VarKind
	Implicit   TypeVar
	TickedName ident.Name
}

// ImplicitGeneric builds an implicit generalization parameter.
func ImplicitGeneric(v TypeVar) Generic { return Generic{Kind: v.Kind, Implicit: v} }

// TickedGeneric builds an explicit, source-named universal of the given
// kind (almost always KindType; row-kinded ticked generics are legal but
// rare in source).
func TickedGeneric(name ident.Name, kind VarKind) Generic {
	return Generic{Ticked: true, Kind: kind, TickedName: name}
}

func (g Generic) IsTicked() bool { return g.Ticked }

// GenericKey is a comparable key for a Generic, used to index instantiation
// substitutions: ticked generics key by Name, implicit ones by TypeVar.
type GenericKey struct {
	Ticked bool
	Name   ident.Name
	Var    TypeVar
}

func (g Generic) Key() GenericKey {
	if g.Ticked {
		return GenericKey{Ticked: true, Name: g.TickedName}
	}
	return GenericKey{Var: g.Implicit}
}

// Scheme is a type quantified over a list of Generics: params ++ ty.
type Scheme struct {
	Params []Generic
	Ty     Type
}

// Mono wraps a bare type as a scheme with no parameters, the shape used to
// pre-bind an item to a fresh variable before its body is inferred.
func Mono(ty Type) Scheme { return Scheme{Ty: ty} }

func (s Scheme) IsMono() bool { return len(s.Params) == 0 }

// Type is the semantic type IR. Implementations are TInvalid, TVar,
// TParam, TNamed, TUnit, TInteger, TArrow, TRecord, TVariant, TApply.
type Type interface {
	isType()
	String() string
}

type TInvalid struct{ Err diag.ErrorId }
type TVar struct {
	Var   TypeVar
	Level *Level
}
type TParam struct{ Generic Generic }
type TNamed struct{ Name ident.Name }
type TUnit struct{}
type TInteger struct{}
type TArrow struct{}
type TRecord struct{ Row Row }
type TVariant struct{ Row Row }
type TApply struct{ Fn, Arg Type }

func (TInvalid) isType() {}
func (TVar) isType()     {}
func (TParam) isType()   {}
func (TNamed) isType()   {}
func (TUnit) isType()    {}
func (TInteger) isType() {}
func (TArrow) isType()   {}
func (TRecord) isType()  {}
func (TVariant) isType() {}
func (TApply) isType()   {}

// Row is the semantic row IR: Invalid, Empty, Var, Param, Extend.
type Row interface {
	isRow()
	String() string
}

type RInvalid struct{ Err diag.ErrorId }
type REmpty struct{}
type RVar struct {
	Var   TypeVar
	Level *Level
}
type RParam struct{ Generic Generic }
type RExtend struct {
	Label ident.Label
	Field Type
	Rest  Row
}

func (RInvalid) isRow() {}
func (REmpty) isRow()   {}
func (RVar) isRow()     {}
func (RParam) isRow()   {}
func (RExtend) isRow()  {}

// Function builds Apply(Apply(Arrow, arg), ret) — the encoding of a
// function type in an IR that has no primitive function constructor.
func Function(arg, ret Type) Type {
	return TApply{Fn: TApply{Fn: TArrow{}, Arg: arg}, Arg: ret}
}

// AsFunction decomposes a function type built by Function, if ty has that
// shape.
func AsFunction(ty Type) (arg, ret Type, ok bool) {
	outer, ok := ty.(TApply)
	if !ok {
		return nil, nil, false
	}
	inner, ok := outer.Fn.(TApply)
	if !ok {
		return nil, nil, false
	}
	if _, ok := inner.Fn.(TArrow); !ok {
		return nil, nil, false
	}
	return inner.Arg, outer.Arg, true
}

// namer is set once per process so String() can render Name -> text; see
// SetNamer.
var namer *ident.Names

// SetNamer wires the interner String() consults to render Named/Ticked
// generics by their source spelling instead of a raw integer.
func SetNamer(n *ident.Names) { namer = n }

func (t TInvalid) String() string { return "<error>" }
func (t TVar) String() string {
	if checkconfig.TestMode {
		return varName(t.Var)
	}
	kind := "t"
	if t.Var.Kind == KindRow {
		kind = "ρ"
	}
	return fmt.Sprintf("%s%d@%d", kind, t.Var.Id, t.Level.Int())
}
func (t TParam) String() string { return genericString(t.Generic) }
func (t TNamed) String() string {
	if namer != nil {
		return namer.NameText(t.Name)
	}
	return fmt.Sprintf("Named(%d)", t.Name)
}
func (TUnit) String() string    { return "()" }
func (TInteger) String() string { return "Integer" }
func (TArrow) String() string   { return "(->)" }
func (t TRecord) String() string {
	return "{ " + rowFields(t.Row) + " }"
}
func (t TVariant) String() string {
	return "< " + rowFields(t.Row) + " >"
}
func (t TApply) String() string {
	if arg, ret, ok := AsFunction(t); ok {
		return fmt.Sprintf("%s -> %s", parenify(arg), ret.String())
	}
	return fmt.Sprintf("%s %s", t.Fn.String(), parenify(t.Arg))
}

func parenify(t Type) string {
	switch t.(type) {
	case TApply:
		return "(" + t.String() + ")"
	default:
		return t.String()
	}
}

func rowFields(r Row) string {
	var fields []string
	for {
		switch v := r.(type) {
		case RExtend:
			label := "?"
			if namer != nil {
				label = namer.GetIdent(v.Label)
			}
			fields = append(fields, fmt.Sprintf("%s: %s", label, v.Field.String()))
			r = v.Rest
		case REmpty:
			return strings.Join(fields, ", ")
		case RVar:
			tail := v.String()
			if len(fields) == 0 {
				return tail
			}
			return strings.Join(fields, ", ") + " | " + tail
		case RParam:
			tail := v.String()
			if len(fields) == 0 {
				return tail
			}
			return strings.Join(fields, ", ") + " | " + tail
		case RInvalid:
			return strings.Join(fields, ", ") + " | <error>"
		default:
			return strings.Join(fields, ", ")
		}
	}
}

func (r RInvalid) String() string { return "<error>" }
func (r RVar) String() string {
	if checkconfig.TestMode {
		return varName(r.Var)
	}
	return fmt.Sprintf("ρ%d@%d", r.Var.Id, r.Level.Int())
}
func (REmpty) String() string   { return "" }
func (r RParam) String() string { return genericString(r.Generic) }
func (r RExtend) String() string {
	return "{ " + rowFields(r) + " }"
}

func genericString(g Generic) string {
	if g.IsTicked() {
		if namer != nil {
			return "'" + namer.NameText(g.TickedName)
		}
		return fmt.Sprintf("'%d", g.TickedName)
	}
	return varName(g.Implicit)
}

// varName renders an implicit generic / test-mode variable as t<N> (ρ<N>
// for a row variable), N being the variable's counter id.
func varName(v TypeVar) string {
	prefix := "t"
	if v.Kind == KindRow {
		prefix = "ρ"
	}
	return fmt.Sprintf("%s%d", prefix, v.Id)
}

// String renders a Scheme as "forall a b. ty", hiding the quantifier
// entirely when there are no parameters.
func (s Scheme) String() string {
	if len(s.Params) == 0 {
		return s.Ty.String()
	}
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = genericString(p)
	}
	return fmt.Sprintf("forall %s. %s", strings.Join(names, " "), s.Ty.String())
}
