package tree

import (
	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/ident"
)

// The resolved family is the resolve pass's output:
// every Var/Named/Constructor carries a Name, application runs have been
// reassociated into binary Apply(fn, arg) nodes, and every Let records the
// gen_scope names the checker will generalize.

type ItemId uint32

type ResolvedExpr struct {
	Node ResolvedExprNode
	Span Span
}

type ResolvedExprNode interface{ isResolvedExpr() }

type (
	REInvalid struct{ Err diag.ErrorId }
	REVar     struct{ Name ident.Name }
	REHole    struct{}
	REUnit    struct{}
	RENumber  struct{ Value int64 }
	REAnno    struct {
		Expr *ResolvedExpr
		Type *ResolvedType
	}
	REGroup struct{ Expr *ResolvedExpr }
	REIf    struct{ Cond, Then, Else *ResolvedExpr }
	REField struct {
		Expr      *ResolvedExpr
		Label     ident.Label
		LabelSpan Span
	}
	RERecord struct {
		Fields []ResolvedRecordField
		Extend *ResolvedExpr
	}
	RERestrict struct {
		Expr  *ResolvedExpr
		Label ident.Label
	}
	REApply  struct{ Fn, Arg *ResolvedExpr }
	RELambda struct{ Arms []ResolvedArm }
	RELet    struct {
		Pattern  *ResolvedPattern
		Bound    *ResolvedExpr
		Body     *ResolvedExpr
		GenScope []ident.Name // names generalized at this let
		// Recursive is true when the pattern was recognized as a
		// function spine: Pattern's own names are visible inside
		// Bound, not just Body.
		Recursive bool
	}
	REVariant struct{ Label ident.Label }
	RECase    struct {
		Scrutinee *ResolvedExpr
		Arms      []ResolvedArm
	}
)

func (REInvalid) isResolvedExpr()  {}
func (REVar) isResolvedExpr()      {}
func (REHole) isResolvedExpr()     {}
func (REUnit) isResolvedExpr()     {}
func (RENumber) isResolvedExpr()   {}
func (REAnno) isResolvedExpr()     {}
func (REGroup) isResolvedExpr()    {}
func (REIf) isResolvedExpr()       {}
func (REField) isResolvedExpr()    {}
func (RERecord) isResolvedExpr()   {}
func (RERestrict) isResolvedExpr() {}
func (REApply) isResolvedExpr()    {}
func (RELambda) isResolvedExpr()   {}
func (RELet) isResolvedExpr()      {}
func (REVariant) isResolvedExpr()  {}
func (RECase) isResolvedExpr()     {}

type ResolvedArm struct {
	Pattern *ResolvedPattern
	Body    *ResolvedExpr
}

type ResolvedRecordField struct {
	Label     ident.Label
	LabelSpan Span
	Value     *ResolvedExpr
}

type ResolvedPattern struct {
	Node ResolvedPatternNode
	Span Span
}

type ResolvedPatternNode interface{ isResolvedPattern() }

type (
	RPInvalid  struct{ Err diag.ErrorId }
	RPWildcard struct{}
	RPUnit     struct{}
	RPBind     struct{ Name ident.Name }
	RPCtor     struct{ Name ident.Name }
	RPAnno     struct {
		Pattern *ResolvedPattern
		Type    *ResolvedType
	}
	RPGroup struct{ Pattern *ResolvedPattern }
	RPApply struct{ Fn, Arg *ResolvedPattern }
	RPOr    struct{ Left, Right *ResolvedPattern }
	RPAnd   struct{ Left, Right *ResolvedPattern }
)

func (RPInvalid) isResolvedPattern()  {}
func (RPWildcard) isResolvedPattern() {}
func (RPUnit) isResolvedPattern()     {}
func (RPBind) isResolvedPattern()     {}
func (RPCtor) isResolvedPattern()     {}
func (RPAnno) isResolvedPattern()     {}
func (RPGroup) isResolvedPattern()    {}
func (RPApply) isResolvedPattern()    {}
func (RPOr) isResolvedPattern()       {}
func (RPAnd) isResolvedPattern()      {}

type ResolvedType struct {
	Node ResolvedTypeNode
	Span Span
}

type ResolvedTypeNode interface{ isResolvedType() }

type (
	RTInvalid   struct{ Err diag.ErrorId }
	RTWildcard  struct{}
	RTNamed     struct{ Name ident.Name }
	RTUniversal struct{ Name ident.Name }
	RTFunction  struct{ Param, Result *ResolvedType }
	RTRecord    struct{ Fields []ResolvedTypeField }
	RTApply     struct{ Fn, Arg *ResolvedType }
	RTGroup     struct{ Type *ResolvedType }
)

func (RTInvalid) isResolvedType()   {}
func (RTWildcard) isResolvedType()  {}
func (RTNamed) isResolvedType()     {}
func (RTUniversal) isResolvedType() {}
func (RTFunction) isResolvedType()  {}
func (RTRecord) isResolvedType()    {}
func (RTApply) isResolvedType()     {}
func (RTGroup) isResolvedType()     {}

type ResolvedTypeField struct {
	Label ident.Label
	Type  *ResolvedType
}

// ResolvedCtor is one data-constructor alternative after the constructor
// pass has minted it a Name and recorded its Affix.
type ResolvedCtor struct {
	Name   ident.Name
	Affix  Affix
	Params []*ResolvedType
	Span   Span
}

// Item is one top-level declaration after resolution, still ungrouped
// into SCCs; resolve.Run returns items partitioned into clusters (spec
// §4.3.1's "ordered list of item clusters").
type Item struct {
	Id   ItemId
	Span Span
	Node ItemNode
}

type ItemNode interface{ isItemNode() }

type (
	ItemInvalid struct{ Err diag.ErrorId }
	ItemLet     struct {
		// Names is every identifier the item's pattern binds (its
		// gen_scope); for a simple `let f x = ...` this is [f].
		Names []ident.Name
		Body  *ResolvedExpr
	}
	ItemData struct {
		Name   ident.Name
		Params []ident.Name
		Ctors  []ResolvedCtor
	}
)

func (ItemInvalid) isItemNode() {}
func (ItemLet) isItemNode()     {}
func (ItemData) isItemNode()    {}
