package tree

import (
	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/ident"
)

// The parsed family is the input the upstream parser hands to the
// resolver: identifiers are unresolved Idents, and applications are
// still flat juxtaposition runs — fixity has not been applied yet, since
// fixity is itself data the constructor pass discovers.

type ParsedExpr struct {
	Node ParsedExprNode
	Span Span
}

type ParsedExprNode interface{ isParsedExpr() }

type (
	PEInvalid struct{ Err diag.ErrorId }
	PEVar     struct{ Name ident.Ident }
	PEHole    struct{}
	PEUnit    struct{}
	PENumber  struct{ Value int64 }
	PEAnno    struct {
		Expr *ParsedExpr
		Type *ParsedType
	}
	PEGroup struct{ Expr *ParsedExpr }
	PEIf    struct{ Cond, Then, Else *ParsedExpr }
	PEField struct {
		Expr      *ParsedExpr
		Label     ident.Label
		LabelSpan Span
	}
	PERecord struct {
		Fields []ParsedRecordField
		Extend *ParsedExpr // non-nil for { ...e, ... }
	}
	PERestrict struct {
		Expr  *ParsedExpr
		Label ident.Label
	}
	// PEApply is the flat juxtaposition run the resolver reassociates:
	// f x op y, not yet split into binary applications.
	PEApply struct{ Terms []*ParsedExpr }
	PELambda struct{ Arms []ParsedArm }
	PELet    struct {
		Pattern *ParsedPattern
		Bound   *ParsedExpr
		Body    *ParsedExpr
	}
	PEVariant struct{ Label ident.Label }
	PECase    struct {
		Scrutinee *ParsedExpr
		Arms      []ParsedArm
	}
)

func (PEInvalid) isParsedExpr()  {}
func (PEVar) isParsedExpr()      {}
func (PEHole) isParsedExpr()     {}
func (PEUnit) isParsedExpr()     {}
func (PENumber) isParsedExpr()   {}
func (PEAnno) isParsedExpr()     {}
func (PEGroup) isParsedExpr()    {}
func (PEIf) isParsedExpr()       {}
func (PEField) isParsedExpr()    {}
func (PERecord) isParsedExpr()   {}
func (PERestrict) isParsedExpr() {}
func (PEApply) isParsedExpr()    {}
func (PELambda) isParsedExpr()   {}
func (PELet) isParsedExpr()      {}
func (PEVariant) isParsedExpr()  {}
func (PECase) isParsedExpr()     {}

type ParsedArm struct {
	Pattern *ParsedPattern
	Body    *ParsedExpr
}

type ParsedRecordField struct {
	Label     ident.Label
	LabelSpan Span
	Value     *ParsedExpr
}

// ParsedPattern. Constructor vs. binding discrimination has not happened
// yet at this stage: every bare identifier pattern is PPIdent, resolved
// into Bind or Constructor by the declare pass once the constructor table
// (built by the constructor pass) is known.
type ParsedPattern struct {
	Node ParsedPatternNode
	Span Span
}

type ParsedPatternNode interface{ isParsedPattern() }

type (
	PPInvalid  struct{ Err diag.ErrorId }
	PPWildcard struct{}
	PPUnit     struct{}
	PPIdent    struct{ Name ident.Ident }
	PPAnno     struct {
		Pattern *ParsedPattern
		Type    *ParsedType
	}
	PPGroup struct{ Pattern *ParsedPattern }
	PPApply struct{ Fn, Arg *ParsedPattern }
	PPOr    struct{ Left, Right *ParsedPattern }
	PPAnd   struct{ Left, Right *ParsedPattern }
)

func (PPInvalid) isParsedPattern()  {}
func (PPWildcard) isParsedPattern() {}
func (PPUnit) isParsedPattern()     {}
func (PPIdent) isParsedPattern()    {}
func (PPAnno) isParsedPattern()     {}
func (PPGroup) isParsedPattern()    {}
func (PPApply) isParsedPattern()    {}
func (PPOr) isParsedPattern()       {}
func (PPAnd) isParsedPattern()      {}

// ParsedType is the surface type syntax.
type ParsedType struct {
	Node ParsedTypeNode
	Span Span
}

type ParsedTypeNode interface{ isParsedType() }

type (
	PTInvalid   struct{ Err diag.ErrorId }
	PTWildcard  struct{}
	PTNamed     struct{ Name ident.Ident }
	PTUniversal struct{ Name ident.Ident } // 'a
	PTFunction  struct{ Param, Result *ParsedType }
	PTRecord    struct{ Fields []ParsedTypeField }
	PTApply     struct{ Fn, Arg *ParsedType }
	PTGroup     struct{ Type *ParsedType }
)

func (PTInvalid) isParsedType()   {}
func (PTWildcard) isParsedType()  {}
func (PTNamed) isParsedType()     {}
func (PTUniversal) isParsedType() {}
func (PTFunction) isParsedType()  {}
func (PTRecord) isParsedType()    {}
func (PTApply) isParsedType()     {}
func (PTGroup) isParsedType()     {}

type ParsedTypeField struct {
	Label ident.Label
	Type  *ParsedType
}

// ParsedCtor is one constructor alternative in a data item's body, before
// the constructor pass has minted it a Name.
type ParsedCtor struct {
	Name   ident.Ident
	Affix  Affix
	Params []*ParsedType
	Span   Span
}

// ParsedItem is one top-level declaration.
type ParsedItem struct {
	Node ParsedItemNode
	Span Span
}

type ParsedItemNode interface{ isParsedItem() }

type (
	PILet struct {
		Pattern *ParsedPattern
		Bound   *ParsedExpr
	}
	PIData struct {
		Name   ident.Ident
		Params []ident.Ident // explicit universals scoped over Ctors
		Ctors  []ParsedCtor
		// KindAnnotated/HasWhere record illegal-but-parseable source
		// shapes the resolve pass rejects with an error.
		KindAnnotated bool
		HasWhere      bool
	}
)

func (PILet) isParsedItem()  {}
func (PIData) isParsedItem() {}

