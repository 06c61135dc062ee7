package tree

import (
	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/ident"
	"github.com/funvibe/nomlc/internal/semtype"
)

// The inferred family is the checker's output. Every InferredExpr and
// InferredPattern carries its resolved semtype.Type directly, not only at
// let/lambda boundaries, so a host can answer "what's the type of this
// subexpression" for any node without re-running inference.

type InferredExpr struct {
	Node ResolvedExprNode // the resolved shape is reused verbatim;
	Span Span             // inference only adds Type and rewrites children
	Type semtype.Type      // to *InferredExpr/*InferredPattern, see below
	// Children holds the inferred child nodes for the variants that have
	// them, keyed the same way as the corresponding ResolvedExprNode
	// field. Kept alongside Node (rather than replacing it) so callers
	// that only need the shape can type-switch on Node directly, while
	// inference results live in Children.
	Children InferredChildren
}

// InferredChildren holds the inferred replacements for a node's
// subterms; only the fields relevant to Node's variant are populated.
type InferredChildren struct {
	Expr1, Expr2, Expr3 *InferredExpr
	Pattern             *InferredPattern
	Arms                []InferredArm
	Fields              []InferredRecordField
	Extend              *InferredExpr
}

type InferredArm struct {
	Pattern *InferredPattern
	Body    *InferredExpr
}

type InferredRecordField struct {
	Label ident.Label
	Value *InferredExpr
}

type InferredPattern struct {
	Node ResolvedPatternNode
	Span Span
	Type semtype.Type
	Sub  InferredPatternChildren
}

type InferredPatternChildren struct {
	Pattern1, Pattern2 *InferredPattern
}

// InferredItem is one item after its body has been inferred and
// generalized; Scheme is set only for ItemLet (data items have no scheme
// of their own, only their constructors do, recorded in the checker's Env).
type InferredItem struct {
	Id     ItemId
	Span   Span
	Node   ItemNode
	Body   *InferredExpr // nil for ItemData/ItemInvalid
	Scheme semtype.Scheme
}

// HoleInfo records the generalized type of one `_` hole; Checker.Holes
// builds the list once every cluster has been checked.
type HoleInfo struct {
	Span   Span
	Scheme semtype.Scheme
}

// Program is the checker's final output: SCC-clustered
// typed items, in topological order (leaves first), plus a Name -> Span
// definition table and the inlay-hint hole collection.
type Program struct {
	Clusters [][]InferredItem
	Defs     map[ident.Name]Span
	Holes    []HoleInfo
	Errors   *diag.Errors
}
