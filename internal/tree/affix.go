// Package tree defines the node-shape family shared by every pipeline
// stage (parsed, resolved, inferred), each parameterized by how it names
// things and how application is shaped. Nodes are small interface-sum-
// types inspected with a type switch rather than a double-dispatch
// visitor: most passes only care about a handful of variants at a time,
// and a type switch reads closer to the match expressions this shape is
// adapted from.
package tree

import "github.com/funvibe/nomlc/internal/diag"

// Affix is the fixity classification carried on a constructor/operator
// Name, driving the resolver's run reassociation.
type Affix uint8

const (
	AffixNone Affix = iota
	AffixPrefix
	AffixInfix
	AffixPostfix
)

func (a Affix) String() string {
	switch a {
	case AffixPrefix:
		return "prefix"
	case AffixInfix:
		return "infix"
	case AffixPostfix:
		return "postfix"
	default:
		return "none"
	}
}

// Span is an alias so tree files don't need to import diag under a
// different name everywhere a node carries one.
type Span = diag.Span
