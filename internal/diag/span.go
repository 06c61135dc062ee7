package diag

import "github.com/funvibe/nomlc/internal/ident"

// Pos is a byte offset into one source file.
type Pos uint32

// Span is a half-open range within a single source. Two Spans may only be
// combined with Union if they share a Source; combining spans from
// different sources is a programmer error and panics.
type Span struct {
	Source ident.SourceId
	Start  Pos
	End    Pos
}

// Union implements the monoidal `+` from the data model: start-min,
// end-max, same-source precondition.
func (s Span) Union(o Span) Span {
	if s.Source != o.Source {
		panic("diag: Union of spans from different sources")
	}

	start := s.Start
	if o.Start < start {
		start = o.Start
	}
	end := s.End
	if o.End > end {
		end = o.End
	}

	return Span{Source: s.Source, Start: start, End: end}
}
