// Package diag provides template-keyed, coded diagnostics carrying a
// primary span, plus the Errors collection the host drains. Every node
// variant in internal/tree has an Invalid(ErrorId) constructor; Record
// mints the id and appends to this collection in one step so inference
// and resolution never construct a diag.Error by hand.
package diag

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// ErrorId identifies one recorded diagnostic. Backed by a uuid rather than
// a counter: it must be mintable without serializing through the single
// checker instance (the resolver mints ids too, before a checker exists),
// and it must stay stable as a map key across the arena of otherwise
// unkeyed tree nodes that carry Invalid(ErrorId).
type ErrorId uuid.UUID

func newErrorId() ErrorId { return ErrorId(uuid.New()) }

// Phase names which pipeline stage raised a diagnostic.
type Phase string

const (
	PhaseSyntax   Phase = "syntax"
	PhaseResolver Phase = "resolver"
	PhaseChecker  Phase = "checker"
)

// Code is a stable, testable identifier for one diagnostic template,
// grouped by taxonomy (Name/Type/Syntax; Evaluation is reserved and never
// produced by this module).
type Code string

const (
	// Syntax: produced upstream and propagated as-is.
	CodeSyntaxError Code = "S001"

	// Name errors.
	CodeUnknownName             Code = "N001"
	CodeRedefinedValue          Code = "N002"
	CodeRedefinedType           Code = "N003"
	CodeOrPatternsDisagree      Code = "N004"
	CodeImplicitTypeVarInData   Code = "N005"
	CodePostfixFunction         Code = "N006"
	CodeInfixFunction           Code = "N007"
	CodeAmbiguousInfixOperators Code = "N008"
	CodeMultipleReturnTypeAnnos Code = "N009"
	CodeKindAnnotationsUnsup    Code = "N010"

	// Type errors.
	CodeInequalTypes          Code = "T001"
	CodeInfiniteType          Code = "T002"
	CodeNoSuchLabel           Code = "T003"
	CodeIncompatibleRecordTys Code = "T004"
)

var templates = map[Code]string{
	CodeSyntaxError:             "%s",
	CodeUnknownName:             "unknown name %q",
	CodeRedefinedValue:          "redefined value %q",
	CodeRedefinedType:           "redefined type %q",
	CodeOrPatternsDisagree:      "or-patterns disagree on bound names",
	CodeImplicitTypeVarInData:   "implicit type variable %q in data declaration",
	CodePostfixFunction:         "postfix operator %q requires a preceding argument",
	CodeInfixFunction:           "infix operator %q requires a left and right argument",
	CodeAmbiguousInfixOperators: "ambiguous infix operators",
	CodeMultipleReturnTypeAnnos: "multiple return type annotations on one function spine",
	CodeKindAnnotationsUnsup:    "kind annotations are not supported on data declarations",
	CodeInequalTypes:            "inequal types: %s and %s",
	CodeInfiniteType:            "infinite type: %s occurs in %s",
	CodeNoSuchLabel:             "record has no field %q",
	CodeIncompatibleRecordTys:   "incompatible record types",
}

// Severity distinguishes a hard error from a warning. Redefinition
// diagnostics downgrade to Warning unless checkconfig.StrictRedefine.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Label attaches a secondary span and note to an Error, e.g. pointing back
// at the first of two ambiguous infix operators.
type Label struct {
	Span Span
	Note string
}

// Error is one diagnostic: a code, a phase, a primary span, a rendered
// title, optional labels, and free-form notes/hints.
type Error struct {
	Id       ErrorId
	Code     Code
	Phase    Phase
	Severity Severity
	Span     Span
	Title    string
	Labels   []Label
	Notes    []string
}

func (e *Error) String() string {
	var b strings.Builder
	sev := "error"
	if e.Severity == SeverityWarning {
		sev = "warning"
	}
	fmt.Fprintf(&b, "%s at %d:%d [%s]: %s", sev, e.Span.Start, e.Span.End, e.Code, e.Title)
	for _, l := range e.Labels {
		fmt.Fprintf(&b, "\n  at %d:%d: %s", l.Span.Start, l.Span.End, l.Note)
	}
	for _, n := range e.Notes {
		fmt.Fprintf(&b, "\n  note: %s", n)
	}
	return b.String()
}

// Errors is the diagnostics collection threaded through the resolver and
// checker. It is not safe for concurrent use; one compile owns one Errors.
type Errors struct {
	errs []*Error
}

// NewErrors returns an empty collection.
func NewErrors() *Errors { return &Errors{} }

// Record mints a fresh ErrorId, appends the diagnostic, and returns the id
// so the caller can embed it in an Invalid(ErrorId) tree node.
func (e *Errors) Record(phase Phase, code Code, sev Severity, span Span, args ...any) ErrorId {
	tmpl, ok := templates[code]
	if !ok {
		tmpl = string(code)
	}
	id := newErrorId()
	e.errs = append(e.errs, &Error{
		Id:       id,
		Code:     code,
		Phase:    phase,
		Severity: sev,
		Span:     span,
		Title:    fmt.Sprintf(tmpl, args...),
	})
	return id
}

// RecordWithLabels is Record plus secondary labels, for diagnostics that
// point at more than one span (e.g. ambiguous infix operators).
func (e *Errors) RecordWithLabels(phase Phase, code Code, sev Severity, span Span, labels []Label, args ...any) ErrorId {
	id := e.Record(phase, code, sev, span, args...)
	e.errs[len(e.errs)-1].Labels = labels
	return id
}

// NumErrors counts diagnostics at SeverityError.
func (e *Errors) NumErrors() int {
	n := 0
	for _, x := range e.errs {
		if x.Severity == SeverityError {
			n++
		}
	}
	return n
}

// NumWarnings counts diagnostics at SeverityWarning.
func (e *Errors) NumWarnings() int {
	n := 0
	for _, x := range e.errs {
		if x.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// IsPerfect reports whether no errors and no warnings were recorded.
func (e *Errors) IsPerfect() bool { return len(e.errs) == 0 }

// Drain returns and clears all recorded diagnostics, in recording order.
func (e *Errors) Drain() []*Error {
	out := e.errs
	e.errs = nil
	return out
}

// Sources yields the distinct SourceIds referenced by any recorded
// diagnostic's primary span or labels, for grouping diagnostics by file.
func (e *Errors) Sources() []uint32 {
	seen := map[uint32]struct{}{}
	var out []uint32
	add := func(s Span) {
		if _, ok := seen[uint32(s.Source)]; !ok {
			seen[uint32(s.Source)] = struct{}{}
			out = append(out, uint32(s.Source))
		}
	}
	for _, x := range e.errs {
		add(x.Span)
		for _, l := range x.Labels {
			add(l.Span)
		}
	}
	return out
}

// Summary renders a host-facing one-liner, e.g. "3 errors, 1 warning", or
// "12,345 errors, 2 warnings" once counts get large enough that
// humanize.Comma's grouping is worth it.
func (e *Errors) Summary() string {
	errs, warns := e.NumErrors(), e.NumWarnings()

	count := func(n int, noun string) string {
		s := humanize.Comma(int64(n))
		if n == 1 {
			return s + " " + noun
		}
		return s + " " + noun + "s"
	}

	switch {
	case errs == 0 && warns == 0:
		return "no errors"
	case warns == 0:
		return count(errs, "error")
	case errs == 0:
		return count(warns, "warning")
	default:
		return count(errs, "error") + ", " + count(warns, "warning")
	}
}
