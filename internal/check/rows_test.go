package check

import (
	"testing"

	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/semtype"
	"github.com/stretchr/testify/require"
)

func TestUnifyRowScopedLabelRewrite(t *testing.T) {
	s, errs := newTestSolver()

	// { x: Integer | r } ~ { y: Unit, x: Integer }
	r := s.FreshRow()
	lhs := semtype.RExtend{Label: 1, Field: semtype.TInteger{}, Rest: r}
	rhs := semtype.RExtend{Label: 2, Field: semtype.TUnit{}, Rest: semtype.RExtend{Label: 1, Field: semtype.TInteger{}, Rest: semtype.REmpty{}}}

	s.UnifyRow(errs, diag.Span{}, lhs, rhs)
	require.Equal(t, 0, errs.NumErrors())
	require.Equal(t, semtype.RExtend{Label: 2, Field: semtype.TUnit{}, Rest: semtype.REmpty{}}, s.ApplyRow(r))
}

func TestUnifyRowEmptyMatchesEmpty(t *testing.T) {
	s, errs := newTestSolver()
	s.UnifyRow(errs, diag.Span{}, semtype.REmpty{}, semtype.REmpty{})
	require.Equal(t, 0, errs.NumErrors())
}

func TestUnifyRowNoSuchLabel(t *testing.T) {
	s, errs := newTestSolver()
	lhs := semtype.RExtend{Label: 1, Field: semtype.TInteger{}, Rest: semtype.REmpty{}}
	s.UnifyRow(errs, diag.Span{}, lhs, semtype.REmpty{})
	require.Equal(t, 1, errs.NumErrors())
	require.Equal(t, diag.CodeNoSuchLabel, errs.Drain()[0].Code)
}

// TestUnifyRowDistinctPrefixSharedTailIsUnsound exercises the soundness
// check rewriteRow makes: two rows that disagree on their leading field but
// share the same open tail variable can never be reconciled, since pulling
// a label out of one side would have to simultaneously not appear and
// appear in the shared tail.
func TestUnifyRowDistinctPrefixSharedTailIsUnsound(t *testing.T) {
	s, errs := newTestSolver()
	tail := s.FreshRow()
	lhs := semtype.RExtend{Label: 1, Field: semtype.TInteger{}, Rest: tail}
	rhs := semtype.RExtend{Label: 2, Field: semtype.TUnit{}, Rest: tail}

	s.UnifyRow(errs, diag.Span{}, lhs, rhs)
	require.Equal(t, 1, errs.NumErrors())
	require.Equal(t, diag.CodeIncompatibleRecordTys, errs.Drain()[0].Code)
}

// TestUnifyRowVarAgainstOwnTailTerminates exercises a row variable
// unified against an Extend that has that same variable as its tail —
// the shape a recursive record-building function like
// `let rec f = fun r => { x = 1, ...(f r) }` produces. Routing this
// through rewriteRow's per-label rewrite would defer the self-reference
// one fresh variable every step and never terminate; unifyRow must
// instead dispatch the bare row variable straight to unifyRowVar/setRow,
// whose whole-row occurs check catches it in one step.
func TestUnifyRowVarAgainstOwnTailTerminates(t *testing.T) {
	s, errs := newTestSolver()
	r := s.FreshRow()
	row := semtype.RExtend{Label: 1, Field: semtype.TInteger{}, Rest: r}

	s.UnifyRow(errs, diag.Span{}, r, row)
	require.Equal(t, 1, errs.NumErrors())
	require.Equal(t, diag.CodeInfiniteType, errs.Drain()[0].Code)
}

func TestUnifyRowExtendAgainstOwnTailTerminatesSymmetric(t *testing.T) {
	s, errs := newTestSolver()
	r := s.FreshRow()
	row := semtype.RExtend{Label: 1, Field: semtype.TInteger{}, Rest: r}

	s.UnifyRow(errs, diag.Span{}, row, r)
	require.Equal(t, 1, errs.NumErrors())
	require.Equal(t, diag.CodeInfiniteType, errs.Drain()[0].Code)
}

func TestUnifyRowMaxRewriteStepsBounds(t *testing.T) {
	s, errs := newTestSolver()
	s.maxRowRewriteSteps = 2

	// Three distinct labels before the tail forces more than 2 rewrite
	// steps to find (or fail to find) the requested label.
	row := semtype.RExtend{Label: 10, Field: semtype.TUnit{},
		Rest: semtype.RExtend{Label: 11, Field: semtype.TUnit{},
			Rest: semtype.RExtend{Label: 12, Field: semtype.TUnit{}, Rest: semtype.REmpty{}}}}

	want := semtype.RExtend{Label: 12, Field: semtype.TInteger{}, Rest: semtype.REmpty{}}
	s.UnifyRow(errs, diag.Span{}, want, row)
	require.Equal(t, 1, errs.NumErrors())
}
