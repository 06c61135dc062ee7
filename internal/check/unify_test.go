package check

import (
	"testing"

	"github.com/funvibe/nomlc/internal/checkconfig"
	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/semtype"
	"github.com/stretchr/testify/require"
)

func newTestSolver() (*Solver, *diag.Errors) {
	return NewSolver(checkconfig.Default()), diag.NewErrors()
}

func TestUnifyStructural(t *testing.T) {
	cases := []struct {
		name    string
		lhs, rhs semtype.Type
		wantErr bool
	}{
		{"unit~unit", semtype.TUnit{}, semtype.TUnit{}, false},
		{"integer~integer", semtype.TInteger{}, semtype.TInteger{}, false},
		{"unit~integer", semtype.TUnit{}, semtype.TInteger{}, true},
		{"named-same", semtype.TNamed{Name: 1}, semtype.TNamed{Name: 1}, false},
		{"named-different", semtype.TNamed{Name: 1}, semtype.TNamed{Name: 2}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, errs := newTestSolver()
			s.Unify(errs, diag.Span{}, tc.lhs, tc.rhs)
			if tc.wantErr {
				require.Equal(t, 1, errs.NumErrors())
			} else {
				require.Equal(t, 0, errs.NumErrors())
			}
		})
	}
}

func TestUnifyVarBindsAndApplies(t *testing.T) {
	s, errs := newTestSolver()
	v := s.Fresh()
	s.Unify(errs, diag.Span{}, v, semtype.TInteger{})
	require.Equal(t, 0, errs.NumErrors())
	require.Equal(t, semtype.TInteger{}, s.Apply(v))
}

func TestUnifyFunctionArgAndResult(t *testing.T) {
	s, errs := newTestSolver()
	a := s.Fresh()
	b := s.Fresh()
	f1 := semtype.Function(a, semtype.TInteger{})
	f2 := semtype.Function(semtype.TUnit{}, b)
	s.Unify(errs, diag.Span{}, f1, f2)
	require.Equal(t, 0, errs.NumErrors())
	require.Equal(t, semtype.TUnit{}, s.Apply(a))
	require.Equal(t, semtype.TInteger{}, s.Apply(b))
}

func TestUnifyOccursCheckDetectsInfiniteType(t *testing.T) {
	s, errs := newTestSolver()
	v := s.Fresh()
	// v ~ v -> Integer: v occurs in its own proposed binding.
	cyclic := semtype.Function(v, semtype.TInteger{})
	s.Unify(errs, diag.Span{}, v, cyclic)
	require.Equal(t, 1, errs.NumErrors())
	require.Equal(t, diag.CodeInfiniteType, errs.Drain()[0].Code)
}

func TestGeneralizeAndInstantiateRoundTrip(t *testing.T) {
	s, _ := newTestSolver()
	s.Enter()
	v := s.Fresh()
	ty := semtype.Function(v, v)
	s.Exit()

	scheme := s.Generalize(nil, s.Apply(ty))
	require.Len(t, scheme.Params, 1)

	inst1 := s.Instantiate(scheme)
	inst2 := s.Instantiate(scheme)
	arg1, ret1, ok := semtype.AsFunction(inst1)
	require.True(t, ok)
	require.Equal(t, arg1, ret1, "both occurrences of the quantified var instantiate to the same fresh var")

	arg2, _, ok := semtype.AsFunction(inst2)
	require.True(t, ok)
	require.NotEqual(t, arg1, arg2, "separate Instantiate calls mint separate fresh vars")
}
