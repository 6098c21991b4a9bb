package casso_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/lithdew/casso"
)

// TestAddRemoveRestoresPriorAssignment checks that adding a constraint
// and then removing it returns the solver to a state equivalent,
// assignment-wise, to before the constraint was added.
func TestAddRemoveRestoresPriorAssignment(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("remove undoes add", prop.ForAll(
		func(value float64) bool {
			s := casso.NewSolver()
			x := casso.NewVariable()
			before := s.GetValue(x)

			c := casso.NewExpression(-value, x.Term(1)).EqualTo(casso.NewExpression(0)).Required()
			if err := s.AddConstraint(c); err != nil {
				return false
			}
			if s.GetValue(x) != value {
				return false
			}

			if err := s.RemoveConstraint(c); err != nil {
				return false
			}
			return s.GetValue(x) == before && !s.HasConstraint(c)
		},
		gen.Float64Range(-1_000_000, 1_000_000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// TestResetThenReplayIsDeterministic checks that Reset followed by the
// same sequence of adds yields the same assignments as running that
// sequence from a fresh solver.
func TestResetThenReplayIsDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	replay := func(s *casso.Solver, x, y casso.Variable, a, b float64) (float64, float64, error) {
		c1 := casso.NewExpression(-a, x.Term(1)).EqualTo(casso.NewExpression(0)).Required()
		if err := s.AddConstraint(c1); err != nil {
			return 0, 0, err
		}
		c2 := casso.NewExpression(-b, y.Term(1), x.Term(-1)).EqualTo(casso.NewExpression(0)).Required()
		if err := s.AddConstraint(c2); err != nil {
			return 0, 0, err
		}
		return s.GetValue(x), s.GetValue(y), nil
	}

	properties.Property("reset then replay matches a fresh solver", prop.ForAll(
		func(a, b float64) bool {
			fresh := casso.NewSolver()
			x, y := casso.NewVariable(), casso.NewVariable()
			fx, fy, err := replay(fresh, x, y, a, b)
			if err != nil {
				return false
			}

			reused := casso.NewSolver()
			rx, ry := casso.NewVariable(), casso.NewVariable()
			if _, _, err := replay(reused, rx, ry, a, b); err != nil {
				return false
			}
			reused.Reset()

			gx, gy := casso.NewVariable(), casso.NewVariable()
			rgx, rgy, err := replay(reused, gx, gy, a, b)
			if err != nil {
				return false
			}

			return fx == rgx && fy == rgy
		},
		gen.Float64Range(-1_000, 1_000),
		gen.Float64Range(-1_000, 1_000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
