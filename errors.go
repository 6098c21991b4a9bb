package casso

import "errors"

// User errors: precondition violations. The solver's state is unchanged
// except where documented below.
var (
	ErrDuplicateConstraint   = errors.New("casso: constraint already registered")
	ErrUnknownConstraint     = errors.New("casso: constraint is not registered")
	ErrDuplicateEditVariable = errors.New("casso: variable is already an edit variable")
	ErrUnknownEditVariable   = errors.New("casso: variable is not an edit variable")
	ErrBadRequiredStrength   = errors.New("casso: edit variables cannot use Required strength")
)

// Model errors: a constraint cannot coexist with the existing required
// constraints.
var ErrUnsatisfiableConstraint = errors.New("casso: constraint is unsatisfiable")

// Internal errors: these indicate a bug in the solver itself, not a
// misuse by the caller. None of them should occur given a correct
// implementation of the reference algorithm.
var (
	ErrObjectiveUnbounded        = errors.New("casso: objective function is unbounded")
	ErrDualOptimizeFailed        = errors.New("casso: dual optimization failed to find an entering symbol")
	ErrFailedToFindLeavingRow    = errors.New("casso: failed to find a leaving row for marker")
	ErrEditConstraintNotInSystem = errors.New("casso: edit variable's constraint is not in the tableau")
)
