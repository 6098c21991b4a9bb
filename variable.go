package casso

import "sync/atomic"

// variableCounter is process-wide so that Variable identities allocated
// concurrently across independent Solver instances never collide.
var variableCounter uint64

// Variable is an opaque, externally-visible identity for a quantity the
// solver can reason about. Two variables are equal iff they were
// produced by the same call to NewVariable.
type Variable struct {
	id uint64
}

// NewVariable allocates a fresh Variable. Safe for concurrent use across
// goroutines and across independent Solvers.
func NewVariable() Variable {
	return Variable{id: atomic.AddUint64(&variableCounter, 1)}
}

// Term builds a Term of coeff*v.
func (v Variable) Term(coeff float64) Term {
	return Term{Variable: v, Coefficient: coeff}
}

// Add returns the expression v + other.
func (v Variable) Add(other Variable) Expression {
	return NewExpression(0, v.Term(1), other.Term(1))
}

// Sub returns the expression v - other.
func (v Variable) Sub(other Variable) Expression {
	return NewExpression(0, v.Term(1), other.Term(-1))
}

// AddConstant returns the expression v + k.
func (v Variable) AddConstant(k float64) Expression {
	return NewExpression(k, v.Term(1))
}

// SubConstant returns the expression v - k.
func (v Variable) SubConstant(k float64) Expression {
	return NewExpression(-k, v.Term(1))
}

// EqualTo starts building a v == rhs constraint.
func (v Variable) EqualTo(rhs float64) WeightedConstraintBuilder {
	return v.Term(1).asExpression().EqualTo(NewExpression(rhs))
}

// LessThanOrEqualTo starts building a v <= rhs constraint.
func (v Variable) LessThanOrEqualTo(rhs float64) WeightedConstraintBuilder {
	return v.Term(1).asExpression().LessThanOrEqualTo(NewExpression(rhs))
}

// GreaterThanOrEqualTo starts building a v >= rhs constraint.
func (v Variable) GreaterThanOrEqualTo(rhs float64) WeightedConstraintBuilder {
	return v.Term(1).asExpression().GreaterThanOrEqualTo(NewExpression(rhs))
}
