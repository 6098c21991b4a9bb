package casso

import "sync/atomic"

// Term is a single coeff*variable summand of an Expression.
type Term struct {
	Variable    Variable
	Coefficient float64
}

// NewTerm builds a Term of coeff*v.
func NewTerm(v Variable, coeff float64) Term {
	return Term{Variable: v, Coefficient: coeff}
}

// Negate returns the term with its coefficient negated.
func (t Term) Negate() Term {
	t.Coefficient = -t.Coefficient
	return t
}

func (t Term) asExpression() Expression {
	return NewExpression(0, t)
}

// Expression is a linear combination of variables plus a constant:
// sum(coeff_i * variable_i) + constant. Zero-coefficient terms are
// meaningless and are dropped wherever the solver encounters them; the
// Expression type itself does not filter them eagerly so that callers
// can build expressions cheaply.
type Expression struct {
	Terms    []Term
	Constant float64
}

// NewExpression builds an expression from a constant and a list of terms.
func NewExpression(constant float64, terms ...Term) Expression {
	return Expression{Constant: constant, Terms: terms}
}

// Negate returns -e.
func (e Expression) Negate() Expression {
	terms := make([]Term, len(e.Terms))
	for i, t := range e.Terms {
		terms[i] = t.Negate()
	}
	return Expression{Terms: terms, Constant: -e.Constant}
}

// Add returns e + other.
func (e Expression) Add(other Expression) Expression {
	terms := make([]Term, 0, len(e.Terms)+len(other.Terms))
	terms = append(terms, e.Terms...)
	terms = append(terms, other.Terms...)
	return Expression{Terms: terms, Constant: e.Constant + other.Constant}
}

// AddConstant returns e + k.
func (e Expression) AddConstant(k float64) Expression {
	e.Constant += k
	return e
}

// AddTerm returns e + t.
func (e Expression) AddTerm(t Term) Expression {
	terms := make([]Term, len(e.Terms)+1)
	copy(terms, e.Terms)
	terms[len(e.Terms)] = t
	e.Terms = terms
	return e
}

// Sub returns e - other.
func (e Expression) Sub(other Expression) Expression {
	return e.Add(other.Negate())
}

// SubConstant returns e - k.
func (e Expression) SubConstant(k float64) Expression {
	e.Constant -= k
	return e
}

// Mul returns e scaled by k.
func (e Expression) Mul(k float64) Expression {
	terms := make([]Term, len(e.Terms))
	for i, t := range e.Terms {
		t.Coefficient *= k
		terms[i] = t
	}
	return Expression{Terms: terms, Constant: e.Constant * k}
}

// Div returns e scaled by 1/k.
func (e Expression) Div(k float64) Expression {
	return e.Mul(1 / k)
}

// RelationalOperator is the comparison operator of a Constraint, which
// always relates an Expression to zero.
type RelationalOperator uint8

const (
	LessThanOrEqual RelationalOperator = iota
	Equal
	GreaterThanOrEqual
)

func (op RelationalOperator) String() string {
	switch op {
	case LessThanOrEqual:
		return "<="
	case Equal:
		return "=="
	case GreaterThanOrEqual:
		return ">="
	default:
		return "?"
	}
}

// constraintCounter is process-wide for the same reason variableCounter
// is: constraints, like variables, may be constructed concurrently
// across independent Solver instances.
var constraintCounter uint64

// constraintData holds a Constraint's payload. Constraint wraps a pointer
// to constraintData, which gives constraints identity-based equality for
// free via Go pointer comparison: two constraints built from identical
// expressions are distinct values, without needing a hand-rolled Equal
// method.
type constraintData struct {
	id         uint64
	expression Expression
	op         RelationalOperator
	strength   Strength
}

// Constraint represents expression op 0 at the given strength. It has
// identity-based equality: build it once via a WeightedConstraintBuilder
// and pass that same value around; building an equivalent constraint
// from scratch produces a distinct identity. The zero Constraint holds a
// nil pointer and is distinct from every constraint newConstraint builds.
type Constraint struct {
	data *constraintData
}

func newConstraint(expression Expression, op RelationalOperator, strength Strength) Constraint {
	return Constraint{data: &constraintData{
		id:         atomic.AddUint64(&constraintCounter, 1),
		expression: expression,
		op:         op,
		strength:   strength,
	}}
}

// Expression returns the constraint's left-hand-side expression
// (expression op 0).
func (c Constraint) Expression() Expression { return c.data.expression }

// Op returns the constraint's relational operator.
func (c Constraint) Op() RelationalOperator { return c.data.op }

// Strength returns the constraint's strength.
func (c Constraint) Strength() Strength { return c.data.strength }

// WeightedConstraintBuilder is the second half of building a Constraint:
// an expression and operator are fixed, and only the strength remains to
// be chosen via At.
type WeightedConstraintBuilder struct {
	expression Expression
	op         RelationalOperator
}

// At finalizes the constraint at the given strength.
func (b WeightedConstraintBuilder) At(strength Strength) Constraint {
	return newConstraint(b.expression, b.op, strength)
}

// Required is shorthand for At(Required).
func (b WeightedConstraintBuilder) Required() Constraint { return b.At(Required) }

// EqualTo starts building the constraint e - rhs == 0.
func (e Expression) EqualTo(rhs Expression) WeightedConstraintBuilder {
	return WeightedConstraintBuilder{expression: e.Sub(rhs), op: Equal}
}

// LessThanOrEqualTo starts building the constraint e - rhs <= 0.
func (e Expression) LessThanOrEqualTo(rhs Expression) WeightedConstraintBuilder {
	return WeightedConstraintBuilder{expression: e.Sub(rhs), op: LessThanOrEqual}
}

// GreaterThanOrEqualTo starts building the constraint e - rhs >= 0.
func (e Expression) GreaterThanOrEqualTo(rhs Expression) WeightedConstraintBuilder {
	return WeightedConstraintBuilder{expression: e.Sub(rhs), op: GreaterThanOrEqual}
}
