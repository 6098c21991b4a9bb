package casso

import (
	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"
)

// editEntry is the bookkeeping kept per edit variable: the tag of the
// equality constraint that pins the variable, the constraint itself (so
// RemoveEditVariable can hand it back to RemoveConstraint), and the
// value most recently requested via SuggestValue.
type editEntry struct {
	tag        Tag
	constraint Constraint
	constant   float64
}

// Change is a single Variable whose solved value differs from the last
// value reported for it.
type Change struct {
	Variable Variable
	Value    float64
}

// Solver incrementally solves a system of linear equality and
// inequality constraints over Variables using the Cassowary algorithm: a
// simplex tableau kept in solved form, augmented with a secondary dual
// pass so that edit-variable suggestions can be applied without
// rebuilding the system from scratch. A Solver is not safe for
// concurrent use; callers that need concurrent access must serialize it
// themselves.
type Solver struct {
	epsilon float64
	logger  *zap.Logger

	idTick uint64
	vars   *varRegistry

	constraints map[Constraint]Tag
	rows        map[Symbol]Row
	objective   Row
	artificial  *Row

	infeasible []Symbol
	edits      map[Variable]editEntry

	changed            map[Variable]struct{}
	shouldClearChanges bool
	publicChanges      []Change
}

// SolverOption configures a Solver at construction time.
type SolverOption func(*Solver)

// WithLogger attaches a zap.Logger for Debug-level tableau diagnostics.
// The default is zap.NewNop(), so a Solver built without this option
// produces no log output.
func WithLogger(logger *zap.Logger) SolverOption {
	return func(s *Solver) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEpsilon overrides the near-zero threshold used to drop negligible
// tableau coefficients and detect feasibility. The default is 1e-8.
func WithEpsilon(epsilon float64) SolverOption {
	return func(s *Solver) {
		if epsilon > 0 {
			s.epsilon = epsilon
		}
	}
}

// NewSolver builds an empty Solver.
func NewSolver(opts ...SolverOption) *Solver {
	s := &Solver{
		epsilon:     defaultEpsilon,
		logger:      zap.NewNop(),
		idTick:      1,
		vars:        newVarRegistry(),
		constraints: make(map[Constraint]Tag),
		rows:        make(map[Symbol]Row),
		objective:   newRow(0),
		edits:       make(map[Variable]editEntry),
		changed:     make(map[Variable]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Solver) newSymbol(kind SymbolKind) Symbol {
	id := s.idTick
	s.idTick++
	return newSymbol(id, kind)
}

// externalSymbolFor returns the External symbol representing v, creating
// one (with an initial refcount of one) the first time v is seen, and
// bumping the refcount for every subsequent non-zero term that
// references it.
func (s *Solver) externalSymbolFor(v Variable) Symbol {
	if e, ok := s.vars.entry(v); ok {
		s.vars.incref(v)
		return e.symbol
	}
	sym := s.newSymbol(External)
	e := s.vars.register(v, sym)
	e.refcount = 1
	return sym
}

// createRow builds the sparse Row a constraint's expression translates
// to, substituting in any symbol that is already basic elsewhere in the
// tableau.
func (s *Solver) createRow(expr Expression) Row {
	row := newRow(expr.Constant)
	for _, term := range expr.Terms {
		if nearZero(term.Coefficient, s.epsilon) {
			continue
		}
		sym := s.externalSymbolFor(term.Variable)
		if basic, ok := s.rows[sym]; ok {
			row.insertRow(basic, term.Coefficient, s.epsilon)
		} else {
			row.insertSymbol(term.Coefficient, sym, s.epsilon)
		}
	}
	return row
}

// AddConstraint adds c to the system and re-solves. On any error the
// constraint is not added, though symbols the row construction allocated
// along the way may linger harmlessly.
func (s *Solver) AddConstraint(c Constraint) error {
	if _, ok := s.constraints[c]; ok {
		return ErrDuplicateConstraint
	}

	row := s.createRow(c.Expression())
	tag := Tag{}

	switch c.Op() {
	case LessThanOrEqual, GreaterThanOrEqual:
		coeff := 1.0
		if c.Op() == GreaterThanOrEqual {
			coeff = -1.0
		}
		tag.Marker = s.newSymbol(Slack)
		row.insertSymbol(coeff, tag.Marker, s.epsilon)

		if !c.Strength().IsRequired() {
			tag.Other = s.newSymbol(Error)
			row.insertSymbol(-coeff, tag.Other, s.epsilon)
			s.objective.insertSymbol(float64(c.Strength()), tag.Other, s.epsilon)
		}
	case Equal:
		if c.Strength().IsRequired() {
			tag.Marker = s.newSymbol(Dummy)
			row.insertSymbol(1.0, tag.Marker, s.epsilon)
		} else {
			tag.Marker = s.newSymbol(Error)
			tag.Other = s.newSymbol(Error)
			row.insertSymbol(-1.0, tag.Marker, s.epsilon)
			row.insertSymbol(1.0, tag.Other, s.epsilon)
			s.objective.insertSymbol(float64(c.Strength()), tag.Marker, s.epsilon)
			s.objective.insertSymbol(float64(c.Strength()), tag.Other, s.epsilon)
		}
	}

	if row.constant < 0 {
		row.reverseSign()
	}

	subject, err := s.findSubject(row, tag)
	if err != nil {
		return err
	}

	if subject.IsValid() {
		row.solveFor(subject)
		s.substitute(subject, row)
		if subject.external() && row.constant != 0 {
			s.markChanged(subject)
		}
		s.rows[subject] = row
	} else {
		// The artificial phase pivots the live tableau; snapshot it so a
		// rejected constraint leaves no partial pivots behind.
		savedRows := make(map[Symbol]Row, len(s.rows))
		for sym, r := range s.rows {
			savedRows[sym] = r.clone()
		}
		savedObjective := s.objective.clone()
		savedInfeasible := append([]Symbol(nil), s.infeasible...)
		if err := s.addWithArtificial(row); err != nil {
			s.rows, s.objective, s.infeasible = savedRows, savedObjective, savedInfeasible
			return err
		}
	}

	s.constraints[c] = tag

	if err := s.optimizeAgainst(&s.objective); err != nil {
		return err
	}

	s.logger.Debug("added constraint",
		zap.String("op", c.Op().String()),
		zap.Float64("strength", float64(c.Strength())),
		zap.String("row", spew.Sdump(row)),
	)
	return nil
}

// HasConstraint reports whether c is currently part of the system.
func (s *Solver) HasConstraint(c Constraint) bool {
	_, ok := s.constraints[c]
	return ok
}

// releaseVariables decrements the refcount of every Variable referenced
// by expr's non-zero terms, evicting any that drop to zero references.
func (s *Solver) releaseVariables(expr Expression) {
	for _, term := range expr.Terms {
		if nearZero(term.Coefficient, s.epsilon) {
			continue
		}
		s.vars.decref(term.Variable)
	}
}

// RemoveConstraint removes c from the system and re-solves.
func (s *Solver) RemoveConstraint(c Constraint) error {
	tag, ok := s.constraints[c]
	if !ok {
		return ErrUnknownConstraint
	}
	delete(s.constraints, c)

	strength := float64(c.Strength())
	for _, marker := range [2]Symbol{tag.Marker, tag.Other} {
		if marker.Kind() != Error {
			continue
		}
		if row, ok := s.rows[marker]; ok {
			s.objective.insertRow(row, -strength, s.epsilon)
		} else {
			s.objective.insertSymbol(-strength, marker, s.epsilon)
		}
	}

	if _, ok := s.rows[tag.Marker]; ok {
		delete(s.rows, tag.Marker)
	} else {
		leaving, err := s.markerLeavingRow(tag.Marker)
		if err != nil {
			return err
		}

		row := s.rows[leaving]
		delete(s.rows, leaving)

		if leaving.external() && row.constant != 0 {
			s.markChanged(leaving)
		}

		row.solveForPair(leaving, tag.Marker, s.epsilon)
		s.substitute(tag.Marker, row)
	}

	if err := s.optimizeAgainst(&s.objective); err != nil {
		return err
	}

	s.releaseVariables(c.Expression())
	s.logger.Debug("removed constraint", zap.String("op", c.Op().String()))
	return nil
}

// AddEditVariable marks v as suggestible: an equality constraint pinning
// v to 0 is added at the given strength, which future SuggestValue calls
// then perturb. strength must not be Required.
func (s *Solver) AddEditVariable(v Variable, strength Strength) error {
	if strength.IsRequired() {
		return ErrBadRequiredStrength
	}
	if _, ok := s.edits[v]; ok {
		return ErrDuplicateEditVariable
	}

	constraint := v.EqualTo(0).At(strength)
	if err := s.AddConstraint(constraint); err != nil {
		return err
	}

	s.edits[v] = editEntry{tag: s.constraints[constraint], constraint: constraint}
	return nil
}

// HasEditVariable reports whether v is currently an edit variable.
func (s *Solver) HasEditVariable(v Variable) bool {
	_, ok := s.edits[v]
	return ok
}

// RemoveEditVariable undoes AddEditVariable, removing the underlying
// pinning constraint.
func (s *Solver) RemoveEditVariable(v Variable) error {
	edit, ok := s.edits[v]
	if !ok {
		return ErrUnknownEditVariable
	}
	if !s.HasConstraint(edit.constraint) {
		return ErrEditConstraintNotInSystem
	}
	if err := s.RemoveConstraint(edit.constraint); err != nil {
		return err
	}
	delete(s.edits, v)
	return nil
}

// SuggestValue nudges an edit variable's pinning constraint toward
// value, reoptimizing via the dual simplex rather than rebuilding the
// tableau from scratch.
func (s *Solver) SuggestValue(v Variable, value float64) error {
	edit, ok := s.edits[v]
	if !ok {
		return ErrUnknownEditVariable
	}

	delta := value - edit.constant
	edit.constant = value
	s.edits[v] = edit

	marker, other := edit.tag.Marker, edit.tag.Other

	switch {
	case s.bumpEditRow(marker, -delta):
	case s.bumpEditRow(other, delta):
	default:
		for _, basic := range sortedRowKeys(s.rows) {
			row := s.rows[basic]
			coeff, ok := row.cells[marker]
			if !ok || coeff == 0 {
				continue
			}

			adjustment := delta * coeff
			newConstant := row.constant + adjustment

			if basic.external() {
				if adjustment != 0 {
					s.markChanged(basic)
				}
			} else if newConstant < 0 {
				s.infeasible = append(s.infeasible, basic)
			}

			row.constant = newConstant
			s.rows[basic] = row
		}
	}

	if err := s.dualOptimize(); err != nil {
		return err
	}

	s.logger.Debug("suggested value", zap.Float64("value", value), zap.Float64("delta", delta))
	return nil
}

// bumpEditRow applies delta to the basic row keyed by sym, if one
// exists, pushing it onto the infeasible worklist if it goes negative.
// Reports whether such a row was found.
func (s *Solver) bumpEditRow(sym Symbol, delta float64) bool {
	row, ok := s.rows[sym]
	if !ok {
		return false
	}
	row.constant += delta
	if row.constant < 0 {
		s.infeasible = append(s.infeasible, sym)
	}
	s.rows[sym] = row
	return true
}

// normalizeZero collapses -0.0 to +0.0 so that value comparisons and
// reported changes are not confused by the sign bit of zero.
func normalizeZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}

// GetValue returns the solver's current solution for v, or 0 if v has
// never appeared in any constraint.
func (s *Solver) GetValue(v Variable) float64 {
	e, ok := s.vars.entry(v)
	if !ok {
		return 0
	}
	if row, ok := s.rows[e.symbol]; ok {
		return normalizeZero(row.constant)
	}
	return 0
}

// FetchChanges reports every Variable whose solved value differs from
// the value last reported for it, and updates its bookkeeping. The
// changed set itself is cleared every other call rather than every
// call, so that a pivot's effects are visible for at least one full
// fetch cycle even if it lands between two FetchChanges calls.
func (s *Solver) FetchChanges() []Change {
	s.publicChanges = s.publicChanges[:0]

	for v := range s.changed {
		e, ok := s.vars.entry(v)
		if !ok {
			continue
		}

		newValue := 0.0
		if row, ok := s.rows[e.symbol]; ok {
			newValue = row.constant
		}
		newValue = normalizeZero(newValue)

		if newValue != e.lastValue {
			e.lastValue = newValue
			s.publicChanges = append(s.publicChanges, Change{Variable: v, Value: newValue})
		}
	}

	if s.shouldClearChanges {
		s.changed = make(map[Variable]struct{})
		s.shouldClearChanges = false
	} else {
		s.shouldClearChanges = true
	}

	return s.publicChanges
}

// Reset discards every constraint, edit variable, and solved value,
// returning the Solver to the state NewSolver produced.
func (s *Solver) Reset() {
	s.idTick = 1
	s.vars.reset()
	s.constraints = make(map[Constraint]Tag)
	s.rows = make(map[Symbol]Row)
	s.objective = newRow(0)
	s.artificial = nil
	s.infeasible = nil
	s.edits = make(map[Variable]editEntry)
	s.changed = make(map[Variable]struct{})
	s.shouldClearChanges = false
	s.publicChanges = nil
}
