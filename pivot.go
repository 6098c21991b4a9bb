package casso

import (
	"math"
	"slices"

	"go.uber.org/zap"
)

// sortedSymbols returns the keys of cells in ascending Symbol order. Row
// cells are a Go map, whose native iteration order is randomized; sorting
// by the symbol's own (id, kind) ordering gives every "first match wins"
// scan in this file a reproducible tie-break across runs, without
// changing what the simplex method is allowed to pick.
func sortedSymbols(cells map[Symbol]float64) []Symbol {
	syms := make([]Symbol, 0, len(cells))
	for sym := range cells {
		syms = append(syms, sym)
	}
	slices.Sort(syms)
	return syms
}

func sortedRowKeys(rows map[Symbol]Row) []Symbol {
	syms := make([]Symbol, 0, len(rows))
	for sym := range rows {
		syms = append(syms, sym)
	}
	slices.Sort(syms)
	return syms
}

// findSubject picks the variable that a freshly built constraint row will
// be solved for: the first External symbol in the row, failing that a
// restricted (Slack/Error) marker/other with negative coefficient,
// failing that — if every symbol in the row is a Dummy — either a
// redundant-constraint shortcut or an UnsatisfiableConstraint.
func (s *Solver) findSubject(row Row, tag Tag) (Symbol, error) {
	if sym := row.firstExternal(); sym.IsValid() {
		return sym, nil
	}

	if tag.Marker.restricted() {
		if coeff, ok := row.cells[tag.Marker]; ok && coeff < 0 {
			return tag.Marker, nil
		}
	}

	if tag.Other.restricted() {
		if coeff, ok := row.cells[tag.Other]; ok && coeff < 0 {
			return tag.Other, nil
		}
	}

	if !row.allDummy() {
		return InvalidSymbol, nil
	}

	if !nearZero(row.constant, s.epsilon) {
		return InvalidSymbol, ErrUnsatisfiableConstraint
	}

	return tag.Marker, nil
}

// substitute fans a pivot result (sym now equals the given row) out
// across every basic row, the objective, and — if a phase-1 pass is in
// progress — the artificial objective. It is the single place where an
// External variable's tracked value can be perturbed by an internal
// pivot, and where rows become infeasible and join the dual simplex
// worklist.
func (s *Solver) substitute(sym Symbol, row Row) {
	for _, basic := range sortedRowKeys(s.rows) {
		r := s.rows[basic]
		changed := r.substitute(sym, row, s.epsilon)
		s.rows[basic] = r

		if basic.external() {
			if changed {
				s.markChanged(basic)
			}
			continue
		}

		if r.constant < 0 {
			s.infeasible = append(s.infeasible, basic)
		}
	}

	s.objective.substitute(sym, row, s.epsilon)
	if s.artificial != nil {
		s.artificial.substitute(sym, row, s.epsilon)
	}
}

func (s *Solver) markChanged(sym Symbol) {
	v, ok := s.vars.variableFor(sym)
	if !ok {
		return
	}
	s.changed[v] = struct{}{}
}

// getEntering returns the first (in sorted Symbol order) non-Dummy
// symbol in objective with a strictly negative coefficient, or
// InvalidSymbol once the objective cannot be improved further.
func getEntering(objective Row) Symbol {
	for _, sym := range sortedSymbols(objective.cells) {
		if sym.dummy() {
			continue
		}
		if objective.cells[sym] < 0 {
			return sym
		}
	}
	return InvalidSymbol
}

// getLeavingPrimal runs the minimum-ratio test over every row whose
// basic symbol is non-External.
func (s *Solver) getLeavingPrimal(entering Symbol) (Symbol, error) {
	exit := InvalidSymbol
	ratio := math.MaxFloat64

	for _, basic := range sortedRowKeys(s.rows) {
		if basic.external() {
			continue
		}
		coeff, ok := s.rows[basic].cells[entering]
		if !ok || coeff >= 0 {
			continue
		}
		r := -s.rows[basic].constant / coeff
		if r < ratio {
			ratio, exit = r, basic
		}
	}

	if !exit.IsValid() {
		return InvalidSymbol, ErrObjectiveUnbounded
	}
	return exit, nil
}

// optimizeAgainst is the primal simplex loop: repeatedly pivot an
// improving entering symbol into the basis via the leaving row chosen by
// getLeavingPrimal, until the objective has no more negative non-Dummy
// coefficients.
func (s *Solver) optimizeAgainst(objective *Row) error {
	for {
		entering := getEntering(*objective)
		if !entering.IsValid() {
			return nil
		}

		exit, err := s.getLeavingPrimal(entering)
		if err != nil {
			s.logger.Debug("primal optimize: objective unbounded", zap.Uint64("entering", uint64(entering)))
			return err
		}

		row := s.rows[exit]
		delete(s.rows, exit)

		row.solveForPair(exit, entering, s.epsilon)
		s.substitute(entering, row)

		if entering.external() && row.constant != 0 {
			s.markChanged(entering)
		}

		s.rows[entering] = row
	}
}

// getDualEntering runs the minimum-ratio test for the dual simplex. Only
// columns that also carry a coefficient in the objective row are
// eligible — a column absent from the objective has no reduced cost to
// compare and must not be treated as a (falsely minimal) zero ratio;
// this matches the reference algorithm's dual-simplex entering-variable
// selection.
func (s *Solver) getDualEntering(row Row) (Symbol, error) {
	entering := InvalidSymbol
	ratio := math.MaxFloat64

	for _, sym := range sortedSymbols(row.cells) {
		coeff := row.cells[sym]
		if coeff <= 0 || sym.dummy() {
			continue
		}
		objCoeff, ok := s.objective.cells[sym]
		if !ok {
			continue
		}
		r := objCoeff / coeff
		if r < ratio {
			ratio, entering = r, sym
		}
	}

	if !entering.IsValid() {
		return InvalidSymbol, ErrDualOptimizeFailed
	}
	return entering, nil
}

// dualOptimize repairs feasibility by repeatedly pivoting away rows on
// the infeasible worklist whose constant has gone negative.
func (s *Solver) dualOptimize() error {
	for len(s.infeasible) > 0 {
		leaving := s.infeasible[len(s.infeasible)-1]
		s.infeasible = s.infeasible[:len(s.infeasible)-1]

		row, ok := s.rows[leaving]
		if !ok || row.constant >= 0 {
			continue
		}
		delete(s.rows, leaving)

		entering, err := s.getDualEntering(row)
		if err != nil {
			s.logger.Debug("dual optimize: failed to find entering symbol", zap.Uint64("leaving", uint64(leaving)))
			return err
		}

		row.solveForPair(leaving, entering, s.epsilon)
		s.substitute(entering, row)

		if entering.external() && row.constant != 0 {
			s.markChanged(entering)
		}

		s.rows[entering] = row
	}
	return nil
}

// addWithArtificial runs Cassowary's artificial-variable phase-1 when no
// natural subject could be found for a newly built row.
func (s *Solver) addWithArtificial(row Row) error {
	art := s.newSymbol(Slack)
	s.rows[art] = row.clone()

	artificial := row.clone()
	s.artificial = &artificial

	if err := s.optimizeAgainst(s.artificial); err != nil {
		s.artificial = nil
		return err
	}

	success := nearZero(s.artificial.constant, s.epsilon)
	s.artificial = nil

	artRow, ok := s.rows[art]
	if ok {
		delete(s.rows, art)

		if len(artRow.cells) == 0 {
			// The reference algorithm treats an artificial row with no
			// remaining cells as success unconditionally at this point:
			// it has been fully pivoted out, so there is nothing left to
			// re-home onto another entering symbol.
			return nil
		}

		entering := InvalidSymbol
		for _, sym := range sortedSymbols(artRow.cells) {
			if sym.restricted() {
				entering = sym
				break
			}
		}
		if !entering.IsValid() {
			return ErrUnsatisfiableConstraint
		}

		artRow.solveForPair(art, entering, s.epsilon)
		s.substitute(entering, artRow)
		s.rows[entering] = artRow
	}

	for _, basic := range sortedRowKeys(s.rows) {
		r := s.rows[basic]
		if _, ok := r.cells[art]; ok {
			r.remove(art)
			s.rows[basic] = r
		}
	}
	s.objective.remove(art)

	if !success {
		return ErrUnsatisfiableConstraint
	}
	return nil
}

// markerLeavingRow picks the row to pivot a constraint's marker out of
// during removal: a three-way precedence over rows whose marker
// coefficient is non-zero, preferring restored feasibility of
// non-External rows over disturbing an External row's value.
func (s *Solver) markerLeavingRow(marker Symbol) (Symbol, error) {
	var first, second, third Symbol
	r1, r2 := math.MaxFloat64, math.MaxFloat64

	for _, basic := range sortedRowKeys(s.rows) {
		row := s.rows[basic]
		coeff, ok := row.cells[marker]
		if !ok || coeff == 0 {
			continue
		}

		if basic.external() {
			third = basic
			continue
		}

		if coeff < 0 {
			r := -row.constant / coeff
			if r < r1 {
				r1, first = r, basic
			}
		} else {
			r := row.constant / coeff
			if r < r2 {
				r2, second = r, basic
			}
		}
	}

	switch {
	case first.IsValid():
		return first, nil
	case second.IsValid():
		return second, nil
	case third.IsValid():
		return third, nil
	default:
		return InvalidSymbol, ErrFailedToFindLeavingRow
	}
}
