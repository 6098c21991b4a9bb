package casso

import "math"

// varEntry is the per-Variable bookkeeping the solver keeps: which
// External symbol represents it in the tableau, the value last reported
// to the caller via FetchChanges, and how many live constraints
// reference it.
type varEntry struct {
	symbol    Symbol
	lastValue float64
	refcount  uint32
}

// varRegistry maps user Variables to their External Symbol (and back),
// tracking reference counts so that a Variable no longer mentioned by
// any constraint is forgotten.
type varRegistry struct {
	byVariable map[Variable]*varEntry
	bySymbol   map[Symbol]Variable
}

func newVarRegistry() *varRegistry {
	return &varRegistry{
		byVariable: make(map[Variable]*varEntry),
		bySymbol:   make(map[Symbol]Variable),
	}
}

func (r *varRegistry) reset() {
	r.byVariable = make(map[Variable]*varEntry)
	r.bySymbol = make(map[Symbol]Variable)
}

// entry returns the bookkeeping for v, if it has ever been seen.
func (r *varRegistry) entry(v Variable) (*varEntry, bool) {
	e, ok := r.byVariable[v]
	return e, ok
}

// variableFor returns the Variable an External symbol represents.
func (r *varRegistry) variableFor(sym Symbol) (Variable, bool) {
	v, ok := r.bySymbol[sym]
	return v, ok
}

// register creates bookkeeping for a Variable seen for the first time,
// binding it to a freshly allocated External symbol. last_value starts
// as NaN so the first real value reported (including 0.0) is always
// treated as a change.
func (r *varRegistry) register(v Variable, sym Symbol) *varEntry {
	e := &varEntry{symbol: sym, lastValue: math.NaN()}
	r.byVariable[v] = e
	r.bySymbol[sym] = v
	return e
}

// incref bumps v's refcount by one non-zero-coefficient reference.
func (r *varRegistry) incref(v Variable) {
	if e, ok := r.byVariable[v]; ok {
		e.refcount++
	}
}

// decref drops one reference to v, evicting it entirely once its
// refcount reaches zero. Reports whether it was evicted.
func (r *varRegistry) decref(v Variable) bool {
	e, ok := r.byVariable[v]
	if !ok {
		return false
	}
	e.refcount--
	if e.refcount > 0 {
		return false
	}
	delete(r.bySymbol, e.symbol)
	delete(r.byVariable, v)
	return true
}
