package casso

// SymbolKind tags what role a Symbol plays in the tableau.
type SymbolKind uint8

const (
	// Invalid is the zero kind; Symbol's zero value carries it and acts
	// as a sentinel.
	Invalid SymbolKind = iota
	External
	Slack
	Error
	Dummy
)

var symbolKindNames = [...]string{
	Invalid:  "Invalid",
	External: "External",
	Slack:    "Slack",
	Error:    "Error",
	Dummy:    "Dummy",
}

func (k SymbolKind) String() string {
	if int(k) < len(symbolKindNames) {
		return symbolKindNames[k]
	}
	return "Unknown"
}

// restricted reports whether a symbol of this kind may only take
// non-negative values in a feasible tableau (Slack and Error symbols).
func (k SymbolKind) restricted() bool { return k == Slack || k == Error }

const symbolKindBits = 3
const symbolKindMask = uint64(1<<symbolKindBits) - 1

// Symbol is the solver's internal column identifier: a record of (id,
// kind) bit-packed into a uint64, id in the high bits and kind in the
// low bits so that the natural numeric ordering on Symbol orders first
// by id, then by kind. The zero Symbol is Invalid and never allocated by
// newSymbol (solver id ticks start at 1), so it is safe to use as a map
// "not present" sentinel.
type Symbol uint64

// InvalidSymbol is the zero-value sentinel Symbol.
const InvalidSymbol Symbol = 0

func newSymbol(id uint64, kind SymbolKind) Symbol {
	return Symbol(id<<symbolKindBits | uint64(kind))
}

// Kind returns the symbol's kind.
func (s Symbol) Kind() SymbolKind { return SymbolKind(uint64(s) & symbolKindMask) }

// id returns the symbol's id component (for ordering/debugging only).
func (s Symbol) id() uint64 { return uint64(s) >> symbolKindBits }

// IsValid reports whether s is not the Invalid sentinel.
func (s Symbol) IsValid() bool { return s != InvalidSymbol }

func (s Symbol) restricted() bool { return s != InvalidSymbol && s.Kind().restricted() }
func (s Symbol) external() bool   { return s != InvalidSymbol && s.Kind() == External }
func (s Symbol) dummy() bool      { return s != InvalidSymbol && s.Kind() == Dummy }
