package sim

// Basis selects which position a mark-to-market step is valued against.
type Basis int

const (
	// BasisUpdatedPosition values the price move against the position after
	// the fill has been applied.
	BasisUpdatedPosition Basis = iota

	// BasisPriorPosition values the price move against the position that was
	// held while the price moved.
	BasisPriorPosition
)

func (b Basis) String() string {
	switch b {
	case BasisPriorPosition:
		return "prior"
	default:
		return "updated"
	}
}

// ParseBasis accepts "updated" and "prior". Anything else maps to the
// updated-position basis.
func ParseBasis(s string) Basis {
	if s == "prior" {
		return BasisPriorPosition
	}
	return BasisUpdatedPosition
}

// MarkToMarket returns the P&L of moving from prev to mark while holding
// position.
func MarkToMarket(prev, mark, position float64) float64 {
	return (mark - prev) * position
}

// FillPrice applies slippage against the trader: buys fill above the mark,
// sells below.
func FillPrice(mark, sign, slippageBps float64) float64 {
	return mark * (1 + sign*slippageBps/10_000)
}
