package sim

// nettingOutcome enumerates what a fill does to the existing position for
// its symbol. Keeping the four non-trivial cases as an explicit variant
// makes each independently testable instead of burying them in nested
// conditionals.
type nettingOutcome int8

const (
	outcomeOpen     nettingOutcome = iota // no position yet
	outcomeIncrease                       // same direction, weighted-average entry
	outcomeReduce                         // opposite, smaller than position
	outcomeClose                          // opposite, exactly the position
	outcomeFlip                           // opposite, larger than position
)

func classifyFill(pos *Position, side Side, amount float64) nettingOutcome {
	switch {
	case pos == nil:
		return outcomeOpen
	case pos.Side == side:
		return outcomeIncrease
	case amount < pos.Quantity:
		return outcomeReduce
	case amount == pos.Quantity:
		return outcomeClose
	default:
		return outcomeFlip
	}
}
