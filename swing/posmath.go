package swing

import "github.com/quantedge/swingcore/types"

// PositionMath collects the pure position/cost-accounting functions shared
// by the grid oscillator and the state machine. Grounded on
// original_source/strategy.py's update_position_avg_price and
// update_position_avg_price_2way module-level functions.

// UpdateOneWay updates a pair of independent long/short position-qty and
// cumulative-moving-average-price slices with one fill. Long and short
// books are tracked separately, so a sell against a long position reduces
// the long qty without affecting the short book or its average price; the
// average price only moves on a buy fill (the original's accumulation
// half), and resets to zero once the side's qty returns to zero.
//
// qty and cma are indexed [long, short] and mutated in place, mirroring the
// original's in-place list mutation.
func UpdateOneWay(qty, cma *[2]float64, action types.Action, side types.Side, price, fillQty float64) {
	idx := sideIndex(side)
	if action == types.Buy {
		prevQty := qty[idx]
		prevCMA := cma[idx]
		cma[idx] = (prevCMA*prevQty + price*fillQty) / (prevQty + fillQty)
		qty[idx] += fillQty
	} else {
		qty[idx] -= fillQty
		if qty[idx] == 0 {
			cma[idx] = 0
		}
	}
}

func sideIndex(side types.Side) int {
	if side == types.Short {
		return 1
	}
	return 0
}

// UpdateTwoWay updates a single signed position (positive = long, negative =
// short) and its average price with one fill, folding long and short books
// together so a Sell on Long (closing long) is the mirror of a Sell on Short
// (closing short).
// It returns the new average price, the new signed qty, and the realized
// gain from any quantity that closed against the prior position (unscaled
// by contract unit, matching the original's documented contract).
func UpdateTwoWay(cma, qty float64, action types.Action, side types.Side, price, fillQty float64) (newCMA, newQty, realizedGain float64) {
	// Buy opens and Sell closes the book named by side, as in UpdateOneWay
	// and CalcOrderParams: Buy-Long and Sell-Short move the combined signed
	// position toward long, Sell-Long and Buy-Short move it toward short.
	signed := fillQty
	if (action == types.Buy) != (side == types.Long) {
		signed = -fillQty
	}
	newQty = qty + signed

	switch {
	case newQty == 0:
		newCMA = 0
	case qty == 0 || (qty > 0) != (newQty > 0):
		newCMA = price
	case (qty > 0) == (signed > 0):
		newCMA = (cma*qty + price*signed) / newQty
	default:
		newCMA = cma
	}

	if qty != 0 && (qty > 0) != (signed > 0) {
		sign := 1.0
		if qty < 0 {
			sign = -1.0
		}
		closedQty := minF(absF(qty), absF(signed))
		realizedGain = (price - cma) * sign * closedQty
	}
	return newCMA, newQty, realizedGain
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
