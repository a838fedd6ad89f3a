package swing

import "github.com/quantedge/swingcore/types"

// OrderLeg is one broker-bound leg produced by CalcOrderParams.
type OrderLeg struct {
	Action types.Action
	Side   types.Side
	Price  float64
	Qty    float64
	Tag    string
}

// CalcOrderParams splits a single logical order into up to two broker legs
// (a Sell leg and a Buy leg) so that closing an existing opposite-direction
// position is never mistaken for opening exposure in the other direction.
// Grounded on original_source/strategy.py:calc_order_params.
//
// positionAvailable is the quantity available to close on side; it is only
// consulted when action is Sell. positionAvailableReverse is the quantity
// available to close on side.Opposite(); it is only consulted when action is
// Buy (a buy first closes out any opposite-side position before opening new
// exposure on side). Either may be nil, meaning "not tracked" — in that case
// allowSplit is ignored and the whole qty goes on the single matching leg.
//
// It returns both legs (one may carry qty 0, meaning "do not submit"), the
// updated position-available figures, and whether the order had to split
// across both legs.
func CalcOrderParams(
	action types.Action,
	side types.Side,
	price, qty float64,
	tag string,
	positionAvailable, positionAvailableReverse *float64,
	allowSplit bool,
) (sell, buy OrderLeg, newPositionAvailable, newPositionAvailableReverse *float64, split bool) {
	reverse := side.Opposite()

	sellSide, buySide := side, reverse
	if action == types.Buy {
		sellSide, buySide = reverse, side
	}

	var sellQty, buyQty float64
	switch {
	case action == types.Sell && (positionAvailable == nil || !allowSplit):
		sellQty, buyQty = qty, 0
	case action == types.Buy && (positionAvailableReverse == nil || !allowSplit):
		sellQty, buyQty = 0, qty
	default:
		var positionForSell float64
		if action == types.Sell {
			positionForSell = *positionAvailable
		} else {
			positionForSell = *positionAvailableReverse
		}
		sellQty = minF(positionForSell, qty)
		buyQty = maxF(0, qty-positionForSell)
		if action == types.Sell {
			v := *positionAvailable - sellQty
			positionAvailable = &v
		} else {
			v := *positionAvailableReverse - sellQty
			positionAvailableReverse = &v
		}
	}

	sell = OrderLeg{Action: types.Sell, Side: sellSide, Price: price, Qty: sellQty, Tag: tag}
	buy = OrderLeg{Action: types.Buy, Side: buySide, Price: price, Qty: buyQty, Tag: tag}
	return sell, buy, positionAvailable, positionAvailableReverse, sellQty > 0 && buyQty > 0
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
