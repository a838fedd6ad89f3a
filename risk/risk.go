// Package risk checks an order against the contract's cached margin and
// commission fee table before it is forwarded to the broker gateway.
// Grounded on the original strategy's calculate_margin /
// calculate_open_commission_with_event checks inside on_buy/on_sell
// (original_source/strategy.py), which guard against submitting an order the
// account cannot afford.
package risk

import (
	"fmt"

	"github.com/quantedge/swingcore/types"
)

// RateKind selects how a MarginFee rate is applied.
type RateKind string

const (
	// RateRatio multiplies the rate by the order's notional (price * qty * unit).
	RateRatio RateKind = "ratio"
	// RateFixed charges the rate as a flat per-contract fee.
	RateFixed RateKind = "fixed"
)

func apply(kind string, rate, notional, qty float64) float64 {
	if RateKind(kind) == RateFixed {
		return rate * qty
	}
	return rate * notional
}

// RequiredMargin computes the margin the account must post to open qty
// contracts of side at price, using the contract's unit size and the fee
// table entry for side.
func RequiredMargin(fee types.MarginFee, unit, price, qty float64) float64 {
	notional := price * qty * unit
	return apply(fee.MarginType, fee.MarginRate, notional, qty)
}

// OpenCommission computes the commission charged to open qty contracts at price.
func OpenCommission(fee types.MarginFee, unit, price, qty float64) float64 {
	notional := price * qty * unit
	return apply(fee.OpenCommType, fee.OpenCommRate, notional, qty)
}

// CloseCommission computes the commission charged to close qty contracts at
// price. closeToday selects the same-day closing rate, which is frequently
// discounted or penalized relative to the regular close rate.
func CloseCommission(fee types.MarginFee, unit, price, qty float64, closeToday bool) float64 {
	notional := price * qty * unit
	rate := fee.CloseCommRate
	if closeToday {
		rate = fee.CloseTodayCommRate
	}
	return apply(fee.CloseCommType, rate, notional, qty)
}

// Requirement is the total cash an opening order needs: margin plus
// open commission.
func Requirement(fee types.MarginFee, unit, price, qty float64) float64 {
	return RequiredMargin(fee, unit, price, qty) + OpenCommission(fee, unit, price, qty)
}

// AffordableQty returns the largest qty (0 <= qty <= requestedQty) the
// available cash can open at price, reducing one unit at a time exactly as
// the original on_buy loop does, rather than solving the ratio directly,
// since margin/commission rate types may mix fixed and ratio components.
func AffordableQty(fee types.MarginFee, unit, price, requestedQty, availableCash float64) (float64, error) {
	if requestedQty < 0 {
		return 0, fmt.Errorf("requested qty (%f) must be non-negative", requestedQty)
	}
	qty := requestedQty
	for qty > 0 && Requirement(fee, unit, price, qty) > availableCash {
		qty--
	}
	return qty, nil
}

// ReduceForAvailableCash mirrors the original on_buy loop exactly, including
// its quirk: qty is walked down one unit at a time while the account cannot
// afford it, but if that walk would reach zero the original requested qty is
// restored and reduced reports false, so the caller submits the order
// unreduced anyway and leaves the broker's own accept/reject as the final
// word (original_source/strategy.py:410-417).
func ReduceForAvailableCash(fee types.MarginFee, unit, price, requestedQty, availableCash float64) (qty float64, reduced bool, err error) {
	qty, err = AffordableQty(fee, unit, price, requestedQty, availableCash)
	if err != nil {
		return 0, false, err
	}
	if qty <= 0 {
		return requestedQty, false, nil
	}
	return qty, true, nil
}
