package swing

import (
	"math"
	"time"

	"github.com/quantedge/swingcore/types"
)

// OrderState is the lifecycle state of an AdaptiveOrder.
type OrderState string

const (
	OrderInit      OrderState = "INIT"
	OrderReq       OrderState = "REQ"
	OrderPending   OrderState = "PENDING"
	OrderFilled    OrderState = "FILLED"
	OrderCancelled OrderState = "CANCELLED"
)

// EscalationMode is how aggressively AdaptiveOrder prices its next requote.
type EscalationMode string

const (
	// ModePatient quotes the more favorable of last and the midpoint; the
	// first quote is further bounded by the user-specified price.
	ModePatient EscalationMode = "PATIENT"
	// ModeAccelerated quotes one tick more aggressively than last, capped at midpoint.
	ModeAccelerated EscalationMode = "ACCELERATED"
	// ModeUrgent quotes one tick more aggressively still, the less favorable
	// of the two candidates.
	ModeUrgent EscalationMode = "URGENT"
	// ModePanic crosses the spread outright, quoting at the market price.
	ModePanic EscalationMode = "PANIC"
)

type modeEntry struct {
	mode      EscalationMode
	maxRetry  int
}

// TickAction is what the caller of Tick should do next.
type TickAction int

const (
	// TickNoop means nothing to do this tick.
	TickNoop TickAction = iota
	// TickSubmit means Intent carries a new order to submit.
	TickSubmit
	// TickCancel means CancelOrderID carries the order id to cancel.
	TickCancel
	// TickCancelled means the order gave up: its modes were exhausted or last
	// crossed its price bound.
	TickCancelled
	// TickClosed means the order has fully filled.
	TickClosed
)

// TickResult is the outcome of one AdaptiveOrder.Tick call.
type TickResult struct {
	Action        TickAction
	Intent        types.OrderIntent
	CancelOrderID int64
}

// AdaptiveOrder adaptively reprices a pending order to minimize timing risk,
// escalating through Patient -> Accelerated -> Urgent -> Panic pricing modes
// as retries at each mode are exhausted. Grounded on
// original_source/advanced_orders.py:AdaptiveOrder.
type AdaptiveOrder struct {
	Tag    string
	Action types.Action
	Side   types.Side

	orderQty     float64
	orderPrice   *float64
	retryStep    float64 // in ticks
	maxSlippage  float64 // in ticks

	state       OrderState
	filledQty   float64
	filledPrice float64

	cross      bool // true if this order's action/side cross the book (requires aggressive pricing to fill)
	priceBound float64
	modeStack  []modeEntry

	lastOrderID    int64
	lastOrderTime  time.Time
	lastOrderPrice float64
	lastOrderMode  EscalationMode
	hasLastOrder   bool
}

// NewAdaptiveOrder constructs an order in state Init. orderPrice is the
// user's originally specified limit price (nil for a market-style order);
// it anchors the price bound (last is used when nil) and bounds the very
// first Patient-mode quote.
func NewAdaptiveOrder(
	contract *Contract,
	action types.Action,
	side types.Side,
	qty float64,
	orderPrice *float64,
	tag string,
	retryStep float64,
	patientMaxRetry, acceleratedMaxRetry, urgentMaxRetry, panicMaxRetry int,
	maxSlippage float64,
) *AdaptiveOrder {
	cross := !((action == types.Buy && side == types.Long) || (action == types.Sell && side == types.Short))
	d := 1.0
	if cross {
		d = -1.0
	}
	basePrice := contract.Last
	if orderPrice != nil {
		basePrice = *orderPrice
	}
	ao := &AdaptiveOrder{
		Tag:         tag,
		Action:      action,
		Side:        side,
		orderQty:    qty,
		orderPrice:  orderPrice,
		retryStep:   retryStep,
		maxSlippage: maxSlippage,
		state:       OrderInit,
		cross:       cross,
		priceBound:  basePrice + d*maxSlippage*contract.Tick,
		modeStack: []modeEntry{
			{ModePanic, panicMaxRetry},
			{ModeUrgent, urgentMaxRetry},
			{ModeAccelerated, acceleratedMaxRetry},
			{ModePatient, patientMaxRetry},
		},
	}
	ao.trimExhaustedModes()
	return ao
}

func (ao *AdaptiveOrder) trimExhaustedModes() {
	for len(ao.modeStack) > 0 && ao.modeStack[len(ao.modeStack)-1].maxRetry <= 0 {
		ao.modeStack = ao.modeStack[:len(ao.modeStack)-1]
	}
}

func (ao *AdaptiveOrder) currentMode() (EscalationMode, bool) {
	if len(ao.modeStack) == 0 {
		return "", false
	}
	return ao.modeStack[len(ao.modeStack)-1].mode, true
}

// State returns the order's current lifecycle state.
func (ao *AdaptiveOrder) State() OrderState { return ao.state }

// FilledQty and FilledPrice report the order's cumulative fill.
func (ao *AdaptiveOrder) FilledQty() float64   { return ao.filledQty }
func (ao *AdaptiveOrder) FilledPrice() float64 { return ao.filledPrice }

// LastOrderID is the broker order id of the most recently submitted quote,
// or 0 if none has been submitted yet.
func (ao *AdaptiveOrder) LastOrderID() int64 { return ao.lastOrderID }

func pick(invert bool, a, b float64) float64 {
	if invert {
		return maxF(a, b)
	}
	return minF(a, b)
}

// Tick advances the order's pricing for one market-data update.
func (ao *AdaptiveOrder) Tick(contract *Contract, now time.Time) TickResult {
	d := 1.0
	if ao.cross {
		d = -1.0
	}
	last := contract.Last
	tick := contract.Tick

	switch ao.state {
	case OrderInit:
		mode, ok := ao.currentMode()
		if !ok || d*(last-ao.priceBound) > 0 {
			ao.state = OrderCancelled
			return TickResult{Action: TickCancelled}
		}
		midpoint := contract.Round((contract.Bid + contract.Ask) / 2.0)

		var orderPrice float64
		switch mode {
		case ModePatient:
			orderPrice = pick(ao.cross, last, midpoint)
			if !ao.hasLastOrder && ao.orderPrice != nil {
				orderPrice = pick(ao.cross, *ao.orderPrice, orderPrice)
			}
		case ModeAccelerated:
			orderPrice = pick(ao.cross, last+d*tick, midpoint)
		case ModeUrgent:
			orderPrice = pick(!ao.cross, last+d*tick, midpoint)
		default: // ModePanic: cross the spread at the market price
			orderPrice = contract.Ask
			if ao.Action == types.Sell {
				orderPrice = contract.Bid
			}
		}

		qty := ao.orderQty - ao.filledQty
		ao.state = OrderReq
		return TickResult{
			Action: TickSubmit,
			Intent: types.OrderIntent{Action: ao.Action, Side: ao.Side, Price: contract.Round(orderPrice), Qty: qty, Tag: ao.Tag},
		}

	case OrderReq:
		return TickResult{Action: TickNoop}

	case OrderPending:
		elapsed := now.Sub(ao.lastOrderTime)
		if elapsed > modeTimeLimit(ao.lastOrderMode) ||
			d*(last-ao.lastOrderPrice) >= ao.retryStep*tick ||
			d*(last-ao.priceBound) > 0 {
			return TickResult{Action: TickCancel, CancelOrderID: ao.lastOrderID}
		}
		return TickResult{Action: TickNoop}

	default: // OrderFilled
		return TickResult{Action: TickClosed}
	}
}

// modeTimeLimit returns the max pending duration before a requote for mode.
// The original strategy configures every mode with an unbounded time limit;
// kept as a named seam rather than hardcoding math.Inf at every call site.
func modeTimeLimit(EscalationMode) time.Duration {
	return time.Duration(math.MaxInt64)
}

// OnBuySellSuccess records a newly accepted quote and moves the order to
// Pending, decrementing the current mode's retry budget and escalating past
// any mode that has none left.
func (ao *AdaptiveOrder) OnBuySellSuccess(orderID int64, orderPrice float64, now time.Time) {
	ao.lastOrderID = orderID
	ao.lastOrderTime = now
	ao.lastOrderPrice = orderPrice
	mode, ok := ao.currentMode()
	if ok {
		ao.lastOrderMode = mode
	}
	ao.hasLastOrder = true
	ao.state = OrderPending

	if len(ao.modeStack) > 0 {
		ao.modeStack[len(ao.modeStack)-1].maxRetry--
	}
	ao.trimExhaustedModes()
}

// OnBuySellFail returns the order to Init so the next Tick requotes.
func (ao *AdaptiveOrder) OnBuySellFail() {
	ao.state = OrderInit
}

// OnTradeUpdate folds a new fill into the order's cumulative average price.
func (ao *AdaptiveOrder) OnTradeUpdate(price, qty float64) {
	ao.filledPrice = (ao.filledPrice*ao.filledQty + price*qty) / (ao.filledQty + qty)
	ao.filledQty += qty
}

// OnOrderStatus applies a broker status update: Closed (or a qty-complete
// fill) marks the order Filled; anything else returns it to Init to requote.
func (ao *AdaptiveOrder) OnOrderStatus(status types.OrderStatus) {
	if status == types.StatusClosed || ao.filledQty == ao.orderQty {
		ao.state = OrderFilled
	} else {
		ao.state = OrderInit
	}
}
