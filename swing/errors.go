package swing

import "fmt"

// ErrKind classifies a swing package error, each with its own non-fatal
// recovery action (spec.md section 7): skip the tick, log-and-drop, silently
// ignore, submit anyway and let the broker decide, or fail the owning
// sub-machine's callback and let it requote.
type ErrKind int

const (
	// ErrInvalidMarginFee means the contract's fee table has not been
	// populated for a direction yet; the caller should skip the tick.
	ErrInvalidMarginFee ErrKind = iota
	// ErrInvalidTickSize means a market data update carried a non-numeric
	// or non-positive tick size; the update is dropped in full.
	ErrInvalidTickSize
	// ErrInvalidContractUnit is the unit-size analogue of ErrInvalidTickSize.
	ErrInvalidContractUnit
	// ErrMalformedEvent means a required field was missing from an inbound
	// trade/status event; the event is logged and dropped (EventRouter.OnTrade).
	ErrMalformedEvent
	// ErrUnknownOrderID means an event referenced an order id the state
	// machine never recorded; it is logged and dropped
	// (SwingStateMachine.OnTradeUpdate / OnOrderStatus).
	ErrUnknownOrderID
	// ErrPriceOutOfLimit means an outbound order's price fell outside the
	// contract's low/high limit band; the intent is dropped before reaching
	// the broker, which surfaces as a buy/sell-fail callback on the owning
	// sub-machine once the gateway reports it unaccepted (EventRouter.validate).
	ErrPriceOutOfLimit
	// ErrInsufficientCash means the account could not afford even a single
	// unit after the reduction loop; rather than dropping the order, the
	// original (unreduced) quantity is restored and submitted anyway,
	// leaving the broker's own accept/reject as the final word
	// (EventRouter.validate, risk.ReduceForAvailableCash).
	ErrInsufficientCash
	// ErrInsufficientPosition means a sell referenced more quantity than is
	// currently open on that side, regardless of whether it opens or
	// closes a position; the intent is dropped before reaching the broker
	// (EventRouter.validate).
	ErrInsufficientPosition
	// ErrBrokerRefusal means the wrapped gateway rejected the order outright
	// (EventRouter.dispatch).
	ErrBrokerRefusal
)

func (k ErrKind) String() string {
	switch k {
	case ErrInvalidMarginFee:
		return "invalid_margin_fee"
	case ErrInvalidTickSize:
		return "invalid_tick_size"
	case ErrInvalidContractUnit:
		return "invalid_contract_unit"
	case ErrMalformedEvent:
		return "malformed_event"
	case ErrUnknownOrderID:
		return "unknown_order_id"
	case ErrPriceOutOfLimit:
		return "price_out_of_limit"
	case ErrInsufficientCash:
		return "insufficient_cash"
	case ErrInsufficientPosition:
		return "insufficient_position"
	case ErrBrokerRefusal:
		return "broker_refusal"
	default:
		return "unknown"
	}
}

// Error is a typed error carrying the ErrKind recovery-action tag so callers
// can branch on errors.As rather than string matching.
type Error struct {
	Kind ErrKind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// NewError constructs a typed Error.
func NewError(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}
