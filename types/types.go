// Package types holds the wire-level data model shared by every package in
// swingcore: the inbound/outbound event union of the broker/exchange
// gateway, and the order/trade/contract records the strategy core keeps.
package types

import "time"

// Action is the buy/sell leg of an order.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
)

// Side is the position direction an order opens or closes.
type Side string

const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// Sign returns +1 for Long, -1 for Short.
func (s Side) Sign() float64 {
	if s == Short {
		return -1
	}
	return 1
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Long {
		return Short
	}
	return Long
}

// OrderStatus is the normalized lifecycle status of a broker order.
type OrderStatus string

const (
	StatusOpen         OrderStatus = "OPEN"
	StatusClosed       OrderStatus = "CLOSED"
	StatusRejected     OrderStatus = "REJECTED"
	StatusCancelled    OrderStatus = "CANCELLED"
	StatusRepeatCancel OrderStatus = "REPEAT_CANCEL"
)

// RawOrderStatus is the broker's wire status vocabulary (spec section 6);
// NormalizeStatus folds it down to the OrderStatus states the core cares
// about, aliasing "executed" to "closed" exactly as the original strategy
// does on order_status update.
type RawOrderStatus string

const (
	RawOrderAccepted      RawOrderStatus = "order_status_accepted"
	RawOrderOpen          RawOrderStatus = "order_status_open"
	RawOrderClosed        RawOrderStatus = "order_status_closed"
	RawOrderExecuted      RawOrderStatus = "order_status_executed"
	RawOrderRejected      RawOrderStatus = "order_status_rejected"
	RawOrderCancelled     RawOrderStatus = "order_status_cancelled"
	RawOrderCancelSubmit  RawOrderStatus = "order_status_cancel_submitted"
	RawOrderPartialClosed RawOrderStatus = "order_status_partial_closed"
	RawOrderNoCancel      RawOrderStatus = "order_status_no_cancel"
	RawOrderRepeatCancel  RawOrderStatus = "order_status_repeat_cancel"
)

// NormalizeStatus maps a raw wire status to the OrderStatus states the
// strategy core acts on. ok is false for statuses the core leaves in place
// (open/accepted/cancel_submitted/partial_closed/no_cancel).
func NormalizeStatus(raw RawOrderStatus) (status OrderStatus, ok bool) {
	switch raw {
	case RawOrderClosed, RawOrderExecuted:
		return StatusClosed, true
	case RawOrderRejected:
		return StatusRejected, true
	case RawOrderCancelled:
		return StatusCancelled, true
	case RawOrderRepeatCancel:
		return StatusRepeatCancel, true
	default:
		return "", false
	}
}

// IsTerminal reports whether status ends an order's lifecycle.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case StatusClosed, StatusRejected, StatusCancelled, StatusRepeatCancel:
		return true
	default:
		return false
	}
}

// MarginFee is the cached margin/commission table entry for one side of a
// contract, carried over from the original venue's per-direction fee fields.
type MarginFee struct {
	MarginType         string
	MarginRate         float64
	OpenCommType       string
	OpenCommRate       float64
	CloseCommType      string
	CloseCommRate      float64
	CloseTodayCommRate float64
}

// InvalidValue is the sentinel meaning "field not provided, use cached".
const InvalidValue = -1.0

// MarketData is the inbound tick event. UnitSize/TickSize may carry the
// sentinel InvalidValue meaning "use cached".
type MarketData struct {
	Symbol    string
	Last      float64
	Bid       float64
	Ask       float64
	BidVolume float64
	AskVolume float64
	LowLimit  float64
	HighLimit float64
	UnitSize  float64
	TickSize  float64
}

// Trade is a single fill confirmation.
type Trade struct {
	OrderID    int64
	TradeID    int64
	Price      float64
	Qty        float64
	CreateTime time.Time
}

// OrderStatusEvent reports a broker-side status change for an order.
type OrderStatusEvent struct {
	OrderID int64
	Status  RawOrderStatus
}

// ProfitChanged is an informational NLV/gain refresh from the portfolio
// collaborator.
type ProfitChanged struct {
	PortfolioID  string
	AccountID    string
	InstrumentID string
	Price        float64
}

// OrderAck describes one accepted leg inside a Buy/Sell response.
type OrderAck struct {
	OrderID int64
	Action  Action
	Side    Side
	Price   float64
	Qty     float64
	Tag     string
}

// BuySellResult is the broker's synchronous response to an outbound
// Buy/Sell request.
type BuySellResult struct {
	Accepted   bool
	BuyOrders  []OrderAck
	SellOrders []OrderAck
}

// CancelKind selects which subset of orders a Cancel request targets.
type CancelKind int

const (
	CancelAll CancelKind = iota
	CancelOpen
	CancelClose
	CancelStopLoss
	CancelOrders
)

// CancelRequest is an outbound cancel intent.
type CancelRequest struct {
	Kind     CancelKind
	OrderIDs []int64
}

// OrderIntent is an outbound open-order request produced by the core and
// handed to the EventRouter for dispatch to the broker gateway.
type OrderIntent struct {
	Action Action
	Side   Side
	Price  float64
	Qty    float64
	Tag    string
}

// OrderRecord tracks one outstanding broker order.
type OrderRecord struct {
	OrderID        int64
	CreateTime     time.Time
	ExpirationTime time.Time
	Action         Action
	Side           Side
	Price          float64
	Qty            float64
	Tag            string
	Status         OrderStatus
	FilledQty      float64
	FilledPrice    float64
	TradeIDs       []int64
}

// TradeRecord is one fill against an OrderRecord.
type TradeRecord struct {
	TradeID    int64
	OrderID    int64
	Price      float64
	Qty        float64
	CreateTime time.Time
}
