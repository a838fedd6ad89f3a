// Package executor models the broker/exchange gateway collaborator: the
// synchronous Buy/Sell/Cancel surface the swing core submits orders through.
// Grounded on the teacher's executor.Executor/PaperExecutor (executor.go),
// generalized from a single-order Submit to the Buy/Sell/Cancel request
// shape of the broker described in spec.md section 6.
package executor

import (
	"sync"
	"sync/atomic"

	"github.com/quantedge/swingcore/metrics"
	"github.com/quantedge/swingcore/types"
)

// Gateway is the broker/exchange collaborator: it accepts outbound order
// intents and cancels, and returns a synchronous accept/reject result.
type Gateway interface {
	Buy(intents []types.OrderIntent) types.BuySellResult
	Sell(intents []types.OrderIntent) types.BuySellResult
	Cancel(req types.CancelRequest) error
}

// PaperGateway is an in-memory broker double: every order is accepted
// immediately at its requested price, with a monotonically increasing
// order id, and no slippage or partial fills are modeled.
type PaperGateway struct {
	mu       sync.Mutex
	nextID   int64
	accepted map[int64]types.OrderIntent
}

// NewPaperGateway returns a fresh in-memory gateway.
func NewPaperGateway() *PaperGateway {
	return &PaperGateway{accepted: make(map[int64]types.OrderIntent)}
}

func (g *PaperGateway) nextOrderID() int64 {
	return atomic.AddInt64(&g.nextID, 1)
}

func (g *PaperGateway) ack(intent types.OrderIntent) types.OrderAck {
	id := g.nextOrderID()
	g.mu.Lock()
	g.accepted[id] = intent
	g.mu.Unlock()
	return types.OrderAck{
		OrderID: id,
		Action:  intent.Action,
		Side:    intent.Side,
		Price:   intent.Price,
		Qty:     intent.Qty,
		Tag:     intent.Tag,
	}
}

// Buy accepts a set of buy-leg intents (qty <= 0 legs are dropped).
func (g *PaperGateway) Buy(intents []types.OrderIntent) types.BuySellResult {
	var result types.BuySellResult
	for _, in := range intents {
		if in.Qty <= 0 {
			continue
		}
		result.BuyOrders = append(result.BuyOrders, g.ack(in))
		metrics.OrdersSubmitted.WithLabelValues(in.Tag).Inc()
	}
	result.Accepted = len(result.BuyOrders) > 0
	return result
}

// Sell accepts a set of sell-leg intents (qty <= 0 legs are dropped).
func (g *PaperGateway) Sell(intents []types.OrderIntent) types.BuySellResult {
	var result types.BuySellResult
	for _, in := range intents {
		if in.Qty <= 0 {
			continue
		}
		result.SellOrders = append(result.SellOrders, g.ack(in))
		metrics.OrdersSubmitted.WithLabelValues(in.Tag).Inc()
	}
	result.Accepted = len(result.SellOrders) > 0
	return result
}

// Cancel removes orders from the accepted set. Unknown order ids are ignored.
func (g *PaperGateway) Cancel(req types.CancelRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch req.Kind {
	case types.CancelAll:
		g.accepted = make(map[int64]types.OrderIntent)
	default:
		for _, id := range req.OrderIDs {
			delete(g.accepted, id)
		}
	}
	return nil
}

// Open returns the order ids the gateway still considers open.
func (g *PaperGateway) Open() []int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]int64, 0, len(g.accepted))
	for id := range g.accepted {
		ids = append(ids, id)
	}
	return ids
}
