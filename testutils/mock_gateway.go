package testutils

import (
	"sync"
	"sync/atomic"

	"github.com/quantedge/swingcore/types"
)

// MockGateway implements executor.Gateway in-memory, recording every
// submitted intent for assertions and allowing tests to force the next
// Buy/Sell call to be rejected.
type MockGateway struct {
	mu         sync.Mutex
	nextID     int64
	rejectNext bool
	buys       []types.OrderIntent
	sells      []types.OrderIntent
	cancels    []types.CancelRequest
}

// NewMockGateway returns a gateway double that accepts everything by default.
func NewMockGateway() *MockGateway { return &MockGateway{} }

// RejectNext forces the next Buy or Sell call to report Accepted=false.
func (g *MockGateway) RejectNext() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rejectNext = true
}

func (g *MockGateway) nextOrderID() int64 {
	return atomic.AddInt64(&g.nextID, 1)
}

func (g *MockGateway) Buy(intents []types.OrderIntent) types.BuySellResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.buys = append(g.buys, intents...)
	if g.rejectNext {
		g.rejectNext = false
		return types.BuySellResult{Accepted: false}
	}
	var result types.BuySellResult
	for _, in := range intents {
		if in.Qty <= 0 {
			continue
		}
		result.BuyOrders = append(result.BuyOrders, types.OrderAck{
			OrderID: g.nextOrderID(), Action: in.Action, Side: in.Side, Price: in.Price, Qty: in.Qty, Tag: in.Tag,
		})
	}
	result.Accepted = len(result.BuyOrders) > 0
	return result
}

func (g *MockGateway) Sell(intents []types.OrderIntent) types.BuySellResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sells = append(g.sells, intents...)
	if g.rejectNext {
		g.rejectNext = false
		return types.BuySellResult{Accepted: false}
	}
	var result types.BuySellResult
	for _, in := range intents {
		if in.Qty <= 0 {
			continue
		}
		result.SellOrders = append(result.SellOrders, types.OrderAck{
			OrderID: g.nextOrderID(), Action: in.Action, Side: in.Side, Price: in.Price, Qty: in.Qty, Tag: in.Tag,
		})
	}
	result.Accepted = len(result.SellOrders) > 0
	return result
}

func (g *MockGateway) Cancel(req types.CancelRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancels = append(g.cancels, req)
	return nil
}

// Buys returns a copy of every buy-side intent submitted so far.
func (g *MockGateway) Buys() []types.OrderIntent {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]types.OrderIntent, len(g.buys))
	copy(out, g.buys)
	return out
}

// Sells returns a copy of every sell-side intent submitted so far.
func (g *MockGateway) Sells() []types.OrderIntent {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]types.OrderIntent, len(g.sells))
	copy(out, g.sells)
	return out
}

// Cancels returns a copy of every cancel request submitted so far.
func (g *MockGateway) Cancels() []types.CancelRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]types.CancelRequest, len(g.cancels))
	copy(out, g.cancels)
	return out
}
