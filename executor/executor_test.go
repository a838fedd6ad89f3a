package executor

import (
	"testing"

	"github.com/quantedge/swingcore/types"
)

func TestPaperGateway_BuyAccepts(t *testing.T) {
	g := NewPaperGateway()
	result := g.Buy([]types.OrderIntent{
		{Action: types.Buy, Side: types.Long, Price: 100, Qty: 2, Tag: "grid_osc"},
	})
	if !result.Accepted {
		t.Fatal("expected buy to be accepted")
	}
	if len(result.BuyOrders) != 1 || result.BuyOrders[0].OrderID == 0 {
		t.Fatalf("expected one acked buy order with a non-zero id, got %+v", result.BuyOrders)
	}
}

func TestPaperGateway_DropsZeroQtyLegs(t *testing.T) {
	g := NewPaperGateway()
	result := g.Sell([]types.OrderIntent{
		{Action: types.Sell, Side: types.Long, Price: 100, Qty: 0, Tag: "grid_osc"},
	})
	if result.Accepted {
		t.Fatal("expected zero-qty leg to be dropped and not accepted")
	}
}

func TestPaperGateway_CancelAllClearsOpenOrders(t *testing.T) {
	g := NewPaperGateway()
	g.Buy([]types.OrderIntent{{Action: types.Buy, Side: types.Long, Price: 100, Qty: 1, Tag: "t"}})
	if len(g.Open()) != 1 {
		t.Fatalf("expected one open order, got %d", len(g.Open()))
	}
	if err := g.Cancel(types.CancelRequest{Kind: types.CancelAll}); err != nil {
		t.Fatalf("unexpected cancel error: %v", err)
	}
	if len(g.Open()) != 0 {
		t.Fatalf("expected no open orders after cancel all, got %d", len(g.Open()))
	}
}

func TestPaperGateway_CancelUnknownOrderIsIgnored(t *testing.T) {
	g := NewPaperGateway()
	if err := g.Cancel(types.CancelRequest{Kind: types.CancelOrders, OrderIDs: []int64{999}}); err != nil {
		t.Fatalf("expected no error cancelling unknown order id, got %v", err)
	}
}
