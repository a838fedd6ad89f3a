package swing

import (
	"testing"
	"time"

	"github.com/quantedge/swingcore/executor"
	"github.com/quantedge/swingcore/testutils"
	"github.com/quantedge/swingcore/types"
)

func newTestRouter() (*EventRouter, *Contract, *executor.PaperGateway) {
	c := newTestContract()
	c.MarginFee[types.Long] = types.MarginFee{MarginType: "ratio", MarginRate: 0.1}
	c.MarginFee[types.Short] = types.MarginFee{MarginType: "ratio", MarginRate: 0.1}
	gw := executor.NewPaperGateway()
	r := NewEventRouter(nil, c, gw, 1000000)
	return r, c, gw
}

func TestEventRouterBuyForwardsAffordableOrder(t *testing.T) {
	r, c, gw := newTestRouter()
	result := r.Buy([]types.OrderIntent{{Action: types.Buy, Side: types.Long, Price: c.Last, Qty: 5, Tag: "t"}})
	if !result.Accepted {
		t.Fatal("expected order to be accepted")
	}
	if len(gw.Open()) != 1 {
		t.Fatalf("expected one open order on the wrapped gateway, got %d", len(gw.Open()))
	}
}

func TestEventRouterBuyRejectsPriceOutsideLimits(t *testing.T) {
	r, _, gw := newTestRouter()
	result := r.Buy([]types.OrderIntent{{Action: types.Buy, Side: types.Long, Price: 500, Qty: 5, Tag: "t"}})
	if result.Accepted {
		t.Fatal("expected order outside exchange limits to be dropped")
	}
	if len(gw.Open()) != 0 {
		t.Fatal("expected nothing forwarded to the wrapped gateway")
	}
}

func TestEventRouterBuyCapsQtyToAvailableCash(t *testing.T) {
	r, c, _ := newTestRouter()
	// margin per contract is rate*price*unit = 0.1*100.25*1000 = 10025, so
	// 60000 affords 5 contracts of the 1000 requested.
	r.SetAvailableCash(60000)
	result := r.Buy([]types.OrderIntent{{Action: types.Buy, Side: types.Long, Price: c.Last, Qty: 1000, Tag: "t"}})
	if !result.Accepted {
		t.Fatal("expected a reduced-qty order to still be accepted")
	}
	if result.BuyOrders[0].Qty <= 0 || result.BuyOrders[0].Qty >= 1000 {
		t.Fatalf("expected qty capped to a positive value below requested 1000, got %v", result.BuyOrders[0].Qty)
	}
}

func TestEventRouterBuyRejectsMissingMarginFee(t *testing.T) {
	c := newTestContract()
	gw := executor.NewPaperGateway()
	r := NewEventRouter(nil, c, gw, 1000000)
	result := r.Buy([]types.OrderIntent{{Action: types.Buy, Side: types.Long, Price: c.Last, Qty: 5, Tag: "t"}})
	if result.Accepted {
		t.Fatal("expected order to be rejected without a margin fee entry")
	}
}

func TestEventRouterOnOrderStatusIgnoresNonTerminalRaw(t *testing.T) {
	r, c, gw := newTestRouter()
	machine := NewSwingStateMachine(testSwingConfig(), c, gw, nil, 100000)
	r.Attach(machine)
	machine.orderDict[1] = &types.OrderRecord{OrderID: 1, Status: types.StatusOpen}

	// order_status_open is not in NormalizeStatus's terminal set, and the
	// router must silently drop it rather than forwarding a zero-value status.
	r.OnOrderStatus(types.OrderStatusEvent{OrderID: 1, Status: types.RawOrderOpen})
	if _, ok := machine.orderDict[1]; !ok {
		t.Fatal("expected non-terminal status to leave the order record untouched")
	}

	r.OnOrderStatus(types.OrderStatusEvent{OrderID: 1, Status: types.RawOrderCancelled})
	if _, ok := machine.orderDict[1]; ok {
		t.Fatal("expected terminal status to remove the order record")
	}
}

func TestEventRouterBuySubmitsUnreducedWhenCashCannotAffordOneUnit(t *testing.T) {
	r, c, _ := newTestRouter()
	r.SetAvailableCash(1) // can't afford even a single contract
	result := r.Buy([]types.OrderIntent{{Action: types.Buy, Side: types.Long, Price: c.Last, Qty: 5, Tag: "t"}})
	if !result.Accepted {
		t.Fatal("expected the order to still be submitted unreduced, matching the original restore-on-exhaustion quirk")
	}
	if result.BuyOrders[0].Qty != 5 {
		t.Fatalf("expected the original qty 5 restored, got %v", result.BuyOrders[0].Qty)
	}
}

func TestEventRouterSellRejectsWhenExceedingOpenPosition(t *testing.T) {
	r, c, gw := newTestRouter()
	machine := NewSwingStateMachine(testSwingConfig(), c, gw, nil, 100000)
	r.Attach(machine)
	r.OnProfitChanged(0, 0, 3, 0) // only 3 long contracts open

	result := r.Sell([]types.OrderIntent{{Action: types.Sell, Side: types.Long, Price: c.Last, Qty: 10, Tag: "t"}})
	if result.Accepted {
		t.Fatal("expected a close order larger than the open position to be dropped")
	}
	if len(gw.Open()) != 0 {
		t.Fatal("expected nothing forwarded to the wrapped gateway")
	}
}

func TestEventRouterSellRejectsOpeningShortWithNoShortPosition(t *testing.T) {
	r, c, gw := newTestRouter()
	machine := NewSwingStateMachine(testSwingConfig(), c, gw, nil, 100000)
	r.Attach(machine)
	r.OnProfitChanged(0, 0, 0, 0) // no open short position

	// on_sell is position-capped on every Sell intent, independent of
	// whether it opens or closes a position, mirroring original_source/
	// strategy.py: a Sell is never cash-checked, only position-checked.
	result := r.Sell([]types.OrderIntent{{Action: types.Sell, Side: types.Short, Price: c.Last, Qty: 5, Tag: "t"}})
	if result.Accepted {
		t.Fatal("expected a sell exceeding the (zero) open short position to be dropped")
	}
}

func TestEventRouterSellWithinOpenShortPositionIsAccepted(t *testing.T) {
	r, c, gw := newTestRouter()
	machine := NewSwingStateMachine(testSwingConfig(), c, gw, nil, 100000)
	r.Attach(machine)
	r.OnProfitChanged(0, 0, 0, 5) // 5 open short contracts

	result := r.Sell([]types.OrderIntent{{Action: types.Sell, Side: types.Short, Price: c.Last, Qty: 5, Tag: "t"}})
	if !result.Accepted {
		t.Fatal("expected a sell within the open short position to be accepted")
	}
	if len(gw.Open()) != 1 {
		t.Fatalf("expected one open order on the wrapped gateway, got %d", len(gw.Open()))
	}
}

func TestEventRouterBuyLogsBrokerRefusal(t *testing.T) {
	c := newTestContract()
	c.MarginFee[types.Long] = types.MarginFee{MarginType: "ratio", MarginRate: 0.1}
	gw := testutils.NewMockGateway()
	log := testutils.NewMockLogger()
	r := NewEventRouter(log, c, gw, 1000000)

	gw.RejectNext()
	result := r.Buy([]types.OrderIntent{{Action: types.Buy, Side: types.Long, Price: c.Last, Qty: 5, Tag: "t"}})
	if result.Accepted {
		t.Fatal("expected the broker rejection to propagate")
	}
	if got := log.LastMessage(); got != "broker refused order" {
		t.Fatalf("expected broker refusal to be logged, got %q", got)
	}
}

func TestEventRouterOnMarketDataAdvancesMachine(t *testing.T) {
	r, c, gw := newTestRouter()
	cfg := testSwingConfig()
	machine := NewSwingStateMachine(cfg, c, gw, nil, 100000)
	r.Attach(machine)

	md := baseMarketData()
	md.Last = 50.0 // below the 105 open price, triggers the long start condition
	r.OnMarketData(md, time.Now())
	if machine.State() == StateStart {
		t.Fatal("expected the machine to leave Start once the open price condition is met")
	}
}
