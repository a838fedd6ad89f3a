package swing

import (
	"testing"

	"github.com/quantedge/swingcore/types"
)

func TestCalcOrderParamsSingleLegWhenNoPositionTracked(t *testing.T) {
	sell, buy, _, _, split := CalcOrderParams(types.Sell, types.Long, 100, 5, "t", nil, nil, true)
	if sell.Qty != 5 || buy.Qty != 0 {
		t.Fatalf("expected sell-only leg, got sell=%v buy=%v", sell.Qty, buy.Qty)
	}
	if split {
		t.Fatal("expected no split when position not tracked")
	}
}

func TestCalcOrderParamsSplitsWhenClosingMoreThanAvailable(t *testing.T) {
	avail := 3.0
	sell, buy, newAvail, _, split := CalcOrderParams(types.Sell, types.Long, 100, 5, "t", &avail, nil, true)
	if sell.Qty != 3 || buy.Qty != 2 {
		t.Fatalf("expected sell=3 buy=2, got sell=%v buy=%v", sell.Qty, buy.Qty)
	}
	if !split {
		t.Fatal("expected split when qty exceeds available position")
	}
	if *newAvail != 0 {
		t.Fatalf("expected position available to be fully consumed, got %v", *newAvail)
	}
}

func TestCalcOrderParamsBuyClosesReverseFirst(t *testing.T) {
	availReverse := 2.0
	sell, buy, _, newAvailReverse, split := CalcOrderParams(types.Buy, types.Long, 100, 5, "t", nil, &availReverse, true)
	if sell.Qty != 2 || buy.Qty != 3 {
		t.Fatalf("expected sell=2 (closing short) buy=3 (opening long), got sell=%v buy=%v", sell.Qty, buy.Qty)
	}
	if !split {
		t.Fatal("expected split")
	}
	if *newAvailReverse != 0 {
		t.Fatalf("expected reverse position to be fully consumed, got %v", *newAvailReverse)
	}
	if sell.Side != types.Short || buy.Side != types.Long {
		t.Fatalf("expected sell leg on Short side and buy leg on Long side, got sell=%v buy=%v", sell.Side, buy.Side)
	}
}

func TestCalcOrderParamsNoSplitWhenDisallowed(t *testing.T) {
	avail := 1.0
	sell, buy, _, _, split := CalcOrderParams(types.Sell, types.Long, 100, 5, "t", &avail, nil, false)
	if sell.Qty != 5 || buy.Qty != 0 {
		t.Fatalf("expected sell=5 buy=0 when split disallowed, got sell=%v buy=%v", sell.Qty, buy.Qty)
	}
	if split {
		t.Fatal("expected no split when disallowed")
	}
}
