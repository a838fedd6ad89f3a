package swing

import (
	"testing"

	"github.com/quantedge/swingcore/types"
)

func TestNumberOfDecimals(t *testing.T) {
	cases := map[float64]int{
		1:    0,
		0.5:  1,
		0.25: 2,
		0.1:  1,
	}
	for tick, want := range cases {
		if got := numberOfDecimals(tick); got != want {
			t.Fatalf("numberOfDecimals(%v) = %d, want %d", tick, got, want)
		}
	}
}

func baseMarketData() types.MarketData {
	return types.MarketData{
		Symbol:    "CL",
		Last:      100.25,
		Bid:       100.0,
		Ask:       100.5,
		BidVolume: 10,
		AskVolume: 12,
		LowLimit:  90,
		HighLimit: 110,
		UnitSize:  1000,
		TickSize:  0.25,
	}
}

func TestContractUpdateAppliesFields(t *testing.T) {
	c := NewContract("CL", "CL2512")
	if err := c.Update(baseMarketData()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Decimal != 2 {
		t.Fatalf("expected decimal 2 for tick 0.25, got %d", c.Decimal)
	}
	if c.Last != 100.25 {
		t.Fatalf("expected last 100.25, got %v", c.Last)
	}
	if c.Unit != 1000 {
		t.Fatalf("expected unit 1000, got %v", c.Unit)
	}
}

func TestContractUpdateRejectsNonPositiveTick(t *testing.T) {
	c := NewContract("CL", "CL2512")
	md := baseMarketData()
	md.TickSize = 0
	md.UnitSize = 1000
	if err := c.Update(md); err == nil {
		t.Fatal("expected error for zero tick size")
	}
}

func TestContractUpdateUsesCachedInvalidFields(t *testing.T) {
	c := NewContract("CL", "CL2512")
	if err := c.Update(baseMarketData()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	follow := baseMarketData()
	follow.TickSize = types.InvalidValue
	follow.UnitSize = types.InvalidValue
	follow.Last = 101.0
	if err := c.Update(follow); err != nil {
		t.Fatalf("unexpected error on cached-field update: %v", err)
	}
	if c.Tick != 0.25 || c.Unit != 1000 {
		t.Fatalf("expected cached tick/unit to be reused, got tick=%v unit=%v", c.Tick, c.Unit)
	}
	if c.Last != 101.0 {
		t.Fatalf("expected last to update to 101.0, got %v", c.Last)
	}
}

func TestContractUpdateToleratesBadField(t *testing.T) {
	c := NewContract("CL", "CL2512")
	if err := c.Update(baseMarketData()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := baseMarketData()
	bad.Bid = -1 // negative sentinel for "not provided"
	if err := c.Update(bad); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Bid != 100.0 {
		t.Fatalf("expected bid to remain at previous value, got %v", c.Bid)
	}
}

func TestValidatePrice(t *testing.T) {
	c := NewContract("CL", "CL2512")
	_ = c.Update(baseMarketData())
	if !c.ValidatePrice(95) {
		t.Fatal("expected 95 to be within limits")
	}
	if c.ValidatePrice(200) {
		t.Fatal("expected 200 to be outside limits")
	}
}

func TestCheckMarginFee(t *testing.T) {
	c := NewContract("CL", "CL2512")
	if err := c.CheckMarginFee(types.Long); err == nil {
		t.Fatal("expected error for missing margin fee entry")
	}
	c.MarginFee[types.Long] = types.MarginFee{MarginType: "ratio", MarginRate: 0.1}
	if err := c.CheckMarginFee(types.Long); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
