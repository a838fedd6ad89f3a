package swing

import (
	"testing"
	"time"

	"github.com/quantedge/swingcore/config"
	"github.com/quantedge/swingcore/executor"
)

func testSwingConfig() config.SwingConfig {
	return config.SwingConfig{
		Direction:                    "long",
		StartZone:                    "Inc",
		OpenPrice:                    105.0,
		OpenVolume:                   20,
		BaseVolume:                   2,
		TrailPriceTicks:              0.5,
		StopwinBasePercentage:        0.1,
		TrailPercentage:              0.3,
		TrendReversalPriceTrailRatio: 0.02,
		MinOscHeight:                 1.0,
		RiskyZoneActivateLossRatio:   0.15,
		OpenOffsetVolume: map[string]float64{
			"Net": 0, "Inc": 0.5, "Osc": 1, "Dec": 0.5,
		},
		CloseOffsetVolume: map[string]float64{
			"Net": 0, "Inc": 0.5, "Osc": 1, "Dec": 0.5,
		},
	}
}

func newTestStateMachine(cfg config.SwingConfig) (*SwingStateMachine, *executor.PaperGateway) {
	c := newTestContract()
	gw := executor.NewPaperGateway()
	m := NewSwingStateMachine(cfg, c, gw, nil, 100000)
	return m, gw
}

func TestNewSwingStateMachineStartsInStateStart(t *testing.T) {
	m, _ := newTestStateMachine(testSwingConfig())
	if m.State() != StateStart {
		t.Fatalf("expected initial state Start, got %v", m.State())
	}
}

func TestSwingStartRunTransitionsToGridOscWhenZoneNotNet(t *testing.T) {
	m, _ := newTestStateMachine(testSwingConfig())
	if !m.swingStartRun() {
		t.Fatal("expected start run to trigger immediately")
	}
	if m.State() != StateGridOsc {
		t.Fatalf("expected transition to GridOsc for non-Net start zone, got %v", m.State())
	}
}

func TestSwingStartRunTransitionsToReversalWhenZoneIsNet(t *testing.T) {
	cfg := testSwingConfig()
	cfg.StartZone = "Net"
	m, _ := newTestStateMachine(cfg)
	if !m.swingStartRun() {
		t.Fatal("expected start run to trigger immediately")
	}
	if m.State() != StateReversal {
		t.Fatalf("expected transition to Reversal for Net start zone, got %v", m.State())
	}
	if !m.longShort {
		t.Fatal("expected long_short pre-flipped on leaving Start, for the reversal to flip back")
	}
}

func TestSwingStartRunWaitsWhenPriceHasNotReachedOpen(t *testing.T) {
	cfg := testSwingConfig()
	cfg.OpenPrice = 50.0 // last (100.25) > open price, long bias must wait for price to drop to it
	m, _ := newTestStateMachine(cfg)
	if m.swingStartRun() {
		t.Fatal("expected start run to wait when price has not reached the open trigger")
	}
	if m.State() != StateStart {
		t.Fatalf("expected state to remain Start, got %v", m.State())
	}
}

func TestSwingGridOscRunSetsUpZonesOnFirstRun(t *testing.T) {
	m, _ := newTestStateMachine(testSwingConfig())
	m.state = StateGridOsc
	m.swingGridOscRun(time.Now())
	if len(m.zones) != 4 {
		t.Fatalf("expected 4 zones to be set up, got %d", len(m.zones))
	}
	if m.activeZone == nil {
		t.Fatal("expected an active zone after setup")
	}
}

func TestIsTrailingStopOnGainTriggeredFalseBelowTarget(t *testing.T) {
	m, _ := newTestStateMachine(testSwingConfig())
	m.UpdateProfit(100, 50) // far below the 10% stopwin target on a 100000 principal
	if m.isTrailingStopOnGainTriggered() {
		t.Fatal("expected trailing stop not triggered for a small gain")
	}
}

func TestIsTrailingStopOnGainTriggeredOnceTargetAndTrailClear(t *testing.T) {
	m, _ := newTestStateMachine(testSwingConfig())
	// g0=0.1 -> target gain = 10000. Reach a peak of 12000, then retrace to
	// 8000: still above the 6800 validity floor but more than gt=0.3 of the
	// 12000 peak has been given back, so the trailing exit arms.
	m.UpdateProfit(0, 12000)
	if m.isTrailingStopOnGainTriggered() {
		t.Fatal("should not trigger at the peak itself")
	}
	m.UpdateProfit(0, 8000)
	if !m.isTrailingStopOnGainTriggered() {
		t.Fatal("expected trailing stop triggered after retracing past the trail target")
	}
}

func TestSwingStopRunReachesFinishWhenNoPosition(t *testing.T) {
	m, _ := newTestStateMachine(testSwingConfig())
	m.state = StateStop
	m.positionQty = [2]float64{0, 0}
	m.swingStopRun(time.Now())
	if m.State() != StateFinish {
		t.Fatalf("expected immediate transition to Finish with no position, got %v", m.State())
	}
}

func TestSwingStopRunSubmitsExitOrderForOpenPosition(t *testing.T) {
	m, gw := newTestStateMachine(testSwingConfig())
	m.state = StateStop
	m.positionQty = [2]float64{5, 0}
	m.swingStopRun(time.Now())
	if len(m.stopOrders) != 1 {
		t.Fatalf("expected one stop order created, got %d", len(m.stopOrders))
	}
	if len(gw.Open()) == 0 {
		t.Fatal("expected the stop order's first quote to reach the gateway")
	}
}
