package swing

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/quantedge/swingcore/config"
	"github.com/quantedge/swingcore/executor"
	"github.com/quantedge/swingcore/logger"
	"github.com/quantedge/swingcore/metrics"
	"github.com/quantedge/swingcore/types"
)

// State is the top-level lifecycle state of the swing strategy. Grounded on
// original_source/swing_strategy.py's SWING_* state constants.
type State int

const (
	StateStart State = iota
	StateGridOsc
	StateReversal
	StateRiskyInit
	StateRiskyOsc
	StateStop
	StateFinish
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateGridOsc:
		return "GRID_OSC"
	case StateReversal:
		return "REVERSAL"
	case StateRiskyInit:
		return "RISKY_INIT"
	case StateRiskyOsc:
		return "RISKY_OSC"
	case StateStop:
		return "STOP"
	case StateFinish:
		return "FINISH"
	default:
		return "UNKNOWN"
	}
}

var zoneOrder = [4]string{"Net", "Inc", "Osc", "Dec"}

const (
	nGrids             = 8
	nGridsCancelOrder  = 12
	infiniteRetry      = 1<<31 - 1
	unboundedQtyCap    = 1e18
	unboundedSlippage  = 1e18

	trendReversalQtyRatio             = 0.4
	trendReversalRetryStep            = 3.0
	trendReversalPatientMaxRetry      = 1
	trendReversalAcceleratedMaxRetry  = infiniteRetry

	riskyInitMinPositionRatio    = 0.8
	riskyInitCutQtyRatio1        = 1.0 / 3.0
	riskyInitCutQtyRatio2        = 0.25
	riskyInitRetryStep           = 3.0
	riskyInitPatientMaxRetry     = 0
	riskyInitAcceleratedMaxRetry = infiniteRetry

	riskyOscBuyBackQtyRatio = 0.5
	riskyOscSellOffQtyRatio = 1.0 / 3.0

	stopGainLowerBoundTh    = 0.02
	stopRetryStep           = 3.0
	stopPatientMaxRetry     = 1
	stopAcceleratedMaxRetry = infiniteRetry
)

func indexOfZone(name string) int {
	for i, z := range zoneOrder {
		if z == name {
			return i
		}
	}
	return 0
}

func boolIdx(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SwingStateMachine runs the zone-based swing trading strategy end to end:
// it plans the grid zones, escalates into a trend reversal or a risk
// reduction sequence when conditions demand it, and finally trails out of
// the position on a profit stop. Grounded on
// original_source/swing_strategy.py:SwingStrategy.
type SwingStateMachine struct {
	log      logger.Logger
	gateway  executor.Gateway
	contract *Contract
	cfg      config.SwingConfig

	state                 State
	longShort             bool // false = long bias, true = short bias
	stateCleanup          bool
	nextStateAfterCleanup State

	zones             map[string]*GridOscillator
	startZone         string
	startZoneMidPrice float64
	activeZone        *GridOscillator
	decPeak           float64

	reversalOrders []*AdaptiveOrder

	riskyBaseVal      float64
	riskyBaseQty      float64
	riskyCutQty       float64
	riskyCutPrice     float64
	riskyInitOrderQty float64
	riskyInitOrders   []*AdaptiveOrder
	riskyOscZone      *GridOscillator

	maxGain    float64
	stopOrders []*AdaptiveOrder

	principal   float64
	nlv         float64
	gain        float64
	positionQty [2]float64 // [long, short] quantity available to close

	orderDict map[int64]*types.OrderRecord

	finished bool
}

// NewSwingStateMachine constructs a state machine ready to run from
// StateStart, mirroring strategy_config_on_start.
func NewSwingStateMachine(cfg config.SwingConfig, contract *Contract, gateway executor.Gateway, log logger.Logger, principal float64) *SwingStateMachine {
	longShort := cfg.Direction == "short"
	decPeak := math.Inf(-1)
	if longShort {
		decPeak = math.Inf(1)
	}
	return &SwingStateMachine{
		log:               log,
		gateway:           gateway,
		contract:          contract,
		cfg:               cfg,
		state:             StateStart,
		longShort:         longShort,
		zones:             map[string]*GridOscillator{},
		startZone:         cfg.StartZone,
		startZoneMidPrice: cfg.OpenPrice,
		decPeak:           decPeak,
		riskyBaseVal:      principal,
		maxGain:           math.Inf(-1),
		principal:         principal,
		orderDict:         map[int64]*types.OrderRecord{},
	}
}

// State returns the machine's current top-level state.
func (m *SwingStateMachine) State() State { return m.state }

// Finished reports whether the strategy has reached StateFinish.
func (m *SwingStateMachine) Finished() bool { return m.finished }

// UpdatePosition refreshes the one-way available-to-close quantities the
// machine sizes new orders against.
func (m *SwingStateMachine) UpdatePosition(long, short float64) {
	m.positionQty = [2]float64{long, short}
}

// UpdateProfit refreshes net liquidation value and unrealized gain, and
// republishes them to the nlv/gain gauges.
func (m *SwingStateMachine) UpdateProfit(nlv, gain float64) {
	m.nlv, m.gain = nlv, gain
	metrics.NLV.Set(nlv)
	metrics.Gain.Set(gain)
}

func (m *SwingStateMachine) transition(to State) {
	metrics.StateTransitions.WithLabelValues(m.state.String(), to.String()).Inc()
	if m.log != nil {
		m.log.Info("swing state transition", logger.String("from", m.state.String()), logger.String("to", to.String()))
	}
	m.state = to
}

// OnTick advances the strategy by one market-data tick. Grounded on
// original_source/swing_strategy.py:strategy_rules_on_tick.
func (m *SwingStateMachine) OnTick(now time.Time) {
	if m.state == StateStart && !m.swingStartRun() {
		return
	}

	blocked := false
	switch m.state {
	case StateGridOsc:
		blocked = m.swingGridOscTransition()
	case StateRiskyOsc:
		blocked = m.swingRiskyOscTransition()
	}
	if blocked {
		return
	}

	switch m.state {
	case StateGridOsc:
		m.swingGridOscRun(now)
	case StateReversal:
		m.swingReversalRun(now)
	case StateRiskyInit:
		m.swingRiskyInitRun(now)
	case StateRiskyOsc:
		m.swingRiskyOscRun(now)
	case StateStop:
		m.swingStopRun(now)
	case StateFinish:
		m.finished = true
		if m.log != nil {
			m.log.Info("swing deactivated")
		}
	}
}

func (m *SwingStateMachine) swingStartRun() bool {
	d := 1.0
	if m.longShort {
		d = -1.0
	}
	if d*(m.contract.Last-m.cfg.OpenPrice) > 0 {
		return false
	}
	if !strings.Contains(m.startZone, "Net") {
		m.transition(StateGridOsc)
	} else {
		// A Net-zone start pre-flips long_short; swingReversalRun flips it
		// back on its first tick, so the reversal orders and the zones that
		// follow keep the configured direction.
		m.longShort = !m.longShort
		m.transition(StateReversal)
	}
	return true
}

func (m *SwingStateMachine) setupZones(startZoneName string, startZoneMidPrice float64) {
	idx := indexOfZone(startZoneName)
	d := 1.0
	if m.longShort {
		d = -1.0
	}
	ph := m.cfg.MinOscHeight
	openBound := startZoneMidPrice - d*(float64(nGrids)/2+float64(idx)*nGrids)*ph
	closeBound := openBound + d*nGrids*ph

	for _, zoneName := range zoneOrder {
		lowBound := openBound
		if m.longShort {
			lowBound = closeBound
		}
		lowExt := (zoneName == zoneOrder[0] && !m.longShort) || (zoneName == zoneOrder[3] && m.longShort)
		highExt := (zoneName == zoneOrder[3] && !m.longShort) || (zoneName == zoneOrder[0] && m.longShort)

		openVal := m.cfg.BaseVolume * m.cfg.OpenOffsetVolume[zoneName]
		closeVal := m.cfg.BaseVolume * m.cfg.CloseOffsetVolume[zoneName]
		qtyOffsetLong, qtyOffsetShort := openVal, closeVal
		if m.longShort {
			qtyOffsetLong, qtyOffsetShort = closeVal, openVal
		}

		capMin, capMax := 0.0, unboundedQtyCap
		if m.longShort {
			capMin, capMax = -unboundedQtyCap, 0.0
		}

		m.zones[zoneName] = NewGridOscillator(
			m.log, zoneName, m.contract,
			lowBound, nGrids, ph,
			lowExt, highExt,
			m.cfg.TrailPriceTicks,
			m.cfg.BaseVolume, m.cfg.BaseVolume,
			qtyOffsetLong, qtyOffsetShort,
			startZoneMidPrice, 0,
			true,
			capMin, capMax,
			unboundedQtyCap, unboundedQtyCap,
		)

		openBound = closeBound
		closeBound = openBound + d*nGrids*ph
	}
	m.activeZone = m.zones[zoneOrder[idx]]
}

func (m *SwingStateMachine) isTrailingStopOnGainTriggered() bool {
	g0, gt := m.cfg.StopwinBasePercentage, m.cfg.TrailPercentage
	gainLowerBound := roundDecimal(m.principal*g0*(1-gt-stopGainLowerBoundTh), 2)
	isGainValid := m.gain >= gainLowerBound
	if !isGainValid {
		m.maxGain = math.Inf(-1)
	}
	m.maxGain = maxF(m.gain, m.maxGain)
	targetGain := roundDecimal(g0*m.principal, 2)
	trailingAmount := roundDecimal(m.maxGain-m.gain, 2)
	trailingTarget := roundDecimal(gt*m.maxGain, 2)
	return isGainValid && m.maxGain >= targetGain && trailingAmount >= trailingTarget
}

func (m *SwingStateMachine) swingGridOscTransition() bool {
	if m.activeZone != nil && (m.activeZone.State() == GridReq || m.activeZone.State() == GridSplit) {
		return true
	}

	switch {
	case m.stateCleanup:
		if len(m.orderDict) == 0 {
			m.transition(m.nextStateAfterCleanup)
			m.stateCleanup = false
		}

	case m.isTrailingStopOnGainTriggered():
		if len(m.orderDict) > 0 {
			m.stateCleanup = true
			m.nextStateAfterCleanup = StateStop
			m.cancelAllOrders()
		} else {
			m.transition(StateStop)
		}

	case m.activeZone != nil && strings.Contains(m.activeZone.Tag, "Dec"):
		if m.longShort {
			m.decPeak = minF(m.decPeak, m.contract.Last)
		} else {
			m.decPeak = maxF(m.decPeak, m.contract.Last)
		}
		d := 1.0
		if m.longShort {
			d = -1.0
		}
		reversalTrail := d * (1 - m.contract.Last/m.decPeak)
		if reversalTrail > m.cfg.TrendReversalPriceTrailRatio {
			if len(m.orderDict) > 0 {
				m.stateCleanup = true
				m.nextStateAfterCleanup = StateReversal
				m.cancelAllOrders()
			} else {
				m.transition(StateReversal)
			}
		}

	case m.activeZone != nil && strings.Contains(m.activeZone.Tag, "Net"):
		riskyTarget := (1 - m.cfg.RiskyZoneActivateLossRatio) * m.riskyBaseVal
		riskyTriggered := m.nlv < riskyTarget
		d := 1.0
		if m.longShort {
			d = -1.0
		}
		posQty := d * (m.positionQty[0] - m.positionQty[1])
		var riskyOrderQty float64
		switch {
		case posQty >= m.cfg.OpenVolume:
			riskyOrderQty = math.Floor(posQty * riskyInitCutQtyRatio1)
		case posQty >= riskyInitMinPositionRatio*m.cfg.OpenVolume:
			riskyOrderQty = math.Floor(posQty * riskyInitCutQtyRatio2)
		}
		riskyOscMin := minF(math.Floor(riskyOscBuyBackQtyRatio*riskyOrderQty), math.Floor(riskyOscSellOffQtyRatio*riskyOrderQty))
		if riskyTriggered && riskyOrderQty > 0 && riskyOscMin > 0 {
			m.riskyInitOrderQty = riskyOrderQty
			m.riskyBaseQty = posQty
			if len(m.orderDict) > 0 {
				m.stateCleanup = true
				m.nextStateAfterCleanup = StateRiskyInit
				m.cancelAllOrders()
			} else {
				m.transition(StateRiskyInit)
			}
		}
	}

	return m.stateCleanup
}

func (m *SwingStateMachine) swingRiskyOscTransition() bool {
	if m.riskyOscZone != nil && (m.riskyOscZone.State() == GridReq || m.riskyOscZone.State() == GridSplit) {
		return true
	}

	stateTransition := true
	switch {
	case m.stateCleanup:
		if len(m.orderDict) == 0 {
			m.transition(m.nextStateAfterCleanup)
			m.stateCleanup = false
		}

	case m.isTrailingStopOnGainTriggered():
		if len(m.orderDict) > 0 {
			m.stateCleanup = true
			m.nextStateAfterCleanup = StateStop
			m.cancelAllOrders()
		} else {
			m.transition(StateStop)
		}

	default:
		d := 1.0
		if m.longShort {
			d = -1.0
		}
		posQty := d * (m.positionQty[0] - m.positionQty[1])
		if posQty >= m.riskyBaseQty || m.nlv > m.riskyBaseVal {
			if len(m.orderDict) > 0 {
				m.stateCleanup = true
				m.nextStateAfterCleanup = StateGridOsc
				m.cancelAllOrders()
			} else {
				m.transition(StateGridOsc)
			}
		} else {
			stateTransition = false
		}
	}

	if stateTransition && !m.stateCleanup && m.riskyOscZone != nil && m.activeZone != nil {
		m.activeZone.peak = m.riskyOscZone.peak
		m.activeZone.lastOrderPrice = m.riskyOscZone.lastOrderPrice
		m.riskyOscZone = nil
		m.riskyBaseVal = m.nlv
		d := 1.0
		if m.longShort {
			d = -1.0
		}
		m.riskyBaseQty = d * (m.positionQty[0] - m.positionQty[1])
		m.riskyCutQty = 0
		m.riskyCutPrice = 0
	}

	return m.stateCleanup
}

func (m *SwingStateMachine) swingGridOscRun(now time.Time) {
	if len(m.zones) == 0 {
		m.setupZones(m.startZone, m.startZoneMidPrice)
	}
	m.activeZone.OnTickUpdate(m.contract.Last)

	lsSign := 1
	if m.longShort {
		lsSign = -1
	}
	for direction := 0; direction < 2; direction++ {
		d := 1
		if direction == 1 {
			d = -1
		}
		activeIdx := indexOfZone(m.activeZone.Tag)
		newIdx := activeIdx
		newZone := m.zones[zoneOrder[newIdx]]
		for !newZone.ext[direction] && float64(d)*(newZone.bounds[direction]-m.contract.Last) >= m.cfg.MinOscHeight {
			newIdx -= d * lsSign
			if newIdx < 0 || newIdx >= len(zoneOrder) {
				break
			}
			newZone = m.zones[zoneOrder[newIdx]]
		}
		if newIdx != activeIdx {
			newZone.lastOrderPrice = m.activeZone.lastOrderPrice
			newZone.peak = m.activeZone.peak
			newZone.OnTickUpdate(m.contract.Last)
			m.activeZone = newZone
			break
		}
	}

	legs, _, _ := m.activeZone.OnTickTrade(m.contract.Last, m.positionQty[0], m.positionQty[1])
	m.sendLimitOrder(legs)

	var toCancel []int64
	for id, rec := range m.orderDict {
		if absF(m.contract.Last-rec.Price) > nGridsCancelOrder*m.cfg.MinOscHeight {
			toCancel = append(toCancel, id)
		}
	}
	if len(toCancel) > 0 {
		m.cancelOrders(toCancel)
	}
}

func (m *SwingStateMachine) swingReversalRun(now time.Time) {
	if len(m.reversalOrders) == 0 {
		maxSlippage := float64(int(((float64(nGrids)*m.cfg.MinOscHeight)/2.0+m.cfg.MinOscHeight)/m.contract.Tick)) + 1
		if len(m.zones) > 0 {
			if decZone, ok := m.zones["Dec"]; ok {
				d := 1.0
				if m.longShort {
					d = -1.0
				}
				boundIdx := boolIdx(m.longShort)
				alt := float64(int((d*(m.contract.Last-decZone.bounds[boundIdx])+m.cfg.MinOscHeight)/m.contract.Tick)) + 1
				maxSlippage = maxF(maxSlippage, alt)
			}
		}

		// Flip on every entry: after a Dec-zone trend reversal this reverses
		// the direction; after a Net-zone SWING_START it undoes the pre-flip.
		m.longShort = !m.longShort

		posAvail := m.positionQty[boolIdx(m.longShort)]
		posAvailRev := m.positionQty[boolIdx(!m.longShort)]
		orderQty := math.Floor(trendReversalQtyRatio*m.cfg.OpenVolume) - (posAvail - posAvailRev)

		side := types.Long
		if m.longShort {
			side = types.Short
		}
		sell, buy, _, _, _ := CalcOrderParams(types.Buy, side, m.contract.Last, orderQty, "SWING_REVERSAL", &posAvail, &posAvailRev, true)
		sell.Tag, buy.Tag = "SWING_REVERSAL_SELL", "SWING_REVERSAL_BUY"

		for _, leg := range []OrderLeg{sell, buy} {
			if leg.Qty > 0 {
				price := leg.Price
				order := NewAdaptiveOrder(m.contract, leg.Action, leg.Side, leg.Qty, &price, leg.Tag,
					trendReversalRetryStep, trendReversalPatientMaxRetry, trendReversalAcceleratedMaxRetry, 0, 0, maxSlippage)
				m.reversalOrders = append(m.reversalOrders, order)
			}
		}
	}

	allFinished := true
	for _, order := range m.reversalOrders {
		if !m.runAdaptiveOrder(order, now) {
			allFinished = false
		}
	}

	if allFinished {
		filledQty, filledPrice := 0.0, 0.0
		for _, order := range m.reversalOrders {
			if order.FilledQty() <= 0 {
				continue
			}
			filledPrice = (filledQty*filledPrice + order.FilledQty()*order.FilledPrice()) / (filledQty + order.FilledQty())
			filledQty += order.FilledQty()
		}
		filledPrice = m.contract.Round(filledPrice)

		m.transition(StateGridOsc)
		m.zones = map[string]*GridOscillator{}
		m.startZone = "Net"
		if filledQty > 0 {
			m.startZoneMidPrice = filledPrice
		} else if len(m.reversalOrders) > 0 {
			m.startZoneMidPrice = m.contract.Last
		}
		m.activeZone = nil
		if m.longShort {
			m.decPeak = math.Inf(1)
		} else {
			m.decPeak = math.Inf(-1)
		}

		d := 1.0
		if m.longShort {
			d = -1.0
		}
		m.riskyBaseVal = m.nlv
		m.riskyBaseQty = d * (m.positionQty[0] - m.positionQty[1])
		m.riskyCutQty = 0
		m.riskyCutPrice = 0
		m.riskyInitOrderQty = 0
		m.riskyInitOrders = nil
		m.riskyOscZone = nil
		m.reversalOrders = nil
	}
}

func (m *SwingStateMachine) swingRiskyInitRun(now time.Time) {
	if len(m.riskyInitOrders) == 0 {
		side := types.Long
		if m.longShort {
			side = types.Short
		}
		posAvail := m.positionQty[boolIdx(m.longShort)]
		posAvailRev := m.positionQty[boolIdx(!m.longShort)]
		sell, buy, _, _, _ := CalcOrderParams(types.Sell, side, m.contract.Last, m.riskyInitOrderQty, "SWING_RISKY_INIT", &posAvail, &posAvailRev, true)
		sell.Tag, buy.Tag = "SWING_RISKY_INIT_SELL", "SWING_RISKY_INIT_BUY"

		for _, leg := range []OrderLeg{sell, buy} {
			if leg.Qty > 0 {
				price := leg.Price
				order := NewAdaptiveOrder(m.contract, leg.Action, leg.Side, leg.Qty, &price, leg.Tag,
					riskyInitRetryStep, riskyInitPatientMaxRetry, riskyInitAcceleratedMaxRetry, 0, 0, unboundedSlippage)
				m.riskyInitOrders = append(m.riskyInitOrders, order)
			}
		}
	}

	allFinished := true
	for _, order := range m.riskyInitOrders {
		if !m.runAdaptiveOrder(order, now) {
			allFinished = false
		}
	}

	if allFinished {
		m.riskyCutQty, m.riskyCutPrice = 0, 0
		for _, order := range m.riskyInitOrders {
			if order.FilledQty() <= 0 {
				continue
			}
			m.riskyCutPrice = (m.riskyCutPrice*m.riskyCutQty + order.FilledPrice()*order.FilledQty()) / (m.riskyCutQty + order.FilledQty())
			m.riskyCutQty += order.FilledQty()
		}
		m.riskyCutPrice = m.contract.Round(m.riskyCutPrice)
		m.transition(StateRiskyOsc)
		m.riskyInitOrderQty = 0
		m.riskyInitOrders = nil
	}
}

func (m *SwingStateMachine) swingRiskyOscRun(now time.Time) {
	if m.riskyOscZone == nil {
		lsInt := boolIdx(m.longShort)
		lowBound := m.riskyCutPrice - float64(1-lsInt)*m.cfg.MinOscHeight*nGrids
		qa := [2]float64{
			math.Floor(m.riskyCutQty * riskyOscBuyBackQtyRatio),
			math.Floor(m.riskyCutQty * riskyOscSellOffQtyRatio),
		}
		qaLong, qaShort := qa[lsInt], qa[1-lsInt]
		posQtyAfterCut := m.positionQty[0] - m.positionQty[1]
		capMin, capMax := posQtyAfterCut, m.riskyBaseQty
		if m.longShort {
			capMin, capMax = -m.riskyBaseQty, posQtyAfterCut
		}
		m.riskyOscZone = NewGridOscillator(
			m.log, "RISKY_OSC", m.contract,
			lowBound, nGrids, m.cfg.MinOscHeight,
			true, true,
			m.cfg.TrailPriceTicks,
			qaLong, qaShort,
			0, 0,
			m.riskyCutPrice, 0,
			false,
			capMin, capMax,
			unboundedQtyCap, unboundedQtyCap,
		)
	}

	m.riskyOscZone.OnTickUpdate(m.contract.Last)
	legs, _, _ := m.riskyOscZone.OnTickTrade(m.contract.Last, m.positionQty[0], m.positionQty[1])
	m.sendLimitOrder(legs)

	var toCancel []int64
	for id, rec := range m.orderDict {
		if absF(m.contract.Last-rec.Price) > nGridsCancelOrder*m.cfg.MinOscHeight {
			toCancel = append(toCancel, id)
		}
	}
	if len(toCancel) > 0 {
		m.cancelOrders(toCancel)
	}
}

func (m *SwingStateMachine) swingStopRun(now time.Time) {
	if len(m.stopOrders) == 0 {
		for direction := 0; direction < 2; direction++ {
			if m.positionQty[direction] <= 0 {
				continue
			}
			side := types.Long
			tagSuffix := "long"
			if direction == 1 {
				side = types.Short
				tagSuffix = "short"
			}
			price := m.contract.Last
			order := NewAdaptiveOrder(m.contract, types.Sell, side, m.positionQty[direction], &price, "SWING_STOP_"+tagSuffix,
				stopRetryStep, stopPatientMaxRetry, stopAcceleratedMaxRetry, 0, 0, unboundedSlippage)
			m.stopOrders = append(m.stopOrders, order)
		}
	}

	allFinished := true
	for _, order := range m.stopOrders {
		if !m.runAdaptiveOrder(order, now) {
			allFinished = false
		}
	}
	if allFinished {
		m.stopOrders = nil
		m.transition(StateFinish)
	}
}

// sendLimitOrder submits each non-zero leg to the gateway, records an open
// order on acceptance, and immediately routes success/failure to whichever
// zone owns the leg's tag.
func (m *SwingStateMachine) sendLimitOrder(legs []OrderLeg) {
	for _, leg := range legs {
		if leg.Qty <= 0 {
			continue
		}
		intent := types.OrderIntent{Action: leg.Action, Side: leg.Side, Price: leg.Price, Qty: leg.Qty, Tag: leg.Tag}
		var result types.BuySellResult
		if leg.Action == types.Buy {
			result = m.gateway.Buy([]types.OrderIntent{intent})
		} else {
			result = m.gateway.Sell([]types.OrderIntent{intent})
		}

		acks := append(append([]types.OrderAck{}, result.BuyOrders...), result.SellOrders...)
		if result.Accepted && len(acks) > 0 {
			for _, ack := range acks {
				m.orderDict[ack.OrderID] = &types.OrderRecord{
					OrderID: ack.OrderID, CreateTime: time.Time{}, Action: ack.Action, Side: ack.Side,
					Price: ack.Price, Qty: ack.Qty, Tag: ack.Tag, Status: types.StatusOpen,
				}
				metrics.OrdersSubmitted.WithLabelValues(ack.Tag).Inc()
				m.dispatchOrderSuccess(ack.Tag, ack.Price)
			}
		} else {
			m.dispatchOrderFail(leg.Tag)
		}
	}
}

func (m *SwingStateMachine) dispatchOrderSuccess(tag string, price float64) {
	switch m.state {
	case StateGridOsc:
		if zone, ok := m.zones[tag]; ok {
			zone.OnBuySellSuccess(price)
		}
	case StateRiskyOsc:
		if m.riskyOscZone != nil {
			m.riskyOscZone.OnBuySellSuccess(price)
		}
	}
}

func (m *SwingStateMachine) dispatchOrderFail(tag string) {
	switch m.state {
	case StateGridOsc:
		if zone, ok := m.zones[tag]; ok {
			zone.OnBuySellFail()
		}
	case StateRiskyOsc:
		if m.riskyOscZone != nil {
			m.riskyOscZone.OnBuySellFail()
		}
	}
}

// runAdaptiveOrder ticks a single AdaptiveOrder, submitting/cancelling
// through the gateway as directed, and reports whether the order has
// reached a terminal state (Filled or Cancelled).
func (m *SwingStateMachine) runAdaptiveOrder(order *AdaptiveOrder, now time.Time) bool {
	res := order.Tick(m.contract, now)
	switch res.Action {
	case TickSubmit:
		var result types.BuySellResult
		if res.Intent.Action == types.Buy {
			result = m.gateway.Buy([]types.OrderIntent{res.Intent})
		} else {
			result = m.gateway.Sell([]types.OrderIntent{res.Intent})
		}
		acks := append(append([]types.OrderAck{}, result.BuyOrders...), result.SellOrders...)
		if result.Accepted && len(acks) > 0 {
			ack := acks[0]
			m.orderDict[ack.OrderID] = &types.OrderRecord{
				OrderID: ack.OrderID, Action: ack.Action, Side: ack.Side,
				Price: ack.Price, Qty: ack.Qty, Tag: ack.Tag, Status: types.StatusOpen,
			}
			metrics.OrdersSubmitted.WithLabelValues(ack.Tag).Inc()
			order.OnBuySellSuccess(ack.OrderID, ack.Price, now)
		} else {
			order.OnBuySellFail()
		}
		return false

	case TickCancel:
		_ = m.gateway.Cancel(types.CancelRequest{Kind: types.CancelOrders, OrderIDs: []int64{res.CancelOrderID}})
		return false

	case TickCancelled, TickClosed:
		return true

	default:
		return false
	}
}

func (m *SwingStateMachine) cancelOrders(ids []int64) {
	_ = m.gateway.Cancel(types.CancelRequest{Kind: types.CancelOrders, OrderIDs: ids})
	for _, id := range ids {
		delete(m.orderDict, id)
	}
}

func (m *SwingStateMachine) cancelAllOrders() {
	_ = m.gateway.Cancel(types.CancelRequest{Kind: types.CancelAll})
	m.orderDict = map[int64]*types.OrderRecord{}
}

// OnTradeUpdate folds a fill against orderID into whichever sub-machine
// owns that order. Grounded on
// original_source/swing_strategy.py:strategy_rules_on_trade_update.
func (m *SwingStateMachine) OnTradeUpdate(orderID int64, price, qty float64) {
	rec, ok := m.orderDict[orderID]
	if !ok {
		if m.log != nil {
			m.log.Warn("trade update dropped",
				logger.Err(NewError(ErrUnknownOrderID, fmt.Sprintf("order %d not recorded", orderID))))
		}
		return
	}
	switch m.state {
	case StateGridOsc:
		if zone, ok := m.zones[rec.Tag]; ok {
			zone.OnTradeUpdate(rec.Action, rec.Side, price, qty)
		}
	case StateReversal:
		for _, o := range m.reversalOrders {
			if o.LastOrderID() == orderID {
				o.OnTradeUpdate(price, qty)
				break
			}
		}
	case StateRiskyInit:
		for _, o := range m.riskyInitOrders {
			if o.LastOrderID() == orderID {
				o.OnTradeUpdate(price, qty)
				break
			}
		}
	case StateRiskyOsc:
		if m.riskyOscZone != nil {
			m.riskyOscZone.OnTradeUpdate(rec.Action, rec.Side, price, qty)
		}
	case StateStop:
		for _, o := range m.stopOrders {
			if o.LastOrderID() == orderID {
				o.OnTradeUpdate(price, qty)
				break
			}
		}
	}
}

// OnOrderStatus routes a broker status update to whichever adaptive order
// owns orderID. Grounded on
// original_source/swing_strategy.py:strategy_rules_on_order_status.
func (m *SwingStateMachine) OnOrderStatus(orderID int64, status types.OrderStatus) {
	if _, ok := m.orderDict[orderID]; !ok {
		if m.log != nil {
			m.log.Warn("order status dropped",
				logger.Err(NewError(ErrUnknownOrderID, fmt.Sprintf("order %d not recorded", orderID))))
		}
		return
	}
	switch m.state {
	case StateReversal:
		for _, o := range m.reversalOrders {
			if o.LastOrderID() == orderID {
				o.OnOrderStatus(status)
				break
			}
		}
	case StateRiskyInit:
		for _, o := range m.riskyInitOrders {
			if o.LastOrderID() == orderID {
				o.OnOrderStatus(status)
				break
			}
		}
	case StateStop:
		for _, o := range m.stopOrders {
			if o.LastOrderID() == orderID {
				o.OnOrderStatus(status)
				break
			}
		}
	}
	if status.IsTerminal() {
		delete(m.orderDict, orderID)
	}
}
