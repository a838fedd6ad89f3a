package swing

import (
	"math"

	"github.com/quantedge/swingcore/logger"
	"github.com/quantedge/swingcore/metrics"
	"github.com/quantedge/swingcore/types"
)

// GridState is the lifecycle state of a GridOscillator.
type GridState string

const (
	GridInit  GridState = "INIT"
	GridReq   GridState = "REQ"
	GridSplit GridState = "SPLIT"
)

// directions indexes the long (0) and short (1) halves of a GridOscillator's
// per-side parameters, matching original_source/grid_osc_strategy.py.
const (
	dirLong  = 0
	dirShort = 1
)

// GridOscillator trades a fixed-height price grid inside a zone, escalating
// offset quantity by k whenever cumulative realized gain on the zone crosses
// a profit threshold. Grounded on
// original_source/grid_osc_strategy.py:GridOsc.
type GridOscillator struct {
	log      logger.Logger
	Tag      string
	contract *Contract

	nGrids int
	ph     float64 // grid height
	bounds [2]float64
	ext    [2]bool

	pt              float64    // trail amount
	qa              [2]float64 // base order qty, long/short
	qn              [2]float64 // offset order qty, long/short
	orderQtyScaling bool
	positionQtyCaps [2]float64 // min, max
	orderQtyCaps    [2]float64 // long, short

	state          GridState
	lastOrderPrice float64
	peak           [2]float64

	positionQty float64
	cmaPrice    float64
	k           float64
	kProfit     float64
	kProfitTh   float64
}

// NewGridOscillator constructs a GridOscillator in state Init over
// [lowBound, lowBound+nGrids*gridHeight].
func NewGridOscillator(
	log logger.Logger,
	tag string,
	contract *Contract,
	lowBound float64,
	nGrids int,
	gridHeight float64,
	lowExt, highExt bool,
	trailAmt float64,
	qtyBaseLong, qtyBaseShort float64,
	qtyOffsetLong, qtyOffsetShort float64,
	lastOrderPrice float64,
	kInit float64,
	qtyBaseScaling bool,
	positionQtyCapMin, positionQtyCapMax float64,
	orderQtyCapLong, orderQtyCapShort float64,
) *GridOscillator {
	g := &GridOscillator{
		log:             log,
		Tag:             tag,
		contract:        contract,
		nGrids:          nGrids,
		ph:              gridHeight,
		bounds:          [2]float64{lowBound, contract.Round(lowBound + float64(nGrids)*gridHeight)},
		ext:             [2]bool{lowExt, highExt},
		pt:              trailAmt,
		qa:              [2]float64{qtyBaseLong, qtyBaseShort},
		qn:              [2]float64{qtyOffsetLong, qtyOffsetShort},
		orderQtyScaling: qtyBaseScaling,
		positionQtyCaps: [2]float64{positionQtyCapMin, positionQtyCapMax},
		orderQtyCaps:    [2]float64{orderQtyCapLong, orderQtyCapShort},
		state:           GridInit,
		lastOrderPrice:  lastOrderPrice,
		peak:            [2]float64{lastOrderPrice, lastOrderPrice},
	}
	g.kProfitTh = g.profitThreshold()
	return g
}

func (g *GridOscillator) profitThreshold() float64 {
	return (g.bounds[1] - g.bounds[0]) * (float64(g.nGrids)*minF(g.qa[0], g.qa[1]) + g.k*minF(g.qn[0], g.qn[1])) * g.contract.Unit
}

// State returns the oscillator's current lifecycle state.
func (g *GridOscillator) State() GridState { return g.state }

// Bounds returns the zone's current [low, high] price bounds.
func (g *GridOscillator) Bounds() [2]float64 { return g.bounds }

func (g *GridOscillator) updateLastOrderPrice(price float64) {
	g.lastOrderPrice = price
	g.peak = [2]float64{price, price}
}

// zoneExpand widens the zone bound that price has broken through, if that
// side is configured to extend.
func (g *GridOscillator) zoneExpand(price float64) {
	for direction := 0; direction < 2; direction++ {
		d := 1.0
		if direction == 1 {
			d = -1.0
		}
		if g.ext[direction] && d*(price-g.bounds[direction]) < 0 {
			extraGrids := int(math.Ceil(d * (g.bounds[direction] - price) / g.ph))
			g.nGrids += extraGrids
			g.bounds[direction] = g.contract.Round(g.bounds[direction] - d*float64(extraGrids)*g.ph)
			g.kProfitTh = g.profitThreshold()
			break
		}
	}
}

// OnTickUpdate refreshes the running peak/valley and expands the zone if
// price has broken through an extendable bound.
func (g *GridOscillator) OnTickUpdate(price float64) {
	g.peak[dirLong] = minF(g.peak[dirLong], price)
	g.peak[dirShort] = maxF(g.peak[dirShort], price)
	if g.ext[0] || g.ext[1] {
		g.zoneExpand(price)
	}
}

// OnTickTrade evaluates the grid's trading rules for a new trade price,
// returning any order legs to submit and the (possibly updated)
// available-to-close position figures. positionLong/positionShort are the
// caller's one-way books: quantity currently available to close on the long
// and short side respectively.
func (g *GridOscillator) OnTickTrade(tradePrice, positionLong, positionShort float64) (legs []OrderLeg, newPositionLong, newPositionShort float64) {
	newPositionLong, newPositionShort = positionLong, positionShort
	if g.state == GridReq || g.state == GridSplit {
		return nil, newPositionLong, newPositionShort
	}

	positionQty := positionLong - positionShort
	posQtyCaps := [2]float64{
		g.positionQtyCaps[1] - positionQty,
		positionQty - g.positionQtyCaps[0],
	}

	for direction := 0; direction < 2; direction++ {
		d := 1.0
		if direction == 1 {
			d = -1.0
		}
		peak := g.peak[direction]
		if g.contract.Round(d*(g.lastOrderPrice-tradePrice)) >= g.ph &&
			g.contract.Round(d*(tradePrice-peak)) >= g.pt {
			scale := math.Floor(d * (g.lastOrderPrice - tradePrice) / g.ph)
			if !g.orderQtyScaling {
				scale = minF(1, scale)
			}
			orderQty := 0.0
			if scale > 0 {
				orderQty = scale*g.qa[direction] + g.k*g.qn[direction]
			}
			if g.log != nil {
				g.log.Debug("grid order qty computed",
					logger.String("tag", g.Tag),
					logger.Int("direction", direction),
					logger.Float64("scale", scale),
					logger.Float64("order_qty", orderQty),
				)
			}
			orderQty = minF(orderQty, posQtyCaps[direction])
			orderQty = minF(orderQty, g.orderQtyCaps[direction])

			if orderQty > 0 {
				action := types.Buy
				if direction == dirShort {
					action = types.Sell
				}
				posLongPtr, posShortPtr := &newPositionLong, &newPositionShort
				sell, buy, updatedLong, updatedShort, split := CalcOrderParams(
					action, types.Long, tradePrice, orderQty, g.Tag, posLongPtr, posShortPtr, true)
				if updatedLong != nil {
					newPositionLong = *updatedLong
				}
				if updatedShort != nil {
					newPositionShort = *updatedShort
				}
				if sell.Qty > 0 {
					legs = append(legs, sell)
				}
				if buy.Qty > 0 {
					legs = append(legs, buy)
				}
				if split {
					g.state = GridSplit
				} else {
					g.state = GridReq
				}
			}
			break
		}
	}
	return legs, newPositionLong, newPositionShort
}

// OnBuySellFail retreats the oscillator one step back toward Init so the
// next tick re-evaluates trading conditions from scratch.
func (g *GridOscillator) OnBuySellFail() {
	switch g.state {
	case GridSplit:
		g.state = GridReq
	case GridReq:
		g.state = GridInit
	}
}

// OnBuySellSuccess advances the oscillator's state on a confirmed order and
// re-anchors last_order_price/peak to the confirmed price.
func (g *GridOscillator) OnBuySellSuccess(orderPrice float64) {
	switch g.state {
	case GridSplit:
		g.state = GridReq
	case GridReq:
		g.state = GridInit
	}
	g.updateLastOrderPrice(orderPrice)
}

// OnTradeUpdate folds a new fill into the oscillator's internal two-way
// position/cost basis and bumps the offset scale k whenever accumulated
// realized gain clears the zone's current profit threshold.
func (g *GridOscillator) OnTradeUpdate(action types.Action, side types.Side, price, qty float64) {
	cma, posQty, realizedGain := UpdateTwoWay(g.cmaPrice, g.positionQty, action, side, price, qty)
	g.cmaPrice, g.positionQty = cma, posQty
	g.kProfit += realizedGain * g.contract.Unit
	if g.kProfit > g.kProfitTh {
		g.k++
		metrics.KBumps.WithLabelValues(g.Tag).Inc()
		g.kProfit = 0.0
		g.kProfitTh += (g.bounds[1] - g.bounds[0]) * minF(g.qn[0], g.qn[1]) * g.contract.Unit
	}
}
