package swing

import (
	"math"
	"strconv"
	"strings"

	"github.com/quantedge/swingcore/types"
)

// comparedFloat mirrors original_source/constants.py's COMPARED_FLOAT, the
// tolerance used to decide whether a market-data field carries the
// "use cached" sentinel.
const comparedFloat = 0.0000001

// Contract tracks one instrument's specs and latest market snapshot.
// Grounded on original_source/strategy.py's Contract dataclass.
type Contract struct {
	Symbol       string
	InstrumentID string

	Tick   float64
	Unit   float64
	Decimal int

	MarginFee map[types.Side]types.MarginFee

	Last      float64
	Bid       float64
	Ask       float64
	BidVolume float64
	AskVolume float64
	LowLimit  float64
	HighLimit float64

	cachedUnit float64
	cachedTick float64
}

// NewContract returns a Contract with an empty fee table, ready for its
// first Update.
func NewContract(symbol, instrumentID string) *Contract {
	return &Contract{
		Symbol:       symbol,
		InstrumentID: instrumentID,
		MarginFee:    map[types.Side]types.MarginFee{},
	}
}

// Round rounds price to the contract's tick grid and decimal precision.
func (c *Contract) Round(price float64) float64 {
	if c.Tick == 0 {
		return price
	}
	ticks := math.Round(price / c.Tick)
	return roundDecimal(ticks*c.Tick, c.Decimal)
}

func roundDecimal(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}

// numberOfDecimals derives the decimal precision implied by a tick size,
// e.g. 0.25 -> 2, 1 -> 0. Grounded on original_source/utils.py:get_number_of_decimal.
func numberOfDecimals(tick float64) int {
	if tick <= 0 {
		return 0
	}
	s := strconv.FormatFloat(tick, 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	if dot == -1 {
		return 0
	}
	frac := s[dot+1:]
	if frac == "0" {
		return 0
	}
	return len(frac)
}

// ValidatePrice reports whether price is within the contract's current
// low/high exchange limits. Grounded on original_source/strategy.py's
// on_buy/on_sell price_valid check.
func (c *Contract) ValidatePrice(price float64) bool {
	return price >= c.LowLimit && price <= c.HighLimit
}

// Update applies a MarketData tick to the contract. Per spec.md section 7 /
// SPEC_FULL.md section 6, a non-numeric or non-positive tick/unit value
// aborts the whole update (ErrInvalidTickSize / ErrInvalidContractUnit) with
// no partial mutation; all other fields are validated and applied
// independently, a bad field simply left at its previous value, exactly as
// original_source/strategy.py:_update_contract_market tolerates per-field
// failures inside a try/except.
func (c *Contract) Update(md types.MarketData) error {
	unit := md.UnitSize
	if closeTo(unit, types.InvalidValue) {
		unit = c.cachedUnit
	}
	tick := md.TickSize
	if closeTo(tick, types.InvalidValue) {
		tick = c.cachedTick
	}
	if unit <= 0 || math.IsNaN(unit) {
		return NewError(ErrInvalidContractUnit, "contract unit must be a positive number")
	}
	if tick <= 0 || math.IsNaN(tick) {
		return NewError(ErrInvalidTickSize, "tick size must be a positive number")
	}
	c.cachedUnit, c.cachedTick = unit, tick
	c.Unit = unit
	c.Tick = tick
	c.Decimal = numberOfDecimals(tick)

	c.applyPriceField(&c.LowLimit, md.LowLimit)
	c.applyPriceField(&c.HighLimit, md.HighLimit)
	c.applyPriceField(&c.Last, md.Last)
	c.applyPriceField(&c.Bid, md.Bid)
	c.applyPriceField(&c.Ask, md.Ask)
	c.applyVolumeField(&c.BidVolume, md.BidVolume)
	c.applyVolumeField(&c.AskVolume, md.AskVolume)
	return nil
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < comparedFloat
}

func (c *Contract) applyPriceField(dst *float64, v float64) {
	if v < 0 {
		return
	}
	*dst = c.Round(v)
}

func (c *Contract) applyVolumeField(dst *float64, v float64) {
	if v < 0 {
		return
	}
	*dst = math.Round(v)
}

// CheckMarginFee reports ErrInvalidMarginFee if the fee table has not been
// populated for side, mirroring original_source/strategy.py's
// _check_margin_fee guard raised before processing a tick.
func (c *Contract) CheckMarginFee(side types.Side) error {
	if _, ok := c.MarginFee[side]; !ok {
		return NewError(ErrInvalidMarginFee, "margin fee table not populated for "+string(side))
	}
	return nil
}
