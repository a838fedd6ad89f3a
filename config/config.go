package config

import (
	"errors"
	"fmt"
)

// ZoneOffsets is the open/close base-quantity offset multiplier pair for one
// named zone (Net/Inc/Osc/Dec), expressed as a fraction of BaseVolume.
type ZoneOffsets struct {
	Open  float64
	Close float64
}

// SwingConfig holds every user-tunable parameter of the swing strategy
// (spec.md section 6). Zone-keyed fields use the canonical zone names
// "Net", "Inc", "Osc", "Dec".
type SwingConfig struct {
	// Direction is the initial trading direction: "long" or "short".
	Direction string

	// StartZone is the starting operating zone name, e.g. "Net".
	StartZone string

	// OpenPrice is the starting price p0, the middle of the start zone.
	OpenPrice float64

	// OpenVolume is the max position quantity q_max.
	OpenVolume float64

	// BaseVolume is the oscillatory base quantity qa.
	BaseVolume float64

	// TrailPriceTicks is the universal price trailing amount pt, in price units.
	TrailPriceTicks float64

	// StopwinBasePercentage is g0, the profit gain ratio that arms trailing stop.
	StopwinBasePercentage float64

	// TrailPercentage is gt, the trailing-stop retracement ratio.
	TrailPercentage float64

	// OpenOffsetVolume and CloseOffsetVolume are per-zone base-quantity
	// offset multipliers, keyed by zone name.
	OpenOffsetVolume  map[string]float64
	CloseOffsetVolume map[string]float64

	// TrendReversalPriceTrailRatio is pls, the reversal-trigger trail ratio.
	TrendReversalPriceTrailRatio float64

	// MinOscHeight is ph, the minimum grid height in price units.
	MinOscHeight float64

	// RiskyZoneActivateLossRatio is g_risky, the NLV drawdown ratio that
	// arms the risky sub-state.
	RiskyZoneActivateLossRatio float64
}

// zoneNames lists the canonical zone names the config's offset maps must cover.
var zoneNames = []string{"Net", "Inc", "Osc", "Dec"}

// Validate checks that all fields are within sensible bounds, returning the
// first violation encountered.
func (c *SwingConfig) Validate() error {
	if c.Direction != "long" && c.Direction != "short" {
		return fmt.Errorf("direction %q must be \"long\" or \"short\"", c.Direction)
	}
	if c.StartZone == "" {
		return errors.New("start zone must not be empty")
	}
	if c.OpenVolume <= 0 {
		return fmt.Errorf("open volume (%f) must be positive", c.OpenVolume)
	}
	if c.BaseVolume <= 0 {
		return fmt.Errorf("base volume (%f) must be positive", c.BaseVolume)
	}
	if c.TrailPriceTicks <= 0 {
		return fmt.Errorf("trail price ticks (%f) must be positive", c.TrailPriceTicks)
	}
	if c.StopwinBasePercentage <= 0 || c.StopwinBasePercentage > 1 {
		return fmt.Errorf("stopwin base percentage (%f) must be in (0, 1]", c.StopwinBasePercentage)
	}
	if c.TrailPercentage <= 0 || c.TrailPercentage >= 1 {
		return fmt.Errorf("trail percentage (%f) must be in (0, 1)", c.TrailPercentage)
	}
	if c.TrendReversalPriceTrailRatio <= 0 {
		return fmt.Errorf("trend reversal price trail ratio (%f) must be positive", c.TrendReversalPriceTrailRatio)
	}
	if c.MinOscHeight <= 0 {
		return fmt.Errorf("min osc height (%f) must be positive", c.MinOscHeight)
	}
	if c.RiskyZoneActivateLossRatio <= 0 || c.RiskyZoneActivateLossRatio >= 1 {
		return fmt.Errorf("risky zone activate loss ratio (%f) must be in (0, 1)", c.RiskyZoneActivateLossRatio)
	}
	for _, z := range zoneNames {
		if _, ok := c.OpenOffsetVolume[z]; !ok {
			return fmt.Errorf("open offset volume missing zone %q", z)
		}
		if _, ok := c.CloseOffsetVolume[z]; !ok {
			return fmt.Errorf("close offset volume missing zone %q", z)
		}
	}
	return nil
}
