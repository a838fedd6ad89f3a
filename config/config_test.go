package config

import "testing"

func validConfig() SwingConfig {
	return SwingConfig{
		Direction:                    "long",
		StartZone:                    "Net",
		OpenPrice:                    100.0,
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

func TestValidateSuccess(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateFailsOnBadDirection(t *testing.T) {
	cfg := validConfig()
	cfg.Direction = "sideways"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bad direction")
	}
}

func TestValidateFailsOnMissingZoneOffset(t *testing.T) {
	cfg := validConfig()
	delete(cfg.OpenOffsetVolume, "Dec")
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for missing zone offset")
	}
}

func TestValidateFailsOnNonPositiveOscHeight(t *testing.T) {
	cfg := validConfig()
	cfg.MinOscHeight = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for non-positive min osc height")
	}
}
