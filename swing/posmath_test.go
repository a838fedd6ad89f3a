package swing

import (
	"testing"

	"github.com/quantedge/swingcore/types"
)

func TestUpdateTwoWayBuyLongOpensPositivePosition(t *testing.T) {
	_, qty, _ := UpdateTwoWay(0, 0, types.Buy, types.Long, 100, 10)
	if qty != 10 {
		t.Fatalf("expected opening a long to give qty 10, got %v", qty)
	}
}

func TestUpdateTwoWayBuyShortOpensNegativePosition(t *testing.T) {
	_, qty, _ := UpdateTwoWay(0, 0, types.Buy, types.Short, 100, 10)
	if qty != -10 {
		t.Fatalf("expected opening a short to give qty -10, got %v", qty)
	}
}

func TestUpdateTwoWaySellShortClosesTowardZero(t *testing.T) {
	_, qty, realized := UpdateTwoWay(100, -10, types.Sell, types.Short, 90, 10)
	if qty != 0 {
		t.Fatalf("expected covering the full short to zero out qty, got %v", qty)
	}
	if realized <= 0 {
		t.Fatalf("expected covering a short below entry price to realize a gain, got %v", realized)
	}
}

func TestUpdateTwoWaySellLongClosesTowardZero(t *testing.T) {
	_, qty, realized := UpdateTwoWay(100, 10, types.Sell, types.Long, 110, 10)
	if qty != 0 {
		t.Fatalf("expected selling the full long to zero out qty, got %v", qty)
	}
	if realized <= 0 {
		t.Fatalf("expected closing a long above entry price to realize a gain, got %v", realized)
	}
}

func TestUpdateOneWayTracksLongAndShortBooksIndependently(t *testing.T) {
	qty := [2]float64{}
	cma := [2]float64{}
	UpdateOneWay(&qty, &cma, types.Buy, types.Long, 100, 5)
	UpdateOneWay(&qty, &cma, types.Sell, types.Short, 90, 3)
	if qty[0] != 5 {
		t.Fatalf("expected long book qty 5, got %v", qty[0])
	}
	if qty[1] != -3 {
		t.Fatalf("expected short book qty -3, got %v", qty[1])
	}
	if cma[0] != 100 {
		t.Fatalf("expected long cma 100, got %v", cma[0])
	}
}
