package abc_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"abcost/internal/abc"
	"abcost/internal/model"
)

func TestDriverUnitsIndexLookup(t *testing.T) {
	idx := abc.NewDriverUnitsIndex(&model.FlightEvent{
		Flight: "Total",
		Drivers: map[string]float64{
			"Distance":    500,
			" Passengers": 400, // 列名带空白也应命中
		},
	})

	assert.Equal(t, 2, idx.Len())
	assert.InDelta(t, 500, idx.Lookup("Distance"), 1e-9)
	assert.InDelta(t, 500, idx.Lookup("  Distance  "), 1e-9)
	assert.InDelta(t, 400, idx.Lookup("Passengers"), 1e-9)
}

func TestDriverUnitsIndexMisses(t *testing.T) {
	idx := abc.NewDriverUnitsIndex(&model.FlightEvent{
		Drivers: map[string]float64{"Distance": 500},
	})

	assert.Zero(t, idx.Lookup(""))
	assert.Zero(t, idx.Lookup("   "))
	assert.Zero(t, idx.Lookup("Weight"))
}

func TestDriverUnitsIndexNilTotals(t *testing.T) {
	idx := abc.NewDriverUnitsIndex(nil)

	assert.Zero(t, idx.Len())
	assert.Zero(t, idx.Lookup("Distance"))
}

func TestDriverUnitsIndexSkipsNaN(t *testing.T) {
	idx := abc.NewDriverUnitsIndex(&model.FlightEvent{
		Drivers: map[string]float64{
			"Distance": 500,
			"Weight":   math.NaN(),
		},
	})

	assert.Equal(t, 1, idx.Len())
	assert.Zero(t, idx.Lookup("Weight"))
}
