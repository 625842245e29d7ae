package query

import (
	"math"
	"slices"

	"github.com/WessleyAI/car-explorer/engine/catalog"
	"github.com/WessleyAI/car-explorer/pkg/fn"
)

// Categories returns the distinct categories in ascending order.
func Categories(records []catalog.Car) []string {
	cats := fn.Unique(fn.Map(records, func(c catalog.Car) string { return c.Category }))
	slices.Sort(cats)
	return cats
}

// Stats summarises one numeric field.
type Stats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// StatsFor computes Stats for field over records. Avg is the mean rounded to
// the nearest integer, halves away from zero. Empty input or a non-numeric
// field gives the zero Stats.
func StatsFor(records []catalog.Car, field catalog.Field) Stats {
	if len(records) == 0 || !field.Numeric() {
		return Stats{}
	}
	value := func(c catalog.Car) float64 {
		v, _ := c.Number(field)
		return v
	}
	lo, _ := fn.Extreme(records, value, false)
	hi, _ := fn.Extreme(records, value, true)
	sum := fn.Reduce(records, 0.0, func(acc float64, c catalog.Car) float64 { return acc + value(c) })
	return Stats{Min: lo, Max: hi, Avg: math.Round(sum / float64(len(records)))}
}

// PriceStats is StatsFor over price.
func PriceStats(records []catalog.Car) Stats { return StatsFor(records, catalog.FieldPrice) }

// HorsepowerStats is StatsFor over horsepower.
func HorsepowerStats(records []catalog.Car) Stats { return StatsFor(records, catalog.FieldHorsepower) }
