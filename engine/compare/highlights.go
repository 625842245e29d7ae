package compare

import (
	"slices"

	"github.com/WessleyAI/car-explorer/engine/catalog"
	"github.com/WessleyAI/car-explorer/pkg/fn"
)

// TrackedFields are the fields that get highlighted winners.
var TrackedFields = []catalog.Field{
	catalog.FieldHorsepower,
	catalog.FieldAcceleration,
	catalog.FieldTopSpeed,
	catalog.FieldPrice,
}

// Highlights maps each tracked field to the IDs of the cars holding its best
// value.
type Highlights map[catalog.Field][]int

// Winner returns the IDs, in input order, of the cars attaining the best
// value of field under polarity. Ties all win. A Neutral polarity or a
// non-numeric field has no winner.
func Winner(cars []catalog.Car, field catalog.Field, polarity catalog.Polarity) []int {
	if polarity == catalog.Neutral || !field.Numeric() {
		return []int{}
	}
	value := func(c catalog.Car) float64 {
		v, _ := c.Number(field)
		return v
	}
	best, ok := fn.Extreme(cars, value, polarity == catalog.HigherIsBetter)
	if !ok {
		return []int{}
	}
	return fn.FilterMap(cars, func(c catalog.Car) (int, bool) {
		return c.ID, value(c) == best
	})
}

// HighlightsFor computes the winners of every tracked field.
func HighlightsFor(cars []catalog.Car) Highlights {
	h := make(Highlights, len(TrackedFields))
	for _, f := range TrackedFields {
		h[f] = Winner(cars, f, f.Polarity())
	}
	return h
}

// IsHighlighted reports whether id holds the best value of field.
func IsHighlighted(h Highlights, field catalog.Field, id int) bool {
	return slices.Contains(h[field], id)
}
