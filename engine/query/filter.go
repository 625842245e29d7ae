package query

import (
	"strings"

	"github.com/WessleyAI/car-explorer/engine/catalog"
	"github.com/WessleyAI/car-explorer/pkg/fn"
)

type predicate func(catalog.Car) bool

// Filter returns the records satisfying every constraint in c, in input
// order. The search term matches name, brand or category case-insensitively.
func Filter(records []catalog.Car, c Criteria) []catalog.Car {
	preds := predicates(c)
	return fn.Filter(records, func(car catalog.Car) bool {
		for _, p := range preds {
			if !p(car) {
				return false
			}
		}
		return true
	})
}

func predicates(c Criteria) []predicate {
	var preds []predicate
	if term := strings.ToLower(strings.TrimSpace(c.Search)); term != "" {
		preds = append(preds, func(car catalog.Car) bool {
			return strings.Contains(strings.ToLower(car.Name), term) ||
				strings.Contains(strings.ToLower(car.Brand), term) ||
				strings.Contains(strings.ToLower(car.Category), term)
		})
	}
	if c.Category != "" && c.Category != AllCategories {
		preds = append(preds, func(car catalog.Car) bool { return car.Category == c.Category })
	}
	preds = appendBounds(preds, c.MinPrice, c.MaxPrice, func(car catalog.Car) float64 { return car.Price })
	preds = appendBounds(preds, c.MinHorsepower, c.MaxHorsepower, func(car catalog.Car) float64 { return car.Horsepower })
	return preds
}

func appendBounds(preds []predicate, lo, hi *float64, value func(catalog.Car) float64) []predicate {
	if lo != nil {
		floor := *lo
		preds = append(preds, func(car catalog.Car) bool { return value(car) >= floor })
	}
	if hi != nil {
		ceil := *hi
		preds = append(preds, func(car catalog.Car) bool { return value(car) <= ceil })
	}
	return preds
}
