package query

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/WessleyAI/car-explorer/engine/catalog"
)

type sortItem struct {
	car  catalog.Car
	name string
}

// Sort returns a stably sorted copy of records. Names compare
// case-insensitively after Unicode case folding. Unknown keys keep the input
// order.
func Sort(records []catalog.Car, key SortKey, order Order) []catalog.Car {
	compare := comparator(key)
	if compare == nil {
		return append(make([]catalog.Car, 0, len(records)), records...)
	}

	items := make([]sortItem, len(records))
	var fold cases.Caser
	if key == SortName {
		fold = cases.Fold()
	}
	for i, c := range records {
		items[i].car = c
		if key == SortName {
			items[i].name = fold.String(c.Name)
		}
	}

	slices.SortStableFunc(items, func(a, b sortItem) int {
		if order == OrderDesc {
			return -compare(a, b)
		}
		return compare(a, b)
	})

	out := make([]catalog.Car, len(items))
	for i, it := range items {
		out[i] = it.car
	}
	return out
}

func comparator(key SortKey) func(a, b sortItem) int {
	switch key {
	case SortPrice:
		return func(a, b sortItem) int { return cmp.Compare(a.car.Price, b.car.Price) }
	case SortHorsepower:
		return func(a, b sortItem) int { return cmp.Compare(a.car.Horsepower, b.car.Horsepower) }
	case SortYear:
		return func(a, b sortItem) int { return cmp.Compare(a.car.Year, b.car.Year) }
	case SortName:
		return func(a, b sortItem) int { return strings.Compare(a.name, b.name) }
	}
	return nil
}
