package query

import "github.com/WessleyAI/car-explorer/engine/catalog"

// Result is one page of a catalog query.
type Result struct {
	Cars  []catalog.Car `json:"cars" toml:"cars"`
	Total int           `json:"total" toml:"total"`
}

// Apply filters records by c and sorts the matches by s.
func Apply(records []catalog.Car, c Criteria, s SortSpec) Result {
	cars := Sort(Filter(records, c), s.By, s.Order)
	return Result{Cars: cars, Total: len(cars)}
}
