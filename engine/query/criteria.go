// Package query filters, sorts and summarises catalog records. Every
// function is pure: inputs are never mutated and results are new slices.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/schema"
)

// ErrInvalidCriteria wraps query-string decoding failures.
var ErrInvalidCriteria = errors.New("invalid criteria")

// AllCategories disables the category filter.
const AllCategories = "all"

// Criteria are the optional filter constraints. A nil bound is unbounded.
type Criteria struct {
	Search        string   `schema:"search" json:"search,omitempty"`
	Category      string   `schema:"category" json:"category,omitempty"`
	MinPrice      *float64 `schema:"minPrice" json:"minPrice,omitempty"`
	MaxPrice      *float64 `schema:"maxPrice" json:"maxPrice,omitempty"`
	MinHorsepower *float64 `schema:"minHorsepower" json:"minHorsepower,omitempty"`
	MaxHorsepower *float64 `schema:"maxHorsepower" json:"maxHorsepower,omitempty"`
}

// Empty reports whether c constrains nothing.
func (c Criteria) Empty() bool {
	return strings.TrimSpace(c.Search) == "" &&
		(c.Category == "" || c.Category == AllCategories) &&
		c.MinPrice == nil && c.MaxPrice == nil &&
		c.MinHorsepower == nil && c.MaxHorsepower == nil
}

// SortKey names a sortable attribute.
type SortKey string

const (
	SortName       SortKey = "name"
	SortPrice      SortKey = "price"
	SortHorsepower SortKey = "horsepower"
	SortYear       SortKey = "year"
)

// Order is the sort direction. Anything other than OrderDesc sorts
// ascending.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// SortSpec selects the sort key and direction.
type SortSpec struct {
	By    SortKey `json:"sortBy"`
	Order Order   `json:"order"`
}

// DefaultSort orders by name, ascending.
var DefaultSort = SortSpec{By: SortName, Order: OrderAsc}

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// nonEmpty drops blank parameters so that "minPrice=" means unbounded.
func nonEmpty(v url.Values) map[string][]string {
	out := make(map[string][]string, len(v))
	for k, vals := range v {
		for _, s := range vals {
			if strings.TrimSpace(s) != "" {
				out[k] = append(out[k], s)
			}
		}
	}
	return out
}

// DecodeCriteria reads Criteria from query parameters of the same names.
// Unknown keys are ignored; a malformed number is ErrInvalidCriteria.
func DecodeCriteria(v url.Values) (Criteria, error) {
	var c Criteria
	if err := decoder.Decode(&c, nonEmpty(v)); err != nil {
		return Criteria{}, fmt.Errorf("query: %w: %w", ErrInvalidCriteria, err)
	}
	return c, nil
}

// DecodeSort reads sortBy and order, falling back to DefaultSort for absent
// values.
func DecodeSort(v url.Values) SortSpec {
	s := DefaultSort
	if by := strings.TrimSpace(v.Get("sortBy")); by != "" {
		s.By = SortKey(by)
	}
	if o := strings.TrimSpace(v.Get("order")); o != "" {
		s.Order = Order(o)
	}
	return s
}
