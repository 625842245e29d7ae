package compare

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/WessleyAI/car-explorer/engine/catalog"
	"github.com/WessleyAI/car-explorer/pkg/fn"
)

// NeedMoreCars is the summary of a comparison with fewer than two cars.
const NeedMoreCars = "Add more cars to compare"

// FormatValue renders v for display. Missing values are "N/A"; unknown
// formats render the plain value.
func FormatValue(v any, f Format) string {
	if v == nil {
		return "N/A"
	}
	switch f {
	case FormatCurrency:
		if n, ok := number(v); ok {
			return "$" + humanize.Commaf(n)
		}
		return "$" + plain(v)
	case FormatHP:
		return plain(v) + " HP"
	case FormatSeconds:
		return plain(v) + "s"
	case FormatMPH:
		return plain(v) + " mph"
	}
	return plain(v)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func plain(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	}
	return fmt.Sprint(v)
}

// Summary describes a comparison in one sentence.
func Summary(cars []catalog.Car) string {
	if len(cars) < 2 {
		return NeedMoreCars
	}
	w := OverallWinner(cars).Winner
	price := func(c catalog.Car) float64 { return c.Price }
	lo, _ := fn.Extreme(cars, price, false)
	hi, _ := fn.Extreme(cars, price, true)

	plural := "s"
	if len(w.Wins) == 1 {
		plural = ""
	}
	return fmt.Sprintf("Comparing %d vehicles. %s leads with %d performance advantage%s. Price range: $%s - $%s.",
		len(cars), w.Name, len(w.Wins), plural, humanize.Commaf(lo), humanize.Commaf(hi))
}

var icons = map[string]string{
	"sports":   "🏎️",
	"suv":      "🚙",
	"luxury":   "💎",
	"electric": "⚡",
	"hybrid":   "🔋",
}

// CategoryIcon returns the emoji shown next to a category.
func CategoryIcon(category string) string {
	if icon, ok := icons[category]; ok {
		return icon
	}
	return "🚗"
}
