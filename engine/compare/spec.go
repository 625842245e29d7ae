// Package compare builds side-by-side comparisons of catalog records:
// the display schema, per-field winners, an overall ranking and a one-line
// summary.
package compare

import "github.com/WessleyAI/car-explorer/engine/catalog"

// Format is the display format of a row value.
type Format string

const (
	FormatText     Format = ""
	FormatCurrency Format = "currency"
	FormatHP       Format = "hp"
	FormatSeconds  Format = "seconds"
	FormatMPH      Format = "mph"
)

// SpecRow is one line of the comparison table. Compare is Neutral for rows
// that have no winner.
type SpecRow struct {
	Label   string           `json:"label"`
	Key     catalog.Field    `json:"key"`
	Format  Format           `json:"format,omitempty"`
	Compare catalog.Polarity `json:"compare,omitempty"`
}

// SpecGroups is the fixed comparison schema.
type SpecGroups struct {
	General     []SpecRow `json:"general"`
	Performance []SpecRow `json:"performance"`
	Technical   []SpecRow `json:"technical"`
}

// Section is a titled group of rows, in display order.
type Section struct {
	Title string
	Rows  []SpecRow
}

// Sections returns the groups in display order.
func (g SpecGroups) Sections() []Section {
	return []Section{
		{Title: "General", Rows: g.General},
		{Title: "Performance", Rows: g.Performance},
		{Title: "Technical", Rows: g.Technical},
	}
}

// Specs returns a fresh copy of the comparison schema.
func Specs() SpecGroups {
	return SpecGroups{
		General: []SpecRow{
			{Label: "Brand", Key: catalog.FieldBrand},
			{Label: "Model Year", Key: catalog.FieldYear},
			{Label: "Category", Key: catalog.FieldCategory},
			{Label: "Price", Key: catalog.FieldPrice, Format: FormatCurrency},
		},
		Performance: []SpecRow{
			{Label: "Horsepower", Key: catalog.FieldHorsepower, Format: FormatHP, Compare: catalog.HigherIsBetter},
			{Label: "0-60 MPH", Key: catalog.FieldAcceleration, Format: FormatSeconds, Compare: catalog.LowerIsBetter},
			{Label: "Top Speed", Key: catalog.FieldTopSpeed, Format: FormatMPH, Compare: catalog.HigherIsBetter},
		},
		Technical: []SpecRow{
			{Label: "Fuel Type", Key: catalog.FieldFuelType},
			{Label: "Transmission", Key: catalog.FieldTransmission},
		},
	}
}
