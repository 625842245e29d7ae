// Package catalog holds the immutable car catalog: the record type, its
// field enumeration, validation, snapshot storage and the sources a snapshot
// can be loaded from.
package catalog

// Car is one catalog record. Records are never mutated after load.
type Car struct {
	ID           int     `json:"id" toml:"id"`
	Name         string  `json:"name" toml:"name"`
	Brand        string  `json:"brand" toml:"brand"`
	Category     string  `json:"category" toml:"category"`
	Year         int     `json:"year" toml:"year"`
	Price        float64 `json:"price" toml:"price"`
	Horsepower   float64 `json:"horsepower" toml:"horsepower"`
	Acceleration float64 `json:"acceleration" toml:"acceleration"`
	TopSpeed     float64 `json:"topSpeed" toml:"topSpeed"`
	FuelType     string  `json:"fuelType" toml:"fuelType"`
	Transmission string  `json:"transmission" toml:"transmission"`
	Image        string  `json:"image" toml:"image"`
}

// Field names a Car attribute. Values match the JSON names.
type Field string

const (
	FieldID           Field = "id"
	FieldName         Field = "name"
	FieldBrand        Field = "brand"
	FieldCategory     Field = "category"
	FieldYear         Field = "year"
	FieldPrice        Field = "price"
	FieldHorsepower   Field = "horsepower"
	FieldAcceleration Field = "acceleration"
	FieldTopSpeed     Field = "topSpeed"
	FieldFuelType     Field = "fuelType"
	FieldTransmission Field = "transmission"
	FieldImage        Field = "image"
)

// Fields lists every Field in declaration order.
var Fields = []Field{
	FieldID, FieldName, FieldBrand, FieldCategory, FieldYear, FieldPrice,
	FieldHorsepower, FieldAcceleration, FieldTopSpeed, FieldFuelType,
	FieldTransmission, FieldImage,
}

// ParseField maps a JSON attribute name to its Field.
func ParseField(s string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Numeric reports whether the field holds a number.
func (f Field) Numeric() bool {
	switch f {
	case FieldID, FieldYear, FieldPrice, FieldHorsepower, FieldAcceleration, FieldTopSpeed:
		return true
	}
	return false
}

// Polarity says which direction of a numeric field is better.
type Polarity int

const (
	Neutral Polarity = iota
	HigherIsBetter
	LowerIsBetter
)

func (p Polarity) String() string {
	switch p {
	case HigherIsBetter:
		return "higher"
	case LowerIsBetter:
		return "lower"
	default:
		return ""
	}
}

// MarshalText encodes the polarity the way comparison schemas report it.
func (p Polarity) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Polarity returns the fixed better-direction of f. Fields outside the
// performance and price set are Neutral.
func (f Field) Polarity() Polarity {
	switch f {
	case FieldHorsepower, FieldTopSpeed:
		return HigherIsBetter
	case FieldAcceleration, FieldPrice:
		return LowerIsBetter
	}
	return Neutral
}

// Value returns the attribute named by f, or nil for an unknown field.
func (c Car) Value(f Field) any {
	switch f {
	case FieldID:
		return c.ID
	case FieldName:
		return c.Name
	case FieldBrand:
		return c.Brand
	case FieldCategory:
		return c.Category
	case FieldYear:
		return c.Year
	case FieldPrice:
		return c.Price
	case FieldHorsepower:
		return c.Horsepower
	case FieldAcceleration:
		return c.Acceleration
	case FieldTopSpeed:
		return c.TopSpeed
	case FieldFuelType:
		return c.FuelType
	case FieldTransmission:
		return c.Transmission
	case FieldImage:
		return c.Image
	}
	return nil
}

// Number returns a numeric attribute as float64. ok is false for text and
// unknown fields.
func (c Car) Number(f Field) (v float64, ok bool) {
	switch f {
	case FieldID:
		return float64(c.ID), true
	case FieldYear:
		return float64(c.Year), true
	case FieldPrice:
		return c.Price, true
	case FieldHorsepower:
		return c.Horsepower, true
	case FieldAcceleration:
		return c.Acceleration, true
	case FieldTopSpeed:
		return c.TopSpeed, true
	}
	return 0, false
}

// IDs returns the IDs of cars in order.
func IDs(cars []Car) []int {
	ids := make([]int, len(cars))
	for i, c := range cars {
		ids[i] = c.ID
	}
	return ids
}
