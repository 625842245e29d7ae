package catalog

import "strconv"

var nonNegative = []Field{FieldYear, FieldPrice, FieldHorsepower, FieldAcceleration, FieldTopSpeed}

// Validate checks the catalog invariants and returns the first violation as a
// *ValidationError.
func Validate(cars []Car) error {
	seen := make(map[int]struct{}, len(cars))
	for _, c := range cars {
		if c.ID <= 0 {
			return &ValidationError{CarID: c.ID, Field: FieldID, Value: strconv.Itoa(c.ID), Wrapped: ErrNonPositiveID}
		}
		if _, dup := seen[c.ID]; dup {
			return &ValidationError{CarID: c.ID, Field: FieldID, Value: strconv.Itoa(c.ID), Wrapped: ErrDuplicateID}
		}
		seen[c.ID] = struct{}{}
		for _, f := range nonNegative {
			if v, _ := c.Number(f); v < 0 {
				return &ValidationError{
					CarID:   c.ID,
					Field:   f,
					Value:   strconv.FormatFloat(v, 'f', -1, 64),
					Wrapped: ErrNegativeValue,
				}
			}
		}
	}
	return nil
}
