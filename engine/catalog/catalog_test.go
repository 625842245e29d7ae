package catalog_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WessleyAI/car-explorer/engine/catalog"
	"github.com/WessleyAI/car-explorer/engine/catalog/catalogtest"
)

func TestFieldPolarity(t *testing.T) {
	cases := map[catalog.Field]catalog.Polarity{
		catalog.FieldHorsepower:   catalog.HigherIsBetter,
		catalog.FieldTopSpeed:     catalog.HigherIsBetter,
		catalog.FieldAcceleration: catalog.LowerIsBetter,
		catalog.FieldPrice:        catalog.LowerIsBetter,
		catalog.FieldYear:         catalog.Neutral,
		catalog.FieldBrand:        catalog.Neutral,
	}
	for f, want := range cases {
		assert.Equal(t, want, f.Polarity(), f)
	}
}

func TestParseField(t *testing.T) {
	f, ok := catalog.ParseField("topSpeed")
	require.True(t, ok)
	assert.Equal(t, catalog.FieldTopSpeed, f)
	assert.True(t, f.Numeric())

	_, ok = catalog.ParseField("top_speed")
	assert.False(t, ok)
	assert.False(t, catalog.FieldBrand.Numeric())
}

func TestValueAndNumber(t *testing.T) {
	c := catalogtest.Alpha
	for _, f := range catalog.Fields {
		assert.NotNil(t, c.Value(f), f)
	}
	assert.Nil(t, c.Value("colour"))
	assert.Equal(t, "A", c.Value(catalog.FieldBrand))

	v, ok := c.Number(catalog.FieldAcceleration)
	require.True(t, ok)
	assert.Equal(t, 4.0, v)

	v, ok = c.Number(catalog.FieldYear)
	require.True(t, ok)
	assert.Equal(t, 2023.0, v)

	_, ok = c.Number(catalog.FieldName)
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	ok := catalogtest.Generate(7, 25)
	require.NoError(t, catalog.Validate(ok))

	tests := []struct {
		name  string
		cars  []catalog.Car
		field catalog.Field
		cause error
	}{
		{"zero id", []catalog.Car{{ID: 0}}, catalog.FieldID, catalog.ErrNonPositiveID},
		{"duplicate id", []catalog.Car{{ID: 4}, {ID: 4}}, catalog.FieldID, catalog.ErrDuplicateID},
		{"negative price", []catalog.Car{{ID: 1, Price: -1}}, catalog.FieldPrice, catalog.ErrNegativeValue},
		{"negative acceleration", []catalog.Car{{ID: 1, Acceleration: -0.5}}, catalog.FieldAcceleration, catalog.ErrNegativeValue},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := catalog.Validate(tc.cars)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.cause)
			assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)

			var ve *catalog.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := catalog.Validate([]catalog.Car{{ID: 3, Price: -2.5}})
	assert.EqualError(t, err, `catalog: car 3: price: value must be non-negative (value="-2.5")`)
}

func TestStoreLookups(t *testing.T) {
	s := catalogtest.Store(catalogtest.Alpha, catalogtest.Beta)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "test", s.Source())
	assert.False(t, s.LoadedAt().IsZero())

	c, ok := s.ByID(2)
	require.True(t, ok)
	assert.Equal(t, "Beta", c.Name)

	_, err := s.Get(99)
	assert.ErrorIs(t, err, catalog.ErrCarNotFound)

	assert.Equal(t, []int{2, 1}, catalog.IDs(s.Resolve([]int{2, 42, 1})))
	assert.NotNil(t, s.Resolve(nil))
}

func TestStoreIsImmutable(t *testing.T) {
	cars := []catalog.Car{catalogtest.Alpha, catalogtest.Beta}
	s := catalogtest.Store(cars...)

	cars[0].Name = "changed"
	all := s.All()
	all[1].Name = "changed too"

	assert.Equal(t, "Alpha", s.All()[0].Name)
	assert.Equal(t, "Beta", s.All()[1].Name)
}

func TestNewStoreRejectsInvalid(t *testing.T) {
	_, err := catalog.NewStore("bad", []catalog.Car{{ID: 1}, {ID: 1}})
	assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)
}

func TestHolder(t *testing.T) {
	h := catalog.NewHolder(nil)
	require.NotNil(t, h.Current())
	assert.Equal(t, 0, h.Current().Len())

	first := catalogtest.Store(catalogtest.Alpha)
	assert.Nil(t, h.Swap(first))
	assert.Same(t, first, h.Current())

	second := catalogtest.Store(catalogtest.Alpha, catalogtest.Beta)
	assert.Same(t, first, h.Swap(second))
	assert.Equal(t, 2, h.Current().Len())
}
