// Package catalogtest builds catalogs for tests.
package catalogtest

import (
	"math"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/WessleyAI/car-explorer/engine/catalog"
)

// Categories are the categories generated cars are drawn from.
var Categories = []string{"sports", "suv", "luxury", "electric", "hybrid"}

// Generate returns n valid cars with IDs 1..n. The same seed always yields
// the same catalog.
func Generate(seed uint64, n int) []catalog.Car {
	f := gofakeit.New(seed)
	cars := make([]catalog.Car, n)
	for i := range cars {
		cars[i] = catalog.Car{
			ID:           i + 1,
			Name:         f.CarModel(),
			Brand:        f.CarMaker(),
			Category:     f.RandomString(Categories),
			Year:         f.IntRange(1990, 2025),
			Price:        float64(f.IntRange(15, 400) * 1000),
			Horsepower:   float64(f.IntRange(90, 1100)),
			Acceleration: math.Round(f.Float64Range(1.9, 12)*10) / 10,
			TopSpeed:     float64(f.IntRange(100, 260)),
			FuelType:     f.CarFuelType(),
			Transmission: f.CarTransmissionType(),
		}
	}
	return cars
}

// Alpha and Beta are the two-car fixture used across comparison tests.
var (
	Alpha = catalog.Car{
		ID: 1, Name: "Alpha", Brand: "A", Category: "sports", Year: 2023,
		Price: 50000, Horsepower: 400, Acceleration: 4.0, TopSpeed: 180,
		FuelType: "Gasoline", Transmission: "Automatic",
	}
	Beta = catalog.Car{
		ID: 2, Name: "Beta", Brand: "B", Category: "suv", Year: 2022,
		Price: 40000, Horsepower: 300, Acceleration: 3.5, TopSpeed: 190,
		FuelType: "Diesel", Transmission: "Manual",
	}
)

// Store builds a snapshot and panics on invalid input.
func Store(cars ...catalog.Car) *catalog.Store {
	s, err := catalog.NewStore("test", cars)
	if err != nil {
		panic(err)
	}
	return s
}
