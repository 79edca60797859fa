package main

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrDuplicateYear  = errors.New("duplicate year")
	ErrFractionalYear = errors.New("year is not a whole number")
	ErrNegativeMass   = errors.New("mass is negative")
)

// YearlyMass is one year's figure in kilograms.
type YearlyMass struct {
	Year int
	Mass float64
}

// ProductionSeries is crop production by year. Years without a record
// produce 0.
type ProductionSeries struct {
	yearly map[int]float64
}

// NewProductionSeries builds a series holding at most one value per year.
// A repeated year is rejected with ErrDuplicateYear.
func NewProductionSeries(records []YearlyMass) (ProductionSeries, error) {
	s := ProductionSeries{yearly: make(map[int]float64, len(records))}
	for _, r := range records {
		if _, exists := s.yearly[r.Year]; exists {
			return ProductionSeries{}, fmt.Errorf("production %d: %w", r.Year, ErrDuplicateYear)
		}
		s.yearly[r.Year] = r.Mass
	}
	return s, nil
}

// ProductionSeriesFromMap copies yearly. Map keys are unique, so this
// never fails.
func ProductionSeriesFromMap(yearly map[int]float64) ProductionSeries {
	s := ProductionSeries{yearly: make(map[int]float64, len(yearly))}
	for year, mass := range yearly {
		s.yearly[year] = mass
	}
	return s
}

// Mass returns the production for year, 0 when none was recorded.
func (s ProductionSeries) Mass(year int) float64 {
	return s.yearly[year]
}

// Has reports whether year has a recorded production.
func (s ProductionSeries) Has(year int) bool {
	_, ok := s.yearly[year]
	return ok
}

func (s ProductionSeries) Years() []int {
	return sortedYears(s.yearly)
}

func (s ProductionSeries) Len() int {
	return len(s.yearly)
}

// ActualExportSeries holds exported mass per year, already summed over
// the raw shipment records of that year.
type ActualExportSeries struct {
	yearly map[int]float64
}

// AggregateExports sums records per year.
func AggregateExports(records []YearlyMass) ActualExportSeries {
	s := ActualExportSeries{yearly: make(map[int]float64)}
	for _, r := range records {
		s.yearly[r.Year] += r.Mass
	}
	return s
}

// ActualExportsFromMap copies already aggregated totals.
func ActualExportsFromMap(yearly map[int]float64) ActualExportSeries {
	s := ActualExportSeries{yearly: make(map[int]float64, len(yearly))}
	for year, mass := range yearly {
		s.yearly[year] = mass
	}
	return s
}

// Mass returns the exported mass for year and whether any was recorded.
func (s ActualExportSeries) Mass(year int) (float64, bool) {
	mass, ok := s.yearly[year]
	return mass, ok
}

func (s ActualExportSeries) Years() []int {
	return sortedYears(s.yearly)
}

func (s ActualExportSeries) Len() int {
	return len(s.yearly)
}

func sortedYears(yearly map[int]float64) []int {
	years := make([]int, 0, len(yearly))
	for year := range yearly {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}
