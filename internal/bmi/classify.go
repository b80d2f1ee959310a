// Package bmi computes body mass index and its weight-status category.
//
// Values are rounded half away from zero to two decimal places for display;
// the category is decided on the unrounded value.
package bmi

import (
	"fmt"
	"math"
	"strconv"
)

// Result is the outcome of classifying a Measurement.
type Result struct {
	Value          float64
	Category       Category
	Color          string
	Interpretation string
}

// Classify computes BMI for an already validated measurement. It never
// fails and has no side effects.
func Classify(m Measurement) Result {
	raw := m.Weight / (m.Height * m.Height)
	cat := CategoryFor(raw)
	return Result{
		Value:          Round(raw),
		Category:       cat,
		Color:          cat.Color(),
		Interpretation: cat.Interpretation(),
	}
}

// Calculate validates weight and height and classifies them.
func Calculate(weight, height float64) (Result, error) {
	m, err := NewMeasurement(weight, height)
	if err != nil {
		return Result{}, err
	}
	return Classify(m), nil
}

// Round rounds v to two decimal places, half away from zero.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// BMI returns the value formatted with exactly two decimals.
func (r Result) BMI() string {
	return strconv.FormatFloat(r.Value, 'f', 2, 64)
}

// Message is the one-line summary shown above the interpretation.
func (r Result) Message() string {
	return fmt.Sprintf("Your BMI is %s (%s)", r.BMI(), r.Category)
}
