package bmi

import (
	"math"
	"strconv"
	"strings"
)

// MaxHeightMeters rejects heights that were most likely entered in
// centimeters.
const MaxHeightMeters = 3.0

// Measurement is a validated weight (kg) and height (m) pair.
type Measurement struct {
	Weight float64
	Height float64
}

// NewMeasurement validates numeric inputs. Rules are checked in order:
// non-finite, weight <= 0, height <= 0, height > MaxHeightMeters, and
// finally a BMI that overflows float64.
func NewMeasurement(weight, height float64) (Measurement, error) {
	if !finite(weight) || !finite(height) {
		return Measurement{}, ErrNotNumeric
	}
	if weight <= 0 {
		return Measurement{}, ErrWeightNotPositive
	}
	if height <= 0 {
		return Measurement{}, ErrHeightNotPositive
	}
	if height > MaxHeightMeters {
		return Measurement{}, ErrHeightTooLarge
	}
	if raw := weight / (height * height); !finite(raw) || !finite(Round(raw)) {
		return Measurement{}, ErrOutOfRange
	}
	return Measurement{Weight: weight, Height: height}, nil
}

// ParseMeasurement validates raw text inputs as submitted by a form or a
// command line.
func ParseMeasurement(weight, height string) (Measurement, error) {
	weight = strings.TrimSpace(weight)
	height = strings.TrimSpace(height)
	if weight == "" || height == "" {
		return Measurement{}, ErrMissing
	}

	w, err := parseNumber(weight)
	if err != nil {
		return Measurement{}, err
	}
	h, err := parseNumber(height)
	if err != nil {
		return Measurement{}, err
	}
	return NewMeasurement(w, h)
}

// parseNumber accepts decimal notation only; ParseFloat would also take hex
// floats such as "0x1.18p6".
func parseNumber(s string) (float64, error) {
	if strings.ContainsAny(s, "xXpP_") {
		return 0, ErrNotNumeric
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return 0, ErrNotNumeric
	}
	return v, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
