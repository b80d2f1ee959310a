package bmi

// Category is a qualitative weight-status bucket derived from a BMI value.
type Category int

const (
	Underweight Category = iota
	Normal
	Overweight
	Obese

	numCategories
)

// Lower bounds, inclusive.
const (
	normalLowerBound     = 18.5
	overweightLowerBound = 25.0
	obeseLowerBound      = 30.0
)

type profile struct {
	name           string
	color          string
	interpretation string
}

var profiles = [numCategories]profile{
	Underweight: {
		name:           "Underweight",
		color:          "#3498db",
		interpretation: "You may need to gain some weight. Consider consulting a nutritionist.",
	},
	Normal: {
		name:           "Normal weight",
		color:          "#2ecc71",
		interpretation: "You have a healthy weight. Keep up your current habits.",
	},
	Overweight: {
		name:           "Overweight",
		color:          "#f39c12",
		interpretation: "Consider some lifestyle changes like regular exercise and balanced diet.",
	},
	Obese: {
		name:           "Obese",
		color:          "#e74c3c",
		interpretation: "It is recommended to consult a healthcare professional for guidance.",
	},
}

// CategoryFor maps a raw (unrounded) BMI value to its category.
func CategoryFor(value float64) Category {
	switch {
	case value < normalLowerBound:
		return Underweight
	case value < overweightLowerBound:
		return Normal
	case value < obeseLowerBound:
		return Overweight
	default:
		return Obese
	}
}

func (c Category) valid() bool { return c >= 0 && c < numCategories }

// String returns the display name, e.g. "Normal weight".
func (c Category) String() string {
	if !c.valid() {
		return "Unknown"
	}
	return profiles[c].name
}

// Color returns the display color as a CSS hex string.
func (c Category) Color() string {
	if !c.valid() {
		return ""
	}
	return profiles[c].color
}

// Interpretation returns the fixed advice text for the category.
func (c Category) Interpretation() string {
	if !c.valid() {
		return ""
	}
	return profiles[c].interpretation
}
