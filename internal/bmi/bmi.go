package bmi

import (
	"fmt"
	"math"
)

// Input bounds enforced by the form and by Validate.
const (
	MinWeightKg = 1.0
	MaxWeightKg = 300.0
	MinHeightM  = 0.50
	MaxHeightM  = 3.00
)

// Category is one of the six WHO classification bands, with the
// Portuguese labels shown to the user.
type Category string

const (
	Magreza          Category = "Magreza"
	Normal           Category = "Normal (Peso Saudável)"
	Sobrepeso        Category = "Sobrepeso"
	ObesidadeGrauI   Category = "Obesidade Grau I"
	ObesidadeGrauII  Category = "Obesidade Grau II (Severa)"
	ObesidadeGrauIII Category = "Obesidade Grau III (Mórbida)"
)

// Categories returns all bands in ascending BMI order.
func Categories() []Category {
	return []Category{Magreza, Normal, Sobrepeso, ObesidadeGrauI, ObesidadeGrauII, ObesidadeGrauIII}
}

// Measurement is one weight/height pair entered by the user. It exists
// only for a single calculation and is never persisted.
type Measurement struct {
	WeightKg float64 `json:"weight_kg"`
	HeightM  float64 `json:"height_m"`
}

// ValidationError reports a measurement field outside its accepted range.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ErrOverflow is returned when the computed BMI is not a finite number.
var ErrOverflow = fmt.Errorf("BMI computation overflowed")

// Validate checks the measurement against the declared bounds.
func (m Measurement) Validate() error {
	if math.IsNaN(m.WeightKg) || math.IsInf(m.WeightKg, 0) || m.WeightKg < MinWeightKg || m.WeightKg > MaxWeightKg {
		return &ValidationError{
			Field:   "weight_kg",
			Message: fmt.Sprintf("must be between %.1f and %.1f", MinWeightKg, MaxWeightKg),
		}
	}
	if math.IsNaN(m.HeightM) || math.IsInf(m.HeightM, 0) || m.HeightM < MinHeightM || m.HeightM > MaxHeightM {
		return &ValidationError{
			Field:   "height_m",
			Message: fmt.Sprintf("must be between %.2f and %.2f", MinHeightM, MaxHeightM),
		}
	}
	return nil
}

// Calculate returns weight / height². Callers must guard height > 0;
// Validate does that for user input. A non-finite result is reported
// as ErrOverflow so it can surface with its own message.
func Calculate(m Measurement) (float64, error) {
	value := m.WeightKg / (m.HeightM * m.HeightM)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, ErrOverflow
	}
	return value, nil
}

// Classify maps a BMI value to its WHO band. The published table lists
// band tops of 24.9/29.9/34.9/39.9, which leaves gaps such as
// [24.9, 25.0) unclassified; here the bands are contiguous right-open
// intervals so every value maps to exactly one category.
func Classify(value float64) Category {
	switch {
	case value < 18.5:
		return Magreza
	case value < 25.0:
		return Normal
	case value < 30.0:
		return Sobrepeso
	case value < 35.0:
		return ObesidadeGrauI
	case value < 40.0:
		return ObesidadeGrauII
	default:
		return ObesidadeGrauIII
	}
}
