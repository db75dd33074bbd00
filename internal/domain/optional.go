package domain

import (
	"encoding/json"
	"math"
	"strconv"
)

// Float is an optional float64. The zero value is absent.
//
// Upstream forecasts encode missing samples as JSON null; they decode to an
// absent Float rather than 0 so that a gap can never satisfy a threshold.
type Float struct {
	value float64
	valid bool
}

// Some returns a present value. NaN and infinities are treated as absent.
func Some(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Float{}
	}
	return Float{value: v, valid: true}
}

// None returns an absent value.
func None() Float { return Float{} }

// FloatFromPtr converts a nullable decoded JSON number.
func FloatFromPtr(p *float64) Float {
	if p == nil {
		return Float{}
	}
	return Some(*p)
}

// Get returns the value and whether it is present.
func (f Float) Get() (float64, bool) { return f.value, f.valid }

// Valid reports whether the value is present.
func (f Float) Valid() bool { return f.valid }

// AtLeast reports whether the value is present and >= threshold.
func (f Float) AtLeast(threshold float64) bool {
	return f.valid && f.value >= threshold
}

// Map applies fn to a present value.
func (f Float) Map(fn func(float64) float64) Float {
	if !f.valid {
		return f
	}
	return Some(fn(f.value))
}

// Format renders the value with prec decimals, or "NA" when absent.
func (f Float) Format(prec int) string {
	if !f.valid {
		return "NA"
	}
	return strconv.FormatFloat(f.value, 'f', prec, 64)
}

func (f Float) String() string { return f.Format(-1) }

// MarshalJSON encodes an absent value as null.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// UnmarshalJSON decodes null as absent.
func (f *Float) UnmarshalJSON(data []byte) error {
	var p *float64
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*f = FloatFromPtr(p)
	return nil
}
