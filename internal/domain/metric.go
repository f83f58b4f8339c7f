package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Metric is a derived value that may be missing. The zero value is missing.
type Metric struct {
	Value float64
	Valid bool
}

// Some wraps a present value. Non-finite inputs produce a missing Metric.
func Some(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}
	}
	return Metric{Value: v, Valid: true}
}

// Missing returns a Metric with no value.
func Missing() Metric { return Metric{} }

// Ratio divides num by den, missing when den is zero.
func Ratio(num, den float64) Metric {
	if den == 0 {
		return Metric{}
	}
	return Some(num / den)
}

// Scale multiplies a present value by f.
func (m Metric) Scale(f float64) Metric {
	if !m.Valid {
		return m
	}
	return Some(m.Value * f)
}

// Float64 returns the value and whether it is present.
func (m Metric) Float64() (float64, bool) {
	return m.Value, m.Valid
}

// OrElse returns the value, or fallback when missing.
func (m Metric) OrElse(fallback float64) float64 {
	if !m.Valid {
		return fallback
	}
	return m.Value
}

func (m Metric) String() string {
	if !m.Valid {
		return "missing"
	}
	return strconv.FormatFloat(m.Value, 'g', -1, 64)
}

// MarshalJSON encodes a missing value as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, m.Value, 'g', -1, 64), nil
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = Metric{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Some(v)
	return nil
}
