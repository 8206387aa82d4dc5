package metrics

import (
	"encoding/json"
	"math"
)

// Scalar is a numeric result that may be undefined (no data, or a 0/0
// ratio). Undefined scalars marshal as JSON null instead of panicking on
// NaN, so "no data" stays distinguishable from zero all the way to the
// consumer.
type Scalar struct {
	Value float64
	Valid bool
}

// ScalarOf wraps a defined value. Non-finite input degrades to undefined.
func ScalarOf(v float64) Scalar {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Scalar{}
	}
	return Scalar{Value: v, Valid: true}
}

// NoData is the undefined scalar.
func NoData() Scalar {
	return Scalar{}
}

// Float returns the value, or NaN when undefined.
func (s Scalar) Float() float64 {
	if !s.Valid {
		return math.NaN()
	}
	return s.Value
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

func (s *Scalar) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Scalar{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = ScalarOf(v)
	return nil
}
