package transit

import (
	"math"
	"strconv"
)

// Status tells whether a Metric holds a number.
type Status uint8

const (
	// Null means no observation (an unmapped key or a missing input).
	Null Status = iota
	// Known means Value holds a finite number.
	Known
	// Undefined marks a ratio whose denominator summed to zero.
	Undefined
)

// UndefinedLabel is how an Undefined metric is written to outputs.
const UndefinedLabel = "undefined"

// Metric is a number tagged with its Status. The zero value is Null.
type Metric struct {
	Value  float64
	Status Status
}

// KnownValue wraps v. NaN and infinities become Null.
func KnownValue(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}
	}
	return Metric{Value: v, Status: Known}
}

// UndefinedValue is the DivisionUndefined marker.
func UndefinedValue() Metric { return Metric{Status: Undefined} }

// FromPtr maps nil to Null.
func FromPtr(v *float64) Metric {
	if v == nil {
		return Metric{}
	}
	return KnownValue(*v)
}

// Ratio divides num by den. A zero denominator gives Undefined; a Null operand gives Null.
func Ratio(num, den Metric) Metric {
	if num.Status != Known || den.Status != Known {
		if num.Status == Undefined || den.Status == Undefined {
			return UndefinedValue()
		}
		return Metric{}
	}
	if den.Value == 0 {
		return UndefinedValue()
	}
	return KnownValue(num.Value / den.Value)
}

// Mul multiplies known metrics; anything else propagates as Null or Undefined.
func Mul(ms ...Metric) Metric {
	out := 1.0
	for _, m := range ms {
		switch m.Status {
		case Null:
			return Metric{}
		case Undefined:
			return UndefinedValue()
		}
		out *= m.Value
	}
	return KnownValue(out)
}

// Add sums known metrics; a Null or Undefined operand makes the result Null or Undefined.
func Add(ms ...Metric) Metric {
	out := 0.0
	for _, m := range ms {
		switch m.Status {
		case Null:
			return Metric{}
		case Undefined:
			return UndefinedValue()
		}
		out += m.Value
	}
	return KnownValue(out)
}

func (m Metric) IsKnown() bool { return m.Status == Known }

func (m Metric) String() string {
	switch m.Status {
	case Known:
		return strconv.FormatFloat(m.Value, 'f', -1, 64)
	case Undefined:
		return UndefinedLabel
	}
	return ""
}

// ParseMetric is the inverse of String.
func ParseMetric(s string) Metric {
	switch s {
	case "":
		return Metric{}
	case UndefinedLabel:
		return UndefinedValue()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Metric{}
	}
	return KnownValue(v)
}
