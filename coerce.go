package formjson

import (
	"math"
	"strconv"
	"strings"
)

// Coerce converts a submitted string to the JSON type implied by the input
// type of the control that produced it. Number and range inputs become
// float64: a blank value is 0 and anything unparsable is nil. A submitted
// checkbox is always true. Every other type keeps its string.
func Coerce(inputType string, value string) any {
	switch strings.ToLower(inputType) {
	case "number", "range":
		return toNumber(value)
	case "checkbox":
		return true
	default:
		return value
	}
}

func toNumber(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return float64(0)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
