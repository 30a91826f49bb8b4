package transport

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number decodes loosely: JSON numbers and numeric strings keep their value,
// anything else (booleans, objects, "abc", "") decodes to 0 without an error.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	var raw string
	switch data[0] {
	case '"':
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		raw = string(data)
	default:
		return nil
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*n = Number(v)
	return nil
}

func (n Number) Float64() float64 { return float64(n) }

// Ptr converts an optional Number, keeping absence as nil.
func (n *Number) Ptr() *float64 {
	if n == nil {
		return nil
	}
	v := float64(*n)
	return &v
}
