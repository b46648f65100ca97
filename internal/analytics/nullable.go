package analytics

import (
	"encoding/json"
	"strconv"
)

// NullFloat is a metric value that may be undefined. The zero value is
// undefined, so a metric is only ever defined on purpose.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Undefined is the "not applicable" metric value.
var Undefined = NullFloat{}

// Defined wraps v as a defined metric value.
func Defined(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// Get returns the value and whether it is defined.
func (n NullFloat) Get() (float64, bool) {
	return n.Float64, n.Valid
}

func (n NullFloat) String() string {
	if !n.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

// MarshalJSON encodes undefined values as null.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Undefined
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Defined(v)
	return nil
}
