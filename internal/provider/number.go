package provider

import (
	"bytes"
	"strconv"
)

// Number decodes JSON values that providers send either as numbers or as
// numeric strings ("12", "0.43"). null, "" and unparseable strings leave it invalid.
type Number struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}

	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		unquoted, err := strconv.Unquote(string(b))
		if err != nil {
			return nil
		}
		b = []byte(unquoted)
		if len(b) == 0 {
			return nil
		}
	}

	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return nil
	}
	n.Value = v
	n.Valid = true
	return nil
}

// Int returns the value truncated to an integer, or 0 when invalid
func (n Number) Int() int64 {
	if !n.Valid {
		return 0
	}
	return int64(n.Value)
}

// Ptr returns a pointer to the value, or nil when invalid
func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// Num is a convenience constructor for a valid Number
func Num(v float64) Number {
	return Number{Value: v, Valid: true}
}
