// Package pipeline implements the filter and render pipeline over a loaded point dataset
package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// UnknownCategory is assigned to records whose category is missing or blank
const UnknownCategory = "Не указано"

// Point is one ticket record. Field names follow the upstream export
type Point struct {
	CreatedAt string  `json:"created_at"`
	Category  string  `json:"category"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Total     Number  `json:"Всего,omitzero"`
	Street    Text    `json:"Улица"`
	House     Text    `json:"Дом"`
}

// Weight is the heat intensity of the point: Всего, or 1 when absent or zero
func (p Point) Weight() float64 {
	if !p.Total.Valid || p.Total.V == 0 {
		return 1
	}
	return p.Total.V
}

// Number is an optional float decoded from a JSON number, a numeric string, null or ""
type Number struct {
	V     float64
	Valid bool
}

// Num returns a valid Number
func Num(v float64) Number { return Number{V: v, Valid: true} }

// IsZero reports an absent value, used by omitzero
func (n Number) IsZero() bool { return !n.Valid }

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = Number{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return n.parse(s)
	}
	if b[0] == 't' || b[0] == 'f' {
		return fmt.Errorf("number: unexpected boolean %s", b)
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Num(f)
	return nil
}

func (n *Number) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*n = Number{}
		return nil
	}
	// spreadsheet exports use a decimal comma
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return fmt.Errorf("number: %q is not numeric", s)
	}
	*n = Num(f)
	return nil
}

// ParseNumber reads a Number from plain text (CSV cells, GeoJSON properties)
func ParseNumber(s string) (Number, error) {
	var n Number
	err := n.parse(s)
	return n, err
}

// MarshalJSON implements json.Marshaler
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.V)
}

// String renders integers without a fractional part
func (n Number) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.V, 'f', -1, 64)
}

// Text is a display string that also accepts JSON numbers (house numbers often arrive as 12 or 12.0)
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*t = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("text: unsupported value %s", b)
		}
		*t = Text(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return nil
}

func (t Text) String() string { return string(t) }
