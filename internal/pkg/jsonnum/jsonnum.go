// Package jsonnum decodes numbers that clients may send either as JSON numbers or numeric strings.
package jsonnum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Float is an optional float. Set reports whether the field was present and non-null.
type Float struct {
	Value float64
	Set   bool
}

func (f *Float) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = Float{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = Float{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", s)
		}
		*f = Float{Value: v, Set: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%s is not a number", data)
	}
	*f = Float{Value: v, Set: true}
	return nil
}

func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Uint is an id that may arrive as 7 or "7".
type Uint uint

func (u *Uint) UnmarshalJSON(data []byte) error {
	var f Float
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	if !f.Set {
		*u = 0
		return nil
	}
	if f.Value < 0 || f.Value != float64(uint64(f.Value)) {
		return fmt.Errorf("%v is not a valid id", f.Value)
	}
	*u = Uint(f.Value)
	return nil
}
