package condition

import (
	"maps"

	"github.com/hupe1980/flexquery/codec"
)

// wireCondition is the exchanged shape of a condition.
type wireCondition struct {
	Boost              int               `json:"Boost"`
	FieldName          string            `json:"FieldName"`
	MissingValueOption string            `json:"MissingValueOption"`
	Operator           string            `json:"Operator"`
	Params             map[string]string `json:"Params,omitempty"`
	Values             []string          `json:"Values"`
}

// MarshalJSON implements json.Marshaler. A bound UseDefault value is
// written to Params["default"], replacing any value already there.
func (c Condition) MarshalJSON() ([]byte, error) {
	w := wireCondition{
		Boost:              c.Boost,
		FieldName:          c.FieldName,
		MissingValueOption: c.MissingValue.Kind().String(),
		Operator:           c.Operator,
		Params:             c.Params,
		Values:             c.Values,
	}
	if w.Values == nil {
		w.Values = []string{}
	}
	if v, ok := c.MissingValue.Default(); ok {
		w.Params = maps.Clone(c.Params)
		if w.Params == nil {
			w.Params = make(map[string]string, 1)
		}
		w.Params["default"] = v
	}
	return codec.Default.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler. "UseDefault" takes its value
// from Params["default"] when present; otherwise the value is resolved
// from the operator's default key during validation.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var w wireCondition
	if err := codec.Default.Unmarshal(data, &w); err != nil {
		return err
	}
	kind, err := ParseMissingValueKind(w.MissingValueOption)
	if err != nil {
		return err
	}

	*c = Condition{
		Boost:     w.Boost,
		FieldName: w.FieldName,
		Operator:  w.Operator,
		Params:    w.Params,
		Values:    w.Values,
	}
	c.MissingValue = MissingValueOf(kind)
	if v, ok := w.Params["default"]; ok && kind == MissingUseDefault {
		c.MissingValue = UseDefault(v)
	}
	return nil
}
