package condition

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/hupe1980/flexquery/operator"
)

// Condition is one field-level search predicate.
//
// Conditions are values: the With* helpers return modified copies and
// never touch the receiver's Values or Params.
type Condition struct {
	// FieldName is the tested field. Required.
	FieldName string
	// Operator names an operator in the registry. Case-sensitive.
	Operator string
	// Values are the operands, interpreted by the operator.
	Values []string
	// Boost weights the condition in the document score. 0 is neutral.
	Boost int
	// MissingValue is applied when a document lacks FieldName.
	MissingValue MissingValue
	// Params tune the operator. Unknown keys are ignored.
	Params map[string]string
}

// New creates a condition with the default ThrowError policy.
func New(field, op string, values ...string) Condition {
	return Condition{FieldName: field, Operator: op, Values: values}
}

// WithBoost returns a copy with the given boost.
func (c Condition) WithBoost(boost int) Condition {
	c.Boost = boost
	return c
}

// WithMissingValue returns a copy with the given missing-value policy.
func (c Condition) WithMissingValue(m MissingValue) Condition {
	c.MissingValue = m
	return c
}

// WithParam returns a copy with params[key] = value.
func (c Condition) WithParam(key, value string) Condition {
	params := make(map[string]string, len(c.Params)+1)
	maps.Copy(params, c.Params)
	params[key] = value
	c.Params = params
	return c
}

// Clone returns a deep copy.
func (c Condition) Clone() Condition {
	c.Values = slices.Clone(c.Values)
	if c.Params != nil {
		c.Params = maps.Clone(c.Params)
	}
	return c
}

// Weight is the score contribution of a match: Boost, or 1 when unboosted.
func (c Condition) Weight() int {
	if c.Boost <= 0 {
		return 1
	}
	return c.Boost
}

// Validate checks the condition against a registry (nil selects
// operator.Default). It verifies the field name, that the operator is
// registered, the value arity, known params, the boost and that a
// UseDefault policy has a usable default. It is side-effect free.
func (c Condition) Validate(reg *operator.Registry) error {
	_, _, err := c.Resolve(reg)
	return err
}

// Resolve validates the condition and returns its operator spec and the
// bound missing-value policy.
func (c Condition) Resolve(reg *operator.Registry) (*operator.Spec, MissingValue, error) {
	if reg == nil {
		reg = operator.Default()
	}
	if c.FieldName == "" {
		return nil, c.MissingValue, c.invalid(errors.New("field name must not be empty"))
	}
	if c.Operator == "" {
		return nil, c.MissingValue, c.invalid(errors.New("operator must not be empty"))
	}
	spec, ok := reg.Lookup(c.Operator)
	if !ok {
		return nil, c.MissingValue, c.invalid(fmt.Errorf("unknown operator %q", c.Operator))
	}
	if err := spec.CheckArgs(c.Values, c.Params); err != nil {
		return nil, c.MissingValue, c.invalid(err)
	}
	if c.Boost < 0 {
		return nil, c.MissingValue, c.invalid(fmt.Errorf("boost must not be negative, got %d", c.Boost))
	}
	mv, err := c.MissingValue.Bind(c.Params, spec.DefaultKey())
	if err != nil {
		return nil, c.MissingValue, c.invalid(err)
	}
	return spec, mv, nil
}

func (c Condition) invalid(cause error) *ValidationError {
	return NewValidationError(NoIndex, c.FieldName, c.Operator, cause)
}

// String renders the condition in query-string form, e.g.
//
//	age range ['10','20'] {boost:'2',missing:'Ignore'}
func (c Condition) String() string {
	var b strings.Builder
	b.WriteString(c.FieldName)
	b.WriteByte(' ')
	b.WriteString(c.Operator)
	b.WriteByte(' ')
	if len(c.Values) == 1 {
		b.WriteString(Quote(c.Values[0]))
	} else {
		b.WriteByte('[')
		for i, v := range c.Values {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(Quote(v))
		}
		b.WriteByte(']')
	}

	var opts []string
	if c.Boost != 0 {
		opts = append(opts, fmt.Sprintf("boost:'%d'", c.Boost))
	}
	if c.MissingValue.Kind() != MissingThrowError {
		opts = append(opts, "missing:"+Quote(c.MissingValue.Kind().String()))
	}
	params := maps.Clone(c.Params)
	if v, ok := c.MissingValue.Default(); ok {
		if params == nil {
			params = make(map[string]string, 1)
		}
		if _, set := params["default"]; !set {
			params["default"] = v
		}
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		opts = append(opts, k+":"+Quote(params[k]))
	}
	if len(opts) > 0 {
		b.WriteString(" {")
		b.WriteString(strings.Join(opts, ","))
		b.WriteByte('}')
	}
	return b.String()
}

// Quote wraps s in single quotes, escaping quotes and backslashes.
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}
