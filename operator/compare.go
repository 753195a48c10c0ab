package operator

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/flexquery/schema"
)

type valueKind uint8

const (
	kindString valueKind = iota
	kindInt
	kindNumber
	kindTime
	kindBool
)

// value is a stored string interpreted according to a field type.
type value struct {
	kind valueKind
	i    int64
	num  float64
	ts   time.Time
	str  string
	b    bool
}

func (v value) compare(o value) int {
	switch v.kind {
	case kindInt:
		return cmp.Compare(v.i, o.i)
	case kindNumber:
		return cmp.Compare(v.num, o.num)
	case kindTime:
		return v.ts.Compare(o.ts)
	case kindBool:
		switch {
		case v.b == o.b:
			return 0
		case !v.b:
			return -1
		default:
			return 1
		}
	default:
		return strings.Compare(v.str, o.str)
	}
}

// literal parses a condition value for a field of type t.
func literal(t schema.FieldType, s string) (value, error) {
	switch t {
	case schema.FieldTypeInt:
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return value{}, fmt.Errorf("invalid %s value %q", t, s)
		}
		return value{kind: kindInt, i: i}, nil
	case schema.FieldTypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return value{}, fmt.Errorf("invalid %s value %q", t, s)
		}
		return value{kind: kindNumber, num: f}, nil
	case schema.FieldTypeDate:
		ts, err := schema.ParseDate(s)
		if err != nil {
			return value{}, fmt.Errorf("invalid %s value %q", t, s)
		}
		return value{kind: kindTime, ts: ts}, nil
	case schema.FieldTypeBool:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return value{}, fmt.Errorf("invalid %s value %q", t, s)
		}
		return value{kind: kindBool, b: b}, nil
	case schema.FieldTypeText:
		return value{kind: kindString, str: strings.ToLower(s)}, nil
	case schema.FieldTypeAny:
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return value{kind: kindNumber, num: f, str: s}, nil
		}
		return value{kind: kindString, str: s}, nil
	default:
		return value{kind: kindString, str: s}, nil
	}
}

// coerce interprets a stored value so that it can be compared with lit.
// ok is false when an untyped stored value does not have lit's kind.
func coerce(t schema.FieldType, s string, lit value) (v value, ok bool, err error) {
	if t != schema.FieldTypeAny {
		v, err = literal(t, s)
		if err != nil {
			return value{}, false, fmt.Errorf("%w: stored value: %v", ErrUnsupported, err)
		}
		return v, true, nil
	}
	if lit.kind == kindNumber {
		f, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if perr != nil {
			return value{kind: kindString, str: s}, false, nil
		}
		return value{kind: kindNumber, num: f, str: s}, true, nil
	}
	return value{kind: kindString, str: s}, true, nil
}

// equal reports typed equality. Untyped values of different kinds fall
// back to string equality.
func equal(t schema.FieldType, s string, lit value) (bool, error) {
	v, ok, err := coerce(t, s, lit)
	if err != nil {
		return false, err
	}
	if !ok {
		return s == lit.str, nil
	}
	return v.compare(lit) == 0, nil
}

// order compares a stored value with lit. Untyped values that cannot be
// ordered against lit yield ErrUnsupported.
func order(t schema.FieldType, s string, lit value) (int, error) {
	v, ok, err := coerce(t, s, lit)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: value %q is not numeric", ErrUnsupported, s)
	}
	return v.compare(lit), nil
}
