package operator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/flexquery/schema"
)

// Fuzzy and phrase limits.
const (
	MaxFuzzyDistance     = 2
	DefaultFuzzyDistance = 1
	MaxPhraseSlop        = 100
)

func registerBuiltins(r *Registry) {
	r.MustRegister(
		Spec{Name: "=", Arity: Exactly(1), Exact: true, Infallible: always, Compile: compileEqual},
		Spec{Name: "!=", Arity: Exactly(1), Infallible: always, Compile: compileNotEqual},
		Spec{Name: ">", Arity: Exactly(1), Supports: orderable, Infallible: typed, Compile: compileOrder(func(c int) bool { return c > 0 })},
		Spec{Name: ">=", Arity: Exactly(1), Supports: orderable, Infallible: typed, Compile: compileOrder(func(c int) bool { return c >= 0 })},
		Spec{Name: "<", Arity: Exactly(1), Supports: orderable, Infallible: typed, Compile: compileOrder(func(c int) bool { return c < 0 })},
		Spec{Name: "<=", Arity: Exactly(1), Supports: orderable, Infallible: typed, Compile: compileOrder(func(c int) bool { return c <= 0 })},
		Spec{
			Name:       "range",
			Arity:      Exactly(2),
			Supports:   orderable,
			Infallible: typed,
			Params: map[string]ParamFunc{
				"includelower": boolParam,
				"includeupper": boolParam,
			},
			Compile: compileRange,
		},
		Spec{Name: "in", Arity: AtLeast(1), Exact: true, Infallible: always, Compile: compileIn},
		Spec{Name: "prefix", Arity: Exactly(1), Supports: textual, Infallible: always, Compile: compilePrefix},
		Spec{
			Name:       "fuzzy",
			Arity:      Exactly(1),
			Supports:   textual,
			Infallible: always,
			Params: map[string]ParamFunc{
				"distance":     intParam(0, MaxFuzzyDistance),
				"prefixlength": intParam(0, 1<<16),
			},
			Compile: compileFuzzy,
		},
		Spec{Name: "like", Arity: Exactly(1), Supports: textual, Infallible: always, Compile: compileLike},
		Spec{
			Name:       "phrase",
			Arity:      AtLeast(1),
			Supports:   func(t schema.FieldType) bool { return t == schema.FieldTypeText || t == schema.FieldTypeAny },
			Infallible: always,
			Params: map[string]ParamFunc{
				"slop": intParam(0, MaxPhraseSlop),
			},
			Compile: compilePhrase,
		},
	)

	for alias, name := range map[string]string{
		"eq": "=",
		"ne": "!=",
		"gt": ">",
		"ge": ">=",
		"lt": "<",
		"le": "<=",
	} {
		if err := r.Alias(alias, name); err != nil {
			panic(err)
		}
	}
}

func orderable(t schema.FieldType) bool {
	return t.Ordinal() || t == schema.FieldTypeAny
}

func always(schema.FieldType) bool { return true }

// typed holds for declared types: untyped values may not be comparable.
func typed(t schema.FieldType) bool { return t != schema.FieldTypeAny }

func textual(t schema.FieldType) bool {
	return t.Textual()
}

func boolParam(v string) error {
	if _, err := strconv.ParseBool(strings.TrimSpace(v)); err != nil {
		return fmt.Errorf("invalid boolean %q", v)
	}
	return nil
}

func intParam(lo, hi int) ParamFunc {
	return func(v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid integer %q", v)
		}
		if n < lo || n > hi {
			return fmt.Errorf("%d out of range [%d, %d]", n, lo, hi)
		}
		return nil
	}
}

func intArg(a Args, key string, def int) int {
	raw, ok := a.Param(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return n
}

func boolArg(a Args, key string, def bool) bool {
	raw, ok := a.Param(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return b
}

func compileEqual(a Args) (Predicate, error) {
	return equalTo(a.Type, a.Values[0])
}

func equalTo(t schema.FieldType, want string) (Predicate, error) {
	if t == schema.FieldTypeText {
		terms := tokenize(want)
		if len(terms) == 0 {
			return nil, fmt.Errorf("value %q has no terms", want)
		}
		return func(v string) (bool, error) {
			tokens := tokenize(v)
			for _, term := range terms {
				if !containsToken(tokens, term) {
					return false, nil
				}
			}
			return true, nil
		}, nil
	}

	lit, err := literal(t, want)
	if err != nil {
		return nil, err
	}
	return func(v string) (bool, error) {
		return equal(t, v, lit)
	}, nil
}

func compileNotEqual(a Args) (Predicate, error) {
	eq, err := compileEqual(a)
	if err != nil {
		return nil, err
	}
	return func(v string) (bool, error) {
		ok, err := eq(v)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}, nil
}

func compileOrder(test func(int) bool) func(Args) (Predicate, error) {
	return func(a Args) (Predicate, error) {
		lit, err := literal(a.Type, a.Values[0])
		if err != nil {
			return nil, err
		}
		return func(v string) (bool, error) {
			c, err := order(a.Type, v, lit)
			if err != nil {
				return false, err
			}
			return test(c), nil
		}, nil
	}
}

func compileRange(a Args) (Predicate, error) {
	lo, err := literal(a.Type, a.Values[0])
	if err != nil {
		return nil, err
	}
	hi, err := literal(a.Type, a.Values[1])
	if err != nil {
		return nil, err
	}
	if lo.kind != hi.kind {
		return nil, errors.New("range bounds must both be numeric or both be text")
	}
	if lo.compare(hi) > 0 {
		return nil, fmt.Errorf("lower bound %q is greater than upper bound %q", a.Values[0], a.Values[1])
	}

	inclLower := boolArg(a, "includelower", true)
	inclUpper := boolArg(a, "includeupper", true)

	return func(v string) (bool, error) {
		c, err := order(a.Type, v, lo)
		if err != nil {
			return false, err
		}
		if c < 0 || (c == 0 && !inclLower) {
			return false, nil
		}
		c, err = order(a.Type, v, hi)
		if err != nil {
			return false, err
		}
		return c < 0 || (c == 0 && inclUpper), nil
	}, nil
}

func compileIn(a Args) (Predicate, error) {
	preds := make([]Predicate, 0, len(a.Values))
	for _, want := range a.Values {
		p, err := equalTo(a.Type, want)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return func(v string) (bool, error) {
		for _, p := range preds {
			ok, err := p(v)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}, nil
}

// anyToken applies match to every token of a text value and to the
// whole value otherwise.
func anyToken(t schema.FieldType, match func(string) bool) Predicate {
	if t != schema.FieldTypeText {
		return func(v string) (bool, error) { return match(v), nil }
	}
	return func(v string) (bool, error) {
		for _, tok := range tokenize(v) {
			if match(tok) {
				return true, nil
			}
		}
		return false, nil
	}
}

func compilePrefix(a Args) (Predicate, error) {
	prefix := a.Values[0]
	if a.Type == schema.FieldTypeText {
		prefix = strings.ToLower(prefix)
	}
	if prefix == "" {
		return nil, errors.New("prefix must not be empty")
	}
	return anyToken(a.Type, func(s string) bool { return strings.HasPrefix(s, prefix) }), nil
}

func compileFuzzy(a Args) (Predicate, error) {
	term := a.Values[0]
	if a.Type == schema.FieldTypeText {
		term = strings.ToLower(term)
	}
	if term == "" {
		return nil, errors.New("fuzzy term must not be empty")
	}
	dist := intArg(a, "distance", DefaultFuzzyDistance)
	prefixLen := intArg(a, "prefixlength", 0)
	return anyToken(a.Type, func(s string) bool { return withinDistance(s, term, dist, prefixLen) }), nil
}

func compileLike(a Args) (Predicate, error) {
	pattern := a.Values[0]
	if a.Type == schema.FieldTypeText {
		pattern = strings.ToLower(pattern)
	}
	return anyToken(a.Type, func(s string) bool { return wildcardMatch(pattern, s) }), nil
}

func compilePhrase(a Args) (Predicate, error) {
	var terms []string
	for _, v := range a.Values {
		terms = append(terms, tokenize(v)...)
	}
	if len(terms) == 0 {
		return nil, errors.New("phrase has no terms")
	}
	slop := intArg(a, "slop", 0)
	return func(v string) (bool, error) {
		return phraseMatch(tokenize(v), terms, slop), nil
	}, nil
}
