package operator

import (
	"strings"
	"sync"
	"testing"

	"github.com/hupe1980/flexquery/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArity(t *testing.T) {
	assert.NoError(t, Exactly(1).Check(1))
	assert.Error(t, Exactly(1).Check(0))
	assert.Error(t, Exactly(2).Check(3))
	assert.NoError(t, AtLeast(1).Check(10))
	assert.Error(t, AtLeast(1).Check(0))
	assert.NoError(t, Arity{Min: 1, Max: 3}.Check(3))

	assert.Equal(t, "1", Exactly(1).String())
	assert.Equal(t, "1..N", AtLeast(1).String())
	assert.Equal(t, "1..3", Arity{Min: 1, Max: 3}.String())
}

func TestRegistry_RegisterLookup(t *testing.T) {
	r := NewRegistry()
	spec := Spec{
		Name:  "suffix",
		Arity: Exactly(1),
		Compile: func(a Args) (Predicate, error) {
			want := a.Values[0]
			return func(v string) (bool, error) { return strings.HasSuffix(v, want), nil }, nil
		},
	}
	require.NoError(t, r.Register(spec))

	got, ok := r.Lookup("suffix")
	require.True(t, ok)
	assert.Equal(t, "suffix", got.Name)

	_, ok = r.Lookup("Suffix")
	assert.False(t, ok, "lookup is case-sensitive")

	err := r.Register(spec)
	assert.ErrorIs(t, err, ErrDuplicate)

	assert.Error(t, r.Register(Spec{Name: "", Compile: spec.Compile}))
	assert.Error(t, r.Register(Spec{Name: "nocompile"}))
}

func TestRegistry_Alias(t *testing.T) {
	r := NewDefaultRegistry()

	eq, ok := r.Lookup("eq")
	require.True(t, ok)
	assert.Equal(t, "=", eq.Name)

	assert.Error(t, r.Alias("x", "missing"))
	assert.ErrorIs(t, r.Alias("eq", "="), ErrDuplicate)
}

func TestRegistry_Clone(t *testing.T) {
	base := NewDefaultRegistry()
	c := base.Clone()
	c.MustRegister(Spec{Name: "always", Compile: func(Args) (Predicate, error) {
		return func(string) (bool, error) { return true, nil }, nil
	}})

	_, ok := c.Lookup("always")
	assert.True(t, ok)
	_, ok = base.Lookup("always")
	assert.False(t, ok)
	assert.Equal(t, base.Len()+1, c.Len())
}

func TestRegistry_Names(t *testing.T) {
	names := Default().Names()
	for _, want := range []string{"=", "eq", "!=", "ne", "range", "in", "prefix", "fuzzy", "like", "phrase"} {
		assert.Contains(t, names, want)
	}
	assert.IsNonDecreasing(t, names)
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewDefaultRegistry()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = r.Alias("eq"+strings.Repeat("x", i+1), "=")
				return
			}
			_, _ = r.Lookup("=")
			_ = r.Names()
		}(i)
	}
	wg.Wait()
}

func TestSpec_CheckArgs(t *testing.T) {
	fuzzy, ok := Default().Lookup("fuzzy")
	require.True(t, ok)

	assert.NoError(t, fuzzy.CheckArgs([]string{"abc"}, nil))
	assert.NoError(t, fuzzy.CheckArgs([]string{"abc"}, map[string]string{"distance": "2"}))
	assert.NoError(t, fuzzy.CheckArgs([]string{"abc"}, map[string]string{"Distance": "1"}))
	assert.NoError(t, fuzzy.CheckArgs([]string{"abc"}, map[string]string{"unknown": "whatever"}))
	assert.Error(t, fuzzy.CheckArgs([]string{"abc"}, map[string]string{"distance": "3"}))
	assert.Error(t, fuzzy.CheckArgs([]string{"abc"}, map[string]string{"distance": "x"}))
	assert.Error(t, fuzzy.CheckArgs(nil, nil))
	assert.Equal(t, "default", fuzzy.DefaultKey())
}

func compile(t *testing.T, name string, ft schema.FieldType, values []string, params map[string]string) Predicate {
	t.Helper()
	spec, ok := Default().Lookup(name)
	require.True(t, ok, name)
	require.NoError(t, spec.CheckArgs(values, params))
	require.True(t, spec.SupportsType(ft), "%s on %s", name, ft)
	p, err := spec.Compile(Args{Type: ft, Values: values, Params: params})
	require.NoError(t, err)
	return p
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		name   string
		op     string
		ft     schema.FieldType
		values []string
		params map[string]string
		field  string
		want   bool
	}{
		{"eq keyword", "=", schema.FieldTypeKeyword, []string{"session"}, nil, "session", true},
		{"eq keyword case", "=", schema.FieldTypeKeyword, []string{"session"}, nil, "Session", false},
		{"eq any numeric", "eq", schema.FieldTypeAny, []string{"10"}, nil, "10.0", true},
		{"eq any string", "eq", schema.FieldTypeAny, []string{"job"}, nil, "job", true},
		{"eq any numeric vs text", "eq", schema.FieldTypeAny, []string{"10"}, nil, "ten", false},
		{"eq int", "=", schema.FieldTypeInt, []string{"42"}, nil, "042", true},
		{"eq date", "=", schema.FieldTypeDate, []string{"2015-03-01"}, nil, "2015-03-01T00:00:00Z", true},
		{"eq bool", "=", schema.FieldTypeBool, []string{"true"}, nil, "1", true},
		{"eq text terms", "=", schema.FieldTypeText, []string{"Quick Fox"}, nil, "the quick brown fox", true},
		{"eq text missing term", "=", schema.FieldTypeText, []string{"quick cat"}, nil, "the quick brown fox", false},
		{"ne", "!=", schema.FieldTypeKeyword, []string{"job"}, nil, "session", true},
		{"ne alias", "ne", schema.FieldTypeKeyword, []string{"job"}, nil, "job", false},
		{"gt int", ">", schema.FieldTypeInt, []string{"10"}, nil, "11", true},
		{"ge int", "ge", schema.FieldTypeInt, []string{"10"}, nil, "10", true},
		{"lt float", "<", schema.FieldTypeFloat, []string{"1.5"}, nil, "1.25", true},
		{"le date", "<=", schema.FieldTypeDate, []string{"2015-03-01"}, nil, "2015-03-02", false},
		{"lt any text", "<", schema.FieldTypeAny, []string{"m"}, nil, "apple", true},
		{"range inclusive low", "range", schema.FieldTypeInt, []string{"10", "20"}, nil, "10", true},
		{"range inclusive high", "range", schema.FieldTypeInt, []string{"10", "20"}, nil, "20", true},
		{"range outside", "range", schema.FieldTypeInt, []string{"10", "20"}, nil, "21", false},
		{"range exclusive low", "range", schema.FieldTypeInt, []string{"10", "20"}, map[string]string{"includelower": "false"}, "10", false},
		{"range exclusive high", "range", schema.FieldTypeInt, []string{"10", "20"}, map[string]string{"includeupper": "false"}, "20", false},
		{"range any numeric", "range", schema.FieldTypeAny, []string{"10", "20"}, nil, "15", true},
		{"range any text", "range", schema.FieldTypeAny, []string{"b", "d"}, nil, "c", true},
		{"in", "in", schema.FieldTypeKeyword, []string{"a", "b", "c"}, nil, "b", true},
		{"in miss", "in", schema.FieldTypeKeyword, []string{"a", "b", "c"}, nil, "d", false},
		{"prefix keyword", "prefix", schema.FieldTypeKeyword, []string{"sess"}, nil, "session", true},
		{"prefix text token", "prefix", schema.FieldTypeText, []string{"Bro"}, nil, "the quick brown fox", true},
		{"fuzzy default distance", "fuzzy", schema.FieldTypeKeyword, []string{"sesion"}, nil, "session", true},
		{"fuzzy too far", "fuzzy", schema.FieldTypeKeyword, []string{"sessxyz"}, nil, "session", false},
		{"fuzzy distance 2", "fuzzy", schema.FieldTypeKeyword, []string{"sesio"}, map[string]string{"distance": "2"}, "session", true},
		{"fuzzy prefix length", "fuzzy", schema.FieldTypeKeyword, []string{"xession"}, map[string]string{"prefixlength": "1"}, "session", false},
		{"fuzzy text", "fuzzy", schema.FieldTypeText, []string{"quikc"}, map[string]string{"distance": "2"}, "the quick fox", true},
		{"like star", "like", schema.FieldTypeKeyword, []string{"s*n"}, nil, "session", true},
		{"like question", "like", schema.FieldTypeKeyword, []string{"j?b"}, nil, "job", true},
		{"like miss", "like", schema.FieldTypeKeyword, []string{"j?b"}, nil, "jobs", false},
		{"phrase exact", "phrase", schema.FieldTypeText, []string{"quick brown"}, nil, "the quick brown fox", true},
		{"phrase order", "phrase", schema.FieldTypeText, []string{"brown quick"}, nil, "the quick brown fox", false},
		{"phrase gap no slop", "phrase", schema.FieldTypeText, []string{"quick fox"}, nil, "the quick brown fox", false},
		{"phrase gap with slop", "phrase", schema.FieldTypeText, []string{"quick", "fox"}, map[string]string{"slop": "1"}, "the quick brown fox", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := compile(t, tt.op, tt.ft, tt.values, tt.params)
			got, err := p(tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuiltins_CompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		op     string
		ft     schema.FieldType
		values []string
	}{
		{"int literal", "=", schema.FieldTypeInt, []string{"abc"}},
		{"date literal", ">", schema.FieldTypeDate, []string{"yesterday"}},
		{"range reversed", "range", schema.FieldTypeInt, []string{"20", "10"}},
		{"range mixed bounds", "range", schema.FieldTypeAny, []string{"1", "z"}},
		{"empty prefix", "prefix", schema.FieldTypeKeyword, []string{""}},
		{"empty phrase", "phrase", schema.FieldTypeText, []string{"  "}},
		{"empty text term", "=", schema.FieldTypeText, []string{"--"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, ok := Default().Lookup(tt.op)
			require.True(t, ok)
			_, err := spec.Compile(Args{Type: tt.ft, Values: tt.values})
			assert.Error(t, err)
		})
	}
}

func TestBuiltins_Supports(t *testing.T) {
	r := Default()
	rangeSpec, _ := r.Lookup("range")
	assert.True(t, rangeSpec.SupportsType(schema.FieldTypeInt))
	assert.True(t, rangeSpec.SupportsType(schema.FieldTypeDate))
	assert.True(t, rangeSpec.SupportsType(schema.FieldTypeAny))
	assert.False(t, rangeSpec.SupportsType(schema.FieldTypeKeyword))
	assert.False(t, rangeSpec.SupportsType(schema.FieldTypeText))

	fuzzy, _ := r.Lookup("fuzzy")
	assert.False(t, fuzzy.SupportsType(schema.FieldTypeInt))
	assert.True(t, fuzzy.SupportsType(schema.FieldTypeText))

	phrase, _ := r.Lookup("phrase")
	assert.False(t, phrase.SupportsType(schema.FieldTypeKeyword))

	eq, _ := r.Lookup("=")
	assert.True(t, eq.SupportsType(schema.FieldTypeBool))
}

func TestBuiltins_UnsupportedStoredValue(t *testing.T) {
	p := compile(t, "range", schema.FieldTypeAny, []string{"10", "20"}, nil)
	_, err := p("not-a-number")
	assert.ErrorIs(t, err, ErrUnsupported)

	p = compile(t, ">", schema.FieldTypeInt, []string{"10"}, nil)
	_, err = p("ten")
	assert.ErrorIs(t, err, ErrUnsupported)
}
