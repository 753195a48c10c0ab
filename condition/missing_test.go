package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingValue_ZeroIsThrowError(t *testing.T) {
	var m MissingValue
	assert.Equal(t, MissingThrowError, m.Kind())
	assert.Equal(t, ThrowError(), m)
}

func TestMissingValue_Resolve(t *testing.T) {
	tests := []struct {
		name      string
		policy    MissingValue
		value     string
		ok        bool
		wantValue string
		want      Outcome
	}{
		{"present throw", ThrowError(), "x", true, "x", OutcomePresent},
		{"present ignore", Ignore(), "x", true, "x", OutcomePresent},
		{"present default keeps value", UseDefault("d"), "x", true, "x", OutcomePresent},
		{"missing throw", ThrowError(), "", false, "", OutcomeFail},
		{"missing ignore", Ignore(), "", false, "", OutcomeAbsent},
		{"missing default", UseDefault("d"), "", false, "d", OutcomePresent},
		{"missing empty default", UseDefault(""), "", false, "", OutcomePresent},
		{"missing unbound default", MissingValue{kind: MissingUseDefault}, "", false, "", OutcomeFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, out := tt.policy.Resolve(tt.value, tt.ok)
			assert.Equal(t, tt.want, out)
			assert.Equal(t, tt.wantValue, v)
		})
	}
}

func TestMissingValue_Bind(t *testing.T) {
	unbound := MissingValue{kind: MissingUseDefault}

	_, err := unbound.Bind(nil, "default")
	assert.Error(t, err)

	m, err := unbound.Bind(map[string]string{"default": "7"}, "default")
	require.NoError(t, err)
	v, ok := m.Default()
	assert.True(t, ok)
	assert.Equal(t, "7", v)

	m, err = unbound.Bind(map[string]string{"fallback": "1", "default": "2"}, "fallback")
	require.NoError(t, err)
	v, _ = m.Default()
	assert.Equal(t, "1", v)

	m, err = Ignore().Bind(nil, "default")
	require.NoError(t, err)
	assert.Equal(t, Ignore(), m)

	m, err = UseDefault("x").Bind(map[string]string{"default": "y"}, "default")
	require.NoError(t, err)
	v, _ = m.Default()
	assert.Equal(t, "x", v, "an explicit default wins over params")
}

func TestParseMissingValueKind(t *testing.T) {
	for _, k := range []MissingValueKind{MissingThrowError, MissingIgnore, MissingUseDefault} {
		got, err := ParseMissingValueKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	got, err := ParseMissingValueKind("")
	require.NoError(t, err)
	assert.Equal(t, MissingThrowError, got)

	_, err = ParseMissingValueKind("Skip")
	assert.Error(t, err)
}

func TestMissingValue_String(t *testing.T) {
	assert.Equal(t, "ThrowError", ThrowError().String())
	assert.Equal(t, "Ignore", Ignore().String())
	assert.Equal(t, `UseDefault("0")`, UseDefault("0").String())
	assert.Equal(t, "Absent", OutcomeAbsent.String())
}
