package condition

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalJSON_WireShape(t *testing.T) {
	data := `{
		"Boost": 3,
		"FieldName": "type",
		"MissingValueOption": "Ignore",
		"Operator": "=",
		"Params": {"k": "v"},
		"Values": ["session"]
	}`

	var c Condition
	require.NoError(t, json.Unmarshal([]byte(data), &c))
	assert.Equal(t, 3, c.Boost)
	assert.Equal(t, "type", c.FieldName)
	assert.Equal(t, "=", c.Operator)
	assert.Equal(t, []string{"session"}, c.Values)
	assert.Equal(t, map[string]string{"k": "v"}, c.Params)
	assert.Equal(t, MissingIgnore, c.MissingValue.Kind())
}

func TestUnmarshalJSON_DefaultsToThrowError(t *testing.T) {
	var c Condition
	require.NoError(t, json.Unmarshal([]byte(`{"FieldName":"type","Operator":"eq","Values":["session"]}`), &c))
	assert.Equal(t, MissingThrowError, c.MissingValue.Kind())
	assert.Equal(t, 0, c.Boost)
}

func TestUnmarshalJSON_UnknownOption(t *testing.T) {
	var c Condition
	err := json.Unmarshal([]byte(`{"FieldName":"type","MissingValueOption":"Skip"}`), &c)
	assert.Error(t, err)
}

func TestUnmarshalJSON_UseDefaultWithoutParam(t *testing.T) {
	var c Condition
	require.NoError(t, json.Unmarshal([]byte(`{"FieldName":"age","Operator":"range","Values":["1","2"],"MissingValueOption":"UseDefault"}`), &c))
	assert.Equal(t, MissingUseDefault, c.MissingValue.Kind())

	_, ok := c.MissingValue.Default()
	assert.False(t, ok)
	assert.ErrorIs(t, c.Validate(nil), ErrValidation)
}

func TestMarshalJSON_UseDefault(t *testing.T) {
	c := New("age", "range", "10", "20").WithMissingValue(UseDefault("15"))

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Boost":0,"FieldName":"age","MissingValueOption":"UseDefault","Operator":"range","Params":{"default":"15"},"Values":["10","20"]}`, string(data))
	assert.Nil(t, c.Params, "marshal must not mutate the condition")

	var back Condition
	require.NoError(t, json.Unmarshal(data, &back))
	v, ok := back.MissingValue.Default()
	assert.True(t, ok)
	assert.Equal(t, "15", v)
}

func TestMarshalJSON_BoundDefaultWinsOverParam(t *testing.T) {
	c := New("age", "range", "10", "20").
		WithParam("default", "99").
		WithMissingValue(UseDefault("15"))

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, "99", c.Params["default"], "marshal must not mutate the condition")

	var back Condition
	require.NoError(t, json.Unmarshal(data, &back))
	v, ok := back.MissingValue.Default()
	require.True(t, ok)
	assert.Equal(t, "15", v)

	_, before, err := c.Resolve(nil)
	require.NoError(t, err)
	_, after, err := back.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestMarshalJSON_EmptyValues(t *testing.T) {
	data, err := json.Marshal(Condition{FieldName: "f", Operator: "eq"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Boost":0,"FieldName":"f","MissingValueOption":"ThrowError","Operator":"eq","Values":[]}`, string(data))
}
