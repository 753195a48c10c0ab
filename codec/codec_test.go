package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	SessionID string            `json:"SessionId"`
	Props     map[string]string `json:"Props"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}
	_, ok := ByName("msgpack")
	assert.False(t, ok)

	c, ok := ByName("")
	require.True(t, ok)
	assert.Equal(t, Default, c)
	assert.ElementsMatch(t, []string{"json", "go-json"}, Names())
}

func TestCodecsInterchangeable(t *testing.T) {
	in := payload{SessionID: "s-1", Props: map[string]string{"a": "b"}}

	for _, enc := range []Codec{JSON{}, GoJSON{}} {
		for _, dec := range []Codec{JSON{}, GoJSON{}} {
			t.Run(enc.Name()+"->"+dec.Name(), func(t *testing.T) {
				data, err := enc.Marshal(in)
				require.NoError(t, err)

				var out payload
				require.NoError(t, dec.Unmarshal(data, &out))
				assert.Equal(t, in, out)
			})
		}
	}
}

func TestGoJSONAppend(t *testing.T) {
	dst := []byte("prefix:")
	out, err := GoJSON{}.Append(dst, map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, `prefix:{"a":1}`, string(out))
}

func TestAppend(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}, opaque{}} {
		t.Run(c.Name(), func(t *testing.T) {
			out, err := Append(c, []byte("x="), map[string]int{"a": 1})
			require.NoError(t, err)
			assert.Equal(t, `x={"a":1}`, string(out))
		})
	}

	out, err := Append(JSON{}, []byte("keep"), make(chan int))
	assert.Error(t, err)
	assert.Equal(t, "keep", string(out))
}

// opaque hides the Append method of JSON.
type opaque struct{ c JSON }

func (o opaque) Marshal(v any) ([]byte, error)      { return o.c.Marshal(v) }
func (o opaque) Unmarshal(data []byte, v any) error { return o.c.Unmarshal(data, v) }
func (opaque) Name() string                         { return "opaque" }

func TestLineEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewLineEncoder(&buf, nil)
	require.NoError(t, enc.Encode(payload{SessionID: "a"}))
	require.NoError(t, enc.Encode(payload{SessionID: "b\nc"}))
	assert.Equal(t, 2, enc.Lines())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	var p payload
	require.NoError(t, Default.Unmarshal([]byte(lines[1]), &p))
	assert.Equal(t, "b\nc", p.SessionID)

	err := enc.Encode(make(chan int))
	assert.ErrorContains(t, err, "line 3")
	assert.Equal(t, 2, enc.Lines())
}

func TestMustMarshal(t *testing.T) {
	assert.JSONEq(t, `{"SessionId":"x","Props":null}`, string(MustMarshal(nil, payload{SessionID: "x"})))
	assert.Panics(t, func() { MustMarshal(JSON{}, make(chan int)) })
}
