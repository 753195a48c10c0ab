package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hupe1980/flexquery/codec"
	"github.com/hupe1980/flexquery/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeDump(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docs.jsonl")
	data := `{"Id":"s1","Fields":{"type":"session","age":"12"}}
{"Id":"s2","Fields":{"type":"session"}}
{"Id":"j1","Fields":{"type":"job","age":"15"}}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func TestOperatorsCmd(t *testing.T) {
	out, err := run(t, "operators")
	require.NoError(t, err)
	assert.Contains(t, out, "range")
	assert.Contains(t, out, "(alias of =)")
}

func TestValidateCmd(t *testing.T) {
	out, err := run(t, "validate", "--schema", "age=int", "type = 'session' AND age > '12'")
	require.NoError(t, err)
	assert.Contains(t, out, "ok:")
	assert.Contains(t, out, "(2 conditions)")

	_, err = run(t, "validate", "type ~~ 'x'")
	assert.Error(t, err)

	_, err = run(t, "validate", "--schema", "age=int", "age > 'old'")
	assert.Error(t, err)

	_, err = run(t, "validate", "--limit", "0", "type = 'session'")
	assert.Error(t, err)

	_, err = run(t, "validate", "--schema", "age=nope", "type = 'session'")
	assert.Error(t, err)
}

func TestSearchCmd(t *testing.T) {
	path := writeDump(t)

	out, err := run(t, "search", "--docs", path, "type = 'session'")
	require.NoError(t, err)

	var rs model.ResultSet
	require.NoError(t, codec.Default.Unmarshal([]byte(out), &rs))
	assert.Equal(t, 2, rs.TotalAvailable)
	assert.Equal(t, []string{"s1", "s2"}, rs.IDs())
	assert.Equal(t, "session", rs.Documents[0].Fields["type"])
}

func TestSearchCmd_PagingAndColumns(t *testing.T) {
	path := writeDump(t)

	out, err := run(t, "search", "--docs", path, "--limit", "1", "--page", "2", "--columns", "age",
		"type = 'session' OR type = 'job'")
	require.NoError(t, err)

	var rs model.ResultSet
	require.NoError(t, codec.Default.Unmarshal([]byte(out), &rs))
	assert.Equal(t, 3, rs.TotalAvailable)
	require.Len(t, rs.Documents, 1)
	assert.Equal(t, "s1", rs.Documents[0].ID)
	assert.Equal(t, map[string]string{"age": "12"}, rs.Documents[0].Fields)
}

func TestSearchCmd_JSONLOutput(t *testing.T) {
	path := writeDump(t)

	out, err := run(t, "search", "--docs", path, "--output", "jsonl", "--codec", "json", "type = 'session'")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	var d model.Document
	require.NoError(t, codec.Default.Unmarshal([]byte(lines[1]), &d))
	assert.Equal(t, "s2", d.ID)

	_, err = run(t, "search", "--docs", path, "--output", "yaml", "type = 'session'")
	assert.ErrorContains(t, err, "unknown output")

	_, err = run(t, "search", "--docs", path, "--codec", "msgpack", "type = 'session'")
	assert.ErrorContains(t, err, "unknown codec")
}

func TestSearchCmd_MissingField(t *testing.T) {
	path := writeDump(t)

	_, err := run(t, "search", "--docs", path, "--schema", "age=int", "age >= '10'")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "age")
}

func TestSearchCmd_ConfigFile(t *testing.T) {
	path := writeDump(t)
	cfgPath := filepath.Join(t.TempDir(), "flexquery.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("limit: 1\nschema:\n  - age=int\n"), 0o600))

	out, err := run(t, "search", "--config", cfgPath, "--docs", path, "age >= '12' {missing:'Ignore'}")
	require.NoError(t, err)

	var rs model.ResultSet
	require.NoError(t, codec.Default.Unmarshal([]byte(out), &rs))
	assert.Equal(t, 2, rs.TotalAvailable)
	assert.Len(t, rs.Documents, 1)
}
