package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	renderDialect, renderPlaceholder, renderJSON = "", "", false
	t.Setenv("SQLRENDER_DIALECT", "postgres")

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRenderFromStdin(t *testing.T) {
	out, err := execute(t, `{"select": [{"ident": ["t", "a.b"]}], "where": {"call": "=", "args": [{"ident": "id"}, {"param": 7}]}}`,
		"render", "--placeholder", "dollar")
	require.NoError(t, err)
	assert.Equal(t, "SELECT \"t\".\"a.b\" WHERE (\"id\" = $1)\n-- $1 = 7\n", out)
}

func TestRenderFileWithDialectFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"select": [{"call": "hour", "args": [{"ident": "title"}]}]}`), 0o644))

	out, err := execute(t, "", "render", "--dialect", "h2", "--json", path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "h2", got["dialect"])
	assert.Equal(t, `SELECT hour("TITLE")`, got["sql"])
	assert.Equal(t, []any{}, got["args"])
}

func TestRenderErrors(t *testing.T) {
	_, err := execute(t, `not json`, "render")
	assert.ErrorContains(t, err, "decoding document")

	_, err = execute(t, `{"select": [{"ident": "a"}]}`, "render", "--dialect", "oracle")
	assert.Error(t, err)

	_, err = execute(t, `{"select": [{"num": 1}]}`, "render", "--placeholder", "percent")
	assert.Error(t, err)

	_, err = execute(t, `{"from": "t"}`, "render")
	assert.ErrorContains(t, err, "invalid query document")
}

func TestDialectsCommand(t *testing.T) {
	out, err := execute(t, "", "dialects")
	require.NoError(t, err)
	assert.Contains(t, out, "  - postgres (default)\n")
	assert.Contains(t, out, "  - distinct-count\n")
}
