package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var schemaPath = filepath.Join("..", "..", "schema", "testdata", "photoapp.json")

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--schema", schemaPath}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootRejectsFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "expr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootRequiresSchema(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"expr"})
	assert.Error(t, cmd.Execute())
}

func TestExprText(t *testing.T) {
	out, err := execute(t, "expr", "--type", "Long", "--count", "5", "--seed", "7")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.GreaterOrEqual(t, len(lines), 5)

	again, err := execute(t, "expr", "--type", "Long", "--count", "5", "--seed", "7")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestExprJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "expr", "--count", "20", "--ground")
	require.NoError(t, err)
	var results []exprResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 20)
	var ok int
	for i, r := range results {
		assert.Equal(t, uint64(i), r.Seed)
		if r.Error == "" {
			assert.NotEmpty(t, r.Expr)
			ok++
		}
	}
	assert.Positive(t, ok)
}

func TestExprBadType(t *testing.T) {
	_, err := execute(t, "expr", "--type", "Set<Nope>")
	assert.Error(t, err)
}

func TestExprDisabledExtensions(t *testing.T) {
	t.Setenv("CEDARGEN_GENERATOR_ENABLE_EXTENSIONS", "false")
	out, err := execute(t, "--format", "yaml", "expr", "--type", "decimal")
	require.NoError(t, err)
	var results []exprResult
	require.NoError(t, yaml.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "feature_disabled", results[0].Error)
}

func TestEntities(t *testing.T) {
	out, err := execute(t, "--format", "json", "entities", "--seed", "3")
	require.NoError(t, err)
	var entities []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &entities))
	assert.NotEmpty(t, entities)
	for _, e := range entities {
		assert.Contains(t, e, "uid")
	}

	text, err := execute(t, "entities", "--seed", "3", "--populate=false")
	require.NoError(t, err)
	assert.Contains(t, text, `PhotoApp::Action::"view"`)
	assert.NotContains(t, text, "  .")
}

func TestCorpus(t *testing.T) {
	out := filepath.Join(t.TempDir(), "corpus.tar.gz")
	summary, err := execute(t, "--format", "json", "corpus", "--count", "16", "--out", out, "--seed", "100")
	require.NoError(t, err)

	var s corpusSummary
	require.NoError(t, json.Unmarshal([]byte(summary), &s))
	assert.Equal(t, out, s.Out)
	assert.Positive(t, s.Written)
	assert.Positive(t, s.Outcomes["ok"])

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	cases, err := ReadCorpus(f)
	require.NoError(t, err)
	require.Len(t, cases, s.Written)
	for i, c := range cases {
		if i > 0 {
			assert.Greater(t, c.Seed, cases[i-1].Seed)
		}
		assert.GreaterOrEqual(t, c.Seed, uint64(100))
		assert.Equal(t, oracleBytes(c.Seed, len(c.Oracle)), c.Oracle)
		assert.NotEmpty(t, c.Expr)
		assert.Positive(t, c.Nodes)
		assert.True(t, json.Valid(c.Entities))
	}
}

func TestOracleBytes(t *testing.T) {
	assert.Equal(t, oracleBytes(1, 64), oracleBytes(1, 64))
	assert.NotEqual(t, oracleBytes(1, 64), oracleBytes(2, 64))
	assert.Len(t, oracleBytes(9, 10), 10)
}
