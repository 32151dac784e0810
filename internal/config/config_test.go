package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strongdm/cedar-go-generators/generator"
	"github.com/strongdm/cedar-go-generators/hierarchy"
	"github.com/strongdm/cedar-go-generators/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	c, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), *c)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cedargen.yaml")
	data := `
generator:
  max_depth: 3
  enable_like: false
  enable_unknowns: true
hierarchy:
  max_entities_per_type: 2
workers: 8
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Generator.MaxDepth)
	assert.Equal(t, generator.DefaultSettings().MaxWidth, c.Generator.MaxWidth)
	assert.False(t, c.Generator.EnableLike)
	assert.True(t, c.Generator.EnableUnknowns)
	assert.True(t, c.Generator.EnableExtensions)
	assert.Equal(t, 2, c.Hierarchy.MaxEntitiesPerType)
	assert.Equal(t, 8, c.Workers)
	assert.Equal(t, 4096, c.OracleBytes)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cedargen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generator:\n  max_depth: 3\n"), 0o600))
	t.Setenv("CEDARGEN_GENERATOR_MAX_DEPTH", "5")
	t.Setenv("CEDARGEN_GENERATOR_ENABLE_EXTENSIONS", "false")

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Generator.MaxDepth)
	assert.False(t, c.Generator.EnableExtensions)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid settings", func(t *testing.T) {
		t.Setenv("CEDARGEN_GENERATOR_MAX_WIDTH", "0")
		_, err := config.Load("")
		assert.ErrorIs(t, err, generator.ErrInvalidSettings)
	})

	t.Run("invalid hierarchy", func(t *testing.T) {
		t.Setenv("CEDARGEN_HIERARCHY_MAX_ENTITIES_PER_TYPE", "0")
		_, err := config.Load("")
		assert.ErrorIs(t, err, hierarchy.ErrInvalidConfig)
	})

	t.Run("workers", func(t *testing.T) {
		c := config.Default()
		c.Workers = 0
		assert.Error(t, c.Validate())
	})
}
