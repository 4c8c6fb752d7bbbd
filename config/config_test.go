package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/flowcore/errors"
	"github.com/c360/flowcore/validator"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, validator.DefaultProfile, cfg.Profile())
	assert.Equal(t, 256, cfg.Validation.SchemaCacheSize)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"version": "1.2.0",
		"logging": {"level": "debug", "format": "text"},
		"metrics": {"enabled": true, "port": 9100, "path": "/metrics"},
		"validation": {"profile": "strict", "schema_cache_size": 64},
		"catalog_path": "catalog.json"
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, validator.ProfileStrict, cfg.Profile())
	assert.Equal(t, 64, cfg.Validation.SchemaCacheSize)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FLOWCORE_LOG_LEVEL", "warn")
	t.Setenv("FLOWCORE_PROFILE", "ai-friendly")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, validator.ProfileAIFriendly, cfg.Profile())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad json", `{`},
		{"bad level", `{"logging": {"level": "loud", "format": "json"}}`},
		{"bad profile", `{"logging": {"level": "info", "format": "json"}, "validation": {"profile": "lenient"}}`},
		{"bad port", `{"logging": {"level": "info", "format": "json"}, "metrics": {"port": 99999}}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.json", test.content))
			require.Error(t, err)
			assert.True(t, errors.IsStructural(err))
		})
	}

	_, err := Load("/nonexistent/config.json")
	require.Error(t, err)
}

func TestSafeConfig(t *testing.T) {
	sc := NewSafeConfig(Default())

	got := sc.Get()
	got.Logging.Level = "debug"
	assert.Equal(t, "info", sc.Get().Logging.Level, "Get returns a copy")

	next := Default()
	next.Logging.Level = "error"
	require.NoError(t, sc.Update(next))
	assert.Equal(t, "error", sc.Get().Logging.Level)

	bad := Default()
	bad.Logging.Level = "loud"
	assert.Error(t, sc.Update(bad))
	assert.Error(t, sc.Update(nil))
}

func TestParseCatalog(t *testing.T) {
	registry, err := ParseCatalog([]byte(`[
		{"name": "core.noOp", "displayName": "No Operation", "group": "transform", "outputs": 1},
		{"name": "core.if", "displayName": "If", "group": "transform", "outputs": 2, "outputNames": ["true", "false"]}
	]`))
	require.NoError(t, err)
	assert.Equal(t, 2, registry.Len())

	desc, found := registry.GetNodeType("core.if")
	require.True(t, found)
	assert.Equal(t, []string{"true", "false"}, desc.OutputNames)

	// Malformed catalog entries are rejected, not skipped
	_, err = ParseCatalog([]byte(`[{"name": "core.bad", "outputs": 1, "outputNames": ["a", "b"]}]`))
	require.Error(t, err)
	assert.True(t, errors.IsStructural(err))

	_, err = ParseCatalog([]byte(`not json`))
	assert.Error(t, err)
}

func TestLoadCatalog(t *testing.T) {
	path := writeFile(t, "catalog.json", `[{"name": "core.noOp", "outputs": 1}]`)

	registry, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 1, registry.Len())

	_, err = LoadCatalog("/nonexistent/catalog.json")
	require.Error(t, err)
	assert.True(t, errors.IsStructural(err))
}
