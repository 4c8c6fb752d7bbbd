package nodetype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already normalized", "core.httpRequest", "core.httpRequest"},
		{"uppercase package", "Core.httpRequest", "core.httpRequest"},
		{"no package segment", "set", "core.set"},
		{"trims whitespace", "  core.set ", "core.set"},
		{"multi-segment package", "Vendor.Nodes.webhook", "vendor.nodes.webhook"},
		{"empty", "", ""},
		{"preserves node name case", "core.splitInBatches", "core.splitInBatches"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, Normalize(test.input))
		})
	}
}

func TestDescription_HasOutput(t *testing.T) {
	desc := &Description{Name: "core.if", Outputs: 2, OutputNames: []string{"true", "false"}}

	assert.True(t, desc.HasOutput(0))
	assert.True(t, desc.HasOutput(1))
	assert.False(t, desc.HasOutput(2))
	assert.False(t, desc.HasOutput(-1))

	assert.Equal(t, "true", desc.OutputName(0))
	assert.Equal(t, "false", desc.OutputName(1))
	assert.Equal(t, "", desc.OutputName(5))
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()

	err := reg.Register(&Description{Name: "core.set", Outputs: 1})
	require.NoError(t, err)

	desc, ok := reg.GetNodeType("core.set")
	require.True(t, ok)
	assert.Equal(t, "core.set", desc.Name)

	// Lookup normalizes
	_, ok = reg.GetNodeType("Core.set")
	assert.True(t, ok)

	_, ok = reg.GetNodeType("core.unknown")
	assert.False(t, ok)
}

func TestRegistry_RejectsInvalidRegistrations(t *testing.T) {
	reg := NewRegistry()

	assert.Error(t, reg.Register(nil))
	assert.Error(t, reg.Register(&Description{Name: ""}))
	assert.Error(t, reg.Register(&Description{Name: "core.bad", Outputs: -1}))
	assert.Error(t, reg.Register(&Description{
		Name: "core.if", Outputs: 2, OutputNames: []string{"true"},
	}))

	require.NoError(t, reg.Register(&Description{Name: "core.set", Outputs: 1}))
	assert.Error(t, reg.Register(&Description{Name: "core.set", Outputs: 1}),
		"duplicate registration must fail")
}

func TestRegistry_CatalogVersionChanges(t *testing.T) {
	reg := NewRegistry()
	v0 := reg.CatalogVersion()

	require.NoError(t, reg.Register(&Description{Name: "core.set", Outputs: 1}))
	v1 := reg.CatalogVersion()
	assert.NotEqual(t, v0, v1)

	assert.True(t, reg.Remove("core.set"))
	v2 := reg.CatalogVersion()
	assert.NotEqual(t, v1, v2)

	assert.False(t, reg.Remove("core.set"))
	assert.Equal(t, v2, reg.CatalogVersion(), "failed remove must not bump the version")
}

func TestRegistry_Types(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&Description{Name: "core.set", Outputs: 1}))
	require.NoError(t, reg.Register(&Description{Name: "core.if", Outputs: 2}))

	assert.Equal(t, []string{"core.if", "core.set"}, reg.Types())
	assert.Equal(t, 2, reg.Len())
}

func TestCachedRepository_ServesFromCache(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&Description{Name: "core.set", Outputs: 1}))

	cached, err := NewCachedRepository(reg, 10)
	require.NoError(t, err)

	desc, ok := cached.GetNodeType("core.set")
	require.True(t, ok)
	assert.Equal(t, "core.set", desc.Name)

	// Second lookup hits the cache
	_, ok = cached.GetNodeType("core.set")
	require.True(t, ok)
	assert.Equal(t, int64(1), cached.Stats().Hits())

	_, ok = cached.GetNodeType("core.unknown")
	assert.False(t, ok)
}

func TestCachedRepository_InvalidatesOnCatalogReload(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&Description{Name: "core.set", Outputs: 1, Version: 1}))

	cached, err := NewCachedRepository(reg, 10)
	require.NoError(t, err)

	desc, ok := cached.GetNodeType("core.set")
	require.True(t, ok)
	assert.Equal(t, float64(1), desc.Version)

	// Catalog reload: replace the type with a newer version
	require.True(t, reg.Remove("core.set"))
	require.NoError(t, reg.Register(&Description{Name: "core.set", Outputs: 1, Version: 2}))

	desc, ok = cached.GetNodeType("core.set")
	require.True(t, ok)
	assert.Equal(t, float64(2), desc.Version, "stale schema must not survive a catalog reload")
}
