package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleCache_BasicOperations(t *testing.T) {
	c, err := NewSimple[string]()
	require.NoError(t, err)

	created, err := c.Set("a", "one")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = c.Set("a", "two")
	require.NoError(t, err)
	assert.False(t, created, "overwrite should report update, not create")

	value, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "two", value)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	deleted, err := c.Delete("a")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = c.Delete("a")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSimpleCache_InvalidKey(t *testing.T) {
	c, err := NewSimple[int]()
	require.NoError(t, err)

	_, err = c.Set("", 1)
	assert.Error(t, err)

	_, err = c.Set("bad\x00key", 1)
	assert.Error(t, err)
}

func TestSimpleCache_Stats(t *testing.T) {
	c, err := NewSimple[int]()
	require.NoError(t, err)

	_, _ = c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	stats := c.Stats()
	require.NotNil(t, stats)
	assert.Equal(t, int64(2), stats.Hits())
	assert.Equal(t, int64(1), stats.Misses())
	assert.Equal(t, int64(1), stats.Sets())
	assert.InDelta(t, 2.0/3.0, stats.HitRatio(), 0.001)
}

func TestSimpleCache_Clear(t *testing.T) {
	c, err := NewSimple[int]()
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, _ = c.Set(fmt.Sprintf("key%d", i), i)
	}
	assert.Equal(t, 5, c.Size())

	require.NoError(t, c.Clear())
	assert.Equal(t, 0, c.Size())
	assert.Empty(t, c.Keys())
}

func TestLRUCache_Eviction(t *testing.T) {
	var evicted []string
	c, err := NewLRU[int](3, WithEvictionCallback[int](func(key string, _ int) {
		evicted = append(evicted, key)
	}))
	require.NoError(t, err)

	_, _ = c.Set("a", 1)
	_, _ = c.Set("b", 2)
	_, _ = c.Set("c", 3)

	// Touch "a" so "b" becomes least recently used
	c.Get("a")

	_, _ = c.Set("d", 4)

	assert.Equal(t, 3, c.Size())
	assert.Equal(t, []string{"b"}, evicted)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)

	assert.Equal(t, int64(1), c.Stats().Evictions())
}

func TestLRUCache_InvalidSize(t *testing.T) {
	_, err := NewLRU[int](0)
	assert.Error(t, err)

	_, err = NewLRU[int](-5)
	assert.Error(t, err)
}

func TestLRUCache_KeysOrder(t *testing.T) {
	c, err := NewLRU[int](10)
	require.NoError(t, err)

	_, _ = c.Set("a", 1)
	_, _ = c.Set("b", 2)
	_, _ = c.Set("c", 3)
	c.Get("a")

	// Most recently used first
	assert.Equal(t, []string{"a", "c", "b"}, c.Keys())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c, err := NewLRU[int](100)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("key%d", i%20)
				_, _ = c.Set(key, g*1000+i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Size(), 20)
}

func TestCache_PrometheusMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	c, err := NewSimple[int](WithMetrics[int](registry, "schema"))
	require.NoError(t, err)

	_, _ = c.Set("a", 1)
	c.Get("a")
	c.Get("missing")

	families, err := registry.Gather()
	require.NoError(t, err)

	counters := map[string]float64{}
	for _, family := range families {
		for _, m := range family.GetMetric() {
			if m.GetCounter() != nil {
				counters[family.GetName()] = m.GetCounter().GetValue()
			}
		}
	}

	assert.Equal(t, 1.0, counters["flowcore_cache_hits_total"])
	assert.Equal(t, 1.0, counters["flowcore_cache_misses_total"])
	assert.Equal(t, 1.0, counters["flowcore_cache_sets_total"])

	// Gauge reflects current size
	var sizeValue *dto.Gauge
	for _, family := range families {
		if family.GetName() == "flowcore_cache_size" {
			sizeValue = family.GetMetric()[0].GetGauge()
		}
	}
	require.NotNil(t, sizeValue)
	assert.Equal(t, 1.0, sizeValue.GetValue())
}

func TestCache_DuplicateMetricsRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()

	_, err := NewSimple[int](WithMetrics[int](registry, "dup"))
	require.NoError(t, err)

	_, err = NewSimple[int](WithMetrics[int](registry, "dup"))
	assert.Error(t, err, "registering the same prefix twice should fail")
}
