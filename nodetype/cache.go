package nodetype

import (
	"sync"

	"github.com/c360/flowcore/pkg/cache"
)

// CachedRepository wraps a Repository with an LRU schema cache keyed by
// normalized type name, scoped to the catalog version. When the underlying
// repository reports a new catalog version, the whole cache is discarded so a
// reload never serves stale schemas.
//
// Absent types are not cached; the repository is consulted again on each miss.
type CachedRepository struct {
	inner Repository
	cache cache.Cache[*Description]

	mu      sync.Mutex
	version string
}

// NewCachedRepository creates a version-scoped schema cache in front of inner.
// maxSize bounds the number of cached schemas.
func NewCachedRepository(inner Repository, maxSize int, options ...cache.Option[*Description]) (*CachedRepository, error) {
	c, err := cache.NewLRU[*Description](maxSize, options...)
	if err != nil {
		return nil, err
	}

	repo := &CachedRepository{
		inner: inner,
		cache: c,
	}
	if versioned, ok := inner.(Versioned); ok {
		repo.version = versioned.CatalogVersion()
	}
	return repo, nil
}

// GetNodeType implements Repository.
func (r *CachedRepository) GetNodeType(typeName string) (*Description, bool) {
	name := Normalize(typeName)
	if name == "" {
		return nil, false
	}

	r.refresh()

	if desc, ok := r.cache.Get(name); ok {
		return desc, true
	}

	desc, ok := r.inner.GetNodeType(name)
	if !ok {
		return nil, false
	}

	// Best effort: a failed Set only costs a future cache miss
	_, _ = r.cache.Set(name, desc)
	return desc, true
}

// Stats exposes the underlying cache statistics.
func (r *CachedRepository) Stats() *cache.Statistics {
	return r.cache.Stats()
}

// refresh clears the cache when the inner catalog version has moved.
func (r *CachedRepository) refresh() {
	versioned, ok := r.inner.(Versioned)
	if !ok {
		return
	}

	current := versioned.CatalogVersion()

	r.mu.Lock()
	defer r.mu.Unlock()
	if current != r.version {
		_ = r.cache.Clear()
		r.version = current
	}
}
