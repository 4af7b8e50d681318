package shader

import (
	"crypto/sha256"

	"github.com/gogpu/videograph/internal/cache"
)

type moduleKey struct {
	stage Stage
	sum   [sha256.Size]byte
}

// Cache memoizes Compile by stage and source. Backends share one Cache so
// the quad vertex stage is compiled once.
//
// Cache is safe for concurrent use.
type Cache struct {
	modules *cache.Cache[moduleKey, *Module]
}

// NewCache returns a Cache holding at most size modules (0 = unbounded).
func NewCache(size int) *Cache {
	return &Cache{modules: cache.New[moduleKey, *Module](size)}
}

// Compile returns the cached module for (stage, source), compiling it on
// first use. Failures are not cached.
func (c *Cache) Compile(stage Stage, source string) (*Module, error) {
	key := moduleKey{stage: stage, sum: sha256.Sum256([]byte(source))}
	return c.modules.GetOrLoad(key, func() (*Module, error) {
		return Compile(stage, source)
	})
}

// Len returns the number of cached modules.
func (c *Cache) Len() int { return c.modules.Len() }
