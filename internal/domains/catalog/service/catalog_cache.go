package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"library-catalog/internal/domains/catalog/model"
	"library-catalog/pkg/cache"
)

const (
	catalogGenerationKey = "catalog:generation"
	catalogSnapshotKey   = "catalog:snapshot:%d"
)

// CatalogCache is a read-through cache for the catalog listing. Snapshots
// are keyed by a generation counter bumped after every committed write, so a
// snapshot taken before a commit is never served under a later generation.
// A nil *CatalogCache disables caching.
//
// When a bump fails the cache is bypassed until a later bump succeeds, since
// the snapshot under the current generation may predate the commit.
type CatalogCache struct {
	cache  cache.Cache
	ttl    time.Duration
	bypass atomic.Bool
}

func NewCatalogCache(c cache.Cache, ttl time.Duration) *CatalogCache {
	if c == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogCache{cache: c, ttl: ttl}
}

// Load returns the cached snapshot for the current generation or calls load
// and stores its result. Cache failures fall back to load.
func (c *CatalogCache) Load(ctx context.Context, load func(context.Context) (model.Catalog, error)) (model.Catalog, error) {
	if c == nil {
		return load(ctx)
	}

	var (
		gen int64
		err error
	)
	if c.bypass.Load() {
		gen, err = c.cache.Increment(context.WithoutCancel(ctx), catalogGenerationKey)
		if err != nil {
			return load(ctx)
		}
		c.bypass.Store(false)
		log.Info().Int64("generation", gen).Msg("catalog cache: generation bump recovered")
	} else {
		gen, err = c.cache.GetInt(ctx, catalogGenerationKey)
		if err != nil {
			log.Warn().Err(err).Msg("catalog cache: generation unavailable")
			return load(ctx)
		}
	}
	key := fmt.Sprintf(catalogSnapshotKey, gen)

	var cached model.Catalog
	found, err := c.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("key", key).Msg("catalog cache: read failed")
	case found:
		return cached, nil
	}

	catalog, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, catalog, c.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("catalog cache: write failed")
	}
	return catalog, nil
}

// Invalidate moves readers to a new generation. Called after commit, so it
// never fails the write: if the bump fails the current snapshot is dropped
// and this cache stops serving snapshots until a bump succeeds.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	_, err := c.cache.Increment(ctx, catalogGenerationKey)
	if err == nil {
		return
	}
	log.Error().Err(err).Msg("catalog cache: failed to bump generation")

	c.bypass.Store(true)
	gen, err := c.cache.GetInt(ctx, catalogGenerationKey)
	if err == nil {
		err = c.cache.Delete(ctx, fmt.Sprintf(catalogSnapshotKey, gen))
	}
	if err != nil {
		log.Error().Err(err).Msg("catalog cache: failed to drop stale snapshot")
	}
}
