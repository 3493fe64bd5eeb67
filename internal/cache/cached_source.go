package cache

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/voltpath/stationfinder/internal/config"
	"github.com/voltpath/stationfinder/internal/models"
	"github.com/voltpath/stationfinder/internal/overpass"
	"golang.org/x/sync/singleflight"
)

// CachedSource puts the in-memory LRU and an optional remote store in front
// of another element source. Identical queries in flight at the same time
// share one upstream request. Either tier may be nil.
type CachedSource struct {
	next  overpass.ElementSource
	lru   *ElementLRU
	store ElementStore
	group singleflight.Group
}

var _ overpass.ElementSource = (*CachedSource)(nil)

func NewCachedSource(next overpass.ElementSource, lru *ElementLRU, store ElementStore) *CachedSource {
	return &CachedSource{
		next:  next,
		lru:   lru,
		store: store,
	}
}

func (s *CachedSource) Fetch(ctx context.Context, query string) ([]models.Element, error) {
	key := QueryKey(query)

	if s.lru != nil {
		if elements, ok := s.lru.Get(key); ok {
			log.Debug().Str("query_key", key).Msg("Cache HIT for elements (LRU)")
			return elements, nil
		}
	}

	// The shared load outlives any single caller; the upstream client's own
	// timeout bounds it. Each caller still stops waiting when its ctx ends.
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return s.load(context.WithoutCancel(ctx), key, query)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		log.Debug().Str("query_key", key).Msg("Shared in-flight element fetch")
	}
	return res.Val.([]models.Element), nil
}

// Stats reports the in-memory tier counters, or nil when it is disabled
func (s *CachedSource) Stats() map[string]uint64 {
	if s.lru == nil {
		return nil
	}
	stats := s.lru.Stats()
	stats["lru_entries"] = uint64(s.lru.Len())
	return stats
}

// Clear drops everything held in memory. Remote tiers expire on their own.
func (s *CachedSource) Clear() {
	if s.lru != nil {
		s.lru.Clear()
	}
}

func (s *CachedSource) load(ctx context.Context, key, query string) ([]models.Element, error) {
	if s.store != nil {
		elements, ok, err := s.store.GetElements(ctx, key)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("query_key", key).Msg("Remote element cache lookup failed")
		case ok:
			log.Debug().Str("query_key", key).Msg("Cache HIT for elements (remote)")
			s.remember(key, elements)
			return elements, nil
		}
	}
	log.Debug().Str("query_key", key).Msg("Cache MISS for elements, calling Overpass")

	elements, err := s.next.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	s.remember(key, elements)
	if s.store != nil {
		if err := s.store.SaveElements(ctx, key, elements); err != nil {
			log.Warn().Err(err).Str("query_key", key).Msg("Saving elements to remote cache failed")
		}
	}
	return elements, nil
}

func (s *CachedSource) remember(key string, elements []models.Element) {
	if s.lru != nil {
		s.lru.Add(key, elements)
	}
}

// NewSource wraps next with the tiers enabled in cfg
func NewSource(ctx context.Context, next overpass.ElementSource, cfg *config.CacheConfig) (overpass.ElementSource, error) {
	var lru *ElementLRU
	if cfg.EnableLRUCache {
		var err error
		lru, err = NewElementLRU(cfg.ElementLRUSize, cfg.GetElementLRUTTL())
		if err != nil {
			return nil, fmt.Errorf("creating element LRU: %w", err)
		}
	}

	store, err := NewRemoteStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if lru == nil && store == nil {
		return next, nil
	}
	return NewCachedSource(next, lru, store), nil
}
