package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/2beens/trainloop/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=catalog_mocks_test.go -package=catalog_test

type exerciseStore interface {
	FindByID(ctx context.Context, id string) (*Exercise, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*Exercise, error)
}

// CachedRepo is a read-through cache in front of the catalog store.
// Catalog rows change rarely (bulk imports), so a short TTL is enough to
// pick up edits without invalidation hooks.
type CachedRepo struct {
	store exerciseStore
	cache *freecache.Cache
	ttl   time.Duration
}

func NewCachedRepo(store exerciseStore, sizeMB int, ttl time.Duration) *CachedRepo {
	return &CachedRepo{
		store: store,
		cache: freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:   ttl,
	}
}

func cacheKey(id string) []byte {
	return []byte("exercise::" + id)
}

func (c *CachedRepo) FindByID(ctx context.Context, id string) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cache.catalog.findById")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if exercise, ok := c.get(id); ok {
		span.SetAttributes(attribute.Bool("exercise.from-cache", true))
		return exercise, nil
	}
	span.SetAttributes(attribute.Bool("exercise.from-cache", false))

	exercise, err := c.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(exercise)
	return exercise, nil
}

func (c *CachedRepo) FindByIDs(ctx context.Context, ids []string) (_ map[string]*Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cache.catalog.findByIds")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	found := make(map[string]*Exercise, len(ids))
	var misses []string
	for _, id := range ids {
		if _, seen := found[id]; seen {
			continue
		}
		if exercise, ok := c.get(id); ok {
			found[id] = exercise
			continue
		}
		misses = append(misses, id)
	}
	span.SetAttributes(
		attribute.Int("cache.hits", len(found)),
		attribute.Int("cache.misses", len(misses)),
	)

	if len(misses) == 0 {
		return found, nil
	}

	loaded, err := c.store.FindByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}
	for id, exercise := range loaded {
		found[id] = exercise
		c.set(exercise)
	}

	return found, nil
}

func (c *CachedRepo) get(id string) (*Exercise, bool) {
	raw, err := c.cache.Get(cacheKey(id))
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Warnf("catalog cache get [%s]: %s", id, err)
		}
		return nil, false
	}

	var exercise Exercise
	if err := json.Unmarshal(raw, &exercise); err != nil {
		log.Errorf("catalog cache, unmarshal exercise [%s]: %s", id, err)
		c.cache.Del(cacheKey(id))
		return nil, false
	}
	return &exercise, true
}

func (c *CachedRepo) set(exercise *Exercise) {
	raw, err := json.Marshal(exercise)
	if err != nil {
		log.Errorf("catalog cache, marshal exercise [%s]: %s", exercise.ID, err)
		return
	}
	if err := c.cache.Set(cacheKey(exercise.ID), raw, int(c.ttl.Seconds())); err != nil {
		log.Warnf("catalog cache set [%s]: %s", exercise.ID, err)
	}
}
