// Package drawingcache caches drawings for the hot reservation and stats
// paths. The drawing domain owns the cache and invalidates an entry whenever it
// changes the drawing.
package drawingcache

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/puzpuzpuz/xsync"
	"github.com/slotdraw/backend/internal/common"
	"github.com/slotdraw/backend/internal/entity"
	"github.com/slotdraw/backend/internal/repository"
	"github.com/slotdraw/backend/pkg/xcontext"
	"github.com/slotdraw/backend/pkg/xredis"
)

type Cache interface {
	// Get returns the drawing, loading it from the database on a miss. It
	// returns gorm.ErrRecordNotFound if the drawing does not exist.
	Get(ctx context.Context, id string) (*entity.Drawing, error)
	Invalidate(ctx context.Context, id string)
}

type redisCache struct {
	redisClient xredis.Client
	drawingRepo repository.DrawingRepository
	ttl         time.Duration
}

func NewRedisCache(
	redisClient xredis.Client,
	drawingRepo repository.DrawingRepository,
	ttl time.Duration,
) *redisCache {
	return &redisCache{redisClient: redisClient, drawingRepo: drawingRepo, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, id string) (*entity.Drawing, error) {
	var drawing entity.Drawing
	err := c.redisClient.GetObj(ctx, common.RedisKeyDrawing(id), &drawing)
	if err == nil {
		return &drawing, nil
	}

	if !xredis.IsNil(err) {
		xcontext.Logger(ctx).Warnf("Cannot get drawing %s from redis: %v", id, err)
	}

	result, err := c.drawingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.redisClient.SetObj(ctx, common.RedisKeyDrawing(id), result, c.ttl); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot set drawing %s to redis: %v", id, err)
	}

	return result, nil
}

func (c *redisCache) Invalidate(ctx context.Context, id string) {
	if err := c.redisClient.Del(ctx, common.RedisKeyDrawing(id)); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot invalidate drawing %s: %v", id, err)
	}
}

type localEntry struct {
	drawing  entity.Drawing
	expireAt time.Time
}

type localCache struct {
	entries     *xsync.MapOf[localEntry]
	drawingRepo repository.DrawingRepository
	clock       clockwork.Clock
	ttl         time.Duration
}

// NewLocalCache returns an in-process cache. Invalidation only reaches this
// process, so entries also expire after ttl.
func NewLocalCache(
	drawingRepo repository.DrawingRepository,
	clock clockwork.Clock,
	ttl time.Duration,
) *localCache {
	return &localCache{
		entries:     xsync.NewMapOf[localEntry](),
		drawingRepo: drawingRepo,
		clock:       clock,
		ttl:         ttl,
	}
}

func (c *localCache) Get(ctx context.Context, id string) (*entity.Drawing, error) {
	now := c.clock.Now()
	if entry, ok := c.entries.Load(id); ok && now.Before(entry.expireAt) {
		drawing := entry.drawing
		return &drawing, nil
	}

	result, err := c.drawingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.entries.Store(id, localEntry{drawing: *result, expireAt: now.Add(c.ttl)})
	return result, nil
}

func (c *localCache) Invalidate(ctx context.Context, id string) {
	c.entries.Delete(id)
}
