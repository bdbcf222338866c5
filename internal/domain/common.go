package domain

import (
	"context"
	"errors"
	"time"

	"github.com/slotdraw/backend/internal/domain/drawingcache"
	"github.com/slotdraw/backend/internal/entity"
	"github.com/slotdraw/backend/pkg/errorx"
	"github.com/slotdraw/backend/pkg/xcontext"
	"gorm.io/gorm"
)

func getDrawing(ctx context.Context, cache drawingcache.Cache, id string) (*entity.Drawing, error) {
	if id == "" {
		return nil, errorx.New(errorx.BadRequest, "Require drawing id")
	}

	drawing, err := cache.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found drawing")
		}

		xcontext.Logger(ctx).Errorf("Cannot get drawing: %v", err)
		return nil, errorx.Unknown
	}

	return drawing, nil
}

func decodeRules(ctx context.Context, drawing *entity.Drawing) (entity.DrawingRules, error) {
	rules, err := drawing.DecodeRules()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot decode rules of drawing %s: %v", drawing.ID, err)
		return rules, errorx.Unknown
	}

	return rules, nil
}

func checkNumber(drawing *entity.Drawing, number int) error {
	if number < 1 || number > drawing.TotalSlots {
		return errorx.New(errorx.BadRequest, "Number %d is out of range [1, %d]", number, drawing.TotalSlots)
	}

	return nil
}

// checkNumbers validates a non-empty list of distinct slot numbers.
func checkNumbers(drawing *entity.Drawing, numbers []int, maxLen int) error {
	if len(numbers) == 0 {
		return errorx.New(errorx.BadRequest, "Require at least one number")
	}

	if len(numbers) > maxLen {
		return errorx.New(errorx.BadRequest, "Too many numbers, the maximum is %d", maxLen)
	}

	seen := make(map[int]struct{}, len(numbers))
	for _, n := range numbers {
		if err := checkNumber(drawing, n); err != nil {
			return err
		}

		if _, ok := seen[n]; ok {
			return errorx.New(errorx.BadRequest, "Duplicated number %d", n)
		}
		seen[n] = struct{}{}
	}

	return nil
}

// reservationTTL returns the hold duration of a request. Zero means the
// configured default, and the result never exceeds the configured maximum.
func reservationTTL(ctx context.Context, ttlMinutes int) (time.Duration, error) {
	cfg := xcontext.Configs(ctx).Reservation
	if ttlMinutes < 0 {
		return 0, errorx.New(errorx.BadRequest, "TTL must not be negative")
	}

	ttl := cfg.DefaultTTL.Duration
	if ttlMinutes > 0 {
		ttl = time.Duration(ttlMinutes) * time.Minute
	}

	if ttl > cfg.MaxTTL.Duration {
		ttl = cfg.MaxTTL.Duration
	}

	return ttl, nil
}
