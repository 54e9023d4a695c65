package services

import (
	"context"

	"go.uber.org/zap"

	"stoik/internal/cache"
	"stoik/internal/events"
	applog "stoik/internal/log"
)

// hooks runs the side effects that follow a committed write.
// Failures are logged and never reach the caller.
type hooks struct {
	cache  cache.Cache
	events events.Publisher
}

func (h hooks) invalidate(ctx context.Context, action string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx); err != nil {
		applog.L().Warn("cache.invalidate", zap.String("after", action), zap.Error(err))
	}
}

func (h hooks) orderCreated(ctx context.Context, e events.OrderCreated) {
	if h.events == nil {
		return
	}
	if err := h.events.PublishOrderCreated(ctx, e); err != nil {
		applog.L().Warn("events.publish", zap.String("event", "order_created"), zap.String("order_id", e.OrderID), zap.Error(err))
	}
}

func (h hooks) lowStock(ctx context.Context, evs []events.LowStock) {
	if h.events == nil {
		return
	}
	for _, e := range evs {
		if err := h.events.PublishLowStock(ctx, e); err != nil {
			applog.L().Warn("events.publish", zap.String("event", "low_stock"), zap.String("product_id", e.ProductID), zap.Error(err))
		}
	}
}

// crossedMin reports a level that moved from above its minimum to at or below it.
func crossedMin(before, after, minLevel int) bool {
	return before > minLevel && after <= minLevel
}
