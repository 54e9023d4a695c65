package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"stoik/internal/cache"
	"stoik/internal/domain"
	applog "stoik/internal/log"
	"stoik/internal/repos"
)

type AnalyticsService struct {
	Store *repos.Store
	Cache cache.Cache
	Now   func() time.Time
}

func NewAnalyticsService(store *repos.Store, c cache.Cache) *AnalyticsService {
	if c == nil {
		c = cache.Nop{}
	}
	return &AnalyticsService{Store: store, Cache: c, Now: time.Now}
}

// Dashboard serves the cached stats when fresh, otherwise reads all three
// collections and recomputes.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	st, err := s.Cache.GetDashboard(ctx)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		applog.L().Warn("cache.get", zap.Error(err))
	}

	orders, err := s.Store.Orders.List(ctx)
	if err != nil {
		return nil, domain.StoreUnavailable(err)
	}
	products, err := s.Store.Products.List(ctx)
	if err != nil {
		return nil, domain.StoreUnavailable(err)
	}
	customers, err := s.Store.Customers.List(ctx)
	if err != nil {
		return nil, domain.StoreUnavailable(err)
	}

	stats := ComputeDashboardAt(s.Now(), orders, products, customers)
	if err := s.Cache.SetDashboard(ctx, &stats); err != nil {
		applog.L().Warn("cache.set", zap.Error(err))
	}
	return &stats, nil
}
