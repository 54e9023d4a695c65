package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"stoik/internal/domain"
)

// ErrMiss means no fresh dashboard is cached.
var ErrMiss = errors.New("cache miss")

// Cache holds the last computed dashboard.
type Cache interface {
	GetDashboard(ctx context.Context) (*domain.DashboardStats, error)
	SetDashboard(ctx context.Context, stats *domain.DashboardStats) error
	Invalidate(ctx context.Context) error
}

// Nop never caches.
type Nop struct{}

func (Nop) GetDashboard(context.Context) (*domain.DashboardStats, error) { return nil, ErrMiss }
func (Nop) SetDashboard(context.Context, *domain.DashboardStats) error   { return nil }
func (Nop) Invalidate(context.Context) error                             { return nil }

// Local is an in-process TTL cache used when no redis address is configured.
type Local struct {
	mu      sync.Mutex
	ttl     time.Duration
	stats   *domain.DashboardStats
	expires time.Time
	now     func() time.Time
}

func NewLocal(ttl time.Duration) *Local {
	return &Local{ttl: ttl, now: time.Now}
}

func (l *Local) GetDashboard(context.Context) (*domain.DashboardStats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stats == nil || !l.now().Before(l.expires) {
		return nil, ErrMiss
	}
	cp := *l.stats
	return &cp, nil
}

func (l *Local) SetDashboard(_ context.Context, stats *domain.DashboardStats) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *stats
	l.stats = &cp
	l.expires = l.now().Add(l.ttl)
	return nil
}

func (l *Local) Invalidate(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stats = nil
	return nil
}
