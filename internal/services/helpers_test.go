package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stoik/internal/domain"
	"stoik/internal/events"
	"stoik/internal/repos"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func intp(n int) *int { return &n }

type engine struct {
	name  string
	store func(t *testing.T) *repos.Store
}

func engines() []engine {
	return []engine{
		{"memory", func(t *testing.T) *repos.Store { return repos.New(repos.NewMemory()) }},
		{"sqlite", func(t *testing.T) *repos.Store {
			db, err := repos.OpenDB(":memory:")
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })
			return repos.New(db)
		}},
	}
}

// seed loads a small shop: one flat tee, one sized tee, one mug.
func seed(t *testing.T, s *repos.Store) {
	t.Helper()
	ctx := context.Background()
	products := []domain.Product{
		{ID: "tee-plain", Name: "Plain Tee", Design: "plain", Color: "grey", Category: "tees",
			CostPrice: 8.50, SellingPrice: 19.99, StockLevel: 15, MinStockLevel: intp(10), CreatedAt: fixedNow},
		{ID: "tee-wave", Name: "Wave Tee", Design: "wave", Color: "white", Category: "tees",
			CostPrice: 7.25, SellingPrice: 17.50, CreatedAt: fixedNow.Add(time.Minute),
			Sizes: []domain.SizeStock{
				{Size: "S", StockLevel: 4, MinStockLevel: intp(2)},
				{Size: "M", StockLevel: 30},
			}},
		{ID: "mug", Name: "Mug", Category: "home", CostPrice: 3, SellingPrice: 9.5, StockLevel: 5,
			CreatedAt: fixedNow.Add(2 * time.Minute)},
	}
	for i := range products {
		require.NoError(t, s.Products.Put(ctx, &products[i]))
	}
	require.NoError(t, s.Customers.Put(ctx, &domain.Customer{
		ID: "cust-ada", Name: "Ada", Email: "ada@example.com",
		Address:          domain.Address{Street: "1 Loop Rd", City: "London", Country: "UK"},
		PreferredContact: domain.ContactEmail,
	}))
}

func stockOf(t *testing.T, s *repos.Store, id, size string) int {
	t.Helper()
	qty, _, err := s.Inventory.Qty(context.Background(), id, size)
	require.NoError(t, err)
	return qty
}

type recorder struct {
	mu      sync.Mutex
	created []events.OrderCreated
	low     []events.LowStock
}

func (r *recorder) PublishOrderCreated(_ context.Context, e events.OrderCreated) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, e)
	return nil
}

func (r *recorder) PublishLowStock(_ context.Context, e events.LowStock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.low = append(r.low, e)
	return nil
}

func (r *recorder) Close() error { return nil }
