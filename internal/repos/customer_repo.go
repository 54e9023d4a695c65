package repos

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"stoik/internal/domain"
)

type CustomerRepo struct{ b Backend }

func NewCustomerRepo(b Backend) *CustomerRepo { return &CustomerRepo{b: b} }

func (r *CustomerRepo) Get(ctx context.Context, id string) (*domain.Customer, error) {
	return getDoc[domain.Customer](ctx, r.b, CollCustomers, id)
}

// List returns customers ordered by name.
func (r *CustomerRepo) List(ctx context.Context) ([]domain.Customer, error) {
	out, err := listDocs[domain.Customer](ctx, r.b, CollCustomers)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *CustomerRepo) Put(ctx context.Context, c *domain.Customer) error {
	if c.ID == "" {
		return errors.New("customer id is required")
	}
	return r.b.Put(ctx, CollCustomers, c.ID, c)
}

func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	return r.b.Delete(ctx, CollCustomers, id)
}

// UpdateAggregates adds to the running totals. Money is summed to the cent.
func (r *CustomerRepo) UpdateAggregates(ctx context.Context, id string, addSpent float64, addOrders int) (*domain.Customer, error) {
	c, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.TotalSpent = decimal.NewFromFloat(c.TotalSpent).
		Add(decimal.NewFromFloat(addSpent)).
		Round(2).
		InexactFloat64()
	c.TotalOrders += addOrders
	c.UpdatedAt = time.Now().UTC()
	if err := r.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SetAggregates overwrites the running totals.
func (r *CustomerRepo) SetAggregates(ctx context.Context, id string, spent float64, orders int) (*domain.Customer, error) {
	c, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.TotalSpent = spent
	c.TotalOrders = orders
	c.UpdatedAt = time.Now().UTC()
	if err := r.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
