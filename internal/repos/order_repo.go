package repos

import (
	"context"
	"errors"
	"sort"

	"stoik/internal/domain"
)

type OrderRepo struct{ b Backend }

func NewOrderRepo(b Backend) *OrderRepo { return &OrderRepo{b: b} }

func (r *OrderRepo) Get(ctx context.Context, id string) (*domain.Order, error) {
	return getDoc[domain.Order](ctx, r.b, CollOrders, id)
}

// List returns every order, most recent order date first.
func (r *OrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	out, err := listDocs[domain.Order](ctx, r.b, CollOrders)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ListLatest returns the newest limit orders; limit <= 0 returns them all.
func (r *OrderRepo) ListLatest(ctx context.Context, limit int) ([]domain.Order, error) {
	out, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Order
	for _, o := range all {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *OrderRepo) Put(ctx context.Context, o *domain.Order) error {
	if o.ID == "" {
		return errors.New("order id is required")
	}
	return r.b.Put(ctx, CollOrders, o.ID, o)
}

func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	return r.b.Delete(ctx, CollOrders, id)
}
