package repos

import (
	"context"
	"errors"
	"sort"

	"stoik/internal/domain"
)

type ProductRepo struct{ b Backend }

func NewProductRepo(b Backend) *ProductRepo { return &ProductRepo{b: b} }

func (r *ProductRepo) Get(ctx context.Context, id string) (*domain.Product, error) {
	return getDoc[domain.Product](ctx, r.b, CollProducts, id)
}

// List returns every product, newest first.
func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	out, err := listDocs[domain.Product](ctx, r.b, CollProducts)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Put creates or replaces a product.
func (r *ProductRepo) Put(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		return errors.New("product id is required")
	}
	if p.StockLevel < 0 {
		return ErrNegativeStock
	}
	for _, s := range p.Sizes {
		if s.StockLevel < 0 {
			return ErrNegativeStock
		}
	}
	return r.b.Put(ctx, CollProducts, p.ID, p)
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.b.Delete(ctx, CollProducts, id)
}
