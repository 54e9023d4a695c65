package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stoik/internal/domain"
)

var (
	ErrNegativeStock = errors.New("stock level cannot be negative")
	ErrSizedProduct  = errors.New("product is stocked per size")
	ErrFlatProduct   = errors.New("product has no size variants")
	ErrInsufficient  = errors.New("insufficient stock")
)

// InventoryRepo reads and writes stock levels on product documents.
type InventoryRepo struct{ b Backend }

func NewInventoryRepo(b Backend) *InventoryRepo { return &InventoryRepo{b: b} }

// Qty returns the stock and minimum level for a product, or for one of its sizes.
// An unknown product or size returns ErrNotFound.
func (r *InventoryRepo) Qty(ctx context.Context, productID, size string) (qty, minLevel int, err error) {
	p, err := getDoc[domain.Product](ctx, r.b, CollProducts, productID)
	if err != nil {
		return 0, 0, err
	}
	if size == "" {
		if p.HasSizes() {
			return p.TotalStock(), p.MinLevel(), nil
		}
		return p.StockLevel, p.MinLevel(), nil
	}
	i := p.Size(size)
	if i < 0 {
		return 0, 0, ErrNotFound
	}
	return p.Sizes[i].StockLevel, p.Sizes[i].MinLevel(), nil
}

// UpdateStock sets the flat stock level of a product.
func (r *InventoryRepo) UpdateStock(ctx context.Context, productID string, level int) (*domain.Product, error) {
	if level < 0 {
		return nil, ErrNegativeStock
	}
	p, err := getDoc[domain.Product](ctx, r.b, CollProducts, productID)
	if err != nil {
		return nil, err
	}
	if p.HasSizes() {
		return nil, fmt.Errorf("%s: %w", productID, ErrSizedProduct)
	}
	p.StockLevel = level
	p.UpdatedAt = time.Now().UTC()
	if err := r.b.Put(ctx, CollProducts, p.ID, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateSizeStock sets the stock level of one size variant.
func (r *InventoryRepo) UpdateSizeStock(ctx context.Context, productID, size string, level int) (*domain.Product, error) {
	if level < 0 {
		return nil, ErrNegativeStock
	}
	p, err := getDoc[domain.Product](ctx, r.b, CollProducts, productID)
	if err != nil {
		return nil, err
	}
	if !p.HasSizes() {
		return nil, fmt.Errorf("%s: %w", productID, ErrFlatProduct)
	}
	i := p.Size(size)
	if i < 0 {
		return nil, ErrNotFound
	}
	p.Sizes[i].StockLevel = level
	p.UpdatedAt = time.Now().UTC()
	if err := r.b.Put(ctx, CollProducts, p.ID, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Decrement subtracts by units if enough stock exists, like a guarded UPDATE ... WHERE qty >= ?.
func (r *InventoryRepo) Decrement(ctx context.Context, productID, size string, by int) (*domain.Product, error) {
	qty, _, err := r.Qty(ctx, productID, size)
	if err != nil {
		return nil, err
	}
	if qty < by {
		return nil, fmt.Errorf("%s %s: need %d, have %d: %w", productID, size, by, qty, ErrInsufficient)
	}
	if size == "" {
		return r.UpdateStock(ctx, productID, qty-by)
	}
	return r.UpdateSizeStock(ctx, productID, size, qty-by)
}
