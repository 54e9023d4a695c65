package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stoik/internal/cache"
	"stoik/internal/domain"
	"stoik/internal/events"
	applog "stoik/internal/log"
	"stoik/internal/repos"
	"stoik/internal/validate"
)

type ProductFilter struct {
	Category string
	Q        string
	LowStock bool
}

type ProductService struct {
	Store *repos.Store
	hooks
	Now func() time.Time
}

func NewProductService(store *repos.Store, c cache.Cache, pub events.Publisher) *ProductService {
	return &ProductService{Store: store, hooks: hooks{cache: c, events: pub}, Now: time.Now}
}

// Create stores a new product. A nil minimum means the default of 10;
// an explicit zero is kept.
func (s *ProductService) Create(ctx context.Context, in domain.Product) (*domain.Product, error) {
	p, err := cleanProduct(in)
	if err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	} else if id, ok := validate.ID(p.ID); ok {
		p.ID = id
	} else {
		return nil, domain.Validation("product id is malformed")
	}

	now := s.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	err = s.Store.RunInTx(ctx, func(ctx context.Context, tx *repos.Store) error {
		if _, err := tx.Products.Get(ctx, p.ID); err == nil {
			return domain.Validation("product %s already exists", p.ID)
		} else if !errors.Is(err, repos.ErrNotFound) {
			return err
		}
		return tx.Products.Put(ctx, &p)
	})
	if err != nil {
		return nil, txErr(err)
	}
	applog.L().Info("product.create", zap.String("product_id", p.ID), zap.Bool("sized", p.HasSizes()))
	s.invalidate(ctx, "product.create")
	return &p, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	id, ok := validate.ID(id)
	if !ok {
		return nil, domain.Validation("product id is malformed")
	}
	p, err := s.Store.Products.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, domain.ProductNotFound(id))
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	var q string
	if f.Q != "" {
		var ok bool
		if q, ok = validate.Q(f.Q); !ok {
			return nil, domain.Validation("search query contains unsupported characters")
		}
		q = strings.ToLower(q)
	}
	all, err := s.Store.Products.List(ctx)
	if err != nil {
		return nil, domain.StoreUnavailable(err)
	}
	out := make([]domain.Product, 0, len(all))
	for i := range all {
		p := &all[i]
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.LowStock && !p.IsLowStock() {
			continue
		}
		if q != "" && !matchesProduct(p, q) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func matchesProduct(p *domain.Product, q string) bool {
	fields := append([]string{p.Name, p.Design, p.Color, p.Category}, p.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Update replaces every mutable field, stock included.
func (s *ProductService) Update(ctx context.Context, id string, in domain.Product) (*domain.Product, error) {
	id, ok := validate.ID(id)
	if !ok {
		return nil, domain.Validation("product id is malformed")
	}
	p, err := cleanProduct(in)
	if err != nil {
		return nil, err
	}
	p.ID = id

	var lows []events.LowStock
	err = s.Store.RunInTx(ctx, func(ctx context.Context, tx *repos.Store) error {
		cur, err := tx.Products.Get(ctx, id)
		if err != nil {
			return storeErr(err, domain.ProductNotFound(id))
		}
		p.CreatedAt = cur.CreatedAt
		p.UpdatedAt = s.Now().UTC()
		lows = lowStockChanges(cur, &p, p.UpdatedAt)
		return tx.Products.Put(ctx, &p)
	})
	if err != nil {
		return nil, txErr(err)
	}
	applog.L().Info("product.update", zap.String("product_id", id))
	s.invalidate(ctx, "product.update")
	s.lowStock(ctx, lows)
	return &p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	id, ok := validate.ID(id)
	if !ok {
		return domain.Validation("product id is malformed")
	}
	if err := s.Store.Products.Delete(ctx, id); err != nil {
		return storeErr(err, domain.ProductNotFound(id))
	}
	applog.L().Info("product.delete", zap.String("product_id", id))
	s.invalidate(ctx, "product.delete")
	return nil
}

// SetStock overwrites one stock level: the flat level when size is empty,
// otherwise that size's level.
func (s *ProductService) SetStock(ctx context.Context, id, size string, level int) (*domain.Product, error) {
	id, ok := validate.ID(id)
	if !ok {
		return nil, domain.Validation("product id is malformed")
	}
	if size != "" {
		if size, ok = validate.Size(size); !ok {
			return nil, domain.Validation("size is malformed")
		}
	}
	if level < 0 {
		return nil, domain.Validation("stock level cannot be negative")
	}

	var (
		p    *domain.Product
		lows []events.LowStock
	)
	err := s.Store.RunInTx(ctx, func(ctx context.Context, tx *repos.Store) error {
		lows = lows[:0]
		before, minLevel, err := tx.Inventory.Qty(ctx, id, size)
		if err != nil {
			return stockErr(err, id, size)
		}
		if size == "" {
			p, err = tx.Inventory.UpdateStock(ctx, id, level)
		} else {
			p, err = tx.Inventory.UpdateSizeStock(ctx, id, size, level)
		}
		if err != nil {
			return stockErr(err, id, size)
		}
		if crossedMin(before, level, minLevel) {
			lows = append(lows, events.LowStock{
				ProductID: id, ProductName: p.Name, Size: size,
				StockLevel: level, MinStockLevel: minLevel, At: p.UpdatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, txErr(err)
	}
	applog.L().Info("product.stock", zap.String("product_id", id), zap.String("size", size), zap.Int("level", level))
	s.invalidate(ctx, "product.stock")
	s.lowStock(ctx, lows)
	return p, nil
}

func stockErr(err error, id, size string) error {
	switch {
	case errors.Is(err, repos.ErrSizedProduct):
		return domain.Validation("product %s is stocked per size; a size is required", id)
	case errors.Is(err, repos.ErrFlatProduct):
		return domain.Validation("product %s has no sizes", id)
	case errors.Is(err, repos.ErrNegativeStock):
		return domain.Validation("stock level cannot be negative")
	case size != "" && errors.Is(err, repos.ErrNotFound):
		return domain.SizeNotFound(id, size)
	}
	return storeErr(err, domain.ProductNotFound(id))
}

// Categories returns the distinct product categories, sorted.
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	all, err := s.Store.Products.List(ctx)
	if err != nil {
		return nil, domain.StoreUnavailable(err)
	}
	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range all {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out, nil
}

func cleanProduct(in domain.Product) (domain.Product, error) {
	p := in
	var ok bool
	if p.Name, ok = validate.Name(in.Name); !ok {
		return p, domain.Validation("product name is required (max 100 characters)")
	}
	p.Design = strings.TrimSpace(p.Design)
	p.Color = strings.TrimSpace(p.Color)
	p.Category = strings.TrimSpace(p.Category)
	if p.CostPrice < 0 || p.SellingPrice < 0 {
		return p, domain.Validation("prices cannot be negative")
	}
	if p.StockLevel < 0 {
		return p, domain.Validation("stock level cannot be negative")
	}
	if p.MinStockLevel != nil && *p.MinStockLevel < 0 {
		return p, domain.Validation("minimum stock level cannot be negative")
	}

	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	p.Tags = tags

	if len(in.Sizes) == 0 {
		p.Sizes = nil
		return p, nil
	}
	p.Sizes = make([]domain.SizeStock, 0, len(in.Sizes))
	seen := map[string]bool{}
	for _, sz := range in.Sizes {
		name, ok := validate.Size(sz.Size)
		if !ok {
			return p, domain.Validation("size %q is malformed", sz.Size)
		}
		if seen[name] {
			return p, domain.Validation("size %s is listed twice", name)
		}
		seen[name] = true
		if sz.StockLevel < 0 {
			return p, domain.Validation("stock level for size %s cannot be negative", name)
		}
		if sz.MinStockLevel != nil && *sz.MinStockLevel < 0 {
			return p, domain.Validation("minimum stock level for size %s cannot be negative", name)
		}
		sz.Size = name
		p.Sizes = append(p.Sizes, sz)
	}
	// Flat stock is meaningless once sizes exist.
	p.StockLevel = 0
	return p, nil
}

// lowStockChanges lists levels that cross to at or below their minimum between cur and next.
func lowStockChanges(cur, next *domain.Product, at time.Time) []events.LowStock {
	var out []events.LowStock
	if !next.HasSizes() {
		if !cur.HasSizes() && crossedMin(cur.StockLevel, next.StockLevel, next.MinLevel()) {
			out = append(out, events.LowStock{
				ProductID: next.ID, ProductName: next.Name,
				StockLevel: next.StockLevel, MinStockLevel: next.MinLevel(), At: at,
			})
		}
		return out
	}
	for _, sz := range next.Sizes {
		i := cur.Size(sz.Size)
		if i < 0 {
			continue
		}
		if crossedMin(cur.Sizes[i].StockLevel, sz.StockLevel, sz.MinLevel()) {
			out = append(out, events.LowStock{
				ProductID: next.ID, ProductName: next.Name, Size: sz.Size,
				StockLevel: sz.StockLevel, MinStockLevel: sz.MinLevel(), At: at,
			})
		}
	}
	return out
}
