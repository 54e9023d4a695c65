package services

import (
	"context"

	"stoik/internal/domain"
	"stoik/internal/repos"
	"stoik/internal/validate"
)

const (
	InStock    = "IN_STOCK"
	LowStock   = "LOW_STOCK"
	OutOfStock = "OUT_OF_STOCK"
)

type InventoryService struct {
	Store *repos.Store
}

func NewInventoryService(store *repos.Store) *InventoryService {
	return &InventoryService{Store: store}
}

// CheckAvailability converts qty to IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
// Without a size, a sized product reports its total and is low when any size is.
func (s *InventoryService) CheckAvailability(ctx context.Context, productID, size string) (domain.Availability, error) {
	productID, ok := validate.ID(productID)
	if !ok {
		return domain.Availability{}, domain.Validation("productId is missing or malformed")
	}
	if size != "" {
		if size, ok = validate.Size(size); !ok {
			return domain.Availability{}, domain.Validation("size is malformed")
		}
	}

	p, err := s.Store.Products.Get(ctx, productID)
	if err != nil {
		return domain.Availability{}, storeErr(err, domain.ProductNotFound(productID))
	}

	var qty int
	var low bool
	switch {
	case size == "":
		qty, low = p.TotalStock(), p.IsLowStock()
	case p.HasSizes() && p.Size(size) >= 0:
		sz := p.Sizes[p.Size(size)]
		qty, low = sz.StockLevel, sz.StockLevel <= sz.MinLevel()
	default:
		return domain.Availability{}, domain.SizeNotFound(productID, size)
	}

	status := InStock
	switch {
	case qty == 0:
		status = OutOfStock
	case low:
		status = LowStock
	}
	return domain.Availability{Status: status, Qty: qty}, nil
}
