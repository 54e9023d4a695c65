package repos

import (
	"context"
	"time"

	"stoik/internal/domain"
	applog "stoik/internal/log"
)

func intp(n int) *int { return &n }

// SeedDemo inserts demo products and customers when the product collection is empty.
// Safe to run on every start.
func SeedDemo(ctx context.Context, s *Store) error {
	existing, err := s.Products.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	applog.L().Info("[seed] inserting demo products/customers")

	now := time.Now().UTC()
	sizes := func(levels ...int) []domain.SizeStock {
		names := []string{"S", "M", "L", "XL"}
		out := make([]domain.SizeStock, 0, len(levels))
		for i, n := range levels {
			out = append(out, domain.SizeStock{Size: names[i], StockLevel: n, MinStockLevel: intp(5)})
		}
		return out
	}
	products := []domain.Product{
		{ID: "tee-sunset-blk", Name: "Sunset Tee", Design: "Sunset", Color: "black", Category: "graphic",
			CostPrice: 8.50, SellingPrice: 19.99, Tags: []string{"summer", "bestseller"}, Sizes: sizes(12, 30, 25, 8)},
		{ID: "tee-wave-wht", Name: "Wave Tee", Design: "Wave", Color: "white", Category: "graphic",
			CostPrice: 7.25, SellingPrice: 17.50, Tags: []string{"summer"}, Sizes: sizes(4, 10, 0, 6)},
		{ID: "tee-plain-gry", Name: "Plain Tee", Design: "Blank", Color: "grey", Category: "basics",
			CostPrice: 4.00, SellingPrice: 9.99, Tags: []string{"basics"}, StockLevel: 120, MinStockLevel: intp(20)},
	}
	customers := []domain.Customer{
		{ID: "cust-ada", Name: "Ada Lovelace", Email: "ada@example.com", Phone: "+1 555 0100",
			Address: domain.Address{Street: "1 Analytical Way", City: "London", Zip: "N1", Country: "UK"}, PreferredContact: domain.ContactEmail},
		{ID: "cust-grace", Name: "Grace Hopper", Email: "grace@example.com", Phone: "+1 555 0101",
			Address: domain.Address{Street: "2 Compiler Rd", City: "Arlington", State: "VA", Zip: "22201", Country: "US"}, PreferredContact: domain.ContactPhone},
	}

	return s.RunInTx(ctx, func(ctx context.Context, tx *Store) error {
		for i := range products {
			products[i].CreatedAt, products[i].UpdatedAt = now, now
			if err := tx.Products.Put(ctx, &products[i]); err != nil {
				return err
			}
		}
		for i := range customers {
			customers[i].CreatedAt, customers[i].UpdatedAt = now, now
			if err := tx.Customers.Put(ctx, &customers[i]); err != nil {
				return err
			}
		}
		return nil
	})
}
