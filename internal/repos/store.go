package repos

import "context"

// Store groups the typed repositories over a single engine.
type Store struct {
	b         Backend
	Products  *ProductRepo
	Customers *CustomerRepo
	Orders    *OrderRepo
	Inventory *InventoryRepo
}

func New(b Backend) *Store {
	return &Store{
		b:         b,
		Products:  NewProductRepo(b),
		Customers: NewCustomerRepo(b),
		Orders:    NewOrderRepo(b),
		Inventory: NewInventoryRepo(b),
	}
}

// RunInTx hands fn a Store whose repositories all write through one transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx *Store) error) error {
	return s.b.RunInTx(ctx, func(ctx context.Context, b Backend) error {
		return fn(ctx, New(b))
	})
}

func (s *Store) Close() error { return s.b.Close() }
