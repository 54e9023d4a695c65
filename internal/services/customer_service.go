package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stoik/internal/cache"
	"stoik/internal/domain"
	applog "stoik/internal/log"
	"stoik/internal/repos"
	"stoik/internal/validate"
)

type CustomerService struct {
	Store *repos.Store
	hooks
	Now func() time.Time
}

func NewCustomerService(store *repos.Store, c cache.Cache) *CustomerService {
	return &CustomerService{Store: store, hooks: hooks{cache: c}, Now: time.Now}
}

// Create stores a new customer with zeroed order totals.
func (s *CustomerService) Create(ctx context.Context, in domain.Customer) (*domain.Customer, error) {
	c, err := cleanCustomer(in)
	if err != nil {
		return nil, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	} else if id, ok := validate.ID(c.ID); ok {
		c.ID = id
	} else {
		return nil, domain.Validation("customer id is malformed")
	}
	c.TotalOrders, c.TotalSpent = 0, 0
	now := s.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	err = s.Store.RunInTx(ctx, func(ctx context.Context, tx *repos.Store) error {
		if _, err := tx.Customers.Get(ctx, c.ID); err == nil {
			return domain.Validation("customer %s already exists", c.ID)
		} else if !errors.Is(err, repos.ErrNotFound) {
			return err
		}
		return tx.Customers.Put(ctx, &c)
	})
	if err != nil {
		return nil, txErr(err)
	}
	applog.L().Info("customer.create", zap.String("customer_id", c.ID))
	s.invalidate(ctx, "customer.create")
	return &c, nil
}

func (s *CustomerService) Get(ctx context.Context, id string) (*domain.Customer, error) {
	id, ok := validate.ID(id)
	if !ok {
		return nil, domain.Validation("customer id is malformed")
	}
	c, err := s.Store.Customers.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, domain.CustomerNotFound(id))
	}
	return c, nil
}

// List returns customers by name, optionally matching q against name, email or phone.
func (s *CustomerService) List(ctx context.Context, q string) ([]domain.Customer, error) {
	if q != "" {
		var ok bool
		if q, ok = validate.Q(q); !ok {
			return nil, domain.Validation("search query contains unsupported characters")
		}
		q = strings.ToLower(q)
	}
	all, err := s.Store.Customers.List(ctx)
	if err != nil {
		return nil, domain.StoreUnavailable(err)
	}
	if q == "" {
		return all, nil
	}
	out := make([]domain.Customer, 0, len(all))
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Email), q) ||
			strings.Contains(c.Phone, q) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Update replaces contact details. Order totals are kept as stored.
func (s *CustomerService) Update(ctx context.Context, id string, in domain.Customer) (*domain.Customer, error) {
	id, ok := validate.ID(id)
	if !ok {
		return nil, domain.Validation("customer id is malformed")
	}
	c, err := cleanCustomer(in)
	if err != nil {
		return nil, err
	}
	c.ID = id
	err = s.Store.RunInTx(ctx, func(ctx context.Context, tx *repos.Store) error {
		cur, err := tx.Customers.Get(ctx, id)
		if err != nil {
			return storeErr(err, domain.CustomerNotFound(id))
		}
		c.TotalOrders, c.TotalSpent = cur.TotalOrders, cur.TotalSpent
		c.CreatedAt = cur.CreatedAt
		c.UpdatedAt = s.Now().UTC()
		return tx.Customers.Put(ctx, &c)
	})
	if err != nil {
		return nil, txErr(err)
	}
	applog.L().Info("customer.update", zap.String("customer_id", id))
	s.invalidate(ctx, "customer.update")
	return &c, nil
}

// Delete removes the customer. Orders keep their customer snapshot.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	id, ok := validate.ID(id)
	if !ok {
		return domain.Validation("customer id is malformed")
	}
	if err := s.Store.Customers.Delete(ctx, id); err != nil {
		return storeErr(err, domain.CustomerNotFound(id))
	}
	applog.L().Info("customer.delete", zap.String("customer_id", id))
	s.invalidate(ctx, "customer.delete")
	return nil
}

// RecomputeAggregates rebuilds totalOrders and totalSpent from the customer's orders.
func (s *CustomerService) RecomputeAggregates(ctx context.Context, id string) (*domain.Customer, error) {
	id, ok := validate.ID(id)
	if !ok {
		return nil, domain.Validation("customer id is malformed")
	}
	var c *domain.Customer
	err := s.Store.RunInTx(ctx, func(ctx context.Context, tx *repos.Store) error {
		if _, err := tx.Customers.Get(ctx, id); err != nil {
			return storeErr(err, domain.CustomerNotFound(id))
		}
		orders, err := tx.Orders.ListByCustomer(ctx, id)
		if err != nil {
			return err
		}
		spent := decimal.Zero
		for _, o := range orders {
			spent = spent.Add(decimal.NewFromFloat(o.TotalSelling))
		}
		c, err = tx.Customers.SetAggregates(ctx, id, spent.Round(2).InexactFloat64(), len(orders))
		return err
	})
	if err != nil {
		return nil, txErr(err)
	}
	applog.L().Info("customer.recompute",
		zap.String("customer_id", id),
		zap.Int("total_orders", c.TotalOrders),
		zap.Float64("total_spent", c.TotalSpent),
	)
	s.invalidate(ctx, "customer.recompute")
	return c, nil
}

func cleanCustomer(in domain.Customer) (domain.Customer, error) {
	c := in
	var ok bool
	if c.Name, ok = validate.Name(in.Name); !ok {
		return c, domain.Validation("customer name is required (max 100 characters)")
	}
	if in.Email != "" {
		if c.Email, ok = validate.Email(in.Email); !ok {
			return c, domain.Validation("email %q is malformed", in.Email)
		}
	}
	if in.Phone != "" {
		if c.Phone, ok = validate.Phone(in.Phone); !ok {
			return c, domain.Validation("phone %q is malformed", in.Phone)
		}
	}
	if c.PreferredContact == "" {
		c.PreferredContact = domain.ContactEmail
	}
	if !c.PreferredContact.Valid() {
		return c, domain.Validation("unknown contact method %q", in.PreferredContact)
	}
	if in.Address.Zip != "" {
		if c.Address.Zip, ok = validate.Zip(in.Address.Zip); !ok {
			return c, domain.Validation("zip %q is malformed", in.Address.Zip)
		}
	}
	if c.Notes, ok = validate.Text(in.Notes, maxNotes); !ok {
		return c, domain.Validation("notes exceed %d characters", maxNotes)
	}
	return c, nil
}
