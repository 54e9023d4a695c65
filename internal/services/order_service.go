package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stoik/internal/cache"
	"stoik/internal/domain"
	"stoik/internal/events"
	applog "stoik/internal/log"
	"stoik/internal/repos"
	"stoik/internal/validate"
)

const (
	maxNotes     = 1000
	maxListLimit = 500
)

type CreateOrderInput struct {
	CustomerID    string               `json:"customerId"`
	Items         []domain.OrderLine   `json:"items"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	Notes         string               `json:"notes"`
	OrderType     domain.OrderKind     `json:"orderType,omitempty"`
}

type UpdateOrderInput struct {
	Status        *domain.OrderStatus   `json:"status,omitempty"`
	PaymentStatus *domain.PaymentStatus `json:"paymentStatus,omitempty"`
	Notes         *string               `json:"notes,omitempty"`
}

type OrderFilter struct {
	Status        domain.OrderStatus
	PaymentStatus domain.PaymentStatus
	CustomerID    string
	Type          domain.OrderKind
	// Limit caps the result at the newest Limit orders; 0 means no cap.
	Limit int
}

type OrderService struct {
	Store *repos.Store
	hooks
	// BulkRequired enforces the unit minimum on bulk submissions.
	BulkRequired bool
	Now          func() time.Time
}

func NewOrderService(store *repos.Store, c cache.Cache, pub events.Publisher, bulkRequired bool) *OrderService {
	return &OrderService{
		Store:        store,
		hooks:        hooks{cache: c, events: pub},
		BulkRequired: bulkRequired,
		Now:          time.Now,
	}
}

func (s *OrderService) now() time.Time { return s.Now().UTC() }

type stockKey struct{ product, size string }

// Create validates the request, then checks, prices and books every line in one
// transaction. Nothing is written unless every line can be filled.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	in, err := s.validateCreate(in)
	if err != nil {
		return nil, err
	}

	var (
		order *domain.Order
		lows  []events.LowStock
	)
	err = s.Store.RunInTx(ctx, func(ctx context.Context, tx *repos.Store) error {
		lows = lows[:0]
		cust, err := tx.Customers.Get(ctx, in.CustomerID)
		if err != nil {
			return storeErr(err, domain.CustomerNotFound(in.CustomerID))
		}

		products := make(map[string]*domain.Product, len(in.Items))
		requested := make(map[stockKey]int, len(in.Items))
		for _, l := range in.Items {
			p, ok := products[l.ProductID]
			if !ok {
				p, err = tx.Products.Get(ctx, l.ProductID)
				if err != nil {
					return storeErr(err, domain.ProductNotFound(l.ProductID))
				}
				products[l.ProductID] = p
			}
			available, err := lineStock(p, l)
			if err != nil {
				return err
			}
			key := stockKey{l.ProductID, l.Size}
			requested[key] += l.Quantity
			if requested[key] > available {
				return domain.InsufficientStock(available, requested[key], p.Name, l.Size)
			}
		}

		now := s.now()
		order = &domain.Order{
			ID:         uuid.NewString(),
			CustomerID: cust.ID,
			Customer: domain.CustomerSnapshot{
				Name:  cust.Name,
				Email: cust.Email,
				Phone: cust.Phone,
			},
			Items:           make([]domain.OrderItem, 0, len(in.Items)),
			Kind:            Classify(in.Items),
			Status:          domain.StatusPending,
			OrderDate:       now,
			ShippingAddress: cust.Address,
			PaymentMethod:   in.PaymentMethod,
			PaymentStatus:   in.PaymentStatus,
			Notes:           in.Notes,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		totalCost, totalSelling := decimal.Zero, decimal.Zero
		for _, l := range in.Items {
			p := products[l.ProductID]
			item := priceLine(p, l)

			before, minLevel, err := tx.Inventory.Qty(ctx, l.ProductID, l.Size)
			if err != nil {
				return storeErr(err, domain.ProductNotFound(l.ProductID))
			}
			if _, err := tx.Inventory.Decrement(ctx, l.ProductID, l.Size, l.Quantity); err != nil {
				if errors.Is(err, repos.ErrInsufficient) {
					return domain.InsufficientStock(before, l.Quantity, p.Name, l.Size)
				}
				return storeErr(err, domain.ProductNotFound(l.ProductID))
			}
			after := before - l.Quantity
			if crossedMin(before, after, minLevel) {
				lows = append(lows, events.LowStock{
					ProductID:     p.ID,
					ProductName:   p.Name,
					Size:          l.Size,
					StockLevel:    after,
					MinStockLevel: minLevel,
					At:            now,
				})
			}

			totalCost = totalCost.Add(decimal.NewFromFloat(item.TotalCost))
			totalSelling = totalSelling.Add(decimal.NewFromFloat(item.TotalSelling))
			order.Items = append(order.Items, item)
		}
		order.TotalCost = totalCost.Round(2).InexactFloat64()
		order.TotalSelling = totalSelling.Round(2).InexactFloat64()
		order.Profit = totalSelling.Sub(totalCost).Round(2).InexactFloat64()

		if err := tx.Orders.Put(ctx, order); err != nil {
			return err
		}
		if _, err := tx.Customers.UpdateAggregates(ctx, cust.ID, order.TotalSelling, 1); err != nil {
			return storeErr(err, domain.CustomerNotFound(cust.ID))
		}
		return nil
	})
	if err != nil {
		return nil, txErr(err)
	}

	applog.L().Info("order.create",
		zap.String("order_id", order.ID),
		zap.String("customer_id", order.CustomerID),
		zap.String("kind", string(order.Kind)),
		zap.Int("items", len(order.Items)),
		zap.Float64("total_selling", order.TotalSelling),
	)
	s.invalidate(ctx, "order.create")
	s.orderCreated(ctx, events.OrderCreatedFrom(order))
	s.lowStock(ctx, lows)
	return order, nil
}

// CreateBulk is the bulk submission path; it always applies the bulk minimum
// when BulkRequired is set.
func (s *OrderService) CreateBulk(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	in.OrderType = domain.KindBulk
	return s.Create(ctx, in)
}

func (s *OrderService) validateCreate(in CreateOrderInput) (CreateOrderInput, error) {
	id, ok := validate.ID(in.CustomerID)
	if !ok {
		return in, domain.Validation("customerId is missing or malformed")
	}
	in.CustomerID = id

	if len(in.Items) == 0 {
		return in, domain.Validation("order has no items")
	}
	lines := make([]domain.OrderLine, len(in.Items))
	for i, l := range in.Items {
		pid, ok := validate.ID(l.ProductID)
		if !ok {
			return in, domain.Validation("items[%d]: productId is missing or malformed", i)
		}
		if l.Quantity <= 0 {
			return in, domain.Validation("items[%d]: quantity must be positive, got %d", i, l.Quantity)
		}
		size := l.Size
		if size != "" {
			if size, ok = validate.Size(size); !ok {
				return in, domain.Validation("items[%d]: size %q is malformed", i, l.Size)
			}
		}
		lines[i] = domain.OrderLine{ProductID: pid, Size: size, Quantity: l.Quantity}
	}
	in.Items = lines

	if !in.PaymentMethod.Valid() {
		return in, domain.Validation("unknown payment method %q", in.PaymentMethod)
	}
	if in.PaymentStatus == "" {
		in.PaymentStatus = domain.PaymentPending
	}
	if !in.PaymentStatus.Valid() {
		return in, domain.Validation("unknown payment status %q", in.PaymentStatus)
	}
	notes, ok := validate.Text(in.Notes, maxNotes)
	if !ok {
		return in, domain.Validation("notes exceed %d characters", maxNotes)
	}
	in.Notes = notes

	switch in.OrderType {
	case "", domain.KindRetail:
	case domain.KindBulk:
		if s.BulkRequired && !IsBulkEligible(in.Items) {
			return in, domain.Validation("bulk orders need at least %d units, got %d", BulkMinQuantity, TotalQuantity(in.Items))
		}
	default:
		return in, domain.Validation("unknown order type %q", in.OrderType)
	}
	return in, nil
}

// lineStock resolves the stock a line draws from, enforcing that sized
// products are ordered by size and flat products are not.
func lineStock(p *domain.Product, l domain.OrderLine) (int, error) {
	if !p.HasSizes() {
		if l.Size != "" {
			return 0, domain.Validation("product %s has no sizes, got size %s", p.ID, l.Size)
		}
		return p.StockLevel, nil
	}
	if l.Size == "" {
		return 0, domain.Validation("product %s is sold by size; size is required", p.ID)
	}
	i := p.Size(l.Size)
	if i < 0 {
		return 0, domain.SizeNotFound(p.ID, l.Size)
	}
	return p.Sizes[i].StockLevel, nil
}

func priceLine(p *domain.Product, l domain.OrderLine) domain.OrderItem {
	qty := decimal.NewFromInt(int64(l.Quantity))
	unitCost := decimal.NewFromFloat(p.CostPrice)
	unitSelling := decimal.NewFromFloat(p.SellingPrice)
	cost := unitCost.Mul(qty).Round(2)
	selling := unitSelling.Mul(qty).Round(2)
	return domain.OrderItem{
		ProductID:    p.ID,
		ProductName:  p.Name,
		Design:       p.Design,
		Color:        p.Color,
		Size:         l.Size,
		Quantity:     l.Quantity,
		UnitCost:     p.CostPrice,
		UnitSelling:  p.SellingPrice,
		TotalCost:    cost.InexactFloat64(),
		TotalSelling: selling.InexactFloat64(),
		Profit:       selling.Sub(cost).InexactFloat64(),
	}
}

func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	id, ok := validate.ID(id)
	if !ok {
		return nil, domain.Validation("order id is malformed")
	}
	o, err := s.Store.Orders.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, domain.OrderNotFound(id))
	}
	return o, nil
}

// List returns orders newest first. Type filters with the display grouping rule.
func (s *OrderService) List(ctx context.Context, f OrderFilter) ([]domain.Order, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.Validation("unknown status %q", f.Status)
	}
	if f.PaymentStatus != "" && !f.PaymentStatus.Valid() {
		return nil, domain.Validation("unknown payment status %q", f.PaymentStatus)
	}
	switch f.Type {
	case "", domain.KindBulk, domain.KindRetail:
	default:
		return nil, domain.Validation("unknown order type %q", f.Type)
	}

	if f.Limit < 0 || f.Limit > maxListLimit {
		return nil, domain.Validation("limit must be between 0 and %d", maxListLimit)
	}

	var (
		all []domain.Order
		err error
	)
	switch {
	case f.CustomerID != "":
		all, err = s.Store.Orders.ListByCustomer(ctx, f.CustomerID)
	case f.Status == "" && f.PaymentStatus == "" && f.Type == "":
		all, err = s.Store.Orders.ListLatest(ctx, f.Limit)
	default:
		all, err = s.Store.Orders.List(ctx)
	}
	if err != nil {
		return nil, domain.StoreUnavailable(err)
	}

	out := make([]domain.Order, 0, len(all))
	for _, o := range all {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
			continue
		}
		if f.Type != "" && IsBulkForDisplay(o.Items) != (f.Type == domain.KindBulk) {
			continue
		}
		out = append(out, o)
		if len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

// Update changes status, payment status or notes. Items and totals stay as booked.
func (s *OrderService) Update(ctx context.Context, id string, in UpdateOrderInput) (*domain.Order, error) {
	id, ok := validate.ID(id)
	if !ok {
		return nil, domain.Validation("order id is malformed")
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, domain.Validation("unknown status %q", *in.Status)
	}
	if in.PaymentStatus != nil && !in.PaymentStatus.Valid() {
		return nil, domain.Validation("unknown payment status %q", *in.PaymentStatus)
	}
	var notes string
	if in.Notes != nil {
		if notes, ok = validate.Text(*in.Notes, maxNotes); !ok {
			return nil, domain.Validation("notes exceed %d characters", maxNotes)
		}
	}

	var (
		o    *domain.Order
		from domain.OrderStatus
	)
	err := s.Store.RunInTx(ctx, func(ctx context.Context, tx *repos.Store) error {
		var err error
		o, err = tx.Orders.Get(ctx, id)
		if err != nil {
			return storeErr(err, domain.OrderNotFound(id))
		}
		from = o.Status
		now := s.now()
		if in.Status != nil && *in.Status != o.Status {
			to := *in.Status
			if !o.Status.CanTransition(to) {
				return domain.InvalidTransition(o.Status, to)
			}
			o.Status = to
			switch to {
			case domain.StatusShipped:
				o.ShippingDate = &now
			case domain.StatusDelivered:
				o.DeliveryDate = &now
			}
		}
		if in.PaymentStatus != nil {
			o.PaymentStatus = *in.PaymentStatus
		}
		if in.Notes != nil {
			o.Notes = notes
		}
		o.UpdatedAt = now
		return tx.Orders.Put(ctx, o)
	})
	if err != nil {
		return nil, txErr(err)
	}

	applog.L().Info("order.update",
		zap.String("order_id", o.ID),
		zap.String("from", string(from)),
		zap.String("status", string(o.Status)),
		zap.String("payment_status", string(o.PaymentStatus)),
	)
	s.invalidate(ctx, "order.update")
	return o, nil
}

// Delete removes the record only: stock and customer totals are left as they are.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	id, ok := validate.ID(id)
	if !ok {
		return domain.Validation("order id is malformed")
	}
	if err := s.Store.Orders.Delete(ctx, id); err != nil {
		return storeErr(err, domain.OrderNotFound(id))
	}
	applog.L().Info("order.delete", zap.String("order_id", id))
	s.invalidate(ctx, "order.delete")
	return nil
}
