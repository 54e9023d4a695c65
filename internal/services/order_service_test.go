package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stoik/internal/cache"
	"stoik/internal/domain"
	"stoik/internal/repos"
	"stoik/internal/services"
)

func newOrderService(t *testing.T, s *repos.Store) (*services.OrderService, *recorder, *cache.Local) {
	t.Helper()
	rec := &recorder{}
	c := cache.NewLocal(time.Minute)
	svc := services.NewOrderService(s, c, rec, true)
	svc.Now = func() time.Time { return fixedNow }
	return svc, rec, c
}

func retail(items ...domain.OrderLine) services.CreateOrderInput {
	return services.CreateOrderInput{
		CustomerID:    "cust-ada",
		Items:         items,
		PaymentMethod: domain.PaymentCard,
	}
}

func TestCreateOrder_BooksStockTotalsAndAggregates(t *testing.T) {
	for _, e := range engines() {
		t.Run(e.name, func(t *testing.T) {
			ctx := context.Background()
			s := e.store(t)
			seed(t, s)
			svc, rec, _ := newOrderService(t, s)

			o, err := svc.Create(ctx, retail(
				domain.OrderLine{ProductID: "tee-plain", Quantity: 2},
				domain.OrderLine{ProductID: "tee-wave", Size: "m", Quantity: 3},
			))
			require.NoError(t, err)

			assert.NotEmpty(t, o.ID)
			assert.Equal(t, domain.StatusPending, o.Status)
			assert.Equal(t, domain.PaymentPending, o.PaymentStatus)
			assert.Equal(t, domain.KindRetail, o.Kind)
			assert.Equal(t, fixedNow, o.OrderDate)
			assert.Equal(t, "Ada", o.Customer.Name)
			assert.Equal(t, "London", o.ShippingAddress.City)

			require.Len(t, o.Items, 2)
			assert.Equal(t, 39.98, o.Items[0].TotalSelling)
			assert.Equal(t, 17.0, o.Items[0].TotalCost)
			assert.Equal(t, 22.98, o.Items[0].Profit)
			assert.Equal(t, "M", o.Items[1].Size)
			assert.Equal(t, 52.5, o.Items[1].TotalSelling)

			assert.Equal(t, 92.48, o.TotalSelling)
			assert.Equal(t, 38.75, o.TotalCost)
			assert.Equal(t, 53.73, o.Profit)

			assert.Equal(t, 13, stockOf(t, s, "tee-plain", ""))
			assert.Equal(t, 27, stockOf(t, s, "tee-wave", "M"))
			assert.Equal(t, 4, stockOf(t, s, "tee-wave", "S"))

			c, err := s.Customers.Get(ctx, "cust-ada")
			require.NoError(t, err)
			assert.Equal(t, 1, c.TotalOrders)
			assert.Equal(t, 92.48, c.TotalSpent)

			stored, err := svc.Get(ctx, o.ID)
			require.NoError(t, err)
			assert.Equal(t, o.TotalSelling, stored.TotalSelling)

			require.Len(t, rec.created, 1)
			assert.Equal(t, o.ID, rec.created[0].OrderID)
		})
	}
}

func TestCreateOrder_CustomerSpendGrowsByExactTotal(t *testing.T) {
	ctx := context.Background()
	s := repos.New(repos.NewMemory())
	seed(t, s)
	svc, _, _ := newOrderService(t, s)

	_, err := s.Customers.UpdateAggregates(ctx, "cust-ada", 100.1, 3)
	require.NoError(t, err)

	o, err := svc.Create(ctx, retail(domain.OrderLine{ProductID: "tee-plain", Quantity: 2}))
	require.NoError(t, err)
	require.Equal(t, 39.98, o.TotalSelling)

	c, err := s.Customers.Get(ctx, "cust-ada")
	require.NoError(t, err)
	assert.Equal(t, 4, c.TotalOrders)
	assert.Equal(t, 140.08, c.TotalSpent)
}

func TestCreateOrder_FailingLineWritesNothing(t *testing.T) {
	for _, e := range engines() {
		t.Run(e.name, func(t *testing.T) {
			ctx := context.Background()
			s := e.store(t)
			seed(t, s)
			svc, rec, _ := newOrderService(t, s)

			_, err := svc.Create(ctx, retail(
				domain.OrderLine{ProductID: "tee-plain", Quantity: 1},
				domain.OrderLine{ProductID: "mug", Quantity: 99},
				domain.OrderLine{ProductID: "tee-wave", Size: "M", Quantity: 1},
			))
			require.Error(t, err)
			assert.Equal(t, domain.KindInsufficientStock, domain.KindOf(err))
			assert.Equal(t, "InsufficientStock: available 5, requested 99, for Mug", err.Error())

			assert.Equal(t, 15, stockOf(t, s, "tee-plain", ""))
			assert.Equal(t, 5, stockOf(t, s, "mug", ""))
			assert.Equal(t, 30, stockOf(t, s, "tee-wave", "M"))

			orders, err := s.Orders.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, orders)

			c, err := s.Customers.Get(ctx, "cust-ada")
			require.NoError(t, err)
			assert.Zero(t, c.TotalOrders)
			assert.Zero(t, c.TotalSpent)
			assert.Empty(t, rec.created)
		})
	}
}

func TestCreateOrder_RepeatedLinesShareStock(t *testing.T) {
	ctx := context.Background()
	s := repos.New(repos.NewMemory())
	seed(t, s)
	svc, _, _ := newOrderService(t, s)

	_, err := svc.Create(ctx, retail(
		domain.OrderLine{ProductID: "tee-wave", Size: "S", Quantity: 3},
		domain.OrderLine{ProductID: "tee-wave", Size: "S", Quantity: 2},
	))
	require.Error(t, err)
	assert.Equal(t, "InsufficientStock: available 4, requested 5, for Wave Tee size S", err.Error())
	assert.Equal(t, 4, stockOf(t, s, "tee-wave", "S"))

	o, err := svc.Create(ctx, retail(
		domain.OrderLine{ProductID: "tee-wave", Size: "S", Quantity: 2},
		domain.OrderLine{ProductID: "tee-wave", Size: "S", Quantity: 2},
	))
	require.NoError(t, err)
	assert.Len(t, o.Items, 2)
	assert.Equal(t, 0, stockOf(t, s, "tee-wave", "S"))
}

func TestCreateOrder_LookupFailures(t *testing.T) {
	ctx := context.Background()
	s := repos.New(repos.NewMemory())
	seed(t, s)
	svc, _, _ := newOrderService(t, s)

	cases := []struct {
		name   string
		in     services.CreateOrderInput
		kind   domain.Kind
		detail string
	}{
		{"unknown customer", services.CreateOrderInput{CustomerID: "nobody", PaymentMethod: domain.PaymentCash,
			Items: []domain.OrderLine{{ProductID: "mug", Quantity: 1}}}, domain.KindCustomerNotFound, "nobody"},
		{"unknown product", retail(domain.OrderLine{ProductID: "ghost", Quantity: 1}), domain.KindProductNotFound, "ghost"},
		{"unknown size", retail(domain.OrderLine{ProductID: "tee-wave", Size: "XXL", Quantity: 1}), domain.KindProductNotFound, "tee-wave size XXL"},
		{"sized without size", retail(domain.OrderLine{ProductID: "tee-wave", Quantity: 1}), domain.KindValidation, ""},
		{"flat with size", retail(domain.OrderLine{ProductID: "mug", Size: "M", Quantity: 1}), domain.KindValidation, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			require.Error(t, err)
			var de *domain.Error
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tc.kind, de.Kind)
			if tc.detail != "" {
				assert.Equal(t, tc.detail, de.Detail)
			}
		})
	}
	assert.Equal(t, 5, stockOf(t, s, "mug", ""))
}

func TestCreateOrder_RejectsMalformedInput(t *testing.T) {
	// No store: validation must fail before any read.
	svc := services.NewOrderService(repos.New(repos.NewMemory()), nil, nil, true)

	cases := map[string]services.CreateOrderInput{
		"no items":         {CustomerID: "c1", PaymentMethod: domain.PaymentCash},
		"zero quantity":    {CustomerID: "c1", PaymentMethod: domain.PaymentCash, Items: []domain.OrderLine{{ProductID: "p", Quantity: 0}}},
		"negative qty":     {CustomerID: "c1", PaymentMethod: domain.PaymentCash, Items: []domain.OrderLine{{ProductID: "p", Quantity: -2}}},
		"bad payment":      {CustomerID: "c1", PaymentMethod: "barter", Items: []domain.OrderLine{{ProductID: "p", Quantity: 1}}},
		"bad pay status":   {CustomerID: "c1", PaymentMethod: domain.PaymentCash, PaymentStatus: "maybe", Items: []domain.OrderLine{{ProductID: "p", Quantity: 1}}},
		"missing customer": {PaymentMethod: domain.PaymentCash, Items: []domain.OrderLine{{ProductID: "p", Quantity: 1}}},
		"bad order type":   {CustomerID: "c1", PaymentMethod: domain.PaymentCash, OrderType: "wholesale", Items: []domain.OrderLine{{ProductID: "p", Quantity: 1}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), in)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err), "err=%v", err)
		})
	}
}

func TestCreateBulk_EnforcesMinimumUnits(t *testing.T) {
	ctx := context.Background()
	s := repos.New(repos.NewMemory())
	seed(t, s)
	svc, _, _ := newOrderService(t, s)

	_, err := svc.CreateBulk(ctx, retail(domain.OrderLine{ProductID: "tee-wave", Size: "M", Quantity: 19}))
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Equal(t, 30, stockOf(t, s, "tee-wave", "M"))

	o, err := svc.CreateBulk(ctx, retail(domain.OrderLine{ProductID: "tee-wave", Size: "M", Quantity: 20}))
	require.NoError(t, err)
	assert.Equal(t, domain.KindBulk, o.Kind)

	svc.BulkRequired = false
	o, err = svc.CreateBulk(ctx, retail(domain.OrderLine{ProductID: "tee-plain", Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, domain.KindRetail, o.Kind)
}

func TestCreateOrder_PublishesLowStockOnCrossing(t *testing.T) {
	ctx := context.Background()
	s := repos.New(repos.NewMemory())
	seed(t, s)
	svc, rec, _ := newOrderService(t, s)

	// tee-plain: 15 -> 11 stays above its minimum of 10.
	_, err := svc.Create(ctx, retail(domain.OrderLine{ProductID: "tee-plain", Quantity: 4}))
	require.NoError(t, err)
	assert.Empty(t, rec.low)

	// 11 -> 10 crosses; S 4 -> 2 crosses; mug was already low.
	_, err = svc.Create(ctx, retail(
		domain.OrderLine{ProductID: "tee-plain", Quantity: 1},
		domain.OrderLine{ProductID: "tee-wave", Size: "S", Quantity: 2},
		domain.OrderLine{ProductID: "mug", Quantity: 1},
	))
	require.NoError(t, err)
	require.Len(t, rec.low, 2)
	assert.Equal(t, "tee-plain", rec.low[0].ProductID)
	assert.Equal(t, 10, rec.low[0].StockLevel)
	assert.Equal(t, "S", rec.low[1].Size)
	assert.Equal(t, 2, rec.low[1].MinStockLevel)
}

func TestCreateOrder_InvalidatesDashboardCache(t *testing.T) {
	ctx := context.Background()
	s := repos.New(repos.NewMemory())
	seed(t, s)
	svc, _, c := newOrderService(t, s)

	require.NoError(t, c.SetDashboard(ctx, &domain.DashboardStats{}))
	_, err := svc.Create(ctx, retail(domain.OrderLine{ProductID: "mug", Quantity: 1}))
	require.NoError(t, err)

	_, err = c.GetDashboard(ctx)
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestUpdateOrder_StatusMachine(t *testing.T) {
	ctx := context.Background()
	s := repos.New(repos.NewMemory())
	seed(t, s)
	svc, _, _ := newOrderService(t, s)

	o, err := svc.Create(ctx, retail(domain.OrderLine{ProductID: "mug", Quantity: 1}))
	require.NoError(t, err)

	status := func(st domain.OrderStatus) services.UpdateOrderInput { return services.UpdateOrderInput{Status: &st} }

	_, err = svc.Update(ctx, o.ID, status(domain.StatusShipped))
	assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(err))

	got, err := svc.Update(ctx, o.ID, status(domain.StatusPending))
	require.NoError(t, err, "same status is a no-op")
	assert.Nil(t, got.ShippingDate)

	_, err = svc.Update(ctx, o.ID, status(domain.StatusProcessing))
	require.NoError(t, err)

	shipAt := fixedNow.Add(24 * time.Hour)
	svc.Now = func() time.Time { return shipAt }
	got, err = svc.Update(ctx, o.ID, status(domain.StatusShipped))
	require.NoError(t, err)
	require.NotNil(t, got.ShippingDate)
	assert.Equal(t, shipAt, *got.ShippingDate)
	assert.Nil(t, got.DeliveryDate)

	got, err = svc.Update(ctx, o.ID, status(domain.StatusDelivered))
	require.NoError(t, err)
	require.NotNil(t, got.DeliveryDate)
	assert.Equal(t, o.TotalSelling, got.TotalSelling)

	_, err = svc.Update(ctx, o.ID, status(domain.StatusCancelled))
	assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(err))

	paid := domain.PaymentPaid
	notes := "  left at door "
	got, err = svc.Update(ctx, o.ID, services.UpdateOrderInput{PaymentStatus: &paid, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, "left at door", got.Notes)
	assert.Equal(t, domain.StatusDelivered, got.Status)

	_, err = svc.Update(ctx, "missing", status(domain.StatusCancelled))
	assert.Equal(t, domain.KindOrderNotFound, domain.KindOf(err))
}

func TestDeleteOrder_KeepsStockAndAggregates(t *testing.T) {
	ctx := context.Background()
	s := repos.New(repos.NewMemory())
	seed(t, s)
	svc, _, _ := newOrderService(t, s)

	o, err := svc.Create(ctx, retail(domain.OrderLine{ProductID: "tee-plain", Quantity: 2}))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, o.ID))

	_, err = svc.Get(ctx, o.ID)
	assert.Equal(t, domain.KindOrderNotFound, domain.KindOf(err))
	assert.Equal(t, 13, stockOf(t, s, "tee-plain", ""))
	c, err := s.Customers.Get(ctx, "cust-ada")
	require.NoError(t, err)
	assert.Equal(t, 1, c.TotalOrders)

	assert.Equal(t, domain.KindOrderNotFound, domain.KindOf(svc.Delete(ctx, o.ID)))
}

func TestListOrders_Filters(t *testing.T) {
	ctx := context.Background()
	s := repos.New(repos.NewMemory())
	seed(t, s)
	svc, _, _ := newOrderService(t, s)

	small, err := svc.Create(ctx, retail(domain.OrderLine{ProductID: "mug", Quantity: 1}))
	require.NoError(t, err)
	svc.Now = func() time.Time { return fixedNow.Add(time.Hour) }
	big, err := svc.Create(ctx, retail(
		domain.OrderLine{ProductID: "tee-plain", Quantity: 1},
		domain.OrderLine{ProductID: "tee-wave", Size: "M", Quantity: 1},
	))
	require.NoError(t, err)
	processing := domain.StatusProcessing
	_, err = svc.Update(ctx, small.ID, services.UpdateOrderInput{Status: &processing})
	require.NoError(t, err)

	all, err := svc.List(ctx, services.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, big.ID, all[0].ID, "newest first")

	bulk, err := svc.List(ctx, services.OrderFilter{Type: domain.KindBulk})
	require.NoError(t, err)
	require.Len(t, bulk, 1)
	assert.Equal(t, big.ID, bulk[0].ID)

	byStatus, err := svc.List(ctx, services.OrderFilter{Status: domain.StatusProcessing, CustomerID: "cust-ada"})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, small.ID, byStatus[0].ID)

	newest, err := svc.List(ctx, services.OrderFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, newest, 1)
	assert.Equal(t, big.ID, newest[0].ID)

	capped, err := svc.List(ctx, services.OrderFilter{CustomerID: "cust-ada", Limit: 1})
	require.NoError(t, err)
	require.Len(t, capped, 1)
	assert.Equal(t, big.ID, capped[0].ID)

	_, err = svc.List(ctx, services.OrderFilter{Status: "lost"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = svc.List(ctx, services.OrderFilter{Limit: -1})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestCreateOrder_ConcurrentBuyersCannotOversell(t *testing.T) {
	const buyers = 20
	for _, e := range engines() {
		t.Run(e.name, func(t *testing.T) {
			ctx := context.Background()
			s := e.store(t)
			seed(t, s)
			svc, _, _ := newOrderService(t, s)

			var (
				wg    sync.WaitGroup
				mu    sync.Mutex
				ok    int
				short int
				other []error
			)
			for i := 0; i < buyers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := svc.Create(ctx, retail(domain.OrderLine{ProductID: "mug", Quantity: 1}))
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						ok++
					case domain.KindOf(err) == domain.KindInsufficientStock:
						short++
					default:
						other = append(other, err)
					}
				}()
			}
			wg.Wait()

			require.Empty(t, other)
			assert.Equal(t, 5, ok)
			assert.Equal(t, buyers-5, short)
			assert.Equal(t, 0, stockOf(t, s, "mug", ""))

			c, err := s.Customers.Get(ctx, "cust-ada")
			require.NoError(t, err)
			assert.Equal(t, 5, c.TotalOrders)
			assert.Equal(t, 47.5, c.TotalSpent)

			orders, err := s.Orders.List(ctx)
			require.NoError(t, err)
			assert.Len(t, orders, 5)
		})
	}
}
