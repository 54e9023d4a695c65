package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stoik/internal/domain"
	"stoik/internal/repos"
	"stoik/internal/services"
)

func newProductService(t *testing.T) (*services.ProductService, *repos.Store, *recorder) {
	t.Helper()
	s := repos.New(repos.NewMemory())
	seed(t, s)
	rec := &recorder{}
	svc := services.NewProductService(s, nil, rec)
	svc.Now = func() time.Time { return fixedNow.Add(time.Hour) }
	return svc, s, rec
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newProductService(t)

	p, err := svc.Create(ctx, domain.Product{
		Name: "  Sunset Tee ", Category: "tees", CostPrice: 8, SellingPrice: 20,
		StockLevel: 7, Tags: []string{" summer", ""},
		Sizes: []domain.SizeStock{{Size: "s", StockLevel: 3}, {Size: "m", StockLevel: 0, MinStockLevel: intp(0)}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Sunset Tee", p.Name)
	assert.Equal(t, []string{"summer"}, p.Tags)
	assert.Equal(t, "S", p.Sizes[0].Size)
	assert.Zero(t, p.StockLevel, "flat level is cleared for sized products")
	assert.Equal(t, 10, p.Sizes[0].MinLevel())
	assert.Equal(t, 0, p.Sizes[1].MinLevel())

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)

	bad := []domain.Product{
		{Name: ""},
		{Name: "x", SellingPrice: -1},
		{Name: "x", StockLevel: -1},
		{Name: "x", MinStockLevel: intp(-1)},
		{Name: "x", Sizes: []domain.SizeStock{{Size: "M"}, {Size: "m"}}},
		{Name: "x", Sizes: []domain.SizeStock{{Size: "M", StockLevel: -3}}},
		{ID: "tee-plain", Name: "dup"},
		{ID: "bad id", Name: "x"},
	}
	for _, in := range bad {
		_, err := svc.Create(ctx, in)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err), "input %+v", in)
	}
}

func TestProductService_ListAndCategories(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newProductService(t)

	all, err := svc.List(ctx, services.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "mug", all[0].ID, "newest first")

	tees, err := svc.List(ctx, services.ProductFilter{Category: "TEES"})
	require.NoError(t, err)
	assert.Len(t, tees, 2)

	low, err := svc.List(ctx, services.ProductFilter{LowStock: true})
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "mug", low[0].ID)

	wave, err := svc.List(ctx, services.ProductFilter{Q: "WAVE"})
	require.NoError(t, err)
	require.Len(t, wave, 1)
	assert.Equal(t, "tee-wave", wave[0].ID)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "tees"}, cats)
}

func TestProductService_UpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := newProductService(t)

	p, err := svc.Update(ctx, "tee-plain", domain.Product{
		Name: "Plain Tee v2", CostPrice: 9, SellingPrice: 21, StockLevel: 6, MinStockLevel: intp(10),
	})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, p.CreatedAt)
	assert.Equal(t, fixedNow.Add(time.Hour), p.UpdatedAt)
	assert.Equal(t, 21.0, p.SellingPrice)
	require.Len(t, rec.low, 1)
	assert.Equal(t, 6, rec.low[0].StockLevel)

	_, err = svc.Update(ctx, "ghost", domain.Product{Name: "x"})
	assert.Equal(t, domain.KindProductNotFound, domain.KindOf(err))
}

func TestProductService_SetStock(t *testing.T) {
	ctx := context.Background()
	svc, s, rec := newProductService(t)

	_, err := svc.SetStock(ctx, "tee-plain", "", 40)
	require.NoError(t, err)
	assert.Equal(t, 40, stockOf(t, s, "tee-plain", ""))

	p, err := svc.SetStock(ctx, "tee-wave", "s", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Sizes[p.Size("S")].StockLevel)
	require.Len(t, rec.low, 1)
	assert.Equal(t, "S", rec.low[0].Size)

	_, err = svc.SetStock(ctx, "tee-wave", "", 5)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = svc.SetStock(ctx, "tee-wave", "XL", 5)
	assert.Equal(t, domain.KindProductNotFound, domain.KindOf(err))
	_, err = svc.SetStock(ctx, "tee-plain", "", -1)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = svc.SetStock(ctx, "ghost", "", 1)
	assert.Equal(t, domain.KindProductNotFound, domain.KindOf(err))
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newProductService(t)

	require.NoError(t, svc.Delete(ctx, "mug"))
	_, err := svc.Get(ctx, "mug")
	assert.Equal(t, domain.KindProductNotFound, domain.KindOf(err))
	assert.Equal(t, domain.KindProductNotFound, domain.KindOf(svc.Delete(ctx, "mug")))
}

func TestInventoryService_CheckAvailability(t *testing.T) {
	ctx := context.Background()
	s := repos.New(repos.NewMemory())
	seed(t, s)
	svc := services.NewInventoryService(s)

	cases := []struct {
		product, size string
		want          domain.Availability
	}{
		{"tee-plain", "", domain.Availability{Status: services.InStock, Qty: 15}},
		{"mug", "", domain.Availability{Status: services.LowStock, Qty: 5}},
		{"tee-wave", "M", domain.Availability{Status: services.InStock, Qty: 30}},
		{"tee-wave", "", domain.Availability{Status: services.InStock, Qty: 34}},
	}
	for _, tc := range cases {
		got, err := svc.CheckAvailability(ctx, tc.product, tc.size)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s/%s", tc.product, tc.size)
	}

	_, err := s.Inventory.UpdateSizeStock(ctx, "tee-wave", "S", 0)
	require.NoError(t, err)
	got, err := svc.CheckAvailability(ctx, "tee-wave", "S")
	require.NoError(t, err)
	assert.Equal(t, domain.Availability{Status: services.OutOfStock, Qty: 0}, got)
	got, err = svc.CheckAvailability(ctx, "tee-wave", "")
	require.NoError(t, err)
	assert.Equal(t, services.LowStock, got.Status)

	_, err = svc.CheckAvailability(ctx, "tee-wave", "XL")
	assert.Equal(t, domain.KindProductNotFound, domain.KindOf(err))
	_, err = svc.CheckAvailability(ctx, "ghost", "")
	assert.Equal(t, domain.KindProductNotFound, domain.KindOf(err))
}
