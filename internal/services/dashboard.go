package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"stoik/internal/domain"
)

const (
	// VIPThreshold is the lifetime spend above which a customer counts as VIP.
	VIPThreshold = 1000
	trendMonths  = 6
	topSellers   = 5
)

// ComputeDashboard folds the three collections into dashboard metrics as of now.
func ComputeDashboard(orders []domain.Order, products []domain.Product, customers []domain.Customer) domain.DashboardStats {
	return ComputeDashboardAt(time.Now(), orders, products, customers)
}

// ComputeDashboardAt is ComputeDashboard with a fixed clock. The trend covers the
// six calendar months ending with now's month, in UTC.
func ComputeDashboardAt(now time.Time, orders []domain.Order, products []domain.Product, customers []domain.Customer) domain.DashboardStats {
	var st domain.DashboardStats

	value := decimal.Zero
	for i := range products {
		p := &products[i]
		st.Inventory.TotalProducts++
		if p.IsLowStock() {
			st.Inventory.LowStock++
		}
		if p.IsOutOfStock() {
			st.Inventory.OutOfStock++
		}
		value = value.Add(decimal.NewFromFloat(p.SellingPrice).Mul(decimal.NewFromInt(int64(p.TotalStock()))))
	}
	st.Inventory.TotalValue = value.Round(2).InexactFloat64()

	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(trendMonths - 1), 0)
	months := make([]string, trendMonths)
	bucket := make(map[string]int, trendMonths)
	for i := range months {
		months[i] = first.AddDate(0, i, 0).Format("2006-01")
		bucket[months[i]] = i
	}
	trendRev := make([]decimal.Decimal, trendMonths)
	trendProfit := make([]decimal.Decimal, trendMonths)

	type seller struct {
		name    string
		qty     int
		revenue decimal.Decimal
	}
	sellers := map[string]*seller{}

	revenue, profit := decimal.Zero, decimal.Zero
	for _, o := range orders {
		st.Orders.Total++
		switch o.Status {
		case domain.StatusPending:
			st.Orders.Pending++
		case domain.StatusProcessing:
			st.Orders.Processing++
		case domain.StatusShipped:
			st.Orders.Shipped++
		case domain.StatusDelivered:
			st.Orders.Delivered++
		case domain.StatusCancelled:
			st.Orders.Cancelled++
		}
		sell := decimal.NewFromFloat(o.TotalSelling)
		prof := decimal.NewFromFloat(o.Profit)
		revenue = revenue.Add(sell)
		profit = profit.Add(prof)

		if i, ok := bucket[o.OrderDate.UTC().Format("2006-01")]; ok {
			trendRev[i] = trendRev[i].Add(sell)
			trendProfit[i] = trendProfit[i].Add(prof)
		}

		for _, it := range o.Items {
			s, ok := sellers[it.ProductID]
			if !ok {
				s = &seller{revenue: decimal.Zero}
				sellers[it.ProductID] = s
			}
			s.name = it.ProductName
			s.qty += it.Quantity
			s.revenue = s.revenue.Add(decimal.NewFromFloat(it.TotalSelling))
		}
	}
	st.Orders.Revenue = revenue.Round(2).InexactFloat64()
	st.Orders.Profit = profit.Round(2).InexactFloat64()

	st.MonthlyTrend = make([]domain.MonthlyPoint, trendMonths)
	for i, m := range months {
		st.MonthlyTrend[i] = domain.MonthlyPoint{
			Month:   m,
			Revenue: trendRev[i].Round(2).InexactFloat64(),
			Profit:  trendProfit[i].Round(2).InexactFloat64(),
		}
	}

	top := make([]domain.TopSeller, 0, len(sellers))
	for id, s := range sellers {
		top = append(top, domain.TopSeller{
			ProductID:    id,
			ProductName:  s.name,
			QuantitySold: s.qty,
			Revenue:      s.revenue.Round(2).InexactFloat64(),
		})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].QuantitySold != top[j].QuantitySold {
			return top[i].QuantitySold > top[j].QuantitySold
		}
		if top[i].Revenue != top[j].Revenue {
			return top[i].Revenue > top[j].Revenue
		}
		return top[i].ProductID < top[j].ProductID
	})
	if len(top) > topSellers {
		top = top[:topSellers]
	}
	st.TopSelling = top

	for _, c := range customers {
		st.Customers.Total++
		if c.TotalSpent > VIPThreshold {
			st.Customers.VIP++
		}
	}
	return st
}
