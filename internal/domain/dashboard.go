package domain

type InventoryStats struct {
	TotalProducts int     `json:"totalProducts"`
	LowStock      int     `json:"lowStock"`
	OutOfStock    int     `json:"outOfStock"`
	TotalValue    float64 `json:"totalValue"`
}

type OrderStats struct {
	Total      int     `json:"total"`
	Pending    int     `json:"pending"`
	Processing int     `json:"processing"`
	Shipped    int     `json:"shipped"`
	Delivered  int     `json:"delivered"`
	Cancelled  int     `json:"cancelled"`
	Revenue    float64 `json:"revenue"`
	Profit     float64 `json:"profit"`
}

type CustomerStats struct {
	Total int `json:"total"`
	VIP   int `json:"vip"`
}

type MonthlyPoint struct {
	Month   string  `json:"month"` // YYYY-MM
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

type TopSeller struct {
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	QuantitySold int     `json:"quantitySold"`
	Revenue      float64 `json:"revenue"`
}

type DashboardStats struct {
	Inventory    InventoryStats `json:"inventory"`
	Orders       OrderStats     `json:"orders"`
	Customers    CustomerStats  `json:"customers"`
	MonthlyTrend []MonthlyPoint `json:"monthlyTrend"`
	TopSelling   []TopSeller    `json:"topSelling"`
}
