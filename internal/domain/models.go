package domain

import "time"

// DefaultMinStockLevel applies when a product or size has no explicit minimum.
const DefaultMinStockLevel = 10

type SizeStock struct {
	Size          string `json:"size" bson:"size"`
	StockLevel    int    `json:"stockLevel" bson:"stockLevel"`
	MinStockLevel *int   `json:"minStockLevel,omitempty" bson:"minStockLevel,omitempty"`
}

// MinLevel returns the explicit minimum or DefaultMinStockLevel.
func (s SizeStock) MinLevel() int {
	if s.MinStockLevel == nil {
		return DefaultMinStockLevel
	}
	return *s.MinStockLevel
}

// Product is a catalog entry. Stock is either flat (StockLevel/MinStockLevel)
// or split per size in Sizes; when Sizes is non-empty the flat pair is ignored.
type Product struct {
	ID            string      `json:"id" bson:"_id"`
	Name          string      `json:"name" bson:"name"`
	Design        string      `json:"design" bson:"design"`
	Color         string      `json:"color" bson:"color"`
	Category      string      `json:"category" bson:"category"`
	CostPrice     float64     `json:"costPrice" bson:"costPrice"`
	SellingPrice  float64     `json:"sellingPrice" bson:"sellingPrice"`
	Tags          []string    `json:"tags" bson:"tags"`
	StockLevel    int         `json:"stockLevel" bson:"stockLevel"`
	MinStockLevel *int        `json:"minStockLevel,omitempty" bson:"minStockLevel,omitempty"`
	Sizes         []SizeStock `json:"sizes,omitempty" bson:"sizes,omitempty"`
	CreatedAt     time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt" bson:"updatedAt"`
}

func (p *Product) HasSizes() bool { return len(p.Sizes) > 0 }

// Size returns the index of the named size variant, or -1.
func (p *Product) Size(size string) int {
	for i := range p.Sizes {
		if p.Sizes[i].Size == size {
			return i
		}
	}
	return -1
}

// TotalStock sums size variants, or returns the flat level.
func (p *Product) TotalStock() int {
	if !p.HasSizes() {
		return p.StockLevel
	}
	n := 0
	for _, s := range p.Sizes {
		n += s.StockLevel
	}
	return n
}

func (p *Product) MinLevel() int {
	if p.MinStockLevel == nil {
		return DefaultMinStockLevel
	}
	return *p.MinStockLevel
}

// IsLowStock reports whether the flat level, or any size, is at or below its minimum.
func (p *Product) IsLowStock() bool {
	if !p.HasSizes() {
		return p.StockLevel <= p.MinLevel()
	}
	for _, s := range p.Sizes {
		if s.StockLevel <= s.MinLevel() {
			return true
		}
	}
	return false
}

func (p *Product) IsOutOfStock() bool { return p.TotalStock() == 0 }

type Address struct {
	Street  string `json:"street" bson:"street"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	Zip     string `json:"zip" bson:"zip"`
	Country string `json:"country" bson:"country"`
}

type ContactMethod string

const (
	ContactEmail ContactMethod = "email"
	ContactPhone ContactMethod = "phone"
	ContactSMS   ContactMethod = "sms"
)

func (m ContactMethod) Valid() bool {
	switch m {
	case ContactEmail, ContactPhone, ContactSMS:
		return true
	}
	return false
}

// Customer aggregates (TotalOrders, TotalSpent) are written only by the order processor
// and by an explicit recompute.
type Customer struct {
	ID               string        `json:"id" bson:"_id"`
	Name             string        `json:"name" bson:"name"`
	Email            string        `json:"email" bson:"email"`
	Phone            string        `json:"phone" bson:"phone"`
	Address          Address       `json:"address" bson:"address"`
	PreferredContact ContactMethod `json:"preferredContact" bson:"preferredContact"`
	Notes            string        `json:"notes" bson:"notes"`
	TotalOrders      int           `json:"totalOrders" bson:"totalOrders"`
	TotalSpent       float64       `json:"totalSpent" bson:"totalSpent"`
	CreatedAt        time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt" bson:"updatedAt"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}
