package domain

import "time"

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// next lists the legal forward edges of the status graph.
var next = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
}

// CanTransition reports whether an order may move from s to to.
// Staying in the same status is always allowed.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if s == to {
		return true
	}
	for _, n := range next[s] {
		if n == to {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentPaypal       PaymentMethod = "paypal"
	PaymentOther        PaymentMethod = "other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentBankTransfer, PaymentPaypal, PaymentOther:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

type OrderKind string

const (
	KindRetail OrderKind = "retail"
	KindBulk   OrderKind = "bulk"
)

// CustomerSnapshot is the customer as it was when the order was placed.
type CustomerSnapshot struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Phone string `json:"phone" bson:"phone"`
}

// OrderLine is a requested line before pricing.
type OrderLine struct {
	ProductID string `json:"productId"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
}

// OrderItem is a priced line. Product fields are copied at order time
// and never follow later product edits.
type OrderItem struct {
	ProductID    string  `json:"productId" bson:"productId"`
	ProductName  string  `json:"productName" bson:"productName"`
	Design       string  `json:"design" bson:"design"`
	Color        string  `json:"color" bson:"color"`
	Size         string  `json:"size,omitempty" bson:"size,omitempty"`
	Quantity     int     `json:"quantity" bson:"quantity"`
	UnitCost     float64 `json:"unitCost" bson:"unitCost"`
	UnitSelling  float64 `json:"unitSelling" bson:"unitSelling"`
	TotalCost    float64 `json:"totalCost" bson:"totalCost"`
	TotalSelling float64 `json:"totalSelling" bson:"totalSelling"`
	Profit       float64 `json:"profit" bson:"profit"`
}

type Order struct {
	ID              string           `json:"id" bson:"_id"`
	CustomerID      string           `json:"customerId" bson:"customerId"`
	Customer        CustomerSnapshot `json:"customer" bson:"customer"`
	Items           []OrderItem      `json:"items" bson:"items"`
	Kind            OrderKind        `json:"kind" bson:"kind"`
	Status          OrderStatus      `json:"status" bson:"status"`
	TotalCost       float64          `json:"totalCost" bson:"totalCost"`
	TotalSelling    float64          `json:"totalSelling" bson:"totalSelling"`
	Profit          float64          `json:"profit" bson:"profit"`
	OrderDate       time.Time        `json:"orderDate" bson:"orderDate"`
	ShippingDate    *time.Time       `json:"shippingDate,omitempty" bson:"shippingDate,omitempty"`
	DeliveryDate    *time.Time       `json:"deliveryDate,omitempty" bson:"deliveryDate,omitempty"`
	ShippingAddress Address          `json:"shippingAddress" bson:"shippingAddress"`
	PaymentMethod   PaymentMethod    `json:"paymentMethod" bson:"paymentMethod"`
	PaymentStatus   PaymentStatus    `json:"paymentStatus" bson:"paymentStatus"`
	Notes           string           `json:"notes" bson:"notes"`
	CreatedAt       time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt" bson:"updatedAt"`
}

func (o *Order) TotalQuantity() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
