package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stoik/internal/domain"
	applog "stoik/internal/log"
)

type OrderCreated struct {
	OrderID       string
	CustomerID    string
	Kind          string
	ItemCount     int
	TotalQuantity int
	TotalCost     float64
	TotalSelling  float64
	Profit        float64
	PaymentMethod string
	PaymentStatus string
	OrderDate     time.Time
}

func OrderCreatedFrom(o *domain.Order) OrderCreated {
	return OrderCreated{
		OrderID:       o.ID,
		CustomerID:    o.CustomerID,
		Kind:          string(o.Kind),
		ItemCount:     len(o.Items),
		TotalQuantity: o.TotalQuantity(),
		TotalCost:     o.TotalCost,
		TotalSelling:  o.TotalSelling,
		Profit:        o.Profit,
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: string(o.PaymentStatus),
		OrderDate:     o.OrderDate,
	}
}

// LowStock fires when a stock level drops to or below its minimum.
type LowStock struct {
	ProductID     string
	ProductName   string
	Size          string
	StockLevel    int
	MinStockLevel int
	At            time.Time
}

type Publisher interface {
	PublishOrderCreated(ctx context.Context, e OrderCreated) error
	PublishLowStock(ctx context.Context, e LowStock) error
	Close() error
}

// LogPublisher only records events in the process log.
type LogPublisher struct{}

func (LogPublisher) PublishOrderCreated(_ context.Context, e OrderCreated) error {
	applog.L().Debug("events.order_created",
		zap.String("order_id", e.OrderID),
		zap.String("customer_id", e.CustomerID),
		zap.String("kind", e.Kind),
		zap.Float64("total_selling", e.TotalSelling),
	)
	return nil
}

func (LogPublisher) PublishLowStock(_ context.Context, e LowStock) error {
	applog.L().Debug("events.low_stock",
		zap.String("product_id", e.ProductID),
		zap.String("size", e.Size),
		zap.Int("stock_level", e.StockLevel),
		zap.Int("min_stock_level", e.MinStockLevel),
	)
	return nil
}

func (LogPublisher) Close() error { return nil }
