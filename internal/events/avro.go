package events

import (
	"fmt"
	"sync"

	"github.com/linkedin/goavro/v2"
)

const OrderCreatedSchema = `{
	"type": "record",
	"name": "OrderCreated",
	"namespace": "io.stoik.orders",
	"fields": [
		{"name": "order_id", "type": "string"},
		{"name": "customer_id", "type": "string"},
		{"name": "kind", "type": "string"},
		{"name": "item_count", "type": "long"},
		{"name": "total_quantity", "type": "long"},
		{"name": "total_cost", "type": "double"},
		{"name": "total_selling", "type": "double"},
		{"name": "profit", "type": "double"},
		{"name": "payment_method", "type": "string"},
		{"name": "payment_status", "type": "string"},
		{"name": "order_date", "type": "long"}
	]
}`

const LowStockSchema = `{
	"type": "record",
	"name": "LowStock",
	"namespace": "io.stoik.stock",
	"fields": [
		{"name": "product_id", "type": "string"},
		{"name": "product_name", "type": "string"},
		{"name": "size", "type": ["null", "string"], "default": null},
		{"name": "stock_level", "type": "long"},
		{"name": "min_stock_level", "type": "long"},
		{"name": "at", "type": "long"}
	]
}`

// Encoder wraps a goavro codec for concurrent use.
type Encoder struct {
	codec *goavro.Codec
	mu    sync.Mutex
}

func NewEncoder(schema string) (*Encoder, error) {
	codec, err := goavro.NewCodec(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create avro codec: %w", err)
	}
	return &Encoder{codec: codec}, nil
}

func (e *Encoder) EncodeNative(native map[string]interface{}) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	binary, err := e.codec.BinaryFromNative(nil, native)
	if err != nil {
		return nil, fmt.Errorf("failed to encode to avro binary: %w", err)
	}
	return binary, nil
}

func (e *Encoder) Codec() *goavro.Codec { return e.codec }

func (o OrderCreated) native() map[string]interface{} {
	return map[string]interface{}{
		"order_id":       o.OrderID,
		"customer_id":    o.CustomerID,
		"kind":           o.Kind,
		"item_count":     int64(o.ItemCount),
		"total_quantity": int64(o.TotalQuantity),
		"total_cost":     o.TotalCost,
		"total_selling":  o.TotalSelling,
		"profit":         o.Profit,
		"payment_method": o.PaymentMethod,
		"payment_status": o.PaymentStatus,
		"order_date":     o.OrderDate.UnixMilli(),
	}
}

func (l LowStock) native() map[string]interface{} {
	var size interface{}
	if l.Size != "" {
		size = goavro.Union("string", l.Size)
	}
	return map[string]interface{}{
		"product_id":      l.ProductID,
		"product_name":    l.ProductName,
		"size":            size,
		"stock_level":     int64(l.StockLevel),
		"min_stock_level": int64(l.MinStockLevel),
		"at":              l.At.UnixMilli(),
	}
}
