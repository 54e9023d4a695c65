package events

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	applog "stoik/internal/log"
)

// KafkaPublisher writes avro-encoded events, keyed by order or product id.
type KafkaPublisher struct {
	client     *kgo.Client
	orderTopic string
	stockTopic string
	orders     *Encoder
	stock      *Encoder
}

func NewKafkaPublisher(brokers []string, orderTopic, stockTopic string) (*KafkaPublisher, error) {
	applog.L().Info("events.kafka.connect",
		zap.Strings("brokers", brokers),
		zap.String("order_topic", orderTopic),
		zap.String("stock_topic", stockTopic),
	)

	orders, err := NewEncoder(OrderCreatedSchema)
	if err != nil {
		return nil, err
	}
	stock, err := NewEncoder(LowStockSchema)
	if err != nil {
		return nil, err
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(0),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &KafkaPublisher{
		client:     client,
		orderTopic: orderTopic,
		stockTopic: stockTopic,
		orders:     orders,
		stock:      stock,
	}, nil
}

func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, e OrderCreated) error {
	payload, err := p.orders.EncodeNative(e.native())
	if err != nil {
		return err
	}
	return p.produce(ctx, p.orderTopic, e.OrderID, payload)
}

func (p *KafkaPublisher) PublishLowStock(ctx context.Context, e LowStock) error {
	payload, err := p.stock.EncodeNative(e.native())
	if err != nil {
		return err
	}
	return p.produce(ctx, p.stockTopic, e.ProductID, payload)
}

func (p *KafkaPublisher) produce(ctx context.Context, topic, key string, payload []byte) error {
	rec := &kgo.Record{
		Topic:     topic,
		Key:       []byte(key),
		Value:     payload,
		Timestamp: time.Now().UTC(),
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("publish to kafka topic %s: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	p.client.Close()
	return nil
}
