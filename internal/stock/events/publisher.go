package events

import (
	"context"

	"github.com/smartstock/smartstock-backend/pkg/logger"
	"github.com/smartstock/smartstock-backend/pkg/messaging"
)

// StockEventPublisher publishes stock domain events to the stock.events exchange.
type StockEventPublisher struct {
	publisher *messaging.Publisher
}

// NewStockEventPublisher creates a publisher bound to the stock events exchange
func NewStockEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*StockEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeStockEvents, "stock-service", log)
	if err != nil {
		return nil, err
	}
	return &StockEventPublisher{publisher: publisher}, nil
}

// Publish publishes a stock event
func (p *StockEventPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	return p.publisher.Publish(ctx, eventType, data)
}
