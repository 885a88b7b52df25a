package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/restaurant-order-service/internal/model"
	"github.com/iliyamo/restaurant-order-service/internal/queue"
)

// OrderEvents publishes order lifecycle events to RabbitMQ.  Publishing is
// best-effort: errors are logged and returned so callers can ignore them
// without failing the request.
type OrderEvents struct {
	URL string
	log *slog.Logger
}

func NewOrderEvents(url string, log *slog.Logger) *OrderEvents {
	return &OrderEvents{URL: url, log: log}
}

// NewOrderCreatedEvent builds the event payload for a committed order.
func NewOrderCreatedEvent(o model.Order) queue.OrderCreatedEvent {
	items := make([]queue.OrderEventItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, queue.OrderEventItem{
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			IsColdDrink: it.IsColdDrink,
		})
	}
	return queue.OrderCreatedEvent{
		OrderID:      o.ID,
		RestaurantID: o.RestaurantID,
		TableID:      o.TableID,
		UserID:       o.UserID,
		TotalPrice:   o.TotalPrice,
		Status:       string(o.Status),
		Items:        items,
		CreatedAt:    o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// PublishOrderCreated publishes the order to the durable order.created
// queue as a persistent message.
func (p *OrderEvents) PublishOrderCreated(ctx context.Context, o model.Order) error {
	const op = "orders.PublishOrderCreated"
	log := p.log.With(slog.String("op", op), slog.Uint64("order_id", o.ID))

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Warn("rabbitmq dial failed", slog.Any("err", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warn("rabbitmq channel open failed", slog.Any("err", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = ch.Close() }()

	// idempotent; durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(queue.OrderCreatedQueue, true, false, false, false, nil); err != nil {
		log.Warn("rabbitmq queue declare failed", slog.Any("err", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	body, err := json.Marshal(NewOrderCreatedEvent(o))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := ch.PublishWithContext(ctx,
		"",                      // default exchange
		queue.OrderCreatedQueue, // routing key = queue name
		false,                   // mandatory
		false,                   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	); err != nil {
		log.Warn("rabbitmq publish failed", slog.Any("err", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
