package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartOrderConsumer connects to RabbitMQ, declares the order.created queue
// (durable) and appends one line per delivered event to logDir/orders.log.
// It reconnects with exponential backoff and only returns once ctx is
// cancelled.  Malformed messages are rejected without requeue.
func StartOrderConsumer(ctx context.Context, url, logDir string, log *slog.Logger) error {
	const op = "queue.StartOrderConsumer"
	log = log.With(slog.String("op", op))

	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("failed to dial broker", slog.Any("err", err), slog.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, logDir, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("consume loop ended, reconnecting", slog.Any("err", err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logDir string, log *slog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("set QoS failed", slog.Any("err", err))
	}

	if _, err := ch.QueueDeclare(OrderCreatedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, OrderCreatedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := HandleOrderCreated(logDir, d.Body); err != nil {
			log.Error("handle message failed", slog.Any("err", err))
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// HandleOrderCreated decodes one event and appends it to logDir/orders.log.
func HandleOrderCreated(logDir string, body []byte) error {
	var ev OrderCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.OrderID == 0 {
		return errors.New("event without order_id")
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, "orders.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatOrderLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatOrderLine(ev OrderCreatedEvent) string {
	items := make([]string, 0, len(ev.Items))
	for _, it := range ev.Items {
		s := fmt.Sprintf("%dx#%d@%s", it.Quantity, it.ProductID, it.UnitPrice)
		if it.IsColdDrink {
			s += "(cold)"
		}
		items = append(items, s)
	}
	table := "-"
	if ev.TableID != nil {
		table = strconv.FormatUint(*ev.TableID, 10)
	}
	user := "anonymous"
	if ev.UserID != nil {
		user = strconv.FormatUint(*ev.UserID, 10)
	}
	return fmt.Sprintf("[%s] Order created | order_id=%d | restaurant_id=%d | table=%s | user=%s | total=%s | status=%s | items=[%s]\n",
		ev.CreatedAt, ev.OrderID, ev.RestaurantID, table, user, ev.TotalPrice, ev.Status, strings.Join(items, ","))
}
