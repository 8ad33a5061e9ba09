package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/campus-ticketing/internal/queue"
)

// QueuePublisher sends ticket events to RabbitMQ, dialling once per
// publish.  The dial and handshake are bounded by the publish context's
// deadline (or defaultDialTimeout without one).  Failures are logged and
// returned; the booking engine treats them as non-fatal.
type QueuePublisher struct {
	url string
	log *zap.Logger
}

const defaultDialTimeout = 10 * time.Second

// dialTimeout is the time left before ctx's deadline, capped at
// defaultDialTimeout.
func dialTimeout(ctx context.Context) time.Duration {
	d := defaultDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < d {
			d = left
		}
	}
	if d <= 0 {
		d = time.Millisecond
	}
	return d
}

func NewQueuePublisher(url string, log *zap.Logger) *QueuePublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &QueuePublisher{url: url, log: log}
}

// Publish delivers ev to queue.QueueName as a persistent JSON message.
func (p *QueuePublisher) Publish(ctx context.Context, ev queue.TicketEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout(ctx)),
	})
	if err != nil {
		p.log.Warn("rabbitmq dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.QueueName, true, false, false, false, nil); err != nil {
		p.log.Warn("rabbitmq queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.QueueName, false, false, pub); err != nil {
		p.log.Warn("rabbitmq publish failed", zap.Error(err), zap.String("type", ev.Type))
		return err
	}
	return nil
}
