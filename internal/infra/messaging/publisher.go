package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"refund-settlement-engine/internal/pkg/config"
	"refund-settlement-engine/internal/pkg/errs"
	"refund-settlement-engine/internal/usecase/commands"

	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrBrokerUnavailable = errs.New("rabbitmq unavailable")

// RabbitPublisher sends one persistent JSON message per refund transition to
// a durable queue on the default exchange. The connection is dialled lazily
// and redialled after it closes.
type RabbitPublisher struct {
	url           string
	queue         string
	dialTimeout   time.Duration
	redialBackoff time.Duration

	mu        sync.Mutex
	conn      *amqp.Connection
	ch        *amqp.Channel
	nextDial  time.Time
	lastError error
}

const defaultDialTimeout = 3 * time.Second

func NewRabbitPublisher(cfg config.RabbitMQConfig) *RabbitPublisher {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	return &RabbitPublisher{
		url:           cfg.URL,
		queue:         cfg.RefundQueue,
		dialTimeout:   cfg.DialTimeout,
		redialBackoff: cfg.RedialBackoff,
	}
}

// MessageID is unique per audit log entry. Status pairs repeat across retry
// cycles, so the entry time is part of the id.
func MessageID(e commands.RefundEvent) string {
	from := "NONE"
	if e.PreviousStatus != nil {
		from = string(*e.PreviousStatus)
	}
	return fmt.Sprintf("%s:%s-%s:%d", e.RefundID, from, e.NewStatus, e.OccurredAt.UnixNano())
}

func (p *RabbitPublisher) Publish(ctx context.Context, events ...commands.RefundEvent) error {
	if len(events) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	for _, e := range events {
		body, err := json.Marshal(e)
		if err != nil {
			return errs.Wrap(err, "marshal refund event")
		}
		err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			MessageId:    MessageID(e),
			Type:         "refund." + string(e.NewStatus),
			Body:         body,
		})
		if err != nil {
			p.reset()
			return errs.Wrapf(err, "publish refund event to %s", p.queue)
		}
	}
	return nil
}

func (p *RabbitPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	if now := time.Now(); now.Before(p.nextDial) {
		return nil, errs.Wrapf(ErrBrokerUnavailable, "next dial in %s: %v", p.nextDial.Sub(now).Round(time.Millisecond), p.lastError)
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(p.dialTimeout),
	})
	if err != nil {
		p.nextDial, p.lastError = time.Now().Add(p.redialBackoff), err
		return nil, errs.Wrap(err, "rabbitmq dial")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errs.Wrap(err, "rabbitmq channel")
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errs.Wrapf(err, "rabbitmq declare %s", p.queue)
	}
	p.conn, p.ch = conn, ch
	slog.Info("rabbitmq publisher connected", "queue", p.queue)
	return ch, nil
}

func (p *RabbitPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

// LogPublisher writes events to the log when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, events ...commands.RefundEvent) error {
	for _, e := range events {
		slog.Debug("refund event", "refund_id", e.RefundID, "from", e.PreviousStatus, "to", e.NewStatus, "actor", e.Actor)
	}
	return nil
}

var (
	_ commands.EventPublisher = (*RabbitPublisher)(nil)
	_ commands.EventPublisher = LogPublisher{}
)
