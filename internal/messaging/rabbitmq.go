// Package messaging publishes domain events to RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stemsi/assessment-backend/internal/model"
)

// Publisher holds one connection and channel. A channel is not safe for
// concurrent publishes, so Publish serializes on mu.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string

	mu sync.Mutex
}

// NewPublisher dials url and declares the durable queue events are routed to.
func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := channel.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	return &Publisher{conn: conn, channel: channel, queue: queue}, nil
}

// PublishJSON encodes v and publishes it as a persistent message.
func (p *Publisher) PublishJSON(ctx context.Context, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.channel.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// ResultGraded publishes the graded-result event for res.
func (p *Publisher) ResultGraded(ctx context.Context, res *model.Result) error {
	return p.PublishJSON(ctx, model.NewResultGradedEvent(res))
}
