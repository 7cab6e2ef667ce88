// Package rabbitmq carries finished evaluations to the persistence worker.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"studybuddy/internal/model"
)

// New dials the broker and declares queue as a durable queue so publishers
// and consumers agree on it before the first message.
func New(ctx context.Context, url, queue string) (*amqp.Connection, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{Properties: amqp.Table{"connection_name": "studybuddy"}})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := declare(ch, queue); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func declare(ch *amqp.Channel, queue string) error {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s failed: %w", queue, err)
	}
	return nil
}

// EvaluationPublisher hands evaluations to the queue instead of writing them
// to MySQL on the request path.
type EvaluationPublisher struct {
	conn  *amqp.Connection
	queue string
}

func NewEvaluationPublisher(conn *amqp.Connection, queue string) *EvaluationPublisher {
	return &EvaluationPublisher{conn: conn, queue: queue}
}

func (p *EvaluationPublisher) Publish(ctx context.Context, eval *model.Evaluation) error {
	payload, err := json.Marshal(eval)
	if err != nil {
		return fmt.Errorf("marshal evaluation failed: %w", err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    eval.ID,
		Timestamp:    eval.CreatedAt,
		DeliveryMode: amqp.Persistent,
		Body:         payload,
	}); err != nil {
		return fmt.Errorf("publish evaluation failed: %w", err)
	}
	return nil
}
