package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"studybuddy/internal/model"
)

// EvaluationStore is where consumed evaluations end up.
type EvaluationStore interface {
	Create(ctx context.Context, eval *model.Evaluation) error
}

// EvaluationPersistWorker drains the evaluation queue into the ledger.
type EvaluationPersistWorker struct {
	conn   *amqp.Connection
	store  EvaluationStore
	queue  string
	logger *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewEvaluationPersistWorker(conn *amqp.Connection, store EvaluationStore, queue string, logger *zap.Logger) *EvaluationPersistWorker {
	return &EvaluationPersistWorker{
		conn:   conn,
		store:  store,
		queue:  queue,
		logger: logger.With(zap.String("worker", "evaluation_persist"), zap.String("queue", queue)),
	}
}

func (w *EvaluationPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	ch, err := w.conn.Channel()
	if err != nil {
		return fmt.Errorf("open worker channel failed: %w", err)
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		return fmt.Errorf("set worker qos failed: %w", err)
	}
	deliveries, err := ch.Consume(w.queue, "studybuddy-evaluation-persist", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					w.logger.Warn("delivery channel closed")
					return
				}
				w.settle(d, w.handle(workerCtx, d.Body))
			}
		}
	}()

	w.logger.Info("worker started")
	return nil
}

type outcome int

const (
	outcomeAck outcome = iota
	outcomeDrop
)

// handle decodes and stores one message. Undecodable messages and store
// failures are logged and dropped; nothing is retried.
func (w *EvaluationPersistWorker) handle(ctx context.Context, body []byte) outcome {
	var eval model.Evaluation
	if err := json.Unmarshal(body, &eval); err != nil || eval.ID == "" {
		w.logger.Error("drop undecodable evaluation", zap.Error(err), zap.Int("bytes", len(body)))
		return outcomeDrop
	}

	if err := w.store.Create(ctx, &eval); err != nil {
		w.logger.Error("persist evaluation failed, dropping",
			zap.String("evaluation_id", eval.ID),
			zap.Error(err),
		)
		return outcomeDrop
	}

	w.logger.Debug("evaluation persisted", zap.String("evaluation_id", eval.ID))
	return outcomeAck
}

func (w *EvaluationPersistWorker) settle(d amqp.Delivery, o outcome) {
	var err error
	switch o {
	case outcomeAck:
		err = d.Ack(false)
	default:
		err = d.Nack(false, false)
	}
	if err != nil {
		w.logger.Warn("settle delivery failed", zap.Error(err))
	}
}

func (w *EvaluationPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
