package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/St1cky1/task-tracker/internal/log"
	"github.com/St1cky1/task-tracker/internal/repository"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	reconnectDelay = 5 * time.Second
	// пауза перед возвратом сообщения в очередь растёт, пока хранилище недоступно
	storeRetryBase = time.Second
	storeRetryMax  = 30 * time.Second
)

// ChannelOpener - источник AMQP каналов (*amqp.Connection)
type ChannelOpener interface {
	Channel() (*amqp.Channel, error)
	IsClosed() bool
}

// AuditWorker читает записи аудита из очереди и сохраняет их в журнал
type AuditWorker struct {
	conn      ChannelOpener
	queueName string
	auditRepo repository.IAuditLogRepository

	retryBase     time.Duration
	retryMax      time.Duration
	storeFailures int // подряд идущие ошибки записи, сообщения обрабатываются последовательно
}

func NewAuditWorker(conn ChannelOpener, queueName string, auditRepo repository.IAuditLogRepository) *AuditWorker {
	return &AuditWorker{
		conn:      conn,
		queueName: queueName,
		auditRepo: auditRepo,
		retryBase: storeRetryBase,
		retryMax:  storeRetryMax,
	}
}

// Start блокируется до отмены ctx или закрытия соединения
func (w *AuditWorker) Start(ctx context.Context) {
	logger := log.GetLogger().WithField("queue", w.queueName)
	logger.Info("Audit worker started")

	for {
		err := w.run(ctx)
		if ctx.Err() != nil {
			logger.Info("Audit worker stopped")
			return
		}
		if w.conn.IsClosed() {
			logger.Warn("Audit worker: connection closed, stopping")
			return
		}
		logger.WithError(err).Warnf("Audit worker failed, retrying in %s", reconnectDelay)

		select {
		case <-ctx.Done():
			logger.Info("Audit worker stopped")
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (w *AuditWorker) run(ctx context.Context) error {
	channel, err := w.conn.Channel()
	if err != nil {
		return errors.Wrap(err, "open channel")
	}
	defer channel.Close()

	// Убеждаемся, что очередь существует
	_, err = channel.QueueDeclare(
		w.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return errors.Wrapf(err, "declare queue %s", w.queueName)
	}

	// по одному сообщению: пауза после ошибки записи сдерживает повторные доставки
	if err := channel.Qos(1, 0, false); err != nil {
		return errors.Wrap(err, "set prefetch")
	}

	msgs, err := channel.Consume(
		w.queueName,    // queue
		"audit_worker", // consumer tag
		false,          // auto-ack
		false,          // exclusive
		false,          // no-local
		false,          // no-wait
		nil,            // args
	)
	if err != nil {
		return errors.Wrap(err, "start consumer")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.processMessage(ctx, msg)
		}
	}
}

// processMessage: битое сообщение отбрасывается, ошибка записи возвращает его в очередь
func (w *AuditWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	logger := log.GetLogger()

	var entry entity.AuditLog
	if err := json.Unmarshal(msg.Body, &entry); err != nil {
		logger.WithError(err).Errorf("Audit worker: malformed message %q", string(msg.Body))
		_ = msg.Nack(false, false)
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = msg.Timestamp.UTC()
	}

	if err := w.auditRepo.Create(ctx, &entry); err != nil {
		w.storeFailures++
		delay := w.retryDelay()
		logger.WithError(err).Errorf("Audit worker: failed to store %s %s %d, requeue in %s",
			entry.Action, entry.EntityType, entry.EntityID, delay)

		select {
		case <-ctx.Done():
		case <-time.After(delay):
		}
		_ = msg.Nack(false, true)
		return
	}

	w.storeFailures = 0
	_ = msg.Ack(false)
	logger.Debugf("Audit stored: %s %s %d by %d", entry.Action, entry.EntityType, entry.EntityID, entry.PerformedBy)
}

// retryDelay - экспоненциальная пауза по числу подряд идущих ошибок, не больше retryMax
func (w *AuditWorker) retryDelay() time.Duration {
	delay := w.retryBase
	for i := 1; i < w.storeFailures && delay < w.retryMax; i++ {
		delay *= 2
	}
	if delay > w.retryMax {
		delay = w.retryMax
	}
	return delay
}
