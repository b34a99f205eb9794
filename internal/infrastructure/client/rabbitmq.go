package client

import (
	"context"
	"encoding/json"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/St1cky1/task-tracker/internal/log"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func NewRabbitMQClient(url, queueName string) (*RabbitMQClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to RabbitMQ")
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to open channel")
	}

	// Объявляем очередь для аудита
	queue, err := channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, errors.Wrapf(err, "failed to declare queue %s", queueName)
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: channel,
		queue:   queue,
	}, nil
}

// Connection возвращает соединение; consumer открывает на нём свой канал
func (c *RabbitMQClient) Connection() *amqp.Connection {
	return c.conn
}

// GetQueueName возвращает имя очереди
func (c *RabbitMQClient) GetQueueName() string {
	return c.queue.Name
}

// PublishAuditLog публикует запись аудита в очередь
func (c *RabbitMQClient) PublishAuditLog(ctx context.Context, entry *entity.AuditLog) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "failed to marshal audit log")
	}

	err = c.channel.PublishWithContext(
		ctx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // Сообщения сохраняются на диск
			Timestamp:    entry.Timestamp,
		},
	)
	if err != nil {
		return errors.Wrap(err, "failed to publish audit log")
	}

	log.GetLogger().Debugf("Audit published: %s %s %d", entry.Action, entry.EntityType, entry.EntityID)
	return nil
}

func (c *RabbitMQClient) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
