package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *logrus.Entry
}

// Message is the envelope every event is wrapped in. Pattern repeats the
// routing key so consumers bound with wildcards can still dispatch on it.
type Message struct {
	Pattern string    `json:"pattern"`
	Data    any       `json:"data"`
	ID      string    `json:"id"`
	SentAt  time.Time `json:"sentAt"`
}

func NewPublisher(amqpURL, exchange string, log *logrus.Entry) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		log:      log.WithField("exchange", exchange),
	}, nil
}

func encode(pattern string, data any, now time.Time) (Message, []byte, error) {
	msg := Message{
		Pattern: pattern,
		Data:    data,
		ID:      uuid.NewString(),
		SentAt:  now.UTC(),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return Message{}, nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return msg, body, nil
}

func (p *Publisher) Publish(ctx context.Context, pattern string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, body, err := encode(pattern, data, time.Now())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.Publish(
		p.exchange,
		pattern,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.ID,
			Timestamp:    msg.SentAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.log.WithFields(logrus.Fields{"pattern": pattern, "message_id": msg.ID}).Debug("event published")
	return nil
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
