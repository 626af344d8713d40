// Package rabbitmq publishes report lifecycle events for downstream
// consumers (notifications, analytics). Publishing is strictly best-effort:
// the intake and review paths never fail because the broker is down.
package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// Routing keys for report lifecycle events
const (
	RouteReportCreated  = "report.created"
	RouteReportReviewed = "report.reviewed"
)

// Publisher represents a RabbitMQ publisher instance
type Publisher struct {
	mu       sync.Mutex
	amqpURL  string
	exchange string
	conn     *amqp.Connection
	channel  *amqp.Channel
}

// NewPublisher connects to RabbitMQ and declares the report events exchange
func NewPublisher(amqpURL, exchangeName string) (*Publisher, error) {
	p := &Publisher{
		amqpURL:  amqpURL,
		exchange: exchangeName,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.connectLocked(); err != nil {
		return nil, err
	}
	return p, nil
}

// Publish sends a persistent JSON message with the given routing key,
// reconnecting once if the broker dropped the connection.
func (p *Publisher) Publish(routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message to JSON: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() || p.channel == nil {
		p.closeLocked()
		if err := p.connectLocked(); err != nil {
			return err
		}
	}

	if err := p.channel.Publish(p.exchange, routingKey, false, false, publishing); err != nil {
		p.closeLocked()
		if connErr := p.connectLocked(); connErr != nil {
			return fmt.Errorf("failed to publish message: %w (reconnect failed: %v)", err, connErr)
		}
		if err := p.channel.Publish(p.exchange, routingKey, false, false, publishing); err != nil {
			return fmt.Errorf("failed to publish message: %w", err)
		}
	}
	return nil
}

// Close closes the publisher connection and channel
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.channel != nil {
		err = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		if connErr := p.conn.Close(); connErr != nil && err == nil {
			err = connErr
		}
		p.conn = nil
	}
	return err
}

func (p *Publisher) connectLocked() error {
	conn, err := amqp.Dial(p.amqpURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	p.conn = conn
	p.channel = ch
	return nil
}

func (p *Publisher) closeLocked() {
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
