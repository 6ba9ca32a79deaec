package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/rafaelleal24/product-catalog/internal/adapters/config"
	"github.com/rafaelleal24/product-catalog/internal/core/logger"
)

// ExchangeFor is the default exchange name for an entity whose
// ExchangeConfig leaves Name empty.
func ExchangeFor(entityName string) string {
	return "exchange." + entityName
}

type Publisher struct {
	mu        sync.Mutex
	conn      *amqp.Connection
	channel   *amqp.Channel
	config    config.RabbitMQConfig
	exchanges map[string]string // entity -> declared exchange
	closed    bool
}

func NewPublisher(cfg config.RabbitMQConfig) (*Publisher, error) {
	cfg.ExchangeConfigs = append([]config.ExchangeConfig(nil), cfg.ExchangeConfigs...)
	exchanges := make(map[string]string, len(cfg.ExchangeConfigs))
	for i, ec := range cfg.ExchangeConfigs {
		if ec.Name == "" {
			ec.Name = ExchangeFor(ec.Entity)
			cfg.ExchangeConfigs[i] = ec
		}
		if ec.Entity != "" {
			exchanges[ec.Entity] = ec.Name
		}
	}
	p := &Publisher{config: cfg, exchanges: exchanges}

	if err := p.connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.config.URL)
	if err != nil {
		return fmt.Errorf("failed to dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	for _, ec := range p.config.ExchangeConfigs {
		if err := ch.ExchangeDeclare(ec.Name, ec.Type, ec.Durable, ec.AutoDelete, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("failed to declare exchange %s: %w", ec.Name, err)
		}
	}

	p.conn = conn
	p.channel = ch
	return nil
}

// ensureChannel must be called with mu held.
func (p *Publisher) ensureChannel() error {
	if p.channel != nil && !p.channel.IsClosed() {
		return nil
	}
	p.dropConnection()
	return p.connect()
}

func (p *Publisher) dropConnection() {
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// PublishRaw sends data to the exchange declared for entityName with eventName
// as routing key, reconnecting and retrying up to MaxRetries times.
func (p *Publisher) PublishRaw(ctx context.Context, eventName, entityName string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	exchange, ok := p.exchanges[entityName]
	if !ok {
		return fmt.Errorf("no exchange configured for entity %q", entityName)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    uuid.NewString(),
		Type:         eventName,
		Body:         data,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
	}

	var lastErr error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.config.RetryDelay):
			}
		}

		if lastErr = p.publishOnce(ctx, exchange, eventName, msg); lastErr == nil {
			return nil
		}
		logger.Warn(ctx, "rabbitmq: publish attempt failed", map[string]any{
			"attempt":     attempt + 1,
			"exchange":    exchange,
			"routing_key": eventName,
			"message_id":  msg.MessageId,
			"error":       lastErr.Error(),
		})
	}

	return fmt.Errorf("failed to publish after %d attempts: %w", p.config.MaxRetries+1, lastErr)
}

func (p *Publisher) publishOnce(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errors.New("publisher is closed")
	}
	if err := p.ensureChannel(); err != nil {
		return fmt.Errorf("reconnect failed: %w", err)
	}

	if err := p.channel.PublishWithContext(ctx, exchange, routingKey, false, false, msg); err != nil {
		p.dropConnection()
		return err
	}
	return nil
}

func (p *Publisher) HealthCheck() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("connection is closed")
	}
	if p.channel == nil || p.channel.IsClosed() {
		return errors.New("channel is closed")
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true

	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing channel: %w", err))
		}
		p.channel = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing connection: %w", err))
		}
		p.conn = nil
	}
	return errors.Join(errs...)
}
