/*
Package rabbit implements the broker on RabbitMQ fanout exchanges. Every
channel maps to one auto-deleted fanout exchange; every subscription gets an
exclusive server-named queue bound to it.
*/
package rabbit

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dambileh/civitas-bus/broker/query"
	"github.com/dambileh/civitas-bus/config"
)

// Config - configuration
type Config struct {
	URI string
}

type MQ struct {
	conn *amqp.Connection

	config Config
	cfg    *config.Config
}

func New(cfg *config.Config) *MQ {
	return &MQ{cfg: cfg}
}

// Init - init connection
func (mq *MQ) Init(ctx context.Context) error {
	var err error

	// Set configuration
	mq.setConfig()

	mq.conn, err = amqp.Dial(mq.config.URI)
	if err != nil {
		return err
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()

		_ = mq.conn.Close() //nolint:errcheck // shutdown path
	}()

	return nil
}

// Publish - publish to a channel
func (mq *MQ) Publish(ctx context.Context, channel string, payload []byte) error {
	amqpChannel, err := mq.conn.Channel()
	if err != nil {
		return err
	}
	defer func() {
		_ = amqpChannel.Close() //nolint:errcheck // best effort
	}()

	if err := declareExchange(amqpChannel, channel); err != nil {
		return err
	}

	return amqpChannel.PublishWithContext(ctx,
		channel, // exchange
		"",      // routing key, fanout ignores it
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        payload,
		},
	)
}

// Subscribe - subscribe to a channel
func (mq *MQ) Subscribe(_ context.Context, channel string, handler query.Handler) (query.Subscription, error) {
	amqpChannel, err := mq.conn.Channel()
	if err != nil {
		return nil, err
	}

	if err := declareExchange(amqpChannel, channel); err != nil {
		_ = amqpChannel.Close() //nolint:errcheck // best effort

		return nil, err
	}

	queue, err := amqpChannel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // autoDelete
		true,  // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		_ = amqpChannel.Close() //nolint:errcheck // best effort

		return nil, err
	}

	if err := amqpChannel.QueueBind(queue.Name, "", channel, false, nil); err != nil {
		_ = amqpChannel.Close() //nolint:errcheck // best effort

		return nil, err
	}

	deliveries, err := amqpChannel.Consume(
		queue.Name,
		"",    // consumer tag
		true,  // autoAck
		true,  // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		_ = amqpChannel.Close() //nolint:errcheck // best effort

		return nil, err
	}

	go func() {
		for delivery := range deliveries {
			handler(delivery.Body)
		}
	}()

	return &subscription{channel: amqpChannel}, nil
}

type subscription struct {
	channel *amqp.Channel
	once    sync.Once
}

// Unsubscribe closes the AMQP channel; the delivery loop drains and exits.
func (s *subscription) Unsubscribe() error {
	var err error

	s.once.Do(func() {
		err = s.channel.Close()
	})

	return err
}

func declareExchange(amqpChannel *amqp.Channel, name string) error {
	return amqpChannel.ExchangeDeclare(
		name,
		"fanout",
		false, // durable
		true,  // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
}

// setConfig - set configuration
func (mq *MQ) setConfig() {
	mq.cfg.SetDefault("MQ_RABBIT_URI", "amqp://localhost:5672") // RabbitMQ URI

	mq.config = Config{
		URI: mq.cfg.GetString("MQ_RABBIT_URI"),
	}
}
