package mq

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// NewConsumer sets up a consumer bound to the dispatch exchange and
// declares the jobs/retry queue pair. The retry queue has no consumer:
// messages parked there expire after RetryDelay and are dead-lettered back
// to the jobs queue.
func NewConsumer(amqpURL string, exchangeName string, tag string, maxAttempts int) (*Consumer, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, ConnectionError{msg: err.Error()}
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, ChannelError{msg: err.Error()}
	}

	err = ch.ExchangeDeclare(
		exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, ExchangeError{msg: err.Error()}
	}

	queues := []struct {
		name       string
		routingKey string
		args       amqp.Table
	}{
		{QueueNameJobs, RoutingKeyJobs, nil},
		{QueueNameRetry, RoutingKeyRetry, amqp.Table{
			"x-message-ttl":             RetryDelay.Milliseconds(),
			"x-dead-letter-exchange":    exchangeName,
			"x-dead-letter-routing-key": RoutingKeyJobs,
		}},
	}
	for _, q := range queues {
		declared, err := ch.QueueDeclare(
			q.name,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			q.args,
		)
		if err != nil {
			ch.Close()
			conn.Close()
			return nil, QueueError{msg: err.Error()}
		}
		err = ch.QueueBind(
			declared.Name,
			q.routingKey,
			exchangeName,
			false,
			nil,
		)
		if err != nil {
			ch.Close()
			conn.Close()
			return nil, BindingError{msg: err.Error()}
		}
	}

	publisher, err := NewPublisher(amqpURL, exchangeName)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Consumer{
		conn:          conn,
		channel:       ch,
		publisher:     publisher,
		scheduleRetry: publisher.ScheduleRetry,
		exchangeName:  exchangeName,
		tag:           tag,
		maxAttempts:   maxAttempts,
	}, nil
}

// ConsumeJobs delivers messages to handler until the context is cancelled.
// Deliveries are handled concurrently, there is no ordering guarantee
// between messages.
//
// A nil handler result acknowledges the message. A non-nil result schedules
// one retry with the fixed delay, unless the attempt count has reached the
// maximum, in which case the message is dropped and acknowledged.
func (c *Consumer) ConsumeJobs(ctx context.Context, handler func(ctx context.Context, body []byte, attempt int) error) error {
	// Bound how many deliveries are in flight per consumer; the broker
	// delivers the next batch as messages are acked.
	if err := c.channel.Qos(10, 0, false); err != nil {
		return ChannelError{msg: err.Error()}
	}

	msgs, err := c.channel.Consume(
		QueueNameJobs,
		c.tag,
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			go c.handleDelivery(ctx, d, handler)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery, handler func(ctx context.Context, body []byte, attempt int) error) {
	attempt := AttemptFrom(d.Headers)

	if err := handler(ctx, d.Body, attempt); err != nil {
		if attempt >= c.maxAttempts {
			logger.Printf("Dropping message after %d attempts: %v", attempt, err)
			_ = d.Ack(false)
			return
		}
		logger.Printf("Handler failed on attempt %d, scheduling retry: %v", attempt, err)
		if pubErr := c.scheduleRetry(ctx, d.Body, attempt+1); pubErr != nil {
			logger.Printf("Failed to schedule retry, requeueing instead: %v", pubErr)
			_ = d.Nack(false, true)
			return
		}
		_ = d.Ack(false)
		return
	}
	_ = d.Ack(false)
}

func (c *Consumer) Close() {
	if c.publisher != nil {
		c.publisher.Close()
	}
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
