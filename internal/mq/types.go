package mq

import (
	"context"
	"log"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var logger = log.New(os.Stdout, "[Message Queue]: ", log.Lshortfile|log.LstdFlags)

var RoutingKeyJobs string = "route-jobs"
var RoutingKeyRetry string = "route-jobs-retry"

var QueueNameJobs string = "smolpaws-jobs"
var QueueNameRetry string = "smolpaws-jobs-retry"

var ExchangeName string = "x-smolpaws"

// RetryDelay is the fixed redelivery delay. A failed message sits in the
// retry queue for this long before being dead-lettered back onto the jobs
// queue. There is no backoff beyond this.
const RetryDelay = 30 * time.Second

// DefaultMaxAttempts bounds total deliveries of one message. Past it the
// message is dropped and acknowledged.
const DefaultMaxAttempts = 5

// attemptsHeader carries the delivery attempt count across redeliveries.
const attemptsHeader = "x-smolpaws-attempts"

type Publisher struct {
	conn    *amqp.Connection // Connection to RabbitMQ server
	channel *amqp.Channel    // Channel for publishing messages

	exchangeName string
}

type Consumer struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	publisher *Publisher

	// scheduleRetry parks a failed message for redelivery. Points at the
	// publisher's ScheduleRetry; a seam for tests.
	scheduleRetry func(ctx context.Context, body []byte, attempt int) error

	exchangeName string
	tag          string // Consumer tag for message acknowledgment
	maxAttempts  int
}

// AttemptFrom reads the delivery attempt count from message headers. A
// message published at ingress carries no header and counts as attempt 1.
func AttemptFrom(headers amqp.Table) int {
	if headers == nil {
		return 1
	}
	switch v := headers[attemptsHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 1
}
