// Package service publishes storefront domain events to RabbitMQ.  Errors are
// logged and returned so callers can ignore failures without interrupting
// the main request flow.
package service

import (
	"context"
	"encoding/json"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	q "github.com/iliyamo/cinema-storefront/internal/queue"
)

// defaultDialTimeout bounds the connect and AMQP handshake of one publish.
const defaultDialTimeout = 3 * time.Second

// AMQPPublisher dials the broker for every publish.  Booking traffic is low
// enough that a long-lived channel is not needed.
type AMQPPublisher struct {
	url         string
	dialTimeout time.Duration
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url, dialTimeout: defaultDialTimeout}
}

// dial connects within dialTimeout and gives up early when ctx ends.  The
// deadline also covers the handshake; amqp091 clears it once the
// connection is open.
func (p *AMQPPublisher) dial(ctx context.Context) (*amqp.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, p.dialTimeout)
	defer cancel()
	deadline, _ := ctx.Deadline()

	return amqp.DialConfig(p.url, amqp.Config{
		Dial: func(network, addr string) (net.Conn, error) {
			var d net.Dialer
			conn, err := d.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			if err := conn.SetDeadline(deadline); err != nil {
				_ = conn.Close()
				return nil, err
			}
			return conn, nil
		},
	})
}

// BookingConfirmed publishes ev to the booking.confirmed queue.
func (p *AMQPPublisher) BookingConfirmed(ctx context.Context, ev q.BookingConfirmedEvent) error {
	return p.publish(ctx, q.BookingConfirmedQueue, ev)
}

// BookingCancelled publishes ev to the booking.cancelled queue.
func (p *AMQPPublisher) BookingCancelled(ctx context.Context, ev q.BookingCancelledEvent) error {
	return p.publish(ctx, q.BookingCancelledQueue, ev)
}

// publish never panics; messages are marked as persistent.
func (p *AMQPPublisher) publish(ctx context.Context, queue string, event any) error {
	log := logrus.WithField("queue", queue)

	conn, err := p.dial(ctx)
	if err != nil {
		log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Warn("rabbitmq: marshal event failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue name
		false, // mandatory
		false, // immediate
		pub,
	); err != nil {
		log.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}

// NopPublisher drops every event.  It is wired when EVENTS_ENABLED is off.
type NopPublisher struct{}

func (NopPublisher) BookingConfirmed(context.Context, q.BookingConfirmedEvent) error { return nil }
func (NopPublisher) BookingCancelled(context.Context, q.BookingCancelledEvent) error { return nil }
