// Package queue contains the background consumer that listens to the
// booking queues and appends one line per event to the booking log.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// StartBookingConsumer connects to RabbitMQ at url, declares the booking
// queues (durable), and starts consuming messages from both.  Each message
// is appended to the file at path in a single-line, human-friendly format.
// The function runs a reconnect loop and only returns when ctx is
// cancelled; processing errors are logged and the offending message is
// rejected so the server continues operating.
func StartBookingConsumer(ctx context.Context, url, path string) error {
	log := logrus.WithField("component", "booking-consumer")
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.WithError(err).Warnf("failed to dial broker; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, path, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithError(err).Warn("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, path string, log *logrus.Entry) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.WithError(err).Warn("set QoS failed")
	}

	confirmed, err := subscribe(ch, BookingConfirmedQueue)
	if err != nil {
		return err
	}
	cancelled, err := subscribe(ch, BookingCancelledQueue)
	if err != nil {
		return err
	}

	for {
		var (
			d     amqp.Delivery
			ok    bool
			queue string
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-confirmed:
			queue = BookingConfirmedQueue
		case d, ok = <-cancelled:
			queue = BookingCancelledQueue
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := handleMessage(queue, d.Body, path); err != nil {
			log.WithError(err).WithField("queue", queue).Error("handle message failed")
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
}

func subscribe(ch *amqp.Channel, name string) (<-chan amqp.Delivery, error) {
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("queue declare %s: %w", name, err)
	}
	msgs, err := ch.Consume(name, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("queue consume %s: %w", name, err)
	}
	return msgs, nil
}

func handleMessage(queue string, body []byte, path string) error {
	line, err := formatLine(queue, body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// formatLine renders one booking log line for a message body.
func formatLine(queue string, body []byte) (string, error) {
	switch queue {
	case BookingConfirmedQueue:
		var ev BookingConfirmedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Booking confirmed | booking_id=%d | code=%s | showtime_id=%d | movie_id=%d | cinema_id=%d | when=\"%s %s\" | total=%s | payment=%s | seats=%s\n",
			ev.ConfirmedAt, ev.BookingID, ev.BookingCode, ev.ShowtimeID, ev.MovieID, ev.CinemaID,
			ev.ShowDate, ev.ShowTime, ev.TotalAmount.String(), ev.PaymentMethod, seatList(ev.Seats)), nil

	case BookingCancelledQueue:
		var ev BookingCancelledEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Booking cancelled | booking_id=%d | code=%s | showtime_id=%d | movie=\"%s\" | cinema=\"%s\" | seats=%s\n",
			ev.CancelledAt, ev.BookingID, ev.BookingCode, ev.ShowtimeID, ev.MovieTitle, ev.CinemaName, seatList(ev.Seats)), nil
	}
	return "", fmt.Errorf("unknown queue %q", queue)
}

func seatList(seats []string) string {
	if len(seats) == 0 {
		return "[]"
	}
	return fmt.Sprintf("[%s]", strings.Join(seats, ","))
}
