// Package queue defines message payloads exchanged over the message broker.
package queue

import "github.com/shopspring/decimal"

// Queue names.  Both queues are durable.
const (
	BookingConfirmedQueue = "booking.confirmed"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingConfirmedEvent is published after the backend accepted a booking
// submitted through the storefront.  It carries enough information for
// downstream consumers to log, notify, or trigger analytics without calling
// the cinema backend again.
type BookingConfirmedEvent struct {
	BookingID     int64           `json:"booking_id"`
	BookingCode   string          `json:"booking_code"`
	ShowtimeID    int64           `json:"showtime_id"`
	MovieID       int64           `json:"movie_id"`
	CinemaID      int64           `json:"cinema_id"`
	ShowDate      string          `json:"show_date"`
	ShowTime      string          `json:"show_time"`
	Seats         []string        `json:"seats"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	ConfirmedAt   string          `json:"confirmed_at"`
}

// BookingCancelledEvent is published after a booking was cancelled from its
// confirmation page.
type BookingCancelledEvent struct {
	BookingID   int64    `json:"booking_id"`
	BookingCode string   `json:"booking_code"`
	ShowtimeID  int64    `json:"showtime_id"`
	MovieTitle  string   `json:"movie_title"`
	CinemaName  string   `json:"cinema_name"`
	Seats       []string `json:"seats"`
	CancelledAt string   `json:"cancelled_at"`
}
