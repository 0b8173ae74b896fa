package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the customer intends to pay at the counter or online.
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCard    PaymentMethod = "card"
	PaymentBanking PaymentMethod = "banking"
)

// BookingStatus is the lifecycle state of a booking.  The only legal
// transition is confirmed -> cancelled.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// BookingRequest is the POST /bookings/ payload.  Seats keeps the order in
// which the customer picked them.
type BookingRequest struct {
	ShowtimeID    int64           `json:"showtime_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	CustomerEmail string          `json:"customer_email"`
	Seats         []string        `json:"seats"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
}

// Booking is the server-side record created from a BookingRequest.  The
// storefront holds a read-only copy.
//
// Fields:
//  ID          – internal identifier, used in confirmation URLs.
//  BookingCode – short code ("GC1A2B3C4D") the customer uses for lookup.
//  Status      – confirmed or cancelled.
type Booking struct {
	ID          int64         `json:"id"`
	BookingCode string        `json:"booking_code"`
	Status      BookingStatus `json:"status"`
	CreatedAt   *time.Time    `json:"created_at,omitempty"`
	BookingRequest
}

// BookingDetails is the composed payload of GET /bookings/{id}/details.
type BookingDetails struct {
	Booking  Booking     `json:"booking"`
	Movie    MovieRef    `json:"movie"`
	Cinema   CinemaRef   `json:"cinema"`
	Showtime ShowtimeRef `json:"showtime"`
}
