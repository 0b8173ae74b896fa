// Package booking turns a seat selection and customer details into a
// backend booking, and serves the confirmation, lookup and cancel flows.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/cinema-storefront/internal/logging"
	"github.com/iliyamo/cinema-storefront/internal/model"
	"github.com/iliyamo/cinema-storefront/internal/queue"
	"github.com/iliyamo/cinema-storefront/internal/seatmap"
)

// Gateway is the slice of the backend API the booking flows use.
type Gateway interface {
	CreateBooking(ctx context.Context, req model.BookingRequest) (*model.Booking, error)
	GetBookingByCode(ctx context.Context, code string) (*model.Booking, error)
	GetBookingDetails(ctx context.Context, bookingID int64) (*model.BookingDetails, error)
	CancelBooking(ctx context.Context, bookingID int64) (*model.Booking, error)
}

// Publisher receives booking events.  Failures never fail the request.
type Publisher interface {
	BookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
	BookingCancelled(ctx context.Context, ev queue.BookingCancelledEvent) error
}

// Confirmation is returned by a successful Submit.
type Confirmation struct {
	Booking  model.Booking `json:"booking"`
	Message  string        `json:"message"`
	Redirect string        `json:"redirect"`
}

// View is a booking's details plus whether it may still be cancelled.
type View struct {
	model.BookingDetails
	CanCancel bool `json:"can_cancel"`
}

type Service struct {
	gw  Gateway
	pub Publisher
	now func() time.Time
}

func NewService(gw Gateway, pub Publisher) *Service {
	return &Service{gw: gw, pub: pub, now: time.Now}
}

// Submit validates the selection and customer locally, then creates the
// booking.  Nothing is sent to the backend when a local check fails.
func (s *Service) Submit(ctx context.Context, st *model.Showtime, seats []string, c Customer) (*Confirmation, error) {
	if len(seats) == 0 {
		return nil, ErrNoSeats
	}
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if len(seats) > seatmap.MaxSelection {
		return nil, ErrTooManySeats
	}
	for _, id := range seats {
		if !seatmap.Valid(id) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSeat, id)
		}
	}
	if taken := seatmap.Conflicts(seats, st.BookedSeats); len(taken) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrSeatUnavailable, strings.Join(taken, ", "))
	}

	req := model.BookingRequest{
		ShowtimeID:    st.ID,
		CustomerName:  c.Name,
		CustomerPhone: c.Phone,
		CustomerEmail: c.Email,
		Seats:         append([]string(nil), seats...),
		TotalAmount:   seatmap.Total(st.Price, len(seats)),
		PaymentMethod: c.PaymentMethod,
	}
	b, err := s.gw.CreateBooking(ctx, req)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).
		WithField("booking_id", b.ID).
		WithField("booking_code", b.BookingCode).
		Info("booking created")

	s.publishConfirmed(ctx, st, b, req)

	return &Confirmation{
		Booking:  *b,
		Message:  "Booking confirmed! Code: " + b.BookingCode,
		Redirect: fmt.Sprintf("/booking-confirmation/%d", b.ID),
	}, nil
}

// Details loads the confirmation view of a booking.
func (s *Service) Details(ctx context.Context, bookingID int64) (*View, error) {
	d, err := s.gw.GetBookingDetails(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &View{
		BookingDetails: *d,
		CanCancel:      d.Booking.Status == model.BookingConfirmed,
	}, nil
}

// NormalizeCode trims and upper-cases a booking code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Lookup resolves a booking code and returns its details.
func (s *Service) Lookup(ctx context.Context, code string) (*View, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrEmptyCode
	}
	b, err := s.gw.GetBookingByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.Details(ctx, b.ID)
}

// Cancel cancels a confirmed booking and returns the details as the backend
// reports them afterwards.
func (s *Service) Cancel(ctx context.Context, bookingID int64) (*View, error) {
	before, err := s.Details(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if before.Booking.Status == model.BookingCancelled {
		return nil, ErrAlreadyCancelled
	}
	if _, err := s.gw.CancelBooking(ctx, bookingID); err != nil {
		return nil, err
	}
	after, err := s.Details(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).WithField("booking_id", bookingID).Info("booking cancelled")
	s.publishCancelled(ctx, after)
	return after, nil
}

func (s *Service) publishConfirmed(ctx context.Context, st *model.Showtime, b *model.Booking, req model.BookingRequest) {
	ev := queue.BookingConfirmedEvent{
		BookingID:     b.ID,
		BookingCode:   b.BookingCode,
		ShowtimeID:    st.ID,
		MovieID:       st.MovieID,
		CinemaID:      st.CinemaID,
		ShowDate:      st.ShowDate,
		ShowTime:      st.ShowTime,
		Seats:         req.Seats,
		TotalAmount:   req.TotalAmount,
		PaymentMethod: string(req.PaymentMethod),
		ConfirmedAt:   s.now().UTC().Format(time.RFC3339),
	}
	if err := s.pub.BookingConfirmed(ctx, ev); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("publish booking.confirmed failed")
	}
}

func (s *Service) publishCancelled(ctx context.Context, v *View) {
	ev := queue.BookingCancelledEvent{
		BookingID:   v.Booking.ID,
		BookingCode: v.Booking.BookingCode,
		ShowtimeID:  v.Booking.ShowtimeID,
		MovieTitle:  v.Movie.Title,
		CinemaName:  v.Cinema.Name,
		Seats:       v.Booking.Seats,
		CancelledAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.pub.BookingCancelled(ctx, ev); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("publish booking.cancelled failed")
	}
}
