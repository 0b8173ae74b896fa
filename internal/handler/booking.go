package handler

// booking.go serves the seat selection page, booking submission, the
// confirmation page with cancel, and lookup by booking code.

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/cinema-storefront/internal/booking"
	"github.com/iliyamo/cinema-storefront/internal/logging"
	"github.com/iliyamo/cinema-storefront/internal/middleware"
	"github.com/iliyamo/cinema-storefront/internal/model"
	"github.com/iliyamo/cinema-storefront/internal/seatmap"
	"github.com/iliyamo/cinema-storefront/internal/session"
)

// BookingHandler groups the dependencies of the booking flow.  The seat
// selection is kept per showtime in the visitor session; the showtime is
// re-fetched on every call so booked seats are never stale by more than a
// request.
type BookingHandler struct {
	API     Backend
	Store   session.Store
	Service *booking.Service
}

func NewBookingHandler(api Backend, store session.Store, svc *booking.Service) *BookingHandler {
	if api == nil || store == nil || svc == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{API: api, Store: store, Service: svc}
}

// seatPage is the GET /v1/booking/:showtimeId payload.
type seatPage struct {
	Showtime     *model.Showtime `json:"showtime"`
	Movie        *model.Movie    `json:"movie"`
	Cinema       *model.Cinema   `json:"cinema"`
	Seats        []seatmap.Seat  `json:"seats"`
	Selected     []string        `json:"selected"`
	Total        decimal.Decimal `json:"total"`
	MaxSelection int             `json:"max_selection"`
}

// selection is returned by the seat toggle and clear routes.
type selection struct {
	Selected []string        `json:"selected"`
	Total    decimal.Decimal `json:"total"`
}

// Page handles GET /v1/booking/:showtimeId.  Seats that were booked since
// the visitor picked them are dropped from the stored selection.
func (h *BookingHandler) Page(c echo.Context) error {
	showtimeID, ok := parseID(c, "showtimeId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	ctx := c.Request().Context()
	st, err := h.API.GetShowtime(ctx, showtimeID)
	if err != nil {
		return respondError(c, err)
	}

	var (
		movie  *model.Movie
		cinema *model.Cinema
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		movie, err = h.API.GetMovie(gctx, st.MovieID)
		return err
	})
	g.Go(func() (err error) {
		cinema, err = h.API.GetCinema(gctx, st.CinemaID)
		return err
	})
	if err := g.Wait(); err != nil {
		return respondError(c, err)
	}

	selected, err := h.reconcile(c, st)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, seatPage{
		Showtime:     st,
		Movie:        movie,
		Cinema:       cinema,
		Seats:        seatmap.Grid(st.BookedSeats, selected),
		Selected:     selected,
		Total:        seatmap.Total(st.Price, len(selected)),
		MaxSelection: seatmap.MaxSelection,
	})
}

// reconcile returns the stored selection without seats that are now booked,
// writing the trimmed selection back when anything was dropped.
func (h *BookingHandler) reconcile(c echo.Context, st *model.Showtime) ([]string, error) {
	ctx := c.Request().Context()
	sid := middleware.SessionID(c)
	s, err := h.Store.Get(ctx, sid)
	if err != nil {
		return nil, err
	}
	selected := s.Selected(st.ID)
	if len(seatmap.Conflicts(selected, st.BookedSeats)) == 0 {
		return selected, nil
	}

	err = h.Store.Update(ctx, sid, func(s *session.Session) error {
		kept := make([]string, 0, len(selected))
		taken := seatmap.Conflicts(s.Selected(st.ID), st.BookedSeats)
		for _, id := range s.Selected(st.ID) {
			if !contains(taken, id) {
				kept = append(kept, id)
			}
		}
		s.SetSelected(st.ID, kept)
		selected = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).WithField("showtime_id", st.ID).Info("dropped seats booked by someone else")
	return selected, nil
}

// ToggleSeat handles POST /v1/booking/:showtimeId/seats/:seat.  A selected
// seat is removed; a free seat is added unless eight are already chosen.
func (h *BookingHandler) ToggleSeat(c echo.Context) error {
	showtimeID, ok := parseID(c, "showtimeId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	seat := c.Param("seat")
	if !seatmap.Valid(seat) {
		return respondError(c, booking.ErrInvalidSeat)
	}
	ctx := c.Request().Context()
	st, err := h.API.GetShowtime(ctx, showtimeID)
	if err != nil {
		return respondError(c, err)
	}

	// Clicks on booked seats and clicks past the cap leave the selection as is.
	selected := []string{}
	err = h.Store.Update(ctx, middleware.SessionID(c), func(s *session.Session) error {
		next, changed := seatmap.Toggle(s.Selected(showtimeID), st.BookedSeats, seat)
		if changed {
			s.SetSelected(showtimeID, next)
		}
		selected = append(selected[:0], next...)
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, selection{Selected: selected, Total: seatmap.Total(st.Price, len(selected))})
}

// ClearSeats handles DELETE /v1/booking/:showtimeId/seats.
func (h *BookingHandler) ClearSeats(c echo.Context) error {
	showtimeID, ok := parseID(c, "showtimeId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	err := h.Store.Update(c.Request().Context(), middleware.SessionID(c), func(s *session.Session) error {
		s.SetSelected(showtimeID, nil)
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, selection{Selected: []string{}, Total: decimal.Zero})
}

// Submit handles POST /v1/booking/:showtimeId/submit with the customer
// details.  On success the showtime's selection is cleared and 201 is
// returned with the confirmation and where to go next.
func (h *BookingHandler) Submit(c echo.Context) error {
	showtimeID, ok := parseID(c, "showtimeId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	var customer booking.Customer
	if err := c.Bind(&customer); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	sid := middleware.SessionID(c)
	s, err := h.Store.Get(ctx, sid)
	if err != nil {
		return respondError(c, err)
	}
	seats := s.Selected(showtimeID)
	if len(seats) == 0 {
		return respondError(c, booking.ErrNoSeats)
	}
	if err := customer.Normalize().Validate(); err != nil {
		return respondError(c, err)
	}
	st, err := h.API.GetShowtime(ctx, showtimeID)
	if err != nil {
		return respondError(c, err)
	}

	conf, err := h.Service.Submit(ctx, st, seats, customer)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.Store.Update(ctx, sid, func(s *session.Session) error {
		s.SetSelected(showtimeID, nil)
		return nil
	}); err != nil {
		// the booking exists; a leftover selection is harmless
		logging.FromContext(ctx).WithError(err).Warn("clear selection after booking")
	}
	return c.JSON(http.StatusCreated, conf)
}

// Confirmation handles GET /v1/booking-confirmation/:bookingId.
func (h *BookingHandler) Confirmation(c echo.Context) error {
	id, ok := parseID(c, "bookingId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	view, err := h.Service.Details(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// Cancel handles POST /v1/booking-confirmation/:bookingId/cancel and
// returns the details as re-read from the backend.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, ok := parseID(c, "bookingId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	view, err := h.Service.Cancel(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// Lookup handles GET /v1/lookup?code=.
func (h *BookingHandler) Lookup(c echo.Context) error {
	view, err := h.Service.Lookup(c.Request().Context(), c.QueryParam("code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
