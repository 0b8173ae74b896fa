// Package handler exposes the storefront's HTTP handlers.  Handlers never
// talk to a database: every read and write goes through the cinema backend
// API, and per-visitor state lives in the session store.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-storefront/internal/apiclient"
	"github.com/iliyamo/cinema-storefront/internal/booking"
	"github.com/iliyamo/cinema-storefront/internal/logging"
	"github.com/iliyamo/cinema-storefront/internal/model"
	"github.com/iliyamo/cinema-storefront/internal/selector"
	"github.com/iliyamo/cinema-storefront/internal/session"
)

// Backend is the cinema API as seen by the handlers.  *apiclient.Client
// implements it.
type Backend interface {
	selector.Options
	booking.Gateway

	ListMovies(ctx context.Context, status model.MovieStatus) ([]model.Movie, error)
	GetMovie(ctx context.Context, movieID int64) (*model.Movie, error)
	ListCinemas(ctx context.Context, province string) ([]model.Cinema, error)
	GetCinema(ctx context.Context, cinemaID int64) (*model.Cinema, error)
	ListScreens(ctx context.Context, cinemaID int64) ([]model.Screen, error)
	ListShowtimes(ctx context.Context, f apiclient.ShowtimeFilter) ([]model.ShowtimeSummary, error)
	GetShowtime(ctx context.Context, showtimeID int64) (*model.Showtime, error)
	ListNews(ctx context.Context, category model.NewsCategory) ([]model.News, error)
	GetNews(ctx context.Context, newsID int64) (*model.News, error)
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// respondError writes err as {"error": msg} with the status errorStatus
// picks for it.
func respondError(c echo.Context, err error) error {
	status := errorStatus(err)
	log := logging.FromContext(c.Request().Context()).WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Debug("request rejected")
	}

	var ve *booking.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(status, echo.Map{
			"error":  "please fill in all required information",
			"fields": ve.Fields,
		})
	}
	return c.JSON(status, echo.Map{"error": errorMessage(err, status)})
}

func errorStatus(err error) int {
	switch {
	case booking.IsValidation(err),
		errors.Is(err, booking.ErrTooManySeats),
		errors.Is(err, selector.ErrSlotOrder),
		errors.Is(err, selector.ErrUnknownOption),
		errors.Is(err, selector.ErrIncomplete),
		errors.Is(err, selector.ErrMissingShowtime):
		return http.StatusUnprocessableEntity
	case errors.Is(err, booking.ErrNoSeats),
		errors.Is(err, booking.ErrInvalidSeat),
		errors.Is(err, booking.ErrEmptyCode),
		errors.Is(err, selector.ErrEmptyValue),
		errors.Is(err, selector.ErrUnknownSlot):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrSeatUnavailable),
		errors.Is(err, booking.ErrAlreadyCancelled),
		errors.Is(err, session.ErrConflict):
		return http.StatusConflict
	}

	var re *apiclient.RequestError
	if errors.As(err, &re) {
		// transport failures, undecodable bodies and backend outages are a
		// bad gateway for us
		if re.Status < http.StatusBadRequest || re.Status >= http.StatusInternalServerError {
			return http.StatusBadGateway
		}
		return re.Status
	}
	return http.StatusInternalServerError
}

func errorMessage(err error, status int) string {
	var re *apiclient.RequestError
	if errors.As(err, &re) {
		return apiclient.Message(err, http.StatusText(status))
	}
	if status == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
