package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iliyamo/cinema-storefront/internal/model"
)

// ShowtimeFilter narrows GET /showtimes/.  Zero fields are omitted.
type ShowtimeFilter struct {
	MovieID  int64
	CinemaID int64
	Date     string // YYYY-MM-DD
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

// ListMovies returns movies, optionally filtered by status.
func (c *Client) ListMovies(ctx context.Context, status model.MovieStatus) ([]model.Movie, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	var out []model.Movie
	if err := c.do(ctx, "ListMovies", http.MethodGet, "/movies/", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMovie fetches one movie.
func (c *Client) GetMovie(ctx context.Context, movieID int64) (*model.Movie, error) {
	var out model.Movie
	if err := c.do(ctx, "GetMovie", http.MethodGet, "/movies/"+id(movieID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCinemas returns cinemas, optionally filtered by province.
func (c *Client) ListCinemas(ctx context.Context, province string) ([]model.Cinema, error) {
	q := url.Values{}
	if province != "" {
		q.Set("province", province)
	}
	var out []model.Cinema
	if err := c.do(ctx, "ListCinemas", http.MethodGet, "/cinemas/", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCinema fetches one cinema.
func (c *Client) GetCinema(ctx context.Context, cinemaID int64) (*model.Cinema, error) {
	var out model.Cinema
	if err := c.do(ctx, "GetCinema", http.MethodGet, "/cinemas/"+id(cinemaID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListScreens returns the screens of a cinema.
func (c *Client) ListScreens(ctx context.Context, cinemaID int64) ([]model.Screen, error) {
	var out []model.Screen
	if err := c.do(ctx, "ListScreens", http.MethodGet, "/cinemas/"+id(cinemaID)+"/screens", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListShowtimes returns showtime summaries matching f.
func (c *Client) ListShowtimes(ctx context.Context, f ShowtimeFilter) ([]model.ShowtimeSummary, error) {
	q := url.Values{}
	if f.MovieID > 0 {
		q.Set("movie_id", id(f.MovieID))
	}
	if f.CinemaID > 0 {
		q.Set("cinema_id", id(f.CinemaID))
	}
	if f.Date != "" {
		q.Set("show_date", f.Date)
	}
	var out []model.ShowtimeSummary
	if err := c.do(ctx, "ListShowtimes", http.MethodGet, "/showtimes/", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetShowtime fetches one showtime including its booked seats.
func (c *Client) GetShowtime(ctx context.Context, showtimeID int64) (*model.Showtime, error) {
	var out model.Showtime
	if err := c.do(ctx, "GetShowtime", http.MethodGet, "/showtimes/"+id(showtimeID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AvailableDates lists dates with screenings.  A zero movieID or cinemaID
// drops that constraint.
func (c *Client) AvailableDates(ctx context.Context, movieID, cinemaID int64) ([]string, error) {
	q := url.Values{}
	if movieID > 0 {
		q.Set("movie_id", id(movieID))
	}
	if cinemaID > 0 {
		q.Set("cinema_id", id(cinemaID))
	}
	var out struct {
		Dates []string `json:"dates"`
	}
	if err := c.do(ctx, "AvailableDates", http.MethodGet, "/showtimes/dates/available", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Dates, nil
}

// AvailableTimes lists the times of a movie at a cinema on date, each with
// its remaining seat count and showtime id.
func (c *Client) AvailableTimes(ctx context.Context, movieID, cinemaID int64, date string) ([]model.TimeSlot, error) {
	q := url.Values{}
	q.Set("movie_id", id(movieID))
	q.Set("cinema_id", id(cinemaID))
	q.Set("show_date", date)
	var out struct {
		Times []model.TimeSlot `json:"times"`
	}
	if err := c.do(ctx, "AvailableTimes", http.MethodGet, "/showtimes/times/available", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Times, nil
}

// CreateBooking submits a booking request.
func (c *Client) CreateBooking(ctx context.Context, req model.BookingRequest) (*model.Booking, error) {
	var out model.Booking
	if err := c.do(ctx, "CreateBooking", http.MethodPost, "/bookings/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBooking fetches a booking by internal id.
func (c *Client) GetBooking(ctx context.Context, bookingID int64) (*model.Booking, error) {
	var out model.Booking
	if err := c.do(ctx, "GetBooking", http.MethodGet, "/bookings/"+id(bookingID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBookingByCode resolves a customer-facing booking code.
func (c *Client) GetBookingByCode(ctx context.Context, code string) (*model.Booking, error) {
	var out model.Booking
	if err := c.do(ctx, "GetBookingByCode", http.MethodGet, "/bookings/code/"+url.PathEscape(code), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBookingDetails fetches the composed booking + movie + cinema +
// showtime payload.
func (c *Client) GetBookingDetails(ctx context.Context, bookingID int64) (*model.BookingDetails, error) {
	var out model.BookingDetails
	if err := c.do(ctx, "GetBookingDetails", http.MethodGet, "/bookings/"+id(bookingID)+"/details", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelBooking asks the backend to cancel a booking.
func (c *Client) CancelBooking(ctx context.Context, bookingID int64) (*model.Booking, error) {
	var out model.Booking
	if err := c.do(ctx, "CancelBooking", http.MethodPatch, "/bookings/"+id(bookingID)+"/cancel", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListNews returns news items, optionally filtered by category.
func (c *Client) ListNews(ctx context.Context, category model.NewsCategory) ([]model.News, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", string(category))
	}
	var out []model.News
	if err := c.do(ctx, "ListNews", http.MethodGet, "/news/", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetNews fetches one news item.
func (c *Client) GetNews(ctx context.Context, newsID int64) (*model.News, error) {
	var out model.News
	if err := c.do(ctx, "GetNews", http.MethodGet, "/news/"+id(newsID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
