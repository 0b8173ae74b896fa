package model

import "github.com/shopspring/decimal"

// Showtime represents a scheduled screening of a movie at a cinema.  It is
// returned by GET /showtimes/{id}.  BookedSeats is the authoritative list of
// seat codes already sold; the storefront only reads it to disable seats
// and re-fetches the showtime instead of patching it locally.
//
// Fields:
//  ShowDate       – YYYY-MM-DD.
//  ShowTime       – HH:MM:SS.
//  Price          – unit price of one seat.
//  AvailableSeats – count of unsold seats reported by the backend.
type Showtime struct {
	ID             int64           `json:"id"`
	MovieID        int64           `json:"movie_id"`
	CinemaID       int64           `json:"cinema_id"`
	ScreenID       int64           `json:"screen_id,omitempty"`
	ShowDate       string          `json:"show_date"`
	ShowTime       string          `json:"show_time"`
	Price          decimal.Decimal `json:"price"`
	AvailableSeats int             `json:"available_seats"`
	BookedSeats    []string        `json:"booked_seats"`
}

// ShowtimeSummary is one element of the GET /showtimes/ listing which the
// backend joins with movie, cinema and screen names.
type ShowtimeSummary struct {
	ID             int64           `json:"id"`
	ShowDate       string          `json:"show_date"`
	ShowTime       string          `json:"show_time"`
	Price          decimal.Decimal `json:"price"`
	AvailableSeats int             `json:"available_seats"`
	MovieTitle     string          `json:"movie_title"`
	CinemaName     string          `json:"cinema_name"`
	ScreenType     string          `json:"screen_type"`
}

// TimeSlot is one entry of GET /showtimes/times/available.  ShowtimeID is
// what the booking widget navigates to once a time has been chosen.
type TimeSlot struct {
	Time           string `json:"time"`
	AvailableSeats int    `json:"available_seats"`
	ShowtimeID     int64  `json:"showtime_id"`
}

// ShowtimeRef is the showtime fragment embedded in booking details.
type ShowtimeRef struct {
	Date  string          `json:"date"`
	Time  string          `json:"time"`
	Price decimal.Decimal `json:"price"`
}

// FormatTime trims a backend time-of-day ("19:15:00") to hours and minutes.
func FormatTime(t string) string {
	if len(t) > 5 {
		return t[:5]
	}
	return t
}
