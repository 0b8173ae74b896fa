package model

// Screen describes an auditorium inside a cinema as returned by
// GET /cinemas/{id}/screens.  ScreenType is free text on the backend
// (2D, 3D, IMAX) and TotalSeats is informational only: the seat map the
// storefront renders is always the fixed 8x12 grid.
type Screen struct {
	ID           int64  `json:"id"`            // screens.id
	CinemaID     int64  `json:"cinema_id"`     // screens.cinema_id
	ScreenNumber int    `json:"screen_number"` // screens.screen_number
	ScreenType   string `json:"screen_type"`   // screens.screen_type
	TotalSeats   int    `json:"total_seats"`   // screens.total_seats
}
