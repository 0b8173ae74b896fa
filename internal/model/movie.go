package model

// MovieStatus is the lifecycle bucket a movie is listed under.
type MovieStatus string

const (
	MovieShowing MovieStatus = "showing"
	MovieComing  MovieStatus = "coming"
	MovieStopped MovieStatus = "stopped" // backend-only; never requested by the storefront
)

// Valid reports whether s is a status the storefront may filter on.  The
// empty status means "no filter" and is also accepted.
func (s MovieStatus) Valid() bool {
	switch s {
	case "", MovieShowing, MovieComing:
		return true
	}
	return false
}

// Movie mirrors the backend movie resource.  Duration is in minutes and
// Rating is the local age classification code (T13, T16, T18, K).
type Movie struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Poster      string      `json:"poster,omitempty"`
	Rating      string      `json:"rating,omitempty"`
	Genre       string      `json:"genre,omitempty"`
	Duration    int         `json:"duration,omitempty"`
	Status      MovieStatus `json:"status"`
	Trailer     string      `json:"trailer,omitempty"`
	Description string      `json:"description,omitempty"`
	Director    string      `json:"director,omitempty"`
	Cast        []string    `json:"cast,omitempty"`
	ReleaseDate string      `json:"release_date,omitempty"` // YYYY-MM-DD
}

// MovieRef is the movie fragment embedded in booking details.
type MovieRef struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Poster string `json:"poster,omitempty"`
}
