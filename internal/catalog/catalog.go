// Package catalog holds the read-side shaping of backend listings: movie
// search filtering and the date/cinema grouping of a movie's showtimes.
package catalog

import (
	"sort"
	"strings"

	"github.com/iliyamo/cinema-storefront/internal/model"
)

// FilterMovies keeps movies whose title, genre or director contains query,
// and whose genre contains genre.  Matching is case-insensitive and blank
// arguments match everything.
func FilterMovies(movies []model.Movie, query, genre string) []model.Movie {
	q := strings.ToLower(strings.TrimSpace(query))
	g := strings.ToLower(strings.TrimSpace(genre))
	out := make([]model.Movie, 0, len(movies))
	for _, m := range movies {
		if q != "" &&
			!strings.Contains(strings.ToLower(m.Title), q) &&
			!strings.Contains(strings.ToLower(m.Genre), q) &&
			!strings.Contains(strings.ToLower(m.Director), q) {
			continue
		}
		if g != "" && !strings.Contains(strings.ToLower(m.Genre), g) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// CinemaShowtimes is every showtime of one cinema on one date.
type CinemaShowtimes struct {
	CinemaName string                  `json:"cinema_name"`
	Showtimes  []model.ShowtimeSummary `json:"showtimes"`
}

// DateShowtimes groups a date's showtimes by cinema.
type DateShowtimes struct {
	Date    string            `json:"date"`
	Cinemas []CinemaShowtimes `json:"cinemas"`
}

// GroupShowtimes groups showtimes by date and then by cinema name.  Dates
// are ascending, cinemas keep the order in which they first appear and
// showtimes within a cinema are ordered by time.
func GroupShowtimes(showtimes []model.ShowtimeSummary) []DateShowtimes {
	byDate := map[string]int{}
	var out []DateShowtimes
	for _, st := range showtimes {
		di, ok := byDate[st.ShowDate]
		if !ok {
			di = len(out)
			byDate[st.ShowDate] = di
			out = append(out, DateShowtimes{Date: st.ShowDate})
		}
		d := &out[di]
		ci := -1
		for i := range d.Cinemas {
			if d.Cinemas[i].CinemaName == st.CinemaName {
				ci = i
				break
			}
		}
		if ci < 0 {
			d.Cinemas = append(d.Cinemas, CinemaShowtimes{CinemaName: st.CinemaName})
			ci = len(d.Cinemas) - 1
		}
		d.Cinemas[ci].Showtimes = append(d.Cinemas[ci].Showtimes, st)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	for i := range out {
		for j := range out[i].Cinemas {
			sts := out[i].Cinemas[j].Showtimes
			sort.SliceStable(sts, func(a, b int) bool { return sts[a].ShowTime < sts[b].ShowTime })
		}
	}
	if out == nil {
		out = []DateShowtimes{}
	}
	return out
}
