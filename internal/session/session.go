// Package session keeps per-visitor storefront state: the booking widget's
// cascading selection and the seats picked for each showtime.
package session

import (
	"context"
	"errors"

	"github.com/iliyamo/cinema-storefront/internal/selector"
)

// ErrConflict is returned when an update kept racing with other writers.
var ErrConflict = errors.New("session: too many concurrent updates")

// Session is the state stored under one visitor id.
type Session struct {
	ID         string             `json:"id"`
	Widget     selector.State     `json:"widget"`
	Selections map[int64][]string `json:"selections,omitempty"`
}

// Store loads and atomically modifies sessions.  Get returns an empty
// session for ids it has never seen.
type Store interface {
	Get(ctx context.Context, id string) (Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) error
}

// Selected returns the seats currently picked for a showtime.
func (s Session) Selected(showtimeID int64) []string {
	seats := s.Selections[showtimeID]
	if seats == nil {
		return []string{}
	}
	return append([]string(nil), seats...)
}

// SetSelected replaces the pick for a showtime; an empty pick removes it.
func (s *Session) SetSelected(showtimeID int64, seats []string) {
	if len(seats) == 0 {
		delete(s.Selections, showtimeID)
		return
	}
	if s.Selections == nil {
		s.Selections = map[int64][]string{}
	}
	s.Selections[showtimeID] = append([]string(nil), seats...)
}

func (s Session) clone() Session {
	out := s
	out.Widget.Dates = append([]string(nil), s.Widget.Dates...)
	out.Widget.Times = append(out.Widget.Times[:0:0], s.Widget.Times...)
	if s.Selections != nil {
		out.Selections = make(map[int64][]string, len(s.Selections))
		for k, v := range s.Selections {
			out.Selections[k] = append([]string(nil), v...)
		}
	}
	return out
}

// WidgetUpdater binds the widget state of session id to a selector.Updater.
func WidgetUpdater(store Store, id string) selector.Updater {
	return func(ctx context.Context, fn func(*selector.State) error) error {
		return store.Update(ctx, id, func(s *Session) error {
			return fn(&s.Widget)
		})
	}
}
