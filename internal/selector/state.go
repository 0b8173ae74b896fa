// Package selector implements the booking widget's cascading selector:
// Movie -> Cinema -> Date -> Time.  Choosing a slot clears every slot after
// it along with the option lists derived from it.
package selector

import (
	"errors"
	"strings"

	"github.com/iliyamo/cinema-storefront/internal/model"
)

// Slot names one of the four ordered picks.
type Slot int

const (
	SlotMovie Slot = iota + 1
	SlotCinema
	SlotDate
	SlotTime
)

func (s Slot) String() string {
	switch s {
	case SlotMovie:
		return "movie"
	case SlotCinema:
		return "cinema"
	case SlotDate:
		return "date"
	case SlotTime:
		return "time"
	}
	return "unknown"
}

// ParseSlot maps a route segment to a Slot.
func ParseSlot(s string) (Slot, bool) {
	switch strings.ToLower(s) {
	case "movie":
		return SlotMovie, true
	case "cinema":
		return SlotCinema, true
	case "date":
		return SlotDate, true
	case "time":
		return SlotTime, true
	}
	return 0, false
}

var (
	ErrEmptyValue      = errors.New("please choose a value")
	ErrUnknownSlot     = errors.New("unknown selection")
	ErrSlotOrder       = errors.New("please choose the previous options first")
	ErrUnknownOption   = errors.New("the chosen option is not available")
	ErrIncomplete      = errors.New("please choose a movie, cinema, date and time")
	ErrMissingShowtime = errors.New("the chosen showtime could not be found, please pick another time")
)

// State is the widget's selection.  Dates and Times are the option lists for
// the Date and Time slots.  Generation increases on every change that
// invalidates an option list; a fetch started at generation g may only
// commit its result while the state is still at g.
type State struct {
	MovieID    int64            `json:"movie_id,omitempty"`
	CinemaID   int64            `json:"cinema_id,omitempty"`
	Date       string           `json:"date,omitempty"`
	Time       string           `json:"time,omitempty"`
	Dates      []string         `json:"dates"`
	Times      []model.TimeSlot `json:"times"`
	Generation uint64           `json:"generation"`
}

// Action selects Value (dates and times) or ID (movies and cinemas) for Slot.
type Action struct {
	Slot  Slot
	ID    int64
	Value string
}

// Reduce applies a to s and returns the new state.  s is not modified.
func Reduce(s State, a Action) (State, error) {
	switch a.Slot {
	case SlotMovie, SlotCinema:
		if a.ID <= 0 {
			return s, ErrEmptyValue
		}
		if a.Slot == SlotMovie {
			s.MovieID = a.ID
		} else {
			s.CinemaID = a.ID
		}
		s.Date, s.Time = "", ""
		s.Dates, s.Times = nil, nil
		s.Generation++
		return s, nil

	case SlotDate:
		v := strings.TrimSpace(a.Value)
		if v == "" {
			return s, ErrEmptyValue
		}
		if s.MovieID == 0 || s.CinemaID == 0 {
			return s, ErrSlotOrder
		}
		if !contains(s.Dates, v) {
			return s, ErrUnknownOption
		}
		s.Date = v
		s.Time = ""
		s.Times = nil
		s.Generation++
		return s, nil

	case SlotTime:
		v := strings.TrimSpace(a.Value)
		if v == "" {
			return s, ErrEmptyValue
		}
		if s.MovieID == 0 || s.CinemaID == 0 || s.Date == "" {
			return s, ErrSlotOrder
		}
		if _, ok := findTime(s.Times, v); !ok {
			return s, ErrUnknownOption
		}
		s.Time = v
		return s, nil
	}
	return s, ErrUnknownSlot
}

// Complete reports whether all four slots are filled.
func (s State) Complete() bool {
	return s.MovieID > 0 && s.CinemaID > 0 && s.Date != "" && s.Time != ""
}

// Confirm returns the showtime the filled selection points at.
func Confirm(s State) (int64, error) {
	if !s.Complete() {
		return 0, ErrIncomplete
	}
	slot, ok := findTime(s.Times, s.Time)
	if !ok || slot.ShowtimeID <= 0 {
		return 0, ErrMissingShowtime
	}
	return slot.ShowtimeID, nil
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// findTime matches either the backend form ("19:15:00") or the displayed
// form ("19:15").
func findTime(slots []model.TimeSlot, v string) (model.TimeSlot, bool) {
	for _, ts := range slots {
		if ts.Time == v || model.FormatTime(ts.Time) == v {
			return ts, true
		}
	}
	return model.TimeSlot{}, false
}
