package selector

import (
	"context"
	"fmt"

	"github.com/iliyamo/cinema-storefront/internal/logging"
	"github.com/iliyamo/cinema-storefront/internal/model"
)

// Options fetches the narrowed option lists from the backend.
type Options interface {
	AvailableDates(ctx context.Context, movieID, cinemaID int64) ([]string, error)
	AvailableTimes(ctx context.Context, movieID, cinemaID int64, date string) ([]model.TimeSlot, error)
}

// Updater performs an atomic read-modify-write of the stored State.  If fn
// returns an error nothing is written and the error is returned.
type Updater func(ctx context.Context, fn func(*State) error) error

// Selector drives State transitions that need a backend round trip.
type Selector struct {
	options Options
}

// New returns a Selector backed by opts.
func New(opts Options) *Selector {
	return &Selector{options: opts}
}

// Apply reduces a into the stored state, fetches the option list the new
// state needs, and commits it unless another change happened meanwhile.
// The returned state is the stored state after the call.  When the fetch
// fails the slot change stays in place with an empty option list and the
// fetch error is returned.
func (s *Selector) Apply(ctx context.Context, update Updater, a Action) (State, error) {
	var next State
	err := update(ctx, func(st *State) error {
		n, err := Reduce(*st, a)
		if err != nil {
			return err
		}
		*st = n
		next = n
		return nil
	})
	if err != nil {
		return next, err
	}

	switch a.Slot {
	case SlotMovie, SlotCinema:
		dates, err := s.options.AvailableDates(ctx, next.MovieID, next.CinemaID)
		if err != nil {
			return next, fmt.Errorf("load dates: %w", err)
		}
		return s.commit(ctx, update, next.Generation, func(st *State) {
			st.Dates = nonNil(dates)
		})

	case SlotDate:
		times, err := s.options.AvailableTimes(ctx, next.MovieID, next.CinemaID, next.Date)
		if err != nil {
			return next, fmt.Errorf("load times: %w", err)
		}
		if times == nil {
			times = []model.TimeSlot{}
		}
		return s.commit(ctx, update, next.Generation, func(st *State) {
			st.Times = times
		})
	}
	return next, nil
}

// commit applies set only while the stored generation still equals gen.
func (s *Selector) commit(ctx context.Context, update Updater, gen uint64, set func(*State)) (State, error) {
	var out State
	err := update(ctx, func(st *State) error {
		if st.Generation != gen {
			logging.FromContext(ctx).
				WithField("fetched_generation", gen).
				WithField("current_generation", st.Generation).
				Debug("selector: discarding stale options")
		} else {
			set(st)
		}
		out = *st
		return nil
	})
	return out, err
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
