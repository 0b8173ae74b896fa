// Package seatmap derives the seat grid of a showtime and applies the
// seat-click rules.  Nothing here is persisted: the grid is regenerated from
// the showtime's booked seats and the visitor's current selection.
package seatmap

import (
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	// Cols is the number of seats per row.
	Cols = 12
	// MaxSelection caps how many seats one booking attempt may hold.
	MaxSelection = 8
)

// Rows are the row letters from the screen backwards.
var Rows = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

// Seat is one cell of the rendered grid.  Booked and Selected are never
// both true.  Aisle marks a walkway to the right of the seat.
type Seat struct {
	ID       string `json:"id"`
	Row      string `json:"row"`
	Number   int    `json:"number"`
	Booked   bool   `json:"booked"`
	Selected bool   `json:"selected"`
	Aisle    bool   `json:"aisle"`
}

// SeatID composes a seat code such as "C7".
func SeatID(row string, number int) string {
	return row + strconv.Itoa(number)
}

// Valid reports whether id names a seat on the grid (A1 through H12).
func Valid(id string) bool {
	if len(id) < 2 || len(id) > 3 {
		return false
	}
	row := id[:1]
	found := false
	for _, r := range Rows {
		if r == row {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	n, err := strconv.Atoi(id[1:])
	if err != nil || id[1] == '0' {
		return false
	}
	return n >= 1 && n <= Cols
}

// Grid lays out all 96 seats row by row.
func Grid(booked, selected []string) []Seat {
	b := toSet(booked)
	s := toSet(selected)
	out := make([]Seat, 0, len(Rows)*Cols)
	for _, row := range Rows {
		for n := 1; n <= Cols; n++ {
			id := SeatID(row, n)
			_, isBooked := b[id]
			_, isSelected := s[id]
			out = append(out, Seat{
				ID:       id,
				Row:      row,
				Number:   n,
				Booked:   isBooked,
				Selected: isSelected && !isBooked,
				Aisle:    n == 3 || n == 9,
			})
		}
	}
	return out
}

// Toggle applies a click on seatID to the current selection and reports
// whether the selection changed.
//   - unknown seat: no-op
//   - already selected: removed, regardless of the cap or a later booking
//   - booked seat: no-op
//   - otherwise: appended when fewer than MaxSelection seats are selected
//
// The input slice is never modified; insertion order is preserved.
func Toggle(selected, booked []string, seatID string) ([]string, bool) {
	if !Valid(seatID) {
		return selected, false
	}
	for i, id := range selected {
		if id == seatID {
			out := make([]string, 0, len(selected)-1)
			out = append(out, selected[:i]...)
			out = append(out, selected[i+1:]...)
			return out, true
		}
	}
	if _, ok := toSet(booked)[seatID]; ok {
		return selected, false
	}
	if len(selected) >= MaxSelection {
		return selected, false
	}
	out := make([]string, 0, len(selected)+1)
	out = append(out, selected...)
	out = append(out, seatID)
	return out, true
}

// Conflicts returns the seats of selected that are also booked, in
// selection order.
func Conflicts(selected, booked []string) []string {
	b := toSet(booked)
	var out []string
	for _, id := range selected {
		if _, ok := b[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Total is the amount due for count seats at unitPrice.
func Total(unitPrice decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(count)))
}

func toSet(ids []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}
