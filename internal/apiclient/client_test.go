package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-storefront/internal/model"
)

func TestAvailableDatesOmitsMissingConstraint(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/showtimes/dates/available", r.URL.Path)
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"dates":["2025-01-26","2025-01-27"]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	dates, err := c.AvailableDates(context.Background(), 0, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-26", "2025-01-27"}, dates)
	assert.Equal(t, "cinema_id=7", gotQuery)
}

func TestAvailableTimesDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("movie_id"))
		assert.Equal(t, "2", r.URL.Query().Get("cinema_id"))
		assert.Equal(t, "2025-01-26", r.URL.Query().Get("show_date"))
		_, _ = io.WriteString(w, `{"times":[{"time":"19:15:00","showtime_id":5,"available_seats":90}]}`)
	}))
	defer srv.Close()

	times, err := New(srv.URL, 0).AvailableTimes(context.Background(), 1, 2, "2025-01-26")
	require.NoError(t, err)
	require.Len(t, times, 1)
	assert.Equal(t, model.TimeSlot{Time: "19:15:00", ShowtimeID: 5, AvailableSeats: 90}, times[0])
}

func TestGetShowtimeDecodesStringPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":1,"movie_id":1,"cinema_id":1,"show_date":"2025-01-26","show_time":"19:15:00","price":"80000.00","available_seats":94,"booked_seats":["C4","C5"]}`)
	}))
	defer srv.Close()

	st, err := New(srv.URL, 0).GetShowtime(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, st.Price.Equal(decimal.NewFromInt(80000)))
	assert.Equal(t, []string{"C4", "C5"}, st.BookedSeats)
}

func TestCreateBookingSendsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/bookings/", r.URL.Path)
		var req model.BookingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"A1", "A2"}, req.Seats)
		assert.True(t, req.TotalAmount.Equal(decimal.NewFromInt(160000)))
		_ = json.NewEncoder(w).Encode(model.Booking{ID: 9, BookingCode: "GCABCDEF12", Status: model.BookingConfirmed, BookingRequest: req})
	}))
	defer srv.Close()

	b, err := New(srv.URL, 0).CreateBooking(context.Background(), model.BookingRequest{
		ShowtimeID:  1,
		Seats:       []string{"A1", "A2"},
		TotalAmount: decimal.NewFromInt(160000),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), b.ID)
	assert.Equal(t, "GCABCDEF12", b.BookingCode)
}

func TestErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"string detail", http.StatusBadRequest, `{"detail":"Seat A1 is already booked"}`, "Seat A1 is already booked"},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","seats"],"msg":"field required"}]}`, "field required"},
		{"message field", http.StatusConflict, `{"message":"conflict"}`, "conflict"},
		{"plain text", http.StatusInternalServerError, `boom`, "request failed (status 500)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := New(srv.URL, 0).GetBooking(context.Background(), 1)
			require.Error(t, err)
			var re *RequestError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.status, re.Status)
			assert.Equal(t, tt.want, re.Message)
			assert.Equal(t, tt.want, Message(err, "fallback"))
		})
	}
}

func TestNotFoundByCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/bookings/code/GCNOPE", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Booking not found"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, 0).GetBookingByCode(context.Background(), "GCNOPE")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsTransport(err))
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).ListMovies(context.Background(), model.MovieShowing)
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Equal(t, "could not reach the server", Message(err, "fallback"))
}

func TestMessageFallback(t *testing.T) {
	assert.Equal(t, "fallback", Message(assert.AnError, "fallback"))
}

func TestWithHTTPClientLeavesCallerClientAlone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"dates":[]}`)
	}))
	defer srv.Close()

	shared := &http.Client{}
	c := New(srv.URL, 2*time.Second, WithHTTPClient(shared))
	_, err := c.AvailableDates(context.Background(), 1, 1)
	require.NoError(t, err)

	assert.Zero(t, shared.Timeout)
	assert.Equal(t, 2*time.Second, c.hc.Timeout)
	assert.NotSame(t, shared, c.hc)

	own := &http.Client{Timeout: 5 * time.Second}
	c = New(srv.URL, 2*time.Second, WithHTTPClient(own))
	assert.Equal(t, 5*time.Second, c.hc.Timeout)
}
