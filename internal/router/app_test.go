package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-storefront/internal/apiclient"
	"github.com/iliyamo/cinema-storefront/internal/config"
	"github.com/iliyamo/cinema-storefront/internal/logging"
	"github.com/iliyamo/cinema-storefront/internal/middleware"
	"github.com/iliyamo/cinema-storefront/internal/model"
	"github.com/iliyamo/cinema-storefront/internal/queue"
	"github.com/iliyamo/cinema-storefront/internal/session"
)

func init() {
	logging.Discard()
}

// fakeBackend is an in-memory stand-in for the cinema REST API.
type fakeBackend struct {
	mu       sync.Mutex
	showtime model.Showtime
	bookings map[int64]*model.Booking
	created  []model.BookingRequest
	cancels  int
	nextID   int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		showtime: model.Showtime{
			ID:             1,
			MovieID:        1,
			CinemaID:       1,
			ShowDate:       "2025-01-26",
			ShowTime:       "19:15:00",
			Price:          decimal.NewFromInt(80000),
			AvailableSeats: 94,
			BookedSeats:    []string{"C5", "C6"},
		},
		bookings: map[int64]*model.Booking{},
		nextID:   42,
	}
}

func (f *fakeBackend) handler() http.Handler {
	e := echo.New()
	api := e.Group("/api")

	api.GET("/movies/", func(c echo.Context) error {
		movies := []model.Movie{
			{ID: 1, Title: "Dune: Part Two", Genre: "Sci-Fi", Director: "Denis Villeneuve", Status: model.MovieShowing},
			{ID: 2, Title: "Inside Out 2", Genre: "Animation", Status: model.MovieShowing},
			{ID: 3, Title: "Avatar 3", Genre: "Sci-Fi", Status: model.MovieComing},
		}
		out := []model.Movie{}
		for _, m := range movies {
			if s := c.QueryParam("status"); s == "" || string(m.Status) == s {
				out = append(out, m)
			}
		}
		return c.JSON(http.StatusOK, out)
	})
	api.GET("/movies/:id", func(c echo.Context) error {
		if c.Param("id") != "1" {
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "Movie not found"})
		}
		return c.JSON(http.StatusOK, model.Movie{ID: 1, Title: "Dune: Part Two", Status: model.MovieShowing})
	})
	api.GET("/cinemas/:id", func(c echo.Context) error {
		return c.JSON(http.StatusOK, model.Cinema{ID: 1, Name: "Galaxy Nguyen Du"})
	})
	api.GET("/cinemas/:id/screens", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []model.Screen{{ID: 1, CinemaID: 1, ScreenNumber: 1, ScreenType: "2D", TotalSeats: 96}})
	})
	api.GET("/news/", func(c echo.Context) error {
		if c.QueryParam("category") == "promotion" {
			return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "boom"})
		}
		return c.JSON(http.StatusOK, []model.News{{ID: 1, Title: "Opening week", Category: model.CategoryNews}})
	})
	api.GET("/news/:id", func(c echo.Context) error {
		if c.Param("id") != "1" {
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "News not found"})
		}
		return c.JSON(http.StatusOK, model.News{ID: 1, Title: "Opening week", Category: model.CategoryNews})
	})
	api.GET("/showtimes/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []model.ShowtimeSummary{
			{ID: 1, ShowDate: "2025-01-26", ShowTime: "19:15:00", CinemaName: "Galaxy Nguyen Du"},
			{ID: 2, ShowDate: "2025-01-27", ShowTime: "21:30:00", CinemaName: "Galaxy Nguyen Du"},
		})
	})
	api.GET("/showtimes/dates/available", func(c echo.Context) error {
		if c.QueryParam("cinema_id") == "" {
			return c.JSON(http.StatusOK, echo.Map{"dates": []string{"2025-01-26", "2025-01-27", "2025-01-28"}})
		}
		return c.JSON(http.StatusOK, echo.Map{"dates": []string{"2025-01-26", "2025-01-27"}})
	})
	api.GET("/showtimes/times/available", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"times": []model.TimeSlot{
			{Time: "19:15:00", AvailableSeats: 94, ShowtimeID: 1},
			{Time: "21:30:00", AvailableSeats: 96, ShowtimeID: 2},
		}})
	})
	api.GET("/showtimes/:id", func(c echo.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		if c.Param("id") != "1" {
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "Showtime not found"})
		}
		return c.JSON(http.StatusOK, f.showtime)
	})
	api.POST("/bookings/", func(c echo.Context) error {
		var req model.BookingRequest
		if err := c.Bind(&req); err != nil {
			return err
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.created = append(f.created, req)
		b := &model.Booking{
			ID:             f.nextID,
			BookingCode:    fmt.Sprintf("GC%08d", f.nextID),
			Status:         model.BookingConfirmed,
			BookingRequest: req,
		}
		f.nextID++
		f.bookings[b.ID] = b
		f.showtime.BookedSeats = append(f.showtime.BookedSeats, req.Seats...)
		return c.JSON(http.StatusOK, b)
	})
	api.GET("/bookings/code/:code", func(c echo.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, b := range f.bookings {
			if b.BookingCode == c.Param("code") {
				return c.JSON(http.StatusOK, b)
			}
		}
		return c.JSON(http.StatusNotFound, echo.Map{"detail": "Booking not found"})
	})
	api.GET("/bookings/:id/details", func(c echo.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		b, ok := f.bookings[idOf(c)]
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "Booking not found"})
		}
		return c.JSON(http.StatusOK, model.BookingDetails{
			Booking:  *b,
			Movie:    model.MovieRef{ID: 1, Title: "Dune: Part Two"},
			Cinema:   model.CinemaRef{ID: 1, Name: "Galaxy Nguyen Du"},
			Showtime: model.ShowtimeRef{Date: "2025-01-26", Time: "19:15:00", Price: decimal.NewFromInt(80000)},
		})
	})
	api.PATCH("/bookings/:id/cancel", func(c echo.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.cancels++
		b, ok := f.bookings[idOf(c)]
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "Booking not found"})
		}
		b.Status = model.BookingCancelled
		return c.JSON(http.StatusOK, b)
	})
	return e
}

func idOf(c echo.Context) int64 {
	var id int64
	_, _ = fmt.Sscan(c.Param("id"), &id)
	return id
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) BookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error {
	return m.Called(ev).Error(0)
}

func (m *mockPublisher) BookingCancelled(ctx context.Context, ev queue.BookingCancelledEvent) error {
	return m.Called(ev).Error(0)
}

type testApp struct {
	t       *testing.T
	backend *fakeBackend
	pub     *mockPublisher
	url     string
	client  *http.Client
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	fb := newFakeBackend()
	backendSrv := httptest.NewServer(fb.handler())
	t.Cleanup(backendSrv.Close)

	pub := &mockPublisher{}
	pub.On("BookingConfirmed", mock.Anything).Return(nil).Maybe()
	pub.On("BookingCancelled", mock.Anything).Return(nil).Maybe()

	e := New(Deps{
		API:       apiclient.New(backendSrv.URL, 2*time.Second),
		Store:     session.NewMemoryStore(time.Hour),
		Publisher: pub,
		Session:   middleware.SessionConfig{Secret: "test-secret", CookieName: "sid", TTL: time.Hour},
		Cache:     config.CacheConfig{},
		RateLimit: config.RateLimitConfig{},
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testApp{t: t, backend: fb, pub: pub, url: srv.URL, client: &http.Client{Jar: jar}}
}

func (a *testApp) do(method, path string, body any) (int, map[string]any) {
	a.t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, a.url+path, rdr)
	require.NoError(a.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.client.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	if len(raw) > 0 {
		require.NoError(a.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func customer() map[string]string {
	return map[string]string{
		"customer_name":  "Ana",
		"customer_phone": "0900000000",
		"customer_email": "ana@example.com",
		"payment_method": "cash",
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	status, body := app.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestWidgetCascade(t *testing.T) {
	app := newTestApp(t)

	status, body := app.do(http.MethodPut, "/v1/widget/movie", echo.Map{"value": 1})
	require.Equal(t, http.StatusOK, status, body)
	widget := body["widget"].(map[string]any)
	assert.Len(t, widget["dates"], 3)

	status, body = app.do(http.MethodPut, "/v1/widget/cinema", echo.Map{"value": "1"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, []any{"2025-01-26", "2025-01-27"}, body["widget"].(map[string]any)["dates"])

	status, _ = app.do(http.MethodPut, "/v1/widget/time", echo.Map{"value": "19:15"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, body = app.do(http.MethodPut, "/v1/widget/date", echo.Map{"value": "2025-01-26"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Len(t, body["widget"].(map[string]any)["times"], 2)

	status, body = app.do(http.MethodPut, "/v1/widget/time", echo.Map{"value": "19:15"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["complete"])

	status, body = app.do(http.MethodPost, "/v1/widget/confirm", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(1), body["showtime_id"])
	assert.Equal(t, "/booking/1", body["redirect"])

	// changing the movie clears everything below it
	status, body = app.do(http.MethodPut, "/v1/widget/movie", echo.Map{"value": 2})
	require.Equal(t, http.StatusOK, status)
	widget = body["widget"].(map[string]any)
	assert.Nil(t, widget["date"])
	assert.Empty(t, widget["times"])
	assert.Equal(t, false, body["complete"])
}

func TestWidgetRejectsUnknownSlot(t *testing.T) {
	app := newTestApp(t)
	status, _ := app.do(http.MethodPut, "/v1/widget/seat", echo.Map{"value": "A1"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = app.do(http.MethodPost, "/v1/widget/confirm", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestBookingHappyPath(t *testing.T) {
	app := newTestApp(t)

	status, body := app.do(http.MethodGet, "/v1/booking/1", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Len(t, body["seats"], 96)
	assert.Equal(t, float64(8), body["max_selection"])

	for _, seat := range []string{"A1", "A2"} {
		status, body = app.do(http.MethodPost, "/v1/booking/1/seats/"+seat, nil)
		require.Equal(t, http.StatusOK, status, body)
	}
	assert.Equal(t, []any{"A1", "A2"}, body["selected"])
	assert.Equal(t, "160000", body["total"])

	status, body = app.do(http.MethodPost, "/v1/booking/1/submit", customer())
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "Booking confirmed! Code: GC00000042", body["message"])
	assert.Equal(t, "/booking-confirmation/42", body["redirect"])

	require.Len(t, app.backend.created, 1)
	sent := app.backend.created[0]
	assert.Equal(t, int64(1), sent.ShowtimeID)
	assert.Equal(t, []string{"A1", "A2"}, sent.Seats)
	assert.True(t, sent.TotalAmount.Equal(decimal.NewFromInt(160000)))
	app.pub.AssertCalled(t, "BookingConfirmed", mock.Anything)

	// the selection is gone and the seats now show as booked
	status, body = app.do(http.MethodGet, "/v1/booking/1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["selected"])
	seats := body["seats"].([]any)
	assert.Equal(t, true, seats[0].(map[string]any)["booked"])
}

func TestSubmitWithoutSeats(t *testing.T) {
	app := newTestApp(t)
	status, body := app.do(http.MethodPost, "/v1/booking/1/submit", customer())
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "please select at least one seat", body["error"])
	assert.Empty(t, app.backend.created)
}

func TestSubmitMissingCustomerFields(t *testing.T) {
	app := newTestApp(t)
	status, _ := app.do(http.MethodPost, "/v1/booking/1/seats/A1", nil)
	require.Equal(t, http.StatusOK, status)

	status, body := app.do(http.MethodPost, "/v1/booking/1/submit", map[string]string{"customer_name": "Ana"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	fields := body["fields"].(map[string]any)
	assert.Contains(t, fields, "customer_phone")
	assert.Contains(t, fields, "customer_email")
	assert.Empty(t, app.backend.created)
}

func TestSeatRules(t *testing.T) {
	app := newTestApp(t)

	// a booked seat is a silent no-op
	status, body := app.do(http.MethodPost, "/v1/booking/1/seats/C5", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["selected"])
	assert.Equal(t, "0", body["total"])

	status, _ = app.do(http.MethodPost, "/v1/booking/1/seats/Z9", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	for i := 1; i <= 8; i++ {
		status, _ = app.do(http.MethodPost, fmt.Sprintf("/v1/booking/1/seats/A%d", i), nil)
		require.Equal(t, http.StatusOK, status)
	}
	// past the cap the selection does not grow and no error is returned
	status, body = app.do(http.MethodPost, "/v1/booking/1/seats/A9", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["selected"], 8)
	assert.NotContains(t, body["selected"], "A9")
	assert.Equal(t, "640000", body["total"])

	// deselecting still works at the cap
	status, body = app.do(http.MethodPost, "/v1/booking/1/seats/A1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["selected"], 7)

	status, body = app.do(http.MethodDelete, "/v1/booking/1/seats", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["selected"])
	assert.Equal(t, "0", body["total"])
}

func TestDeselectSeatBookedAfterSelection(t *testing.T) {
	app := newTestApp(t)

	status, _ := app.do(http.MethodPost, "/v1/booking/1/seats/A1", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = app.do(http.MethodPost, "/v1/booking/1/seats/A2", nil)
	require.Equal(t, http.StatusOK, status)

	app.backend.mu.Lock()
	app.backend.showtime.BookedSeats = append(app.backend.showtime.BookedSeats, "A1")
	app.backend.mu.Unlock()

	status, body := app.do(http.MethodPost, "/v1/booking/1/seats/A1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"A2"}, body["selected"])
	assert.Equal(t, "80000", body["total"])
}

func TestSelectionIsPerVisitor(t *testing.T) {
	alice := newTestApp(t)
	status, _ := alice.do(http.MethodPost, "/v1/booking/1/seats/B2", nil)
	require.Equal(t, http.StatusOK, status)

	jar, _ := cookiejar.New(nil)
	bob := *alice
	bob.client = &http.Client{Jar: jar}
	status, body := bob.do(http.MethodGet, "/v1/booking/1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["selected"])
}

func TestConfirmationCancelAndLookup(t *testing.T) {
	app := newTestApp(t)
	app.do(http.MethodPost, "/v1/booking/1/seats/A1", nil)
	app.do(http.MethodPost, "/v1/booking/1/seats/A2", nil)
	status, _ := app.do(http.MethodPost, "/v1/booking/1/submit", customer())
	require.Equal(t, http.StatusCreated, status)

	status, body := app.do(http.MethodGet, "/v1/booking-confirmation/42", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["can_cancel"])

	status, body = app.do(http.MethodGet, "/v1/lookup?code=gc00000042", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "GC00000042", body["booking"].(map[string]any)["booking_code"])

	status, body = app.do(http.MethodPost, "/v1/booking-confirmation/42/cancel", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "cancelled", body["booking"].(map[string]any)["status"])
	assert.Equal(t, false, body["can_cancel"])

	status, _ = app.do(http.MethodPost, "/v1/booking-confirmation/42/cancel", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, 1, app.backend.cancels)
}

func TestLookupErrors(t *testing.T) {
	app := newTestApp(t)

	status, body := app.do(http.MethodGet, "/v1/lookup?code=GCXXXXXXXX", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Booking not found", body["error"])

	status, _ = app.do(http.MethodGet, "/v1/lookup?code=%20%20", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCatalogRoutes(t *testing.T) {
	app := newTestApp(t)

	status, body := app.do(http.MethodGet, "/v1/home", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["now_showing"], 2)
	assert.Len(t, body["coming_soon"], 1)
	assert.Equal(t, []any{"promotions"}, body["unavailable"])

	status, body = app.do(http.MethodGet, "/v1/search?q=villeneuve", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])

	status, _ = app.do(http.MethodGet, "/v1/movies?status=stopped", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = app.do(http.MethodGet, "/v1/movies/1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["showtimes"], 2)

	status, body = app.do(http.MethodGet, "/v1/movies/9", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Movie not found", body["error"])

	status, body = app.do(http.MethodGet, "/v1/cinemas/1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["screens"], 1)

	status, body = app.do(http.MethodGet, "/v1/news/1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Opening week", body["title"])

	status, body = app.do(http.MethodGet, "/v1/news/7", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "News not found", body["error"])
}

func TestBackendDown(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	e := New(Deps{
		API:       apiclient.New(deadURL, time.Second),
		Store:     session.NewMemoryStore(time.Hour),
		Publisher: &mockPublisher{},
		Session:   middleware.SessionConfig{Secret: "x", TTL: time.Hour},
	})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/booking/1", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "could not reach the server"))
}
