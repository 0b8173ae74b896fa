package handler

// catalog.go serves the read-only browsing routes: home page sections,
// movies, cinemas, news and search.  These responses do not depend on the
// visitor and may sit behind the response cache.

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/cinema-storefront/internal/apiclient"
	"github.com/iliyamo/cinema-storefront/internal/catalog"
	"github.com/iliyamo/cinema-storefront/internal/logging"
	"github.com/iliyamo/cinema-storefront/internal/model"
)

// CatalogHandler serves public browsing endpoints.
type CatalogHandler struct {
	API Backend
}

// NewCatalogHandler panics on a nil backend.
func NewCatalogHandler(api Backend) *CatalogHandler {
	if api == nil {
		panic("nil backend passed to NewCatalogHandler")
	}
	return &CatalogHandler{API: api}
}

// homePage is the GET /v1/home payload.  A section whose backend call
// failed is empty and named in Unavailable.
type homePage struct {
	NowShowing  []model.Movie `json:"now_showing"`
	ComingSoon  []model.Movie `json:"coming_soon"`
	Promotions  []model.News  `json:"promotions"`
	News        []model.News  `json:"news"`
	Unavailable []string      `json:"unavailable,omitempty"`
}

// Home loads the four home page sections in parallel.
func (h *CatalogHandler) Home(c echo.Context) error {
	ctx := c.Request().Context()
	log := logging.FromContext(ctx)

	var (
		page   homePage
		failed [4]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		movies, err := h.API.ListMovies(gctx, model.MovieShowing)
		page.NowShowing, failed[0] = movies, err != nil
		return nil
	})
	g.Go(func() error {
		movies, err := h.API.ListMovies(gctx, model.MovieComing)
		page.ComingSoon, failed[1] = movies, err != nil
		return nil
	})
	g.Go(func() error {
		news, err := h.API.ListNews(gctx, model.CategoryPromotion)
		page.Promotions, failed[2] = news, err != nil
		return nil
	})
	g.Go(func() error {
		news, err := h.API.ListNews(gctx, model.CategoryNews)
		page.News, failed[3] = news, err != nil
		return nil
	})
	_ = g.Wait()

	for i, name := range []string{"now_showing", "coming_soon", "promotions", "news"} {
		if failed[i] {
			page.Unavailable = append(page.Unavailable, name)
		}
	}
	if len(page.Unavailable) > 0 {
		log.WithField("sections", page.Unavailable).Warn("home: some sections failed to load")
	}
	if page.NowShowing == nil {
		page.NowShowing = []model.Movie{}
	}
	if page.ComingSoon == nil {
		page.ComingSoon = []model.Movie{}
	}
	if page.Promotions == nil {
		page.Promotions = []model.News{}
	}
	if page.News == nil {
		page.News = []model.News{}
	}
	return c.JSON(http.StatusOK, page)
}

func movieStatus(c echo.Context) (model.MovieStatus, bool) {
	s := model.MovieStatus(strings.ToLower(strings.TrimSpace(c.QueryParam("status"))))
	return s, s.Valid()
}

// ListMovies handles GET /v1/movies?status=showing|coming.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	status, ok := movieStatus(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	movies, err := h.API.ListMovies(c.Request().Context(), status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": nonNilMovies(movies)})
}

// GetMovie handles GET /v1/movies/:id.  The movie's showtimes are grouped
// by date and then by cinema.
func (h *CatalogHandler) GetMovie(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	var (
		movie     *model.Movie
		showtimes []model.ShowtimeSummary
	)
	g, gctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() (err error) {
		movie, err = h.API.GetMovie(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		showtimes, err = h.API.ListShowtimes(gctx, apiclient.ShowtimeFilter{MovieID: id})
		return err
	})
	if err := g.Wait(); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"movie":     movie,
		"showtimes": catalog.GroupShowtimes(showtimes),
	})
}

// ListCinemas handles GET /v1/cinemas?province=.
func (h *CatalogHandler) ListCinemas(c echo.Context) error {
	cinemas, err := h.API.ListCinemas(c.Request().Context(), strings.TrimSpace(c.QueryParam("province")))
	if err != nil {
		return respondError(c, err)
	}
	if cinemas == nil {
		cinemas = []model.Cinema{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": cinemas})
}

// GetCinema handles GET /v1/cinemas/:id and includes the cinema's screens.
func (h *CatalogHandler) GetCinema(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cinema id"})
	}
	var (
		cinema  *model.Cinema
		screens []model.Screen
	)
	g, gctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() (err error) {
		cinema, err = h.API.GetCinema(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		screens, err = h.API.ListScreens(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return respondError(c, err)
	}
	if screens == nil {
		screens = []model.Screen{}
	}
	return c.JSON(http.StatusOK, echo.Map{"cinema": cinema, "screens": screens})
}

// ListNews handles GET /v1/news?category=news|promotion.
func (h *CatalogHandler) ListNews(c echo.Context) error {
	category := model.NewsCategory(strings.ToLower(strings.TrimSpace(c.QueryParam("category"))))
	switch category {
	case "", model.CategoryNews, model.CategoryPromotion:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
	}
	news, err := h.API.ListNews(c.Request().Context(), category)
	if err != nil {
		return respondError(c, err)
	}
	if news == nil {
		news = []model.News{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": news})
}

// GetNews handles GET /v1/news/:id.
func (h *CatalogHandler) GetNews(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid news id"})
	}
	item, err := h.API.GetNews(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// Search handles GET /v1/search?q=&status=&genre=.  The backend filters by
// status; the text and genre filters are applied here.
func (h *CatalogHandler) Search(c echo.Context) error {
	status, ok := movieStatus(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	movies, err := h.API.ListMovies(c.Request().Context(), status)
	if err != nil {
		return respondError(c, err)
	}
	found := catalog.FilterMovies(movies, c.QueryParam("q"), c.QueryParam("genre"))
	return c.JSON(http.StatusOK, echo.Map{"items": found, "count": len(found)})
}

func nonNilMovies(m []model.Movie) []model.Movie {
	if m == nil {
		return []model.Movie{}
	}
	return m
}
