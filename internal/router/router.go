package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-storefront/internal/handler"
)

// RegisterRoutes registers routes that need neither a session nor the
// backend.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterCatalog registers the public browsing endpoints.  cache wraps
// every route here; responses must not vary by visitor.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	g.GET("/home", h.Home)
	g.GET("/movies", h.ListMovies)
	g.GET("/movies/:id", h.GetMovie)
	g.GET("/cinemas", h.ListCinemas)
	g.GET("/cinemas/:id", h.GetCinema)
	g.GET("/news", h.ListNews)
	g.GET("/news/:id", h.GetNews)
	g.GET("/search", h.Search)
}
