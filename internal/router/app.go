package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-storefront/internal/booking"
	"github.com/iliyamo/cinema-storefront/internal/config"
	"github.com/iliyamo/cinema-storefront/internal/handler"
	"github.com/iliyamo/cinema-storefront/internal/middleware"
	"github.com/iliyamo/cinema-storefront/internal/selector"
	"github.com/iliyamo/cinema-storefront/internal/session"
)

// Deps is everything the HTTP surface needs.  Redis may be nil, in which
// case caching and rate limiting are off.
type Deps struct {
	API       handler.Backend
	Store     session.Store
	Publisher booking.Publisher
	Redis     *redis.Client
	Session   middleware.SessionConfig
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
}

// New builds the storefront's Echo instance with all routes registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())

	RegisterRoutes(e)
	RegisterCatalog(e, handler.NewCatalogHandler(d.API), middleware.NewRedisCache(d.Cache, d.Redis))

	svc := booking.NewService(d.API, d.Publisher)
	RegisterBooking(e,
		handler.NewWidgetHandler(d.Store, selector.New(d.API)),
		handler.NewBookingHandler(d.API, d.Store, svc),
		middleware.SessionCookie(d.Session),
		middleware.NewTokenBucket(d.RateLimit, d.Redis),
	)
	return e
}
