package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-storefront/internal/logging"
)

// CorrelationHeader carries the request correlation id in both directions.
const CorrelationHeader = "X-Correlation-ID"

// RequestLogger tags each request with a correlation id, stores a
// request-scoped logrus entry in the request context and logs the outcome.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			correlationID := req.Header.Get(CorrelationHeader)
			if correlationID == "" {
				correlationID = shortuuid.New()
			}
			c.Response().Header().Set(CorrelationHeader, correlationID)

			logger := logrus.WithFields(logrus.Fields{
				"correlation_id": correlationID,
				"method":         req.Method,
				"path":           req.URL.Path,
			})
			c.SetRequest(req.WithContext(logging.ToContext(req.Context(), logger)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			entry := logging.FromContext(c.Request().Context()).WithFields(logrus.Fields{
				"status":     c.Response().Status,
				"latency_ms": time.Since(start).Milliseconds(),
			})
			if err != nil {
				entry.WithError(err).Error("request failed")
			} else {
				entry.Info("request handled")
			}
			return nil
		}
	}
}
