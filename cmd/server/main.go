package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-storefront/internal/apiclient"
	"github.com/iliyamo/cinema-storefront/internal/booking"
	"github.com/iliyamo/cinema-storefront/internal/config"
	"github.com/iliyamo/cinema-storefront/internal/logging"
	"github.com/iliyamo/cinema-storefront/internal/middleware"
	"github.com/iliyamo/cinema-storefront/internal/queue"
	"github.com/iliyamo/cinema-storefront/internal/router"
	"github.com/iliyamo/cinema-storefront/internal/service"
	"github.com/iliyamo/cinema-storefront/internal/session"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient(cfg.Redis)
	var store session.Store
	if rdb != nil {
		defer rdb.Close()
		store = session.NewRedisStore(rdb, "session", cfg.SessionTTL)
	} else {
		store = session.NewMemoryStore(cfg.SessionTTL)
	}

	var pub booking.Publisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		pub = service.NewAMQPPublisher(cfg.AMQPURL)
		go func() {
			if err := queue.StartBookingConsumer(ctx, cfg.AMQPURL, cfg.BookingLogPath); err != nil && !errors.Is(err, context.Canceled) {
				logrus.WithError(err).Error("booking consumer stopped")
			}
		}()
	}

	e := router.New(router.Deps{
		API:       apiclient.New(cfg.BackendURL, cfg.APITimeout),
		Store:     store,
		Publisher: pub,
		Redis:     rdb,
		Session: middleware.SessionConfig{
			Secret:     cfg.SessionSecret,
			CookieName: cfg.SessionCookie,
			TTL:        cfg.SessionTTL,
			Secure:     cfg.Env == "prod",
		},
		Cache:     cfg.Cache,
		RateLimit: cfg.RateLimit,
	})

	addr := ":" + cfg.Port
	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":    addr,
			"env":     cfg.Env,
			"backend": cfg.BackendURL,
			"redis":   rdb != nil,
			"events":  cfg.EventsEnabled,
		}).Info("storefront listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
}
