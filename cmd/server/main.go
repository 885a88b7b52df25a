package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/restaurant-order-service/internal/config"
	"github.com/iliyamo/restaurant-order-service/internal/database"
	"github.com/iliyamo/restaurant-order-service/internal/handler"
	"github.com/iliyamo/restaurant-order-service/internal/middleware"
	"github.com/iliyamo/restaurant-order-service/internal/oauth"
	"github.com/iliyamo/restaurant-order-service/internal/queue"
	"github.com/iliyamo/restaurant-order-service/internal/repository"
	"github.com/iliyamo/restaurant-order-service/internal/router"
	"github.com/iliyamo/restaurant-order-service/internal/service"
	"github.com/iliyamo/restaurant-order-service/internal/utils"
)

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.IsDevelopment() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func main() {
	cfg := config.Load()
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		logger.Warn("redis unavailable, cache and rate limit disabled")
	} else {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	accounts := repository.NewOAuthAccountRepo(db)
	tokens := repository.NewTokenRepo(db)
	restaurants := repository.NewRestaurantRepo(db)
	tables := repository.NewTableRepo(db)
	categories := repository.NewCategoryRepo(db)
	products := repository.NewProductRepo(db)
	orders := repository.NewOrderRepo(db)
	orderItems := repository.NewOrderItemRepo(db)

	authSvc := service.NewAuth(logger, users, accounts, tokens, service.AuthConfig{
		Tokens: utils.TokenConfig{
			Secret:     cfg.JWTSecret,
			AccessTTL:  cfg.AccessTTL,
			RefreshTTL: cfg.RefreshTTL,
		},
		SessionTTL: cfg.SessionTTL,
		BcryptCost: cfg.BcryptCost,
		LoginMode:  cfg.LoginMode,
	})
	session := handler.NewSessionResponder(cfg)

	authH := &handler.AuthHandler{
		Svc:         authSvc,
		Users:       users,
		Session:     session,
		StateSecret: cfg.JWTSecret,
		Log:         logger,
	}
	if cfg.GoogleEnabled() {
		authH.Google = oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	} else {
		logger.Info("google sign-in disabled, GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set")
	}

	orderH := &handler.OrderHandler{Orders: orders, Tables: tables, Log: logger}
	if cfg.OrderEventsEnabled {
		orderH.Events = service.NewOrderEvents(cfg.RabbitMQURL, logger)
	}
	if cfg.OrderConsumerEnabled {
		go func() {
			if err := queue.StartOrderConsumer(ctx, cfg.RabbitMQURL, cfg.OrderLogDir, logger); err != nil &&
				!errors.Is(err, context.Canceled) {
				logger.Error("order consumer stopped", slog.Any("err", err))
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(logger)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("err", v.Error.Error()))
			}
			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			return nil
		},
	}))

	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	guards := router.Guards{
		Identifier: authSvc,
		Cache:      cache.Read(),
		Invalidate: cache.Invalidate(),
		RateLimit:  middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger),
	}
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, guards)
	router.RegisterUsers(e, &handler.UserHandler{Users: users, Auth: authSvc, Session: session}, guards)
	router.RegisterCatalog(e,
		&handler.RestaurantHandler{Restaurants: restaurants, Tables: tables},
		&handler.CatalogHandler{Categories: categories, Products: products},
		guards)
	router.RegisterOrders(e,
		orderH,
		&handler.OrderItemHandler{Items: orderItems},
		guards)

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("err", err))
	}
}
