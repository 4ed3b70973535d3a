package main

import (
	"context"
	"errors"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"

	"pos-service/internal/config"
	"pos-service/internal/controllers/http"
	"pos-service/internal/infra"
	dbinfra "pos-service/internal/infra/mysql"
	"pos-service/internal/infra/rabbitmq"
	"pos-service/internal/logger"
	repo "pos-service/internal/repository/mysql"
	"pos-service/internal/services"
	"pos-service/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "text").WithError(err).Fatal("config")
	}
	root := logger.New(cfg.LogLevel, cfg.LogFormat)
	log := logger.Component(root, "server")

	db, err := dbinfra.Open(dbinfra.Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DatabaseDSN,
		MaxOpenConns:    100,
		MaxIdleConns:    20,
		ConnMaxLifetime: 5 * time.Minute,
		LogQueries:      cfg.GinMode == gin.DebugMode,
	})
	if err != nil {
		log.WithError(err).Fatal("db: connect")
	}
	store := repo.NewStore(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	menu := services.NewMenuService(store, logger.Component(root, "menu"))
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			PoolSize:     50,
			MinIdleConns: 5,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		defer rdb.Close()
		menu.SetRedisClient(rdb)
		if err := menu.WarmupCatalogCache(ctx); err != nil {
			log.WithError(err).Warn("catalog cache warmup failed")
		} else {
			log.Info("catalog cache warmed up")
		}
	}

	hub := ws.NewHub(logger.Component(root, "ws"))
	publishers := infra.MultiPublisher{hub}
	if cfg.RabbitMQURL != "" {
		rabbit, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, logger.Component(root, "rabbitmq"))
		if err != nil {
			log.WithError(err).Fatal("failed to init publisher")
		}
		defer rabbit.Close()
		publishers = append(publishers, rabbit)
	}

	orders := services.NewOrderService(store, publishers, logger.Component(root, "orders"))
	reports := services.NewReportService(store, cfg.YearlyTarget)
	handler := http.NewHandler(menu, orders, reports, logger.Component(root, "http"))

	gin.SetMode(cfg.GinMode)
	router := http.NewRouter(handler, http.RouterConfig{
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigin,
		Hub:         hub,
		Log:         logger.Component(root, "http"),
	})

	srv := &nethttp.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("starting pos service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
	log.Info("server stopped")
}
