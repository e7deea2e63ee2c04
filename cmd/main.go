package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/tuanvm/investfolio/config"
	"github.com/tuanvm/investfolio/data"
	"github.com/tuanvm/investfolio/data/cache"
	"github.com/tuanvm/investfolio/data/repository/postgres"
	"github.com/tuanvm/investfolio/internal/externalApi/priceApi/dragonCapitalApi"
	"github.com/tuanvm/investfolio/internal/externalApi/priceApi/vietcombankApi"
	"github.com/tuanvm/investfolio/internal/externalApi/priceApi/vnappmobApi"
	"github.com/tuanvm/investfolio/internal/reportGenerator/xlsxGenerator"
	"github.com/tuanvm/investfolio/internal/scheduler"
	"github.com/tuanvm/investfolio/internal/service/authService"
	"github.com/tuanvm/investfolio/internal/service/categoryService"
	"github.com/tuanvm/investfolio/internal/service/expenseService"
	"github.com/tuanvm/investfolio/internal/service/portfolioService"
	"github.com/tuanvm/investfolio/internal/service/priceService"
	"github.com/tuanvm/investfolio/internal/service/transactionService"
	"github.com/tuanvm/investfolio/internal/transport/rest"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	decimal.MarshalJSONWithoutQuotes = true

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)

	reportGenerator := xlsxGenerator.New()

	authSrv := authService.New(cfg, pgRepo)
	categorySrv := categoryService.New(pgRepo)
	transactionSrv := transactionService.New(pgRepo)
	portfolioSrv := portfolioService.New(pgRepo, reportGenerator)
	expenseSrv := expenseService.New(pgRepo)
	priceSrv := priceService.New(
		pgRepo,
		redisCache,
		dragonCapitalApi.New(cfg),
		vnappmobApi.New(cfg),
		vietcombankApi.New(cfg),
	)

	sched := scheduler.New()
	sched.NewCrontabJob("daily portfolio snapshots", portfolioSrv.CreateDailySnapshots, cfg.Jobs.DailySnapshotCrontab, false)
	sched.NewIntervalJob("quote cache refresh", priceSrv.RefreshQuotes, cfg.Jobs.QuoteRefreshInterval, true)
	sched.Start()
	defer sched.Stop()

	ctrl := rest.NewController(authSrv, categorySrv, transactionSrv, portfolioSrv, priceSrv, expenseSrv)
	router := rest.NewRouter(cfg, ctrl, authSrv)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		slog.Info("http server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", slog.String("err", err.Error()))
			os.Exit(1)
		}
	}()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", slog.String("err", err.Error()))
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
