package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/campus-ticketing/internal/config"
	"github.com/iliyamo/campus-ticketing/internal/database"
	"github.com/iliyamo/campus-ticketing/internal/logger"
	"github.com/iliyamo/campus-ticketing/internal/queue"
	"github.com/iliyamo/campus-ticketing/internal/repository"
	"github.com/iliyamo/campus-ticketing/internal/router"
	"github.com/iliyamo/campus-ticketing/internal/service"
	"github.com/iliyamo/campus-ticketing/internal/utils"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environment wins

	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	rdb := config.NewRedisClient(ctx, cfg.Redis)
	if rdb == nil {
		log.Warn("redis unavailable; caching and rate limiting disabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		defer rdb.Close()
	}

	tokens, err := utils.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL())
	if err != nil {
		return err
	}

	clubs := repository.NewClubRepo(db)
	students := repository.NewStudentRepo(db)
	events := repository.NewEventRepo(db)
	tickets := repository.NewTicketRepo(db)

	publisher := service.NewQueuePublisher(cfg.AMQPURL, logger.WithComponent(log, "publisher"))
	accounts := service.NewAccountService(clubs, students, tokens, cfg.BcryptCost, logger.WithComponent(log, "accounts"))
	booking := service.NewBookingService(clubs, students, events, tickets, publisher, logger.WithComponent(log, "booking"))

	var workers sync.WaitGroup
	consumer := queue.NewConsumer(cfg.AMQPURL, cfg.TicketLog, logger.WithComponent(log, "consumer"))
	workers.Add(1)
	go func() {
		defer workers.Done()
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("ticket consumer stopped", zap.Error(err))
		}
	}()

	e := router.New(router.Deps{
		Accounts:    accounts,
		Booking:     booking,
		Tokens:      tokens,
		Log:         log,
		DB:          db,
		Redis:       rdb,
		Cache:       cfg.Cache,
		RateLimit:   cfg.RateLimit,
		CORSOrigins: cfg.CORSOrigins,
	})

	serveErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stop()
		workers.Wait()
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	booking.Wait()
	workers.Wait()
	return nil
}
