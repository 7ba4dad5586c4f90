package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/humayunejaz/travel-planning-app/internal/app"
	"github.com/humayunejaz/travel-planning-app/internal/config"
	"github.com/humayunejaz/travel-planning-app/internal/logging"
	transporthttp "github.com/humayunejaz/travel-planning-app/internal/transport/http"
)

func main() {
	cfg := config.Load()

	logger, flush, err := logging.New(logging.Config{Level: cfg.LogLevel, LogstashAddr: cfg.LogstashTCPAddr})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer flush()
	sugar := logger.Sugar()

	if !cfg.RemoteEnabled() {
		sugar.Fatal("DATABASE_URL is required: accounts and sessions live in the database")
	}

	application, err := app.New(cfg, sugar)
	if err != nil {
		sugar.Fatalw("bootstrap failed", "error", err)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := application.Migrate(migrateCtx); err != nil {
		sugar.Warnw("schema migration skipped", "error", err)
	}
	cancel()

	e := transporthttp.NewRouter(cfg.AllowOrigins, logger.Named("http"))
	transporthttp.RegisterSwagger(e)
	transporthttp.RegisterPages(e, cfg.RegistrationPath, cfg.FrontendHomeURL)
	transporthttp.RegisterAuth(e, application.Auth, sugar.Named("http"))
	transporthttp.RegisterTrips(e, application.Auth, application.Trips, application.Collaboration, sugar.Named("http"))
	transporthttp.RegisterInvitations(e, application.Auth, application.Trips, application.Collaboration, sugar.Named("http"))

	go func() {
		sugar.Infow("listening", "port", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("shutdown", "error", err)
	}
}
