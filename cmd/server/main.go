package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/shanehull/digmap/internal/app"
	"github.com/shanehull/digmap/internal/config"
	"github.com/shanehull/digmap/internal/http"
	"github.com/shanehull/digmap/internal/logging"
	"github.com/shanehull/digmap/internal/notify"
	"github.com/shanehull/digmap/internal/store"
	"github.com/shanehull/digmap/internal/telemetry"
	"github.com/shanehull/digmap/internal/valkey"
)

func main() {
	cfg, err := config.Load("digmap-server")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	svc, err := app.NewServices(ctx, cfg)
	if err != nil {
		log.Fatalf("services: %v", err)
	}

	sessionCfg := session.Config{
		KeyLookup:      "cookie:" + cfg.Session.CookieName,
		Expiration:     cfg.Session.Expiration,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	}

	deps := &http.Dependencies{
		Geocoder:  svc.Resolver,
		Pipeline:  svc.Pipeline,
		Chat:      svc.Generator,
		RateLimit: cfg.Server.RateLimit,
		Map: http.MapSettings{
			DefaultLayer: cfg.Map.DefaultLayer,
			OldMapTiles:  cfg.Map.OldMapTiles,
		},
	}

	// Session and per-session state: Valkey when enabled, process memory otherwise
	if cfg.Valkey.Enabled {
		cache, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			log.Fatalf("valkey: %v", err)
		}
		defer cache.Close()

		state := store.NewValkey(cache, cfg.Session.Expiration)
		deps.Points = state
		deps.Routes = state
		deps.Cache = cache
		sessionCfg.Storage = valkey.NewStorage(cache)
	} else {
		state := store.NewMemory()
		deps.Points = state
		deps.Routes = state
	}
	deps.Sessions = session.New(sessionCfg)

	emailCfg := app.EmailConfig(cfg.SMTP)
	if emailCfg.Enabled {
		deps.Mailer = notify.NewNotifier(notify.NewEmailSender(emailCfg), cfg.Server.PublicURL)
	} else {
		slog.Info("email reports disabled, SMTP not configured")
	}

	// Fiber
	server := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    1024 * 1024,
		AppName:      "digmap",
		Immutable:    true,
	})
	server.Use(recover.New())

	http.SetupRoutes(server, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("server starting", "addr", addr)
		if err := server.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
