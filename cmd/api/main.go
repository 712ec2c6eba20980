package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/aguahielo/movimientos-api/internal/application/inventory"
	"github.com/aguahielo/movimientos-api/internal/application/sales"
	"github.com/aguahielo/movimientos-api/internal/infrastructure/memory"
	"github.com/aguahielo/movimientos-api/internal/infrastructure/metrics"
	"github.com/aguahielo/movimientos-api/internal/infrastructure/migrations"
	"github.com/aguahielo/movimientos-api/internal/infrastructure/notify"
	"github.com/aguahielo/movimientos-api/internal/infrastructure/postgres"
	httpRouter "github.com/aguahielo/movimientos-api/internal/interfaces/http"
	"github.com/aguahielo/movimientos-api/pkg/config"
	"github.com/aguahielo/movimientos-api/pkg/jwt"
	"github.com/aguahielo/movimientos-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Almacén: PostgreSQL (con migraciones) o memoria para desarrollo
	var (
		txRunner    inventory.TxRunner
		isTransient func(error) bool
	)
	switch cfg.DB.Driver {
	case config.DriverMemory:
		txRunner = memory.New()
		isTransient = memory.IsTransient
	default:
		if cfg.DB.AutoMigrate {
			m, err := migrations.New(cfg.DB.ConnectionString(), log.Component("migrations"))
			if err != nil {
				log.Fatal().Err(err).Msg("preparar migraciones")
			}
			if err := m.Up(); err != nil {
				log.Fatal().Err(err).Msg("aplicar migraciones")
			}
			_ = m.Close()
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool, postgres.WithTxRetry(cfg.Ledger.TxAttempts, cfg.Ledger.RetryBackoff))
		isTransient = postgres.IsTransient
	}

	var seeded inventory.SeedResult
	if err := txRunner.Run(ctx, func(repos inventory.Repositories) (err error) {
		seeded, err = inventory.SeedCatalog(ctx, repos, nil, nil)
		return err
	}); err != nil {
		log.Fatal().Err(err).Msg("seed de catálogo")
	}
	log.Info().Int("storages", seeded.Storages).Int("elements", seeded.Elements).Msg("catálogo listo")

	// Notificación de cambios: Hub local y, si hay Redis, difusión entre instancias
	observer := metrics.New()
	hub := notify.NewHub(cfg.Notify.SubscriberBuffer)
	var notifier inventory.Notifier = hub
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		cancel()

		origin := notify.NewInstanceID()
		notifier = notify.Multi{hub, notify.NewRedisPublisher(client, cfg.Redis.Channel, origin)}
		bridge := notify.NewRedisBridge(client, cfg.Redis.Channel, origin, hub, log.Component("redis-bridge"))
		go func() {
			if err := bridge.Run(ctx); err != nil {
				log.Error().Err(err).Msg("puente Redis finalizado")
			}
		}()
	}

	engineLog := log.Component("engine")
	retry := inventory.RetryPolicy{
		MaxAttempts: cfg.Ledger.RetryAttempts,
		Backoff:     cfg.Ledger.RetryBackoff,
		IsTransient: isTransient,
		OnRetry: func(attempt int, err error) {
			engineLog.Debug().Err(err).Int("attempt", attempt).Msg("contención transitoria, reintentando")
		},
	}
	catalog := inventory.NewCatalog(txRunner.Reader().Storages, txRunner.Reader().Elements, log.Component("catalog"))
	engine := inventory.NewEngine(catalog, retry, observer)
	feed := inventory.NewChangeFeed(notifier, observer, log.Component("feed"))
	movementUC := inventory.NewMovementUseCase(txRunner, engine, catalog, feed, log.Component("movements"))
	queryUC := inventory.NewQueryUseCase(txRunner)
	salesUC := sales.NewUseCase(txRunner, engine, catalog, feed, log.Component("sales"))

	tokens, err := jwt.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.Expiration)*time.Minute)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar JWT (JWT_SECRET)")
	}

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: time.Second * 10,
		IdleTimeout: time.Second * 60,
	})

	// Swagger UI en local: http://localhost:<port>/docs (requiere swag init)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Movimientos API",
		}))
	}

	done := make(chan struct{})
	httpRouter.Router(app, httpRouter.RouterDeps{
		Movements: movementUC,
		Queries:   queryUC,
		Sales:     salesUC,
		Hub:       hub,
		Metrics:   observer.Handler(),
		Tokens:    tokens,
		AppName:   cfg.App.Name,
		Heartbeat: cfg.Notify.Heartbeat,
		Done:      done,
		Log:       log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	close(done)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
