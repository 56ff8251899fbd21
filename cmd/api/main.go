package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/estoque-api/docs"
	"github.com/jhoicas/estoque-api/internal/application/auth"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/application/usecase"
	"github.com/jhoicas/estoque-api/internal/infrastructure/cache"
	"github.com/jhoicas/estoque-api/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/estoque-api/internal/infrastructure/pdf"
	"github.com/jhoicas/estoque-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/estoque-api/internal/interfaces/http"
	"github.com/jhoicas/estoque-api/pkg/config"
	"github.com/jhoicas/estoque-api/pkg/logger"
	"github.com/swaggo/swag"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("timezone", cfg.App.Location().String()).
		Msg("iniciando aplicación")

	ctx := context.Background()

	if cfg.DB.AutoMigrate {
		migrator, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log.Named("migrate"))
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		if err := migrator.Up(); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		_ = migrator.Close()
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Transporte de alertas de stock bajo: log | smtp | kafka
	notifier, closeNotifier, err := notify.New(cfg, log.Named("notify"))
	if err != nil {
		log.Fatal().Err(err).Msg("notificador de stock bajo")
	}
	defer func() {
		if err := closeNotifier(); err != nil {
			log.Error().Err(err).Msg("cerrar notificador")
		}
	}()

	// Idempotencia de POST /movements: Redis si está configurado, memoria si no.
	var idemStore cache.IdempotencyStore
	if cfg.Redis.Addr != "" {
		redisStore, err := cache.NewRedisIdempotencyStore(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		idemStore = redisStore
	} else {
		idemStore = cache.NewMemoryIdempotencyStore(time.Minute)
	}
	defer idemStore.Close()

	sweepUC := inventory.NewLowStockSweepUseCase(productRepo, notifier, cfg.Notifier.Timeout(), log.Named("sweep"))
	registerMovementUC := inventory.NewRegisterMovementUseCase(
		txRunner, productRepo, sweepUC,
		inventory.StockPolicy{AllowNegativeStock: cfg.Inventory.AllowNegativeStock},
		log.Named("movements"),
	)
	movementQueryUC := inventory.NewMovementQueryUseCase(movementRepo, cfg.App.Location())
	movementReportUC := inventory.NewMovementReportUseCase(movementQueryUC, infrapdf.NewMovementReportGenerator(cfg.App.Name))
	replenishmentUC := inventory.NewReplenishmentUseCase(productRepo)

	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	productUC := usecase.NewProductUseCase(productRepo, categoryRepo)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + httpRouter.HeaderIdempotencyKey,
	}))
	app.Use(httpRouter.RequestLogger(log.Named("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Estoque API",
	}))

	// Documento OpenAPI generado por swag (registrado en el init de docs)
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(doc)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:           authUC,
		CategoryUC:       categoryUC,
		ProductUC:        productUC,
		RegisterMovement: registerMovementUC,
		MovementQuery:    movementQueryUC,
		MovementReport:   movementReportUC,
		Replenishment:    replenishmentUC,
		Idempotency:      idemStore,
		IdempotencyTTL:   cfg.Redis.IdempotencyTTL(),
		JWTSecret:        cfg.JWT.Secret,
		Log:              log.Named("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
