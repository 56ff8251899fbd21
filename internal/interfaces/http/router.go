package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/estoque-api/internal/application/auth"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/application/usecase"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/infrastructure/cache"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC           *auth.AuthUseCase
	CategoryUC       *usecase.CategoryUseCase
	ProductUC        *usecase.ProductUseCase
	RegisterMovement MovementRegistrar
	MovementQuery    MovementQuerier
	MovementReport   MovementReporter
	Replenishment    *inventory.ReplenishmentUseCase
	Idempotency      cache.IdempotencyStore
	IdempotencyTTL   time.Duration
	JWTSecret        string
	Log              *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api")
	requireAuth := AuthMiddleware(deps.JWTSecret)
	adminOnly := RequireRole(entity.AccessLevelAdmin)

	// Auth (público, salvo /me)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, log)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", requireAuth, authHandler.Me)

	// Categories (protegido; borrar solo admin)
	categories := api.Group("/categories", requireAuth)
	categoryHandler := NewCategoryHandler(deps.CategoryUC, log)
	categories.Post("/", categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Put("/:id", categoryHandler.Update)
	categories.Delete("/:id", adminOnly, categoryHandler.Delete)

	movementHandler := NewMovementHandler(deps.RegisterMovement, deps.MovementQuery, deps.MovementReport, log)

	// Products (protegido). low-stock antes de /:id.
	products := api.Group("/products", requireAuth)
	productHandler := NewProductHandler(deps.ProductUC, deps.Replenishment, log)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)
	products.Get("/:id/movements", movementHandler.ListByProduct)

	// Movements (protegido)
	movements := api.Group("/movements", requireAuth)
	movements.Post("/", Idempotency(deps.Idempotency, deps.IdempotencyTTL, log), movementHandler.Register)
	movements.Get("/", movementHandler.List)
	movements.Get("/report.pdf", movementHandler.Report)
}
