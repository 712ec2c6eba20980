package http

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/aguahielo/movimientos-api/internal/application/inventory"
	"github.com/aguahielo/movimientos-api/internal/application/sales"
	"github.com/aguahielo/movimientos-api/internal/infrastructure/notify"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Movements *inventory.MovementUseCase
	Queries   *inventory.QueryUseCase
	Sales     *sales.UseCase
	Hub       *notify.Hub
	Metrics   http.Handler // nil = sin /metrics
	Tokens    TokenVerifier
	AppName   string
	Heartbeat time.Duration
	Done      <-chan struct{}
	Log       zerolog.Logger
}

// Router registra middlewares y rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.Tokens))

	catalogHandler := NewCatalogHandler(deps.Queries, deps.Log)
	protected.Get("/storages", catalogHandler.ListStorages)
	protected.Get("/elements", catalogHandler.ListElements)

	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Movements, deps.Queries, deps.Log)
	invGroup.Get("/state", inventoryHandler.GetState)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Post("/movements/entry", inventoryHandler.Entry)
	invGroup.Post("/movements/relocation", inventoryHandler.Relocation)
	invGroup.Post("/movements/production", inventoryHandler.Production)
	invGroup.Post("/movements/damage", inventoryHandler.Damage)
	invGroup.Post("/movements/unpack", inventoryHandler.Unpack)
	invGroup.Post("/movements/manual", RequireRole(RoleAdmin, RoleBodeguero), inventoryHandler.Manual)
	if deps.Hub != nil {
		eventsHandler := NewEventsHandler(deps.Hub, deps.Heartbeat, deps.Done, deps.Log)
		invGroup.Get("/events", eventsHandler.Stream)
	}

	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.Sales, deps.Log)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Post("/:id/void", saleHandler.Void)
}
