package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-bridge/internal/application/auth"
	"github.com/jhoicas/almacen-bridge/internal/application/backup"
	"github.com/jhoicas/almacen-bridge/internal/application/inventory"
	"github.com/jhoicas/almacen-bridge/internal/application/plc"
	"github.com/jhoicas/almacen-bridge/internal/application/processimage"
	"github.com/jhoicas/almacen-bridge/internal/application/usecase"
	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName    string
	Image      *processimage.Image
	Link       *plc.LinkManager
	NodeSet    NodeSetExporter
	Engine     *inventory.Engine
	AuthUC     *auth.AuthUseCase
	UserUC     *usecase.UserUseCase
	ProductUC  *usecase.ProductUseCase
	CategoryUC *usecase.CategoryUseCase
	CabinetUC  *usecase.CabinetUseCase
	Backups    *backup.Service
	Migrator   SchemaMigrator
	JWTSecret  string
	Log        zerolog.Logger
}

// Middleware registra recover, request id y access log (en zerolog).
func Middleware(app *fiber.App, log zerolog.Logger) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format:     "${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		TimeFormat: "2006-01-02T15:04:05",
		Output:     log.With().Str("component", "access").Logger(),
	}))
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	system := NewSystemHandler(deps.AppName, deps.Backups, deps.Migrator, deps.Log)
	app.Get("/health", system.Health)
	app.Post("/backup-now", system.BackupNow)
	app.Post("/error", system.ReportError)

	// Imagen de proceso y enlace PLC (clientes PLC/HMI, sin sesión)
	opc := NewOPCUAHandler(deps.Image, deps.Link, deps.NodeSet)
	opcua := app.Group("/opcua")
	opcua.Get("/get-item-count", opc.GetItemCount)
	opcua.Post("/set-item-count", opc.SetItemCount)
	opcua.Get("/get-traffic-light", opc.GetTrafficLight)
	opcua.Post("/set-traffic-light", opc.SetTrafficLight)
	opcua.Get("/get-hmi-status", opc.GetHMIStatus)
	opcua.Get("/get-hmi-command", opc.GetHMICommand)
	opcua.Post("/set-hmi-command", opc.SetHMICommand)
	opcua.Get("/status", opc.Status)
	opcua.Post("/read", opc.Read)
	opcua.Post("/write", opc.Write)
	opcua.Post("/update", opc.Update)
	opcua.Get("/nodeset", opc.NodeSet)
	app.Post("/traffic-light", opc.TrafficLight)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC)
	app.Post("/auth/login", authHandler.Login)
	app.Post("/rfid/auth", authHandler.RFIDAuth)

	// Movimientos de stock: el operador se identifica por RFID o por sesión
	inv := NewInventoryHandler(deps.Engine)
	app.Post("/load", OptionalAuth(deps.JWTSecret), inv.Load)
	app.Post("/get", inv.Withdraw)

	// Rutas protegidas (requieren Bearer Token); las escrituras de catálogo solo para admin
	jwtAuth := AuthMiddleware(deps.JWTSecret)
	adminOnly := RequireRole(entity.RoleAdmin)

	app.Post("/reset-database", jwtAuth, adminOnly, system.ResetDatabase)

	transactions := app.Group("/transactions", jwtAuth)
	transactions.Get("/", inv.ListTransactions)
	transactions.Get("/report", inv.Report)

	users := app.Group("/users", jwtAuth, adminOnly)
	userHandler := NewUserHandler(deps.UserUC)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)

	products := app.Group("/products", jwtAuth)
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", adminOnly, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	catalog := NewCatalogHandler(deps.CategoryUC, deps.CabinetUC)
	categories := app.Group("/categories", jwtAuth)
	categories.Post("/", adminOnly, catalog.CreateCategory)
	categories.Get("/", catalog.ListCategories)

	cabinets := app.Group("/cabinets", jwtAuth)
	cabinets.Post("/", adminOnly, catalog.CreateCabinet)
	cabinets.Get("/", catalog.ListCabinets)
	cabinets.Post("/:id/shelves", adminOnly, catalog.CreateShelf)
	cabinets.Get("/:id/shelves", catalog.ListShelves)

	app.Post("/shelves/:id/categories", jwtAuth, adminOnly, catalog.AddShelfCategory)
}
