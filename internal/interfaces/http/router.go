package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/roofing-ops/internal/application/auth"
	"github.com/jhoicas/roofing-ops/internal/application/export"
	"github.com/jhoicas/roofing-ops/internal/application/kitting"
	"github.com/jhoicas/roofing-ops/internal/application/pulltag"
	"github.com/jhoicas/roofing-ops/internal/application/report"
	"github.com/jhoicas/roofing-ops/internal/application/usecase"
)

// RouterDeps dependencies for the router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	WarehouseUC *usecase.WarehouseUseCase
	ItemUC      *usecase.ItemUseCase
	RoofTypeUC  *usecase.RoofTypeUseCase
	CommunityUC *usecase.CommunityUseCase
	UploadUC    *pulltag.UploadUseCase
	RequestUC   *pulltag.RequestUseCase
	KittingUC   *kitting.UseCase
	ExportUC    *export.UseCase
	ReportUC    *report.UseCase
	JWTSecret   string
}

// Router registers the API routes. Every route except login needs a Bearer token;
// each dashboard area is gated by the roles allowed to open its screen.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	authn := AuthMiddleware(deps.JWTSecret)
	reference := RequireScreen(auth.ScreenReference)

	// Users
	userHandler := NewUserHandler(deps.UserUC)
	api.Get("/users/me", authn, userHandler.Me)
	users := api.Group("/users", authn, RequireScreen(auth.ScreenUsers))
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)

	// Reference data: readable by every signed-in user, editable from the reference screen
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	api.Get("/warehouses", authn, warehouseHandler.List)
	api.Post("/warehouses", authn, reference, warehouseHandler.Create)
	api.Delete("/warehouses/:id", authn, reference, warehouseHandler.Delete)

	refHandler := NewReferenceHandler(deps.ItemUC, deps.RoofTypeUC, deps.CommunityUC)
	api.Get("/items", authn, refHandler.ListItems)
	api.Post("/items", authn, reference, refHandler.CreateItem)
	api.Put("/items/:code", authn, reference, refHandler.UpdateItem)
	api.Delete("/items/:code", authn, reference, refHandler.DeleteItem)
	api.Get("/roof-types", authn, reference, refHandler.ListRoofTypes)
	api.Post("/roof-types", authn, reference, refHandler.CreateRoofType)
	api.Delete("/roof-types", authn, reference, refHandler.DeleteRoofType)
	api.Get("/communities", authn, reference, refHandler.SearchCommunities)
	api.Post("/communities", authn, reference, refHandler.CreateCommunity)
	api.Put("/communities/:id", authn, reference, refHandler.UpdateCommunity)
	api.Delete("/communities/:id", authn, reference, refHandler.DeleteCommunity)

	// Budgets
	budgetHandler := NewBudgetHandler(deps.UploadUC)
	api.Post("/budgets", authn, RequireScreen(auth.ScreenBudgets), budgetHandler.Upload)

	// Requests
	requestHandler := NewRequestHandler(deps.RequestUC, deps.ReportUC)
	requests := api.Group("/requests", authn, RequireScreen(auth.ScreenRequests))
	requests.Post("/preview", requestHandler.Preview)
	requests.Post("/", requestHandler.Submit)
	requests.Get("/recent", requestHandler.Recent)
	requests.Get("/find", requestHandler.Find)
	requests.Get("/:id", requestHandler.Batch)
	requests.Get("/:id/summary.pdf", requestHandler.Summary)

	// Kitting
	kittingHandler := NewKittingHandler(deps.KittingUC, deps.ReportUC)
	kit := api.Group("/kitting", authn, RequireScreen(auth.ScreenKitting))
	kit.Get("/batches", requestHandler.Kittable)
	kit.Get("/batches/:id", requestHandler.Batch)
	kit.Post("/batches/:id", kittingHandler.KitBatch)
	kit.Get("/summary.pdf", kittingHandler.Summary)
	api.Post("/addon", authn, RequireScreen(auth.ScreenAddon), kittingHandler.Addon)

	// Backorders
	backorders := api.Group("/backorders", authn, RequireScreen(auth.ScreenBackorder))
	backorders.Get("/", kittingHandler.OpenBackorders)
	backorders.Post("/:id", kittingHandler.Resolve)

	// Exports
	exportHandler := NewExportHandler(deps.ExportUC)
	exports := api.Group("/exports", authn, RequireScreen(auth.ScreenExports))
	exports.Post("/preview", exportHandler.Preview)
	exports.Post("/mark", exportHandler.Mark)
	exports.Post("/", exportHandler.Export)
	exports.Get("/:id", exportHandler.Reprint)
}
