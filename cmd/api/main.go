package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/roofing-ops/internal/application/auth"
	"github.com/jhoicas/roofing-ops/internal/application/export"
	"github.com/jhoicas/roofing-ops/internal/application/kitting"
	"github.com/jhoicas/roofing-ops/internal/application/pulltag"
	"github.com/jhoicas/roofing-ops/internal/application/report"
	"github.com/jhoicas/roofing-ops/internal/application/usecase"
	infrabudget "github.com/jhoicas/roofing-ops/internal/infrastructure/budget"
	infrapdf "github.com/jhoicas/roofing-ops/internal/infrastructure/pdf"
	"github.com/jhoicas/roofing-ops/internal/infrastructure/postgres"
	"github.com/jhoicas/roofing-ops/internal/infrastructure/spreadsheet"
	httpRouter "github.com/jhoicas/roofing-ops/internal/interfaces/http"
	"github.com/jhoicas/roofing-ops/pkg/config"
	"github.com/jhoicas/roofing-ops/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("timezone", cfg.App.Timezone).
		Msg("starting")

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.App.Timezone).Msg("load timezone")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}

	userRepo := postgres.NewUserRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	roofTypeRepo := postgres.NewRoofTypeRepository(pool)
	communityRepo := postgres.NewCommunityRuleRepository(pool)
	pulltagRepo := postgres.NewPulltagRepository(pool)
	kittingLogRepo := postgres.NewKittingLogRepository(pool)
	backorderRepo := postgres.NewBatchBackorderRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	uploadUC := pulltag.NewUploadUseCase(
		infrabudget.NewPDFParser(log.Component("budget")),
		pulltagRepo, itemRepo, roofTypeRepo, communityRepo,
		pulltag.GeneratorConfig{
			FractionalItems: cfg.Pulltag.FractionalItems,
			JobPrefixLen:    cfg.Pulltag.JobPrefixLen,
			Location:        loc,
		},
		log.Component("upload"),
	)
	requestUC := pulltag.NewRequestUseCase(pulltagRepo, loc, log.Component("requests"))
	kittingUC := kitting.NewUseCase(pulltagRepo, backorderRepo, warehouseRepo, itemRepo, txRunner, loc, log.Component("kitting"))
	exportUC := export.NewUseCase(kittingLogRepo, pulltagRepo, itemRepo, spreadsheet.NewExcelWriter(), cfg.Export.DefaultUOM, loc, log.Component("export"))

	// PDF: request and kitting summaries
	reportUC := report.NewUseCase(kittingLogRepo, pulltagRepo, infrapdf.NewSummaryRenderer(cfg.App.Name, loc))

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    25 << 20, // budget PDFs
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Roofing Ops API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db unavailable", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		UserUC:      usecase.NewUserUseCase(userRepo),
		WarehouseUC: usecase.NewWarehouseUseCase(warehouseRepo),
		ItemUC:      usecase.NewItemUseCase(itemRepo),
		RoofTypeUC:  usecase.NewRoofTypeUseCase(roofTypeRepo),
		CommunityUC: usecase.NewCommunityUseCase(communityRepo, itemRepo),
		UploadUC:    uploadUC,
		RequestUC:   requestUC,
		KittingUC:   kittingUC,
		ExportUC:    exportUC,
		ReportUC:    reportUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, closing server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("stopped")
}
