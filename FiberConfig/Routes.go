package FiberConfig

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"

	"github.com/petrisor1218/spectra-logistics-saas-sub000/Config"
	"github.com/petrisor1218/spectra-logistics-saas-sub000/Controllers"
	"github.com/petrisor1218/spectra-logistics-saas-sub000/Reconciliation"
	"github.com/petrisor1218/spectra-logistics-saas-sub000/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, registry *Reconciliation.SessionRegistry) {
	settings := Config.Get()
	logger := Config.GetLogger()

	// Initialize handlers
	reconciliationController := Controllers.NewReconciliationController(db, registry, logger, settings.FallbackCompany)
	mappingController := Controllers.NewMappingController(db, registry)
	historicalController := Controllers.NewHistoricalController(db)
	balanceController := Controllers.NewBalanceController(db)
	companyController := Controllers.NewCompanyController(db)

	// API group
	api := app.Group("/api")

	// Weekly batch: upload + run, results, workbook export
	reconciliation := api.Group("/reconciliation")
	reconciliation.Post("/run", reconciliationController.RunReconciliation)
	reconciliation.Get("/:week", reconciliationController.GetResult)
	reconciliation.Get("/:week/export", reconciliationController.ExportResult)

	// Pending-mapping queue
	mappings := api.Group("/mappings")
	mappings.Get("/:week", mappingController.GetPending)
	mappings.Post("/confirm", mappingController.ConfirmMapping)

	// Historical archive search
	api.Post("/historical/search", historicalController.Search)

	// Balances and payments
	balances := api.Group("/balances")
	balances.Get("/:company_id", balanceController.GetBalance)
	balances.Get("/:company_id/payments", balanceController.GetPayments)
	api.Post("/payments", balanceController.ApplyPayment)
	api.Delete("/payments/:id", balanceController.ReversePayment)

	// Carrier, driver and vehicle tables the resolver matches against
	companies := api.Group("/companies")
	companies.Get("/", companyController.GetCompanies)
	companies.Post("/", companyController.CreateCompany)
	api.Get("/drivers", companyController.GetDrivers)
	vehicles := api.Group("/vehicles")
	vehicles.Get("/", companyController.GetVehicles)
	vehicles.Post("/", companyController.CreateVehicle)
	vehicles.Put("/:id/deactivate", companyController.DeactivateVehicle)
}

func FiberConfig(db *gorm.DB, registry *Reconciliation.SessionRegistry) {
	fmt.Println("Server Up...")
	app := fiber.New()
	app.Use(middleware.RequestLogger(Config.GetLogger()))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression, // 2
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupRoutes(app, db, registry)

	app.Listen(":" + Config.Get().Port)
}
