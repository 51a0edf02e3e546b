package Controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/petrisor1218/spectra-logistics-saas-sub000/Models"
	"github.com/petrisor1218/spectra-logistics-saas-sub000/Reconciliation"
)

// CompanyController manages the carrier, driver and vehicle tables the
// resolver matches against.
type CompanyController struct {
	DB *gorm.DB
}

func NewCompanyController(db *gorm.DB) *CompanyController {
	return &CompanyController{DB: db}
}

// GetCompanies lists all carriers with their commission rates.
func (c *CompanyController) GetCompanies(ctx *fiber.Ctx) error {
	var companies []Models.Company
	if result := c.DB.Order("name").Find(&companies); result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve companies"})
	}
	return ctx.JSON(companies)
}

type createCompanyInput struct {
	Name           string `json:"name" validate:"required"`
	CommissionRate string `json:"commission_rate"`
}

// CreateCompany registers a carrier. A missing or invalid rate falls back to
// the default commission.
func (c *CompanyController) CreateCompany(ctx *fiber.Ctx) error {
	var input createCompanyInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	company := Models.Company{Name: input.Name}
	if input.CommissionRate != "" {
		rate, err := decimal.NewFromString(input.CommissionRate)
		if err != nil || rate.IsNegative() {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid commission rate"})
		}
		company.CommissionRate = rate
	}

	if result := c.DB.Create(&company); result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create company"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(company)
}

// GetDrivers lists the driver mappings, optionally filtered by company.
func (c *CompanyController) GetDrivers(ctx *fiber.Ctx) error {
	query := c.DB.Preload("Company").Order("name")
	if companyID := ctx.Query("company_id"); companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}
	var drivers []Models.Driver
	if result := query.Find(&drivers); result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve drivers"})
	}
	return ctx.JSON(drivers)
}

type createVehicleInput struct {
	Registration string `json:"registration" validate:"required"`
	CompanyID    uint   `json:"company_id" validate:"required"`
}

// CreateVehicle maps a registration plate to a carrier. The plate is stored
// cleaned and uppercased, the same form the resolver looks up.
func (c *CompanyController) CreateVehicle(ctx *fiber.Ctx) error {
	var input createVehicleInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var company Models.Company
	if result := c.DB.First(&company, input.CompanyID); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Company not found"})
	}

	vehicle := Models.Vehicle{
		Registration: strings.ToUpper(Reconciliation.CleanRegistration(input.Registration)),
		CompanyID:    input.CompanyID,
		Active:       true,
	}
	if result := c.DB.Create(&vehicle); result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create vehicle"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(vehicle)
}

// GetVehicles lists vehicle mappings, optionally filtered by company.
func (c *CompanyController) GetVehicles(ctx *fiber.Ctx) error {
	query := c.DB.Preload("Company").Order("registration")
	if companyID := ctx.Query("company_id"); companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}
	var vehicles []Models.Vehicle
	if result := query.Find(&vehicles); result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve vehicles"})
	}
	return ctx.JSON(vehicles)
}

// DeactivateVehicle takes a vehicle out of resolution without deleting its
// history.
func (c *CompanyController) DeactivateVehicle(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vehicle ID"})
	}

	var vehicle Models.Vehicle
	if result := c.DB.First(&vehicle, id); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vehicle not found"})
	}

	vehicle.Active = false
	if result := c.DB.Save(&vehicle); result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update vehicle"})
	}
	return ctx.JSON(vehicle)
}
