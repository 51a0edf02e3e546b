package Controllers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/petrisor1218/spectra-logistics-saas-sub000/Reconciliation"
)

var validate = validator.New()

// MappingController exposes the pending-mapping queue of a held batch.
type MappingController struct {
	DB       *gorm.DB
	Registry *Reconciliation.SessionRegistry
}

func NewMappingController(db *gorm.DB, registry *Reconciliation.SessionRegistry) *MappingController {
	return &MappingController{DB: db, Registry: registry}
}

// GetPending lists the unconfirmed driver names of a held batch.
func (c *MappingController) GetPending(ctx *fiber.Ctx) error {
	session := c.Registry.Get(ctx.Params("week"))
	if session == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No batch held for this week"})
	}
	return ctx.JSON(fiber.Map{
		"week_label":       session.WeekLabel,
		"pending_mappings": session.Pending(),
	})
}

type confirmMappingInput struct {
	WeekLabel  string `json:"week_label" validate:"required"`
	DriverName string `json:"driver_name" validate:"required"`
	CompanyID  uint   `json:"company_id" validate:"required"`
}

// ConfirmMapping persists the operator's company choice for a pending driver
// name and re-runs the whole held batch. The response carries the updated
// driver row and the fresh reconciliation result; other pending entries are
// untouched.
func (c *MappingController) ConfirmMapping(ctx *fiber.Ctx) error {
	var input confirmMappingInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	session := c.Registry.Get(input.WeekLabel)
	if session == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No batch held for this week"})
	}

	driver, result, err := session.Confirm(input.DriverName, input.CompanyID)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"driver": driver,
		"rerun":  toRunResponse(result, 0),
	})
}
