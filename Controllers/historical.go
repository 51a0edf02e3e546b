package Controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/petrisor1218/spectra-logistics-saas-sub000/Reconciliation"
)

// HistoricalController serves lookups against the permanent trip archive.
type HistoricalController struct {
	Archive *Reconciliation.Archive
}

func NewHistoricalController(db *gorm.DB) *HistoricalController {
	return &HistoricalController{Archive: Reconciliation.NewArchive(db)}
}

type historicalSearchInput struct {
	VRIDs []string `json:"vrids"`
}

type historicalHit struct {
	DriverName string `json:"driver_name"`
	WeekLabel  string `json:"week_label"`
}

// Search resolves a list of trip ids against the archive in one query and
// returns the hits plus found/total counts.
func (c *HistoricalController) Search(ctx *fiber.Ctx) error {
	var input historicalSearchInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if len(input.VRIDs) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "vrids is required"})
	}

	found := c.Archive.FindByVRIDs(input.VRIDs)
	hits := make(map[string]historicalHit, len(found))
	for vrid, row := range found {
		hits[vrid] = historicalHit{DriverName: row.DriverName, WeekLabel: row.WeekLabel}
	}

	return ctx.JSON(fiber.Map{
		"trips": hits,
		"found": len(hits),
		"total": len(input.VRIDs),
	})
}
