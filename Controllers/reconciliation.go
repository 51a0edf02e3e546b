package Controllers

import (
	"fmt"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/petrisor1218/spectra-logistics-saas-sub000/Reconciliation"
)

// ReconciliationController handles batch upload, results and export.
type ReconciliationController struct {
	DB              *gorm.DB
	Registry        *Reconciliation.SessionRegistry
	Log             *logrus.Logger
	FallbackCompany string
}

func NewReconciliationController(db *gorm.DB, registry *Reconciliation.SessionRegistry, log *logrus.Logger, fallbackCompany string) *ReconciliationController {
	return &ReconciliationController{DB: db, Registry: registry, Log: log, FallbackCompany: fallbackCompany}
}

// runResponse is the API view of one reconciliation run.
type runResponse struct {
	WeekLabel   string                                  `json:"week_label"`
	Report      map[string]Reconciliation.CompanyReport `json:"report"`
	Pending     []Reconciliation.PendingMapping         `json:"pending_mappings"`
	Anomalies   []Reconciliation.Anomaly                `json:"anomalies"`
	Skipped     int                                     `json:"skipped_rows"`
	Quarantined int                                     `json:"quarantined_rows"`
	Discrepancy *Reconciliation.Discrepancy             `json:"discrepancy,omitempty"`
}

func toRunResponse(result *Reconciliation.Result, quarantined int) runResponse {
	return runResponse{
		WeekLabel:   result.WeekLabel,
		Report:      result.Report(),
		Pending:     result.Pending,
		Anomalies:   result.Anomalies,
		Skipped:     result.Skipped,
		Quarantined: quarantined,
		Discrepancy: result.Discrepancy,
	}
}

// RunReconciliation ingests the three weekly workbooks (multipart fields
// "trips", "invoice7", "invoice30"), holds the batch under its week label and
// returns the first run's result. An "invoice7_format"/"invoice30_format"
// value of "payment-details" switches that feed to the fixed-column variant.
func (c *ReconciliationController) RunReconciliation(ctx *fiber.Ctx) error {
	weekLabel := ctx.FormValue("week_label")
	if weekLabel == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "week_label is required"})
	}

	trips, tripsQuarantined, err := c.readTrips(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	inv7, q7, err := c.readInvoices(ctx, "invoice7")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	inv30, q30, err := c.readInvoices(ctx, "invoice30")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	session := Reconciliation.NewBatchSession(c.DB, c.Log, c.FallbackCompany, weekLabel, trips, inv7, inv30)
	result, err := session.Run()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Reconciliation failed"})
	}
	c.Registry.Put(session)

	return ctx.JSON(toRunResponse(result, tripsQuarantined+q7+q30))
}

// GetResult returns the latest result of a held batch.
func (c *ReconciliationController) GetResult(ctx *fiber.Ctx) error {
	session := c.Registry.Get(ctx.Params("week"))
	if session == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No batch held for this week"})
	}
	result := session.Result()
	if result == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Batch has not been run yet"})
	}
	return ctx.JSON(toRunResponse(result, 0))
}

// ExportResult streams the latest result as an .xlsx workbook.
func (c *ReconciliationController) ExportResult(ctx *fiber.Ctx) error {
	session := c.Registry.Get(ctx.Params("week"))
	if session == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No batch held for this week"})
	}
	result := session.Result()
	if result == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Batch has not been run yet"})
	}

	buf, err := Reconciliation.ExportWorkbook(result)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fmt.Sprintf("Failed to build workbook: %v", err)})
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("reconciliation_%s_%s.xlsx", session.WeekLabel, timestamp)
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	ctx.Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	return ctx.Send(buf.Bytes())
}

func (c *ReconciliationController) readTrips(ctx *fiber.Ctx) ([]Reconciliation.TripRecord, int, error) {
	file, err := ctx.FormFile("trips")
	if err != nil {
		return nil, 0, fmt.Errorf("trip feed file is required")
	}
	src, err := file.Open()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open trip feed")
	}
	defer src.Close()
	return Reconciliation.ReadTripFeed(src)
}

func (c *ReconciliationController) readInvoices(ctx *fiber.Ctx, field string) ([]Reconciliation.InvoiceRow, int, error) {
	file, err := ctx.FormFile(field)
	if err != nil {
		return nil, 0, fmt.Errorf("%s feed file is required", field)
	}
	src, err := file.Open()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open %s feed", field)
	}
	defer src.Close()
	return readInvoiceFile(src, ctx.FormValue(field+"_format"))
}

func readInvoiceFile(src multipart.File, format string) ([]Reconciliation.InvoiceRow, int, error) {
	if format == "payment-details" {
		return Reconciliation.ReadPaymentDetails(src)
	}
	return Reconciliation.ReadInvoiceFeed(src)
}
