package Controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/petrisor1218/spectra-logistics-saas-sub000/Models"
	"github.com/petrisor1218/spectra-logistics-saas-sub000/Reconciliation"
)

// BalanceController serves the per-company, per-period outstanding view and
// the payment apply/reverse operations behind it.
type BalanceController struct {
	DB *gorm.DB
}

func NewBalanceController(db *gorm.DB) *BalanceController {
	return &BalanceController{DB: db}
}

// GetBalance returns the balance row for a company and period.
func (c *BalanceController) GetBalance(ctx *fiber.Ctx) error {
	companyID, err := strconv.Atoi(ctx.Params("company_id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid company ID"})
	}
	period := ctx.Query("period")
	if period == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "period is required"})
	}

	balance, err := Reconciliation.BalanceFor(c.DB, uint(companyID), period)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No balance for this company and period"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load balance"})
	}
	return ctx.JSON(balance)
}

type applyPaymentInput struct {
	CompanyID   uint   `json:"company_id" validate:"required"`
	PeriodLabel string `json:"period_label" validate:"required"`
	Amount      string `json:"amount" validate:"required"`
	Date        string `json:"date"`
}

// ApplyPayment records a carrier payment against a period and returns the
// recomputed balance.
func (c *BalanceController) ApplyPayment(ctx *fiber.Ctx) error {
	var input applyPaymentInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	amount, err := Reconciliation.ParseAmount(input.Amount)
	if err != nil || !amount.IsPositive() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment amount"})
	}

	date := time.Now()
	if input.Date != "" {
		parsed, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date format. Use YYYY-MM-DD"})
		}
		date = parsed
	}

	// The ledger clamps outstanding at zero, but an overpayment beyond the
	// rounding epsilon is almost always a fat-fingered amount.
	if balance, err := Reconciliation.BalanceFor(c.DB, input.CompanyID, input.PeriodLabel); err == nil {
		overshoot := balance.TotalPaid.Add(amount).Sub(balance.TotalInvoiced)
		if overshoot.GreaterThan(Models.RoundingEpsilon) && balance.TotalInvoiced.IsPositive() {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":       "Payment exceeds the amount invoiced for this period",
				"outstanding": balance.Outstanding,
			})
		}
	}

	balance, err := Reconciliation.ApplyPayment(c.DB, input.CompanyID, input.PeriodLabel, amount, date)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to apply payment"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(balance)
}

// ReversePayment undoes a recorded payment when its row is deleted.
func (c *BalanceController) ReversePayment(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID"})
	}

	balance, err := Reconciliation.ReversePayment(c.DB, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reverse payment"})
	}
	return ctx.JSON(balance)
}

// GetPayments lists a company's payments, newest first.
func (c *BalanceController) GetPayments(ctx *fiber.Ctx) error {
	companyID, err := strconv.Atoi(ctx.Params("company_id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid company ID"})
	}

	var payments []Models.Payment
	result := c.DB.Where("company_id = ?", companyID).Order("date DESC").Find(&payments)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve payments"})
	}

	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return ctx.JSON(fiber.Map{
		"payments":   payments,
		"total_paid": total,
	})
}
