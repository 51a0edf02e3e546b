package Models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Balance statuses. Status is a pure function of outstanding vs invoiced and
// is recomputed on every write, never set by hand.
const (
	BalanceStatusPending = "pending"
	BalanceStatusPartial = "partial"
	BalanceStatusPaid    = "paid"
)

// RoundingEpsilon is the tolerance under which an outstanding balance counts
// as settled (sub-unit rounding noise from the feeds).
var RoundingEpsilon = decimal.NewFromFloat(0.01)

// CompanyBalance is the per-company, per-period outstanding view: invoiced
// totals merged from reconciliation runs against recorded payments.
// Outstanding is clamped at zero, it never goes negative.
type CompanyBalance struct {
	gorm.Model
	CompanyID     uint            `json:"company_id" gorm:"index:idx_company_period,unique;not null"`
	Company       Company         `json:"company" gorm:"foreignKey:CompanyID"`
	PeriodLabel   string          `json:"period_label" gorm:"index:idx_company_period,unique;not null"`
	TotalInvoiced decimal.Decimal `json:"total_invoiced" gorm:"type:numeric"`
	TotalPaid     decimal.Decimal `json:"total_paid" gorm:"type:numeric"`
	Outstanding   decimal.Decimal `json:"outstanding" gorm:"type:numeric"`
	Status        string          `json:"status"`
}

func (CompanyBalance) TableName() string {
	return "company_balances"
}

// Recompute applies the balance invariant:
// outstanding = max(0, invoiced - min(paid, invoiced)).
func (b *CompanyBalance) Recompute() {
	paid := b.TotalPaid
	if paid.GreaterThan(b.TotalInvoiced) {
		paid = b.TotalInvoiced
	}
	b.Outstanding = b.TotalInvoiced.Sub(paid)
	if b.Outstanding.IsNegative() {
		b.Outstanding = decimal.Zero
	}

	switch {
	case b.Outstanding.LessThan(RoundingEpsilon) && b.TotalInvoiced.IsPositive():
		b.Status = BalanceStatusPaid
	case b.TotalPaid.IsPositive():
		b.Status = BalanceStatusPartial
	default:
		b.Status = BalanceStatusPending
	}
}
