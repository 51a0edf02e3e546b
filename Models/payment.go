package Models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is one amount received from a carrier against a billing period.
// Payments are append-only: deleting one reverses the company's running paid
// total instead of rewriting history (the row itself is soft-deleted).
type Payment struct {
	gorm.Model
	CompanyID   uint            `json:"company_id" gorm:"index;not null"`
	Company     Company         `json:"company" gorm:"foreignKey:CompanyID"`
	PeriodLabel string          `json:"period_label" gorm:"index;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric;not null"`
	Date        time.Time       `json:"date"`
}

func (Payment) TableName() string {
	return "payments"
}
