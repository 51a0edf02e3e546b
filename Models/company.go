package Models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Commission rates observed in production: one designated carrier retains 2%,
// every other carrier 4%.
var (
	DefaultCommissionRate = decimal.NewFromFloat(0.04)
	ReducedCommissionRate = decimal.NewFromFloat(0.02)
)

// Company is a carrier subcontractor. Invoiced amounts are attributed to
// exactly one company per trip and commission is retained at its rate.
type Company struct {
	gorm.Model
	Name           string          `json:"name" gorm:"uniqueIndex;not null"`
	CommissionRate decimal.Decimal `json:"commission_rate" gorm:"type:numeric;not null"`
}

// CompanyByName looks a company up by its exact name.
func CompanyByName(db *gorm.DB, name string) (*Company, error) {
	var company Company
	if err := db.Where("name = ?", name).First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// BeforeCreate fills in the default rate so operator-created companies never
// end up with a zero commission by accident. A negative rate is rejected by
// resetting it to the default as well.
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.CommissionRate.IsZero() || c.CommissionRate.IsNegative() {
		c.CommissionRate = DefaultCommissionRate
	}
	return nil
}
