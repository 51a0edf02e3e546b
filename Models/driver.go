package Models

import (
	"gorm.io/gorm"
)

// Driver maps a normalized person name to the company it drives for. A driver
// belongs to exactly one company at a time; name variants are derived at
// resolution time and never stored.
type Driver struct {
	gorm.Model
	Name      string  `json:"name" gorm:"uniqueIndex;not null"`
	CompanyID uint    `json:"company_id" gorm:"index;not null"`
	Company   Company `json:"company" gorm:"foreignKey:CompanyID"`
}

func (Driver) TableName() string {
	return "drivers"
}
