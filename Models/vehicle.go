package Models

import (
	"gorm.io/gorm"
)

// Vehicle maps a registration plate to the company that operates it. Vehicle
// evidence outranks driver evidence during resolution, so only active rows
// take part in matching.
type Vehicle struct {
	gorm.Model
	Registration string  `json:"registration" gorm:"uniqueIndex;not null"`
	CompanyID    uint    `json:"company_id" gorm:"index;not null"`
	Company      Company `json:"company" gorm:"foreignKey:CompanyID"`
	Active       bool    `json:"active" gorm:"default:true"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}
