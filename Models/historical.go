package Models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// HistoricalTrip is the permanent, append-only archive of every trip row ever
// ingested. A VRID that is already archived is never overwritten, so weekly
// re-uploads stay idempotent. RawData keeps the original manifest row for
// auditing.
type HistoricalTrip struct {
	gorm.Model
	VRID       string         `json:"vrid" gorm:"uniqueIndex;not null"`
	DriverName string         `json:"driver_name"`
	WeekLabel  string         `json:"week_label" gorm:"index"`
	RawData    datatypes.JSON `json:"raw_data"`
}

func (HistoricalTrip) TableName() string {
	return "historical_trips"
}
