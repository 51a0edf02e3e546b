package Reconciliation

import (
	"encoding/json"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/petrisor1218/spectra-logistics-saas-sub000/Config"
	"github.com/petrisor1218/spectra-logistics-saas-sub000/Models"
)

// Archive wraps the permanent historical-trip store. Every manifest row ever
// ingested ends up here exactly once; invoice lines whose VRID is missing
// from the current week's manifest are backfilled from it.
type Archive struct {
	DB *gorm.DB
}

func NewArchive(db *gorm.DB) *Archive {
	return &Archive{DB: db}
}

// Record archives the batch's trips. Inserts are keyed by VRID and a VRID
// already present is left untouched, so re-uploading a week is a no-op.
func (a *Archive) Record(trips []TripRecord, weekLabel string) error {
	if len(trips) == 0 {
		return nil
	}
	rows := make([]Models.HistoricalTrip, 0, len(trips))
	for _, trip := range trips {
		if trip.VRID == "" {
			continue
		}
		raw, err := json.Marshal(trip.Raw)
		if err != nil {
			raw = nil
		}
		rows = append(rows, Models.HistoricalTrip{
			VRID:       trip.VRID,
			DriverName: trip.DriverName,
			WeekLabel:  weekLabel,
			RawData:    raw,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return a.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "vr_id"}},
		DoNothing: true,
	}).Create(&rows).Error
}

// FindByVRIDs fetches archived trips for the given ids in one query. A failed
// lookup is logged and returns an empty map: the affected lines simply stay
// unresolved instead of aborting the batch.
func (a *Archive) FindByVRIDs(vrids []string) map[string]Models.HistoricalTrip {
	found := map[string]Models.HistoricalTrip{}
	if len(vrids) == 0 {
		return found
	}
	var rows []Models.HistoricalTrip
	if err := a.DB.Where("vr_id IN ?", vrids).Find(&rows).Error; err != nil {
		Config.LogError(Config.GetLogger(), "archive.go", "FindByVRIDs", "historical lookup", len(vrids), err)
		return found
	}
	for _, row := range rows {
		found[row.VRID] = row
	}
	return found
}

// Count returns the archive size, used by the nightly report job.
func (a *Archive) Count() (int64, error) {
	var n int64
	err := a.DB.Model(&Models.HistoricalTrip{}).Count(&n).Error
	return n, err
}
