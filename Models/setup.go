package Models

import (
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect(dbPath string) {
	connection, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open database %s: %v", dbPath, err)
	}
	DB = connection

	// Money fields marshal as plain JSON numbers everywhere
	// (Total_7_days etc. in the reconciliation result).
	decimal.MarshalJSONWithoutQuotes = true

	// 1. Base tables with no dependencies
	DB.AutoMigrate(&Company{})

	// 2. Tables keyed by company
	DB.AutoMigrate(
		&Driver{},
		&Vehicle{},
		&Payment{},
		&CompanyBalance{},
	)

	// 3. The permanent trip archive
	DB.AutoMigrate(&HistoricalTrip{})
}
