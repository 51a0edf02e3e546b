package Reconciliation

import (
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/petrisor1218/spectra-logistics-saas-sub000/Models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := db.AutoMigrate(
		&Models.Company{},
		&Models.Driver{},
		&Models.Vehicle{},
		&Models.Payment{},
		&Models.CompanyBalance{},
		&Models.HistoricalTrip{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func seedCompany(t *testing.T, db *gorm.DB, name string, rate decimal.Decimal) Models.Company {
	t.Helper()
	company := Models.Company{Name: name, CommissionRate: rate}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed company %s: %v", name, err)
	}
	return company
}

func seedDriver(t *testing.T, db *gorm.DB, name string, companyID uint) Models.Driver {
	t.Helper()
	driver := Models.Driver{Name: Normalize(name), CompanyID: companyID}
	if err := db.Create(&driver).Error; err != nil {
		t.Fatalf("seed driver %s: %v", name, err)
	}
	return driver
}

func seedVehicle(t *testing.T, db *gorm.DB, registration string, companyID uint, active bool) Models.Vehicle {
	t.Helper()
	vehicle := Models.Vehicle{Registration: registration, CompanyID: companyID, Active: active}
	if err := db.Create(&vehicle).Error; err != nil {
		t.Fatalf("seed vehicle %s: %v", registration, err)
	}
	return vehicle
}

func buildContext(t *testing.T, db *gorm.DB, fallback string) *ResolutionContext {
	t.Helper()
	ctx, err := BuildResolutionContext(db, fallback)
	if err != nil {
		t.Fatalf("build context: %v", err)
	}
	return ctx
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
