package Reconciliation

import (
	"testing"

	"github.com/petrisor1218/spectra-logistics-saas-sub000/Models"
)

func TestPendingQueue_EnqueueDeduplicates(t *testing.T) {
	t.Parallel()

	q := NewPendingQueue()
	q.Enqueue(PendingMapping{DriverName: "jurubita razvan", Suggestion: "Alpha Trans"})
	q.Enqueue(PendingMapping{DriverName: "jurubita razvan", Suggestion: "Beta Cargo"})

	entries := q.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	// First enqueue wins.
	if entries[0].Suggestion != "Alpha Trans" {
		t.Fatalf("dedup must keep the first suggestion, got %q", entries[0].Suggestion)
	}
}

func TestPendingQueue_EntriesSorted(t *testing.T) {
	t.Parallel()

	q := NewPendingQueue()
	q.Enqueue(PendingMapping{DriverName: "zeta person"})
	q.Enqueue(PendingMapping{DriverName: "alpha person"})

	entries := q.Entries()
	if entries[0].DriverName != "alpha person" || entries[1].DriverName != "zeta person" {
		t.Fatalf("entries must sort by driver name, got %+v", entries)
	}
}

func TestPendingQueue_ConfirmCreatesDriver(t *testing.T) {
	db := testDB(t)
	company := seedCompany(t, db, "Alpha Trans", dec("0.04"))

	q := NewPendingQueue()
	q.Enqueue(PendingMapping{DriverName: "new person"})
	q.Enqueue(PendingMapping{DriverName: "other person"})

	driver, err := q.Confirm(db, "New Person", company.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if driver.Name != "new person" || driver.CompanyID != company.ID {
		t.Fatalf("driver row wrong: %+v", driver)
	}

	if q.Len() != 1 {
		t.Fatalf("only the confirmed entry may leave the queue, len=%d", q.Len())
	}
	if q.Entries()[0].DriverName != "other person" {
		t.Fatalf("wrong entry removed: %+v", q.Entries())
	}
}

func TestPendingQueue_ConfirmMovesExistingDriver(t *testing.T) {
	db := testDB(t)
	companyA := seedCompany(t, db, "Alpha Trans", dec("0.04"))
	companyB := seedCompany(t, db, "Beta Cargo", dec("0.02"))
	seedDriver(t, db, "Moving Person", companyA.ID)

	q := NewPendingQueue()
	if _, err := q.Confirm(db, "Moving Person", companyB.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	var count int64
	db.Model(&Models.Driver{}).Where("name = ?", "moving person").Count(&count)
	if count != 1 {
		t.Fatalf("confirming an existing driver must not duplicate the row, count=%d", count)
	}

	var driver Models.Driver
	db.Where("name = ?", "moving person").First(&driver)
	if driver.CompanyID != companyB.ID {
		t.Fatalf("driver must move to the chosen company, got %d", driver.CompanyID)
	}
}

func TestPendingQueue_ConfirmUnknownCompany(t *testing.T) {
	db := testDB(t)
	q := NewPendingQueue()
	if _, err := q.Confirm(db, "Somebody", 999); err == nil {
		t.Fatalf("confirming against a missing company must fail")
	}
}
