package Reconciliation

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestEngine_LedgerSumsMatchInput(t *testing.T) {
	db := testDB(t)
	companyA := seedCompany(t, db, "Alpha Trans", dec("0.04"))
	companyB := seedCompany(t, db, "Beta Cargo", dec("0.02"))
	seedDriver(t, db, "Adrian Marin", companyA.ID)
	seedDriver(t, db, "Vlad Pop", companyB.ID)
	ctx := buildContext(t, db, "Fallback Co")

	engine := &Engine{Ctx: ctx, Archive: NewArchive(db), Queue: NewPendingQueue(), Log: testLogger()}

	trips := []TripRecord{
		{VRID: "T1", DriverName: "Adrian Marin"},
		{VRID: "T2", DriverName: "Vlad Pop"},
	}
	inv7 := []InvoiceRow{
		{PrimaryID: "T1", RawAmount: "100.00"},
		{PrimaryID: "T2", RawAmount: "250.50"},
	}
	inv30 := []InvoiceRow{
		{PrimaryID: "T1", RawAmount: "80.00"},
	}

	result := engine.Run("2026-W30", trips, inv7, inv30)

	if result.Discrepancy != nil {
		t.Fatalf("unexpected discrepancy: %+v", result.Discrepancy)
	}
	if result.Unmatched != nil {
		t.Fatalf("fully resolved batch must have no unmatched bucket")
	}

	total := decimal.Zero
	for _, entry := range result.Ledger {
		total = total.Add(entry.Total7).Add(entry.Total30)
	}
	if !total.Equal(dec("430.5")) {
		t.Fatalf("ledger total = %s, want 430.5", total)
	}

	alpha := result.Ledger["Alpha Trans"]
	if alpha == nil || !alpha.Total7.Equal(dec("100")) || !alpha.Total30.Equal(dec("80")) {
		t.Fatalf("alpha totals wrong: %+v", alpha)
	}
	// 4% of 180
	if !alpha.TotalCommission.Equal(dec("7.2")) {
		t.Fatalf("alpha commission = %s, want 7.2", alpha.TotalCommission)
	}

	beta := result.Ledger["Beta Cargo"]
	// 2% of 250.50
	if !beta.TotalCommission.Equal(dec("5.01")) {
		t.Fatalf("beta commission = %s, want 5.01", beta.TotalCommission)
	}
}

func TestEngine_SkipsZeroAndMalformedAmounts(t *testing.T) {
	db := testDB(t)
	company := seedCompany(t, db, "Alpha Trans", dec("0.04"))
	seedDriver(t, db, "Adrian Marin", company.ID)
	ctx := buildContext(t, db, "Fallback Co")
	engine := &Engine{Ctx: ctx, Archive: NewArchive(db), Queue: NewPendingQueue(), Log: testLogger()}

	trips := []TripRecord{{VRID: "T1", DriverName: "Adrian Marin"}}
	inv7 := []InvoiceRow{
		{PrimaryID: "T1", RawAmount: "100.00"},
		{PrimaryID: "T1", RawAmount: "0"},
		{PrimaryID: "T1", RawAmount: "n/a"},
	}

	result := engine.Run("2026-W30", trips, inv7, nil)
	if result.Skipped != 2 {
		t.Fatalf("skipped = %d, want 2", result.Skipped)
	}
	if !result.Ledger["Alpha Trans"].Total7.Equal(dec("100")) {
		t.Fatalf("valid line must still be counted")
	}
	if result.Discrepancy != nil {
		t.Fatalf("skipped rows must not trip the audit: %+v", result.Discrepancy)
	}
}

func TestEngine_UnresolvedGoesUnmatchedWithZeroCommission(t *testing.T) {
	db := testDB(t)
	seedCompany(t, db, "Daniel Ontheroad S.R.L.", dec("0.04"))
	ctx := buildContext(t, db, "Fallback Co")
	engine := &Engine{Ctx: ctx, Archive: NewArchive(db), Queue: NewPendingQueue(), Log: testLogger()}

	trips := []TripRecord{{VRID: "T1", DriverName: "Jurubita Razvan"}}
	inv7 := []InvoiceRow{{PrimaryID: "T1", RawAmount: "100.00"}}

	result := engine.Run("2026-W30", trips, inv7, nil)

	if result.Unmatched == nil {
		t.Fatalf("expected unmatched bucket")
	}
	if !result.Unmatched.TotalCommission.IsZero() {
		t.Fatalf("unmatched commission must be zero, got %s", result.Unmatched.TotalCommission)
	}
	detail := result.Unmatched.Trips["T1"]
	if detail == nil || !detail.Amount7.Equal(dec("100")) || !detail.Commission.IsZero() {
		t.Fatalf("unmatched detail wrong: %+v", detail)
	}

	if len(result.Pending) != 1 || result.Pending[0].DriverName != "jurubita razvan" {
		t.Fatalf("expected one pending mapping for jurubita razvan, got %+v", result.Pending)
	}
}

func TestEngine_IdempotentRerun(t *testing.T) {
	db := testDB(t)
	company := seedCompany(t, db, "Alpha Trans", dec("0.04"))
	seedDriver(t, db, "Adrian Marin", company.ID)
	ctx := buildContext(t, db, "Fallback Co")

	trips := []TripRecord{
		{VRID: "T1", DriverName: "Adrian Marin"},
		{VRID: "T2", DriverName: "Someone Unknown"},
	}
	inv7 := []InvoiceRow{
		{PrimaryID: "T1", RawAmount: "100.00"},
		{PrimaryID: "T2", RawAmount: "40.00"},
	}

	run := func() *Result {
		engine := &Engine{Ctx: ctx, Archive: NewArchive(db), Queue: NewPendingQueue(), Log: testLogger()}
		return engine.Run("2026-W30", trips, inv7, nil)
	}
	first := run()
	second := run()

	if !first.Ledger["Alpha Trans"].Total7.Equal(second.Ledger["Alpha Trans"].Total7) {
		t.Fatalf("rerun changed resolved totals")
	}
	if !first.Unmatched.Total7.Equal(second.Unmatched.Total7) {
		t.Fatalf("rerun changed unmatched totals")
	}
	if !first.Ledger["Alpha Trans"].TotalCommission.Equal(second.Ledger["Alpha Trans"].TotalCommission) {
		t.Fatalf("rerun changed commission")
	}
}

func TestEngine_ArchiveBackfillMigratesLine(t *testing.T) {
	db := testDB(t)
	company := seedCompany(t, db, "Alpha Trans", dec("0.04"))
	seedDriver(t, db, "Adrian Marin", company.ID)
	ctx := buildContext(t, db, "Fallback Co")
	archive := NewArchive(db)

	// A previous week archived T9 under a mapped driver.
	if err := archive.Record([]TripRecord{{VRID: "T9", DriverName: "Adrian Marin"}}, "2026-W29"); err != nil {
		t.Fatalf("archive record: %v", err)
	}

	engine := &Engine{Ctx: ctx, Archive: archive, Queue: NewPendingQueue(), Log: testLogger()}

	// This week's manifest does not mention T9 at all.
	inv7 := []InvoiceRow{{PrimaryID: "T9", RawAmount: "200.00"}}
	result := engine.Run("2026-W30", nil, inv7, nil)

	if result.Unmatched != nil {
		t.Fatalf("backfilled line must leave the unmatched bucket, got %+v", result.Unmatched)
	}
	entry := result.Ledger["Alpha Trans"]
	if entry == nil || !entry.Total7.Equal(dec("200")) {
		t.Fatalf("expected migration into Alpha Trans, got %+v", entry)
	}
	// Commission recomputed at the destination's rate, not inherited as zero.
	if !entry.TotalCommission.Equal(dec("8")) {
		t.Fatalf("commission = %s, want 8", entry.TotalCommission)
	}
	if result.Discrepancy != nil {
		t.Fatalf("migration must keep totals balanced: %+v", result.Discrepancy)
	}
}

func TestEngine_ArchiveMissRemainsUnmatched(t *testing.T) {
	db := testDB(t)
	seedCompany(t, db, "Alpha Trans", dec("0.04"))
	ctx := buildContext(t, db, "Fallback Co")
	engine := &Engine{Ctx: ctx, Archive: NewArchive(db), Queue: NewPendingQueue(), Log: testLogger()}

	inv30 := []InvoiceRow{{PrimaryID: "GHOST", RawAmount: "55.00"}}
	result := engine.Run("2026-W30", nil, nil, inv30)

	if result.Unmatched == nil || !result.Unmatched.Total30.Equal(dec("55")) {
		t.Fatalf("unknown trip must stay unmatched, got %+v", result.Unmatched)
	}
	if len(result.Pending) != 0 {
		t.Fatalf("no driver name, nothing to queue: %+v", result.Pending)
	}
}

func TestEngine_SmallAmountAnomalies(t *testing.T) {
	db := testDB(t)
	company := seedCompany(t, db, "Alpha Trans", dec("0.04"))
	seedDriver(t, db, "Adrian Marin", company.ID)
	ctx := buildContext(t, db, "Fallback Co")
	engine := &Engine{Ctx: ctx, Archive: NewArchive(db), Queue: NewPendingQueue(), Log: testLogger()}

	trips := []TripRecord{{VRID: "T1", DriverName: "Adrian Marin"}}
	inv7 := []InvoiceRow{
		{PrimaryID: "T1", RawAmount: "9.50"},
		{PrimaryID: "T1", RawAmount: "10.00"},
		{PrimaryID: "T1", RawAmount: "10.01"},
	}

	result := engine.Run("2026-W30", trips, inv7, nil)
	if len(result.Anomalies) != 2 {
		t.Fatalf("expected 2 anomalies (<=10), got %+v", result.Anomalies)
	}
	for _, a := range result.Anomalies {
		if a.Company != "Alpha Trans" || a.Cycle != Cycle7 {
			t.Fatalf("anomaly metadata wrong: %+v", a)
		}
	}
	// Advisory only: the ledger still carries all three amounts.
	if !result.Ledger["Alpha Trans"].Total7.Equal(dec("29.51")) {
		t.Fatalf("anomalies must not change the ledger")
	}
}

func TestEngine_SynthesizedPlaceholderIDs(t *testing.T) {
	db := testDB(t)
	seedCompany(t, db, "Alpha Trans", dec("0.04"))
	ctx := buildContext(t, db, "Fallback Co")
	engine := &Engine{Ctx: ctx, Archive: NewArchive(db), Queue: NewPendingQueue(), Log: testLogger()}

	inv7 := []InvoiceRow{
		{RawAmount: "20.00"},
		{RawAmount: "30.00"},
	}
	result := engine.Run("2026-W30", nil, inv7, nil)

	if result.Unmatched == nil || len(result.Unmatched.Trips) != 2 {
		t.Fatalf("each id-less line must get its own placeholder, got %+v", result.Unmatched)
	}
	for vrid := range result.Unmatched.Trips {
		if !strings.HasPrefix(vrid, "missing-") {
			t.Fatalf("placeholder id %q missing prefix", vrid)
		}
	}
}

func TestEngine_SecondaryIDFallback(t *testing.T) {
	db := testDB(t)
	company := seedCompany(t, db, "Alpha Trans", dec("0.04"))
	seedDriver(t, db, "Adrian Marin", company.ID)
	ctx := buildContext(t, db, "Fallback Co")
	engine := &Engine{Ctx: ctx, Archive: NewArchive(db), Queue: NewPendingQueue(), Log: testLogger()}

	trips := []TripRecord{{VRID: "T1", DriverName: "Adrian Marin"}}
	inv7 := []InvoiceRow{{SecondaryID: "T1", RawAmount: "75.00"}}

	result := engine.Run("2026-W30", trips, inv7, nil)
	if entry := result.Ledger["Alpha Trans"]; entry == nil || !entry.Total7.Equal(dec("75")) {
		t.Fatalf("secondary id must correlate the line, got %+v", result.Ledger)
	}
}
