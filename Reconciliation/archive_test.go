package Reconciliation

import (
	"testing"
)

func TestArchiveRecord_Idempotent(t *testing.T) {
	db := testDB(t)
	archive := NewArchive(db)

	trips := []TripRecord{
		{VRID: "T1", DriverName: "Jurubita Razvan", Raw: map[string]string{"route": "DE-RO"}},
		{VRID: "T2", DriverName: "Ion Popescu"},
	}
	if err := archive.Record(trips, "2026-W30"); err != nil {
		t.Fatalf("first record: %v", err)
	}
	// Re-uploading the same week, and the same VRID under a later week, must
	// leave the original rows untouched.
	if err := archive.Record(trips, "2026-W30"); err != nil {
		t.Fatalf("second record: %v", err)
	}
	if err := archive.Record([]TripRecord{{VRID: "T1", DriverName: "Somebody Else"}}, "2026-W31"); err != nil {
		t.Fatalf("conflicting record: %v", err)
	}

	n, err := archive.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("archive count = %d, want 2", n)
	}

	found := archive.FindByVRIDs([]string{"T1"})
	if found["T1"].DriverName != "Jurubita Razvan" {
		t.Fatalf("first write must win, got %q", found["T1"].DriverName)
	}
	if found["T1"].WeekLabel != "2026-W30" {
		t.Fatalf("week label = %q, want 2026-W30", found["T1"].WeekLabel)
	}
}

func TestArchiveRecord_SkipsEmptyVRIDs(t *testing.T) {
	db := testDB(t)
	archive := NewArchive(db)

	trips := []TripRecord{
		{VRID: "", DriverName: "No Id"},
		{VRID: "T5", DriverName: "Has Id"},
	}
	if err := archive.Record(trips, "2026-W30"); err != nil {
		t.Fatalf("record: %v", err)
	}
	n, _ := archive.Count()
	if n != 1 {
		t.Fatalf("archive count = %d, want 1", n)
	}
}

func TestArchiveFindByVRIDs_Batched(t *testing.T) {
	db := testDB(t)
	archive := NewArchive(db)

	trips := []TripRecord{
		{VRID: "T1", DriverName: "A"},
		{VRID: "T2", DriverName: "B"},
		{VRID: "T3", DriverName: "C"},
	}
	if err := archive.Record(trips, "2026-W29"); err != nil {
		t.Fatalf("record: %v", err)
	}

	found := archive.FindByVRIDs([]string{"T1", "T3", "T9"})
	if len(found) != 2 {
		t.Fatalf("found %d trips, want 2", len(found))
	}
	if _, ok := found["T9"]; ok {
		t.Fatalf("unknown VRID must be absent from the result")
	}

	if got := archive.FindByVRIDs(nil); len(got) != 0 {
		t.Fatalf("empty lookup must return an empty map")
	}
}
