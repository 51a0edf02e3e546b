package Reconciliation

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/petrisor1218/spectra-logistics-saas-sub000/Config"
	"github.com/petrisor1218/spectra-logistics-saas-sub000/Models"
)

var (
	// Lines at or under this amount are flagged for operator review; the
	// numbers still enter the ledger untouched.
	SmallAmountThreshold = decimal.NewFromInt(10)

	// AuditEpsilon bounds the tolerated gap between the raw input total
	// and the ledger total before the run is flagged as discrepant.
	AuditEpsilon = decimal.NewFromFloat(0.01)
)

// TripTotals is the per-trip slice of a company's ledger entry.
type TripTotals struct {
	Amount7    decimal.Decimal `json:"7_days"`
	Amount30   decimal.Decimal `json:"30_days"`
	Commission decimal.Decimal `json:"commission"`
}

// LedgerEntry accumulates one company's weekly totals. Commission is only
// ever added for real companies; the unmatched bucket keeps it at zero.
type LedgerEntry struct {
	Total7          decimal.Decimal
	Total30         decimal.Decimal
	TotalCommission decimal.Decimal
	Trips           map[string]*TripTotals
}

func newLedgerEntry() *LedgerEntry {
	return &LedgerEntry{Trips: map[string]*TripTotals{}}
}

// Anomaly flags a suspiciously small invoice line. Advisory only.
type Anomaly struct {
	VRID    string          `json:"vrid"`
	Amount  decimal.Decimal `json:"amount"`
	Company string          `json:"company"`
	Cycle   Cycle           `json:"cycle"`
}

// Discrepancy is a blocking mismatch between the summed input lines and the
// summed ledger. It is surfaced, never silently corrected: it means either a
// parsing bug or a resolution bug that would misstate commissions owed.
type Discrepancy struct {
	Expected decimal.Decimal `json:"expected"`
	Actual   decimal.Decimal `json:"actual"`
	Diff     decimal.Decimal `json:"diff"`
}

// PendingMapping is an unresolved driver name waiting for a human to confirm
// which company it belongs to.
type PendingMapping struct {
	DriverName   string   `json:"driver_name"`
	Suggestion   string   `json:"suggestion"`
	Alternatives []string `json:"alternatives"`
}

// Result is the full output of one reconciliation run over a weekly batch.
type Result struct {
	WeekLabel   string                  `json:"week_label"`
	Ledger      map[string]*LedgerEntry `json:"-"`
	Unmatched   *LedgerEntry            `json:"-"`
	Pending     []PendingMapping        `json:"pending_mappings"`
	Anomalies   []Anomaly               `json:"anomalies"`
	Skipped     int                     `json:"skipped_rows"`
	Discrepancy *Discrepancy            `json:"discrepancy,omitempty"`
}

// Engine runs the per-line resolution, commission computation, ledger
// accumulation, anomaly flagging and total audit for one weekly batch.
// Re-running it over the same feeds with the same driver/vehicle state
// produces an identical result.
type Engine struct {
	Ctx     *ResolutionContext
	Archive *Archive
	Queue   *PendingQueue
	Log     *logrus.Logger
}

// backfill remembers a line that had no manifest row this week and waits for
// the single batched archive lookup.
type backfill struct {
	vrid   string
	amount decimal.Decimal
	cycle  Cycle
}

// Run processes both invoice cycles against the trip manifest.
func (e *Engine) Run(weekLabel string, trips []TripRecord, inv7, inv30 []InvoiceRow) *Result {
	if err := e.Archive.Record(trips, weekLabel); err != nil {
		// The archive is the durable side-output; a failed write must not
		// lose the week's numbers.
		Config.LogError(e.Log, "engine.go", "Run", "archiving trips", weekLabel, err)
	}

	byVRID := map[string]TripRecord{}
	for _, trip := range trips {
		byVRID[trip.VRID] = trip
	}

	result := &Result{
		WeekLabel: weekLabel,
		Ledger:    map[string]*LedgerEntry{},
		Unmatched: newLedgerEntry(),
		Pending:   []PendingMapping{},
		Anomalies: []Anomaly{},
	}

	expected := decimal.Zero
	var missing []backfill

	process := func(lines []InvoiceRow, cycle Cycle) {
		for _, line := range lines {
			vrid := line.PrimaryID
			if vrid == "" {
				vrid = line.SecondaryID
			}
			if vrid == "" {
				vrid = "missing-" + uuid.NewString()
			}

			amount, err := ParseAmount(line.RawAmount)
			if err != nil || amount.IsZero() {
				result.Skipped++
				continue
			}
			expected = expected.Add(amount)

			trip, inManifest := byVRID[vrid]
			if !inManifest {
				// Park in the unmatched bucket for now; the archive pass
				// below may still migrate it out.
				addToEntry(result.Unmatched, vrid, amount, cycle, decimal.Zero)
				missing = append(missing, backfill{vrid: vrid, amount: amount, cycle: cycle})
				continue
			}

			res := e.Ctx.Resolve(trip)
			if !res.Resolved() {
				e.enqueuePending(trip.DriverName, res)
				addToEntry(result.Unmatched, vrid, amount, cycle, decimal.Zero)
				e.flagSmall(result, vrid, amount, "", cycle)
				continue
			}

			e.credit(result, res.Company, vrid, amount, cycle)
		}
	}

	process(inv7, Cycle7)
	process(inv30, Cycle30)

	e.backfillFromArchive(result, missing)

	result.Pending = e.Queue.Entries()

	actual := result.Unmatched.Total7.Add(result.Unmatched.Total30)
	for _, entry := range result.Ledger {
		actual = actual.Add(entry.Total7).Add(entry.Total30)
	}
	if diff := expected.Sub(actual).Abs(); diff.GreaterThan(AuditEpsilon) {
		result.Discrepancy = &Discrepancy{Expected: expected, Actual: actual, Diff: diff}
		e.Log.WithFields(logrus.Fields{
			"week":     weekLabel,
			"expected": expected.String(),
			"actual":   actual.String(),
		}).Error("reconciliation totals do not add up")
	}

	if len(result.Unmatched.Trips) == 0 {
		result.Unmatched = nil
	}
	return result
}

// backfillFromArchive resolves lines whose VRID was absent from this week's
// manifest using the permanent archive: one batched lookup, then each hit is
// re-resolved by its archived driver name. A successful resolution migrates
// the line out of the unmatched bucket with commission recomputed at the
// destination company's rate, never inherited as zero.
func (e *Engine) backfillFromArchive(result *Result, missing []backfill) {
	if len(missing) == 0 {
		return
	}

	vrids := make([]string, 0, len(missing))
	seen := map[string]bool{}
	for _, m := range missing {
		if !seen[m.vrid] {
			seen[m.vrid] = true
			vrids = append(vrids, m.vrid)
		}
	}
	archived := e.Archive.FindByVRIDs(vrids)

	for _, m := range missing {
		hist, ok := archived[m.vrid]
		if !ok {
			// Genuinely unknown trip; the line stays unmatched.
			e.flagSmall(result, m.vrid, m.amount, "", m.cycle)
			continue
		}

		res := e.Ctx.Resolve(TripRecord{VRID: m.vrid, DriverName: hist.DriverName})
		if !res.Resolved() {
			e.enqueuePending(hist.DriverName, res)
			e.flagSmall(result, m.vrid, m.amount, "", m.cycle)
			continue
		}

		// High-confidence pairing for the rest of the batch only; a
		// permanent Driver row still requires human confirmation.
		e.Ctx.CacheDriver(hist.DriverName, res.Company.ID)

		removeFromEntry(result.Unmatched, m.vrid, m.amount, m.cycle)
		e.credit(result, res.Company, m.vrid, m.amount, m.cycle)
	}
}

// credit accumulates a line into a company's ledger entry, with commission at
// the company's rate, and runs the small-amount check.
func (e *Engine) credit(result *Result, company *Models.Company, vrid string, amount decimal.Decimal, cycle Cycle) {
	entry := result.Ledger[company.Name]
	if entry == nil {
		entry = newLedgerEntry()
		result.Ledger[company.Name] = entry
	}
	commission := amount.Mul(company.CommissionRate)
	addToEntry(entry, vrid, amount, cycle, commission)
	e.flagSmall(result, vrid, amount, company.Name, cycle)
}

func (e *Engine) enqueuePending(driverName string, res Resolution) {
	name := Normalize(driverName)
	if name == "" {
		return
	}
	e.Queue.Enqueue(PendingMapping{
		DriverName:   name,
		Suggestion:   res.Suggestion,
		Alternatives: res.Alternatives,
	})
}

func (e *Engine) flagSmall(result *Result, vrid string, amount decimal.Decimal, company string, cycle Cycle) {
	if amount.LessThanOrEqual(SmallAmountThreshold) {
		result.Anomalies = append(result.Anomalies, Anomaly{
			VRID:    vrid,
			Amount:  amount,
			Company: company,
			Cycle:   cycle,
		})
	}
}

func addToEntry(entry *LedgerEntry, vrid string, amount decimal.Decimal, cycle Cycle, commission decimal.Decimal) {
	detail := entry.Trips[vrid]
	if detail == nil {
		detail = &TripTotals{}
		entry.Trips[vrid] = detail
	}
	switch cycle {
	case Cycle7:
		entry.Total7 = entry.Total7.Add(amount)
		detail.Amount7 = detail.Amount7.Add(amount)
	case Cycle30:
		entry.Total30 = entry.Total30.Add(amount)
		detail.Amount30 = detail.Amount30.Add(amount)
	}
	entry.TotalCommission = entry.TotalCommission.Add(commission)
	detail.Commission = detail.Commission.Add(commission)
}

func removeFromEntry(entry *LedgerEntry, vrid string, amount decimal.Decimal, cycle Cycle) {
	detail := entry.Trips[vrid]
	if detail == nil {
		return
	}
	switch cycle {
	case Cycle7:
		entry.Total7 = entry.Total7.Sub(amount)
		detail.Amount7 = detail.Amount7.Sub(amount)
	case Cycle30:
		entry.Total30 = entry.Total30.Sub(amount)
		detail.Amount30 = detail.Amount30.Sub(amount)
	}
	if detail.Amount7.IsZero() && detail.Amount30.IsZero() {
		delete(entry.Trips, vrid)
	}
}
