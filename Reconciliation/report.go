package Reconciliation

import (
	"sort"

	"github.com/shopspring/decimal"
)

// UnmatchedKey is the JSON key of the synthetic holding bucket. It exists
// only at this boundary; inside the engine the bucket is a tagged field, not
// a company.
const UnmatchedKey = "Unmatched"

// CompanyReport is the external shape of one company's weekly ledger entry.
type CompanyReport struct {
	Total7      decimal.Decimal        `json:"Total_7_days"`
	Total30     decimal.Decimal        `json:"Total_30_days"`
	Commission  decimal.Decimal        `json:"Total_comision"`
	VRIDDetails map[string]*TripTotals `json:"VRID_details"`
}

// Report converts a run result into the per-company JSON document consumed
// by the dashboard, with the unmatched bucket under its reserved key.
func (r *Result) Report() map[string]CompanyReport {
	out := map[string]CompanyReport{}
	for name, entry := range r.Ledger {
		out[name] = CompanyReport{
			Total7:      entry.Total7,
			Total30:     entry.Total30,
			Commission:  entry.TotalCommission,
			VRIDDetails: entry.Trips,
		}
	}
	if r.Unmatched != nil {
		out[UnmatchedKey] = CompanyReport{
			Total7:      r.Unmatched.Total7,
			Total30:     r.Unmatched.Total30,
			Commission:  decimal.Zero,
			VRIDDetails: r.Unmatched.Trips,
		}
	}
	return out
}

// CompanyNames lists the companies present in the result, sorted, with the
// unmatched bucket last. Used by the workbook export for stable sheet order.
func (r *Result) CompanyNames() []string {
	names := make([]string, 0, len(r.Ledger)+1)
	for name := range r.Ledger {
		names = append(names, name)
	}
	sort.Strings(names)
	if r.Unmatched != nil {
		names = append(names, UnmatchedKey)
	}
	return names
}

// entryFor resolves a report name back to its ledger entry.
func (r *Result) entryFor(name string) *LedgerEntry {
	if name == UnmatchedKey {
		return r.Unmatched
	}
	return r.Ledger[name]
}
