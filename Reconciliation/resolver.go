package Reconciliation

import (
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/petrisor1218/spectra-logistics-saas-sub000/Models"
)

// TripRecord is one row of the weekly trip manifest. It lives only for the
// duration of a reconciliation run; the durable copy goes to the archive.
type TripRecord struct {
	VRID       string
	VehicleID  string
	DriverName string
	TripDate   string
	Raw        map[string]string
}

// Outcome tags how (or whether) a trip was attributed to a company. The
// unmatched bucket is represented by OutcomeUnresolved, never by a magic
// company name, so it can never accrue commission by accident.
type Outcome int

const (
	OutcomeUnresolved Outcome = iota
	OutcomeVehicle
	OutcomeDriver
)

// Resolution is the result of resolving one trip. Company is set only for
// the two authoritative outcomes; Suggestion and Alternatives carry the
// non-authoritative similarity guess that seeds the pending-mapping queue.
type Resolution struct {
	Outcome      Outcome
	Company      *Models.Company
	Suggestion   string
	Alternatives []string
}

func (r Resolution) Resolved() bool {
	return r.Outcome != OutcomeUnresolved
}

// ResolutionContext carries the driver/vehicle/company lookup state for one
// batch. It is rebuilt from the database once per run instead of mutated ad
// hoc, so a run is a pure function of its feeds plus this context.
type ResolutionContext struct {
	companies       map[uint]*Models.Company
	companiesByName map[string]*Models.Company

	// normalized driver name -> company id; static rows plus any
	// archive-derived cache entries added during the batch
	drivers map[string]uint
	// insertion order of driver names, for stable similarity scans
	driverOrder []string

	// registration -> company id, active vehicles only
	vehicles map[string]uint

	fallbackCompany string
}

// BuildResolutionContext loads companies, drivers and active vehicles into a
// fresh context.
func BuildResolutionContext(db *gorm.DB, fallbackCompany string) (*ResolutionContext, error) {
	ctx := &ResolutionContext{
		companies:       map[uint]*Models.Company{},
		companiesByName: map[string]*Models.Company{},
		drivers:         map[string]uint{},
		vehicles:        map[string]uint{},
		fallbackCompany: fallbackCompany,
	}

	var companies []Models.Company
	if err := db.Find(&companies).Error; err != nil {
		return nil, err
	}
	for i := range companies {
		ctx.companies[companies[i].ID] = &companies[i]
		ctx.companiesByName[companies[i].Name] = &companies[i]
	}

	var drivers []Models.Driver
	if err := db.Order("id").Find(&drivers).Error; err != nil {
		return nil, err
	}
	for _, d := range drivers {
		ctx.addDriver(d.Name, d.CompanyID)
	}

	var vehicles []Models.Vehicle
	if err := db.Where("active = ?", true).Find(&vehicles).Error; err != nil {
		return nil, err
	}
	for _, v := range vehicles {
		ctx.vehicles[strings.ToUpper(strings.TrimSpace(v.Registration))] = v.CompanyID
	}

	return ctx, nil
}

// Company returns a company from the context by id.
func (ctx *ResolutionContext) Company(id uint) *Models.Company {
	return ctx.companies[id]
}

// CompanyNamed returns a company from the context by exact name.
func (ctx *ResolutionContext) CompanyNamed(name string) *Models.Company {
	return ctx.companiesByName[name]
}

func (ctx *ResolutionContext) addDriver(name string, companyID uint) {
	norm := Normalize(name)
	if norm == "" {
		return
	}
	if _, exists := ctx.drivers[norm]; !exists {
		ctx.driverOrder = append(ctx.driverOrder, norm)
	}
	ctx.drivers[norm] = companyID
}

// CacheDriver adds a batch-local driver -> company pairing discovered through
// the archive. It does not persist anything; permanent mappings only come
// from confirmed pending entries.
func (ctx *ResolutionContext) CacheDriver(name string, companyID uint) {
	ctx.addDriver(name, companyID)
}

// CleanRegistration strips everything up to and including the last hyphen of
// a prefixed vehicle id ("OTHR-TR94FST" -> "TR94FST").
func CleanRegistration(vehicleID string) string {
	id := strings.TrimSpace(vehicleID)
	if i := strings.LastIndex(id, "-"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// Resolve attributes a trip to a company, in strict priority order: active
// vehicle registration first, exact/variant driver name second. When neither
// matches it returns an unresolved resolution carrying a similarity-based
// suggestion (or the fallback company when nothing scores at all). Vehicle
// evidence always wins over driver evidence: registrations come from the
// carrier contracts while driver names are free text.
func (ctx *ResolutionContext) Resolve(trip TripRecord) Resolution {
	if vehicleID := strings.TrimSpace(trip.VehicleID); vehicleID != "" {
		raw := strings.ToUpper(vehicleID)
		if companyID, ok := ctx.vehicles[raw]; ok {
			return Resolution{Outcome: OutcomeVehicle, Company: ctx.companies[companyID]}
		}
		if companyID, ok := ctx.vehicles[strings.ToUpper(CleanRegistration(vehicleID))]; ok {
			return Resolution{Outcome: OutcomeVehicle, Company: ctx.companies[companyID]}
		}
	}

	// Several drivers may share one manifest cell, comma-joined. The first
	// sub-name with a mapping wins.
	for _, sub := range strings.Split(trip.DriverName, ",") {
		norm := Normalize(sub)
		if norm == "" {
			continue
		}
		if companyID, ok := ctx.drivers[norm]; ok {
			return Resolution{Outcome: OutcomeDriver, Company: ctx.companies[companyID]}
		}
		for _, variant := range Variants(sub) {
			if companyID, ok := ctx.drivers[variant]; ok {
				return Resolution{Outcome: OutcomeDriver, Company: ctx.companies[companyID]}
			}
		}
	}

	suggestion, alternatives := ctx.suggest(trip.DriverName)
	return Resolution{
		Outcome:      OutcomeUnresolved,
		Suggestion:   suggestion,
		Alternatives: alternatives,
	}
}

// suggest scores every already-mapped driver name against the unknown name by
// counting shared tokens of at least three characters, aggregates the scores
// per company and returns the best company name plus the remaining scored
// companies as alternatives. Ties break on the lexicographically smallest
// company name so suggestions are deterministic across runs.
func (ctx *ResolutionContext) suggest(driverName string) (string, []string) {
	tokens := similarityTokens(driverName)
	if len(tokens) == 0 {
		return ctx.fallbackCompany, nil
	}

	scores := map[uint]int{}
	for _, known := range ctx.driverOrder {
		score := 0
		for t := range similarityTokens(known) {
			if tokens[t] {
				score++
			}
		}
		if score > 0 {
			scores[ctx.drivers[known]] += score
		}
	}
	if len(scores) == 0 {
		return ctx.fallbackCompany, nil
	}

	type scored struct {
		name  string
		score int
	}
	ranked := make([]scored, 0, len(scores))
	for companyID, score := range scores {
		company := ctx.companies[companyID]
		if company == nil {
			continue
		}
		ranked = append(ranked, scored{name: company.Name, score: score})
	}
	if len(ranked) == 0 {
		return ctx.fallbackCompany, nil
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].name < ranked[j].name
	})

	alternatives := make([]string, 0, len(ranked)-1)
	for _, r := range ranked[1:] {
		alternatives = append(alternatives, r.name)
	}
	return ranked[0].name, alternatives
}

func similarityTokens(name string) map[string]bool {
	out := map[string]bool{}
	for _, t := range strings.Fields(Normalize(name)) {
		if len(t) >= 3 {
			out[t] = true
		}
	}
	return out
}
