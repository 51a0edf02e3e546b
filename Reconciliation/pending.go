package Reconciliation

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"

	"github.com/petrisor1218/spectra-logistics-saas-sub000/Models"
)

// PendingQueue holds unresolved driver names awaiting human confirmation.
// Entries are deduplicated by normalized driver name and live only as long as
// the batch they came from.
type PendingQueue struct {
	mu      sync.Mutex
	entries map[string]PendingMapping
}

func NewPendingQueue() *PendingQueue {
	return &PendingQueue{entries: map[string]PendingMapping{}}
}

// Enqueue adds a mapping unless the driver name is already queued.
func (q *PendingQueue) Enqueue(m PendingMapping) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.entries[m.DriverName]; exists {
		return
	}
	q.entries[m.DriverName] = m
}

// Entries returns the queued mappings sorted by driver name.
func (q *PendingQueue) Entries() []PendingMapping {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]PendingMapping, 0, len(q.entries))
	for _, m := range q.entries {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DriverName < out[j].DriverName })
	return out
}

// Len reports how many names are still waiting.
func (q *PendingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Confirm persists the human-chosen company for a queued driver name and
// removes only that entry; everything else stays queued. The driver row is
// matched by exact normalized name first so confirming an existing driver
// moves them instead of creating a duplicate. The caller must follow up with
// a full re-run of the engine over the held batch.
func (q *PendingQueue) Confirm(db *gorm.DB, driverName string, companyID uint) (*Models.Driver, error) {
	name := Normalize(driverName)
	if name == "" {
		return nil, fmt.Errorf("empty driver name")
	}

	var company Models.Company
	if err := db.First(&company, companyID).Error; err != nil {
		return nil, fmt.Errorf("company %d: %w", companyID, err)
	}

	var driver Models.Driver
	err := db.Where("name = ?", name).First(&driver).Error
	switch {
	case err == nil:
		driver.CompanyID = company.ID
		if err := db.Save(&driver).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		driver = Models.Driver{Name: name, CompanyID: company.ID}
		if err := db.Create(&driver).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	q.mu.Lock()
	delete(q.entries, name)
	q.mu.Unlock()

	return &driver, nil
}

// Discard empties the queue, used when a held batch is dropped.
func (q *PendingQueue) Discard() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = map[string]PendingMapping{}
}
