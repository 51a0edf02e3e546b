package Reconciliation

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/petrisor1218/spectra-logistics-saas-sub000/Models"
)

// BatchSession holds one week's parsed feeds for as long as the operator is
// working the batch: the engine can be re-run over them after every confirmed
// mapping. The result is swapped atomically, a half-built run is never
// visible.
type BatchSession struct {
	WeekLabel string

	mu       sync.Mutex
	trips    []TripRecord
	inv7     []InvoiceRow
	inv30    []InvoiceRow
	queue    *PendingQueue
	result   *Result
	lastUsed time.Time

	db              *gorm.DB
	fallbackCompany string
	log             *logrus.Logger
}

// NewBatchSession stores the parsed feeds for one week label.
func NewBatchSession(db *gorm.DB, log *logrus.Logger, fallbackCompany, weekLabel string, trips []TripRecord, inv7, inv30 []InvoiceRow) *BatchSession {
	return &BatchSession{
		WeekLabel:       weekLabel,
		trips:           trips,
		inv7:            inv7,
		inv30:           inv30,
		queue:           NewPendingQueue(),
		lastUsed:        time.Now(),
		db:              db,
		fallbackCompany: fallbackCompany,
		log:             log,
	}
}

// Run rebuilds the resolution context from the database and reconciles the
// held feeds. Every call is a full recomputation: a single new mapping can
// retroactively move any number of previously unmatched lines, so partial
// updates are not allowed.
func (s *BatchSession) Run() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()

	ctx, err := BuildResolutionContext(s.db, s.fallbackCompany)
	if err != nil {
		return nil, err
	}
	engine := &Engine{
		Ctx:     ctx,
		Archive: NewArchive(s.db),
		Queue:   s.queue,
		Log:     s.log,
	}
	result := engine.Run(s.WeekLabel, s.trips, s.inv7, s.inv30)

	// A discrepant run is surfaced to the operator and kept out of the
	// durable balances until the feeds are fixed.
	if result.Discrepancy == nil {
		if err := UpsertInvoiced(s.db, ctx, s.WeekLabel, result); err != nil {
			return nil, err
		}
	}

	s.result = result
	return result, nil
}

// Confirm persists a mapping decision and immediately re-runs the engine over
// the held batch.
func (s *BatchSession) Confirm(driverName string, companyID uint) (*Models.Driver, *Result, error) {
	driver, err := s.queue.Confirm(s.db, driverName, companyID)
	if err != nil {
		return nil, nil, err
	}
	result, err := s.Run()
	if err != nil {
		return driver, nil, err
	}
	return driver, result, nil
}

// Result returns the last computed result, if any.
func (s *BatchSession) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	return s.result
}

// Pending lists the still-unconfirmed driver names of the batch.
func (s *BatchSession) Pending() []PendingMapping {
	return s.queue.Entries()
}

func (s *BatchSession) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// SessionRegistry tracks the held batches by week label. One batch per week:
// submitting a new batch for the same label replaces the previous one whole.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*BatchSession
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: map[string]*BatchSession{}}
}

// Put registers a session, replacing any previous batch for the week.
func (r *SessionRegistry) Put(s *BatchSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.WeekLabel] = s
}

// Get returns the held session for a week label, or nil.
func (r *SessionRegistry) Get(weekLabel string) *BatchSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[weekLabel]
}

// ExpireIdle drops sessions untouched for longer than ttl and returns how
// many were dropped. Their pending queues go with them.
func (r *SessionRegistry) ExpireIdle(ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	cutoff := time.Now().Add(-ttl)
	for label, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			s.queue.Discard()
			delete(r.sessions, label)
			dropped++
		}
	}
	return dropped
}
