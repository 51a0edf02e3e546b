package CronJobs

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/petrisor1218/spectra-logistics-saas-sub000/Reconciliation"
)

// Housekeeper runs the background maintenance of the service: dropping held
// batches nobody touched past their TTL and reporting the archive size.
type Housekeeper struct {
	cronScheduler *cron.Cron
	registry      *Reconciliation.SessionRegistry
	archive       *Reconciliation.Archive
	batchTTL      time.Duration
}

// NewHousekeeper creates the maintenance scheduler.
func NewHousekeeper(registry *Reconciliation.SessionRegistry, archive *Reconciliation.Archive, batchTTL time.Duration) *Housekeeper {
	return &Housekeeper{
		cronScheduler: cron.New(),
		registry:      registry,
		archive:       archive,
		batchTTL:      batchTTL,
	}
}

// Start schedules the hourly batch expiry and the nightly archive report.
func (h *Housekeeper) Start() error {
	if _, err := h.cronScheduler.AddFunc("@hourly", func() {
		if dropped := h.registry.ExpireIdle(h.batchTTL); dropped > 0 {
			log.Printf("Expired %d idle reconciliation batches", dropped)
		}
	}); err != nil {
		return fmt.Errorf("error scheduling batch expiry: %w", err)
	}

	if _, err := h.cronScheduler.AddFunc("0 1 * * *", func() {
		count, err := h.archive.Count()
		if err != nil {
			log.Printf("Archive count failed: %v", err)
			return
		}
		log.Printf("Historical archive holds %d trips", count)
	}); err != nil {
		return fmt.Errorf("error scheduling archive report: %w", err)
	}

	h.cronScheduler.Start()
	return nil
}

// Stop terminates the scheduler.
func (h *Housekeeper) Stop() {
	if h.cronScheduler != nil {
		h.cronScheduler.Stop()
		log.Println("Housekeeping scheduler stopped")
	}
}
