package main

import (
	"log"

	"github.com/petrisor1218/spectra-logistics-saas-sub000/Config"
	"github.com/petrisor1218/spectra-logistics-saas-sub000/CronJobs"
	"github.com/petrisor1218/spectra-logistics-saas-sub000/FiberConfig"
	"github.com/petrisor1218/spectra-logistics-saas-sub000/Models"
	"github.com/petrisor1218/spectra-logistics-saas-sub000/Reconciliation"
)

func main() {
	settings := Config.Load()

	Models.Connect(settings.DBPath)

	registry := Reconciliation.NewSessionRegistry()
	housekeeper := CronJobs.NewHousekeeper(registry, Reconciliation.NewArchive(Models.DB), settings.BatchTTL)
	if err := housekeeper.Start(); err != nil {
		log.Printf("Failed to start housekeeping: %v", err)
	}

	FiberConfig.FiberConfig(Models.DB, registry)
}
