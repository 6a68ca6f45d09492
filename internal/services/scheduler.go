package services

import (
	"github.com/robfig/cron/v3"

	log "github.com/sirupsen/logrus"
)

// startCronJob wires one function onto its own cron schedule, matching how
// each service owns its scheduler.
func startCronJob(name, spec string, fn func()) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		log.Printf("Running scheduled %s task...", name)
		fn()
	})
	if err != nil {
		log.Errorf("Error scheduling %s: %v", name, err)
		return
	}
	c.Start()
	log.Printf("%s scheduler started (%s)", name, spec)
}

func startHourlyJob(name string, fn func()) {
	startCronJob(name, "0 * * * *", fn)
}
