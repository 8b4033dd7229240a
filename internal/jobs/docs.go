// Package jobs provides scheduled background tasks.
//
// Jobs use github.com/robfig/cron/v3 with a seconds field in the schedule.
//
// # Available Jobs
//
// OfferSweepJob reconciles offer timers with the ledger: offers whose window
// has passed are expired through the normal expiry path, and offers that have
// no live timer (after a restart) are re-armed for their remaining window.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(reconcileHandler, cfg.OfferSweepSchedule, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed sweep is logged and retried on the next tick. A sweep still running
// when the next tick fires causes that tick to be skipped.
package jobs
