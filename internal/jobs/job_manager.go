package jobs

import (
	"context"
	"fmt"
	"log/slog"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	offerSweepJob *OfferSweepJob
}

func NewJobManager(reconciler OfferReconciler, sweepSchedule string, logger *slog.Logger) *JobManager {
	return &JobManager{
		offerSweepJob: NewOfferSweepJob(reconciler, sweepSchedule, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.offerSweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start offer sweep job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.offerSweepJob.Stop()
}

// Run starts the jobs, sweeps once immediately to recover offers left by a
// previous process, and stops them when ctx is done.
func (jm *JobManager) Run(ctx context.Context) error {
	jm.offerSweepJob.RunOnce(ctx)
	if err := jm.StartAll(); err != nil {
		return err
	}
	<-ctx.Done()
	jm.StopAll()
	return nil
}
