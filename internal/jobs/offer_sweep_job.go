package jobs

import (
	"context"
	"log/slog"

	"orderflow/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultOfferSweepSchedule runs the sweep every 15 seconds.
const DefaultOfferSweepSchedule = "*/15 * * * * *"

// OfferReconciler is satisfied by commands.ReconcileOffersCommandHandler.
type OfferReconciler interface {
	Handle(ctx context.Context, cmd commands.ReconcileOffersCommand) (commands.ReconcileResult, error)
}

// OfferSweepJob re-arms lost offer timers and expires overdue offers found in
// the ledger, so offers survive a restart or a missed timer.
type OfferSweepJob struct {
	handler  OfferReconciler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewOfferSweepJob(handler OfferReconciler, schedule string, logger *slog.Logger) *OfferSweepJob {
	if schedule == "" {
		schedule = DefaultOfferSweepSchedule
	}
	return &OfferSweepJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "offer_sweep_job"),
	}
}

func (j *OfferSweepJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.RunOnce(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Offer sweep job started", "schedule", j.schedule)
	return nil
}

// RunOnce performs one sweep.
func (j *OfferSweepJob) RunOnce(ctx context.Context) {
	result, err := j.handler.Handle(ctx, commands.NewReconcileOffersCommand())
	if err != nil {
		j.logger.ErrorContext(ctx, "Offer sweep failed", "error", err)
		return
	}
	if result.Expired > 0 || result.Rearmed > 0 {
		j.logger.InfoContext(ctx, "Offer sweep reconciled offers", "expired", result.Expired, "rearmed", result.Rearmed)
	}
}

// Stop waits for a running sweep to finish.
func (j *OfferSweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Offer sweep job stopped")
}
