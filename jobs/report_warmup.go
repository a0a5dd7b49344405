package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/tillpoint/tillpoint/internal/reporting"
)

// ReportWarmupJob pre-populates the reporting caches so dashboard loads
// after a version bump stay fast.
type ReportWarmupJob struct {
	Reporting *reporting.Service
	Logger    *slog.Logger
	clock     func() time.Time
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(reportingSvc *reporting.Service, logger *slog.Logger) *ReportWarmupJob {
	return &ReportWarmupJob{
		Reporting: reportingSvc,
		Logger:    logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskReportWarmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reporting == nil {
		return errors.New("report warmup: handler not configured")
	}

	logger := j.logger()
	start := j.now()
	logger.Info("starting report warmup")

	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := j.Reporting.Dashboard(warmCtx); err != nil {
		logger.Error("warm dashboard", slog.Any("error", err))
		return err
	}
	for _, granularity := range []reporting.Granularity{
		reporting.GranularityDaily,
		reporting.GranularityWeekly,
		reporting.GranularityMonthly,
	} {
		if _, err := j.Reporting.SalesReport(warmCtx, reporting.ReportQuery{Granularity: granularity}); err != nil {
			logger.Error("warm report", slog.String("granularity", string(granularity)), slog.Any("error", err))
			return err
		}
	}

	logger.Info("completed report warmup", slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportWarmup))
}

func (j *ReportWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
