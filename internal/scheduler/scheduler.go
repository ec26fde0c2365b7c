package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DailyReportSpec runs the export report every day at 21:00 UTC.
const DailyReportSpec = "0 21 * * *"

type Job func(ctx context.Context) error

// Scheduler runs the daily export report and an optional snapshot export.
type Scheduler struct {
	cron         *cron.Cron
	ctx          context.Context
	cancel       context.CancelFunc
	log          *zap.Logger
	reportFunc   Job
	snapshotSpec string
	snapshotFunc Job
}

func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
}

func (s *Scheduler) SetReportFunction(f Job) {
	s.reportFunc = f
}

// SetSnapshotFunction registers f under a standard 5-field cron spec. An
// empty spec leaves snapshots disabled.
func (s *Scheduler) SetSnapshotFunction(spec string, f Job) {
	s.snapshotSpec = spec
	s.snapshotFunc = f
}

// Start registers the configured jobs. Nothing runs when no job is set.
func (s *Scheduler) Start() error {
	if s.reportFunc != nil {
		if _, err := s.cron.AddFunc(DailyReportSpec, func() { s.run("daily report", s.reportFunc) }); err != nil {
			return fmt.Errorf("schedule daily report: %w", err)
		}
	}
	if s.snapshotSpec != "" && s.snapshotFunc != nil {
		if _, err := s.cron.AddFunc(s.snapshotSpec, func() { s.run("snapshot export", s.snapshotFunc) }); err != nil {
			return fmt.Errorf("schedule snapshot export %q: %w", s.snapshotSpec, err)
		}
	}
	if len(s.cron.Entries()) == 0 {
		s.log.Warn("no scheduled jobs configured")
		return nil
	}
	s.cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())), zap.String("snapshot", s.snapshotSpec))
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	s.log.Info("scheduled job triggered", zap.String("job", name))
	if err := job(s.ctx); err != nil {
		s.log.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
	}
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
