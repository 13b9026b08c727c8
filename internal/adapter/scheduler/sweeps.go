package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rl1809/warehouse-ledger/internal/core/service"
)

// Sweeper is the part of the inventory service the scheduler drives.
type Sweeper interface {
	RedistributeSorting() (service.SweepReport, error)
	DisposeExpired() (service.SweepReport, error)
}

type Schedules struct {
	Redistribute string
	Disposal     string
}

// zapCronLogger routes the scheduler's own logging into zap. Its chatty
// per-tick Info records go to Debug.
type zapCronLogger struct {
	sugar *zap.SugaredLogger
}

var _ cron.Logger = zapCronLogger{}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Sweeps runs the periodic sweeps on a cron. A job never overlaps itself:
// a tick that fires while the previous run is still going is skipped.
type Sweeps struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewSweeps registers a job for every non-empty schedule. It does not start the cron.
func NewSweeps(sweeper Sweeper, schedules Schedules, logger *zap.Logger) (*Sweeps, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	// No cron.Recover: a failed transfer rollback panics and must take the process down.
	cronLog := zapCronLogger{sugar: logger.Sugar()}
	s := &Sweeps{
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.SkipIfStillRunning(cronLog)),
		),
		logger: logger,
	}

	jobs := []struct {
		name     string
		schedule string
		run      func() (service.SweepReport, error)
	}{
		{"redistribute", schedules.Redistribute, sweeper.RedistributeSorting},
		{"disposal", schedules.Disposal, sweeper.DisposeExpired},
	}
	for _, j := range jobs {
		if j.schedule == "" {
			logger.Info("sweep disabled", zap.String("job", j.name))
			continue
		}
		name, run := j.name, j.run
		if _, err := s.cron.AddFunc(j.schedule, func() { s.runJob(name, run) }); err != nil {
			return nil, fmt.Errorf("scheduler: register %s job: %w", name, err)
		}
		logger.Info("sweep scheduled", zap.String("job", name), zap.String("schedule", j.schedule))
	}
	return s, nil
}

func (s *Sweeps) runJob(name string, run func() (service.SweepReport, error)) {
	report, err := run()
	if err != nil {
		s.logger.Warn("sweep failed", zap.String("job", name), zap.Error(err))
		return
	}
	s.logger.Info("sweep completed",
		zap.String("job", name),
		zap.Int("lines", report.LinesExamined),
		zap.Int("moved", report.Moved),
		zap.Int("stranded", report.Stranded),
	)
}

func (s *Sweeps) Jobs() int {
	return len(s.cron.Entries())
}

func (s *Sweeps) Start() {
	s.cron.Start()
}

// Stop halts scheduling and returns a context that is done once running jobs finish.
func (s *Sweeps) Stop() context.Context {
	return s.cron.Stop()
}
