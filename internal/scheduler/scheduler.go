// Package scheduler runs jobs on cron expressions until a context ends.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"wowprofile/pkg/logger"
)

// Scheduler wraps a cron runner whose jobs never overlap: a run that is
// still going when its next tick arrives makes that tick a no-op.
type Scheduler struct {
	cron   *cron.Cron
	logger logger.Logger
}

// New creates a Scheduler using the local time zone.
func New(log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.GetLogger()
	}
	log = log.WithField("component", "scheduler")
	cl := cronLogger{logger: log}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: log,
	}
}

// Add registers job under a standard five-field spec or a descriptor such
// as "@daily" or "@every 6h".
func (s *Scheduler) Add(spec string, job func()) error {
	if _, err := s.cron.AddFunc(spec, job); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

// Next reports when the earliest job fires next. It is zero before Run or
// when nothing is scheduled.
func (s *Scheduler) Next() time.Time {
	var next time.Time
	for _, e := range s.cron.Entries() {
		if !e.Next.IsZero() && (next.IsZero() || e.Next.Before(next)) {
			next = e.Next
		}
	}
	return next
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.logger.WithField("next_run", s.Next().Format(time.RFC3339)).Info("Scheduler started")

	<-ctx.Done()

	s.logger.Info("Scheduler stopping")
	<-s.cron.Stop().Done()
	return ctx.Err()
}

// cronLogger forwards cron's key/value logging to logger.Logger.
type cronLogger struct {
	logger logger.Logger
}

func (l cronLogger) fields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.DebugWithFields("cron: "+msg, l.fields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.WithError(err).ErrorWithFields("cron: "+msg, l.fields(keysAndValues))
}
