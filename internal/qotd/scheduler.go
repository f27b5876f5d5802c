package qotd

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Scheduler fires Rollover once per day at a fixed UTC wall-clock time.
// Ticks are strictly sequential: a slow rollover delays the next tick
// rather than overlapping it.
type Scheduler struct {
	svc  *Service
	log  *logrus.Logger
	hour int
	min  int
	now  func() time.Time
}

// NewScheduler parses at as "HH:MM" in UTC.
func NewScheduler(svc *Service, log *logrus.Logger, at string) (*Scheduler, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return nil, fmt.Errorf("rollover time %q: %w", at, err)
	}
	return &Scheduler{svc: svc, log: log, hour: t.Hour(), min: t.Minute(), now: time.Now}, nil
}

func (sc *Scheduler) next() time.Time {
	now := sc.now().UTC()
	at := time.Date(now.Year(), now.Month(), now.Day(), sc.hour, sc.min, 0, 0, time.UTC)
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at
}

// Run blocks until ctx is done.
func (sc *Scheduler) Run(ctx context.Context) {
	for {
		at := sc.next()
		sc.log.WithField("at", at.Format(time.RFC3339)).Info("next rollover scheduled")
		timer := time.NewTimer(time.Until(at))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if err := sc.svc.Rollover(ctx); err != nil {
			sc.log.WithError(err).Error("scheduled rollover failed")
		}
	}
}
