package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotrack/internal/repositories"
)

// PollInterval is how often the tracker polls the music service. Derived
// from the minutes divisor so the two cannot drift apart.
const PollInterval = time.Minute / repositories.TicksPerMinute

// reportInterval is how often the report job fires once anchored.
const reportInterval = 24 * time.Hour

// Scheduler drives the poll job and the report job on independent timelines.
// The jobs share no mutable state; a slow report never delays a poll tick.
type Scheduler struct {
	tracker    *Tracker
	reporter   *Reporter
	reportHour int
	logger     *log.Logger

	// now is swapped in tests to pin the clock.
	now func() time.Time
}

// NewScheduler creates a Scheduler firing reports at the given local hour.
func NewScheduler(tracker *Tracker, reporter *Reporter, reportHour int, logger *log.Logger) *Scheduler {
	return &Scheduler{
		tracker:    tracker,
		reporter:   reporter,
		reportHour: reportHour,
		logger:     logger,
		now:        time.Now,
	}
}

// Run blocks until the context is cancelled, running both jobs. The poll job
// fires immediately and then every PollInterval; the report job first fires
// at the next occurrence of the configured hour and then every 24 hours.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		s.pollLoop(ctx)
	}()

	go func() {
		defer wg.Done()
		s.reportLoop(ctx)
	}()

	wg.Wait()
}

func (s *Scheduler) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	s.logger.Info("poll job started", "interval", PollInterval)
	s.tracker.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("poll job stopped")
			return
		case <-ticker.C:
			s.tracker.Tick(ctx)
		}
	}
}

func (s *Scheduler) reportLoop(ctx context.Context) {
	delay := s.untilReportHour(s.now())
	s.logger.Info("report job scheduled", "first_run_in", delay, "hour", s.reportHour)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		s.logger.Info("report job stopped")
		return
	case <-timer.C:
	}

	ticker := time.NewTicker(reportInterval)
	defer ticker.Stop()

	s.reporter.SendDue(ctx, s.now())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("report job stopped")
			return
		case <-ticker.C:
			s.reporter.SendDue(ctx, s.now())
		}
	}
}

// untilReportHour computes the delay until the next occurrence of the
// configured hour: today if it is still ahead, otherwise tomorrow.
func (s *Scheduler) untilReportHour(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.reportHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}

	return next.Sub(now)
}
