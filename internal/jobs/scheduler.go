// Package jobs runs the periodic FareScore maintenance: closing finished
// days, weekly smoothing and the monthly counter reset.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/abhisek/farefit/internal/calendar"
	"github.com/abhisek/farefit/internal/score"
)

// ScoreRunner is the part of the FareScore service the jobs drive.
type ScoreRunner interface {
	Users(ctx context.Context) ([]string, error)
	CloseDay(ctx context.Context, userID, day string) (*score.DayResult, error)
	SmoothWeekly(ctx context.Context, userID string) (score.State, error)
	ResetMonth(ctx context.Context, userID string) (score.State, error)
}

// Specs are the cron expressions of the three jobs.
type Specs struct {
	Daily   string
	Weekly  string
	Monthly string
}

// Result counts the outcome of one batch over all users.
type Result struct {
	Processed int
	Skipped   int
	Failed    int
}

// Scheduler runs the maintenance jobs on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	scores ScoreRunner
	specs  Specs
	loc    *time.Location
	now    func() time.Time
}

// NewScheduler creates a scheduler evaluating specs in loc.
func NewScheduler(scores ScoreRunner, specs Specs, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		scores: scores,
		specs:  specs,
		loc:    loc,
		now:    time.Now,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context) (Result, error)
	}{
		{"daily", s.specs.Daily, s.RunDaily},
		{"weekly", s.specs.Weekly, s.RunWeekly},
		{"monthly", s.specs.Monthly, s.RunMonthly},
	}
	for _, j := range jobs {
		_, err := s.cron.AddFunc(j.spec, func() {
			log.WithField("job", j.name).Info("[CRON] job started")
			res, err := j.run(ctx)
			entry := log.WithFields(log.Fields{
				"job":       j.name,
				"processed": res.Processed,
				"skipped":   res.Skipped,
				"failed":    res.Failed,
			})
			if err != nil {
				entry.WithError(err).Error("[CRON] job failed")
				return
			}
			entry.Info("[CRON] job finished")
		})
		if err != nil {
			return fmt.Errorf("schedule %s job %q: %w", j.name, j.spec, err)
		}
	}

	s.cron.Start()
	log.WithField("timezone", s.loc.String()).Info("scheduler started")
	return nil
}

// Stop stops the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("scheduler stopped")
}

// RunDaily closes yesterday for every user, along with any days missed
// while the scheduler was down. Users whose day is already closed are
// skipped.
func (s *Scheduler) RunDaily(ctx context.Context) (Result, error) {
	day := calendar.Yesterday(s.now(), s.loc)
	return s.each(ctx, "close day", func(userID string) (bool, error) {
		res, err := s.scores.CloseDay(ctx, userID, day)
		if errors.Is(err, score.ErrDayClosed) || errors.Is(err, score.ErrDayOutOfOrder) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		log.WithFields(log.Fields{
			"user":      userID,
			"day":       day,
			"active":    res.Active,
			"score":     res.After.CurrentScore,
			"caught_up": len(res.CaughtUp),
		}).Debug("day closed")
		return true, nil
	})
}

// RunWeekly applies weekly smoothing for every user.
func (s *Scheduler) RunWeekly(ctx context.Context) (Result, error) {
	return s.each(ctx, "smooth", func(userID string) (bool, error) {
		_, err := s.scores.SmoothWeekly(ctx, userID)
		return err == nil, err
	})
}

// RunMonthly resets the monthly counters of every user.
func (s *Scheduler) RunMonthly(ctx context.Context) (Result, error) {
	return s.each(ctx, "reset month", func(userID string) (bool, error) {
		_, err := s.scores.ResetMonth(ctx, userID)
		return err == nil, err
	})
}

// each runs fn for every user. A failing user is logged and counted; it
// does not stop the batch.
func (s *Scheduler) each(ctx context.Context, what string, fn func(userID string) (bool, error)) (Result, error) {
	var res Result
	users, err := s.scores.Users(ctx)
	if err != nil {
		return res, fmt.Errorf("list users: %w", err)
	}
	for _, id := range users {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		done, err := fn(id)
		switch {
		case err != nil:
			res.Failed++
			log.WithError(err).WithField("user", id).Warnf("%s failed", what)
		case done:
			res.Processed++
		default:
			res.Skipped++
		}
	}
	return res, nil
}
