package score

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/farefit/internal/calendar"
	"github.com/abhisek/farefit/internal/daily"
	"github.com/abhisek/farefit/internal/store"
)

// brokenDay is a day whose facts cannot be read.
const brokenDay = "2026-03-09"

// serviceNow is late enough that every day used below has ended.
var serviceNow = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

type fakeFacts map[string]daily.Facts

func (f fakeFacts) Gather(_ context.Context, _ string, day string) (daily.Facts, error) {
	if day == brokenDay {
		return daily.Facts{}, errors.New("meals: offline")
	}
	return f[day], nil
}

// flakyRepo fails the next commit.
type flakyRepo struct {
	store.ScoreRepo
	fail bool
}

func (r *flakyRepo) Commit(ctx context.Context, c store.ScoreCommit) error {
	if r.fail {
		r.fail = false
		return errors.New("disk full")
	}
	return r.ScoreRepo.Commit(ctx, c)
}

func newTestService(t *testing.T, facts fakeFacts) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "score.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.ProfileRepo().CreateProfile(t.Context(), store.ProfileRecord{
		ID: "ana", DisplayName: "Ana", CreatedAt: time.Now(),
	}))

	svc := NewService(st.ScoreRepo(), facts, time.UTC)
	svc.now = func() time.Time { return serviceNow }
	_, err = svc.Create(t.Context(), "ana")
	require.NoError(t, err)
	return svc, st
}

func TestServiceCreateTwice(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.Create(t.Context(), "ana")
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestServiceRecord(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := t.Context()

	st, err := svc.Record(ctx, "ana",
		NewAction(ActionMealLogged),
		NewAction(ActionWorkoutCompleted),
		WithValue(ActionSleepLogged, 4),
	)
	require.NoError(t, err)
	assert.Equal(t, 357, st.CurrentScore)

	got, err := svc.Get(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 357, got.CurrentScore)
	assert.Equal(t, 1, got.MealsLoggedThisMonth)
	assert.Equal(t, 1, got.WorkoutsThisMonth)

	events, err := svc.History(ctx, "ana", 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "sleep_logged", events[0].Action)
	assert.Equal(t, 4, events[0].Delta)
	assert.Equal(t, 357, events[0].ScoreAfter)
}

func TestServiceRecordUnknownUser(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.Record(t.Context(), "nobody", NewAction(ActionMealLogged))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCloseDayActive(t *testing.T) {
	svc, _ := newTestService(t, fakeFacts{
		"2026-03-13": {MealCount: 3, HasWorkout: true, ProteinSum: 160, ProteinTarget: 150},
	})

	res, err := svc.CloseDay(t.Context(), "ana", "2026-03-13")
	require.NoError(t, err)
	assert.True(t, res.Active)
	// 3 meals + workout + macros = 3 + 2 + 3.
	assert.Equal(t, 358, res.After.CurrentScore)
	assert.Equal(t, 1, res.After.StreakDays)
	assert.Equal(t, 1.0, res.After.ConsistencyRate)
	assert.Equal(t, 3, res.After.MealsLoggedThisMonth)

	_, err = svc.CloseDay(t.Context(), "ana", "2026-03-13")
	assert.ErrorIs(t, err, ErrDayClosed)
}

func TestCloseDayMissedBreaksStreak(t *testing.T) {
	facts := fakeFacts{}
	svc, _ := newTestService(t, facts)
	ctx := t.Context()

	days := []string{"2026-03-01", "2026-03-02", "2026-03-03"}
	for _, d := range days {
		facts[d] = daily.Facts{MealCount: 1}
		_, err := svc.CloseDay(ctx, "ana", d)
		require.NoError(t, err)
	}

	res, err := svc.CloseDay(ctx, "ana", "2026-03-04")
	require.NoError(t, err)
	assert.False(t, res.Active)
	require.Len(t, res.Actions, 2)
	assert.Equal(t, ActionMissedDay, res.Actions[0].Type)
	assert.Equal(t, ActionStreakBroken, res.Actions[1].Type)
	assert.Equal(t, 0, res.After.StreakDays)
	assert.Equal(t, res.Before.CurrentScore-7, res.After.CurrentScore)
	assert.Equal(t, 2, res.After.PenaltiesThisMonth)
	assert.Equal(t, 0.75, res.After.ConsistencyRate)
}

func TestCloseDayMilestoneAndInactiveWeek(t *testing.T) {
	facts := fakeFacts{}
	svc, _ := newTestService(t, facts)
	ctx := t.Context()

	day := "2026-04-01"
	var res *DayResult
	var err error
	for i := 0; i < 7; i++ {
		facts[day] = daily.Facts{HasWorkout: true}
		res, err = svc.CloseDay(ctx, "ana", day)
		require.NoError(t, err)
		day = calendar.AddDays(day, 1)
	}
	assert.Equal(t, 7, res.After.StreakDays)
	assert.Equal(t, ActionStreakMilestone, res.Actions[len(res.Actions)-1].Type)
	// Seven workouts at +2 plus one milestone.
	assert.Equal(t, 350+14+5, res.After.CurrentScore)

	var inactiveWeek int
	for i := 0; i < 14; i++ {
		res, err = svc.CloseDay(ctx, "ana", day)
		require.NoError(t, err)
		for _, a := range res.Actions {
			if a.Type == ActionInactiveWeek {
				inactiveWeek++
			}
		}
		day = calendar.AddDays(day, 1)
	}
	assert.Equal(t, 2, inactiveWeek)
	assert.Equal(t, 14, res.After.InactiveDays)
}

func TestCloseDayRefusesIncompleteFacts(t *testing.T) {
	svc, st := newTestService(t, fakeFacts{})
	_, err := svc.CloseDay(t.Context(), "ana", brokenDay)
	require.Error(t, err)

	_, err = st.ScoreRepo().LastClosedDay(t.Context(), "ana")
	assert.ErrorIs(t, err, store.ErrNotFound, "a day with missing facts must stay open")
}

func TestCloseDayCatchesUpSkippedDays(t *testing.T) {
	svc, st := newTestService(t, fakeFacts{
		"2026-03-01": {MealCount: 2},
		"2026-03-03": {MealCount: 1},
		"2026-03-05": {HasWorkout: true},
	})
	ctx := t.Context()

	_, err := svc.CloseDay(ctx, "ana", "2026-03-01")
	require.NoError(t, err)

	res, err := svc.CloseDay(ctx, "ana", "2026-03-05")
	require.NoError(t, err)
	require.Len(t, res.CaughtUp, 3)

	var days []string
	for _, r := range res.CaughtUp {
		days = append(days, r.Day)
	}
	assert.Equal(t, []string{"2026-03-02", "2026-03-03", "2026-03-04"}, days)
	assert.False(t, res.CaughtUp[0].Active)
	assert.Contains(t, res.CaughtUp[0].Actions, Action{Type: ActionStreakBroken, Description: "1-day streak lost"})
	assert.True(t, res.CaughtUp[1].Active)
	assert.False(t, res.CaughtUp[2].Active)

	assert.True(t, res.Active)
	assert.Equal(t, 1, res.After.StreakDays, "the gap resets the streak")
	assert.Equal(t, res.CaughtUp[2].After.CurrentScore, res.Before.CurrentScore)
	assert.Equal(t, 0.6, res.After.ConsistencyRate)

	closed, err := st.ScoreRepo().RecentDays(ctx, "ana", "2026-03-06", 0)
	require.NoError(t, err)
	assert.Len(t, closed, 5)
}

func TestCloseDayStopsCatchUpOnError(t *testing.T) {
	svc, st := newTestService(t, fakeFacts{"2026-03-07": {MealCount: 1}})
	ctx := t.Context()

	_, err := svc.CloseDay(ctx, "ana", "2026-03-07")
	require.NoError(t, err)

	_, err = svc.CloseDay(ctx, "ana", "2026-03-11")
	require.Error(t, err)

	last, err := st.ScoreRepo().LastClosedDay(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-08", last.Day, "days before the failure stay closed")
}

func TestCloseDayRejectsEarlierDay(t *testing.T) {
	svc, _ := newTestService(t, fakeFacts{
		"2026-03-03": {MealCount: 1},
		"2026-03-05": {MealCount: 1},
	})
	ctx := t.Context()

	_, err := svc.CloseDay(ctx, "ana", "2026-03-05")
	require.NoError(t, err)

	_, err = svc.CloseDay(ctx, "ana", "2026-03-03")
	assert.ErrorIs(t, err, ErrDayOutOfOrder)
	_, err = svc.CloseDay(ctx, "ana", "2026-03-05")
	assert.ErrorIs(t, err, ErrDayClosed)

	st, err := svc.Get(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 1, st.StreakDays)
}

func TestCloseDayRejectsUnfinishedDay(t *testing.T) {
	svc, st := newTestService(t, fakeFacts{})
	ctx := t.Context()

	for _, day := range []string{calendar.Day(serviceNow, time.UTC), "2099-01-01"} {
		_, err := svc.CloseDay(ctx, "ana", day)
		assert.ErrorIs(t, err, ErrDayNotOver, day)
	}
	_, err := svc.CloseDay(ctx, "ana", "03/01/2026")
	assert.Error(t, err)

	_, err = st.ScoreRepo().LastClosedDay(ctx, "ana")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCloseDayRetriesAfterFailedCommit(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "score.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	ctx := t.Context()
	require.NoError(t, st.ProfileRepo().CreateProfile(ctx, store.ProfileRecord{
		ID: "ana", DisplayName: "Ana", CreatedAt: time.Now(),
	}))

	repo := &flakyRepo{ScoreRepo: st.ScoreRepo(), fail: true}
	svc := NewService(repo, fakeFacts{"2026-03-01": {MealCount: 2}}, time.UTC)
	svc.now = func() time.Time { return serviceNow }
	_, err = svc.Create(ctx, "ana")
	require.NoError(t, err)

	_, err = svc.CloseDay(ctx, "ana", "2026-03-01")
	require.ErrorContains(t, err, "disk full")

	res, err := svc.CloseDay(ctx, "ana", "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 352, res.After.CurrentScore)
	assert.Equal(t, 2, res.After.MealsLoggedThisMonth)

	events, err := svc.History(ctx, "ana", 0)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestSmoothWeeklyAndResetMonth(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := t.Context()

	_, err := svc.Record(ctx, "ana", WithValue(ActionMealLogged, 550))
	require.NoError(t, err)

	st, err := svc.SmoothWeekly(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 850, st.CurrentScore)
	assert.Equal(t, ApplyWeeklySmoothing(350, 850), st.SmoothedScore)

	st, err = svc.ResetMonth(ctx, "ana")
	require.NoError(t, err)
	assert.Zero(t, st.MealsLoggedThisMonth)
	assert.Equal(t, 850, st.CurrentScore)

	users, err := svc.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana"}, users)
}
