package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "farefit.db"))
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func seedProfile(t *testing.T, s *Store, id string) {
	t.Helper()
	err := s.ProfileRepo().CreateProfile(t.Context(), ProfileRecord{
		ID:          id,
		DisplayName: id,
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestIsPostgresDSN(t *testing.T) {
	assert.True(t, IsPostgresDSN("postgres://u:p@localhost/farefit"))
	assert.True(t, IsPostgresDSN("postgresql://localhost/farefit"))
	assert.False(t, IsPostgresDSN("/tmp/farefit.db"))
	assert.False(t, IsPostgresDSN("file::memory:?cache=shared"))
}

func TestSequenceMonotonic(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	var prev int64
	for i := 0; i < 5; i++ {
		n, err := s.seq.Next(ctx)
		require.NoError(t, err)
		assert.Greater(t, n, prev)
		prev = n
	}
}

func TestReopenKeepsSchemaAndData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farefit.db")
	ctx := t.Context()

	s, err := Open(path)
	require.NoError(t, err)
	seedProfile(t, s, "ana")
	first, err := s.seq.Next(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err, "second migration on an existing database")
	t.Cleanup(func() { s.Close() })

	p, err := s.ProfileRepo().GetProfile(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "ana", p.ID)

	next, err := s.seq.Next(ctx)
	require.NoError(t, err)
	assert.Greater(t, next, first)
}

func TestGoalsRequireProfile(t *testing.T) {
	s := openTestStore(t)
	err := s.ProfileRepo().SaveGoals(t.Context(), GoalsRecord{UserID: "ghost", Calories: 2000, UpdatedAt: time.Now()})
	assert.Error(t, err, "goals reference profiles.id")
}

func TestProfileAndGoals(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProfileRepo()
	ctx := t.Context()

	_, err := repo.GetProfile(ctx, "ana")
	require.ErrorIs(t, err, ErrNotFound)

	seedProfile(t, s, "ana")
	err = repo.CreateProfile(ctx, ProfileRecord{ID: "ana", DisplayName: "Ana", CreatedAt: time.Now()})
	require.ErrorIs(t, err, ErrConflict)

	p, err := repo.GetProfile(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "ana", p.DisplayName)

	_, err = repo.GetGoals(ctx, "ana")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.SaveGoals(ctx, GoalsRecord{UserID: "ana", Calories: 2000, ProteinG: 150, UpdatedAt: time.Now()}))
	require.NoError(t, repo.SaveGoals(ctx, GoalsRecord{UserID: "ana", Calories: 2200, ProteinG: 160, UpdatedAt: time.Now()}))

	g, err := repo.GetGoals(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 2200.0, g.Calories)
	assert.Equal(t, 160.0, g.ProteinG)
}

func TestMealsForDay(t *testing.T) {
	s := openTestStore(t)
	repo := s.MealRepo()
	ctx := t.Context()
	seedProfile(t, s, "ana")

	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	meals := []MealRecord{
		{ID: "m2", UserID: "ana", Name: "Lunch", MealType: "lunch", Source: "manual", Protein: 40, EatenAt: base.Add(4 * time.Hour), Day: "2026-03-14"},
		{ID: "m1", UserID: "ana", Name: "Oats", MealType: "breakfast", Source: "manual", Protein: 20, EatenAt: base, Day: "2026-03-14"},
		{ID: "m3", UserID: "ana", Name: "Pizza", MealType: "dinner", Source: "manual", EatenAt: base.Add(24 * time.Hour), Day: "2026-03-15"},
	}
	for _, m := range meals {
		m.CreatedAt = time.Now()
		require.NoError(t, repo.InsertMeal(ctx, m))
	}

	got, err := repo.MealsForDay(ctx, "ana", "2026-03-14")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "m2", got[1].ID)
	assert.Equal(t, 40.0, got[1].Protein)

	require.NoError(t, repo.DeleteMeal(ctx, "ana", "m1"))
	require.ErrorIs(t, repo.DeleteMeal(ctx, "ana", "m1"), ErrNotFound)
	require.ErrorIs(t, repo.DeleteMeal(ctx, "bob", "m2"), ErrNotFound)
}

func TestRecentWorkouts(t *testing.T) {
	s := openTestStore(t)
	repo := s.WorkoutRepo()
	ctx := t.Context()
	seedProfile(t, s, "ana")

	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		at := base.AddDate(0, 0, i)
		require.NoError(t, repo.InsertWorkout(ctx, WorkoutRecord{
			ID:          string(rune('a' + i)),
			UserID:      "ana",
			Day:         at.Format("2006-01-02"),
			PerformedAt: at,
			Exercises:   "[]",
		}))
	}

	got, err := repo.RecentWorkouts(ctx, "ana", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d", got[0].ID)
	assert.Equal(t, "c", got[1].ID)

	day, err := repo.WorkoutsForDay(ctx, "ana", "2026-03-02")
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, "b", day[0].ID)
}

func TestScoreStateLifecycle(t *testing.T) {
	s := openTestStore(t)
	repo := s.ScoreRepo()
	ctx := t.Context()
	seedProfile(t, s, "ana")
	seedProfile(t, s, "bob")

	now := time.Now()
	require.NoError(t, repo.CreateState(ctx, ScoreStateRecord{UserID: "ana", CurrentScore: 350, SmoothedScore: 350, LastUpdate: now}))
	require.ErrorIs(t, repo.CreateState(ctx, ScoreStateRecord{UserID: "ana", CurrentScore: 350, LastUpdate: now}), ErrConflict)
	require.NoError(t, repo.CreateState(ctx, ScoreStateRecord{UserID: "bob", CurrentScore: 350, SmoothedScore: 350, LastUpdate: now}))

	require.ErrorIs(t, repo.SaveState(ctx, ScoreStateRecord{UserID: "zed", LastUpdate: now}), ErrNotFound)

	st, err := repo.GetState(ctx, "bob")
	require.NoError(t, err)
	st.CurrentScore = 612
	st.StreakDays = 9
	st.ConsistencyRate = 0.5
	require.NoError(t, repo.SaveState(ctx, *st))

	all, err := repo.ListStates(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "bob", all[0].UserID)
	assert.Equal(t, 612, all[0].CurrentScore)
	assert.Equal(t, 0.5, all[0].ConsistencyRate)

	top, err := repo.ListStates(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestScoreEventsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	repo := s.ScoreRepo()
	ctx := t.Context()

	for i, action := range []string{"meal_logged", "workout_completed", "missed_day"} {
		require.NoError(t, repo.AppendScoreEvent(ctx, ScoreEventData{
			UserID: "ana", Action: action, Delta: i, ScoreAfter: 350 + i,
		}))
	}
	require.NoError(t, repo.AppendScoreEvent(ctx, ScoreEventData{UserID: "bob", Action: "meal_logged"}))

	events, err := repo.QueryScoreEvents(ctx, "ana", QueryOpts{Limit: 2})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "missed_day", events[0].Action)
	assert.Equal(t, "workout_completed", events[1].Action)
	assert.Greater(t, events[0].Sequence, events[1].Sequence)

	after, err := repo.QueryScoreEvents(ctx, "ana", QueryOpts{After: events[1].Sequence})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "missed_day", after[0].Action)
}

func TestCloseDayIsOnce(t *testing.T) {
	s := openTestStore(t)
	repo := s.ScoreRepo()
	ctx := t.Context()

	days := []string{"2026-03-10", "2026-03-11", "2026-03-12"}
	for i, d := range days {
		require.NoError(t, repo.CloseDay(ctx, ScoreDayRecord{UserID: "ana", Day: d, Active: i%2 == 0, ClosedAt: time.Now()}))
	}
	require.ErrorIs(t, repo.CloseDay(ctx, ScoreDayRecord{UserID: "ana", Day: "2026-03-11", ClosedAt: time.Now()}), ErrConflict)

	recent, err := repo.RecentDays(ctx, "ana", "2026-03-12", 0)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "2026-03-11", recent[0].Day)
	assert.False(t, recent[0].Active)
	assert.True(t, recent[1].Active)
}

func TestScoreCommitIsAtomic(t *testing.T) {
	s := openTestStore(t)
	repo := s.ScoreRepo()
	ctx := t.Context()
	seedProfile(t, s, "ana")
	require.NoError(t, repo.CreateState(ctx, ScoreStateRecord{UserID: "ana", CurrentScore: 350, LastUpdate: time.Now()}))

	day := &ScoreDayRecord{UserID: "ana", Day: "2026-03-01", Active: true, ClosedAt: time.Now()}
	events := []ScoreEventData{
		{UserID: "ana", Action: "meal_logged", Delta: 1, ScoreAfter: 352},
		{UserID: "ana", Action: "meal_logged", Delta: 1, ScoreAfter: 352},
	}

	// No state row for "ghost": the whole commit rolls back.
	err := repo.Commit(ctx, ScoreCommit{
		Day:    &ScoreDayRecord{UserID: "ghost", Day: "2026-03-01", ClosedAt: time.Now()},
		State:  ScoreStateRecord{UserID: "ghost", LastUpdate: time.Now()},
		Events: []ScoreEventData{{UserID: "ghost", Action: "missed_day"}},
	})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = repo.LastClosedDay(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	ghostEvents, err := repo.QueryScoreEvents(ctx, "ghost", QueryOpts{})
	require.NoError(t, err)
	assert.Empty(t, ghostEvents)

	require.NoError(t, repo.Commit(ctx, ScoreCommit{
		Day:    day,
		State:  ScoreStateRecord{UserID: "ana", CurrentScore: 352, MealsMonth: 2, LastUpdate: time.Now()},
		Events: events,
	}))

	// Closing the same day again leaves state and events untouched.
	err = repo.Commit(ctx, ScoreCommit{
		Day:    day,
		State:  ScoreStateRecord{UserID: "ana", CurrentScore: 400, LastUpdate: time.Now()},
		Events: events,
	})
	require.ErrorIs(t, err, ErrConflict)

	st, err := repo.GetState(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 352, st.CurrentScore)
	assert.Equal(t, 2, st.MealsMonth)

	got, err := repo.QueryScoreEvents(ctx, "ana", QueryOpts{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Greater(t, got[0].Sequence, got[1].Sequence)

	last, err := repo.LastClosedDay(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", last.Day)
	assert.True(t, last.Active)
}

func TestScoreCommitSharesSequence(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()
	seedProfile(t, s, "ana")
	repo := s.ScoreRepo()
	require.NoError(t, repo.CreateState(ctx, ScoreStateRecord{UserID: "ana", LastUpdate: time.Now()}))

	require.NoError(t, repo.AppendScoreEvent(ctx, ScoreEventData{UserID: "ana", Action: "meal_logged"}))
	require.NoError(t, repo.Commit(ctx, ScoreCommit{
		State:  ScoreStateRecord{UserID: "ana", LastUpdate: time.Now()},
		Events: []ScoreEventData{{UserID: "ana", Action: "workout_completed"}},
	}))
	require.NoError(t, repo.AppendScoreEvent(ctx, ScoreEventData{UserID: "ana", Action: "sleep_logged"}))

	got, err := repo.QueryScoreEvents(ctx, "ana", QueryOpts{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "sleep_logged", got[0].Action)
	assert.Equal(t, "workout_completed", got[1].Action)
	assert.Equal(t, got[2].Sequence+1, got[1].Sequence)
	assert.Equal(t, got[1].Sequence+1, got[0].Sequence)
}

func TestFriendships(t *testing.T) {
	s := openTestStore(t)
	repo := s.SocialRepo()
	ctx := t.Context()
	for _, id := range []string{"ana", "bob", "cy"} {
		seedProfile(t, s, id)
	}

	require.NoError(t, repo.AddFriendship(ctx, "ana", "bob"))
	require.NoError(t, repo.AddFriendship(ctx, "ana", "bob"))
	require.NoError(t, repo.AddFriendship(ctx, "cy", "ana"))

	ids, err := repo.FriendIDs(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "cy"}, ids)

	ids, err = repo.FriendIDs(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"ana"}, ids)

	require.NoError(t, repo.RemoveFriendship(ctx, "bob", "ana"))
	require.ErrorIs(t, repo.RemoveFriendship(ctx, "bob", "ana"), ErrNotFound)

	ids, err = repo.FriendIDs(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, []string{"cy"}, ids)
}

func TestChatHistoryOrder(t *testing.T) {
	s := openTestStore(t)
	repo := s.ChatRepo()
	ctx := t.Context()

	for _, c := range []string{"hi", "hello", "how much protein?", "about 150g"} {
		require.NoError(t, repo.AppendChat(ctx, ChatMessageRecord{UserID: "ana", Role: "user", Content: c}))
	}

	msgs, err := repo.RecentChat(ctx, "ana", 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "how much protein?", msgs[0].Content)
	assert.Equal(t, "about 150g", msgs[1].Content)

	require.NoError(t, repo.ClearChat(ctx, "ana"))
	msgs, err = repo.RecentChat(ctx, "ana", 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	data := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "meal-parse", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "meal-parse", InputTokens: 300, OutputTokens: 70, LatencyMs: 400, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "coach", InputTokens: 10, OutputTokens: 5, LatencyMs: 50, Success: false, ErrorMessage: "boom"},
	}
	for _, d := range data {
		require.NoError(t, repo.AppendLLMRequest(ctx, d))
	}

	events, err := repo.QueryLLMEvents(ctx, "", QueryOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "coach", events[0].Purpose)
	assert.Equal(t, "boom", events[0].ErrorMessage)

	parses, err := repo.QueryLLMEvents(ctx, "meal-parse", QueryOpts{Limit: 1})
	require.NoError(t, err)
	require.Len(t, parses, 1)
	assert.Equal(t, 300, parses[0].InputTokens)

	e, err := repo.GetLLMEvent(ctx, events[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 300, e.InputTokens)

	_, err = repo.GetLLMEvent(ctx, 9999)
	require.ErrorIs(t, err, ErrNotFound)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, "coach", byPurpose[0].Purpose)
	assert.Equal(t, "meal-parse", byPurpose[1].Purpose)
	assert.Equal(t, 2, byPurpose[1].Calls)
	assert.Equal(t, 400, byPurpose[1].InputTokens)
	assert.Equal(t, int64(300), byPurpose[1].AvgLatencyMs)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 1)
	assert.Equal(t, 3, byModel[0].Calls)
}
