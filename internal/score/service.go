package score

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/abhisek/farefit/internal/calendar"
	"github.com/abhisek/farefit/internal/daily"
	"github.com/abhisek/farefit/internal/store"
)

var (
	// ErrDayClosed is returned when a day has already been scored for a user.
	ErrDayClosed = errors.New("day already closed")

	// ErrDayOutOfOrder is returned when a later day is already closed.
	ErrDayOutOfOrder = errors.New("a later day is already closed")

	// ErrDayNotOver is returned for today or a future day.
	ErrDayNotOver = errors.New("day has not ended yet")
)

// ConsistencyWindow is the number of closed days ConsistencyRate looks at.
const ConsistencyWindow = 30

// FactsGatherer supplies the raw facts of a day.
type FactsGatherer interface {
	Gather(ctx context.Context, userID, day string) (daily.Facts, error)
}

// DayResult summarizes a closed day.
type DayResult struct {
	Day     string
	Active  bool
	Facts   daily.Facts
	Actions []Action
	Before  State
	After   State

	// CaughtUp holds the skipped days that were closed first, oldest first.
	CaughtUp []DayResult
}

// Service persists FareScore state and its event log.
type Service struct {
	repo  store.ScoreRepo
	facts FactsGatherer
	loc   *time.Location
	now   func() time.Time
}

// NewService creates a FareScore service. Days are bounded in loc; a nil
// loc means time.Local.
func NewService(repo store.ScoreRepo, facts FactsGatherer, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, facts: facts, loc: loc, now: time.Now}
}

// Create stores the initial state for a new user.
func (s *Service) Create(ctx context.Context, userID string) (State, error) {
	st := NewState(s.now())
	if err := s.repo.CreateState(ctx, toRecord(userID, st)); err != nil {
		return State{}, fmt.Errorf("create FareScore: %w", err)
	}
	return st, nil
}

// Get returns a user's current state.
func (s *Service) Get(ctx context.Context, userID string) (State, error) {
	rec, err := s.repo.GetState(ctx, userID)
	if err != nil {
		return State{}, err
	}
	return fromRecord(rec), nil
}

// Users returns the IDs of every user with a FareScore, highest score first.
func (s *Service) Users(ctx context.Context) ([]string, error) {
	recs, err := s.repo.ListStates(ctx, 0)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.UserID
	}
	return ids, nil
}

// Record applies a batch of actions and appends one event per action.
func (s *Service) Record(ctx context.Context, userID string, actions ...Action) (State, error) {
	before, err := s.Get(ctx, userID)
	if err != nil {
		return State{}, err
	}
	after := UpdateDailyScore(before, actions, s.now())
	if err := s.commit(ctx, userID, nil, before, after, actions); err != nil {
		return State{}, err
	}
	return after, nil
}

// CloseDay scores a finished local day: logged meals, workouts and macro
// targets earn points, a day without meals or workouts counts as missed.
// Streaks, inactivity and the consistency rate are advanced here.
//
// Days are closed in order and each one once. Days between the latest
// closed day and day are closed first, so a gap counts against the streak.
func (s *Service) CloseDay(ctx context.Context, userID, day string) (*DayResult, error) {
	if _, err := calendar.Parse(day, s.loc); err != nil {
		return nil, err
	}
	if day >= calendar.Day(s.now(), s.loc) {
		return nil, fmt.Errorf("%s: %w", day, ErrDayNotOver)
	}

	next := day
	last, err := s.repo.LastClosedDay(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, err
	case day == last.Day:
		return nil, fmt.Errorf("%s: %w", day, ErrDayClosed)
	case day < last.Day:
		return nil, fmt.Errorf("%s (last closed %s): %w", day, last.Day, ErrDayOutOfOrder)
	default:
		next = calendar.AddDays(last.Day, 1)
	}

	var caughtUp []DayResult
	for ; next < day; next = calendar.AddDays(next, 1) {
		res, err := s.closeOne(ctx, userID, next)
		if err != nil {
			return nil, fmt.Errorf("catch up: %w", err)
		}
		caughtUp = append(caughtUp, *res)
	}
	if len(caughtUp) > 0 {
		log.WithFields(log.Fields{"user": userID, "days": len(caughtUp)}).Info("closed skipped days")
	}

	res, err := s.closeOne(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	res.CaughtUp = caughtUp
	return res, nil
}

func (s *Service) closeOne(ctx context.Context, userID, day string) (*DayResult, error) {
	facts, err := s.facts.Gather(ctx, userID, day)
	if err != nil {
		// Incomplete facts would be scored as a missed day.
		return nil, fmt.Errorf("gather facts for %s: %w", day, err)
	}

	before, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	active := facts.MealCount > 0 || facts.HasWorkout
	next := before
	var actions []Action
	if active {
		for range facts.MealCount {
			actions = append(actions, NewAction(ActionMealLogged))
		}
		if facts.HasWorkout {
			actions = append(actions, NewAction(ActionWorkoutCompleted))
		}
		if daily.Calculate(facts).Breakdown.MacrosHit.Score > 0 {
			actions = append(actions, NewAction(ActionMacroTargetHit))
		}
		next.StreakDays++
		next.InactiveDays = 0
		if IsMilestone(next.StreakDays) {
			actions = append(actions, Action{
				Type:        ActionStreakMilestone,
				Description: strconv.Itoa(next.StreakDays) + "-day streak",
			})
		}
	} else {
		actions = append(actions, NewAction(ActionMissedDay))
		if next.StreakDays > 0 {
			actions = append(actions, Action{
				Type:        ActionStreakBroken,
				Description: strconv.Itoa(next.StreakDays) + "-day streak lost",
			})
		}
		next.StreakDays = 0
		next.InactiveDays++
		if next.InactiveDays%7 == 0 {
			actions = append(actions, NewAction(ActionInactiveWeek))
		}
	}

	rate, err := s.consistency(ctx, userID, day, active)
	if err != nil {
		log.WithError(err).WithField("user", userID).Warn("consistency rate unavailable")
		rate = before.ConsistencyRate
	}
	next.ConsistencyRate = rate

	after := UpdateDailyScore(next, actions, s.now())
	closed := &store.ScoreDayRecord{
		UserID:   userID,
		Day:      day,
		Active:   active,
		ClosedAt: s.now(),
	}
	err = s.commit(ctx, userID, closed, next, after, actions)
	if errors.Is(err, store.ErrConflict) {
		return nil, fmt.Errorf("%s: %w", day, ErrDayClosed)
	}
	if err != nil {
		return nil, err
	}

	return &DayResult{
		Day:     day,
		Active:  active,
		Facts:   facts,
		Actions: actions,
		Before:  before,
		After:   after,
	}, nil
}

// SmoothWeekly folds the current score into the displayed weekly score.
func (s *Service) SmoothWeekly(ctx context.Context, userID string) (State, error) {
	st, err := s.Get(ctx, userID)
	if err != nil {
		return State{}, err
	}
	st.SmoothedScore = ApplyWeeklySmoothing(st.SmoothedScore, st.CurrentScore)
	if err := s.repo.SaveState(ctx, toRecord(userID, st)); err != nil {
		return State{}, fmt.Errorf("save smoothed score: %w", err)
	}
	return st, nil
}

// ResetMonth zeroes the user's monthly counters.
func (s *Service) ResetMonth(ctx context.Context, userID string) (State, error) {
	st, err := s.Get(ctx, userID)
	if err != nil {
		return State{}, err
	}
	st = st.ResetMonth()
	if err := s.repo.SaveState(ctx, toRecord(userID, st)); err != nil {
		return State{}, fmt.Errorf("reset month: %w", err)
	}
	return st, nil
}

// History returns the user's most recent score events, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]store.ScoreEvent, error) {
	return s.repo.QueryScoreEvents(ctx, userID, store.QueryOpts{Limit: limit})
}

// commit stores after with one event per action, and marks day closed
// when it is set. Deltas are computed against before.
func (s *Service) commit(ctx context.Context, userID string, day *store.ScoreDayRecord, before, after State, actions []Action) error {
	events := make([]store.ScoreEventData, len(actions))
	for i, a := range actions {
		events[i] = store.ScoreEventData{
			UserID:      userID,
			Action:      string(a.Type),
			Description: a.Description,
			Delta:       CalculateScoreChange(a, before),
			ScoreAfter:  after.CurrentScore,
		}
	}
	err := s.repo.Commit(ctx, store.ScoreCommit{
		Day:    day,
		State:  toRecord(userID, after),
		Events: events,
	})
	if err != nil {
		return fmt.Errorf("save FareScore: %w", err)
	}
	return nil
}

// consistency returns the share of active days among the last
// ConsistencyWindow closed days, including day itself.
func (s *Service) consistency(ctx context.Context, userID, day string, active bool) (float64, error) {
	prev, err := s.repo.RecentDays(ctx, userID, day, ConsistencyWindow-1)
	if err != nil {
		return 0, err
	}
	total, hits := len(prev)+1, 0
	if active {
		hits++
	}
	for _, d := range prev {
		if d.Active {
			hits++
		}
	}
	return float64(hits) / float64(total), nil
}

func toRecord(userID string, st State) store.ScoreStateRecord {
	return store.ScoreStateRecord{
		UserID:          userID,
		CurrentScore:    st.CurrentScore,
		SmoothedScore:   st.SmoothedScore,
		StreakDays:      st.StreakDays,
		InactiveDays:    st.InactiveDays,
		MealsMonth:      st.MealsLoggedThisMonth,
		WorkoutsMonth:   st.WorkoutsThisMonth,
		PenaltiesMonth:  st.PenaltiesThisMonth,
		ConsistencyRate: st.ConsistencyRate,
		LastUpdate:      st.LastUpdateDate,
	}
}

func fromRecord(r *store.ScoreStateRecord) State {
	return State{
		CurrentScore:         r.CurrentScore,
		SmoothedScore:        r.SmoothedScore,
		StreakDays:           r.StreakDays,
		InactiveDays:         r.InactiveDays,
		MealsLoggedThisMonth: r.MealsMonth,
		WorkoutsThisMonth:    r.WorkoutsMonth,
		PenaltiesThisMonth:   r.PenaltiesMonth,
		LastUpdateDate:       r.LastUpdate,
		ConsistencyRate:      r.ConsistencyRate,
	}
}
