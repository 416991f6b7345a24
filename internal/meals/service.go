package meals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/abhisek/farefit/internal/calendar"
	"github.com/abhisek/farefit/internal/llm"
	"github.com/abhisek/farefit/internal/store"
)

// Service logs meals and turns free text and label photos into meal drafts.
type Service struct {
	repo     store.MealRepo
	provider llm.Provider
	hub      *Hub
	loc      *time.Location
	now      func() time.Time
}

// NewService creates a meal service. provider may be nil, in which case
// Parse and ScanLabel return ErrNoProvider. A nil hub disables live updates.
func NewService(repo store.MealRepo, provider llm.Provider, hub *Hub, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, provider: provider, hub: hub, loc: loc, now: time.Now}
}

// Log validates and stores a meal. A zero EatenAt means now.
func (s *Service) Log(ctx context.Context, m Meal) (*Meal, error) {
	if err := s.prepare(&m); err != nil {
		return nil, err
	}
	if err := s.repo.InsertMeal(ctx, toRecord(m)); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user":     m.UserID,
		"meal":     m.Name,
		"type":     m.Type,
		"calories": m.Calories,
	}).Debug("meal logged")

	s.publish(ctx, m.UserID)
	return &m, nil
}

// Delete removes one of the user's meals.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteMeal(ctx, userID, id); err != nil {
		return err
	}
	s.publish(ctx, userID)
	return nil
}

// ForDay returns the user's meals on a local day, oldest first.
func (s *Service) ForDay(ctx context.Context, userID, day string) ([]Meal, error) {
	recs, err := s.repo.MealsForDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	out := make([]Meal, len(recs))
	for i, r := range recs {
		out[i] = fromRecord(r)
	}
	return out, nil
}

// Today returns the current local day key.
func (s *Service) Today() string {
	return calendar.Day(s.now(), s.loc)
}

// Watch subscribes to the user's meals for today. The current list is
// delivered first; every later change pushes the full list again.
func (s *Service) Watch(ctx context.Context, userID string) (<-chan []Meal, func(), error) {
	if s.hub == nil {
		return nil, nil, fmt.Errorf("live meal updates are disabled")
	}
	ch, cancel := s.hub.Subscribe(userID)
	if err := s.hub.Refresh(userID, s.todayLoader(ctx, userID)); err != nil {
		cancel()
		return nil, nil, err
	}
	return ch, cancel, nil
}

func (s *Service) prepare(m *Meal) error {
	now := s.now()
	if m.EatenAt.IsZero() {
		m.EatenAt = now
	}
	if m.Type == "" {
		m.Type = TypeForHour(m.EatenAt.In(s.loc).Hour())
	}
	if m.Source == "" {
		m.Source = SourceManual
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if m.UserID == "" {
		return fmt.Errorf("%w: user is required", ErrInvalidMeal)
	}
	m.ID = uuid.NewString()
	m.Day = calendar.Day(m.EatenAt, s.loc)
	m.CreatedAt = now
	return nil
}

func (s *Service) publish(ctx context.Context, userID string) {
	if s.hub == nil {
		return
	}
	if err := s.hub.Refresh(userID, s.todayLoader(ctx, userID)); err != nil {
		log.WithError(err).WithField("user", userID).Warn("live meal refresh failed")
	}
}

func (s *Service) todayLoader(ctx context.Context, userID string) func() ([]Meal, error) {
	return func() ([]Meal, error) {
		return s.ForDay(ctx, userID, s.Today())
	}
}

func toRecord(m Meal) store.MealRecord {
	return store.MealRecord{
		ID:          m.ID,
		UserID:      m.UserID,
		Name:        m.Name,
		MealType:    string(m.Type),
		Source:      string(m.Source),
		Calories:    m.Calories,
		Protein:     m.Protein,
		Carbs:       m.Carbs,
		Fats:        m.Fats,
		Fiber:       m.Fiber,
		ServingSize: m.ServingSize,
		EatenAt:     m.EatenAt,
		Day:         m.Day,
		CreatedAt:   m.CreatedAt,
	}
}

func fromRecord(r store.MealRecord) Meal {
	return Meal{
		ID:     r.ID,
		UserID: r.UserID,
		Name:   r.Name,
		Type:   MealType(r.MealType),
		Source: Source(r.Source),
		Macros: Macros{
			Calories: r.Calories,
			Protein:  r.Protein,
			Carbs:    r.Carbs,
			Fats:     r.Fats,
			Fiber:    r.Fiber,
		},
		ServingSize: r.ServingSize,
		EatenAt:     r.EatenAt,
		Day:         r.Day,
		CreatedAt:   r.CreatedAt,
	}
}
