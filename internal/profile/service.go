package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/abhisek/farefit/internal/score"
	"github.com/abhisek/farefit/internal/store"
)

// ScoreCreator initializes a user's FareScore.
type ScoreCreator interface {
	Create(ctx context.Context, userID string) (score.State, error)
}

// Service manages profiles and nutrition goals.
type Service struct {
	repo   store.ProfileRepo
	scores ScoreCreator
	now    func() time.Time
}

// NewService creates a profile service.
func NewService(repo store.ProfileRepo, scores ScoreCreator) *Service {
	return &Service{repo: repo, scores: scores, now: time.Now}
}

// Onboard validates and stores a new profile with its goals and opens the
// user's FareScore at the initial score.
func (s *Service) Onboard(ctx context.Context, in OnboardInput) (*Profile, Goals, error) {
	now := s.now()
	if err := in.Profile.Validate(now); err != nil {
		return nil, Goals{}, err
	}

	goals := SuggestGoals(in.Profile, now)
	if in.Goals != nil {
		if err := in.Goals.Validate(); err != nil {
			return nil, Goals{}, err
		}
		goals = *in.Goals
	}

	p := in.Profile
	p.CreatedAt = now
	err := s.repo.CreateProfile(ctx, toRecord(p))
	if errors.Is(err, store.ErrConflict) {
		return nil, Goals{}, fmt.Errorf("%s: %w", p.ID, ErrAlreadyOnboarded)
	}
	if err != nil {
		return nil, Goals{}, err
	}

	if err := s.saveGoals(ctx, p.ID, goals); err != nil {
		return nil, Goals{}, err
	}
	if _, err := s.scores.Create(ctx, p.ID); err != nil {
		return nil, Goals{}, err
	}

	log.WithFields(log.Fields{
		"user":     p.ID,
		"calories": goals.CalorieTarget,
		"protein":  goals.ProteinTarget,
	}).Info("user onboarded")
	return &p, goals, nil
}

// Get returns a profile and its goals. Goals are zero when none are stored.
func (s *Service) Get(ctx context.Context, userID string) (*Profile, Goals, error) {
	rec, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, Goals{}, err
	}
	p := fromRecord(rec)

	g, err := s.repo.GetGoals(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &p, Goals{}, nil
	}
	if err != nil {
		return nil, Goals{}, err
	}
	return &p, Goals{
		CalorieTarget: g.Calories,
		ProteinTarget: g.ProteinG,
		CarbTarget:    g.CarbsG,
		FatTarget:     g.FatG,
	}, nil
}

// List returns every profile ordered by ID.
func (s *Service) List(ctx context.Context) ([]Profile, error) {
	recs, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Profile, len(recs))
	for i := range recs {
		out[i] = fromRecord(&recs[i])
	}
	return out, nil
}

// UpdateGoals replaces a user's targets.
func (s *Service) UpdateGoals(ctx context.Context, userID string, g Goals) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if _, err := s.repo.GetProfile(ctx, userID); err != nil {
		return err
	}
	return s.saveGoals(ctx, userID, g)
}

// Validate rejects negative targets and a zero calorie target.
func (g Goals) Validate() error {
	if g.CalorieTarget <= 0 {
		return fmt.Errorf("%w: calorie target must be positive", ErrInvalidProfile)
	}
	if g.ProteinTarget < 0 || g.CarbTarget < 0 || g.FatTarget < 0 {
		return fmt.Errorf("%w: macro targets must not be negative", ErrInvalidProfile)
	}
	return nil
}

func (s *Service) saveGoals(ctx context.Context, userID string, g Goals) error {
	err := s.repo.SaveGoals(ctx, store.GoalsRecord{
		UserID:    userID,
		Calories:  g.CalorieTarget,
		ProteinG:  g.ProteinTarget,
		CarbsG:    g.CarbTarget,
		FatG:      g.FatTarget,
		UpdatedAt: s.now(),
	})
	if err != nil {
		return fmt.Errorf("save goals: %w", err)
	}
	return nil
}

func toRecord(p Profile) store.ProfileRecord {
	return store.ProfileRecord{
		ID:            p.ID,
		DisplayName:   p.DisplayName,
		Sex:           string(p.Sex),
		BirthYear:     p.BirthYear,
		HeightCM:      p.HeightCM,
		WeightKG:      p.WeightKG,
		ActivityLevel: string(p.ActivityLevel),
		Goal:          string(p.Goal),
		CreatedAt:     p.CreatedAt,
	}
}

func fromRecord(r *store.ProfileRecord) Profile {
	return Profile{
		ID:            r.ID,
		DisplayName:   r.DisplayName,
		Sex:           Sex(r.Sex),
		BirthYear:     r.BirthYear,
		HeightCM:      r.HeightCM,
		WeightKG:      r.WeightKG,
		ActivityLevel: ActivityLevel(r.ActivityLevel),
		Goal:          GoalKind(r.Goal),
		CreatedAt:     r.CreatedAt,
	}
}
