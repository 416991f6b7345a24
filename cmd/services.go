package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/abhisek/farefit/internal/coach"
	"github.com/abhisek/farefit/internal/daily"
	"github.com/abhisek/farefit/internal/llm"
	"github.com/abhisek/farefit/internal/meals"
	"github.com/abhisek/farefit/internal/profile"
	"github.com/abhisek/farefit/internal/score"
	"github.com/abhisek/farefit/internal/social"
	"github.com/abhisek/farefit/internal/store"
	"github.com/abhisek/farefit/internal/workouts"
)

// services wires the store into every domain service.
type services struct {
	store    *store.Store
	loc      *time.Location
	provider llm.Provider
	hub      *meals.Hub

	profiles *profile.Service
	meals    *meals.Service
	workouts *workouts.Service
	daily    *daily.Service
	scores   *score.Service
	social   *social.Service
	coach    *coach.Service
}

// openServices opens the configured store and builds the services. With
// withLLM set, an LLM provider is resolved from the environment; a missing
// provider only disables AI features.
func openServices(ctx context.Context, withLLM bool) (*services, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if !store.IsPostgresDSN(cfg.DB) {
		if err := store.EnsureDir(cfg.DB); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	st, err := store.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	s := &services{store: st, loc: loc, hub: meals.NewHub()}
	if withLLM {
		s.provider = resolveProvider(ctx, st.EventRepo())
	}

	s.daily = daily.NewService(st.MealRepo(), st.WorkoutRepo(), st.ProfileRepo())
	s.scores = score.NewService(st.ScoreRepo(), s.daily, loc)
	s.profiles = profile.NewService(st.ProfileRepo(), s.scores)
	s.meals = meals.NewService(st.MealRepo(), s.provider, s.hub, loc)
	s.workouts = workouts.NewService(st.WorkoutRepo(), loc)
	s.social = social.NewService(st.ProfileRepo(), st.SocialRepo(), st.ScoreRepo())

	coachCfg := coach.DefaultConfig()
	coachCfg.HistoryTurns = cfg.Coach.History
	s.coach = coach.NewService(s.provider, st.ChatRepo(), coach.Sources{
		Profiles: s.profiles,
		Meals:    s.meals,
		Daily:    s.daily,
		Scores:   s.scores,
	}, coachCfg, loc)

	return s, nil
}

func (s *services) Close() error {
	return s.store.Close()
}

// today is the current local day key.
func (s *services) today() string {
	return s.meals.Today()
}

func resolveProvider(ctx context.Context, events store.EventRepo) llm.Provider {
	llmCfg, ok, err := llm.Resolve()
	if err != nil {
		log.WithError(err).Warn("LLM configuration invalid; AI features are unavailable")
		return nil
	}
	if !ok {
		log.Warn("no LLM provider configured (set FAREFIT_GEMINI_API_KEY or GEMINI_API_KEY); AI features are unavailable")
		return nil
	}
	p, err := llm.NewProvider(ctx, llmCfg, events)
	if err != nil {
		log.WithError(err).Warn("LLM provider unavailable")
		return nil
	}
	return p
}
