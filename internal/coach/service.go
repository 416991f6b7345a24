package coach

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/abhisek/farefit/internal/calendar"
	"github.com/abhisek/farefit/internal/daily"
	"github.com/abhisek/farefit/internal/llm"
	"github.com/abhisek/farefit/internal/meals"
	"github.com/abhisek/farefit/internal/profile"
	"github.com/abhisek/farefit/internal/score"
	"github.com/abhisek/farefit/internal/store"
)

// ErrEmptyQuestion is returned when Ask receives a blank question.
var ErrEmptyQuestion = errors.New("question is empty")

// ProfileReader reads a profile and its goals.
type ProfileReader interface {
	Get(ctx context.Context, userID string) (*profile.Profile, profile.Goals, error)
}

// MealReader reads a day's meals.
type MealReader interface {
	ForDay(ctx context.Context, userID, day string) ([]meals.Meal, error)
}

// DailyScorer computes the daily score of a day.
type DailyScorer interface {
	Today(ctx context.Context, userID, day string) daily.Data
}

// ScoreReader reads the FareScore state.
type ScoreReader interface {
	Get(ctx context.Context, userID string) (score.State, error)
}

// Sources are the read models the coach draws its context from. Any of
// them may be nil.
type Sources struct {
	Profiles ProfileReader
	Meals    MealReader
	Daily    DailyScorer
	Scores   ScoreReader
}

// Service answers user questions with an LLM, grounded in their data.
type Service struct {
	provider llm.Provider
	chat     store.ChatRepo
	src      Sources
	cfg      Config
	loc      *time.Location
	now      func() time.Time
}

// NewService creates a coach. A nil provider makes every answer the
// fallback reply.
func NewService(provider llm.Provider, chat store.ChatRepo, src Sources, cfg Config, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{provider: provider, chat: chat, src: src, cfg: cfg, loc: loc, now: time.Now}
}

// Ask answers a question. LLM failures never surface as errors: the user
// gets FallbackReply and Reply.Fallback is set. Errors are only returned
// for blank questions and storage failures.
func (s *Service) Ask(ctx context.Context, userID, question string) (Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Reply{}, ErrEmptyQuestion
	}

	history, err := s.chat.RecentChat(ctx, userID, s.cfg.HistoryTurns)
	if err != nil {
		return Reply{}, err
	}
	if err := s.chat.AppendChat(ctx, store.ChatMessageRecord{
		UserID:    userID,
		Role:      string(llm.RoleUser),
		Content:   question,
		Timestamp: s.now(),
	}); err != nil {
		return Reply{}, err
	}

	reply := s.generate(ctx, userID, history, question)
	if err := s.chat.AppendChat(ctx, store.ChatMessageRecord{
		UserID:    userID,
		Role:      string(llm.RoleAssistant),
		Content:   reply.Text,
		Fallback:  reply.Fallback,
		Timestamp: reply.At,
	}); err != nil {
		log.WithError(err).WithField("user", userID).Warn("failed to store coach reply")
	}
	return reply, nil
}

// History returns up to limit recent messages, oldest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]Message, error) {
	recs, err := s.chat.RecentChat(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Message, len(recs))
	for i, r := range recs {
		out[i] = Message{Role: r.Role, Content: r.Content, Fallback: r.Fallback, At: r.Timestamp}
	}
	return out, nil
}

// Clear deletes the user's conversation.
func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.chat.ClearChat(ctx, userID)
}

func (s *Service) generate(ctx context.Context, userID string, history []store.ChatMessageRecord, question string) Reply {
	fallback := Reply{Text: FallbackReply, Fallback: true, At: s.now()}
	if s.provider == nil {
		return fallback
	}

	msgs := make([]llm.Message, 0, len(history)+1)
	for _, h := range history {
		// Fallback turns carry no information for the model.
		if h.Fallback {
			continue
		}
		msgs = append(msgs, llm.Message{Role: llm.Role(h.Role), Content: h.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: question})

	ctx = llm.WithPurpose(ctx, llm.PurposeCoach)
	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      buildSystemPrompt(s.snapshot(ctx, userID)),
		Messages:    msgs,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		log.WithError(err).WithField("user", userID).Warn("coach reply failed")
		return fallback
	}
	text := resp.Text()
	if text == "" {
		log.WithField("user", userID).Warn("coach reply was empty")
		return fallback
	}
	return Reply{Text: text, At: s.now()}
}

// snapshot collects the user's context. Missing pieces are left empty.
func (s *Service) snapshot(ctx context.Context, userID string) Snapshot {
	var snap Snapshot
	day := calendar.Day(s.now(), s.loc)
	warn := func(what string, err error) {
		log.WithError(err).WithField("user", userID).Debugf("coach context: %s unavailable", what)
	}

	if s.src.Profiles != nil {
		p, g, err := s.src.Profiles.Get(ctx, userID)
		if err != nil {
			warn("profile", err)
		} else {
			snap.Profile, snap.Goals = p, g
		}
	}
	if s.src.Meals != nil {
		list, err := s.src.Meals.ForDay(ctx, userID, day)
		if err != nil {
			warn("meals", err)
		} else {
			snap.Meals = len(list)
			snap.Today = meals.Totals(list)
		}
	}
	if s.src.Daily != nil {
		snap.Daily = s.src.Daily.Today(ctx, userID, day)
	} else {
		snap.Daily = daily.Empty()
	}
	if s.src.Scores != nil {
		st, err := s.src.Scores.Get(ctx, userID)
		if err != nil {
			warn("score", err)
		} else {
			snap.Score = &st
		}
	}
	return snap
}
