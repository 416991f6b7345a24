package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/farefit/internal/store"
)

// ErrSelfFriend is returned when a user tries to befriend themselves.
var ErrSelfFriend = errors.New("cannot add yourself as a friend")

// Service manages friendships and leaderboards.
type Service struct {
	profiles store.ProfileRepo
	friends  store.SocialRepo
	scores   store.ScoreRepo
}

// NewService creates a social service.
func NewService(profiles store.ProfileRepo, friends store.SocialRepo, scores store.ScoreRepo) *Service {
	return &Service{profiles: profiles, friends: friends, scores: scores}
}

// AddFriend links two users in both directions. Both must exist.
func (s *Service) AddFriend(ctx context.Context, userID, friendID string) error {
	if userID == friendID {
		return ErrSelfFriend
	}
	for _, id := range []string{userID, friendID} {
		if _, err := s.profiles.GetProfile(ctx, id); err != nil {
			return err
		}
	}
	return s.friends.AddFriendship(ctx, userID, friendID)
}

// RemoveFriend unlinks two users.
func (s *Service) RemoveFriend(ctx context.Context, userID, friendID string) error {
	return s.friends.RemoveFriendship(ctx, userID, friendID)
}

// Friends returns the IDs of a user's friends.
func (s *Service) Friends(ctx context.Context, userID string) ([]string, error) {
	return s.friends.FriendIDs(ctx, userID)
}

// Leaderboard ranks a user among their friends.
func (s *Service) Leaderboard(ctx context.Context, userID string) ([]Entry, error) {
	ids, err := s.friends.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids = append([]string{userID}, ids...)

	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		e, err := s.entry(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			// Friends who never finished onboarding have no score yet.
			continue
		}
		if err != nil {
			return nil, err
		}
		e.Self = id == userID
		entries = append(entries, e)
	}
	return Rank(entries), nil
}

// Global ranks every user. A limit of 0 returns everyone.
func (s *Service) Global(ctx context.Context, limit int) ([]Entry, error) {
	states, err := s.scores.ListStates(ctx, 0)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.DisplayName
	}

	entries := make([]Entry, len(states))
	for i, st := range states {
		entries[i] = Entry{
			UserID:      st.UserID,
			DisplayName: names[st.UserID],
			Score:       st.CurrentScore,
			StreakDays:  st.StreakDays,
		}
	}
	ranked := Rank(entries)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (s *Service) entry(ctx context.Context, userID string) (Entry, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return Entry{}, err
	}
	st, err := s.scores.GetState(ctx, userID)
	if err != nil {
		return Entry{}, fmt.Errorf("score of %s: %w", userID, err)
	}
	return Entry{
		UserID:      userID,
		DisplayName: p.DisplayName,
		Score:       st.CurrentScore,
		StreakDays:  st.StreakDays,
	}, nil
}
