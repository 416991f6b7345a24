package social

import (
	"sort"

	"github.com/abhisek/farefit/internal/score"
)

// Entry is one row of a leaderboard.
type Entry struct {
	Rank        int
	UserID      string
	DisplayName string
	Score       int
	StreakDays  int
	Tier        score.Tier
	Self        bool
}

// Rank orders entries by score, then streak, then display name, and
// assigns dense ranks: equal scores share a rank and the next distinct
// score takes the following rank.
func Rank(entries []Entry) []Entry {
	out := append([]Entry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.StreakDays != b.StreakDays {
			return a.StreakDays > b.StreakDays
		}
		return a.DisplayName < b.DisplayName
	})

	rank := 0
	for i := range out {
		if i == 0 || out[i].Score != out[i-1].Score {
			rank++
		}
		out[i].Rank = rank
		out[i].Tier = score.GetTier(out[i].Score)
	}
	return out
}
