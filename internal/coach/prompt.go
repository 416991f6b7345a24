package coach

import (
	"fmt"
	"strings"
)

const coachPersona = `You are FareFit Coach, a friendly nutrition and training coach inside a
food logging app. Give short, practical answers (at most 5 sentences) that
refer to the user's own numbers when they help. Do not diagnose medical
conditions; suggest seeing a professional for medical questions.`

func buildSystemPrompt(s Snapshot) string {
	var b strings.Builder
	b.WriteString(coachPersona)
	b.WriteString("\n\nWhat you know about the user:\n")

	if p := s.Profile; p != nil {
		fmt.Fprintf(&b, "- Name: %s, goal: %s, activity: %s, weight %.0f kg\n",
			p.DisplayName, p.Goal, p.ActivityLevel, p.WeightKG)
	}
	if s.Goals.CalorieTarget > 0 {
		fmt.Fprintf(&b, "- Daily targets: %.0f kcal, %.0f g protein, %.0f g carbs, %.0f g fat\n",
			s.Goals.CalorieTarget, s.Goals.ProteinTarget, s.Goals.CarbTarget, s.Goals.FatTarget)
	}
	fmt.Fprintf(&b, "- Today so far: %d meals, %.0f kcal, %.0f g protein, %.0f g carbs, %.0f g fat\n",
		s.Meals, s.Today.Calories, s.Today.Protein, s.Today.Carbs, s.Today.Fats)
	fmt.Fprintf(&b, "- Daily score: %d/100\n", s.Daily.TotalScore)
	if st := s.Score; st != nil {
		tier := st.Tier()
		fmt.Fprintf(&b, "- FareScore: %d (%s), streak %d days\n", st.CurrentScore, tier.Label, st.StreakDays)
	}
	return b.String()
}
