package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/farefit/internal/calendar"
	"github.com/abhisek/farefit/internal/daily"
	"github.com/abhisek/farefit/internal/score"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Inspect and update your FareScore",
}

var scoreShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your FareScore, tier and streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser()
		if err != nil {
			return err
		}
		svc, err := openServices(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		st, err := svc.scores.Get(cmd.Context(), user)
		if err != nil {
			return err
		}
		printState(st)
		return nil
	},
}

var scoreRecordCmd = &cobra.Command{
	Use:   "record <action>[=value]...",
	Short: "Apply scored actions, e.g. sleep_logged or hydration_logged=2",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser()
		if err != nil {
			return err
		}
		actions := make([]score.Action, 0, len(args))
		for _, arg := range args {
			a, err := parseAction(arg)
			if err != nil {
				return err
			}
			actions = append(actions, a)
		}

		svc, err := openServices(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := cmd.Context()
		before, err := svc.scores.Get(ctx, user)
		if err != nil {
			return err
		}
		after, err := svc.scores.Record(ctx, user, actions...)
		if err != nil {
			return err
		}
		fmt.Printf("FareScore %d → %d (%+d)\n", before.CurrentScore, after.CurrentScore,
			after.CurrentScore-before.CurrentScore)
		return nil
	},
}

var scoreCloseDayCmd = &cobra.Command{
	Use:   "close-day [day]",
	Short: "Score a finished day (default yesterday)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser()
		if err != nil {
			return err
		}
		svc, err := openServices(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		day := calendar.AddDays(svc.today(), -1)
		if len(args) == 1 {
			if _, err := calendar.Parse(args[0], svc.loc); err != nil {
				return err
			}
			day = args[0]
		}

		res, err := svc.scores.CloseDay(cmd.Context(), user, day)
		if err != nil {
			return err
		}
		start := res.Before
		if len(res.CaughtUp) > 0 {
			start = res.CaughtUp[0].Before
		}
		for _, r := range res.CaughtUp {
			printClosedDay(&r)
		}
		printClosedDay(res)
		fmt.Printf("FareScore %d → %d, streak %d\n",
			start.CurrentScore, res.After.CurrentScore, res.After.StreakDays)
		return nil
	},
}

func printClosedDay(res *score.DayResult) {
	status := "active"
	if !res.Active {
		status = "missed"
	}
	fmt.Printf("%s closed as %s\n", res.Day, status)
	for _, a := range res.Actions {
		fmt.Printf("  %-20s %+d\n", a.Type, score.CalculateScoreChange(a, res.Before))
	}
}

var scoreSmoothCmd = &cobra.Command{
	Use:   "smooth",
	Short: "Fold the current score into the weekly smoothed score",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser()
		if err != nil {
			return err
		}
		svc, err := openServices(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		st, err := svc.scores.SmoothWeekly(cmd.Context(), user)
		if err != nil {
			return err
		}
		fmt.Printf("Smoothed score: %d\n", st.SmoothedScore)
		return nil
	},
}

var scoreHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent score changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser()
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		svc, err := openServices(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		events, err := svc.scores.History(cmd.Context(), user, limit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No score changes yet.")
			return nil
		}
		fmt.Printf("%-19s  %-20s  %6s  %6s  %s\n", "Time", "Action", "Delta", "Score", "Note")
		fmt.Println(strings.Repeat("─", 80))
		for _, e := range events {
			fmt.Printf("%-19s  %-20s  %+6d  %6d  %s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Action, e.Delta, e.ScoreAfter, e.Description)
		}
		return nil
	},
}

var scoreTierCmd = &cobra.Command{
	Use:   "tier [score]",
	Short: "Show the tier table, or the tier of a score",
	Args:  cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("score must be a number: %w", err)
			}
			t := score.GetTier(n)
			fmt.Printf("%d → %s\n", n, tierLabel(t))
			return nil
		}
		tiers := score.AllTiers()
		for i := len(tiers) - 1; i >= 0; i-- {
			t := tiers[i]
			fmt.Printf("  %3d+  %s  %s\n", t.Min, tierLabel(t), t.Description)
		}
		return nil
	},
}

var dailyCmd = &cobra.Command{
	Use:   "daily [day]",
	Short: "Show the 0-100 daily score breakdown (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser()
		if err != nil {
			return err
		}
		svc, err := openServices(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		day := svc.today()
		if len(args) == 1 {
			if _, err := calendar.Parse(args[0], svc.loc); err != nil {
				return err
			}
			day = args[0]
		}
		printDaily(day, svc.daily.Today(cmd.Context(), user, day))
		return nil
	},
}

func parseAction(arg string) (score.Action, error) {
	name, value, hasValue := strings.Cut(arg, "=")
	t, err := score.ParseActionType(name)
	if err != nil {
		return score.Action{}, err
	}
	if !hasValue {
		return score.NewAction(t), nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return score.Action{}, fmt.Errorf("value of %s: %w", name, err)
	}
	return score.WithValue(t, v), nil
}

func tierLabel(t score.Tier) string {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Color)).Render(t.Label)
}

func printState(st score.State) {
	t := st.Tier()
	fmt.Printf("FareScore  %d  %s\n", st.CurrentScore, tierLabel(t))
	if next, ok := score.NextTier(st.CurrentScore); ok {
		fmt.Printf("           %d points to %s\n", score.PointsToNext(st.CurrentScore), next.Label)
	}
	fmt.Printf("Smoothed   %d\n", st.SmoothedScore)
	fmt.Printf("Streak     %d days\n", st.StreakDays)
	fmt.Printf("Consistency %.0f%%\n", st.ConsistencyRate*100)
	fmt.Printf("This month %d meals, %d workouts, %d penalties\n",
		st.MealsLoggedThisMonth, st.WorkoutsThisMonth, st.PenaltiesThisMonth)
}

func printDaily(day string, d daily.Data) {
	fmt.Printf("Daily score for %s: %d/100\n\n", day, d.TotalScore)
	for _, b := range d.Buckets() {
		fmt.Printf("  %-18s %3d/%-3d %s\n", b.Label, b.Score, b.MaxScore, bar(b.Score, b.MaxScore, 20))
	}
}

func bar(v, total, width int) string {
	if total <= 0 {
		return ""
	}
	filled := v * width / total
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func init() {
	scoreHistoryCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	scoreCmd.AddCommand(scoreShowCmd, scoreRecordCmd, scoreCloseDayCmd, scoreSmoothCmd, scoreHistoryCmd, scoreTierCmd)
}
