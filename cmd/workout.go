package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/farefit/internal/workouts"
)

var workoutCmd = &cobra.Command{
	Use:   "workout",
	Short: "Log workouts and track lifts",
}

var workoutLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a workout",
	Example: `  farefit workout log -e "Squat: 5x100, 5x100" -e "Pull-up: 10, 8" --minutes 50
  farefit workout log --minutes 30 --notes "easy run"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		specs, _ := flags.GetStringArray("exercise")
		minutes, _ := flags.GetInt("minutes")
		notes, _ := flags.GetString("notes")

		w := workouts.Workout{UserID: user, DurationMin: minutes, Notes: notes}
		for _, spec := range specs {
			e, err := workouts.ParseExercise(spec)
			if err != nil {
				return err
			}
			w.Exercises = append(w.Exercises, e)
		}

		svc, err := openServices(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		saved, err := svc.workouts.Log(cmd.Context(), w)
		if err != nil {
			return err
		}
		fmt.Printf("Logged workout on %s with %d exercises  [%s]\n", saved.Day, len(saved.Exercises), saved.ID)
		return nil
	},
}

var workoutListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent workouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser()
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		exercise, _ := cmd.Flags().GetString("exercise")

		svc, err := openServices(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		list, err := svc.workouts.History(cmd.Context(), user, exercise, limit)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No workouts logged yet.")
			return nil
		}
		for _, w := range list {
			fmt.Printf("%s  %3d min  %s\n", w.Day, w.DurationMin, w.Notes)
			for _, e := range w.Exercises {
				sets := make([]string, len(e.Sets))
				for i, s := range e.Sets {
					sets[i] = fmt.Sprintf("%dx%g", s.Reps, s.WeightKG)
				}
				fmt.Printf("    %-20s %s\n", e.Name, strings.Join(sets, ", "))
			}
		}
		return nil
	},
}

var workoutAnalyzeCmd = &cobra.Command{
	Use:   "analyze <exercise>",
	Short: "Show progression and plateau detection for one exercise",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser()
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		exercise := strings.Join(args, " ")

		svc, err := openServices(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		a, err := svc.workouts.Progress(cmd.Context(), user, exercise, limit)
		if err != nil {
			return err
		}
		if a.Sessions == 0 {
			fmt.Printf("No sessions with %q found.\n", exercise)
			return nil
		}

		fmt.Printf("%s over %d sessions\n\n", a.Exercise, a.Sessions)
		for _, p := range a.Points {
			fmt.Printf("  %s  %6.1f kg  (volume %.0f)\n", p.Day, p.MaxWeight, p.Volume)
		}
		fmt.Printf("\n  Best      %6.1f kg\n", a.MaxWeight)
		fmt.Printf("  Average   %6.1f kg\n", a.AverageMax)
		fmt.Printf("  Change    %+6.1f %%\n", a.PercentChange)
		if a.Plateau {
			fmt.Printf("\nPlateau: the last %d sessions topped out at the same weight.\n", workouts.PlateauSessions)
		}
		return nil
	},
}

func init() {
	flags := workoutLogCmd.Flags()
	flags.StringArrayP("exercise", "e", nil, `Exercise as "Name: reps x kg, ..." (repeatable)`)
	flags.Int("minutes", 0, "Duration in minutes")
	flags.String("notes", "", "Free-form notes")

	workoutListCmd.Flags().IntP("limit", "n", 10, "Number of workouts to show")
	workoutListCmd.Flags().String("exercise", "", "Only workouts containing this exercise")
	workoutAnalyzeCmd.Flags().IntP("limit", "n", 20, "Number of sessions to analyze")

	workoutCmd.AddCommand(workoutLogCmd, workoutListCmd, workoutAnalyzeCmd)
}
