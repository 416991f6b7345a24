package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/farefit/internal/profile"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard <id> <display name>",
	Short: "Create a profile, suggest goals and start the FareScore at 350",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		sex, _ := flags.GetString("sex")
		born, _ := flags.GetInt("born")
		height, _ := flags.GetFloat64("height")
		weight, _ := flags.GetFloat64("weight")
		activity, _ := flags.GetString("activity")
		goal, _ := flags.GetString("goal")

		svc, err := openServices(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		p, goals, err := svc.profiles.Onboard(cmd.Context(), profile.OnboardInput{
			Profile: profile.Profile{
				ID:            args[0],
				DisplayName:   args[1],
				Sex:           profile.Sex(sex),
				BirthYear:     born,
				HeightCM:      height,
				WeightKG:      weight,
				ActivityLevel: profile.ActivityLevel(activity),
				Goal:          profile.GoalKind(goal),
			},
		})
		if err != nil {
			return err
		}

		fmt.Printf("Welcome, %s! Your FareScore starts at 350.\n\n", p.DisplayName)
		printGoals(goals)
		fmt.Printf("\nTip: set `user: %s` in farefit.yaml or pass --user %s.\n", p.ID, p.ID)
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile and goals",
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

		p, goals, err := svc.profiles.Get(cmd.Context(), user)
		if err != nil {
			return err
		}
		now := time.Now()
		fmt.Printf("%s (%s)\n", p.DisplayName, p.ID)
		fmt.Printf("  %s, %d years, %.0f cm, %.1f kg\n", p.Sex, p.Age(now), p.HeightCM, p.WeightKG)
		fmt.Printf("  Activity: %s   Goal: %s\n", p.ActivityLevel, p.Goal)
		fmt.Printf("  BMR %.0f kcal   TDEE %.0f kcal\n\n", profile.BMR(*p, now), profile.TDEE(*p, now))
		printGoals(goals)
		return nil
	},
}

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Manage daily nutrition targets",
}

var goalsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set daily targets; omitted values keep their current setting",
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

		ctx := cmd.Context()
		p, goals, err := svc.profiles.Get(ctx, user)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if suggest, _ := flags.GetBool("suggest"); suggest {
			goals = profile.SuggestGoals(*p, time.Now())
		}
		for name, dst := range map[string]*float64{
			"calories": &goals.CalorieTarget,
			"protein":  &goals.ProteinTarget,
			"carbs":    &goals.CarbTarget,
			"fat":      &goals.FatTarget,
		} {
			if flags.Changed(name) {
				*dst, _ = flags.GetFloat64(name)
			}
		}

		if err := svc.profiles.UpdateGoals(ctx, user, goals); err != nil {
			return err
		}
		printGoals(goals)
		return nil
	},
}

func printGoals(g profile.Goals) {
	fmt.Println("Daily targets")
	fmt.Printf("  Calories  %6.0f kcal\n", g.CalorieTarget)
	fmt.Printf("  Protein   %6.0f g\n", g.ProteinTarget)
	fmt.Printf("  Carbs     %6.0f g\n", g.CarbTarget)
	fmt.Printf("  Fat       %6.0f g\n", g.FatTarget)
}

func init() {
	flags := onboardCmd.Flags()
	flags.String("sex", "female", "male or female")
	flags.Int("born", time.Now().Year()-30, "Birth year")
	flags.Float64("height", 170, "Height in cm")
	flags.Float64("weight", 70, "Weight in kg")
	flags.String("activity", "moderate", "sedentary, light, moderate, active or very_active")
	flags.String("goal", "maintain", "lose, maintain or gain")

	set := goalsSetCmd.Flags()
	set.Float64("calories", 0, "Calorie target (kcal)")
	set.Float64("protein", 0, "Protein target (g)")
	set.Float64("carbs", 0, "Carb target (g)")
	set.Float64("fat", 0, "Fat target (g)")
	set.Bool("suggest", false, "Recompute targets from your profile first")
	goalsCmd.AddCommand(goalsSetCmd)
}
