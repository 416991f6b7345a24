package cmd

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/farefit/internal/calendar"
	"github.com/abhisek/farefit/internal/meals"
)

var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Log and inspect meals",
}

var mealLogCmd = &cobra.Command{
	Use:   "log <name>",
	Short: "Log a meal with its nutrition values",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		typ, _ := flags.GetString("type")
		serving, _ := flags.GetString("serving")
		at, _ := flags.GetString("at")

		m := meals.Meal{
			UserID:      user,
			Name:        strings.Join(args, " "),
			Type:        meals.MealType(typ),
			ServingSize: serving,
		}
		m.Calories, _ = flags.GetFloat64("calories")
		m.Protein, _ = flags.GetFloat64("protein")
		m.Carbs, _ = flags.GetFloat64("carbs")
		m.Fats, _ = flags.GetFloat64("fats")
		m.Fiber, _ = flags.GetFloat64("fiber")
		if at != "" {
			t, err := time.Parse(time.RFC3339, at)
			if err != nil {
				return fmt.Errorf("--at: %w", err)
			}
			m.EatenAt = t
		}

		svc, err := openServices(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		saved, err := svc.meals.Log(cmd.Context(), m)
		if err != nil {
			return err
		}
		fmt.Printf("Logged %s (%s) on %s  [%s]\n", saved.Name, saved.Type, saved.Day, saved.ID)
		return nil
	},
}

var mealParseCmd = &cobra.Command{
	Use:   "parse <description>",
	Short: "Estimate nutrition from a free-text description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser()
		if err != nil {
			return err
		}
		svc, err := openServices(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := cmd.Context()
		drafts, err := svc.meals.Parse(ctx, user, strings.Join(args, " "))
		if err != nil {
			return err
		}
		printMeals(drafts)

		if save, _ := cmd.Flags().GetBool("save"); save {
			for _, d := range drafts {
				if _, err := svc.meals.Log(ctx, d); err != nil {
					return err
				}
			}
			fmt.Printf("\nSaved %d items.\n", len(drafts))
		}
		return nil
	},
}

var mealScanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Read a nutrition facts label from a photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		servings, _ := cmd.Flags().GetFloat64("servings")

		svc, err := openServices(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := cmd.Context()
		draft, err := svc.meals.ScanLabel(ctx, user, data, http.DetectContentType(data), servings)
		if err != nil {
			return err
		}
		printMeals([]meals.Meal{*draft})

		if save, _ := cmd.Flags().GetBool("save"); save {
			saved, err := svc.meals.Log(ctx, *draft)
			if err != nil {
				return err
			}
			fmt.Printf("\nSaved [%s].\n", saved.ID)
		}
		return nil
	},
}

var mealListCmd = &cobra.Command{
	Use:   "list [day]",
	Short: "List meals of a day (default today)",
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

		list, err := svc.meals.ForDay(cmd.Context(), user, day)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Printf("No meals logged on %s.\n", day)
			return nil
		}
		fmt.Printf("Meals on %s\n\n", day)
		printMeals(list)
		return nil
	},
}

var mealDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a meal",
	Args:  cobra.ExactArgs(1),
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

		if err := svc.meals.Delete(cmd.Context(), user, args[0]); err != nil {
			return err
		}
		fmt.Println("Meal deleted.")
		return nil
	},
}

var mealImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Log every meal listed in a YAML file",
	Args:  cobra.ExactArgs(1),
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

		stored, err := svc.meals.ImportFile(cmd.Context(), user, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d meals.\n", len(stored))
		return nil
	},
}

func printMeals(list []meals.Meal) {
	fmt.Printf("%-10s  %-28s  %7s  %7s  %7s  %7s  %s\n",
		"Type", "Name", "kcal", "P", "C", "F", "ID")
	fmt.Println(strings.Repeat("─", 90))
	for _, m := range list {
		fmt.Printf("%-10s  %-28s  %7.0f  %7.1f  %7.1f  %7.1f  %s\n",
			m.Type, truncate(m.Name, 28), m.Calories, m.Protein, m.Carbs, m.Fats, m.ID)
	}
	t := meals.Totals(list)
	fmt.Println(strings.Repeat("─", 90))
	fmt.Printf("%-10s  %-28s  %7.0f  %7.1f  %7.1f  %7.1f\n", "", "TOTAL", t.Calories, t.Protein, t.Carbs, t.Fats)
}

func init() {
	flags := mealLogCmd.Flags()
	flags.StringP("type", "t", "", "breakfast, lunch, dinner or snack (default: from the time of day)")
	flags.Float64("calories", 0, "Energy (kcal)")
	flags.Float64("protein", 0, "Protein (g)")
	flags.Float64("carbs", 0, "Carbohydrates (g)")
	flags.Float64("fats", 0, "Fat (g)")
	flags.Float64("fiber", 0, "Fiber (g)")
	flags.String("serving", "", "Serving size, e.g. \"1 bowl\"")
	flags.String("at", "", "When it was eaten, RFC 3339 (default: now)")

	mealParseCmd.Flags().Bool("save", false, "Log the parsed items")
	mealScanCmd.Flags().Float64("servings", 1, "Number of servings eaten")
	mealScanCmd.Flags().Bool("save", false, "Log the scanned meal")

	mealCmd.AddCommand(mealLogCmd, mealParseCmd, mealScanCmd, mealListCmd, mealDeleteCmd, mealImportCmd)
}
