package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/farefit/internal/app"
)

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Open the interactive dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDash(cmd)
	},
}

// runDash opens the dashboard for the current user. Without a user the
// root command falls back to its help text.
func runDash(cmd *cobra.Command) error {
	user, err := currentUser()
	if err != nil {
		if cmd == rootCmd {
			return cmd.Help()
		}
		return err
	}

	svc, err := openServices(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer svc.Close()

	p, _, err := svc.profiles.Get(cmd.Context(), user)
	if err != nil {
		return fmt.Errorf("load profile %q (run `farefit onboard` first): %w", user, err)
	}

	return app.Run(cmd.Context(), app.Options{
		UserID:      user,
		DisplayName: p.DisplayName,
		Today:       svc.today,
		Scores:      svc.scores,
		Daily:       svc.daily,
		Meals:       svc.meals,
		Board:       svc.social,
		Coach:       svc.coach,
	})
}
