package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/farefit/internal/config"
	"github.com/abhisek/farefit/internal/logging"
)

// cfg is loaded before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "farefit",
	Short: "Nutrition and training log with a consistency score",
	Long: "FareFit — log meals and workouts, keep your streak and watch your FareScore\n" +
		"climb from 300 to 850.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// RunE is set here rather than in the literal to avoid an
	// initialization cycle (runDash refers back to rootCmd).
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runDash(cmd)
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a config file (default: $XDG_CONFIG_HOME/farefit/farefit.yaml)")
	flags.String("db", "", "SQLite path or postgres:// DSN (overrides FAREFIT_DB)")
	flags.StringP("user", "u", "", "User ID to act as")
	flags.String("log-level", "", "Log level: debug, info, warning, error")

	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(goalsCmd)
	rootCmd.AddCommand(mealCmd)
	rootCmd.AddCommand(workoutCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(friendsCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(coachCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dashCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig merges defaults, the config file, FAREFIT_* variables and the
// persistent flags, then configures logging.
func loadConfig(cmd *cobra.Command) error {
	v := viper.New()
	flags := cmd.Flags()
	for key, flag := range map[string]string{
		"db":        "db",
		"user":      "user",
		"log.level": "log-level",
	} {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind --%s: %w", flag, err)
			}
		}
	}

	path, _ := flags.GetString("config")
	c, err := config.Load(v, path)
	if err != nil {
		return err
	}
	if err := logging.Setup(c.Log.Level, c.Log.Format); err != nil {
		return err
	}
	cfg = c
	return nil
}

// currentUser returns the configured user or an error telling how to set one.
func currentUser() (string, error) {
	if cfg == nil || cfg.User == "" {
		return "", fmt.Errorf("no user selected: pass --user or set user in farefit.yaml")
	}
	return cfg.User, nil
}
