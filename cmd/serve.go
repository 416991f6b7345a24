package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/farefit/internal/jobs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daily, weekly and monthly FareScore jobs",
	Long: "Runs the scheduler in the foreground: every day it closes yesterday for all\n" +
		"users, every week it smooths scores and every month it resets counters.",
	RunE: func(cmd *cobra.Command, args []string) error {
		runNow, _ := cmd.Flags().GetString("run-now")

		svc, err := openServices(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		sched := jobs.NewScheduler(svc.scores, jobs.Specs{
			Daily:   cfg.Jobs.Daily,
			Weekly:  cfg.Jobs.Weekly,
			Monthly: cfg.Jobs.Monthly,
		}, svc.loc)

		if runNow != "" {
			run := map[string]func() (jobs.Result, error){
				"daily":   func() (jobs.Result, error) { return sched.RunDaily(cmd.Context()) },
				"weekly":  func() (jobs.Result, error) { return sched.RunWeekly(cmd.Context()) },
				"monthly": func() (jobs.Result, error) { return sched.RunMonthly(cmd.Context()) },
			}[runNow]
			if run == nil {
				return fmt.Errorf("--run-now: unknown job %q (want daily, weekly or monthly)", runNow)
			}
			res, err := run()
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d processed, %d skipped, %d failed\n", runNow, res.Processed, res.Skipped, res.Failed)
			return nil
		}

		if err := sched.Start(cmd.Context()); err != nil {
			return err
		}
		defer sched.Stop()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			log.Infof("received %s, shutting down", sig)
		case <-cmd.Context().Done():
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("run-now", "", "Run one job (daily, weekly or monthly) once and exit")
}
