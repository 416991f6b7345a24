package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/farefit/internal/coach"
)

var coachCmd = &cobra.Command{
	Use:   "coach",
	Short: "Chat with the AI coach",
}

var coachAskCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the coach a question",
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

		reply, err := svc.coach.Ask(cmd.Context(), user, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(reply.Text)
		return nil
	},
}

var coachHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the recent conversation",
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

		msgs, err := svc.coach.History(cmd.Context(), user, limit)
		if err != nil {
			return err
		}
		if len(msgs) == 0 {
			fmt.Println("No conversation yet.")
			return nil
		}
		for _, m := range msgs {
			printChat(m)
		}
		return nil
	},
}

var coachClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the conversation",
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

		if err := svc.coach.Clear(cmd.Context(), user); err != nil {
			return err
		}
		fmt.Println("Conversation cleared.")
		return nil
	},
}

func printChat(m coach.Message) {
	who := "You"
	if m.Role == "assistant" {
		who = "Coach"
	}
	fmt.Printf("[%s] %s: %s\n", m.At.Local().Format("01-02 15:04"), who, m.Content)
}

func init() {
	coachHistoryCmd.Flags().IntP("limit", "n", 20, "Number of messages to show")
	coachCmd.AddCommand(coachAskCmd, coachHistoryCmd, coachClearCmd)
}
