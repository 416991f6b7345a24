package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/farefit/internal/social"
)

var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "Manage friends",
}

var friendsAddCmd = &cobra.Command{
	Use:   "add <user-id>",
	Short: "Add a friend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFriend(cmd, args[0], func(s *social.Service, user, friend string) error {
			if err := s.AddFriend(cmd.Context(), user, friend); err != nil {
				return err
			}
			fmt.Printf("You and %s are now friends.\n", friend)
			return nil
		})
	},
}

var friendsRemoveCmd = &cobra.Command{
	Use:   "remove <user-id>",
	Short: "Remove a friend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFriend(cmd, args[0], func(s *social.Service, user, friend string) error {
			if err := s.RemoveFriend(cmd.Context(), user, friend); err != nil {
				return err
			}
			fmt.Printf("Removed %s.\n", friend)
			return nil
		})
	},
}

var friendsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List friends",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFriend(cmd, "", func(s *social.Service, user, _ string) error {
			ids, err := s.Friends(cmd.Context(), user)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Println("No friends yet. Add one with `farefit friends add <id>`.")
				return nil
			}
			fmt.Println(strings.Join(ids, "\n"))
			return nil
		})
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Rank yourself against your friends",
	RunE: func(cmd *cobra.Command, args []string) error {
		global, _ := cmd.Flags().GetBool("global")
		limit, _ := cmd.Flags().GetInt("limit")

		svc, err := openServices(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		var entries []social.Entry
		if global {
			entries, err = svc.social.Global(cmd.Context(), limit)
		} else {
			var user string
			if user, err = currentUser(); err != nil {
				return err
			}
			entries, err = svc.social.Leaderboard(cmd.Context(), user)
		}
		if err != nil {
			return err
		}
		printLeaderboard(entries)
		return nil
	},
}

func withFriend(cmd *cobra.Command, friend string, fn func(s *social.Service, user, friend string) error) error {
	user, err := currentUser()
	if err != nil {
		return err
	}
	svc, err := openServices(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(svc.social, user, friend)
}

func printLeaderboard(entries []social.Entry) {
	if len(entries) == 0 {
		fmt.Println("Nobody on the board yet.")
		return
	}
	fmt.Printf("%4s  %-20s  %5s  %6s  %s\n", "#", "Name", "Score", "Streak", "Tier")
	fmt.Println(strings.Repeat("─", 60))
	for _, e := range entries {
		marker := " "
		if e.Self {
			marker = "›"
		}
		fmt.Printf("%s%3d  %-20s  %5d  %6d  %s\n",
			marker, e.Rank, truncate(e.DisplayName, 20), e.Score, e.StreakDays, tierLabel(e.Tier))
	}
}

func init() {
	leaderboardCmd.Flags().Bool("global", false, "Rank all users instead of friends")
	leaderboardCmd.Flags().IntP("limit", "n", 20, "Rows to show with --global")
	friendsCmd.AddCommand(friendsAddCmd, friendsRemoveCmd, friendsListCmd)
}
