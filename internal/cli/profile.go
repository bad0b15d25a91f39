package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Profile management commands",
	}

	cmd.AddCommand(newProfileMeCmd())
	cmd.AddCommand(newProfileScoreCmd())
	cmd.AddCommand(newProfileUsernameCmd())

	return cmd
}

func newProfileMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the profile for the logged-in address",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Profile

			if err := client.Get("/api/v1/profile", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newProfileScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <points>",
		Short: "Submit a finished game's score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("score must be a number")
			}

			req := map[string]int{"score": score}
			var result Profile

			if err := client.Post("/api/v1/profile/score", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newProfileUsernameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "username <name>",
		Short: "Change the display username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"username": args[0]}
			var result Profile

			if err := client.Patch("/api/v1/profile/username", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newLeaderboardCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the best-score leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Leaderboard

			path := fmt.Sprintf("/api/v1/leaderboard?limit=%d", limit)
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of entries to show (1-100)")

	return cmd
}
