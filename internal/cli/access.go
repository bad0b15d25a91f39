package cli

import (
	"github.com/spf13/cobra"
)

func newAccessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "access",
		Short: "Access flow commands",
	}

	cmd.AddCommand(newAccessStatusCmd())
	cmd.AddCommand(newAccessConnectCmd())
	cmd.AddCommand(newAccessRetryCmd())
	cmd.AddCommand(newAccessMintCmd())
	cmd.AddCommand(newAccessStartCmd())

	return cmd
}

func newAccessStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current access state",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result AccessSnapshot

			if err := client.Get("/api/v1/access", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newAccessConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Connect the wallet and run the access check",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result AccessSnapshot

			if err := client.Post("/api/v1/access/connect", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newAccessRetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Re-run the network and ownership checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result AccessSnapshot

			if err := client.Post("/api/v1/access/retry", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newAccessMintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mint",
		Short: "Mint an access pass and wait for confirmation",
		Long: `Submit the mint transaction and block until the confirmation poll
reaches a terminal outcome. This can take a while; progress is also
visible on the events stream.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MintResult

			if err := client.Post("/api/v1/access/mint", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newAccessStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game (requires an unlocked session)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Profile

			if err := client.Post("/api/v1/access/start", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
