package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/basedmerge/tokengate/internal/model"
	"github.com/basedmerge/tokengate/internal/services/auth"
)

func newLoginCmd() *cobra.Command {
	var keyHex, keyFile string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in by signing a challenge with a wallet key",
		Long: `Request a login challenge for the key's address, sign it locally
(EIP-191 personal_sign) and exchange the signature for a session token.

The private key never leaves this machine.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveKey(keyHex, keyFile)
			if err != nil {
				return err
			}
			address, err := deriveAddress(key)
			if err != nil {
				return err
			}

			var challenge Challenge
			if err := client.Post("/api/v1/session/challenge", map[string]string{"address": address}, &challenge); err != nil {
				return err
			}

			signature, err := auth.SignMessage(challenge.Message, key)
			if err != nil {
				return fmt.Errorf("failed to sign challenge: %w", err)
			}

			var session Session
			req := map[string]string{"address": address, "signature": signature}
			if err := client.Post("/api/v1/session", req, &session); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(session.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(session)
			return nil
		},
	}

	cmd.Flags().StringVar(&keyHex, "key", "", "Hex-encoded private key (env: TOKENGATE_PRIVATE_KEY)")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "File containing the hex-encoded private key")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token == "" {
				return fmt.Errorf("not logged in")
			}

			if err := client.Delete("/api/v1/session"); err != nil {
				return err
			}

			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to clear token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Logged out")
			return nil
		},
	}
}

// resolveKey picks the private key from flag, file or environment.
func resolveKey(keyHex, keyFile string) (string, error) {
	if keyHex != "" {
		return normalizeKey(keyHex), nil
	}
	if keyFile != "" {
		data, err := os.ReadFile(keyFile)
		if err != nil {
			return "", fmt.Errorf("failed to read key file: %w", err)
		}
		return normalizeKey(string(data)), nil
	}
	if env := os.Getenv("TOKENGATE_PRIVATE_KEY"); env != "" {
		return normalizeKey(env), nil
	}
	return "", fmt.Errorf("--key, --key-file or TOKENGATE_PRIVATE_KEY is required")
}

func normalizeKey(raw string) string {
	return strings.TrimPrefix(strings.TrimSpace(raw), "0x")
}

func deriveAddress(hexKey string) (string, error) {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return "", fmt.Errorf("invalid private key: %w", err)
	}
	return model.CanonicalAddress(crypto.PubkeyToAddress(key.PublicKey).Hex()), nil
}
