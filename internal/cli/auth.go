package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"studybuddy/internal/app"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an admin token for the upload endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		auth := app.NewAuthService(cfg.Auth.AdminPasswordHash, cfg.Auth.JWTSecret, cfg.JWTExpiration())
		tok, err := auth.Mint()
		if errors.Is(err, app.ErrAuthDisabled) {
			return fmt.Errorf("set JWT_SECRET to mint tokens: %w", err)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
		return nil
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash to use as ADMIN_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := app.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd, hashPasswordCmd)
}
