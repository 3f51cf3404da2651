package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yukikurage/column-task-api/internal/constants"
	"github.com/yukikurage/column-task-api/internal/services"
)

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for AUTH_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := services.HashPassword(args[0])
			if err != nil {
				if errors.Is(err, services.ErrPasswordTooShort) {
					return fmt.Errorf("password must be at least %d characters", constants.MinPasswordLength)
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
