package main

import (
	"errors"

	users_services "crmm/internal/features/users/services"
	"crmm/internal/util/logger"

	"github.com/spf13/cobra"
)

var (
	resetEmail       string
	resetNewPassword string
)

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password for a user",
	RunE:  runResetPassword,
}

func init() {
	resetPasswordCmd.Flags().StringVar(&resetEmail, "email", "", "email of the user to reset password")
	resetPasswordCmd.Flags().StringVar(&resetNewPassword, "new-password", "", "new password for the user")
	rootCmd.AddCommand(resetPasswordCmd)
}

func runResetPassword(cmd *cobra.Command, args []string) error {
	if resetEmail == "" {
		return errors.New("no email provided, please provide an email via --email=\"some@email.com\"")
	}

	if resetNewPassword == "" {
		return errors.New("no password provided, please provide one via --new-password")
	}

	log := logger.GetLogger()
	log.Info("Resetting password...", "email", resetEmail)

	if err := users_services.GetUserService().ChangeUserPasswordByEmail(resetEmail, resetNewPassword); err != nil {
		return err
	}

	log.Info("Password reset successfully")
	return nil
}
