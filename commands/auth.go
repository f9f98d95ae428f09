package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLoginCmd builds the login command.
func NewLoginCmd(app *App) *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Auth.Login(cmd.Context(), username, password); err != nil {
				return fmt.Errorf("%s", app.Auth.Err())
			}
			user := app.Auth.User()
			fmt.Fprintf(app.Out, "Logged in as %s\n", user.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")

	return cmd
}

// NewRegisterCmd builds the register command.
func NewRegisterCmd(app *App) *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Auth.Register(cmd.Context(), username, password); err != nil {
				return fmt.Errorf("%s", app.Auth.Err())
			}
			user := app.Auth.User()
			fmt.Fprintf(app.Out, "Registered and logged in as %s\n", user.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")

	return cmd
}

// NewLogoutCmd builds the logout command.
func NewLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear local credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Auth.Logout(cmd.Context())
			app.Boards.Reset()
			fmt.Fprintln(app.Out, "Logged out")
			return nil
		},
	}
}

// NewWhoamiCmd builds the whoami command.
func NewWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			user := app.Auth.User()
			fmt.Fprintf(app.Out, "%s (%s)\n", user.Username, user.ID)
			return nil
		},
	}
}
