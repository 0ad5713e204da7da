package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/fintrack/internal/cli"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Register, log in and log out",
	}

	register := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			email, password, err := credentials(cmd)
			if err != nil {
				return err
			}
			user, err := a.sync.Register(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.sync.Persist(); err != nil {
				return err
			}
			a.success("Welcome, " + user.Email + "!")
			return nil
		}),
	}

	login := &cobra.Command{
		Use:   "login",
		Short: "Log in and load your data",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			email, password, err := credentials(cmd)
			if err != nil {
				return err
			}
			user, err := a.sync.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.sync.Persist(); err != nil {
				return err
			}
			a.success("Logged in as " + user.Email)
			return nil
		}),
	}

	for _, c := range []*cobra.Command{register, login} {
		c.Flags().StringP("email", "e", "", "email address")
		c.Flags().StringP("password", "p", "", "password (prompted when omitted)")
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the local copy of your data",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if err := a.sync.Logout(cmd.Context()); err != nil {
				return err
			}
			a.success("Logged out")
			return nil
		}),
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			user, err := a.auth.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			if user == nil {
				a.info("Not logged in")
				return nil
			}
			a.println(cli.BoldStyle.Render(user.Email) + cli.SubtleStyle.Render(" ("+user.ID+")"))
			return nil
		}),
	}

	cmd.AddCommand(register, login, logout, whoami)
	return cmd
}

// credentials reads the email and password flags, prompting for missing values.
func credentials(cmd *cobra.Command) (string, string, error) {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if email != "" && password != "" {
		return email, password, nil
	}

	reader := cli.NewNonBlockingReader(cmd.InOrStdin())
	var err error
	if email == "" {
		if email, err = reader.Ask(cmd.Context(), cmd.OutOrStdout(), "Email", ""); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = reader.Ask(cmd.Context(), cmd.OutOrStdout(), "Password", ""); err != nil {
			return "", "", err
		}
	}
	return email, password, nil
}
