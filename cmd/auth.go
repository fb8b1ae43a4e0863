package cmd

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	authEmail    string
	authPassword string
	authFullName string
	whoamiOutput string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newClient(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer deps.Close()

		if err := askCredentials(cmd, false); err != nil {
			return err
		}

		res := deps.session.Login(cmd.Context(), authEmail, authPassword)
		if !res.Success {
			deps.toasts.Error(res.Error)
			return errors.New(res.Error)
		}
		u, _ := deps.session.User()
		deps.toasts.Success("Welcome back, " + u.Name)
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newClient(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer deps.Close()

		if err := askCredentials(cmd, true); err != nil {
			return err
		}

		res := deps.session.Signup(cmd.Context(), authFullName, authEmail, authPassword)
		if !res.Success {
			deps.toasts.Error(res.Error)
			return errors.New(res.Error)
		}
		deps.toasts.Success("Account created")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newClient(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer deps.Close()

		if err := deps.session.Logout(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		deps.toasts.Info("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newClient(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer deps.Close()

		u, _ := deps.session.User()
		if whoamiOutput != "table" {
			return writeOutput(cmd.OutOrStdout(), whoamiOutput, u)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "[%s] %s <%s>\n", u.Avatar, u.Name, u.Email)
		fmt.Fprintf(out, "role:      %s\n", u.Role)
		if u.LoginTime != "" {
			fmt.Fprintf(out, "signed in: %s\n", u.LoginTime)
		}
		return nil
	},
}

func askCredentials(cmd *cobra.Command, withName bool) error {
	in, out := bufio.NewReader(cmd.InOrStdin()), cmd.ErrOrStderr()
	var err error
	if withName && authFullName == "" {
		if authFullName, err = prompt(in, out, "Full name: "); err != nil {
			return err
		}
	}
	if authEmail == "" {
		if authEmail, err = prompt(in, out, "Email: "); err != nil {
			return err
		}
	}
	if authPassword == "" {
		if authPassword, err = prompt(in, out, "Password: "); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVarP(&authEmail, "email", "e", "", "account email")
		c.Flags().StringVarP(&authPassword, "password", "p", "", "account password (prompted when omitted)")
	}
	signupCmd.Flags().StringVarP(&authFullName, "name", "n", "", "full name")
	whoamiCmd.Flags().StringVarP(&whoamiOutput, "output", "o", "table", "output format: table, json or yaml")
}
