package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(current func() *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the login for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := current()
			if err := authorize(cmd.Context(), cmd, env); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", env.nav.State().Username)
			return nil
		},
	}
}

func newLogoutCmd(current func() *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := current()
			if err := env.records.Delete(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", env.records.Path())
			return nil
		},
	}
}
