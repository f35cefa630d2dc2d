package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/iotedge-devcomp/tui"
)

const browseCmdName = "browse"

func newBrowseCmd(opts *rootOptions, current func() *environment) *cobra.Command {
	return &cobra.Command{
		Use:   browseCmdName,
		Short: "Browse subscriptions, resource groups, hubs and edge devices interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := current()
			if opts.interactive(cmd.OutOrStdout()) {
				program := tea.NewProgram(
					tui.NewModel(cmd.Context(), env.nav),
					tea.WithAltScreen(),
					tea.WithContext(cmd.Context()),
				)
				final, err := program.Run()
				if err != nil {
					return err
				}
				if model, ok := final.(tui.Model); ok {
					return model.Err()
				}
				return nil
			}

			displayAppname(env.cfg.GetAppName())
			if err := authorize(cmd.Context(), cmd, env); err != nil {
				return err
			}
			if err := printSubscriptions(cmd, env); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Use 'devcomp groups', 'devcomp hubs' and 'devcomp devices' to go further, or run in a terminal without --plain.")
			return nil
		},
	}
}
