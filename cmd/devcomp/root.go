package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/jrsteele09/iotedge-devcomp/identity"
	"github.com/jrsteele09/iotedge-devcomp/internal/config"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configDir string
	tenant    string
	clientID  string
	logLevel  string
	logFile   string
	plain     bool
}

func (o *rootOptions) register(flags *pflag.FlagSet) {
	flags.StringVar(&o.configDir, "config-dir", "", "directory holding config.yaml and the saved login (default: user config dir)")
	flags.StringVar(&o.tenant, "tenant", "", "Entra ID tenant to sign in to")
	flags.StringVar(&o.clientID, "client-id", "", "public client id used for the device-code login")
	flags.StringVar(&o.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&o.logFile, "log-file", "", "write JSON logs to this file")
	flags.BoolVar(&o.plain, "plain", false, "never start the interactive browser")
}

func (o *rootOptions) overrides() config.Overrides {
	return config.Overrides{
		ConfigDir: o.configDir,
		Tenant:    o.tenant,
		ClientID:  o.clientID,
		LogLevel:  o.logLevel,
	}
}

// interactive reports whether the browser may take over the terminal.
func (o *rootOptions) interactive(out io.Writer) bool {
	if o.plain {
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newRootCmd builds the command tree. The returned func closes the log file
// opened for the run; cobra skips post-run hooks when a command fails, so the
// caller defers it instead.
func newRootCmd(build environmentBuilder) (*cobra.Command, func()) {
	opts := &rootOptions{}
	var env *environment
	current := func() *environment { return env }
	closeLogging := func() {}

	rootCmd := &cobra.Command{
		Use:           "devcomp",
		Short:         "Find IoT Edge devices across your Azure subscriptions",
		Long:          "Sign in to Azure and walk subscription, resource group and IoT hub down to the IoT Edge devices registered in the hub.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			env, err = build(opts.overrides())
			if err != nil {
				return err
			}

			console := cmd.ErrOrStderr()
			browsing := !cmd.HasParent() || cmd.Name() == browseCmdName
			if browsing && opts.interactive(cmd.OutOrStdout()) {
				// The browser owns the terminal.
				console = io.Discard
			}
			closer, err := configureLogging(env.cfg.GetLogLevel(), opts.logFile, console)
			if err != nil {
				return err
			}
			closeLogging = closer
			return nil
		},
	}
	opts.register(rootCmd.PersistentFlags())

	browse := newBrowseCmd(opts, current)
	rootCmd.RunE = browse.RunE
	rootCmd.AddCommand(browse)
	rootCmd.AddCommand(newLoginCmd(current))
	rootCmd.AddCommand(newLogoutCmd(current))
	rootCmd.AddCommand(newSubscriptionsCmd(current))
	rootCmd.AddCommand(newGroupsCmd(current))
	rootCmd.AddCommand(newHubsCmd(current))
	rootCmd.AddCommand(newDevicesCmd(current))

	return rootCmd, func() { closeLogging() }
}

// printPrompt returns a login callback that writes the device-code
// instructions to w.
func printPrompt(w io.Writer) func(identity.Prompt) {
	return func(p identity.Prompt) {
		_, _ = fmt.Fprintln(w, p.Message)
		_, _ = fmt.Fprintf(w, "The code expires at %s.\n", p.ExpiresAt.Local().Format("15:04:05"))
	}
}

// authorize signs in, prompting on stderr if needed.
func authorize(ctx context.Context, cmd *cobra.Command, env *environment) error {
	return env.nav.Authorize(ctx, printPrompt(cmd.ErrOrStderr()))
}
