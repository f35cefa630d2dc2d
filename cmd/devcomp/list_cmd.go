package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/iotedge-devcomp/registry"
)

// scopeFlags selects how far down the hierarchy a list command starts.
type scopeFlags struct {
	subscription  string
	resourceGroup string
	hub           string
}

func (f *scopeFlags) register(cmd *cobra.Command, depth int) {
	f.define(cmd, depth)
	for _, name := range f.names(depth) {
		_ = cmd.MarkFlagRequired(name)
	}
}

func (f *scopeFlags) define(cmd *cobra.Command, depth int) {
	cmd.Flags().StringVarP(&f.subscription, "subscription", "s", "", "subscription id")
	if depth > 1 {
		cmd.Flags().StringVarP(&f.resourceGroup, "resource-group", "g", "", "resource group name")
	}
	if depth > 2 {
		cmd.Flags().StringVar(&f.hub, "hub", "", "IoT hub name")
	}
}

func (*scopeFlags) names(depth int) []string {
	return []string{"subscription", "resource-group", "hub"}[:depth]
}

// walk signs in and selects every level the flags name.
func (f *scopeFlags) walk(cmd *cobra.Command, env *environment) error {
	if err := authorize(cmd.Context(), cmd, env); err != nil {
		return err
	}
	if err := env.nav.SelectSubscription(f.subscription); err != nil {
		return err
	}
	if f.resourceGroup == "" {
		return nil
	}
	if err := env.nav.SelectResourceGroup(f.resourceGroup); err != nil {
		return err
	}
	if f.hub == "" {
		return nil
	}
	return env.nav.SelectIoTHub(cmd.Context(), f.hub)
}

func printSubscriptions(cmd *cobra.Command, env *environment) error {
	subscriptions, err := env.nav.ListSubscriptions(cmd.Context())
	if err != nil {
		return err
	}
	for _, s := range subscriptions {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", s.ID, s.Name)
	}
	return nil
}

func printNames(cmd *cobra.Command, names []string) {
	for _, name := range names {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
	}
}

func newSubscriptionsCmd(current func() *environment) *cobra.Command {
	return &cobra.Command{
		Use:     "subscriptions",
		Aliases: []string{"subs"},
		Short:   "List the subscriptions visible to the signed-in account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := current()
			if err := authorize(cmd.Context(), cmd, env); err != nil {
				return err
			}
			return printSubscriptions(cmd, env)
		},
	}
}

func newGroupsCmd(current func() *environment) *cobra.Command {
	flags := &scopeFlags{}
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List the resource groups of a subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := current()
			if err := flags.walk(cmd, env); err != nil {
				return err
			}
			groups, err := env.nav.ListResourceGroups(cmd.Context())
			if err != nil {
				return err
			}
			printNames(cmd, groups)
			return nil
		},
	}
	flags.register(cmd, 1)
	return cmd
}

func newHubsCmd(current func() *environment) *cobra.Command {
	flags := &scopeFlags{}
	cmd := &cobra.Command{
		Use:   "hubs",
		Short: "List the IoT hubs of a resource group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := current()
			if err := flags.walk(cmd, env); err != nil {
				return err
			}
			hubs, err := env.nav.ListIoTHubs(cmd.Context())
			if err != nil {
				return err
			}
			printNames(cmd, hubs)
			return nil
		},
	}
	flags.register(cmd, 2)
	return cmd
}

func newDevicesCmd(current func() *environment) *cobra.Command {
	flags := &scopeFlags{}
	var connectionString string
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List the IoT Edge devices registered in a hub",
		Long: "List the IoT Edge devices registered in a hub, found either by subscription, resource group and hub " +
			"or directly by a hub connection string. The connection string skips the Azure sign-in.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := current()
			if connectionString != "" {
				return printHubDevices(cmd, env, connectionString)
			}
			if err := flags.walk(cmd, env); err != nil {
				return err
			}
			devices, err := env.nav.ListEdgeDevices(cmd.Context())
			if err != nil {
				return err
			}
			printNames(cmd, devices)
			return nil
		},
	}
	flags.define(cmd, 3)
	cmd.Flags().StringVar(&connectionString, "connection-string", "", "hub connection string (HostName=...;SharedAccessKeyName=...;SharedAccessKey=...)")
	cmd.MarkFlagsRequiredTogether(flags.names(3)...)
	cmd.MarkFlagsOneRequired("subscription", "connection-string")
	cmd.MarkFlagsMutuallyExclusive("subscription", "connection-string")
	cmd.MarkFlagsMutuallyExclusive("hub", "connection-string")
	return cmd
}

// printHubDevices lists the edge devices of the hub named by a connection
// string, bypassing the navigator.
func printHubDevices(cmd *cobra.Command, env *environment, connectionString string) error {
	cs, err := registry.ParseConnectionString(connectionString)
	if err != nil {
		return err
	}
	reg, err := env.registry(cs)
	if err != nil {
		return err
	}
	devices, err := registry.EdgeDeviceIDs(cmd.Context(), reg)
	if err != nil {
		return err
	}
	printNames(cmd, devices)
	return nil
}
