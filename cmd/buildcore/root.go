package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	json bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "buildcore",
		Short:         "buildcore drives a demo project through the parallel build engine core",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&flags.json, "json", false, "emit newline-delimited JSON events instead of console output")

	cmd.AddCommand(newBuildCmd(flags))
	cmd.AddCommand(newSdkCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
